package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/FocuswithJustin/OpenWord/core/commentary"
	"github.com/FocuswithJustin/OpenWord/core/errors"
	"github.com/FocuswithJustin/OpenWord/core/markup"
	"github.com/FocuswithJustin/OpenWord/core/rtf"
	"github.com/FocuswithJustin/OpenWord/core/strongs"
)

// NormalizeCmd canonicalizes Strong's codes.
type NormalizeCmd struct {
	Codes    []string `arg:"" help:"Strong's codes or code fields (H430, H1254a, H3068{H430})"`
	Variants bool     `help:"Also show the lookup keys tried for each code"`
}

type normalized struct {
	Input     string   `json:"input"`
	Canonical string   `json:"canonical"`
	Language  string   `json:"language"`
	Codes     []string `json:"codes,omitempty"`
	Variants  []string `json:"variants,omitempty"`
}

func (c *NormalizeCmd) Run(app *App) error {
	results := make([]normalized, 0, len(c.Codes))
	for _, code := range c.Codes {
		n := normalized{
			Input:     code,
			Canonical: strongs.Normalize(code),
			Language:  strongs.LanguageOf(code).String(),
		}
		if codes := strongs.Extract(code); len(codes) > 1 {
			n.Codes = codes
		}
		if c.Variants {
			n.Variants = strongs.Variants(code)
		}
		results = append(results, n)
	}

	if app.JSON {
		return app.printJSON(results)
	}
	for _, n := range results {
		if c.Variants {
			app.printf("%s\t%v\n", n.Canonical, n.Variants)
			continue
		}
		app.printf("%s\n", n.Canonical)
	}
	return nil
}

// AnnotateCmd annotates raw verse markup.
type AnnotateCmd struct {
	Text  string `arg:"" optional:"" help:"Raw verse text; read from stdin when omitted or -"`
	Strip bool   `help:"Print the plain text only, with tags and codes removed"`
	At    int    `help:"Print only the annotation covering this rune offset" default:"-1"`
}

func (c *AnnotateCmd) Run(app *App) error {
	raw, err := app.input(c.Text)
	if err != nil {
		return err
	}
	if c.Strip {
		if app.JSON {
			return app.printJSON(map[string]string{"text": markup.StripTags(raw)})
		}
		app.printf("%s\n", markup.StripTags(raw))
		return nil
	}

	t := markup.Annotate(raw)
	if c.At >= 0 {
		a, ok := t.AnnotationAt(c.At)
		if !ok {
			return errors.NewNotFound("annotation at offset", strconv.Itoa(c.At))
		}
		if app.JSON {
			return app.printJSON(struct {
				markup.Annotation
				Word string `json:"word"`
			}{a, t.Word(a)})
		}
		app.printf("%s\t%s\n", t.Word(a), a.Code)
		return nil
	}
	if app.JSON {
		return app.printJSON(t)
	}
	printAnnotated(app, t)
	return nil
}

// printAnnotated writes the text followed by one line per annotation and
// style span.
func printAnnotated(app *App, t *markup.AnnotatedText) {
	app.printf("%s\n", t.Text)
	for _, a := range t.Annotations {
		app.printf("  %3d-%-3d %-16s %s\n", a.Start, a.End, t.Word(a), a.Code)
	}
	for _, s := range t.Styles {
		app.printf("  %3d-%-3d [%s] %s\n", s.Start, s.End, s.Style, t.Slice(s.Start, s.End))
	}
}

// RTFCmd decodes a commentary body.
type RTFCmd struct {
	File  string `arg:"" optional:"" help:"File holding the commentary text; read from stdin when omitted or -" type:"path"`
	Stats bool   `help:"Report control words the decoder skipped"`
}

type decoded struct {
	Kind             string         `json:"kind"`
	Text             string         `json:"text"`
	Ignored          map[string]int `json:"ignored,omitempty"`
	MalformedEscapes int            `json:"malformedEscapes,omitempty"`
}

func (c *RTFCmd) Run(app *App) error {
	var raw string
	if c.File == "" || c.File == "-" {
		in, err := app.input("")
		if err != nil {
			return err
		}
		raw = in
	} else {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return fmt.Errorf("reading %s: %w", c.File, err)
		}
		raw = string(data)
	}

	body := commentary.Classify(raw)
	out := decoded{Kind: body.Kind().String()}
	if body.Kind() == commentary.KindRTF && c.Stats {
		var stats rtf.Stats
		out.Text, stats = rtf.DecodeWithStats(raw)
		out.Ignored = stats.Ignored
		out.MalformedEscapes = stats.MalformedEscapes
	} else {
		out.Text = body.Text()
	}

	if app.JSON {
		return app.printJSON(out)
	}
	app.printf("%s\n", out.Text)
	if c.Stats {
		words := make([]string, 0, len(out.Ignored))
		for w := range out.Ignored {
			words = append(words, w)
		}
		sort.Strings(words)
		app.printf("-- %s", out.Kind)
		for _, w := range words {
			app.printf(" \\%s=%d", w, out.Ignored[w])
		}
		if out.MalformedEscapes > 0 {
			app.printf(" malformed=%d", out.MalformedEscapes)
		}
		app.printf("\n")
	}
	return nil
}
