// Command openword reads an interlinear Bible corpus: annotated verses,
// original-language vocabulary with lexicon glosses, and verse commentaries.
// It also exposes the text pipeline on its own (code normalization, markup
// annotation, RTF and HTML commentary decoding) for inspecting raw corpus data.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/OpenWord/internal/config"
	"github.com/FocuswithJustin/OpenWord/internal/logging"
	"github.com/FocuswithJustin/OpenWord/internal/metrics"
	"github.com/FocuswithJustin/OpenWord/internal/reader"
)

const version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config      string `name:"config" short:"c" help:"YAML configuration file" type:"path" env:"OPENWORD_CONFIG"`
	DataDir     string `name:"data-dir" short:"d" help:"Corpus directory (overrides the configuration)" type:"path"`
	Translation string `name:"translation" short:"t" help:"Translation ID (default: first configured)"`
	JSON        bool   `name:"json" help:"Write JSON instead of text"`
	LogLevel    string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat   string `name:"log-format" help:"Log format: text, json"`
}

// CLI defines the command-line interface for openword.
type CLI struct {
	Globals

	// Text pipeline
	Normalize NormalizeCmd `cmd:"" help:"Canonicalize Strong's codes"`
	Annotate  AnnotateCmd  `cmd:"" help:"Annotate verse markup with styles and Strong's codes"`
	RTF       RTFCmd       `cmd:"" name:"rtf" help:"Decode commentary text (RTF or HTML) to plain text"`

	// Corpus
	Books      BooksCmd      `cmd:"" help:"List the books of a translation"`
	Chapter    ChapterCmd    `cmd:"" help:"Print a chapter or verse range with annotations"`
	Vocab      VocabCmd      `cmd:"" help:"Show the original-language vocabulary of a verse"`
	Lookup     LookupCmd     `cmd:"" help:"Look up a Strong's code in the lexicon"`
	Commentary CommentaryCmd `cmd:"" help:"Show commentaries covering a verse"`
	Metrics    MetricsCmd    `cmd:"" help:"Print lookup and rendering counters"`

	Version VersionCmd `cmd:"" help:"Print version information"`
}

// App is the state shared by command Run methods.
type App struct {
	*Globals

	ctx     context.Context
	stdin   io.Reader
	stdout  io.Writer
	cfg     *config.Config
	metrics *metrics.Metrics
	reader  *reader.Reader
}

// Reader returns the corpus reader, creating it on first use.
func (a *App) Reader() (*reader.Reader, error) {
	if a.reader == nil {
		r, err := reader.New(a.cfg, reader.WithMetrics(a.metrics))
		if err != nil {
			return nil, err
		}
		a.reader = r
	}
	return a.reader, nil
}

// Close releases the corpus reader, if one was created.
func (a *App) Close() error {
	if a.reader == nil {
		return nil
	}
	return a.reader.Close()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// input returns arg, or all of stdin when arg is empty or "-".
func (a *App) input(arg string) (string, error) {
	if arg != "" && arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// loadConfig reads the configuration and applies the global flag overrides.
func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.DataDir != "" {
		cfg.DataDir = g.DataDir
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
	return cfg, nil
}

// run parses args, runs the selected command and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, options ...kong.Option) int {
	var cli CLI
	options = append([]kong.Option{
		kong.Name("openword"),
		kong.Description("OpenWord - interlinear Bible reader"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
	}, options...)

	parser, err := kong.New(&cli, options...)
	if err != nil {
		fmt.Fprintf(stderr, "openword: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%v", err)
		return 2
	}

	cfg, err := loadConfig(&cli.Globals)
	if err == nil {
		err = cfg.InitLoggingTo(stderr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "openword: %v\n", err)
		return 1
	}

	app := &App{
		Globals: &cli.Globals,
		ctx:     logging.StartRequest(context.Background()),
		stdin:   stdin,
		stdout:  stdout,
		cfg:     cfg,
		metrics: metrics.New(),
	}
	defer app.Close()

	start := time.Now()
	err = kctx.Run(app)
	logging.Command(app.ctx, strings.TrimSpace(kctx.Command()), time.Since(start), err)
	if err != nil {
		fmt.Fprintf(stderr, "openword: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	if app.JSON {
		return app.printJSON(map[string]string{"version": version})
	}
	app.printf("openword version %s\n", version)
	return nil
}
