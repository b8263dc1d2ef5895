package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/OpenWord/internal/config"
	"github.com/FocuswithJustin/OpenWord/internal/lexicon"
	"github.com/FocuswithJustin/OpenWord/internal/store/storetest"
)

// Test helper functions

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvDataDir, config.EnvLexicon, config.EnvLogLevel, config.EnvLogFormat, config.EnvCacheSize, config.EnvLookupSize, config.EnvConfigFile} {
		t.Setenv(key, "")
	}
}

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// createTestCorpus writes a translation, a lexicon and one commentary under
// a temp dir and returns the flags selecting it.
func createTestCorpus(t *testing.T) []string {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()

	translations := filepath.Join(dir, "translations")
	if err := os.MkdirAll(translations, 0o755); err != nil {
		t.Fatal(err)
	}
	verses := append(append([]storetest.Verse{}, storetest.Genesis1...), storetest.John3...)
	storetest.Bible(t, translations, storetest.Books, verses)

	storetest.Lexicon(t, dir,
		[]storetest.Lexeme{
			{Code: "H7225", Gloss: "beginning", Transliteration: "reshith", Definition: "first<br>chief"},
			{Code: "H0430", Gloss: "God", Transliteration: "elohim"},
		},
		[]storetest.Word{
			{Book: 1, Chapter: 1, Verse: 1, Position: 1, Code: "H7225", Original: "בְּרֵאשִׁית"},
			{Book: 1, Chapter: 1, Verse: 1, Position: 2, Code: "H430", Original: "אֱלֹהִים"},
			{Book: 1, Chapter: 1, Verse: 2, Position: 1, Code: "H776", Original: "הָאָרֶץ"},
		},
	)
	storetest.Commentary(t, dir, "notes.SQLite3", []storetest.Comment{
		{Book: 1, Chapter: 1, VerseStart: 1, VerseEnd: 2, Text: `{\rtf1 Creation\par account}`},
	})

	cfg := createTestFile(t, dir, "openword.yaml", `
lexicon: lexicon.SQLite3
translations:
  - id: KJV
    displayName: King James
    file: translations/bible.SQLite3
commentaries:
  - displayName: Notes
    file: notes.SQLite3
  - displayName: Gone
    file: gone.SQLite3
`)
	return []string{"--config", cfg, "--data-dir", dir}
}

func TestVersionCmd(t *testing.T) {
	clearEnv(t)
	r := runCLI(t, "", "version")
	if r.code != 0 || r.stdout != "openword version "+version+"\n" {
		t.Errorf("version = %d %q", r.code, r.stdout)
	}

	r = runCLI(t, "", "--json", "version")
	var v map[string]string
	if err := json.Unmarshal([]byte(r.stdout), &v); err != nil || v["version"] != version {
		t.Errorf("version --json = %q, %v", r.stdout, err)
	}
}

func TestUnknownCommand(t *testing.T) {
	clearEnv(t)
	if r := runCLI(t, "", "frobnicate"); r.code != 2 {
		t.Errorf("exit code = %d, want 2", r.code)
	}
}

func TestBadConfig(t *testing.T) {
	clearEnv(t)
	r := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	if r.code != 1 {
		t.Errorf("exit code = %d, want 1", r.code)
	}
	r = runCLI(t, "", "--log-level", "loud", "version")
	if r.code != 1 || !strings.Contains(r.stderr, "loud") {
		t.Errorf("bad log level = %d %q", r.code, r.stderr)
	}
}

func TestNormalizeCmd(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"pads digits", []string{"normalize", "H430", "G1", "H1254a", "H12345"}, "H0430\nG0001\nH1254a\nH12345\n"},
		{"leaves non codes", []string{"normalize", "X12", "H"}, "X12\nH\n"},
		{"variants", []string{"normalize", "--variants", "H1254a"}, "H1254a\t[H1254a H1254A H1254]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, "", tt.args...)
			if r.code != 0 || r.stdout != tt.want {
				t.Errorf("output = %d %q, want %q (stderr %q)", r.code, r.stdout, tt.want, r.stderr)
			}
		})
	}

	r := runCLI(t, "", "--json", "normalize", "G25", "H2050G5590")
	var got []normalized
	if err := json.Unmarshal([]byte(r.stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", r.stdout, err)
	}
	if len(got) != 2 || got[0].Canonical != "G0025" || got[0].Language != "greek" || len(got[1].Codes) != 2 {
		t.Errorf("normalize --json = %+v", got)
	}
}

func TestAnnotateCmd(t *testing.T) {
	clearEnv(t)
	const verse = "<J>In the beginning{H7225} God{H430}</J> created{H1254}{H853}."

	r := runCLI(t, "", "annotate", verse)
	if r.code != 0 {
		t.Fatalf("annotate failed: %q", r.stderr)
	}
	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	if lines[0] != "In the beginning God created." {
		t.Errorf("text line = %q", lines[0])
	}
	for _, want := range []string{"beginning", "H7225", "H1254H853", "[alternate-color] In the beginning God"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, r.stdout)
		}
	}

	r = runCLI(t, verse, "annotate", "--strip")
	if r.stdout != "In the beginning God created.\n" {
		t.Errorf("--strip from stdin = %q", r.stdout)
	}

	r = runCLI(t, "", "annotate", "--at", "8", verse)
	if r.code != 0 || r.stdout != "beginning\tH7225\n" {
		t.Errorf("--at 8 = %d %q", r.code, r.stdout)
	}
	if r = runCLI(t, "", "annotate", "--at", "0", verse); r.code != 1 {
		t.Errorf("--at on an unannotated word should fail, got %d", r.code)
	}

	r = runCLI(t, "", "--json", "annotate", verse)
	var got struct {
		Text        string `json:"text"`
		Annotations []struct {
			Start int    `json:"start"`
			End   int    `json:"end"`
			Code  string `json:"code"`
		} `json:"annotations"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", r.stdout, err)
	}
	if len(got.Annotations) != 3 || got.Annotations[0].Start != 7 || got.Annotations[0].End != 16 {
		t.Errorf("annotate --json = %+v", got)
	}
}

func TestRTFCmd(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := createTestFile(t, dir, "note.rtf", `{\rtf1\ansi{\fonttbl{\f0 Arial;}}\f0\fs24 Hello\par World\foo}`)

	r := runCLI(t, "", "rtf", path)
	if r.code != 0 || r.stdout != "Hello\nWorld\n" {
		t.Errorf("rtf file = %d %q (stderr %q)", r.code, r.stdout, r.stderr)
	}

	r = runCLI(t, "Text<br>More &amp; more", "rtf")
	if r.stdout != "Text\nMore & more\n" {
		t.Errorf("html from stdin = %q", r.stdout)
	}

	r = runCLI(t, "", "--json", "rtf", "--stats", path)
	var got decoded
	if err := json.Unmarshal([]byte(r.stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", r.stdout, err)
	}
	if got.Kind != "rtf" || got.Text != "Hello\nWorld" || got.Ignored["foo"] != 1 {
		t.Errorf("rtf --json --stats = %+v", got)
	}

	if r = runCLI(t, "", "rtf", filepath.Join(dir, "missing.rtf")); r.code != 1 {
		t.Errorf("missing file exit code = %d, want 1", r.code)
	}
}

func TestBooksCmd(t *testing.T) {
	flags := createTestCorpus(t)

	r := runCLI(t, "", append(flags, "books")...)
	if r.code != 0 {
		t.Fatalf("books failed: %q", r.stderr)
	}
	if !strings.Contains(r.stdout, "Genesis") || !strings.Contains(r.stdout, " 43  John") {
		t.Errorf("books output:\n%s", r.stdout)
	}

	r = runCLI(t, "", append(flags, "--translation", "NIV", "books")...)
	if r.code != 1 || !strings.Contains(r.stderr, "translation not found") {
		t.Errorf("unknown translation = %d %q", r.code, r.stderr)
	}
}

func TestChapterCmd(t *testing.T) {
	flags := createTestCorpus(t)

	r := runCLI(t, "", append(flags, "chapter", "Gen 1:1-2")...)
	want := "Genesis 1:1-2\n" +
		"1 In the beginning God created the heaven and the earth.\n" +
		"2 And the earth was without form, and void.\n"
	if r.code != 0 || r.stdout != want {
		t.Errorf("chapter = %d\n%s\nwant\n%s\nstderr %q", r.code, r.stdout, want, r.stderr)
	}

	r = runCLI(t, "", append(flags, "--json", "chapter", "gen 1")...)
	var verses []struct {
		Verse       int    `json:"verse"`
		Text        string `json:"text"`
		Annotations []any  `json:"annotations"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &verses); err != nil {
		t.Fatalf("invalid JSON %q: %v", r.stdout, err)
	}
	if len(verses) != 3 || verses[2].Verse != 3 || len(verses[0].Annotations) == 0 {
		t.Errorf("chapter --json = %+v", verses)
	}

	r = runCLI(t, "", append(flags, "chapter", "--codes", "John 3:16")...)
	if !strings.Contains(r.stdout, "[alternate-color]") || !strings.Contains(r.stdout, "G2316") {
		t.Errorf("chapter --codes:\n%s", r.stdout)
	}

	for _, ref := range []string{"Genesis", "Gen 1:9", "Rev 1:1"} {
		if r := runCLI(t, "", append(flags, "chapter", ref)...); r.code != 1 {
			t.Errorf("chapter %q exit code = %d, want 1", ref, r.code)
		}
	}
}

func TestVocabCmd(t *testing.T) {
	flags := createTestCorpus(t)

	r := runCLI(t, "", append(flags, "vocab", "Gen 1:1")...)
	if r.code != 0 {
		t.Fatalf("vocab failed: %q", r.stderr)
	}
	for _, want := range []string{"Genesis 1:1", "H7225", "beginning (reshith)", "H0430", "God (elohim)"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("vocab output missing %q:\n%s", want, r.stdout)
		}
	}

	r = runCLI(t, "", append(flags, "--json", "vocab", "Gen 1")...)
	var got []struct {
		Ref     struct{ Verse int } `json:"ref"`
		Entries []lexicon.Entry     `json:"entries"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", r.stdout, err)
	}
	if len(got) != 3 || len(got[0].Entries) != 2 || got[1].Entries[0].Gloss != lexicon.UnknownGloss || len(got[2].Entries) != 0 {
		t.Errorf("vocab --json = %+v", got)
	}
}

func TestVocabCmd_LexiconUnavailable(t *testing.T) {
	flags := createTestCorpus(t)
	t.Setenv(config.EnvLexicon, "nowhere.SQLite3")

	r := runCLI(t, "", append(flags, "vocab", "Gen 1:1")...)
	if r.code != 1 || !strings.Contains(r.stderr, "vocabulary temporarily unavailable") {
		t.Errorf("vocab = %d %q", r.code, r.stderr)
	}
	// Verses still read.
	if r := runCLI(t, "", append(flags, "chapter", "Gen 1:1")...); r.code != 0 {
		t.Errorf("chapter without lexicon = %d %q", r.code, r.stderr)
	}
}

func TestLookupCmd(t *testing.T) {
	flags := createTestCorpus(t)

	r := runCLI(t, "", append(flags, "lookup", "H7225")...)
	want := "H7225  beginning\nreshith\n\nfirst\nchief\n"
	if r.code != 0 || r.stdout != want {
		t.Errorf("lookup = %d %q, want %q", r.code, r.stdout, want)
	}

	r = runCLI(t, "", append(flags, "--json", "lookup", "H430")...)
	var e lexicon.Entry
	if err := json.Unmarshal([]byte(r.stdout), &e); err != nil {
		t.Fatalf("invalid JSON %q: %v", r.stdout, err)
	}
	if e.StrongCode != "H0430" || e.Gloss != "God" || e.Definition != nil {
		t.Errorf("lookup --json = %+v", e)
	}

	if r := runCLI(t, "", append(flags, "lookup", "H9999")...); r.code != 1 || !strings.Contains(r.stderr, "not found") {
		t.Errorf("lookup miss = %d %q", r.code, r.stderr)
	}
}

func TestCommentaryCmd(t *testing.T) {
	flags := createTestCorpus(t)

	r := runCLI(t, "", append(flags, "commentary", "Gen 1:2")...)
	want := "== Notes (1:1-2) ==\nCreation\naccount\n\n"
	if r.code != 0 || r.stdout != want {
		t.Errorf("commentary = %d %q, want %q", r.code, r.stdout, want)
	}

	r = runCLI(t, "", append(flags, "--json", "commentary", "Gen 1:3")...)
	if strings.TrimSpace(r.stdout) != "[]" {
		t.Errorf("commentary without entries = %q", r.stdout)
	}

	if r := runCLI(t, "", append(flags, "commentary", "Gen 1")...); r.code != 1 {
		t.Errorf("commentary without a verse exit code = %d, want 1", r.code)
	}
}

func TestMetricsCmd(t *testing.T) {
	flags := createTestCorpus(t)

	r := runCLI(t, "", append(flags, "metrics", "Gen 1:1")...)
	if r.code != 0 {
		t.Fatalf("metrics failed: %q", r.stderr)
	}
	values := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(r.stdout), "\n") {
		if fields := strings.Fields(line); len(fields) == 2 {
			values[fields[0]] = fields[1]
		}
	}
	checks := map[string]string{
		`openword_verse_vocabulary_total{result="ok"}`:               "1",
		`openword_lexicon_available`:                                 "1",
		`openword_commentary_renders_total{cache="miss",kind="rtf"}`: "1",
		`openword_source_errors_total{source="Gone"}`:                "1",
		`openword_lexicon_lookups_total{step="exact"}`:               "4",
	}
	for key, want := range checks {
		if values[key] != want {
			t.Errorf("%s = %q, want %q\n%s", key, values[key], want, r.stdout)
		}
	}

	r = runCLI(t, "", append(flags, "--json", "metrics")...)
	var samples []struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &samples); err != nil {
		t.Fatalf("invalid JSON %q: %v", r.stdout, err)
	}
}

func TestReferenceErrors(t *testing.T) {
	flags := createTestCorpus(t)

	r := runCLI(t, "", append(flags, "vocab", "Gen one")...)
	if r.code != 1 || !strings.Contains(r.stderr, "failed to parse reference") {
		t.Errorf("bad reference = %d %q", r.code, r.stderr)
	}
}
