// Package config loads OpenWord configuration from YAML with
// environment-variable overrides: where the corpus lives, which translations
// and commentaries it holds, and how to log.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/OpenWord/core/errors"
	"github.com/FocuswithJustin/OpenWord/internal/logging"
	"github.com/FocuswithJustin/OpenWord/internal/validation"
)

// Environment variables that override file values.
const (
	EnvDataDir    = "OPENWORD_DATA_DIR"
	EnvLexicon    = "OPENWORD_LEXICON"
	EnvLogLevel   = "OPENWORD_LOG_LEVEL"
	EnvLogFormat  = "OPENWORD_LOG_FORMAT"
	EnvCacheSize  = "OPENWORD_RENDER_CACHE"
	EnvLookupSize = "OPENWORD_LOOKUP_CACHE"
	EnvConfigFile = "OPENWORD_CONFIG"
)

// Config is the top-level application configuration.
type Config struct {
	DataDir      string              `yaml:"dataDir"`
	Lexicon      string              `yaml:"lexicon"`
	Translations []TranslationConfig `yaml:"translations"`
	Commentaries []CommentaryConfig  `yaml:"commentaries"`
	Render       RenderConfig        `yaml:"render"`
	Lookup       LookupConfig        `yaml:"lookup"`
	Logging      LoggingConfig       `yaml:"logging"`
}

// TranslationConfig names one translation database.
type TranslationConfig struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"displayName"`
	File        string `yaml:"file"`
}

// CommentaryConfig names one commentary database. Results are shown in
// configuration order.
type CommentaryConfig struct {
	DisplayName string `yaml:"displayName"`
	File        string `yaml:"file"`
}

// RenderConfig bounds the rendered-commentary cache.
type RenderConfig struct {
	CacheEntries int   `yaml:"cacheEntries"`
	CacheBytes   int64 `yaml:"cacheBytes"`
}

// LookupConfig bounds the resolved Strong's code cache. Zero selects the
// default size; a negative value disables the cache.
type LookupConfig struct {
	CacheEntries int `yaml:"cacheEntries"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults; lists given in the file
// replace the default lists.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewIO("read config", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the stock corpus layout: four translations, three
// commentaries and the lexicon under ./data.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Lexicon: "vocabulary/lexicon.SQLite3",
		Translations: []TranslationConfig{
			{ID: "CUV", DisplayName: "Український (CUV)", File: "translations/CUV.SQLite3"},
			{ID: "KJV", DisplayName: "Англійський (KJV)", File: "translations/KJV.SQLite3"},
			{ID: "UBIO", DisplayName: "Український (Огієнко)", File: "translations/UBIO.SQLite3"},
			{ID: "NUP", DisplayName: "Український (НУП)", File: "translations/NUP.SQLite3"},
		},
		Commentaries: []CommentaryConfig{
			{DisplayName: "Огієнко", File: "commentaries/UBIO.commentaries.SQLite3"},
			{DisplayName: "БКІК", File: "commentaries/IVP.SQLite3"},
			{DisplayName: "Далас", File: "commentaries/constable.SQLite3"},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// applyEnvOverrides reads OPENWORD_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvLexicon); v != "" {
		cfg.Lexicon = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if err := envInt(EnvCacheSize, &cfg.Render.CacheEntries); err != nil {
		return err
	}
	return envInt(EnvLookupSize, &cfg.Lookup.CacheEntries)
}

// envInt sets *dst from an integer environment variable, if set.
func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.NewValidation(name, fmt.Sprintf("not an integer: %q", v))
	}
	*dst = n
	return nil
}

// Validate checks the configuration for values that would only fail later.
func (c *Config) Validate() error {
	if err := validation.ValidatePath(c.DataDir); err != nil {
		return errors.NewValidation("dataDir", err.Error())
	}
	if err := validation.ValidatePath(c.Lexicon); err != nil {
		return errors.NewValidation("lexicon", err.Error())
	}

	ids := make(map[string]bool)
	for i, t := range c.Translations {
		field := fmt.Sprintf("translations[%d]", i)
		if strings.TrimSpace(t.ID) == "" {
			return errors.NewValidation(field+".id", "must not be empty")
		}
		key := strings.ToUpper(t.ID)
		if ids[key] {
			return errors.NewValidation(field+".id", fmt.Sprintf("duplicate translation %q", t.ID))
		}
		ids[key] = true
		if _, err := validation.ResolvePath(c.DataDir, t.File); err != nil {
			return errors.NewValidation(field+".file", err.Error())
		}
	}

	for i, s := range c.Commentaries {
		field := fmt.Sprintf("commentaries[%d]", i)
		if strings.TrimSpace(s.DisplayName) == "" {
			return errors.NewValidation(field+".displayName", "must not be empty")
		}
		if _, err := validation.ResolvePath(c.DataDir, s.File); err != nil {
			return errors.NewValidation(field+".file", err.Error())
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return errors.NewValidation("logging.level", err.Error())
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return errors.NewValidation("logging.format", err.Error())
	}
	return nil
}

// Translation finds a translation by ID, ignoring case. An empty ID selects
// the first configured translation.
func (c *Config) Translation(id string) (TranslationConfig, error) {
	if len(c.Translations) == 0 {
		return TranslationConfig{}, errors.NewNotFound("translation", id)
	}
	if id == "" {
		return c.Translations[0], nil
	}
	for _, t := range c.Translations {
		if strings.EqualFold(t.ID, id) {
			return t, nil
		}
	}
	return TranslationConfig{}, errors.NewNotFound("translation", id)
}

// Path resolves a configured corpus file against the data directory.
func (c *Config) Path(file string) (string, error) {
	return validation.ResolvePath(c.DataDir, file)
}

// InitLogging applies the logging section to the global logger, writing to
// stderr.
func (c *Config) InitLogging() error {
	return c.InitLoggingTo(os.Stderr)
}

// InitLoggingTo applies the logging section to the global logger, writing to w.
func (c *Config) InitLoggingTo(w io.Writer) error {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return err
	}
	logging.InitLoggerWriter(w, level, format)
	return nil
}
