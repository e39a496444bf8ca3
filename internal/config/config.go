// Package config loads the labhll command configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dsm122n/lab-hll/catalog"
	"github.com/dsm122n/lab-hll/ocr"
)

// Config is the top-level configuration.
type Config struct {
	// Catalog is the path of a YAML exam catalog. Empty means the built-in one.
	Catalog string       `yaml:"catalog"`
	Log     LogConfig    `yaml:"log"`
	Server  ServerConfig `yaml:"server"`
	Fetch   FetchConfig  `yaml:"fetch"`
	OCR     OCRConfig    `yaml:"ocr"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// FetchConfig controls PDF downloads.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// OCRConfig controls recognition of scanned reports.
type OCRConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
	// PageSegMode is a Tesseract page segmentation mode name or number.
	PageSegMode string `yaml:"psm"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML configuration. Unknown keys are errors; missing ones get
// defaults.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, cfg.Validate()
}

// LoadFile reads the configuration file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = time.Minute
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 2 * time.Minute
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.OCR.Language == "" {
		c.OCR.Language = ocr.DefaultLanguage
	}
	if c.OCR.PageSegMode == "" {
		c.OCR.PageSegMode = ocr.PSMAuto.String()
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := ocr.ParsePageSegMode(c.OCR.PageSegMode); err != nil {
		return fmt.Errorf("ocr.psm: %w", err)
	}
	return nil
}

// PageSegMode returns the parsed ocr.psm value. Call it after Validate.
func (c *Config) PageSegMode() ocr.PageSegMode {
	m, err := ocr.ParsePageSegMode(c.OCR.PageSegMode)
	if err != nil {
		return ocr.PSMAuto
	}
	return m
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Logger builds the logger described by c.Log, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(c.Log.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoadCatalog returns the configured catalog, or the built-in one.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.Catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(c.Catalog)
}
