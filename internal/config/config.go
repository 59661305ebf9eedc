// Package config resolves bankcheck's configuration.
//
// Values are layered, later layers winning:
//
//  1. defaults from the embedded CUE schema
//  2. a CUE config file, unified with the schema
//  3. BANKCHECK_* environment variables
//  4. command-line flags (applied by the cli package)
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/caarlos0/env/v11"

	"github.com/roach88/bankcheck/internal/itf"
)

//go:embed schema.cue
var schemaCUE string

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "BANKCHECK_"

// Config is the resolved configuration.
type Config struct {
	Traces         Traces `json:"traces" envPrefix:"TRACES_"`
	Database       string `json:"database" env:"DB"`
	StrictBalances bool   `json:"strict_balances" env:"STRICT_BALANCES"`
}

// Traces locates the numbered trace files.
type Traces struct {
	Dir     string `json:"dir" env:"DIR"`
	Pattern string `json:"pattern" env:"PATTERN"`
	Start   int    `json:"start" env:"START"`
	Count   int    `json:"count" env:"COUNT"`
}

// Default returns the schema defaults.
func Default() (*Config, error) {
	return decode(nil, "")
}

// Load resolves the configuration from the CUE file at path (if path is
// non-empty) and the environment.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := decode(data, path)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unifies data (CUE source, may be nil) with the schema and
// decodes the concrete result.
func decode(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	value := schema.LookupPath(cue.ParsePath("#Config"))

	if data != nil {
		file := ctx.CompileBytes(data, cue.Filename(filename))
		if err := file.Err(); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", filename, err)
		}
		value = value.Unify(file)
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the constraints the schema enforces, for values that
// arrived from the environment or flags.
func (c *Config) Validate() error {
	if c.Traces.Dir == "" {
		return fmt.Errorf("invalid config: traces.dir is required")
	}
	if !strings.Contains(c.Traces.Pattern, "%d") {
		return fmt.Errorf("invalid config: traces.pattern %q must contain %%d", c.Traces.Pattern)
	}
	if c.Traces.Start < 0 {
		return fmt.Errorf("invalid config: traces.start must be non-negative, got %d", c.Traces.Start)
	}
	if c.Traces.Count < 0 {
		return fmt.Errorf("invalid config: traces.count must be non-negative, got %d", c.Traces.Count)
	}
	return nil
}

// Catalog returns the numbered trace files the config describes.
func (c *Config) Catalog() itf.NumberedDir {
	return itf.NumberedDir{
		Root:    c.Traces.Dir,
		Pattern: c.Traces.Pattern,
		Start:   c.Traces.Start,
		Count:   c.Traces.Count,
	}
}

// Document returns the config as a flat canonical-JSON-friendly map, the
// form recorded with each run.
func (c *Config) Document() map[string]any {
	return map[string]any{
		"traces_dir":      c.Traces.Dir,
		"traces_pattern":  c.Traces.Pattern,
		"traces_start":    c.Traces.Start,
		"traces_count":    c.Traces.Count,
		"database":        c.Database,
		"strict_balances": c.StrictBalances,
	}
}
