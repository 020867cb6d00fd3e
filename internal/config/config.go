// Package config loads process-wide settings: the namespace slots are
// derived in, slot capacity, database path and logging.
//
// Files may be YAML (.yaml, .yml) or CUE (.cue). Values from the file are
// laid over Default, then STOCKSLOT_* environment variables are applied,
// and the result is checked against the embedded CUE schema.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/roach88/stockslot/internal/locator"
	"github.com/roach88/stockslot/internal/slot"
)

//go:embed schema.cue
var schemaCUE string

// DefaultProgramID is the program id slot addresses derive under unless
// configured otherwise.
const DefaultProgramID = "865m9ePhc85sKxN5LgTzYkxG3hQWiwgfxfuzGQUjjiCM"

// DefaultSeed is the default namespace tag.
const DefaultSeed = "store_account"

// Config holds all settings.
type Config struct {
	Program  ProgramConfig `yaml:"program" json:"program"`
	Capacity int           `yaml:"capacity" json:"capacity"`
	Database string        `yaml:"database" json:"database"`
	Log      LogConfig     `yaml:"log" json:"log"`
}

// ProgramConfig identifies the derivation namespace.
type ProgramConfig struct {
	ID   string `yaml:"id" json:"id"`
	Seed string `yaml:"seed" json:"seed"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug|info|warn|error
	Format string `yaml:"format" json:"format"` // text|json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Program: ProgramConfig{
			ID:   DefaultProgramID,
			Seed: DefaultSeed,
		},
		Capacity: slot.DefaultCapacity,
		Database: "stockslot.db",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (may be empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		overlay(&cfg, file)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (Config, error) {
	var file Config

	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read config: %w", err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return file, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".cue":
		v := cuecontext.New().CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return file, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := v.Decode(&file); err != nil {
			return file, fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		return file, fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .cue)", path, filepath.Ext(path))
	}
	return file, nil
}

// overlay copies every non-zero field of src onto dst.
func overlay(dst *Config, src Config) {
	if src.Program.ID != "" {
		dst.Program.ID = src.Program.ID
	}
	if src.Program.Seed != "" {
		dst.Program.Seed = src.Program.Seed
	}
	if src.Capacity != 0 {
		dst.Capacity = src.Capacity
	}
	if src.Database != "" {
		dst.Database = src.Database
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.Log.Format = src.Log.Format
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("STOCKSLOT_DB"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("STOCKSLOT_PROGRAM_ID"); v != "" {
		cfg.Program.ID = v
	}
	if v := os.Getenv("STOCKSLOT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STOCKSLOT_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STOCKSLOT_CAPACITY: %w", err)
		}
		cfg.Capacity = n
	}
	return nil
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	v := schema.Unify(ctx.Encode(cfg))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := cfg.Namespace(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Namespace builds the derivation namespace.
func (c Config) Namespace() (locator.Namespace, error) {
	programID, err := solana.PublicKeyFromBase58(c.Program.ID)
	if err != nil {
		return locator.Namespace{}, fmt.Errorf("program id %q: %w", c.Program.ID, err)
	}
	return locator.NewNamespace(c.Program.Seed, programID)
}

// SlogLevel maps Log.Level to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
