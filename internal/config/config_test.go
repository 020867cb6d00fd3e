package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	ns, err := cfg.Namespace()
	require.NoError(t, err)
	assert.Equal(t, DefaultSeed, ns.Tag)
	assert.Equal(t, DefaultProgramID, ns.ProgramID.String())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "stockslot.yaml", `
program:
  seed: warehouse
capacity: 4096
database: /tmp/warehouse.db
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultProgramID, cfg.Program.ID, "unset fields keep defaults")
	assert.Equal(t, "warehouse", cfg.Program.Seed)
	assert.Equal(t, 4096, cfg.Capacity)
	assert.Equal(t, "/tmp/warehouse.db", cfg.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_CUE(t *testing.T) {
	path := writeFile(t, "stockslot.cue", `
program: seed: "shop"
capacity: 2 * 1000
log: format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.Program.Seed)
	assert.Equal(t, 2000, cfg.Capacity)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STOCKSLOT_DB", "/tmp/env.db")
	t.Setenv("STOCKSLOT_CAPACITY", "512")
	t.Setenv("STOCKSLOT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database)
	assert.Equal(t, 512, cfg.Capacity)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoad_EnvBadCapacity(t *testing.T) {
	t.Setenv("STOCKSLOT_CAPACITY", "lots")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported extension", "stockslot.toml", "capacity = 1"},
		{"bad yaml", "bad.yaml", "program: [unclosed"},
		{"bad cue", "bad.cue", "capacity: "},
		{"capacity too small", "small.yaml", "capacity: 4"},
		{"capacity too large", "large.yaml", "capacity: 20000000"},
		{"seed too long", "seed.yaml", "program:\n  seed: " + "abcdefghijklmnopqrstuvwxyz0123456789"},
		{"bad program id", "id.yaml", "program:\n  id: not-base58!"},
		{"bad log level", "log.yaml", "log:\n  level: chatty"},
		{"bad log format", "fmt.cue", `log: format: "xml"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
