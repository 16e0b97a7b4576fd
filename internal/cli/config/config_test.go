package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "widarcfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("root", "", "")
	flags.String("state", "", "")
	flags.String("backend", "", "")
	flags.Int("workers", 0, "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.Bool("include-tests", false, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultBackend, cfg.Backend)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, []string{"53714A-242A"}, cfg.KnownInvalid)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `root: archive
state_path: /var/lib/widarcfg/state.duckdb
backend: duckdb
workers: 4
output: json
include_tests: true
known_invalid:
  - 20A-001
  - 20A-002
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "archive"), cfg.Root)
	assert.Equal(t, "/var/lib/widarcfg/state.duckdb", cfg.StatePath)
	assert.Equal(t, "duckdb", cfg.Backend)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.IncludeTests)
	assert.Equal(t, []string{"20A-001", "20A-002"}, cfg.KnownInvalid)

	opts := cfg.BatchOptions()
	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, cfg.KnownInvalid, opts.KnownInvalid)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "backend: sqlite\noutput: text\nworkers: 2\n")

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("WIDARCFG_OUTPUT", "yaml")
		t.Setenv("WIDARCFG_WORKERS", "8")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "yaml", cfg.OutputFormat)
		assert.Equal(t, 8, cfg.Workers)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("WIDARCFG_OUTPUT", "yaml")
		flags := testFlags()
		require.NoError(t, flags.Set("output", "csv"))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "csv", cfg.OutputFormat)
	})

	t.Run("unset flag falls back to env", func(t *testing.T) {
		t.Setenv("WIDARCFG_BACKEND", "duckdb")

		cfg, err := LoadConfig(path, testFlags())
		require.NoError(t, err)
		assert.Equal(t, "duckdb", cfg.Backend)
		assert.Equal(t, "text", cfg.OutputFormat)
	})
}

func TestLoadConfig_FlagPathsRelativeToWorkingDir(t *testing.T) {
	path := writeConfig(t, "root: from_file\n")
	cwd, err := os.Getwd()
	require.NoError(t, err)

	flags := testFlags()
	require.NoError(t, flags.Set("root", "from_flag"))
	require.NoError(t, flags.Set("state", "state.db"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "from_flag"), cfg.Root)
	assert.Equal(t, filepath.Join(cwd, "state.db"), cfg.StatePath)
}

func TestLoadConfig_MemoryStateIsKept(t *testing.T) {
	path := writeConfig(t, "state_path: \":memory:\"\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown backend", "backend: postgres\n", "unknown backend"},
		{"unknown output", "output: html\n", "unknown output format"},
		{"negative workers", "workers: -1\n", "must not be negative"},
		{"malformed yaml", "backend: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestFindConfigUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Empty(t, findConfigUpward(nested))

	cfgPath := filepath.Join(root, "a", "widarcfg.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0600))
	assert.Equal(t, cfgPath, findConfigUpward(nested))
}

func TestResolvePathRelativeTo(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{":memory:", ":memory:"},
		{"/abs/state.db", "/abs/state.db"},
		{"rel/state.db", "/base/rel/state.db"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, resolvePathRelativeTo(tt.path, "/base"))
		})
	}
}

func TestConfig_ValidateRoot(t *testing.T) {
	cfg := Defaults()
	cfg.Root = t.TempDir()
	assert.NoError(t, cfg.ValidateRoot())

	cfg.Root = filepath.Join(cfg.Root, "missing")
	err := cfg.ValidateRoot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive root does not exist")
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Defaults(), GetConfig(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := Defaults()
	cfg.Workers = 3
	assert.Same(t, cfg, GetConfig(WithConfig(ctx, cfg)))
}
