package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/seedmap/internal/almanac"
)

func newFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "state path")
	flags.String("mode", "", "mode")
	flags.Int("workers", 0, "workers")
	flags.BoolP("verbose", "v", false, "verbose")
	flags.StringP("output", "o", "", "output")
	flags.String("log-level", "", "log level")
	return flags
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "seedmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, almanac.ModeRanges, cfg.Mode)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.True(t, cfg.Record)
	assert.False(t, cfg.Reuse)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultStateFile), cfg.StatePath)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `mode: part1
workers: 4
record: false
reuse: true
state_path: history/runs.db
output: json
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, almanac.ModePoints, cfg.Mode, "aliases decode through UnmarshalText")
	assert.Equal(t, 4, cfg.Workers)
	assert.False(t, cfg.Record)
	assert.True(t, cfg.Reuse)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, path, GetConfigFileUsed())

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, "history", "runs.db"), cfg.StatePath, "file paths resolve against the config directory")
}

func TestLoadConfig_SearchesUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "mode: points\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, almanac.ModePoints, cfg.Mode)
	assert.Contains(t, GetConfigFileUsed(), "seedmap.yaml")
}

func TestLoadConfig_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		flags    map[string]string
		wantMode almanac.Mode
		wantW    int
	}{
		{
			name:     "file only",
			wantMode: almanac.ModePoints,
			wantW:    2,
		},
		{
			name:     "env overrides file",
			env:      map[string]string{"SEEDMAP_MODE": "ranges", "SEEDMAP_WORKERS": "3"},
			wantMode: almanac.ModeRanges,
			wantW:    3,
		},
		{
			name:     "flag overrides env",
			env:      map[string]string{"SEEDMAP_MODE": "ranges", "SEEDMAP_WORKERS": "3"},
			flags:    map[string]string{"mode": "points", "workers": "8"},
			wantMode: almanac.ModePoints,
			wantW:    8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := t.TempDir()
			path := writeConfig(t, dir, "mode: points\nworkers: 2\n")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			flags := newFlags(t)
			for k, v := range tt.flags {
				require.NoError(t, flags.Set(k, v))
			}

			cfg, err := LoadConfig(path, flags)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, cfg.Mode)
			assert.Equal(t, tt.wantW, cfg.Workers)
		})
	}
}

func TestLoadConfig_StateFlagRelativeToWorkingDir(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	path := writeConfig(t, root, "state_path: from_file.db\n")
	work := t.TempDir()
	t.Chdir(work)

	flags := newFlags(t)
	require.NoError(t, flags.Set("state", "mine.db"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "mine.db"), cfg.StatePath)
}

func TestLoadConfig_VerboseEnablesDebug(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := newFlags(t)
	require.NoError(t, flags.Set("verbose", "true"))
	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	ResetConfig()
	flags = newFlags(t)
	require.NoError(t, flags.Set("verbose", "true"))
	require.NoError(t, flags.Set("log-level", "error"))
	cfg, err = LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel, "an explicit level wins over --verbose")
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		errSub  string
	}{
		{name: "unknown mode", content: "mode: sideways\n", errSub: "unknown mode"},
		{name: "unknown output", content: "output: yaml\n", errSub: "unknown output format"},
		{name: "bad log level", content: "log_level: loud\n", errSub: "invalid log level"},
		{name: "bad workers", content: "workers: -5\n", errSub: "workers must be"},
		{name: "bad env mode", content: "", env: map[string]string{"SEEDMAP_MODE": "nope"}, errSub: "unknown mode"},
		{name: "malformed yaml", content: "mode: [\n", errSub: "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "", wantErr: true},
		{in: "trace", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerContext(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "missing logger falls back to discard")

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info")
	require.NoError(t, err)

	ctx := WithLogger(context.Background(), logger)
	GetLogger(ctx).Debug("hidden")
	GetLogger(ctx).Info("shown", "answer", 46)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "answer=46")
	assert.Equal(t, ctx.Value(LoggerKey()), logger)
}
