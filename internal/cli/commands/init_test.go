package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/seedmap/internal/almanac"
	"github.com/leapstack-labs/seedmap/internal/cli/config"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
		noFiles   []string
	}{
		{
			name:      "init empty directory",
			wantFiles: []string{"seedmap.yaml", ".gitignore"},
			noFiles:   []string{"almanac.txt"},
		},
		{
			name:      "init with example",
			args:      []string{"--example"},
			wantFiles: []string{"seedmap.yaml", ".gitignore", "almanac.txt"},
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "seedmap.yaml"), []byte("existing"), 0o600))
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "seedmap.yaml"), []byte("existing"), 0o600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"seedmap.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.ResetConfig()
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			_, _, err := execute(t, NewInitCommand(), tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--force")
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(tmpDir, f))
			}
			for _, f := range tt.noFiles {
				assert.NoFileExists(t, filepath.Join(tmpDir, f))
			}
		})
	}
}

func TestInit_IntoNewDirectory(t *testing.T) {
	config.ResetConfig()
	target := filepath.Join(t.TempDir(), "puzzle")

	out, _, err := execute(t, NewInitCommand(), target, "--example")
	require.NoError(t, err)
	assert.Contains(t, out, "seedmap initialized!")
	assert.Contains(t, out, "seedmap trace almanac.txt 79")

	alm, err := almanac.ParseFile(filepath.Join(target, "almanac.txt"), almanac.Options{})
	require.NoError(t, err)
	assert.Len(t, alm.Stages, 7)
}

func TestInitCreatesValidConfig(t *testing.T) {
	config.ResetConfig()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	_, _, err := execute(t, NewInitCommand())
	require.NoError(t, err)

	content, err := os.ReadFile("seedmap.yaml")
	require.NoError(t, err)

	for _, expected := range []string{"state_path: .seedmap/state.db", "mode: ranges", "workers: 1", "record: true", "log_level: warn"} {
		assert.Contains(t, string(content), expected)
	}
	assert.NotContains(t, string(content), "ProjectRoot")

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal(content, &decoded))
	assert.Equal(t, almanac.ModeRanges, decoded.Mode)

	// The written file loads back through the koanf loader.
	cfg, err := config.LoadConfig("seedmap.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultWorkers, cfg.Workers)
	config.ResetConfig()
}
