package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/seedmap/internal/cli/config"
	"github.com/leapstack-labs/seedmap/internal/testutil"
)

func TestRunsCommand(t *testing.T) {
	loadTestConfig(t, "output: markdown\nstate_path: runs.db\n")
	path := testutil.WriteSample(t)

	out, _, err := execute(t, NewRunsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "# Runs (0)")
	assert.Contains(t, out, "No runs recorded yet")

	_, _, err = execute(t, NewSolveCommand(), path)
	require.NoError(t, err)
	bad := testutil.WriteFile(t, "bad.txt", "seeds: x\n")
	_, _, err = execute(t, NewSolveCommand(), bad)
	require.Error(t, err)

	out, _, err = execute(t, NewRunsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "# Runs (2)")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "46")

	out, _, err = execute(t, NewRunsCommand(), "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "# Runs (1)")
	assert.Contains(t, out, "failed")
}

func TestRunsCommand_JSON(t *testing.T) {
	loadTestConfig(t, "output: json\nmode: points\nstate_path: runs.db\n")
	path := testutil.WriteSample(t)

	_, _, err := execute(t, NewSolveCommand(), path)
	require.NoError(t, err)

	out, _, err := execute(t, NewRunsCommand())
	require.NoError(t, err)

	var got []RunEntry
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "completed", got[0].Status)
	assert.Equal(t, "points", got[0].Mode)
	require.NotNil(t, got[0].Answer)
	assert.Equal(t, uint64(35), *got[0].Answer)
	assert.Len(t, got[0].InputHash, 64)
	assert.NotNil(t, got[0].CompletedAt)
}

func TestRunsCommand_IgnoresRecordSetting(t *testing.T) {
	loadTestConfig(t, "output: markdown\nrecord: false\nstate_path: runs.db\n")
	assert.False(t, config.GetCurrentConfig().Record)

	out, _, err := execute(t, NewRunsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "# Runs (0)")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", shortID("0123abcd-4567-89ef"))
	assert.Equal(t, "abc", shortID("abc"))
}
