package commands

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/seedmap/internal/almanac"
	clitest "github.com/leapstack-labs/seedmap/internal/cli/testutil"
	"github.com/leapstack-labs/seedmap/internal/engine"
	"github.com/leapstack-labs/seedmap/internal/testutil"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		RunID:     "5f0c6d3e-0000-4000-8000-000000000000",
		Path:      "almanac.txt",
		Mode:      almanac.ModeRanges,
		Answer:    1234567,
		Chain:     []string{"seed", "soil", "location"},
		Stages:    2,
		Triples:   1500,
		Inputs:    10,
		Values:    2_000_000_000,
		Fragments: 12,
		Workers:   1,
		Duration:  1500 * time.Microsecond,
	}
}

func TestRenderSolve_Modes(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		tr := clitest.NewTestRendererText()
		require.NoError(t, renderSolve(tr.Renderer, sampleResult()))

		got := clitest.StripANSI(tr.Output())
		assert.Contains(t, got, "Lowest location: 1,234,567")
		assert.Contains(t, got, "1,500 triples")
		assert.Contains(t, got, "2,000,000,000 values")
		assert.Contains(t, got, "seed → soil → location")
	})

	t.Run("markdown", func(t *testing.T) {
		tr := clitest.NewTestRendererMarkdown()
		require.NoError(t, renderSolve(tr.Renderer, sampleResult()))

		got := tr.Output()
		clitest.AssertNoANSI(t, got)
		clitest.AssertValidMarkdown(t, got)
		assert.Contains(t, got, "- **Answer**: 1234567")
		assert.Contains(t, got, "- **Fragments**: 12")
	})

	t.Run("json", func(t *testing.T) {
		tr := clitest.NewTestRendererJSON()
		require.NoError(t, renderSolve(tr.Renderer, sampleResult()))

		var got SolveOutput
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
		assert.Equal(t, uint64(1234567), got.Answer)
		assert.InDelta(t, 1.5, got.DurationMS, 0.001)
	})

	t.Run("cached", func(t *testing.T) {
		res := sampleResult()
		res.Cached = true
		tr := clitest.NewTestRendererMarkdown()
		require.NoError(t, renderSolve(tr.Renderer, res))
		assert.Contains(t, tr.Output(), "(reused)")
		assert.NotContains(t, tr.Output(), "Fragments")
	})
}

func TestTraceMarkdownTable(t *testing.T) {
	loadTestConfig(t, "output: markdown\n")
	path := testutil.WriteSample(t)

	out, _, err := execute(t, NewTraceCommand(), path, "55")
	require.NoError(t, err)
	clitest.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "- **Location**: 86")
}
