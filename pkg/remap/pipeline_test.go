package remap

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samplePipeline is the seven-stage pipeline of the standard almanac sample.
func samplePipeline(t *testing.T) *Pipeline {
	t.Helper()
	return NewPipeline(
		mustTable(t, "seed-to-soil", Triple{50, 98, 2}, Triple{52, 50, 48}),
		mustTable(t, "soil-to-fertilizer", Triple{0, 15, 37}, Triple{37, 52, 2}, Triple{39, 0, 15}),
		mustTable(t, "fertilizer-to-water", Triple{49, 53, 8}, Triple{0, 11, 42}, Triple{42, 0, 7}, Triple{57, 7, 4}),
		mustTable(t, "water-to-light", Triple{88, 18, 7}, Triple{18, 25, 70}),
		mustTable(t, "light-to-temperature", Triple{45, 77, 23}, Triple{81, 45, 19}, Triple{68, 64, 13}),
		mustTable(t, "temperature-to-humidity", Triple{0, 69, 1}, Triple{1, 0, 69}),
		mustTable(t, "humidity-to-location", Triple{60, 56, 37}, Triple{56, 93, 4}),
	)
}

func TestPipeline_MinimumReachable_SampleRanges(t *testing.T) {
	p := samplePipeline(t)

	got, err := p.MinimumReachable([]Interval{{79, 93}, {55, 68}})
	require.NoError(t, err)
	assert.Equal(t, uint64(46), got)
}

func TestPipeline_MinimumReachable_SamplePoints(t *testing.T) {
	p := samplePipeline(t)

	var in []Interval
	for _, seed := range []uint64{79, 14, 55, 13} {
		pt, err := Point(seed)
		require.NoError(t, err)
		in = append(in, pt)
	}

	got, err := p.MinimumReachable(in)
	require.NoError(t, err)
	assert.Equal(t, uint64(35), got)
}

func TestPipeline_LookupScalar_Sample(t *testing.T) {
	p := samplePipeline(t)

	tests := map[uint64]uint64{79: 82, 14: 43, 55: 86, 13: 35}
	for seed, want := range tests {
		assert.Equal(t, want, p.LookupScalar(seed), "seed %d", seed)
	}
}

func TestPipeline_Trace(t *testing.T) {
	p := samplePipeline(t)
	assert.Equal(t, []uint64{79, 81, 81, 81, 74, 78, 78, 82}, p.Trace(79))
	assert.Equal(t, []uint64{14, 14, 53, 49, 42, 42, 43, 43}, p.Trace(14))
}

func TestPipeline_MinimumReachable_Empty(t *testing.T) {
	p := samplePipeline(t)

	tests := []struct {
		name string
		in   []Interval
	}{
		{name: "nil", in: nil},
		{name: "no intervals", in: []Interval{}},
		{name: "all degenerate", in: []Interval{{5, 5}, {10, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.MinimumReachable(tt.in)
			assert.ErrorIs(t, err, ErrEmptyInputSet)
		})
	}
}

func TestPipeline_NoStagesIsIdentity(t *testing.T) {
	p := NewPipeline()

	in := []Interval{{30, 40}, {3, 3}, {10, 20}}
	assert.Equal(t, []Interval{{10, 20}, {30, 40}}, p.Propagate(in))

	got, err := p.MinimumReachable(in)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got)
	assert.Equal(t, uint64(7), p.LookupScalar(7))
}

func TestPipeline_ScalarIntervalEquivalence(t *testing.T) {
	sample := samplePipeline(t)
	for v := uint64(0); v < 120; v++ {
		got, err := sample.PropagateScalar(v)
		require.NoError(t, err)
		require.Equal(t, sample.LookupScalar(v), got, "value %d", v)
	}

	rng := rand.New(rand.NewPCG(11, 12))
	var stages []*Table
	for range 6 {
		stages = append(stages, randomTable(t, rng, 3000))
	}
	p := NewPipeline(stages...)
	for range 2000 {
		v := rng.Uint64N(6000)
		got, err := p.PropagateScalar(v)
		require.NoError(t, err)
		require.Equal(t, p.LookupScalar(v), got, "value %d", v)
	}
}

func TestPipeline_PropagateScalar_MaxUint64(t *testing.T) {
	_, err := samplePipeline(t).PropagateScalar(math.MaxUint64)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestPipeline_Propagate_CoverageConservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	var stages []*Table
	for range 7 {
		stages = append(stages, randomTable(t, rng, 2000))
	}
	p := NewPipeline(stages...)

	in := []Interval{{0, 500}, {700, 1900}, {2500, 2600}}
	assert.Equal(t, TotalLen(in), TotalLen(p.Propagate(in)))
}

func TestPipeline_MinimumReachable_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(15, 16))
	var stages []*Table
	for range 5 {
		stages = append(stages, randomTable(t, rng, 1500))
	}
	p := NewPipeline(stages...)

	in := []Interval{{100, 400}, {900, 1000}, {1600, 1700}}
	want := uint64(math.MaxUint64)
	for _, iv := range in {
		for v := iv.Start; v < iv.End; v++ {
			want = min(want, p.LookupScalar(v))
		}
	}

	got, err := p.MinimumReachable(in)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPipeline_HugeRanges(t *testing.T) {
	p := NewPipeline(
		mustTable(t, "a", Triple{0, 1 << 40, 1 << 39}),
		mustTable(t, "b", Triple{1 << 50, 0, 1 << 20}),
	)

	got, err := p.MinimumReachable([]Interval{{1 << 39, 1 << 41}})
	require.NoError(t, err)
	// [2^40, 2^40+2^39) lands on [0, 2^39); its head [0, 2^20) is then moved
	// to 2^50, leaving 2^20 as the smallest value.
	assert.Equal(t, uint64(1<<20), got)
}

func TestPipeline_StagesAreCopied(t *testing.T) {
	a := mustTable(t, "a", Triple{100, 0, 10})
	stages := []*Table{a}
	p := NewPipeline(stages...)
	stages[0] = nil

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, "a", p.Stages()[0].Name())
	assert.Equal(t, uint64(105), p.LookupScalar(5))
}

func TestPipeline_MinimumReachableConcurrent(t *testing.T) {
	p := samplePipeline(t)
	in := []Interval{{79, 93}, {55, 68}, {0, 0}}

	for _, workers := range []int{0, 1, 2, 8} {
		got, err := p.MinimumReachableConcurrent(context.Background(), in, workers)
		require.NoError(t, err)
		assert.Equal(t, uint64(46), got, "workers=%d", workers)
	}

	rng := rand.New(rand.NewPCG(17, 18))
	var stages []*Table
	for range 7 {
		stages = append(stages, randomTable(t, rng, 5000))
	}
	rp := NewPipeline(stages...)
	var many []Interval
	for range 64 {
		s := rng.Uint64N(5000)
		many = append(many, Interval{Start: s, End: s + 1 + rng.Uint64N(500)})
	}
	want, err := rp.MinimumReachable(many)
	require.NoError(t, err)
	got, err := rp.MinimumReachableConcurrent(context.Background(), many, 4)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPipeline_ReachConcurrent_CountsFragments(t *testing.T) {
	p := samplePipeline(t)
	in := []Interval{{79, 93}, {55, 68}, {0, 0}}
	want := len(p.Propagate(in))

	for _, workers := range []int{0, 1, 3} {
		got, err := p.ReachConcurrent(context.Background(), in, workers)
		require.NoError(t, err)
		assert.Equal(t, Reach{Min: 46, Fragments: want}, got, "workers=%d", workers)
	}

	_, err := p.ReachConcurrent(context.Background(), nil, 2)
	assert.ErrorIs(t, err, ErrEmptyInputSet)
}

func TestPipeline_MinimumReachableConcurrent_Errors(t *testing.T) {
	p := samplePipeline(t)

	_, err := p.MinimumReachableConcurrent(context.Background(), []Interval{{4, 4}}, 2)
	assert.ErrorIs(t, err, ErrEmptyInputSet)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.MinimumReachableConcurrent(ctx, []Interval{{79, 93}}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_PropagateEach(t *testing.T) {
	p := samplePipeline(t)

	var names []string
	var sizes []int
	out := p.PropagateEach([]Interval{{79, 93}, {55, 68}}, func(i int, st *Table, out []Interval) {
		assert.Equal(t, len(names), i)
		names = append(names, st.Name())
		sizes = append(sizes, len(out))
	})

	assert.Equal(t, []string{
		"seed-to-soil", "soil-to-fertilizer", "fertilizer-to-water", "water-to-light",
		"light-to-temperature", "temperature-to-humidity", "humidity-to-location",
	}, names)
	assert.Equal(t, len(out), sizes[len(sizes)-1])
	assert.Equal(t, uint64(27), TotalLen(out))
}
