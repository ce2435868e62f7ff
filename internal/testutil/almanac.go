package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleAlmanac is the standard seven-stage sample. Its lowest location is 35
// when seeds are points and 46 when they are ranges.
const SampleAlmanac = `seeds: 79 14 55 13

seed-to-soil map:
50 98 2
52 50 48

soil-to-fertilizer map:
0 15 37
37 52 2
39 0 15

fertilizer-to-water map:
49 53 8
0 11 42
42 0 7
57 7 4

water-to-light map:
88 18 7
18 25 70

light-to-temperature map:
45 77 23
81 45 19
68 64 13

temperature-to-humidity map:
0 69 1
1 0 69

humidity-to-location map:
60 56 37
56 93 4
`

// WriteFile writes content to name inside a fresh temp dir and returns the path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteSample writes SampleAlmanac to a temp file and returns its path.
func WriteSample(t testing.TB) string {
	t.Helper()
	return WriteFile(t, "almanac.txt", SampleAlmanac)
}
