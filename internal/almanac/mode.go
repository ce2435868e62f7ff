package almanac

import (
	"fmt"
	"strings"
)

// Mode selects how the seeds line is read.
type Mode string

const (
	// ModePoints treats every number on the seeds line as one seed.
	ModePoints Mode = "points"
	// ModeRanges reads the seeds line as (start, length) pairs.
	ModeRanges Mode = "ranges"
)

// Modes lists the accepted modes.
var Modes = []Mode{ModePoints, ModeRanges}

// ParseMode parses a mode name. "part1" and "part2" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "points", "point", "part1", "1":
		return ModePoints, nil
	case "ranges", "range", "part2", "2":
		return ModeRanges, nil
	}
	return "", fmt.Errorf("unknown mode %q (expected points or ranges)", s)
}

// UnmarshalText implements encoding.TextUnmarshaler so config decoding
// validates the value.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Mode) String() string {
	return string(m)
}
