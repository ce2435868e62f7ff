// Package almanac parses the almanac text format into seeds and remapping
// stages, and assembles them into a remap.Pipeline.
//
// The format is a "seeds:" line followed by blank-line separated blocks, each
// opened by a "<from>-to-<to> map:" header and holding one
// "<dest> <src> <len>" triple per line.
package almanac

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/seedmap/internal/dag"
	"github.com/leapstack-labs/seedmap/pkg/remap"
)

const (
	seedsPrefix  = "seeds:"
	headerSuffix = " map:"
	nameSep      = "-to-"
	maxLineBytes = 1 << 20
)

// ErrSyntax is wrapped by every *ParseError.
var ErrSyntax = errors.New("almanac syntax error")

// ParseError reports a problem at a specific line of the input.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Unwrap lets errors.Is match ErrSyntax.
func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

// Stage is one map block in declaration order.
type Stage struct {
	Name    string
	From    string
	To      string
	Line    int
	Triples []remap.Triple
}

// Almanac is a parsed almanac.
type Almanac struct {
	File   string
	Seeds  []uint64
	Stages []Stage
	// Chain holds the categories from first source to last destination.
	// It is empty when the chain check was skipped.
	Chain []string
}

// Options control parsing.
type Options struct {
	// File is used in error messages.
	File string
	// SkipChainCheck accepts stages whose names do not form a
	// "<a>-to-<b>", "<b>-to-<c>", ... chain.
	SkipChainCheck bool
}

// ParseString parses an almanac held in memory.
func ParseString(s string) (*Almanac, error) {
	return Parse(strings.NewReader(s), Options{})
}

// ParseFile reads and parses the almanac at path.
func ParseFile(path string, opts Options) (*Almanac, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open almanac: %w", err)
	}
	defer f.Close()

	if opts.File == "" {
		opts.File = path
	}
	return Parse(f, opts)
}

// Parse reads an almanac from r.
func Parse(r io.Reader, opts Options) (*Almanac, error) {
	p := &parser{alm: &Almanac{File: opts.File}, file: opts.File}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read almanac: %w", err)
	}

	if !p.seenSeeds {
		return nil, p.errorf(0, "missing %q line", seedsPrefix)
	}
	if !opts.SkipChainCheck {
		if err := p.checkChain(); err != nil {
			return nil, err
		}
	}
	return p.alm, nil
}

type parser struct {
	alm       *Almanac
	file      string
	line      int
	seenSeeds bool
	current   *Stage
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &ParseError{File: p.file, Line: line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseLine(line string) error {
	switch {
	case line == "":
		p.current = nil
		return nil

	case strings.HasPrefix(line, seedsPrefix):
		if p.seenSeeds {
			return p.errorf(p.line, "duplicate %q line", seedsPrefix)
		}
		if len(p.alm.Stages) > 0 {
			return p.errorf(p.line, "%q line must precede every map", seedsPrefix)
		}
		seeds, err := p.parseNumbers(strings.TrimPrefix(line, seedsPrefix))
		if err != nil {
			return err
		}
		p.alm.Seeds = seeds
		p.seenSeeds = true
		return nil

	case strings.HasSuffix(line, headerSuffix):
		if !p.seenSeeds {
			return p.errorf(p.line, "map header before %q line", seedsPrefix)
		}
		name := strings.TrimSpace(strings.TrimSuffix(line, headerSuffix))
		if name == "" {
			return p.errorf(p.line, "map header without a name")
		}
		st := Stage{Name: name, Line: p.line}
		if from, to, ok := strings.Cut(name, nameSep); ok {
			st.From, st.To = from, to
		}
		p.alm.Stages = append(p.alm.Stages, st)
		p.current = &p.alm.Stages[len(p.alm.Stages)-1]
		return nil

	default:
		if p.current == nil {
			return p.errorf(p.line, "unexpected line %q outside a map block", line)
		}
		nums, err := p.parseNumbers(line)
		if err != nil {
			return err
		}
		if len(nums) != 3 {
			return p.errorf(p.line, "map row needs 3 numbers (dest src len), got %d", len(nums))
		}
		p.current.Triples = append(p.current.Triples, remap.Triple{Dest: nums[0], Src: nums[1], Len: nums[2]})
		return nil
	}
}

func (p *parser) parseNumbers(s string) ([]uint64, error) {
	fields := strings.Fields(s)
	nums := make([]uint64, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "-") {
			return nil, p.errorf(p.line, "negative value %s", f)
		}
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			var numErr *strconv.NumError
			if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
				return nil, p.errorf(p.line, "value %s exceeds uint64", f)
			}
			return nil, p.errorf(p.line, "invalid number %q", f)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

// checkChain verifies that the declared stages form one linear chain of
// categories in declaration order.
func (p *parser) checkChain() error {
	g := dag.NewGraph()
	for _, st := range p.alm.Stages {
		if st.From == "" || st.To == "" {
			return p.errorf(st.Line, "map %q is not named <from>%s<to>", st.Name, nameSep)
		}
		if err := g.AddStage(st.From, st.To, st.Name); err != nil {
			return p.errorf(st.Line, "%v", err)
		}
	}

	chain, err := g.Chain()
	if err != nil {
		return p.errorf(0, "maps do not form a chain: %v", err)
	}
	for i, st := range p.alm.Stages {
		if chain[i] != st.From || chain[i+1] != st.To {
			return p.errorf(st.Line, "map %q is out of order, expected %s%s%s", st.Name, chain[i], nameSep, chain[i+1])
		}
	}
	p.alm.Chain = chain
	return nil
}
