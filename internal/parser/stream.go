package parser

import (
	"reflect"
	"strings"

	"github.com/dgallion1/compgen/internal/record"
)

// State is the lifecycle position of a Stream.
type State int

const (
	StateAccumulating State = iota // no valid component yet
	StatePartial                   // at least one component parsed
	StateComplete                  // closed with an analysis present
)

func (s State) String() string {
	switch s {
	case StatePartial:
		return "partial"
	case StateComplete:
		return "complete"
	default:
		return "accumulating"
	}
}

// Stream accumulates text deltas and reparses after each one. Parse failures
// on intermediate text are swallowed; the last good Result is kept.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	p        *Parser
	buf      strings.Builder
	last     *record.Result
	state    State
	closed   bool
	failures int
}

// NewStream returns a Stream backed by p, or by the default Parser if p is
// nil.
func NewStream(p *Parser) *Stream {
	if p == nil {
		p = defaultParser
	}
	return &Stream{p: p}
}

// Feed appends chunk and reparses. It returns the latest good Result and
// whether it differs from the one previously returned. Results with no
// components are never reported.
func (s *Stream) Feed(chunk string) (*record.Result, bool) {
	if s.closed || chunk == "" {
		return s.last, false
	}
	s.buf.WriteString(chunk)
	return s.reparse()
}

func (s *Stream) reparse() (*record.Result, bool) {
	res, err := s.p.Parse(s.buf.String())
	if err != nil {
		s.failures++
		return s.last, false
	}
	if len(res.Components) == 0 {
		return s.last, false
	}
	changed := s.last == nil || !reflect.DeepEqual(s.last, res)
	s.last = res
	if s.state == StateAccumulating {
		s.state = StatePartial
	}
	return res, changed
}

// Close marks the stream finished, runs a final parse and returns the best
// Result seen. It returns ErrNoComponents if no valid component was ever
// parsed.
func (s *Stream) Close() (*record.Result, error) {
	if !s.closed {
		s.closed = true
		s.reparse()
	}
	if s.last == nil {
		return nil, ErrNoComponents
	}
	if !s.last.Analysis.Empty() {
		s.state = StateComplete
	}
	return s.last, nil
}

// State reports the current lifecycle state.
func (s *Stream) State() State { return s.state }

// Text returns everything fed so far.
func (s *Stream) Text() string { return s.buf.String() }

// Failures counts intermediate parses that returned an error.
func (s *Stream) Failures() int { return s.failures }
