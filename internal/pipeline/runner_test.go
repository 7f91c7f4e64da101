package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/compgen/internal/llm"
	"github.com/dgallion1/compgen/internal/parser"
)

const response = "# Component: Badge\n## ID: badge\n## Name: Badge\n## Code:\n```tsx\n" +
	"const Badge = ({ text }) => <span>{text}</span>;\n```\n---\n" +
	"# Analysis: x\n## Summary: One badge.\n"

// scriptedStreamer replays one scripted outcome per call.
type scriptedStreamer struct {
	mu    sync.Mutex
	calls int
	runs  []scriptedRun
	gate  chan struct{}
}

type scriptedRun struct {
	deltas []string
	err    error
}

func (s *scriptedStreamer) Stream(ctx context.Context, _ llm.Request, onDelta func(string) error) error {
	s.mu.Lock()
	run := s.runs[min(s.calls, len(s.runs)-1)]
	s.calls++
	s.mu.Unlock()

	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, d := range run.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return run.err
}

func (s *scriptedStreamer) Model() string { return "scripted" }
func (s *scriptedStreamer) Close()        {}

func chunked(s string, size int) []string {
	var out []string
	for i := 0; i < len(s); i += size {
		out = append(out, s[i:min(i+size, len(s))])
	}
	return out
}

func newTestRunner(s llm.Streamer, maxConcurrent int) *Runner {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	r := NewRunner(s, parser.New(parser.Options{}), NewStore(16, time.Hour), log, maxConcurrent, time.Minute)
	r.backoff = func(int) time.Duration { return time.Millisecond }
	return r
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emit(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestRunner_StreamsToDone(t *testing.T) {
	s := &scriptedStreamer{runs: []scriptedRun{{deltas: chunked(response, 9)}}}
	r := newTestRunner(s, 2)
	gen := NewGeneration("a badge", r.Model())

	var rec recorder
	if err := r.Run(context.Background(), gen, rec.emit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	types := rec.types()
	if types[0] != EventStart || types[len(types)-1] != EventDone {
		t.Fatalf("expected start ... done, got %v", types)
	}
	chunks := 0
	for _, typ := range types {
		if typ == EventChunk {
			chunks++
		}
	}
	if chunks == 0 {
		t.Error("expected at least one chunk event")
	}

	done := rec.events[len(rec.events)-1]
	if done.Data == nil || len(done.Data.Components) != 1 || done.Data.Components[0].Name != "Badge" {
		t.Fatalf("unexpected final data: %+v", done.Data)
	}
	if done.Data.Analysis.Summary != "One badge." {
		t.Errorf("expected analysis in final data, got %+v", done.Data.Analysis)
	}
	if rec.events[0].Prompt != "a badge" {
		t.Errorf("expected the prompt on the start event, got %q", rec.events[0].Prompt)
	}

	stored, ok := r.store.Get(gen.ID)
	if !ok {
		t.Fatal("expected the generation to be stored")
	}
	snap := stored.Snapshot()
	if snap.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", snap.Status)
	}
	if snap.Progress.Bytes != len(response) {
		t.Errorf("expected %d bytes, got %d", len(response), snap.Progress.Bytes)
	}
}

func TestRunner_NoComponentsIsTerminalError(t *testing.T) {
	s := &scriptedStreamer{runs: []scriptedRun{{deltas: []string{"I cannot help ", "with that."}}}}
	r := newTestRunner(s, 1)
	gen := NewGeneration("x", r.Model())

	var rec recorder
	err := r.Run(context.Background(), gen, rec.emit)
	if !errors.Is(err, parser.ErrNoComponents) {
		t.Fatalf("expected ErrNoComponents, got %v", err)
	}
	types := rec.types()
	if len(types) != 2 || types[1] != EventError {
		t.Fatalf("expected start then error, got %v", types)
	}
	if gen.Status() != StatusFailed {
		t.Errorf("expected failed, got %q", gen.Status())
	}
}

func TestRunner_RetriesBeforeFirstDelta(t *testing.T) {
	s := &scriptedStreamer{runs: []scriptedRun{
		{err: &llm.RetryableError{StatusCode: 503, Message: "busy"}},
		{deltas: []string{response}},
	}}
	r := newTestRunner(s, 1)

	var rec recorder
	if err := r.Run(context.Background(), NewGeneration("x", "m"), rec.emit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.calls != 2 {
		t.Errorf("expected 2 calls, got %d", s.calls)
	}
}

func TestRunner_NoRetryAfterFirstDelta(t *testing.T) {
	s := &scriptedStreamer{runs: []scriptedRun{
		{deltas: chunked(response, 40)[:2], err: &llm.RetryableError{StatusCode: 502, Message: "reset"}},
		{deltas: []string{response}},
	}}
	r := newTestRunner(s, 1)

	var rec recorder
	err := r.Run(context.Background(), NewGeneration("x", "m"), rec.emit)
	if !llm.IsRetryable(err) {
		t.Fatalf("expected the upstream error, got %v", err)
	}
	if s.calls != 1 {
		t.Errorf("expected 1 call, got %d", s.calls)
	}
	types := rec.types()
	if types[len(types)-1] != EventError {
		t.Errorf("expected a final error event, got %v", types)
	}
}

func TestRunner_GivesUpAfterMaxRetries(t *testing.T) {
	s := &scriptedStreamer{runs: []scriptedRun{{err: &llm.RetryableError{StatusCode: 429, Message: "slow down"}}}}
	r := newTestRunner(s, 1)

	var rec recorder
	if err := r.Run(context.Background(), NewGeneration("x", "m"), rec.emit); err == nil {
		t.Fatal("expected an error")
	}
	if s.calls != llm.MaxRetries {
		t.Errorf("expected %d calls, got %d", llm.MaxRetries, s.calls)
	}
}

func TestRunner_BusyWhenSlotsTaken(t *testing.T) {
	gate := make(chan struct{})
	s := &scriptedStreamer{runs: []scriptedRun{{deltas: []string{response}}}, gate: gate}
	r := newTestRunner(s, 1)

	started := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		errc <- r.Run(context.Background(), NewGeneration("first", "m"), func(e Event) error {
			if e.Type == EventStart {
				close(started)
			}
			return nil
		})
	}()
	<-started

	var rec recorder
	err := r.Run(context.Background(), NewGeneration("second", "m"), rec.emit)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if len(rec.types()) != 0 {
		t.Errorf("expected no events for a rejected generation, got %v", rec.types())
	}

	close(gate)
	if err := <-errc; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
}

func TestRunner_EmitErrorAborts(t *testing.T) {
	s := &scriptedStreamer{runs: []scriptedRun{{deltas: chunked(response, 9)}}}
	r := newTestRunner(s, 1)

	gone := errors.New("client gone")
	err := r.Run(context.Background(), NewGeneration("x", "m"), func(e Event) error {
		if e.Type == EventChunk {
			return gone
		}
		return nil
	})
	if !errors.Is(err, gone) {
		t.Fatalf("expected the emit error, got %v", err)
	}
	if !strings.Contains(err.Error(), "client gone") {
		t.Errorf("unexpected error text %q", err.Error())
	}
}
