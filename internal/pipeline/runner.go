package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/compgen/internal/llm"
	"github.com/dgallion1/compgen/internal/parser"
	"github.com/dgallion1/compgen/internal/record"
)

// ErrBusy reports that every generation slot is in use.
var ErrBusy = errors.New("too many concurrent generations")

// Runner drives a model stream through the incremental parser and reports
// progress events.
type Runner struct {
	llm     llm.Streamer
	parser  *parser.Parser
	store   *Store
	log     *slog.Logger
	sem     chan struct{}
	timeout time.Duration
	backoff func(attempt int) time.Duration
}

func NewRunner(s llm.Streamer, p *parser.Parser, store *Store, log *slog.Logger, maxConcurrent int, timeout time.Duration) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Runner{
		llm:     s,
		parser:  p,
		store:   store,
		log:     log,
		sem:     make(chan struct{}, maxConcurrent),
		timeout: timeout,
		backoff: llm.Backoff,
	}
}

// Model names the backing model.
func (r *Runner) Model() string { return r.llm.Model() }

// Run executes gen to completion. It returns ErrBusy without emitting
// anything when no slot is free. Otherwise it emits start, a chunk for every
// changed result, and finally done or error.
func (r *Runner) Run(ctx context.Context, gen *Generation, emit Emitter) error {
	select {
	case r.sem <- struct{}{}:
	default:
		return ErrBusy
	}
	defer func() { <-r.sem }()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log := r.log.With("generation_id", gen.ID)
	r.store.Put(gen)

	if err := emit(Event{
		Type:      EventStart,
		ID:        gen.ID,
		Message:   "Started processing user requirements",
		Prompt:    gen.Prompt,
		Timestamp: time.Now(),
	}); err != nil {
		gen.Fail(err)
		return err
	}
	gen.SetStatus(StatusStreaming)
	log.Info("generation started", "model", gen.Model)

	stream := parser.NewStream(r.parser)
	if err := r.stream(ctx, log, gen, stream, emit); err != nil {
		gen.Fail(err)
		log.Error("generation failed", "error", err, "parse_failures", stream.Failures())
		r.emitError(log, gen, emit, "LLM stream failed", err)
		return err
	}

	res, err := stream.Close()
	if err != nil {
		gen.Fail(err)
		log.Error("no components parsed", "bytes", len(stream.Text()), "parse_failures", stream.Failures())
		r.emitError(log, gen, emit, "No components could be parsed", err)
		return err
	}
	gen.Complete(res, stream.Text())
	if c := res.Analysis.EstimatedComplexity; c != "" && !record.KnownComplexity(c) {
		log.Warn("unrecognized complexity estimate", "value", c)
	}
	log.Info("generation complete",
		"components", len(res.Components),
		"state", stream.State().String(),
	)

	return emit(Event{
		Type:      EventDone,
		ID:        gen.ID,
		Data:      res,
		Timestamp: time.Now(),
	})
}

// stream runs the model, retrying retryable failures only while no delta
// has been received.
func (r *Runner) stream(ctx context.Context, log *slog.Logger, gen *Generation, stream *parser.Stream, emit Emitter) error {
	req := llm.NewRequest(gen.Prompt)
	received := false
	onDelta := func(d string) error {
		received = true
		gen.AddDelta(len(d))
		res, changed := stream.Feed(d)
		if !changed {
			return nil
		}
		gen.SetResult(res)
		return emit(Event{
			Type:      EventChunk,
			ID:        gen.ID,
			Data:      res,
			Timestamp: time.Now(),
		})
	}

	var lastErr error
	for attempt := range llm.MaxRetries {
		lastErr = r.llm.Stream(ctx, req, onDelta)
		if lastErr == nil || received || !llm.IsRetryable(lastErr) || attempt == llm.MaxRetries-1 {
			break
		}
		log.Warn("retryable llm error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return fmt.Errorf("waiting to retry: %w", ctx.Err())
		}
	}
	return lastErr
}

func (r *Runner) emitError(log *slog.Logger, gen *Generation, emit Emitter, msg string, err error) {
	if emitErr := emit(Event{
		Type:      EventError,
		ID:        gen.ID,
		Error:     msg,
		Details:   err.Error(),
		Timestamp: time.Now(),
	}); emitErr != nil {
		log.Warn("error event not delivered", "error", emitErr)
	}
}
