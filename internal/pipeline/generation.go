package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/compgen/internal/record"
)

// Status represents the state of a generation.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusStreaming Status = "streaming"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Generation tracks one prompt-to-components request.
type Generation struct {
	mu sync.Mutex

	ID     string
	Prompt string
	Model  string

	status  Status
	deltas  int
	bytes   int
	updates int
	result  *record.Result
	err     string
	hash    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGeneration returns a queued generation with a fresh id.
func NewGeneration(prompt, model string) *Generation {
	now := time.Now()
	return &Generation{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		Model:     model,
		status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates generation status atomically.
func (g *Generation) SetStatus(status Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = status
	g.UpdatedAt = time.Now()
}

// Status returns the current status.
func (g *Generation) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// AddDelta records one received text delta of n bytes.
func (g *Generation) AddDelta(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deltas++
	g.bytes += n
	g.UpdatedAt = time.Now()
}

// SetResult stores the latest successful parse.
func (g *Generation) SetResult(res *record.Result) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.result = res
	g.updates++
	g.UpdatedAt = time.Now()
}

// Result returns the latest successful parse, or nil.
func (g *Generation) Result() *record.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// Complete marks the generation finished with its final result and the
// hash of the full model text.
func (g *Generation) Complete(res *record.Result, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.result = res
	g.hash = ContentHashHex([]byte(text))
	g.status = StatusCompleted
	g.UpdatedAt = time.Now()
}

// Fail marks the generation failed. Any partial result is kept.
func (g *Generation) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err.Error()
	g.status = StatusFailed
	g.UpdatedAt = time.Now()
}

// Progress counts stream activity.
type Progress struct {
	Deltas     int `json:"deltas"`
	Bytes      int `json:"bytes"`
	Updates    int `json:"updates"`
	Components int `json:"components"`
}

// GenerationSnapshot is a read-only, JSON-safe copy of generation state.
type GenerationSnapshot struct {
	ID          string         `json:"id"`
	Prompt      string         `json:"prompt"`
	Model       string         `json:"model"`
	Status      Status         `json:"status"`
	Progress    Progress       `json:"progress"`
	Result      *record.Result `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	ContentHash string         `json:"content_hash,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the generation state.
func (g *Generation) Snapshot() GenerationSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	components := 0
	if g.result != nil {
		components = len(g.result.Components)
	}
	return GenerationSnapshot{
		ID:     g.ID,
		Prompt: g.Prompt,
		Model:  g.Model,
		Status: g.status,
		Progress: Progress{
			Deltas:     g.deltas,
			Bytes:      g.bytes,
			Updates:    g.updates,
			Components: components,
		},
		Result:      g.result,
		Error:       g.err,
		ContentHash: g.hash,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
