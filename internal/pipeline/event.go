package pipeline

import (
	"time"

	"github.com/dgallion1/compgen/internal/record"
)

// EventType names a progress event of a generation.
type EventType string

const (
	EventStart EventType = "start"
	EventChunk EventType = "chunk"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// Event is one progress notification. Chunk and done events carry the full
// current result, never a diff.
type Event struct {
	Type      EventType      `json:"type"`
	ID        string         `json:"id,omitempty"`
	Message   string         `json:"message,omitempty"`
	Prompt    string         `json:"prompt,omitempty"`
	Data      *record.Result `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	Details   string         `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Emitter delivers events to the requester. A non-nil error aborts the
// generation.
type Emitter func(Event) error
