package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/compgen/internal/pipeline"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleComponentsInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Component generation API: post a prompt, receive streamed components",
		"model":   s.runner.Model(),
		"usage": map[string]any{
			"method":      "POST",
			"contentType": "application/json",
			"body":        map[string]string{"prompt": "description of the components to generate"},
			"response":    "text/event-stream of start, chunk, done and error events",
		},
	})
}

// handleGenerate streams a generation as server-sent events.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		jsonError(w, "prompt is required", http.StatusBadRequest)
		return
	}

	gen := pipeline.NewGeneration(req.Prompt, s.runner.Model())
	sse := &sseWriter{w: w, rc: http.NewResponseController(w)}
	// The server-wide write timeout is shorter than a generation.
	_ = sse.rc.SetWriteDeadline(time.Now().Add(s.cfg.StreamTimeout + 30*time.Second))

	err := s.runner.Run(r.Context(), gen, sse.emit)
	if errors.Is(err, pipeline.ErrBusy) {
		w.Header().Set("Retry-After", "5")
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	// Other failures were delivered as error events.
}

// sseWriter writes events as "event: <type>\ndata: <json>\n\n" frames.
// Headers are sent with the first event so a rejected generation can still
// answer with a plain JSON error.
type sseWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

func (s *sseWriter) emit(e pipeline.Event) error {
	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("flush event: %w", err)
	}
	return nil
}

func (s *Server) handleGeneration(w http.ResponseWriter, r *http.Request) {
	gen, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		jsonError(w, "generation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, gen.Snapshot())
}
