package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/compgen/internal/parser"
	"github.com/dgallion1/compgen/internal/synth"
)

type parseRequest struct {
	Markdown string `json:"markdown"`
}

// handleParse runs the assembler once over a complete response.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	res, err := s.parser.Parse(req.Markdown)
	if errors.Is(err, parser.ErrMalformed) {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type previewRequest struct {
	Code string `json:"code"`
}

type previewResponse struct {
	Name        string `json:"name"`
	Strategy    string `json:"strategy"`
	PreviewCode string `json:"previewCode"`
	RenderCall  string `json:"renderCall"`
	Fallback    string `json:"fallback,omitempty"`
}

// handlePreview synthesizes a standalone definition from a code fragment.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	def := synth.Synthesize(req.Code)
	resp := previewResponse{
		Name:        def.Name,
		Strategy:    def.Strategy.String(),
		PreviewCode: def.String(),
		RenderCall:  def.RenderCall(),
	}
	if def.Err != nil {
		resp.Fallback = def.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
