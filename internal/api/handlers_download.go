package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/compgen/internal/archive"
	"github.com/dgallion1/compgen/internal/record"
)

type downloadRequest struct {
	Components []record.Component `json:"components"`
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.writeArchive(w, req.Components)
}

// handleGenerationDownload packages the latest result of a stored generation.
func (s *Server) handleGenerationDownload(w http.ResponseWriter, r *http.Request) {
	gen, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		jsonError(w, "generation not found", http.StatusNotFound)
		return
	}
	res := gen.Result()
	if res == nil {
		jsonError(w, "generation has no components yet", http.StatusConflict)
		return
	}
	s.writeArchive(w, res.Components)
}

func (s *Server) writeArchive(w http.ResponseWriter, comps []record.Component) {
	var buf bytes.Buffer
	err := archive.Write(&buf, comps)
	if errors.Is(err, archive.ErrEmpty) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("archive failed", "error", err, "components", len(comps))
		jsonError(w, "failed to build archive", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
