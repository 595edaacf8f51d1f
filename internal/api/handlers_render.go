package api

import (
	"encoding/json"
	"net/http"

	"github.com/quillmark/quillmark/internal/document"
)

// renderRequest is a synchronous annotation request over raw text.
type renderRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// handleRender annotates an in-request document body without queueing a
// job. Intended for previews and small documents.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Body == "" {
		jsonError(w, "body is required", http.StatusBadRequest)
		return
	}

	doc := &document.Document{Title: req.Title, Body: req.Body}
	annotated, diag := s.renderer.Annotate(s.scanner, doc)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"result":  annotated,
		"skipped": diag.Skipped,
	})
}
