package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists published documents from the CMS.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	cms := s.orchestrator.CMSClient()
	if cms == nil {
		jsonError(w, "no cms is configured", http.StatusServiceUnavailable)
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	posts, err := cms.ListPosts(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusBadGateway)
		return
	}

	docs := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, map[string]any{
			"id":           p.ID,
			"slug":         p.Slug,
			"title":        p.Title,
			"content_hash": p.ContentHash,
			"updated_at":   p.UpdatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handleDeleteDocument removes a published document by slug.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	cms := s.orchestrator.CMSClient()
	if cms == nil {
		jsonError(w, "no cms is configured", http.StatusServiceUnavailable)
		return
	}

	slug := chi.URLParam(r, "docID")
	if err := cms.DeletePost(r.Context(), slug); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": slug})
}
