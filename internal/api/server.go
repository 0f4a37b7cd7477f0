// Package api exposes the file ingestion HTTP interface: uploads,
// extraction triggers, record queries, and owner-scoped deletion.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seonho/docvault/internal/pipeline"
	"github.com/seonho/docvault/internal/repository"
	"github.com/seonho/docvault/internal/storage"
)

type Server struct {
	store    storage.ObjectStorage
	repo     repository.FileRepository
	pipeline *pipeline.Pipeline
}

func NewServer(store storage.ObjectStorage, repo repository.FileRepository, pl *pipeline.Pipeline) *Server {
	return &Server{
		store:    store,
		repo:     repo,
		pipeline: pl,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		r.Route("/files", func(r chi.Router) {
			r.Post("/", s.uploadFile)
			r.Get("/", s.listFiles)
			r.Get("/stats", s.getFileStats)
			r.Post("/extract", s.triggerExtraction)
			r.Get("/{id}", s.getFile)
			r.Delete("/{id}", s.deleteFile)
		})
		r.Route("/users/{userID}/files", func(r chi.Router) {
			r.Get("/", s.listUserFiles)
			r.Delete("/", s.deleteUserFiles)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
