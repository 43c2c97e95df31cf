package httpadapter

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// FixtureServer serves the same local CSV/JSON fixture files the
// fixtures.Adapter reads directly, over HTTP -- a test double standing in
// for a real provider's HTTP endpoint so the HTTP adapter path can be
// exercised without a network dependency.
type FixtureServer struct {
	router *chi.Mux
	root   string
}

// NewFixtureServer builds a FixtureServer rooted at dir.
func NewFixtureServer(dir string) *FixtureServer {
	s := &FixtureServer{router: chi.NewRouter(), root: dir}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/datasets/{datasetID}", s.handleDataset)
	return s
}

// ServeHTTP implements http.Handler.
func (s *FixtureServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *FixtureServer) handleDataset(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetID")

	for ext, contentType := range map[string]string{".csv": "text/csv", ".json": "application/json"} {
		path := filepath.Join(s.root, datasetID+ext)
		if data, err := os.ReadFile(path); err == nil {
			w.Header().Set("Content-Type", contentType)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			return
		}
	}

	http.Error(w, "dataset fixture not found", http.StatusNotFound)
}
