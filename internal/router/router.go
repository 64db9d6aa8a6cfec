package router

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"mediashelf/internal/api"
	"mediashelf/internal/config"
	"mediashelf/internal/entries"
	"mediashelf/internal/handler"
	"mediashelf/internal/store"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	Images  *store.Store
	Entries entries.Store
	Config  *config.Config
	Router  chi.Router
}

// New creates a Server with a fully configured chi router.
func New(images *store.Store, entryStore entries.Store, cfg *config.Config) *Server {
	s := &Server{Images: images, Entries: entryStore, Config: cfg}

	h := &handler.Handler{
		Images:  images,
		Entries: entryStore,
		Config:  cfg,
	}

	r := chi.NewRouter()

	// CORS — must be before other middleware to handle preflight OPTIONS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.RequestIDMiddleware)

	// Health check (no auth required).
	r.Get("/health", s.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(api.AuthMiddleware(cfg.AuthToken))

		r.Get("/images", h.ListImages)
		r.Post("/images", h.UploadImage)

		// Fixed paths must be registered before the {short_hash} wildcard.
		r.Get("/stats", h.GetStats)
		r.Get("/consistency", h.CheckConsistency)
		r.Get("/duplicates", h.ListDuplicates)
		r.Post("/duplicates/resolve", h.ResolveDuplicates)
		r.Post("/tags/reload", h.ReloadTags)
		r.Post("/cache/clear", h.ClearCache)

		r.Get("/images/{short_hash}", h.ShowImage)
		r.Delete("/images/{short_hash}", h.DeleteImage)
		r.Put("/images/{short_hash}/tags", h.SetImageTags)
		r.Post("/images/{short_hash}/entries/{entry_id}", h.AttachImage)
		r.Delete("/images/{short_hash}/entries/{entry_id}", h.DetachImage)
	})

	s.Router = r
	return s
}

// Health returns a simple health-check response.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}
