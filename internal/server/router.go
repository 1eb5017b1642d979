package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayush/notes-app/backend/internal/auth"
	"github.com/ayush/notes-app/backend/internal/httpx"
	"github.com/ayush/notes-app/backend/internal/logging"
	"github.com/ayush/notes-app/backend/internal/middleware"
	"github.com/ayush/notes-app/backend/internal/notes"
)

// Deps are the collaborators the router wires together.
type Deps struct {
	Users    auth.UserStore
	Identity middleware.IdentityStore // defaults to Users
	Notes    notes.NoteStore
	Files    notes.FileStore // nil disables the export routes
	Tokens   *auth.TokenService
	Log      logging.Logger
	Registry *prometheus.Registry

	CORSOrigins []string
	// Ping backs /health; nil reports healthy.
	Ping func(ctx context.Context) error
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(d Deps) http.Handler {
	if d.Identity == nil {
		d.Identity = d.Users
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	metrics := middleware.NewMetrics(d.Registry)
	authHandler := auth.NewHandler(d.Users, d.Tokens, d.Log)
	noteHandler := notes.NewHandler(d.Notes, d.Log)
	requireAuth := middleware.RequireAuth(d.Tokens, d.Identity, d.Log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"data": "hello"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				d.Log.Warn(r.Context(), "health check failed", "err", err)
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	// Account routes (public)
	r.Post("/createAccount", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/get-user", authHandler.Me)
		r.Post("/add-note", noteHandler.Add)
		r.Put("/edit-note/{noteId}", noteHandler.Edit)
		r.Get("/get-all-notes", noteHandler.List)
		r.Get("/get-all-notes/", noteHandler.List)
		r.Delete("/delete-note/{noteId}", noteHandler.Delete)
		r.Put("/update-note-pinned/{noteId}", noteHandler.SetPinned)

		if d.Files != nil {
			exports := notes.NewExportHandler(d.Notes, d.Files, d.Log)
			r.Post("/export-notes", exports.Create)
			r.Get("/export-notes", exports.Download)
		}
	})

	return r
}
