package app

import (
	"net/http"
	"time"

	"taskManager/internal/handlers"
	"taskManager/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	Auth           middleware.AuthConfig
}

type Handlers struct {
	Health *handlers.HealthHandler
	Tasks  *handlers.TaskHandler
	Tags   *handlers.TagHandler
	Graph  *handlers.GraphHandler
	Users  *handlers.UserHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", h.Health.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", h.Users.Register) // POST /api/users

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Auth))

			r.Get("/users/me", h.Users.Me)
			r.Delete("/users/me", h.Users.DeleteMe)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Tasks.ListTasks)
				r.Post("/", h.Tasks.CreateTask)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Tasks.GetTask)
					r.Put("/", h.Tasks.UpdateTask)
					r.Delete("/", h.Tasks.DeleteTask)

					r.Post("/toggle", h.Tasks.ToggleTask)
					r.Post("/complete", h.Tasks.CompleteTask)
					r.Post("/incomplete", h.Tasks.IncompleteTask)
					r.Put("/position", h.Tasks.MoveTask)
					r.Get("/related", h.Tasks.RelatedTasks)
				})
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", h.Tags.ListTags)
				r.Post("/", h.Tags.CreateTag)

				r.Get("/palette", h.Tags.Palette)
				r.Post("/quick-create", h.Tags.QuickCreate)
				r.Get("/autocomplete", h.Tags.Autocomplete)
				r.Post("/bulk-edit", h.Tags.BulkEdit)
				r.Get("/export", h.Tags.ExportCSV)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Tags.GetTag)
					r.Put("/", h.Tags.UpdateTag)
					r.Delete("/", h.Tags.DeleteTag)

					r.Post("/name", h.Tags.RenameTag)
					r.Post("/color", h.Tags.RecolorTag)
					r.Post("/merge", h.Tags.MergeTag)
				})
			})

			r.Get("/graph", h.Graph.GetGraph)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"route not found"}`))
	})

	return r
}
