package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vantrack/server/internal/http/handlers"
	"github.com/vantrack/server/internal/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Vehicles *handlers.VehicleHandler
	Admin    *handlers.AdminHandler
}

// Options configures the cross-cutting middleware
type Options struct {
	Gate         *middleware.Gate
	LoginLimiter *middleware.RateLimiter
	// StaticDir is served under /static when set.
	StaticDir string
	// TrustProxy enables chi's RealIP, which rewrites RemoteAddr from
	// X-Forwarded-For/X-Real-IP. Off, clients cannot pick their own address.
	TrustProxy bool
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(h Handlers, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(opts.Gate.Middleware)

	r.Get("/health", h.Health.ServeHTTP)
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Get("/login", h.Auth.HandleLoginPage)
	r.Group(func(r chi.Router) {
		if opts.LoginLimiter != nil {
			r.Use(middleware.RateLimitMiddleware(opts.LoginLimiter, middleware.IPKey))
		}
		r.Post("/login", h.Auth.HandleLogin)
	})
	r.Post("/logout", h.Auth.HandleLogout)

	r.Get("/", h.Auth.HandleHome)
	r.Route("/api/vehicles", func(r chi.Router) {
		r.Get("/search", h.Vehicles.HandleSearch)
		r.Get("/{id}", h.Vehicles.HandleGet)
		r.Post("/{id}/sighting", h.Vehicles.HandleSighting)
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Get("/vehicles", h.Admin.HandleList)
		r.Post("/vehicles", h.Admin.HandleCreate)
		r.Get("/vehicles/{id}", h.Admin.HandleGet)
		r.Put("/vehicles/{id}", h.Admin.HandleUpdate)
		r.Delete("/vehicles/{id}", h.Admin.HandleDelete)
		r.Get("/daily-code", h.Admin.HandleDailyCode)
		r.Post("/daily-code/regenerate", h.Admin.HandleRegenerate)
		r.Get("/access-log", h.Admin.HandleAccessLog)
	})

	return r
}
