// Package server exposes the authentication HTTP surface and the auth gate
// middleware that bridges bearer credentials into the session manager.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sessionworks/go-session-server/internal/config"
	"github.com/sessionworks/go-session-server/session"
	"github.com/sessionworks/go-session-server/users"
)

type Server struct {
	router   chi.Router
	config   config.Config
	sessions *session.Manager
	userRepo users.Repo
	validate *validator.Validate
	log      zerolog.Logger
}

func New(cfg config.Config, sessions *session.Manager, userRepo users.Repo, log zerolog.Logger) (*Server, error) {
	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		sessions: sessions,
		userRepo: userRepo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}

	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(s.requestLogger)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.GetAllowedOrigins(),
		AllowedMethods: cfg.GetAllowedMethods(),
		AllowedHeaders: cfg.GetAllowedHeaders(),
		MaxAge:         86400,
	}))

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/refresh", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth)
			r.Get("/me", s.handleMe)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Success: true, Message: "ok"})
}
