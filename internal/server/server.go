// Package server is the composition root: it wires the store, services, handlers and
// middleware into one router and runs the HTTP server with graceful shutdown.
//
// Routes:
//
//	GET    /healthz
//	GET    /api/courses                    search, optional page/pageSize
//	GET    /api/me                         auth
//	GET    /api/courses/created            auth, instructor
//	GET    /api/courses/purchased          auth
//	GET    /api/courses/saved              auth
//	POST   /api/courses/saved              auth, learner
//	DELETE /api/courses/saved/{courseId}   auth
//	GET    /api/dashboard/statistics       auth, admin
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/sakif/course-marketplace/internal/auth"
	"github.com/sakif/course-marketplace/internal/config"
	"github.com/sakif/course-marketplace/internal/handler"
	"github.com/sakif/course-marketplace/internal/middleware"
	"github.com/sakif/course-marketplace/internal/repository"
	"github.com/sakif/course-marketplace/internal/service"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Server owns the store and closes it when Run returns.
type Server struct {
	router http.Handler
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New wires every route against store. The caller hands ownership of store to the
// Server; it is closed when Run returns.
func New(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		config: cfg,
		logger: logger,
		store:  store,
	}
	s.router = s.routes(tokens)
	return s, nil
}

// Handler returns the fully wrapped router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(tokens *auth.TokenService) http.Handler {
	validate := handler.NewValidator()

	courseService := service.NewCourseService(s.store, s.store, s.logger)
	savedService := service.NewSavedCourseService(s.store, s.store, s.store, s.logger)
	statsService := service.NewStatisticsService(s.store, s.store, s.store, s.logger, s.config.StatsConcurrency)
	userService := service.NewUserService(s.store, s.logger)

	courses := handler.NewCourseHandler(courseService, s.logger)
	saved := handler.NewSavedCourseHandler(savedService, validate, s.logger)
	stats := handler.NewStatisticsHandler(statsService, s.logger)
	me := handler.NewAuthHandler(userService, s.logger)

	r := chi.NewRouter()

	// Order matters: the request id must exist before the access log reads it, and
	// Recoverer sits inside the logger so a panic is still logged as a 500.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handler.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/courses", courses.HandleSearch)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", me.HandleMe)
			r.Get("/courses/created", courses.HandleCreated)
			r.Get("/courses/purchased", courses.HandlePurchased)
			r.Get("/courses/saved", saved.HandleList)
			r.Post("/courses/saved", saved.HandleSave)
			r.Delete("/courses/saved/{courseId}", saved.HandleUnsave)
			r.Get("/dashboard/statistics", stats.HandleStatistics)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests for up to
// shutdownTimeout and closes the store.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("driver", s.config.DBDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}
