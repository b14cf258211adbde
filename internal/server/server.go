// Package server wires the dependency graph and defines the routes. It is
// the composition root: main creates a Config and a logger, and everything
// else (database, services, handlers, middleware) is assembled here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/garasiku/servicebook/internal/auth"
	"github.com/garasiku/servicebook/internal/config"
	"github.com/garasiku/servicebook/internal/handler"
	"github.com/garasiku/servicebook/internal/middleware"
	sqliteRepo "github.com/garasiku/servicebook/internal/repository/sqlite"
	"github.com/garasiku/servicebook/internal/service"
	"github.com/garasiku/servicebook/internal/storage"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, repositories,
// services, handlers, routes. photos may be nil when object storage is not
// configured; photo uploads then fail while everything else works.
func New(cfg config.Config, logger *slog.Logger, photos storage.ObjectStorage) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(photos); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Router exposes the configured router, mainly for httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database connection. Start does this itself; Close is
// for callers that use Router directly.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes(photos storage.ObjectStorage) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordServiceWithCost(s.config.BcryptCost)

	users := sqliteRepo.NewUserRepo(s.db)
	vehicles := sqliteRepo.NewVehicleRepo(s.db)
	records := sqliteRepo.NewServiceRecordRepo(s.db)
	reminders := sqliteRepo.NewReminderRepo(s.db)

	userService := service.NewUserService(users, tokens, passwords, s.logger)
	vehicleService := service.NewVehicleService(vehicles, photos, s.logger)
	recordService := service.NewServiceRecordService(records, vehicles, s.logger)
	reminderService := service.NewReminderService(reminders, vehicles, s.logger)

	userHandler := handler.NewUserHandler(userService, s.logger)
	vehicleHandler := handler.NewVehicleHandler(vehicleService, s.logger)
	recordHandler := handler.NewServiceRecordHandler(recordService, s.logger)
	reminderHandler := handler.NewReminderHandler(reminderService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Public routes: healthcheck, registration, login.
		r.Get("/healthcheck", handler.HandleHealthcheck)
		r.Post("/users", userHandler.HandleRegister)
		r.Post("/users/login", userHandler.HandleLogin)

		// Everything else requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/users/me", userHandler.HandleMe)
			r.Patch("/users/{id}", userHandler.HandleUpdate)
			r.Delete("/users/{id}", userHandler.HandleDelete)

			r.Get("/vehicles", vehicleHandler.HandleList)
			r.Post("/vehicles", vehicleHandler.HandleCreate)
			r.Get("/vehicles/{id}", vehicleHandler.HandleGet)
			r.Patch("/vehicles/{id}", vehicleHandler.HandleUpdate)
			r.Delete("/vehicles/{id}", vehicleHandler.HandleDelete)
			r.Post("/vehicles/{id}/image", vehicleHandler.HandleUploadImage)
			r.Get("/vehicles/{id}/service-records", recordHandler.HandleListByVehicle)

			r.Post("/service-records", recordHandler.HandleCreate)
			r.Get("/service-records/{id}", recordHandler.HandleGet)
			r.Patch("/service-records/{id}", recordHandler.HandleUpdate)
			r.Delete("/service-records/{id}", recordHandler.HandleDelete)

			r.Get("/reminders", reminderHandler.HandleList)
			r.Post("/reminders", reminderHandler.HandleCreate)
			r.Delete("/reminders/{id}", reminderHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
