// Package server is the composition root: it wires the store, services,
// handlers, and middleware together and owns the HTTP listener lifecycle.
// main.go stays minimal — load config, build the server, start it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/config"
	"github.com/petlink/petlink/internal/handler"
	"github.com/petlink/petlink/internal/middleware"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/relay"
	"github.com/petlink/petlink/internal/repository/store"
	"github.com/petlink/petlink/internal/service"
	"github.com/petlink/petlink/internal/storage"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *store.Store
	tokens *auth.TokenService
}

// New assembles the full dependency graph:
//
//	store.Store → repositories → services → handlers → routes
//
// Each layer receives only what it needs; handlers never see the store and
// services never see chi.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := store.New(cfg.DBDriver, cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, err
	}

	objectStore, err := storage.New(ctx, storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		Region:    cfg.StorageRegion,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		PublicURL: cfg.StoragePublicURL,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring object storage: %w", err)
	}

	authService := service.NewAuthService(
		db.Users(), tokens, auth.NewPasswordService(),
		auth.NewGoogleVerifier(cfg.GoogleClientID), logger,
	)
	petService := service.NewPetService(db.LostPets(), objectStore, logger)
	reportService := service.NewReportService(db.Sightings(), objectStore, logger)
	communityService := service.NewCommunityService(db.Community(), logger)
	animalService := service.NewAnimalService(db.Animals())
	relayClient := relay.New(cfg.AIServiceURL, logger)

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
	}
	s.routes(
		handler.NewAuthHandler(authService),
		handler.NewPetHandler(petService),
		handler.NewReportHandler(reportService),
		handler.NewCommunityHandler(communityService),
		handler.NewAnimalHandler(animalService),
		handler.NewRelayHandler(relayClient),
		handler.NewAdminHandler(petService, reportService, communityService),
	)
	return s, nil
}

func (s *Server) routes(
	authH *handler.AuthHandler,
	petH *handler.PetHandler,
	reportH *handler.ReportHandler,
	communityH *handler.CommunityHandler,
	animalH *handler.AnimalHandler,
	relayH *handler.RelayHandler,
	adminH *handler.AdminHandler,
) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(s.cfg.CORSOrigin))

	requireAuth := auth.RequireAuth(s.tokens)
	requireAdmin := auth.RequireRole(model.RoleAdmin)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"ok"}`))
	})

	// Accounts.
	r.Post("/register", authH.Register)
	r.Post("/login", authH.Login)
	r.Post("/auth/google", authH.GoogleLogin)
	r.With(requireAuth).Get("/api/users/me", authH.Me)

	// Lost-pet posts.
	r.Get("/lost-pets", petH.List)
	r.Get("/lost-pets/{id}", petH.Get)
	r.Get("/missing-posts", petH.Board)
	r.With(requireAuth).Post("/lost-pets", petH.Create)
	r.Route("/mypets", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", petH.ListMine)
		r.Put("/{id}", petH.Update)
		r.Delete("/{id}", petH.Delete)
	})

	// Sighting reports.
	r.Get("/reports", reportH.List)
	r.Get("/reports/{id}", reportH.Get)
	r.Get("/witness-posts", reportH.Board)
	r.With(requireAuth).Post("/reports", reportH.Create)

	// Community board.
	r.Route("/community", func(r chi.Router) {
		r.Get("/", communityH.ListPosts)
		r.Get("/{id}", communityH.GetPost)
		r.With(requireAuth).Post("/", communityH.CreatePost)
		r.With(requireAuth).Delete("/{id}", communityH.DeletePost)
		r.With(requireAuth).Post("/{id}/comments", communityH.CreateComment)
		r.With(requireAuth).Delete("/{id}/comments/{commentID}", communityH.DeleteComment)
	})

	// Shelter animals (read-only; rows come from an external crawler).
	r.Get("/stray-dogs", animalH.List)

	// AI relay.
	r.Post("/api/ai/search", relayH.Search)
	r.Post("/api/ai/report-sighting", relayH.ReportSighting)

	// Moderation.
	r.Route("/api/admin/delete", func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Delete("/missing/{id}", adminH.DeleteLostPet)
		r.Delete("/reports/{id}", adminH.DeleteReport)
		r.Delete("/community/{id}", adminH.DeleteCommunityPost)
	})
}

// Router exposes the configured mux, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.Int("port", s.cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		s.db.Close()
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		s.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error("closing database", slog.String("error", err.Error()))
	}
	s.logger.Info("server stopped")
	return nil
}
