package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wakili/backend/internal/config"
	"github.com/wakili/backend/internal/graph"
	"github.com/wakili/backend/internal/i18n"
	"github.com/wakili/backend/internal/logging"
	"github.com/wakili/backend/internal/notify"
	"github.com/wakili/backend/internal/repository"
	"github.com/wakili/backend/internal/server"
	"github.com/wakili/backend/internal/service"
	"github.com/wakili/backend/internal/sessionstore"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	graphClient, err := buildGraphClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo := repository.New(graphClient)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure graph schema", "error", err)
		os.Exit(1)
	}

	sessions, err := sessionstore.Open(cfg.Sessions.Path)
	if err != nil {
		logger.Error("failed to open session store", "path", cfg.Sessions.Path, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Warn("closing session store failed", "error", err)
		}
	}()

	sweeper := sessionstore.NewSweeper(sessions, cfg.Sessions.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	catalog, err := i18n.Load(cfg.DefaultLanguage)
	if err != nil {
		logger.Error("failed to load message catalog", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewLogNotifier(logger)
	services := server.Services{
		Auth: service.NewAuthService(repo, sessions, notifier, service.AuthOptions{
			SessionTTL:      cfg.Auth.SessionTTL,
			CodeTTL:         cfg.Auth.CodeTTL,
			ResetTTL:        cfg.Auth.ResetTTL,
			MaxCodeAttempts: cfg.Auth.MaxCodeAttempt,
			BcryptCost:      cfg.Auth.BcryptCost,
		}, logger),
		Profile:    service.NewProfileService(repo),
		Lawyers:    service.NewLawyerService(repo),
		Bookings:   service.NewBookingService(repo, notifier, logger),
		Contracts:  service.NewContractReviewService(repo),
		Onboarding: service.NewOnboardingService(repo),
		Admin:      service.NewAdminService(repo, notifier, logger),
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health: server.HealthChecks{
			server.GraphHealthService{Client: graphClient},
			server.SessionStoreHealthService{Store: sessions},
		},
		API:              server.NewAPIHandlers(logger, catalog, services),
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
		DefaultLanguage:  cfg.DefaultLanguage,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	return graph.NewNeo4jClient(ctx, opts)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
