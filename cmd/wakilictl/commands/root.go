// Package commands implements the wakilictl operator CLI.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wakili/backend/internal/config"
	"github.com/wakili/backend/internal/graph"
	"github.com/wakili/backend/internal/logging"
	"github.com/wakili/backend/internal/repository"
	"github.com/wakili/backend/internal/service"
)

// backend is the storage the commands operate on.
type backend interface {
	service.LawyerRepository
	service.ApplicationRepository
}

type app struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer

	// connect opens the backend; the returned func releases it.
	connect func(ctx context.Context) (backend, func(), error)
}

// Execute runs the CLI against the configured graph database.
func Execute() error {
	a := &app{}
	a.connect = a.connectGraph
	return newRootCmd(a).Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "wakilictl",
		Short:        "Operator tooling for the Wakili backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			if a.logger == nil {
				a.logger = logging.New(cfg.Logging)
			}
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	root.AddCommand(generateCmd(), ingestCmd(a), applicationsCmd(a))
	return root
}

func (a *app) connectGraph(ctx context.Context) (backend, func(), error) {
	if a.cfg.Graph.URI == "" {
		return nil, nil, fmt.Errorf("GRAPH_URI is required: %w", graph.ErrMissingURI)
	}
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            a.cfg.Graph.URI,
		Database:       a.cfg.Graph.Database,
		Username:       a.cfg.Graph.Username,
		Password:       a.cfg.Graph.Password,
		MaxConnections: a.cfg.Graph.MaxConnections,
	})
	if err != nil {
		return nil, nil, err
	}
	a.logger.Info("connected to graph", "uri", a.cfg.Graph.URI, "database", a.cfg.Graph.Database)

	release := func() {
		if err := client.Close(context.Background()); err != nil {
			a.logger.Warn("closing graph client failed", "error", err)
		}
	}
	repo := repository.New(client)
	if err := repo.EnsureSchema(ctx); err != nil {
		release()
		return nil, nil, err
	}
	return repo, release, nil
}
