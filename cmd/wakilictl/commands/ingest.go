package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wakili/backend/internal/generator"
	"github.com/wakili/backend/internal/service"
)

var errEmptyDataset = errors.New("lawyers dataset empty")

func ingestCmd(a *app) *cobra.Command {
	var (
		datasetDir       string
		workers          int
		skipTestimonials bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a generated seed directory into the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := a.logger.With("component", "ingest")

			dataset, err := generator.ReadDataset(datasetDir)
			if err != nil {
				return err
			}
			if len(dataset.Lawyers) == 0 {
				return fmt.Errorf("%w: %s", errEmptyDataset, datasetDir)
			}

			ctx := cmd.Context()
			repo, release, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer release()

			ingestor := service.NewBulkIngestor(service.NewLawyerService(repo), workers)

			start := time.Now()
			logger.Info("ingesting lawyers", "count", len(dataset.Lawyers), "workers", workers)
			if err := ingestor.IngestLawyers(ctx, dataset.Lawyers); err != nil {
				return fmt.Errorf("lawyer ingestion failed: %w", err)
			}

			if !skipTestimonials {
				logger.Info("ingesting testimonials", "count", len(dataset.Testimonials))
				if err := ingestor.IngestTestimonials(ctx, dataset.Testimonials); err != nil {
					return fmt.Errorf("testimonial ingestion failed: %w", err)
				}
			}

			logger.Info("ingestion complete", "duration", time.Since(start).String(),
				"lawyers", len(dataset.Lawyers), "testimonials", len(dataset.Testimonials))
			fmt.Fprintf(a.out, "Ingested %d lawyers from %s\n", len(dataset.Lawyers), datasetDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetDir, "dataset-dir", "seed-data", "directory containing lawyers.json and testimonials.json")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent workers for ingestion")
	cmd.Flags().BoolVar(&skipTestimonials, "skip-testimonials", false, "load lawyers only")
	return cmd
}
