package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wakili/backend/internal/generator"
)

func generateCmd() *cobra.Command {
	def := generator.DefaultConfig()
	var (
		cfg       = def
		outputDir string
		toStdout  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a deterministic seed directory of lawyers and testimonials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.UnavailableChance = clampProbability(cfg.UnavailableChance)
			cfg.EnglishChance = clampProbability(cfg.EnglishChance)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			dataset, err := generator.New(cfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if toStdout {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(dataset)
			}
			if err := generator.WriteDataset(dataset, outputDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d lawyers and %d testimonials into %s\n",
				len(dataset.Lawyers), len(dataset.Testimonials), outputDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.NumLawyers, "lawyers", def.NumLawyers, "number of lawyers to generate")
	flags.IntVar(&cfg.MaxTestimonials, "max-testimonials", def.MaxTestimonials, "maximum testimonials per lawyer")
	flags.Float64Var(&cfg.UnavailableChance, "unavailable-chance", def.UnavailableChance, "probability that a lawyer is not accepting bookings")
	flags.Float64Var(&cfg.EnglishChance, "english-chance", def.EnglishChance, "probability that a lawyer also speaks English")
	flags.Int64Var(&cfg.Seed, "seed", def.Seed, "random seed for deterministic generation")
	flags.StringVar(&outputDir, "output-dir", "seed-data", "directory to write lawyers.json and testimonials.json")
	flags.BoolVar(&toStdout, "stdout", false, "write the combined dataset to stdout instead of files")
	return cmd
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
