package cli

import (
	"github.com/spf13/cobra"

	"github.com/chainatlas/chainatlas/pkg/stars"
)

// newRunCmd creates the run command: a full pipeline pass.
func newRunCmd() *cobra.Command {
	hFlags := &harvestFlags{}
	sFlags := &starsFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: harvest, then stars",
		Long: `Harvest the descriptor tree into the taxonomy tables, then resolve star
counts for every harvested repository. Equivalent to running the harvest
and stars commands back to back against the same database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sFlags.db = hFlags.db
			if err := runHarvest(ctx, hFlags); err != nil {
				return err
			}
			return runStars(ctx, sFlags)
		},
	}

	hFlags.register(cmd)

	// The stars flags minus the shared --db, which harvest already owns.
	cmd.Flags().IntVar(&sFlags.batchSize, "batch-size", stars.DefaultBatchSize, "repositories resolved per aggregated query")
	cmd.Flags().DurationVar(&sFlags.delay, "delay", 0, "base inter-batch delay (0 = default)")
	cmd.Flags().DurationVar(&sFlags.timeout, "timeout", 0, "overall stars timeout (0 = none)")

	return cmd
}
