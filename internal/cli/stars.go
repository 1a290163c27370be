package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainatlas/chainatlas/pkg/errors"
	"github.com/chainatlas/chainatlas/pkg/integrations/github"
	"github.com/chainatlas/chainatlas/pkg/stars"
	"github.com/chainatlas/chainatlas/pkg/store"
)

type starsFlags struct {
	db        string
	batchSize int
	delay     time.Duration
	timeout   time.Duration
}

func (f *starsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.db, "db", DefaultDBPath, "SQLite database file")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", stars.DefaultBatchSize, "repositories resolved per aggregated query")
	cmd.Flags().DurationVar(&f.delay, "delay", stars.DefaultDelay, "base inter-batch delay")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "overall run timeout (0 = none)")
}

// newStarsCmd creates the stars command.
func newStarsCmd() *cobra.Command {
	flags := &starsFlags{}

	cmd := &cobra.Command{
		Use:   "stars",
		Short: "Fetch star counts for every harvested repository",
		Long: `Read the distinct repository URLs from the database, resolve their star
counts in fixed-size aggregated batches, and persist each batch before the
next one is dispatched. Repositories that no longer resolve (renamed,
deleted, private) are recorded in the error table, not dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStars(cmd.Context(), flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runStars(ctx context.Context, flags *starsFlags) error {
	logger := loggerFromContext(ctx)

	token, err := githubToken()
	if err != nil {
		return err
	}

	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	st, err := store.Open(flags.db)
	if err != nil {
		return err
	}
	defer st.Close()

	urls, err := st.DistinctRepoURLs(ctx)
	if err != nil {
		return err
	}
	logger.Info("Loaded repository URLs", "count", len(urls))

	if err := st.ResetStars(ctx); err != nil {
		return err
	}

	client := github.NewContentClient(token)
	fetcher := stars.NewFetcher(client, st, flags.batchSize, stars.NewLimiter(flags.delay), logger)

	prog := newProgress(logger)
	summary, runErr := fetcher.Run(ctx, urls)

	// Completed batches are already durable even when the run aborted;
	// keep the views consistent with whatever was persisted.
	if err := st.EnsureViews(ctx); err != nil && runErr == nil {
		runErr = err
	}

	prog.done(fmt.Sprintf("Processed %d batches", summary.Batches))
	printStarSummary(summary, len(urls))

	if runErr != nil {
		return fmt.Errorf("star fetch: %w", runErr)
	}
	return nil
}

func printStarSummary(summary *stars.Summary, inputs int) {
	printSuccess("Star fetch summary")
	printKeyValue("Repos", fmt.Sprintf("%d", inputs))
	printKeyValue("Batches", fmt.Sprintf("%d", summary.Batches))
	printKeyValue("Snapshots", fmt.Sprintf("%d", summary.Snapshots))

	if len(summary.Errors) == 0 {
		return
	}

	kinds := make([]string, 0, len(summary.Errors))
	for kind := range summary.Errors {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	printWarning("%d repositories failed to resolve", totalErrors(summary))
	for _, kind := range kinds {
		printDetail("%s: %d", kind, summary.Errors[kind])
	}

	// A contract violation is an API bug, not an unresolved repository.
	if n := summary.Errors[string(errors.ErrCodeProtocolMismatch)]; n > 0 {
		printError("%d responses carried neither a value nor an error entry; see github_stars_errors", n)
	}
}

func totalErrors(summary *stars.Summary) int {
	n := 0
	for _, c := range summary.Errors {
		n += c
	}
	return n
}
