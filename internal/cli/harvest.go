package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainatlas/chainatlas/pkg/harvest"
	"github.com/chainatlas/chainatlas/pkg/integrations/github"
	"github.com/chainatlas/chainatlas/pkg/normalize"
	"github.com/chainatlas/chainatlas/pkg/store"
)

type harvestFlags struct {
	db        string
	rootURL   string
	rawURL    string
	suffix    string
	randomIDs bool
}

func (f *harvestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.db, "db", DefaultDBPath, "SQLite database file")
	cmd.Flags().StringVar(&f.rootURL, "root-url", DefaultRootURL, "content-listing root of the descriptor tree")
	cmd.Flags().StringVar(&f.rawURL, "raw-url", DefaultRawURL, "raw-file root of the descriptor tree")
	cmd.Flags().StringVar(&f.suffix, "suffix", harvest.DefaultSuffix, "descriptor file suffix")
	cmd.Flags().BoolVar(&f.randomIDs, "random-ids", false, "assign random project ids instead of content-derived ones")
}

// newHarvestCmd creates the harvest command.
func newHarvestCmd() *cobra.Command {
	flags := &harvestFlags{}

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest the ecosystem taxonomy into the database",
		Long: `Walk every folder of the remote descriptor tree, parse each descriptor
file, and replace the taxonomy tables (projects plus the sub-ecosystem,
organization, and repository relations) with the harvested corpus.

Per-file failures are reported and skipped; one malformed descriptor does
not abort the harvest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarvest(cmd.Context(), flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runHarvest(ctx context.Context, flags *harvestFlags) error {
	logger := loggerFromContext(ctx)

	token, err := githubToken()
	if err != nil {
		return err
	}

	client := github.NewContentClient(token)
	h := harvest.New(client, harvest.Config{
		RootURL: flags.rootURL,
		RawURL:  flags.rawURL,
		Suffix:  flags.suffix,
	}, logger)

	prog := newProgress(logger)
	result, err := h.Run(ctx)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}

	scheme := normalize.StableIDs
	if flags.randomIDs {
		scheme = normalize.RandomIDs
	}
	ds, err := normalize.Normalize(result.Records, scheme)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	st, err := store.Open(flags.db)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ReplaceEcosystem(ctx, ds); err != nil {
		return fmt.Errorf("replace taxonomy tables: %w", err)
	}
	if err := st.EnsureViews(ctx); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Harvested %d ecosystems", len(result.Records)))

	printSuccess("Harvest complete")
	printKeyValue("Projects", fmt.Sprintf("%d", len(ds.Projects)))
	printKeyValue("Sub-edges", fmt.Sprintf("%d", len(ds.SubEcosystems)))
	printKeyValue("Orgs", fmt.Sprintf("%d", len(ds.Organizations)))
	printKeyValue("Repos", fmt.Sprintf("%d", len(ds.Repos)))

	if len(result.Failures) > 0 {
		printWarning("%d descriptors skipped", len(result.Failures))
		for _, f := range result.Failures {
			printDetail("%s/%s: %v", f.Folder, f.File, f.Err)
		}
	}

	return nil
}
