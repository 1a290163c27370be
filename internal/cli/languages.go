package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainatlas/chainatlas/pkg/integrations/github"
	"github.com/chainatlas/chainatlas/pkg/langstats"
)

// newLanguagesCmd creates the languages command.
func newLanguagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages [org]",
		Short: "Show the language distribution of a GitHub organization",
		Long: `Fetch every repository of the organization, aggregate the per-repository
language byte counts, and print the resulting distribution as percentages.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			org := args[0]

			token, err := githubToken()
			if err != nil {
				return err
			}

			client := github.NewContentClient(token)
			acc, err := langstats.Collect(ctx, client, org, logger)
			if err != nil {
				return fmt.Errorf("collect languages for %s: %w", org, err)
			}

			shares := langstats.Distribution(acc)
			if len(shares) == 0 {
				printInfo("No language data for %s", StyleHighlight.Render(org))
				return nil
			}

			printSuccess("Languages for %s", StyleHighlight.Render(org))
			for _, share := range shares {
				printKeyValue(share.Language, fmt.Sprintf("%.2f%%", share.Percent))
			}
			return nil
		},
	}
	return cmd
}
