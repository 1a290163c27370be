package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainatlas/chainatlas/pkg/store"
)

// newViewCmd creates the view command: a read-side sanity check over the
// project-level star aggregate.
func newViewCmd() *cobra.Command {
	var (
		db  string
		top int
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print project-level star totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(db)
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.ProjectStarTotals(cmd.Context(), top)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				printInfo("No projects in the database; run harvest first")
				return nil
			}

			for _, row := range rows {
				total := StyleDim.Render("no resolved repos")
				if row.TotalStars != nil {
					total = StyleNumber.Render(fmt.Sprintf("%d", *row.TotalStars))
				}
				fmt.Println(StyleValue.Render(row.ProjectName) + "  " + total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&db, "db", DefaultDBPath, "SQLite database file")
	cmd.Flags().IntVar(&top, "top", 25, "number of projects to show (0 = all)")
	return cmd
}
