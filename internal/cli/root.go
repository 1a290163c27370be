package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Defaults for the descriptor source and the database location.
const (
	// DefaultRootURL is the content-listing root of the descriptor tree.
	DefaultRootURL = "https://api.github.com/repos/electric-capital/crypto-ecosystems/contents/data/ecosystems"
	// DefaultRawURL is the raw-file root of the same tree.
	DefaultRawURL = "https://raw.githubusercontent.com/electric-capital/crypto-ecosystems/master/data/ecosystems"
	// DefaultDBPath is the SQLite database file.
	DefaultDBPath = "crypto_ecosystems.db"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the chainatlas CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (harvest,
// stars, run, view, languages), configures logging based on the --verbose
// flag, and executes the command tree. The logger is attached to the
// context and accessible to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "chainatlas",
		Short:        "chainatlas builds a relational knowledge base of the crypto open-source ecosystem",
		Long:         `chainatlas harvests the public crypto-ecosystems taxonomy into a local SQLite database and enriches it with per-repository star counts fetched in rate-limited batches.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("chainatlas %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newHarvestCmd())
	root.AddCommand(newStarsCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newViewCmd())
	root.AddCommand(newLanguagesCmd())

	return root.ExecuteContext(ctx)
}
