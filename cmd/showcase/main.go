// Command showcase serves the site content API and admin session endpoints.
// All configuration comes from environment variables; see showcase.SiteConfig.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "showcase",
	Short: "showcase - a marketing site engine with an admin-editable content API",
	Long: `showcase stores the site content document and the slide carousel in a
database or in JSON files and serves them through a small JSON API.

Configuration is read from the environment (ADMIN_PASSWORD,
ADMIN_SESSION_SECRET, USE_DATABASE, DATABASE_URL, DATA_DIR, ...).`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, exportCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the showcase version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "showcase %s\n", version)
	},
}
