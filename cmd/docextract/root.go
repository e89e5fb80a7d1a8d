// docextract is the one-shot CLI: extract structured data from invoices,
// receipts, and other expense documents without running the daemon.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "docextract",
	Short: "Extract structured data from expense documents",
	Long: "docextract runs the document extraction pipeline against local files:\n" +
		"integrity checks, provider upload, structured extraction, validation,\n" +
		"and local history in a SQLite database.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(*cobra.Command, []string) {
		// .env is optional; the environment wins when both are set.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
