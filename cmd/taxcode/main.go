package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taxcode",
		Short: "Run tax code enrichment and prediction against the configured reference data",
		Long: `Run the tax code prediction pipeline without the HTTP server.

Configuration is read from the environment (and .env) exactly as the
server reads it.

Examples:
  taxcode enrich --company 1027 --vendor 373458 --vat-rate 0 --goods true
  taxcode candidates --company 1027 --vendor 373458 --vat-rate 0 --reverse-charge false
  taxcode predict --company 1027 --vendor 373458 --vat-rate 0 --goods true --services false
  taxcode table attention`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(enrichCmd())
	rootCmd.AddCommand(candidatesCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(tableCmd())

	return rootCmd
}
