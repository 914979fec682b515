package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stokaro/ormeta/cmd/resolve"
	"github.com/stokaro/ormeta/cmd/schemainfo"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ormeta",
		Short: "Validate and resolve ORM mapping metadata",
		Long: `ormeta reads persistent class declarations from Go source directives or
YAML mapping files, validates their mapping annotations and prints the
resolved, fully defaulted table and column metadata.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(resolve.NewResolveCommand())
	rootCmd.AddCommand(schemainfo.NewSchemaCommand())
	return rootCmd
}
