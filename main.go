package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yamashou/jsoncoder/coder"
	"github.com/Yamashou/jsoncoder/docgen"
	"github.com/Yamashou/jsoncoder/plan"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "jsoncoder",
		Short: "Object to JSON mapping with list element declarations",
		Long: `jsoncoder maps Go structs to JSON and back.
The generate command reads @elem declarations from field comments and writes
a file registering them, so that list element types are known at run time.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jsoncoder v%s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		configFile string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the field documentation registration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("failed to create logger: %w", err)
				}
				defer func() { _ = l.Sync() }()
				setLogger(l)
			}
			return run(cmd.Context(), configFile)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (default: searched upward from the working directory)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log compilation and generation details")
	return cmd
}

func setLogger(l *zap.Logger) {
	plan.SetLogger(l.Named("plan"))
	coder.SetLogger(l.Named("coder"))
	docgen.SetLogger(l.Named("docgen"))
}
