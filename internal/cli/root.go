package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "orderctl",
		Short:         "Quote and bulk-import orders",
		Long:          "orderctl prices single orders from flags and imports CSV order files into archived JSON bundles.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("verbose", false, "Log progress to stderr")
	cmd.AddCommand(newQuoteCmd())
	cmd.AddCommand(newImportCmd())
	return cmd
}

// Execute runs orderctl with the process arguments.
func Execute() error {
	return newRootCmd().Execute()
}

// logger returns a development logger on stderr when --verbose is set and a
// no-op logger otherwise.
func logger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil || !verbose {
		return zap.NewNop(), err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
