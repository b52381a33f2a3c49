package cli

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xenking/kart-orders/internal/imports"
	"github.com/xenking/kart-orders/internal/report"
)

func newImportCmd() *cobra.Command {
	var (
		outDir string
		name   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv[.gz]> [file...]",
		Short: "Import CSV order files into an archived JSON bundle",
		Long: "Parse CSV order files concurrently, build every order, and write the valid ones " +
			"to <out>/<name>.json plus a gzip archive. Rejected rows are reported on stdout.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := logger(cmd)
			if err != nil {
				return errors.Wrap(err, "create logger")
			}
			defer func() { _ = lg.Sync() }()

			res, err := imports.NewImporter(lg).Import(cmd.Context(), args...)
			if err != nil {
				return errors.Wrap(err, "import")
			}

			out := cmd.OutOrStdout()
			for _, p := range res.Problems {
				fmt.Fprintf(out, "skipped: %s\n", p.Error())
			}
			if strict && len(res.Problems) > 0 {
				return errors.Errorf("%d problems found", len(res.Problems))
			}

			if name == "" {
				name = "orders-" + uuid.NewString()
			}
			exporter, err := report.NewExporter(report.JSONWriter{Indent: 2}, report.GzipArchiver{}, report.NewZapAuditLog(lg))
			if err != nil {
				return err
			}
			archive, err := exporter.Export(cmd.Context(), res.Orders, outDir, name)
			if err != nil {
				return errors.Wrap(err, "export")
			}

			fmt.Fprintf(out, "imported %d orders, %d problems\n", len(res.Orders), len(res.Problems))
			fmt.Fprintf(out, "archive: %s\n", archive)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	cmd.Flags().StringVar(&name, "name", "", "Bundle base name (orders-<uuid> when empty)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail without exporting when any row is rejected")
	return cmd
}
