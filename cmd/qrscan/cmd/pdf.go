package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrscan/internal/batch"
	"github.com/MeKo-Tech/qrscan/internal/pdf"
)

func newPDFCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf <files...>",
		Short: "Scan the images embedded in PDF files",
		Long: `Extract the images embedded in each PDF and scan them page by page. The
first code found in a document is reported together with its page number.

Examples:
  qrscan pdf invoice.pdf
  qrscan pdf invoice.pdf --pages 1-2 --format json
  qrscan pdf locked.pdf --password secret`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range args {
				if !pdf.IsPDF(f) {
					return fmt.Errorf("not a PDF file: %s", f)
				}
			}

			pages, _ := cmd.Flags().GetString("pages")
			if _, err := pdf.ParsePageRange(pages); err != nil {
				return fmt.Errorf("invalid --pages: %w", err)
			}

			pl, err := a.buildPipeline(cmd)
			if err != nil {
				return err
			}

			bc := a.batchConfig(cmd)
			bc.Pages = pages
			if pw, _ := cmd.Flags().GetString("password"); pw != "" {
				bc.Credentials = &pdf.Credentials{UserPassword: pw, OwnerPassword: pw}
			}

			res, err := batch.Process(cmd.Context(), args, bc, pl)
			if err != nil {
				return err
			}
			return a.writeResults(cmd, res)
		},
	}

	addScanFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().StringP("pages", "p", "", "page selection, e.g. 1-3,5 (default all pages)")
	cmd.Flags().String("password", "", "password for encrypted PDFs")
	return cmd
}
