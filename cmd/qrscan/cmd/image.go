package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrscan/internal/batch"
)

func newImageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image <files...>",
		Short: "Scan image files for a QR code",
		Long: `Scan one or more image files. Each file goes through the full frame, the
top-right region and a contrast-enhanced full frame until a code is found.

Supported formats: JPEG, PNG, GIF, BMP, TIFF, WebP

Examples:
  qrscan image invoice.png
  qrscan image *.jpg --format json
  qrscan image scan.tiff --formats qr,datamatrix --try-harder`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := a.buildPipeline(cmd)
			if err != nil {
				return err
			}

			bc := a.batchConfig(cmd)
			bc.Recursive = false
			bc.IncludePatterns = nil
			bc.ExcludePatterns = nil

			res, err := batch.Process(cmd.Context(), args, bc, pl)
			if err != nil {
				return err
			}
			return a.writeResults(cmd, res)
		},
	}

	addScanFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().IntP("workers", "w", 0, "number of files scanned in parallel (default from config)")
	return cmd
}
