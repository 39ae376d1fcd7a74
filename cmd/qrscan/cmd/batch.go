package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrscan/internal/batch"
	"github.com/MeKo-Tech/qrscan/internal/pdf"
)

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <paths...>",
		Short: "Scan folders of images and PDFs in parallel",
		Long: `Scan every image and PDF found in the given files and directories with a
bounded pool of workers. A file that cannot be read is reported in the results
and does not stop the run.

Examples:
  qrscan batch scans/
  qrscan batch scans/ --recursive --workers 16 --format csv --output codes.csv
  qrscan batch inbox/ --include "*.pdf" --exclude "draft_*" --progress`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := a.buildPipeline(cmd)
			if err != nil {
				return err
			}

			bc := a.batchConfig(cmd)
			if cmd.Flags().Changed("recursive") {
				bc.Recursive, _ = cmd.Flags().GetBool("recursive")
			}
			if cmd.Flags().Changed("include") {
				bc.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
			}
			if cmd.Flags().Changed("exclude") {
				bc.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
			}
			bc.Pages, _ = cmd.Flags().GetString("pages")
			if pw, _ := cmd.Flags().GetString("password"); pw != "" {
				bc.Credentials = &pdf.Credentials{UserPassword: pw, OwnerPassword: pw}
			}
			if progress, _ := cmd.Flags().GetBool("progress"); progress {
				bc.Progress = batch.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Scanning: ")
			}

			res, err := batch.Process(cmd.Context(), args, bc, pl)
			if err != nil {
				return err
			}
			if stats, _ := cmd.Flags().GetBool("stats"); stats {
				res.PrintStats(cmd.ErrOrStderr())
			}
			return a.writeResults(cmd, res)
		},
	}

	addScanFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
	cmd.Flags().IntP("workers", "w", 0, "number of files scanned in parallel (default from config)")
	cmd.Flags().StringSlice("include", nil, "only scan files matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "skip files matching these glob patterns")
	cmd.Flags().String("pages", "", "PDF page selection, e.g. 1-3,5")
	cmd.Flags().String("password", "", "password for encrypted PDFs")
	cmd.Flags().Bool("progress", false, "show a progress bar on stderr")
	cmd.Flags().Bool("stats", false, "print processing statistics on stderr")
	return cmd
}
