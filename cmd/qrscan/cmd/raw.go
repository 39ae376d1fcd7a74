package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrscan/internal/batch"
	"github.com/MeKo-Tech/qrscan/internal/raster"
	"github.com/MeKo-Tech/qrscan/internal/sanitize"
)

func newRawCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raw --width W --height H <file|->",
		Short: "Scan a headerless 8-bit luminance frame",
		Long: `Scan a raw single-channel frame, for example the Y plane of a camera
preview. The input must hold exactly width*height bytes, row by row. Use "-"
to read the frame from stdin.

Examples:
  qrscan raw --width 640 --height 480 frame.y
  cat frame.y | qrscan raw --width 640 --height 480 -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")
			if width <= 0 || height <= 0 {
				return errors.New("--width and --height must be positive")
			}

			pix, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if !raster.NewLuma(pix, width, height).Valid() {
				return fmt.Errorf("frame has %d bytes, which does not match %dx%d", len(pix), width, height)
			}

			pl, err := a.buildPipeline(cmd)
			if err != nil {
				return err
			}

			start := time.Now()
			scan := pl.ScanRawLumaResult(pix, width, height)
			text := scan.Text
			if scan.Found && a.batchConfig(cmd).CleanText {
				text = sanitize.CleanJSONString(text)
			}

			res := &batch.Result{
				Files: []batch.FileResult{{
					Path:     args[0],
					Kind:     batch.KindRaw,
					Found:    scan.Found,
					Text:     text,
					Stage:    scan.Stage,
					Attempts: scan.Attempts,
					Duration: time.Since(start),
				}},
				Duration:    time.Since(start),
				WorkerCount: 1,
			}
			return a.writeResults(cmd, res)
		},
	}

	cmd.Flags().Int("width", 0, "frame width in pixels")
	cmd.Flags().Int("height", 0, "frame height in pixels")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	addScanFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

// readInput reads a file, or stdin when name is "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name) //nolint:gosec // G304: reading user-provided input is expected
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
