package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrscan/internal/barcode"
	"github.com/MeKo-Tech/qrscan/internal/batch"
	"github.com/MeKo-Tech/qrscan/internal/pipeline"
)

// addScanFlags registers the detector flags shared by the scanning commands.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("formats", nil,
		fmt.Sprintf("barcode formats to search (%v); default from config", barcode.FormatNames()))
	cmd.Flags().Bool("try-harder", false, "spend more time searching each stage")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "output format: text, json, yaml, csv (default from config)")
	cmd.Flags().StringP("output", "o", "", "write results to a file instead of stdout")
	cmd.Flags().Bool("clean", false, "sanitize found text for embedding in JSON")
}

// pipelineConfig merges the loaded configuration with command flags.
func (a *app) pipelineConfig(cmd *cobra.Command) (pipeline.Config, error) {
	pc := a.cfg.ToPipelineConfig()

	if cmd.Flags().Changed("formats") {
		names, _ := cmd.Flags().GetStringSlice("formats")
		formats, err := barcode.ParseFormats(names)
		if err != nil {
			return pc, err
		}
		pc.Barcode.Formats = formats
	}
	if cmd.Flags().Changed("try-harder") {
		pc.Barcode.TryHarder, _ = cmd.Flags().GetBool("try-harder")
	}
	return pc, nil
}

func (a *app) buildPipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	pc, err := a.pipelineConfig(cmd)
	if err != nil {
		return nil, err
	}
	pl, err := pipeline.NewBuilder().WithConfig(pc).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return pl, nil
}

// batchConfig maps configuration to batch.Config with flag overrides.
func (a *app) batchConfig(cmd *cobra.Command) batch.Config {
	bc := a.cfg.ToBatchConfig()
	if f := cmd.Flags().Lookup("clean"); f != nil && f.Changed {
		bc.CleanText, _ = cmd.Flags().GetBool("clean")
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		bc.Workers, _ = cmd.Flags().GetInt("workers")
	}
	return bc
}

func (a *app) outputSettings(cmd *cobra.Command) (format, file string) {
	format = a.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	file = a.cfg.Output.File
	if cmd.Flags().Changed("output") {
		file, _ = cmd.Flags().GetString("output")
	}
	return format, file
}

// writeResults prints or saves res and fails when no file could be scanned at all.
func (a *app) writeResults(cmd *cobra.Command, res *batch.Result) error {
	format, file := a.outputSettings(cmd)
	if err := res.SaveResults(cmd.OutOrStdout(), format, file); err != nil {
		return err
	}

	stats := res.Stats()
	if stats.Total > 0 && stats.Failed == stats.Total {
		return fmt.Errorf("none of the %d input files could be scanned", stats.Total)
	}
	return nil
}
