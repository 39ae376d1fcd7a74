package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrscan/internal/sanitize"
)

func newCleanCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [text|-]",
		Short: "Sanitize decoded text for embedding in JSON",
		Long: `Remove control characters and literal \x sequences from text and rewrite
single and typographic quotes to straight double quotes. Without an argument,
or with "-", the text is read from stdin.

Examples:
  qrscan clean "{'amount': 12.50}"
  qrscan image invoice.png --format text | qrscan clean -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 && args[0] != "-" {
				text = args[0]
			} else {
				data, err := readInput(cmd, "-")
				if err != nil {
					return err
				}
				text = strings.TrimRight(string(data), "\r\n")
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), sanitize.CleanJSONString(text))
			return err
		},
	}
}
