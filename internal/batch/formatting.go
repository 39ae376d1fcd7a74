package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "yaml", "csv"}

// formatBatchResults formats the batch results in the specified format.
func formatBatchResults(files []FileResult, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return formatJSON(files)
	case "yaml", "yml":
		return formatYAML(files)
	case "csv":
		return formatCSV(files)
	case "", "text":
		return formatText(files), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

type batchDocument struct {
	Files []FileResult `json:"files" yaml:"files"`
}

func formatJSON(files []FileResult) (string, error) {
	bts, err := json.MarshalIndent(batchDocument{Files: nonNil(files)}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

func formatYAML(files []FileResult) (string, error) {
	bts, err := yaml.Marshal(batchDocument{Files: nonNil(files)})
	return string(bts), err
}

func formatCSV(files []FileResult) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if err := writer.Write([]string{"file", "kind", "found", "text", "stage", "attempts", "page", "error"}); err != nil {
		return "", err
	}
	for _, f := range files {
		row := []string{
			f.Path,
			string(f.Kind),
			strconv.FormatBool(f.Found),
			f.Text,
			string(f.Stage),
			strconv.Itoa(f.Attempts),
			strconv.Itoa(f.Page),
			f.Error,
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

func formatText(files []FileResult) string {
	var output strings.Builder
	for i, f := range files {
		if i > 0 {
			output.WriteString("\n")
		}
		fmt.Fprintf(&output, "# %s\n", f.Path)
		switch {
		case f.Error != "":
			fmt.Fprintf(&output, "error: %s\n", f.Error)
		case !f.Found:
			output.WriteString("no code found\n")
		case f.Page > 0:
			fmt.Fprintf(&output, "[page %d, %s] %s\n", f.Page, f.Stage, f.Text)
		default:
			fmt.Fprintf(&output, "[%s] %s\n", f.Stage, f.Text)
		}
	}
	return output.String()
}

func nonNil(files []FileResult) []FileResult {
	if files == nil {
		return []FileResult{}
	}
	return files
}
