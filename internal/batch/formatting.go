package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatResult renders a run summary in the requested format ("json" or
// "text").
func FormatResult(result *Result, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal batch result: %w", err)
		}
		return string(data), nil
	case "text", "":
		return formatText(result), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatText(result *Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Source: %s (%d fingers extracted)\n", result.SourcePath, result.FingersExtracted)
	fmt.Fprintf(&sb, "Targets: %d succeeded, %d failed\n", result.Succeeded, result.Failed)

	for _, tr := range result.Targets {
		if tr.Error != "" {
			fmt.Fprintf(&sb, "  FAIL %s: %s\n", tr.Path, tr.Error)
			continue
		}
		fmt.Fprintf(&sb, "  OK   %s -> %s (%d fingers, %dms)\n",
			tr.Path, tr.OutputPath, tr.FingersApplied, tr.DurationMs)
	}

	fmt.Fprintf(&sb, "Total time: %dms\n", result.DurationMs)
	return sb.String()
}
