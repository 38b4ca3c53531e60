package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/volleyhq/volley/internal/metrics"
)

// WriteReportJSON writes the summary report as indented JSON to outputPath.
func WriteReportJSON(rep *metrics.Report, outputPath string) error {
	if rep == nil {
		return fmt.Errorf("report cannot be nil")
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}
