package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/infrastructure/cli/helpers"
)

const rule = "=================================================="

// RenderReport prints the end-of-run summary in a friendly, ASCII-only format.
func RenderReport(out io.Writer, report domain.RunReport) {
	if report.Documents == 0 {
		fmt.Fprintln(out, "No PDF documents found in input directory.")
		return
	}
	successful := helpers.SuccessfulResults(report.Results)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "ANALYSIS COMPLETE")
	fmt.Fprintf(out, "  Documents processed: %d\n", len(report.Results))
	fmt.Fprintf(out, "  Successful: %d (%.0f%%)\n", successful, helpers.CalculateSuccessRate(successful, len(report.Results)))
	fmt.Fprintf(out, "  Failed: %d\n", report.Failed())
	fmt.Fprintf(out, "  Analyzed: %d, from cache: %d\n", report.Analyzed, report.CacheHits)
	fmt.Fprintf(out, "  Duration: %s\n", report.Duration.Round(time.Millisecond))

	if len(report.Outputs) > 0 {
		fmt.Fprintln(out, "Output files:")
		for _, f := range domain.AllExportFormats {
			if path, ok := report.Outputs[f]; ok {
				fmt.Fprintf(out, "  %s: %s\n", f, path)
			}
		}
	}
	if len(report.Uploaded) > 0 {
		fmt.Fprintln(out, "Uploaded:")
		for _, u := range report.Uploaded {
			fmt.Fprintf(out, "  %s\n", u)
		}
	}
	if report.HasFailures() {
		fmt.Fprintln(out, "Failures:")
		for _, f := range report.Failures {
			fmt.Fprintf(out, "  %s [%s]: %s\n", f.Filename, kindLabel(f.Kind), helpers.Truncate(f.Message, 160))
		}
	}
	fmt.Fprintln(out, rule)
}

func kindLabel(kind domain.ErrorKind) string {
	if kind == "" {
		return "error"
	}
	return strings.ToLower(string(kind))
}
