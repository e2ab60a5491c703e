package cli

import (
	"fmt"
	"io"

	"github.com/pfrederiksen/spielplan/internal/pipeline"
)

// WriteSummary writes a human-readable run summary
func WriteSummary(w io.Writer, summary *pipeline.Summary) error {
	if len(summary.Files) == 0 {
		if _, err := fmt.Fprintln(w, "No files written."); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "Wrote %d files:\n", len(summary.Files))
		for _, name := range summary.Files {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	if len(summary.TeamsFailed) > 0 {
		fmt.Fprintf(w, "\nFailed teams (%d):\n", len(summary.TeamsFailed))
		for _, id := range summary.TeamsFailed {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d matches from %d teams\n", summary.Records, summary.TeamsOK)
	return err
}
