// Command retention runs one retention sweep and exits. Intended for cron.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	report, err := a.Services.Retention.Sweep(context.Background())
	if err != nil {
		a.Log.Error("Retention sweep failed", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Retention sweep complete",
		"archived", report.Archived,
		"marked_deletion", report.MarkedDeletion,
		"skipped_hold", report.SkippedHold,
		"versions_pruned", report.VersionsPruned,
	)
}
