// stock-rebuild recomputes every stock summary row from the movement ledger.
// Run after manual data repair; the service should be stopped or movements
// quiesced while it runs.
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := models.RebuildStockSummaries(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("stock summaries rebuilt")
}
