package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/machinecraft/inventory_backend/config"
	"github.com/machinecraft/inventory_backend/models"
	"github.com/machinecraft/inventory_backend/workflow"
)

// Rebuilds the Silver layer from the Bronze records already in the database,
// without touching the shared drive. Run this after changing classifier
// tables so every item is re-classified from the preserved raw data.
func main() {
	skipAI := flag.Bool("skip-ai", false, "Disable AI validation even when OPENAI_API_KEY is set.")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	if err := models.MigrateTable(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	settings := config.LoadPipelineSettings()
	if *skipAI {
		settings.OpenAIAPIKey = ""
	}

	report, err := workflow.NewPipeline(db, &settings).RebuildSilver(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "silver rebuild failed:", err)
		os.Exit(1)
	}
	report.PrintSummary(os.Stdout)
}
