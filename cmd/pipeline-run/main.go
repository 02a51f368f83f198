package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/machinecraft/inventory_backend/config"
	"github.com/machinecraft/inventory_backend/models"
	"github.com/machinecraft/inventory_backend/workflow"
)

func main() {
	root := flag.String("root", "", "Inventory root directory to scan. Defaults to INVENTORY_ROOT.")
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
	if strings.TrimSpace(*root) != "" {
		settings.InventoryRoot = strings.TrimSpace(*root)
	}
	if settings.InventoryRoot == "" {
		fmt.Fprintln(os.Stderr, "no inventory root: pass -root or set INVENTORY_ROOT")
		os.Exit(1)
	}
	if *skipAI {
		settings.OpenAIAPIKey = ""
	}

	report, err := workflow.NewPipeline(db, &settings).Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pipeline run failed:", err)
		os.Exit(1)
	}
	report.PrintSummary(os.Stdout)
	if report.FilesFailed > 0 {
		os.Exit(2)
	}
}
