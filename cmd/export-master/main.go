package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/machinecraft/inventory_backend/config"
	"github.com/machinecraft/inventory_backend/models/reports"
)

func main() {
	out := flag.String("out", "master_inventory.xlsx", "Output workbook path.")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	settings := config.LoadPipelineSettings()
	filename := strings.TrimSpace(*out)
	if err := reports.SaveMasterWorkbook(ctx, db, filename, settings.HighValueThreshold); err != nil {
		fmt.Fprintln(os.Stderr, "export failed:", err)
		os.Exit(1)
	}
	fmt.Println("wrote", filename)
}
