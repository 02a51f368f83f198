package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/machinecraft/inventory_backend/config"
	"github.com/machinecraft/inventory_backend/models"
	"github.com/machinecraft/inventory_backend/workflow"
)

func connectTestDB(t *testing.T) {
	t.Helper()
	if err := config.ConnectTestDatabase(filepath.Join(t.TempDir(), "pipeline_test.db")); err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	if err := models.MigrateOn(config.GetDB()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
}

func testPipelineSettings(root string) *config.PipelineSettings {
	return &config.PipelineSettings{
		InventoryRoot:      root,
		SkipPatterns:       []string{"template", "backup", "copy"},
		HighValueThreshold: decimal.NewFromInt(10000),
	}
}

func TestPipelineRun_EndToEnd(t *testing.T) {
	connectTestDB(t)
	root := t.TempDir()

	writeWorkbook(t, filepath.Join(root, "FESTO_pricelist.xlsx"), [][]interface{}{
		{"FESTO Pneumatics Price List"},
		{"Part Number", "Description", "Unit Price", "Quantity", "Min Stock"},
		{"DSBC-32-100", "Pneumatic cylinder 32mm bore", "₹4,200", 10, 2},
		{"VUVG-L10", "Solenoid valve 10mm", 2800, 0, 3},
	})
	writeWorkbook(t, filepath.Join(root, "eaton_mcb.xlsx"), [][]interface{}{
		{"Item Code", "Item Description", "Rate", "Qty"},
		{"DSBC-32-100", "Pneumatic cylinder 32mm bore", 4500, 5},
		{"FAZ-C32", "MCB 32A C-curve single pole", "1,250", 40},
	})
	writeWorkbook(t, filepath.Join(root, "inventory_template.xlsx"), [][]interface{}{
		{"Part Number", "Description", "Unit Price"},
	})

	ctx := context.Background()
	db := config.GetDB()
	report, err := workflow.NewPipeline(db, testPipelineSettings(root)).Run(ctx)
	if err != nil {
		t.Fatalf("pipeline run: %v", err)
	}

	if report.FilesSelected != 2 {
		t.Fatalf("files selected = %d, want 2", report.FilesSelected)
	}
	if report.FilesSkipped != 1 {
		t.Fatalf("files skipped = %d, want 1", report.FilesSkipped)
	}
	if report.FilesIngested != 2 {
		t.Fatalf("files ingested = %d, want 2", report.FilesIngested)
	}

	// Four rows extracted, DSBC-32-100 listed twice across files.
	if report.ItemsExtracted != 4 {
		t.Fatalf("items extracted = %d, want 4", report.ItemsExtracted)
	}
	if report.ItemsAfterDedup != 3 {
		t.Fatalf("items after dedup = %d, want 3", report.ItemsAfterDedup)
	}

	count, err := models.CountSilverItems(ctx, db)
	if err != nil {
		t.Fatalf("count silver: %v", err)
	}
	if count != 3 {
		t.Fatalf("silver rows = %d, want 3", count)
	}

	// The duplicate collapses to the higher quote.
	page, err := models.SearchItems(ctx, db, models.ItemFilter{Search: "DSBC-32-100"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("DSBC-32-100 matches = %d, want 1", len(page.Items))
	}
	survivor := page.Items[0]
	if !survivor.UnitPrice.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("survivor price = %s, want 4500", survivor.UnitPrice)
	}
	if survivor.SourceFile != "eaton_mcb.xlsx" {
		t.Fatalf("survivor source = %s", survivor.SourceFile)
	}
	if survivor.Brand != "FESTO" && survivor.Brand != "Eaton" {
		t.Fatalf("unexpected survivor brand %q", survivor.Brand)
	}

	// Derived fields are computed on insert.
	if survivor.TotalValue.IsZero() {
		t.Fatal("total value should be derived on save")
	}

	// Zero quantity with a minimum set reads as out of stock.
	page, err = models.SearchItems(ctx, db, models.ItemFilter{Search: "VUVG-L10"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].StockStatus != models.StockStatusOutOfStock {
		t.Fatalf("VUVG-L10 should be out of stock, got %+v", page.Items)
	}

	if report.Quality == nil || report.Quality.TotalItems != 3 {
		t.Fatalf("quality report missing or wrong: %+v", report.Quality)
	}
}

func TestPipelineRun_Idempotent(t *testing.T) {
	connectTestDB(t)
	root := t.TempDir()

	writeWorkbook(t, filepath.Join(root, "omron_sensors.xlsx"), [][]interface{}{
		{"Part Number", "Description", "Unit Price", "Quantity"},
		{"E2E-X5ME1", "Proximity sensor inductive M12", 1850, 25},
	})

	ctx := context.Background()
	db := config.GetDB()
	settings := testPipelineSettings(root)

	first, err := workflow.NewPipeline(db, settings).Run(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.FilesIngested != 1 || first.FilesDuplicate != 0 {
		t.Fatalf("first run ingested=%d duplicates=%d", first.FilesIngested, first.FilesDuplicate)
	}

	second, err := workflow.NewPipeline(db, settings).Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.FilesIngested != 0 || second.FilesDuplicate != 1 {
		t.Fatalf("second run ingested=%d duplicates=%d", second.FilesIngested, second.FilesDuplicate)
	}

	bronzeCount, err := models.CountBronzeFiles(ctx, db)
	if err != nil {
		t.Fatalf("count bronze: %v", err)
	}
	if bronzeCount != 1 {
		t.Fatalf("bronze rows = %d, want 1", bronzeCount)
	}

	silverCount, err := models.CountSilverItems(ctx, db)
	if err != nil {
		t.Fatalf("count silver: %v", err)
	}
	if silverCount != 1 {
		t.Fatalf("silver rows = %d, want 1", silverCount)
	}
}

func TestPipelineRun_UnreadableFile(t *testing.T) {
	connectTestDB(t)
	root := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, "corrupt_vendor.xlsx"), []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	writeWorkbook(t, filepath.Join(root, "siemens_plc.xlsx"), [][]interface{}{
		{"Part Number", "Description", "Unit Price", "Quantity"},
		{"6ES7214", "CPU module compact", 42000, 2},
	})

	ctx := context.Background()
	db := config.GetDB()
	report, err := workflow.NewPipeline(db, testPipelineSettings(root)).Run(ctx)
	if err != nil {
		t.Fatalf("pipeline run: %v", err)
	}

	if report.FilesFailed != 1 {
		t.Fatalf("files failed = %d, want 1", report.FilesFailed)
	}
	if report.FilesIngested != 1 {
		t.Fatalf("files ingested = %d, want 1", report.FilesIngested)
	}
	if len(report.Errors) == 0 {
		t.Fatal("unreadable file should be reported")
	}

	// The failure is recorded in bronze but never feeds silver.
	bronzeCount, err := models.CountBronzeFiles(ctx, db)
	if err != nil {
		t.Fatalf("count bronze: %v", err)
	}
	if bronzeCount != 2 {
		t.Fatalf("bronze rows = %d, want 2", bronzeCount)
	}
	silverCount, err := models.CountSilverItems(ctx, db)
	if err != nil {
		t.Fatalf("count silver: %v", err)
	}
	if silverCount != 1 {
		t.Fatalf("silver rows = %d, want 1", silverCount)
	}
}

func TestRebuildSilver_FromExistingBronze(t *testing.T) {
	connectTestDB(t)
	root := t.TempDir()

	writeWorkbook(t, filepath.Join(root, "lapp_cables.xlsx"), [][]interface{}{
		{"Part Number", "Description", "Unit Price", "Quantity"},
		{"OLFLEX-110", "Control cable 4G1.5", 95, 500},
	})

	ctx := context.Background()
	db := config.GetDB()
	settings := testPipelineSettings(root)

	if _, err := workflow.NewPipeline(db, settings).Run(ctx); err != nil {
		t.Fatalf("initial run: %v", err)
	}

	// Remove the source files; rebuild must work from bronze alone.
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("remove root: %v", err)
	}

	report, err := workflow.NewPipeline(db, settings).RebuildSilver(ctx)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if report.ItemsAfterDedup != 1 {
		t.Fatalf("items after rebuild = %d, want 1", report.ItemsAfterDedup)
	}

	count, err := models.CountSilverItems(ctx, db)
	if err != nil {
		t.Fatalf("count silver: %v", err)
	}
	if count != 1 {
		t.Fatalf("silver rows = %d, want 1", count)
	}
}
