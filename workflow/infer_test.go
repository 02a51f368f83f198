package workflow_test

import (
	"testing"

	"github.com/machinecraft/inventory_backend/models"
	"github.com/machinecraft/inventory_backend/workflow"
)

func TestInferColumns_FuzzyHeaderNames(t *testing.T) {
	headers := []string{"Item Code", "Item Description", "Rate", "Qty", "Min Stock"}
	fields := workflow.InferColumns(headers)

	if fields.PartNumber != 0 {
		t.Fatalf("part number column = %d, want 0", fields.PartNumber)
	}
	if fields.Description != 1 {
		t.Fatalf("description column = %d, want 1", fields.Description)
	}
	if fields.Price != 2 {
		t.Fatalf("price column = %d, want 2", fields.Price)
	}
	if fields.Quantity != 3 {
		t.Fatalf("quantity column = %d, want 3", fields.Quantity)
	}
	if fields.MinStock != 4 {
		t.Fatalf("min stock column = %d, want 4", fields.MinStock)
	}
}

func TestInferColumns_MissingFields(t *testing.T) {
	fields := workflow.InferColumns([]string{"Part No", "Unit Price"})
	if fields.PartNumber != 0 || fields.Price != 1 {
		t.Fatalf("unexpected mapping %+v", fields)
	}
	if fields.Description != -1 || fields.Quantity != -1 || fields.MinStock != -1 {
		t.Fatalf("absent fields should be -1, got %+v", fields)
	}
}

func TestSelectTable_SkipsTitleRows(t *testing.T) {
	sheet := models.RawSheet{
		Name: "Price List",
		Rows: [][]string{
			{"FESTO Pneumatics Price List 2024"},
			{},
			{"Part Number", "Description", "Unit Price", "Quantity"},
			{"DSBC-32-100", "Pneumatic cylinder 32mm bore", "4500", "10"},
			{"VUVG-L10", "Solenoid valve", "2800", "4"},
		},
	}

	table := workflow.SelectTable(sheet)
	if table.HeaderRow != 2 {
		t.Fatalf("header row = %d, want 2", table.HeaderRow)
	}
	if len(table.DataRows) != 2 {
		t.Fatalf("data rows = %d, want 2", len(table.DataRows))
	}
	if table.Fields.PartNumber != 0 || table.Fields.Price != 2 {
		t.Fatalf("unexpected mapping %+v", table.Fields)
	}
}

func TestSelectTable_KeepsWideTwoFieldHeader(t *testing.T) {
	// A wide header that only maps two fields must still win over the
	// keyword-bearing data rows below it.
	sheet := models.RawSheet{
		Name: "Export",
		Rows: [][]string{
			{"Part No", "Unit Price", "HSN", "GST %"},
			{"Spare item", "price on request", "10 nos", "18"},
			{"FAZ-C32", "1250", "8536", "18"},
		},
	}

	table := workflow.SelectTable(sheet)
	if table.HeaderRow != 0 {
		t.Fatalf("header row = %d, want 0", table.HeaderRow)
	}
	if len(table.DataRows) != 2 {
		t.Fatalf("data rows = %d, want 2", len(table.DataRows))
	}
	if table.Fields.PartNumber != 0 || table.Fields.Price != 1 {
		t.Fatalf("unexpected mapping %+v", table.Fields)
	}
}

func TestSelectTable_FallsBackToFirstRow(t *testing.T) {
	sheet := models.RawSheet{
		Name: "Notes",
		Rows: [][]string{
			{"random", "junk"},
			{"no", "headers", "here"},
		},
	}
	table := workflow.SelectTable(sheet)
	if table.HeaderRow != 0 {
		t.Fatalf("header row = %d, want fallback 0", table.HeaderRow)
	}
}

func TestGuessFromContent(t *testing.T) {
	part, desc := workflow.GuessFromContent([]string{"", "FX3U-32MR", "Programmable logic controller base unit", "4"})
	if part != "FX3U-32MR" {
		t.Fatalf("guessed part = %q", part)
	}
	if desc != "Programmable logic controller base unit" {
		t.Fatalf("guessed description = %q", desc)
	}

	part, desc = workflow.GuessFromContent([]string{"1", "2", "3"})
	if part != "" || desc != "" {
		t.Fatalf("short cells should not be guessed, got %q / %q", part, desc)
	}
}
