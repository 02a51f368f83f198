package workflow_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/machinecraft/inventory_backend/models"
	"github.com/machinecraft/inventory_backend/workflow"
)

func item(part string, desc string, price int64, source string) models.SilverItem {
	return models.SilverItem{
		PartNumber:  part,
		Description: desc,
		UnitPrice:   decimal.NewFromInt(price),
		SourceFile:  source,
	}
}

func TestDedupe_KeepsHighestPrice(t *testing.T) {
	items := []models.SilverItem{
		item("X1", "Widget", 100, "a.xlsx"),
		item("X1", "Widget", 150, "b.xlsx"),
	}

	result := workflow.Dedupe(items)
	if len(result) != 1 {
		t.Fatalf("got %d items, want 1", len(result))
	}
	if !result[0].UnitPrice.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("survivor price = %s, want 150", result[0].UnitPrice)
	}
	if result[0].SourceFile != "b.xlsx" {
		t.Fatalf("survivor source = %s, want b.xlsx", result[0].SourceFile)
	}
}

func TestDedupe_FirstSeenWinsTies(t *testing.T) {
	items := []models.SilverItem{
		item("X1", "Widget", 100, "a.xlsx"),
		item("X1", "Widget", 100, "b.xlsx"),
	}

	result := workflow.Dedupe(items)
	if len(result) != 1 {
		t.Fatalf("got %d items, want 1", len(result))
	}
	if result[0].SourceFile != "a.xlsx" {
		t.Fatalf("tie should keep first seen, got %s", result[0].SourceFile)
	}
}

func TestDedupe_CaseInsensitiveKeys(t *testing.T) {
	items := []models.SilverItem{
		item("ab-100", "proximity sensor", 500, "a.xlsx"),
		item("AB-100", "Proximity Sensor", 700, "b.xlsx"),
	}
	result := workflow.Dedupe(items)
	if len(result) != 1 {
		t.Fatalf("got %d items, want 1", len(result))
	}
	if result[0].PartNumber != "AB-100" {
		t.Fatalf("survivor part = %s", result[0].PartNumber)
	}
}

// An item that loses under any of its identities must disappear entirely:
// the same part number listed with two descriptions collapses to the single
// highest-priced listing.
func TestDedupe_SamePartDifferentDescriptions(t *testing.T) {
	items := []models.SilverItem{
		item("X1", "Widget", 100, "a.xlsx"),
		item("X1", "Widget deluxe", 200, "b.xlsx"),
	}

	result := workflow.Dedupe(items)
	if len(result) != 1 {
		t.Fatalf("got %d items, want 1", len(result))
	}
	if result[0].Description != "Widget deluxe" {
		t.Fatalf("survivor description = %q", result[0].Description)
	}
}

func TestDedupe_DescriptionOnlyItems(t *testing.T) {
	items := []models.SilverItem{
		item("", "Band heater 220V 500W", 350, "a.xlsx"),
		item("", "Band heater 220V 500W", 300, "b.xlsx"),
		item("", "Cartridge heater 12mm", 250, "c.xlsx"),
	}

	result := workflow.Dedupe(items)
	if len(result) != 2 {
		t.Fatalf("got %d items, want 2", len(result))
	}
}

// No two survivors may share an identity key, regardless of input shape.
func TestDedupe_NoDuplicateKeysSurvive(t *testing.T) {
	items := []models.SilverItem{
		item("X1", "Widget", 100, "a.xlsx"),
		item("X1", "", 120, "b.xlsx"),
		item("X1", "Widget", 150, "c.xlsx"),
		item("", "Widget", 90, "d.xlsx"),
		item("Y2", "Gadget", 80, "e.xlsx"),
	}

	result := workflow.Dedupe(items)
	seen := map[string]bool{}
	for _, it := range result {
		part := strings.ToLower(it.PartNumber)
		if part == "" {
			continue
		}
		if seen[part] {
			t.Fatalf("duplicate part key %q in result", part)
		}
		seen[part] = true
	}
}
