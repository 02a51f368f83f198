package reports

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/machinecraft/inventory_backend/models"
	"github.com/machinecraft/inventory_backend/utils"
)

var itemHeadings = []string{
	"Part Number", "Description", "Brand", "Category", "Unit Price (INR)",
	"Quantity", "Min Stock", "Total Value (INR)", "Stock Status", "Price Range",
	"Source File",
}

// BuildMasterWorkbook assembles the consolidated inventory workbook: the
// full master sheet, one sheet per brand, the analysis sheets and the
// executive summary. Uncategorized items are left out of the master and
// brand sheets; they surface through the quality report instead.
func BuildMasterWorkbook(ctx context.Context, db *gorm.DB, highValueThreshold decimal.Decimal) (*excelize.File, error) {
	items, err := models.GetAllItemsSorted(ctx, db)
	if err != nil {
		return nil, err
	}

	var exportable []models.SilverItem
	for _, item := range items {
		if item.Category == "Uncategorized" {
			continue
		}
		exportable = append(exportable, item)
	}

	f := excelize.NewFile()

	if err := writeItemSheet(f, "Master Inventory", exportable); err != nil {
		return nil, err
	}
	// excelize seeds new files with Sheet1; rename takes its slot.
	if err := replaceDefaultSheet(f, "Master Inventory"); err != nil {
		return nil, err
	}

	if err := writeBrandSheets(f, exportable); err != nil {
		return nil, err
	}
	if err := writeAnalysisSheet(ctx, db, f, "Category Analysis", models.GetCategoryAnalysis); err != nil {
		return nil, err
	}
	if err := writeAnalysisSheet(ctx, db, f, "Brand Analysis", models.GetBrandAnalysis); err != nil {
		return nil, err
	}
	if err := writeAnalysisSheet(ctx, db, f, "Price Analysis", models.GetPriceRangeAnalysis); err != nil {
		return nil, err
	}

	lowStock, err := models.GetLowStockItems(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := writeItemSheet(f, "Low Stock Alert", lowStock); err != nil {
		return nil, err
	}

	highValue, err := models.GetHighValueItems(ctx, db, highValueThreshold)
	if err != nil {
		return nil, err
	}
	if err := writeItemSheet(f, "High Value Items", highValue); err != nil {
		return nil, err
	}

	if err := writeSummarySheet(ctx, db, f); err != nil {
		return nil, err
	}

	return f, nil
}

// ExportMasterWorkbook streams the workbook as an HTTP attachment.
func ExportMasterWorkbook(ctx context.Context, db *gorm.DB, w http.ResponseWriter, highValueThreshold decimal.Decimal) error {
	f, err := BuildMasterWorkbook(ctx, db, highValueThreshold)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=master_inventory.xlsx")
	return f.Write(w)
}

// SaveMasterWorkbook writes the workbook to disk (CLI export).
func SaveMasterWorkbook(ctx context.Context, db *gorm.DB, filename string, highValueThreshold decimal.Decimal) error {
	f, err := BuildMasterWorkbook(ctx, db, highValueThreshold)
	if err != nil {
		return err
	}
	return f.SaveAs(filename)
}

func writeItemSheet(f *excelize.File, sheetName string, items []models.SilverItem) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// Add headers
	col := 'A'
	for _, h := range itemHeadings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	// Add data
	for i, d := range items {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, d.PartNumber)
		f.SetCellValue(sheetName, "B"+row, d.Description)
		f.SetCellValue(sheetName, "C"+row, d.Brand)
		f.SetCellValue(sheetName, "D"+row, d.Category)
		f.SetCellValue(sheetName, "E"+row, d.UnitPrice.InexactFloat64())
		f.SetCellValue(sheetName, "F"+row, d.Quantity)
		f.SetCellValue(sheetName, "G"+row, d.MinStock)
		f.SetCellValue(sheetName, "H"+row, d.TotalValue.InexactFloat64())
		f.SetCellValue(sheetName, "I"+row, string(d.StockStatus))
		f.SetCellValue(sheetName, "J"+row, string(d.PriceRange))
		f.SetCellValue(sheetName, "K"+row, d.SourceFile)
	}
	return nil
}

// writeBrandSheets adds one sheet per brand, in the brand order of the
// already-sorted item slice. Sheet names go through SanitizeSheetName since
// brand names can carry characters Excel rejects.
func writeBrandSheets(f *excelize.File, items []models.SilverItem) error {
	byBrand := map[string][]models.SilverItem{}
	var order []string
	for _, item := range items {
		if item.Brand == "" {
			continue
		}
		if _, seen := byBrand[item.Brand]; !seen {
			order = append(order, item.Brand)
		}
		byBrand[item.Brand] = append(byBrand[item.Brand], item)
	}

	used := map[string]bool{}
	for _, brand := range order {
		sheetName := utils.SanitizeSheetName(brand)
		if used[sheetName] {
			continue
		}
		used[sheetName] = true
		if err := writeItemSheet(f, sheetName, byBrand[brand]); err != nil {
			return err
		}
	}
	return nil
}

func writeAnalysisSheet(ctx context.Context, db *gorm.DB, f *excelize.File, sheetName string, query func(context.Context, *gorm.DB) ([]models.DimensionAnalysis, error)) error {
	rows, err := query(ctx, db)
	if err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	headings := []string{
		"Name", "Item Count", "Total Price (INR)", "Avg Price (INR)",
		"Min Price (INR)", "Max Price (INR)", "Total Quantity",
		"Total Inventory Value (INR)",
	}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	for i, d := range rows {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, d.Label)
		f.SetCellValue(sheetName, "B"+row, d.ItemCount)
		f.SetCellValue(sheetName, "C"+row, d.TotalPrice.InexactFloat64())
		f.SetCellValue(sheetName, "D"+row, d.AvgPrice.InexactFloat64())
		f.SetCellValue(sheetName, "E"+row, d.MinPrice.InexactFloat64())
		f.SetCellValue(sheetName, "F"+row, d.MaxPrice.InexactFloat64())
		f.SetCellValue(sheetName, "G"+row, d.TotalQuantity)
		f.SetCellValue(sheetName, "H"+row, d.TotalInventoryValue.InexactFloat64())
	}
	return nil
}

func writeSummarySheet(ctx context.Context, db *gorm.DB, f *excelize.File) error {
	summary, err := models.GetInventorySummary(ctx, db)
	if err != nil {
		return err
	}

	sheetName := "Executive Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	lines := []struct {
		label string
		value interface{}
	}{
		{"Total Items", summary.TotalItems},
		{"Total Brands", summary.TotalBrands},
		{"Total Categories", summary.TotalCategories},
		{"Total Quantity", summary.TotalQuantity},
		{"Total Inventory Value (INR)", summary.TotalInventoryValue.InexactFloat64()},
		{"Average Unit Price (INR)", summary.AvgPrice.InexactFloat64()},
		{"Low Stock Items", summary.LowStockItems},
		{"Out of Stock Items", summary.OutOfStockItems},
	}
	for i, line := range lines {
		row := fmt.Sprint(i + 1)
		f.SetCellValue(sheetName, "A"+row, line.label)
		f.SetCellValue(sheetName, "B"+row, line.value)
	}
	return nil
}

func replaceDefaultSheet(f *excelize.File, firstSheet string) error {
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	if idx, err := f.GetSheetIndex(firstSheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return nil
}
