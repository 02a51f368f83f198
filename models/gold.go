package models

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gold layer: read-time aggregations over the current Silver set. Nothing
// here writes or caches; every call recomputes from silver_items, so the
// numbers cannot go stale across Silver rebuilds.

type DimensionAnalysis struct {
	Label               string          `json:"label"`
	ItemCount           int64           `json:"item_count"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	AvgPrice            decimal.Decimal `json:"avg_price"`
	MinPrice            decimal.Decimal `json:"min_price"`
	MaxPrice            decimal.Decimal `json:"max_price"`
	TotalQuantity       int64           `json:"total_quantity"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
}

const dimensionAnalysisSQL = `
SELECT
    %s AS label,
    COUNT(*) AS item_count,
    SUM(unit_price) AS total_price,
    AVG(unit_price) AS avg_price,
    MIN(unit_price) AS min_price,
    MAX(unit_price) AS max_price,
    SUM(quantity) AS total_quantity,
    SUM(total_value) AS total_inventory_value
FROM silver_items
WHERE %s <> ''
GROUP BY %s
ORDER BY total_inventory_value DESC`

// analyzeByColumn groups silver_items by one of its own columns. The column
// name is always a compile-time constant, never user input.
func analyzeByColumn(ctx context.Context, db *gorm.DB, column string) ([]DimensionAnalysis, error) {
	var rows []DimensionAnalysis
	sql := fmt.Sprintf(dimensionAnalysisSQL, column, column, column)
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func GetBrandAnalysis(ctx context.Context, db *gorm.DB) ([]DimensionAnalysis, error) {
	return analyzeByColumn(ctx, db, "brand")
}

func GetCategoryAnalysis(ctx context.Context, db *gorm.DB) ([]DimensionAnalysis, error) {
	return analyzeByColumn(ctx, db, "category")
}

func GetPriceRangeAnalysis(ctx context.Context, db *gorm.DB) ([]DimensionAnalysis, error) {
	return analyzeByColumn(ctx, db, "price_range")
}

func GetStockStatusAnalysis(ctx context.Context, db *gorm.DB) ([]DimensionAnalysis, error) {
	return analyzeByColumn(ctx, db, "stock_status")
}

// InventorySummary is the headline card shown on every front end.
type InventorySummary struct {
	TotalItems          int64           `json:"total_items"`
	TotalBrands         int64           `json:"total_brands"`
	TotalCategories     int64           `json:"total_categories"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	AvgPrice            decimal.Decimal `json:"avg_price"`
	TotalQuantity       int64           `json:"total_quantity"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	LowStockItems       int64           `json:"low_stock_items"`
	OutOfStockItems     int64           `json:"out_of_stock_items"`
}

const inventorySummarySQL = `
SELECT
    COUNT(*) AS total_items,
    COUNT(DISTINCT brand) AS total_brands,
    COUNT(DISTINCT category) AS total_categories,
    COALESCE(SUM(unit_price), 0) AS total_price,
    COALESCE(AVG(unit_price), 0) AS avg_price,
    COALESCE(SUM(quantity), 0) AS total_quantity,
    COALESCE(SUM(total_value), 0) AS total_inventory_value,
    COUNT(CASE WHEN stock_status = 'Low Stock' THEN 1 END) AS low_stock_items,
    COUNT(CASE WHEN stock_status = 'Out of Stock' THEN 1 END) AS out_of_stock_items
FROM silver_items`

func GetInventorySummary(ctx context.Context, db *gorm.DB) (*InventorySummary, error) {
	var summary InventorySummary
	if err := db.WithContext(ctx).Raw(inventorySummarySQL).Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetLowStockItems returns the low-stock alert subset: items at or below
// their minimum that still have a minimum configured, most valuable first.
func GetLowStockItems(ctx context.Context, db *gorm.DB) ([]SilverItem, error) {
	var items []SilverItem
	err := db.WithContext(ctx).
		Where("stock_status IN ?", []StockStatus{StockStatusLowStock, StockStatusOutOfStock}).
		Order("total_value DESC").
		Find(&items).Error
	return items, err
}

func GetHighValueItems(ctx context.Context, db *gorm.DB, threshold decimal.Decimal) ([]SilverItem, error) {
	var items []SilverItem
	err := db.WithContext(ctx).
		Where("unit_price > ?", threshold).
		Order("brand ASC, unit_price DESC").
		Find(&items).Error
	return items, err
}

// GetAllItemsSorted returns the full Silver set in report order: brand
// ascending, price descending within brand.
func GetAllItemsSorted(ctx context.Context, db *gorm.DB) ([]SilverItem, error) {
	var items []SilverItem
	err := db.WithContext(ctx).
		Order("brand ASC, unit_price DESC").
		Find(&items).Error
	return items, err
}

// DataQualityReport counts the advisory gaps left after a Silver rebuild.
// These are reported, never enforced: a missing price is normal for messy
// source sheets.
type DataQualityReport struct {
	TotalItems         int64 `json:"total_items"`
	MissingPartNumber  int64 `json:"missing_part_number"`
	MissingPrice       int64 `json:"missing_price"`
	MissingBrand       int64 `json:"missing_brand"`
	UncategorizedItems int64 `json:"uncategorized_items"`
}

const dataQualitySQL = `
SELECT
    COUNT(*) AS total_items,
    COUNT(CASE WHEN part_number = '' THEN 1 END) AS missing_part_number,
    COUNT(CASE WHEN unit_price <= 0 THEN 1 END) AS missing_price,
    COUNT(CASE WHEN brand = '' OR brand = 'Unknown Brand' THEN 1 END) AS missing_brand,
    COUNT(CASE WHEN category = 'Uncategorized' THEN 1 END) AS uncategorized_items
FROM silver_items`

func GetDataQualityReport(ctx context.Context, db *gorm.DB) (*DataQualityReport, error) {
	var report DataQualityReport
	if err := db.WithContext(ctx).Raw(dataQualitySQL).Scan(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}
