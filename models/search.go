package models

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/machinecraft/inventory_backend/config"
)

// ItemFilter carries the query-string filters of the items endpoint.
// Zero values mean "no constraint".
type ItemFilter struct {
	Search      string
	Brand       string
	Category    string
	StockStatus string
	PriceRange  string
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	Page        int
	PerPage     int
}

type ItemPage struct {
	Items      []SilverItem `json:"items"`
	TotalCount int64        `json:"total_count"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
}

func (filter *ItemFilter) apply(query *gorm.DB) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"part_number LIKE ? OR description LIKE ? OR brand LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.StockStatus != "" {
		query = query.Where("stock_status = ?", filter.StockStatus)
	}
	if filter.PriceRange != "" {
		query = query.Where("price_range = ?", filter.PriceRange)
	}
	if filter.PriceMin != nil {
		query = query.Where("unit_price >= ?", filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("unit_price <= ?", filter.PriceMax)
	}
	return query
}

// SearchItems runs a filtered, paginated query over Silver. The count is
// taken before pagination so clients can render page controls.
func SearchItems(ctx context.Context, db *gorm.DB, filter ItemFilter) (*ItemPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > config.SearchLimit {
		filter.PerPage = config.SearchLimit
	}

	// Session branches the chain so Count and Find each start from a clean
	// statement instead of sharing finisher state.
	base := filter.apply(db.WithContext(ctx).Model(&SilverItem{})).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []SilverItem
	err := base.
		Order("brand ASC, unit_price DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ItemPage{
		Items:      items,
		TotalCount: total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
	}, nil
}

type FacetCount struct {
	Name      string `json:"name"`
	ItemCount int64  `json:"item_count"`
}

func listFacet(ctx context.Context, db *gorm.DB, column string) ([]FacetCount, error) {
	var facets []FacetCount
	err := db.WithContext(ctx).
		Model(&SilverItem{}).
		Select(column+" AS name, COUNT(*) AS item_count").
		Where(column+" <> ''").
		Group(column).
		Order("item_count DESC").
		Scan(&facets).Error
	return facets, err
}

func ListBrands(ctx context.Context, db *gorm.DB) ([]FacetCount, error) {
	return listFacet(ctx, db, "brand")
}

func ListCategories(ctx context.Context, db *gorm.DB) ([]FacetCount, error) {
	return listFacet(ctx, db, "category")
}
