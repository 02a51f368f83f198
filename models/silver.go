package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/machinecraft/inventory_backend/utils"
)

// SilverItem is one canonical inventory item after cleaning, classification
// and deduplication. TotalValue, StockStatus and PriceRange are derived and
// recomputed on every save; they are stored for query/index convenience but
// can never drift from the fields they derive from.
type SilverItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	PartNumber  string          `gorm:"size:100;index" json:"part_number"`
	Description string          `gorm:"type:text" json:"description"`
	Brand       string          `gorm:"size:100;index" json:"brand"`
	Category    string          `gorm:"size:100;index" json:"category"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0;index" json:"unit_price"`
	Quantity    int             `gorm:"default:0" json:"quantity"`
	MinStock    int             `gorm:"default:0" json:"min_stock"`
	TotalValue  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_value"`
	StockStatus StockStatus     `gorm:"size:20;index" json:"stock_status"`
	PriceRange  PriceRange      `gorm:"size:30;index" json:"price_range"`

	SourceFile  string `gorm:"size:255;index" json:"source_file"`
	SourceSheet string `gorm:"size:255" json:"source_sheet"`

	Confidence       Confidence       `gorm:"size:10;default:low" json:"confidence"`
	Notes            string           `gorm:"type:text" json:"notes,omitempty"`
	ValidationStatus ValidationStatus `gorm:"size:20;default:pending" json:"validation_status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Recompute refreshes every derived field from its sources.
func (item *SilverItem) Recompute() {
	item.TotalValue = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	item.StockStatus = StockStatusFor(item.Quantity, item.MinStock)
	item.PriceRange = PriceRangeFor(item.UnitPrice)
}

func (item *SilverItem) BeforeSave(tx *gorm.DB) error {
	item.Recompute()
	return nil
}

// ReplaceAllSilverItems rebuilds the Silver layer wholesale: truncate, then
// insert the new set in one transaction. Silver is a materialized view over
// Bronze; there is deliberately no incremental-update path.
func ReplaceAllSilverItems(ctx context.Context, db *gorm.DB, items []SilverItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SilverItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 200).Error
	})
}

func GetSilverItemByID(ctx context.Context, db *gorm.DB, id int) (*SilverItem, error) {
	var item SilverItem
	err := db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func CountSilverItems(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&SilverItem{}).Count(&count).Error
	return count, err
}

// MigrateTable creates/updates the persistent schema. Gold is query-only
// and has no tables of its own.
func MigrateTable() error {
	return migrateOn(nil)
}

// MigrateOn runs the migration on an explicit DB handle (tests).
func MigrateOn(db *gorm.DB) error {
	return migrateOn(db)
}

func migrateOn(db *gorm.DB) error {
	if db == nil {
		db = defaultDB()
	}
	return db.AutoMigrate(
		&BronzeFile{},
		&SilverItem{},
	)
}
