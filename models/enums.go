package models

import (
	"github.com/shopspring/decimal"
)

type ProcessingStatus string

const (
	ProcessingStatusPending     ProcessingStatus = "pending"
	ProcessingStatusIngested    ProcessingStatus = "ingested"
	ProcessingStatusTransformed ProcessingStatus = "transformed"
	ProcessingStatusError       ProcessingStatus = "error"
)

// rank orders the non-terminal statuses so updates stay monotonic:
// pending -> ingested -> transformed. "error" is terminal.
func (s ProcessingStatus) rank() int {
	switch s {
	case ProcessingStatusPending:
		return 0
	case ProcessingStatusIngested:
		return 1
	case ProcessingStatusTransformed:
		return 2
	default:
		return -1
	}
}

type StockStatus string

const (
	StockStatusInStock    StockStatus = "In Stock"
	StockStatusLowStock   StockStatus = "Low Stock"
	StockStatusOutOfStock StockStatus = "Out of Stock"
)

// StockStatusFor derives the stock tag from quantity on hand vs the minimum
// threshold. Out of Stock only applies when a minimum is actually set;
// an item with no stock and no threshold is just low.
func StockStatusFor(quantity int, minStock int) StockStatus {
	switch {
	case quantity == 0 && minStock > 0:
		return StockStatusOutOfStock
	case quantity <= minStock:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func ParseConfidence(s string) (Confidence, bool) {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(s), true
	}
	return "", false
}

type PriceRange string

const (
	PriceRangeLow    PriceRange = "Low (<₹1K)"
	PriceRangeMedium PriceRange = "Medium (₹1K-10K)"
	PriceRangeHigh   PriceRange = "High (>₹10K)"
)

var (
	priceTierMedium = decimal.NewFromInt(1000)
	priceTierHigh   = decimal.NewFromInt(10000)
)

func PriceRangeFor(unitPrice decimal.Decimal) PriceRange {
	switch {
	case unitPrice.GreaterThan(priceTierHigh):
		return PriceRangeHigh
	case unitPrice.GreaterThan(priceTierMedium):
		return PriceRangeMedium
	default:
		return PriceRangeLow
	}
}

type ValidationStatus string

const (
	ValidationStatusPending   ValidationStatus = "pending"
	ValidationStatusValidated ValidationStatus = "validated"
)
