package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const SchemaVersion = "1.0.0"

// RawSheet is one worksheet of a source file, stored verbatim as a cell
// grid. No header interpretation happens at this layer; the transform stage
// decides later which row is the header (stray title rows are common), so
// Bronze has to keep every row.
type RawSheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Cell returns the cell at (row, col) or "" when the row is ragged.
// Spreadsheet rows routinely come back shorter than the header row.
func (s RawSheet) Cell(row int, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// BronzeFile is one ingested source file: the verbatim sheet payloads plus
// processing bookkeeping. DataHash is the md5 of the file bytes and is
// unique, which is what makes re-ingesting identical content a no-op.
type BronzeFile struct {
	ID                 int              `gorm:"primary_key" json:"id"`
	SourcePath         string           `gorm:"size:500;not null" json:"source_path"`
	SourceFile         string           `gorm:"size:255;not null;index" json:"source_file"`
	DataHash           string           `gorm:"size:32;uniqueIndex;not null" json:"data_hash"`
	RawData            []byte           `gorm:"type:json" json:"-"`
	FileSize           int64            `json:"file_size"`
	FileModified       time.Time        `json:"file_modified"`
	IngestionTimestamp time.Time        `gorm:"autoCreateTime" json:"ingestion_timestamp"`
	ProcessingStatus   ProcessingStatus `gorm:"size:20;index;default:pending" json:"processing_status"`
	ErrorMessage       string           `gorm:"type:text" json:"error_message,omitempty"`
	SchemaVersion      string           `gorm:"size:10" json:"schema_version"`
}

func (f *BronzeFile) Sheets() ([]RawSheet, error) {
	if len(f.RawData) == 0 {
		return nil, nil
	}
	var sheets []RawSheet
	if err := json.Unmarshal(f.RawData, &sheets); err != nil {
		return nil, fmt.Errorf("bronze record %d: decode raw sheets: %w", f.ID, err)
	}
	return sheets, nil
}

// FindBronzeByHash returns the existing record for a content hash, or nil.
func FindBronzeByHash(ctx context.Context, db *gorm.DB, hash string) (*BronzeFile, error) {
	var record BronzeFile
	err := db.WithContext(ctx).Where("data_hash = ?", hash).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateBronzeFile stores a newly ingested file. Sheets are serialized into
// RawData; the record starts at the given status (ingested for readable
// files, error for unreadable ones).
func CreateBronzeFile(ctx context.Context, db *gorm.DB, record *BronzeFile, sheets []RawSheet) error {
	if sheets != nil {
		data, err := json.Marshal(sheets)
		if err != nil {
			return fmt.Errorf("encode raw sheets for %s: %w", record.SourceFile, err)
		}
		record.RawData = data
	}
	if record.SchemaVersion == "" {
		record.SchemaVersion = SchemaVersion
	}
	return db.WithContext(ctx).Create(record).Error
}

// AdvanceStatus moves a bronze record forward. Backward transitions are
// ignored so a Silver rebuild over already-transformed records cannot
// regress their bookkeeping; "error" is always allowed and terminal.
func (f *BronzeFile) AdvanceStatus(ctx context.Context, db *gorm.DB, next ProcessingStatus, errorMessage string) error {
	if next != ProcessingStatusError && next.rank() <= f.ProcessingStatus.rank() {
		return nil
	}
	updates := map[string]interface{}{"processing_status": next}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	if err := db.WithContext(ctx).Model(f).Updates(updates).Error; err != nil {
		return err
	}
	f.ProcessingStatus = next
	if errorMessage != "" {
		f.ErrorMessage = errorMessage
	}
	return nil
}

// GetTransformableBronze returns every record whose raw payload can feed a
// Silver rebuild, i.e. everything that was ever successfully ingested.
func GetTransformableBronze(ctx context.Context, db *gorm.DB) ([]BronzeFile, error) {
	var records []BronzeFile
	err := db.WithContext(ctx).
		Where("processing_status IN ?", []ProcessingStatus{ProcessingStatusIngested, ProcessingStatusTransformed}).
		Order("id ASC").
		Find(&records).Error
	return records, err
}

func CountBronzeFiles(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&BronzeFile{}).Count(&count).Error
	return count, err
}
