package workflow

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/machinecraft/inventory_backend/config"
	"github.com/machinecraft/inventory_backend/models"
)

// IngestOutcome tells the pipeline what happened to one discovered file.
type IngestOutcome int

const (
	IngestCreated IngestOutcome = iota
	IngestDuplicate
	IngestFailed
)

// IngestFile loads one spreadsheet into Bronze. Content identity is the md5
// of the file bytes: an identical file seen again (same path or moved) is a
// no-op, which is what makes the whole pipeline safe to re-run.
//
// Unreadable files still get a Bronze record, in error status with the path
// hash standing in for the content hash, so the run report can show them.
func IngestFile(ctx context.Context, db *gorm.DB, path string) (IngestOutcome, error) {
	logger := config.GetLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		config.LogError(logger, "workflow", "IngestFile", "read source file", path, err)
		return IngestFailed, recordUnreadable(ctx, db, path, fmt.Sprintf("read file: %v", err))
	}

	sum := md5.Sum(data)
	hash := hex.EncodeToString(sum[:])

	existing, err := models.FindBronzeByHash(ctx, db, hash)
	if err != nil {
		return IngestFailed, err
	}
	if existing != nil {
		logger.WithField("file", filepath.Base(path)).
			WithField("hash", hash).
			Debug("content already in bronze, skipping")
		return IngestDuplicate, nil
	}

	sheets, err := readWorkbook(data)
	if err != nil {
		config.LogError(logger, "workflow", "IngestFile", "parse workbook", path, err)
		return IngestFailed, recordUnreadable(ctx, db, path, fmt.Sprintf("parse workbook: %v", err))
	}

	info, err := os.Stat(path)
	if err != nil {
		return IngestFailed, err
	}

	record := &models.BronzeFile{
		SourcePath:       path,
		SourceFile:       filepath.Base(path),
		DataHash:         hash,
		FileSize:         info.Size(),
		FileModified:     info.ModTime(),
		ProcessingStatus: models.ProcessingStatusIngested,
	}
	if err := models.CreateBronzeFile(ctx, db, record, sheets); err != nil {
		return IngestFailed, err
	}

	logger.WithField("file", record.SourceFile).
		WithField("sheets", len(sheets)).
		Info("ingested into bronze")
	return IngestCreated, nil
}

func readWorkbook(data []byte) ([]models.RawSheet, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer book.Close()

	var sheets []models.RawSheet
	for _, name := range book.GetSheetList() {
		rows, err := book.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		sheets = append(sheets, models.RawSheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// recordUnreadable stores an error-status Bronze record keyed by the path
// hash. If a record for the same path hash already exists this is a repeat
// failure and nothing changes.
func recordUnreadable(ctx context.Context, db *gorm.DB, path string, message string) error {
	sum := md5.Sum([]byte(path))
	hash := hex.EncodeToString(sum[:])

	existing, err := models.FindBronzeByHash(ctx, db, hash)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	record := &models.BronzeFile{
		SourcePath:       path,
		SourceFile:       filepath.Base(path),
		DataHash:         hash,
		ProcessingStatus: models.ProcessingStatusError,
		ErrorMessage:     message,
	}
	return models.CreateBronzeFile(ctx, db, record, nil)
}
