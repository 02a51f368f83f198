package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/machinecraft/inventory_backend/classifier"
	"github.com/machinecraft/inventory_backend/models"
	"github.com/machinecraft/inventory_backend/utils"
)

// RowError records one row that could not be turned into an item. The
// pipeline collects these instead of failing: a single corrupt row in a
// thousand-row price list must not block the other rows.
type RowError struct {
	SourceFile  string
	SourceSheet string
	Row         int
	Err         error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s/%s row %d: %v", e.SourceFile, e.SourceSheet, e.Row, e.Err)
}

// Transformer turns Bronze payloads into candidate Silver items. The AI
// validator is optional; without one every item takes the heuristic path.
type Transformer struct {
	heuristics *classifier.Classifier
	validator  *classifier.Validator
}

func NewTransformer(heuristics *classifier.Classifier, validator *classifier.Validator) *Transformer {
	if heuristics == nil {
		heuristics = classifier.New(nil)
	}
	return &Transformer{heuristics: heuristics, validator: validator}
}

// TransformFile converts every sheet of one Bronze record into items.
// Returned items are not yet deduplicated; that happens once across the
// whole corpus.
func (t *Transformer) TransformFile(ctx context.Context, record *models.BronzeFile) ([]models.SilverItem, []RowError) {
	sheets, err := record.Sheets()
	if err != nil {
		return nil, []RowError{{SourceFile: record.SourceFile, Err: err}}
	}

	var items []models.SilverItem
	var rowErrors []RowError
	for _, sheet := range sheets {
		sheetItems, sheetErrors := t.transformSheet(ctx, record, sheet)
		items = append(items, sheetItems...)
		rowErrors = append(rowErrors, sheetErrors...)
	}
	return items, rowErrors
}

func (t *Transformer) transformSheet(ctx context.Context, record *models.BronzeFile, sheet models.RawSheet) ([]models.SilverItem, []RowError) {
	table := SelectTable(sheet)

	// No header row recognized at any offset: scan every row and rely on
	// content-shape recovery alone.
	headerless := !table.Usable() && table.Fields.columnCount() == 0
	if headerless {
		table.HeaderRow = -1
		table.DataRows = sheet.Rows
	}

	var items []models.SilverItem
	var rowErrors []RowError
	for i, row := range table.DataRows {
		rowNumber := table.HeaderRow + 2 + i
		item, err := t.transformRow(ctx, record, sheet.Name, table.Fields, row)
		if err != nil {
			rowErrors = append(rowErrors, RowError{
				SourceFile:  record.SourceFile,
				SourceSheet: sheet.Name,
				Row:         rowNumber,
				Err:         err,
			})
			continue
		}
		if item != nil {
			items = append(items, *item)
		}
	}

	if headerless && len(items) == 0 && len(sheet.Rows) > 0 {
		rowErrors = append(rowErrors, RowError{
			SourceFile:  record.SourceFile,
			SourceSheet: sheet.Name,
			Err:         fmt.Errorf("no recognizable table under any header offset"),
		})
	}
	return items, rowErrors
}

// transformRow builds one item from one row. A row with neither a part
// number nor a description after content recovery is noise and is silently
// dropped (nil, nil). Panics from pathological cell content are converted to
// row errors so the sheet keeps going.
func (t *Transformer) transformRow(ctx context.Context, record *models.BronzeFile, sheetName string, fields FieldMap, row []string) (item *models.SilverItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			item = nil
			err = fmt.Errorf("row panic: %v", r)
		}
	}()

	partNumber := utils.CleanText(cellAt(row, fields.PartNumber))
	description := utils.CleanText(cellAt(row, fields.Description))
	if partNumber == "" && description == "" {
		guessedPart, guessedDesc := GuessFromContent(row)
		partNumber, description = guessedPart, guessedDesc
	}
	if partNumber == "" && description == "" {
		return nil, nil
	}

	unitPrice := utils.CleanPrice(cellAt(row, fields.Price))
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}
	quantity := utils.CleanQuantity(cellAt(row, fields.Quantity))
	minStock := utils.CleanQuantity(cellAt(row, fields.MinStock))

	heuristic := t.heuristics.Classify(record.SourceFile, partNumber, description)
	candidate := models.SilverItem{
		PartNumber:       partNumber,
		Description:      description,
		Brand:            heuristic.Brand,
		Category:         heuristic.Category,
		UnitPrice:        unitPrice,
		Quantity:         quantity,
		MinStock:         minStock,
		SourceFile:       record.SourceFile,
		SourceSheet:      sheetName,
		Confidence:       models.Confidence(heuristic.Confidence),
		ValidationStatus: models.ValidationStatusPending,
	}

	if t.validator != nil {
		t.applyValidation(ctx, &candidate)
	}

	candidate.Recompute()
	return &candidate, nil
}

// applyValidation overlays the AI result onto the heuristic candidate. The
// model may correct the brand and category and attach notes; identifying
// fields only change when the model returns something non-empty.
func (t *Transformer) applyValidation(ctx context.Context, item *models.SilverItem) {
	result, validated := t.validator.Validate(ctx, classifier.ValidationRequest{
		PartNumber:  item.PartNumber,
		Description: item.Description,
		Brand:       item.Brand,
		Price:       item.UnitPrice,
		SourceFile:  item.SourceFile,
	})

	if v := strings.TrimSpace(result.PartNumber); v != "" {
		item.PartNumber = v
	}
	if v := strings.TrimSpace(result.Description); v != "" {
		item.Description = v
	}
	if v := strings.TrimSpace(result.Brand); v != "" {
		item.Brand = v
	}
	if result.Category != "" {
		item.Category = result.Category
	}
	if result.Price > 0 && item.UnitPrice.IsZero() {
		item.UnitPrice = decimal.NewFromFloat(result.Price)
	}
	if confidence, ok := models.ParseConfidence(result.Confidence); ok {
		item.Confidence = confidence
	}
	item.Notes = result.Notes
	if validated {
		item.ValidationStatus = models.ValidationStatusValidated
	}
}

// AIFailureCount reports fallbacks recorded by the validator, zero when
// running heuristics only.
func (t *Transformer) AIFailureCount() int64 {
	if t.validator == nil {
		return 0
	}
	return t.validator.FailureCount()
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
