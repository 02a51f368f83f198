package workflow

import (
	"regexp"
	"strings"

	"github.com/machinecraft/inventory_backend/models"
)

// FieldMap holds the column index of each logical field in a sheet, -1 when
// the field was not found.
type FieldMap struct {
	PartNumber  int
	Description int
	Price       int
	Quantity    int
	MinStock    int
}

func emptyFieldMap() FieldMap {
	return FieldMap{PartNumber: -1, Description: -1, Price: -1, Quantity: -1, MinStock: -1}
}

// headerCandidates lists, per field, the header fragments that identify its
// column. Order matters: for each field the columns are scanned left to
// right and the first header containing any candidate wins, so "unit price"
// style exact names sit alongside loose ones like "rs".
var headerCandidates = []struct {
	field      func(*FieldMap) *int
	candidates []string
}{
	{func(m *FieldMap) *int { return &m.PartNumber }, []string{
		"part number", "part no", "part_no", "model", "model no", "model_no",
		"item", "item no", "item_no", "code", "sku", "part", "component",
		"ref", "reference", "part code", "item code",
	}},
	{func(m *FieldMap) *int { return &m.Description }, []string{
		"description", "desc", "name", "product", "item description",
		"item_desc", "specification", "spec", "details", "remarks", "notes",
		"product name", "item name",
	}},
	{func(m *FieldMap) *int { return &m.Price }, []string{
		"price", "cost", "rate", "unit price", "unit_price", "value",
		"amount", "rs", "inr", "rupees", "total", "unit cost",
		"selling price", "list price",
	}},
	{func(m *FieldMap) *int { return &m.Quantity }, []string{
		"quantity", "qty", "stock", "available", "in stock", "count",
		"pieces", "nos", "units", "available qty", "stock qty",
	}},
	{func(m *FieldMap) *int { return &m.MinStock }, []string{
		"min stock", "min_stock", "minimum", "reorder level", "reorder_level",
		"reorder point", "safety stock", "min qty",
	}},
}

// InferColumns maps a header row to field columns by fuzzy name matching.
func InferColumns(headers []string) FieldMap {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	mapping := emptyFieldMap()
	for _, spec := range headerCandidates {
		slot := spec.field(&mapping)
	columns:
		for col, header := range lowered {
			if header == "" {
				continue
			}
			for _, candidate := range spec.candidates {
				if strings.Contains(header, candidate) {
					*slot = col
					break columns
				}
			}
		}
	}
	return mapping
}

// SheetTable is a parsed sheet: the resolved field map plus the data rows
// that follow the chosen header row.
type SheetTable struct {
	Fields    FieldMap
	HeaderRow int
	DataRows  [][]string
}

// Usable reports whether the parse found enough structure to be worth
// keeping: at least one mapped field and at least one data row.
func (t SheetTable) Usable() bool {
	if len(t.DataRows) == 0 {
		return false
	}
	m := t.Fields
	return m.PartNumber >= 0 || m.Description >= 0 || m.Price >= 0 || m.Quantity >= 0
}

// columnCount counts how many fields the map resolved.
func (m FieldMap) columnCount() int {
	count := 0
	for _, idx := range []int{m.PartNumber, m.Description, m.Price, m.Quantity, m.MinStock} {
		if idx >= 0 {
			count++
		}
	}
	return count
}

// SelectTable finds the real header row of a sheet. Vendor sheets often put
// a title or a blank line above the table, so the first few rows are each
// tried as the header. An offset is accepted when the parse is usable and
// the candidate row spans more than two columns; narrower rows are titles
// or notes, not headers. When nothing qualifies, offset zero is used as-is.
func SelectTable(sheet models.RawSheet) SheetTable {
	var first *SheetTable
	for offset := 0; offset <= 3; offset++ {
		if offset >= len(sheet.Rows) {
			break
		}
		table := SheetTable{
			Fields:    InferColumns(sheet.Rows[offset]),
			HeaderRow: offset,
			DataRows:  sheet.Rows[offset+1:],
		}
		if first == nil {
			copied := table
			first = &copied
		}
		if table.Usable() && nonEmptyCells(sheet.Rows[offset]) > 2 {
			return table
		}
	}
	if first != nil {
		return *first
	}
	return SheetTable{Fields: emptyFieldMap(), HeaderRow: 0}
}

func nonEmptyCells(row []string) int {
	count := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			count++
		}
	}
	return count
}

var (
	partShapePattern = regexp.MustCompile(`^[A-Z0-9\-_./]+$`)
	alphaCharPattern = regexp.MustCompile(`[a-zA-Z]`)
)

// GuessFromContent recovers a part number and description from a row when
// the header mapping found neither. Cells are scanned left to right: a short
// code-shaped cell becomes the part number, a longer prose cell the
// description.
func GuessFromContent(row []string) (partNumber string, description string) {
	for _, cell := range row {
		value := strings.TrimSpace(cell)
		if len(value) <= 2 {
			continue
		}
		if partNumber == "" && len(value) > 3 && partShapePattern.MatchString(value) {
			partNumber = value
			continue
		}
		if description == "" && len(value) > 10 && alphaCharPattern.MatchString(value) {
			description = value
		}
	}
	return partNumber, description
}
