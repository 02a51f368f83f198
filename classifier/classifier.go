package classifier

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Classifier resolves brand and category for an inventory item using the
// static rule tables. It never consults the network; the AI validator layers
// on top of it and falls back to it.
type Classifier struct {
	tables     *Tables
	partShapes []compiledShape
}

type compiledShape struct {
	pattern  *regexp.Regexp
	category string
}

func New(tables *Tables) *Classifier {
	if tables == nil {
		tables = DefaultTables()
	}
	c := &Classifier{tables: tables}
	for _, rule := range tables.PartShapes {
		c.partShapes = append(c.partShapes, compiledShape{
			pattern:  regexp.MustCompile(rule.Pattern),
			category: rule.Category,
		})
	}
	return c
}

func (c *Classifier) Tables() *Tables {
	return c.tables
}

// BrandFromPath resolves the brand from the source file's name. Stores staff
// name price lists after the vendor, so the filename stem is the strongest
// brand signal we have; the full path is checked too for files nested under
// vendor directories.
func (c *Classifier) BrandFromPath(path string) string {
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	full := strings.ToLower(path)
	for _, rule := range c.tables.Brands {
		if strings.Contains(stem, rule.Keyword) || strings.Contains(full, rule.Keyword) {
			return rule.Brand
		}
	}
	return UnknownBrand
}

// Categorize picks a category for an item. Keyword rules run first, over the
// part number and then the description; failing those, the brand's default
// category applies; failing that, the shape of the part code is tried.
func (c *Classifier) Categorize(partNumber string, description string, brand string) string {
	part := strings.ToLower(partNumber)
	desc := strings.ToLower(description)

	for _, rule := range c.tables.Categories {
		for _, keyword := range rule.Keywords {
			if strings.Contains(part, keyword) || strings.Contains(desc, keyword) {
				return rule.Category
			}
		}
	}

	if category, ok := c.tables.BrandCategories[brand]; ok {
		return category
	}

	for _, shape := range c.partShapes {
		if shape.pattern.MatchString(partNumber) {
			return shape.category
		}
	}

	return Uncategorized
}

// Result is a heuristic classification for one item.
type Result struct {
	Brand      string
	Category   string
	Confidence string
}

// Classify runs the full heuristic path. Confidence is medium only when both
// the brand and the category resolved to something meaningful.
func (c *Classifier) Classify(sourcePath string, partNumber string, description string) Result {
	brand := c.BrandFromPath(sourcePath)
	category := c.Categorize(partNumber, description, brand)

	confidence := "low"
	if brand != UnknownBrand && category != Uncategorized {
		confidence = "medium"
	}

	return Result{
		Brand:      brand,
		Category:   category,
		Confidence: confidence,
	}
}
