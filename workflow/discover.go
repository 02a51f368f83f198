package workflow

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/machinecraft/inventory_backend/config"
)

// DiscoverFiles walks the inventory root and returns every spreadsheet worth
// ingesting, in walk order. Files whose lower-cased name contains a skip
// pattern are dropped; templates and backup copies sit next to live price
// lists in the shared drive and must never reach Bronze.
func DiscoverFiles(root string, skipPatterns []string) ([]string, []string, error) {
	var selected []string
	var skipped []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			// Hidden directories hold editor temp files and sync droppings.
			if name := entry.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xls") {
			return nil
		}
		// Office lock files start with ~$ and are not readable workbooks.
		if strings.HasPrefix(entry.Name(), "~$") {
			return nil
		}
		for _, pattern := range skipPatterns {
			if pattern != "" && strings.Contains(name, pattern) {
				skipped = append(skipped, path)
				return nil
			}
		}
		selected = append(selected, path)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger := config.GetLogger()
	logger.WithField("root", root).
		WithField("selected", len(selected)).
		WithField("skipped", len(skipped)).
		Info("spreadsheet discovery complete")

	return selected, skipped, nil
}
