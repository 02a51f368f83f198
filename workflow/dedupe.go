package workflow

import (
	"strings"

	"github.com/machinecraft/inventory_backend/models"
)

// Dedupe collapses duplicate items gathered across all source files.
//
// Each item joins every identity group its fields allow: part+description,
// part alone, and (for items with no part number) description alone. Within
// a group the highest unit price wins, earliest-seen breaking ties; vendor
// lists go stale and the highest quote is the safest current price. An item
// survives only if it wins every group it belongs to, so an item that loses
// under any of its identities is gone entirely and the output can never
// contain two items sharing a key.
func Dedupe(items []models.SilverItem) []models.SilverItem {
	winners := map[string]int{}

	for i, item := range items {
		for _, key := range identityKeys(item) {
			current, seen := winners[key]
			if !seen || items[i].UnitPrice.GreaterThan(items[current].UnitPrice) {
				winners[key] = i
			}
		}
	}

	var result []models.SilverItem
	for i, item := range items {
		wonAll := true
		for _, key := range identityKeys(item) {
			if winners[key] != i {
				wonAll = false
				break
			}
		}
		if wonAll {
			result = append(result, item)
		}
	}
	return result
}

func identityKeys(item models.SilverItem) []string {
	part := strings.ToLower(strings.TrimSpace(item.PartNumber))
	desc := strings.ToLower(strings.TrimSpace(item.Description))

	var keys []string
	if part != "" && desc != "" {
		keys = append(keys, part+"_"+desc)
	}
	if part != "" {
		keys = append(keys, part)
	} else if desc != "" {
		keys = append(keys, "desc_"+desc)
	}
	return keys
}
