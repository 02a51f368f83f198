package config

import (
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PipelineSettings collects everything a full pipeline run needs from the
// environment. Flags in cmd/* can override individual fields.
type PipelineSettings struct {
	// Root directory scanned recursively for spreadsheet files.
	InventoryRoot string
	// Lower-cased substrings; a file whose name contains any of them is
	// skipped during discovery.
	SkipPatterns []string
	// Cutoff for the "High Value Items" report sheet and API filter.
	HighValueThreshold decimal.Decimal

	// External validation service. Empty APIKey disables the external path
	// and the pipeline runs on the deterministic heuristics alone.
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	AITimeout     time.Duration
}

// The original consolidation scripts accumulated these patterns over many
// rounds of operator complaints; keep the full list.
var defaultSkipPatterns = []string{
	"template",
	"backup",
	"copy",
	"old",
	"test",
	"temp",
	"draft",
	"sample",
	"example",
	"inventory_template",
	"master_inventory",
}

func LoadPipelineSettings() PipelineSettings {
	settings := PipelineSettings{
		InventoryRoot:      strings.TrimSpace(os.Getenv("INVENTORY_ROOT")),
		SkipPatterns:       defaultSkipPatterns,
		HighValueThreshold: decimal.NewFromInt(10000),
		OpenAIAPIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:        strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		OpenAIBaseURL:      strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		AITimeout:          time.Duration(intFromEnv("AI_VALIDATION_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	if raw := strings.TrimSpace(os.Getenv("SKIP_PATTERNS")); raw != "" {
		var patterns []string
		for _, p := range strings.Split(raw, ",") {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) > 0 {
			settings.SkipPatterns = patterns
		}
	}

	if raw := strings.TrimSpace(os.Getenv("HIGH_VALUE_THRESHOLD")); raw != "" {
		if threshold, err := decimal.NewFromString(raw); err == nil && threshold.IsPositive() {
			settings.HighValueThreshold = threshold
		}
	}

	if settings.OpenAIModel == "" {
		settings.OpenAIModel = "gpt-4"
	}

	return settings
}
