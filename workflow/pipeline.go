package workflow

import (
	"context"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/machinecraft/inventory_backend/classifier"
	"github.com/machinecraft/inventory_backend/config"
	"github.com/machinecraft/inventory_backend/models"
)

// RunReport summarizes one pipeline run for operators. Errors holds every
// failure; display is capped separately so a badly broken drive does not
// flood the console.
type RunReport struct {
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	FilesSelected   int       `json:"files_selected"`
	FilesSkipped    int       `json:"files_skipped"`
	FilesIngested   int       `json:"files_ingested"`
	FilesDuplicate  int       `json:"files_duplicate"`
	FilesFailed     int       `json:"files_failed"`
	ItemsExtracted  int       `json:"items_extracted"`
	ItemsAfterDedup int       `json:"items_after_dedup"`
	AIFailures      int64     `json:"ai_failures"`
	Errors          []string  `json:"errors,omitempty"`

	Quality *models.DataQualityReport `json:"quality,omitempty"`
}

const errorDisplayCap = 10

// Pipeline wires discovery, ingestion, transformation and deduplication
// into the full Bronze-to-Silver run.
type Pipeline struct {
	db          *gorm.DB
	settings    *config.PipelineSettings
	transformer *Transformer
}

func NewPipeline(db *gorm.DB, settings *config.PipelineSettings) *Pipeline {
	heuristics := classifier.New(nil)
	validator := classifier.NewValidator(settings, heuristics)
	return &Pipeline{
		db:          db,
		settings:    settings,
		transformer: NewTransformer(heuristics, validator),
	}
}

// Run executes the full pipeline: discover and ingest everything under the
// inventory root, then rebuild Silver from all of Bronze. Per-file and
// per-row failures are collected into the report; only infrastructure
// failures (database down, root unreadable) abort the run.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{StartedAt: time.Now()}
	logger := config.GetLogger()

	files, skipped, err := DiscoverFiles(p.settings.InventoryRoot, p.settings.SkipPatterns)
	if err != nil {
		return nil, fmt.Errorf("discover files under %s: %w", p.settings.InventoryRoot, err)
	}
	report.FilesSelected = len(files)
	report.FilesSkipped = len(skipped)

	for _, path := range files {
		outcome, err := IngestFile(ctx, p.db, path)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case IngestCreated:
			report.FilesIngested++
		case IngestDuplicate:
			report.FilesDuplicate++
		case IngestFailed:
			report.FilesFailed++
			report.Errors = append(report.Errors, fmt.Sprintf("ingest %s failed", path))
		}
	}

	if err := p.rebuildSilver(ctx, report); err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now()
	logger.WithField("ingested", report.FilesIngested).
		WithField("duplicates", report.FilesDuplicate).
		WithField("items", report.ItemsAfterDedup).
		WithField("errors", len(report.Errors)).
		Info("pipeline run complete")
	return report, nil
}

// RebuildSilver rebuilds the Silver layer from existing Bronze records
// without touching the filesystem. Used after classifier table changes.
func (p *Pipeline) RebuildSilver(ctx context.Context) (*RunReport, error) {
	report := &RunReport{StartedAt: time.Now()}
	if err := p.rebuildSilver(ctx, report); err != nil {
		return nil, err
	}
	report.FinishedAt = time.Now()
	return report, nil
}

func (p *Pipeline) rebuildSilver(ctx context.Context, report *RunReport) error {
	records, err := models.GetTransformableBronze(ctx, p.db)
	if err != nil {
		return err
	}
	config.GetLogger().WithField("bronze_records", len(records)).
		WithField("tables_version", classifier.TablesVersion).
		Info("rebuilding silver layer")

	var items []models.SilverItem
	for i := range records {
		record := &records[i]
		fileItems, rowErrors := p.transformer.TransformFile(ctx, record)
		items = append(items, fileItems...)
		for _, rowErr := range rowErrors {
			report.Errors = append(report.Errors, rowErr.Error())
		}
		if err := record.AdvanceStatus(ctx, p.db, models.ProcessingStatusTransformed, ""); err != nil {
			return err
		}
	}
	report.ItemsExtracted = len(items)

	deduped := Dedupe(items)
	report.ItemsAfterDedup = len(deduped)
	report.AIFailures = p.transformer.AIFailureCount()

	if err := models.ReplaceAllSilverItems(ctx, p.db, deduped); err != nil {
		return fmt.Errorf("replace silver items: %w", err)
	}

	quality, err := models.GetDataQualityReport(ctx, p.db)
	if err != nil {
		return err
	}
	report.Quality = quality
	return nil
}

// PrintSummary writes the operator-facing run summary. Only the first few
// errors are shown; the full list stays in the report.
func (r *RunReport) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "Pipeline run finished in %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  files:  %d selected, %d skipped, %d ingested, %d duplicates, %d failed\n",
		r.FilesSelected, r.FilesSkipped, r.FilesIngested, r.FilesDuplicate, r.FilesFailed)
	fmt.Fprintf(w, "  items:  %d extracted, %d after dedup\n", r.ItemsExtracted, r.ItemsAfterDedup)
	if r.AIFailures > 0 {
		fmt.Fprintf(w, "  ai:     %d validations fell back to heuristics\n", r.AIFailures)
	}
	if r.Quality != nil {
		fmt.Fprintf(w, "  gaps:   %d missing part numbers, %d missing prices, %d unknown brands, %d uncategorized\n",
			r.Quality.MissingPartNumber, r.Quality.MissingPrice, r.Quality.MissingBrand, r.Quality.UncategorizedItems)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "  errors: %d\n", len(r.Errors))
		shown := r.Errors
		if len(shown) > errorDisplayCap {
			shown = shown[:errorDisplayCap]
		}
		for _, msg := range shown {
			fmt.Fprintf(w, "    - %s\n", msg)
		}
		if len(r.Errors) > errorDisplayCap {
			fmt.Fprintf(w, "    ... and %d more\n", len(r.Errors)-errorDisplayCap)
		}
	}
}
