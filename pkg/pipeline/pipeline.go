// Package pipeline drives the fetch → locate → extract stages over the
// full identifier list and merges the per-article datasets.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kwach/pmcoords/internal/models"
	"github.com/kwach/pmcoords/pkg/extractor"
	"github.com/kwach/pmcoords/pkg/locator"
	"github.com/kwach/pmcoords/pkg/tables"
)

// ErrNothingToMerge means no identifier produced a dataset, so there is
// no valid input for the merge step. The run fails rather than writing
// an empty or malformed merged file.
var ErrNothingToMerge = errors.New("no per-article datasets to merge")

// MergedFile is the name of the final dataset inside the output dir.
const MergedFile = "all_coordinates.csv"

// Fetcher is the shared HTTP capability, owned by the pipeline for the
// run and passed down to the stages.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

type Config struct {
	ArticleURL string // fmt template with %d for the PMCID
	TableURL   string // fmt template with %d (PMCID) and %s (table id)
	OutputDir  string
	OnProgress func(done, total, errors int)
}

type Pipeline struct {
	config Config
	fetch  Fetcher
	log    *slog.Logger
}

// Summary reports what a run produced.
type Summary struct {
	Rows       int
	Articles   int // distinct articles contributing at least one row
	Successes  int
	Errors     int
	MergedFile string
}

func New(config Config, fetch Fetcher, log *slog.Logger) *Pipeline {
	return &Pipeline{config: config, fetch: fetch, log: log}
}

// Run processes every identifier in order, isolating failures per
// identifier, then merges the surviving datasets. One bad article never
// aborts the batch; zero good articles fails the run.
func (p *Pipeline) Run(ctx context.Context, pmcids []int) (*Summary, error) {
	if err := os.MkdirAll(p.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	p.log.Info("collecting data", "pmcids", len(pmcids), "output_dir", p.config.OutputDir)

	var coordFiles []string
	errorCount := 0
	for i, pmcid := range pmcids {
		coordFile, err := p.processArticle(ctx, pmcid)
		if err != nil {
			errorCount++
			p.log.Error("failed to process article", "pmcid", pmcid, "error", err)
		} else {
			coordFiles = append(coordFiles, coordFile)
		}

		p.log.Info("batch progress", "done", i+1, "total", len(pmcids), "errors", errorCount)
		if p.config.OnProgress != nil {
			p.config.OnProgress(i+1, len(pmcids), errorCount)
		}
	}

	merged, err := p.merge(coordFiles)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Rows:       len(merged),
		Articles:   merged.Articles(),
		Successes:  len(pmcids) - errorCount,
		Errors:     errorCount,
		MergedFile: filepath.Join(p.config.OutputDir, MergedFile),
	}
	p.log.Info("batch finished",
		"coordinates", summary.Rows,
		"articles", summary.Articles,
		"successes", summary.Successes,
		"errors", summary.Errors,
	)
	return summary, nil
}

// processArticle runs the three stages for one identifier. The stage
// name is wrapped into any error so the batch log can tell where an
// article fell over.
func (p *Pipeline) processArticle(ctx context.Context, pmcid int) (string, error) {
	log := p.log.With("pmcid", pmcid)
	log.Info("processing article")

	articleFile := filepath.Join(p.config.OutputDir, fmt.Sprintf("%d_article.html", pmcid))
	url := fmt.Sprintf(p.config.ArticleURL, pmcid)
	if err := p.fetch.Fetch(ctx, url, articleFile); err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	log.Debug("article fetched", "file", articleFile)

	f, err := os.Open(articleFile)
	if err != nil {
		return "", fmt.Errorf("locate tables: %w", err)
	}
	tableIDs, err := locator.TableIDs(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("locate tables: %w", err)
	}
	log.Debug("tables located", "count", len(tableIDs))

	tablesDir := filepath.Join(p.config.OutputDir, fmt.Sprintf("%d_tables", pmcid))
	urlFor := func(tableID string) string {
		return fmt.Sprintf(p.config.TableURL, pmcid, tableID)
	}
	result, err := tables.FetchAll(ctx, p.fetch, tablesDir, tableIDs, urlFor, log)
	if err != nil {
		return "", fmt.Errorf("fetch tables: %w", err)
	}
	if len(result.Failed) > 0 {
		log.Warn("some tables could not be fetched", "failed", len(result.Failed), "total", len(tableIDs))
	}

	dataset, err := extractor.Extract(pmcid, tablesDir, log)
	if err != nil {
		return "", fmt.Errorf("extract coordinates: %w", err)
	}

	coordFile := filepath.Join(p.config.OutputDir, fmt.Sprintf("%d_coordinates.csv", pmcid))
	if err := extractor.WriteCSV(coordFile, dataset); err != nil {
		return "", fmt.Errorf("extract coordinates: %w", err)
	}
	log.Debug("article done", "rows", len(dataset))
	return coordFile, nil
}

// merge reads back the per-article datasets in input order and writes
// the concatenated result.
func (p *Pipeline) merge(coordFiles []string) (models.Dataset, error) {
	if len(coordFiles) == 0 {
		return nil, ErrNothingToMerge
	}

	var merged models.Dataset
	for _, path := range coordFiles {
		dataset, err := extractor.ReadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		merged = append(merged, dataset...)
	}

	mergedFile := filepath.Join(p.config.OutputDir, MergedFile)
	if err := extractor.WriteCSV(mergedFile, merged); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	p.log.Info("merged dataset written", "file", mergedFile, "rows", len(merged))
	return merged, nil
}
