// Package extractor turns an article's fetched table pages into its
// coordinate dataset.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kwach/pmcoords/internal/models"
	"github.com/kwach/pmcoords/pkg/coords"
	"github.com/kwach/pmcoords/pkg/tables"
)

// ErrNoTable means the page contained no <table> element to parse.
var ErrNoTable = errors.New("no table element found in page")

// Extract parses every fetched table in tablesDir and collects the
// coordinate rows, tagged with the article id and the original table
// id from the mapping file. A table whose parse or coordinate
// detection fails contributes zero rows; it never fails the article.
// Disk errors do fail the article, they are not "empty tables".
func Extract(pmcid int, tablesDir string, log *slog.Logger) (models.Dataset, error) {
	mapping, err := tables.ReadMapping(tablesDir)
	if err != nil {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(tablesDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list table files: %w", err)
	}
	sort.Strings(files)

	var dataset models.Dataset
	for _, path := range files {
		short := strings.TrimSuffix(filepath.Base(path), ".html")
		tableID, ok := mapping[short]
		if !ok {
			log.Warn("table file not in mapping, skipping", "file", path)
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open table file: %w", err)
		}
		table, err := ParseFirstTable(f)
		f.Close()
		if err != nil {
			log.Debug("skipping unparseable table", "pmcid", pmcid, "table_id", tableID, "error", err)
			continue
		}

		points, err := coords.FromTable(table)
		if err != nil {
			log.Debug("skipping table without coordinates", "pmcid", pmcid, "table_id", tableID, "error", err)
			continue
		}

		for _, p := range points {
			dataset = append(dataset, models.CoordinateRecord{
				PMCID:   pmcid,
				TableID: tableID,
				X:       p.X,
				Y:       p.Y,
				Z:       p.Z,
			})
		}
	}

	log.Debug("extracted coordinates", "pmcid", pmcid, "rows", len(dataset))
	return dataset, nil
}

// ParseFirstTable reads the first <table> on the page into a header row
// plus string cells. The first row with cells is taken as the header,
// whether it uses <th> or <td>.
func ParseFirstTable(r io.Reader) (models.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.Table{}, fmt.Errorf("parsing table markup: %w", err)
	}

	node := doc.Find("table").First()
	if node.Length() == 0 {
		return models.Table{}, ErrNoTable
	}

	var table models.Table
	node.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if table.Header == nil {
			table.Header = cells
			return
		}
		table.Rows = append(table.Rows, cells)
	})

	if table.Header == nil {
		return models.Table{}, ErrNoTable
	}
	return table, nil
}
