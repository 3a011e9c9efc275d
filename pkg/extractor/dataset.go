package extractor

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/kwach/pmcoords/internal/models"
)

// WriteCSV persists a dataset with the fixed pmcid,table_id,x,y,z
// column order. A zero-row dataset still gets its header line, so a
// cached "no coordinates in this article" is distinguishable from
// "never processed".
func WriteCSV(path string, dataset models.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.CoordinateColumns); err != nil {
		return fmt.Errorf("write dataset header: %w", err)
	}
	for _, rec := range dataset {
		row := []string{
			strconv.Itoa(rec.PMCID),
			rec.TableID,
			formatFloat(rec.X),
			formatFloat(rec.Y),
			formatFloat(rec.Z),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write dataset row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush dataset: %w", err)
	}
	return nil
}

// ReadCSV loads a dataset written by WriteCSV; the merge step uses it
// to concatenate the per-article artifacts.
func ReadCSV(path string) (models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset file %s has no header", path)
	}

	var dataset models.Dataset
	for _, row := range rows[1:] {
		if len(row) != len(models.CoordinateColumns) {
			return nil, fmt.Errorf("dataset file %s has a malformed row", path)
		}
		pmcid, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("dataset file %s has a bad pmcid: %w", path, err)
		}
		x, errX := strconv.ParseFloat(row[2], 64)
		y, errY := strconv.ParseFloat(row[3], 64)
		z, errZ := strconv.ParseFloat(row[4], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("dataset file %s has a non-numeric coordinate", path)
		}
		dataset = append(dataset, models.CoordinateRecord{
			PMCID:   pmcid,
			TableID: row[1],
			X:       x,
			Y:       y,
			Z:       z,
		})
	}
	return dataset, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
