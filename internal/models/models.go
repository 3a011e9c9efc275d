package models

// CoordinateColumns is the fixed column order of every coordinates CSV,
// per-article and merged.
var CoordinateColumns = []string{"pmcid", "table_id", "x", "y", "z"}

// Table is a raw parsed HTML table: a header row plus string cells.
// Rows are not guaranteed to have the same width as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Point is one (x, y, z) triple pulled out of a table.
type Point struct {
	X, Y, Z float64
}

// CoordinateRecord is one extracted coordinate row tagged with its
// provenance: the article it came from and the table within that article.
type CoordinateRecord struct {
	PMCID   int
	TableID string
	X       float64
	Y       float64
	Z       float64
}

// Dataset is an ordered sequence of coordinate records. A zero-length
// dataset is valid and means the article yielded no coordinates.
type Dataset []CoordinateRecord

// Articles returns the number of distinct PMCIDs represented in the dataset.
func (d Dataset) Articles() int {
	seen := make(map[int]struct{})
	for _, rec := range d {
		seen[rec.PMCID] = struct{}{}
	}
	return len(seen)
}
