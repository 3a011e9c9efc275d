// Package coords locates stereotactic x/y/z columns in a parsed table
// by header semantics and pulls out the numeric triples. It knows
// nothing about articles, files, or the network.
package coords

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/kwach/pmcoords/internal/models"
)

// ErrLayoutNotRecognized means no header arrangement the heuristics
// understand was found. Callers treat the table as yielding zero rows.
var ErrLayoutNotRecognized = errors.New("no coordinate columns recognized in table header")

var numberPattern = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// FromTable extracts (x, y, z) triples. Two layouts are recognized:
// separate x, y and z columns (headers like "x", "X (mm)", "MNI x"), or
// one combined column whose header mentions coordinates and whose cells
// hold three numbers. Rows that do not parse as numbers are dropped;
// an empty result is not an error once the layout was recognized.
func FromTable(t models.Table) ([]models.Point, error) {
	if xi, yi, zi, ok := axisColumns(t.Header); ok {
		return fromAxisColumns(t.Rows, xi, yi, zi), nil
	}
	if ci, ok := combinedColumn(t.Header); ok {
		return fromCombinedColumn(t.Rows, ci), nil
	}
	return nil, ErrLayoutNotRecognized
}

// axisColumns finds one column per axis. A header matches an axis when,
// after lowercasing and splitting on non-alphanumerics, one of its
// tokens is exactly that axis letter. That accepts "X", "x (mm)" and
// "MNI x" while rejecting "max" or "pixels".
func axisColumns(header []string) (xi, yi, zi int, ok bool) {
	xi, yi, zi = -1, -1, -1
	for i, h := range header {
		tokens := tokenize(h)
		switch {
		case xi < 0 && tokens["x"]:
			xi = i
		case yi < 0 && tokens["y"]:
			yi = i
		case zi < 0 && tokens["z"]:
			zi = i
		}
	}
	return xi, yi, zi, xi >= 0 && yi >= 0 && zi >= 0
}

func combinedColumn(header []string) (int, bool) {
	for i, h := range header {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "coordinate") {
			return i, true
		}
	}
	return -1, false
}

func fromAxisColumns(rows [][]string, xi, yi, zi int) []models.Point {
	var points []models.Point
	for _, row := range rows {
		if xi >= len(row) || yi >= len(row) || zi >= len(row) {
			continue
		}
		x, okX := parseNumber(row[xi])
		y, okY := parseNumber(row[yi])
		z, okZ := parseNumber(row[zi])
		if okX && okY && okZ {
			points = append(points, models.Point{X: x, Y: y, Z: z})
		}
	}
	return points
}

func fromCombinedColumn(rows [][]string, ci int) []models.Point {
	var points []models.Point
	for _, row := range rows {
		if ci >= len(row) {
			continue
		}
		numbers := numberPattern.FindAllString(normalize(row[ci]), -1)
		if len(numbers) != 3 {
			continue
		}
		x, okX := parseNumber(numbers[0])
		y, okY := parseNumber(numbers[1])
		z, okZ := parseNumber(numbers[2])
		if okX && okY && okZ {
			points = append(points, models.Point{X: x, Y: y, Z: z})
		}
	}
	return points
}

func tokenize(header string) map[string]bool {
	tokens := map[string]bool{}
	for _, tok := range strings.FieldsFunc(strings.ToLower(header), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		tokens[tok] = true
	}
	return tokens
}

// normalize maps the typographic minus signs PMC tables are fond of
// onto ASCII so strconv can cope.
func normalize(cell string) string {
	cell = strings.ReplaceAll(cell, "−", "-") // minus sign
	cell = strings.ReplaceAll(cell, "–", "-") // en dash used as minus
	return strings.TrimSpace(cell)
}

func parseNumber(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(normalize(cell), 64)
	return v, err == nil
}
