package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwach/pmcoords/internal/models"
)

func TestFromTableAxisColumns(t *testing.T) {
	table := models.Table{
		Header: []string{"Region", "x", "y", "z", "t-value"},
		Rows: [][]string{
			{"ACC", "1", "2", "3", "4.1"},
			{"Insula", "-12", "24.5", "-6", "3.9"},
		},
	}

	points, err := FromTable(table)
	require.NoError(t, err)
	assert.Equal(t, []models.Point{
		{X: 1, Y: 2, Z: 3},
		{X: -12, Y: 24.5, Z: -6},
	}, points)
}

func TestFromTableHeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header []string
	}{
		{"uppercase", []string{"Region", "X", "Y", "Z"}},
		{"units", []string{"Region", "x (mm)", "y (mm)", "z (mm)"}},
		{"space prefix", []string{"Region", "MNI x", "MNI y", "MNI z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := models.Table{
				Header: tt.header,
				Rows:   [][]string{{"ACC", "10", "20", "30"}},
			}
			points, err := FromTable(table)
			require.NoError(t, err)
			require.Len(t, points, 1)
			assert.Equal(t, models.Point{X: 10, Y: 20, Z: 30}, points[0])
		})
	}
}

func TestFromTableCombinedColumn(t *testing.T) {
	table := models.Table{
		Header: []string{"Region", "MNI coordinates (x, y, z)", "t"},
		Rows: [][]string{
			{"ACC", "2, -14, 38", "4.1"},
			{"Insula", "−40, 8, −2", "3.2"}, // typographic minus signs
			{"junk", "n.s.", "1.0"},
		},
	}

	points, err := FromTable(table)
	require.NoError(t, err)
	assert.Equal(t, []models.Point{
		{X: 2, Y: -14, Z: 38},
		{X: -40, Y: 8, Z: -2},
	}, points)
}

func TestFromTableUnrecognizedLayout(t *testing.T) {
	table := models.Table{
		Header: []string{"Region", "max", "p-value"},
		Rows:   [][]string{{"ACC", "4.1", "0.001"}},
	}

	_, err := FromTable(table)
	assert.ErrorIs(t, err, ErrLayoutNotRecognized)
}

func TestFromTableSkipsNonNumericRows(t *testing.T) {
	table := models.Table{
		Header: []string{"x", "y", "z"},
		Rows: [][]string{
			{"1", "2", "3"},
			{"-", "-", "-"},
			{"7", "8"}, // ragged row, shorter than the header
			{"4", "5", "6"},
		},
	}

	points, err := FromTable(table)
	require.NoError(t, err)
	assert.Equal(t, []models.Point{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, points)
}

func TestFromTableRecognizedButEmpty(t *testing.T) {
	table := models.Table{
		Header: []string{"x", "y", "z"},
		Rows:   [][]string{{"n.s.", "n.s.", "n.s."}},
	}

	points, err := FromTable(table)
	require.NoError(t, err)
	assert.Empty(t, points)
}
