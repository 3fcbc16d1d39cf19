// Package features turns dataset rows into the fixed-width numeric vectors the classifier consumes.
package features

import (
	"strings"

	"wildlife-threat-api/pkg/dataset"
)

// Feature column names. The order of baseColumns is the training-time order.
const (
	ColSpecies = "species_encoded"
	ColTrend   = "trend_num"
	ColAquatic = "is_aquatic"
	ColMammal  = "is_mammal"
	ColBird    = "is_bird"
	ColReptile = "is_reptile"
	ColClass   = "class_enc"
	ColOrder   = "order_enc"
	ColFamily  = "family_enc"

	HabitatPrefix = "hab_"
)

var baseColumns = []string{
	ColSpecies, ColTrend, ColAquatic, ColMammal, ColBird, ColReptile, ColClass, ColOrder, ColFamily,
}

// Schema is the ordered column list fixed at training time.
type Schema struct {
	columns []string
}

// NewSchema derives the schema from a dataset: base columns then one hab_ column per observed habitat.
func NewSchema(ds *dataset.Dataset) *Schema {
	habitats := ds.Habitats()
	cols := make([]string, 0, len(baseColumns)+len(habitats))
	cols = append(cols, baseColumns...)
	for _, h := range habitats {
		cols = append(cols, HabitatPrefix+h)
	}
	return &Schema{columns: cols}
}

// SchemaFromColumns rebuilds a schema from a stored column list.
func SchemaFromColumns(columns []string) *Schema {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Schema{columns: cols}
}

// Columns returns a copy of the ordered column names.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Width is the vector length every Encode call returns.
func (s *Schema) Width() int { return len(s.columns) }

// Encode builds the vector for one row in schema order.
// Columns the row carries are copied; hab_ columns are rebuilt by comparing the row's cleaned
// habitat with the column's category; anything else is 0.
func (s *Schema) Encode(row dataset.Row) []float64 {
	values := rowValues(row)
	vec := make([]float64, len(s.columns))
	for i, col := range s.columns {
		if v, ok := values[col]; ok {
			vec[i] = v
			continue
		}
		if category, ok := strings.CutPrefix(col, HabitatPrefix); ok {
			if row.HabitatClean != "" && row.HabitatClean == category {
				vec[i] = 1
			}
		}
	}
	return vec
}

// Matrix encodes every dataset row in file order.
func (s *Schema) Matrix(ds *dataset.Dataset) [][]float64 {
	rows := ds.Rows()
	X := make([][]float64, len(rows))
	for i, r := range rows {
		X[i] = s.Encode(r)
	}
	return X
}

func rowValues(row dataset.Row) map[string]float64 {
	return map[string]float64{
		ColSpecies: float64(row.SpeciesCode),
		ColTrend:   float64(row.Trend),
		ColAquatic: boolValue(row.Aquatic),
		ColMammal:  boolValue(row.Mammal),
		ColBird:    boolValue(row.Bird),
		ColReptile: boolValue(row.Reptile),
		ColClass:   float64(row.ClassCode),
		ColOrder:   float64(row.OrderCode),
		ColFamily:  float64(row.FamilyCode),
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
