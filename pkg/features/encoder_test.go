package features

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildlife-threat-api/pkg/dataset"
)

func loadFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(filepath.Join("..", "dataset", "testdata", "species.csv"))
	require.NoError(t, err)
	return ds
}

func TestNewSchemaColumnOrder(t *testing.T) {
	schema := NewSchema(loadFixture(t))

	expected := []string{
		"species_encoded", "trend_num", "is_aquatic", "is_mammal", "is_bird", "is_reptile",
		"class_enc", "order_enc", "family_enc",
		"hab_Coastal_Sea", "hab_Coral_Reef", "hab_Forest", "hab_Mountain_Grassland", "hab_River",
	}
	assert.Equal(t, expected, schema.Columns())
	assert.Equal(t, len(expected), schema.Width())
}

func TestEncodeMatchesSchemaForEveryRow(t *testing.T) {
	ds := loadFixture(t)
	schema := NewSchema(ds)

	X := schema.Matrix(ds)
	require.Len(t, X, ds.Len())
	for i, vec := range X {
		assert.Len(t, vec, schema.Width(), "row %d", i)

		oneHot := 0.0
		for j, col := range schema.Columns() {
			if len(col) > len(HabitatPrefix) && col[:len(HabitatPrefix)] == HabitatPrefix {
				oneHot += vec[j]
			}
		}
		assert.Equal(t, 1.0, oneHot, "row %d should set exactly one habitat column", i)
	}
}

func TestEncodeTiger(t *testing.T) {
	ds := loadFixture(t)
	schema := NewSchema(ds)

	tiger, ok := ds.Lookup("Panthera tigris")
	require.True(t, ok)

	vec := schema.Encode(tiger)
	cols := schema.Columns()
	value := func(name string) float64 {
		for i, c := range cols {
			if c == name {
				return vec[i]
			}
		}
		t.Fatalf("column %s not in schema", name)
		return 0
	}

	assert.Equal(t, 4.0, value(ColSpecies))
	assert.Equal(t, -1.0, value(ColTrend))
	assert.Equal(t, 0.0, value(ColAquatic))
	assert.Equal(t, 1.0, value(ColMammal))
	assert.Equal(t, 0.0, value(ColBird))
	assert.Equal(t, 1.0, value("hab_Forest"))
	assert.Equal(t, 0.0, value("hab_River"))
}

func TestEncodeToleratesSchemaDrift(t *testing.T) {
	ds := loadFixture(t)
	tiger, _ := ds.Lookup("Panthera tigris")

	schema := SchemaFromColumns([]string{"trend_num", "hab_Forest", "hab_Desert", "legacy_column"})
	assert.Equal(t, []float64{-1, 1, 0, 0}, schema.Encode(tiger))
}

func TestEncodeUnseenHabitat(t *testing.T) {
	ds := loadFixture(t)
	schema := NewSchema(ds)

	row, _ := ds.Lookup("Panthera tigris")
	row.Habitat = "Volcanic Island"
	row.HabitatClean = dataset.CleanHabitat(row.Habitat)

	vec := schema.Encode(row)
	for i, col := range schema.Columns() {
		if len(col) > len(HabitatPrefix) && col[:len(HabitatPrefix)] == HabitatPrefix {
			assert.Zero(t, vec[i], "unseen habitat must not set %s", col)
		}
	}
}

func TestSchemaColumnsReturnsCopy(t *testing.T) {
	schema := SchemaFromColumns([]string{"a", "b"})
	cols := schema.Columns()
	cols[0] = "z"
	assert.Equal(t, []string{"a", "b"}, schema.Columns())
}
