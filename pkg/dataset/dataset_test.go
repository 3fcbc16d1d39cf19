package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNormalizeThreat(t *testing.T) {
	testCases := []struct {
		in       string
		expected ThreatLevel
	}{
		{"Critically Endangered", CriticallyEndangered},
		{"Endangered", Endangered},
		{"Vulnerable", Vulnerable},
		{"Near Threatened", NearThreatened},
		{"Least Concern", LeastConcern},
		{"  Endangered ", Endangered},
		{"CR", CriticallyEndangered},
		{"VU", Vulnerable},
		{"Extinct in the Wild", LeastConcern},
		{"unknown", LeastConcern},
		{"", LeastConcern},
	}

	for _, tc := range testCases {
		result := NormalizeThreat(tc.in)
		if result != tc.expected {
			t.Errorf("NormalizeThreat(%q) = %s, expected %s", tc.in, result, tc.expected)
		}
		assert.True(t, result.Valid())
	}
}

func TestTrendValue(t *testing.T) {
	testCases := []struct {
		in       string
		expected int
	}{
		{"Increasing", 1},
		{"Stable", 0},
		{"Decreasing", -1},
		{"Unknown", 0},
		{"", 0},
	}

	for _, tc := range testCases {
		if result := TrendValue(tc.in); result != tc.expected {
			t.Errorf("TrendValue(%q) = %d, expected %d", tc.in, result, tc.expected)
		}
	}
}

func TestFlags(t *testing.T) {
	assert.True(t, IsAquatic("Coral Reef"))
	assert.True(t, IsAquatic("open ocean"))
	assert.True(t, IsAquatic("Coastal Sea"))
	assert.False(t, IsAquatic("Forest"))

	assert.True(t, IsMammal("Mammalia"))
	assert.True(t, IsBird("AVES"))
	assert.True(t, IsReptile("reptilia"))
	assert.False(t, IsMammal("Amphibia"))

	assert.Equal(t, "Mountain_Grassland", CleanHabitat("Mountain Grassland"))
	assert.False(t, ThreatLevel("XX").Valid())
}

func TestLoadCSV(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "species.csv"))
	require.NoError(t, err)

	assert.Equal(t, 6, ds.Len())
	assert.Equal(t, []string{
		"Panthera tigris", "Chelonia mydas", "Aquila chrysaetos",
		"Phocoena sinus", "Bufo bufo", "Lutra lutra",
	}, ds.Names())

	tiger, ok := ds.Lookup("Panthera tigris")
	require.True(t, ok)
	assert.Equal(t, Endangered, tiger.ThreatLevel)
	assert.Equal(t, -1, tiger.Trend)
	assert.True(t, tiger.Mammal)
	assert.False(t, tiger.Aquatic)
	assert.Equal(t, "Forest", tiger.HabitatClean)
	// sorted names: Aquila, Bufo, Chelonia, Lutra, Panthera, Phocoena
	assert.Equal(t, 4, tiger.SpeciesCode)

	turtle, _ := ds.Lookup("Chelonia mydas")
	assert.Equal(t, Endangered, turtle.ThreatLevel, "short code is accepted")
	assert.True(t, turtle.Aquatic)
	assert.True(t, turtle.Reptile)

	toad, _ := ds.Lookup("Bufo bufo")
	assert.Equal(t, LeastConcern, toad.ThreatLevel, "missing threat level defaults to LC")
	assert.Equal(t, 1, toad.Trend)

	otter, _ := ds.Lookup("Lutra lutra")
	assert.Equal(t, LeastConcern, otter.ThreatLevel, "unrecognized threat level defaults to LC")
	assert.Equal(t, 0, otter.Trend)
	assert.True(t, otter.Aquatic)

	_, ok = ds.Lookup("Unicorn")
	assert.False(t, ok)

	assert.Equal(t, []string{"Coastal_Sea", "Coral_Reef", "Forest", "Mountain_Grassland", "River"}, ds.Habitats())
	assert.Equal(t, []string{"EN", "EN", "LC", "CR", "LC", "LC"}, ds.Labels())
	assert.Equal(t, 3, ds.LevelCounts()[LeastConcern])
}

func TestClassCodesAreDense(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "species.csv"))
	require.NoError(t, err)

	// Amphibia, Aves, Mammalia, Reptilia
	codes := map[string]int{}
	for _, r := range ds.Rows() {
		codes[r.Class] = r.ClassCode
	}
	assert.Equal(t, map[string]int{"Amphibia": 0, "Aves": 1, "Mammalia": 2, "Reptilia": 3}, codes)
}

func TestRowsReturnsCopy(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "species.csv"))
	require.NoError(t, err)

	rows := ds.Rows()
	rows[0].Name = "mutated"
	assert.Equal(t, "Panthera tigris", ds.Names()[0])
}

func TestParseCSVHeaderVariants(t *testing.T) {
	doc := "\ufeffSpecies_Name , CLASS,order,family,habitat,population_trend,threat_level,extra\n" +
		"Panthera leo,Mammalia,Carnivora,Felidae,Savanna,Decreasing,Vulnerable,x\n"

	ds, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"Panthera leo"}, ds.Names())
}

func TestLoadErrors(t *testing.T) {
	header := "species_name,class,order,family,habitat,population_trend,threat_level\n"
	testCases := []struct {
		name string
		doc  string
	}{
		{"empty file", ""},
		{"header only", header},
		{"missing column", "species_name,class,order,family,habitat,threat_level\nA,B,C,D,E,F\n"},
		{"short row", header + "Panthera leo,Mammalia,Carnivora\n"},
		{"empty species name", header + ",Mammalia,Carnivora,Felidae,Savanna,Stable,LC\n"},
		{"duplicate species", header +
			"Panthera leo,Mammalia,Carnivora,Felidae,Savanna,Stable,LC\n" +
			"Panthera leo,Mammalia,Carnivora,Felidae,Forest,Stable,VU\n"},
		{"malformed quoting", header + "\"Panthera leo,Mammalia\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ds, err := ParseCSV(strings.NewReader(tc.doc))
			assert.Nil(t, ds)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrData), "error should wrap ErrData: %v", err)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrData)

	path := filepath.Join(t.TempDir(), "species.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrData)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"species_name", "class", "order", "family", "habitat", "population_trend", "threat_level"},
		{"Panthera tigris", "Mammalia", "Carnivora", "Felidae", "Forest", "Decreasing", "Endangered"},
		// trailing empty threat level cell is dropped by excelize and padded on read
		{"Bufo bufo", "Amphibia", "Anura", "Bufonidae", "Forest", "Stable"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	path := filepath.Join(t.TempDir(), "species.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Panthera tigris", "Bufo bufo"}, ds.Names())

	toad, ok := ds.Lookup("Bufo bufo")
	require.True(t, ok)
	assert.Equal(t, LeastConcern, toad.ThreatLevel)
}

func TestSampleDatasetLoads(t *testing.T) {
	ds, err := Load(filepath.Join("..", "..", "data", "clean_iucn_species.csv"))
	require.NoError(t, err)

	_, ok := ds.Lookup("Panthera tigris")
	assert.True(t, ok)
	for _, level := range Levels {
		assert.Positive(t, ds.LevelCounts()[level], "sample dataset should cover %s", level)
	}
}
