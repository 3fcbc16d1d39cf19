// Package dataset loads species records and derives the normalized columns the classifier trains on.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrData marks a malformed or missing dataset. Loading is all-or-nothing.
var ErrData = errors.New("dataset error")

// Required header columns, matched case-insensitively.
const (
	ColSpeciesName     = "species_name"
	ColClass           = "class"
	ColOrder           = "order"
	ColFamily          = "family"
	ColHabitat         = "habitat"
	ColPopulationTrend = "population_trend"
	ColThreatLevel     = "threat_level"
)

var requiredColumns = []string{
	ColSpeciesName, ColClass, ColOrder, ColFamily, ColHabitat, ColPopulationTrend, ColThreatLevel,
}

// SpeciesRecord is one dataset row as read from the file, with the threat level normalized.
type SpeciesRecord struct {
	Name            string      `json:"species_name"`
	Class           string      `json:"class"`
	Order           string      `json:"order"`
	Family          string      `json:"family"`
	Habitat         string      `json:"habitat"`
	PopulationTrend string      `json:"population_trend"`
	ThreatLevel     ThreatLevel `json:"threat_level"`
}

// Derived holds the columns computed from a SpeciesRecord.
type Derived struct {
	SpeciesCode  int
	ClassCode    int
	OrderCode    int
	FamilyCode   int
	Trend        int
	Aquatic      bool
	Mammal       bool
	Bird         bool
	Reptile      bool
	HabitatClean string
}

// Row pairs a record with its derived columns.
type Row struct {
	SpeciesRecord
	Derived
}

// Dataset is the immutable, fully derived species table.
type Dataset struct {
	rows     []Row
	index    map[string]int
	habitats []string
}

// Build validates records and derives all columns. Records keep their input order.
func Build(records []SpeciesRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no species rows", ErrData)
	}

	index := make(map[string]int, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: row %d has an empty species name", ErrData, i+1)
		}
		if prev, dup := index[r.Name]; dup {
			return nil, fmt.Errorf("%w: species %q appears on rows %d and %d", ErrData, r.Name, prev+1, i+1)
		}
		index[r.Name] = i
	}

	speciesCodes := labelCodes(records, func(r SpeciesRecord) string { return r.Name })
	classCodes := labelCodes(records, func(r SpeciesRecord) string { return r.Class })
	orderCodes := labelCodes(records, func(r SpeciesRecord) string { return r.Order })
	familyCodes := labelCodes(records, func(r SpeciesRecord) string { return r.Family })

	habitatSet := make(map[string]struct{})
	rows := make([]Row, len(records))
	for i, r := range records {
		clean := CleanHabitat(r.Habitat)
		if clean != "" {
			habitatSet[clean] = struct{}{}
		}
		rows[i] = Row{
			SpeciesRecord: r,
			Derived: Derived{
				SpeciesCode:  speciesCodes[r.Name],
				ClassCode:    classCodes[r.Class],
				OrderCode:    orderCodes[r.Order],
				FamilyCode:   familyCodes[r.Family],
				Trend:        TrendValue(r.PopulationTrend),
				Aquatic:      IsAquatic(r.Habitat),
				Mammal:       IsMammal(r.Class),
				Bird:         IsBird(r.Class),
				Reptile:      IsReptile(r.Class),
				HabitatClean: clean,
			},
		}
	}

	return &Dataset{
		rows:     rows,
		index:    index,
		habitats: sortedKeys(habitatSet),
	}, nil
}

// Len returns the number of species.
func (d *Dataset) Len() int { return len(d.rows) }

// Rows returns a copy of all rows in file order.
func (d *Dataset) Rows() []Row {
	out := make([]Row, len(d.rows))
	copy(out, d.rows)
	return out
}

// Names returns species names in file order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.rows))
	for i, r := range d.rows {
		names[i] = r.Name
	}
	return names
}

// Lookup finds a species by exact name.
func (d *Dataset) Lookup(name string) (Row, bool) {
	i, ok := d.index[name]
	if !ok {
		return Row{}, false
	}
	return d.rows[i], true
}

// Habitats returns the distinct cleaned habitat values, sorted.
func (d *Dataset) Habitats() []string {
	out := make([]string, len(d.habitats))
	copy(out, d.habitats)
	return out
}

// Labels returns each row's threat level code in file order.
func (d *Dataset) Labels() []string {
	labels := make([]string, len(d.rows))
	for i, r := range d.rows {
		labels[i] = string(r.ThreatLevel)
	}
	return labels
}

// LevelCounts counts species per threat level.
func (d *Dataset) LevelCounts() map[ThreatLevel]int {
	counts := make(map[ThreatLevel]int, len(Levels))
	for _, r := range d.rows {
		counts[r.ThreatLevel]++
	}
	return counts
}

// labelCodes assigns each distinct value its index in sorted order.
func labelCodes(records []SpeciesRecord, key func(SpeciesRecord) string) map[string]int {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[key(r)] = struct{}{}
	}
	codes := make(map[string]int, len(set))
	for i, v := range sortedKeys(set) {
		codes[v] = i
	}
	return codes
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
