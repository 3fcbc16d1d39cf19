package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a .csv or .xlsx species table and builds the dataset.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrData, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ParseCSV(f)
	case ".xlsx":
		return ParseXLSX(f)
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q (want .csv or .xlsx)", ErrData, ext)
	}
}

// ParseCSV parses CSV content. Every row must have as many fields as the header.
func ParseCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", ErrData, err)
	}
	return fromRows(rows, false)
}

// ParseXLSX parses the first sheet of an Excel workbook.
func ParseXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrData, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrData, err)
	}
	// excelize drops trailing empty cells, so short rows are padded rather than rejected.
	return fromRows(rows, true)
}

func fromRows(rows [][]string, padShort bool) (*Dataset, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", ErrData)
	}

	header := normalizeHeader(rows[0])
	idx := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		i := findIndex(header, col)
		if i == -1 {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns: %s", ErrData, strings.Join(missing, ", "))
	}

	records := make([]SpeciesRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) < len(header) {
			if !padShort {
				return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrData, n+2, len(row), len(header))
			}
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}

		field := func(col string) string { return strings.TrimSpace(row[idx[col]]) }
		records = append(records, SpeciesRecord{
			Name:            field(ColSpeciesName),
			Class:           field(ColClass),
			Order:           field(ColOrder),
			Family:          field(ColFamily),
			Habitat:         field(ColHabitat),
			PopulationTrend: field(ColPopulationTrend),
			ThreatLevel:     NormalizeThreat(field(ColThreatLevel)),
		})
	}

	return Build(records)
}

func normalizeHeader(hdr []string) []string {
	out := make([]string, len(hdr))
	for i, v := range hdr {
		v = strings.TrimPrefix(v, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

func findIndex(hdr []string, name string) int {
	for i, v := range hdr {
		if v == name {
			return i
		}
	}
	return -1
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
