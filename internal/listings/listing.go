package listings

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ListingRecord is one row of the reference table tying an address to its
// authoritative annual taxes and negotiated commission.
type ListingRecord struct {
	Address           string  `json:"address"`
	AnnualTaxes       float64 `json:"annual_taxes"`
	CommissionPercent float64 `json:"commission_percent"` // 0..1
}

// Table is the static reference listing table, loaded once at startup and
// read-only for the process lifetime. Safe for concurrent readers.
type Table struct {
	records []ListingRecord
}

func NewTable(records []ListingRecord) *Table {
	return &Table{records: records}
}

func (t *Table) Records() []ListingRecord {
	return t.records
}

func (t *Table) Len() int {
	return len(t.records)
}

// LoadCSV reads a listings table from a CSV of
// address,annual_taxes,commission_percent rows. A header row is detected and
// skipped. Commission may be given as a fraction (0.03) or a percent (3).
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open listings csv: %w", err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []ListingRecord
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read listings csv: %w", err)
		}
		line++
		if len(row) < 3 {
			continue
		}
		if line == 1 && looksLikeHeader(row) {
			continue
		}

		taxes, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(row[1], "$")), 64)
		if err != nil {
			return nil, fmt.Errorf("listings csv line %d: bad annual taxes %q", line, row[1])
		}
		commission, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(row[2]), "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("listings csv line %d: bad commission %q", line, row[2])
		}
		if commission > 1 {
			commission /= 100
		}

		records = append(records, ListingRecord{
			Address:           strings.TrimSpace(row[0]),
			AnnualTaxes:       taxes,
			CommissionPercent: commission,
		})
	}
	return NewTable(records), nil
}

func looksLikeHeader(row []string) bool {
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return strings.Contains(first, "address")
}
