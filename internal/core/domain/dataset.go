package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

type ColumnKind string

const (
	ColumnKindNumeric     ColumnKind = "numeric"
	ColumnKindCategorical ColumnKind = "categorical"
)

// Cell spellings treated as missing, following pandas read_csv defaults.
var missingValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsMissing reports whether a raw cell holds no value.
func IsMissing(cell string) bool {
	return missingValues[cell]
}

// ParseNumber parses a numeric cell. Missing cells are not numbers.
func ParseNumber(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Dataset is the uploaded table. Cells keep their raw text so a save/load
// cycle reproduces them exactly; column kinds are derived from the cells.
type Dataset struct {
	Columns []Column
	Rows    [][]string
}

// NewDataset builds a dataset from a header and rows and infers column kinds.
// Rows shorter than the header are padded with missing cells.
func NewDataset(header []string, rows [][]string) *Dataset {
	ds := &Dataset{
		Columns: make([]Column, len(header)),
		Rows:    make([][]string, len(rows)),
	}
	for i, name := range header {
		ds.Columns[i] = Column{Name: name}
	}
	for i, row := range rows {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		ds.Rows[i] = row
	}
	ds.InferKinds()
	return ds
}

// InferKinds recomputes every column kind. A column is numeric when all of
// its non-missing cells parse as numbers and at least one cell is present.
func (d *Dataset) InferKinds() {
	for j := range d.Columns {
		kind := ColumnKindCategorical
		present := 0
		numeric := true
		for _, row := range d.Rows {
			cell := row[j]
			if IsMissing(cell) {
				continue
			}
			present++
			if _, ok := ParseNumber(cell); !ok {
				numeric = false
				break
			}
		}
		if numeric && present > 0 {
			kind = ColumnKindNumeric
		}
		d.Columns[j].Kind = kind
	}
}

func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

func (d *Dataset) NumColumns() int {
	return len(d.Columns)
}

func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// CategoricalColumns lists every non-numeric column in header order.
func (d *Dataset) CategoricalColumns() []string {
	var cols []string
	for _, c := range d.Columns {
		if c.Kind == ColumnKindCategorical {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

func (d *Dataset) NumericColumns() []string {
	var cols []string
	for _, c := range d.Columns {
		if c.Kind == ColumnKindNumeric {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// ColumnValues returns a copy of the raw cells of column j.
func (d *Dataset) ColumnValues(j int) []string {
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[j]
	}
	return values
}

// Head returns at most n leading rows.
func (d *Dataset) Head(n int) [][]string {
	if n < 0 || n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// Tail returns at most n trailing rows.
func (d *Dataset) Tail(n int) [][]string {
	if n < 0 || n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[len(d.Rows)-n:]
}

// Fingerprint identifies the dataset content.
func (d *Dataset) Fingerprint() string {
	h := sha256.New()
	for _, c := range d.Columns {
		h.Write([]byte(c.Name))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, row := range d.Rows {
		for _, cell := range row {
			h.Write([]byte(cell))
			h.Write([]byte{0})
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeHeader renames blank and duplicated column names the way pandas
// does: "" becomes "Unnamed: <i>" and a repeated "x" becomes "x.1", "x.2".
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for seen[candidate] {
			counts[name]++
			candidate = name + "." + strconv.Itoa(counts[name])
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}
