package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ColumnKind is the inferred type of a reference table column.
type ColumnKind uint8

const (
	KindString ColumnKind = iota
	KindInt
	KindFloat
	KindBool
)

func (k ColumnKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Cell is a single typed value from a reference table.
type Cell struct {
	raw  string
	kind ColumnKind
	null bool
}

// NewCell builds a cell of the given kind from its raw CSV text.
// Blank text produces a null cell.
func NewCell(raw string, kind ColumnKind) Cell {
	if strings.TrimSpace(raw) == "" {
		return Cell{kind: kind, null: true}
	}
	return Cell{raw: raw, kind: kind}
}

// StringCell builds a non-null string cell.
func StringCell(s string) Cell {
	return Cell{raw: s, kind: KindString}
}

// IsNull reports whether the cell was blank in the source.
func (c Cell) IsNull() bool {
	return c.null
}

// Kind returns the column kind the cell was read as.
func (c Cell) Kind() ColumnKind {
	return c.kind
}

// Raw returns the cell text exactly as read.
func (c Cell) Raw() string {
	return c.raw
}

// String renders the cell the way a dataframe string cast does:
// integers without a fraction, floats always with one ("19.0"),
// booleans as "True"/"False" and nulls as "nan".
func (c Cell) String() string {
	if c.null {
		return "nan"
	}
	switch c.kind {
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(c.raw), 10, 64)
		if err != nil {
			return c.raw
		}
		return strconv.FormatInt(n, 10)
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.raw), 64)
		if err != nil {
			return c.raw
		}
		return formatFloat(f)
	case KindBool:
		if b, ok := parseBool(c.raw); ok && b {
			return "True"
		}
		return "False"
	default:
		return c.raw
	}
}

// Value returns the cell as a JSON-friendly Go value.
func (c Cell) Value() interface{} {
	if c.null {
		return nil
	}
	switch c.kind {
	case KindInt:
		if n, err := strconv.ParseInt(strings.TrimSpace(c.raw), 10, 64); err == nil {
			return n
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(c.raw), 64); err == nil {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil
			}
			return f
		}
	case KindBool:
		if b, ok := parseBool(c.raw); ok {
			return b
		}
	}
	return c.raw
}

// MarshalJSON encodes the cell using Value.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

// formatFloat mirrors the shortest round-trip float repr with a trailing ".0"
// for integral values.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// InferKind picks the narrowest kind that can hold every non-blank value.
// Integer columns with blanks widen to float.
func InferKind(values []string) ColumnKind {
	allInt, allFloat, allBool := true, true, true
	nonBlank, hasBlank := 0, false

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			hasBlank = true
			continue
		}
		nonBlank++
		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(v); !ok {
				allBool = false
			}
		}
	}

	switch {
	case nonBlank == 0:
		return KindFloat
	case allBool:
		return KindBool
	case allInt && !hasBlank:
		return KindInt
	case allFloat:
		return KindFloat
	default:
		return KindString
	}
}

// Table is an immutable, column-ordered reference table.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// NewTable builds a table from raw string records, inferring one kind per column.
// Short records are padded with nulls; extra fields are dropped.
func NewTable(columns []string, records [][]string) *Table {
	kinds := make([]ColumnKind, len(columns))
	for col := range columns {
		values := make([]string, len(records))
		for i, rec := range records {
			if col < len(rec) {
				values[i] = rec[col]
			}
		}
		kinds[col] = InferKind(values)
	}

	rows := make([][]Cell, len(records))
	for i, rec := range records {
		row := make([]Cell, len(columns))
		for col := range columns {
			raw := ""
			if col < len(rec) {
				raw = rec[col]
			}
			row[col] = NewCell(raw, kinds[col])
		}
		rows[i] = row
	}
	return newTable(columns, rows)
}

func newTable(columns []string, rows [][]Cell) *Table {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return &Table{columns: columns, index: index, rows: rows}
}

// Columns returns a copy of the column names in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether a column with the exact name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns a view over row i.
func (t *Table) Row(i int) Row {
	return Row{table: t, i: i}
}

// Column returns every cell of the named column. Unknown columns yield nil.
func (t *Table) Column(name string) []Cell {
	col, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]Cell, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[col]
	}
	return out
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	rows := make([][]Cell, 0, len(t.rows))
	for i, row := range t.rows {
		if keep(Row{table: t, i: i}) {
			rows = append(rows, row)
		}
	}
	return newTable(t.columns, rows)
}

// MapColumn returns a new table with fn applied to every cell of the named column.
// The receiver is left untouched.
func (t *Table) MapColumn(name string, fn func(Cell) Cell) *Table {
	col, ok := t.index[name]
	if !ok {
		return t
	}
	rows := make([][]Cell, len(t.rows))
	for i, row := range t.rows {
		cp := make([]Cell, len(row))
		copy(cp, row)
		cp[col] = fn(cp[col])
		rows[i] = cp
	}
	return newTable(t.columns, rows)
}

// RenameColumn returns a new table with the column renamed. Missing columns are ignored.
func (t *Table) RenameColumn(from, to string) *Table {
	if _, ok := t.index[from]; !ok {
		return t
	}
	columns := t.Columns()
	for i, name := range columns {
		if name == from {
			columns[i] = to
		}
	}
	return newTable(columns, t.rows)
}

// Records returns the rows as ordered JSON objects.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.rows))
	for i, row := range t.rows {
		out[i] = Record{columns: t.columns, cells: row}
	}
	return out
}

// Row is a read-only view over one table row.
type Row struct {
	table *Table
	i     int
}

// Get returns the named cell, or a null cell when the column is unknown.
func (r Row) Get(column string) Cell {
	col, ok := r.table.index[column]
	if !ok {
		return Cell{null: true}
	}
	return r.table.rows[r.i][col]
}

// Record is a table row that marshals as a JSON object in column order.
type Record struct {
	columns []string
	cells   []Cell
}

// MarshalJSON writes the object keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.cells[i].Value())
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
