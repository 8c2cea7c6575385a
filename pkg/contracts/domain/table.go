package domain

// Row maps column names to cell values. Looking up a column the row does not
// carry yields the null value.
type Row map[string]Value

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered, uniform-column dataset held fully in memory. Columns
// owns the column order; Rows preserve input order.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Clone returns a deep copy of the table. Cleaning runs operate on a clone
// so the stored raw table is never mutated.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return &Table{Columns: cols, Rows: rows}
}

// RowCount returns the number of rows; safe on a nil table.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnCount returns the number of columns; safe on a nil table.
func (t *Table) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnValues returns the named column's cells in row order.
func (t *Table) ColumnValues(name string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}
