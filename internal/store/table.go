package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Table is a tabular query result: ordered column names and ordered rows.
// Cell values are whatever the driver returns (int64, float64, string,
// []byte, time.Time or nil).
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of column, or -1.
func (t *Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Value returns the cell at row and column. ok is false when either is
// out of range.
func (t *Table) Value(row int, column string) (v any, ok bool) {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	i := t.ColumnIndex(column)
	if i < 0 {
		return nil, false
	}
	return t.Rows[row][i], true
}

// Maps returns one column-keyed map per row.
func (t *Table) Maps() []map[string]any {
	out := make([]map[string]any, 0, t.Len())
	if t == nil {
		return out
	}
	for _, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for i, c := range t.Columns {
			m[c] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// scanTable reads every row of rows. The caller closes rows.
func scanTable(rows *sql.Rows) (*Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	t := &Table{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(t.Rows), err)
		}
		t.Rows = append(t.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return t, nil
}

// asString converts a cell to text; nil becomes "".
func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// asInt converts a numeric or boolean cell to int64.
func asInt(v any) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(val, 10, 64)
	case []byte:
		return strconv.ParseInt(string(val), 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", v)
	}
}
