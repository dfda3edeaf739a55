package schema

import "fmt"

// ColumnRow is one row of the describe sequence, already scanned.
type ColumnRow struct {
	Name       string
	Type       string
	PrimaryKey bool
	NotNull    bool
}

// ColumnsFromRows maps describe rows to columns. Rows with an empty name
// (a table without columns) are skipped, and duplicate names keep the first
// occurrence. Order of first occurrence is preserved.
//
// A column declared without a type has BLOB affinity in SQLite and maps to
// Blob. Any other type string goes through DataTypeFromString, and an
// unrecognized one fails the whole call.
func ColumnsFromRows(rows []ColumnRow) ([]Column, error) {
	columns := make([]Column, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for _, r := range rows {
		if r.Name == "" || seen[r.Name] {
			continue
		}

		dt := Blob
		if r.Type != "" {
			var err error
			dt, err = DataTypeFromString(r.Type)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", r.Name, err)
			}
		}

		seen[r.Name] = true
		columns = append(columns, Column{
			Name:       r.Name,
			PrimaryKey: r.PrimaryKey,
			Type:       dt,
			Nullable:   !r.NotNull,
		})
	}

	return columns, nil
}
