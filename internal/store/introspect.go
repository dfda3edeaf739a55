package store

import (
	"context"
	"fmt"

	"github.com/roach88/sqlhelper/internal/schema"
)

// TableDescription is one table of DescribeDatabase.
type TableDescription struct {
	Name    string          `json:"name"`
	Columns []schema.Column `json:"columns"`
}

// ListTables returns the user table names in the order SQLite reports them.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	t, err := s.runSequence(ctx, schema.ListTablesStatements())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	names := make([]string, 0, t.Len())
	for i := range t.Rows {
		v, ok := t.Value(i, schema.ColTableName)
		if !ok {
			return nil, fmt.Errorf("list tables: missing %s column", schema.ColTableName)
		}
		names = append(names, asString(v))
	}
	return names, nil
}

// TableExists reports whether a user table with exactly this name exists.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	if table == "" {
		return false, fmt.Errorf("%w: table name", schema.ErrMissingArgument)
	}
	names, err := s.ListTables(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == table {
			return true, nil
		}
	}
	return false, nil
}

// DescribeTable returns the columns of table in declaration order. A
// missing table yields no columns.
func (s *Store) DescribeTable(ctx context.Context, table string) ([]schema.Column, error) {
	stmts, err := schema.DescribeTableStatements(table)
	if err != nil {
		return nil, err
	}

	t, err := s.runSequence(ctx, stmts)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}

	rows := make([]schema.ColumnRow, 0, t.Len())
	for i := range t.Rows {
		row, err := columnRow(t, i)
		if err != nil {
			return nil, fmt.Errorf("describe %s: row %d: %w", table, i, err)
		}
		rows = append(rows, row)
	}

	columns, err := schema.ColumnsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return columns, nil
}

// DescribeDatabase describes every user table, in ListTables order.
func (s *Store) DescribeDatabase(ctx context.Context) ([]TableDescription, error) {
	names, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TableDescription, 0, len(names))
	for _, name := range names {
		columns, err := s.DescribeTable(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, TableDescription{Name: name, Columns: columns})
	}
	return out, nil
}

// GetPrimaryKeyColumn returns the name of table's primary key column, or ""
// when it has none.
func (s *Store) GetPrimaryKeyColumn(ctx context.Context, table string) (string, error) {
	columns, err := s.DescribeTable(ctx, table)
	if err != nil {
		return "", err
	}
	return schema.PrimaryKeyColumn(columns), nil
}

// GetColumnNames returns table's column names in declaration order.
func (s *Store) GetColumnNames(ctx context.Context, table string) ([]string, error) {
	columns, err := s.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return schema.ColumnNames(columns), nil
}

// runSequence runs stmts on one pinned connection under the lock. Every
// statement but the last is executed; the last one's rows are returned.
func (s *Store) runSequence(ctx context.Context, stmts []string) (*Table, error) {
	if len(stmts) == 0 {
		return nil, fmt.Errorf("%w: statements", schema.ErrMissingArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	last := len(stmts) - 1
	for _, stmt := range stmts[:last] {
		if _, err := s.exec(ctx, conn, stmt, nil); err != nil {
			return nil, err
		}
	}
	return s.query(ctx, conn, stmts[last], nil)
}

func columnRow(t *Table, i int) (schema.ColumnRow, error) {
	name, _ := t.Value(i, schema.ColColumnName)
	dataType, _ := t.Value(i, schema.ColDataType)
	pkValue, _ := t.Value(i, schema.ColIsPrimaryKey)
	notNullValue, _ := t.Value(i, schema.ColIsNotNullable)

	pk, err := asInt(pkValue)
	if err != nil {
		return schema.ColumnRow{}, fmt.Errorf("%s: %w", schema.ColIsPrimaryKey, err)
	}
	notNull, err := asInt(notNullValue)
	if err != nil {
		return schema.ColumnRow{}, fmt.Errorf("%s: %w", schema.ColIsNotNullable, err)
	}

	return schema.ColumnRow{
		Name:       asString(name),
		Type:       asString(dataType),
		PrimaryKey: pk > 0,
		NotNull:    notNull != 0,
	}, nil
}
