package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sqlhelper/internal/queryir"
	"github.com/roach88/sqlhelper/internal/querysql"
	"github.com/roach88/sqlhelper/internal/schema"
)

// Exec executes a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec(ctx, s.db, query, args)
}

// Insert adds one row and returns its row id.
func (s *Store) Insert(ctx context.Context, table string, fields querysql.Fields) (int64, error) {
	query, args, err := s.compiler.Insert(table, fields)
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Update changes the rows matching filter (every row when filter is nil)
// and returns how many were affected.
func (s *Store) Update(ctx context.Context, table string, fields querysql.Fields, filter *queryir.Expression) (int64, error) {
	query, args, err := s.compiler.Update(table, fields, filter)
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}
	return s.execAffected(ctx, query, args)
}

// Delete removes the rows matching filter and returns how many were
// affected. A nil filter fails with querysql.ErrMissingFilter.
func (s *Store) Delete(ctx context.Context, table string, filter *queryir.Expression) (int64, error) {
	query, args, err := s.compiler.Delete(table, filter)
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	return s.execAffected(ctx, query, args)
}

// CreateTable creates table with columns unless it already exists.
func (s *Store) CreateTable(ctx context.Context, table string, columns []schema.Column) error {
	query, err := schema.BuildCreateTable(table, columns)
	if err != nil {
		return fmt.Errorf("build create table: %w", err)
	}
	if _, err := s.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// DropTable drops table if it exists.
func (s *Store) DropTable(ctx context.Context, table string) error {
	query, err := schema.BuildDropTable(table)
	if err != nil {
		return fmt.Errorf("build drop table: %w", err)
	}
	if _, err := s.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	return nil
}

func (s *Store) execAffected(ctx context.Context, query string, args []any) (int64, error) {
	res, err := s.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
