package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/sqlhelper/internal/queryir"
	"github.com/roach88/sqlhelper/internal/querysql"
)

// execer is satisfied by *sql.DB and *sql.Conn.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Query executes query and returns its rows as a Table.
// For a multi-statement batch the driver decides which result is returned.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(ctx, s.db, query, args)
}

// QueryScalar executes query and returns the first column of the first
// row, or nil when there are no rows.
func (s *Store) QueryScalar(ctx context.Context, query string, args ...any) (any, error) {
	t, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 || len(t.Columns) == 0 {
		return nil, nil
	}
	return t.Rows[0][0], nil
}

// Select builds and runs a SELECT.
func (s *Store) Select(ctx context.Context, q querysql.SelectQuery) (*Table, error) {
	query, args, err := s.compiler.Select(q)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return s.Query(ctx, query, args...)
}

// GetUniqueObjectByID returns at most one row of table whose idField
// equals value.
func (s *Store) GetUniqueObjectByID(ctx context.Context, table, idField string, value any) (*Table, error) {
	if idField == "" {
		return nil, fmt.Errorf("%w: id field", queryir.ErrMissingArgument)
	}
	filter, err := queryir.New(queryir.Col(idField), queryir.Equals, queryir.Lit(value))
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	return s.Select(ctx, querysql.SelectQuery{Table: table, Filter: filter, Limit: 1})
}

func (s *Store) query(ctx context.Context, q execer, query string, args []any) (*Table, error) {
	s.logStatement(ctx, query, args)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	t, err := scanTable(rows)
	if err != nil {
		return nil, err
	}

	if s.logResults {
		s.logger.InfoContext(ctx, "query result",
			"columns", t.Columns,
			"rows", t.Rows)
	}
	return t, nil
}

func (s *Store) exec(ctx context.Context, q execer, query string, args []any) (sql.Result, error) {
	s.logStatement(ctx, query, args)

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	return res, nil
}

func (s *Store) logStatement(ctx context.Context, query string, args []any) {
	level := slog.LevelDebug
	if s.logQueries {
		level = slog.LevelInfo
	}
	s.logger.Log(ctx, level, "query", "sql", query, "args", args)
}
