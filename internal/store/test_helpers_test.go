package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlhelper/internal/schema"
)

// quietLogger suppresses logs in tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createCompanyStore creates a store holding the company table.
func createCompanyStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := createTestStore(t, opts...)
	err := s.CreateTable(t.Context(), "company", companyColumns())
	require.NoError(t, err)
	return s
}

func companyColumns() []schema.Column {
	return []schema.Column{
		{Name: "id", PrimaryKey: true, Type: schema.Integer},
		{Name: "name", Type: schema.Text, Nullable: true},
		{Name: "postal", Type: schema.Integer, Nullable: true},
	}
}

// createMockStore wraps a sqlmock handle that matches statements exactly.
func createMockStore(t *testing.T, opts ...Option) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(db, opts...), mock
}
