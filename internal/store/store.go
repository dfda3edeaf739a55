package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
	_ "modernc.org/sqlite"

	"github.com/roach88/sqlhelper/internal/querysql"
)

// Driver names accepted by WithDriver.
const (
	// DriverCGO is github.com/mattn/go-sqlite3, the default.
	DriverCGO = "sqlite3"

	// DriverPure is modernc.org/sqlite, which needs no C toolchain.
	DriverPure = "sqlite"
)

var (
	// ErrUnknownDriver indicates a driver name other than DriverCGO or DriverPure.
	ErrUnknownDriver = errors.New("unknown sqlite driver")

	// ErrNoDatabaseFile indicates an operation that needs a database file
	// on a store that has none (in-memory or wrapping a foreign handle).
	ErrNoDatabaseFile = errors.New("store has no database file")
)

// Store executes built statements against one SQLite database.
//
// Every execution is serialized by a mutex and the pool is limited to one
// connection, so multi-statement sequences see a consistent temporary
// table and the connection handle is never used concurrently.
type Store struct {
	db       *sql.DB
	mu       sync.Mutex
	path     string
	compiler *querysql.SQLCompiler
	logger   *slog.Logger
	fs       afero.Fs

	logQueries bool
	logResults bool
}

// Option configures a Store.
type Option func(*options)

type options struct {
	driver     string
	logger     *slog.Logger
	logQueries bool
	logResults bool
	literal    bool
	fs         afero.Fs
}

// WithDriver selects the database/sql driver: DriverCGO or DriverPure.
func WithDriver(name string) Option {
	return func(o *options) { o.driver = name }
}

// WithLogger sets the logger for query and result logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithQueryLogging logs every statement and its arguments at info level.
// Without it statements are logged at debug level.
func WithQueryLogging(on bool) Option {
	return func(o *options) { o.logQueries = on }
}

// WithResultLogging logs every tabular result at info level.
func WithResultLogging(on bool) Option {
	return func(o *options) { o.logResults = on }
}

// WithLiteralSQL makes the store inline sanitized literals instead of
// binding parameters.
func WithLiteralSQL() Option {
	return func(o *options) { o.literal = true }
}

// WithFs sets the filesystem used by Backup.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

func newOptions(opts []Option) options {
	o := options{
		driver: DriverCGO,
		logger: slog.Default(),
		fs:     afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - a single open connection
//   - 5-second busy timeout for lock contention
//   - foreign key enforcement
//
// The default rollback journal is kept so that Backup can copy the file.
func Open(path string, opts ...Option) (*Store, error) {
	o := newOptions(opts)
	if o.driver != DriverCGO && o.driver != DriverPure {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, o.driver)
	}

	db, err := sql.Open(o.driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection keeps temporary tables and pragmas on the same handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s := newStore(db, o)
	s.path = path
	return s, nil
}

// New wraps an existing handle. Pragmas are not applied and Backup is
// unavailable.
func New(db *sql.DB, opts ...Option) *Store {
	return newStore(db, newOptions(opts))
}

func newStore(db *sql.DB, o options) *Store {
	// SQLite has no N'' literals, so the wide prefix is disabled.
	compiler := &querysql.SQLCompiler{Bind: !o.literal}
	return &Store{
		db:         db,
		compiler:   compiler,
		logger:     o.logger,
		fs:         o.fs,
		logQueries: o.logQueries,
		logResults: o.logResults,
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - statements issued here bypass the store's lock.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the path or DSN the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
