// Package store executes built statements against a SQLite database.
//
// It is the execute boundary around the pure packages: querysql builds the
// text, store runs it and returns tabular results, scalars, row ids or
// affected-row counts. Schema operations (list, describe, create, drop) use
// the statements from package schema.
//
// # Parameters
//
// By default the store compiles values as bound parameters. WithLiteralSQL
// switches to sanitized inline literals, the same text the package-level
// querysql builders produce.
//
// # Drivers
//
//   - sqlite3 (github.com/mattn/go-sqlite3): default, cgo
//   - sqlite (modernc.org/sqlite): pure Go
//
// # Database Configuration
//
//   - one open connection, all executions serialized by a mutex
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - rollback journal (no WAL), so Backup can copy a single file
//
// Introspection runs its drop/create/select sequence on one pinned
// connection inside the lock, so no other statement can interleave.
package store
