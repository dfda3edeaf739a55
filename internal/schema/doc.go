// Package schema maps SQLite type affinities to DataType values and builds
// the DDL and introspection statements.
//
// Introspection runs as a sequence of three statements against a temporary
// table: drop it, fill it from sqlite_master, select from it. The sequences
// are returned as separate statements so the caller can run them on one
// pinned connection under a lock. Table names embedded here go through
// sanitize.Strict, which also removes line breaks.
package schema
