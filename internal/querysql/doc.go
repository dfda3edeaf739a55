// Package querysql renders queryir expressions and CRUD requests as SQLite
// statement text.
//
// The package-level functions (Compile, BuildSelect, BuildInsert,
// BuildUpdate, BuildDelete) produce literal SQL: every value is passed
// through the sanitizer and inlined as a quoted string. A SQLCompiler with
// Bind set produces the same statements with ? placeholders and returns the
// values separately; the store uses that mode by default.
//
// Examples of literal output:
//
//	(postal > '70000')
//	((postal > '70000') OR (postal < '50000'))
//	(name IN ('a','b'))
//	((name LIKE 'acme%' OR name LIKE '%acme%' OR name LIKE '%acme'))
//	INSERT INTO company (name,postal) VALUES ('o''brien','70000'); SELECT last_insert_rowid() AS id;
//
// Nothing is executed here. Builders either return a complete statement or
// an error, never partial text.
package querysql
