package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlhelper/internal/sanitize"
)

// Names of the temporary tables filled by the introspection sequences.
const (
	TableListName = "tablelist"
	TableInfoName = "tableinfo"
)

// Result columns of the introspection sequences.
const (
	ColTableName     = "TABLE_NAME"
	ColColumnName    = "COLUMN_NAME"
	ColDataType      = "DATA_TYPE"
	ColIsPrimaryKey  = "IS_PRIMARY_KEY"
	ColIsNotNullable = "IS_NOT_NULLABLE"
)

// BuildCreateTable builds CREATE TABLE IF NOT EXISTS for columns in order:
//
//	CREATE TABLE IF NOT EXISTS 'company' (id Integer PRIMARY KEY AUTOINCREMENT NOT NULL , name Text COLLATE NOCASE , postal Integer )
//
// Text columns get COLLATE NOCASE, primary keys PRIMARY KEY (plus
// AUTOINCREMENT when Integer), and non-nullable columns NOT NULL.
func BuildCreateTable(name string, columns []Column) (string, error) {
	table, err := strictName(name, "table name")
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: columns", ErrMissingArgument)
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		def, err := columnDefinition(c)
		if err != nil {
			return "", fmt.Errorf("column %d: %w", i, err)
		}
		defs[i] = def
	}

	return "CREATE TABLE IF NOT EXISTS '" + table + "' (" + strings.Join(defs, ", ") + ")", nil
}

func columnDefinition(c Column) (string, error) {
	name, err := strictName(c.Name, "column name")
	if err != nil {
		return "", err
	}
	if !c.Type.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownDataType, c.Type)
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" ")
	b.WriteString(c.Type.String())
	b.WriteString(" ")
	if c.Type == Text {
		b.WriteString("COLLATE NOCASE ")
	}
	if c.PrimaryKey {
		b.WriteString("PRIMARY KEY ")
		if c.Type == Integer {
			b.WriteString("AUTOINCREMENT ")
		}
	}
	if !c.Nullable {
		b.WriteString("NOT NULL ")
	}
	return b.String(), nil
}

// BuildDropTable builds DROP TABLE IF EXISTS '<name>'.
func BuildDropTable(name string) (string, error) {
	table, err := strictName(name, "table name")
	if err != nil {
		return "", err
	}
	return "DROP TABLE IF EXISTS '" + table + "'", nil
}

// ListTablesStatements returns the statements that list user tables. They
// must run in order on one connection; the last one returns a TABLE_NAME
// column. Engine tables (sqlite_%) are excluded.
func ListTablesStatements() []string {
	return []string{
		"DROP TABLE IF EXISTS temp." + TableListName + ";",
		"CREATE TEMPORARY TABLE " + TableListName + " AS" +
			" SELECT name AS " + ColTableName +
			" FROM sqlite_master" +
			" WHERE type = 'table' AND name NOT LIKE 'sqlite_%';",
		"SELECT * FROM temp." + TableListName + ";",
	}
}

// DescribeTableStatements returns the statements that describe the columns
// of one table, joining the catalog with pragma_table_info. They must run
// in order on one connection. A table without columns yields one row with
// NULL column fields; a missing table yields no rows.
func DescribeTableStatements(name string) ([]string, error) {
	table, err := strictName(name, "table name")
	if err != nil {
		return nil, err
	}

	return []string{
		"DROP TABLE IF EXISTS temp." + TableInfoName + ";",
		"CREATE TEMPORARY TABLE " + TableInfoName + " AS" +
			" SELECT m.name AS " + ColTableName + "," +
			" p.cid AS COLUMN_ID," +
			" p.name AS " + ColColumnName + "," +
			" p.type AS " + ColDataType + "," +
			" p.pk AS " + ColIsPrimaryKey + "," +
			" p.[notnull] AS " + ColIsNotNullable +
			" FROM sqlite_master m" +
			" LEFT OUTER JOIN pragma_table_info(m.name) p" +
			" WHERE m.type = 'table' AND m.name = '" + table + "'" +
			" ORDER BY " + ColTableName + ", COLUMN_ID;",
		"SELECT * FROM temp." + TableInfoName + ";",
	}, nil
}

// strictName sanitizes an identifier for DDL and introspection text.
func strictName(name, what string) (string, error) {
	s := strings.TrimSpace(sanitize.Strict(name))
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, what)
	}
	return s, nil
}
