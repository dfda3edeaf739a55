package querysql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sqlhelper/internal/queryir"
	"github.com/roach88/sqlhelper/internal/sanitize"
)

// ErrMissingFilter is returned by Delete when no filter is given.
// A DELETE without WHERE is never built.
var ErrMissingFilter = errors.New("missing filter")

// Field is one column assignment of an INSERT or UPDATE.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered list of assignments. Order is rendering order.
type Fields []Field

// F returns a Field.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Names returns the field names in order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// SelectQuery describes a SELECT statement.
type SelectQuery struct {
	// Table is required.
	Table string

	// Fields lists the returned columns; empty selects *.
	Fields []string

	// Filter becomes the WHERE clause when set.
	Filter *queryir.Expression

	// OrderBy is appended after WHERE, e.g. "ORDER BY created DESC".
	// The ORDER BY keyword is added when missing.
	OrderBy string

	// Limit is emitted only when greater than zero.
	Limit int

	// Offset is emitted only with a limit and when non-negative.
	Offset *int
}

// Offset returns a pointer to n, for SelectQuery.Offset.
func Offset(n int) *int {
	return &n
}

// Select builds:
//
//	SELECT <fields|*> FROM <table>[ WHERE <filter>][ <order by>][ LIMIT n[ OFFSET m]]
func (c *SQLCompiler) Select(q SelectQuery) (string, []any, error) {
	table, err := tableName(q.Table)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectList(q.Fields))
	b.WriteString(" FROM ")
	b.WriteString(table)

	var params []any
	if q.Filter != nil {
		where, whereParams, err := c.Compile(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = whereParams
	}

	if order := orderByClause(q.OrderBy); order != "" {
		b.WriteString(" ")
		b.WriteString(order)
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
		if q.Offset != nil && *q.Offset >= 0 {
			b.WriteString(" OFFSET ")
			b.WriteString(strconv.Itoa(*q.Offset))
		}
	}

	return b.String(), params, nil
}

// Insert builds an INSERT followed by a query for the new row id:
//
//	INSERT INTO t (a,b) VALUES ('x',null); SELECT last_insert_rowid() AS id;
func (c *SQLCompiler) Insert(table string, fields Fields) (string, []any, error) {
	name, err := tableName(table)
	if err != nil {
		return "", nil, err
	}

	var keys, values []string
	var params []any
	for _, f := range fields {
		key := fieldName(f.Name)
		if key == "" {
			continue
		}
		sql, param := c.value(f.Value)
		keys = append(keys, key)
		values = append(values, sql)
		params = append(params, param...)
	}
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%w: no fields to insert", queryir.ErrMissingArgument)
	}

	sql := "INSERT INTO " + name +
		" (" + strings.Join(keys, ",") + ")" +
		" VALUES (" + strings.Join(values, ",") + ");" +
		" SELECT last_insert_rowid() AS id;"
	return sql, params, nil
}

// Update builds UPDATE t SET a='x',b=null[ WHERE <filter>].
// A nil filter updates every row.
func (c *SQLCompiler) Update(table string, fields Fields, filter *queryir.Expression) (string, []any, error) {
	name, err := tableName(table)
	if err != nil {
		return "", nil, err
	}

	var sets []string
	var params []any
	for _, f := range fields {
		key := fieldName(f.Name)
		if key == "" {
			continue
		}
		sql, param := c.value(f.Value)
		sets = append(sets, key+"="+sql)
		params = append(params, param...)
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("%w: no fields to update", queryir.ErrMissingArgument)
	}

	sql := "UPDATE " + name + " SET " + strings.Join(sets, ",")
	if filter != nil {
		where, whereParams, err := c.Compile(filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sql += " WHERE " + where
		params = append(params, whereParams...)
	}
	return sql, params, nil
}

// Delete builds DELETE FROM t WHERE <filter>. The filter is required.
func (c *SQLCompiler) Delete(table string, filter *queryir.Expression) (string, []any, error) {
	name, err := tableName(table)
	if err != nil {
		return "", nil, err
	}
	if filter == nil {
		return "", nil, ErrMissingFilter
	}

	where, params, err := c.Compile(filter)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return "DELETE FROM " + name + " WHERE " + where, params, nil
}

// BuildSelect is Select in literal mode.
func BuildSelect(q SelectQuery) (string, error) {
	sql, _, err := defaultCompiler.Select(q)
	return sql, err
}

// BuildInsert is Insert in literal mode.
func BuildInsert(table string, fields Fields) (string, error) {
	sql, _, err := defaultCompiler.Insert(table, fields)
	return sql, err
}

// BuildUpdate is Update in literal mode.
func BuildUpdate(table string, fields Fields, filter *queryir.Expression) (string, error) {
	sql, _, err := defaultCompiler.Update(table, fields, filter)
	return sql, err
}

// BuildDelete is Delete in literal mode.
func BuildDelete(table string, filter *queryir.Expression) (string, error) {
	sql, _, err := defaultCompiler.Delete(table, filter)
	return sql, err
}

func tableName(table string) (string, error) {
	name := strings.TrimSpace(sanitize.String(table))
	if name == "" {
		return "", fmt.Errorf("%w: table name", queryir.ErrMissingArgument)
	}
	return name, nil
}

func fieldName(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSpace(sanitize.String(name))
}

// selectList sanitizes and joins the returned fields, skipping empty ones.
func selectList(fields []string) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if name := fieldName(f); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "*"
	}
	return strings.Join(names, ",")
}

func orderByClause(s string) string {
	clause := strings.TrimSpace(sanitize.String(s))
	if clause == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToUpper(clause), "ORDER BY ") {
		clause = "ORDER BY " + clause
	}
	return clause
}
