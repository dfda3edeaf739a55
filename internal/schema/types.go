package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sqlhelper/internal/queryir"
)

var (
	// ErrUnknownDataType indicates a type affinity string that maps to no
	// DataType.
	ErrUnknownDataType = errors.New("unknown data type")

	// ErrMissingArgument is queryir.ErrMissingArgument, so callers can match
	// either package's empty-argument failures with one errors.Is.
	ErrMissingArgument = queryir.ErrMissingArgument
)

// DataType is the normalized storage class of a column.
type DataType int

const (
	Integer DataType = iota
	Text
	Blob
	Real
	Numeric
	Null
)

var dataTypeNames = [...]string{
	Integer: "Integer",
	Text:    "Text",
	Blob:    "Blob",
	Real:    "Real",
	Numeric: "Numeric",
	Null:    "Null",
}

// String returns the name used in CREATE TABLE statements.
func (d DataType) String() string {
	if d < 0 || int(d) >= len(dataTypeNames) {
		return fmt.Sprintf("DataType(%d)", int(d))
	}
	return dataTypeNames[d]
}

// Valid reports whether d is one of the declared types.
func (d DataType) Valid() bool {
	return d >= Integer && d <= Null
}

// MarshalText implements encoding.TextMarshaler.
func (d DataType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDataType, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts every
// spelling DataTypeFromString does, plus "null".
func (d *DataType) UnmarshalText(b []byte) error {
	if strings.EqualFold(string(b), "null") {
		*d = Null
		return nil
	}
	dt, err := DataTypeFromString(string(b))
	if err != nil {
		return err
	}
	*d = dt
	return nil
}

// DataTypeFromString maps a declared column type to a DataType by
// case-insensitive substring, first match wins:
//
//	int                          Integer
//	char, text, clob             Text
//	blob                         Blob
//	real, double, float          Real
//	numeric, decimal, bool, date Numeric
//
// So "VARCHAR(64)" is Text and "BIGINT" is Integer.
func DataTypeFromString(s string) (DataType, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: data type", ErrMissingArgument)
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "int"):
		return Integer, nil
	case containsAny(lower, "char", "text", "clob"):
		return Text, nil
	case strings.Contains(lower, "blob"):
		return Blob, nil
	case containsAny(lower, "real", "double", "float"):
		return Real, nil
	case containsAny(lower, "numeric", "decimal", "bool", "date"):
		return Numeric, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDataType, s)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Column describes one table column.
type Column struct {
	Name       string   `json:"name" yaml:"name"`
	PrimaryKey bool     `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Type       DataType `json:"type" yaml:"type"`
	Nullable   bool     `json:"nullable,omitempty" yaml:"nullable,omitempty"`
}

// String renders the column for humans, e.g. "[id] PK Type: Integer Nullable: false".
func (c Column) String() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(c.Name)
	b.WriteString("] ")
	if c.PrimaryKey {
		b.WriteString("PK ")
	}
	fmt.Fprintf(&b, "Type: %s Nullable: %t", c.Type, c.Nullable)
	return b.String()
}

// PrimaryKeyColumn returns the name of the first primary-key column, or ""
// if there is none.
func PrimaryKeyColumn(columns []Column) string {
	for _, c := range columns {
		if c.PrimaryKey {
			return c.Name
		}
	}
	return ""
}

// ColumnNames returns the column names in order.
func ColumnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}
