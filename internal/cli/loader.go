package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlhelper/internal/queryir"
	"github.com/roach88/sqlhelper/internal/querysql"
	"github.com/roach88/sqlhelper/internal/schema"
	"github.com/roach88/sqlhelper/internal/store"
)

// LoadError represents an error in an input document.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// columnSpec is one column as written in a schema file.
type columnSpec struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	PrimaryKey bool   `json:"primary_key" yaml:"primary_key"`
	Nullable   bool   `json:"nullable" yaml:"nullable"`
}

// LoadSchema reads the column list of a schema file. The format follows
// the extension: .cue, or .yaml/.yml/.json. Every column problem is
// collected before returning.
//
//	columns: [
//		{name: "id", type: "integer", primary_key: true},
//		{name: "name", type: "text", nullable: true},
//	]
func LoadSchema(path string) ([]schema.Column, []error) {
	data, err := readFile(path)
	if err != nil {
		return nil, []error{err}
	}

	var (
		specs []columnSpec
		pos   []token.Pos
		errs  []error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		specs, pos, errs = decodeCUESchema(path, data)
	case ".yaml", ".yml", ".json":
		specs, errs = decodeYAMLSchema(data)
	default:
		return nil, []error{&LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("unsupported schema file type: %s", path)}}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if len(specs) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoColumns, Message: fmt.Sprintf("no columns in %s", path)}}
	}

	columns := make([]schema.Column, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	primaryKeys := 0
	for i, spec := range specs {
		var p token.Pos
		if i < len(pos) {
			p = pos[i]
		}
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			errs = append(errs, &LoadError{Code: ErrCodeColumnName, Message: fmt.Sprintf("columns[%d]: missing name", i), Pos: p})
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			errs = append(errs, &LoadError{Code: ErrCodeDuplicateColumn, Message: fmt.Sprintf("duplicate column %q", name), Pos: p})
			continue
		}
		seen[key] = true

		dt, err := schema.DataTypeFromString(spec.Type)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeUnknownType, Message: fmt.Sprintf("column %q: %v", name, err), Pos: p})
			continue
		}
		if spec.PrimaryKey {
			primaryKeys++
		}
		columns = append(columns, schema.Column{
			Name:       name,
			PrimaryKey: spec.PrimaryKey,
			Type:       dt,
			Nullable:   spec.Nullable && !spec.PrimaryKey,
		})
	}
	if primaryKeys > 1 {
		errs = append(errs, &LoadError{Code: ErrCodePrimaryKeys, Message: fmt.Sprintf("%d primary key columns, at most one is allowed", primaryKeys)})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return columns, nil
}

func decodeCUESchema(path string, data []byte) ([]columnSpec, []token.Pos, []error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Validate(); err != nil {
		return nil, nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	columnsVal := value.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return nil, nil, []error{&LoadError{Code: ErrCodeNoColumns, Message: "missing columns list", Pos: value.Pos()}}
	}
	iter, err := columnsVal.List()
	if err != nil {
		return nil, nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("columns must be a list: %v", err), Pos: columnsVal.Pos()}}
	}

	var (
		specs []columnSpec
		pos   []token.Pos
		errs  []error
	)
	for iter.Next() {
		v := iter.Value()
		var spec columnSpec
		if err := v.Decode(&spec); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("columns[%s]: %v", iter.Selector(), err), Pos: v.Pos()})
			continue
		}
		specs = append(specs, spec)
		pos = append(pos, v.Pos())
	}
	return specs, pos, errs
}

func decodeYAMLSchema(data []byte) ([]columnSpec, []error) {
	var doc struct {
		Columns []yaml.Node `yaml:"columns"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("parsing schema: %v", err)}}
	}

	var (
		specs []columnSpec
		errs  []error
	)
	for i := range doc.Columns {
		n := &doc.Columns[i]
		var spec columnSpec
		if err := n.Decode(&spec); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("line %d: columns[%d]: %v", n.Line, i, err)})
			continue
		}
		specs = append(specs, spec)
	}
	return specs, errs
}

// LoadFilter reads a filter document given inline or as a file. It returns
// nil when neither is set.
func LoadFilter(inline, file string) (*queryir.Expression, error) {
	data, err := readInput(inline, file, "--where")
	if err != nil || data == nil {
		return nil, err
	}

	e, err := queryir.ParseDocument(data)
	if err == nil {
		err = queryir.Validate(e)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidFilter, Message: err.Error()}
	}
	return e, nil
}

// LoadValues reads a column-to-value mapping given inline or as a file.
// Column order follows the document.
func LoadValues(inline, file string) (querysql.Fields, error) {
	data, err := readInput(inline, file, "--values")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: --values", queryir.ErrMissingArgument)
	}
	return ParseValues(data)
}

// ParseValues decodes a YAML or JSON mapping of column names to scalars.
func ParseValues(data []byte) (querysql.Fields, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidValues, Message: fmt.Sprintf("parsing values: %v", err)}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: values document is empty", queryir.ErrMissingArgument)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Code: ErrCodeInvalidValues, Message: fmt.Sprintf("line %d: values must be a mapping", root.Line)}
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: values mapping is empty", queryir.ErrMissingArgument)
	}

	fields := make(querysql.Fields, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, &LoadError{Code: ErrCodeInvalidValues, Message: fmt.Sprintf("line %d: value for %q must be a scalar", val.Line, key.Value)}
		}
		v, err := queryir.ScalarValue(val)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidValues, Message: err.Error()}
		}
		fields = append(fields, querysql.F(key.Value, v))
	}
	return fields, nil
}

// readInput returns the inline document, or the file contents, or nil.
func readInput(inline, file, flag string) ([]byte, error) {
	switch {
	case inline != "" && file != "":
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("%s and %s-file are mutually exclusive", flag, flag)}
	case inline != "":
		return []byte(inline), nil
	case file != "":
		return readFile(file)
	default:
		return nil, nil
	}
}

func readFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(AppFs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return data, nil
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeReadFailed      = "E002" // Input file could not be read
	ErrCodeInvalidFilter   = "E003" // Filter document rejected
	ErrCodeInvalidValues   = "E004" // Values document rejected
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeBuildFailed     = "E006" // Schema document could not be decoded
	ErrCodeWriteFailed     = "E007" // Backup or file write error
	ErrCodeMissingArgument = "E008" // Required table, column or value missing
	ErrCodeMissingFilter   = "E009" // Delete without a filter
	ErrCodeStatementFailed = "E010" // Database rejected the statement
	ErrCodeNoDatabaseFile  = "E011" // In-memory database has no file
	ErrCodeUnknownColumn   = "E012" // Value for a column the table lacks
	ErrCodeOpenFailed      = "E013" // Database could not be opened

	// Schema file errors
	ErrCodeColumnName      = "E101" // Column without a name
	ErrCodeUnknownType     = "E102" // Declared type maps to no data type
	ErrCodeNoColumns       = "E103" // Schema lists no columns
	ErrCodeDuplicateColumn = "E104" // Same column twice
	ErrCodePrimaryKeys     = "E105" // More than one primary key column
)

// MapErrorCode maps an error to its code. Errors without a known cause
// come from the database.
func MapErrorCode(err error) string {
	var loadErr *LoadError
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code
	case errors.Is(err, querysql.ErrMissingFilter):
		return ErrCodeMissingFilter
	case errors.Is(err, queryir.ErrEmptyExpression),
		errors.Is(err, queryir.ErrMalformedExpression),
		errors.Is(err, queryir.ErrUnknownTermType):
		return ErrCodeInvalidFilter
	case errors.Is(err, schema.ErrUnknownDataType):
		return ErrCodeUnknownType
	case errors.Is(err, queryir.ErrMissingArgument):
		return ErrCodeMissingArgument
	case errors.Is(err, store.ErrNoDatabaseFile):
		return ErrCodeNoDatabaseFile
	default:
		return ErrCodeStatementFailed
	}
}
