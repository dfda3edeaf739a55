package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeRoot runs the root command with args and returns stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return buf.String(), err
}

// decodeResponse parses one JSON CLIResponse.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// writeTestFile writes content to name in a temp directory.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const companySchemaYAML = `
columns:
  - {name: id, type: integer, primary_key: true}
  - {name: name, type: text, nullable: true}
  - {name: postal, type: integer, nullable: true}
`

// createCompanyDB creates a database with the company table and returns
// its path.
func createCompanyDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "test.db")
	schemaFile := writeTestFile(t, "company.yaml", companySchemaYAML)
	_, err := executeRoot(t, "create-table", "company", "--db", db, "--schema", schemaFile)
	require.NoError(t, err)
	return db
}
