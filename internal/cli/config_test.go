package cli

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFile(t *testing.T) {
	db := createCompanyDB(t)
	config := writeTestFile(t, "sqlhelper.yaml", "db: "+db+"\nformat: json\n")

	out, err := executeRoot(t, "tables", "--config", config)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"tables": []any{"company"}}, resp.Data)
}

func TestConfigFile_Missing(t *testing.T) {
	_, err := executeRoot(t, "tables", "--config", "/nonexistent/sqlhelper.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}

func TestEnvironmentOverrides(t *testing.T) {
	db := createCompanyDB(t)
	t.Setenv("SQLHELPER_DB", db)
	t.Setenv("SQLHELPER_FORMAT", "json")

	out, err := executeRoot(t, "tables")
	require.NoError(t, err)
	assert.Equal(t, "ok", decodeResponse(t, out).Status)

	// Flags win over the environment.
	out, err = executeRoot(t, "tables", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "company\n", out)
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	db := createCompanyDB(t)
	config := writeTestFile(t, "sqlhelper.yaml", "db: /nonexistent/other.db\n")
	t.Setenv("SQLHELPER_DB", db)

	out, err := executeRoot(t, "tables", "--config", config)
	require.NoError(t, err)
	assert.Equal(t, "company\n", out)
}

func TestDotEnv(t *testing.T) {
	db := createCompanyDB(t)

	// Register cleanup for variables .env will set, then clear them.
	for _, key := range []string{"SQLHELPER_DB", "SQLHELPER_FORMAT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, ".env", []byte("SQLHELPER_DB="+db+"\nSQLHELPER_FORMAT=json\n"), 0o644))

	original := AppFs
	AppFs = memFs
	t.Cleanup(func() { AppFs = original })

	out, err := executeRoot(t, "tables")
	require.NoError(t, err)
	assert.Equal(t, "ok", decodeResponse(t, out).Status)
}

func TestDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	db := createCompanyDB(t)
	t.Setenv("SQLHELPER_DB", db)

	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, ".env", []byte("SQLHELPER_DB=/nonexistent/other.db\n"), 0o644))

	original := AppFs
	AppFs = memFs
	t.Cleanup(func() { AppFs = original })

	out, err := executeRoot(t, "tables")
	require.NoError(t, err)
	assert.Equal(t, "company\n", out)
}
