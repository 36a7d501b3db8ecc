package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShippedMigrationsValidate(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestShippedMigrationsCoverCoreTables(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var combined strings.Builder
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		require.NoError(t, err)
		combined.Write(b)
	}

	ddl := combined.String()
	for _, table := range []string{"brands", "customer_types", "pricing_rules", "quotes", "quote_line_items", "nppa_controlled_drugs"} {
		require.Contains(t, ddl, "CREATE TABLE "+table, "missing DDL for %s", table)
	}
	require.Contains(t, ddl, "idx_quotes_quote_number")
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add NPPA Limits!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_nppa_limits.sql"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "-- +goose Up")
	require.Contains(t, string(b), "-- +goose Down")
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nope.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}
