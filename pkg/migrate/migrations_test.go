package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shohaib1996/better-edible-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestClientOrdersMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_client_orders_tables.sql")

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS client_orders",
		"CREATE TABLE IF NOT EXISTS client_order_items",
		"CREATE TABLE IF NOT EXISTS counters",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_client_orders_number",
		"emails_sent_seven_day_reminder boolean NOT NULL DEFAULT false",
		"production_start_date date NOT NULL",
	} {
		require.Contains(t, content, sub)
	}
}

func TestLabelsMigrationListsEveryStage(t *testing.T) {
	content := readMigration(t, "*_create_labels_table.sql")
	for _, stage := range []string{
		"design_in_progress", "awaiting_store_approval", "store_approved",
		"submitted_to_olcc", "olcc_approved", "print_order_submitted", "ready_for_production",
	} {
		require.Contains(t, content, "'"+stage+"'")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := migrate.CreateSQLMigration(dir, "Add Tracking Index!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_tracking_index.sql"))
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", pattern)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestValidateDirRejectsDuplicateVersionsAndMissingDown(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301000000_a.sql"), body, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301000000_b.sql"), body, 0o644))
	require.ErrorContains(t, migrate.ValidateDir(dir), "duplicate migration version")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301000000_a.sql"), []byte("-- +goose Up\n"), 0o644))
	require.ErrorContains(t, migrate.ValidateDir(dir), "+goose Down")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20261399000000_a.sql"), body, 0o644))
	require.ErrorContains(t, migrate.ValidateDir(dir), "invalid version timestamp")
}
