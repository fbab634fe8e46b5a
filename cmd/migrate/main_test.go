package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSection(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE order_payments (order_number TEXT PRIMARY KEY);
ALTER TABLE order_payments ADD COLUMN status TEXT;

-- +migrate Down
DROP TABLE order_payments;
`
	t.Run("Up", func(t *testing.T) {
		up := migrationSection(content, "Up")
		assert.Contains(t, up, "CREATE TABLE order_payments")
		assert.Contains(t, up, "ALTER TABLE order_payments")
		assert.NotContains(t, up, "DROP TABLE order_payments")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("Down", func(t *testing.T) {
		down := migrationSection(content, "Down")
		assert.Contains(t, down, "DROP TABLE order_payments")
		assert.NotContains(t, down, "CREATE TABLE order_payments")
	})
}

func writeMigration(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_Up(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tmpDir := t.TempDir()
	writeMigration(t, tmpDir, "20250101000000_create_order_payments.sql",
		"-- +migrate Up\nCREATE TABLE order_payments (order_number TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE order_payments;")

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM schema_migrations WHERE version = \$1\)`).
		WithArgs("20250101000000_create_order_payments.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`CREATE TABLE order_payments`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs("20250101000000_create_order_payments.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = run(db, "up", tmpDir)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_UpSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tmpDir := t.TempDir()
	writeMigration(t, tmpDir, "20250101000000_create_order_payments.sql",
		"-- +migrate Up\nCREATE TABLE order_payments (order_number TEXT PRIMARY KEY);")

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM schema_migrations WHERE version = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = run(db, "up", tmpDir)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_Down(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tmpDir := t.TempDir()
	writeMigration(t, tmpDir, "20250101000000_create_order_payments.sql",
		"-- +migrate Up\nCREATE TABLE order_payments (order_number TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE order_payments;")

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(`SELECT version FROM schema_migrations ORDER BY applied_at DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("20250101000000_create_order_payments.sql"))

	mock.ExpectExec(`DROP TABLE order_payments`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec(`DELETE FROM schema_migrations`).
		WithArgs("20250101000000_create_order_payments.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = run(db, "down", tmpDir)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_DownWithNothingApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	err = run(db, "down", t.TempDir())

	assert.NoError(t, err)
}

func TestRun_UnknownMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = run(db, "sideways", t.TempDir())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
