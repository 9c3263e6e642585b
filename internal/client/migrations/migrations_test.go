package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/medigenie/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUp_CreatesStateTable(t *testing.T) {
	db := openTemp(t)

	require.NoError(t, Up(context.Background(), db, dbx.SQLite))

	assert.True(t, tableExists(t, db, "kv_state"))
	assert.True(t, tableExists(t, db, "goose_db_version"))
}

func TestUp_IsIdempotent(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	require.NoError(t, Up(ctx, db, dbx.SQLite))
	require.NoError(t, Up(ctx, db, dbx.SQLite), "second run must be a no-op")
}

func TestMigrations_EmbedsBothDialects(t *testing.T) {
	for _, dir := range []string{"sqlite", "postgres"} {
		entries, err := Migrations.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, dir)
	}
}
