package iocache

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/quizscale/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRuns_NoneBackend(t *testing.T) {
	err := MigrateRuns(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateRuns_Unsupported(t *testing.T) {
	assert.Error(t, MigrateRuns("oracle", "", -1))
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	// Latest version
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// No-op runs
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))

	// Down and back up
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))

	// The store works on a migrated database.
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Len(t, status.TableSizes, len(runTables))
}

func TestMigrateRuns_SQLiteInMemory(t *testing.T) {
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, ":memory:", -1))
}

func TestMigrationFilesPerBackend(t *testing.T) {
	for backend, dir := range migrationDirs {
		entries, err := fs.ReadDir(migrationsFS, dir)
		require.NoError(t, err, backend)

		var ups, downs int
		for _, e := range entries {
			switch {
			case strings.HasSuffix(e.Name(), ".up.sql"):
				ups++
			case strings.HasSuffix(e.Name(), ".down.sql"):
				downs++
			}
		}
		assert.Positive(t, ups, backend)
		assert.Equal(t, ups, downs, "every %s migration has a rollback", backend)

		up, err := fs.ReadFile(migrationsFS, dir+"/000001_init_runs.up.sql")
		require.NoError(t, err)
		for _, table := range runTables {
			assert.Contains(t, string(up), table, "%s migration creates %s", backend, table)
		}
	}
}
