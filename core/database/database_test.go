package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSNAndURL(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss word", Name: "todo", SSLMode: "disable"}

	assert.Equal(t, "user=bot password=p@ss word host=db port=5432 dbname=todo sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://bot:p%40ss%20word@db:5432/todo?sslmode=disable", cfg.URL())
}

func TestMigrationFileHelpers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.up.sql", "000001_a.up.sql", "000001_a.down.sql", "000003_c.up.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}

	files := listMigrationFiles(dir)
	assert.Equal(t, []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}, files)
	assert.Equal(t, 2, countApplied(files, 1, 3))
	assert.Equal(t, []string{"000002_b.up.sql", "000003_c.up.sql"}, selectApplied(files, 1, 3))
	assert.Equal(t, 0, countApplied(files, 3, 3))
	assert.Equal(t, uint64(2), parseVersion("000002_b.up.sql"))
}

func TestResolveDir(t *testing.T) {
	abs, err := resolveDir("/srv/migrations")
	require.NoError(t, err)
	assert.Equal(t, "/srv/migrations", abs)

	rel, err := resolveDir("")
	require.NoError(t, err)
	assert.Equal(t, "migrations", filepath.Base(rel))
	assert.True(t, filepath.IsAbs(rel))
}
