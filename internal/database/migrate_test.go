package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/shop-ledger/migrations"
)

func TestLoadMigrationsOrdersAndPairs(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_index.up.sql":   {Data: []byte("CREATE INDEX b;")},
		"000002_add_index.down.sql": {Data: []byte("DROP INDEX b;")},
		"000001_init.up.sql":        {Data: []byte("CREATE TABLE a ();")},
		"000001_init.down.sql":      {Data: []byte("DROP TABLE a;")},
		"README.md":                 {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].Version)
	assert.Equal(t, "init", got[0].Name)
	assert.Equal(t, "CREATE TABLE a ();", got[0].Up)
	assert.Equal(t, "DROP TABLE a;", got[0].Down)
	assert.Equal(t, int64(2), got[1].Version)
	assert.Equal(t, "add_index", got[1].Name)
}

func TestLoadMigrationsRejectsBadNames(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"no direction": {"000001_init.sql": {Data: []byte("x")}},
		"no name":      {"000001.up.sql": {Data: []byte("x")}},
		"bad version":  {"first_init.up.sql": {Data: []byte("x")}},
		"down only":    {"000001_init.down.sql": {Data: []byte("x")}},
	}

	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMigrations(fsys)
			assert.Error(t, err)
		})
	}
}

func TestEmbeddedMigrationsAreComplete(t *testing.T) {
	got, err := LoadMigrations(migrations.Files)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i, m := range got {
		assert.Equal(t, int64(i+1), m.Version, "versions must be contiguous")
		assert.NotEmpty(t, m.Down, "migration %d needs a down file", m.Version)
	}
}
