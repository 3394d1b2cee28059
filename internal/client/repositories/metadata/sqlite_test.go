package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestSetGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	got, err := r.Get(ctx, "device_id")
	require.NoError(t, err)
	assert.Nil(t, got, "absent key yields nil, not an error")

	require.NoError(t, r.Set(ctx, "device_id", []byte("abc")))
	got, err = r.Get(ctx, "device_id")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	require.NoError(t, r.Set(ctx, "device_id", []byte("def")))
	got, err = r.Get(ctx, "device_id")
	require.NoError(t, err)
	assert.Equal(t, []byte("def"), got)
}

func TestDeleteListClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, r.Delete(ctx, "a"))
	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, []byte("2"), all["b"])

	require.NoError(t, r.Clear(ctx))
	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
