package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func exerciseDatabase(t *testing.T, db Database) {
	t.Helper()

	_, err := db.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Put([]byte("pool:b"), []byte("2")))
	require.NoError(t, db.Put([]byte("pool:a"), []byte("1")))
	require.NoError(t, db.Put([]byte("other"), []byte("x")))

	ok, err := db.Has([]byte("pool:a"))
	require.NoError(t, err)
	require.True(t, ok)

	var keys []string
	require.NoError(t, db.Iterate([]byte("pool:"), func(key, value []byte) (bool, error) {
		keys = append(keys, string(key))
		return true, nil
	}))
	require.Equal(t, []string{"pool:a", "pool:b"}, keys)

	batch := db.NewBatch()
	batch.Put([]byte("pool:c"), []byte("3"))
	batch.Delete([]byte("pool:a"))
	require.Equal(t, 2, batch.Len())
	require.NoError(t, batch.Write())

	got, err := db.Get([]byte("pool:c"))
	require.NoError(t, err)
	require.Equal(t, []byte("3"), got)
	_, err = db.Get([]byte("pool:a"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Delete([]byte("other")))
	ok, err = db.Has([]byte("other"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemDB(t *testing.T) {
	exerciseDatabase(t, NewMemDB())
}

func TestLevelDB(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	exerciseDatabase(t, db)
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := NewLevelDB(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("key"), []byte("value")))
	db.Close()

	reopened, err := NewLevelDB(dir)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)
}
