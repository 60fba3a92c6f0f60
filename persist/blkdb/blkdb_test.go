package blkdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cillian-osullivan/globenew/persist/db"
	"github.com/cillian-osullivan/globenew/util"
)

func newTestTreeDB(t *testing.T) *BlockTreeDB {
	t.Helper()
	btd := newBlockTreeDB(&db.DBOption{
		FilePath:  t.TempDir(),
		CacheSize: 1 << 20,
	})
	require.NotNil(t, btd)
	t.Cleanup(btd.Close)
	return btd
}

func TestReindexingFlag(t *testing.T) {
	btd := newTestTreeDB(t)

	assert.False(t, btd.ReadReindexing())
	require.NoError(t, btd.WriteReindexing(true))
	assert.True(t, btd.ReadReindexing())
	require.NoError(t, btd.WriteReindexing(false))
	assert.False(t, btd.ReadReindexing())
}

func TestLastBlockFile(t *testing.T) {
	btd := newTestTreeDB(t)

	_, err := btd.ReadLastBlockFile()
	assert.Error(t, err)

	require.NoError(t, btd.WriteLastBlockFile(42))
	file, err := btd.ReadLastBlockFile()
	require.NoError(t, err)
	assert.Equal(t, int32(42), file)
}

func TestFeatureFlags(t *testing.T) {
	btd := newTestTreeDB(t)

	assert.False(t, btd.ReadFlag("txindex"))
	require.NoError(t, btd.WriteFlag("txindex", true))
	assert.True(t, btd.ReadFlag("txindex"))
	require.NoError(t, btd.WriteFlag("txindex", false))
	assert.False(t, btd.ReadFlag("txindex"))

	// Flags are independent.
	require.NoError(t, btd.WriteFlag("basicfilter", true))
	assert.True(t, btd.ReadFlag("basicfilter"))
	assert.False(t, btd.ReadFlag("txindex"))
}

func TestTxIndexRoundTrip(t *testing.T) {
	btd := newTestTreeDB(t)

	id1 := util.Sha256Hash([]byte("tx one"))
	id2 := util.Sha256Hash([]byte("tx two"))
	positions := map[util.Hash]TxPos{
		id1: {File: 0, Offset: 81},
		id2: {File: 3, Offset: 140992},
	}
	require.NoError(t, btd.WriteTxIndex(positions))

	for id, want := range positions {
		id := id
		pos, err := btd.ReadTxIndex(&id)
		require.NoError(t, err)
		require.NotNil(t, pos)
		assert.Equal(t, want, *pos)
	}

	missing := util.Sha256Hash([]byte("never indexed"))
	pos, err := btd.ReadTxIndex(&missing)
	assert.NoError(t, err)
	assert.Nil(t, pos)
}

func TestInitBlockTreeDBSingleton(t *testing.T) {
	InitBlockTreeDB(&BlockTreeDBConfig{Do: &db.DBOption{
		FilePath:  t.TempDir(),
		CacheSize: 1 << 20,
	}})
	btd := GetInstance()
	require.NotNil(t, btd)
	defer btd.Close()

	require.NoError(t, btd.WriteLastBlockFile(7))
	file, err := btd.ReadLastBlockFile()
	require.NoError(t, err)
	assert.Equal(t, int32(7), file)
}
