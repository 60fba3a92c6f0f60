package utxo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/model/txout"
	"github.com/cillian-osullivan/globenew/persist/db"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

func initTestTip(t *testing.T) CacheView {
	t.Helper()
	InitUtxoLruTip(&UtxoConfig{Do: &db.DBOption{
		FilePath:  t.TempDir(),
		CacheSize: 1 << 20,
	}})
	return GetUtxoCacheInstance()
}

func TestLruCacheAddFlushReload(t *testing.T) {
	tip := initTestTip(t)

	op := outpoint.NewOutPoint(util.Sha256Hash([]byte("coinbase tx")), 0)
	cm := NewEmptyCoinsMap()
	cm.AddCoin(op, NewCoin(txout.NewTxOut(5000000000, testScript(t)), 100, true), false)

	bestBlock := util.Sha256Hash([]byte("block 100"))
	require.NoError(t, tip.UpdateCoins(cm, &bestBlock))
	require.True(t, tip.Flush())

	assert.True(t, tip.HaveCoin(op))
	assert.Equal(t, bestBlock, tip.GetBestBlock())

	coin := tip.GetCoin(op)
	require.NotNil(t, coin)
	assert.Equal(t, amount.Amount(5000000000), coin.GetAmount())
	assert.Equal(t, int32(100), coin.GetHeight())
	assert.True(t, coin.IsCoinBase())
}

func TestLruCacheSpendRemoves(t *testing.T) {
	tip := initTestTip(t)

	op := outpoint.NewOutPoint(util.Sha256Hash([]byte("spent tx")), 3)
	cm := NewEmptyCoinsMap()
	cm.AddCoin(op, NewCoin(txout.NewTxOut(1000, testScript(t)), 5, false), false)

	block5 := util.Sha256Hash([]byte("block 5"))
	require.NoError(t, tip.UpdateCoins(cm, &block5))
	require.True(t, tip.Flush())
	require.True(t, tip.HaveCoin(op))

	spendMap := NewEmptyCoinsMap()
	require.NotNil(t, spendMap.SpendGlobalCoin(op))

	block6 := util.Sha256Hash([]byte("block 6"))
	require.NoError(t, tip.UpdateCoins(spendMap, &block6))
	require.True(t, tip.Flush())
	assert.False(t, tip.HaveCoin(op))
}

func TestLruCacheFreshSpentCancels(t *testing.T) {
	tip := initTestTip(t)

	// A coin created and spent inside the same batch never reaches the
	// database.
	op := outpoint.NewOutPoint(util.Sha256Hash([]byte("ephemeral tx")), 0)
	cm := NewEmptyCoinsMap()
	cm.AddCoin(op, NewCoin(txout.NewTxOut(777, testScript(t)), 9, false), false)
	require.NotNil(t, cm.SpendCoin(op))

	block := util.Sha256Hash([]byte("block 9"))
	require.NoError(t, tip.UpdateCoins(cm, &block))
	require.True(t, tip.Flush())
	assert.False(t, tip.HaveCoin(op))
}

func TestLruCacheBatchOrdering(t *testing.T) {
	tip := initTestTip(t)

	// Many coins in one flush; all must survive the ordered batch write.
	cm := NewEmptyCoinsMap()
	hash := util.Sha256Hash([]byte("fan-out tx"))
	const n = 64
	for i := uint32(0); i < n; i++ {
		cm.AddCoin(outpoint.NewOutPoint(hash, i),
			NewCoin(txout.NewTxOut(amount.Amount(int64(i)+1), testScript(t)), 12, false), false)
	}

	block := util.Sha256Hash([]byte("block 12"))
	require.NoError(t, tip.UpdateCoins(cm, &block))
	require.True(t, tip.Flush())

	for i := uint32(0); i < n; i++ {
		coin := tip.GetCoin(outpoint.NewOutPoint(hash, i))
		require.NotNil(t, coin)
		assert.Equal(t, amount.Amount(int64(i)+1), coin.GetAmount())
	}
}
