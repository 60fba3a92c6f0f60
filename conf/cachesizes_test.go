package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheSizesDefaultBudget(t *testing.T) {
	sizes := CalculateCacheSizes(450<<20, false, 0, true, 64)

	assert.True(t, sizes.BlockTreeDB >= MinBlockTreeDBCacheBytes)
	assert.True(t, sizes.BlockTreeDB <= MaxBlockTreeDBCacheBytes)
	assert.True(t, sizes.SigCache >= MinSigCacheBytes)
	assert.True(t, sizes.SigCache <= MaxSigCacheBytes)
	assert.True(t, sizes.CoinsDB <= MaxCoinsDBCacheBytes)
	assert.True(t, sizes.Coins > 0)
	assert.Equal(t, int64(0), sizes.TxIndex)
	assert.Equal(t, int64(0), sizes.FilterIndex)
	assert.True(t, sizes.Compression)
	assert.Equal(t, 64, sizes.MaxOpenFiles)
}

func TestCacheSizesFloorsUnderTinyBudget(t *testing.T) {
	for _, budget := range []int64{0, 1, 1 << 10, 1 << 20} {
		sizes := CalculateCacheSizes(budget, true, 2, false, 16)

		assert.True(t, sizes.BlockTreeDB >= MinBlockTreeDBCacheBytes, "budget %d", budget)
		assert.True(t, sizes.SigCache >= MinSigCacheBytes, "budget %d", budget)
		assert.True(t, sizes.CoinsDB >= 0, "budget %d", budget)
		assert.True(t, sizes.Coins >= 0, "budget %d", budget)
		assert.True(t, sizes.TxIndex >= 0, "budget %d", budget)
		assert.True(t, sizes.FilterIndex >= 0, "budget %d", budget)
	}
}

func TestCacheSizesConservation(t *testing.T) {
	floors := int64(MinBlockTreeDBCacheBytes + MinSigCacheBytes)
	for _, budget := range []int64{0, 100 << 20, 450 << 20, 2 << 30, 64 << 30} {
		sizes := CalculateCacheSizes(budget, true, 3, true, 64)

		sum := sizes.BlockTreeDB + sizes.CoinsDB + sizes.Coins +
			sizes.TxIndex + sizes.FilterIndex*3 + sizes.SigCache
		limit := budget + floors
		if limit < MinTotalCacheBytes+floors {
			limit = MinTotalCacheBytes + floors
		}
		assert.True(t, sum <= limit, "budget %d: sum %d over limit %d", budget, sum, limit)
	}
}

func TestCacheSizesHugeBudgetClamped(t *testing.T) {
	sizes := CalculateCacheSizes(1<<40, true, 1, true, 64)

	assert.Equal(t, int64(MaxBlockTreeDBCacheBytes), sizes.BlockTreeDB)
	assert.Equal(t, int64(MaxSigCacheBytes), sizes.SigCache)
	assert.True(t, sizes.TxIndex <= MaxTxIndexCacheBytes)
	assert.True(t, sizes.FilterIndex <= MaxFilterIndexCacheBytes)
	assert.Equal(t, int64(MaxCoinsDBCacheBytes), sizes.CoinsDB)
}

func TestCacheSizesIndexCarveOut(t *testing.T) {
	without := CalculateCacheSizes(450<<20, false, 0, true, 64)
	with := CalculateCacheSizes(450<<20, true, 2, true, 64)

	assert.True(t, with.TxIndex > 0)
	assert.True(t, with.FilterIndex > 0)
	assert.True(t, with.Coins < without.Coins)
}

func TestCacheSizesPassThrough(t *testing.T) {
	sizes := CalculateCacheSizes(450<<20, false, 0, false, 1000)
	assert.False(t, sizes.Compression)
	assert.Equal(t, 1000, sizes.MaxOpenFiles)
}

func TestCacheSizesDeterministic(t *testing.T) {
	a := CalculateCacheSizes(777<<20, true, 1, true, 64)
	b := CalculateCacheSizes(777<<20, true, 1, true, 64)
	assert.Equal(t, a, b)
}
