package utxo

import (
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/persist/db"
	"github.com/cillian-osullivan/globenew/util"
)

// CacheView is the chain-state coin view shared by validation code: an
// in-memory cache layered over the coin database.
type CacheView interface {
	GetCoin(point *outpoint.OutPoint) *Coin
	HaveCoin(point *outpoint.OutPoint) bool
	GetBestBlock() util.Hash
	SetBestBlock(hash util.Hash)
	UpdateCoins(tempCacheCoins *CoinsMap, hash *util.Hash) error
	Flush() bool
	DynamicMemoryUsage() int64
	GetCacheSize() int
}

// UtxoConfig sizes the coins view. Do carries the on-disk store options,
// including the byte budget the cache allocator gave the coin database.
type UtxoConfig struct {
	Do *db.DBOption
}

var utxoTip CacheView

func InitUtxoLruTip(uc *UtxoConfig) {
	db := NewCoinsDB(uc.Do)
	utxoTip = NewCoinsLruCache(db)
}

func GetUtxoCacheInstance() CacheView {
	if utxoTip == nil {
		log.Error("coins view used before initialization")
		panic("coins view used before initialization")
	}
	return utxoTip
}
