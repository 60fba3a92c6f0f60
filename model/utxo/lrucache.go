package utxo

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/util"
)

// Roughly one cached coin per 100 bytes of configured budget; the entry
// count is what the LRU bounds, not exact bytes.
const coinEntryApproxSize = 100

// CoinsLruCache is the working-set layer of the coins view: recently
// touched coins stay in an LRU keyed by outpoint, modified coins also go
// to a dirty map that the next Flush writes through to the database.
type CoinsLruCache struct {
	db         *CoinsDB
	hashBlock  util.Hash
	cacheCoins *lru.Cache
	dirtyCoins map[outpoint.OutPoint]*Coin
}

func NewCoinsLruCache(db *CoinsDB) CacheView {
	c := new(CoinsLruCache)
	c.db = db
	entries := db.CacheBudget() / coinEntryApproxSize
	if entries < 1024 {
		entries = 1024
	}
	cache, err := lru.New(int(entries))
	if err != nil {
		log.Error("NewCoinsLruCache err: %v", err)
		panic("NewCoinsLruCache failed")
	}
	c.cacheCoins = cache
	c.dirtyCoins = make(map[outpoint.OutPoint]*Coin)
	return c
}

func (coinsCache *CoinsLruCache) GetCoin(outpoint *outpoint.OutPoint) *Coin {
	c, ok := coinsCache.cacheCoins.Get(*outpoint)
	if ok {
		return c.(*Coin)
	}
	coin, err := coinsCache.db.GetCoin(outpoint)
	if err != nil || coin == nil {
		return nil
	}
	coinsCache.cacheCoins.Add(*outpoint, coin)
	if coin.IsSpent() {
		// The parent only has an empty entry for this outpoint; our
		// version is fresh.
		coin.fresh = true
	}
	return coin
}

func (coinsCache *CoinsLruCache) HaveCoin(point *outpoint.OutPoint) bool {
	coin := coinsCache.GetCoin(point)
	return coin != nil && !coin.IsSpent()
}

func (coinsCache *CoinsLruCache) GetBestBlock() util.Hash {
	if coinsCache.hashBlock.IsNull() {
		hashBlock, err := coinsCache.db.GetBestBlock()
		if err != nil {
			log.Debug("db.GetBestBlock err: %v", err)
			return util.Hash{}
		}
		coinsCache.hashBlock = *hashBlock
	}
	return coinsCache.hashBlock
}

func (coinsCache *CoinsLruCache) SetBestBlock(hash util.Hash) {
	coinsCache.hashBlock = hash
}

// UpdateCoins folds a per-task CoinsMap into this cache. Entries that are
// fresh in both views and already spent cancel out and vanish without
// ever touching the database.
func (coinsCache *CoinsLruCache) UpdateCoins(tempCacheCoins *CoinsMap, hash *util.Hash) error {
	for point, tempCacheCoin := range tempCacheCoins.GetMap() {
		// Ignore non-dirty entries (optimization).
		if !tempCacheCoin.dirty {
			delete(tempCacheCoins.cacheCoins, point)
			continue
		}
		c, ok := coinsCache.cacheCoins.Get(point)
		if !ok {
			// The LRU may have evicted it; that only costs a re-read.
			if !(tempCacheCoin.fresh && tempCacheCoin.IsSpent()) {
				tempCacheCoin.dirty = true
				coinsCache.cacheCoins.Add(point, tempCacheCoin)
				coinsCache.dirtyCoins[point] = tempCacheCoin
			}
		} else {
			globalCacheCoin := c.(*Coin)
			if tempCacheCoin.fresh && !globalCacheCoin.IsSpent() {
				panic("fresh flag misapplied to an entry with a live parent coin")
			}
			if globalCacheCoin.fresh && tempCacheCoin.IsSpent() {
				// The grandparent has no entry and the child is spent;
				// delete the pair outright.
				coinsCache.cacheCoins.Remove(point)
				delete(coinsCache.dirtyCoins, point)
			} else {
				*globalCacheCoin = *tempCacheCoin
				globalCacheCoin.dirty = true
				coinsCache.dirtyCoins[point] = globalCacheCoin
			}
		}
		delete(tempCacheCoins.cacheCoins, point)
	}
	coinsCache.hashBlock = *hash
	return nil
}

func (coinsCache *CoinsLruCache) Flush() bool {
	err := coinsCache.db.BatchWrite(coinsCache.dirtyCoins, coinsCache.hashBlock)
	if err != nil {
		log.Error("coins flush err: %v", err)
		return false
	}
	// Everything written is now known to the database: settle the flags
	// and drop the spent entries.
	for point, coin := range coinsCache.dirtyCoins {
		if coin.IsSpent() {
			coinsCache.cacheCoins.Remove(point)
		} else {
			coin.dirty = false
			coin.fresh = false
		}
	}
	coinsCache.dirtyCoins = make(map[outpoint.OutPoint]*Coin)
	return true
}

func (coinsCache *CoinsLruCache) GetCacheSize() int {
	return coinsCache.cacheCoins.Len()
}

func (coinsCache *CoinsLruCache) DynamicMemoryUsage() int64 {
	return int64(coinsCache.cacheCoins.Len()) * coinEntryApproxSize
}
