package utxo

import (
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/model/tx"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

// CoinsMap is an unsynchronized per-task view of coins, layered over the
// global cache. Validation code fetches the coins it needs into a map,
// spends them locally, and flushes the result back in one batch.
type CoinsMap struct {
	cacheCoins map[outpoint.OutPoint]*Coin
}

func NewEmptyCoinsMap() *CoinsMap {
	return &CoinsMap{cacheCoins: make(map[outpoint.OutPoint]*Coin)}
}

func (cm *CoinsMap) GetMap() map[outpoint.OutPoint]*Coin {
	return cm.cacheCoins
}

func (cm *CoinsMap) GetCoin(outpoint *outpoint.OutPoint) *Coin {
	return cm.cacheCoins[*outpoint]
}

func (cm *CoinsMap) AccessCoin(outpoint *outpoint.OutPoint) *Coin {
	entry := cm.GetCoin(outpoint)
	if entry == nil {
		return NewEmptyCoin()
	}
	return entry
}

func (cm *CoinsMap) GetValueIn(txn *tx.Tx) amount.Amount {
	if txn.IsCoinBase() {
		return amount.Amount(0)
	}
	valueIn := amount.Amount(0)
	for _, txin := range txn.GetIns() {
		valueIn += cm.GetCoin(txin.PreviousOutPoint).GetAmount()
	}
	return valueIn
}

func (cm *CoinsMap) UnCache(point *outpoint.OutPoint) {
	delete(cm.cacheCoins, *point)
}

func (cm *CoinsMap) AddCoin(point *outpoint.OutPoint, coin *Coin, possibleOverwrite bool) {
	coin = coin.DeepCopy()
	if coin.IsSpent() {
		panic("add a spent coin")
	}
	if !possibleOverwrite {
		if old := cm.GetCoin(point); old != nil && !old.IsSpent() {
			panic("adding new coin that replaces a live entry")
		}
		coin.fresh = true
	}
	coin.dirty = true
	cm.cacheCoins[*point] = coin
}

// SpendCoin marks a coin spent in this view and returns it. A fresh coin
// never reached the parent view, so it is simply dropped.
func (cm *CoinsMap) SpendCoin(point *outpoint.OutPoint) *Coin {
	coin := cm.GetCoin(point)
	if coin == nil {
		return nil
	}
	if coin.fresh {
		delete(cm.cacheCoins, *point)
	} else {
		coin.dirty = true
		coin.Clear()
	}
	return coin
}

// FetchCoin is GetCoin with fall-through to the global cache.
func (cm *CoinsMap) FetchCoin(out *outpoint.OutPoint) *Coin {
	coin := cm.GetCoin(out)
	if coin != nil {
		return coin
	}
	coin = GetUtxoCacheInstance().GetCoin(out)
	if coin == nil {
		log.Debug("coin not found for outpoint %s", out.String())
		return nil
	}
	newCoin := coin.DeepCopy()
	if newCoin.IsSpent() {
		panic("coin from the parent view should not be spent")
	}
	cm.cacheCoins[*out] = newCoin
	return newCoin
}

// SpendGlobalCoin fetches through the global cache and spends in this view.
func (cm *CoinsMap) SpendGlobalCoin(out *outpoint.OutPoint) *Coin {
	coin := cm.FetchCoin(out)
	if coin == nil {
		return nil
	}
	copied := coin.DeepCopy()
	if cm.SpendCoin(out) != nil {
		return copied
	}
	return nil
}

// Flush folds this view into the global cache and empties it.
func (cm *CoinsMap) Flush(hashBlock util.Hash) bool {
	err := GetUtxoCacheInstance().UpdateCoins(cm, &hashBlock)
	cm.cacheCoins = make(map[outpoint.OutPoint]*Coin)
	return err == nil
}
