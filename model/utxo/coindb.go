package utxo

import (
	"bytes"

	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/persist/db"
	"github.com/cillian-osullivan/globenew/util"
)

var errSerializeCoin = errors.New("failed to serialize coin for batch write")

// CoinsDB persists coins in leveldb under DbCoin-prefixed keys.
type CoinsDB struct {
	dbw    *db.DBWrapper
	budget int
}

func NewCoinsDB(do *db.DBOption) *CoinsDB {
	if do == nil {
		return nil
	}
	dbw, err := db.NewDBWrapper(do)
	if err != nil {
		panic("init CoinsDB failed: " + err.Error())
	}
	return &CoinsDB{dbw: dbw, budget: do.CacheSize}
}

// CacheBudget reports the byte budget the allocator assigned this store.
func (coinsViewDB *CoinsDB) CacheBudget() int {
	return coinsViewDB.budget
}

func (coinsViewDB *CoinsDB) GetCoin(outpoint *outpoint.OutPoint) (*Coin, error) {
	coinBuff, err := coinsViewDB.dbw.Read(NewCoinKey(outpoint).GetSerKey())
	if err != nil {
		return nil, err
	}
	coin := NewEmptyCoin()
	err = coin.Unserialize(bytes.NewBuffer(coinBuff))
	return coin, err
}

func (coinsViewDB *CoinsDB) HaveCoin(outpoint *outpoint.OutPoint) bool {
	return coinsViewDB.dbw.Exists(NewCoinKey(outpoint).GetSerKey())
}

func (coinsViewDB *CoinsDB) GetBestBlock() (*util.Hash, error) {
	v, err := coinsViewDB.dbw.Read([]byte{db.DbBestBlock})
	if err != nil {
		return nil, err
	}
	var hashBestChain util.Hash
	if err := hashBestChain.Unserialize(bytes.NewBuffer(v)); err != nil {
		return nil, err
	}
	return &hashBestChain, nil
}

// coinRecord orders the pending writes by serialized key so the batch
// hits leveldb in ascending key order, which keeps compaction cheap.
type coinRecord struct {
	key  []byte
	coin *Coin
}

func (r *coinRecord) Less(than btree.Item) bool {
	return bytes.Compare(r.key, than.(*coinRecord).key) < 0
}

func (coinsViewDB *CoinsDB) BatchWrite(coins map[outpoint.OutPoint]*Coin, hashBlock util.Hash) error {
	sorted := btree.New(32)
	for k, v := range coins {
		if !v.dirty {
			continue
		}
		entry := NewCoinKey(&k)
		sorted.ReplaceOrInsert(&coinRecord{key: entry.GetSerKey(), coin: v})
	}

	batch := db.NewBatchWrapper(coinsViewDB.dbw)
	changed := 0
	sorted.Ascend(func(item btree.Item) bool {
		r := item.(*coinRecord)
		if r.coin.IsSpent() {
			batch.Erase(r.key)
		} else {
			coinByte := bytes.NewBuffer(nil)
			if err := r.coin.Serialize(coinByte); err != nil {
				return false
			}
			batch.Write(r.key, coinByte.Bytes())
		}
		changed++
		return true
	})
	if changed != sorted.Len() {
		return errSerializeCoin
	}

	if !hashBlock.IsNull() {
		hashByte := bytes.NewBuffer(nil)
		if err := hashBlock.Serialize(hashByte); err != nil {
			return err
		}
		batch.Write([]byte{db.DbBestBlock}, hashByte.Bytes())
	}

	err := coinsViewDB.dbw.WriteBatch(batch, false)
	log.Debug("committed %d changed coins to the coin db", changed)
	return err
}

func (coinsViewDB *CoinsDB) EstimateSize() uint64 {
	return coinsViewDB.dbw.EstimateSize([]byte{db.DbCoin}, []byte{db.DbCoin + 1})
}

func (coinsViewDB *CoinsDB) Close() {
	coinsViewDB.dbw.Close()
}
