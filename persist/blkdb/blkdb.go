package blkdb

import (
	"bytes"
	"io"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/persist/db"
	"github.com/cillian-osullivan/globenew/util"
)

// BlockTreeDB is the block metadata store: reindex and feature flags,
// the last used block file, and the optional transaction index.
type BlockTreeDB struct {
	dbw *db.DBWrapper
}

var blockTreeDb *BlockTreeDB

type BlockTreeDBConfig struct {
	Do *db.DBOption
}

func InitBlockTreeDB(uc *BlockTreeDBConfig) {
	blockTreeDb = newBlockTreeDB(uc.Do)
}

func GetInstance() *BlockTreeDB {
	if blockTreeDb == nil {
		panic("blockTreeDb has not been initialized")
	}
	return blockTreeDb
}

func newBlockTreeDB(do *db.DBOption) *BlockTreeDB {
	if do == nil {
		return nil
	}
	dbw, err := db.NewDBWrapper(do)
	if err != nil {
		panic("init DBWrapper failed: " + err.Error())
	}
	return &BlockTreeDB{dbw: dbw}
}

func (blockTreeDB *BlockTreeDB) WriteReindexing(reindexing bool) error {
	if reindexing {
		return blockTreeDB.dbw.Write([]byte{db.DbReindexFlag}, []byte{1}, false)
	}
	return blockTreeDB.dbw.Erase([]byte{db.DbReindexFlag}, false)
}

func (blockTreeDB *BlockTreeDB) ReadReindexing() bool {
	return blockTreeDB.dbw.Exists([]byte{db.DbReindexFlag})
}

func (blockTreeDB *BlockTreeDB) WriteLastBlockFile(file int32) error {
	buf := bytes.NewBuffer(nil)
	if err := util.WriteElements(buf, uint32(file)); err != nil {
		return err
	}
	return blockTreeDB.dbw.Write([]byte{db.DbLastBlock}, buf.Bytes(), false)
}

func (blockTreeDB *BlockTreeDB) ReadLastBlockFile() (int32, error) {
	data, err := blockTreeDB.dbw.Read([]byte{db.DbLastBlock})
	if err != nil {
		return 0, err
	}
	var lastFile uint32
	err = util.ReadElements(bytes.NewBuffer(data), &lastFile)
	return int32(lastFile), err
}

func (blockTreeDB *BlockTreeDB) WriteFlag(name string, value bool) error {
	key := append([]byte{db.DbFlag}, name...)
	if value {
		return blockTreeDB.dbw.Write(key, []byte{'1'}, false)
	}
	return blockTreeDB.dbw.Write(key, []byte{'0'}, false)
}

func (blockTreeDB *BlockTreeDB) ReadFlag(name string) bool {
	key := append([]byte{db.DbFlag}, name...)
	data, err := blockTreeDB.dbw.Read(key)
	if err != nil {
		return false
	}
	return len(data) == 1 && data[0] == '1'
}

// TxPos locates one transaction on disk: the block file it lives in and
// the byte offset inside that file.
type TxPos struct {
	File   int32
	Offset uint32
}

func (pos *TxPos) Serialize(w io.Writer) error {
	return util.WriteElements(w, uint32(pos.File), pos.Offset)
}

func (pos *TxPos) Unserialize(r io.Reader) error {
	var file uint32
	if err := util.ReadElements(r, &file, &pos.Offset); err != nil {
		return err
	}
	pos.File = int32(file)
	return nil
}

// WriteTxIndex records positions for a batch of transaction ids.
func (blockTreeDB *BlockTreeDB) WriteTxIndex(positions map[util.Hash]TxPos) error {
	batch := db.NewBatchWrapper(blockTreeDB.dbw)
	for txid, pos := range positions {
		key := append([]byte{db.DbTxIndex}, txid[:]...)
		valueBuf := bytes.NewBuffer(nil)
		if err := pos.Serialize(valueBuf); err != nil {
			return err
		}
		batch.Write(key, valueBuf.Bytes())
	}
	return blockTreeDB.dbw.WriteBatch(batch, true)
}

// ReadTxIndex returns nil without error when the txid is not indexed.
func (blockTreeDB *BlockTreeDB) ReadTxIndex(txid *util.Hash) (*TxPos, error) {
	key := append([]byte{db.DbTxIndex}, txid[:]...)
	data, err := blockTreeDB.dbw.Read(key)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		log.Error("ReadTxIndex err: %v", err)
		return nil, err
	}
	pos := new(TxPos)
	if err := pos.Unserialize(bytes.NewBuffer(data)); err != nil {
		return nil, err
	}
	return pos, nil
}

func (blockTreeDB *BlockTreeDB) Close() {
	blockTreeDB.dbw.Close()
}
