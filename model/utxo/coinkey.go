package utxo

import (
	"bytes"
	"io"

	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/persist/db"
	"github.com/cillian-osullivan/globenew/util"
)

// CoinKey is the on-disk key of one coin: the DbCoin prefix followed by
// the outpoint.
type CoinKey struct {
	outpoint *outpoint.OutPoint
}

func NewCoinKey(outPoint *outpoint.OutPoint) *CoinKey {
	return &CoinKey{outpoint: outPoint}
}

func (coinKey *CoinKey) Serialize(writer io.Writer) error {
	if _, err := writer.Write([]byte{db.DbCoin}); err != nil {
		return err
	}
	if err := coinKey.outpoint.Hash.Serialize(writer); err != nil {
		return err
	}
	return util.WriteVarInt(writer, uint64(coinKey.outpoint.Index))
}

func (coinKey *CoinKey) Unserialize(reader io.Reader) error {
	prefix := make([]byte, 1)
	if _, err := io.ReadFull(reader, prefix); err != nil {
		return err
	}
	if err := coinKey.outpoint.Hash.Unserialize(reader); err != nil {
		return err
	}
	n, err := util.ReadVarInt(reader)
	if err != nil {
		return err
	}
	coinKey.outpoint.Index = uint32(n)
	return nil
}

func (coinKey *CoinKey) GetSerKey() []byte {
	buf := bytes.NewBuffer(nil)
	coinKey.Serialize(buf)
	return buf.Bytes()
}
