package utxo

import (
	"io"

	"github.com/pkg/errors"

	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/txout"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

// Coin is one unspent transaction output together with the metadata the
// chain state needs: the height it was created at and whether it came
// from a coinbase.
type Coin struct {
	txOut      txout.TxOut
	height     int32
	isCoinBase bool
	dirty      bool // modified relative to the parent view
	fresh      bool // unknown to the parent view
}

func (coin *Coin) GetHeight() int32 {
	return coin.height
}

func (coin *Coin) IsCoinBase() bool {
	return coin.isCoinBase
}

func (coin *Coin) IsSpent() bool {
	return coin.txOut.IsNull()
}

func (coin *Coin) Clear() {
	coin.txOut.SetNull()
	coin.height = 0
	coin.isCoinBase = false
}

func (coin *Coin) GetTxOut() txout.TxOut {
	return coin.txOut
}

func (coin *Coin) GetScriptPubKey() *script.Script {
	return coin.txOut.GetScriptPubKey()
}

func (coin *Coin) GetAmount() amount.Amount {
	return coin.txOut.GetValue()
}

func (coin *Coin) DeepCopy() *Coin {
	newCoin := Coin{height: coin.height, isCoinBase: coin.isCoinBase,
		dirty: coin.dirty, fresh: coin.fresh}
	outScript := coin.txOut.GetScriptPubKey()
	if outScript != nil {
		newOutScript := script.NewScriptRaw(outScript.Bytes())
		newOut := txout.NewTxOut(coin.txOut.GetValue(), newOutScript)
		newCoin.txOut = *newOut
	} else {
		// A spent marker has a null txOut; keep it null in the copy.
		newCoin.txOut.SetNull()
	}
	return &newCoin
}

func (coin *Coin) DynamicMemoryUsage() int64 {
	// struct overhead plus the owned script bytes
	if s := coin.txOut.GetScriptPubKey(); s != nil {
		return 32 + int64(s.Size())
	}
	return 32
}

func (coin *Coin) Serialize(w io.Writer) error {
	if coin.IsSpent() {
		return errors.New("serializing a spent coin")
	}
	var bit uint64
	if coin.isCoinBase {
		bit = 1
	}
	heightAndIsCoinBase := uint64(uint32(coin.height))<<1 | bit
	if err := util.WriteVarLenInt(w, heightAndIsCoinBase); err != nil {
		return err
	}
	return coin.txOut.Serialize(w)
}

func (coin *Coin) Unserialize(r io.Reader) error {
	hicb, err := util.ReadVarLenInt(r)
	if err != nil {
		return err
	}
	coin.height = int32(uint32(hicb >> 1))
	coin.isCoinBase = hicb&1 == 1
	return coin.txOut.Unserialize(r)
}

func NewCoin(out *txout.TxOut, height int32, isCoinBase bool) *Coin {
	return &Coin{
		txOut:      *out,
		height:     height,
		isCoinBase: isCoinBase,
	}
}

func NewEmptyCoin() *Coin {
	return &Coin{
		txOut: *txout.NewTxOut(0, nil),
	}
}
