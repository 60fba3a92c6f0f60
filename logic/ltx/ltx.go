package ltx

import (
	"encoding/hex"

	"gopkg.in/fatih/set.v0"

	"github.com/cillian-osullivan/globenew/errcode"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/logic/lscript"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/tx"
	"github.com/cillian-osullivan/globenew/model/utxo"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

// CoinbaseMaturity is how many blocks a coinbase output must age before
// it can be spent.
const CoinbaseMaturity = 100

type ScriptVerifyJob struct {
	Tx                     *tx.Tx
	ScriptSig              *script.Script
	ScriptPubKey           *script.Script
	InputNum               int
	Value                  amount.Amount
	Flags                  uint32
	ScriptChecker          lscript.Checker
	ScriptVerifyResultChan chan ScriptVerifyResult
}

type ScriptVerifyResult struct {
	TxHash       util.Hash
	ScriptSig    *script.Script
	ScriptPubKey *script.Script
	InputNum     int
	Err          error
}

func verifyResult(j ScriptVerifyJob, err error) ScriptVerifyResult {
	return ScriptVerifyResult{j.Tx.GetHash(), j.ScriptSig, j.ScriptPubKey, j.InputNum, err}
}

const (
	MaxScriptVerifyJobNum = 50000
)

var scriptVerifyJobChan chan ScriptVerifyJob

// ScriptVerifyInit starts the script verification worker pool. Inputs of
// one transaction (and of distinct transactions) verify independently, so
// any worker can take any job.
func ScriptVerifyInit(par int) {
	if par <= 0 {
		par = 1
	}
	scriptVerifyJobChan = make(chan ScriptVerifyJob, MaxScriptVerifyJobNum)
	for i := 0; i < par; i++ {
		go checkScript()
	}
}

// CheckInputs verifies every input of the transaction against the coins
// in tempCoinMap: amounts first, then scripts in parallel on the worker
// pool. Results are drained per batch; the first failure wins.
func CheckInputs(txn *tx.Tx, tempCoinMap *utxo.CoinsMap, flags uint32, spendHeight int32) error {
	if err := CheckInputsMoney(txn, tempCoinMap, spendHeight); err != nil {
		return err
	}

	resultChan := make(chan ScriptVerifyResult, MaxScriptVerifyJobNum)

	ins := txn.GetIns()
	insLen := len(ins)

	batches := insLen / MaxScriptVerifyJobNum
	reminder := insLen % MaxScriptVerifyJobNum
	if reminder > 0 {
		batches++
	}

	for batch := 0; batch < batches; batch++ {
		jobNum := MaxScriptVerifyJobNum
		if batch+1 == batches && reminder > 0 {
			jobNum = reminder
		}

		for j := 0; j < jobNum; j++ {
			index := batch*MaxScriptVerifyJobNum + j

			coin := tempCoinMap.GetCoin(ins[index].PreviousOutPoint)
			if coin == nil {
				panic("can't find coin in temp coinsmap")
			}
			scriptPubKey := coin.GetScriptPubKey()
			scriptSig := ins[index].GetScriptSig()
			scriptVerifyJobChan <- ScriptVerifyJob{txn, scriptSig, scriptPubKey, index,
				coin.GetAmount(), flags, lscript.NewScriptRealChecker(), resultChan}
		}

		var err error
		for k := 0; k < jobNum; k++ {
			result := <-resultChan
			if result.Err != nil {
				log.Debug("script verify err: %v, tx hash: %s, index: %d",
					result.Err, result.TxHash.String(), result.InputNum)
				if err == nil {
					err = result.Err
				}
			}
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func checkScript() {
	for {
		j := <-scriptVerifyJobChan

		err1 := lscript.VerifyScript(j.Tx, j.ScriptSig, j.ScriptPubKey, j.InputNum,
			j.Value, j.Flags, j.ScriptChecker)
		if err1 != nil {
			hasNonMandatoryFlags := j.Flags&script.StandardNotMandatoryVerifyFlags != 0
			if hasNonMandatoryFlags {
				// Re-check under mandatory flags only: a failure caused
				// purely by standardness rules is not a consensus failure.
				fallbackFlags := j.Flags &^ script.StandardNotMandatoryVerifyFlags
				err2 := lscript.VerifyScript(j.Tx, j.ScriptSig, j.ScriptPubKey,
					j.InputNum, j.Value, fallbackFlags, j.ScriptChecker)
				if err2 == nil {
					j.ScriptVerifyResultChan <- verifyResult(j, errorNonMandatoryFailed(j, err1))
					continue
				}
			}
			j.ScriptVerifyResultChan <- verifyResult(j, errorMandatoryFailed(j, err1))
			continue
		}

		j.ScriptVerifyResultChan <- verifyResult(j, nil)
	}
}

func errorMandatoryFailed(j ScriptVerifyJob, innerErr error) error {
	log.Debug("VerifyScript err, tx hash: %s, input: %d, scriptSig: %s, scriptPubKey: %s, err: %v",
		j.Tx.GetHash(), j.InputNum, hex.EncodeToString(j.ScriptSig.GetData()),
		hex.EncodeToString(j.ScriptPubKey.GetData()), innerErr)
	return innerErr
}

func errorNonMandatoryFailed(j ScriptVerifyJob, innerErr error) error {
	log.Debug("VerifyScript failed a non-mandatory flag, tx hash: %s, input: %d, err: %v",
		j.Tx.GetHash(), j.InputNum, innerErr)
	return innerErr
}

// CheckInputsMoney verifies the amounts flowing through the transaction:
// each spent coin exists, coinbases are mature, every value is in range,
// and the inputs cover the outputs.
func CheckInputsMoney(txn *tx.Tx, coinsMap *utxo.CoinsMap, spendHeight int32) error {
	nValue := amount.Amount(0)
	ins := txn.GetIns()
	for _, e := range ins {
		coin := coinsMap.GetCoin(e.PreviousOutPoint)
		if coin == nil {
			log.Debug("CheckInputsMoney can't find coin for %s", e.PreviousOutPoint.String())
			return errcode.New(errcode.TxErrNoPreviousOut)
		}
		if coin.IsCoinBase() {
			if spendHeight-coin.GetHeight() < CoinbaseMaturity {
				log.Debug("immature coinbase spend at height %d", spendHeight)
				return errcode.New(errcode.TxErrNoPreviousOut)
			}
		}
		txOut := coin.GetTxOut()
		if err := txOut.CheckValue(); err != nil {
			return err
		}
		nValue += txOut.GetValue()
		if !amount.MoneyRange(nValue) {
			log.Debug("CheckInputsMoney total input value out of range")
			return errcode.New(errcode.TxErrTotalMoneyTooLarge)
		}
	}
	if nValue < txn.GetValueOut() {
		log.Debug("CheckInputsMoney inputs below outputs, tx hash: %s", txn.GetHash())
		return errcode.New(errcode.TxErrTotalMoneyTooLarge)
	}
	return nil
}

// CheckDuplicateOutPoints rejects a batch of transactions in which any
// two inputs spend the same previous output.
func CheckDuplicateOutPoints(txns []*tx.Tx) error {
	spent := set.New(set.ThreadSafe)
	for _, txn := range txns {
		if txn.IsCoinBase() {
			continue
		}
		for _, in := range txn.GetIns() {
			op := *in.PreviousOutPoint
			if spent.Has(op) {
				log.Debug("outpoint %s spent twice in batch", op.String())
				return errcode.New(errcode.TxErrDupIns)
			}
			spent.Add(op)
		}
	}
	return nil
}

// FetchInputCoins pulls every coin the transaction spends out of the
// global view into a per-task map. It reports whether any input is
// missing.
func FetchInputCoins(txn *tx.Tx) (coinsMap *utxo.CoinsMap, missingInput bool) {
	coinsMap = utxo.NewEmptyCoinsMap()
	for _, in := range txn.GetIns() {
		if coinsMap.FetchCoin(in.PreviousOutPoint) == nil {
			missingInput = true
		}
	}
	return coinsMap, missingInput
}
