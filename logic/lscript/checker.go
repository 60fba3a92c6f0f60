package lscript

import (
	"github.com/cillian-osullivan/globenew/crypto"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/tx"
	"github.com/cillian-osullivan/globenew/util/amount"
)

// Checker performs the transaction dependent checks of the script
// machine. Tests substitute their own implementation.
type Checker interface {
	CheckSig(transaction *tx.Tx, signature []byte, pubKey []byte, scriptCode *script.Script,
		nIn int, money amount.Amount, sigVersion int) (bool, error)
	CheckLockTime(lockTime int64, txLockTime int64, sequence uint32) bool
	CheckSequence(sequence int64, txToSequence int64, txVersion uint32) bool
}

// RealChecker verifies signatures against the transaction's signature
// hash, consulting and feeding the signature cache when one is attached.
type RealChecker struct {
	sigCache *crypto.SignatureCache
}

func NewScriptRealChecker() *RealChecker {
	return &RealChecker{sigCache: crypto.GetSignatureCacheInstance()}
}

// NewCachingChecker returns a checker that memoizes successful signature
// checks in sigCache.
func NewCachingChecker(sigCache *crypto.SignatureCache) *RealChecker {
	return &RealChecker{sigCache: sigCache}
}

func (src *RealChecker) CheckSig(transaction *tx.Tx, signature []byte, pubKey []byte, scriptCode *script.Script,
	nIn int, money amount.Amount, sigVersion int) (bool, error) {
	if len(signature) == 0 || len(pubKey) == 0 {
		return false, nil
	}
	hashType := signature[len(signature)-1]
	txSigHash, err := tx.SignatureHash(transaction, scriptCode, uint32(hashType), nIn, money, sigVersion)
	if err != nil {
		return false, err
	}
	signature = signature[:len(signature)-1]

	if src.sigCache != nil {
		entry := src.sigCache.ComputeEntry(txSigHash, signature, pubKey)
		if src.sigCache.HaveVerified(entry, true) {
			return true, nil
		}
		fOk := tx.CheckSig(txSigHash, signature, pubKey)
		if fOk {
			src.sigCache.RecordVerified(entry)
		}
		return fOk, nil
	}

	return tx.CheckSig(txSigHash, signature, pubKey), nil
}

func (src *RealChecker) CheckLockTime(lockTime int64, txLockTime int64, sequence uint32) bool {
	// There are two kinds of nLockTime: lock-by-blockheight and
	// lock-by-blocktime, distinguished by whether nLockTime <
	// LOCKTIME_THRESHOLD.
	//
	// We want to compare apples to apples, so fail the script unless the
	// type of nLockTime being tested is the same as the nLockTime in the
	// transaction.
	if !((txLockTime < script.LockTimeThreshold && lockTime < script.LockTimeThreshold) ||
		(txLockTime >= script.LockTimeThreshold && lockTime >= script.LockTimeThreshold)) {
		return false
	}

	// Now that we know we're comparing apples-to-apples, the comparison is
	// a simple numeric one.
	if lockTime > txLockTime {
		return false
	}
	// Finally the nLockTime feature can be disabled and thus
	// checkLockTimeVerify bypassed if every input has been finalized by
	// setting nSequence to maxInt. The transaction would be allowed into
	// the blockChain, making the opCode ineffective.
	//
	// Testing if this vin is not final is sufficient to prevent this
	// condition. Alternatively we could test all inputs, but testing just
	// this input minimizes the data required to prove correct
	// checkLockTimeVerify execution.
	if script.SequenceFinal == sequence {
		return false
	}
	return true
}

func (src *RealChecker) CheckSequence(sequence int64, txToSequence int64, txVersion uint32) bool {
	// Fail if the transaction's version number is not set high enough to
	// trigger BIP 68 rules.
	if txVersion < 2 {
		return false
	}
	// Sequence numbers with their most significant bit set are not
	// consensus constrained. Testing that the transaction's sequence number
	// does not have this bit set prevents using this property to get around
	// a checkSequenceVerify check.
	if txToSequence&script.SequenceLockTimeDisableFlag == script.SequenceLockTimeDisableFlag {
		return false
	}
	// Mask off any bits that do not have consensus-enforced meaning before
	// doing the integer comparisons.
	nLockTimeMask := script.SequenceLockTimeTypeFlag | script.SequenceLockTimeMask
	txToSequenceMasked := txToSequence & int64(nLockTimeMask)
	nSequenceMasked := sequence & int64(nLockTimeMask)

	// There are two kinds of nSequence: lock-by-blockHeight and
	// lock-by-blockTime, distinguished by whether nSequenceMasked <
	// SequenceLockTimeTypeFlag.
	//
	// We want to compare apples to apples, so fail the script unless the
	// type of nSequenceMasked being tested is the same as the
	// nSequenceMasked in the transaction.
	if !((txToSequenceMasked < script.SequenceLockTimeTypeFlag && nSequenceMasked < script.SequenceLockTimeTypeFlag) ||
		(txToSequenceMasked >= script.SequenceLockTimeTypeFlag && nSequenceMasked >= script.SequenceLockTimeTypeFlag)) {
		return false
	}
	if nSequenceMasked > txToSequenceMasked {
		return false
	}
	return true
}
