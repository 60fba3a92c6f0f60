package tx

import (
	"bytes"
	"encoding/binary"

	"github.com/cillian-osullivan/globenew/crypto"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/model/opcodes"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/txout"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

// SignatureHash computes the digest a checksig signs for input nIn of
// transaction under scriptCode s. sigVersion selects the hashing scheme:
// witness v0 inputs commit to the spent amount and use the precomputable
// prevouts/sequence/outputs digests, legacy inputs serialize a modified
// transaction the way the original client did.
func SignatureHash(transaction *Tx, s *script.Script, hashType uint32, nIn int,
	money amount.Amount, sigVersion int) (result util.Hash, err error) {

	var hashBuffer bytes.Buffer
	sigHashAnyOneCanPay := hashType&crypto.SigHashAnyoneCanpay == crypto.SigHashAnyoneCanpay
	sigHashNone := hashType&crypto.SigHashMask == crypto.SigHashNone
	sigHashSingle := hashType&crypto.SigHashMask == crypto.SigHashSingle

	if sigVersion == script.SigVersionWitnessV0 {
		var hashPrevouts util.Hash
		var hashSequence util.Hash
		var hashOutputs util.Hash

		if !sigHashAnyOneCanPay {
			hashPrevouts = GetPreviousOutHash(transaction)
		}
		if !sigHashAnyOneCanPay && !sigHashSingle && !sigHashNone {
			hashSequence = GetSequenceHash(transaction)
		}
		if !sigHashSingle && !sigHashNone {
			hashOutputs, _ = GetOutputsHash(transaction.GetOuts())
		} else if sigHashSingle && nIn < len(transaction.GetOuts()) {
			hashOutputs, _ = GetOutputsHash(transaction.GetOuts()[nIn : nIn+1])
		}

		err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, uint32(transaction.GetVersion()))
		if err != nil {
			return util.HashOne, err
		}
		if _, err = hashBuffer.Write(hashPrevouts[:]); err != nil {
			return util.HashOne, err
		}
		if _, err = hashBuffer.Write(hashSequence[:]); err != nil {
			return util.HashOne, err
		}
		if err = transaction.GetIns()[nIn].PreviousOutPoint.Encode(&hashBuffer); err != nil {
			return util.HashOne, err
		}
		if err = s.Serialize(&hashBuffer); err != nil {
			return util.HashOne, err
		}
		// amount of the output being spent
		err = util.BinarySerializer.PutUint64(&hashBuffer, binary.LittleEndian, uint64(money))
		if err != nil {
			return util.HashOne, err
		}
		err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, transaction.GetIns()[nIn].Sequence)
		if err != nil {
			return util.HashOne, err
		}
		if _, err = hashBuffer.Write(hashOutputs[:]); err != nil {
			return util.HashOne, err
		}
		err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, transaction.GetLockTime())
		if err != nil {
			return util.HashOne, err
		}
		err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, hashType)
		if err != nil {
			return util.HashOne, err
		}
		return util.DoubleSha256Hash(hashBuffer.Bytes()), nil
	}

	// The SigHashSingle signature type signs only the corresponding input
	// and output (the output with the same index number as the input).
	//
	// Since transactions can have more inputs than outputs, this means it
	// is improper to use SigHashSingle on input indices that don't have a
	// corresponding output.
	//
	// A bug in the original client implementation means specifying an index
	// that is out of range results in a signature hash of 1 (as a uint256
	// little endian). The original intent appeared to be to indicate
	// failure, but unfortunately, it was never checked and thus is treated
	// as the actual signature hash. This buggy behavior is now part of the
	// consensus and a hard fork would be required to fix it.
	ins := transaction.GetIns()
	insLen := len(ins)
	outs := transaction.GetOuts()
	outsLen := len(outs)
	if sigHashSingle && nIn >= outsLen {
		return util.HashOne, nil
	}
	if nIn >= insLen {
		return util.HashOne, nil
	}

	err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, uint32(transaction.GetVersion()))
	if err != nil {
		return util.HashOne, err
	}
	inputsCount := insLen
	if sigHashAnyOneCanPay {
		inputsCount = 1
	}
	if err = util.WriteVarInt(&hashBuffer, uint64(inputsCount)); err != nil {
		return util.HashOne, err
	}

	ss := s.RemoveOpcode(opcodes.OP_CODESEPARATOR)

	for i := 0; i < inputsCount; i++ {
		if sigHashAnyOneCanPay {
			ins[nIn].PreviousOutPoint.Encode(&hashBuffer)
			if err = ss.Serialize(&hashBuffer); err != nil {
				return util.HashOne, err
			}
			err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, ins[nIn].Sequence)
			if err != nil {
				return util.HashOne, err
			}
			continue
		}
		ins[i].PreviousOutPoint.Encode(&hashBuffer)
		if i != nIn {
			// empty script
			if err = util.WriteVarInt(&hashBuffer, 0); err != nil {
				return util.HashOne, err
			}
			sequence := ins[i].Sequence
			if sigHashSingle || sigHashNone {
				sequence = 0
			}
			err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, sequence)
			if err != nil {
				return util.HashOne, err
			}
		} else {
			if err = ss.Serialize(&hashBuffer); err != nil {
				return util.HashOne, err
			}
			err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, ins[i].Sequence)
			if err != nil {
				return util.HashOne, err
			}
		}
	}

	var outsCount int
	switch {
	case sigHashNone:
		outsCount = 0
	case sigHashSingle:
		outsCount = nIn + 1
	default:
		outsCount = outsLen
	}
	if err = util.WriteVarInt(&hashBuffer, uint64(outsCount)); err != nil {
		return util.HashOne, err
	}
	for m := 0; m < outsCount; m++ {
		if sigHashSingle && m != nIn {
			to := txout.NewTxOut(-1, nil)
			if err = to.Encode(&hashBuffer); err != nil {
				return util.HashOne, err
			}
		} else {
			if err = outs[m].Encode(&hashBuffer); err != nil {
				return util.HashOne, err
			}
		}
	}

	err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, transaction.GetLockTime())
	if err != nil {
		return util.HashOne, err
	}
	err = util.BinarySerializer.PutUint32(&hashBuffer, binary.LittleEndian, hashType)
	if err != nil {
		return util.HashOne, err
	}
	return util.DoubleSha256Hash(hashBuffer.Bytes()), nil
}

// GetPreviousOutHash digests every input's previous outpoint.
func GetPreviousOutHash(tx *Tx) util.Hash {
	var bPreOut bytes.Buffer
	for _, e := range tx.GetIns() {
		if err := e.PreviousOutPoint.Encode(&bPreOut); err != nil {
			log.Error("previous outPoint encode failed: %v", err)
			return util.HashOne
		}
	}
	return util.DoubleSha256Hash(bPreOut.Bytes())
}

// GetSequenceHash digests every input's sequence field.
func GetSequenceHash(tx *Tx) util.Hash {
	ins := tx.GetIns()
	buf := make([]byte, 0, 4*len(ins))
	for _, e := range ins {
		tempbuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(tempbuf, e.Sequence)
		buf = append(buf, tempbuf...)
	}
	return util.DoubleSha256Hash(buf)
}

// GetOutputsHash digests the serialized outputs.
func GetOutputsHash(outs []*txout.TxOut) (h util.Hash, err error) {
	var bOut bytes.Buffer
	for _, e := range outs {
		if err = e.Serialize(&bOut); err != nil {
			return
		}
	}
	h = util.DoubleSha256Hash(bOut.Bytes())
	return
}

// CheckSig verifies a raw ECDSA signature against a digest and serialized
// public key. High S values are normalized before verification.
func CheckSig(signHash util.Hash, vchSigIn []byte, vchPubKey []byte) bool {
	if len(vchPubKey) == 0 || len(vchSigIn) == 0 {
		return false
	}
	publicKey, err := crypto.ParsePubKey(vchPubKey)
	if err != nil {
		return false
	}
	sign, err := crypto.ParseDERSignature(vchSigIn)
	if err != nil {
		return false
	}
	sign.EcdsaNormalize()
	return sign.Verify(signHash.GetCloneBytes(), publicKey)
}
