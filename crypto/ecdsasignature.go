package crypto

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

// Hash type bits appended to a signature. The mask selects the base mode
// out of the byte before flag bits.
const (
	SigHashAll          uint32 = 1
	SigHashNone         uint32 = 2
	SigHashSingle       uint32 = 3
	SigHashAnyoneCanpay uint32 = 0x80
	SigHashMask         uint32 = 0x1f
)

// Signature wraps a parsed ECDSA signature.
type Signature struct {
	sig *btcec.Signature
}

// ParseDERSignature parses a DER encoded signature, tolerating the lax
// encodings older signers produced.
func ParseDERSignature(sigStr []byte) (*Signature, error) {
	sig, err := btcec.ParseDERSignature(sigStr, btcec.S256())
	if err != nil {
		return nil, err
	}
	return &Signature{sig: sig}, nil
}

// Verify reports whether the signature is valid for hash under pubKey.
func (s *Signature) Verify(hash []byte, pubKey *PublicKey) bool {
	return s.sig.Verify(hash, pubKey.key)
}

// Serialize returns the canonical DER encoding.
func (s *Signature) Serialize() []byte {
	return s.sig.Serialize()
}

var halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// IsLowS reports whether the S component is in the lower half of the
// curve order.
func (s *Signature) IsLowS() bool {
	return s.sig.S.Cmp(halfOrder) <= 0
}

// EcdsaNormalize lowers a high S component to its canonical low form.
func (s *Signature) EcdsaNormalize() {
	if s.sig.S.Cmp(halfOrder) > 0 {
		s.sig.S = new(big.Int).Sub(btcec.S256().N, s.sig.S)
	}
}

// IsValidSignatureEncoding checks a signature in <sig> <hashtype> form
// against the strict DER rules:
//
//	0x30 [total-length] 0x02 [R-length] [R] 0x02 [S-length] [S] [sighash]
//
// where R and S are positive big endian integers with no unnecessary
// leading zero bytes.
func IsValidSignatureEncoding(signs []byte) bool {
	signsLen := len(signs)

	// Minimum and maximum size constraints.
	if signsLen < 9 || signsLen > 73 {
		return false
	}

	// A signature is of type 0x30 (compound).
	if signs[0] != 0x30 {
		return false
	}

	// Make sure the length covers the entire signature.
	if int(signs[1]) != signsLen-3 {
		return false
	}

	// Extract the length of the R element.
	lenR := int(signs[3])

	// Make sure the length of the S element is still inside the signature.
	if 5+lenR >= signsLen {
		return false
	}

	// Extract the length of the S element.
	lenS := int(signs[5+lenR])

	// Verify that the length of the signature matches the sum of the
	// length of the elements.
	if lenR+lenS+7 != signsLen {
		return false
	}

	// Check whether the R element is an integer.
	if signs[2] != 0x02 {
		return false
	}

	// Zero-length integers are not allowed for R.
	if lenR == 0 {
		return false
	}

	// Negative numbers are not allowed for R.
	if signs[4]&0x80 != 0 {
		return false
	}

	// Null bytes at the start of R are not allowed, unless R would
	// otherwise be interpreted as a negative number.
	if lenR > 1 && signs[4] == 0x00 && signs[5]&0x80 == 0 {
		return false
	}

	// Check whether the S element is an integer.
	if signs[lenR+4] != 0x02 {
		return false
	}

	// Zero-length integers are not allowed for S.
	if lenS == 0 {
		return false
	}

	// Negative numbers are not allowed for S.
	if signs[lenR+6]&0x80 != 0 {
		return false
	}

	// Null bytes at the start of S are not allowed, unless S would
	// otherwise be interpreted as a negative number.
	if lenS > 1 && signs[lenR+6] == 0x00 && signs[lenR+7]&0x80 == 0 {
		return false
	}

	return true
}

// CheckSignatureEncoding wraps IsValidSignatureEncoding with an error
// return for callers that want one.
func CheckSignatureEncoding(vchSig []byte) error {
	if !IsValidSignatureEncoding(vchSig) {
		return errors.New("non-canonical DER signature")
	}
	return nil
}
