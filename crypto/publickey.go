package crypto

import (
	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

const (
	// PubKeyBytesLenCompressed is the length of a compressed serialized
	// public key.
	PubKeyBytesLenCompressed = 33
	// PubKeyBytesLenUncompressed is the length of an uncompressed
	// serialized public key.
	PubKeyBytesLenUncompressed = 65
)

// PublicKey wraps a parsed secp256k1 point.
type PublicKey struct {
	key *btcec.PublicKey
}

// ParsePubKey parses a compressed, uncompressed or hybrid serialized
// public key and checks it lies on the curve.
func ParsePubKey(pubKeyStr []byte) (*PublicKey, error) {
	key, err := btcec.ParsePubKey(pubKeyStr, btcec.S256())
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: key}, nil
}

func (p *PublicKey) SerializeCompressed() []byte {
	return p.key.SerializeCompressed()
}

func (p *PublicKey) SerializeUncompressed() []byte {
	return p.key.SerializeUncompressed()
}

// IsCompressedOrUncompressedPubKey checks the serialized form without
// evaluating whether the point is on the curve.
func IsCompressedOrUncompressedPubKey(bytes []byte) bool {
	if len(bytes) < PubKeyBytesLenCompressed {
		return false
	}
	if bytes[0] == 0x04 {
		if len(bytes) != PubKeyBytesLenUncompressed {
			return false
		}
	} else if bytes[0] == 0x02 || bytes[0] == 0x03 {
		if len(bytes) != PubKeyBytesLenCompressed {
			return false
		}
	} else {
		return false
	}
	return true
}

// IsCompressedPubKey checks for the 33 byte compressed serialized form.
func IsCompressedPubKey(bytes []byte) bool {
	return len(bytes) == PubKeyBytesLenCompressed &&
		(bytes[0] == 0x02 || bytes[0] == 0x03)
}

func CheckPubKeyEncoding(vchPubKey []byte) error {
	if !IsCompressedOrUncompressedPubKey(vchPubKey) {
		return errors.New("public key is neither compressed or uncompressed")
	}
	return nil
}
