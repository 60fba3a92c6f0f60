package crypto

import (
	"crypto/sha256"

	"github.com/cillian-osullivan/globenew/container"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/util"
)

// SignatureCache remembers signature checks that have already succeeded,
// so a transaction seen again (relay then block) skips the expensive
// ECDSA verification. Entries are keyed under a process lifetime salt to
// keep an attacker from grinding cache collisions offline. Only proven
// valid checks are ever recorded.
type SignatureCache struct {
	salt util.Hash
	set  *container.CuckooSet
}

// NewSignatureCache builds a cache bounded by maxBytes of slot storage.
// A zero or negative budget yields a cache that stores nothing but still
// answers queries.
func NewSignatureCache(maxBytes int64) *SignatureCache {
	set := container.NewCuckooSet(maxBytes)
	log.Info("signature cache: %d elements across %d bytes", set.Capacity(), maxBytes)
	return &SignatureCache{
		salt: util.GetRandHash(),
		set:  set,
	}
}

var sigCacheInstance *SignatureCache

// InitSignatureCacheInstance sizes the process-wide signature cache.
// Call once at start-up, before verification traffic begins.
func InitSignatureCacheInstance(maxBytes int64) {
	sigCacheInstance = NewSignatureCache(maxBytes)
}

// GetSignatureCacheInstance may return nil when no cache was configured;
// every method of SignatureCache tolerates a nil receiver.
func GetSignatureCacheInstance() *SignatureCache {
	return sigCacheInstance
}

// ComputeEntry derives the salted cache key for one signature check.
func (sc *SignatureCache) ComputeEntry(sigHash util.Hash, vchSig []byte, pubKey []byte) util.Hash {
	h := sha256.New()
	h.Write(sc.salt[:])
	h.Write(sigHash[:])
	h.Write(vchSig)
	h.Write(pubKey)

	var entry util.Hash
	copy(entry[:], h.Sum(nil))
	return entry
}

// HaveVerified reports whether the entry was recorded as valid earlier.
// erase marks a hit for early reuse, the typical pattern when a check
// will not be needed a second time.
func (sc *SignatureCache) HaveVerified(entry util.Hash, erase bool) bool {
	if sc == nil {
		return false
	}
	return sc.set.Contains(entry, erase)
}

// RecordVerified stores an entry whose signature check has succeeded.
// The insert is advisory: under pressure the set may drop it.
func (sc *SignatureCache) RecordVerified(entry util.Hash) {
	if sc == nil {
		return
	}
	sc.set.Insert(entry)
}
