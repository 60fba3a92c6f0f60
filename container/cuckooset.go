package container

import (
	"sync"

	"github.com/cillian-osullivan/globenew/util"
)

const (
	// slotHashes is the number of candidate slots derived per digest.
	slotHashes = 8
	// kickDepthLimit bounds the relocation chain of one insert.
	kickDepthLimit = 128
	// bytesPerSlot is the storage cost of one table slot including the
	// epoch and collection flags.
	bytesPerSlot = 34
)

// CuckooSet is a fixed capacity set of 256 bit digests. Each digest maps
// to eight candidate slots; inserts relocate residents cuckoo style up to
// a bounded depth and drop the element when no room is found, so an
// insert is advisory rather than guaranteed. Membership of stale entries
// is reclaimed in generations: once the live count crosses a threshold,
// everything inserted before the current generation becomes erasable.
//
// A RWMutex allows concurrent readers against a single writer. Erasure
// during Contains upgrades to the write lock.
type CuckooSet struct {
	mtx sync.RWMutex

	table     []util.Hash
	epochFlag []bool
	collected []bool

	size uint32
	k0   uint64
	k1   uint64

	epochSize             uint32
	epochHeuristicCounter uint32
}

// NewCuckooSet sizes the table from a byte budget. A non-positive budget
// produces an empty set that accepts nothing and contains nothing.
func NewCuckooSet(maxBytes int64) *CuckooSet {
	var size uint32
	if maxBytes > 0 {
		size = uint32(maxBytes / bytesPerSlot)
		if size < 2 {
			size = 2
		}
	}

	s := &CuckooSet{
		table:     make([]util.Hash, size),
		epochFlag: make([]bool, size),
		collected: make([]bool, size),
		size:      size,
		k0:        util.InsecureRand64(),
		k1:        util.InsecureRand64(),
	}
	// Start with every slot erasable.
	for i := range s.collected {
		s.collected[i] = true
	}
	s.epochSize = size / 2
	s.epochHeuristicCounter = s.epochSize
	return s
}

// Capacity returns the number of slots in the table.
func (s *CuckooSet) Capacity() uint32 {
	return s.size
}

func (s *CuckooSet) computeSlots(e util.Hash, locs *[slotHashes]uint32) {
	for i := 0; i < slotHashes; i++ {
		h := util.SipHashU256Extra(s.k0, s.k1, e, uint32(i))
		// Fast range reduction of the low 32 bits onto [0, size).
		locs[i] = uint32((h & 0xffffffff) * uint64(s.size) >> 32)
	}
}

// epochCheck advances the generation bookkeeping. Once the number of
// current generation entries crosses the threshold, every entry from the
// previous generation is marked erasable and survivors are demoted.
// Called with the write lock held.
func (s *CuckooSet) epochCheck() {
	if s.epochHeuristicCounter != 0 {
		s.epochHeuristicCounter--
		return
	}
	var epochCount uint32
	for i := uint32(0); i < s.size; i++ {
		if s.epochFlag[i] && !s.collected[i] {
			epochCount++
		}
	}
	if epochCount < s.epochSize {
		s.epochHeuristicCounter = s.epochSize
		return
	}
	for i := uint32(0); i < s.size; i++ {
		if s.epochFlag[i] {
			s.epochFlag[i] = false
		} else {
			s.collected[i] = true
		}
	}
	s.epochHeuristicCounter = s.epochSize
}

// Insert adds a digest, possibly relocating residents to make room. The
// element is silently dropped when the relocation chain exceeds its depth
// bound. Inserting an element that is already present is a no-op.
func (s *CuckooSet) Insert(e util.Hash) {
	if s.size == 0 {
		return
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.epochCheck()

	var locs [slotHashes]uint32
	s.computeSlots(e, &locs)
	for _, loc := range locs {
		if s.table[loc] == e {
			s.collected[loc] = false
			s.epochFlag[loc] = true
			return
		}
	}

	lastLoc := uint32(0xffffffff)
	epoch := true
	for depth := 0; depth < kickDepthLimit; depth++ {
		s.computeSlots(e, &locs)

		// Take any erasable slot first.
		for _, loc := range locs {
			if s.collected[loc] {
				s.table[loc] = e
				s.collected[loc] = false
				s.epochFlag[loc] = epoch
				return
			}
		}

		// Every candidate is live. Evict one resident, avoiding the
		// slot the current element was just kicked out of, and carry
		// the victim forward.
		next := 0
		for i, loc := range locs {
			if loc == lastLoc {
				next = (i + 1) & (slotHashes - 1)
				break
			}
		}
		lastLoc = locs[next]
		s.table[lastLoc], e = e, s.table[lastLoc]
		s.epochFlag[lastLoc], epoch = epoch, s.epochFlag[lastLoc]
	}
	// Depth limit hit; the carried element is dropped.
}

// Contains reports membership. With erase set, a hit is marked erasable
// so its slot is reused early; the entry remains answerable until it is
// actually overwritten.
func (s *CuckooSet) Contains(e util.Hash, erase bool) bool {
	if s.size == 0 {
		return false
	}

	if erase {
		s.mtx.Lock()
		defer s.mtx.Unlock()
	} else {
		s.mtx.RLock()
		defer s.mtx.RUnlock()
	}

	var locs [slotHashes]uint32
	s.computeSlots(e, &locs)
	for _, loc := range locs {
		if s.table[loc] == e {
			if erase {
				s.collected[loc] = true
			}
			return true
		}
	}
	return false
}
