package conf

// CacheSizes is the byte budget of every cache-backed subsystem, computed
// once at start-up and consumed by the stores during initialization.
type CacheSizes struct {
	BlockTreeDB int64
	CoinsDB     int64
	Coins       int64
	TxIndex     int64
	FilterIndex int64
	SigCache    int64

	Compression  bool
	MaxOpenFiles int
}

// Floors and ceilings for CalculateCacheSizes. Tuning values, not
// correctness properties; only the shape of the split is a contract.
const (
	MinTotalCacheBytes = 4 << 20
	MaxTotalCacheBytes = 16384 << 20

	MinBlockTreeDBCacheBytes = 2 << 20
	MaxBlockTreeDBCacheBytes = 8 << 20

	MinSigCacheBytes = 8 << 20
	MaxSigCacheBytes = 256 << 20

	MaxTxIndexCacheBytes     = 1024 << 20
	MaxFilterIndexCacheBytes = 64 << 20
	MaxCoinsDBCacheBytes     = 8 << 20
)

// CalculateCacheSizes divides totalBudget bytes across the subsystems.
// The block metadata store and the validation caches take fixed-floor
// shares off the top so they stay usable under a tiny budget, optional
// indexes carve out their share next, and the remainder splits between
// the on-disk coin database and the in-memory coin working set. Every
// field is clamped; none can come out negative.
func CalculateCacheSizes(totalBudget int64, txIndex bool, filterIndexCount int,
	compression bool, maxOpenFiles int) CacheSizes {

	sizes := CacheSizes{Compression: compression, MaxOpenFiles: maxOpenFiles}

	total := totalBudget
	if total < MinTotalCacheBytes {
		total = MinTotalCacheBytes
	}
	if total > MaxTotalCacheBytes {
		total = MaxTotalCacheBytes
	}

	sizes.BlockTreeDB = clamp(total/8, MinBlockTreeDBCacheBytes, MaxBlockTreeDBCacheBytes)
	total = subFloor(total, sizes.BlockTreeDB)

	sizes.SigCache = clamp(total/8, MinSigCacheBytes, MaxSigCacheBytes)
	total = subFloor(total, sizes.SigCache)

	if txIndex {
		sizes.TxIndex = total / 8
		if sizes.TxIndex > MaxTxIndexCacheBytes {
			sizes.TxIndex = MaxTxIndexCacheBytes
		}
		total -= sizes.TxIndex
	}

	if filterIndexCount > 0 {
		share := total / 8
		if share > MaxFilterIndexCacheBytes {
			share = MaxFilterIndexCacheBytes
		}
		sizes.FilterIndex = share / int64(filterIndexCount)
		total -= sizes.FilterIndex * int64(filterIndexCount)
	}

	// Between a quarter and a half of what remains goes to the coin
	// database, capped; everything left is the in-memory working set.
	sizes.CoinsDB = total / 2
	if limit := total/4 + (1 << 23); sizes.CoinsDB > limit {
		sizes.CoinsDB = limit
	}
	if sizes.CoinsDB > MaxCoinsDBCacheBytes {
		sizes.CoinsDB = MaxCoinsDBCacheBytes
	}
	total -= sizes.CoinsDB
	sizes.Coins = total

	return sizes
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// subFloor subtracts but never goes below zero: a carved-out floor may
// exceed what is left of a very small budget.
func subFloor(total, taken int64) int64 {
	if taken >= total {
		return 0
	}
	return total - taken
}
