package woflz

import (
	"context"
	"fmt"
	"hash/maphash"
	"sync"
	"sync/atomic"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
)

// Two optional caches sit in front of the mandatory per-reader scratch
// slot (see [RandomAccessReader]):
//
//   - rawCache, a byte cache of raw (still-compressed) chunk ranges
//     fetched from a stream, keyed by (stream identity, byte range) so
//     repeat reads of the same range skip the underlying I/O;
//   - decodedCache, an LFU cache of fully decoded chunks keyed by the
//     content hash of their compressed bytes, so two chunks that happen
//     to compress to the same bytes (duplicate or all-zero chunks are
//     common in real files) are only ever decoded once, regardless of
//     which stream or reader they came from.
//
// Keying decodedCache by content rather than by (stream, index) is what
// lets it be shared safely across reader instances despite the "no
// shared mutable state" contract on RandomAccessReader itself: every
// entry is the pure function of its key, so concurrent readers can only
// ever agree on what a key maps to.
var nextStreamID uint64

// newStreamID hands out a identity for a raw stream's lifetime, used to
// namespace rawCache entries so distinct streams never collide.
func newStreamID() uint64 {
	return atomic.AddUint64(&nextStreamID, 1)
}

const (
	decodedCacheWindow = 256
	decodedCacheMain   = decodedCacheWindow * 10
)

type decodedCacheKey struct {
	format CompressionFormat
	sum    uint64
}

var hashSeed = maphash.MakeSeed()

func decodedCacheHash(k decodedCacheKey) uint64 {
	return maphash.Comparable(hashSeed, k)
}

var (
	decodedCacheMu sync.Mutex
	decodedCache   = tinylfu.New[decodedCacheKey, []byte](decodedCacheWindow, decodedCacheMain, decodedCacheHash)

	rawCache     *bigcache.BigCache
	rawCacheOnce sync.Once
)

func getRawCache() *bigcache.BigCache {
	rawCacheOnce.Do(func() {
		c, err := bigcache.New(context.Background(), bigcache.Config{
			HardMaxCacheSize: 64, // megabytes
			Shards:           256,
			MaxEntrySize:     32 * 1024,
		})
		if err != nil {
			panic(err)
		}
		rawCache = c
	})
	return rawCache
}

func rawCacheKeyFor(streamID uint64, start, end int64) string {
	return fmt.Sprintf("%d_%d_%d", streamID, start, end)
}

// lookupRaw returns previously fetched bytes for the range [start, end)
// of stream streamID, if cached.
func lookupRaw(streamID uint64, start, end int64) ([]byte, bool) {
	blob, err := getRawCache().Get(rawCacheKeyFor(streamID, start, end))
	if err != nil {
		return nil, false
	}
	return blob, true
}

func storeRaw(streamID uint64, start, end int64, raw []byte) {
	_ = getRawCache().Set(rawCacheKeyFor(streamID, start, end), raw)
}

// lookupDecoded returns a previously decoded chunk for the given
// compressed bytes, if one is cached.
func lookupDecoded(format CompressionFormat, raw []byte) ([]byte, bool) {
	sum := xxhash.Sum64(raw)
	decodedCacheMu.Lock()
	defer decodedCacheMu.Unlock()
	return decodedCache.Get(decodedCacheKey{format, sum})
}

func storeDecoded(format CompressionFormat, raw []byte, decoded []byte) {
	sum := xxhash.Sum64(raw)
	cp := make([]byte, len(decoded))
	copy(cp, decoded)
	decodedCacheMu.Lock()
	decodedCache.Add(decodedCacheKey{format, sum}, cp)
	decodedCacheMu.Unlock()
}
