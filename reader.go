package woflz

import (
	"fmt"
	"io"

	bufra "github.com/avvmoto/buf-readerat"
)

// RandomAccessReader turns a compressed WOF stream into a seekable
// logical byte source. It owns a chunk-sized scratch buffer and
// remembers the single most recently decoded chunk; see [cache.go] for
// the optional, shared caches that sit in front of that.
//
// A RandomAccessReader is not safe for concurrent use by multiple
// goroutines. Independent readers over the same stream share nothing
// mutable of their own (the optional caches in cache.go are keyed by
// content or by a private stream identity, not by reader).
type RandomAccessReader struct {
	format           CompressionFormat
	uncompressedSize uint64
	raw              io.ReaderAt
	streamID         uint64
	index            *ChunkIndex

	scratch     []byte
	cachedChunk int64 // -1 when nothing is cached
	cachedLen   int
}

// Open builds a RandomAccessReader over raw, a random-access view of
// the compressed stream, given the algorithm identifier and the
// logical (uncompressed) file size as discovered by the filesystem
// layer. streamLen is the total length of the compressed stream, used
// to resolve the final chunk's end.
func Open(format CompressionFormat, uncompressedSize uint64, streamLen int64, raw io.ReaderAt) (*RandomAccessReader, error) {
	if !format.valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, format)
	}
	if streamLen < 0 {
		return nil, ErrInvalidArgument
	}

	buffered := bufra.NewBufReaderAt(raw, 64*1024)

	index, err := parseChunkIndex(buffered, streamLen, uncompressedSize, format.ChunkSize())
	if err != nil {
		return nil, err
	}

	return &RandomAccessReader{
		format:           format,
		uncompressedSize: uncompressedSize,
		raw:              buffered,
		streamID:         newStreamID(),
		index:            index,
		scratch:          make([]byte, format.ChunkSize()),
		cachedChunk:      -1,
	}, nil
}

// Size returns the logical (uncompressed) size of the file.
func (r *RandomAccessReader) Size() int64 { return int64(r.uncompressedSize) }

// Close releases the reader's scratch buffer. It does not touch the
// shared caches, which are keyed by content or by stream identity and
// outlive any one reader.
func (r *RandomAccessReader) Close() error {
	r.scratch = nil
	r.cachedChunk = -1
	return nil
}

// Read copies the logical byte range [pos, pos+len(out)) into out,
// returning the number of bytes copied. A read that extends past the
// end of the file is clamped to the available bytes instead of
// erroring. On any decode or I/O failure the read returns 0 and the
// error; bytes from chunks already processed earlier in the same call
// are discarded rather than partially reported.
func (r *RandomAccessReader) Read(pos int64, out []byte) (int, error) {
	if pos < 0 {
		return 0, ErrInvalidArgument
	}
	if pos >= int64(r.uncompressedSize) || len(out) == 0 {
		return 0, nil
	}
	count := len(out)
	if pos+int64(count) > int64(r.uncompressedSize) {
		count = int(int64(r.uncompressedSize) - pos)
		out = out[:count]
	}

	chunkSize := int64(r.format.ChunkSize())
	firstChunk := pos / chunkSize
	lastChunk := (pos + int64(count) - 1) / chunkSize

	written := 0
	for i := firstChunk; i <= lastChunk; i++ {
		chunkStart, chunkEnd := r.index.LogicalRange(i, r.uncompressedSize)
		decoded, err := r.decodedChunk(i)
		if err != nil {
			return 0, err
		}

		lo := pos + int64(written)
		if lo < chunkStart {
			lo = chunkStart
		}
		hi := pos + int64(count)
		if hi > chunkEnd {
			hi = chunkEnd
		}

		n := copy(out[written:], decoded[lo-chunkStart:hi-chunkStart])
		written += n
	}

	return written, nil
}

// decodedChunk returns the fully decoded bytes of chunk i, using the
// reader's own single-slot cache first, then the shared caches, before
// falling back to a real fetch-and-decode.
func (r *RandomAccessReader) decodedChunk(i int64) ([]byte, error) {
	chunkStart, chunkEnd := r.index.LogicalRange(i, r.uncompressedSize)
	wantLen := int(chunkEnd - chunkStart)

	if r.cachedChunk == i {
		return r.scratch[:r.cachedLen], nil
	}

	rawStart, rawEnd := r.index.Range(i)

	raw, ok := lookupRaw(r.streamID, rawStart, rawEnd)
	if !ok {
		raw = make([]byte, rawEnd-rawStart)
		if _, err := r.raw.ReadAt(raw, rawStart); err != nil && err != io.EOF {
			return nil, fmt.Errorf("woflz: reading chunk %d: %w", i, err)
		}
		storeRaw(r.streamID, rawStart, rawEnd, raw)
	}

	if int64(len(raw)) == int64(wantLen) {
		// Stored literally: the chunk was not worth compressing.
		copy(r.scratch[:wantLen], raw)
		r.cachedChunk = i
		r.cachedLen = wantLen
		return r.scratch[:wantLen], nil
	}

	if decoded, ok := lookupDecoded(r.format, raw); ok && len(decoded) == wantLen {
		copy(r.scratch[:wantLen], decoded)
		r.cachedChunk = i
		r.cachedLen = wantLen
		return r.scratch[:wantLen], nil
	}

	dst := r.scratch[:wantLen]
	if err := decodeChunk(r.format, dst, raw); err != nil {
		r.cachedChunk = -1
		if cse, ok := err.(*CorruptStreamError); ok {
			cse.Chunk = i
			return nil, cse
		}
		return nil, err
	}

	storeDecoded(r.format, raw, dst)
	r.cachedChunk = i
	r.cachedLen = wantLen
	return dst, nil
}
