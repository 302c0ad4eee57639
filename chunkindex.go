package woflz

import (
	"encoding/binary"
	"io"
)

const fourGiB = 1 << 32

// ChunkIndex maps a logical chunk number to the byte range it occupies
// in the compressed stream. It is built once per file and is immutable
// and safe to share across readers afterward.
type ChunkIndex struct {
	chunkSize uint32
	numChunks int64
	offsets   []int64 // len == numChunks+1
}

// parseChunkIndex reads the chunk-offset table from the start of a
// compressed WOF stream. The table holds numChunks-1 entries (the first
// chunk always starts right after the table, and the last chunk's end
// is the stream's own length); each entry is 4 or 8 bytes depending on
// whether the file is bigger than 4 GiB. Entries are stored relative to
// the end of the table, not to the start of the stream.
func parseChunkIndex(raw io.ReaderAt, streamLen int64, uncompressedSize uint64, chunkSize uint32) (*ChunkIndex, error) {
	if chunkSize == 0 {
		return nil, ErrInvalidArgument
	}
	numChunks := int64((uncompressedSize + uint64(chunkSize) - 1) / uint64(chunkSize))
	if numChunks == 0 {
		return &ChunkIndex{chunkSize: chunkSize, numChunks: 0, offsets: []int64{0}}, nil
	}

	entrySize := 4
	if uncompressedSize > fourGiB {
		entrySize = 8
	}
	numEntries := int(numChunks - 1)
	headerSize := int64(numEntries * entrySize)

	raw2 := make([]byte, headerSize)
	if headerSize > 0 {
		if _, err := io.ReadFull(io.NewSectionReader(raw, 0, headerSize), raw2); err != nil {
			return nil, corruptf(-1, "truncated chunk offset table: %v", err)
		}
	}

	offsets := make([]int64, numChunks+1)
	offsets[0] = headerSize
	for i := 0; i < numEntries; i++ {
		var v int64
		if entrySize == 4 {
			v = int64(binary.LittleEndian.Uint32(raw2[i*4:]))
		} else {
			v = int64(binary.LittleEndian.Uint64(raw2[i*8:]))
		}
		offsets[i+1] = headerSize + v
	}
	offsets[numChunks] = streamLen

	for i := int64(1); i <= numChunks; i++ {
		if offsets[i] <= offsets[i-1] {
			return nil, corruptf(i-1, "non-monotonic chunk offset table entry")
		}
	}

	return &ChunkIndex{chunkSize: chunkSize, numChunks: numChunks, offsets: offsets}, nil
}

// NumChunks returns the number of logical chunks the file is split into.
func (c *ChunkIndex) NumChunks() int64 { return c.numChunks }

// Range returns the compressed byte range [start, end) for chunk i.
func (c *ChunkIndex) Range(i int64) (start, end int64) {
	return c.offsets[i], c.offsets[i+1]
}

// LogicalRange returns the uncompressed byte range [start, end) that
// chunk i covers, given the file's total uncompressed size.
func (c *ChunkIndex) LogicalRange(i int64, uncompressedSize uint64) (start, end int64) {
	start = i * int64(c.chunkSize)
	end = start + int64(c.chunkSize)
	if end > int64(uncompressedSize) {
		end = int64(uncompressedSize)
	}
	return start, end
}
