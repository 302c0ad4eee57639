package woflz

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func le32Header(entries ...uint32) []byte {
	buf := make([]byte, 4*len(entries))
	for i, v := range entries {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

func TestParseChunkIndexOffsetsRelativeToHeader(t *testing.T) {
	// 3 chunks of 4096 bytes (uncompressedSize 12288) needs 2 table
	// entries. Entries are relative to the end of the (8-byte) header.
	header := le32Header(4096, 8192)
	const streamLen = 8300

	idx, err := parseChunkIndex(bytes.NewReader(header), streamLen, 12288, 4096)
	if err != nil {
		t.Fatalf("parseChunkIndex: %v", err)
	}
	if idx.NumChunks() != 3 {
		t.Fatalf("NumChunks = %d, want 3", idx.NumChunks())
	}

	wantRanges := [][2]int64{{8, 4104}, {4104, 8200}, {8200, 8300}}
	for i, want := range wantRanges {
		start, end := idx.Range(int64(i))
		if start != want[0] || end != want[1] {
			t.Fatalf("Range(%d) = (%d,%d), want (%d,%d)", i, start, end, want[0], want[1])
		}
	}

	start, end := idx.LogicalRange(2, 12288)
	if start != 8192 || end != 12288 {
		t.Fatalf("LogicalRange(2) = (%d,%d), want (8192,12288)", start, end)
	}
}

func TestParseChunkIndexRejectsNonMonotonicOffsets(t *testing.T) {
	header := le32Header(8192, 4096) // decreasing: invalid
	_, err := parseChunkIndex(bytes.NewReader(header), 8300, 12288, 4096)
	if err == nil {
		t.Fatal("expected an error for a non-monotonic offset table")
	}
}

func TestParseChunkIndexSingleChunkHasNoTableEntries(t *testing.T) {
	idx, err := parseChunkIndex(bytes.NewReader(nil), 100, 100, 4096)
	if err != nil {
		t.Fatalf("parseChunkIndex: %v", err)
	}
	if idx.NumChunks() != 1 {
		t.Fatalf("NumChunks = %d, want 1", idx.NumChunks())
	}
	start, end := idx.Range(0)
	if start != 0 || end != 100 {
		t.Fatalf("Range(0) = (%d,%d), want (0,100)", start, end)
	}
}

func TestParseChunkIndexEightByteEntriesAboveFourGiB(t *testing.T) {
	const uncompressedSize = uint64(fourGiB) + 1
	const chunkSize = 32768
	numChunks := int64((uncompressedSize + chunkSize - 1) / chunkSize)

	header := make([]byte, 8*(numChunks-1))
	for i := int64(0); i < numChunks-1; i++ {
		binary.LittleEndian.PutUint64(header[i*8:], uint64(i+1)*chunkSize)
	}
	streamLen := int64(len(header)) + int64(numChunks)*chunkSize

	idx, err := parseChunkIndex(bytes.NewReader(header), streamLen, uncompressedSize, chunkSize)
	if err != nil {
		t.Fatalf("parseChunkIndex: %v", err)
	}
	if idx.NumChunks() != numChunks {
		t.Fatalf("NumChunks = %d, want %d", idx.NumChunks(), numChunks)
	}
}
