package woflz

// lzCopy appends an LZ77 match to dst[:pos], copying length bytes from
// pos-offset to pos. It must be correct for overlapping matches,
// including the offset==1 run-length case, so when offset < length it
// copies byte by byte rather than using copy() or similar bulk
// primitives (which assume the source and destination ranges don't
// overlap in a way that matters here: copy() reading ahead of what it
// just wrote would read stale data for offset < length). When
// offset >= length the ranges cannot overlap and copy() is used.
//
// Callers are expected to have already validated 1 <= offset <= pos,
// length >= the format's minimum match length (3 for XPRESS, 2 for
// LZX), and pos+length <= len(dst).
func lzCopy(dst []byte, pos, length, offset int) int {
	src := pos - offset
	end := pos + length

	if offset >= length {
		// Source and destination ranges can't overlap: a plain copy is
		// correct and faster.
		copy(dst[pos:end], dst[src:src+length])
		return end
	}

	for pos < end {
		dst[pos] = dst[src]
		pos++
		src++
	}
	return end
}
