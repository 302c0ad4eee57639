package woflz

// bitReader is a bit-level cursor over a byte buffer. Bits are delivered
// MSB-first within little-endian 16-bit coding units, matching the wire
// format XPRESS and LZX both use: the compressor packs bits two bytes at
// a time, low byte first, and the decoder consumes them starting from
// the high bit of the resulting 16-bit word.
//
// bitbuf is left-justified: the next bit to read is always bit 31. Bytes
// past the end of buf are treated as zero, so the last few symbols of a
// block can straddle the end of input without a special case.
type bitReader struct {
	buf      []byte
	pos      int
	bitbuf   uint32
	bitsleft uint
}

func newBitReader(buf []byte) *bitReader {
	return &bitReader{buf: buf}
}

// ensure guarantees at least n (<=16) valid bits are buffered, refilling
// from the next two input bytes if necessary.
func (r *bitReader) ensure(n uint) {
	if r.bitsleft >= n {
		return
	}
	var lo, hi uint32
	if r.pos < len(r.buf) {
		lo = uint32(r.buf[r.pos])
		r.pos++
		if r.pos < len(r.buf) {
			hi = uint32(r.buf[r.pos])
			r.pos++
		}
	}
	word := lo | hi<<8
	r.bitbuf |= word << (16 - r.bitsleft)
	r.bitsleft += 16
}

// peek returns the next n bits (0 <= n <= 16), already assumed present,
// without consuming them.
func (r *bitReader) peek(n uint) uint32 {
	if n == 0 {
		return 0
	}
	return r.bitbuf >> (32 - n)
}

// remove discards the next n bits, already assumed present.
func (r *bitReader) remove(n uint) {
	r.bitbuf <<= n
	r.bitsleft -= n
}

// pop returns and consumes the next n bits, already assumed present.
func (r *bitReader) pop(n uint) uint32 {
	v := r.peek(n)
	r.remove(n)
	return v
}

// read ensures and then pops n (<=16) bits.
func (r *bitReader) read(n uint) uint32 {
	if n == 0 {
		return 0
	}
	r.ensure(n)
	return r.pop(n)
}

// align discards any partially-consumed coding unit, realigning the
// bitstream to whatever byte the cursor currently sits at. It does not
// rewind the byte cursor: those bits were already physically consumed
// from the input when they were buffered.
func (r *bitReader) align() {
	r.bitbuf = 0
	r.bitsleft = 0
}

// readByte, readU16, readU32 read literal little-endian values directly
// from the byte cursor, bypassing the bit buffer. Callers must align()
// first if any bits are still buffered from before the cursor position.
func (r *bitReader) readByte() uint8 {
	if r.pos >= len(r.buf) {
		return 0
	}
	b := r.buf[r.pos]
	r.pos++
	return b
}

func (r *bitReader) readU16() uint16 {
	lo := uint16(r.readByte())
	hi := uint16(r.readByte())
	return lo | hi<<8
}

func (r *bitReader) readU32() uint32 {
	lo := uint32(r.readU16())
	hi := uint32(r.readU16())
	return lo | hi<<16
}

// readBytes bulk-copies count bytes from the cursor into dst, which must
// have length count. It fails if insufficient input remains.
func (r *bitReader) readBytes(dst []byte) bool {
	if len(r.buf)-r.pos < len(dst) {
		return false
	}
	copy(dst, r.buf[r.pos:])
	r.pos += len(dst)
	return true
}
