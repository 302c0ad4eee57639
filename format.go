package woflz

import "fmt"

// CompressionFormat identifies which WOF compression algorithm produced a
// stream, and therefore the chunk size and decoder to use.
type CompressionFormat int8

const (
	Xpress4K CompressionFormat = iota
	Xpress8K
	Xpress16K
	Lzx32K
)

func (f CompressionFormat) String() string {
	switch f {
	case Xpress4K:
		return "XPRESS4K"
	case Xpress8K:
		return "XPRESS8K"
	case Xpress16K:
		return "XPRESS16K"
	case Lzx32K:
		return "LZX32K"
	default:
		return fmt.Sprintf("CompressionFormat(%d)", int8(f))
	}
}

// ChunkSize is the fixed logical chunk size for the format, in bytes.
func (f CompressionFormat) ChunkSize() uint32 {
	switch f {
	case Xpress4K:
		return 4096
	case Xpress8K:
		return 8192
	case Xpress16K:
		return 16384
	case Lzx32K:
		return 32768
	default:
		return 0
	}
}

// valid reports whether f is one of the four formats this package knows
// how to decode.
func (f CompressionFormat) valid() bool {
	return f >= Xpress4K && f <= Lzx32K
}

// decodeChunk decompresses one chunk's worth of compressed bytes into dst,
// which must be exactly sized to the expected uncompressed length of the
// chunk (the format's ChunkSize, except possibly a short final chunk).
func decodeChunk(f CompressionFormat, dst, src []byte) error {
	switch f {
	case Xpress4K, Xpress8K, Xpress16K:
		return xpressDecode(dst, src)
	case Lzx32K:
		return lzxDecode(dst, src)
	default:
		return fmt.Errorf("%w: unsupported compression format %v", ErrInvalidFormat, f)
	}
}
