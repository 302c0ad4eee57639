package woflz

import (
	"bytes"
	"testing"
)

func TestLZCopyOffsetOneIsRunLength(t *testing.T) {
	dst := make([]byte, 16)
	dst[0] = 'x'
	end := lzCopy(dst, 1, 10, 1)
	if end != 11 {
		t.Fatalf("end = %d, want 11", end)
	}
	for i := 0; i < 11; i++ {
		if dst[i] != 'x' {
			t.Fatalf("dst[%d] = %q, want 'x'", i, dst[i])
		}
	}
}

func TestLZCopyOffsetGreaterThanLengthActsLikeMemcpy(t *testing.T) {
	dst := make([]byte, 32)
	copy(dst, []byte("abcdefgh"))
	end := lzCopy(dst, 8, 4, 8) // offset 8 > length 4: non-overlapping
	if end != 12 {
		t.Fatalf("end = %d, want 12", end)
	}
	if !bytes.Equal(dst[8:12], []byte("abcd")) {
		t.Fatalf("dst[8:12] = %q, want \"abcd\"", dst[8:12])
	}

	dst2 := make([]byte, 32)
	copy(dst2, []byte("abcdefgh"))
	end = lzCopy(dst2, 8, 3, 5) // offset > length
	if end != 11 {
		t.Fatalf("end = %d, want 11", end)
	}
}

func TestLZCopyOverlappingShortOffset(t *testing.T) {
	// offset 2 < length 5: classic overlapping LZ77 expansion, e.g.
	// "ab" repeated to fill 5 bytes: "ababa".
	dst := make([]byte, 16)
	copy(dst, []byte("ab"))
	end := lzCopy(dst, 2, 5, 2)
	if end != 7 {
		t.Fatalf("end = %d, want 7", end)
	}
	if !bytes.Equal(dst[:7], []byte("abababa")[:7]) {
		t.Fatalf("dst[:7] = %q, want \"abababa\"", dst[:7])
	}
}
