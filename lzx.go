package woflz

// LZX decoding, WIM/WOF variant: no cross-chunk history, no Intel E8
// call-translation filter. Each chunk is decoded independently with its
// recent-offsets queue reset to {1, 1, 1}.

const (
	lzxNumPositionSlots = 30
	lzxMainNumSyms      = 256 + 8*lzxNumPositionSlots // 496
	lzxLengthNumSyms    = 249
	lzxPreCodeNumSyms   = 20
	lzxAlignedNumSyms   = 8

	lzxMainTableBits     = 11
	lzxLengthTableBits   = 10
	lzxAlignedTableBits  = 7
	lzxPreCodeTableBits  = 7
	lzxMainMaxLen        = 16
	lzxLengthMaxLen      = 15
	lzxAlignedMaxLen     = 7
	lzxPreCodeMaxLen     = 7

	lzxBlockVerbatim    = 1
	lzxBlockAligned     = 2
	lzxBlockUncompressed = 3
)

var (
	lzxExtraBits   [lzxNumPositionSlots]uint
	lzxPositionBase [lzxNumPositionSlots]int
)

func init() {
	bits := [lzxNumPositionSlots]uint{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
	lzxExtraBits = bits
	base := 0
	for i := 0; i < lzxNumPositionSlots; i++ {
		lzxPositionBase[i] = base
		base += 1 << bits[i]
	}
}

type lzxDecoderState struct {
	br             *bitReader
	recentOffsets  [3]int
	mainLens       [lzxMainNumSyms]uint8
	lengthLens     [lzxLengthNumSyms]uint8
	mainTable      []uint16
	lengthTable    []uint16
	alignedTable   []uint16
	preCodeTable   []uint16
	working        []uint16
}

func newLzxDecoderState(br *bitReader) *lzxDecoderState {
	maxWorking := lzxMainMaxLen + 1 + lzxMainNumSyms
	return &lzxDecoderState{
		br:            br,
		recentOffsets: [3]int{1, 1, 1},
		mainTable:     make([]uint16, huffmanTableSize(lzxMainTableBits, lzxMainNumSyms)),
		lengthTable:   make([]uint16, huffmanTableSize(lzxLengthTableBits, lzxLengthNumSyms)),
		alignedTable:  make([]uint16, huffmanTableSize(lzxAlignedTableBits, lzxAlignedNumSyms)),
		preCodeTable:  make([]uint16, huffmanTableSize(lzxPreCodeTableBits, lzxPreCodeNumSyms)),
		working:       make([]uint16, maxWorking),
	}
}

// readPreCodeLengths reads a fresh 20-symbol pre-code (4 bits per
// length, literal, not itself Huffman-coded), builds its decode table,
// and uses it to update numSyms worth of target lengths in place: each
// pre-code symbol is either a delta applied to the previous value (mod
// 17, since lengths run 0-16) or one of three run escapes.
func (s *lzxDecoderState) readPreCodeLengths(lens []uint8, numSyms int) error {
	var preLens [lzxPreCodeNumSyms]uint8
	for i := range preLens {
		preLens[i] = uint8(s.br.read(4))
	}
	if err := buildHuffmanTable(s.preCodeTable, lzxPreCodeNumSyms, lzxPreCodeTableBits, preLens[:], lzxPreCodeMaxLen, s.working); err != nil {
		return err
	}

	applyDelta := func(i int, delta uint8) uint8 {
		v := int(lens[i]) - int(delta)
		if v < 0 {
			v += 17
		}
		return uint8(v)
	}

	i := 0
	for i < numSyms {
		z, ok := decodeHuffmanSymbol(s.preCodeTable, lzxPreCodeTableBits, s.br)
		if !ok {
			return corruptf(-1, "invalid LZX pre-code symbol")
		}
		switch z {
		case 17:
			run := int(s.br.read(4)) + 4
			for j := 0; j < run && i < numSyms; j++ {
				lens[i] = 0
				i++
			}
		case 18:
			run := int(s.br.read(5)) + 20
			for j := 0; j < run && i < numSyms; j++ {
				lens[i] = 0
				i++
			}
		case 19:
			run := int(s.br.read(1)) + 4
			z2, ok := decodeHuffmanSymbol(s.preCodeTable, lzxPreCodeTableBits, s.br)
			if !ok {
				return corruptf(-1, "invalid LZX pre-code symbol")
			}
			v := applyDelta(i, uint8(z2))
			for j := 0; j < run && i < numSyms; j++ {
				lens[i] = v
				i++
			}
		default:
			lens[i] = applyDelta(i, uint8(z))
			i++
		}
	}
	return nil
}

func lzxDecode(dst, src []byte) error {
	br := newBitReader(src)
	s := newLzxDecoderState(br)

	if br.read(1) == 1 {
		br.align()
		if !br.readBytes(dst) {
			return corruptf(-1, "truncated LZX realigned literal block")
		}
		return nil
	}

	pos := 0
	for pos < len(dst) {
		blockType := br.read(3)
		blockSize := int(br.read(16))<<8 | int(br.read(8))

		switch blockType {
		case lzxBlockUncompressed:
			br.align()
			for i := 0; i < 3; i++ {
				s.recentOffsets[i] = int(br.readU32())
			}
			if pos+blockSize > len(dst) {
				return corruptf(-1, "LZX uncompressed block overflows output")
			}
			if !br.readBytes(dst[pos : pos+blockSize]) {
				return corruptf(-1, "truncated LZX uncompressed block")
			}
			pos += blockSize

		case lzxBlockVerbatim, lzxBlockAligned:
			var err error
			if blockType == lzxBlockAligned {
				var alignedLens [lzxAlignedNumSyms]uint8
				for i := range alignedLens {
					alignedLens[i] = uint8(br.read(3))
				}
				if err = buildHuffmanTable(s.alignedTable, lzxAlignedNumSyms, lzxAlignedTableBits, alignedLens[:], lzxAlignedMaxLen, s.working); err != nil {
					return err
				}
			}

			if err = s.readPreCodeLengths(s.mainLens[:], lzxMainNumSyms); err != nil {
				return err
			}
			if err = buildHuffmanTable(s.mainTable, lzxMainNumSyms, lzxMainTableBits, s.mainLens[:], lzxMainMaxLen, s.working); err != nil {
				return err
			}
			if err = s.readPreCodeLengths(s.lengthLens[:], lzxLengthNumSyms); err != nil {
				return err
			}
			if err = buildHuffmanTable(s.lengthTable, lzxLengthNumSyms, lzxLengthTableBits, s.lengthLens[:], lzxLengthMaxLen, s.working); err != nil {
				return err
			}

			blockEnd := pos + blockSize
			if blockEnd > len(dst) {
				return corruptf(-1, "LZX block overflows output")
			}
			for pos < blockEnd {
				main, ok := decodeHuffmanSymbol(s.mainTable, lzxMainTableBits, br)
				if !ok {
					return corruptf(-1, "invalid LZX main symbol at output offset %d", pos)
				}

				if main < 256 {
					dst[pos] = byte(main)
					pos++
					continue
				}

				m := int(main) - 256
				lengthHdr := m & 7
				slot := m >> 3

				length := lengthHdr + 2
				if lengthHdr == 7 {
					lsym, ok := decodeHuffmanSymbol(s.lengthTable, lzxLengthTableBits, br)
					if !ok {
						return corruptf(-1, "invalid LZX length symbol at output offset %d", pos)
					}
					length = 7 + 2 + int(lsym)
				}

				var offset int
				if slot < 3 {
					offset = s.recentOffsets[slot]
					switch slot {
					case 1:
						s.recentOffsets[1] = s.recentOffsets[0]
						s.recentOffsets[0] = offset
					case 2:
						s.recentOffsets[2] = s.recentOffsets[1]
						s.recentOffsets[1] = s.recentOffsets[0]
						s.recentOffsets[0] = offset
					}
				} else {
					extraBits := lzxExtraBits[slot]
					base := lzxPositionBase[slot]
					if blockType == lzxBlockAligned && extraBits >= 3 {
						top := int(br.read(extraBits - 3))
						asym, ok := decodeHuffmanSymbol(s.alignedTable, lzxAlignedTableBits, br)
						if !ok {
							return corruptf(-1, "invalid LZX aligned-offset symbol")
						}
						offset = base + (top << 3) + int(asym) - 2
					} else {
						offset = base + int(br.read(extraBits)) - 2
					}
					s.recentOffsets[2] = s.recentOffsets[1]
					s.recentOffsets[1] = s.recentOffsets[0]
					s.recentOffsets[0] = offset
				}

				if offset < 1 || offset > pos {
					return corruptf(-1, "LZX match offset %d underflows output at pos %d", offset, pos)
				}
				if pos+length > len(dst) {
					return corruptf(-1, "LZX match length %d overflows output buffer at pos %d", length, pos)
				}

				pos = lzCopy(dst, pos, length, offset)
			}

		default:
			return corruptf(-1, "unknown LZX block type %d", blockType)
		}
	}

	return nil
}
