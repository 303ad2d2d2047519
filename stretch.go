package geometrize

import "math"

// Stretch remaps the intensities linearly so that the darkest pixel becomes 0
// and the brightest 65535. A buffer with a single intensity is left unchanged.
func Stretch(b *Buffer) {
	if len(b.Pix) == 0 {
		return
	}

	lo, hi := b.Pix[0], b.Pix[0]
	for _, p := range b.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if lo == hi {
		return
	}

	span := uint32(hi - lo)
	for i, p := range b.Pix {
		b.Pix[i] = uint16(uint32(p-lo) * math.MaxUint16 / span)
	}
}
