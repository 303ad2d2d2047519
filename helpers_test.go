package geometrize

import "math/rand"

// newTestBuffer returns a buffer filled by the fill function.
func newTestBuffer(width, height int, fill func(x, y int) uint16) *Buffer {
	b := NewBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.Pix[y*width+x] = fill(x, y)
		}
	}
	return b
}

// randomBuffer returns a buffer of pseudo random intensities, reproducible for the seed.
func randomBuffer(width, height int, seed int64) *Buffer {
	rnd := rand.New(rand.NewSource(seed))
	return newTestBuffer(width, height, func(x, y int) uint16 {
		return uint16(rnd.Intn(1 << 16))
	})
}

// halvesBuffer returns the 8x8 image with a bright top half and a dark bottom half.
func halvesBuffer() *Buffer {
	return newTestBuffer(8, 8, func(x, y int) uint16 {
		if y < 4 {
			return 60000
		}
		return 100
	})
}
