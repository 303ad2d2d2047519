package geometrize

import "errors"

// ErrEmptyView is returned when statistics are requested over a view without pixels.
var ErrEmptyView = errors.New("geometrize: empty view")

// Stats holds the intensity statistics of a region.
type Stats struct {
	Mean     float64
	Variance float64
}

// RegionStats computes the mean and the population variance of the pixel intensities
// covered by the view. It makes two passes over the pixels and never writes to the buffer.
func RegionStats(b *Buffer, v View) (Stats, error) {
	n := v.Area()
	if n <= 0 {
		return Stats{}, ErrEmptyView
	}

	var sum float64
	for y := 0; y < v.Height; y++ {
		row := b.offset(v, 0, y)
		for _, p := range b.Pix[row : row+v.Width] {
			sum += float64(p)
		}
	}
	mean := sum / float64(n)

	var sq float64
	for y := 0; y < v.Height; y++ {
		row := b.offset(v, 0, y)
		for _, p := range b.Pix[row : row+v.Width] {
			d := float64(p) - mean
			sq += d * d
		}
	}

	return Stats{Mean: mean, Variance: sq / float64(n)}, nil
}
