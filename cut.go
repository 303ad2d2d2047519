package geometrize

import (
	"errors"
	"fmt"
	"math"
)

// ErrViewTooSmall is returned when a view has no interior cut position along the requested axis.
var ErrViewTooSmall = errors.New("geometrize: view too small for a cut")

// minCutExtent is the smallest extent with at least one interior cut position.
const minCutExtent = 3

// Cut describes an axis aligned split of a view.
// Coord is relative to the view origin, MeanA and MeanB are the means of the
// first (top or left) and second (bottom or right) parts.
type Cut struct {
	Axis  Axis
	Coord int
	MeanA float64
	MeanB float64
	Score float64
}

func (c Cut) String() string {
	return fmt.Sprintf("%s cut at %d (means %.2f / %.2f, score %.4f)", c.Axis, c.Coord, c.MeanA, c.MeanB, c.Score)
}

// BestCut searches every interior coordinate of the view along the axis and returns the cut
// with the lowest score. The score of a cut is the variance of each part weighted by its size
// along the axis, divided by the view extent when normalize is set.
// On equal scores the lowest coordinate wins.
func BestCut(b *Buffer, v View, axis Axis, normalize bool) (Cut, error) {
	extent := v.Extent(axis)
	if extent < minCutExtent {
		return Cut{}, fmt.Errorf("%w: %s extent %d", ErrViewTooSmall, axis, extent)
	}

	best := Cut{Axis: axis, Score: math.Inf(1)}
	for coord := 1; coord < extent-1; coord++ {
		va, vb := v.Split(axis, coord)

		sa, err := RegionStats(b, va)
		if err != nil {
			return Cut{}, err
		}
		sb, err := RegionStats(b, vb)
		if err != nil {
			return Cut{}, err
		}

		score := sa.Variance*float64(coord) + sb.Variance*float64(extent-coord)
		if normalize {
			score /= float64(extent)
		}
		if score < best.Score {
			best = Cut{
				Axis:  axis,
				Coord: coord,
				MeanA: sa.Mean,
				MeanB: sb.Mean,
				Score: score,
			}
		}
	}
	return best, nil
}

// BestCutBoth evaluates the horizontal then the vertical cut and returns the one with the lower score.
// The vertical cut has to be strictly better to win, so equal scores keep the horizontal cut.
func BestCutBoth(b *Buffer, v View, normalize bool) (Cut, error) {
	h, err := BestCut(b, v, Row, normalize)
	if err != nil {
		return Cut{}, err
	}
	c, err := BestCut(b, v, Column, normalize)
	if err != nil {
		return Cut{}, err
	}
	if c.Score < h.Score {
		return c, nil
	}
	return h, nil
}
