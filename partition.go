package geometrize

import (
	"errors"
	"fmt"
	"math"

	"github.com/esimov/geometrize/utils"
	"golang.org/x/sync/errgroup"
)

// Default partitioning options.
const (
	DefaultDepth    = 1
	DefaultContrast = 0.5
	DefaultMinSize  = 5
)

var (
	// ErrDepth is returned for a negative recursion depth.
	ErrDepth = errors.New("geometrize: negative depth")
	// ErrContrast is returned for a contrast factor which is not a finite number.
	ErrContrast = errors.New("geometrize: contrast must be a finite number")
	// ErrMinSize is returned when the minimum region size leaves no room for a cut.
	ErrMinSize = errors.New("geometrize: minimum region size must be at least 3")
)

// AxisPolicy selects which cut directions are searched at each recursion level.
type AxisPolicy int

const (
	// BothAxes searches the horizontal and vertical cuts and keeps the one with the lower score.
	BothAxes AxisPolicy = iota
	// RowsOnly searches horizontal cuts only.
	RowsOnly
	// ColumnsOnly searches vertical cuts only.
	ColumnsOnly
)

// ParseAxisPolicy converts the command line name of a policy.
func ParseAxisPolicy(s string) (AxisPolicy, error) {
	switch s {
	case "both", "":
		return BothAxes, nil
	case "rows", "row", "h":
		return RowsOnly, nil
	case "cols", "columns", "column", "v":
		return ColumnsOnly, nil
	}
	return BothAxes, fmt.Errorf("unknown axis policy %q", s)
}

func (p AxisPolicy) String() string {
	switch p {
	case RowsOnly:
		return "rows"
	case ColumnsOnly:
		return "cols"
	}
	return "both"
}

// Rounding selects how contrast reduced values are converted back to pixels.
// Both modes saturate to the [0, 65535] range first.
type Rounding int

const (
	// Truncate drops the fractional part.
	Truncate Rounding = iota
	// Round rounds half away from zero.
	Round
)

// Geometrizer recursively cuts a buffer in two along the cut separating best its intensities
// and pulls the pixels of every part toward the part's mean.
type Geometrizer struct {
	// Depth is the number of recursion levels, zero leaves the buffer untouched.
	Depth int
	// Contrast scales the distance of each pixel from its region mean.
	// 1 keeps the pixels, values below 1 reduce the contrast.
	Contrast float64
	// MinSize is the smallest region extent which is still cut. Zero means DefaultMinSize.
	MinSize int
	// Axes is the searched cut directions.
	Axes AxisPolicy
	// RawScore disables the normalization of the cut score by the region extent.
	RawScore bool
	// Rounding is the float to pixel conversion mode.
	Rounding Rounding
	// Workers bounds the number of goroutines processing sibling regions. Values up to 1 run serially.
	Workers int
	// Observer, if set, receives every chosen cut.
	Observer Observer
}

// NewGeometrizer returns a geometrizer with the default options.
func NewGeometrizer(depth int, contrast float64) *Geometrizer {
	return &Geometrizer{
		Depth:    depth,
		Contrast: contrast,
		MinSize:  DefaultMinSize,
	}
}

// Validate checks the options.
func (g *Geometrizer) Validate() error {
	if g.Depth < 0 {
		return fmt.Errorf("%w: %d", ErrDepth, g.Depth)
	}
	if math.IsNaN(g.Contrast) || math.IsInf(g.Contrast, 0) {
		return fmt.Errorf("%w: %v", ErrContrast, g.Contrast)
	}
	if g.MinSize != 0 && g.MinSize < minCutExtent {
		return fmt.Errorf("%w: %d", ErrMinSize, g.MinSize)
	}
	return nil
}

func (g *Geometrizer) minSize() int {
	if g.MinSize == 0 {
		return DefaultMinSize
	}
	return g.MinSize
}

// Geometrize partitions the whole buffer.
func (g *Geometrizer) Geometrize(b *Buffer) error {
	return g.Partition(b, b.Full(), g.Depth)
}

// Partition processes the view for depth recursion levels.
func (g *Geometrizer) Partition(b *Buffer, v View, depth int) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if !b.Contains(v) {
		return fmt.Errorf("geometrize: view %v outside of %dx%d buffer", v, b.Width, b.Height)
	}
	if g.Workers <= 1 {
		return g.partition(b, v, depth, 0, nil)
	}

	eg := new(errgroup.Group)
	eg.SetLimit(g.Workers - 1)
	err := g.partition(b, v, depth, 0, eg)
	if werr := eg.Wait(); err == nil {
		err = werr
	}
	return err
}

func (g *Geometrizer) partition(b *Buffer, v View, depth, level int, eg *errgroup.Group) error {
	if depth <= 0 || !g.canCut(v) {
		return nil
	}

	cut, err := g.bestCut(b, v)
	if err != nil {
		return err
	}
	if g.Observer != nil {
		g.Observer.Observe(Step{Level: level, View: v, Cut: cut})
	}

	first, second := v.Split(cut.Axis, cut.Coord)
	ReduceContrast(b, first, cut.MeanA, g.Contrast, g.Rounding)
	ReduceContrast(b, second, cut.MeanB, g.Contrast, g.Rounding)

	// The two parts are disjoint, the first one may be handed to an idle worker.
	if eg != nil && eg.TryGo(func() error {
		return g.partition(b, first, depth-1, level+1, eg)
	}) {
		return g.partition(b, second, depth-1, level+1, eg)
	}
	if err := g.partition(b, first, depth-1, level+1, eg); err != nil {
		return err
	}
	return g.partition(b, second, depth-1, level+1, eg)
}

func (g *Geometrizer) canCut(v View) bool {
	size := g.minSize()
	switch g.Axes {
	case RowsOnly:
		return v.Height >= size
	case ColumnsOnly:
		return v.Width >= size
	}
	return v.Width >= size && v.Height >= size
}

func (g *Geometrizer) bestCut(b *Buffer, v View) (Cut, error) {
	normalize := !g.RawScore
	switch g.Axes {
	case RowsOnly:
		return BestCut(b, v, Row, normalize)
	case ColumnsOnly:
		return BestCut(b, v, Column, normalize)
	}
	return BestCutBoth(b, v, normalize)
}

// ReduceContrast replaces every pixel p of the view with mean + (p-mean)*contrast.
// A contrast of 1 leaves the pixels untouched.
func ReduceContrast(b *Buffer, v View, mean, contrast float64, rounding Rounding) {
	if contrast == 1 {
		return
	}
	for y := 0; y < v.Height; y++ {
		row := b.offset(v, 0, y)
		pix := b.Pix[row : row+v.Width]
		for i, p := range pix {
			pix[i] = toPixel(mean+(float64(p)-mean)*contrast, rounding)
		}
	}
}

// toPixel converts the value to a pixel, saturating out of range values.
func toPixel(f float64, rounding Rounding) uint16 {
	if rounding == Round {
		f = math.Round(f)
	}
	return uint16(utils.Clamp(f, 0, math.MaxUint16))
}
