package geometrize

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometrize_HalvesScenario(t *testing.T) {
	b := halvesBuffer()
	orig := b.Clone()

	rec := &Recorder{}
	g := NewGeometrizer(1, 0.5)
	g.Observer = rec
	require.NoError(t, g.Geometrize(b))

	assert.Equal(t, orig.Pix, b.Pix)

	steps := rec.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, 0, steps[0].Level)
	assert.Equal(t, b.Full(), steps[0].View)
	assert.Equal(t, Row, steps[0].Cut.Axis)
	assert.Equal(t, 4, steps[0].Cut.Coord)
	assert.Equal(t, 60000.0, steps[0].Cut.MeanA)
	assert.Equal(t, 100.0, steps[0].Cut.MeanB)
}

func TestGeometrize_ZeroDepthLeavesBufferUntouched(t *testing.T) {
	b := randomBuffer(16, 16, 3)
	orig := b.Clone()

	rec := &Recorder{}
	g := NewGeometrizer(0, 0.5)
	g.Observer = rec
	require.NoError(t, g.Geometrize(b))

	assert.Equal(t, orig.Pix, b.Pix)
	assert.Empty(t, rec.Steps())
}

func TestGeometrize_SmallViewsAreNotCut(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		axes          AxisPolicy
		minSize       int
	}{
		{"narrow", 4, 20, BothAxes, 0},
		{"flat", 20, 4, BothAxes, 5},
		{"rows only", 20, 2, RowsOnly, 3},
		{"columns only", 2, 20, ColumnsOnly, 3},
		{"custom min size", 9, 9, BothAxes, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := randomBuffer(tc.width, tc.height, 11)
			orig := b.Clone()

			rec := &Recorder{}
			g := &Geometrizer{Depth: 5, Contrast: 0.5, MinSize: tc.minSize, Axes: tc.axes, Observer: rec}
			require.NoError(t, g.Geometrize(b))

			assert.Equal(t, orig.Pix, b.Pix)
			assert.Empty(t, rec.Steps())
		})
	}
}

func TestGeometrize_RecursionLevels(t *testing.T) {
	// Left half: 1000 above 2000, right half: 30000 above 40000.
	b := newTestBuffer(20, 20, func(x, y int) uint16 {
		switch {
		case x < 10 && y < 10:
			return 1000
		case x < 10:
			return 2000
		case y < 10:
			return 30000
		}
		return 40000
	})

	rec := &Recorder{}
	g := NewGeometrizer(2, 0.5)
	g.Observer = rec
	require.NoError(t, g.Geometrize(b))

	steps := rec.Steps()
	require.Len(t, steps, 3)

	assert.Equal(t, 0, steps[0].Level)
	assert.Equal(t, Column, steps[0].Cut.Axis)
	assert.Equal(t, 10, steps[0].Cut.Coord)
	assert.Equal(t, 1500.0, steps[0].Cut.MeanA)
	assert.Equal(t, 35000.0, steps[0].Cut.MeanB)

	assert.Equal(t, 1, steps[1].Level)
	assert.Equal(t, View{X: 0, Y: 0, Width: 10, Height: 20}, steps[1].View)
	assert.Equal(t, Row, steps[1].Cut.Axis)
	assert.Equal(t, 10, steps[1].Cut.Coord)
	assert.Equal(t, 1250.0, steps[1].Cut.MeanA)
	assert.Equal(t, 1750.0, steps[1].Cut.MeanB)

	assert.Equal(t, 1, steps[2].Level)
	assert.Equal(t, View{X: 10, Y: 0, Width: 10, Height: 20}, steps[2].View)
	assert.Equal(t, Row, steps[2].Cut.Axis)

	full := b.Full()
	assert.Equal(t, uint16(1250), b.At(full, 0, 0))
	assert.Equal(t, uint16(1750), b.At(full, 9, 19))
	assert.Equal(t, uint16(32500), b.At(full, 10, 0))
	assert.Equal(t, uint16(37500), b.At(full, 19, 19))
}

func TestGeometrize_ContrastReductionTruncatesByDefault(t *testing.T) {
	profile := []uint16{10, 20, 1000, 1010}
	newBuf := func() *Buffer {
		return newTestBuffer(1, len(profile), func(x, y int) uint16 { return profile[y] })
	}

	b := newBuf()
	g := &Geometrizer{Depth: 1, Contrast: 0.5, MinSize: 3, Axes: RowsOnly}
	require.NoError(t, g.Geometrize(b))
	assert.Equal(t, []uint16{12, 17, 1002, 1007}, b.Pix)

	b = newBuf()
	g.Rounding = Round
	require.NoError(t, g.Geometrize(b))
	assert.Equal(t, []uint16{13, 18, 1003, 1008}, b.Pix)
}

func TestGeometrize_UnitContrastIsNoop(t *testing.T) {
	b := randomBuffer(40, 30, 5)
	orig := b.Clone()

	rec := &Recorder{}
	g := NewGeometrizer(4, 1)
	g.Observer = rec
	require.NoError(t, g.Geometrize(b))

	assert.Equal(t, orig.Pix, b.Pix)
	assert.NotEmpty(t, rec.Steps())
}

func TestGeometrize_ParallelMatchesSerial(t *testing.T) {
	serial := randomBuffer(64, 48, 21)
	parallel := serial.Clone()

	serialRec, parallelRec := &Recorder{}, &Recorder{}

	g := NewGeometrizer(6, 0.5)
	g.Observer = serialRec
	require.NoError(t, g.Geometrize(serial))

	g = NewGeometrizer(6, 0.5)
	g.Workers = 4
	g.Observer = parallelRec
	require.NoError(t, g.Geometrize(parallel))

	assert.Equal(t, serial.Pix, parallel.Pix)
	assert.ElementsMatch(t, serialRec.Steps(), parallelRec.Steps())
}

func TestGeometrize_DepthBoundsTheCuts(t *testing.T) {
	for depth := 0; depth <= 4; depth++ {
		b := randomBuffer(64, 64, 8)
		rec := &Recorder{}
		g := NewGeometrizer(depth, 0.5)
		g.Observer = rec
		require.NoError(t, g.Geometrize(b))

		steps := rec.Steps()
		assert.LessOrEqual(t, len(steps), (1<<depth)-1)
		for _, s := range steps {
			assert.Less(t, s.Level, depth)
		}
	}
}

func TestGeometrizer_Validate(t *testing.T) {
	b := NewBuffer(8, 8)

	assert.ErrorIs(t, (&Geometrizer{Depth: -1}).Geometrize(b), ErrDepth)
	assert.ErrorIs(t, (&Geometrizer{Depth: 1, Contrast: math.NaN()}).Geometrize(b), ErrContrast)
	assert.ErrorIs(t, (&Geometrizer{Depth: 1, Contrast: math.Inf(1)}).Geometrize(b), ErrContrast)
	assert.ErrorIs(t, (&Geometrizer{Depth: 1, Contrast: 0.5, MinSize: 2}).Geometrize(b), ErrMinSize)
	assert.NoError(t, (&Geometrizer{Depth: 1, Contrast: 2}).Validate())

	err := NewGeometrizer(1, 0.5).Partition(b, View{X: 4, Y: 4, Width: 5, Height: 5}, 1)
	assert.Error(t, err)
}

func TestReduceContrast_Saturates(t *testing.T) {
	b := &Buffer{Width: 2, Height: 1, Pix: []uint16{0, 65535}}

	ReduceContrast(b, b.Full(), 32767.5, 2, Truncate)
	assert.Equal(t, []uint16{0, 65535}, b.Pix)

	ReduceContrast(b, b.Full(), 32767.5, -1, Truncate)
	assert.Equal(t, []uint16{65535, 0}, b.Pix)

	b = &Buffer{Width: 3, Height: 1, Pix: []uint16{100, 200, 300}}
	ReduceContrast(b, b.Full(), 200, 0, Truncate)
	assert.Equal(t, []uint16{200, 200, 200}, b.Pix)
}

func TestReduceContrast_OnlyTouchesTheView(t *testing.T) {
	b := randomBuffer(6, 6, 2)
	orig := b.Clone()
	v := View{X: 1, Y: 2, Width: 3, Height: 2}

	ReduceContrast(b, v, 0, 0, Truncate)

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if image.Pt(x, y).In(v.Rect()) {
				assert.Equal(t, uint16(0), b.At(b.Full(), x, y))
			} else {
				assert.Equal(t, orig.At(orig.Full(), x, y), b.At(b.Full(), x, y))
			}
		}
	}
}

func TestParseAxisPolicy(t *testing.T) {
	for in, want := range map[string]AxisPolicy{
		"both": BothAxes, "": BothAxes, "rows": RowsOnly, "cols": ColumnsOnly, "columns": ColumnsOnly,
	} {
		got, err := ParseAxisPolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseAxisPolicy("diagonal")
	assert.Error(t, err)
	assert.Equal(t, "rows", RowsOnly.String())
}

func BenchmarkGeometrize(b *testing.B) {
	src := randomBuffer(256, 256, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf := src.Clone()
		if err := NewGeometrizer(6, 0.5).Geometrize(buf); err != nil {
			b.Fatal(err)
		}
	}
}
