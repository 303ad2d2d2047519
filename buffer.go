package geometrize

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Buffer holds the 16-bit grayscale samples of an image in row-major order.
// It is the single owner of the pixel storage; views only describe rectangles over it.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint16
}

// View is a rectangular window over a Buffer, defined by its origin and extent.
// It does not reference the buffer, every pixel access goes through the Buffer methods.
type View struct {
	X, Y          int
	Width, Height int
}

// Axis selects the direction along which a view is cut.
type Axis int

const (
	// Row cuts the view horizontally, iterating over its rows.
	Row Axis = iota
	// Column cuts the view vertically, iterating over its columns.
	Column
)

func (a Axis) String() string {
	switch a {
	case Row:
		return "row"
	case Column:
		return "column"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

var _ draw.Image = bufferImage{}

// NewBuffer allocates a zero filled buffer of the given size.
func NewBuffer(width, height int) *Buffer {
	if width < 0 || height < 0 {
		panic("geometrize: negative buffer size")
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint16, width*height),
	}
}

// Full returns the view covering the whole buffer.
func (b *Buffer) Full() View {
	return View{Width: b.Width, Height: b.Height}
}

// At returns the pixel at the local (x, y) coordinate of the view.
func (b *Buffer) At(v View, x, y int) uint16 {
	return b.Pix[b.offset(v, x, y)]
}

// Set replaces the pixel at the local (x, y) coordinate of the view.
func (b *Buffer) Set(v View, x, y int, p uint16) {
	b.Pix[b.offset(v, x, y)] = p
}

func (b *Buffer) offset(v View, x, y int) int {
	return (v.Y+y)*b.Width + v.X + x
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	dst := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint16, len(b.Pix))}
	copy(dst.Pix, b.Pix)
	return dst
}

// Bounds returns the buffer rectangle.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

// Gray16At returns the color of the pixel at (x, y) in buffer coordinates.
func (b *Buffer) Gray16At(x, y int) color.Gray16 {
	if !(image.Point{x, y}.In(b.Bounds())) {
		return color.Gray16{}
	}
	return color.Gray16{Y: b.Pix[y*b.Width+x]}
}

// Image exposes the buffer as a draw.Image sharing the same pixels.
func (b *Buffer) Image() draw.Image { return bufferImage{b} }

// bufferImage adapts the buffer to the draw.Image interface,
// whose At method signature differs from the view based accessor.
type bufferImage struct{ b *Buffer }

func (im bufferImage) ColorModel() color.Model { return color.Gray16Model }

func (im bufferImage) Bounds() image.Rectangle { return im.b.Bounds() }

func (im bufferImage) At(x, y int) color.Color { return im.b.Gray16At(x, y) }

func (im bufferImage) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(im.b.Bounds())) {
		return
	}
	im.b.Pix[y*im.b.Width+x] = color.Gray16Model.Convert(c).(color.Gray16).Y
}

// Contains reports whether the view lies completely inside the buffer.
func (b *Buffer) Contains(v View) bool {
	return v.X >= 0 && v.Y >= 0 && v.Width >= 0 && v.Height >= 0 &&
		v.X+v.Width <= b.Width && v.Y+v.Height <= b.Height
}

// Area returns the number of pixels covered by the view.
func (v View) Area() int {
	return v.Width * v.Height
}

// Extent returns the size of the view along the axis.
func (v View) Extent(axis Axis) int {
	if axis == Row {
		return v.Height
	}
	return v.Width
}

// Rect returns the view as an image.Rectangle in buffer coordinates.
func (v View) Rect() image.Rectangle {
	return image.Rect(v.X, v.Y, v.X+v.Width, v.Y+v.Height)
}

// Sub returns the window of the given origin and size, relative to the view's own origin.
// It panics if the window is not fully contained in v.
func (v View) Sub(x, y, width, height int) View {
	if x < 0 || y < 0 || width < 0 || height < 0 || x+width > v.Width || y+height > v.Height {
		panic(fmt.Sprintf("geometrize: sub view (%d,%d %dx%d) out of %dx%d view", x, y, width, height, v.Width, v.Height))
	}
	return View{X: v.X + x, Y: v.Y + y, Width: width, Height: height}
}

// Split divides the view in two at coord along the axis. For a Row cut the first view is the
// top part with coord rows, for a Column cut it is the left part with coord columns.
func (v View) Split(axis Axis, coord int) (View, View) {
	switch axis {
	case Row:
		return v.Sub(0, 0, v.Width, coord), v.Sub(0, coord, v.Width, v.Height-coord)
	default:
		return v.Sub(0, 0, coord, v.Height), v.Sub(coord, 0, v.Width-coord, v.Height)
	}
}

func (v View) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", v.X, v.Y, v.Width, v.Height)
}
