package geometrize

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when the destination extension has no known encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ToBuffer converts any image to a 16-bit grayscale buffer with the origin at (0, 0).
func ToBuffer(img image.Image) *Buffer {
	bounds := img.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()
	dst := NewBuffer(dx, dy)

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < dy; y++ {
			si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			di := y * dx
			for x := 0; x < dx; x++ {
				dst.Pix[di+x] = uint16(src.Pix[si])<<8 | uint16(src.Pix[si+1])
				si += 2
			}
		}
	case *image.Gray:
		for y := 0; y < dy; y++ {
			si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			di := y * dx
			for x := 0; x < dx; x++ {
				dst.Pix[di+x] = uint16(src.Pix[si+x]) * 0x101
			}
		}
	default:
		for y := 0; y < dy; y++ {
			di := y * dx
			for x := 0; x < dx; x++ {
				c := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				dst.Pix[di+x] = c.Y
			}
		}
	}
	return dst
}

// ToGray16 copies the buffer into a new *image.Gray16.
func (b *Buffer) ToGray16() *image.Gray16 {
	dst := image.NewGray16(b.Bounds())
	for i, p := range b.Pix {
		dst.Pix[2*i] = uint8(p >> 8)
		dst.Pix[2*i+1] = uint8(p)
	}
	return dst
}

// decodeImg decodes the source, applying the EXIF orientation of JPEG files.
func decodeImg(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	return img, nil
}

// scaleImg resizes the image into a 16-bit grayscale image. A zero width or height
// is computed from the other one, preserving the aspect ratio. An empty source gives an empty image.
func scaleImg(src image.Image, width, height int) *image.Gray16 {
	b := src.Bounds()
	if b.Empty() {
		return image.NewGray16(image.Rectangle{})
	}
	if width == 0 && height == 0 {
		width, height = b.Dx(), b.Dy()
	}
	if width == 0 {
		width = int(float64(b.Dx()) * float64(height) / float64(b.Dy()))
	}
	if height == 0 {
		height = int(float64(b.Dy()) * float64(width) / float64(b.Dx()))
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewGray16(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// encodeImg encodes the image to the writer. The format of files is selected by their
// extension, every other writer (e.g. a pipe) receives PNG data.
func encodeImg(w io.Writer, img image.Image) error {
	format := imaging.PNG
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		var err error
		format, err = imaging.FormatFromFilename(f.Name())
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Name())
		}
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(100))
}

// drawCuts draws the cut lines of the trace at full intensity.
func drawCuts(b *Buffer, steps []Step) {
	white := image.NewUniform(color.Gray16{Y: 0xffff})
	dst := b.Image()

	for _, s := range steps {
		var line image.Rectangle
		r := s.View.Rect()
		switch s.Cut.Axis {
		case Row:
			y := r.Min.Y + s.Cut.Coord
			line = image.Rect(r.Min.X, y, r.Max.X, y+1)
		default:
			x := r.Min.X + s.Cut.Coord
			line = image.Rect(x, r.Min.Y, x+1, r.Max.Y)
		}
		draw.Draw(dst, line, white, image.Point{}, draw.Src)
	}
}
