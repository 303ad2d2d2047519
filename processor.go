package geometrize

import (
	"image"
	"io"

	"github.com/esimov/geometrize/utils"
)

// Processor options
type Processor struct {
	Depth     int
	Contrast  float64
	MinSize   int
	Axes      AxisPolicy
	RawScore  bool
	Rounding  Rounding
	Workers   int
	NewWidth  int
	NewHeight int
	Stretch   bool
	Debug     bool
	Observer  Observer
	Spinner   *utils.Spinner
}

// NewProcessor returns a processor with the default depth and contrast.
func NewProcessor() *Processor {
	return &Processor{
		Depth:    DefaultDepth,
		Contrast: DefaultContrast,
		MinSize:  DefaultMinSize,
	}
}

// Geometrizer builds the partitioner configured by the processor options.
func (p *Processor) Geometrizer() *Geometrizer {
	return &Geometrizer{
		Depth:    p.Depth,
		Contrast: p.Contrast,
		MinSize:  p.MinSize,
		Axes:     p.Axes,
		RawScore: p.RawScore,
		Rounding: p.Rounding,
		Workers:  p.Workers,
		Observer: p.Observer,
	}
}

// Geometrize converts the image to 16-bit grayscale, scaling it first if a new size is requested,
// then partitions it. The intensity range is stretched afterward if the Stretch option is set.
func (p *Processor) Geometrize(img image.Image) (*Buffer, error) {
	if p.NewWidth > 0 || p.NewHeight > 0 {
		img = scaleImg(img, p.NewWidth, p.NewHeight)
	}
	buf := ToBuffer(img)

	g := p.Geometrizer()
	var rec *Recorder
	if p.Debug {
		rec = &Recorder{}
		g.Observer = MultiObserver(p.Observer, rec)
	}
	if err := g.Geometrize(buf); err != nil {
		return nil, err
	}

	if p.Stretch {
		Stretch(buf)
	}
	if rec != nil {
		drawCuts(buf, rec.Steps())
	}
	return buf, nil
}

// Process decodes the source image, geometrizes it and encodes the result into the writer.
// We are using the io package, since we can provide different input and output types,
// as long as they implement the io.Reader and io.Writer interface.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	src, err := decodeImg(r)
	if err != nil {
		return err
	}

	buf, err := p.Geometrize(src)
	if err != nil {
		return err
	}
	return encodeImg(w, buf.ToGray16())
}
