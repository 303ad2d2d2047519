package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/esimov/geometrize"
)

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Environment variables providing the flag defaults. They can be set in a .env file.
const (
	envDepth    = "GEOMETRIZE_DEPTH"
	envContrast = "GEOMETRIZE_CONTRAST"
	envMinSize  = "GEOMETRIZE_MINSIZE"
	envAxes     = "GEOMETRIZE_AXES"
	envStretch  = "GEOMETRIZE_STRETCH"
	envWorkers  = "GEOMETRIZE_WORKERS"
)

// config holds the parsed command line.
type config struct {
	source      string
	destination string
	depth       int
	contrast    float64
	minSize     int
	axes        geometrize.AxisPolicy
	rawScore    bool
	round       bool
	stretch     bool
	newWidth    int
	newHeight   int
	debug       bool
	trace       bool
	workers     int
	conc        int
	version     bool
}

// defaults returns the configuration seeded from the environment.
func defaults(getenv func(string) string) (*config, error) {
	cfg := &config{
		source:      pipeName,
		destination: pipeName,
		depth:       geometrize.DefaultDepth,
		contrast:    geometrize.DefaultContrast,
		minSize:     geometrize.DefaultMinSize,
		workers:     1,
	}

	var err error
	if v := getenv(envDepth); v != "" {
		if cfg.depth, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envDepth, err)
		}
	}
	if v := getenv(envContrast); v != "" {
		if cfg.contrast, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envContrast, err)
		}
	}
	if v := getenv(envMinSize); v != "" {
		if cfg.minSize, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envMinSize, err)
		}
	}
	if v := getenv(envAxes); v != "" {
		if cfg.axes, err = geometrize.ParseAxisPolicy(v); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envAxes, err)
		}
	}
	if v := getenv(envStretch); v != "" {
		if cfg.stretch, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envStretch, err)
		}
	}
	if v := getenv(envWorkers); v != "" {
		if cfg.workers, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envWorkers, err)
		}
	}
	return cfg, nil
}

// axesFlag adapts the axis policy to the flag.Value interface.
type axesFlag struct{ p *geometrize.AxisPolicy }

func (f axesFlag) String() string {
	if f.p == nil {
		return geometrize.BothAxes.String()
	}
	return f.p.String()
}

func (f axesFlag) Set(s string) error {
	p, err := geometrize.ParseAxisPolicy(s)
	if err != nil {
		return err
	}
	*f.p = p
	return nil
}

// parseArgs parses the command line arguments. Besides the flags the source, destination,
// depth and contrast can be given as positional arguments, in this order.
func parseArgs(args []string, getenv func(string) string, output io.Writer) (*config, error) {
	fs := flag.NewFlagSet("geometrize", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, HelpBanner, Version)
		fmt.Fprintf(output, "Usage: geometrize [flags] SOURCE DESTINATION [DEPTH [CONTRAST]]\n\n")
		fs.PrintDefaults()
	}

	cfg, err := defaults(getenv)
	if err != nil {
		fs.Usage()
		return nil, err
	}

	fs.StringVar(&cfg.source, "in", cfg.source, "Source image, directory or URL")
	fs.StringVar(&cfg.destination, "out", cfg.destination, "Destination image or directory")
	fs.IntVar(&cfg.depth, "depth", cfg.depth, "Recursion depth")
	fs.Float64Var(&cfg.contrast, "contrast", cfg.contrast, "Contrast factor applied inside every region")
	fs.IntVar(&cfg.minSize, "minsize", cfg.minSize, "Minimum region size still cut")
	fs.Var(axesFlag{&cfg.axes}, "axes", "Cut directions: both, rows or cols")
	fs.BoolVar(&cfg.rawScore, "raw", cfg.rawScore, "Do not normalize the cut score by the region size")
	fs.BoolVar(&cfg.round, "round", cfg.round, "Round the reduced pixel values instead of truncating them")
	fs.BoolVar(&cfg.stretch, "stretch", cfg.stretch, "Stretch the intensity range of the result")
	fs.IntVar(&cfg.newWidth, "width", 0, "Scale the source to this width first")
	fs.IntVar(&cfg.newHeight, "height", 0, "Scale the source to this height first")
	fs.BoolVar(&cfg.debug, "debug", false, "Draw the cut lines into the result")
	fs.BoolVar(&cfg.trace, "trace", false, "Log every cut to the standard error")
	fs.IntVar(&cfg.workers, "workers", cfg.workers, "Number of goroutines partitioning one image")
	fs.IntVar(&cfg.conc, "conc", 0, "Number of files to process concurrently (default: number of CPUs)")
	fs.BoolVar(&cfg.version, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) > 4 {
		fs.Usage()
		return nil, errors.New("too many arguments")
	}
	if len(rest) > 0 {
		cfg.source = rest[0]
	}
	if len(rest) > 1 {
		cfg.destination = rest[1]
	}
	if len(rest) > 2 {
		if cfg.depth, err = strconv.Atoi(rest[2]); err != nil {
			fs.Usage()
			return nil, fmt.Errorf("invalid depth %q", rest[2])
		}
	}
	if len(rest) > 3 {
		if cfg.contrast, err = strconv.ParseFloat(rest[3], 64); err != nil {
			fs.Usage()
			return nil, fmt.Errorf("invalid contrast %q", rest[3])
		}
	}
	if cfg.version {
		return cfg, nil
	}

	if err := cfg.geometrizer().Validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return cfg, nil
}

// geometrizer returns the partitioner described by the configuration.
func (c *config) geometrizer() *geometrize.Geometrizer {
	return c.processor().Geometrizer()
}

// processor returns the library options described by the configuration.
func (c *config) processor() *geometrize.Processor {
	p := &geometrize.Processor{
		Depth:     c.depth,
		Contrast:  c.contrast,
		MinSize:   c.minSize,
		Axes:      c.axes,
		RawScore:  c.rawScore,
		Workers:   c.workers,
		NewWidth:  c.newWidth,
		NewHeight: c.newHeight,
		Stretch:   c.stretch,
		Debug:     c.debug,
	}
	if c.round {
		p.Rounding = geometrize.Round
	}
	return p
}
