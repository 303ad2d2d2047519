package geometrize

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/geometrize/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// validExtensions lists the supported source file extensions.
var validExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Ops holds the execution options of the command line tool.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
	Logger             *logrus.Logger
}

// result holds the relevant information about the processing of one image.
type result struct {
	path    string
	elapsed time.Duration
	err     error
}

// Execute geometrizes the source image, or every supported image of the source directory, into the
// destination. The source can also be an URL or the pipe name, reading from the standard input.
// Errors related to the source are fatal.
func (p *Processor) Execute(op *Ops) error {
	if op.Logger == nil {
		op.Logger = logrus.StandardLogger()
	}

	src := op.Src
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(src)
		if f != nil {
			defer os.Remove(f.Name())
			f.Close()
		}
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		src = f.Name()
	}

	var (
		fs  os.FileInfo
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		log.Fatalf(
			utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		if err = op.executeDir(p, src); err != nil {
			return err
		}
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if !isValidExtension(ext, validExtensions) && op.Dst != op.PipeName {
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
		}
		if err = op.process(p, src, op.Dst); err != nil {
			return err
		}
		op.printOpStatus(op.Dst)
	default:
		return fmt.Errorf("unsupported source: %s", src)
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// executeDir processes the images of the source directory concurrently.
func (op *Ops) executeDir(p *Processor, src string) error {
	var wg sync.WaitGroup

	// Read destination file or directory.
	if _, err := os.Stat(op.Dst); err != nil {
		if err = os.MkdirAll(op.Dst, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
	}
	// The progress indicator is not shared between the workers.
	pc := *p
	pc.Spinner = nil

	// Limit the concurrently running workers to maxWorkers.
	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = utils.Min(runtime.NumCPU(), maxWorkers)
	}

	ch := make(chan result)
	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(done, src, validExtensions)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(&pc, op.Dst, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var failed int
	for res := range ch {
		entry := op.Logger.WithFields(logrus.Fields{
			"path":    res.path,
			"elapsed": utils.FormatTime(res.elapsed),
		})
		if res.err != nil {
			failed++
			entry.WithError(res.err).Error("geometrize failed")
			continue
		}
		entry.Info("geometrized")
	}

	if err := <-errc; err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d image(s) could not be processed", failed)
	}
	return nil
}

// consumer reads the path names from the paths channel and calls the processor against the source image.
func (op *Ops) consumer(
	p *Processor,
	dest string,
	res chan<- result,
	done <-chan struct{},
	paths <-chan string,
) {
	for src := range paths {
		now := time.Now()
		dst := filepath.Join(dest, filepath.Base(src))
		err := op.process(p, src, dst)

		select {
		case <-done:
			return
		case res <- result{
			path:    src,
			elapsed: time.Since(now),
			err:     err,
		}:
		}
	}
}

// process calls the processor over the source image and returns the error in case exists.
func (op *Ops) process(p *Processor, in, out string) error {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}

	if p.Spinner != nil {
		// Capture CTRL-C signal and restores back the cursor visibility.
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signalChan)
		go func() {
			if _, ok := <-signalChan; ok {
				p.Spinner.RestoreCursor()
				if f, ok := dst.(*os.File); ok && f != os.Stdout {
					os.Remove(f.Name())
				}
				os.Exit(1)
			}
		}()

		p.Spinner.Start()
		defer p.Spinner.Stop()
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	f, isFile := dst.(*os.File)
	if isFile && f != os.Stdout {
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}()
	}

	if err = p.Process(src, dst); err != nil {
		// remove the generated image file in case of an error
		if isFile && f != os.Stdout {
			os.Remove(f.Name())
		}
		if p.Spinner != nil {
			p.Spinner.StopMsg = fmt.Sprintf("%s %s\n",
				utils.DecorateText("⚡ GEOMETRIZE", utils.StatusMessage),
				utils.DecorateText("processing image failed ✘", utils.ErrorMessage),
			)
		}
		return err
	}

	if p.Spinner != nil {
		p.Spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ GEOMETRIZE", utils.StatusMessage),
			utils.DecorateText("⇢", utils.DefaultMessage),
			utils.DecorateText("the image has been geometrized successfully ✔", utils.SuccessMessage),
		)
	}
	return nil
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			closeFile(src)
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			closeFile(src)
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

func closeFile(r io.Reader) {
	if f, ok := r.(*os.File); ok && f != os.Stdin {
		f.Close()
	}
}

// printOpStatus displays the destination of the generated image.
func (op *Ops) printOpStatus(fname string) {
	if fname != op.PipeName {
		fmt.Fprintf(os.Stderr, "\nThe image has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
