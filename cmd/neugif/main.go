package main

import (
	"errors"
	"flag"
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

	"github.com/esimov/neugif"
	"github.com/esimov/neugif/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┌┐┌┌─┐┬ ┬┌─┐┬┌─┐
│││├┤ │ ││ ┬│├┤
┘└┘└─┘└─┘└─┘┴└

Neural network quantized GIF encoder.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// result holds the outcome of converting one source file.
type result struct {
	path string
	err  error
}

// spinner used to instantiate and call the progress indicator.
var spinner *utils.Spinner

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source image, directory or URL")
	destination = flag.String("out", pipeName, "Destination GIF or directory")
	newWidth    = flag.Int("width", 0, "New width")
	newHeight   = flag.Int("height", 0, "New height")
	sampleFac   = flag.Int("sample", neugif.DefaultSampleFactor, "Quantizer sampling factor [1 - 30], lower is better quality")
	repeat      = flag.Int("repeat", 0, "Loop count of animated output: -1 plays once, 0 loops forever")
	delay       = flag.Int("delay", 0, "Frame delay in hundredths of a second")
	blurRadius  = flag.Float64("blur", 0, "Blur radius applied before quantization")
	grayscale   = flag.Bool("gray", false, "Convert the image to grayscale")
	dither      = flag.Bool("dither", false, "Apply Floyd-Steinberg dithering")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
)

func main() {
	log.SetFlags(0)
	os.Exit(run())
}

// run parses the flags and converts the sources, returning the process exit code.
func run() int {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *sampleFac < 1 || *sampleFac > 30 {
		return fail("%s", utils.DecorateText("The sampling factor must be between 1 and 30!", utils.ErrorMessage))
	}
	if err := neugif.ValidateRepeat(*repeat); err != nil {
		return fail("%s", utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	proc := &neugif.Processor{
		NewWidth:     *newWidth,
		NewHeight:    *newHeight,
		SampleFactor: *sampleFac,
		Repeat:       *repeat,
		Delay:        *delay,
		BlurRadius:   *blurRadius,
		Grayscale:    *grayscale,
		Dither:       *dither,
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ NEUGIF", utils.StatusMessage),
		utils.DecorateText("is encoding the image...", utils.DefaultMessage))
	spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)

	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		spinner.RestoreCursor()
		os.Exit(1)
	}()

	// Supported source files
	validExtensions := []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

	in := *source
	if utils.IsValidUrl(in) {
		src, err := utils.DownloadImage(in)
		if err != nil {
			return fail(utils.DecorateText("Failed to download the source image: %v", utils.ErrorMessage), err)
		}
		defer os.Remove(src.Name())
		if err := src.Close(); err != nil {
			return fail(utils.DecorateText("Unable to close the temporary image file: %v", utils.ErrorMessage), err)
		}
		in = src.Name()
	}

	var (
		fs  os.FileInfo
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == pipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(in)
	}
	if err != nil {
		return fail(utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage), err)
	}

	now := time.Now()
	exitCode := 0

	switch mode := fs.Mode(); {
	case mode.IsDir():
		var wg sync.WaitGroup
		if err := prepareOutDir(*destination); err != nil {
			return fail(utils.DecorateText("Invalid destination: %v", utils.ErrorMessage), err)
		}

		// Limit the concurrently running workers to maxWorkers.
		if *workers <= 0 || *workers > maxWorkers {
			*workers = runtime.NumCPU()
		}

		ch := make(chan result)
		done := make(chan struct{})
		defer close(done)

		paths, errc := walkDir(done, in, validExtensions)

		spinner.Start()
		wg.Add(*workers)
		for i := 0; i < *workers; i++ {
			go func() {
				defer wg.Done()
				consumer(done, paths, *destination, proc, ch)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		var failed int
		for res := range ch {
			if res.err != nil {
				failed++
			}
			printStatus(res.path, res.err)
		}
		spinner.Stop()

		if err := <-errc; err != nil {
			fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
		if failed > 0 {
			exitCode = 1
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0:
		if ext := filepath.Ext(*destination); ext != ".gif" && *destination != pipeName {
			return fail("%s", utils.DecorateText(fmt.Sprintf("%v file type not supported, the output must be a .gif", ext), utils.ErrorMessage))
		}

		spinner.Start()
		err := convert(in, *destination, proc)
		spinner.Stop()

		printStatus(*destination, err)
		if err != nil {
			exitCode = 1
		}
	default:
		return fail(utils.DecorateText("Unsupported source: %s", utils.ErrorMessage), in)
	}
	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))

	return exitCode
}

// fail logs the decorated message and returns the failure exit code,
// so the deferred cleanups of run still execute.
func fail(format string, args ...any) int {
	log.Printf(format, args...)
	return 1
}

// prepareOutDir makes sure dest is a usable output directory, creating it when missing.
func prepareOutDir(dest string) error {
	if dest == pipeName || dest == "" {
		return errors.New("a directory source needs an -out directory")
	}
	fi, err := os.Stat(dest)
	if err == nil {
		if !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", dest)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dest, 0755)
}

// walkDir starts a goroutine to walk the specified directory tree in recursive manner
// and send the path of each supported file on the string channel.
// It sends the result of the walk on the error channel.
// It terminates in case done channel is closed.
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

		errChan <- filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(strings.ToLower(filepath.Ext(info.Name())), srcExts) {
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

// consumer reads the path names from the paths channel, converts every
// source into a GIF under dest and sends the results on the res channel.
func consumer(
	done <-chan struct{},
	paths <-chan string,
	dest string,
	proc *neugif.Processor,
	res chan<- result,
) {
	for src := range paths {
		out := filepath.Join(dest, gifName(src))
		err := convert(src, out, proc)

		select {
		case <-done:
			return
		case res <- result{
			path: out,
			err:  err,
		}:
		}
	}
}

// gifName replaces the extension of the source base name with .gif.
func gifName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".gif"
}

// convert runs the processor over the source file and writes the result
// into the destination file.
func convert(in, out string, proc *neugif.Processor) (err error) {
	src, dst, err := pathToFile(in, out)
	if err != nil {
		return err
	}
	defer func() {
		if c, ok := src.(io.Closer); ok && src != os.Stdin {
			c.Close()
		}
		if c, ok := dst.(io.Closer); ok && dst != os.Stdout {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	return proc.Process(src, dst)
}

// pathToFile converts the source and destination paths to readable and writable files.
func pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == pipeName {
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
	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if c, ok := src.(io.Closer); ok && src != os.Stdin {
				c.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printStatus displays the outcome of a single conversion.
func printStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%s",
			utils.DecorateText(fmt.Sprintf("\nError encoding %s", filepath.Base(fname)), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname != pipeName {
		var size string
		if fi, err := os.Stat(fname); err == nil {
			size = fmt.Sprintf(" (%s)", utils.FormatSize(fi.Size()))
		}
		fmt.Fprintf(os.Stderr, "\nThe GIF has been saved as: %s%s\n",
			utils.DecorateText(fname, utils.SuccessMessage), size,
		)
	}
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
