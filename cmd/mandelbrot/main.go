// Command mandelbrot renders a region of the Mandelbrot set into a greyscale image file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/imgenc"
	"github.com/marben/bandmandel/preview"
	"github.com/marben/bandmandel/render"
)

// errUsage is returned after the usage text has been printed.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(1)
		}
		log.Fatalf("mandelbrot: %v", err)
	}
}

type config struct {
	output  string
	size    int
	rect    mandel.PlaneRect
	bands   int
	format  imgenc.Format
	preview bool
	cols    int
	verbose bool
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage: %s [flags] FILE PIXELS_BOUNDING_BOX_SIZE UPPER_LEFT LOWER_RIGHT\n", fs.Name())
		fmt.Fprintf(w, "       %s [flags] -region NAME FILE PIXELS_BOUNDING_BOX_SIZE\n", fs.Name())
		fmt.Fprintf(w, "Example: %s mandel.png 1000 -1.20,0.35 -1,0.20\n\n", fs.Name())
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nRegions: %s\n", strings.Join(mandel.RegionNames(), ", "))
	}
}

// parseConfig parses the command line. Any error has already been reported
// on fs.Output() together with the usage text.
func parseConfig(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("mandelbrot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	var (
		cfg    config
		region string
		format string
	)
	fs.IntVar(&cfg.bands, "bands", render.DefaultBands, "number of bands rendered in parallel, 0 for one per CPU")
	fs.StringVar(&format, "format", "", "output format: png, bmp or tiff (default from FILE extension)")
	fs.StringVar(&region, "region", "", "render a named region instead of UPPER_LEFT LOWER_RIGHT")
	fs.BoolVar(&cfg.preview, "preview", false, "print a braille preview to stdout")
	fs.IntVar(&cfg.cols, "preview-cols", preview.DefaultColumns, "preview width in terminal cells")
	fs.BoolVar(&cfg.verbose, "v", false, "log render progress to stderr")

	if err := fs.Parse(args); err != nil {
		return config{}, errUsage
	}

	fail := func(format string, a ...any) (config, error) {
		fmt.Fprintf(stderr, "error: "+format+"\n", a...)
		fs.Usage()
		return config{}, errUsage
	}

	wantArgs := 4
	if region != "" {
		wantArgs = 2
	}
	if fs.NArg() != wantArgs {
		return fail("expected %d arguments, got %d", wantArgs, fs.NArg())
	}

	cfg.output = fs.Arg(0)

	size, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fail("error parsing image bounding box size: %v", err)
	}
	cfg.size = size

	if region != "" {
		r, ok := mandel.LookupRegion(region)
		if !ok {
			return fail("unknown region %q", region)
		}
		cfg.rect = r
	} else {
		ul, err := mandel.ParseComplex(fs.Arg(2), ',')
		if err != nil {
			return fail("error parsing upper left corner: %v", err)
		}
		lr, err := mandel.ParseComplex(fs.Arg(3), ',')
		if err != nil {
			return fail("error parsing lower right corner: %v", err)
		}
		if cfg.rect, err = mandel.NewPlaneRect(ul, lr); err != nil {
			return fail("%v", err)
		}
	}

	if format != "" {
		cfg.format, err = imgenc.ParseFormat(format)
	} else {
		cfg.format, err = imgenc.FormatFromPath(cfg.output)
	}
	if err != nil {
		return fail("%v", err)
	}

	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		return err
	}

	if cfg.verbose {
		mandel.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer mandel.SetLogger(nil)
	}

	res, err := mandel.ImageBounds(cfg.size, cfg.rect)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return errUsage
	}

	start := time.Now()
	pixels := (&render.Renderer{Bands: cfg.bands}).Render(res, cfg.rect)
	mandel.Logger().Info("rendered", "resolution", res.String(), "took", time.Since(start))

	if err := imgenc.WriteFileFormat(cfg.output, pixels, res, cfg.format); err != nil {
		return fmt.Errorf("error while writing %s file: %w", cfg.format, err)
	}

	if cfg.preview {
		fmt.Fprintln(stdout, preview.Render(pixels, res, preview.Options{Columns: cfg.cols, Title: cfg.rect.String()}))
	}
	return nil
}
