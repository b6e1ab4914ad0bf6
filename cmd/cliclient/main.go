// cliclient is a CLI client for the Mandelbrot render server.
// It asks the server for a render over a websocket, collects the bands as they
// arrive and saves the result as an image file. With -farm it instead spreads
// the bands over the irpc endpoints of one or more servers.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/imgenc"
	"github.com/marben/bandmandel/render"
	"github.com/marben/bandmandel/server"
)

// main is the entry point for the CLI client.
// It runs the client logic and logs any fatal errors.
func main() {
	log.Printf("Starting CLI client...")
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run requests the render from the server and saves it to a file.
// Returns an error if any step fails.
func run() error {
	var (
		serverURL = flag.String("server", "ws://localhost:8080/ws", "websocket endpoint of the render server")
		filename  = flag.String("o", "mandel.png", "output file, format chosen by extension")
		size      = flag.Int("size", 1000, "bounding box size in pixels")
		ul        = flag.String("ul", "-1.20,0.35", "upper left corner")
		lr        = flag.String("lr", "-1,0.20", "lower right corner")
		region    = flag.String("region", "", "named region, overrides -ul and -lr")
		bands     = flag.Int("bands", 0, "bands to render in parallel, 0 for the server default")
		farm      = flag.String("farm", "", "comma separated irpc endpoints (host:port or ws:// URL) to render on instead of -server")
	)
	flag.Parse()

	// Step 1: Build the request
	req := server.Request{UpperLeft: *ul, LowerRight: *lr, Size: *size, Bands: *bands}
	if *region != "" {
		rect, ok := mandel.LookupRegion(*region)
		if !ok {
			return fmt.Errorf("unknown region %q, known regions: %v", *region, mandel.RegionNames())
		}
		req = server.NewRequest(rect, *size, *bands)
	}
	if _, err := imgenc.FormatFromPath(*filename); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *farm != "" {
		return runFarm(ctx, strings.Split(*farm, ","), req, *filename)
	}

	// Step 2: Request the render and collect bands as they are finished
	log.Printf("Requesting %s .. %s at %d pixels from %s...", req.UpperLeft, req.LowerRight, req.Size, *serverURL)
	res, pixels, err := server.Fetch(ctx, *serverURL, req, func(rows, total int) {
		log.Printf("finished: %f", float32(rows)/float32(total))
	})
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	// Step 3: Save the rendered image
	log.Printf("Saving rendered %s image to %q...", res, *filename)
	if err := imgenc.WriteFile(*filename, pixels, res); err != nil {
		return err
	}

	log.Printf("Fully rendered image saved to %q", *filename)
	return nil
}

// runFarm renders req on the rpc endpoints in addrs and saves it to filename.
func runFarm(ctx context.Context, addrs []string, req server.Request, filename string) error {
	// Step 2: Validate the request locally, the farm does the scheduling
	ul, err := mandel.ParseComplex(req.UpperLeft, server.ComplexSeparator)
	if err != nil {
		return fmt.Errorf("upper left: %w", err)
	}
	lr, err := mandel.ParseComplex(req.LowerRight, server.ComplexSeparator)
	if err != nil {
		return fmt.Errorf("lower right: %w", err)
	}
	rect, err := mandel.NewPlaneRect(ul, lr)
	if err != nil {
		return err
	}
	res, err := mandel.ImageBounds(req.Size, rect)
	if err != nil {
		return err
	}

	// Step 3: Connect to every render server
	var renderers []mandel.BandRenderer
	for _, addr := range addrs {
		log.Printf("Connecting to render server on %s...", addr)
		rr, err := server.DialRenderer(ctx, addr)
		if err != nil {
			return err
		}
		defer rr.Close()
		renderers = append(renderers, rr)
	}

	// Step 4: Render the bands on the servers
	bands := req.Bands
	if bands <= 0 {
		bands = render.DefaultBands * len(renderers)
	}
	f := render.NewFarm(res, rect, bands)
	f.OnBandRender = func(render.Band) { log.Printf("finished: %f", f.Finished()) }
	pixels, err := f.Render(ctx, renderers...)
	if err != nil {
		return fmt.Errorf("farm render: %w", err)
	}

	// Step 5: Save the rendered image
	log.Printf("Saving rendered %s image to %q...", res, filename)
	if err := imgenc.WriteFile(filename, pixels, res); err != nil {
		return err
	}
	log.Printf("Fully rendered image saved to %q", filename)
	return nil
}
