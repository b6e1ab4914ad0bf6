// Package render fills intensity buffers with the Mandelbrot set, one
// goroutine per horizontal band.
package render

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	mandel "github.com/marben/bandmandel"
)

const (
	// IterationLimit is the escape-time budget of every pixel.
	IterationLimit = 255

	// DefaultBands is the number of bands used by the commands unless told otherwise.
	DefaultBands = 8
)

// Renderer renders plane rectangles band by band.
// The zero value is ready to use and renders with GOMAXPROCS bands.
type Renderer struct {
	// Bands is the number of bands, and so of concurrent workers, per render.
	// Zero or negative means runtime.GOMAXPROCS(0).
	Bands int

	// OnBandRender, if set, is called from the worker goroutine once a band
	// is completely written. Calls for different bands may run concurrently.
	OnBandRender func(Band)
}

var _ mandel.ImageRenderer = (*Renderer)(nil)

// RenderAll renders rect into pixels using bands workers.
func RenderAll(pixels []byte, res mandel.Resolution, rect mandel.PlaneRect, bands int) {
	(&Renderer{Bands: bands}).RenderAll(pixels, res, rect)
}

// Render allocates a buffer for res and renders rect into it.
func (r *Renderer) Render(res mandel.Resolution, rect mandel.PlaneRect) []byte {
	pixels := make([]byte, res.Pixels())
	r.RenderAll(pixels, res, rect)
	return pixels
}

// RenderAll renders rect into pixels, a row-major buffer of res. It returns
// once every band has been written. A buffer whose length does not match res
// is a programming error and panics.
func (r *Renderer) RenderAll(pixels []byte, res mandel.Resolution, rect mandel.PlaneRect) {
	if len(pixels) != res.Pixels() {
		panic(fmt.Sprintf("render: buffer of %d bytes for resolution %s", len(pixels), res))
	}
	if res.Width <= 0 || res.Height <= 0 {
		return
	}

	log := mandel.Logger()
	start := time.Now()

	bands := Partition(res, rect, r.workers())
	log.Debug("render partitioned", "resolution", res.String(), "rect", rect.String(), "bands", len(bands))

	// Every band gets its own capacity-capped slice before any worker starts,
	// so no worker can reach another band's rows.
	parts := make([][]byte, len(bands))
	for i, b := range bands {
		lo, hi := b.Start*res.Width, b.End*res.Width
		parts[i] = pixels[lo:hi:hi]
	}

	var wg sync.WaitGroup
	for i, b := range bands {
		wg.Go(func() {
			bandStart := time.Now()
			renderBand(parts[i], res, rect, b)
			log.Debug("band rendered", "band", b.Index, "rows", b.Rows(), "took", time.Since(bandStart))
			if r.OnBandRender != nil {
				r.OnBandRender(b)
			}
		})
	}
	wg.Wait()

	log.Info("render finished", "resolution", res.String(), "bands", len(bands), "took", time.Since(start))
}

// BandCount is the number of bands, and so of OnBandRender calls, a render
// of res will produce.
func (r *Renderer) BandCount(res mandel.Resolution) int {
	return len(Partition(res, mandel.PlaneRect{}, r.workers()))
}

func (r *Renderer) workers() int {
	if r.Bands <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return r.Bands
}

// renderBand writes the rows of b into pixels, which holds exactly those rows.
// Points are mapped against the whole image so the result does not depend on
// how the image was banded. Mapping through b.Rect with the band's own height
// and a band-relative row is equal on paper but rounds differently, and a
// 37x18 render then changes in 2 pixels between 1 and 3 bands.
func renderBand(pixels []byte, res mandel.Resolution, rect mandel.PlaneRect, b Band) {
	if len(pixels) != b.Rows()*res.Width {
		panic(fmt.Sprintf("render: %s got %d bytes, want %d", b, len(pixels), b.Rows()*res.Width))
	}

	for row := range b.Rows() {
		line := pixels[row*res.Width : (row+1)*res.Width]
		for col := range line {
			point := mandel.PixelToPoint(res, col, b.Start+row, rect)
			line[col] = Intensity(point)
		}
	}
}

// Intensity is the greyscale value of a single point: 0 for members of the
// set, 255 minus the escape iteration otherwise.
func Intensity(c complex128) byte {
	n, escaped := mandel.EscapeTime(c, IterationLimit)
	if !escaped {
		return 0
	}
	return byte(IterationLimit - n)
}
