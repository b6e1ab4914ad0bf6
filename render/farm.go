package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	mandel "github.com/marben/bandmandel"
)

// Farm spreads the bands of one image over any number of BandRenderers,
// typically irpc clients of remote render servers. Workers join with Work
// and pull bands until none are left. Once every band has been handed out,
// idle workers take bands that are still in flight, so a slow or dead
// worker does not hold up the image.
type Farm struct {
	res    mandel.Resolution
	rect   mandel.PlaneRect
	pixels []byte

	// OnBandRender, if set, is called once per band when its rows are stored.
	OnBandRender func(Band)

	done chan struct{}

	m            sync.Mutex
	workers      int
	finishedRows int
	unstarted    []Band
	inProcess    map[int]Band
}

// NewFarm prepares the render of rect at res split into at most bands bands.
func NewFarm(res mandel.Resolution, rect mandel.PlaneRect, bands int) *Farm {
	if bands <= 0 {
		bands = DefaultBands
	}
	f := &Farm{
		res:       res,
		rect:      rect,
		pixels:    make([]byte, res.Pixels()),
		done:      make(chan struct{}),
		unstarted: Partition(res, rect, bands),
		inProcess: make(map[int]Band),
	}
	if len(f.unstarted) == 0 {
		close(f.done)
	}
	return f
}

func (f *Farm) popBand() (b Band, found bool) {
	f.m.Lock()
	defer f.m.Unlock()

	// Get unstarted band
	if len(f.unstarted) > 0 {
		b, f.unstarted = f.unstarted[0], f.unstarted[1:]
		f.inProcess[b.Index] = b
		return b, true
	}

	// If there is no unstarted band, we work again on a started one
	for _, b := range f.inProcess {
		return b, true
	}

	return Band{}, false
}

// Finished is the share of rows stored so far.
func (f *Farm) Finished() float32 {
	f.m.Lock()
	defer f.m.Unlock()
	if f.res.Height == 0 {
		return 1
	}
	return float32(f.finishedRows) / float32(f.res.Height)
}

func (f *Farm) bandFinished(b Band, rows []byte) {
	f.m.Lock()
	if _, found := f.inProcess[b.Index]; !found {
		// Another worker got there first.
		f.m.Unlock()
		return
	}
	copy(f.pixels[b.Start*f.res.Width:b.End*f.res.Width], rows)
	f.finishedRows += b.Rows()
	delete(f.inProcess, b.Index)
	last := len(f.unstarted) == 0 && len(f.inProcess) == 0
	f.m.Unlock()

	if f.OnBandRender != nil {
		f.OnBandRender(b)
	}
	if last {
		close(f.done)
	}
}

func (f *Farm) addWorker(delta int) {
	f.m.Lock()
	f.workers += delta
	w := f.workers
	f.m.Unlock()

	mandel.Logger().Debug("farm workers", "workers", w)
}

// Work renders bands on br until every band is done. It can be called from
// many goroutines with different renderers. A failing renderer makes Work
// return its error and leaves the band to the remaining workers.
func (f *Farm) Work(ctx context.Context, br mandel.BandRenderer) error {
	f.addWorker(1)
	defer f.addWorker(-1)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, found := f.popBand()
		if !found {
			return nil
		}
		rows, err := RenderBand(ctx, br, f.res, f.rect, b)
		if err != nil {
			return fmt.Errorf("render %s: %w", b, err)
		}
		if len(rows) != b.Rows()*f.res.Width {
			return fmt.Errorf("render %s: got %d bytes, want %d", b, len(rows), b.Rows()*f.res.Width)
		}
		f.bandFinished(b, rows)
	}
}

// Wait blocks until every band is stored and returns the image buffer.
func (f *Farm) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-f.done:
		return f.pixels, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// Render runs one Work loop per renderer and waits for the image. It fails
// only when every renderer has failed before the image was complete.
func (f *Farm) Render(ctx context.Context, renderers ...mandel.BandRenderer) ([]byte, error) {
	if len(renderers) == 0 {
		return nil, errors.New("render: farm without renderers")
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		wg   sync.WaitGroup
		m    sync.Mutex
		errs []error
	)
	for _, br := range renderers {
		wg.Go(func() {
			if err := f.Work(ctx, br); err != nil {
				m.Lock()
				errs = append(errs, err)
				failed := len(errs) == len(renderers)
				m.Unlock()
				if failed {
					cancel(fmt.Errorf("all %d renderers failed, last: %w", len(renderers), err))
				}
			}
		})
	}

	pixels, err := f.Wait(ctx)
	cancel(nil)
	wg.Wait()
	return pixels, err
}
