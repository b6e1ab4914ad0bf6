package render

import (
	"context"
	"errors"
	"fmt"

	mandel "github.com/marben/bandmandel"
)

// ErrRowRange is returned for row requests outside the requested image.
var ErrRowRange = errors.New("row range out of image")

// RowRenderer renders row ranges for remote peers. It implements
// mandel.BandRenderer and is what render servers register as their irpc
// service.
type RowRenderer struct {
	// MaxPixels limits the image a request may describe. Zero means no limit.
	MaxPixels int

	// OnBandRender, if set, is called after each request is rendered.
	OnBandRender func(Band)
}

var _ mandel.BandRenderer = (*RowRenderer)(nil)

// RenderRows implements mandel.BandRenderer.
func (r *RowRenderer) RenderRows(ctx context.Context, left, top, right, bottom float64, width, height, start, end int) ([]byte, error) {
	rect, err := mandel.NewPlaneRect(complex(left, top), complex(right, bottom))
	if err != nil {
		return nil, err
	}
	res := mandel.Resolution{Width: width, Height: height}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s", mandel.ErrInvalidResolution, res)
	}
	if r.MaxPixels > 0 && width > r.MaxPixels/height {
		return nil, fmt.Errorf("%w: %s exceeds %d pixels", mandel.ErrInvalidResolution, res, r.MaxPixels)
	}
	if start < 0 || start >= end || end > height {
		return nil, fmt.Errorf("%w: rows [%d,%d) of %s", ErrRowRange, start, end, res)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := Band{
		Start: start,
		End:   end,
		Rect: mandel.PlaneRect{
			UpperLeft:  mandel.PixelToPoint(res, 0, start, rect),
			LowerRight: mandel.PixelToPoint(res, width, end, rect),
		},
	}
	pixels := make([]byte, b.Rows()*width)
	renderBand(pixels, res, rect, b)
	mandel.Logger().Debug("rows rendered", "resolution", res.String(), "start", start, "end", end)
	if r.OnBandRender != nil {
		r.OnBandRender(b)
	}
	return pixels, nil
}

// RenderBand asks br for the rows of b.
func RenderBand(ctx context.Context, br mandel.BandRenderer, res mandel.Resolution, rect mandel.PlaneRect, b Band) ([]byte, error) {
	return br.RenderRows(ctx,
		real(rect.UpperLeft), imag(rect.UpperLeft),
		real(rect.LowerRight), imag(rect.LowerRight),
		res.Width, res.Height, b.Start, b.End)
}
