package mandel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidResolution is returned when a bounding box size does not yield a
// drawable image.
var ErrInvalidResolution = errors.New("invalid resolution")

// PixelToPoint maps the pixel at (col, row) of an image with resolution res
// onto the plane rectangle r. Rows grow downwards while imaginary parts grow
// upwards. col == res.Width and row == res.Height are valid and map onto the
// lower right corner.
func PixelToPoint(res Resolution, col, row int, r PlaneRect) complex128 {
	w, h := r.Width(), r.Height()
	return complex(
		real(r.UpperLeft)+float64(col)*w/float64(res.Width),
		imag(r.UpperLeft)-float64(row)*h/float64(res.Height),
	)
}

// ImageBounds derives the resolution of an image whose longer side is size
// pixels and whose aspect ratio matches r. The shorter side is truncated.
func ImageBounds(size int, r PlaneRect) (Resolution, error) {
	if size <= 0 {
		return Resolution{}, fmt.Errorf("%w: bounding box size %d", ErrInvalidResolution, size)
	}

	x := math.Abs(real(r.UpperLeft) - real(r.LowerRight))
	y := math.Abs(imag(r.UpperLeft) - imag(r.LowerRight))

	if x == 0 && y == 0 {
		return Resolution{}, fmt.Errorf("%w: empty plane rectangle %s", ErrInvalidResolution, r)
	}

	// Infinite or overflowing extents make the ratio NaN or infinite, and
	// int() of either is implementation specific.
	long, short := max(x, y), min(x, y)
	ratio := short / long
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return Resolution{}, fmt.Errorf("%w: plane rectangle %s has no finite aspect ratio", ErrInvalidResolution, r)
	}

	res := Resolution{Width: size, Height: int(float64(size) * ratio)}
	if y >= x {
		res.Width, res.Height = res.Height, res.Width
	}

	if res.Width <= 0 || res.Height <= 0 {
		return Resolution{}, fmt.Errorf("%w: %s from bounding box %d", ErrInvalidResolution, res, size)
	}
	return res, nil
}
