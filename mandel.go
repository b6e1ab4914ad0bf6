package mandel

import (
	"errors"
	"fmt"
	"image"
	"math"
	"slices"
)

// ErrInvalidRect is returned when the corners of a plane rectangle are not
// finite or not ordered upper-left / lower-right.
var ErrInvalidRect = errors.New("invalid plane rectangle")

// PlaneRect is a region of the complex plane given by its corners.
// Real parts grow to the right, imaginary parts grow upwards, so pixel row 0
// is the edge with the largest imaginary part.
type PlaneRect struct {
	UpperLeft  complex128
	LowerRight complex128
}

// NewPlaneRect returns the rectangle spanned by ul and lr.
func NewPlaneRect(ul, lr complex128) (PlaneRect, error) {
	if !finite(ul) || !finite(lr) {
		return PlaneRect{}, fmt.Errorf("%w: non-finite corner in %v .. %v", ErrInvalidRect, ul, lr)
	}
	if !(real(ul) < real(lr)) || !(imag(ul) > imag(lr)) {
		return PlaneRect{}, fmt.Errorf("%w: upper left %v, lower right %v", ErrInvalidRect, ul, lr)
	}
	return PlaneRect{UpperLeft: ul, LowerRight: lr}, nil
}

func finite(c complex128) bool {
	for _, f := range [2]float64{real(c), imag(c)} {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return false
		}
	}
	return true
}

// Width is the extent of the rectangle along the real axis.
func (r PlaneRect) Width() float64 {
	return real(r.LowerRight) - real(r.UpperLeft)
}

// Height is the extent of the rectangle along the imaginary axis.
func (r PlaneRect) Height() float64 {
	return imag(r.UpperLeft) - imag(r.LowerRight)
}

func (r PlaneRect) String() string {
	return fmt.Sprintf("[%g,%g .. %g,%g]", real(r.UpperLeft), imag(r.UpperLeft), real(r.LowerRight), imag(r.LowerRight))
}

// ImageRenderer renders the plane rectangle r into a new row-major intensity
// buffer of res.Pixels() bytes.
type ImageRenderer interface {
	Render(res Resolution, r PlaneRect) []byte
}

// Resolution is the pixel size of a rendered image.
type Resolution struct {
	Width, Height int
}

// Pixels is the length of an intensity buffer of this resolution.
func (r Resolution) Pixels() int {
	return r.Width * r.Height
}

// Bounds returns the image rectangle of this resolution anchored at the origin.
func (r Resolution) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// region builds a PlaneRect from axis ranges
func region(xmin, xmax, ymin, ymax float64) PlaneRect {
	return PlaneRect{
		UpperLeft:  complex(xmin, ymax),
		LowerRight: complex(xmax, ymin),
	}
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// FullSet shows the whole set
	FullSet = region(-2.2, 0.8, -1.2, 1.2)

	// ClassicView is the view from the renderer's usage example: mandel.png 1000 -1.20,0.35 -1,0.20
	ClassicView = region(-1.20, -1.00, 0.20, 0.35)

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = region(-0.8, -0.7, 0.05, 0.15)

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = region(-1.85, -1.75, -0.10, -0.02)

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = region(-0.7435, -0.7420, 0.1310, 0.1325)

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = region(-0.7480, -0.7450, 0.0950, 0.0980)

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = region(-0.7400, -0.7350, 0.1800, 0.1850)

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = region(-1.7390, -1.7375, -0.0235, -0.0220)
)

var regions = map[string]PlaneRect{
	"full-set":                FullSet,
	"classic":                 ClassicView,
	"seahorse-valley":         SeahorseValley,
	"elephant-valley":         ElephantValley,
	"spiral-minibrot":         SpiralMinibrot,
	"triple-spiral":           TripleSpiral,
	"valley-of-the-dragon":    ValleyOfTheDragon,
	"minibrot-in-mini-spiral": MinibrotInMiniSpiral,
}

// LookupRegion returns the landmark region registered under name.
func LookupRegion(name string) (PlaneRect, bool) {
	r, ok := regions[name]
	return r, ok
}

// RegionNames lists the landmark names in sorted order.
func RegionNames() []string {
	names := make([]string, 0, len(regions))
	for n := range regions {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
