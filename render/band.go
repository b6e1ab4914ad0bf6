package render

import (
	"fmt"

	mandel "github.com/marben/bandmandel"
)

// Band is a horizontal slice of an image: rows [Start, End) together with the
// part of the plane those rows cover.
type Band struct {
	Index      int
	Start, End int
	Rect       mandel.PlaneRect
}

// Rows is the number of rows in the band.
func (b Band) Rows() int {
	return b.End - b.Start
}

func (b Band) String() string {
	return fmt.Sprintf("band %d rows [%d,%d)", b.Index, b.Start, b.End)
}

// Partition splits an image of resolution res into at most count bands of
// equal height, the last one possibly shorter. Bands are returned top to
// bottom and together cover every row exactly once. Bands that would be
// empty are left out, so fewer than count bands come back when the image has
// fewer rows than count.
//
// Each band's Rect is computed against the whole image, not the band.
func Partition(res mandel.Resolution, rect mandel.PlaneRect, count int) []Band {
	if count < 1 {
		panic(fmt.Sprintf("render: band count must be positive, got %d", count))
	}
	if res.Height <= 0 {
		return nil
	}

	// No more bands than rows can be non-empty.
	count = min(count, res.Height)
	rowsPerBand := (res.Height + count - 1) / count

	bands := make([]Band, 0, count)
	for i := range count {
		start := i * rowsPerBand
		end := min(start+rowsPerBand, res.Height)
		if start >= end {
			break
		}
		bands = append(bands, Band{
			Index: i,
			Start: start,
			End:   end,
			Rect: mandel.PlaneRect{
				UpperLeft:  mandel.PixelToPoint(res, 0, start, rect),
				LowerRight: mandel.PixelToPoint(res, res.Width, end, rect),
			},
		})
	}
	return bands
}
