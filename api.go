package mandel

import "context"

//go:generate go run github.com/marben/irpc/cmd/irpc

// BandRenderer renders rows of an image on behalf of a remote peer.
// Plane corners travel as plain coordinates.
type BandRenderer interface {
	// RenderRows renders rows [start, end) of a width x height image of the
	// plane rectangle from (left, top) to (right, bottom) and returns them
	// as (end-start)*width intensity bytes.
	RenderRows(ctx context.Context, left, top, right, bottom float64, width, height, start, end int) ([]byte, error)
}
