// Package server streams renders to remote clients.
//
// A client opens a websocket, sends one text Request and receives a text
// "start" Message announcing the resolution, one binary frame per band as
// each band completes, and a final "done" Message. Rejected requests get an
// "error" Message instead.
//
// A band frame is an 8-byte big-endian header, the first row and the row
// count as uint32, followed by rows*width intensity bytes.
package server

import (
	"encoding/binary"
	"errors"
	"fmt"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/render"
)

var (
	// ErrTooLarge is returned for requests above the server's size limit.
	ErrTooLarge = errors.New("requested image too large")

	// ErrFrameOutOfRange is returned by clients for band frames that do not
	// fit the announced resolution.
	ErrFrameOutOfRange = errors.New("band frame out of range")
)

// Message types.
const (
	TypeStart = "start"
	TypeDone  = "done"
	TypeError = "error"
)

// ComplexSeparator separates real and imaginary parts in request corners.
const ComplexSeparator = ','

const frameHeaderLen = 8

// Request asks for the render of a plane rectangle. Corners use the
// "<re>,<im>" notation of the command line.
type Request struct {
	UpperLeft  string `json:"upper_left"`
	LowerRight string `json:"lower_right"`
	Size       int    `json:"size"`
	Bands      int    `json:"bands,omitempty"`
}

// Message is a text message from the server.
type Message struct {
	Type   string `json:"type"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Bands  int    `json:"bands,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewRequest builds the request for rect rendered at size pixels.
func NewRequest(rect mandel.PlaneRect, size, bands int) Request {
	return Request{
		UpperLeft:  formatComplex(rect.UpperLeft),
		LowerRight: formatComplex(rect.LowerRight),
		Size:       size,
		Bands:      bands,
	}
}

func formatComplex(c complex128) string {
	return fmt.Sprintf("%v%c%v", real(c), ComplexSeparator, imag(c))
}

// job is a validated request.
type job struct {
	rect  mandel.PlaneRect
	res   mandel.Resolution
	bands int
}

// parseJob validates req against the size limit maxSize (0 for none).
// Band counts above the image height are clamped to it, as extra bands
// would be empty.
func parseJob(req Request, maxSize int) (job, error) {
	ul, err := mandel.ParseComplex(req.UpperLeft, ComplexSeparator)
	if err != nil {
		return job{}, fmt.Errorf("upper left: %w", err)
	}
	lr, err := mandel.ParseComplex(req.LowerRight, ComplexSeparator)
	if err != nil {
		return job{}, fmt.Errorf("lower right: %w", err)
	}
	rect, err := mandel.NewPlaneRect(ul, lr)
	if err != nil {
		return job{}, err
	}
	if maxSize > 0 && req.Size > maxSize {
		return job{}, fmt.Errorf("%w: %d > %d", ErrTooLarge, req.Size, maxSize)
	}
	res, err := mandel.ImageBounds(req.Size, rect)
	if err != nil {
		return job{}, err
	}
	bands := min(max(req.Bands, 0), res.Height)
	return job{rect: rect, res: res, bands: bands}, nil
}

// appendFrame appends the frame of band b of pixels to dst.
func appendFrame(dst []byte, b render.Band, pixels []byte, width int) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(b.Start))
	dst = binary.BigEndian.AppendUint32(dst, uint32(b.Rows()))
	return append(dst, pixels[b.Start*width:b.End*width]...)
}

// copyFrame writes frame into pixels, a buffer of resolution res.
func copyFrame(pixels []byte, res mandel.Resolution, frame []byte) (rows int, err error) {
	if len(frame) < frameHeaderLen {
		return 0, fmt.Errorf("%w: %d byte frame", ErrFrameOutOfRange, len(frame))
	}
	start := int(binary.BigEndian.Uint32(frame[0:4]))
	rows = int(binary.BigEndian.Uint32(frame[4:8]))
	data := frame[frameHeaderLen:]

	if start < 0 || rows <= 0 || start+rows > res.Height || len(data) != rows*res.Width {
		return 0, fmt.Errorf("%w: rows [%d,%d) with %d bytes for %s", ErrFrameOutOfRange, start, start+rows, len(data), res)
	}
	copy(pixels[start*res.Width:], data)
	return rows, nil
}
