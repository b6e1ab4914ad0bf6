package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/render"
)

// DefaultMaxSize is the largest bounding box served unless configured otherwise.
const DefaultMaxSize = 4096

// Handler serves the websocket streaming endpoint.
type Handler struct {
	// MaxSize limits the requested bounding box size. Zero means DefaultMaxSize.
	MaxSize int

	// Bands is used for requests that do not ask for a band count.
	// Zero means runtime.GOMAXPROCS(0).
	Bands int

	// OriginPatterns are passed to websocket.Accept.
	OriginPatterns []string

	// RequestTimeout bounds the whole exchange with a client. Zero means no limit.
	RequestTimeout time.Duration
}

func (h *Handler) maxSize() int {
	if h.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return h.MaxSize
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := mandel.Logger()

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.OriginPatterns,
	})
	if err != nil {
		log.Warn("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	if h.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.RequestTimeout)
		defer cancel()
	}

	log.Info("got connection", "remote", r.RemoteAddr)
	err = h.serve(ctx, c)

	var rejected *rejectedError
	switch {
	case errors.As(err, &rejected):
		log.Warn("request rejected", "remote", r.RemoteAddr, "err", rejected.err)
		c.Close(websocket.StatusPolicyViolation, "invalid request")
	case err != nil:
		log.Warn("stream failed", "remote", r.RemoteAddr, "err", err)
	default:
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// rejectedError marks requests that were answered with an error message.
type rejectedError struct {
	err error
}

func (e *rejectedError) Error() string { return e.err.Error() }
func (e *rejectedError) Unwrap() error { return e.err }

func (h *Handler) serve(ctx context.Context, c *websocket.Conn) error {
	var req Request
	if err := wsjson.Read(ctx, c, &req); err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	j, err := parseJob(req, h.maxSize())
	if err != nil {
		if werr := wsjson.Write(ctx, c, Message{Type: TypeError, Error: err.Error()}); werr != nil {
			return fmt.Errorf("write error message: %w", werr)
		}
		return &rejectedError{err: err}
	}
	if j.bands <= 0 {
		j.bands = h.Bands
	}

	return stream(ctx, c, j)
}

// stream renders j and writes every band to c as soon as it is done.
func stream(ctx context.Context, c *websocket.Conn, j job) error {
	log := mandel.Logger()
	pixels := make([]byte, j.res.Pixels())

	done := make(chan render.Band)
	r := &render.Renderer{
		Bands:        j.bands,
		OnBandRender: func(b render.Band) { done <- b },
	}

	start := Message{Type: TypeStart, Width: j.res.Width, Height: j.res.Height, Bands: r.BandCount(j.res)}
	if err := wsjson.Write(ctx, c, start); err != nil {
		return fmt.Errorf("write start: %w", err)
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		r.RenderAll(pixels, j.res, j.rect)
		close(done)
	})

	var (
		sent     int
		frame    []byte
		writeErr error
	)
	for b := range done {
		// Keep draining so the workers can finish even after a failed write.
		if writeErr != nil {
			continue
		}
		frame = appendFrame(frame[:0], b, pixels, j.res.Width)
		if err := c.Write(ctx, websocket.MessageBinary, frame); err != nil {
			writeErr = fmt.Errorf("write %s: %w", b, err)
			continue
		}
		sent += b.Rows()
		log.Debug("band sent", "band", b.Index, "finished", float32(sent)/float32(j.res.Height))
	}
	wg.Wait()

	if writeErr != nil {
		return writeErr
	}
	if err := wsjson.Write(ctx, c, Message{Type: TypeDone}); err != nil {
		return fmt.Errorf("write done: %w", err)
	}
	log.Info("stream finished", "resolution", j.res.String(), "rect", j.rect.String())
	return nil
}
