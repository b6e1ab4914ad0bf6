package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/bandmandel"
)

// MaxFetchPixels bounds the resolution a server may announce to Fetch.
const MaxFetchPixels = 1 << 28

// Fetch asks the streaming endpoint at url for req and assembles the bands
// it sends into one intensity buffer. onBand, if set, is called after each
// band frame with the rows received so far.
func Fetch(ctx context.Context, url string, req Request, onBand func(rows, total int)) (mandel.Resolution, []byte, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return mandel.Resolution{}, nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer c.CloseNow()

	if err := wsjson.Write(ctx, c, req); err != nil {
		return mandel.Resolution{}, nil, fmt.Errorf("write request: %w", err)
	}

	var start Message
	if err := wsjson.Read(ctx, c, &start); err != nil {
		return mandel.Resolution{}, nil, fmt.Errorf("read start: %w", err)
	}
	switch start.Type {
	case TypeStart:
	case TypeError:
		return mandel.Resolution{}, nil, fmt.Errorf("server: %s", start.Error)
	default:
		return mandel.Resolution{}, nil, fmt.Errorf("unexpected %q message", start.Type)
	}

	res := mandel.Resolution{Width: start.Width, Height: start.Height}
	if res.Width <= 0 || res.Height <= 0 {
		return mandel.Resolution{}, nil, fmt.Errorf("%w: announced %s", mandel.ErrInvalidResolution, res)
	}
	// Division keeps the check free of overflow.
	if res.Width > MaxFetchPixels/res.Height {
		return mandel.Resolution{}, nil, fmt.Errorf("%w: announced %s exceeds %d pixels", ErrTooLarge, res, MaxFetchPixels)
	}
	// The largest frame a server may send is a single band with every row.
	c.SetReadLimit(int64(frameHeaderLen + res.Pixels()))

	pixels := make([]byte, res.Pixels())
	received := 0
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return mandel.Resolution{}, nil, fmt.Errorf("read: %w", err)
		}

		if typ == websocket.MessageBinary {
			rows, err := copyFrame(pixels, res, data)
			if err != nil {
				return mandel.Resolution{}, nil, err
			}
			received += rows
			if onBand != nil {
				onBand(received, res.Height)
			}
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return mandel.Resolution{}, nil, fmt.Errorf("decode message: %w", err)
		}
		switch msg.Type {
		case TypeDone:
			if received != res.Height {
				return mandel.Resolution{}, nil, fmt.Errorf("%w: done after %d of %d rows", ErrFrameOutOfRange, received, res.Height)
			}
			c.Close(websocket.StatusNormalClosure, "")
			return res, pixels, nil
		case TypeError:
			return mandel.Resolution{}, nil, fmt.Errorf("server: %s", msg.Error)
		default:
			return mandel.Resolution{}, nil, fmt.Errorf("unexpected %q message", msg.Type)
		}
	}
}
