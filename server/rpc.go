package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/marben/irpc"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/render"
)

// NewRPCServer returns an irpc server offering r as the BandRenderer service.
// It serves TCP listeners as well as an RPCListener.
func NewRPCServer(r *render.RowRenderer) *irpc.Server {
	return irpc.NewServer(
		irpc.WithServices(mandel.NewBandRendererIrpcService(r)),
		irpc.WithOnConnect(func(ep *irpc.Endpoint) {
			mandel.Logger().Info("rpc connection", "remote", ep.RemoteAddr())
		}),
	)
}

// RPCListener implements net.Listener for irpc over websockets. Mounted as
// an http.Handler it accepts websocket upgrades and hands the connections to
// whoever calls Accept, usually irpc.Server.Serve.
type RPCListener struct {
	// OriginPatterns are passed to websocket.Accept.
	OriginPatterns []string

	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	addr   wsAddr
}

// NewRPCListener returns a listener reporting addr as its address. Closing
// it, or cancelling ctx, ends every connection it accepted.
func NewRPCListener(ctx context.Context, addr string) *RPCListener {
	ctx, cancel := context.WithCancel(ctx)
	return &RPCListener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
		addr:   wsAddr{addr: addr},
	}
}

// ServeHTTP implements http.Handler.
func (l *RPCListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: l.OriginPatterns,
	})
	if err != nil {
		mandel.Logger().Warn("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	select {
	case l.ch <- c:
	case <-l.ctx.Done():
		c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// Accept implements net.Listener.
func (l *RPCListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

// Addr implements net.Listener.
func (l *RPCListener) Addr() net.Addr {
	return l.addr
}

// Close implements net.Listener.
func (l *RPCListener) Close() error {
	l.cancel()
	return nil
}

// wsAddr implements net.Addr
type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}

// RemoteRenderer is a BandRenderer backed by a render server.
type RemoteRenderer struct {
	*mandel.BandRendererIrpcClient
	ep *irpc.Endpoint
}

// Close ends the connection to the server.
func (r *RemoteRenderer) Close() error {
	return r.ep.Close()
}

// DialRenderer connects to the rpc endpoint at addr, either a websocket URL
// (ws:// or wss://) or a TCP host:port.
func DialRenderer(ctx context.Context, addr string) (*RemoteRenderer, error) {
	var conn net.Conn
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		c, _, err := websocket.Dial(ctx, addr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		// The connection outlives the dial context.
		conn = websocket.NetConn(context.WithoutCancel(ctx), c, websocket.MessageBinary)
	} else {
		var d net.Dialer
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		conn = c
	}

	ep := irpc.NewEndpoint(conn)
	client, err := mandel.NewBandRendererIrpcClient(ep)
	if err != nil {
		ep.Close()
		return nil, fmt.Errorf("failed to create BandRenderer client: %w", err)
	}
	return &RemoteRenderer{BandRendererIrpcClient: client, ep: ep}, nil
}
