package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marben/irpc"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/render"
)

// startRPC serves a RowRenderer over websocket and tcp and returns both
// addresses.
func startRPC(t *testing.T) (wsURL, tcpAddr string) {
	t.Helper()
	rpcServer := NewRPCServer(&render.RowRenderer{MaxPixels: 1 << 20})

	l := NewRPCListener(context.Background(), "test/rpc")
	srv := httptest.NewServer(l)
	t.Cleanup(srv.Close)

	tcp, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	serve := func(l net.Listener) {
		if err := rpcServer.Serve(l); !errors.Is(err, irpc.ErrServerClosed) {
			t.Errorf("Serve(%s): %v", l.Addr(), err)
		}
	}
	go serve(l)
	go serve(tcp)
	t.Cleanup(func() { rpcServer.Close() })

	return "ws" + strings.TrimPrefix(srv.URL, "http"), tcp.Addr().String()
}

// =============================================================================
// RPC Tests
// =============================================================================

func TestDialRenderer(t *testing.T) {
	wsURL, tcpAddr := startRPC(t)
	res := mandel.Resolution{Width: 40, Height: 30}
	want := (&render.Renderer{Bands: 1}).Render(res, mandel.ClassicView)

	for _, addr := range []string{wsURL, tcpAddr} {
		t.Run(addr, func(t *testing.T) {
			rr, err := DialRenderer(testContext(t), addr)
			if err != nil {
				t.Fatalf("DialRenderer: %v", err)
			}
			defer rr.Close()

			b := render.Band{Start: 5, End: 17}
			got, err := render.RenderBand(testContext(t), rr, res, mandel.ClassicView, b)
			if err != nil {
				t.Fatalf("RenderRows: %v", err)
			}
			if !bytes.Equal(want[b.Start*res.Width:b.End*res.Width], got) {
				t.Error("remote rows differ from a local render")
			}

			if _, err := rr.RenderRows(testContext(t), -1.2, 0.35, -1, 0.2, 2000, 2000, 0, 1); err == nil {
				t.Error("oversized remote request succeeded")
			}
		})
	}
}

func TestFarmOverServers(t *testing.T) {
	wsURL, tcpAddr := startRPC(t)
	res := mandel.Resolution{Width: 120, Height: 90}
	want := (&render.Renderer{Bands: 1}).Render(res, mandel.SeahorseValley)

	var renderers []mandel.BandRenderer
	for _, addr := range []string{wsURL, tcpAddr} {
		rr, err := DialRenderer(testContext(t), addr)
		if err != nil {
			t.Fatalf("DialRenderer(%s): %v", addr, err)
		}
		defer rr.Close()
		renderers = append(renderers, rr)
	}

	got, err := render.NewFarm(res, mandel.SeahorseValley, 9).Render(testContext(t), renderers...)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Error("farm over servers differs from a local render")
	}
}

func TestDialRendererNoServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	if _, err := DialRenderer(testContext(t), addr); err == nil {
		t.Error("DialRenderer against a closed port succeeded")
	}
}

func TestRPCListenerClose(t *testing.T) {
	l := NewRPCListener(context.Background(), "test/rpc")
	if got := l.Addr().String(); got != "test/rpc" {
		t.Errorf("Addr() = %q", got)
	}
	l.Close()
	if _, err := l.Accept(); !errors.Is(err, net.ErrClosed) {
		t.Errorf("Accept after Close error = %v, want net.ErrClosed", err)
	}
}
