package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marben/irpc"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/render"
	"github.com/marben/bandmandel/server"
)

func TestWebServerRoutes(t *testing.T) {
	srv := httptest.NewServer(webServer(webConfig{addr: "127.0.0.1:0", maxSize: 64, bands: 2}).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/regions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []region
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode regions: %v", err)
	}
	if len(got) != len(mandel.RegionNames()) {
		t.Fatalf("got %d regions, want %d", len(got), len(mandel.RegionNames()))
	}
	for _, r := range got {
		if _, err := mandel.ParseComplex(r.UpperLeft, ','); err != nil {
			t.Errorf("%s upper left: %v", r.Name, err)
		}
	}

	resp, err = http.Get(srv.URL + "/render?ul=-1.20,0.35&lr=-1,0.20&size=65")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized render status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/render?ul=-1.20,0.35&lr=-1,0.20&size=64")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		t.Errorf("render status = %d, Content-Type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestWebServerRPCRoute(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	l := server.NewRPCListener(ctx, "test/rpc")
	rpcServer := server.NewRPCServer(&render.RowRenderer{MaxPixels: 64 * 64})
	defer rpcServer.Close()
	go func() {
		if err := rpcServer.Serve(l); !errors.Is(err, irpc.ErrServerClosed) {
			t.Errorf("Serve: %v", err)
		}
	}()

	srv := httptest.NewServer(webServer(webConfig{addr: "127.0.0.1:0", maxSize: 64, bands: 2, rpc: l}).Handler)
	defer srv.Close()

	rr, err := server.DialRenderer(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/rpc")
	if err != nil {
		t.Fatalf("DialRenderer: %v", err)
	}
	defer rr.Close()

	res := mandel.Resolution{Width: 16, Height: 12}
	rect := mandel.ClassicView
	got, err := render.RenderBand(ctx, rr, res, rect, render.Band{Start: 0, End: res.Height})
	if err != nil {
		t.Fatalf("RenderRows: %v", err)
	}
	if want := (&render.Renderer{Bands: 1}).Render(res, rect); !bytes.Equal(got, want) {
		t.Error("rows rendered over /rpc differ from a local render")
	}
}
