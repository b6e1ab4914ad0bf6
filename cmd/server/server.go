package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/render"
	"github.com/marben/bandmandel/server"
	"github.com/marben/irpc"
)

// main is the entry point for the Mandelbrot render server.
// It streams renders over a websocket on /ws, serves whole images on /render
// and renders rows for remote farms over irpc, both on TCP and on /rpc.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	var (
		addr    = flag.String("addr", ":8080", "listen address")
		rpcAddr = flag.String("rpc-addr", ":8081", "irpc tcp listen address, empty to disable")
		maxSize = flag.Int("max-size", server.DefaultMaxSize, "largest accepted bounding box size in pixels")
		bands   = flag.Int("bands", render.DefaultBands, "bands per render when a client does not ask, 0 for one per CPU")
		origins = flag.String("origin", "", "additional websocket origin pattern to accept")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// irpc server rendering rows for remote farms, on tcp and websocket
	rpcListener := server.NewRPCListener(context.Background(), *addr+"/rpc")
	rpcServer := server.NewRPCServer(&render.RowRenderer{MaxPixels: *maxSize * *maxSize})
	defer rpcServer.Close()

	cfg := webConfig{addr: *addr, maxSize: *maxSize, bands: *bands, rpc: rpcListener}
	if *origins != "" {
		cfg.originPatterns = []string{*origins}
	}
	httpServer := webServer(cfg)

	errCh := make(chan error, 3)
	go func() {
		errCh <- fmt.Errorf("httpServer: %w", httpServer.ListenAndServe())
	}()
	go func() {
		errCh <- serveRPC(rpcServer, rpcListener, "ws")
	}()
	if *rpcAddr != "" {
		log.Printf("tcp listening on %s", *rpcAddr)
		tcpListener, err := net.Listen("tcp", *rpcAddr)
		if err != nil {
			return fmt.Errorf("net.Listen: %w", err)
		}
		go func() {
			errCh <- serveRPC(rpcServer, tcpListener, "tcp")
		}()
	}

	log.Printf("mb server waiting for websocket, image and rpc requests")
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	if err := rpcServer.Close(); err != nil {
		log.Printf("rpc server close: %v", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serveRPC serves l until the irpc server is closed.
func serveRPC(s *irpc.Server, l net.Listener, name string) error {
	if err := s.Serve(l); err != nil && !errors.Is(err, irpc.ErrServerClosed) {
		return fmt.Errorf("server.Serve %s: %w", name, err)
	}
	return nil
}
