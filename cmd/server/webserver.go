package main

import (
	"log"
	"net/http"
	"time"

	"github.com/marben/bandmandel/render"
	"github.com/marben/bandmandel/server"
)

type webConfig struct {
	addr           string
	maxSize        int
	bands          int
	originPatterns []string

	// rpc, if set, is mounted on /rpc for irpc over websockets.
	rpc *server.RPCListener
}

// webServer creates the http server with the websocket streaming endpoint
// on /ws, the image endpoint on /render and the irpc endpoint on /rpc.
func webServer(cfg webConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", &server.Handler{
		MaxSize:        cfg.maxSize,
		Bands:          cfg.bands,
		OriginPatterns: cfg.originPatterns,
		RequestTimeout: 5 * time.Minute,
	})
	mux.Handle("/render", &server.ImageHandler{
		MaxSize:  cfg.maxSize,
		Renderer: &render.Renderer{Bands: cfg.bands},
	})
	mux.HandleFunc("/regions", regionsHandler)
	if cfg.rpc != nil {
		cfg.rpc.OriginPatterns = cfg.originPatterns
		mux.Handle("/rpc", cfg.rpc)
	}

	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://%s", cfg.addr)
	return srv
}
