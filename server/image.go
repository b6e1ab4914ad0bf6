package server

import (
	"bytes"
	"net/http"
	"strconv"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/imgenc"
	"github.com/marben/bandmandel/render"
)

// ImageHandler serves whole renders as encoded images:
//
//	GET /render?ul=-1.20,0.35&lr=-1,0.20&size=1000&format=png
//
// format defaults to png. Bad parameters get a 400 response.
type ImageHandler struct {
	// MaxSize limits the requested bounding box size. Zero means DefaultMaxSize.
	MaxSize int

	// Renderer renders the images. Nil means a render.Renderer with
	// render.DefaultBands bands.
	Renderer mandel.ImageRenderer
}

func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := mandel.Logger()

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil {
		http.Error(w, "size: "+err.Error(), http.StatusBadRequest)
		return
	}

	maxSize := h.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	j, err := parseJob(Request{UpperLeft: q.Get("ul"), LowerRight: q.Get("lr"), Size: size}, maxSize)
	if err != nil {
		log.Warn("image request rejected", "remote", r.RemoteAddr, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := imgenc.PNG
	if name := q.Get("format"); name != "" {
		if format, err = imgenc.ParseFormat(name); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	renderer := h.Renderer
	if renderer == nil {
		renderer = &render.Renderer{Bands: render.DefaultBands}
	}
	pixels := renderer.Render(j.res, j.rect)

	var buf bytes.Buffer
	if err := imgenc.Encode(&buf, pixels, j.res, format); err != nil {
		log.Warn("image encoding failed", "err", err)
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if r.Method == http.MethodHead {
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn("image write failed", "remote", r.RemoteAddr, "err", err)
	}
}
