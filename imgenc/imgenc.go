// Package imgenc encodes intensity buffers as 8-bit greyscale images.
package imgenc

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	mandel "github.com/marben/bandmandel"
)

// ErrUnknownFormat is returned for image formats imgenc cannot write.
var ErrUnknownFormat = errors.New("unknown image format")

// Format is an image container format.
type Format int

const (
	PNG Format = iota
	BMP
	TIFF
)

var formatNames = map[Format]string{
	PNG:  "png",
	BMP:  "bmp",
	TIFF: "tiff",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ContentType is the MIME type of images in format f.
func (f Format) ContentType() string {
	switch f {
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

// ParseFormat looks up a format by name, e.g. "png" or "tif".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath picks the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Gray wraps pixels as a greyscale image of res without copying.
func Gray(pixels []byte, res mandel.Resolution) *image.Gray {
	if len(pixels) != res.Pixels() {
		panic(fmt.Sprintf("imgenc: buffer of %d bytes for resolution %s", len(pixels), res))
	}
	return &image.Gray{Pix: pixels, Stride: res.Width, Rect: res.Bounds()}
}

// Encode writes pixels to w as an image of format f.
func Encode(w io.Writer, pixels []byte, res mandel.Resolution, f Format) error {
	img := Gray(pixels, res)

	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// WriteFile encodes pixels into the file at path, choosing the format from
// its extension.
func WriteFile(path string, pixels []byte, res mandel.Resolution) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return WriteFileFormat(path, pixels, res, f)
}

// WriteFileFormat encodes pixels into the file at path as format f.
func WriteFileFormat(path string, pixels []byte, res mandel.Resolution, f Format) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %q: %w", path, cerr)
		}
	}()

	return Encode(out, pixels, res, f)
}
