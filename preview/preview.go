// Package preview draws intensity buffers as braille art for terminals.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	mandel "github.com/marben/bandmandel"
)

// DefaultColumns is the preview width used when Options.Columns is unset.
const DefaultColumns = 80

// Options control the preview layout.
type Options struct {
	// Columns is the width of the preview in terminal cells.
	Columns int

	// Threshold lights every micro-pixel whose intensity is at most Threshold.
	// The zero value shows exactly the points that never escaped.
	Threshold uint8

	// Title replaces the default "<width>x<height>" title of Render.
	Title string
}

var (
	borderCol = lipgloss.Color("#243141")
	accentFg  = lipgloss.Color("#7C3AED")
	baseFg    = lipgloss.Color("#E6E6E6")

	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	artStyle   = lipgloss.NewStyle().Foreground(baseFg)
)

// Lines samples pixels onto a braille grid opts.Columns cells wide. Cells are
// 2x4 micro-pixels; the row count follows from the aspect ratio of res.
func Lines(pixels []byte, res mandel.Resolution, opts Options) []string {
	if len(pixels) != res.Pixels() {
		panic(fmt.Sprintf("preview: buffer of %d bytes for resolution %s", len(pixels), res))
	}
	if res.Width <= 0 || res.Height <= 0 {
		return nil
	}

	cols := opts.Columns
	if cols <= 0 {
		cols = DefaultColumns
	}
	cols = min(cols, (res.Width+1)/2)

	microW := cols * 2
	microH := max(1, res.Height*microW/res.Width)
	rows := (microH + 3) / 4

	buf := newBrailleBuf(cols, rows)
	for my := range microH {
		y := my * res.Height / microH
		for mx := range microW {
			x := mx * res.Width / microW
			if pixels[y*res.Width+x] <= opts.Threshold {
				buf.setPixel(mx, my)
			}
		}
	}
	return buf.toLines()
}

// Render frames the preview of pixels in a rounded box.
func Render(pixels []byte, res mandel.Resolution, opts Options) string {
	title := opts.Title
	if title == "" {
		title = res.String()
	}
	art := artStyle.Render(strings.Join(Lines(pixels, res, opts), "\n"))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), art))
}
