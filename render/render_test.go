package render

import (
	"bytes"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	mandel "github.com/marben/bandmandel"
)

var classicRes = mandel.Resolution{Width: 100, Height: 75}

// =============================================================================
// Partition Tests
// =============================================================================

func TestPartitionCoversEveryRowOnce(t *testing.T) {
	for height := 0; height <= 40; height++ {
		for count := 1; count <= 20; count++ {
			res := mandel.Resolution{Width: 3, Height: height}
			bands := Partition(res, mandel.ClassicView, count)

			if len(bands) > count {
				t.Fatalf("Partition(h=%d, n=%d) returned %d bands", height, count, len(bands))
			}

			next := 0
			for i, b := range bands {
				if b.Index != i {
					t.Errorf("Partition(h=%d, n=%d) band %d has index %d", height, count, i, b.Index)
				}
				if b.Start != next {
					t.Fatalf("Partition(h=%d, n=%d) %s starts at %d, want %d", height, count, b, b.Start, next)
				}
				if b.Rows() <= 0 {
					t.Fatalf("Partition(h=%d, n=%d) returned empty %s", height, count, b)
				}
				next = b.End
			}
			if next != height {
				t.Fatalf("Partition(h=%d, n=%d) covers rows up to %d", height, count, next)
			}
		}
	}
}

func TestPartitionLayout(t *testing.T) {
	tests := []struct {
		height, count int
		want          [][2]int
	}{
		{75, 8, [][2]int{{0, 10}, {10, 20}, {20, 30}, {30, 40}, {40, 50}, {50, 60}, {60, 70}, {70, 75}}},
		{8, 8, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 8}}},
		{3, 8, [][2]int{{0, 1}, {1, 2}, {2, 3}}},
		{10, 4, [][2]int{{0, 3}, {3, 6}, {6, 9}, {9, 10}}},
		{10, 1, [][2]int{{0, 10}}},
	}
	for _, tt := range tests {
		var got [][2]int
		for _, b := range Partition(mandel.Resolution{Width: 4, Height: tt.height}, mandel.ClassicView, tt.count) {
			got = append(got, [2]int{b.Start, b.End})
		}
		if d := cmp.Diff(tt.want, got); d != "" {
			t.Errorf("Partition(h=%d, n=%d) mismatch (-want +got):\n%s", tt.height, tt.count, d)
		}
	}
}

func TestPartitionBandRects(t *testing.T) {
	bands := Partition(classicRes, mandel.ClassicView, 8)

	first, last := bands[0], bands[len(bands)-1]
	if first.Rect.UpperLeft != mandel.ClassicView.UpperLeft {
		t.Errorf("first band upper left = %v, want %v", first.Rect.UpperLeft, mandel.ClassicView.UpperLeft)
	}
	if last.Rect.LowerRight != mandel.ClassicView.LowerRight {
		t.Errorf("last band lower right = %v, want %v", last.Rect.LowerRight, mandel.ClassicView.LowerRight)
	}

	for i := 1; i < len(bands); i++ {
		above, below := bands[i-1], bands[i]
		if imag(above.Rect.LowerRight) != imag(below.Rect.UpperLeft) {
			t.Errorf("%s ends at im=%g but %s starts at im=%g",
				above, imag(above.Rect.LowerRight), below, imag(below.Rect.UpperLeft))
		}
		if real(below.Rect.UpperLeft) != real(mandel.ClassicView.UpperLeft) {
			t.Errorf("%s starts at re=%g", below, real(below.Rect.UpperLeft))
		}
	}
}

func TestPartitionZeroHeight(t *testing.T) {
	if bands := Partition(mandel.Resolution{Width: 10}, mandel.ClassicView, 8); len(bands) != 0 {
		t.Errorf("Partition(h=0) = %v, want no bands", bands)
	}
}

func TestPartitionHugeCount(t *testing.T) {
	res := mandel.Resolution{Width: 10, Height: 5}
	bands := Partition(res, mandel.ClassicView, 1<<40)
	if len(bands) != 5 {
		t.Fatalf("Partition(h=5, n=1<<40) returned %d bands, want 5", len(bands))
	}
	for i, b := range bands {
		if b.Start != i || b.End != i+1 {
			t.Errorf("band %d = %s, want rows [%d,%d)", i, b, i, i+1)
		}
	}
	if c := cap(bands); c > res.Height {
		t.Errorf("Partition reserved %d bands for %d rows", c, res.Height)
	}
}

func TestPartitionPanicsOnZeroCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Partition(n=0) did not panic")
		}
	}()
	Partition(classicRes, mandel.ClassicView, 0)
}

// =============================================================================
// RenderAll Tests
// =============================================================================

func TestRenderClassicView(t *testing.T) {
	pixels := make([]byte, classicRes.Pixels())
	RenderAll(pixels, classicRes, mandel.ClassicView, DefaultBands)

	// (-1.20, 0.35) escapes at iteration 8.
	if pixels[0] != 247 {
		t.Errorf("pixel (0,0) = %d, want 247", pixels[0])
	}
	// (-1.002, 0.202) is inside the set.
	if got := pixels[len(pixels)-1]; got != 0 {
		t.Errorf("pixel (99,74) = %d, want 0", got)
	}
}

func TestRenderMatchesIntensity(t *testing.T) {
	res := mandel.Resolution{Width: 37, Height: 18}
	rect := mandel.PlaneRect{UpperLeft: complex(-1.5, 0.5), LowerRight: complex(0.5, -0.5)}

	pixels := (&Renderer{Bands: 3}).Render(res, rect)
	for row := range res.Height {
		for col := range res.Width {
			want := Intensity(mandel.PixelToPoint(res, col, row, rect))
			if got := pixels[row*res.Width+col]; got != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", col, row, got, want)
			}
		}
	}
}

func TestRenderDeterministicAcrossBandCounts(t *testing.T) {
	cases := []struct {
		size int
		rect mandel.PlaneRect
	}{
		{100, mandel.ClassicView},
		{37, mandel.PlaneRect{UpperLeft: complex(-1.5, 0.5), LowerRight: complex(0.5, -0.5)}},
		{64, mandel.SeahorseValley},
		{50, mandel.FullSet},
	}
	for _, c := range cases {
		res, err := mandel.ImageBounds(c.size, c.rect)
		if err != nil {
			t.Fatal(err)
		}

		want := (&Renderer{Bands: 1}).Render(res, c.rect)
		for _, bands := range []int{1, 2, 3, 7, 8, 13, 64, res.Height, res.Height + 5, 0} {
			got := (&Renderer{Bands: bands}).Render(res, c.rect)
			if !bytes.Equal(want, got) {
				t.Errorf("%s at %s: %d bands differ from a single band", c.rect, res, bands)
			}
		}
		if again := (&Renderer{Bands: 1}).Render(res, c.rect); !bytes.Equal(want, again) {
			t.Errorf("%s at %s: repeated render differs", c.rect, res)
		}
	}
}

func TestRenderZeroHeight(t *testing.T) {
	var pixels []byte
	RenderAll(pixels, mandel.Resolution{Width: 10}, mandel.ClassicView, DefaultBands)

	got := (&Renderer{}).Render(mandel.Resolution{Width: 10}, mandel.ClassicView)
	if len(got) != 0 {
		t.Errorf("Render(10x0) returned %d bytes", len(got))
	}
}

func TestRenderAllPanicsOnWrongBuffer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("RenderAll with a short buffer did not panic")
		}
	}()
	RenderAll(make([]byte, classicRes.Pixels()-1), classicRes, mandel.ClassicView, DefaultBands)
}

func TestRenderOnBandRender(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []Band
	)
	r := &Renderer{
		Bands: 8,
		OnBandRender: func(b Band) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, b)
		},
	}
	r.Render(classicRes, mandel.ClassicView)

	slices.SortFunc(seen, func(a, b Band) int { return a.Index - b.Index })
	if d := cmp.Diff(Partition(classicRes, mandel.ClassicView, 8), seen); d != "" {
		t.Errorf("OnBandRender bands mismatch (-want +got):\n%s", d)
	}
}

func TestRenderDefaultBands(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
	)
	res := mandel.Resolution{Width: 8, Height: 256}
	r := &Renderer{OnBandRender: func(Band) {
		mu.Lock()
		count++
		mu.Unlock()
	}}
	r.Render(res, mandel.FullSet)

	if want := len(Partition(res, mandel.FullSet, runtime.GOMAXPROCS(0))); count != want {
		t.Errorf("zero Renderer rendered %d bands, want %d", count, want)
	}
}

// =============================================================================
// Intensity Tests
// =============================================================================

func TestIntensity(t *testing.T) {
	tests := []struct {
		c    complex128
		want byte
	}{
		{0, 0},
		{complex(-2, 0), 0},
		{complex(2, 2), 255},
		{complex(1, 0), 253},
		{complex(-1.20, 0.35), 247},
	}
	for _, tt := range tests {
		if got := Intensity(tt.c); got != tt.want {
			t.Errorf("Intensity(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func BenchmarkRenderClassicView(b *testing.B) {
	res := mandel.Resolution{Width: 400, Height: 300}
	pixels := make([]byte, res.Pixels())
	for _, bands := range []int{1, 8} {
		b.Run(fmt.Sprintf("bands=%d", bands), func(b *testing.B) {
			for b.Loop() {
				RenderAll(pixels, res, mandel.ClassicView, bands)
			}
		})
	}
}
