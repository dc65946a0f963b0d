package render

import (
	"bytes"
	"image/png"
	"math"
	"path/filepath"
	"testing"
)

func TestFramebufferClear(t *testing.T) {
	fb := NewFramebuffer(7, 5)
	fb.Depth[3] = 0.25
	fb.Clear(ColorSky)

	for i := range fb.Color {
		if fb.Color[i] != ColorSky {
			t.Fatalf("Color[%d] = %08x, want %08x", i, fb.Color[i], ColorSky)
		}
		if !math.IsInf(fb.Depth[i], 1) {
			t.Fatalf("Depth[%d] = %v, want +Inf", i, fb.Depth[i])
		}
	}
}

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(0, 4, ColorRed)
	fb.SetPixel(3, 3, ColorRed)

	if got := fb.Pixel(3, 3); got != ColorRed {
		t.Errorf("Pixel(3,3) = %08x, want red", got)
	}
	if got := fb.Pixel(4, 0); got != 0 {
		t.Errorf("Pixel(4,0) = %08x, want 0", got)
	}
	if !math.IsInf(fb.DepthAt(-1, -1), 1) {
		t.Error("out of bounds depth should be +Inf")
	}
	for i, c := range fb.Color[:len(fb.Color)-1] {
		if c != ColorBlack {
			t.Fatalf("out of bounds write landed at %d", i)
		}
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetPixel(0, 0, ColorWhite)
	fb.Resize(2, 2)
	if fb.Pixel(0, 0) != ColorWhite {
		t.Error("same size resize should keep contents")
	}
	fb.Resize(3, 1)
	if fb.Width != 3 || fb.Height != 1 || len(fb.Color) != 3 || len(fb.Depth) != 3 {
		t.Errorf("resize gave %dx%d with %d/%d", fb.Width, fb.Height, len(fb.Color), len(fb.Depth))
	}
}

func TestNewFramebufferNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for negative size")
		}
	}()
	NewFramebuffer(-1, 2)
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"horizontal", 0, 2, 7, 2, 8},
		{"vertical", 3, 7, 3, 0, 8},
		{"diagonal", 0, 0, 7, 7, 8},
		{"point", 4, 4, 4, 4, 1},
		{"steep", 1, 0, 3, 7, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(8, 8)
			fb.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1, ColorWhite)
			if got := countColor(fb, ColorWhite); got != tc.want {
				t.Errorf("lit %d pixels, want %d", got, tc.want)
			}
			if fb.Pixel(tc.x0, tc.y0) != ColorWhite || fb.Pixel(tc.x1, tc.y1) != ColorWhite {
				t.Error("endpoints not drawn")
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.SetPixel(1, 1, RGBA(10, 20, 30, 255))

	var buf bytes.Buffer
	if err := fb.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("decoded size %v", img.Bounds())
	}
	if got := ColorOf(img.At(1, 1)); got != RGBA(10, 20, 30, 255) {
		t.Errorf("pixel = %08x", got)
	}
}

func TestSavePNG(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := fb.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	tex, err := OpenTexture(path)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 2 || tex.Height != 2 {
		t.Errorf("reloaded %dx%d", tex.Width, tex.Height)
	}
	if err := fb.SavePNG(filepath.Join(t.TempDir(), "missing", "out.png")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCopyRGBA(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.Color[0] = RGBA(1, 2, 3, 4)
	fb.Color[1] = RGBA(5, 6, 7, 8)
	dst := make([]byte, 8)
	fb.CopyRGBA(dst)
	if !bytes.Equal(dst, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("CopyRGBA = %v", dst)
	}
}

func countColor(fb *Framebuffer, c Color) int {
	n := 0
	for _, p := range fb.Color {
		if p == c {
			n++
		}
	}
	return n
}
