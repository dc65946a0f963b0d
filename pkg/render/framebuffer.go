package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
)

var posInf = math.Inf(1)

// Framebuffer holds a color buffer and a depth buffer of the same size.
// Both are row-major with the origin at the top left; pixel (x, y) is at
// index x + y*Width. Depth uses the zero-to-one convention, 0 at the near
// plane, and Clear resets it to +Inf.
type Framebuffer struct {
	Width  int
	Height int
	Color  []Color
	Depth  []float64
}

// NewFramebuffer allocates both buffers. It panics on negative dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("render: invalid framebuffer size %dx%d", width, height))
	}
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]Color, width*height),
		Depth:  make([]float64, width*height),
	}
	fb.Clear(ColorBlack)
	return fb
}

// Resize reallocates the buffers if the size changed. Contents are cleared.
func (fb *Framebuffer) Resize(width, height int) {
	if width == fb.Width && height == fb.Height {
		return
	}
	*fb = *NewFramebuffer(width, height)
}

// Clear fills the color buffer with c and resets depth to +Inf.
func (fb *Framebuffer) Clear(c Color) {
	fill(fb.Color, c)
	fill(fb.Depth, posInf)
}

// fill sets every element using copy-doubling.
func fill[T any](s []T, v T) {
	if len(s) == 0 {
		return
	}
	s[0] = v
	for i := 1; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}

// SetPixel sets a pixel; out-of-bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Color[x+y*fb.Width] = c
}

// Pixel returns the color at (x, y), or 0 when out of bounds.
func (fb *Framebuffer) Pixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	return fb.Color[x+y*fb.Width]
}

// DepthAt returns the stored depth at (x, y), or +Inf when out of bounds.
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return posInf
	}
	return fb.Depth[x+y*fb.Width]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's
// algorithm. It ignores depth.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage copies the color buffer into an image.NRGBA.
func (fb *Framebuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	fb.CopyRGBA(img.Pix)
	return img
}

// CopyRGBA writes the color buffer as interleaved 8-bit RGBA into dst, which
// must hold at least Width*Height*4 bytes.
func (fb *Framebuffer) CopyRGBA(dst []byte) {
	for i, c := range fb.Color {
		p := dst[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = c.R(), c.G(), c.B(), c.A()
	}
}

// EncodePNG writes the color buffer as a PNG.
func (fb *Framebuffer) EncodePNG(w io.Writer) error {
	return png.Encode(w, fb.ToImage())
}

// SavePNG saves the color buffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fb.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
