package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp" // Register BMP decoder
)

// DecodeTexture decodes a PNG, JPEG or BMP stream into a single-level RGBA
// texture.
func DecodeTexture(r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return TextureFromImage(img)
}

// OpenTexture loads a texture from an image file.
func OpenTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	tex, err := DecodeTexture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tex, nil
}

// TextureFromImage flattens img to interleaved RGBA bytes and loads them.
func TextureFromImage(img image.Image) (*Texture, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, 0, w*h*4)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := ColorOf(img.At(x, y))
			pixels = append(pixels, c.R(), c.G(), c.B(), c.A())
		}
	}
	return LoadTexture(pixels, w, h, 4)
}

// NewCheckerTexture creates a procedural size x size checkerboard with
// cells x cells squares, starting with c1 in the top left.
func NewCheckerTexture(size, cells int, c1, c2 Color) *Texture {
	cell := max(1, size/max(1, cells))
	pixels := make([]byte, 0, size*size*3)
	for y := range size {
		for x := range size {
			c := c1
			if (x/cell+y/cell)%2 == 1 {
				c = c2
			}
			pixels = append(pixels, c.R(), c.G(), c.B())
		}
	}
	tex, err := LoadTexture(pixels, size, size, 3)
	if err != nil {
		panic(fmt.Sprintf("render: checker texture: %v", err))
	}
	return tex
}
