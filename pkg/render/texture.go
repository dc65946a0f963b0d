// Package render provides software rasterization for softraster.
package render

import (
	"errors"
	"fmt"
	"math"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapMirror                 // Tile, flipping every other copy
	WrapClamp                  // Clamp to edge
)

// Filter selects how texels are combined when sampling.
type Filter int

const (
	FilterNearest Filter = iota // Nearest-neighbor (pixelated)
	FilterLinear                // Bilinear interpolation within one level
)

// Sampler describes how a texture is read.
//
// Mip is carried so that loaders can round-trip it, but level selection is
// always nearest-level: the renderer picks one level per fragment and never
// blends two.
type Sampler struct {
	WrapU WrapMode
	WrapV WrapMode
	Mag   Filter // used at level 0
	Min   Filter // used at levels above 0
	Mip   Filter
}

// DefaultSampler repeats in both directions and samples nearest.
func DefaultSampler() Sampler {
	return Sampler{WrapU: WrapRepeat, WrapV: WrapRepeat}
}

var (
	ErrUnsupportedFormat = errors.New("unsupported texture format")
	ErrInvalidSize       = errors.New("invalid texture size")
)

// clampMax keeps clamped and mirrored coordinates strictly below 1 so that
// scaling by the level width never lands one past the last texel.
const clampMax = 1 - 1e-9

// Texture is a packed ARGB image with an optional mip chain stored
// back-to-back in Pixels. Offsets[i] is where level i starts; level 0 is
// always at 0 and each further level is half the size (rounded down) of the
// one before it.
type Texture struct {
	Width   int
	Height  int
	Depth   int // channels in the source data, 3 or 4
	Pixels  []Color
	Offsets []int
}

// LoadTexture packs interleaved 8-bit pixel data into a single-level
// texture. channels must be 3 (RGB, alpha becomes 255) or 4 (RGBA).
func LoadTexture(pixels []byte, width, height, channels int) (*Texture, error) {
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	n := width * height
	if len(pixels) < n*channels {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrInvalidSize, len(pixels), n*channels)
	}

	t := &Texture{
		Width:   width,
		Height:  height,
		Depth:   channels,
		Pixels:  make([]Color, n),
		Offsets: []int{0},
	}
	for i := range n {
		p := pixels[i*channels:]
		a := uint8(255)
		if channels == 4 {
			a = p[3]
		}
		t.Pixels[i] = RGBA(p[0], p[1], p[2], a)
	}
	return t, nil
}

// Levels returns the number of mip levels, including level 0.
func (t *Texture) Levels() int {
	return len(t.Offsets)
}

// LevelSize returns the dimensions of the given mip level.
func (t *Texture) LevelSize(level int) (w, h int) {
	return t.Width >> level, t.Height >> level
}

// Level returns the pixels of one mip level, or nil if it does not exist.
func (t *Texture) Level(level int) []Color {
	if level < 0 || level >= len(t.Offsets) {
		return nil
	}
	end := len(t.Pixels)
	if level+1 < len(t.Offsets) {
		end = t.Offsets[level+1]
	}
	return t.Pixels[t.Offsets[level]:end]
}

// GenerateMipmaps extends the chain from its last level with 2x2 box
// filtered levels until the next level would have a zero dimension. A 2^n
// square texture ends up with n extra levels. Averaging is per channel in
// integer space and does not account for gamma. Once the chain is complete
// further calls add nothing.
func (t *Texture) GenerateMipmaps() {
	last := len(t.Offsets) - 1
	w, h := t.LevelSize(last)
	src := t.Level(last)

	for w/2 > 0 && h/2 > 0 {
		dw, dh := w/2, h/2
		dst := make([]Color, dw*dh)
		for y := range dh {
			for x := range dw {
				i := 2*x + 2*y*w
				dst[x+y*dw] = average4(src[i], src[i+1], src[i+w], src[i+w+1])
			}
		}
		t.Offsets = append(t.Offsets, len(t.Pixels))
		t.Pixels = append(t.Pixels, dst...)
		src, w, h = dst, dw, dh
	}
}

func average4(a, b, c, d Color) Color {
	avg := func(shift uint) uint32 {
		sum := (uint32(a)>>shift)&0xff + (uint32(b)>>shift)&0xff +
			(uint32(c)>>shift)&0xff + (uint32(d)>>shift)&0xff
		return (sum / 4) << shift
	}
	return Color(avg(24) | avg(16) | avg(8) | avg(0))
}

// wrap maps a coordinate into [0,1) according to mode.
func wrap(c float64, mode WrapMode) float64 {
	switch mode {
	case WrapMirror:
		return math.Min(2*math.Abs(c/2-math.Round(c/2)), clampMax)
	case WrapClamp:
		return math.Max(0, math.Min(clampMax, c))
	default:
		f := c - math.Floor(c)
		if f >= 1 {
			// Tiny negative inputs round up to exactly 1.
			return 0
		}
		return f
	}
}

// SampleAt reads the texture at (u, v) from the given mip level. v = 0 is the
// top row. Lookups that fall outside the pixel data (bad level,
// non-finite coordinates) return ColorMissing.
func (t *Texture) SampleAt(u, v float64, level int, s Sampler) Color {
	if level < 0 || level >= len(t.Offsets) || !finite(u) || !finite(v) {
		return ColorMissing
	}
	filter := s.Mag
	if level > 0 {
		filter = s.Min
	}
	if filter == FilterLinear {
		return t.sampleBilinear(u, v, level, s)
	}
	return t.sampleNearest(wrap(u, s.WrapU), wrap(v, s.WrapV), level)
}

// sampleNearest returns the texel containing the already wrapped (u, v).
func (t *Texture) sampleNearest(u, v float64, level int) Color {
	w, h := t.LevelSize(level)
	x := int(math.Floor(u * float64(w)))
	y := int(math.Floor(v * float64(h)))
	return t.texel(level, x, y)
}

func (t *Texture) texel(level, x, y int) Color {
	w, h := t.LevelSize(level)
	if x < 0 || x >= w || y < 0 || y >= h {
		return ColorMissing
	}
	i := t.Offsets[level] + x + y*w
	if i >= len(t.Pixels) {
		return ColorMissing
	}
	return t.Pixels[i]
}

// sampleBilinear blends the four texels around (u, v) within one level.
func (t *Texture) sampleBilinear(u, v float64, level int, s Sampler) Color {
	w, h := t.LevelSize(level)
	fx := wrap(u, s.WrapU)*float64(w) - 0.5
	fy := wrap(v, s.WrapV)*float64(h) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapTexel(x0+1, w, s.WrapU)
	y1 := wrapTexel(y0+1, h, s.WrapV)
	x0 = wrapTexel(x0, w, s.WrapU)
	y0 = wrapTexel(y0, h, s.WrapV)

	top := lerpColor(t.texel(level, x0, y0), t.texel(level, x1, y0), tx)
	bot := lerpColor(t.texel(level, x0, y1), t.texel(level, x1, y1), tx)
	return lerpColor(top, bot, ty)
}

// wrapTexel wraps an integer texel coordinate into [0, size).
func wrapTexel(x, size int, mode WrapMode) int {
	switch mode {
	case WrapClamp:
		return max(0, min(size-1, x))
	case WrapMirror:
		period := 2 * size
		x %= period
		if x < 0 {
			x += period
		}
		if x >= size {
			x = period - 1 - x
		}
		return x
	default:
		x %= size
		if x < 0 {
			x += size
		}
		return x
	}
}

// lerpColor linearly interpolates every channel of two colors.
func lerpColor(a, b Color, t float64) Color {
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return RGBA(ch(a.R(), b.R()), ch(a.G(), b.G()), ch(a.B(), b.B()), ch(a.A(), b.A()))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
