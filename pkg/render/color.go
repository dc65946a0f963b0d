package render

import (
	"image/color"
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// Color is a packed 8-bit ARGB color, 0xAARRGGBB.
type Color uint32

// Colors for convenience
var (
	ColorBlack = RGB(0, 0, 0)
	ColorWhite = RGB(255, 255, 255)
	ColorRed   = RGB(255, 0, 0)
	ColorGreen = RGB(0, 255, 0)
	ColorBlue  = RGB(0, 0, 255)
	ColorGray  = RGB(128, 128, 128)
	ColorSky   = RGB(135, 206, 235)

	// ColorMissing is returned by texture lookups that fall outside the
	// pixel array. It is loud on purpose.
	ColorMissing = RGB(255, 0, 255)
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return RGBA(r, g, b, 255)
}

// RGBA creates a color with explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// ColorFromVec3 converts a 0..1 RGB triple to an opaque color, clamping and
// rounding each channel.
func ColorFromVec3(v math3d.Vec3) Color {
	return RGB(unitToByte(v.X), unitToByte(v.Y), unitToByte(v.Z))
}

func unitToByte(f float64) uint8 {
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(math.Round(f * 255))
}

// A returns the alpha channel.
func (c Color) A() uint8 { return uint8(c >> 24) }

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c) }

// Vec3 returns the RGB channels scaled to 0..1.
func (c Color) Vec3() math3d.Vec3 {
	return math3d.V3(float64(c.R()), float64(c.G()), float64(c.B())).Scale(1.0 / 255)
}

// NRGBA converts to the standard library's non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// ColorOf converts any color.Color to a packed Color, undoing alpha
// premultiplication.
func ColorOf(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA(n.R, n.G, n.B, n.A)
}
