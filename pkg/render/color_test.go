package render

import (
	"image/color"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
)

func TestColorChannels(t *testing.T) {
	c := RGBA(0x12, 0x34, 0x56, 0x78)
	if c != 0x78123456 {
		t.Fatalf("packed = %08x", uint32(c))
	}
	if c.R() != 0x12 || c.G() != 0x34 || c.B() != 0x56 || c.A() != 0x78 {
		t.Errorf("channels = %d %d %d %d", c.R(), c.G(), c.B(), c.A())
	}
}

func TestColorFromVec3(t *testing.T) {
	tests := []struct {
		in   math3d.Vec3
		want Color
	}{
		{math3d.V3(0, 0, 0), ColorBlack},
		{math3d.V3(1, 1, 1), ColorWhite},
		{math3d.V3(2, -1, 0.5), RGB(255, 0, 128)},
		{math3d.V3(nan(), inf(), -inf()), RGB(0, 255, 0)},
	}

	for _, tc := range tests {
		if got := ColorFromVec3(tc.in); got != tc.want {
			t.Errorf("ColorFromVec3(%v) = %08x, want %08x", tc.in, uint32(got), uint32(tc.want))
		}
	}
}

func TestColorOf(t *testing.T) {
	// Premultiplied half-transparent red.
	got := ColorOf(color.RGBA{R: 128, A: 128})
	if got.A() != 128 || got.R() != 255 {
		t.Errorf("ColorOf = %08x", uint32(got))
	}
	if ColorOf(ColorSky) != ColorSky {
		t.Error("round trip through color.Color changed the value")
	}
}

func TestCellColor(t *testing.T) {
	if cellColor(RGBA(1, 2, 3, 0)) != nil {
		t.Error("transparent pixel should use the terminal default")
	}
	if got := cellColor(ColorRed); got != ColorRed.NRGBA() {
		t.Errorf("cellColor(red) = %v", got)
	}
}
