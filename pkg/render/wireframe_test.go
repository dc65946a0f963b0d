package render

import (
	"math"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
)

func TestClipSegment(t *testing.T) {
	tests := []struct {
		name string
		p, q math3d.Vec2
		ok   bool
	}{
		{"inside", math3d.V2(1, 1), math3d.V2(5, 5), true},
		{"crosses left edge", math3d.V2(-5, 4), math3d.V2(5, 4), true},
		{"huge diagonal", math3d.V2(-1e12, -1e12), math3d.V2(1e12, 1e12), true},
		{"fully above", math3d.V2(0, -3), math3d.V2(9, -1), false},
		{"fully right", math3d.V2(12, 0), math3d.V2(20, 9), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, q, ok := clipSegment(tc.p, tc.q, 10, 10)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			for _, v := range []math3d.Vec2{p, q} {
				if v.X < 0 || v.X >= 10 || v.Y < 0 || v.Y >= 10 {
					t.Errorf("endpoint %v outside the screen", v)
				}
			}
		})
	}
}

func TestDrawLine3DBehindCamera(t *testing.T) {
	r, fb := createTestRenderer(16, 16)
	r.SetProjectionMatrix(math3d.Perspective(math.Pi/2, 1, 0.1, 10))
	r.DrawLine3D(fb, math3d.V3(-1, 0, 1), math3d.V3(1, 0, 2), ColorWhite)
	if n := countColor(fb, ColorWhite); n != 0 {
		t.Errorf("segment behind the camera lit %d pixels", n)
	}

	r.DrawLine3D(fb, math3d.V3(0, 0, 1), math3d.V3(0, 0, -5), ColorWhite)
	if n := countColor(fb, ColorWhite); n == 0 {
		t.Error("segment crossing the near plane drew nothing")
	}
}

func TestDrawBounds(t *testing.T) {
	r, fb := createTestRenderer(32, 32)
	r.SetProjectionMatrix(math3d.Perspective(math.Pi/2, 1, 0.1, 10))
	box := AABB{math3d.V3(-1, -1, -4), math3d.V3(1, 1, -3)}
	r.DrawBounds(fb, box, math3d.NewTransform(), ColorGreen)

	if n := countColor(fb, ColorGreen); n == 0 {
		t.Fatal("bounds drew nothing")
	}
	// The box is centered so the middle pixel lies inside the outline.
	if fb.Pixel(16, 16) == ColorGreen {
		t.Error("center pixel should not be on an edge")
	}

	fb.Clear(ColorBlack)
	r.DrawBounds(fb, EmptyAABB(), math3d.NewTransform(), ColorGreen)
	if n := countColor(fb, ColorGreen); n != 0 {
		t.Error("empty bounds drew pixels")
	}
}

func TestDrawMeshWireframe(t *testing.T) {
	r, fb := createTestRenderer(16, 16)
	r.DrawMeshWireframe(fb, quadMesh(0.5), math3d.NewTransform(), ColorRed)
	if n := countColor(fb, ColorRed); n == 0 {
		t.Error("wireframe drew nothing")
	}
	if fb.Depth[0] != posInf {
		t.Error("wireframe must not write depth")
	}
}
