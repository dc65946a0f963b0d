package render

import (
	"math"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
)

func TestPlaneDistance(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := planeFromRow(math3d.V4(0, 0, 2, 0))

	tests := []struct {
		name  string
		point math3d.Vec3
		want  float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := plane.Distance(tc.point); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFrustumFromPerspective(t *testing.T) {
	proj := math3d.Perspective(math.Pi/2, 1, 1, 10)
	f := NewFrustum(proj)

	tests := []struct {
		name  string
		point math3d.Vec3
		want  bool
	}{
		{"center", math3d.V3(0, 0, -5), true},
		{"just past near", math3d.V3(0, 0, -1.01), true},
		{"before near", math3d.V3(0, 0, -0.99), false},
		{"behind camera", math3d.V3(0, 0, 5), false},
		{"past far", math3d.V3(0, 0, -10.5), false},
		{"left of view", math3d.V3(-6, 0, -5), false},
		{"above view", math3d.V3(0, 6, -5), false},
		{"inside corner", math3d.V3(4.5, 4.5, -5), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.ContainsPoint(tc.point); got != tc.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.want)
			}
		})
	}
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := NewFrustum(math3d.Perspective(math.Pi/2, 1, 0.1, 100))

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"in view", AABB{math3d.V3(-1, -1, -6), math3d.V3(1, 1, -4)}, true},
		{"straddles near plane", AABB{math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)}, true},
		{"behind", AABB{math3d.V3(-1, -1, 2), math3d.V3(1, 1, 4)}, false},
		{"far right", AABB{math3d.V3(50, -1, -6), math3d.V3(52, 1, -4)}, false},
		{"beyond far", AABB{math3d.V3(-1, -1, -300), math3d.V3(1, 1, -200)}, false},
		{"empty", EmptyAABB(), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectsAABB(tc.box); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAABBTransform(t *testing.T) {
	box := AABB{math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)}
	m := math3d.Translate(math3d.V3(10, 0, 0)).Mul(math3d.RotateY(math.Pi / 4))
	got := box.Transform(m)

	r := math.Sqrt2
	want := AABB{math3d.V3(10-r, -1, -r), math3d.V3(10+r, 1, r)}
	if !got.Min.ApproxEqual(want.Min, 1e-9) || !got.Max.ApproxEqual(want.Max, 1e-9) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAABBCorners(t *testing.T) {
	box := AABB{math3d.V3(0, 0, 0), math3d.V3(1, 2, 3)}
	seen := map[math3d.Vec3]bool{}
	for _, c := range box.Corners() {
		seen[c] = true
	}
	if len(seen) != 8 {
		t.Errorf("got %d distinct corners, want 8", len(seen))
	}
	if box.Center() != math3d.V3(0.5, 1, 1.5) || box.Size() != math3d.V3(1, 2, 3) {
		t.Errorf("center %v size %v", box.Center(), box.Size())
	}
}
