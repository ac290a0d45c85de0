package vmath

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func nearV(a, b Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

// TestVec3Arithmetic verifies the basic vector operations
func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}

	if got := V3Add(a, b); got != (Vec3{5, -3, 9}) {
		t.Errorf("V3Add: got %v", got)
	}
	if got := V3Sub(a, b); got != (Vec3{-3, 7, -3}) {
		t.Errorf("V3Sub: got %v", got)
	}
	if got := V3Scale(a, 2); got != (Vec3{2, 4, 6}) {
		t.Errorf("V3Scale: got %v", got)
	}
	if got := V3Dot(a, b); got != 12 {
		t.Errorf("V3Dot: expected 12, got %f", got)
	}
	if got := V3MagSq(a); got != 14 {
		t.Errorf("V3MagSq: expected 14, got %f", got)
	}
	if got := V3Dist(Vec3{}, Vec3{3, 4, 0}); !near(got, 5) {
		t.Errorf("V3Dist: expected 5, got %f", got)
	}
}

// TestV3CrossHandedness verifies x × y = z and anti-commutativity
func TestV3CrossHandedness(t *testing.T) {
	x, y, z := Vec3{X: 1}, Vec3{Y: 1}, Vec3{Z: 1}
	if got := V3Cross(x, y); got != z {
		t.Errorf("expected x×y = z, got %v", got)
	}
	if got := V3Cross(y, x); got != V3Scale(z, -1) {
		t.Errorf("expected y×x = -z, got %v", got)
	}
	// Right-handed listener looking down -Z with +Y up has +X on the right
	if got := V3Cross(Vec3{Z: -1}, y); got != x {
		t.Errorf("expected forward×up = +X, got %v", got)
	}
}

// TestV3Normalize verifies unit length and the zero vector case
func TestV3Normalize(t *testing.T) {
	n := V3Normalize(Vec3{0, 3, 4})
	if !near(V3Mag(n), 1) || !nearV(n, Vec3{0, 0.6, 0.8}) {
		t.Errorf("unexpected normalized vector %v", n)
	}
	if got := V3Normalize(Vec3{}); got != (Vec3{}) {
		t.Errorf("expected zero vector to stay zero, got %v", got)
	}
}

// TestV3Lerp verifies endpoints and midpoint
func TestV3Lerp(t *testing.T) {
	a, b := Vec3{0, 0, 0}, Vec3{10, -10, 4}
	if got := V3Lerp(a, b, 0); got != a {
		t.Errorf("t=0: got %v", got)
	}
	if got := V3Lerp(a, b, 1); got != b {
		t.Errorf("t=1: got %v", got)
	}
	if got := V3Lerp(a, b, 0.5); !nearV(got, Vec3{5, -5, 2}) {
		t.Errorf("t=0.5: got %v", got)
	}
}
