package vmath

import "math"

// planeEpsilon rejects segments parallel to a polygon plane
const planeEpsilon = 1e-9

// PolygonNormal returns the unnormalized face normal of a planar polygon
// Winding follows the right-hand rule; returns zero vector for degenerate input
func PolygonNormal(poly []Vec3) Vec3 {
	if len(poly) < 3 {
		return Vec3{}
	}
	// Newell's method tolerates slightly non-planar and collinear leading vertices
	var n Vec3
	for i := range poly {
		cur := poly[i]
		next := poly[(i+1)%len(poly)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// SegmentPolygon tests segment a->b against a convex planar polygon
// Returns hit parameter t in [0, 1] along the segment and the sign of dir·normal
// facing < 0 means the segment enters through the front face
func SegmentPolygon(a, b Vec3, poly []Vec3) (t float64, facing float64, hit bool) {
	n := PolygonNormal(poly)
	if V3MagSq(n) == 0 {
		return 0, 0, false
	}

	dir := V3Sub(b, a)
	denom := V3Dot(n, dir)
	if math.Abs(denom) < planeEpsilon {
		return 0, 0, false
	}

	t = V3Dot(n, V3Sub(poly[0], a)) / denom
	if t < 0 || t > 1 {
		return 0, 0, false
	}

	p := V3Add(a, V3Scale(dir, t))

	// Inside test: p must lie on the same side of every edge
	for i := range poly {
		v0 := poly[i]
		v1 := poly[(i+1)%len(poly)]
		edge := V3Sub(v1, v0)
		if V3Dot(V3Cross(edge, V3Sub(p, v0)), n) < -planeEpsilon {
			return 0, 0, false
		}
	}

	return t, math.Copysign(1, denom), true
}
