// Package vecmath provides the vector algebra the transport kernel builds
// on: point/direction arithmetic and ray-triangle intersection with
// feature classification.
//
// 3-vectors are github.com/go-gl/mathgl's mgl32.Vec3 throughout the
// module rather than a hand-rolled type, matching how the teacher repo
// uses mathgl for all point/direction/normal math in internal/physics
// and internal/graphics.
package vecmath

import "github.com/go-gl/mathgl/mgl32"

// Vec3 is a position or direction in R^3.
type Vec3 = mgl32.Vec3

// EqualEps reports whether a and b are the same point within squared
// distance eps, per spec's "comparisons use squared-distance < eps".
func EqualEps(a, b Vec3, eps float32) bool {
	d := a.Sub(b)
	return d.Dot(d) < eps
}

// PositionEps is the default tolerance used to match vertex positions
// when building adjacency and when matching a hit triangle against a
// neighbor's faces.
const PositionEps = 1e-5

// IsUnit reports whether v has unit length within the stated tolerance
// (spec invariant: ||d|| in [1-1e-4, 1+1e-4]).
func IsUnit(v Vec3) bool {
	n := v.Len()
	return n >= 1-1e-4 && n <= 1+1e-4
}

// HitFeature classifies where on a triangle a ray intersection landed.
type HitFeature int

const (
	// FeatureNone marks a non-hit or a degenerate classification.
	FeatureNone HitFeature = 0
	// FeatureVertex: intersection landed on (within tolerance of) a vertex.
	FeatureVertex HitFeature = 1
	// FeatureEdge: intersection landed on an edge, away from its endpoints.
	FeatureEdge HitFeature = 2
	// FeatureFace: intersection is interior to the triangle.
	FeatureFace HitFeature = 3
)

// BaryTol is the tolerance used to treat a barycentric coordinate as
// exactly 0 or 1 when classifying a hit (spec's tau_b ~= 1e-5).
const BaryTol = 1e-5

// Hit is the result of a ray-triangle intersection test.
type Hit struct {
	Hit bool
	T   float32 // distance along the ray
	B1  float32 // barycentric weight of P1
	B2  float32 // barycentric weight of P2

	Feature HitFeature
	// Points names the vertices bounding the hit feature: for a face hit
	// all three triangle vertices; for an edge hit the two endpoints of
	// that edge; for a vertex hit the single vertex, duplicated so
	// callers can always read Points[0].
	Points [3]Vec3
}

// IntersectTriangle implements Möller-Trumbore: given triangle (p0,p1,p2)
// and ray (orig, dir), returns the hit record. dir need not be
// normalized; the returned T is in units of dir's length.
func IntersectTriangle(p0, p1, p2, orig, dir Vec3) Hit {
	var h Hit

	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	s1 := dir.Cross(e2)
	divisor := s1.Dot(e1)
	if divisor > -1e-12 && divisor < 1e-12 {
		return h // ray parallel to the triangle's plane
	}

	s := orig.Sub(p0)
	s2 := s.Cross(e1)

	t := s2.Dot(e2) / divisor
	b1 := s1.Dot(s) / divisor
	b2 := s2.Dot(dir) / divisor

	if t < 0 || b1 < 0 || b2 < 0 || b1+b2 > 1 {
		return h
	}

	h.Hit = true
	h.T = t
	h.B1 = b1
	h.B2 = b2
	h.Feature, h.Points = classify(b1, b2, p0, p1, p2)
	return h
}

// classify buckets a barycentric hit into face/edge/vertex per spec 4.A:
// type=3 when strictly interior, type=1 when two of the three
// degeneracies {b1=0, b2=0, b1+b2=1} hold, type=2 when exactly one does.
func classify(b1, b2 float32, p0, p1, p2 Vec3) (HitFeature, [3]Vec3) {
	zb1 := nearZero(b1)
	zb2 := nearZero(b2)
	onSum := nearZero(b1 + b2 - 1)

	degeneracies := 0
	if zb1 {
		degeneracies++
	}
	if zb2 {
		degeneracies++
	}
	if onSum {
		degeneracies++
	}

	switch {
	case degeneracies == 0:
		return FeatureFace, [3]Vec3{p0, p1, p2}
	case degeneracies == 1:
		switch {
		case zb1:
			return FeatureEdge, [3]Vec3{p0, p2, p2} // edge P0-P2
		case zb2:
			return FeatureEdge, [3]Vec3{p0, p1, p1} // edge P0-P1
		default: // onSum
			return FeatureEdge, [3]Vec3{p1, p2, p2} // edge P1-P2
		}
	default: // two or more degeneracies: a vertex
		switch {
		case zb1 && zb2:
			return FeatureVertex, [3]Vec3{p0, p0, p0}
		case zb1 && onSum:
			return FeatureVertex, [3]Vec3{p2, p2, p2}
		default: // zb2 && onSum
			return FeatureVertex, [3]Vec3{p1, p1, p1}
		}
	}
}

func nearZero(x float32) bool {
	return x > -BaryTol && x < BaryTol
}
