package vecmath_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"photontrace/internal/vecmath"
)

func TestIntersectTriangleFaceHit(t *testing.T) {
	p0 := vecmath.Vec3{0, 0, 0}
	p1 := vecmath.Vec3{1, 0, 0}
	p2 := vecmath.Vec3{0, 1, 0}

	orig := vecmath.Vec3{0.2, 0.2, -1}
	dir := vecmath.Vec3{0, 0, 1}

	h := vecmath.IntersectTriangle(p0, p1, p2, orig, dir)
	require.True(t, h.Hit)
	require.InDelta(t, 1.0, h.T, 1e-5)
	require.Equal(t, vecmath.FeatureFace, h.Feature)
}

func TestIntersectTriangleEdgeHit(t *testing.T) {
	p0 := vecmath.Vec3{0, 0, 0}
	p1 := vecmath.Vec3{1, 0, 0}
	p2 := vecmath.Vec3{0, 1, 0}

	// Midpoint of edge P0-P1 is (0.5, 0, 0): b1=0.5, b2=0.
	orig := vecmath.Vec3{0.5, 0, -1}
	dir := vecmath.Vec3{0, 0, 1}

	h := vecmath.IntersectTriangle(p0, p1, p2, orig, dir)
	require.True(t, h.Hit)
	require.Equal(t, vecmath.FeatureEdge, h.Feature)
}

func TestIntersectTriangleVertexHit(t *testing.T) {
	p0 := vecmath.Vec3{0, 0, 0}
	p1 := vecmath.Vec3{1, 0, 0}
	p2 := vecmath.Vec3{0, 1, 0}

	orig := vecmath.Vec3{0, 0, -1}
	dir := vecmath.Vec3{0, 0, 1}

	h := vecmath.IntersectTriangle(p0, p1, p2, orig, dir)
	require.True(t, h.Hit)
	require.Equal(t, vecmath.FeatureVertex, h.Feature)
	require.True(t, vecmath.EqualEps(h.Points[0], p0, vecmath.PositionEps))
}

func TestIntersectTriangleMiss(t *testing.T) {
	p0 := vecmath.Vec3{0, 0, 0}
	p1 := vecmath.Vec3{1, 0, 0}
	p2 := vecmath.Vec3{0, 1, 0}

	orig := vecmath.Vec3{5, 5, -1}
	dir := vecmath.Vec3{0, 0, 1}

	h := vecmath.IntersectTriangle(p0, p1, p2, orig, dir)
	require.False(t, h.Hit)
}

func TestIntersectTriangleParallel(t *testing.T) {
	p0 := vecmath.Vec3{0, 0, 0}
	p1 := vecmath.Vec3{1, 0, 0}
	p2 := vecmath.Vec3{0, 1, 0}

	orig := vecmath.Vec3{0.2, 0.2, 1}
	dir := vecmath.Vec3{1, 0, 0} // lies in the triangle's plane

	h := vecmath.IntersectTriangle(p0, p1, p2, orig, dir)
	require.False(t, h.Hit)
}

func TestIsUnit(t *testing.T) {
	require.True(t, vecmath.IsUnit(vecmath.Vec3{0, 0, 1}))
	require.False(t, vecmath.IsUnit(vecmath.Vec3{0, 0, 2}))
}
