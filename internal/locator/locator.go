// Package locator implements the per-step ray/tetrahedron traversal:
// given a photon's current tetrahedron, position, and direction, find
// the exit face, the distance to it, and the neighbor tetrahedron across
// it.
//
// Ported from the original's transpose_core::Get_next_Pyramid
// (original_source/src/Transpose_core.h), which is the single most
// bug-prone routine in the system per spec.md sec 4.C / sec 9.
package locator

import (
	"photontrace/internal/mesh"
	"photontrace/internal/vecmath"
)

// reentryGuard (tau_min in spec.md) rejects intersections the photon has
// essentially already crossed, guarding against immediately
// re-intersecting the face it just entered through.
const reentryGuard = 1e6 * 1.1920929e-7 // 1e6 * float32 epsilon

// Result is the outcome of locating a photon's next tetrahedron.
type Result struct {
	Found    bool
	NextTet  int
	Dist     float32
	HitFace  mesh.Face
	Feature  vecmath.HitFeature
}

// Locate finds, from tetrahedron cur's four faces, the nearest exit along
// (pos, dir) and resolves the neighbor on the other side of it. Returns
// Found=false when no face yields a valid forward hit (the photon is at
// rest on a face, or traveling parallel to all four within tolerance) —
// spec.md sec 4.C's "no exit found" case, which the caller reports as a
// runtime traversal failure (IGNORE).
func Locate(m *mesh.Mesh, cur int, pos, dir vecmath.Vec3) Result {
	tet := m.Tets[cur]
	faces := [4]mesh.Face{tet.F1, tet.F2, tet.F3, tet.F4}

	bestT := float32(-1)
	var bestHit vecmath.Hit
	var bestFace mesh.Face
	found := false

	for _, f := range faces {
		h := vecmath.IntersectTriangle(f.P1, f.P2, f.P3, pos, dir)
		if !h.Hit || h.T <= reentryGuard {
			continue
		}
		if !found || h.T < bestT {
			found = true
			bestT = h.T
			bestHit = h
			bestFace = f
		}
	}
	if !found {
		return Result{Found: false}
	}

	minLen := m.MinEdgeLength()
	probe := pos.Add(dir.Mul(bestT + 0.1*minLen))

	switch bestHit.Feature {
	case vecmath.FeatureFace:
		hitTri := mesh.Face{P1: bestHit.Points[0], P2: bestHit.Points[1], P3: bestHit.Points[2]}
		for _, j := range tet.N3 {
			if m.Tets[j].HasFace(hitTri) {
				return Result{Found: true, NextTet: int(j), Dist: bestT, HitFace: bestFace, Feature: bestHit.Feature}
			}
		}
	case vecmath.FeatureEdge:
		for _, j := range tet.N2 {
			if m.Tets[j].InTetrahedron(probe) {
				return Result{Found: true, NextTet: int(j), Dist: bestT, HitFace: bestFace, Feature: bestHit.Feature}
			}
		}
	case vecmath.FeatureVertex:
		for _, j := range tet.N1 {
			if m.Tets[j].InTetrahedron(probe) {
				return Result{Found: true, NextTet: int(j), Dist: bestT, HitFace: bestFace, Feature: bestHit.Feature}
			}
		}
	}

	// A valid exit face was found but no neighbor claims it. A
	// well-formed mesh has every true domain boundary covered by a
	// policy-tagged OutOfRange tetrahedron, so reaching here means the
	// mesh has a gap at this face; the caller treats this the same as
	// "no exit found" (spec.md sec 7: a runtime traversal failure, IGNORE).
	return Result{Found: false, Dist: bestT, HitFace: bestFace, Feature: bestHit.Feature}
}
