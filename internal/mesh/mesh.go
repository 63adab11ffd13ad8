// Package mesh owns the tetrahedral mesh: vertex and tetrahedron arrays
// plus the per-tetrahedron adjacency lists the locator walks.
//
// Ported from the original Kokkos implementation's Pyramid/TetMesh
// (original_source/src/Geometry.h, Mesh.h), generalized from
// device-resident Kokkos::View arrays to plain Go slices, and from the
// teacher's internal/world chunk arrays (indexable-by-coordinate storage,
// lazily-computed cached scalars) for the general shape of an owned,
// build-once-then-read-many spatial structure.
package mesh

import (
	"fmt"
	"math"
	"sort"

	"photontrace/internal/vecmath"
)

// Adjacency caps, fixed per spec.md sec 3 (and carried over unchanged
// from the original's MAX_NEIGHBOR_COUNT_1/2/3).
const (
	Max3 = 32  // face-adjacent (shares 3 vertices)
	Max2 = 128 // edge-adjacent (shares 2 vertices)
	Max1 = 256 // vertex-adjacent (shares 1 vertex)
)

// Attributes holds the four optical properties a tetrahedron carries.
type Attributes struct {
	MuA float32 // absorption coefficient, >= 0
	MuS float32 // scattering coefficient, >= 0
	G   float32 // Henyey-Greenstein anisotropy, -1 < g < 1
	N   float32 // refractive index, > 0
}

// Finite reports whether every field is a finite, non-NaN value.
func (a Attributes) Finite() bool {
	for _, v := range []float32{a.MuA, a.MuS, a.G, a.N} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Face is an unordered triple of vertex positions with a deterministic
// outward-pointing normal.
type Face struct {
	P1, P2, P3 vecmath.Vec3
}

// Normal returns normalize((p2-p1) x (p3-p1)).
func (f Face) Normal() vecmath.Vec3 {
	n := f.P2.Sub(f.P1).Cross(f.P3.Sub(f.P1))
	return n.Normalize()
}

// HasVertexPosition reports whether p positionally matches any of the
// face's three corners.
func (f Face) HasVertexPosition(p vecmath.Vec3) bool {
	return vecmath.EqualEps(f.P1, p, vecmath.PositionEps) ||
		vecmath.EqualEps(f.P2, p, vecmath.PositionEps) ||
		vecmath.EqualEps(f.P3, p, vecmath.PositionEps)
}

// equalPositional reports whether f and o are the same triangle by
// positional match (any ordering), not identity.
func (f Face) equalPositional(o Face) bool {
	return f.hasVertexExact(o.P1) && f.hasVertexExact(o.P2) && f.hasVertexExact(o.P3)
}

func (f Face) hasVertexExact(p vecmath.Vec3) bool {
	return vecmath.EqualEps(f.P1, p, vecmath.PositionEps) ||
		vecmath.EqualEps(f.P2, p, vecmath.PositionEps) ||
		vecmath.EqualEps(f.P3, p, vecmath.PositionEps)
}

// Tetrahedron ("Pyramid" in the source this was distilled from) is four
// vertex positions, the four bounding faces they imply, and the optical
// attributes the transport kernel consumes.
//
// Positions are duplicated into the tetrahedron (rather than stored as
// vertex indices with an indirection) for hot-path locality, per spec.md
// sec 3's note that this is the profiler-driven choice for the traversal
// inner loop.
type Tetrahedron struct {
	P1, P2, P3, P4 vecmath.Vec3
	F1, F2, F3, F4 Face
	Attr           Attributes

	N3 []int32 // face-neighbors (share 3 vertices)
	N2 []int32 // edge-neighbors (share 2 vertices)
	N1 []int32 // vertex-neighbors (share 1 vertex)
}

// newTetrahedron builds the four bounding faces from the four corners and
// verifies/repairs outward orientation (spec.md sec 9: "An implementation
// MUST verify at build time by checking that the fourth vertex of the tet
// lies on the inward side of each face and flipping the triangle order
// otherwise").
func newTetrahedron(p1, p2, p3, p4 vecmath.Vec3) Tetrahedron {
	t := Tetrahedron{P1: p1, P2: p2, P3: p3, P4: p4}
	t.F1 = outwardFace(Face{p1, p2, p3}, p4)
	t.F2 = outwardFace(Face{p1, p2, p4}, p3)
	t.F3 = outwardFace(Face{p1, p3, p4}, p2)
	t.F4 = outwardFace(Face{p2, p3, p4}, p1)
	return t
}

// outwardFace returns f, or f with two corners swapped, such that opposite
// (the tetrahedron's 4th vertex, known to be on the inward side) tests
// negative against the face's normal.
func outwardFace(f Face, opposite vecmath.Vec3) Face {
	n := f.Normal()
	d := -n.Dot(f.P1)
	if n.Dot(opposite)+d > 0 {
		// opposite vertex reads as "outward": normal points the wrong way.
		return Face{f.P2, f.P1, f.P3}
	}
	return f
}

// HasFace reports whether f positionally matches one of the tetrahedron's
// four bounding faces.
func (t Tetrahedron) HasFace(f Face) bool {
	return t.F1.equalPositional(f) || t.F2.equalPositional(f) ||
		t.F3.equalPositional(f) || t.F4.equalPositional(f)
}

// sameSide reports whether q is on the inward (non-positive) side of face,
// per spec.md sec 4.C.1's point-in-tet test: delta = n.q - n.p_F, inside
// iff delta <= 0.
func sameSide(q vecmath.Vec3, face Face) bool {
	n := face.Normal()
	d := -n.Dot(face.P1)
	return n.Dot(q)+d <= tolIn
}

// tolIn is the point-in-tet containment tolerance (named tau_in in
// spec.md sec 4.C.1).
const tolIn = 1e-4

// InTetrahedron reports whether q lies on the inward side of all four
// faces.
func (t Tetrahedron) InTetrahedron(q vecmath.Vec3) bool {
	return sameSide(q, t.F1) && sameSide(q, t.F2) && sameSide(q, t.F3) && sameSide(q, t.F4)
}

// edgeLengths returns the six edge lengths of the tetrahedron.
func (t Tetrahedron) edgeLengths() [6]float32 {
	return [6]float32{
		t.P1.Sub(t.P2).Len(),
		t.P1.Sub(t.P3).Len(),
		t.P1.Sub(t.P4).Len(),
		t.P2.Sub(t.P3).Len(),
		t.P2.Sub(t.P4).Len(),
		t.P3.Sub(t.P4).Len(),
	}
}

// Mesh owns the tetrahedron array and its adjacency, immutable once Build
// returns.
type Mesh struct {
	Tets []Tetrahedron

	minEdgeLength   float32
	minEdgeComputed bool
}

// New wraps raw per-tetrahedron vertex quadruples (already decoded from a
// mesh file) into tetrahedra with outward-oriented faces. Attributes start
// as NaN and must be assigned afterwards via SetAttributes before
// adjacency is built, so the finite-attribute invariant check in Build
// catches any tetrahedron left unassigned.
func New(quads [][4]vecmath.Vec3) *Mesh {
	nan := float32(math.NaN())
	tets := make([]Tetrahedron, len(quads))
	for i, q := range quads {
		tets[i] = newTetrahedron(q[0], q[1], q[2], q[3])
		tets[i].Attr = Attributes{MuA: nan, MuS: nan, G: nan, N: nan}
	}
	return &Mesh{Tets: tets}
}

// SetAttributes assigns optical properties to tetrahedron i.
func (m *Mesh) SetAttributes(i int, attr Attributes) {
	m.Tets[i].Attr = attr
}

// ValidateAttributes returns an error naming the first tetrahedron whose
// attributes are non-finite (spec.md sec 3's init invariant).
func (m *Mesh) ValidateAttributes() error {
	for i, t := range m.Tets {
		if !t.Attr.Finite() {
			return fmt.Errorf("tetrahedron %d has non-finite optical attributes: %+v", i, t.Attr)
		}
	}
	return nil
}

// cellOf buckets a position to a coarse grid cell so Build can compare
// only tetrahedra with overlapping vertex buckets instead of all O(N^2)
// pairs, per spec.md sec 4.B's bucketing hint. The grid resolution here
// is coarse on purpose: it must never separate two positions that
// vecmath.EqualEps would call equal into different buckets that are not
// also checked as neighbors, so cells (0.01 wide) are wider than the
// sqrt(PositionEps) ~ 0.0032 matching radius and each vertex contributes
// to the 3x3x3 neighborhood of cells around its own cell.
const bucketScale = 1e2

type cellKey [3]int64

func cellOf(p vecmath.Vec3) cellKey {
	return cellKey{
		int64(math.Floor(float64(p.X()) * bucketScale)),
		int64(math.Floor(float64(p.Y()) * bucketScale)),
		int64(math.Floor(float64(p.Z()) * bucketScale)),
	}
}

// Build computes, for every tetrahedron, the three adjacency lists keyed
// by shared-vertex count (spec.md sec 4.B). Returns an error if any
// tetrahedron's neighbor count would exceed the static cap for that
// category (a fatal build-time error per spec.md sec 9, never a silent
// truncation).
func (m *Mesh) Build() error {
	if err := m.ValidateAttributes(); err != nil {
		return err
	}
	if len(m.Tets) == 0 {
		return fmt.Errorf("mesh has no tetrahedra")
	}

	buckets := make(map[cellKey][]int)
	for i, t := range m.Tets {
		seen := map[cellKey]bool{}
		for _, v := range [4]vecmath.Vec3{t.P1, t.P2, t.P3, t.P4} {
			c := cellOf(v)
			for dx := int64(-1); dx <= 1; dx++ {
				for dy := int64(-1); dy <= 1; dy++ {
					for dz := int64(-1); dz <= 1; dz++ {
						k := cellKey{c[0] + dx, c[1] + dy, c[2] + dz}
						if !seen[k] {
							seen[k] = true
							buckets[k] = append(buckets[k], i)
						}
					}
				}
			}
		}
	}

	candidateSet := make([]map[int]bool, len(m.Tets))
	for i, t := range m.Tets {
		set := map[int]bool{}
		for _, v := range [4]vecmath.Vec3{t.P1, t.P2, t.P3, t.P4} {
			for _, j := range buckets[cellOf(v)] {
				if j != i {
					set[j] = true
				}
			}
		}
		candidateSet[i] = set
	}

	for i := range m.Tets {
		candidates := make([]int, 0, len(candidateSet[i]))
		for j := range candidateSet[i] {
			candidates = append(candidates, j)
		}
		sort.Ints(candidates)

		for _, j := range candidates {
			count := sharedVertexCount(m.Tets[i], m.Tets[j])
			switch count {
			case 3:
				if len(m.Tets[i].N3) >= Max3 {
					return fmt.Errorf("tetrahedron %d exceeds face-neighbor cap %d", i, Max3)
				}
				m.Tets[i].N3 = append(m.Tets[i].N3, int32(j))
			case 2:
				if len(m.Tets[i].N2) >= Max2 {
					return fmt.Errorf("tetrahedron %d exceeds edge-neighbor cap %d", i, Max2)
				}
				m.Tets[i].N2 = append(m.Tets[i].N2, int32(j))
			case 1:
				if len(m.Tets[i].N1) >= Max1 {
					return fmt.Errorf("tetrahedron %d exceeds vertex-neighbor cap %d", i, Max1)
				}
				m.Tets[i].N1 = append(m.Tets[i].N1, int32(j))
			}
		}
	}
	return nil
}

// sharedVertexCount counts how many of a's four vertices positionally
// match one of b's four vertices (0-3), ported from Mesh.h's
// buildNeighbors.
func sharedVertexCount(a, b Tetrahedron) int {
	av := [4]vecmath.Vec3{a.P1, a.P2, a.P3, a.P4}
	bv := [4]vecmath.Vec3{b.P1, b.P2, b.P3, b.P4}
	count := 0
	for _, p := range av {
		for _, q := range bv {
			if vecmath.EqualEps(p, q, vecmath.PositionEps) {
				count++
				break
			}
		}
	}
	return count
}

// MinEdgeLength returns the minimum Euclidean length over all edges of
// all tetrahedra in the mesh, computed lazily on first call and cached
// (spec.md sec 4.B).
func (m *Mesh) MinEdgeLength() float32 {
	if m.minEdgeComputed {
		return m.minEdgeLength
	}
	min := float32(math.MaxFloat32)
	for _, t := range m.Tets {
		for _, l := range t.edgeLengths() {
			if l < min {
				min = l
			}
		}
	}
	m.minEdgeLength = min
	m.minEdgeComputed = true
	return min
}
