// Package policy classifies tetrahedra as emitter, collector,
// out-of-range, or ignore, and handles photon emission.
//
// Ported from the original's DefaultEmitCollectStrategy
// (original_source/src/Transpose_core.h), which the original itself
// never finished (`emit` is a stub comment). Dispatch is a plain slice
// lookup, not an interface or vtable, per spec.md sec 9's note that
// virtual dispatch is unusable on the original's accelerator target —
// a constraint this CPU implementation keeps anyway since it is simply
// the right shape for "a pure function tet-index -> classification".
package policy

import (
	"fmt"
	"math/rand"

	"photontrace/internal/mesh"
	"photontrace/internal/photon"
	"photontrace/internal/vecmath"
)

// Class is the per-tetrahedron role in a run.
type Class int

const (
	// RoleIgnore is the default: neither emitter, collector, nor boundary.
	RoleIgnore Class = iota
	RoleEmit
	RoleCollect
	RoleOutOfRange
)

// Table is an immutable tet-index -> Class lookup plus the emission
// parameters (launch direction) a run needs.
type Table struct {
	roles     []Class
	emitTets  []int
	launchDir vecmath.Vec3
}

// DefaultLaunchDir is the emission direction used when the caller does
// not configure one explicitly (spec.md sec 4.G / sec 9: the original set
// this inconsistently across code paths; this implementation always
// takes it as an explicit, documented parameter).
var DefaultLaunchDir = vecmath.Vec3{0, 0, 1}

// NewTable builds a policy table sized to nTets, defaulting every
// tetrahedron to RoleIgnore, with the given launch direction (normalized;
// DefaultLaunchDir if the zero vector is passed).
func NewTable(nTets int, launchDir vecmath.Vec3) *Table {
	if launchDir.Len() == 0 {
		launchDir = DefaultLaunchDir
	}
	return &Table{
		roles:     make([]Class, nTets),
		launchDir: launchDir.Normalize(),
	}
}

// Set assigns tetrahedron i's role. Must be called before the table is
// used to emit photons so the emitter index cache stays correct.
func (t *Table) Set(i int, c Class) {
	t.roles[i] = c
	if c == RoleEmit {
		t.emitTets = append(t.emitTets, i)
	}
}

// Role returns tetrahedron i's classification.
func (t *Table) Role(i int) Class {
	if i < 0 || i >= len(t.roles) {
		return RoleIgnore
	}
	return t.roles[i]
}

// Emit launches a new photon from a uniformly chosen emitter tetrahedron,
// placed at its centroid (guaranteed interior, unlike a vertex — see
// SPEC_FULL.md sec 4) traveling in the table's launch direction.
func (t *Table) Emit(m *mesh.Mesh, rng *rand.Rand) (photon.Photon, error) {
	if len(t.emitTets) == 0 {
		return photon.Photon{}, fmt.Errorf("policy table has no EMIT tetrahedra")
	}
	idx := t.emitTets[rng.Intn(len(t.emitTets))]
	tet := m.Tets[idx]
	centroid := tet.P1.Add(tet.P2).Add(tet.P3).Add(tet.P4).Mul(0.25)
	return photon.New(centroid, t.launchDir, idx), nil
}

// Classify reports whether entering tetrahedron i should terminate the
// photon, and with what classification. ok is false when the tet is
// neither a collector nor out-of-range (i.e. transport continues).
func (t *Table) Classify(i int) (class photon.Classification, ok bool) {
	switch t.Role(i) {
	case RoleCollect:
		return photon.Collect, true
	case RoleOutOfRange:
		return photon.OutOfRange, true
	default:
		return 0, false
	}
}
