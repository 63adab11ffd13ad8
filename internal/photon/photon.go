// Package photon defines the random-walker state the transport kernel
// advances, and the termination record it produces.
//
// Ported from the original's Photon3D/resultType (original_source/src/
// Transpose_core.h), generalized from Kokkos POD structs to plain Go
// structs.
package photon

import "photontrace/internal/vecmath"

// Classification is the terminal state a photon ends in.
type Classification int

const (
	// Ignore marks a photon that terminated without being collected: a
	// Russian-roulette kill, an iteration-cap abort, or a locator failure.
	Ignore Classification = iota - 1
	// Emit is never a termination classification in practice (a photon
	// always leaves its emitting tetrahedron before the kernel records a
	// result) but is kept as the zero value matching the
	// original's CollectType enum for the policy table's own vocabulary;
	// see internal/policy.
	Emit
	// Collect marks a photon absorbed by a collector tetrahedron.
	Collect
	// OutOfRange marks a photon that exited into a tetrahedron the policy
	// table marks as outside the simulated domain.
	OutOfRange
)

func (c Classification) String() string {
	switch c {
	case Emit:
		return "EMIT"
	case Collect:
		return "COLLECT"
	case OutOfRange:
		return "OUTOFRANGE"
	default:
		return "IGNORE"
	}
}

// Photon is the mutable state of one random walker.
type Photon struct {
	Pos    vecmath.Vec3
	Dir    vecmath.Vec3
	Weight float32
	MaxZ   float32
	PathLen float32

	Cur  int // current tetrahedron index
	Next int // next tetrahedron index, valid only mid-step

	Alive bool
}

// New creates a photon at pos traveling in dir (assumed unit length),
// full weight, alive, seated in tetrahedron cur.
func New(pos, dir vecmath.Vec3, cur int) Photon {
	return Photon{
		Pos:    pos,
		Dir:    dir,
		Weight: 1,
		Cur:    cur,
		Next:   cur,
		Alive:  true,
	}
}

// Move advances the photon's position by length along its current direction
// and tracks the running path length and the maximum z it has reached.
func (p *Photon) Move(length float32) {
	p.Pos = p.Pos.Add(p.Dir.Mul(length))
	p.PathLen += length
	if p.Pos.Z() > p.MaxZ {
		p.MaxZ = p.Pos.Z()
	}
}

// Termination is the single record produced per photon.
type Termination struct {
	Class    Classification
	TetIndex int
	Pos      vecmath.Vec3
	Dir      vecmath.Vec3
	Weight   float32
}
