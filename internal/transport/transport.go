// Package transport implements the per-photon random-walk state machine:
// emit, then repeated (step -> boundary-or-scatter -> roulette) until the
// photon terminates.
//
// Ported from the original's transpose_core (original_source/src/
// Transpose_core.h): run/move/DealWithFace/Mirror/Transmit/Scatter/Absorb/
// roulette, generalized from Kokkos KOKKOS_INLINE_FUNCTION methods closed
// over a single photon to plain Go functions taking explicit state.
package transport

import (
	"math"
	"math/rand"

	"photontrace/internal/locator"
	"photontrace/internal/mesh"
	"photontrace/internal/photon"
	"photontrace/internal/policy"
	"photontrace/internal/vecmath"
)

// Constants fixed by spec.md sec 4.E.
const (
	WeightMin       = 1e-4
	SurvivalProb    = 0.1
	MaxInnerIter    = 100   // inner loop iterations per outer step
	MaxOuterIter    = 100000 // recommended defensive bound on outer steps
)

// Run executes one photon from emission to termination and returns its
// termination record. The photon is fully independent of every other
// photon transported this way (spec.md sec 5's embarrassingly-parallel
// guarantee): Run touches only m, tbl (read-only) and rng (owned by the
// caller — see internal/prng for how the driver gives each worker its
// own independent *rand.Rand stream).
func Run(m *mesh.Mesh, tbl *policy.Table, rng *rand.Rand) (photon.Termination, error) {
	p, err := tbl.Emit(m, rng)
	if err != nil {
		return photon.Termination{}, err
	}

	var result photon.Termination
	result.Class = photon.Ignore

	outer := 0
	for p.Alive {
		outer++
		if outer > MaxOuterIter {
			break
		}
		stepOnce(m, tbl, &p, rng, &result)
		if !p.Alive {
			break
		}
		roulette(&p, rng)
	}

	if result.Class == photon.Ignore {
		result.TetIndex = p.Cur
		result.Pos = p.Pos
		result.Dir = p.Dir
		result.Weight = p.Weight
	}
	return result, nil
}

// stepOnce runs one free-flight sample through to either a boundary
// crossing, a collision (absorb+scatter), a collector/out-of-range
// termination, or an iteration-cap abort — the body of the original's
// move().
func stepOnce(m *mesh.Mesh, tbl *policy.Table, p *photon.Photon, rng *rand.Rand, result *photon.Termination) {
	tet := m.Tets[p.Cur]
	mua, mus := tet.Attr.MuA, tet.Attr.MuS

	var s float32
	if mua+mus > 0 {
		u := float32(rng.Float64())
		if u <= 0 {
			u = 1e-7
		}
		s = float32(-math.Log(float64(u))) / (mua + mus)
	} else {
		s = 1
	}

	for iter := 0; s >= 0 && p.Alive; iter++ {
		if iter >= MaxInnerIter {
			p.Alive = false
			result.Class = photon.Ignore
			return
		}

		loc := locator.Locate(m, p.Cur, p.Pos, p.Dir)
		if !loc.Found {
			p.Alive = false
			result.Class = photon.Ignore
			return
		}
		p.Next = loc.NextTet

		if class, terminal := tbl.Classify(p.Next); terminal {
			p.Alive = false
			result.Class = class
			result.TetIndex = p.Next
			result.Pos = p.Pos
			result.Dir = p.Dir
			result.Weight = p.Weight
			return
		}

		if s > loc.Dist {
			p.Move(loc.Dist)
			s -= loc.Dist
			dealWithFace(m, loc.HitFace, p, rng)
		} else {
			p.Move(s)
			absorb(p, mua, mus)
			scatter(p, tet.Attr.G, rng)
			// The original resets s_ to 0 here, which still satisfies its
			// own "while (s_ >= 0)" and re-enters Get_next_Pyramid at the
			// same point with a zero remaining distance — an infinite
			// loop absorbing/scattering at a single collision site
			// forever, never returning control to roulette(). MaxInnerIter
			// exists to survive exactly that (spec.md sec 4.E); ending the
			// inner loop here is the correct one-collision-per-step
			// behavior the outer run() loop's roulette call expects.
			s = -1
		}
	}
}

// dealWithFace applies Fresnel reflection/refraction at the interface
// between the current and next tetrahedron, per spec.md sec 4.E.
func dealWithFace(m *mesh.Mesh, face mesh.Face, p *photon.Photon, rng *rand.Rand) {
	n1 := m.Tets[p.Cur].Attr.N
	n2 := m.Tets[p.Next].Attr.N
	nr := n1 / n2
	if nr == 1 {
		p.Cur = p.Next
		return
	}

	normal := face.Normal()
	cosThetaI := -p.Dir.Dot(normal)

	underRadical := 1 - nr*nr*(1-cosThetaI*cosThetaI)
	if underRadical <= 0 {
		mirror(normal, p)
		return
	}
	cosThetaT := float32(math.Sqrt(float64(underRadical)))

	var thetaI float32
	if cosThetaI > 0 {
		thetaI = float32(math.Acos(float64(cosThetaI)))
	} else {
		thetaI = float32(math.Acos(float64(-cosThetaI)))
	}
	thetaT := float32(math.Acos(float64(cosThetaT)))

	var r float32
	if s := math.Sin(float64(thetaI + thetaT)); s <= 1e-15 {
		ratio := (nr - 1) / (nr + 1)
		r = ratio * ratio
	} else {
		sinDiff := math.Sin(float64(thetaI - thetaT))
		tanDiff := math.Tan(float64(thetaI - thetaT))
		tanSum := math.Tan(float64(thetaI + thetaT))
		r = float32(0.5 * (sinDiff*sinDiff/(s*s) + tanDiff*tanDiff/(tanSum*tanSum)))
	}

	xi := float32(rng.Float64())
	if xi <= r {
		mirror(normal, p)
		return
	}
	transmit(nr, cosThetaI, cosThetaT, normal, p)
}

func mirror(normal vecmath.Vec3, p *photon.Photon) {
	cdot := p.Dir.Dot(normal)
	p.Dir = p.Dir.Sub(normal.Mul(2 * cdot))
	p.Next = p.Cur
}

func transmit(nr, cosThetaI, cosThetaT float32, normal vecmath.Vec3, p *photon.Photon) {
	var sign float32
	if cosThetaI > 0 {
		sign = -cosThetaT
	} else {
		sign = cosThetaT
	}
	p.Dir = p.Dir.Mul(nr).Add(normal.Mul(nr*cosThetaI + sign))
	p.Cur = p.Next
}

// absorb deducts the fraction of weight attributable to absorption at
// this collision site.
func absorb(p *photon.Photon, mua, mus float32) {
	if mua+mus <= 0 {
		return
	}
	dw := p.Weight * mua / (mua + mus)
	p.Weight -= dw
}

// scatter applies Henyey-Greenstein (or isotropic, when g=0) scattering
// to the photon's direction.
func scatter(p *photon.Photon, g float32, rng *rand.Rand) {
	var cosTheta float32
	if g != 0 {
		xi := float32(rng.Float64())
		if xi > 0 && xi < 1 {
			g2 := g * g
			inner := (1 - g2) / (1 - g*(1-2*xi))
			cosTheta = (1 + g2 - inner*inner) / (2 * g)
		} else {
			// The original substitutes (1-xi)*pi here — a radian value
			// where a cosine belongs, a unit bug. The Henyey-Greenstein
			// expression above tends to cos(theta) = -1 as xi -> 0 and
			// +1 as xi -> 1; we use those limits instead (spec.md sec 9
			// Open Question).
			if xi <= 0 {
				cosTheta = -1
			} else {
				cosTheta = 1
			}
		}
	} else {
		cosTheta = 2*float32(rng.Float64()) - 1
	}

	phi := 2 * math.Pi * rng.Float64()
	sinTheta := float32(math.Sqrt(math.Max(0, float64(1-cosTheta*cosTheta))))
	sinPsi := float32(math.Sin(phi))
	cosPsi := float32(math.Cos(phi))

	d := p.Dir
	var dxn, dyn, dzn float32
	if float32(math.Abs(float64(d.Z()))) > 0.999 {
		dxn = sinTheta * cosPsi
		dyn = sinTheta * sinPsi
		sign := float32(1)
		if d.Z() < 0 {
			sign = -1
		}
		dzn = cosTheta * sign
	} else {
		denom := float32(math.Sqrt(float64(1 - d.Z()*d.Z())))
		dxn = sinTheta*(d.X()*d.Z()*cosPsi-d.Y()*sinPsi)/denom + d.X()*cosTheta
		dyn = sinTheta*(d.Y()*d.Z()*cosPsi+d.X()*sinPsi)/denom + d.Y()*cosTheta
		dzn = -sinTheta*cosPsi*denom + d.Z()*cosTheta
	}

	nd := vecmath.Vec3{dxn, dyn, dzn}
	p.Dir = nd.Normalize()
}

// roulette applies Russian-roulette termination to low-weight photons
// (spec.md sec 4.E).
func roulette(p *photon.Photon, rng *rand.Rand) {
	if p.Weight >= WeightMin {
		return
	}
	if float32(rng.Float64()) > SurvivalProb {
		p.Alive = false
		return
	}
	p.Weight /= SurvivalProb
}
