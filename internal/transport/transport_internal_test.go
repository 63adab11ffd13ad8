package transport

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"photontrace/internal/photon"
	"photontrace/internal/vecmath"
)

func lenOf(v vecmath.Vec3) float32 {
	return float32(math.Sqrt(float64(v.X()*v.X() + v.Y()*v.Y() + v.Z()*v.Z())))
}

func TestMirrorPreservesUnitLength(t *testing.T) {
	p := photon.New(vecmath.Vec3{0, 0, 0}, vecmath.Vec3{0.6, 0.8, 0}, 0)
	mirror(vecmath.Vec3{0, 1, 0}, &p)
	require.InDelta(t, 1.0, lenOf(p.Dir), 1e-4)
}

func TestMirrorReflectsAroundNormal(t *testing.T) {
	p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, -1, 0}, 0)
	mirror(vecmath.Vec3{0, 1, 0}, &p)
	require.InDelta(t, 0, p.Dir.X(), 1e-5)
	require.InDelta(t, 1, p.Dir.Y(), 1e-5)
	require.InDelta(t, 0, p.Dir.Z(), 1e-5)
}

func TestTransmitPreservesUnitLength(t *testing.T) {
	p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, 0, 1}, 0)
	p.Next = 1
	cosThetaI := float32(1)
	cosThetaT := float32(1)
	transmit(1.0, cosThetaI, cosThetaT, vecmath.Vec3{0, 0, 1}, &p)
	require.InDelta(t, 1.0, lenOf(p.Dir), 1e-4)
	require.Equal(t, 1, p.Cur)
}

func TestTransmitNormalIncidenceEqualIndexUnchanged(t *testing.T) {
	// A photon normally incident on a flat interface between tets of
	// equal refractive index passes through with direction unchanged
	// (spec.md sec 8 property 5, "Snell round-trip").
	p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, 0, 1}, 0)
	p.Next = 1
	transmit(1.0, 1.0, 1.0, vecmath.Vec3{0, 0, 1}, &p)
	require.InDelta(t, 0, p.Dir.X(), 1e-5)
	require.InDelta(t, 0, p.Dir.Y(), 1e-5)
	require.InDelta(t, 1, p.Dir.Z(), 1e-4)
}

func TestAbsorbIsMonotonicallyDecreasing(t *testing.T) {
	p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, 0, 1}, 0)
	p.Weight = 1
	absorb(&p, 0.5, 1.5)
	require.Less(t, p.Weight, float32(1))
	require.GreaterOrEqual(t, p.Weight, float32(0))
}

func TestAbsorbNoOpWhenNoInteraction(t *testing.T) {
	p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, 0, 1}, 0)
	p.Weight = 1
	absorb(&p, 0, 0)
	require.Equal(t, float32(1), p.Weight)
}

func TestScatterPreservesUnitLength(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, 0, 1}, 0)
		scatter(&p, 0.9, rng)
		require.InDelta(t, 1.0, lenOf(p.Dir), 1e-3)
	}
}

func TestScatterIsotropicWhenGZero(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var sumZ float64
	const n = 20000
	for i := 0; i < n; i++ {
		p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, 0, 1}, 0)
		scatter(&p, 0, rng)
		require.InDelta(t, 1.0, lenOf(p.Dir), 1e-3)
		sumZ += float64(p.Dir.Z())
	}
	// Isotropic scattering (g=0) has E[cos(theta)] = 0; the sample mean
	// should land close to zero relative to n trials.
	require.InDelta(t, 0, sumZ/n, 0.05)
}

func TestRouletteKillsOrBoostsWeight(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	survived, killed := 0, 0
	for i := 0; i < 2000; i++ {
		p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, 0, 1}, 0)
		p.Weight = WeightMin / 2
		p.Alive = true
		roulette(&p, rng)
		if p.Alive {
			survived++
			require.InDelta(t, WeightMin/2/SurvivalProb, p.Weight, 1e-9)
		} else {
			killed++
		}
	}
	require.Greater(t, survived, 0)
	require.Greater(t, killed, 0)
}

func TestRouletteLeavesHighWeightUntouched(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p := photon.New(vecmath.Vec3{}, vecmath.Vec3{0, 0, 1}, 0)
	p.Weight = 1
	roulette(&p, rng)
	require.True(t, p.Alive)
	require.Equal(t, float32(1), p.Weight)
}
