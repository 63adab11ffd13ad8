package photon_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"photontrace/internal/photon"
	"photontrace/internal/vecmath"
)

func TestNewIsAliveWithFullWeight(t *testing.T) {
	p := photon.New(vecmath.Vec3{1, 2, 3}, vecmath.Vec3{0, 0, 1}, 5)
	require.True(t, p.Alive)
	require.Equal(t, float32(1), p.Weight)
	require.Equal(t, 5, p.Cur)
	require.Equal(t, 5, p.Next)
}

func TestMoveAdvancesPositionAndTracksMaxZ(t *testing.T) {
	p := photon.New(vecmath.Vec3{0, 0, 0}, vecmath.Vec3{0, 0, 1}, 0)
	p.Move(2)
	require.InDelta(t, 2, p.Pos.Z(), 1e-6)
	require.InDelta(t, 2, p.MaxZ, 1e-6)
	require.InDelta(t, 2, p.PathLen, 1e-6)

	p.Move(-5) // a negative length moves backward and is added to the path length as is
	require.InDelta(t, -3, p.Pos.Z(), 1e-6)
	require.InDelta(t, 2, p.MaxZ, 1e-6, "max z must not decrease")
	require.InDelta(t, -3, p.PathLen, 1e-6)
}

func TestClassificationString(t *testing.T) {
	require.Equal(t, "IGNORE", photon.Ignore.String())
	require.Equal(t, "EMIT", photon.Emit.String())
	require.Equal(t, "COLLECT", photon.Collect.String())
	require.Equal(t, "OUTOFRANGE", photon.OutOfRange.String())
}
