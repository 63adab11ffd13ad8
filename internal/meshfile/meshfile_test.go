package meshfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"photontrace/internal/mesh"
	"photontrace/internal/meshfile"
)

// Single tetrahedron, volumeelements section before points (matches
// the original source's expected order).
const volElemsFirst = `
mesh
volumeelements
1
1 7 1 2 3 4
points
4
0 0 0
1 0 0
0 1 0
0 0 1
`

// Same mesh, points section first, to exercise order-independence.
const pointsFirst = `
mesh
points
4
0 0 0
1 0 0
0 1 0
0 0 1
volumeelements
1
1 7 1 2 3 4
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mesh.vol")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadVolElementsFirst(t *testing.T) {
	m, materials, err := meshfile.LoadVol(writeTemp(t, volElemsFirst))
	require.NoError(t, err)
	require.Len(t, m.Tets, 1)
	require.Equal(t, []int{7}, materials)
}

func TestLoadVolPointsFirst(t *testing.T) {
	m, materials, err := meshfile.LoadVol(writeTemp(t, pointsFirst))
	require.NoError(t, err)
	require.Len(t, m.Tets, 1)
	require.Equal(t, []int{7}, materials)
}

func TestLoadVolRejectsOutOfRangeVertex(t *testing.T) {
	bad := `
points
2
0 0 0
1 0 0
volumeelements
1
1 0 1 2 3 4
`
	_, _, err := meshfile.LoadVol(writeTemp(t, bad))
	require.Error(t, err)
}

func TestLoadAndApplyMaterials(t *testing.T) {
	m, materials, err := meshfile.LoadVol(writeTemp(t, volElemsFirst))
	require.NoError(t, err)

	matPath := filepath.Join(t.TempDir(), "materials.json")
	require.NoError(t, os.WriteFile(matPath, []byte(`[{"id":7,"mu_a":0.1,"mu_s":10,"g":0.9,"n":1.4}]`), 0o644))

	table, err := meshfile.LoadMaterials(matPath)
	require.NoError(t, err)
	require.NoError(t, meshfile.ApplyMaterials(m, materials, table))
	require.Equal(t, float32(1.4), m.Tets[0].Attr.N)
	require.NoError(t, m.ValidateAttributes())
}

func TestApplyMaterialsRejectsUnknownID(t *testing.T) {
	m, materials, err := meshfile.LoadVol(writeTemp(t, volElemsFirst))
	require.NoError(t, err)
	err = meshfile.ApplyMaterials(m, materials, map[int]mesh.Attributes{})
	require.Error(t, err)
}
