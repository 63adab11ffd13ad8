// Package meshfile loads the NETGEN .vol subset mesh format and the
// companion material table into an internal/mesh.Mesh.
//
// Grounded on original_source/src/Mesh.h's load_from_file: same two
// section headers and field layout, generalized (per spec.md sec 6)
// from "volumeelements must appear before points" to either order, by
// scanning every line once and dispatching on whichever header it
// matches rather than doing two separate forward-only scans.
package meshfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"photontrace/internal/mesh"
	"photontrace/internal/vecmath"
)

type volumeElement struct {
	material int
	v        [4]int32
}

// LoadVol reads a NETGEN .vol subset file and returns the constructed
// tetrahedral mesh (topology only — call mesh.Build to compute
// adjacency, and SetAttributes/ApplyMaterials to fill in optical
// properties) along with the per-tet material id parsed from each
// volume element's "material" field.
func LoadVol(path string) (*mesh.Mesh, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("meshfile: open %s: %w", path, err)
	}
	defer f.Close()
	return parseVol(f)
}

func parseVol(r io.Reader) (*mesh.Mesh, []int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var points []vecmath.Vec3
	var elems []volumeElement
	havePoints, haveElems := false, false

	for sc.Scan() {
		line := sc.Text()
		switch {
		case !havePoints && strings.Contains(line, "points"):
			n, err := readIntLine(sc)
			if err != nil {
				return nil, nil, fmt.Errorf("meshfile: points count: %w", err)
			}
			points = make([]vecmath.Vec3, n)
			for i := 0; i < n; i++ {
				if !sc.Scan() {
					return nil, nil, fmt.Errorf("meshfile: truncated points section at entry %d", i)
				}
				fields := strings.Fields(sc.Text())
				if len(fields) < 3 {
					return nil, nil, fmt.Errorf("meshfile: malformed point line %q", sc.Text())
				}
				x, err1 := strconv.ParseFloat(fields[0], 32)
				y, err2 := strconv.ParseFloat(fields[1], 32)
				z, err3 := strconv.ParseFloat(fields[2], 32)
				if err1 != nil || err2 != nil || err3 != nil {
					return nil, nil, fmt.Errorf("meshfile: malformed point line %q", sc.Text())
				}
				points[i] = vecmath.Vec3{float32(x), float32(y), float32(z)}
			}
			havePoints = true

		case !haveElems && strings.Contains(line, "volumeelements"):
			n, err := readIntLine(sc)
			if err != nil {
				return nil, nil, fmt.Errorf("meshfile: volumeelements count: %w", err)
			}
			elems = make([]volumeElement, n)
			for i := 0; i < n; i++ {
				if !sc.Scan() {
					return nil, nil, fmt.Errorf("meshfile: truncated volumeelements section at entry %d", i)
				}
				fields := strings.Fields(sc.Text())
				if len(fields) < 6 {
					return nil, nil, fmt.Errorf("meshfile: malformed volume element line %q", sc.Text())
				}
				material, err := strconv.Atoi(fields[1])
				if err != nil {
					return nil, nil, fmt.Errorf("meshfile: malformed material id %q", fields[1])
				}
				var verts [4]int32
				for k := 0; k < 4; k++ {
					v, err := strconv.Atoi(fields[2+k])
					if err != nil {
						return nil, nil, fmt.Errorf("meshfile: malformed vertex index %q", fields[2+k])
					}
					verts[k] = int32(v - 1) // NETGEN indices are 1-based
				}
				elems[i] = volumeElement{material: material, v: verts}
			}
			haveElems = true
		}

		if havePoints && haveElems {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("meshfile: scan: %w", err)
	}
	if !havePoints {
		return nil, nil, fmt.Errorf("meshfile: no points section found")
	}
	if !haveElems {
		return nil, nil, fmt.Errorf("meshfile: no volumeelements section found")
	}

	quads := make([][4]vecmath.Vec3, len(elems))
	materials := make([]int, len(elems))
	for i, e := range elems {
		for k, idx := range e.v {
			if int(idx) < 0 || int(idx) >= len(points) {
				return nil, nil, fmt.Errorf("meshfile: volume element %d references out-of-range point %d", i, idx+1)
			}
			quads[i][k] = points[idx]
		}
		materials[i] = e.material
	}

	return mesh.New(quads), materials, nil
}

func readIntLine(sc *bufio.Scanner) (int, error) {
	if !sc.Scan() {
		return 0, fmt.Errorf("unexpected end of file reading count")
	}
	fields := strings.Fields(sc.Text())
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty count line")
	}
	return strconv.Atoi(fields[0])
}

// MaterialEntry is one row of the companion optical-properties table.
type MaterialEntry struct {
	ID  int     `json:"id"`
	MuA float32 `json:"mu_a"`
	MuS float32 `json:"mu_s"`
	G   float32 `json:"g"`
	N   float32 `json:"n"`
}

// LoadMaterials reads a JSON array of MaterialEntry from path.
//
// Grounded on pkg/blockmodel/loader.go's JSON-table-by-id pattern,
// generalized from block model inheritance merging to a flat id ->
// optical-properties lookup (there is no inheritance concept here).
func LoadMaterials(path string) (map[int]mesh.Attributes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshfile: open materials %s: %w", path, err)
	}
	defer f.Close()

	var entries []MaterialEntry
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return nil, fmt.Errorf("meshfile: decode materials %s: %w", path, err)
	}

	table := make(map[int]mesh.Attributes, len(entries))
	for _, e := range entries {
		table[e.ID] = mesh.Attributes{MuA: e.MuA, MuS: e.MuS, G: e.G, N: e.N}
	}
	return table, nil
}

// ApplyMaterials assigns each tet's attributes from its material id
// via table, returning an error naming the first tet whose material id
// has no entry.
func ApplyMaterials(m *mesh.Mesh, materialIDs []int, table map[int]mesh.Attributes) error {
	if len(materialIDs) != len(m.Tets) {
		return fmt.Errorf("meshfile: material id count %d does not match tet count %d", len(materialIDs), len(m.Tets))
	}
	for i, id := range materialIDs {
		attr, ok := table[id]
		if !ok {
			return fmt.Errorf("meshfile: tet %d references unknown material id %d", i, id)
		}
		m.SetAttributes(i, attr)
	}
	return nil
}
