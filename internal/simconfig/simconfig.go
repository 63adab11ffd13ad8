// Package simconfig holds one run's configuration.
//
// The teacher's internal/config holds package-level, mutex-guarded
// settings mutated at any time during a live game session
// (internal/config/config.go, world_gen.go). A batch simulation run has
// no such runtime-mutation need — every parameter is fixed before the
// first photon launches and read-only for the rest of the run — so
// this is deliberately an immutable value built once (by cmd/photontrace
// from its flags) rather than a package of getters and setters over
// shared globals.
package simconfig

import (
	"fmt"

	"photontrace/internal/policy"
	"photontrace/internal/vecmath"
)

// Config is one run's fixed parameters.
type Config struct {
	MeshPath      string
	MaterialsPath string
	OutputPath    string // empty means stdout

	Photons int
	Workers int
	Seed    int64

	LaunchDir vecmath.Vec3

	// EmitMaterialID, CollectMaterialID, OutOfRangeMaterialID classify
	// tets by their material id into policy roles (spec.md sec 4.G):
	// every tet whose material equals one of these ids gets that role,
	// everything else defaults to RoleIgnore.
	EmitMaterialID       int
	CollectMaterialID    int
	OutOfRangeMaterialID int
}

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	if c.MeshPath == "" {
		return fmt.Errorf("simconfig: mesh path is required")
	}
	if c.MaterialsPath == "" {
		return fmt.Errorf("simconfig: materials path is required")
	}
	if c.Photons <= 0 {
		return fmt.Errorf("simconfig: photon count must be positive, got %d", c.Photons)
	}
	if c.Workers < 0 {
		return fmt.Errorf("simconfig: worker count must be non-negative, got %d", c.Workers)
	}
	return nil
}

// RolesFromMaterials builds a policy.Table sized to len(materialIDs),
// assigning RoleEmit/RoleCollect/RoleOutOfRange to tets whose material
// id matches the configured ids, RoleIgnore to everything else.
func (c Config) RolesFromMaterials(materialIDs []int) *policy.Table {
	tbl := policy.NewTable(len(materialIDs), c.LaunchDir)
	for i, id := range materialIDs {
		switch id {
		case c.EmitMaterialID:
			tbl.Set(i, policy.RoleEmit)
		case c.CollectMaterialID:
			tbl.Set(i, policy.RoleCollect)
		case c.OutOfRangeMaterialID:
			tbl.Set(i, policy.RoleOutOfRange)
		}
	}
	return tbl
}
