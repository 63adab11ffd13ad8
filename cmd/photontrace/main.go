// Command photontrace runs a Monte Carlo photon transport batch over a
// tetrahedral mesh and writes termination records to stdout or a file.
//
// Grounded on the teacher's cmd/mini-mc/main.go bootstrap shape
// (flags parsed up front, fatal errors logged and exited immediately,
// the rest of the program built from small single-purpose helpers) —
// generalized from a glfw window bootstrap to a headless batch run,
// since this program has no render loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"photontrace/internal/driver"
	"photontrace/internal/meshfile"
	"photontrace/internal/report"
	"photontrace/internal/simconfig"
	"photontrace/internal/vecmath"
)

func main() {
	cfg, outPath, jsonSummaryPath := parseFlags()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("photontrace: %v", err)
	}

	if err := run(cfg, outPath, jsonSummaryPath); err != nil {
		log.Fatalf("photontrace: %v", err)
	}
}

func parseFlags() (simconfig.Config, string, string) {
	var (
		meshPath   = flag.String("mesh", "", "path to NETGEN .vol mesh file (required)")
		matPath    = flag.String("materials", "", "path to materials JSON table (required)")
		photons    = flag.Int("photons", 10000, "number of photons to simulate")
		workers    = flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
		seed       = flag.Int64("seed", 1, "base RNG seed")
		out        = flag.String("out", "", "output path for termination records (default stdout)")
		summary    = flag.String("summary", "", "optional path to write a JSON run summary")
		emitID     = flag.Int("emit-material", 1, "material id marking emitter tets")
		collectID  = flag.Int("collect-material", 2, "material id marking collector tets")
		outOfRange = flag.Int("outofrange-material", 3, "material id marking out-of-range boundary tets")
		launchX    = flag.Float64("launch-x", 0, "launch direction x component")
		launchY    = flag.Float64("launch-y", 0, "launch direction y component")
		launchZ    = flag.Float64("launch-z", 1, "launch direction z component")
	)
	flag.Parse()

	cfg := simconfig.Config{
		MeshPath:             *meshPath,
		MaterialsPath:        *matPath,
		OutputPath:           *out,
		Photons:              *photons,
		Workers:              *workers,
		Seed:                 *seed,
		LaunchDir:            vec3(*launchX, *launchY, *launchZ),
		EmitMaterialID:       *emitID,
		CollectMaterialID:    *collectID,
		OutOfRangeMaterialID: *outOfRange,
	}
	return cfg, *out, *summary
}

func run(cfg simconfig.Config, outPath, jsonSummaryPath string) error {
	runID := report.NewRunID()
	log.SetPrefix("[" + runID[:8] + "] ")

	m, materialIDs, err := meshfile.LoadVol(cfg.MeshPath)
	if err != nil {
		return err
	}

	table, err := meshfile.LoadMaterials(cfg.MaterialsPath)
	if err != nil {
		return err
	}
	if err := meshfile.ApplyMaterials(m, materialIDs, table); err != nil {
		return err
	}
	if err := m.Build(); err != nil {
		return fmt.Errorf("invariant violation at init: %w", err)
	}

	tbl := cfg.RolesFromMaterials(materialIDs)

	res, err := driver.Run(context.Background(), m, tbl, driver.Config{
		Photons: cfg.Photons,
		Workers: cfg.Workers,
		Seed:    cfg.Seed,
	})
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("photontrace: create output %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteRecords(out, res.Terminations); err != nil {
		return err
	}

	log.Printf("photontrace: %d photons, %s", cfg.Photons, res.Telemetry.Summary())

	if jsonSummaryPath != "" {
		durations := make(map[string]string)
		for name, d := range res.Telemetry.Durations() {
			durations[name] = d.Round(time.Microsecond).String()
		}
		sf, err := os.Create(jsonSummaryPath)
		if err != nil {
			return fmt.Errorf("photontrace: create summary %s: %w", jsonSummaryPath, err)
		}
		defer sf.Close()
		s := report.NewSummary(runID, cfg.Photons, res.Telemetry.Counts(), durations)
		if err := report.WriteJSON(sf, s); err != nil {
			return err
		}
	}

	return nil
}

func vec3(x, y, z float64) vecmath.Vec3 {
	return vecmath.Vec3{float32(x), float32(y), float32(z)}
}
