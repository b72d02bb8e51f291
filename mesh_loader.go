package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// meshFile is the on-disk JSON layout: a plain triangle soup. Shared edges
// are rederived on load.
type meshFile struct {
	Triangles [][3]Point `json:"triangles"`
}

// SaveNavmesh serializes and saves the mesh to a JSON file
func SaveNavmesh(mesh *Navmesh, filename string) error {
	log.Printf("💾 Saving navmesh to %s...\n", filename)

	data, err := json.MarshalIndent(meshFile{Triangles: mesh.TriangleCorners()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal navmesh: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	log.Printf("   ✅ Navmesh saved (%d bytes)\n", len(data))
	return nil
}

// LoadNavmesh deserializes and loads the mesh from a JSON file. Triangles
// the mesh rejects (degenerate, over-shared edges) are skipped with a
// warning rather than failing the whole load.
func LoadNavmesh(filename string) (*Navmesh, error) {
	log.Printf("📂 Loading navmesh from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file meshFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal navmesh: %w", err)
	}

	mesh := NewNavmesh()
	skipped := 0
	for _, corners := range file.Triangles {
		if _, err := mesh.AddTriangle(corners[0], corners[1], corners[2]); err != nil {
			log.Printf("⚠️  Skipping triangle: %v\n", err)
			skipped++
		}
	}

	log.Printf("   ✅ Navmesh loaded: %d triangles, %d edges\n", mesh.NumTriangles(), mesh.NumEdges())
	if skipped > 0 {
		log.Printf("   ⚠️  Skipped %d invalid triangles\n", skipped)
	}
	return mesh, nil
}

// LoadNavmeshGeoJSON imports a triangulated walkable surface exported as a
// GeoJSON feature collection. Each triangle is a Polygon feature whose
// outer ring has three distinct vertices (plus the closing point); the
// vertical coordinate comes from an optional "elevation" property.
func LoadNavmeshGeoJSON(filename string) (*Navmesh, error) {
	log.Printf("📂 Loading GeoJSON navmesh from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	mesh := NewNavmesh()
	skipped := 0
	for _, feature := range fc.Features {
		polygon, ok := feature.Geometry.(orb.Polygon)
		if !ok || len(polygon) == 0 {
			skipped++
			continue
		}
		ring := polygon[0]
		// A closed triangle ring carries 4 points, an open one 3.
		if len(ring) != 3 && len(ring) != 4 {
			skipped++
			continue
		}
		elevation := propertyFloat(feature.Properties, "elevation")
		a := Point{X: ring[0][0], Y: elevation, Z: ring[0][1]}
		b := Point{X: ring[1][0], Y: elevation, Z: ring[1][1]}
		c := Point{X: ring[2][0], Y: elevation, Z: ring[2][1]}
		if _, err := mesh.AddTriangle(a, b, c); err != nil {
			log.Printf("⚠️  Skipping feature: %v\n", err)
			skipped++
		}
	}

	log.Printf("   ✅ Navmesh loaded: %d triangles (%d features skipped)\n", mesh.NumTriangles(), skipped)
	return mesh, nil
}
