package main

import (
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// StaticGeometry is the spatial collaborator consumed by SnapPosition:
// level features (anchors, markers, blocker outlines) kept outside the
// navmesh. Features live on the ground plane; a feature's world position
// maps x to x and y to z, with the vertical coordinate taken from an
// optional "elevation" property.
type StaticGeometry struct {
	features []staticFeature
}

type staticFeature struct {
	geometry  orb.Geometry
	elevation float64
}

// LoadStaticGeometry reads a GeoJSON feature collection from disk
func LoadStaticGeometry(filename string) (*StaticGeometry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read static geometry: %w", err)
	}
	sg, err := ParseStaticGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	log.Printf("   ✅ Loaded %d static geometry features from %s\n", len(sg.features), filename)
	return sg, nil
}

// ParseStaticGeometry builds static geometry from GeoJSON bytes
func ParseStaticGeometry(data []byte) (*StaticGeometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	sg := &StaticGeometry{}
	for _, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		sg.features = append(sg.features, staticFeature{
			geometry:  feature.Geometry,
			elevation: propertyFloat(feature.Properties, "elevation"),
		})
	}
	return sg, nil
}

// AddFeature registers a geometry at the given elevation
func (sg *StaticGeometry) AddFeature(geometry orb.Geometry, elevation float64) {
	sg.features = append(sg.features, staticFeature{geometry: geometry, elevation: elevation})
}

// NumFeatures returns the number of registered features
func (sg *StaticGeometry) NumFeatures() int {
	return len(sg.features)
}

// NearestPoint implements NearestPointProvider. It projects pos onto every
// feature on the ground plane and returns the closest projection within
// radius, measured in full 3D against the feature's elevation.
func (sg *StaticGeometry) NearestPoint(pos Point, radius float64) (Point, bool) {
	target := orb.Point{pos.X, pos.Z}

	var (
		best   Point
		bestSq float64
		found  bool
	)
	for _, feature := range sg.features {
		projected, _ := planar.DistanceFromWithPoint(feature.geometry, target)
		candidate := Point{X: projected[0], Y: feature.elevation, Z: projected[1]}
		sq := candidate.distanceSquared(pos)
		if radius > 0 && sq > radius*radius {
			continue
		}
		if !found || sq < bestSq {
			best = candidate
			bestSq = sq
			found = true
		}
	}
	return best, found
}

func propertyFloat(props geojson.Properties, key string) float64 {
	if props == nil {
		return 0
	}
	switch v := props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
