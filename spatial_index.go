package main

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// TriangleEntry wraps a triangle for R-tree storage
type TriangleEntry struct {
	ID       int
	Triangle *Triangle
	BBox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (t *TriangleEntry) Bounds() rtreego.Rect {
	return t.BBox
}

// SpatialIndex manages triangle spatial queries
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// NewSpatialIndex builds a 3D R-tree over the mesh's triangle bounding
// boxes, in insertion order
func NewSpatialIndex(mesh *Navmesh) *SpatialIndex {
	tree := rtreego.NewTree(3, 25, 50) // 3D, min 25, max 50 entries per node

	for _, id := range mesh.triOrder {
		tri := mesh.triangles[id]
		bbox, err := triangleBoundingBox(tri)
		if err == nil {
			tree.Insert(&TriangleEntry{ID: id, Triangle: tri, BBox: bbox})
		}
	}

	return &SpatialIndex{tree: tree}
}

// TrianglesWithin returns the triangles whose bounding boxes intersect the
// cube of half-size radius around pos, sorted by triangle ID so callers
// scan them in mesh insertion order.
func (si *SpatialIndex) TrianglesWithin(pos Point, radius float64) []*TriangleEntry {
	return si.QueryRegion(
		Point{X: pos.X - radius, Y: pos.Y - radius, Z: pos.Z - radius},
		Point{X: pos.X + radius, Y: pos.Y + radius, Z: pos.Z + radius},
	)
}

// QueryRegion returns triangles that intersect with the given bounding box
func (si *SpatialIndex) QueryRegion(min, max Point) []*TriangleEntry {
	bbox, err := rtreego.NewRect(
		rtreego.Point{min.X, min.Y, min.Z},
		[]float64{sideLength(min.X, max.X), sideLength(min.Y, max.Y), sideLength(min.Z, max.Z)},
	)
	if err != nil {
		return nil
	}

	results := si.tree.SearchIntersect(bbox)
	entries := make([]*TriangleEntry, 0, len(results))
	for _, item := range results {
		entries = append(entries, item.(*TriangleEntry))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	return entries
}

// triangleBoundingBox computes the axis-aligned bounding box for a triangle
func triangleBoundingBox(tri *Triangle) (rtreego.Rect, error) {
	min := tri.Corners[0]
	max := tri.Corners[0]

	for _, c := range tri.Corners[1:] {
		min.X = math.Min(min.X, c.X)
		min.Y = math.Min(min.Y, c.Y)
		min.Z = math.Min(min.Z, c.Z)
		max.X = math.Max(max.X, c.X)
		max.Y = math.Max(max.Y, c.Y)
		max.Z = math.Max(max.Z, c.Z)
	}

	return rtreego.NewRect(
		rtreego.Point{min.X, min.Y, min.Z},
		[]float64{sideLength(min.X, max.X), sideLength(min.Y, max.Y), sideLength(min.Z, max.Z)},
	)
}

// sideLength keeps rect extents strictly positive; flat axis-aligned
// triangles would otherwise produce zero-length sides rtreego rejects
func sideLength(min, max float64) float64 {
	if length := max - min; length > 1e-9 {
		return length
	}
	return 1e-9
}
