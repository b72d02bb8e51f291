package main

import (
	"errors"
	"fmt"
)

// ErrInvalidPosition is reported when a query position is missing or not a
// finite coordinate. This is a caller bug, not a mesh condition.
var ErrInvalidPosition = errors.New("invalid position")

// PathfindingNeighbor is the unit of graph expansion: a traversable edge
// reachable through a triangle, with the heuristic midpoint distance from
// the originating node.
type PathfindingNeighbor struct {
	Edge     int     // target edge ID
	Via      int     // triangle crossed to reach it
	Distance float64 // midpoint distance from the originating position
}

// graphNode is anything the pathfinder can expand: a traversable edge or
// one of the two ephemeral query endpoints.
type graphNode interface {
	Expand() []PathfindingNeighbor
	Centroid() Point
}

// PathPoint makes an arbitrary position behave like a mesh-native
// pathfinding node. It anchors the position to its closest triangle and
// precomputes that triangle's traversable edges as neighbors. PathPoints are
// created per query and never inserted into the mesh.
type PathPoint struct {
	Mesh     *Navmesh
	Position Point
	Triangle *Triangle

	neighbors []PathfindingNeighbor
}

// NewPathPoint anchors position onto the mesh. Fails with
// ErrInvalidPosition for non-finite input and ErrNoTriangleFound when the
// mesh is empty.
func NewPathPoint(mesh *Navmesh, position Point) (*PathPoint, error) {
	if !position.IsFinite() {
		return nil, fmt.Errorf("path point at %v: %w", position, ErrInvalidPosition)
	}

	tri, err := mesh.ClosestTriangle(position)
	if err != nil {
		return nil, err
	}

	pp := &PathPoint{Mesh: mesh, Position: position, Triangle: tri}
	for _, edge := range mesh.TraversableEdges(tri) {
		pp.neighbors = append(pp.neighbors, PathfindingNeighbor{
			Edge:     edge.id,
			Via:      tri.ID,
			Distance: edge.Midpoint().Distance(position),
		})
	}
	return pp, nil
}

// Centroid returns the stored position; a PathPoint's shape is a single
// point
func (p *PathPoint) Centroid() Point {
	return p.Position
}

// Expand returns the precomputed neighbor list
func (p *PathPoint) Expand() []PathfindingNeighbor {
	return p.neighbors
}
