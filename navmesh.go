package main

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoTriangleFound is reported when a query needs a triangle and the
	// navmesh has none (or none qualifies).
	ErrNoTriangleFound = errors.New("no triangle found")

	// ErrDegenerateTriangle is reported when a zero-area triangle is added.
	ErrDegenerateTriangle = errors.New("degenerate triangle")
)

// degenerateArea is the cross-product magnitude below which a triangle is
// rejected as collinear. Keeping this above zero guards the barycentric
// denominator for every triangle the mesh owns.
const degenerateArea = 1e-12

// Edge is a mesh edge shared by the triangles that use it. One owning
// triangle makes it a boundary edge; two make it traversable. More than two
// is invalid and AddTriangle refuses to create that state.
type Edge struct {
	A, B Point

	mesh      *Navmesh
	id        int
	triangles []int // owning triangle IDs, insertion order
}

// Midpoint returns the midpoint of the edge segment
func (e *Edge) Midpoint() Point {
	return e.A.Midpoint(e.B)
}

// Centroid returns the edge's representative point for pathfinding
func (e *Edge) Centroid() Point {
	return e.Midpoint()
}

// Traversable reports whether the edge is shared by more than one triangle
func (e *Edge) Traversable() bool {
	return len(e.triangles) > 1
}

// Triangles returns the IDs of the triangles owning this edge
func (e *Edge) Triangles() []int {
	return e.triangles
}

// Expand enumerates the traversable edges reachable from this edge through
// one of its owning triangles, with midpoint-to-midpoint distances.
func (e *Edge) Expand() []PathfindingNeighbor {
	mid := e.Midpoint()
	var neighbors []PathfindingNeighbor
	for _, triID := range e.triangles {
		tri := e.mesh.Triangle(triID)
		if tri == nil {
			continue
		}
		for _, otherID := range tri.Edges {
			if otherID == e.id {
				continue
			}
			other := e.mesh.Edge(otherID)
			if other == nil || !other.Traversable() {
				continue
			}
			neighbors = append(neighbors, PathfindingNeighbor{
				Edge:     otherID,
				Via:      triID,
				Distance: mid.Distance(other.Midpoint()),
			})
		}
	}
	return neighbors
}

// Triangle is three ordered edges with derived corners and a cached centroid
type Triangle struct {
	ID       int
	Corners  [3]Point
	Edges    [3]int
	Centroid Point
}

// ClosestPoint projects p onto the closed triangle via clamped barycentric
// coordinates
func (t *Triangle) ClosestPoint(p Point) Point {
	u, v, w := ClampedBarycentricCoordinates(t.Corners[0], t.Corners[1], t.Corners[2], p)
	return barycentricPoint(t.Corners[0], t.Corners[1], t.Corners[2], u, v, w)
}

// IntersectRay implements RayIntersector against the triangle face
func (t *Triangle) IntersectRay(origin, direction Point) (float64, bool) {
	return intersectSegmentTriangle(origin, direction, t.Corners[0], t.Corners[1], t.Corners[2])
}

// edgeKey identifies an edge by its endpoints regardless of direction
type edgeKey struct {
	a, b Point
}

func makeEdgeKey(a, b Point) edgeKey {
	if pointLess(b, a) {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

func pointLess(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// Navmesh owns the set of triangles and the de-duplicated set of edges they
// share. Triangles and edges are addressed by stable integer handles;
// iteration follows insertion order so queries tie-break deterministically.
//
// The mesh does no locking. Concurrent readers are fine; any mutation must
// be exclusive with in-flight queries (the server holds a sync.RWMutex).
type Navmesh struct {
	triangles map[int]*Triangle
	triOrder  []int
	edges     map[int]*Edge
	edgeOrder []int
	edgeIDs   map[edgeKey]int

	nextTriangleID int
	nextEdgeID     int

	// The index cache has its own guard so concurrent readers can trigger
	// the lazy rebuild safely; everything else follows the caller's
	// readers-writer discipline.
	indexMu sync.Mutex
	index   *SpatialIndex
}

// NewNavmesh creates an empty navmesh
func NewNavmesh() *Navmesh {
	return &Navmesh{
		triangles: make(map[int]*Triangle),
		edges:     make(map[int]*Edge),
		edgeIDs:   make(map[edgeKey]int),
	}
}

// NumTriangles returns the number of triangles in the mesh
func (n *Navmesh) NumTriangles() int { return len(n.triangles) }

// NumEdges returns the number of distinct edges in the mesh
func (n *Navmesh) NumEdges() int { return len(n.edges) }

// Triangle returns the triangle with the given ID, or nil
func (n *Navmesh) Triangle(id int) *Triangle { return n.triangles[id] }

// Edge returns the edge with the given ID, or nil
func (n *Navmesh) Edge(id int) *Edge { return n.edges[id] }

// AddTriangle inserts a triangle with the given corner points, creating or
// reusing shared edges. It rejects non-finite corners, zero-area triangles,
// and any insertion that would give an edge a third owning triangle.
func (n *Navmesh) AddTriangle(a, b, c Point) (int, error) {
	if !a.IsFinite() || !b.IsFinite() || !c.IsFinite() {
		return 0, fmt.Errorf("add triangle: %w", ErrInvalidPosition)
	}

	ab := b.Vec3().Sub(a.Vec3())
	ac := c.Vec3().Sub(a.Vec3())
	if cross := ab.Cross(ac); cross.Dot(cross) <= degenerateArea {
		return 0, fmt.Errorf("add triangle (%v %v %v): %w", a, b, c, ErrDegenerateTriangle)
	}

	corners := [3]Point{a, b, c}
	pairs := [3][2]Point{{a, b}, {b, c}, {c, a}}

	// Check every edge before touching any, so a rejected insert leaves the
	// mesh unchanged.
	for _, pair := range pairs {
		if id, ok := n.edgeIDs[makeEdgeKey(pair[0], pair[1])]; ok {
			if len(n.edges[id].triangles) >= 2 {
				return 0, fmt.Errorf("edge %v-%v already shared by two triangles", pair[0], pair[1])
			}
		}
	}

	triID := n.nextTriangleID
	n.nextTriangleID++

	var edgeIDs [3]int
	for i, pair := range pairs {
		edgeIDs[i] = n.ensureEdge(pair[0], pair[1], triID)
	}

	centroid := fromVec3(a.Vec3().Add(b.Vec3()).Add(c.Vec3()).Mul(1.0 / 3.0))
	n.triangles[triID] = &Triangle{
		ID:       triID,
		Corners:  corners,
		Edges:    edgeIDs,
		Centroid: centroid,
	}
	n.triOrder = append(n.triOrder, triID)
	n.index = nil
	return triID, nil
}

func (n *Navmesh) ensureEdge(a, b Point, triID int) int {
	key := makeEdgeKey(a, b)
	if id, ok := n.edgeIDs[key]; ok {
		n.edges[id].triangles = append(n.edges[id].triangles, triID)
		return id
	}
	id := n.nextEdgeID
	n.nextEdgeID++
	n.edges[id] = &Edge{A: a, B: b, mesh: n, id: id, triangles: []int{triID}}
	n.edgeIDs[key] = id
	n.edgeOrder = append(n.edgeOrder, id)
	return id
}

// RemoveTriangle deletes a triangle and any edges left without an owner
func (n *Navmesh) RemoveTriangle(id int) error {
	tri, ok := n.triangles[id]
	if !ok {
		return fmt.Errorf("remove triangle %d: %w", id, ErrNoTriangleFound)
	}

	for _, edgeID := range tri.Edges {
		edge := n.edges[edgeID]
		owners := edge.triangles[:0]
		for _, owner := range edge.triangles {
			if owner != id {
				owners = append(owners, owner)
			}
		}
		edge.triangles = owners
		if len(edge.triangles) == 0 {
			delete(n.edges, edgeID)
			delete(n.edgeIDs, makeEdgeKey(edge.A, edge.B))
			n.edgeOrder = removeID(n.edgeOrder, edgeID)
		}
	}

	delete(n.triangles, id)
	n.triOrder = removeID(n.triOrder, id)
	n.index = nil
	return nil
}

func removeID(order []int, id int) []int {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// ClosestTriangle finds the triangle whose clamped barycentric projection of
// position is nearest. The scan runs in insertion order and the first
// minimum wins, so results are deterministic for identical meshes.
func (n *Navmesh) ClosestTriangle(position Point) (*Triangle, error) {
	if len(n.triOrder) == 0 {
		return nil, ErrNoTriangleFound
	}

	var best *Triangle
	bestSq := 0.0
	for _, id := range n.triOrder {
		tri := n.triangles[id]
		sq := tri.ClosestPoint(position).distanceSquared(position)
		if best == nil || sq < bestSq {
			best = tri
			bestSq = sq
		}
	}
	return best, nil
}

// TraversableEdges returns the subset of a triangle's edges shared with
// another triangle, in edge-slot order
func (n *Navmesh) TraversableEdges(tri *Triangle) []*Edge {
	var traversable []*Edge
	for _, edgeID := range tri.Edges {
		if edge := n.edges[edgeID]; edge != nil && edge.Traversable() {
			traversable = append(traversable, edge)
		}
	}
	return traversable
}

// spatialIndex returns the R-tree over triangle bounding boxes, rebuilding
// it if a mutation invalidated the previous one
func (n *Navmesh) spatialIndex() *SpatialIndex {
	n.indexMu.Lock()
	defer n.indexMu.Unlock()
	if n.index == nil {
		n.index = NewSpatialIndex(n)
	}
	return n.index
}

// NearestMeshPoint finds the mesh feature point (triangle corner or edge
// midpoint) closest to pos. A positive radius bounds the search and lets the
// R-tree prune candidate triangles; radius <= 0 scans everything.
func (n *Navmesh) NearestMeshPoint(pos Point, radius float64) (Point, bool) {
	var candidates []Point
	if radius > 0 {
		for _, entry := range n.spatialIndex().TrianglesWithin(pos, radius) {
			candidates = appendTriangleFeatures(candidates, n, entry.Triangle)
		}
	} else {
		for _, id := range n.triOrder {
			candidates = appendTriangleFeatures(candidates, n, n.triangles[id])
		}
	}
	return NearestPoint(candidates, pos, radius)
}

func appendTriangleFeatures(dst []Point, n *Navmesh, tri *Triangle) []Point {
	dst = append(dst, tri.Corners[0], tri.Corners[1], tri.Corners[2])
	for _, edgeID := range tri.Edges {
		if edge := n.edges[edgeID]; edge != nil {
			dst = append(dst, edge.Midpoint())
		}
	}
	return dst
}

// EdgeLines returns every edge as a two-point segment for visualization
func (n *Navmesh) EdgeLines() [][]Point {
	lines := make([][]Point, 0, len(n.edgeOrder))
	for _, id := range n.edgeOrder {
		edge := n.edges[id]
		lines = append(lines, []Point{edge.A, edge.B})
	}
	return lines
}

// TriangleCorners returns every triangle's corners in insertion order
func (n *Navmesh) TriangleCorners() [][3]Point {
	out := make([][3]Point, 0, len(n.triOrder))
	for _, id := range n.triOrder {
		out = append(out, n.triangles[id].Corners)
	}
	return out
}
