package main

import (
	"container/heap"
	"errors"
)

var (
	// ErrNoPathFound means the mesh is well-formed but start and goal are
	// topologically disconnected. A terminal search outcome, not a defect.
	ErrNoPathFound = errors.New("no path found")

	// ErrSearchBudgetExceeded means the frontier expansion cap was hit
	// before the search could conclude either way.
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")
)

// Synthetic node IDs for the two ephemeral query endpoints. Edge IDs are
// always >= 0.
const (
	startNodeID = -1
	goalNodeID  = -2
)

// Node represents a node in the A* search over the edge graph
type Node struct {
	NodeID int     // edge ID, or startNodeID/goalNodeID
	G      float64 // Cost from start to this node
	H      float64 // Heuristic cost from this node to the goal
	F      float64 // Total cost (G + H)
	Parent *Node
	Index  int // Index in the heap
	Seq    int // Insertion order, breaks priority ties
}

// PriorityQueue implements heap.Interface for the A* frontier
type PriorityQueue []*Node

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].F != pq[j].F {
		return pq[i].F < pq[j].F
	}
	return pq[i].Seq < pq[j].Seq
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*Node)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// Path is an ordered route from start to goal: the start position, the
// midpoints of the crossed edges, then the goal position.
type Path struct {
	Points []Point `json:"points"`
	Edges  []int   `json:"edges,omitempty"` // IDs of the crossed edges
	Length float64 `json:"length"`
}

// Pathfinder runs A* over the mesh edge graph. Each call to RequestPath is
// self-contained; a Pathfinder holds no search state between queries and
// must see an unmutated mesh for the duration of one search.
type Pathfinder struct {
	Mesh *Navmesh

	// MaxExpansions caps frontier pops before the search gives up with
	// ErrSearchBudgetExceeded. Zero means unlimited.
	MaxExpansions int
}

// RequestPath computes a route between two arbitrary positions. Fails with
// ErrInvalidPosition, ErrNoTriangleFound, ErrNoPathFound or
// ErrSearchBudgetExceeded.
func (pf *Pathfinder) RequestPath(start, goal Point) (*Path, error) {
	startPoint, err := NewPathPoint(pf.Mesh, start)
	if err != nil {
		return nil, err
	}
	goalPoint, err := NewPathPoint(pf.Mesh, goal)
	if err != nil {
		return nil, err
	}

	// Same anchoring triangle: the direct segment is the path.
	if startPoint.Triangle.ID == goalPoint.Triangle.ID {
		return &Path{
			Points: []Point{start, goal},
			Length: start.Distance(goal),
		}, nil
	}

	// Edges of the goal's triangle, with the cost of the final leg from
	// their midpoints to the goal position.
	goalLegs := make(map[int]float64, len(goalPoint.Expand()))
	for _, nb := range goalPoint.Expand() {
		goalLegs[nb.Edge] = nb.Distance
	}

	openSet := &PriorityQueue{}
	heap.Init(openSet)

	seq := 0
	startNode := &Node{
		NodeID: startNodeID,
		G:      0,
		H:      start.Distance(goal),
		F:      start.Distance(goal),
		Seq:    seq,
	}
	heap.Push(openSet, startNode)

	closedSet := make(map[int]bool)
	openSetMap := map[int]*Node{startNodeID: startNode}

	nodesExplored := 0

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*Node)
		delete(openSetMap, current.NodeID)
		nodesExplored++

		if pf.MaxExpansions > 0 && nodesExplored > pf.MaxExpansions {
			return nil, ErrSearchBudgetExceeded
		}

		if current.NodeID == goalNodeID {
			return pf.reconstruct(current, startPoint, goalPoint), nil
		}

		closedSet[current.NodeID] = true

		for _, nb := range pf.expand(current, startPoint, goalLegs) {
			if closedSet[nb.Edge] {
				continue
			}

			tentativeG := current.G + nb.Distance

			neighbor, exists := openSetMap[nb.Edge]
			if !exists {
				seq++
				neighbor = &Node{
					NodeID: nb.Edge,
					G:      tentativeG,
					H:      pf.heuristic(nb.Edge, goalPoint),
					Parent: current,
					Seq:    seq,
				}
				neighbor.F = neighbor.G + neighbor.H
				heap.Push(openSet, neighbor)
				openSetMap[nb.Edge] = neighbor
			} else if tentativeG < neighbor.G {
				// Found a better path to this neighbor
				neighbor.G = tentativeG
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	return nil, ErrNoPathFound
}

// expand lists the neighbors of the current node: the start's precomputed
// list, or an edge's triangle-adjacent edges plus the goal leg when the
// edge borders the goal's triangle.
func (pf *Pathfinder) expand(current *Node, startPoint *PathPoint, goalLegs map[int]float64) []PathfindingNeighbor {
	var node graphNode
	if current.NodeID == startNodeID {
		node = startPoint
	} else if edge := pf.Mesh.Edge(current.NodeID); edge != nil {
		node = edge
	} else {
		return nil
	}

	neighbors := node.Expand()
	if leg, ok := goalLegs[current.NodeID]; ok {
		neighbors = append(neighbors, PathfindingNeighbor{
			Edge:     goalNodeID,
			Distance: leg,
		})
	}
	return neighbors
}

// heuristic is the straight-line distance from a node's representative
// point to the goal position; it never overestimates the remaining length
func (pf *Pathfinder) heuristic(nodeID int, goalPoint *PathPoint) float64 {
	if nodeID == goalNodeID {
		return 0
	}
	return pf.Mesh.Edge(nodeID).Centroid().Distance(goalPoint.Position)
}

// reconstruct walks the predecessor chain back from the goal node
func (pf *Pathfinder) reconstruct(goalNode *Node, startPoint, goalPoint *PathPoint) *Path {
	path := &Path{Length: goalNode.G}
	var points []Point
	var edges []int
	for node := goalNode; node != nil; node = node.Parent {
		switch node.NodeID {
		case goalNodeID:
			points = append(points, goalPoint.Position)
		case startNodeID:
			points = append(points, startPoint.Position)
		default:
			points = append(points, pf.Mesh.Edge(node.NodeID).Midpoint())
			edges = append(edges, node.NodeID)
		}
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	path.Points = points
	path.Edges = edges
	return path
}
