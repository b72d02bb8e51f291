package main

import (
	"errors"
	"testing"
)

// ringMesh is an annulus of 8 triangles between an inner square (±1) and an
// outer square (±3) on the ground plane. Every quadrant connects to its
// neighbors, so any two triangles are linked by two routes around the ring.
func ringMesh(t *testing.T) *Navmesh {
	t.Helper()
	var (
		oSW = Point{X: -3, Y: 0, Z: -3}
		oSE = Point{X: 3, Y: 0, Z: -3}
		oNE = Point{X: 3, Y: 0, Z: 3}
		oNW = Point{X: -3, Y: 0, Z: 3}
		iSW = Point{X: -1, Y: 0, Z: -1}
		iSE = Point{X: 1, Y: 0, Z: -1}
		iNE = Point{X: 1, Y: 0, Z: 1}
		iNW = Point{X: -1, Y: 0, Z: 1}
	)
	return buildMesh(t,
		[3]Point{oSW, oSE, iSE}, // south
		[3]Point{oSW, iSE, iSW},
		[3]Point{oSE, oNE, iNE}, // east
		[3]Point{oSE, iNE, iSE},
		[3]Point{oNE, oNW, iNW}, // north
		[3]Point{oNE, iNW, iNE},
		[3]Point{oNW, oSW, iSW}, // west
		[3]Point{oNW, iSW, iNW},
	)
}

func TestRequestPathCrossesSharedEdge(t *testing.T) {
	mesh := twoTriangleMesh(t)
	finder := &Pathfinder{Mesh: mesh}

	start := Point{X: 0.8, Y: 0, Z: 0.2}
	goal := Point{X: 0.2, Y: 0, Z: 0.8}

	path, err := finder.RequestPath(start, goal)
	if err != nil {
		t.Fatal(err)
	}

	if len(path.Edges) != 1 {
		t.Fatalf("edge crossings = %d, want 1", len(path.Edges))
	}
	if len(path.Points) != 3 {
		t.Fatalf("waypoints = %d, want 3", len(path.Points))
	}
	if path.Points[0] != start || path.Points[2] != goal {
		t.Fatal("route must begin at start and end at goal")
	}
	mid := Point{X: 0.5, Y: 0, Z: 0.5}
	if !pointsClose(path.Points[1], mid) {
		t.Fatalf("intermediate waypoint = %v, want diagonal midpoint %v", path.Points[1], mid)
	}
	wantLength := start.Distance(mid) + mid.Distance(goal)
	if !almostEqual(path.Length, wantLength) {
		t.Fatalf("length = %f, want %f", path.Length, wantLength)
	}
}

func TestRequestPathSameTriangle(t *testing.T) {
	mesh := twoTriangleMesh(t)
	finder := &Pathfinder{Mesh: mesh}

	start := Point{X: 0.7, Y: 0, Z: 0.1}
	goal := Point{X: 0.9, Y: 0, Z: 0.3}

	path, err := finder.RequestPath(start, goal)
	if err != nil {
		t.Fatal(err)
	}

	if len(path.Edges) != 0 {
		t.Fatalf("edge crossings = %d, want 0", len(path.Edges))
	}
	if len(path.Points) != 2 || path.Points[0] != start || path.Points[1] != goal {
		t.Fatalf("route = %v, want direct segment", path.Points)
	}
	if !almostEqual(path.Length, start.Distance(goal)) {
		t.Fatalf("length = %f, want straight-line %f", path.Length, start.Distance(goal))
	}
}

func TestRequestPathPicksShorterRoute(t *testing.T) {
	mesh := ringMesh(t)
	finder := &Pathfinder{Mesh: mesh}

	start := Point{X: 0, Y: 0, Z: -2}  // south quadrant, outer triangle
	goal := Point{X: 2.5, Y: 0, Z: 0} // east quadrant, outer triangle

	path, err := finder.RequestPath(start, goal)
	if err != nil {
		t.Fatal(err)
	}

	// The short way around the ring crosses two edges near the south-east
	// corner; the long way crosses six.
	if len(path.Edges) != 2 {
		t.Fatalf("edge crossings = %d, want 2 (short way around the ring)", len(path.Edges))
	}
	if path.Length >= 8 {
		t.Fatalf("length = %f, expected the short route well under the long detour", path.Length)
	}
}

func TestRequestPathDeterministic(t *testing.T) {
	mesh := ringMesh(t)
	finder := &Pathfinder{Mesh: mesh}

	start := Point{X: 0, Y: 0, Z: -2}
	goal := Point{X: -2, Y: 0, Z: 0.5}

	first, err := finder.RequestPath(start, goal)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		again, err := finder.RequestPath(start, goal)
		if err != nil {
			t.Fatal(err)
		}
		if len(again.Points) != len(first.Points) || len(again.Edges) != len(first.Edges) {
			t.Fatalf("run %d produced a different route shape", i)
		}
		for j := range first.Points {
			if again.Points[j] != first.Points[j] {
				t.Fatalf("run %d waypoint %d = %v, want %v", i, j, again.Points[j], first.Points[j])
			}
		}
		for j := range first.Edges {
			if again.Edges[j] != first.Edges[j] {
				t.Fatalf("run %d edge %d = %d, want %d", i, j, again.Edges[j], first.Edges[j])
			}
		}
	}
}

func TestRequestPathDisconnectedIslands(t *testing.T) {
	mesh := buildMesh(t,
		// Island A at the origin.
		[3]Point{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1}},
		[3]Point{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 1}},
		// Island B far away.
		[3]Point{{X: 100, Y: 0, Z: 0}, {X: 101, Y: 0, Z: 0}, {X: 101, Y: 0, Z: 1}},
		[3]Point{{X: 100, Y: 0, Z: 0}, {X: 101, Y: 0, Z: 1}, {X: 100, Y: 0, Z: 1}},
	)
	finder := &Pathfinder{Mesh: mesh}

	_, err := finder.RequestPath(Point{X: 0.5, Y: 0, Z: 0.25}, Point{X: 100.5, Y: 0, Z: 0.25})
	if !errors.Is(err, ErrNoPathFound) {
		t.Fatalf("err = %v, want ErrNoPathFound", err)
	}
}

func TestRequestPathEmptyMesh(t *testing.T) {
	finder := &Pathfinder{Mesh: NewNavmesh()}
	_, err := finder.RequestPath(Point{X: 0, Y: 0, Z: 0}, Point{X: 1, Y: 0, Z: 1})
	if !errors.Is(err, ErrNoTriangleFound) {
		t.Fatalf("err = %v, want ErrNoTriangleFound", err)
	}
}

func TestRequestPathInvalidPosition(t *testing.T) {
	mesh := twoTriangleMesh(t)
	finder := &Pathfinder{Mesh: mesh}

	bad := Point{X: 0, Y: 0, Z: 0}
	bad.X = bad.Y / bad.Z // 0/0 -> NaN
	_, err := finder.RequestPath(bad, Point{X: 0.5, Y: 0, Z: 0.25})
	if !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("err = %v, want ErrInvalidPosition", err)
	}
}

func TestRequestPathBudgetExceeded(t *testing.T) {
	mesh := ringMesh(t)
	finder := &Pathfinder{Mesh: mesh, MaxExpansions: 1}

	_, err := finder.RequestPath(Point{X: 0, Y: 0, Z: -2}, Point{X: 2.5, Y: 0, Z: 0})
	if !errors.Is(err, ErrSearchBudgetExceeded) {
		t.Fatalf("err = %v, want ErrSearchBudgetExceeded", err)
	}
}
