package main

import "testing"

// fixedProvider is a stand-in static-geometry collaborator with one point
type fixedProvider struct {
	point Point
}

func (f fixedProvider) NearestPoint(pos Point, radius float64) (Point, bool) {
	if radius > 0 && f.point.Distance(pos) > radius {
		return Point{}, false
	}
	return f.point, true
}

func TestSnapPositionToMeshFeature(t *testing.T) {
	mesh := twoTriangleMesh(t)

	pos := Point{X: 1.1, Y: 0, Z: 0.9}
	snapped := SnapPosition(mesh, nil, pos, 0.5)

	if want := (Point{X: 1, Y: 0, Z: 1}); !pointsClose(snapped, want) {
		t.Fatalf("snapped to %v, want corner %v", snapped, want)
	}
	if snapped.Distance(pos) > 0.5 {
		t.Fatalf("snap moved farther than proximity: %f", snapped.Distance(pos))
	}
}

func TestSnapPositionPrefersCloserStaticGeometry(t *testing.T) {
	mesh := twoTriangleMesh(t)

	pos := Point{X: 1.1, Y: 0, Z: 0.9}
	static := fixedProvider{point: Point{X: 1.12, Y: 0, Z: 0.9}}

	snapped := SnapPosition(mesh, static, pos, 0.5)
	if snapped != static.point {
		t.Fatalf("snapped to %v, want nearer static point %v", snapped, static.point)
	}
}

func TestSnapPositionFallsBackToRounding(t *testing.T) {
	cases := []struct {
		name string
		mesh *Navmesh
		pos  Point
		want Point
	}{
		{
			name: "empty mesh",
			mesh: NewNavmesh(),
			pos:  Point{X: 1.4, Y: 0.6, Z: -2.5},
			want: Point{X: 1, Y: 1, Z: -2},
		},
		{
			name: "everything out of range",
			mesh: nil, // filled below
			pos:  Point{X: 40.2, Y: 0, Z: 40.8},
			want: Point{X: 40, Y: 0, Z: 41},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mesh := tc.mesh
			if mesh == nil {
				mesh = twoTriangleMesh(t)
			}
			got := SnapPosition(mesh, nil, tc.pos, 1)
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSnapPositionAlwaysReturns(t *testing.T) {
	mesh := twoTriangleMesh(t)
	positions := []Point{
		{X: 0.5, Y: 0, Z: 0.5},
		{X: -10, Y: 5, Z: 3},
		{X: 0, Y: 0, Z: 0},
	}
	for _, pos := range positions {
		got := SnapPosition(mesh, nil, pos, 0.25)
		if !got.IsFinite() {
			t.Fatalf("SnapPosition(%v) returned a non-finite point %v", pos, got)
		}
	}
}
