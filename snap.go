package main

// NearestPointProvider is the contract a static-geometry collaborator
// fulfils for SnapPosition: the nearest feature point within radius of pos,
// or false when nothing is in range.
type NearestPointProvider interface {
	NearestPoint(pos Point, radius float64) (Point, bool)
}

// SnapPosition moves pos onto the nearest mesh feature (triangle corner or
// edge midpoint) or static-geometry point within proximity, whichever is
// globally closer. With no candidate in range it falls back to pos rounded
// to integer coordinates, so it always returns a usable position.
func SnapPosition(mesh *Navmesh, static NearestPointProvider, pos Point, proximity float64) Point {
	best, found := mesh.NearestMeshPoint(pos, proximity)

	if static != nil {
		if candidate, ok := static.NearestPoint(pos, proximity); ok {
			if !found || candidate.distanceSquared(pos) < best.distanceSquared(pos) {
				best = candidate
				found = true
			}
		}
	}

	if !found {
		return pos.Round()
	}
	return best
}
