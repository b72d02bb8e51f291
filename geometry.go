package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a position in 3D space. Y is the vertical axis.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

func fromVec3(v mgl64.Vec3) Point {
	return Point{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return p.Vec3().Sub(other.Vec3()).Len()
}

func (p Point) distanceSquared(other Point) float64 {
	d := p.Vec3().Sub(other.Vec3())
	return d.Dot(d)
}

// Midpoint returns the point halfway between p and other
func (p Point) Midpoint(other Point) Point {
	return fromVec3(p.Vec3().Add(other.Vec3()).Mul(0.5))
}

// IsFinite reports whether all three coordinates are real numbers
func (p Point) IsFinite() bool {
	for _, c := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Round rounds each coordinate to the nearest integer
func (p Point) Round() Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y), Z: math.Round(p.Z)}
}

// BarycentricCoordinates expresses p as weights (u,v,w) over the triangle
// (p1,p2,p3), projecting p onto the triangle's plane first. The weights
// always sum to 1. For a degenerate (collinear) triangle the denominator is
// zero and all three results are NaN; callers must guard against that.
func BarycentricCoordinates(p1, p2, p3, p Point) (u, v, w float64) {
	v0 := p2.Vec3().Sub(p1.Vec3())
	v1 := p3.Vec3().Sub(p1.Vec3())
	v2 := p.Vec3().Sub(p1.Vec3())

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}

// ClampedBarycentricCoordinates is BarycentricCoordinates constrained to the
// closed triangle. A negative coordinate means p lies outside, on the far
// side of the edge opposite that coordinate's vertex; the point is
// reprojected onto that edge so the omitted coordinate is exactly 0 and the
// result is the nearest point on the triangle boundary. When more than one
// coordinate is negative the most-negative one wins, since that side
// contains the closest point.
func ClampedBarycentricCoordinates(p1, p2, p3, p Point) (u, v, w float64) {
	u, v, w = BarycentricCoordinates(p1, p2, p3, p)
	if u >= 0 && v >= 0 && w >= 0 {
		return u, v, w
	}

	switch {
	case u <= v && u <= w:
		// Beyond edge p2-p3
		t := segmentParameter(p2, p3, p)
		return 0, 1 - t, t
	case v <= u && v <= w:
		// Beyond edge p1-p3
		t := segmentParameter(p1, p3, p)
		return 1 - t, 0, t
	default:
		// Beyond edge p1-p2
		t := segmentParameter(p1, p2, p)
		return 1 - t, t, 0
	}
}

// segmentParameter solves the 1D projection of p onto segment a-b, clamped
// to [0,1]
func segmentParameter(a, b, p Point) float64 {
	ab := b.Vec3().Sub(a.Vec3())
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return 0
	}
	t := p.Vec3().Sub(a.Vec3()).Dot(ab) / lenSq
	return math.Max(0, math.Min(1, t))
}

// closestPointOnSegment returns the point on segment a-b nearest to p
func closestPointOnSegment(a, b, p Point) Point {
	t := segmentParameter(a, b, p)
	return fromVec3(a.Vec3().Add(b.Vec3().Sub(a.Vec3()).Mul(t)))
}

// barycentricPoint recombines weights into a world position
func barycentricPoint(p1, p2, p3 Point, u, v, w float64) Point {
	return fromVec3(p1.Vec3().Mul(u).Add(p2.Vec3().Mul(v)).Add(p3.Vec3().Mul(w)))
}

// NearestPoint scans candidates for the one closest to target. A positive
// radius excludes candidates farther away than that; radius <= 0 means
// unbounded. Returns false if no candidate qualifies. The first candidate
// achieving the minimum wins ties, so the result is stable for a stable
// scan order.
func NearestPoint(candidates []Point, target Point, radius float64) (Point, bool) {
	var (
		best    Point
		bestSq  = math.MaxFloat64
		found   bool
		limitSq = radius * radius
	)
	for _, c := range candidates {
		sq := c.distanceSquared(target)
		if radius > 0 && sq > limitSq {
			continue
		}
		if sq < bestSq {
			best = c
			bestSq = sq
			found = true
		}
	}
	return best, found
}

// RayIntersector is anything that can report a fractional hit distance along
// a ray segment. The fraction is in [0,1]; ok is false for a miss.
type RayIntersector interface {
	IntersectRay(origin, direction Point) (fraction float64, ok bool)
}

// ClosestIntersectingAlongRay returns the entity with the smallest hit
// fraction along direction across all supplied lists, or (nil, 1) when
// nothing intersects the segment.
func ClosestIntersectingAlongRay(origin, direction Point, lists ...[]RayIntersector) (RayIntersector, float64) {
	var closest RayIntersector
	fraction := 1.0
	for _, list := range lists {
		for _, entity := range list {
			if f, ok := entity.IntersectRay(origin, direction); ok && f < fraction {
				closest = entity
				fraction = f
			}
		}
	}
	return closest, fraction
}

const intersectEpsilon = 1e-9

// intersectSegmentTriangle runs Möller–Trumbore for the segment from origin
// along direction against triangle (v0,v1,v2), returning the fraction of
// direction at the hit
func intersectSegmentTriangle(origin, direction Point, v0, v1, v2 Point) (float64, bool) {
	dir := direction.Vec3()
	edge1 := v1.Vec3().Sub(v0.Vec3())
	edge2 := v2.Vec3().Sub(v0.Vec3())

	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -intersectEpsilon && a < intersectEpsilon {
		return 0, false // parallel to the triangle plane
	}

	f := 1.0 / a
	s := origin.Vec3().Sub(v0.Vec3())
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t > intersectEpsilon && t <= 1 {
		return t, true
	}
	return 0, false
}
