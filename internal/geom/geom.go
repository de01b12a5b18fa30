package geom

import "math"

// Vec3 represents a point or direction in world space. The simulation runs
// in float64 throughout; quantization is left to the transport layer.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns the vector multiplied by a scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Length returns the Euclidean length of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector pointing in the same direction. The zero
// vector normalizes to itself so callers never divide by zero.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return v.Scale(1 / length)
}

// Reflect mirrors the vector about the plane described by the unit normal n,
// r = v - 2(v·n)n.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// AABB describes an axis-aligned box by its two extreme corners. Min must be
// component-wise less than or equal to Max.
type AABB struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Contains reports whether the point lies inside the box. Faces are treated
// as inclusive so touching counts as containment.
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// SegmentAABB computes the first intersection of the segment a→b with the
// box using the slab method. It returns the hit fraction along the segment
// and the unit normal of the struck face. Segments that start inside the box
// report no hit; casts originating at a surface pass out of their own
// collider instead of striking it immediately.
func SegmentAABB(a, b Vec3, box AABB) (float64, Vec3, bool) {
	dir := b.Sub(a)

	tEnter := 0.0
	tExit := 1.0
	axisEnter := -1
	signEnter := 0.0

	mins := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	maxs := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}
	origins := [3]float64{a.X, a.Y, a.Z}
	deltas := [3]float64{dir.X, dir.Y, dir.Z}

	for axis := 0; axis < 3; axis++ {
		if deltas[axis] == 0 {
			if origins[axis] < mins[axis] || origins[axis] > maxs[axis] {
				return 0, Vec3{}, false
			}
			continue
		}
		inv := 1 / deltas[axis]
		tNear := (mins[axis] - origins[axis]) * inv
		tFar := (maxs[axis] - origins[axis]) * inv
		sign := 1.0
		if tNear > tFar {
			tNear, tFar = tFar, tNear
			sign = -1
		}
		if tNear > tEnter {
			tEnter = tNear
			axisEnter = axis
			signEnter = -sign
		}
		if tFar < tExit {
			tExit = tFar
		}
		if tEnter > tExit {
			return 0, Vec3{}, false
		}
	}

	// axisEnter stays -1 when the segment starts inside the box.
	if axisEnter < 0 || tEnter <= 0 || tEnter > 1 {
		return 0, Vec3{}, false
	}

	normal := Vec3{}
	switch axisEnter {
	case 0:
		normal.X = signEnter
	case 1:
		normal.Y = signEnter
	case 2:
		normal.Z = signEnter
	}
	return tEnter, normal, true
}

// SegmentPlaneY computes the intersection of the segment a→b with the
// horizontal plane y = height. Only downward crossings count; a segment
// rising up through the plane reports no hit so floor geometry is one-sided.
func SegmentPlaneY(a, b Vec3, height float64) (float64, Vec3, bool) {
	if a.Y <= height || b.Y > height {
		return 0, Vec3{}, false
	}
	t := (a.Y - height) / (a.Y - b.Y)
	if t < 0 || t > 1 {
		return 0, Vec3{}, false
	}
	return t, Vec3{Y: 1}, true
}

// PointAt returns the point a fraction t along the segment a→b.
func PointAt(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}
