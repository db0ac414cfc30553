package spatial

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sphere is a world-space bounding sphere used for cheap ray pre-filtering.
type Sphere struct {
	Center rl.Vector3
	Radius float32
}

// rayHitsSphere reports whether the ray touches the sphere anywhere at t >= 0.
// A ray starting inside the sphere counts as a hit.
func rayHitsSphere(ray rl.Ray, s Sphere) bool {
	oc := rl.Vector3Subtract(ray.Position, s.Center)
	a := rl.Vector3DotProduct(ray.Direction, ray.Direction)
	b := 2.0 * rl.Vector3DotProduct(oc, ray.Direction)
	c := rl.Vector3DotProduct(oc, oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false
	}

	sqrtD := float32(math.Sqrt(float64(discriminant)))
	// Far root first: if even the exit point is behind the origin, no hit.
	tFar := (-b + sqrtD) / (2 * a)
	return tFar >= 0
}

// rayHitsBox performs a slab test against an axis-aligned box and returns the
// entry distance along the ray. Origins inside the box report tEnter = 0.
func rayHitsBox(ray rl.Ray, min, max rl.Vector3) (float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))

	// X slab
	if ray.Direction.X != 0 {
		t1 := (min.X - ray.Position.X) / ray.Direction.X
		t2 := (max.X - ray.Position.X) / ray.Direction.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = t1
		tmax = t2
	} else if ray.Position.X < min.X || ray.Position.X > max.X {
		return 0, false
	}

	// Y slab
	if ray.Direction.Y != 0 {
		t1 := (min.Y - ray.Position.Y) / ray.Direction.Y
		t2 := (max.Y - ray.Position.Y) / ray.Direction.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if ray.Position.Y < min.Y || ray.Position.Y > max.Y {
		return 0, false
	}

	// Z slab
	if ray.Direction.Z != 0 {
		t1 := (min.Z - ray.Position.Z) / ray.Direction.Z
		t2 := (max.Z - ray.Position.Z) / ray.Direction.Z
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if ray.Position.Z < min.Z || ray.Position.Z > max.Z {
		return 0, false
	}

	if tmin > tmax || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}
