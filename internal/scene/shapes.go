package scene

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"pick3d/internal/spatial"
)

// SphereShape is exact sphere geometry. It doubles as its own bounding sphere.
type SphereShape struct {
	Center rl.Vector3
	Radius float32
}

func (s *SphereShape) BoundingSphere() (spatial.Sphere, bool) {
	if s.Radius <= 0 {
		return spatial.Sphere{}, false
	}
	return spatial.Sphere{Center: s.Center, Radius: s.Radius}, true
}

func (s *SphereShape) IntersectRay(ray rl.Ray) (float32, rl.Vector3, bool) {
	oc := rl.Vector3Subtract(ray.Position, s.Center)
	a := rl.Vector3DotProduct(ray.Direction, ray.Direction)
	b := 2.0 * rl.Vector3DotProduct(oc, ray.Direction)
	c := rl.Vector3DotProduct(oc, oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, rl.Vector3{}, false
	}

	sqrtD := float32(math.Sqrt(float64(discriminant)))
	t := (-b - sqrtD) / (2 * a)
	if t < 0 {
		t = (-b + sqrtD) / (2 * a)
	}
	if t < 0 {
		return 0, rl.Vector3{}, false
	}

	point := rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, t))
	return t, point, true
}

// BoxShape is exact axis-aligned box geometry.
type BoxShape struct {
	Min, Max rl.Vector3
}

func (b *BoxShape) BoundingSphere() (spatial.Sphere, bool) {
	if b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y || b.Min.Z >= b.Max.Z {
		return spatial.Sphere{}, false
	}
	center := rl.Vector3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
	half := rl.Vector3Subtract(b.Max, center)
	return spatial.Sphere{Center: center, Radius: rl.Vector3Length(half)}, true
}

func (b *BoxShape) IntersectRay(ray rl.Ray) (float32, rl.Vector3, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))

	if ray.Direction.X != 0 {
		t1 := (b.Min.X - ray.Position.X) / ray.Direction.X
		t2 := (b.Max.X - ray.Position.X) / ray.Direction.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = t1
		tmax = t2
	} else if ray.Position.X < b.Min.X || ray.Position.X > b.Max.X {
		return 0, rl.Vector3{}, false
	}

	if ray.Direction.Y != 0 {
		t1 := (b.Min.Y - ray.Position.Y) / ray.Direction.Y
		t2 := (b.Max.Y - ray.Position.Y) / ray.Direction.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if ray.Position.Y < b.Min.Y || ray.Position.Y > b.Max.Y {
		return 0, rl.Vector3{}, false
	}

	if ray.Direction.Z != 0 {
		t1 := (b.Min.Z - ray.Position.Z) / ray.Direction.Z
		t2 := (b.Max.Z - ray.Position.Z) / ray.Direction.Z
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if ray.Position.Z < b.Min.Z || ray.Position.Z > b.Max.Z {
		return 0, rl.Vector3{}, false
	}

	if tmin > tmax || tmax < 0 {
		return 0, rl.Vector3{}, false
	}
	t := tmin
	if t < 0 {
		t = tmax
	}

	point := rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, t))
	return t, point, true
}
