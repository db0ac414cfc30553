package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Orbit circles a target point at a fixed distance. Middle-drag or arrow
// keys rotate, +/- zoom. Angles are in degrees.
type Orbit struct {
	Target   rl.Vector3
	Yaw      float32
	Pitch    float32
	Distance float32

	LookSpeed   float32 // degrees per pixel of drag
	TurnSpeed   float32 // degrees per second on keys
	ZoomSpeed   float32 // units per second
	MinDistance float32
	MaxDistance float32
}

func New(target rl.Vector3, distance float32) *Orbit {
	return &Orbit{
		Target:      target,
		Yaw:         -90,
		Pitch:       -40,
		Distance:    distance,
		LookSpeed:   0.3,
		TurnSpeed:   90,
		ZoomSpeed:   20,
		MinDistance: 5,
		MaxDistance: 200,
	}
}

func (c *Orbit) Update(deltaTime float32) {
	if rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		delta := rl.GetMouseDelta()
		c.Yaw += delta.X * c.LookSpeed
		c.Pitch -= delta.Y * c.LookSpeed
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		c.Yaw -= c.TurnSpeed * deltaTime
	}
	if rl.IsKeyDown(rl.KeyRight) {
		c.Yaw += c.TurnSpeed * deltaTime
	}
	if rl.IsKeyDown(rl.KeyUp) {
		c.Pitch -= c.TurnSpeed * deltaTime
	}
	if rl.IsKeyDown(rl.KeyDown) {
		c.Pitch += c.TurnSpeed * deltaTime
	}
	if rl.IsKeyDown(rl.KeyEqual) {
		c.Distance -= c.ZoomSpeed * deltaTime
	}
	if rl.IsKeyDown(rl.KeyMinus) {
		c.Distance += c.ZoomSpeed * deltaTime
	}

	// Clamp pitch short of the poles so the up vector stays valid.
	if c.Pitch > -5 {
		c.Pitch = -5
	}
	if c.Pitch < -85 {
		c.Pitch = -85
	}
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// Camera converts the orbit state to a raylib camera.
func (c *Orbit) Camera() rl.Camera3D {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180

	offset := rl.Vector3{
		X: float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		Y: float32(-math.Sin(pitchRad)),
		Z: float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}

	return rl.Camera3D{
		Position:   rl.Vector3Add(c.Target, rl.Vector3Scale(offset, c.Distance)),
		Target:     c.Target,
		Up:         rl.Vector3{Y: 1},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
