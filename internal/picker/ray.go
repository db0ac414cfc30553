package picker

import rl "github.com/gen2brain/raylib-go/raylib"

// Clip plane distances matching raylib's defaults, so picking agrees with
// what the renderer culls.
const (
	nearPlane = 0.01
	farPlane  = 1000.0
)

// ScreenRay converts a screen point inside viewport to a world-space ray
// through cam. Pure matrix math; no window or GL context is touched, which
// keeps it usable from tests and headless tools.
func ScreenRay(x, y float32, viewport rl.Rectangle, cam rl.Camera3D) rl.Ray {
	// Normalized device coordinates, y flipped: screen y grows downward.
	ndcX := 2*(x-viewport.X)/viewport.Width - 1
	ndcY := 1 - 2*(y-viewport.Y)/viewport.Height

	aspect := viewport.Width / viewport.Height
	var proj rl.Matrix
	if cam.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(cam.Fovy*rl.Deg2rad, aspect, nearPlane, farPlane)
	} else {
		top := cam.Fovy / 2
		right := top * aspect
		proj = rl.MatrixOrtho(-right, right, -top, top, nearPlane, farPlane)
	}
	view := rl.MatrixLookAt(cam.Position, cam.Target, cam.Up)

	nearPoint := rl.Vector3Unproject(rl.Vector3{X: ndcX, Y: ndcY, Z: 0}, proj, view)
	farPoint := rl.Vector3Unproject(rl.Vector3{X: ndcX, Y: ndcY, Z: 1}, proj, view)
	direction := rl.Vector3Normalize(rl.Vector3Subtract(farPoint, nearPoint))

	position := cam.Position
	if cam.Projection == rl.CameraOrthographic {
		position = nearPoint
	}
	return rl.Ray{Position: position, Direction: direction}
}
