// Interactive picking demo: a field of spheres and boxes wired to the
// pointer pipeline. Hover pulses, click selects, double-click recolors,
// drag slides objects across the ground plane.
package main

import (
	"fmt"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"pick3d/internal/camera"
	"pick3d/internal/config"
	"pick3d/internal/dispatch"
	"pick3d/internal/input"
	"pick3d/internal/picker"
	"pick3d/internal/pointer"
	"pick3d/internal/scene"
)

const (
	screenWidth  = 1280
	screenHeight = 720
)

type demoObject struct {
	node     *scene.Node
	shape    *scene.SphereShape
	box      *scene.BoxShape
	color    rl.Color
	selected bool
	scale    float32
	pulse    *gween.Tween
}

func (o *demoObject) position() rl.Vector3 {
	return o.node.Position
}

func (o *demoObject) moveTo(pos rl.Vector3) {
	o.node.Position = pos
	if o.shape != nil {
		o.shape.Center = pos
	}
	if o.box != nil {
		half := rl.Vector3Scale(rl.Vector3Subtract(o.box.Max, o.box.Min), 0.5)
		o.box.Min = rl.Vector3Subtract(pos, half)
		o.box.Max = rl.Vector3Add(pos, half)
	}
}

func main() {
	cfg, err := config.Load("pick3d.yaml")
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "pickdemo: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	rl.InitWindow(screenWidth, screenHeight, "pick3d demo")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	orbit := camera.New(rl.Vector3{}, 45)
	cam := orbit.Camera()
	viewport := rl.Rectangle{Width: screenWidth, Height: screenHeight}

	pipe := pointer.NewPipeline(cfg.Options())
	defer pipe.Teardown()
	pipe.RaySource = func(x, y float32) (rl.Ray, bool) {
		return picker.ScreenRay(x, y, viewport, cam), true
	}

	objects := spawnField(pipe, cfg.Demo.ObjectCount, cfg.Demo.Seed)

	var dragging *demoObject
	for _, o := range objects {
		o := o
		pipe.AddEventListener(o.node.UID, dispatch.MouseOver, func(*dispatch.Event) {
			o.pulse = gween.New(o.scale, 1.3, 0.15, ease.OutQuad)
		})
		pipe.AddEventListener(o.node.UID, dispatch.MouseOut, func(*dispatch.Event) {
			o.pulse = gween.New(o.scale, 1.0, 0.15, ease.OutQuad)
		})
		pipe.AddEventListener(o.node.UID, dispatch.Click, func(*dispatch.Event) {
			o.selected = !o.selected
		})
		pipe.AddEventListener(o.node.UID, dispatch.DblClick, func(*dispatch.Event) {
			o.color = randomColor(rand.New(rand.NewSource(int64(o.node.UID))))
		})
		pipe.AddEventListener(o.node.UID, dispatch.DragStart, func(*dispatch.Event) {
			dragging = o
		})
		pipe.AddEventListener(o.node.UID, dispatch.Drag, func(ev *dispatch.Event) {
			ray := picker.ScreenRay(ev.ClientX, ev.ClientY, viewport, cam)
			if pos, ok := rayOnPlane(ray, o.position().Y); ok {
				o.moveTo(pos)
				pipe.ObjectBoundsChanged(o.node.UID)
			}
		})
		pipe.AddEventListener(o.node.UID, dispatch.DragEnd, func(*dispatch.Event) {
			dragging = nil
		})
		pipe.AddEventListener(o.node.UID, dispatch.Wheel, func(ev *dispatch.Event) {
			pos := o.position()
			pos.Y += ev.Native.WheelDelta * 0.5
			if pos.Y < 0.5 {
				pos.Y = 0.5
			}
			o.moveTo(pos)
			pipe.ObjectBoundsChanged(o.node.UID)
		})
	}

	for !rl.WindowShouldClose() {
		dt := rl.GetFrameTime()
		orbit.Update(dt)
		cam = orbit.Camera()
		feedInput(pipe)

		for _, o := range objects {
			if o.pulse != nil {
				v, done := o.pulse.Update(dt)
				o.scale = v
				if done {
					o.pulse = nil
				}
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(24, 24, 32, 255))

		rl.BeginMode3D(cam)
		rl.DrawGrid(40, 2)
		for _, o := range objects {
			drawObject(o, pipe.Hovered() == o.node)
		}
		rl.EndMode3D()

		if cfg.Demo.ShowOverlay {
			drawOverlay(pipe, dragging)
		}
		rl.EndDrawing()
	}
}

// feedInput translates raylib's polled mouse state into native events.
func feedInput(pipe *pointer.Pipeline) {
	pos := rl.GetMousePosition()
	delta := rl.GetMouseDelta()
	if delta.X != 0 || delta.Y != 0 {
		pipe.HandleMotion(input.MouseMotion(pos.X, pos.Y))
	}
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		pipe.HandleAction(input.MousePress(0, pos.X, pos.Y))
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		pipe.HandleAction(input.MouseRelease(0, pos.X, pos.Y))
	}
	if rl.IsMouseButtonPressed(rl.MouseRightButton) {
		pipe.HandleAction(input.MousePress(2, pos.X, pos.Y))
	}
	if rl.IsMouseButtonReleased(rl.MouseRightButton) {
		pipe.HandleAction(input.MouseRelease(2, pos.X, pos.Y))
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		ev := input.MouseMotion(pos.X, pos.Y)
		ev.Kind = input.KindWheel
		ev.Type = dispatch.Wheel
		ev.WheelDelta = wheel
		pipe.HandleAction(ev)
	}
}

func spawnField(pipe *pointer.Pipeline, count int, seed int64) []*demoObject {
	rng := rand.New(rand.NewSource(seed))
	objects := make([]*demoObject, 0, count)
	for i := 0; i < count; i++ {
		pos := rl.Vector3{
			X: rng.Float32()*40 - 20,
			Y: 1 + rng.Float32()*4,
			Z: rng.Float32()*40 - 20,
		}
		o := &demoObject{color: randomColor(rng), scale: 1}
		if i%3 == 0 {
			half := rl.Vector3{X: 1, Y: 1, Z: 1}
			o.box = &scene.BoxShape{
				Min: rl.Vector3Subtract(pos, half),
				Max: rl.Vector3Add(pos, half),
			}
			o.node = scene.NewNode(fmt.Sprintf("box-%d", i))
			o.node.Bounds = o.box
			o.node.Geometry = o.box
		} else {
			o.shape = &scene.SphereShape{Center: pos, Radius: 0.8 + rng.Float32()*0.8}
			o.node = scene.NewNode(fmt.Sprintf("sphere-%d", i))
			o.node.Bounds = o.shape
			o.node.Geometry = o.shape
		}
		o.node.Position = pos
		pipe.ObjectAdded(o.node)
		objects = append(objects, o)
	}
	return objects
}

func drawObject(o *demoObject, hovered bool) {
	color := o.color
	if o.selected {
		color = rl.Gold
	}
	pos := o.position()
	if o.shape != nil {
		rl.DrawSphere(pos, o.shape.Radius*o.scale, color)
		if hovered {
			rl.DrawSphereWires(pos, o.shape.Radius*o.scale+0.05, 8, 8, rl.RayWhite)
		}
		return
	}
	size := rl.Vector3Scale(rl.Vector3Subtract(o.box.Max, o.box.Min), o.scale)
	rl.DrawCubeV(pos, size, color)
	if hovered {
		rl.DrawCubeWiresV(pos, rl.Vector3AddValue(size, 0.05), rl.RayWhite)
	}
}

func drawOverlay(pipe *pointer.Pipeline, dragging *demoObject) {
	gui.Panel(rl.Rectangle{X: 10, Y: 10, Width: 260, Height: 90}, "pick3d")
	hovered := "-"
	if n := pipe.Hovered(); n != nil {
		hovered = n.Name
	}
	drag := "-"
	if dragging != nil {
		drag = dragging.node.Name
	}
	gui.Label(rl.Rectangle{X: 20, Y: 38, Width: 240, Height: 20}, "hover: "+hovered)
	gui.Label(rl.Rectangle{X: 20, Y: 58, Width: 240, Height: 20}, "drag:  "+drag)
	rl.DrawFPS(10, 110)
}

// rayOnPlane intersects a ray with the horizontal plane at height y.
func rayOnPlane(ray rl.Ray, y float32) (rl.Vector3, bool) {
	if ray.Direction.Y == 0 {
		return rl.Vector3{}, false
	}
	t := (y - ray.Position.Y) / ray.Direction.Y
	if t < 0 {
		return rl.Vector3{}, false
	}
	return rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, t)), true
}

func randomColor(rng *rand.Rand) rl.Color {
	return rl.NewColor(
		uint8(100+rng.Intn(156)),
		uint8(100+rng.Intn(156)),
		uint8(100+rng.Intn(156)),
		255,
	)
}
