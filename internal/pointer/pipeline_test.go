package pointer

import (
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"pick3d/internal/dispatch"
	"pick3d/internal/input"
	"pick3d/internal/scene"
)

// testSurface wires a pipeline to a trivial ray source: the ray drops
// straight down +Z from the client point, so a sphere at (x, y, 10) is "under"
// the pointer at (x, y).
type testSurface struct {
	p     *Pipeline
	clock time.Time
}

func newSurface(t *testing.T) *testSurface {
	t.Helper()
	s := &testSurface{clock: time.Unix(1000, 0)}
	s.p = NewPipeline(Options{})
	s.p.now = func() time.Time { return s.clock }
	s.p.RaySource = func(x, y float32) (rl.Ray, bool) {
		return rl.Ray{
			Position:  rl.Vector3{X: x, Y: y, Z: -100},
			Direction: rl.Vector3{Z: 1},
		}, true
	}
	return s
}

func (s *testSurface) advance(d time.Duration) {
	s.clock = s.clock.Add(d)
}

func (s *testSurface) addSphere(name string, x, y, z, radius float32) *scene.Node {
	n := scene.NewNode(name)
	shape := &scene.SphereShape{Center: rl.Vector3{X: x, Y: y, Z: z}, Radius: radius}
	n.Bounds = shape
	n.Geometry = shape
	s.p.ObjectAdded(n)
	return n
}

func touchAt(x, y float32) input.Touch {
	return input.Touch{ID: 1, X: x, Y: y, ScreenX: x, ScreenY: y, PageX: x, PageY: y}
}

func TestHoverTransitions(t *testing.T) {
	s := newSurface(t)
	root := scene.NewNode("root")
	a := s.addSphere("a", 0, 0, 10, 5)
	b := s.addSphere("b", 50, 0, 10, 5)
	root.AddChild(a)
	root.AddChild(b)

	var log []string
	record := func(tag string) dispatch.Handler {
		return func(ev *dispatch.Event) { log = append(log, tag) }
	}
	s.p.AddEventListener(a.UID, dispatch.MouseOver, record("over:a"))
	s.p.AddEventListener(a.UID, dispatch.MouseOut, record("out:a"))
	s.p.AddEventListener(b.UID, dispatch.MouseOver, record("over:b"))
	s.p.AddEventListener(b.UID, dispatch.MouseOut, record("out:b"))
	s.p.AddEventListener(root.UID, dispatch.MouseOver, record("over:root"))
	s.p.AddEventListener(root.UID, dispatch.MouseOut, record("out:root"))

	// Missing everything: no transitions.
	s.p.HandleMotion(input.MouseMotion(200, 200))
	if len(log) != 0 {
		t.Fatalf("log = %v, want empty after a miss", log)
	}

	// Nothing -> A: exactly one mouseover per chain node, zero mouseouts.
	s.p.HandleMotion(input.MouseMotion(0, 0))
	want := []string{"over:a", "over:root"}
	if !equal(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	if s.p.Hovered() != a {
		t.Error("Hovered() != a")
	}

	// A -> B: the out chain completes before any over fires.
	log = nil
	s.p.HandleMotion(input.MouseMotion(50, 0))
	want = []string{"out:a", "out:root", "over:b", "over:root"}
	if !equal(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}

	// B -> nothing: trailing out only.
	log = nil
	s.p.HandleMotion(input.MouseMotion(200, 200))
	want = []string{"out:b", "out:root"}
	if !equal(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	if s.p.Hovered() != nil {
		t.Error("Hovered() should be nil after leaving")
	}
}

func TestHoverRelatedTargetsCrossed(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)
	b := s.addSphere("b", 50, 0, 10, 5)

	s.p.AddEventListener(a.UID, dispatch.MouseOut, func(ev *dispatch.Event) {
		if ev.RelatedTarget != b {
			t.Error("mouseout related target should be the node being entered")
		}
	})
	s.p.AddEventListener(b.UID, dispatch.MouseOver, func(ev *dispatch.Event) {
		if ev.RelatedTarget != a {
			t.Error("mouseover related target should be the node being left")
		}
	})

	s.p.HandleMotion(input.MouseMotion(0, 0))
	s.p.HandleMotion(input.MouseMotion(50, 0))
}

func TestMouseMoveFiresOnCurrentTarget(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)

	moves := 0
	s.p.AddEventListener(a.UID, dispatch.MouseMove, func(*dispatch.Event) { moves++ })

	s.p.HandleMotion(input.MouseMotion(0, 0))
	s.p.HandleMotion(input.MouseMotion(1, 0))
	s.p.HandleMotion(input.MouseMotion(2, 0))
	if moves != 3 {
		t.Errorf("mousemove fired %d times, want 3", moves)
	}
}

func TestTapToClick(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 100, 100, 10, 40)

	clicks := 0
	s.p.AddEventListener(a.UID, dispatch.Click, func(*dispatch.Event) { clicks++ })

	s.p.HandleAction(input.TouchStart(touchAt(100, 100)))
	s.advance(150 * time.Millisecond)
	s.p.HandleAction(input.TouchEnd(nil, touchAt(102, 101)))

	if clicks != 1 {
		t.Errorf("clicks = %d, want exactly 1", clicks)
	}
}

func TestTapCanceledBySlop(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 100, 100, 10, 40)

	clicks := 0
	s.p.AddEventListener(a.UID, dispatch.Click, func(*dispatch.Event) { clicks++ })

	s.p.HandleAction(input.TouchStart(touchAt(100, 100)))
	s.p.HandleMotion(input.TouchMove(touchAt(100, 130))) // 30 > slop 10
	s.advance(150 * time.Millisecond)
	s.p.HandleAction(input.TouchEnd(nil, touchAt(100, 130)))

	if clicks != 0 {
		t.Errorf("clicks = %d, want 0 after slop cancellation", clicks)
	}
}

func TestTapExpiresAfterTimeout(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 100, 100, 10, 40)

	clicks := 0
	s.p.AddEventListener(a.UID, dispatch.Click, func(*dispatch.Event) { clicks++ })

	s.p.HandleAction(input.TouchStart(touchAt(100, 100)))
	s.advance(400 * time.Millisecond)
	s.p.HandleAction(input.TouchEnd(nil, touchAt(100, 100)))

	if clicks != 0 {
		t.Errorf("clicks = %d, want 0 after the tap window expired", clicks)
	}
}

func TestDoubleClick(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 100, 100, 10, 40)

	clicks, dbl := 0, 0
	s.p.AddEventListener(a.UID, dispatch.Click, func(*dispatch.Event) { clicks++ })
	s.p.AddEventListener(a.UID, dispatch.DblClick, func(*dispatch.Event) { dbl++ })

	s.p.HandleAction(input.TouchStart(touchAt(100, 100)))
	s.advance(100 * time.Millisecond)
	s.p.HandleAction(input.TouchEnd(nil, touchAt(100, 100)))

	s.advance(100 * time.Millisecond) // second tap starts 200ms after the first
	s.p.HandleAction(input.TouchStart(touchAt(100, 100)))
	s.advance(80 * time.Millisecond)
	s.p.HandleAction(input.TouchEnd(nil, touchAt(100, 100)))

	if clicks != 2 {
		t.Errorf("clicks = %d, want 2", clicks)
	}
	if dbl != 1 {
		t.Errorf("dblclicks = %d, want 1", dbl)
	}
}

func TestSlowSecondTapIsNotDouble(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 100, 100, 10, 40)

	dbl := 0
	s.p.AddEventListener(a.UID, dispatch.Click, func(*dispatch.Event) {})
	s.p.AddEventListener(a.UID, dispatch.DblClick, func(*dispatch.Event) { dbl++ })

	s.p.HandleAction(input.TouchStart(touchAt(100, 100)))
	s.advance(100 * time.Millisecond)
	s.p.HandleAction(input.TouchEnd(nil, touchAt(100, 100)))

	s.advance(400 * time.Millisecond) // outside the double-click window
	s.p.HandleAction(input.TouchStart(touchAt(100, 100)))
	s.advance(100 * time.Millisecond)
	s.p.HandleAction(input.TouchEnd(nil, touchAt(100, 100)))

	if dbl != 0 {
		t.Errorf("dblclicks = %d, want 0", dbl)
	}
}

func TestDragRoundTrip(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)
	b := s.addSphere("b", 50, 0, 10, 5)

	var log []string
	record := func(tag string) dispatch.Handler {
		return func(*dispatch.Event) { log = append(log, tag) }
	}
	s.p.AddEventListener(a.UID, dispatch.DragStart, record("dragstart"))
	s.p.AddEventListener(a.UID, dispatch.Drag, record("drag"))
	s.p.AddEventListener(a.UID, dispatch.DragEnd, record("dragend"))
	s.p.AddEventListener(b.UID, dispatch.Drop, record("drop"))

	captured := false
	s.p.CaptureRelease = func(active bool) { captured = active }

	s.p.HandleAction(input.MousePress(0, 0, 0))
	if s.p.Dragging() != a {
		t.Fatal("drag should begin on a primary press over a drag-capable node")
	}
	if !captured {
		t.Error("release capture should engage when the drag begins")
	}
	if len(log) != 0 {
		t.Fatalf("log = %v, dragstart must wait for real motion", log)
	}

	// One motion fires dragstart then drag, in that order.
	s.p.HandleMotion(input.MouseMotion(30, 0))
	s.p.HandleAction(input.MouseRelease(0, 50, 0))

	want := []string{"dragstart", "drag", "drop", "dragend"}
	if !equal(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	if s.p.Dragging() != nil {
		t.Error("drag state should clear on release")
	}
	if captured {
		t.Error("release capture should disengage when the drag ends")
	}

	// Subsequent motion fires no drag events.
	log = nil
	s.p.HandleMotion(input.MouseMotion(30, 0))
	for _, tag := range log {
		if tag == "drag" || tag == "dragstart" {
			t.Errorf("drag event %q after drag ended", tag)
		}
	}
}

func TestOffSurfaceReleaseSkipsDrop(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)
	b := s.addSphere("b", 50, 0, 10, 5)

	var log []string
	s.p.AddEventListener(a.UID, dispatch.DragStart, func(*dispatch.Event) { log = append(log, "dragstart") })
	s.p.AddEventListener(a.UID, dispatch.DragEnd, func(*dispatch.Event) { log = append(log, "dragend") })
	s.p.AddEventListener(b.UID, dispatch.Drop, func(*dispatch.Event) { log = append(log, "drop") })

	s.p.HandleAction(input.MousePress(0, 0, 0))
	s.p.HandleMotion(input.MouseMotion(50, 0))
	// Pointer released outside the surface; the global capture saw it.
	s.p.HandleRelease(input.MouseRelease(0, 50, 0), false)

	want := []string{"dragstart", "dragend"}
	if !equal(log, want) {
		t.Fatalf("log = %v, want %v (no drop off-surface)", log, want)
	}
}

func TestDragEnterLeaveWhileDragging(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)
	b := s.addSphere("b", 50, 0, 10, 5)

	var log []string
	record := func(tag string) dispatch.Handler {
		return func(*dispatch.Event) { log = append(log, tag) }
	}
	s.p.AddEventListener(a.UID, dispatch.DragStart, record("dragstart"))
	s.p.AddEventListener(b.UID, dispatch.DragEnter, record("enter:b"))
	s.p.AddEventListener(b.UID, dispatch.DragOver, record("over:b"))
	s.p.AddEventListener(b.UID, dispatch.DragLeave, record("leave:b"))

	s.p.HandleAction(input.MousePress(0, 0, 0))
	s.p.HandleMotion(input.MouseMotion(10, 0)) // dragstart
	s.p.HandleMotion(input.MouseMotion(50, 0)) // enters b
	s.p.HandleMotion(input.MouseMotion(51, 0)) // still over b
	s.p.HandleMotion(input.MouseMotion(200, 0)) // leaves b

	want := []string{"dragstart", "enter:b", "over:b", "over:b", "leave:b"}
	if !equal(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
}

func TestMultiTouchIgnored(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)

	fired := 0
	s.p.AddEventListener(a.UID, dispatch.MouseOver, func(*dispatch.Event) { fired++ })
	s.p.AddEventListener(a.UID, dispatch.MouseDown, func(*dispatch.Event) { fired++ })

	second := input.Touch{ID: 2, X: 1, Y: 1}
	s.p.HandleMotion(input.TouchMove(touchAt(0, 0), second))
	s.p.HandleAction(input.TouchStart(touchAt(0, 0), second))

	if fired != 0 {
		t.Errorf("fired = %d, want 0 for multi-touch input", fired)
	}
}

func TestActionPreventsNativeDefaultOnlyWithTarget(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)
	s.p.AddEventListener(a.UID, dispatch.MouseDown, func(*dispatch.Event) {})

	hit := input.MousePress(0, 0, 0)
	s.p.HandleAction(hit)
	if !hit.DefaultPrevented() {
		t.Error("action resolving a target must prevent the native default")
	}

	miss := input.MousePress(0, 200, 200)
	s.p.HandleAction(miss)
	if miss.DefaultPrevented() {
		t.Error("action resolving nothing must not prevent the native default")
	}
}

func TestPointerNeverSkippedButSceneBehindHit(t *testing.T) {
	s := newSurface(t)
	front := s.addSphere("front", 0, 0, 5, 2)
	front.Pointer = scene.PointerNever
	s.p.ObjectBoundsChanged(front.UID)
	back := s.addSphere("back", 0, 0, 20, 2)

	var target *scene.Node
	s.p.AddEventListener(front.UID, dispatch.MouseDown, func(ev *dispatch.Event) { target = ev.Target })
	s.p.AddEventListener(back.UID, dispatch.MouseDown, func(ev *dispatch.Event) { target = ev.Target })

	s.p.HandleAction(input.MousePress(0, 0, 0))
	if target != back {
		t.Errorf("target = %v, want the node behind the pointer-never one", target)
	}
}

func TestPointerAlwaysTargetsWithoutListeners(t *testing.T) {
	s := newSurface(t)
	blocker := s.addSphere("blocker", 0, 0, 5, 2)
	blocker.Pointer = scene.PointerAlways
	s.addSphere("back", 0, 0, 20, 2)

	ev := input.MousePress(0, 0, 0)
	s.p.HandleAction(ev)
	// The blocker resolves as the target even though no handler runs.
	if !ev.DefaultPrevented() {
		t.Error("pointer-always node should resolve as a target")
	}
}

func TestAncestorListenerMakesNodeEligible(t *testing.T) {
	s := newSurface(t)
	parent := scene.NewNode("parent")
	child := s.addSphere("child", 0, 0, 10, 5)
	parent.AddChild(child)

	clicks := 0
	s.p.AddEventListener(parent.UID, dispatch.Click, func(*dispatch.Event) { clicks++ })

	s.p.HandleAction(input.TouchStart(touchAt(0, 0)))
	s.advance(100 * time.Millisecond)
	s.p.HandleAction(input.TouchEnd(nil, touchAt(0, 0)))

	if clicks != 1 {
		t.Errorf("clicks = %d, want 1 via the ancestor's listener", clicks)
	}
}

func TestTouchSessionTogglesContextMenu(t *testing.T) {
	s := newSurface(t)
	s.addSphere("a", 0, 0, 10, 5)

	var states []bool
	s.p.SetContextMenuEnabled = func(enabled bool) { states = append(states, enabled) }

	s.p.HandleAction(input.TouchStart(touchAt(0, 0)))
	s.p.HandleAction(input.TouchEnd(nil, touchAt(0, 0)))

	if len(states) != 2 || states[0] != false || states[1] != true {
		t.Errorf("context menu states = %v, want [false true]", states)
	}
}

func TestTouchEndFiresTrailingMouseOut(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)

	outs := 0
	s.p.AddEventListener(a.UID, dispatch.MouseOut, func(*dispatch.Event) { outs++ })

	s.p.HandleAction(input.TouchStart(touchAt(0, 0))) // motion pass establishes hover
	if s.p.Hovered() != a {
		t.Fatal("touch start should establish hover")
	}
	s.p.HandleAction(input.TouchEnd(nil, touchAt(0, 0)))

	if outs != 1 {
		t.Errorf("mouseout fired %d times, want 1 trailing out", outs)
	}
	if s.p.Hovered() != nil {
		t.Error("hover should clear when the touch lifts")
	}
}

func TestObjectRemovedClearsGestureState(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)
	s.p.AddEventListener(a.UID, dispatch.MouseOver, func(*dispatch.Event) {})
	s.p.AddEventListener(a.UID, dispatch.DragStart, func(*dispatch.Event) {})

	s.p.HandleMotion(input.MouseMotion(0, 0))
	s.p.HandleAction(input.MousePress(0, 0, 0))
	if s.p.Hovered() != a || s.p.Dragging() != a {
		t.Fatal("setup: expected hover and drag on a")
	}

	s.p.ObjectRemoved(a.UID)
	if s.p.Hovered() != nil || s.p.Dragging() != nil {
		t.Error("removal should drop hover and drag references")
	}
	// Stale notifications are silent no-ops.
	s.p.ObjectRemoved(a.UID)
	s.p.ObjectBoundsChanged(a.UID)

	// The index forgets the node too.
	s.p.HandleMotion(input.MouseMotion(0, 0))
	if s.p.Hovered() != nil {
		t.Error("removed node must not be hit again")
	}
}

func TestHandlerRemovingItsOwnNodeMidDispatch(t *testing.T) {
	s := newSurface(t)
	parent := scene.NewNode("parent")
	child := s.addSphere("child", 0, 0, 10, 5)
	parent.AddChild(child)

	parentCalled := false
	s.p.AddEventListener(child.UID, dispatch.MouseDown, func(*dispatch.Event) {
		s.p.ObjectRemoved(child.UID)
		s.p.RemoveAllEventListeners(child.UID)
	})
	s.p.AddEventListener(parent.UID, dispatch.MouseDown, func(*dispatch.Event) { parentCalled = true })

	s.p.HandleAction(input.MousePress(0, 0, 0))
	if !parentCalled {
		t.Error("bubbling should continue past a node removed by its own handler")
	}
}

func TestTeardownIdempotent(t *testing.T) {
	s := newSurface(t)
	a := s.addSphere("a", 0, 0, 10, 5)
	s.p.AddEventListener(a.UID, dispatch.MouseOver, func(*dispatch.Event) {
		t.Error("no events after teardown")
	})
	s.p.AddEventListener(a.UID, dispatch.DragStart, func(*dispatch.Event) {})

	captureOff := false
	s.p.CaptureRelease = func(active bool) { captureOff = !active }
	s.p.HandleAction(input.MousePress(0, 0, 0)) // start a drag

	s.p.Teardown()
	s.p.Teardown()

	if !captureOff {
		t.Error("teardown must disengage release capture")
	}
	if s.p.Hovered() != nil || s.p.Dragging() != nil {
		t.Error("teardown must clear gesture state")
	}
	s.p.HandleMotion(input.MouseMotion(0, 0))
	s.p.HandleAction(input.MousePress(0, 0, 0))
}

func TestDirectRayInput(t *testing.T) {
	s := newSurface(t)
	s.p.RaySource = nil // ray events need no screen conversion
	a := s.addSphere("a", 0, 0, 10, 5)

	overs := 0
	s.p.AddEventListener(a.UID, dispatch.MouseOver, func(*dispatch.Event) { overs++ })

	ray := rl.Ray{Position: rl.Vector3{Z: -100}, Direction: rl.Vector3{Z: 1}}
	s.p.HandleMotion(input.RayMotion(ray, input.EyeLeft))
	if overs != 1 {
		t.Errorf("mouseover fired %d times for ray input, want 1", overs)
	}
	if s.p.Hovered() != a {
		t.Error("ray input should establish hover")
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
