// Package input defines the normalized shape of raw pointer input. Mouse,
// single-touch, and direct-ray (VR controller) sources all funnel through
// NativeEvent before the pointer pipeline sees them.
package input

import rl "github.com/gen2brain/raylib-go/raylib"

// Kind classifies what a native event does, independent of its source.
type Kind int

const (
	KindMotion Kind = iota
	KindPress
	KindRelease
	KindWheel
)

// Source identifies the device class that produced an event.
type Source int

const (
	SourceMouse Source = iota
	SourceTouch
	SourceRay
)

// Eye tags a ray with the stereo eye it was cast from. Opaque to hit testing.
type Eye int

const (
	EyeNone Eye = iota
	EyeLeft
	EyeRight
)

// Touch is one active contact point.
type Touch struct {
	ID               int
	X, Y             float32
	ScreenX, ScreenY float32
	PageX, PageY     float32
}

// NativeEvent is a raw input event before gesture recognition. Type carries
// the source event name ("mousedown", "touchstart", ...); the pipeline maps
// it to a canonical dispatched type.
type NativeEvent struct {
	Kind   Kind
	Source Source
	Type   string

	// Pointer coordinates in device-independent pixels. HasPoint is false
	// when the source supplied none (ray-only input, malformed events).
	X, Y             float32
	ScreenX, ScreenY float32
	PageX, PageY     float32
	HasPoint         bool

	// Button is the pressed button for press/release kinds; 0 is primary.
	Button int

	// WheelDelta is the scroll amount for KindWheel.
	WheelDelta float32

	// Touches are the currently active contacts; ChangedTouches the ones
	// that changed in this event (the lifted touch for touchend).
	Touches        []Touch
	ChangedTouches []Touch

	// Ray is a world-space ray supplied directly by the source (VR
	// controllers), bypassing screen-point unprojection.
	Ray *rl.Ray
	Eye Eye

	// OnPreventDefault lets the host suppress the native default gesture
	// (touch scrolling and the like) when the pipeline asks for it.
	OnPreventDefault func()

	defaultPrevented bool
}

// PreventDefault marks the event and notifies the host exactly once.
func (e *NativeEvent) PreventDefault() {
	if e.defaultPrevented {
		return
	}
	e.defaultPrevented = true
	if e.OnPreventDefault != nil {
		e.OnPreventDefault()
	}
}

func (e *NativeEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Point returns the normalized client coordinates for the event. Single-touch
// events take coordinates from the active touch (or the lifted one for a
// touch end). Multi-touch and coordinate-less events report no point, which
// hit testing treats as "no hit".
func (e *NativeEvent) Point() (x, y float32, ok bool) {
	if e.Source == SourceTouch {
		switch {
		case len(e.Touches) == 1:
			t := e.Touches[0]
			return t.X, t.Y, true
		case len(e.Touches) == 0 && len(e.ChangedTouches) == 1:
			t := e.ChangedTouches[0]
			return t.X, t.Y, true
		default:
			return 0, 0, false
		}
	}
	if !e.HasPoint {
		return 0, 0, false
	}
	return e.X, e.Y, true
}

// ScreenPoint mirrors Point for screen coordinates.
func (e *NativeEvent) ScreenPoint() (x, y float32, ok bool) {
	if e.Source == SourceTouch {
		switch {
		case len(e.Touches) == 1:
			t := e.Touches[0]
			return t.ScreenX, t.ScreenY, true
		case len(e.Touches) == 0 && len(e.ChangedTouches) == 1:
			t := e.ChangedTouches[0]
			return t.ScreenX, t.ScreenY, true
		default:
			return 0, 0, false
		}
	}
	if !e.HasPoint {
		return 0, 0, false
	}
	return e.ScreenX, e.ScreenY, true
}

// PagePoint mirrors Point for page coordinates.
func (e *NativeEvent) PagePoint() (x, y float32, ok bool) {
	if e.Source == SourceTouch {
		switch {
		case len(e.Touches) == 1:
			t := e.Touches[0]
			return t.PageX, t.PageY, true
		case len(e.Touches) == 0 && len(e.ChangedTouches) == 1:
			t := e.ChangedTouches[0]
			return t.PageX, t.PageY, true
		default:
			return 0, 0, false
		}
	}
	if !e.HasPoint {
		return 0, 0, false
	}
	return e.PageX, e.PageY, true
}

// MouseMotion builds a mouse move event at client coordinates.
func MouseMotion(x, y float32) *NativeEvent {
	return &NativeEvent{
		Kind: KindMotion, Source: SourceMouse, Type: "mousemove",
		X: x, Y: y, ScreenX: x, ScreenY: y, PageX: x, PageY: y, HasPoint: true,
	}
}

// MousePress builds a button press at client coordinates.
func MousePress(button int, x, y float32) *NativeEvent {
	return &NativeEvent{
		Kind: KindPress, Source: SourceMouse, Type: "mousedown", Button: button,
		X: x, Y: y, ScreenX: x, ScreenY: y, PageX: x, PageY: y, HasPoint: true,
	}
}

// MouseRelease builds a button release at client coordinates.
func MouseRelease(button int, x, y float32) *NativeEvent {
	return &NativeEvent{
		Kind: KindRelease, Source: SourceMouse, Type: "mouseup", Button: button,
		X: x, Y: y, ScreenX: x, ScreenY: y, PageX: x, PageY: y, HasPoint: true,
	}
}

// TouchStart builds a touch press with the given active contacts.
func TouchStart(touches ...Touch) *NativeEvent {
	return &NativeEvent{
		Kind: KindPress, Source: SourceTouch, Type: "touchstart",
		Touches: touches, ChangedTouches: touches,
	}
}

// TouchMove builds a touch motion with the given active contacts.
func TouchMove(touches ...Touch) *NativeEvent {
	return &NativeEvent{
		Kind: KindMotion, Source: SourceTouch, Type: "touchmove",
		Touches: touches, ChangedTouches: touches,
	}
}

// TouchEnd builds a touch release. remaining are the contacts still down,
// lifted the ones that ended.
func TouchEnd(remaining []Touch, lifted ...Touch) *NativeEvent {
	return &NativeEvent{
		Kind: KindRelease, Source: SourceTouch, Type: "touchend",
		Touches: remaining, ChangedTouches: lifted,
	}
}

// RayMotion builds a motion event carrying a world-space ray directly.
func RayMotion(ray rl.Ray, eye Eye) *NativeEvent {
	r := ray
	return &NativeEvent{Kind: KindMotion, Source: SourceRay, Type: "mousemove", Ray: &r, Eye: eye}
}

// RayPress builds a press event carrying a world-space ray directly.
func RayPress(ray rl.Ray, eye Eye) *NativeEvent {
	r := ray
	return &NativeEvent{Kind: KindPress, Source: SourceRay, Type: "mousedown", Ray: &r, Eye: eye}
}

// RayRelease builds a release event carrying a world-space ray directly.
func RayRelease(ray rl.Ray, eye Eye) *NativeEvent {
	r := ray
	return &NativeEvent{Kind: KindRelease, Source: SourceRay, Type: "mouseup", Ray: &r, Eye: eye}
}
