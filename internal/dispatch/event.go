// Package dispatch holds the per-type listener registry, the synthetic event
// shape, and the bubbling walk shared by every fired event.
package dispatch

import (
	"pick3d/internal/input"
	"pick3d/internal/scene"
)

// Event type names. Touch actions are mapped to their canonical mouse
// equivalents before dispatch; the touch names exist for native events and
// for listeners that want the raw stream.
const (
	MouseDown = "mousedown"
	MouseUp   = "mouseup"
	MouseMove = "mousemove"
	MouseOver = "mouseover"
	MouseOut  = "mouseout"
	Click     = "click"
	DblClick  = "dblclick"
	Wheel     = "wheel"

	DragStart = "dragstart"
	Drag      = "drag"
	DragEnd   = "dragend"
	DragEnter = "dragenter"
	DragLeave = "dragleave"
	DragOver  = "dragover"
	Drop      = "drop"

	TouchStart  = "touchstart"
	TouchMove   = "touchmove"
	TouchEnd    = "touchend"
	TouchCancel = "touchcancel"
)

// Event is the synthetic event handed to listeners. Target stays fixed to the
// original resolution target while CurrentTarget tracks the bubbling walk.
type Event struct {
	Type string

	Target        *scene.Node
	CurrentTarget *scene.Node
	RelatedTarget *scene.Node

	ClientX, ClientY float32
	ScreenX, ScreenY float32
	PageX, PageY     float32

	// Native is the raw event this one was built from, nil for events the
	// pipeline synthesizes without one.
	Native *input.NativeEvent

	// Extra carries hit metadata (distance, intersection point) for events
	// that resolved through the hit tester.
	Extra any

	propagationStopped bool
	defaultPrevented   bool
}

// NewEvent builds a synthetic event of the given type, copying normalized
// coordinates from the native event. Single-touch natives contribute the
// touch point's coordinates.
func NewEvent(native *input.NativeEvent, typ string, target *scene.Node) *Event {
	ev := &Event{Type: typ, Target: target, Native: native}
	if native != nil {
		if x, y, ok := native.Point(); ok {
			ev.ClientX, ev.ClientY = x, y
		}
		if x, y, ok := native.ScreenPoint(); ok {
			ev.ScreenX, ev.ScreenY = x, y
		}
		if x, y, ok := native.PagePoint(); ok {
			ev.PageX, ev.PageY = x, y
		}
	}
	return ev
}

// StopPropagation halts the bubbling walk after the current node's handlers
// finish. It never fires implicitly.
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

func (e *Event) PropagationStopped() bool {
	return e.propagationStopped
}

// PreventDefault marks the synthetic event and forwards to the native event
// so the host can suppress its default gesture.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
	if e.Native != nil {
		e.Native.PreventDefault()
	}
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Dispatch bubbles ev from target up the parent chain. Every handler for the
// event type on each node runs with CurrentTarget set to that node; the walk
// stops once propagation is stopped or the chain is exhausted. Handler panics
// are not recovered here: a throwing listener aborts the remaining walk and
// surfaces to the caller.
func Dispatch(r *Registry, target *scene.Node, ev *Event) {
	ev.Target = target
	for node := target; node != nil; node = node.Parent {
		ev.CurrentTarget = node
		// Snapshot the handler list so a handler removing itself (or its
		// node) mid-dispatch cannot corrupt the iteration.
		for _, fn := range r.handlersFor(node.UID, ev.Type) {
			fn(ev)
		}
		if ev.propagationStopped {
			return
		}
	}
}
