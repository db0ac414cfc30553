// Package pointer implements the per-surface gesture state machine: hover
// transitions, drag lifecycle, tap-to-click and double-click recognition. One
// Pipeline instance serves one rendering surface; independent surfaces use
// independent instances with nothing shared.
package pointer

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"pick3d/internal/dispatch"
	"pick3d/internal/input"
	"pick3d/internal/picker"
	"pick3d/internal/scene"
	"pick3d/internal/spatial"
)

// Defaults for gesture recognition thresholds.
const (
	DefaultTapTimeout        = 300 * time.Millisecond
	DefaultDoubleClickWindow = 300 * time.Millisecond
	DefaultTouchSlop         = 10 // device-independent pixels
)

// Options tunes gesture recognition. Zero values fall back to the defaults.
type Options struct {
	// TapTimeout is the longest press-to-release interval promoted to a click.
	TapTimeout time.Duration
	// DoubleClickWindow is the longest interval between two tap starts that
	// makes the second one a double-click.
	DoubleClickWindow time.Duration
	// TouchSlop is the movement distance that cancels a pending tap.
	TouchSlop float32
}

func (o *Options) fillDefaults() {
	if o.TapTimeout <= 0 {
		o.TapTimeout = DefaultTapTimeout
	}
	if o.DoubleClickWindow <= 0 {
		o.DoubleClickWindow = DefaultDoubleClickWindow
	}
	if o.TouchSlop <= 0 {
		o.TouchSlop = DefaultTouchSlop
	}
}

type dragInfo struct {
	node       *scene.Node
	startEvent *dispatch.Event
	started    bool // dragstart dispatched
}

type tapInfo struct {
	node     *scene.Node
	x, y     float32
	at       time.Time
	isDouble bool
	canceled bool // movement exceeded the slop
}

// Pipeline consumes normalized input events, resolves hit targets, and
// dispatches synthetic events with bubbling. All methods run synchronously on
// the caller's goroutine; there is no internal queue.
type Pipeline struct {
	opts     Options
	registry *dispatch.Registry
	index    *spatial.Index
	picker   *picker.Picker
	nodes    map[uint64]*scene.Node

	hovered *scene.Node
	drag    *dragInfo
	tap     *tapInfo

	now     func() time.Time
	menuOff bool
	torn    bool

	// RaySource converts client coordinates to a world ray; supplied by the
	// rendering layer. Without it, only events carrying a ray resolve hits.
	RaySource func(x, y float32) (rl.Ray, bool)

	// SetContextMenuEnabled, when set, is called with false while a touch
	// session is active and true when it ends.
	SetContextMenuEnabled func(enabled bool)

	// CaptureRelease, when set, is told to start (true) or stop (false)
	// watching for release events outside the input surface while a drag is
	// in flight. The host feeds those through HandleRelease.
	CaptureRelease func(active bool)
}

// NewPipeline builds an empty pipeline for one rendering surface.
func NewPipeline(opts Options) *Pipeline {
	opts.fillDefaults()
	p := &Pipeline{
		opts:     opts,
		registry: dispatch.NewRegistry(),
		nodes:    make(map[uint64]*scene.Node),
		now:      time.Now,
	}
	p.index = spatial.NewIndex(func(id uint64) (spatial.Sphere, bool) {
		n, ok := p.nodes[id]
		if !ok || n.Destroyed || n.Bounds == nil {
			return spatial.Sphere{}, false
		}
		return n.Bounds.BoundingSphere()
	})
	p.picker = &picker.Picker{
		Index:  p.index,
		Lookup: func(id uint64) *scene.Node { return p.nodes[id] },
	}
	return p
}

// Registry exposes the listener registry, mainly for instrumentation.
func (p *Pipeline) Registry() *dispatch.Registry {
	return p.registry
}

// Picker exposes the hit tester for hosts that pick outside the event flow.
func (p *Pipeline) Picker() *picker.Picker {
	return p.picker
}

// Hovered returns the node currently under the pointer, or nil.
func (p *Pipeline) Hovered() *scene.Node {
	return p.hovered
}

// Dragging returns the node being dragged, or nil.
func (p *Pipeline) Dragging() *scene.Node {
	if p.drag == nil {
		return nil
	}
	return p.drag.node
}

// ObjectAdded registers a node with the surface and queues it for indexing.
func (p *Pipeline) ObjectAdded(n *scene.Node) {
	if n == nil || p.torn {
		return
	}
	n.Destroyed = false
	p.nodes[n.UID] = n
	p.index.Upsert(n.UID)
}

// ObjectBoundsChanged queues a bounds refresh. Unknown ids are no-ops.
func (p *Pipeline) ObjectBoundsChanged(uid uint64) {
	if p.torn {
		return
	}
	if _, ok := p.nodes[uid]; ok {
		p.index.Upsert(uid)
	}
}

// ObjectRemoved forgets a node. Idempotent; gesture state referencing the
// node is dropped so no further events target it.
func (p *Pipeline) ObjectRemoved(uid uint64) {
	if p.torn {
		return
	}
	if n, ok := p.nodes[uid]; ok {
		n.Destroyed = true
		delete(p.nodes, uid)
	}
	p.index.Remove(uid)

	if p.hovered != nil && p.hovered.UID == uid {
		p.hovered = nil
	}
	if p.tap != nil && p.tap.node.UID == uid {
		p.tap = nil
	}
	if p.drag != nil && p.drag.node.UID == uid {
		p.drag = nil
		p.setCapture(false)
	}
}

// AddEventListener registers a handler for an event type on an object.
func (p *Pipeline) AddEventListener(uid uint64, typ string, fn dispatch.Handler) dispatch.Handle {
	return p.registry.Add(uid, typ, fn)
}

// RemoveEventListener unregisters a previously added handler.
func (p *Pipeline) RemoveEventListener(uid uint64, typ string, h dispatch.Handle) {
	p.registry.Remove(uid, typ, h)
}

// RemoveAllEventListeners drops every handler registered for an object.
func (p *Pipeline) RemoveAllEventListeners(uid uint64) {
	p.registry.RemoveAll(uid)
}

// Teardown releases everything the pipeline holds: external hooks are
// disengaged, gesture state, listeners, nodes and the spatial index are
// cleared. Safe to call more than once.
func (p *Pipeline) Teardown() {
	if p.torn {
		return
	}
	p.torn = true
	if p.drag != nil {
		p.setCapture(false)
	}
	if p.menuOff {
		p.setContextMenu(true)
	}
	p.hovered = nil
	p.drag = nil
	p.tap = nil
	p.registry.Clear()
	p.index.Clear()
	clear(p.nodes)
}

func (p *Pipeline) setCapture(active bool) {
	if p.CaptureRelease != nil {
		p.CaptureRelease(active)
	}
}

func (p *Pipeline) setContextMenu(enabled bool) {
	p.menuOff = !enabled
	if p.SetContextMenuEnabled != nil {
		p.SetContextMenuEnabled(enabled)
	}
}

// rayFor derives the world ray for an event: a directly supplied ray wins,
// otherwise the host's RaySource converts the normalized point. Events with
// neither resolve nothing.
func (p *Pipeline) rayFor(ev *input.NativeEvent) (rl.Ray, bool) {
	if ev.Ray != nil {
		return *ev.Ray, true
	}
	x, y, ok := ev.Point()
	if !ok || p.RaySource == nil {
		return rl.Ray{}, false
	}
	return p.RaySource(x, y)
}

// eligible decides whether a node may be a pointer target for any of the
// given event types: an explicit opt-in always qualifies, an explicit opt-out
// never does, and otherwise a listener on the node or an ancestor qualifies.
func (p *Pipeline) eligible(n *scene.Node, types []string) bool {
	switch n.Pointer {
	case scene.PointerAlways:
		return true
	case scene.PointerNever:
		return false
	}
	for a := n; a != nil; a = a.Parent {
		if p.registry.Has(a.UID, types...) {
			return true
		}
	}
	return false
}

// resolveTarget picks the nearest eligible hit for the event.
func (p *Pipeline) resolveTarget(ev *input.NativeEvent, types []string) (*scene.Node, *picker.Hit) {
	ray, ok := p.rayFor(ev)
	if !ok {
		return nil, nil
	}
	hits := p.picker.PickRay(ray)
	for i := range hits {
		if p.eligible(hits[i].Node, types) {
			return hits[i].Node, &hits[i]
		}
	}
	return nil, nil
}

// fire builds a synthetic event and dispatches it with bubbling.
func (p *Pipeline) fire(native *input.NativeEvent, typ string, target, related *scene.Node, hit *picker.Hit) {
	ev := dispatch.NewEvent(native, typ, target)
	ev.RelatedTarget = related
	if hit != nil {
		ev.Extra = hit
	}
	dispatch.Dispatch(p.registry, target, ev)
}
