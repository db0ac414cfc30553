package pointer

import (
	"math"

	"pick3d/internal/dispatch"
	"pick3d/internal/input"
	"pick3d/internal/picker"
	"pick3d/internal/scene"
)

// Event type groups used for eligibility and gating.
var (
	hoverTypes = []string{
		dispatch.MouseOver, dispatch.MouseOut, dispatch.MouseMove,
		dispatch.DragEnter, dispatch.DragLeave, dispatch.DragOver,
	}
	pressTypes = []string{
		dispatch.MouseDown, dispatch.Click, dispatch.DblClick, dispatch.DragStart,
	}
	releaseTypes = []string{
		dispatch.MouseUp, dispatch.Click, dispatch.DblClick, dispatch.Drop,
	}
	wheelTypes = []string{dispatch.Wheel}
	clickTypes = []string{dispatch.Click, dispatch.DblClick}
	dropTypes  = []string{dispatch.Drop}
	dragTypes  = []string{dispatch.DragStart}
)

// HandleMotion consumes a pointer-moved event: drag progression, tap slop
// cancellation, then hover transitions. Multi-touch motion is ignored.
func (p *Pipeline) HandleMotion(ev *input.NativeEvent) {
	if ev == nil || p.torn {
		return
	}
	if ev.Source == input.SourceTouch && len(ev.Touches) > 1 {
		return
	}

	if p.drag != nil {
		if !p.drag.started {
			// Lazy dragstart: fires once, on the first real motion after
			// the triggering press.
			p.drag.started = true
			dispatch.Dispatch(p.registry, p.drag.node, p.drag.startEvent)
		}
		p.fire(ev, dispatch.Drag, p.drag.node, nil, nil)
	}

	if p.tap != nil && !p.tap.canceled && ev.Source == input.SourceTouch {
		if x, y, ok := ev.Point(); ok {
			dx := float64(x - p.tap.x)
			dy := float64(y - p.tap.y)
			if math.Hypot(dx, dy) > float64(p.opts.TouchSlop) {
				p.tap.canceled = true
			}
		}
	}

	// Hover is recomputed only when someone could observe the result; while
	// dragging the target is needed regardless for dragover.
	if p.drag == nil && !p.registry.HasAnyOfTypes(hoverTypes...) {
		return
	}
	var (
		target *scene.Node
		hit    *picker.Hit
	)
	// A lifted touch hovers nothing: the touch-end motion pass resolves no
	// target, which is what fires the trailing mouseout.
	if ev.Source != input.SourceTouch || len(ev.Touches) == 1 {
		target, hit = p.resolveTarget(ev, hoverTypes)
	}
	p.updateHover(ev, target, hit)
}

// updateHover fires the out/leave chain on the previous target completely
// before the over/enter chain on the new one, then move/over on the current.
func (p *Pipeline) updateHover(ev *input.NativeEvent, target *scene.Node, hit *picker.Hit) {
	if target != p.hovered {
		prev := p.hovered
		if prev != nil {
			p.fire(ev, dispatch.MouseOut, prev, target, nil)
			if p.drag != nil {
				p.fire(ev, dispatch.DragLeave, prev, target, nil)
			}
		}
		p.hovered = target
		if target != nil {
			p.fire(ev, dispatch.MouseOver, target, prev, hit)
			if p.drag != nil {
				p.fire(ev, dispatch.DragEnter, target, prev, hit)
			}
		}
	}
	if p.hovered != nil {
		p.fire(ev, dispatch.MouseMove, p.hovered, nil, hit)
		if p.drag != nil {
			p.fire(ev, dispatch.DragOver, p.hovered, nil, hit)
		}
	}
}

// HandleAction consumes a press/release/wheel event. Touch sessions get the
// extra motion passes and context-menu toggling described below; every action
// that resolves a target prevents the native default.
func (p *Pipeline) HandleAction(ev *input.NativeEvent) {
	if ev == nil || p.torn {
		return
	}

	isTouch := ev.Source == input.SourceTouch
	touchStart := isTouch && ev.Kind == input.KindPress && len(ev.Touches) == 1
	touchEnd := isTouch && ev.Kind == input.KindRelease && len(ev.ChangedTouches) == 1

	if touchStart {
		// A touch appears with no prior motion: run the motion pass first so
		// hover state exists, and park the context menu for the session.
		p.HandleMotion(ev)
		p.setContextMenu(false)
	}

	target, hit := p.resolveTarget(ev, relevantTypes(ev))
	if target != nil {
		// Deliberate, unconditional side effect: any action that lands on a
		// target suppresses the native default gesture.
		ev.PreventDefault()
		p.fire(ev, canonicalType(ev), target, nil, hit)

		switch ev.Kind {
		case input.KindPress:
			if touchStart {
				p.beginTap(ev, target)
			}
			if ev.Button == 0 && p.drag == nil && p.dragCapable(target) {
				startEv := dispatch.NewEvent(ev, dispatch.DragStart, target)
				if hit != nil {
					startEv.Extra = hit
				}
				p.drag = &dragInfo{node: target, startEvent: startEv}
				p.setCapture(true)
			}
		case input.KindRelease:
			if touchEnd && len(ev.Touches) == 0 {
				p.finishTap(ev, target)
			}
		}
	}

	if ev.Kind == input.KindRelease && p.drag != nil {
		p.HandleRelease(ev, true)
	}

	if touchEnd {
		p.setContextMenu(true)
		// The trailing motion pass: with the touch lifted the event carries
		// no active point, so hover resolves to nothing and the previous
		// target gets its mouseout.
		p.HandleMotion(ev)
	}
}

// HandleRelease completes a drag. onSurface releases re-resolve a drop
// target; captured releases from outside the surface do not. dragend fires on
// the dragged node unconditionally, then the drag state is cleared.
func (p *Pipeline) HandleRelease(ev *input.NativeEvent, onSurface bool) {
	if p.drag == nil || p.torn {
		return
	}
	d := p.drag
	if onSurface {
		if target, hit := p.resolveTarget(ev, dropTypes); target != nil {
			p.fire(ev, dispatch.Drop, target, nil, hit)
		}
	}
	p.fire(ev, dispatch.DragEnd, d.node, nil, nil)
	p.drag = nil
	p.setCapture(false)
}

// beginTap records a tap candidate for a qualifying single-touch press.
// Recognition is only attempted when a click listener could hear the result.
func (p *Pipeline) beginTap(ev *input.NativeEvent, target *scene.Node) {
	if !p.listensUpChain(target, clickTypes) {
		return
	}
	x, y, ok := ev.Point()
	if !ok {
		return
	}
	now := p.now()
	isDouble := p.tap != nil && now.Sub(p.tap.at) < p.opts.DoubleClickWindow
	p.tap = &tapInfo{node: target, x: x, y: y, at: now, isDouble: isDouble}
}

// finishTap promotes a qualifying release to a click (and dblclick when the
// press opened inside the double-click window). The tap record survives so
// the next press can detect a double-click sequence.
func (p *Pipeline) finishTap(ev *input.NativeEvent, target *scene.Node) {
	t := p.tap
	if t == nil || t.canceled || t.node != target {
		return
	}
	if p.now().Sub(t.at) >= p.opts.TapTimeout {
		return
	}
	p.fire(ev, dispatch.Click, target, nil, nil)
	if t.isDouble {
		p.fire(ev, dispatch.DblClick, target, nil, nil)
	}
}

// dragCapable reports whether a node (or an ancestor) declared interest in
// being dragged.
func (p *Pipeline) dragCapable(n *scene.Node) bool {
	return p.listensUpChain(n, dragTypes)
}

func (p *Pipeline) listensUpChain(n *scene.Node, types []string) bool {
	for a := n; a != nil; a = a.Parent {
		if p.registry.Has(a.UID, types...) {
			return true
		}
	}
	return false
}

// canonicalType maps native action names onto the dispatched vocabulary.
func canonicalType(ev *input.NativeEvent) string {
	switch ev.Type {
	case dispatch.TouchStart:
		return dispatch.MouseDown
	case dispatch.TouchEnd, dispatch.TouchCancel:
		return dispatch.MouseUp
	default:
		return ev.Type
	}
}

// relevantTypes returns the listener types that make a node an eligible
// target for this action.
func relevantTypes(ev *input.NativeEvent) []string {
	switch ev.Kind {
	case input.KindPress:
		return pressTypes
	case input.KindRelease:
		return releaseTypes
	case input.KindWheel:
		return wheelTypes
	default:
		return hoverTypes
	}
}
