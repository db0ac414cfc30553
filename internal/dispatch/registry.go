package dispatch

// Handler consumes one synthetic event.
type Handler func(*Event)

// Handle identifies a registered listener for removal. Go functions are not
// comparable, so removal goes through the handle instead of the function.
type Handle struct {
	id uint32
}

// Valid reports whether the handle refers to a registration.
func (h Handle) Valid() bool {
	return h.id != 0
}

type listenerEntry struct {
	id uint32
	fn Handler
}

// Registry maps event type -> object UID -> ordered handler list. A per-type
// counter keeps "does anything listen for type X" checks O(1) so the pipeline
// can skip hit testing nobody would observe.
type Registry struct {
	listeners map[string]map[uint64][]listenerEntry
	typeCount map[string]int
	nextID    uint32
}

func NewRegistry() *Registry {
	return &Registry{
		listeners: make(map[string]map[uint64][]listenerEntry),
		typeCount: make(map[string]int),
	}
}

// Add registers fn for the event type on the object and returns a removal
// handle. Multiple handlers per object and type keep registration order.
func (r *Registry) Add(uid uint64, typ string, fn Handler) Handle {
	if fn == nil {
		return Handle{}
	}
	byUID := r.listeners[typ]
	if byUID == nil {
		byUID = make(map[uint64][]listenerEntry)
		r.listeners[typ] = byUID
	}
	r.nextID++
	byUID[uid] = append(byUID[uid], listenerEntry{id: r.nextID, fn: fn})
	r.typeCount[typ]++
	return Handle{id: r.nextID}
}

// Remove unregisters the listener identified by the handle. Unknown handles
// and stale object ids are no-ops.
func (r *Registry) Remove(uid uint64, typ string, h Handle) {
	if !h.Valid() {
		return
	}
	byUID := r.listeners[typ]
	entries := byUID[uid]
	for i := range entries {
		if entries[i].id == h.id {
			byUID[uid] = append(entries[:i], entries[i+1:]...)
			if len(byUID[uid]) == 0 {
				delete(byUID, uid)
			}
			r.typeCount[typ]--
			return
		}
	}
}

// RemoveAll drops every listener registered for the object across all types.
func (r *Registry) RemoveAll(uid uint64) {
	for typ, byUID := range r.listeners {
		if n := len(byUID[uid]); n > 0 {
			r.typeCount[typ] -= n
			delete(byUID, uid)
		}
	}
}

// HasAnyOfType reports whether any object listens for the type.
func (r *Registry) HasAnyOfType(typ string) bool {
	return r.typeCount[typ] > 0
}

// HasAnyOfTypes reports whether any object listens for at least one of types.
func (r *Registry) HasAnyOfTypes(types ...string) bool {
	for _, typ := range types {
		if r.typeCount[typ] > 0 {
			return true
		}
	}
	return false
}

// Has reports whether the object itself listens for at least one of types.
func (r *Registry) Has(uid uint64, types ...string) bool {
	for _, typ := range types {
		if len(r.listeners[typ][uid]) > 0 {
			return true
		}
	}
	return false
}

// ForEach invokes visit for every handler of typ on the object, in
// registration order, until visit returns false.
func (r *Registry) ForEach(uid uint64, typ string, visit func(Handler) bool) {
	for _, e := range r.listeners[typ][uid] {
		if !visit(e.fn) {
			return
		}
	}
}

// handlersFor returns a snapshot of the object's handlers for a type, safe to
// iterate while handlers mutate the registry.
func (r *Registry) handlersFor(uid uint64, typ string) []Handler {
	entries := r.listeners[typ][uid]
	if len(entries) == 0 {
		return nil
	}
	fns := make([]Handler, len(entries))
	for i, e := range entries {
		fns[i] = e.fn
	}
	return fns
}

// Clear drops every registration.
func (r *Registry) Clear() {
	r.listeners = make(map[string]map[uint64][]listenerEntry)
	r.typeCount = make(map[string]int)
}
