// Package spatial maintains an octree of bounding spheres with lazily applied,
// batched mutations. Structural changes queue up during a frame and flush
// exactly once before the next ray query.
package spatial

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	// rootHalfExtent is the half-size of the root cell. Spheres outside it
	// stay on the root entry list and are still visited by every query.
	rootHalfExtent = 1024

	splitThreshold = 8
	maxDepth       = 8
)

// SphereSource resolves the current bounding sphere for an id. It is consulted
// when pending changes flush, so a queued insert for an object that has lost
// its sphere (or been destroyed) downgrades to a removal.
type SphereSource func(id uint64) (Sphere, bool)

type entry struct {
	id     uint64
	sphere Sphere
	owner  *cell
}

type cell struct {
	min, max rl.Vector3
	depth    int
	entries  []*entry
	children *[8]*cell
}

// Index is an incremental bounding-sphere octree. It is not safe for
// concurrent use; callers run it on a single logical thread per surface.
type Index struct {
	source  SphereSource
	root    *cell
	entries map[uint64]*entry

	pendingPut    map[uint64]struct{}
	pendingRemove map[uint64]struct{}
}

// NewIndex creates an empty index backed by the given sphere source.
func NewIndex(source SphereSource) *Index {
	return &Index{
		source: source,
		root: &cell{
			min: rl.Vector3{X: -rootHalfExtent, Y: -rootHalfExtent, Z: -rootHalfExtent},
			max: rl.Vector3{X: rootHalfExtent, Y: rootHalfExtent, Z: rootHalfExtent},
		},
		entries:       make(map[uint64]*entry),
		pendingPut:    make(map[uint64]struct{}),
		pendingRemove: make(map[uint64]struct{}),
	}
}

// Upsert queues an insert-or-update for id. The sphere itself is resolved from
// the source when the batch flushes.
func (x *Index) Upsert(id uint64) {
	x.pendingPut[id] = struct{}{}
}

// Remove queues a removal for id. Idempotent; removal wins over an Upsert
// queued in the same batch.
func (x *Index) Remove(id uint64) {
	x.pendingRemove[id] = struct{}{}
}

// Len returns the number of applied entries. Pending changes are not counted
// until the next flush.
func (x *Index) Len() int {
	return len(x.entries)
}

// Clear drops all entries and pending changes.
func (x *Index) Clear() {
	x.root = &cell{
		min: rl.Vector3{X: -rootHalfExtent, Y: -rootHalfExtent, Z: -rootHalfExtent},
		max: rl.Vector3{X: rootHalfExtent, Y: rootHalfExtent, Z: rootHalfExtent},
	}
	x.entries = make(map[uint64]*entry)
	x.pendingPut = make(map[uint64]struct{})
	x.pendingRemove = make(map[uint64]struct{})
}

// QueryRay flushes pending changes, then invokes visit once for every entry
// whose sphere intersects the ray, in an order biased near-to-far. Returning
// false from visit stops the traversal.
func (x *Index) QueryRay(ray rl.Ray, visit func(Sphere, uint64) bool) {
	x.flush()
	x.walk(x.root, ray, visit)
}

// Flush applies pending changes immediately. Queries flush on their own; this
// exists for callers that want deterministic timing (tests, stress tools).
func (x *Index) Flush() {
	x.flush()
}

func (x *Index) flush() {
	if len(x.pendingPut) == 0 && len(x.pendingRemove) == 0 {
		return
	}
	for id := range x.pendingRemove {
		x.removeNow(id)
	}
	for id := range x.pendingPut {
		if _, gone := x.pendingRemove[id]; gone {
			continue
		}
		sphere, ok := x.source(id)
		x.removeNow(id)
		if !ok {
			continue
		}
		x.insertNow(id, sphere)
	}
	clear(x.pendingPut)
	clear(x.pendingRemove)
}

func (x *Index) removeNow(id uint64) {
	e, ok := x.entries[id]
	if !ok {
		return
	}
	delete(x.entries, id)
	owner := e.owner
	for i, other := range owner.entries {
		if other == e {
			owner.entries = append(owner.entries[:i], owner.entries[i+1:]...)
			break
		}
	}
}

func (x *Index) insertNow(id uint64, sphere Sphere) {
	e := &entry{id: id, sphere: sphere}
	x.entries[id] = e
	x.place(x.root, e)
}

// place descends to the deepest cell that fully contains the entry's sphere,
// splitting crowded leaves along the way, and appends the entry there. Every
// entry lives in exactly one cell, so queries never visit it twice.
func (x *Index) place(c *cell, e *entry) {
	for {
		if c.children == nil {
			if len(c.entries) < splitThreshold || c.depth >= maxDepth {
				break
			}
			c.split()
		}
		child := c.childContaining(e.sphere)
		if child == nil {
			break
		}
		c = child
	}
	c.entries = append(c.entries, e)
	e.owner = c
}

func (c *cell) split() {
	mid := rl.Vector3{
		X: (c.min.X + c.max.X) / 2,
		Y: (c.min.Y + c.max.Y) / 2,
		Z: (c.min.Z + c.max.Z) / 2,
	}
	var children [8]*cell
	for i := 0; i < 8; i++ {
		min, max := c.min, mid
		if i&1 != 0 {
			min.X, max.X = mid.X, c.max.X
		}
		if i&2 != 0 {
			min.Y, max.Y = mid.Y, c.max.Y
		}
		if i&4 != 0 {
			min.Z, max.Z = mid.Z, c.max.Z
		}
		children[i] = &cell{min: min, max: max, depth: c.depth + 1}
	}
	c.children = &children

	// Push down entries that fit entirely inside a child. Entries straddling
	// the midpoint stay here.
	kept := c.entries[:0]
	for _, e := range c.entries {
		if child := c.childContaining(e.sphere); child != nil {
			child.entries = append(child.entries, e)
			e.owner = child
		} else {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

func (c *cell) childContaining(s Sphere) *cell {
	if c.children == nil {
		return nil
	}
	for _, child := range c.children {
		if child.containsSphere(s) {
			return child
		}
	}
	return nil
}

func (c *cell) containsSphere(s Sphere) bool {
	return s.Center.X-s.Radius >= c.min.X && s.Center.X+s.Radius <= c.max.X &&
		s.Center.Y-s.Radius >= c.min.Y && s.Center.Y+s.Radius <= c.max.Y &&
		s.Center.Z-s.Radius >= c.min.Z && s.Center.Z+s.Radius <= c.max.Z
}

// walk visits a cell's own entries, then recurses into intersected children
// ordered by ray entry distance. Returns false once visit asks to stop.
func (x *Index) walk(c *cell, ray rl.Ray, visit func(Sphere, uint64) bool) bool {
	for _, e := range c.entries {
		if rayHitsSphere(ray, e.sphere) {
			if !visit(e.sphere, e.id) {
				return false
			}
		}
	}
	if c.children == nil {
		return true
	}

	type hitChild struct {
		cell   *cell
		tEnter float32
	}
	var hits [8]hitChild
	n := 0
	for _, child := range c.children {
		if len(child.entries) == 0 && child.children == nil {
			continue
		}
		if t, ok := rayHitsBox(ray, child.min, child.max); ok {
			hits[n] = hitChild{cell: child, tEnter: t}
			n++
		}
	}
	sort.Slice(hits[:n], func(i, j int) bool { return hits[i].tEnter < hits[j].tEnter })
	for i := 0; i < n; i++ {
		if !x.walk(hits[i].cell, ray, visit) {
			return false
		}
	}
	return true
}
