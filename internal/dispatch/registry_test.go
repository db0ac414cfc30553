package dispatch

import "testing"

func TestAddAndForEachKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	var order []int
	r.Add(1, Click, func(*Event) { order = append(order, 1) })
	r.Add(1, Click, func(*Event) { order = append(order, 2) })
	r.Add(1, Click, func(*Event) { order = append(order, 3) })

	r.ForEach(1, Click, func(fn Handler) bool {
		fn(nil)
		return true
	})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestRemoveByHandle(t *testing.T) {
	r := NewRegistry()
	called := false
	h := r.Add(1, Click, func(*Event) { called = true })
	r.Add(1, Click, func(*Event) {})

	r.Remove(1, Click, h)

	count := 0
	r.ForEach(1, Click, func(fn Handler) bool {
		count++
		fn(nil)
		return true
	})
	if count != 1 {
		t.Errorf("count = %d, want 1 after removal", count)
	}
	if called {
		t.Error("removed handler was invoked")
	}

	// Removing again is a no-op.
	r.Remove(1, Click, h)
	// So is removing for an unknown object.
	r.Remove(99, Click, h)
}

func TestTypeCountGating(t *testing.T) {
	r := NewRegistry()
	if r.HasAnyOfType(MouseOver) {
		t.Error("empty registry should have no mouseover listeners")
	}

	h1 := r.Add(1, MouseOver, func(*Event) {})
	h2 := r.Add(2, MouseOver, func(*Event) {})
	if !r.HasAnyOfType(MouseOver) {
		t.Error("HasAnyOfType(mouseover) = false, want true")
	}
	if !r.HasAnyOfTypes(Click, MouseOver) {
		t.Error("HasAnyOfTypes should find mouseover")
	}

	r.Remove(1, MouseOver, h1)
	if !r.HasAnyOfType(MouseOver) {
		t.Error("one listener remains, gate should stay open")
	}
	r.Remove(2, MouseOver, h2)
	if r.HasAnyOfType(MouseOver) {
		t.Error("all listeners removed, gate should close")
	}
}

func TestRemoveAllUpdatesCounts(t *testing.T) {
	r := NewRegistry()
	r.Add(1, Click, func(*Event) {})
	r.Add(1, Click, func(*Event) {})
	r.Add(1, MouseOver, func(*Event) {})
	r.Add(2, Click, func(*Event) {})

	r.RemoveAll(1)

	if r.Has(1, Click) || r.Has(1, MouseOver) {
		t.Error("object 1 should have no listeners after RemoveAll")
	}
	if !r.HasAnyOfType(Click) {
		t.Error("object 2's click listener should survive")
	}
	if r.HasAnyOfType(MouseOver) {
		t.Error("mouseover gate should close after RemoveAll")
	}
}

func TestHasChecksSingleObject(t *testing.T) {
	r := NewRegistry()
	r.Add(1, Click, func(*Event) {})

	if !r.Has(1, Click) {
		t.Error("Has(1, click) = false, want true")
	}
	if r.Has(2, Click) {
		t.Error("Has(2, click) = true, want false")
	}
	if !r.Has(1, DblClick, Click) {
		t.Error("Has should match any of the given types")
	}
}

func TestAddNilHandlerIsNoOp(t *testing.T) {
	r := NewRegistry()
	h := r.Add(1, Click, nil)
	if h.Valid() {
		t.Error("nil handler should return an invalid handle")
	}
	if r.HasAnyOfType(Click) {
		t.Error("nil handler should not open the gate")
	}
}
