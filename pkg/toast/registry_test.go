package toast

import (
	"testing"
)

func TestRegistryRegisterLookup(t *testing.T) {
	reg := NewRegistry()
	e := New[string](WithLogger(quietLogger()), WithScopeIn(reg, "global"))
	defer e.Destroy()

	got, ok := reg.Lookup("global")
	if !ok {
		t.Fatal("scope not found after construction")
	}
	if got != Scope(e) {
		t.Error("Lookup returned a different scope")
	}

	if _, ok := reg.Lookup("modal"); ok {
		t.Error("Lookup found an unregistered scope")
	}
}

func TestRegistryUnregisterOnDestroy(t *testing.T) {
	reg := NewRegistry()
	e := New[string](WithLogger(quietLogger()), WithScopeIn(reg, "global"))

	e.Destroy()

	if _, ok := reg.Lookup("global"); ok {
		t.Error("destroyed engine still registered")
	}
}

func TestRegistryReplaceKeepsNewcomer(t *testing.T) {
	// Destroying a replaced engine must not evict its replacement.
	reg := NewRegistry()
	old := New[string](WithLogger(quietLogger()), WithScopeIn(reg, "global"))
	fresh := New[string](WithLogger(quietLogger()), WithScopeIn(reg, "global"))
	defer fresh.Destroy()

	old.Destroy()

	got, ok := reg.Lookup("global")
	if !ok {
		t.Fatal("replacement evicted by stale Destroy")
	}
	if got != Scope(fresh) {
		t.Error("Lookup returned the destroyed engine")
	}
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry()
	a := New[string](WithLogger(quietLogger()), WithScopeIn(reg, "modal"))
	defer a.Destroy()
	b := New[int](WithLogger(quietLogger()), WithScopeIn(reg, "global"))
	defer b.Destroy()

	names := reg.Names()
	if len(names) != 2 || names[0] != "global" || names[1] != "modal" {
		t.Errorf("Names = %v, want [global modal]", names)
	}
}

func TestRegistryControlSurface(t *testing.T) {
	// Engines of different payload types drive through the same
	// type-erased Scope.
	reg := NewRegistry()
	e := New[int](WithLogger(quietLogger()), WithScopeIn(reg, "counts"))
	defer e.Destroy()

	e.Add(Input[int]{ID: "n", Payload: 7, Position: PositionTopLeft, Role: RoleStatus})

	s, ok := reg.Lookup("counts")
	if !ok {
		t.Fatal("scope not found")
	}
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}

	s.DismissAll()
	if s.Count() != 0 {
		t.Errorf("Count = %d after DismissAll, want 0", s.Count())
	}
}

func TestDefaultRegistry(t *testing.T) {
	e := New[string](WithLogger(quietLogger()), WithScope("test-default-scope"))

	if _, ok := Default().Lookup("test-default-scope"); !ok {
		t.Error("WithScope did not register in the default registry")
	}

	e.Destroy()
	if _, ok := Default().Lookup("test-default-scope"); ok {
		t.Error("Destroy left the scope in the default registry")
	}
}
