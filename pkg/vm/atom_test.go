package vm

import (
	"fmt"
	"testing"
)

func TestAtomInternIdempotent(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	a := rt.Intern("name")
	if a == AtomInvalid {
		t.Fatal("Intern returned AtomInvalid")
	}
	if b := rt.Intern("name"); b != a {
		t.Errorf("re-interning returned %d, want %d", b, a)
	}
	if b := rt.InternBytes([]byte("name")); b != a {
		t.Errorf("InternBytes of same content returned %d, want %d", b, a)
	}
	if rt.Intern("Name") == a {
		t.Errorf("distinct content must not collide on the same atom")
	}
	if got := rt.AtomString(a); got != "name" {
		t.Errorf("AtomString = %q, want %q", got, "name")
	}
	if rt.AtomString(AtomInvalid) != "" {
		t.Errorf("AtomString(AtomInvalid) should be empty")
	}
}

func TestAtomIDsStableAcrossGrowth(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	// Far past the initial bucket count, forcing several growth steps.
	const n = 500
	ids := make([]Atom, n)
	for i := range ids {
		ids[i] = rt.Intern(fmt.Sprintf("prop%d", i))
		if ids[i] == AtomInvalid {
			t.Fatalf("Intern failed at %d", i)
		}
	}
	for i := range ids {
		name := fmt.Sprintf("prop%d", i)
		if got := rt.Intern(name); got != ids[i] {
			t.Fatalf("atom %q moved from %d to %d after growth", name, ids[i], got)
		}
		if got := rt.AtomString(ids[i]); got != name {
			t.Fatalf("AtomString(%d) = %q, want %q", ids[i], got, name)
		}
	}
	if rt.AtomCount() != n {
		t.Errorf("AtomCount = %d, want %d", rt.AtomCount(), n)
	}
}

func TestAtomMaxSize(t *testing.T) {
	rt := NewRuntime(WithMaxAtoms(3))
	defer rt.Close()

	for _, s := range []string{"a", "b", "c"} {
		if rt.Intern(s) == AtomInvalid {
			t.Fatalf("Intern(%q) failed under the cap", s)
		}
	}
	if rt.Intern("d") != AtomInvalid {
		t.Errorf("Intern past the cap should return AtomInvalid")
	}
	// Existing atoms still resolve at the cap.
	if rt.Intern("b") == AtomInvalid {
		t.Errorf("re-interning existing content must not count against the cap")
	}
}

func TestAtomAllocFailure(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()
	rt.SetMemoryLimit(rt.AllocStats().Bytes)

	if rt.Intern("blocked") != AtomInvalid {
		t.Errorf("Intern should fail when the entry cannot be accounted")
	}
	if rt.AtomCount() != 0 {
		t.Errorf("failed intern must not leave a partial entry, count = %d", rt.AtomCount())
	}
}
