package vm

import "testing"

func TestGetSetRoundtrip(t *testing.T) {
	rt, ctx := newTestRealm(t)

	o := ctx.NewObject()
	defer rt.FreeValue(o)
	atom := rt.Intern("answer")

	if got := ctx.GetProperty(o, atom); !got.IsUndefined() {
		t.Errorf("miss should return Undefined, got %s", got.Type())
	}
	if ctx.HasProperty(o, atom) {
		t.Error("HasProperty true before any set")
	}
	if ctx.SetProperty(o, atom, IntegerValue(42)) != 0 {
		t.Fatal("set failed")
	}
	if !ctx.HasProperty(o, atom) {
		t.Error("HasProperty false after set")
	}
	got := ctx.GetProperty(o, atom)
	if got.Type() != TypeInteger || got.AsInteger() != 42 {
		t.Errorf("got %s %d, want integer 42", got.Type(), got.AsInteger())
	}
}

func TestGetPropertyDupsHeapValues(t *testing.T) {
	rt, ctx := newTestRealm(t)

	o := ctx.NewObject()
	defer rt.FreeValue(o)
	s := ctx.NewStringValue("shared")
	ctx.SetPropertyStr(o, "s", s)
	rt.FreeValue(s) // slot keeps it alive

	got := ctx.GetPropertyStr(o, "s")
	if got.RefCount() != 2 {
		t.Errorf("refCount after get = %d, want 2 (slot + caller)", got.RefCount())
	}
	rt.FreeValue(got)
	if again := ctx.GetPropertyStr(o, "s"); again.AsString() != "shared" {
		t.Errorf("slot content corrupted after get/free cycle")
	} else {
		rt.FreeValue(again)
	}
}

func TestPropertyOpsOnNonObjects(t *testing.T) {
	rt, ctx := newTestRealm(t)

	atom := rt.Intern("x")
	for _, v := range []Value{Undefined, Null, IntegerValue(3), True} {
		if ctx.SetProperty(v, atom, IntegerValue(1)) != -1 {
			t.Errorf("set on %s should return -1", v.Type())
		}
		if got := ctx.GetProperty(v, atom); !got.IsUndefined() {
			t.Errorf("get on %s should return Undefined", v.Type())
		}
		if ctx.HasProperty(v, atom) {
			t.Errorf("has on %s should be false", v.Type())
		}
	}
	s := ctx.NewStringValue("not an object")
	defer rt.FreeValue(s)
	if ctx.SetProperty(s, atom, IntegerValue(1)) != -1 {
		t.Error("set on a string should return -1")
	}
}

func TestDefineInvalidAtom(t *testing.T) {
	rt, ctx := newTestRealm(t)

	o := ctx.NewObject()
	defer rt.FreeValue(o)
	if ctx.DefinePropertyValue(o, AtomInvalid, IntegerValue(1), PropDefault) != -1 {
		t.Error("define with AtomInvalid should return -1")
	}
}

func TestSetPropertyAllocFailure(t *testing.T) {
	rt, ctx := newTestRealm(t)

	o := ctx.NewObject()
	defer rt.FreeValue(o)
	atom := rt.Intern("blocked")
	count := o.AsObject().Shape().PropCount()

	rt.SetMemoryLimit(rt.AllocStats().Bytes)
	if ctx.SetProperty(o, atom, IntegerValue(1)) != -1 {
		t.Fatal("set should fail at the memory limit")
	}
	rt.SetMemoryLimit(0)
	if o.AsObject().Shape().PropCount() != count {
		t.Error("failed set grew the object's layout")
	}
	if ctx.HasProperty(o, atom) {
		t.Error("failed set left the property visible")
	}
	// Existing slots still work after the failure.
	if ctx.SetProperty(o, atom, IntegerValue(1)) != 0 {
		t.Error("set should succeed once the limit is lifted")
	}
}

func TestSetPropertyStrInterns(t *testing.T) {
	rt, ctx := newTestRealm(t)

	o := ctx.NewObject()
	defer rt.FreeValue(o)
	if ctx.SetPropertyStr(o, "named", NumberValue(2.5)) != 0 {
		t.Fatal("SetPropertyStr failed")
	}
	atom := rt.Intern("named")
	got := ctx.GetProperty(o, atom)
	if got.AsFloat() != 2.5 {
		t.Errorf("string and atom paths disagree, got %v", got.AsFloat())
	}
}

func TestDefineFlagsVisibleInShape(t *testing.T) {
	rt, ctx := newTestRealm(t)

	o := ctx.NewObject()
	defer rt.FreeValue(o)
	atom := rt.Intern("ro")
	if ctx.DefinePropertyValue(o, atom, IntegerValue(1), PropEnumerable) != 0 {
		t.Fatal("define failed")
	}
	_, flags, found := o.AsObject().Shape().FindOwnProperty(atom)
	if !found || flags != PropEnumerable {
		t.Errorf("flags = %b, want %b", flags, PropEnumerable)
	}
}

func TestArrayLengthSlot(t *testing.T) {
	rt, ctx := newTestRealm(t)

	arr := ctx.NewArray()
	defer rt.FreeValue(arr)
	got := ctx.GetPropertyStr(arr, "length")
	if got.Type() != TypeInteger || got.AsInteger() != 0 {
		t.Errorf("fresh array length = %s %d, want integer 0", got.Type(), got.AsInteger())
	}
	// Two arrays share the realm's array shape.
	arr2 := ctx.NewArray()
	defer rt.FreeValue(arr2)
	if arr.AsObject().Shape() != arr2.AsObject().Shape() {
		t.Error("arrays should share the realm array shape")
	}
}
