package vm

import "testing"

// Realm setup and host objects must converge on the same registered layouts:
// an object that walks the same (proto, atom, flags) sequence ends up on the
// realm's distinguished shape, and the structural table holds that layout
// exactly once.
func TestRealmShapesDedupWithHostLayouts(t *testing.T) {
	rt, ctx := newTestRealm(t)

	re := ctx.NewObjectProto(ctx.ObjectPrototype())
	defer rt.FreeValue(re)
	if ctx.DefinePropertyValue(re, rt.Intern("lastIndex"), IntegerValue(0), PropWritable) != 0 {
		t.Fatal("define lastIndex failed")
	}
	if re.AsObject().Shape() != ctx.regexpShape {
		t.Error("host-built lastIndex layout should be the realm regexp shape")
	}
	if got := len(rt.shapeTable[ctx.regexpShape.hash]); got != 1 {
		t.Errorf("regexp layout registered %d times, want 1", got)
	}

	args := ctx.NewObjectProto(ctx.ObjectPrototype())
	defer rt.FreeValue(args)
	for _, name := range []string{"length", "callee"} {
		if ctx.DefinePropertyValue(args, rt.Intern(name), IntegerValue(0), PropWritable|PropConfigurable) != 0 {
			t.Fatalf("define %s failed", name)
		}
	}
	if args.AsObject().Shape() != ctx.argumentsShape {
		t.Error("host-built length+callee layout should be the realm arguments shape")
	}
	if got := len(rt.shapeTable[ctx.argumentsShape.hash]); got != 1 {
		t.Errorf("arguments layout registered %d times, want 1", got)
	}
}

// A host object walking only a prefix of a realm chain gets its own
// registered layout, and extending it further converges back on the realm
// shape through the table.
func TestRealmShapeChainPrefixConverges(t *testing.T) {
	rt, ctx := newTestRealm(t)

	o := ctx.NewObjectProto(ctx.ObjectPrototype())
	defer rt.FreeValue(o)
	if ctx.DefinePropertyValue(o, rt.Intern("length"), IntegerValue(0), PropWritable|PropConfigurable) != 0 {
		t.Fatal("define length failed")
	}
	sh := o.AsObject().Shape()
	if !sh.inTable {
		t.Error("prefix layout should be registered")
	}
	if got := len(rt.shapeTable[sh.hash]); got != 1 {
		t.Errorf("prefix layout registered %d times, want 1", got)
	}
	if ctx.DefinePropertyValue(o, rt.Intern("callee"), IntegerValue(0), PropWritable|PropConfigurable) != 0 {
		t.Fatal("define callee failed")
	}
	if o.AsObject().Shape() != ctx.argumentsShape {
		t.Error("chain extension should land on the realm arguments shape")
	}
}
