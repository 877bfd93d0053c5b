package vm

import "testing"

func TestComputeMemoryUsage(t *testing.T) {
	rt, ctx := newTestRealm(t)

	o := ctx.NewObject()
	defer rt.FreeValue(o)
	ctx.SetPropertyStr(o, "x", IntegerValue(1))
	ctx.SetPropertyStr(o, "y", IntegerValue(2))
	s := ctx.NewStringValue("tracked")
	defer rt.FreeValue(s)

	u := rt.ComputeMemoryUsage()
	if u.Schema != memoryUsageSchemaVersion {
		t.Errorf("schema = %d", u.Schema)
	}
	// Realm setup owns objects too; the snapshot counts at least ours plus
	// the global and the three prototypes.
	if u.ObjCount < 5 {
		t.Errorf("ObjCount = %d, want >= 5", u.ObjCount)
	}
	// Our string plus the empty-string sentinel.
	if u.StrCount < 2 {
		t.Errorf("StrCount = %d, want >= 2", u.StrCount)
	}
	if u.ShapeCount < 1 || u.PropCount < 2 {
		t.Errorf("shapes/props = %d/%d, want >= 1/2", u.ShapeCount, u.PropCount)
	}
	if u.AtomCount != int64(rt.AtomCount()) {
		t.Errorf("AtomCount = %d, want %d", u.AtomCount, rt.AtomCount())
	}
	if u.ContextCount != 1 {
		t.Errorf("ContextCount = %d, want 1", u.ContextCount)
	}
	stats := rt.AllocStats()
	if u.MallocSize != stats.Bytes || u.MallocCount != stats.Count {
		t.Errorf("accounting mismatch: %d/%d vs %d/%d",
			u.MallocSize, u.MallocCount, stats.Bytes, stats.Count)
	}
}

func TestMemoryUsageEncodeDecode(t *testing.T) {
	rt, _ := newTestRealm(t)

	u := rt.ComputeMemoryUsage()
	b, err := u.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeMemoryUsage(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != u {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", got, u)
	}
}

func TestDecodeMemoryUsageRejectsSchema(t *testing.T) {
	u := MemoryUsage{Schema: memoryUsageSchemaVersion + 1}
	b, err := u.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeMemoryUsage(b); err == nil {
		t.Error("unknown schema should be rejected")
	}
}
