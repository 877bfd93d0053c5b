package vm

import (
	"testing"

	"github.com/dlclark/regexp2"
)

func TestNewRegExp(t *testing.T) {
	rt, ctx := newTestRealm(t)

	v, err := ctx.NewRegExp(`\d+`, "i")
	if err != nil {
		t.Fatalf("NewRegExp: %v", err)
	}
	defer rt.FreeValue(v)
	re := v.AsRegExp()
	if re.Pattern() != `\d+` || re.Flags() != "i" {
		t.Errorf("pattern/flags = %q/%q", re.Pattern(), re.Flags())
	}
	m, err := re.Compiled().MatchString("abc123")
	if err != nil || !m {
		t.Errorf("compiled pattern should match digits: %v %v", m, err)
	}
	if v.Inspect() != `/\d+/i` {
		t.Errorf("Inspect = %s", v.Inspect())
	}
}

func TestRegexpOptionsMapping(t *testing.T) {
	opts := regexpOptions("imsu")
	for name, flag := range map[string]regexp2.RegexOptions{
		"ECMAScript": regexp2.ECMAScript,
		"IgnoreCase": regexp2.IgnoreCase,
		"Multiline":  regexp2.Multiline,
		"Singleline": regexp2.Singleline,
		"Unicode":    regexp2.Unicode,
	} {
		if opts&flag == 0 {
			t.Errorf("flags imsu should set %s", name)
		}
	}
	if bare := regexpOptions(""); bare != regexp2.ECMAScript {
		t.Errorf("no flags should map to ECMAScript only, got %v", bare)
	}
}

func TestNewRegExpBadPattern(t *testing.T) {
	_, ctx := newTestRealm(t)

	v, err := ctx.NewRegExp("(unclosed", "")
	if err == nil {
		t.Fatal("bad pattern should return an error")
	}
	if !v.IsUndefined() {
		t.Error("bad pattern should return Undefined")
	}
}

func TestNewRegExpAllocFailure(t *testing.T) {
	rt, ctx := newTestRealm(t)

	rt.SetMemoryLimit(rt.AllocStats().Bytes)
	v, err := ctx.NewRegExp("ok", "")
	rt.SetMemoryLimit(0)
	if err != nil {
		t.Fatalf("allocation failure must not surface as a compile error: %v", err)
	}
	if !v.IsUndefined() {
		t.Error("allocation failure should return Undefined")
	}
}

func TestRegExpFinalize(t *testing.T) {
	rt, ctx := newTestRealm(t)

	v, err := ctx.NewRegExp("x", "g")
	if err != nil {
		t.Fatal(err)
	}
	counter := installCounter(rt)
	rt.FreeValue(v)
	if counter[TypeRegExp] != 1 {
		t.Errorf("regexp finalized %d times, want 1", counter[TypeRegExp])
	}
}
