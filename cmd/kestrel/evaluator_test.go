package main

import (
	"testing"

	"kestrel/pkg/vm"
)

func TestLiteralEvaluator(t *testing.T) {
	rt := vm.NewRuntime()
	defer rt.Close()
	ctx := rt.NewContext()
	if ctx == nil {
		t.Fatal("NewContext failed")
	}
	defer ctx.Close()
	ctx.SetEvaluator(literalEvaluator{})

	src := []byte(`
// comment lines and blanks are skipped

answer = 42
name = "kestrel"
pi = 3.14
flag = true
"last value wins"
`)
	result, err := ctx.Eval(src, "test.kst", vm.EvalGlobal)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if result.AsString() != "last value wins" {
		t.Errorf("result = %s", result.Inspect())
	}
	rt.FreeValue(result)

	global := ctx.GlobalObject()
	if v := ctx.GetPropertyStr(global, "answer"); v.AsInteger() != 42 {
		t.Errorf("answer = %s", v.Inspect())
	} else {
		rt.FreeValue(v)
	}
	if v := ctx.GetPropertyStr(global, "name"); v.AsString() != "kestrel" {
		t.Errorf("name = %s", v.Inspect())
	} else {
		rt.FreeValue(v)
	}
	if v := ctx.GetPropertyStr(global, "flag"); !v.Is(vm.True) {
		t.Errorf("flag = %s", v.Inspect())
	}
}

func TestLiteralEvaluatorErrors(t *testing.T) {
	rt := vm.NewRuntime()
	defer rt.Close()
	ctx := rt.NewContext()
	defer ctx.Close()
	ctx.SetEvaluator(literalEvaluator{})

	if _, err := ctx.Eval([]byte("x = @nope"), "bad.kst", vm.EvalGlobal); err == nil {
		t.Error("unrecognized literal should be an error")
	}
}
