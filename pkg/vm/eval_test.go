package vm

import (
	"errors"
	"testing"
)

func TestEvalWithoutEvaluator(t *testing.T) {
	_, ctx := newTestRealm(t)

	_, err := ctx.Eval([]byte("1"), "inline", EvalGlobal)
	if !errors.Is(err, ErrNoEvaluator) {
		t.Errorf("err = %v, want ErrNoEvaluator", err)
	}
}

func TestEvalDelegates(t *testing.T) {
	rt, ctx := newTestRealm(t)

	var gotSrc, gotName string
	var gotFlags int
	ctx.SetEvaluator(EvaluatorFunc(func(c *Context, src []byte, filename string, flags int) (Value, error) {
		if c != ctx {
			t.Error("evaluator received a different context")
		}
		gotSrc, gotName, gotFlags = string(src), filename, flags
		return c.NewStringValue("result"), nil
	}))

	v, err := ctx.Eval([]byte("source text"), "main.js", EvalModule|EvalStrict)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	defer rt.FreeValue(v)
	if gotSrc != "source text" || gotName != "main.js" || gotFlags != EvalModule|EvalStrict {
		t.Errorf("evaluator saw %q %q %d", gotSrc, gotName, gotFlags)
	}
	if v.AsString() != "result" {
		t.Errorf("result = %q", v.AsString())
	}
}
