package vm

import "errors"

// Eval flags. EvalGlobal scripts run against the realm's global object;
// EvalModule sources evaluate as modules.
const (
	EvalGlobal = 0
	EvalModule = 1 << 0
	EvalStrict = 1 << 1
)

// ErrNoEvaluator is returned by Context.Eval when no evaluator is installed.
var ErrNoEvaluator = errors.New("vm: no evaluator installed")

// Evaluator is the boundary to the tokenizer/parser/interpreter stack, which
// lives outside this core. It receives the realm to allocate result values
// in and returns an owned reference the caller must eventually free.
type Evaluator interface {
	Eval(ctx *Context, src []byte, filename string, flags int) (Value, error)
}

// SetEvaluator installs the realm's evaluator.
func (ctx *Context) SetEvaluator(e Evaluator) {
	ctx.evaluator = e
}

// Eval hands the source to the installed evaluator. This core only supplies
// the value and object plumbing the evaluator writes results into.
func (ctx *Context) Eval(src []byte, filename string, flags int) (Value, error) {
	if ctx.evaluator == nil {
		return Undefined, ErrNoEvaluator
	}
	return ctx.evaluator.Eval(ctx, src, filename, flags)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx *Context, src []byte, filename string, flags int) (Value, error)

func (f EvaluatorFunc) Eval(ctx *Context, src []byte, filename string, flags int) (Value, error) {
	return f(ctx, src, filename, flags)
}
