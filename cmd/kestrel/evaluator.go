package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"kestrel/pkg/vm"
)

// literalEvaluator is the host-side stand-in for a real language front end.
// It understands one statement per line, either a bare literal or
// `name = literal`; assignments land on the realm's global object and the
// last literal is the script's value. Enough to exercise the full value and
// property plumbing from the CLI.
type literalEvaluator struct{}

func (literalEvaluator) Eval(ctx *vm.Context, src []byte, filename string, flags int) (vm.Value, error) {
	rt := ctx.Runtime()
	last := vm.Undefined
	for i, raw := range strings.Split(string(src), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		lit := line
		var target string
		if name, rest, found := strings.Cut(line, "="); found {
			target = strings.TrimSpace(name)
			lit = strings.TrimSpace(rest)
		}
		v, err := parseLiteral(ctx, lit)
		if err != nil {
			rt.FreeValue(last)
			return vm.Undefined, fmt.Errorf("%s:%d: %w", filename, i+1, err)
		}
		if target != "" {
			if ctx.SetPropertyStr(ctx.GlobalObject(), target, v) != 0 {
				rt.FreeValue(v)
				rt.FreeValue(last)
				return vm.Undefined, fmt.Errorf("%s:%d: cannot set global %q", filename, i+1, target)
			}
		}
		rt.FreeValue(last)
		last = v
	}
	return last, nil
}

func parseLiteral(ctx *vm.Context, lit string) (vm.Value, error) {
	switch lit {
	case "true":
		return vm.True, nil
	case "false":
		return vm.False, nil
	case "null":
		return vm.Null, nil
	case "undefined":
		return vm.Undefined, nil
	}
	if strings.HasPrefix(lit, "\"") {
		s, err := strconv.Unquote(lit)
		if err != nil {
			return vm.Undefined, fmt.Errorf("bad string literal %s", lit)
		}
		v := ctx.NewStringValue(s)
		if v.IsUndefined() {
			return vm.Undefined, fmt.Errorf("out of memory allocating %s", lit)
		}
		return v, nil
	}
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return vm.IntegerValue(int32(n)), nil
		}
		return vm.NumberValue(float64(n)), nil
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return vm.NumberValue(f), nil
	}
	return vm.Undefined, fmt.Errorf("unrecognized literal %q", lit)
}
