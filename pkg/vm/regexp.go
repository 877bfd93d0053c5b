package vm

import (
	"strings"
	"unsafe"

	"github.com/dlclark/regexp2"
)

// RegExpObject is a compiled regular expression heap value. The pattern is
// compiled at construction; matching behavior belongs to the host evaluator,
// this core only owns the storage and lifetime.
type RegExpObject struct {
	GCHeader
	pattern   string
	flags     string
	compiled  *regexp2.Regexp
	lastIndex int
}

// Pattern returns the source pattern (without slashes).
func (re *RegExpObject) Pattern() string { return re.pattern }

// Flags returns the flag string the value was built with.
func (re *RegExpObject) Flags() string { return re.flags }

// Compiled returns the backing regexp2 machine.
func (re *RegExpObject) Compiled() *regexp2.Regexp { return re.compiled }

func regexpOptions(flags string) regexp2.RegexOptions {
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(flags, "m") {
		opts |= regexp2.Multiline
	}
	if strings.Contains(flags, "s") {
		opts |= regexp2.Singleline
	}
	if strings.Contains(flags, "u") {
		opts |= regexp2.Unicode
	}
	return opts
}

// NewRegExp compiles pattern with the given JS-style flags and allocates the
// heap value. A bad pattern surfaces as an error; allocation failure as
// (Undefined, nil) per the -1/null convention of the value constructors.
func (ctx *Context) NewRegExp(pattern, flags string) (Value, error) {
	compiled, err := regexp2.Compile(pattern, regexpOptions(flags))
	if err != nil {
		return Undefined, err
	}
	rt := ctx.rt
	if !rt.malloc(sizeOfRegExp + int64(len(pattern)) + int64(len(flags))) {
		return Undefined, nil
	}
	re := &RegExpObject{pattern: pattern, flags: flags, compiled: compiled}
	rt.initHeader(&re.GCHeader, TypeRegExp)
	return Value{typ: TypeRegExp, obj: unsafe.Pointer(re)}, nil
}

func (rt *Runtime) freeRegExp(re *RegExpObject) {
	rt.unlinkHeader(&re.GCHeader)
	rt.mfree(sizeOfRegExp + int64(len(re.pattern)) + int64(len(re.flags)))
	re.compiled = nil
}
