package vm

import "unsafe"

// FunctionBytecode is the heap representation of a compiled function: code
// bytes plus a constant pool of values the code references. The pool entries
// are owned by the bytecode object and released recursively when it dies.
type FunctionBytecode struct {
	GCHeader
	name       string
	code       []byte
	cpool      []Value
	argCount   int
	localCount int
}

// Name returns the function's diagnostic name.
func (fb *FunctionBytecode) Name() string { return fb.name }

// Code returns the raw code bytes.
func (fb *FunctionBytecode) Code() []byte { return fb.code }

// ConstantPool returns the pool; entries stay owned by the bytecode object.
func (fb *FunctionBytecode) ConstantPool() []Value { return fb.cpool }

// NewFunctionBytecode allocates a bytecode object. Ownership of the cpool
// values transfers to the object: the caller must not free them afterwards.
// On allocation failure the transferred values are released and Undefined
// returned, so the call never leaks or half-publishes.
func (ctx *Context) NewFunctionBytecode(name string, code []byte, cpool []Value, argCount, localCount int) Value {
	rt := ctx.rt
	size := sizeOfFunction + int64(len(code)) + valueArrayBytes(len(cpool)) + int64(len(name))
	if !rt.malloc(size) {
		for _, v := range cpool {
			rt.FreeValue(v)
		}
		return Undefined
	}
	fb := &FunctionBytecode{
		name:       name,
		code:       code,
		cpool:      cpool,
		argCount:   argCount,
		localCount: localCount,
	}
	rt.initHeader(&fb.GCHeader, TypeFunctionBytecode)
	return Value{typ: TypeFunctionBytecode, obj: unsafe.Pointer(fb)}
}

// freeFunctionBytecode recursively releases every ref-counted constant pool
// entry before dropping the allocation itself.
func (rt *Runtime) freeFunctionBytecode(fb *FunctionBytecode) {
	for _, v := range fb.cpool {
		rt.FreeValue(v)
	}
	rt.unlinkHeader(&fb.GCHeader)
	rt.mfree(sizeOfFunction + int64(len(fb.code)) + valueArrayBytes(len(fb.cpool)) + int64(len(fb.name)))
	fb.cpool = nil
	fb.code = nil
}

// ModuleObject is the heap representation of a loaded module: a name atom
// and an export table of (atom, value) pairs.
type ModuleObject struct {
	GCHeader
	name        string
	exportNames []Atom
	exports     []Value
}

// Name returns the module specifier.
func (m *ModuleObject) Name() string { return m.name }

// NewModule allocates an empty module object.
func (ctx *Context) NewModule(name string) Value {
	rt := ctx.rt
	if !rt.malloc(sizeOfModule + int64(len(name))) {
		return Undefined
	}
	m := &ModuleObject{name: name}
	rt.initHeader(&m.GCHeader, TypeModule)
	return Value{typ: TypeModule, obj: unsafe.Pointer(m)}
}

// AddModuleExport appends an export entry, duplicating the value. Returns -1
// on allocation failure or a non-module receiver.
func (ctx *Context) AddModuleExport(mod Value, name Atom, v Value) int {
	if mod.Type() != TypeModule {
		return -1
	}
	rt := ctx.rt
	if !rt.malloc(sizeOfValue + 4) {
		return -1
	}
	m := mod.AsModule()
	m.exportNames = append(m.exportNames, name)
	m.exports = append(m.exports, rt.DupValue(v))
	return 0
}

// GetModuleExport returns a fresh reference to the named export, or
// Undefined when absent.
func (ctx *Context) GetModuleExport(mod Value, name Atom) Value {
	if mod.Type() != TypeModule {
		return Undefined
	}
	m := mod.AsModule()
	for i, n := range m.exportNames {
		if n == name {
			return ctx.rt.DupValue(m.exports[i])
		}
	}
	return Undefined
}

func (rt *Runtime) freeModule(m *ModuleObject) {
	for _, v := range m.exports {
		rt.FreeValue(v)
		rt.mfree(sizeOfValue + 4) // entry charged per AddModuleExport
	}
	rt.unlinkHeader(&m.GCHeader)
	rt.mfree(sizeOfModule + int64(len(m.name)))
	m.exports = nil
	m.exportNames = nil
}
