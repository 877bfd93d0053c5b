package vm

import "unsafe"

// GCHeader prefixes every heap allocation. It must be the first field of each
// heap payload struct so a Value's object pointer can be read as a header
// pointer. Field order is fixed for external readers.
type GCHeader struct {
	refCount int32
	typ      ValueType
	onZero   bool // already queued on the zero-ref list
	classID  ClassID
	prev     *GCHeader
	next     *GCHeader
}

// gcList is an intrusive doubly-linked list of heap headers.
type gcList struct {
	head *GCHeader
}

func (l *gcList) push(h *GCHeader) {
	h.prev = nil
	h.next = l.head
	if l.head != nil {
		l.head.prev = h
	}
	l.head = h
}

func (l *gcList) remove(h *GCHeader) {
	if h.prev != nil {
		h.prev.next = h.next
	} else if l.head == h {
		l.head = h.next
	}
	if h.next != nil {
		h.next.prev = h.prev
	}
	h.prev = nil
	h.next = nil
}

func (l *gcList) pop() *GCHeader {
	h := l.head
	if h != nil {
		l.remove(h)
	}
	return h
}

func (l *gcList) empty() bool { return l.head == nil }

func (l *gcList) count() int {
	n := 0
	for h := l.head; h != nil; h = h.next {
		n++
	}
	return n
}

// valueForHeader rebuilds the tagged value for a live header.
func valueForHeader(h *GCHeader) Value {
	return Value{typ: h.typ, obj: unsafe.Pointer(h)}
}

// initHeader stamps a fresh heap allocation and links it into the runtime's
// live-object list with a reference count of 1.
func (rt *Runtime) initHeader(h *GCHeader, typ ValueType) {
	h.refCount = 1
	h.typ = typ
	rt.gcObjList.push(h)
}

// DupValue takes an additional reference on a heap value. It is a safe no-op
// on immediates. The value is returned so call sites can dup in-line.
func (rt *Runtime) DupValue(v Value) Value {
	if v.HasRefCount() {
		v.header().refCount++
	}
	return v
}

// FreeValue releases one reference. Immediates are ignored. Crossing zero is
// a one-time event: the value is finalized immediately, or queued on the
// zero-ref list when a finalizer is already running so that deep object
// chains are released iteratively instead of by recursion.
func (rt *Runtime) FreeValue(v Value) {
	if !v.HasRefCount() {
		return
	}
	h := v.header()
	h.refCount--
	if h.refCount > 0 {
		return
	}
	if rt.inFinalizer {
		if !h.onZero {
			h.onZero = true
			rt.gcObjList.remove(h)
			rt.gcZeroRefList.push(h)
		}
		return
	}
	rt.inFinalizer = true
	rt.finalizeValue(v)
	rt.drainZeroRefList()
	rt.inFinalizer = false
}

// drainZeroRefList finalizes everything queued while a finalizer was running.
func (rt *Runtime) drainZeroRefList() {
	for !rt.gcZeroRefList.empty() {
		h := rt.gcZeroRefList.pop()
		h.onZero = false
		// Put it back on the live list so the finalizer's unlink is uniform.
		rt.gcObjList.push(h)
		rt.finalizeValue(valueForHeader(h))
	}
}

// finalizeValue dispatches by tag to exactly one type-specific finalizer.
// There is no error return: this path must be unconditionally safe to call
// exactly once per zero crossing.
func (rt *Runtime) finalizeValue(v Value) {
	h := v.header()
	rt.clearWeakRefs(h)
	if rt.finalizeHook != nil {
		rt.finalizeHook(v.typ)
	}
	switch v.typ {
	case TypeString:
		rt.freeString((*StringObject)(v.obj))
	case TypeSymbol:
		rt.freeSymbol((*SymbolObject)(v.obj))
	case TypeBigInt:
		rt.freeBigInt((*BigIntObject)(v.obj))
	case TypeObject:
		rt.freeObject((*Object)(v.obj))
	case TypeFunctionBytecode:
		rt.freeFunctionBytecode((*FunctionBytecode)(v.obj))
	case TypeModule:
		rt.freeModule((*ModuleObject)(v.obj))
	case TypeRegExp:
		rt.freeRegExp((*RegExpObject)(v.obj))
	default:
		rt.freeGeneric(h)
	}
}

// freeGeneric is the fallback for heap tags without a dedicated finalizer:
// unlink and drop the raw allocation accounting.
func (rt *Runtime) freeGeneric(h *GCHeader) {
	rt.unlinkHeader(h)
	rt.mfree(sizeOfObject)
}

// SetFinalizeHook installs an instrumentation callback invoked once per
// finalization with the finalized value's tag. Used by tests and leak
// tooling; pass nil to remove.
func (rt *Runtime) SetFinalizeHook(hook func(ValueType)) {
	rt.finalizeHook = hook
}
