package vm

import (
	"math"
	"unsafe"

	"go.uber.org/zap"
)

// Runtime owns everything with engine-wide lifetime: the allocator and its
// accounting, the atom table, the class table, the GC bookkeeping lists, the
// structural shape table, weak references, and the contexts created from it.
// A Runtime and all values allocated from it belong to one logical thread;
// nothing in here locks.
type Runtime struct {
	allocFuncs AllocFuncs
	allocState AllocState

	atoms   atomTable
	classes []ClassDef

	gcObjList     gcList // every live heap header, shapes included
	gcZeroRefList gcList // zero crossings deferred while a finalizer runs
	tmpObjList    gcList // teardown staging
	inFinalizer   bool

	shapeTable map[uint64][]*Shape
	weakRefs   []*WeakRef
	contexts   []*Context

	emptyString  Value
	stringCount  int64
	finalizeHook func(ValueType)
	logger       *zap.Logger
	closed       bool
}

// Option configures a Runtime at construction.
type Option func(*Runtime)

// WithMemoryLimit caps accounted heap bytes.
func WithMemoryLimit(limit int64) Option {
	return func(rt *Runtime) { rt.allocState.Limit = limit }
}

// WithMaxAtoms caps the atom table; Intern returns AtomInvalid beyond it.
func WithMaxAtoms(n int) Option {
	return func(rt *Runtime) { rt.atoms.maxSize = n }
}

// WithAllocFuncs substitutes the host's allocation table.
func WithAllocFuncs(funcs AllocFuncs) Option {
	return func(rt *Runtime) { rt.allocFuncs = funcs }
}

// WithLogger routes runtime diagnostics to the given logger.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) { rt.logger = l }
}

// NewRuntime allocates and wires a runtime: allocator table, empty GC lists,
// atom table, shape table, and the shared empty-string sentinel. Callers
// must eventually call Close.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		allocFuncs: DefaultAllocFuncs(),
		shapeTable: make(map[uint64][]*Shape),
		logger:     Logger(),
	}
	rt.atoms.init()
	for _, opt := range opts {
		opt(rt)
	}
	rt.emptyString = rt.newEmptyString()
	return rt
}

func (rt *Runtime) newEmptyString() Value {
	// The sentinel ignores the memory limit; it must always exist.
	rt.allocState.Bytes += sizeOfString
	rt.allocState.Count++
	p := &StringObject{}
	rt.initHeader(&p.GCHeader, TypeString)
	rt.stringCount++
	return Value{typ: TypeString, obj: unsafe.Pointer(p)}
}

// unlinkHeader detaches a header from whichever runtime list holds it.
func (rt *Runtime) unlinkHeader(h *GCHeader) {
	if rt.gcObjList.head == h {
		rt.gcObjList.head = h.next
	}
	if rt.gcZeroRefList.head == h {
		rt.gcZeroRefList.head = h.next
	}
	if rt.tmpObjList.head == h {
		rt.tmpObjList.head = h.next
	}
	if h.prev != nil {
		h.prev.next = h.next
	}
	if h.next != nil {
		h.next.prev = h.prev
	}
	h.prev = nil
	h.next = nil
}

// LiveObjectCount reports how many heap allocations (shapes included) are on
// the live list.
func (rt *Runtime) LiveObjectCount() int {
	return rt.gcObjList.count()
}

// Close tears the runtime down. Remaining contexts are released first, then
// every heap object still alive is force-finalized so values the host leaked
// are freed rather than silently dropped. The leak count is reported through
// the runtime logger.
func (rt *Runtime) Close() {
	if rt.closed {
		return
	}
	rt.closed = true
	for len(rt.contexts) > 0 {
		rt.contexts[0].Close()
	}
	rt.FreeValue(rt.emptyString)
	rt.emptyString = Undefined

	leaked := rt.gcObjList.count()
	if leaked > 0 {
		rt.logger.Warn("runtime closed with live heap values",
			zap.Int("count", leaked),
			zap.Int64("bytes", rt.allocState.Bytes))
	}
	// Stage shapes aside: leaked objects still reference them and the
	// object pass must run first.
	for h := rt.gcObjList.head; h != nil; {
		next := h.next
		if h.typ == typeShapeInternal {
			rt.unlinkHeader(h)
			rt.tmpObjList.push(h)
		}
		h = next
	}
	// Leaked values can reference each other, including in cycles. Pin
	// every remaining count so finalizing one allocation cannot cascade
	// into another; each header is then finalized exactly once, in list
	// order, and the nested FreeValue calls inside the finalizers become
	// plain decrements.
	for h := rt.gcObjList.head; h != nil; h = h.next {
		h.refCount = math.MaxInt32
	}
	for h := rt.tmpObjList.head; h != nil; h = h.next {
		h.refCount = math.MaxInt32
	}
	for rt.gcObjList.head != nil {
		rt.finalizeValue(valueForHeader(rt.gcObjList.head))
	}
	for rt.tmpObjList.head != nil {
		rt.finalizeShape((*Shape)(unsafe.Pointer(rt.tmpObjList.head)))
	}
	rt.atoms.release(rt)
	rt.weakRefs = nil
}

// WeakRef observes a heap value without keeping it alive. It is cleared
// when the target finalizes.
type WeakRef struct {
	target *GCHeader
	val    Value
	alive  bool
}

// NewWeakRef registers a weak reference to v. Returns nil for immediates.
func (rt *Runtime) NewWeakRef(v Value) *WeakRef {
	if !v.HasRefCount() {
		return nil
	}
	w := &WeakRef{target: v.header(), val: v, alive: true}
	rt.weakRefs = append(rt.weakRefs, w)
	return w
}

// Deref returns a fresh reference to the target if it is still alive.
func (w *WeakRef) Deref(rt *Runtime) (Value, bool) {
	if w == nil || !w.alive {
		return Undefined, false
	}
	return rt.DupValue(w.val), true
}

// clearWeakRefs marks dead every weak reference aimed at h and compacts the
// list.
func (rt *Runtime) clearWeakRefs(h *GCHeader) {
	if len(rt.weakRefs) == 0 {
		return
	}
	kept := rt.weakRefs[:0]
	for _, w := range rt.weakRefs {
		if w.target == h {
			w.alive = false
			w.val = Undefined
			continue
		}
		kept = append(kept, w)
	}
	rt.weakRefs = kept
}
