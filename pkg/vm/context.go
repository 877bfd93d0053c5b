package vm

// Context is an isolated realm inside a Runtime: it owns the realm's
// distinguished initial shapes, the built-in prototype objects, and the
// global object. A Context never outlives its Runtime.
type Context struct {
	rt *Runtime

	// Distinguished per-realm initial shapes. Objects of a kind start from
	// these so same-kind objects share layout from birth.
	objectShape    *Shape // empty shape, proto = null
	arrayShape     *Shape // "length"
	argumentsShape *Shape // "length", "callee"
	regexpShape    *Shape // "lastIndex"

	objectProto   Value
	functionProto Value
	arrayProto    Value

	global    Value
	evaluator Evaluator
	closed    bool
}

// NewContext creates a realm, links it into the runtime's context list, and
// builds the realm's prototype objects and distinguished shapes. Returns nil
// when the allocation limit makes realm setup impossible.
func (rt *Runtime) NewContext() *Context {
	ctx := &Context{rt: rt}
	rt.contexts = append(rt.contexts, ctx)

	ctx.objectProto = ctx.NewObject()
	if ctx.objectProto.IsUndefined() {
		ctx.Close()
		return nil
	}
	ctx.functionProto = ctx.NewObjectProto(ctx.objectProto)
	ctx.arrayProto = ctx.NewObjectProto(ctx.objectProto)
	ctx.global = ctx.NewObjectProto(ctx.objectProto)
	if ctx.functionProto.IsUndefined() || ctx.arrayProto.IsUndefined() || ctx.global.IsUndefined() {
		ctx.Close()
		return nil
	}

	if !ctx.initShapes() {
		ctx.Close()
		return nil
	}
	return ctx
}

// initShapes builds the realm's distinguished shapes by extending initial
// shapes through the regular shape machinery, so they participate in the
// structural table like any other layout.
func (ctx *Context) initShapes() bool {
	rt := ctx.rt

	sh, ok := rt.findInitialShape(Null)
	if !ok {
		return false
	}
	ctx.objectShape = sh

	atomLength := rt.Intern("length")
	atomCallee := rt.Intern("callee")
	atomLastIndex := rt.Intern("lastIndex")
	if atomLength == AtomInvalid || atomCallee == AtomInvalid || atomLastIndex == AtomInvalid {
		return false
	}

	// build extends the initial shape for proto one atom at a time through
	// the structural table, reusing any layout already registered there so
	// realm setup never duplicates a shape another realm or a host object
	// built first.
	build := func(proto Value, atoms []Atom, flags PropFlags) (*Shape, bool) {
		cur, ok := rt.findInitialShape(proto)
		if !ok {
			return nil, false
		}
		for _, a := range atoms {
			if succ := rt.findHashedShapeProp(cur, a, flags); succ != nil {
				next := rt.dupShape(succ)
				rt.freeShape(cur)
				cur = next
				continue
			}
			ns, ok := rt.cloneShape(cur)
			rt.freeShape(cur)
			if !ok {
				return nil, false
			}
			if _, _, ok := rt.AddShapeProperty(ns, a, flags); !ok {
				rt.freeShape(ns)
				return nil, false
			}
			rt.registerShape(ns)
			cur = ns
		}
		return cur, true
	}

	var ok2 bool
	ctx.arrayShape, ok2 = build(ctx.arrayProto, []Atom{atomLength}, PropWritable)
	if !ok2 {
		return false
	}
	ctx.argumentsShape, ok2 = build(ctx.objectProto, []Atom{atomLength, atomCallee}, PropWritable|PropConfigurable)
	if !ok2 {
		return false
	}
	ctx.regexpShape, ok2 = build(ctx.objectProto, []Atom{atomLastIndex}, PropWritable)
	return ok2
}

// Runtime returns the owning runtime.
func (ctx *Context) Runtime() *Runtime { return ctx.rt }

// GlobalObject returns the realm's global object (borrowed reference).
func (ctx *Context) GlobalObject() Value { return ctx.global }

// ObjectPrototype returns the realm's Object prototype (borrowed reference).
func (ctx *Context) ObjectPrototype() Value { return ctx.objectProto }

// NewObject allocates an object with the realm's fresh empty layout and a
// null prototype. Returns Undefined on allocation failure.
func (ctx *Context) NewObject() Value {
	return ctx.NewObjectProto(Null)
}

// NewObjectProto allocates an object whose shape starts from the shared
// empty layout for the given prototype.
func (ctx *Context) NewObjectProto(proto Value) Value {
	return ctx.NewObjectClassProto(ClassNone, proto)
}

// NewObjectClass allocates a null-prototype object carrying a registered
// class ID so its finalizer can release host data.
func (ctx *Context) NewObjectClass(id ClassID) Value {
	return ctx.NewObjectClassProto(id, Null)
}

// NewObjectClassProto is the general object constructor.
func (ctx *Context) NewObjectClassProto(id ClassID, proto Value) Value {
	sh, ok := ctx.rt.findInitialShape(proto)
	if !ok {
		return Undefined
	}
	return ctx.rt.newObjectValue(sh, id)
}

// NewArray allocates an object on the realm's array shape with its length
// slot set to 0.
func (ctx *Context) NewArray() Value {
	rt := ctx.rt
	v := rt.newObjectValue(rt.dupShape(ctx.arrayShape), ClassNone)
	if v.IsUndefined() {
		return Undefined
	}
	v.AsObject().props[0] = IntegerValue(0)
	return v
}

// Close releases the realm: its distinguished shapes, prototypes, and global
// object, and unlinks it from the runtime. Values the host created through
// the context stay alive until their own references drop.
func (ctx *Context) Close() {
	if ctx.closed {
		return
	}
	ctx.closed = true
	rt := ctx.rt
	for _, sh := range []*Shape{ctx.objectShape, ctx.arrayShape, ctx.argumentsShape, ctx.regexpShape} {
		if sh != nil {
			rt.freeShape(sh)
		}
	}
	ctx.objectShape, ctx.arrayShape, ctx.argumentsShape, ctx.regexpShape = nil, nil, nil, nil
	for _, v := range []Value{ctx.global, ctx.arrayProto, ctx.functionProto, ctx.objectProto} {
		rt.FreeValue(v)
	}
	ctx.global, ctx.arrayProto, ctx.functionProto, ctx.objectProto = Undefined, Undefined, Undefined, Undefined
	for i, c := range rt.contexts {
		if c == ctx {
			rt.contexts = append(rt.contexts[:i], rt.contexts[i+1:]...)
			break
		}
	}
}
