package vm

// Property operations return 0 on success and -1 on failure (allocation
// failure or a non-object receiver). The evaluator layer turns the latter
// into a script-level TypeError; this core only reports.

// GetProperty resolves an own property by atom. On a hit the stored value is
// duplicated, so the caller owns a fresh reference. On a miss, or on a
// non-object receiver, Undefined is returned. Prototype chain walking is the
// evaluator's job, not this layer's.
func (ctx *Context) GetProperty(objVal Value, atom Atom) Value {
	if !objVal.IsObject() {
		return Undefined
	}
	p := objVal.AsObject()
	idx, _, found := p.shape.FindOwnProperty(atom)
	if !found {
		return Undefined
	}
	return ctx.rt.DupValue(p.props[idx])
}

// HasProperty reports whether the object has an own property for atom.
func (ctx *Context) HasProperty(objVal Value, atom Atom) bool {
	if !objVal.IsObject() {
		return false
	}
	_, _, found := objVal.AsObject().shape.FindOwnProperty(atom)
	return found
}

// SetProperty writes a property with plain-assignment flags, creating the
// slot if needed.
func (ctx *Context) SetProperty(objVal Value, atom Atom, val Value) int {
	return ctx.DefinePropertyValue(objVal, atom, val, PropDefault)
}

// DefinePropertyValue creates or overwrites an own property slot and stores
// the value: the previous ref-counted occupant is released, the incoming
// value duplicated. Returns -1 on a non-object receiver or allocation
// failure, with no partial slot published.
func (ctx *Context) DefinePropertyValue(objVal Value, atom Atom, val Value, flags PropFlags) int {
	if !objVal.IsObject() {
		return -1
	}
	if atom == AtomInvalid {
		return -1
	}
	rt := ctx.rt
	p := objVal.AsObject()
	idx, _, found := p.shape.FindOwnProperty(atom)
	if !found {
		var ok bool
		idx, ok = rt.addObjectProperty(p, atom, flags)
		if !ok {
			return -1
		}
	}
	old := p.props[idx]
	p.props[idx] = rt.DupValue(val)
	rt.FreeValue(old)
	return 0
}

// GetPropertyStr is GetProperty with interning of the name.
func (ctx *Context) GetPropertyStr(objVal Value, name string) Value {
	return ctx.GetProperty(objVal, ctx.rt.Intern(name))
}

// SetPropertyStr is SetProperty with interning of the name.
func (ctx *Context) SetPropertyStr(objVal Value, name string, val Value) int {
	atom := ctx.rt.Intern(name)
	if atom == AtomInvalid {
		return -1
	}
	return ctx.SetProperty(objVal, atom, val)
}

// addObjectProperty gives the object a slot for a new atom, preferring
// layout sharing: an unshared shape grows in place; a shared shape first
// looks for an already-built successor in the runtime's structural table and
// otherwise is cloned for this object before growing. Either way the
// object's value array has room for the returned index on success.
func (rt *Runtime) addObjectProperty(p *Object, atom Atom, flags PropFlags) (int, bool) {
	sh := p.shape
	if !sh.inTable && sh.refCount == 1 {
		idx, _, ok := rt.AddShapeProperty(sh, atom, flags)
		return idx, ok
	}
	if succ := rt.findHashedShapeProp(sh, atom, flags); succ != nil {
		if !rt.resizeObjectProps(p, succ.propSize) {
			return 0, false
		}
		sh.unlinkObject(p)
		p.shape = rt.dupShape(succ)
		succ.linkObject(p)
		rt.freeShape(sh)
		idx, _, _ := succ.FindOwnProperty(atom)
		return idx, true
	}
	ns, ok := rt.cloneShape(sh)
	if !ok {
		return 0, false
	}
	sh.unlinkObject(p)
	p.shape = ns
	ns.linkObject(p)
	rt.freeShape(sh)
	idx, _, ok := rt.AddShapeProperty(ns, atom, flags)
	if !ok {
		return 0, false
	}
	// Publish the extended layout so the next object built the same way
	// shares it instead of cloning again.
	rt.registerShape(ns)
	return idx, true
}
