package vm

import "unsafe"

// Object is a heap object: a GC header, a pointer to the shared Shape that
// describes its property layout, and a private value array whose slot
// meanings the shape dictates. len(props) >= shape.propSize always holds;
// slots past shape.propCount read as Undefined (the zero Value).
type Object struct {
	GCHeader
	shape       *Shape
	props       []Value
	nextInShape *Object // sibling link in shape.firstObject
	opaque      any     // host data, released by the class finalizer
}

// Shape returns the object's current layout descriptor.
func (p *Object) Shape() *Shape { return p.shape }

// SetOpaque attaches host data to the object. The registered class finalizer
// sees it when the object dies.
func (p *Object) SetOpaque(v any) { p.opaque = v }

// GetOpaque returns previously attached host data.
func (p *Object) GetOpaque() any { return p.opaque }

// newObjectValue allocates an object using an owned shape reference. On
// failure the shape reference is released and Undefined is returned.
func (rt *Runtime) newObjectValue(sh *Shape, classID ClassID) Value {
	size := sizeOfObject + valueArrayBytes(sh.propSize)
	if !rt.malloc(size) {
		rt.freeShape(sh)
		return Undefined
	}
	p := &Object{shape: sh}
	if sh.propSize > 0 {
		p.props = make([]Value, sh.propSize)
	}
	rt.initHeader(&p.GCHeader, TypeObject)
	p.classID = classID
	sh.linkObject(p)
	return Value{typ: TypeObject, obj: unsafe.Pointer(p)}
}

// resizeObjectProps grows an object's private value array to at least
// newSize slots. New slots are zero Values, i.e. Undefined, never garbage
// that could be misread as a pointer. Shrinking never happens.
func (rt *Runtime) resizeObjectProps(p *Object, newSize int) bool {
	if len(p.props) >= newSize {
		return true
	}
	if !rt.mrealloc(valueArrayBytes(len(p.props)), valueArrayBytes(newSize)) {
		return false
	}
	np := make([]Value, newSize)
	copy(np, p.props)
	p.props = np
	return true
}

// freeObject finalizes an object: run the class finalizer, release every
// ref-counted slot, leave the shape's sharer list, and drop the shape
// reference (the last sharer takes the shape down with it).
func (rt *Runtime) freeObject(p *Object) {
	if def := rt.classDef(p.classID); def != nil && def.Finalizer != nil {
		def.Finalizer(rt, p.opaque)
	}
	p.opaque = nil
	for i := 0; i < p.shape.propCount; i++ {
		rt.FreeValue(p.props[i])
	}
	p.shape.unlinkObject(p)
	rt.unlinkHeader(&p.GCHeader)
	rt.mfree(sizeOfObject + valueArrayBytes(len(p.props)))
	sh := p.shape
	p.shape = nil
	p.props = nil
	rt.freeShape(sh)
}
