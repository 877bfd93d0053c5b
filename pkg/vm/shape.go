package vm

// PropFlags are the per-property descriptor bits stored in a shape slot.
type PropFlags uint8

const (
	PropWritable PropFlags = 1 << iota
	PropEnumerable
	PropConfigurable
)

// PropDefault matches plain assignment semantics.
const PropDefault = PropWritable | PropEnumerable | PropConfigurable

const (
	shapeHashThreshold   = 4  // property count at which lookup switches to hashed
	shapeInitialHashSize = 16 // buckets allocated at the transition, power of two
)

type shapeProp struct {
	atom     Atom
	flags    PropFlags
	hashNext int32 // next slot index in the same hash bucket, -1 ends the chain
}

// Shape is a shared property-layout descriptor: an ordered list of
// (atom, flags) slots, an optional hash index over them, and the list of
// every live object currently using this layout. Objects hold counted
// references to their shape; the runtime's shape table holds uncounted ones.
//
// Invariants: propCount <= propSize; once hashed, never linear again; every
// object on the firstObject list has a value array of at least propSize.
type Shape struct {
	GCHeader
	hashed      bool
	inTable     bool
	propHash    []int32
	propCount   int
	propSize    int // capacity each sharer's value array is kept grown to
	props       []shapeProp
	firstObject *Object
	proto       Value
	hash        uint64 // structural hash of (proto, prop sequence), table key
}

// typeShapeInternal marks shape headers on the runtime's GC list. It is
// outside the heap tag range so it can never appear in a Value.
const typeShapeInternal ValueType = 0xff

func pointerWord(v Value) uintptr {
	return uintptr(v.obj)
}

func fnv64Step(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h ^= v & 0xff
		h *= 1099511628211
		v >>= 8
	}
	return h
}

func shapeInitialHash(proto Value) uint64 {
	h := uint64(14695981039346656037)
	h = fnv64Step(h, uint64(pointerWord(proto)))
	return fnv64Step(h, uint64(proto.typ))
}

func shapeHashStep(h uint64, atom Atom, flags PropFlags) uint64 {
	h = fnv64Step(h, uint64(atom))
	return fnv64Step(h, uint64(flags))
}

// newShape allocates an empty shape with the given prototype. The shape takes
// its own reference on proto.
func (rt *Runtime) newShape(proto Value) (*Shape, bool) {
	if !rt.malloc(sizeOfShape) {
		return nil, false
	}
	s := &Shape{proto: rt.DupValue(proto), hash: shapeInitialHash(proto)}
	s.refCount = 1
	s.typ = typeShapeInternal
	rt.gcObjList.push(&s.GCHeader)
	return s, true
}

// cloneShape copies layout, capacity and prototype but no sharers. The hash
// array is accounted as its own allocation, matching buildShapeHash.
func (rt *Runtime) cloneShape(s *Shape) (*Shape, bool) {
	if !rt.malloc(sizeOfShape + shapePropBytes(s.propSize)) {
		return nil, false
	}
	if s.hashed && !rt.malloc(int64(len(s.propHash))*4) {
		rt.mfree(sizeOfShape + shapePropBytes(s.propSize))
		return nil, false
	}
	ns := &Shape{
		hashed:    s.hashed,
		propCount: s.propCount,
		propSize:  s.propSize,
		proto:     rt.DupValue(s.proto),
		hash:      s.hash,
	}
	ns.refCount = 1
	ns.typ = typeShapeInternal
	ns.props = make([]shapeProp, s.propCount, max(s.propSize, s.propCount))
	copy(ns.props, s.props)
	if s.hashed {
		ns.propHash = make([]int32, len(s.propHash))
		copy(ns.propHash, s.propHash)
	}
	rt.gcObjList.push(&ns.GCHeader)
	return ns, true
}

func (rt *Runtime) dupShape(s *Shape) *Shape {
	s.refCount++
	return s
}

func (rt *Runtime) freeShape(s *Shape) {
	s.refCount--
	if s.refCount > 0 {
		return
	}
	rt.finalizeShape(s)
}

func (rt *Runtime) finalizeShape(s *Shape) {
	if s.inTable {
		rt.removeShapeFromTable(s)
	}
	rt.unlinkHeader(&s.GCHeader)
	proto := s.proto
	s.proto = Undefined
	if s.propHash != nil {
		rt.mfree(int64(len(s.propHash)) * 4)
		s.propHash = nil
	}
	rt.mfree(sizeOfShape + shapePropBytes(s.propSize))
	rt.FreeValue(proto)
}

// FindOwnProperty resolves an atom to its slot index and flags. Hashed shapes
// probe the bucket chain; small shapes scan linearly.
func (s *Shape) FindOwnProperty(atom Atom) (int, PropFlags, bool) {
	if s.hashed {
		mask := uint32(len(s.propHash) - 1)
		for i := s.propHash[uint32(atom)&mask]; i >= 0; i = s.props[i].hashNext {
			if s.props[i].atom == atom {
				return int(i), s.props[i].flags, true
			}
		}
		return 0, 0, false
	}
	for i := 0; i < s.propCount; i++ {
		if s.props[i].atom == atom {
			return i, s.props[i].flags, true
		}
	}
	return 0, 0, false
}

// PropCount returns the number of defined slots.
func (s *Shape) PropCount() int { return s.propCount }

// PropSize returns the slot capacity sharers' value arrays are grown to.
func (s *Shape) PropSize() int { return s.propSize }

// Hashed reports whether lookup has switched to the hash index.
func (s *Shape) Hashed() bool { return s.hashed }

// Proto returns the prototype this layout was built against.
func (s *Shape) Proto() Value { return s.proto }

func (s *Shape) linkObject(p *Object) {
	p.nextInShape = s.firstObject
	s.firstObject = p
}

func (s *Shape) unlinkObject(p *Object) {
	if s.firstObject == p {
		s.firstObject = p.nextInShape
		p.nextInShape = nil
		return
	}
	for q := s.firstObject; q != nil; q = q.nextInShape {
		if q.nextInShape == p {
			q.nextInShape = p.nextInShape
			p.nextInShape = nil
			return
		}
	}
}

func (rt *Runtime) buildShapeHash(s *Shape) bool {
	if !rt.malloc(int64(shapeInitialHashSize) * 4) {
		return false
	}
	s.propHash = make([]int32, shapeInitialHashSize)
	rt.rehashShape(s)
	s.hashed = true
	return true
}

func (rt *Runtime) growShapeHash(s *Shape) bool {
	newLen := len(s.propHash) * 2
	if !rt.mrealloc(int64(len(s.propHash))*4, int64(newLen)*4) {
		// Lookup stays correct on the smaller table, just with longer chains.
		return false
	}
	s.propHash = make([]int32, newLen)
	rt.rehashShape(s)
	return true
}

func (rt *Runtime) rehashShape(s *Shape) {
	for i := range s.propHash {
		s.propHash[i] = -1
	}
	mask := uint32(len(s.propHash) - 1)
	for i := 0; i < s.propCount; i++ {
		b := uint32(s.props[i].atom) & mask
		s.props[i].hashNext = s.propHash[b]
		s.propHash[b] = int32(i)
	}
}

// AddShapeProperty appends a property slot to the shape in place, keeping
// every sharing object's value array in lockstep. It returns the assigned
// slot index and the capacity that existed before the call, so callers that
// still have an unsized value array know how large it used to be.
//
// Adding an atom the shape already has is idempotent and returns the
// existing index. On allocation failure the shape publishes nothing and
// (0, prevSize, false) is returned; objects that were already grown keep
// their larger arrays, which the size invariant permits.
func (rt *Runtime) AddShapeProperty(s *Shape, atom Atom, flags PropFlags) (int, int, bool) {
	prevSize := s.propSize
	if i, _, found := s.FindOwnProperty(atom); found {
		return i, prevSize, true
	}
	wasInTable := s.inTable
	if wasInTable {
		// The structural hash is about to change; re-register afterwards.
		rt.removeShapeFromTable(s)
	}
	if s.propCount == s.propSize {
		newSize := 4
		if s.propSize != 0 {
			newSize = s.propSize * 3 / 2
		}
		if !rt.mrealloc(shapePropBytes(s.propSize), shapePropBytes(newSize)) {
			if wasInTable {
				rt.registerShape(s)
			}
			return 0, prevSize, false
		}
		np := make([]shapeProp, s.propCount, newSize)
		copy(np, s.props)
		s.props = np
		// Every sharer must have room before the slot becomes visible.
		for p := s.firstObject; p != nil; p = p.nextInShape {
			if !rt.resizeObjectProps(p, newSize) {
				rt.mrealloc(shapePropBytes(newSize), shapePropBytes(s.propSize))
				if wasInTable {
					rt.registerShape(s)
				}
				return 0, prevSize, false
			}
		}
		s.propSize = newSize
	}
	if !s.hashed && s.propCount+1 >= shapeHashThreshold {
		if !rt.buildShapeHash(s) {
			if wasInTable {
				rt.registerShape(s)
			}
			return 0, prevSize, false
		}
	}
	idx := s.propCount
	pr := shapeProp{atom: atom, flags: flags, hashNext: -1}
	if s.hashed {
		if s.propCount+1 > 2*len(s.propHash) {
			rt.growShapeHash(s)
		}
		b := uint32(atom) & uint32(len(s.propHash)-1)
		pr.hashNext = s.propHash[b]
		s.propHash[b] = int32(idx)
	}
	s.props = append(s.props, pr)
	s.propCount++
	s.hash = shapeHashStep(s.hash, atom, flags)
	if wasInTable {
		rt.registerShape(s)
	}
	return idx, prevSize, true
}

// registerShape publishes a shape in the runtime's structural table so later
// objects built through the same property sequence can share it. The table
// reference is uncounted; finalizeShape withdraws it.
func (rt *Runtime) registerShape(s *Shape) {
	rt.shapeTable[s.hash] = append(rt.shapeTable[s.hash], s)
	s.inTable = true
}

func (rt *Runtime) removeShapeFromTable(s *Shape) {
	bucket := rt.shapeTable[s.hash]
	for i, cand := range bucket {
		if cand == s {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(rt.shapeTable, s.hash)
	} else {
		rt.shapeTable[s.hash] = bucket
	}
	s.inTable = false
}

// sameLayoutPrefix reports whether cand's first n slots match s's layout.
// hashNext is bucket bookkeeping, not layout, so only atom and flags count.
func sameLayoutPrefix(cand, s *Shape, n int) bool {
	for i := 0; i < n; i++ {
		if cand.props[i].atom != s.props[i].atom || cand.props[i].flags != s.props[i].flags {
			return false
		}
	}
	return true
}

// findHashedShapeProp looks for an already-built successor of sh extended by
// (atom, flags).
func (rt *Runtime) findHashedShapeProp(sh *Shape, atom Atom, flags PropFlags) *Shape {
	target := shapeHashStep(sh.hash, atom, flags)
	for _, cand := range rt.shapeTable[target] {
		if cand.propCount != sh.propCount+1 || !cand.proto.Is(sh.proto) {
			continue
		}
		last := cand.props[sh.propCount]
		if last.atom != atom || last.flags != flags {
			continue
		}
		if sameLayoutPrefix(cand, sh, sh.propCount) {
			return cand
		}
	}
	return nil
}

// findInitialShape returns an owned reference to the shared empty shape for
// a prototype, creating and registering it on first use.
func (rt *Runtime) findInitialShape(proto Value) (*Shape, bool) {
	h := shapeInitialHash(proto)
	for _, cand := range rt.shapeTable[h] {
		if cand.propCount == 0 && cand.proto.Is(proto) {
			return rt.dupShape(cand), true
		}
	}
	s, ok := rt.newShape(proto)
	if !ok {
		return nil, false
	}
	rt.registerShape(s)
	return s, true
}
