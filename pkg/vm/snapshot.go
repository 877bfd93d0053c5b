package vm

import (
	"fmt"
	"unsafe"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the MemoryUsage wire format changes.
const memoryUsageSchemaVersion uint16 = 1

// MemoryUsage is a point-in-time snapshot of a runtime's heap accounting,
// in the shape hosts persist or ship to monitoring.
type MemoryUsage struct {
	Schema uint16 `msgpack:"schema"`

	MallocCount int64 `msgpack:"malloc_count"`
	MallocSize  int64 `msgpack:"malloc_size"`
	MallocLimit int64 `msgpack:"malloc_limit"`

	ObjCount     int64 `msgpack:"obj_count"`
	StrCount     int64 `msgpack:"str_count"`
	ShapeCount   int64 `msgpack:"shape_count"`
	AtomCount    int64 `msgpack:"atom_count"`
	PropCount    int64 `msgpack:"prop_count"`
	ContextCount int64 `msgpack:"context_count"`
}

// ComputeMemoryUsage walks the runtime's bookkeeping and fills a snapshot.
func (rt *Runtime) ComputeMemoryUsage() MemoryUsage {
	u := MemoryUsage{
		Schema:       memoryUsageSchemaVersion,
		MallocCount:  rt.allocState.Count,
		MallocSize:   rt.allocState.Bytes,
		MallocLimit:  rt.allocState.Limit,
		StrCount:     rt.stringCount,
		AtomCount:    int64(rt.atoms.count),
		ContextCount: int64(len(rt.contexts)),
	}
	for h := rt.gcObjList.head; h != nil; h = h.next {
		switch h.typ {
		case TypeObject:
			u.ObjCount++
		case typeShapeInternal:
			u.ShapeCount++
			u.PropCount += int64((*Shape)(unsafe.Pointer(h)).propCount)
		}
	}
	return u
}

// Encode serializes the snapshot with msgpack.
func (u MemoryUsage) Encode() ([]byte, error) {
	return msgpack.Marshal(u)
}

// DecodeMemoryUsage deserializes a snapshot, rejecting unknown schemas.
func DecodeMemoryUsage(b []byte) (MemoryUsage, error) {
	var u MemoryUsage
	if err := msgpack.Unmarshal(b, &u); err != nil {
		return MemoryUsage{}, err
	}
	if u.Schema != memoryUsageSchemaVersion {
		return MemoryUsage{}, fmt.Errorf("vm: snapshot schema %d, want %d", u.Schema, memoryUsageSchemaVersion)
	}
	return u, nil
}
