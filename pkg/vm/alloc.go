package vm

import (
	"unsafe"

	"fortio.org/safecast"
	"go.uber.org/zap"
)

// AllocState is the accounting block threaded through every allocation the
// runtime makes. Limit == 0 means unlimited.
type AllocState struct {
	Count int64 // live allocations
	Bytes int64 // live bytes
	Limit int64 // hard cap on Bytes, 0 = unlimited
}

// AllocFuncs is the pluggable allocation table. The Go runtime owns the actual
// memory, so the hooks account and admit rather than hand out pointers: a
// false return from Malloc or Realloc is an allocation failure and the caller
// must back out without publishing partial state.
type AllocFuncs struct {
	Malloc  func(s *AllocState, size int64) bool
	Free    func(s *AllocState, size int64)
	Realloc func(s *AllocState, oldSize, newSize int64) bool
}

// DefaultAllocFuncs returns the stock accounting allocator.
func DefaultAllocFuncs() AllocFuncs {
	return AllocFuncs{
		Malloc: func(s *AllocState, size int64) bool {
			if s.Limit > 0 && s.Bytes+size > s.Limit {
				return false
			}
			s.Bytes += size
			s.Count++
			return true
		},
		Free: func(s *AllocState, size int64) {
			s.Bytes -= size
			s.Count--
		},
		Realloc: func(s *AllocState, oldSize, newSize int64) bool {
			if s.Limit > 0 && s.Bytes+newSize-oldSize > s.Limit {
				return false
			}
			s.Bytes += newSize - oldSize
			return true
		},
	}
}

// Conceptual allocation sizes. The Value size is pinned at 16 bytes (word +
// discriminant) to keep accounting stable across architectures.
const sizeOfValue int64 = 16

var (
	sizeOfObject    = mustSize(unsafe.Sizeof(Object{}))
	sizeOfShape     = mustSize(unsafe.Sizeof(Shape{}))
	sizeOfShapeProp = mustSize(unsafe.Sizeof(shapeProp{}))
	sizeOfAtomEntry = mustSize(unsafe.Sizeof(atomEntry{}))
	sizeOfString    = mustSize(unsafe.Sizeof(StringObject{}))
	sizeOfSymbol    = mustSize(unsafe.Sizeof(SymbolObject{}))
	sizeOfBigInt    = mustSize(unsafe.Sizeof(BigIntObject{}))
	sizeOfFunction  = mustSize(unsafe.Sizeof(FunctionBytecode{}))
	sizeOfModule    = mustSize(unsafe.Sizeof(ModuleObject{}))
	sizeOfRegExp    = mustSize(unsafe.Sizeof(RegExpObject{}))
)

func mustSize(n uintptr) int64 {
	v, err := safecast.Conv[int64](n)
	if err != nil {
		panic(err)
	}
	return v
}

func valueArrayBytes(n int) int64 {
	return int64(n) * sizeOfValue
}

func shapePropBytes(n int) int64 {
	return int64(n) * sizeOfShapeProp
}

func (rt *Runtime) malloc(size int64) bool {
	if !rt.allocFuncs.Malloc(&rt.allocState, size) {
		rt.logger.Debug("allocation rejected",
			zap.Int64("size", size),
			zap.Int64("bytes", rt.allocState.Bytes),
			zap.Int64("limit", rt.allocState.Limit))
		return false
	}
	return true
}

func (rt *Runtime) mfree(size int64) {
	rt.allocFuncs.Free(&rt.allocState, size)
}

func (rt *Runtime) mrealloc(oldSize, newSize int64) bool {
	return rt.allocFuncs.Realloc(&rt.allocState, oldSize, newSize)
}

// SetMemoryLimit caps the accounted heap size. 0 removes the cap.
func (rt *Runtime) SetMemoryLimit(limit int64) {
	rt.allocState.Limit = limit
}

// AllocStats returns a copy of the current accounting block.
func (rt *Runtime) AllocStats() AllocState {
	return rt.allocState
}
