package vm

import "fortio.org/safecast"

// Atom is an interned property-name ID. 0 is never issued.
type Atom uint32

const AtomInvalid Atom = 0

const (
	atomInitialBuckets = 64 // power of two
	atomInitialEntries = 64
)

type atomEntry struct {
	hash uint32
	next int32 // next entry index in the same bucket, -1 ends the chain
	str  string
}

// atomTable interns byte content into dense IDs. Interning is purely
// additive: atoms are never removed and IDs never change across growth.
type atomTable struct {
	entries []atomEntry // index == atom; entry 0 is the reserved invalid atom
	buckets []int32
	count   int
	maxSize int // 0 = unlimited
}

func (t *atomTable) init() {
	t.entries = make([]atomEntry, 1, atomInitialEntries)
	t.buckets = make([]int32, atomInitialBuckets)
	for i := range t.buckets {
		t.buckets[i] = -1
	}
}

// hashString is FNV-1a. The hash is stored per entry, so it must stay stable
// for the lifetime of the table; a randomly seeded hash would not survive
// the growth rehash contract.
func hashString(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (t *atomTable) lookup(s string, hash uint32) Atom {
	mask := uint32(len(t.buckets) - 1)
	for i := t.buckets[hash&mask]; i >= 0; i = t.entries[i].next {
		e := &t.entries[i]
		if e.hash == hash && e.str == s {
			return Atom(i)
		}
	}
	return AtomInvalid
}

func (t *atomTable) grow(rt *Runtime) bool {
	newSize := len(t.buckets) * 2
	if !rt.mrealloc(int64(len(t.buckets))*4, int64(newSize)*4) {
		return false
	}
	buckets := make([]int32, newSize)
	for i := range buckets {
		buckets[i] = -1
	}
	mask := uint32(newSize - 1)
	for i := 1; i < len(t.entries); i++ {
		b := t.entries[i].hash & mask
		t.entries[i].next = buckets[b]
		buckets[b] = int32(i)
	}
	t.buckets = buckets
	return true
}

func (t *atomTable) intern(rt *Runtime, s string) Atom {
	h := hashString(s)
	if a := t.lookup(s, h); a != AtomInvalid {
		return a
	}
	if t.maxSize > 0 && t.count >= t.maxSize {
		return AtomInvalid
	}
	if t.count+1 >= len(t.buckets) {
		if !t.grow(rt) {
			return AtomInvalid
		}
	}
	if !rt.malloc(int64(len(s)) + sizeOfAtomEntry) {
		return AtomInvalid
	}
	id, err := safecast.Conv[int32](len(t.entries))
	if err != nil {
		rt.mfree(int64(len(s)) + sizeOfAtomEntry)
		return AtomInvalid
	}
	mask := uint32(len(t.buckets) - 1)
	b := h & mask
	t.entries = append(t.entries, atomEntry{hash: h, next: t.buckets[b], str: s})
	t.buckets[b] = id
	t.count++
	return Atom(id)
}

// release gives back the table's accounted bytes at runtime teardown. Entry 0
// and the initial bucket array were never charged.
func (t *atomTable) release(rt *Runtime) {
	for i := 1; i < len(t.entries); i++ {
		rt.mfree(int64(len(t.entries[i].str)) + sizeOfAtomEntry)
	}
	if len(t.buckets) > atomInitialBuckets {
		// Bucket growth was charged through realloc; shrink the same way.
		rt.mrealloc(int64(len(t.buckets))*4, int64(atomInitialBuckets)*4)
	}
	t.entries = nil
	t.buckets = nil
	t.count = 0
}

func (t *atomTable) str(a Atom) string {
	if a == AtomInvalid || int(a) >= len(t.entries) {
		return ""
	}
	return t.entries[a].str
}

// Intern returns the atom for s, issuing a new dense ID on first sight.
// Returns AtomInvalid on allocation failure or when the atom cap is hit.
func (rt *Runtime) Intern(s string) Atom {
	return rt.atoms.intern(rt, s)
}

// InternBytes interns raw byte content.
func (rt *Runtime) InternBytes(b []byte) Atom {
	return rt.atoms.intern(rt, string(b))
}

// AtomString returns the interned content for an atom, or "" for AtomInvalid.
func (rt *Runtime) AtomString(a Atom) string {
	return rt.atoms.str(a)
}

// AtomCount returns the number of live atoms.
func (rt *Runtime) AtomCount() int {
	return rt.atoms.count
}
