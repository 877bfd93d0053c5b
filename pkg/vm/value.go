package vm

import (
	"fmt"
	"math"
	"math/big"
	"unsafe"
)

// ValueType is the tag of a Value. Tags below firstRefType are immediates;
// tags in [firstRefType, lastRefType] point at a ref-counted heap allocation.
// The order is part of the ABI: external code tests the heap range numerically.
type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeInteger // int32 immediate
	TypeFloat   // float64 immediate
	TypeUninitialized

	TypeString
	TypeSymbol
	TypeBigInt
	TypeObject
	TypeFunctionBytecode
	TypeModule
	TypeRegExp

	firstRefType = TypeString
	lastRefType  = TypeRegExp
)

// String returns a human-readable name for the value type.
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeInteger, TypeFloat:
		return "number"
	case TypeUninitialized:
		return "uninitialized"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeBigInt:
		return "bigint"
	case TypeObject:
		return "object"
	case TypeFunctionBytecode:
		return "function bytecode"
	case TypeModule:
		return "module"
	case TypeRegExp:
		return "regexp"
	default:
		return "unknown"
	}
}

// Value is the engine's tagged value: a discriminant plus either an inline
// immediate payload or a pointer to a heap allocation whose first field is a
// GCHeader. Field order is fixed; native embedders read this struct directly.
//
// The zero Value is Undefined, which is what makes zero-filled property slots
// safe to read before they are written.
type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

var (
	Undefined     = Value{typ: TypeUndefined}
	Null          = Value{typ: TypeNull}
	Uninitialized = Value{typ: TypeUninitialized}
	True          = Value{typ: TypeBoolean, payload: 1}
	False         = Value{typ: TypeBoolean, payload: 0}
	NaN           = Value{typ: TypeFloat, payload: math.Float64bits(math.NaN())}
)

func IntegerValue(v int32) Value {
	return Value{typ: TypeInteger, payload: uint64(int64(v))}
}

func NumberValue(v float64) Value {
	return Value{typ: TypeFloat, payload: math.Float64bits(v)}
}

func BooleanValue(b bool) Value {
	if b {
		return True
	}
	return False
}

// Type returns the value's tag.
func (v Value) Type() ValueType { return v.typ }

// HasRefCount reports whether the value participates in reference counting.
// Immediates never do; every heap-range value does.
func (v Value) HasRefCount() bool {
	return v.typ >= firstRefType && v.typ <= lastRefType
}

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeInteger || v.typ == TypeFloat }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsSymbol() bool    { return v.typ == TypeSymbol }
func (v Value) IsBigInt() bool    { return v.typ == TypeBigInt }
func (v Value) IsObject() bool    { return v.typ == TypeObject }

// Is reports tag-and-identity equality: same tag and, for heap values, the
// same allocation; for immediates, the same payload bits.
func (v Value) Is(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	if v.HasRefCount() {
		return v.obj == other.obj
	}
	return v.payload == other.payload
}

func (v Value) AsInteger() int32 {
	return int32(int64(v.payload))
}

func (v Value) AsFloat() float64 {
	return math.Float64frombits(v.payload)
}

func (v Value) AsBoolean() bool {
	return v.payload != 0
}

// ToFloat widens either numeric representation to float64.
func (v Value) ToFloat() float64 {
	if v.typ == TypeInteger {
		return float64(v.AsInteger())
	}
	return v.AsFloat()
}

// AsObject returns the heap object. The caller must know the tag is TypeObject.
func (v Value) AsObject() *Object {
	return (*Object)(v.obj)
}

func (v Value) AsString() string {
	return (*StringObject)(v.obj).value
}

func (v Value) AsSymbol() string {
	return (*SymbolObject)(v.obj).description
}

func (v Value) AsBigInt() *big.Int {
	return (*BigIntObject)(v.obj).value
}

func (v Value) AsFunctionBytecode() *FunctionBytecode {
	return (*FunctionBytecode)(v.obj)
}

func (v Value) AsModule() *ModuleObject {
	return (*ModuleObject)(v.obj)
}

func (v Value) AsRegExp() *RegExpObject {
	return (*RegExpObject)(v.obj)
}

// header returns the GC header of a heap value. Every heap payload starts
// with an embedded GCHeader, so the object pointer doubles as a header pointer.
func (v Value) header() *GCHeader {
	return (*GCHeader)(v.obj)
}

// RefCount returns the current reference count of a heap value, or 0 for
// immediates. Intended for diagnostics and tests, not lifetime decisions.
func (v Value) RefCount() int32 {
	if !v.HasRefCount() {
		return 0
	}
	return v.header().refCount
}

// Inspect renders the value for diagnostics.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeInteger:
		return fmt.Sprintf("%d", v.AsInteger())
	case TypeFloat:
		return fmt.Sprintf("%v", v.AsFloat())
	case TypeString:
		return fmt.Sprintf("%q", v.AsString())
	case TypeSymbol:
		return fmt.Sprintf("Symbol(%s)", v.AsSymbol())
	case TypeBigInt:
		return v.AsBigInt().String() + "n"
	case TypeObject:
		return "[object Object]"
	case TypeFunctionBytecode:
		return fmt.Sprintf("[bytecode %s]", v.AsFunctionBytecode().name)
	case TypeModule:
		return fmt.Sprintf("[module %s]", v.AsModule().name)
	case TypeRegExp:
		re := v.AsRegExp()
		return fmt.Sprintf("/%s/%s", re.pattern, re.flags)
	default:
		return "<unknown>"
	}
}
