package vm

import (
	"math/big"
	"unsafe"

	"golang.org/x/text/encoding/unicode"
)

// StringObject is an immutable heap string.
type StringObject struct {
	GCHeader
	value string
}

// SymbolObject is a unique symbol; the description is diagnostic only and
// identity is the allocation itself.
type SymbolObject struct {
	GCHeader
	description string
}

// BigIntObject wraps an arbitrary-precision integer.
type BigIntObject struct {
	GCHeader
	value        *big.Int
	payloadBytes int64
}

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// NewStringValue allocates a heap string sized to the encoded content. The
// empty string returns the runtime's shared sentinel so hosts can compare
// cheaply and Free/Dup stay uniform.
func (ctx *Context) NewStringValue(s string) Value {
	rt := ctx.rt
	if len(s) == 0 {
		return rt.DupValue(rt.emptyString)
	}
	if !rt.malloc(sizeOfString + int64(len(s))) {
		return Undefined
	}
	p := &StringObject{value: s}
	rt.initHeader(&p.GCHeader, TypeString)
	rt.stringCount++
	return Value{typ: TypeString, obj: unsafe.Pointer(p)}
}

// NewStringUTF16 builds a string from UTF-16LE bytes, the encoding hosts on
// the C-shaped boundary hand over. Undefined is returned for malformed
// input or allocation failure.
func (ctx *Context) NewStringUTF16(b []byte) Value {
	if len(b) == 0 {
		return ctx.rt.DupValue(ctx.rt.emptyString)
	}
	decoded, err := utf16Decoder.NewDecoder().Bytes(b)
	if err != nil {
		return Undefined
	}
	return ctx.NewStringValue(string(decoded))
}

// NewSymbol allocates a fresh, unique symbol.
func (ctx *Context) NewSymbol(description string) Value {
	rt := ctx.rt
	if !rt.malloc(sizeOfSymbol + int64(len(description))) {
		return Undefined
	}
	p := &SymbolObject{description: description}
	rt.initHeader(&p.GCHeader, TypeSymbol)
	return Value{typ: TypeSymbol, obj: unsafe.Pointer(p)}
}

// NewBigInt allocates a bigint value holding a copy of v.
func (ctx *Context) NewBigInt(v *big.Int) Value {
	rt := ctx.rt
	size := sizeOfBigInt + int64(len(v.Bytes()))
	if !rt.malloc(size) {
		return Undefined
	}
	p := &BigIntObject{value: new(big.Int).Set(v)}
	p.payloadBytes = size - sizeOfBigInt
	rt.initHeader(&p.GCHeader, TypeBigInt)
	return Value{typ: TypeBigInt, obj: unsafe.Pointer(p)}
}

func (rt *Runtime) freeString(p *StringObject) {
	rt.unlinkHeader(&p.GCHeader)
	rt.mfree(sizeOfString + int64(len(p.value)))
	rt.stringCount--
	p.value = ""
}

func (rt *Runtime) freeSymbol(p *SymbolObject) {
	rt.unlinkHeader(&p.GCHeader)
	rt.mfree(sizeOfSymbol + int64(len(p.description)))
	p.description = ""
}

func (rt *Runtime) freeBigInt(p *BigIntObject) {
	rt.unlinkHeader(&p.GCHeader)
	rt.mfree(sizeOfBigInt + p.payloadBytes)
	p.value = nil
}
