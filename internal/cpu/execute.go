package cpu

import (
	"math"
	"math/bits"
	"strings"
)

// execute dispatches instr against its fetched operand values, returning the
// value a writable arg1 should receive (writeback decides whether to
// actually store it) and whether the int path carried, for flag purposes.
// jmp*, brk, fls, and nop bypass the generic flag-apply step entirely and
// are handled as pure side effects instead.
func (p *Processor) execute(instr Opcode, vals *[3]Value) (out Value, carried bool) {
	a1, a2, a3 := vals[0], vals[1], vals[2]

	switch instr.Op {
	case OpNop:
		return Value{}, false

	case OpMov:
		return a2, false

	case OpAdd:
		return execAdd(a1, a2, false, false)
	case OpAdc:
		return execAdd(a1, a2, true, p.Flags.CF)
	case OpSub:
		return execSub(a1, a2)
	case OpCmp:
		out, carried = execSub(a1, a2)
		return out, carried

	case OpInc:
		return execAddConst(a1, 1)
	case OpDec:
		return execAddConst(a1, -1)

	case OpMul:
		return execMul(a1, a2)
	case OpDiv:
		return execDiv(a1, a2)

	case OpShl:
		return execShift(a1, a2, true), false
	case OpShr:
		return execShift(a1, a2, false), false
	case OpRol:
		return execRotate(a1, a2, true), false
	case OpRor:
		return execRotate(a1, a2, false), false

	case OpAnd:
		return NewIntValue(a1.IntOrZero() & a2.IntOrZero()), false
	case OpOr:
		return NewIntValue(a1.IntOrZero() | a2.IntOrZero()), false
	case OpXor:
		return NewIntValue(a1.IntOrZero() ^ a2.IntOrZero()), false
	case OpNot:
		return NewIntValue(^a1.IntOrZero()), false
	case OpTest:
		out = NewIntValue(a1.IntOrZero() & a2.IntOrZero())
		return out, false

	case OpInr:
		var bitmask int32
		for i := range p.In {
			if p.In[i].Set {
				bitmask |= 1 << uint(i)
			}
		}
		return NewIntValue(bitmask), false
	case OpFlr:
		return NewIntValue(p.Flags.asBits()), false
	case OpFls:
		p.Flags = flagsFromBits(a1.AsInt())
		return Value{}, false

	case OpJmp:
		p.IP = uint32(a1.AsInt())
		return Value{}, false
	case OpJe:
		if p.Flags.ZF {
			p.IP = uint32(a1.AsInt())
		}
		return Value{}, false
	case OpJne, OpJnz:
		if !p.Flags.ZF {
			p.IP = uint32(a1.AsInt())
		}
		return Value{}, false
	case OpJg:
		if !p.Flags.ZF && p.Flags.SF == p.Flags.OF {
			p.IP = uint32(a1.AsInt())
		}
		return Value{}, false
	case OpJge:
		if p.Flags.SF == p.Flags.OF {
			p.IP = uint32(a1.AsInt())
		}
		return Value{}, false
	case OpJl:
		if p.Flags.SF != p.Flags.OF {
			p.IP = uint32(a1.AsInt())
		}
		return Value{}, false
	case OpJle:
		if p.Flags.ZF || p.Flags.SF != p.Flags.OF {
			p.IP = uint32(a1.AsInt())
		}
		return Value{}, false

	case OpMvI2F:
		return NewFloatValue(a2.AsFloat()), false
	case OpMvI2S:
		return NewStringValue(a2.AsString()), false
	case OpMvF2I:
		return NewIntValue(a2.AsInt()), false
	case OpMvF2S:
		return NewStringValue(a2.AsString()), false
	case OpMvS2I:
		return NewIntValue(a2.AsInt()), false
	case OpMvS2F:
		return NewFloatValue(a2.AsFloat()), false
	case OpLdI2F:
		return NewFloatValue(bitsToFloat(a2.AsInt())), false
	case OpLdF2I:
		return NewIntValue(floatToBits(a2.AsFloat())), false

	case OpFind:
		idx := strings.Index(a2.AsString(), a3.AsString())
		return NewIntValue(int32(idx)), false
	case OpRmv:
		return NewStringValue(removeAll(a2.AsString(), a3.AsString())), false
	case OpSbs:
		return NewStringValue(substring(a1.AsString(), int(a2.AsInt()), int(a3.AsInt()))), false
	case OpRpl:
		return NewStringValue(replaceAll(a1.AsString(), a2.AsString(), a3.AsString())), false
	case OpChr:
		return NewIntValue(charAt(a2.AsString(), int(a3.AsInt()))), false

	case OpBrk:
		p.Working = false
		p.Observer.MemoryWrite(debugAddress, instr.String())
		return Value{}, false

	default:
		// Unreachable for an assembled program, but a byte-level corruption
		// of the program image halts rather than panics.
		p.Working = false
		return Value{}, false
	}
}

// execAdd computes add/adc over the union of a1/a2's carried kinds. adc
// folds CF into the int addend before widening.
func execAdd(a1, a2 Value, withCarry, carryIn bool) (Value, bool) {
	kind := a1.Kind() | a2.Kind()
	var out Value
	var carried bool
	if kind.Has(KindInt) {
		addend := a2.IntOrZero()
		if withCarry && carryIn {
			addend++
		}
		r, c := wideAdd(a1.IntOrZero(), addend)
		out.kind |= KindInt
		out.i = r
		carried = c
	}
	if kind.Has(KindFloat) {
		out.kind |= KindFloat
		out.f = a1.FloatOrZero() + a2.FloatOrZero()
	}
	if kind.Has(KindString) {
		out.kind |= KindString
		out.s = a1.StringOrEmpty() + a2.StringOrEmpty()
	}
	return out, carried
}

// execSub backs both sub and cmp: int/float subtraction, string = remove
// all occurrences of a2 from a1.
func execSub(a1, a2 Value) (Value, bool) {
	kind := a1.Kind() | a2.Kind()
	var out Value
	var carried bool
	if kind.Has(KindInt) {
		r, c := wideSub(a1.IntOrZero(), a2.IntOrZero())
		out.kind |= KindInt
		out.i = r
		carried = c
	}
	if kind.Has(KindFloat) {
		out.kind |= KindFloat
		out.f = a1.FloatOrZero() - a2.FloatOrZero()
	}
	if kind.Has(KindString) {
		out.kind |= KindString
		out.s = removeAll(a1.StringOrEmpty(), a2.StringOrEmpty())
	}
	return out, carried
}

// execAddConst backs inc/dec: a1 plus a small constant, int and float in
// parallel, no string effect.
func execAddConst(a1 Value, delta int32) (Value, bool) {
	var out Value
	var carried bool
	if a1.Kind().Has(KindInt) {
		r, c := wideAdd(a1.IntOrZero(), delta)
		out.kind |= KindInt
		out.i = r
		carried = c
	}
	if a1.Kind().Has(KindFloat) {
		out.kind |= KindFloat
		out.f = a1.FloatOrZero() + float32(delta)
	}
	return out, carried
}

func execMul(a1, a2 Value) (Value, bool) {
	kind := a1.Kind() | a2.Kind()
	var out Value
	var carried bool
	if kind.Has(KindInt) {
		r, c := wideMul(a1.IntOrZero(), a2.IntOrZero())
		out.kind |= KindInt
		out.i = r
		carried = c
	}
	if kind.Has(KindFloat) {
		out.kind |= KindFloat
		out.f = a1.FloatOrZero() * a2.FloatOrZero()
	}
	return out, carried
}

// execDiv: float division by zero yields NaN; integer division by zero
// resolves to 0, with no trap (see DESIGN.md).
func execDiv(a1, a2 Value) (Value, bool) {
	kind := a1.Kind() | a2.Kind()
	var out Value
	if kind.Has(KindInt) {
		out.kind |= KindInt
		if a2.IntOrZero() == 0 {
			out.i = 0
		} else {
			out.i = a1.IntOrZero() / a2.IntOrZero()
		}
	}
	if kind.Has(KindFloat) {
		out.kind |= KindFloat
		if a2.FloatOrZero() == 0 {
			out.f = float32(math.NaN())
		} else {
			out.f = a1.FloatOrZero() / a2.FloatOrZero()
		}
	}
	return out, false
}

// execShift backs shl/shr: int is a 32-bit logical shift; string drops
// characters from the left (shl) or pads them on the left (shr), by a2
// characters. See DESIGN.md for the asymmetry's resolution.
func execShift(a1, a2 Value, left bool) Value {
	kind := a1.Kind()
	n := int(a2.AsInt())
	var out Value
	if kind.Has(KindInt) {
		out.kind |= KindInt
		u := uint32(a1.IntOrZero())
		if left {
			out.i = int32(u << uint(n&31))
		} else {
			out.i = int32(u >> uint(n&31))
		}
	}
	if kind.Has(KindString) {
		out.kind |= KindString
		out.s = shiftString(a1.StringOrEmpty(), n, left)
	}
	return out
}

func shiftString(s string, n int, left bool) string {
	if n <= 0 {
		return s
	}
	if left {
		if n >= len(s) {
			return ""
		}
		return s[n:]
	}
	return strings.Repeat(" ", n) + s
}

// execRotate backs rol/ror: 32-bit bit-rotate for int, character rotation
// modulo string length otherwise.
func execRotate(a1, a2 Value, left bool) Value {
	kind := a1.Kind()
	n := int(a2.AsInt())
	var out Value
	if kind.Has(KindInt) {
		out.kind |= KindInt
		u := uint32(a1.IntOrZero())
		if left {
			out.i = int32(bits.RotateLeft32(u, n))
		} else {
			out.i = int32(bits.RotateLeft32(u, -n))
		}
	}
	if kind.Has(KindString) {
		out.kind |= KindString
		out.s = rotateString(a1.StringOrEmpty(), n, left)
	}
	return out
}

func rotateString(s string, n int, left bool) string {
	if len(s) == 0 {
		return s
	}
	n = n % len(s)
	if n < 0 {
		n += len(s)
	}
	if !left {
		n = len(s) - n
	}
	return s[n:] + s[:n]
}

// removeAll deletes every occurrence of needle from s. An empty needle is a
// no-op rather than the pathological "insert between every rune" behavior
// strings.ReplaceAll would otherwise produce.
func removeAll(s, needle string) string {
	if needle == "" {
		return s
	}
	return strings.ReplaceAll(s, needle, "")
}

// replaceAll substitutes every occurrence of pattern in s with replacement,
// with the same empty-pattern guard as removeAll.
func replaceAll(s, pattern, replacement string) string {
	if pattern == "" {
		return s
	}
	return strings.ReplaceAll(s, pattern, replacement)
}

// substring clamps start/length to s's bounds rather than panicking.
func substring(s string, start, length int) string {
	if start < 0 {
		start = 0
	}
	if start > len(s) {
		start = len(s)
	}
	end := start + length
	if length < 0 || end < start {
		end = start
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// charAt returns the byte value at index, or -1 if out of range.
func charAt(s string, index int) int32 {
	if index < 0 || index >= len(s) {
		return -1
	}
	return int32(s[index])
}
