// Package cpu implements the fantasy 32-bit controller: a two-pass
// assembler and a register-machine processor sharing a tri-typed value
// model and a static opcode metadata table.
package cpu

import (
	"math"
	"strconv"
	"strings"
)

// Kind is a bitmask over the three interpretations a Value may carry at
// once. Fetches from an input channel latch materialize all three
// simultaneously; arithmetic then propagates the kinds its operands
// actually carried.
type Kind uint8

const (
	KindInt Kind = 1 << iota
	KindFloat
	KindString
)

func (k Kind) Has(bit Kind) bool { return k&bit != 0 }

func (k Kind) String() string {
	var parts []string
	if k.Has(KindInt) {
		parts = append(parts, "int")
	}
	if k.Has(KindFloat) {
		parts = append(parts, "float")
	}
	if k.Has(KindString) {
		parts = append(parts, "string")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Value is a tri-typed tagged value. It only ever carries the payloads
// named by kind; the other fields are zero and must not be read directly
// by callers outside this file.
type Value struct {
	kind Kind
	i    int32
	f    float32
	s    string
}

// NewIntValue builds a Value that carries only the int interpretation.
func NewIntValue(i int32) Value { return Value{kind: KindInt, i: i} }

// NewFloatValue builds a Value that carries only the float interpretation.
func NewFloatValue(f float32) Value { return Value{kind: KindFloat, f: f} }

// NewStringValue builds a Value that carries only the string interpretation.
func NewStringValue(s string) Value { return Value{kind: KindString, s: s} }

// NewChannelValue materializes raw text from an input channel as all three
// kinds at once: int and float fall back to 0 on parse failure, the string
// is stored verbatim regardless.
func NewChannelValue(raw string) Value {
	v := Value{kind: KindInt | KindFloat | KindString, s: raw}
	if n, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 32); err == nil {
		v.i = int32(n)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 32); err == nil {
		v.f = float32(f)
	}
	return v
}

// Kind reports the bitmask of interpretations this Value carries.
func (v Value) Kind() Kind { return v.kind }

// IntOrZero returns the raw int payload, or 0 if this Value does not carry
// an int interpretation. Used by the union-based binary arithmetic helpers,
// where the identity element for a missing side is 0.
func (v Value) IntOrZero() int32 {
	if v.kind.Has(KindInt) {
		return v.i
	}
	return 0
}

// FloatOrZero mirrors IntOrZero for the float interpretation.
func (v Value) FloatOrZero() float32 {
	if v.kind.Has(KindFloat) {
		return v.f
	}
	return 0
}

// StringOrEmpty mirrors IntOrZero for the string interpretation.
func (v Value) StringOrEmpty() string {
	if v.kind.Has(KindString) {
		return v.s
	}
	return ""
}

// AsInt converts to int regardless of carried kind, following the
// Int -> Float -> String "most meaningful kind" selection order: if the
// Value has no int payload, fall back to truncating its float, then
// to parsing its string (yielding -1 on parse failure, per the conversion
// opcodes' documented behavior).
func (v Value) AsInt() int32 {
	switch {
	case v.kind.Has(KindInt):
		return v.i
	case v.kind.Has(KindFloat):
		return int32(v.f)
	case v.kind.Has(KindString):
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 0, 32)
		if err != nil {
			return -1
		}
		return int32(n)
	default:
		return 0
	}
}

// AsFloat is the float-producing counterpart to AsInt. String parse
// failures yield NaN, per the mvs2f conversion semantics.
func (v Value) AsFloat() float32 {
	switch {
	case v.kind.Has(KindFloat):
		return v.f
	case v.kind.Has(KindInt):
		return float32(v.i)
	case v.kind.Has(KindString):
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 32)
		if err != nil {
			return float32(math.NaN())
		}
		return float32(f)
	default:
		return 0
	}
}

// AsString stringifies under the selected-kind rule Int -> Float -> String:
// a Value's "most meaningful" single interpretation, rendered as text. This
// is what channel flush and memory writeback use.
func (v Value) AsString() string {
	switch {
	case v.kind.Has(KindInt):
		return strconv.FormatInt(int64(v.i), 10)
	case v.kind.Has(KindFloat):
		return strconv.FormatFloat(float64(v.f), 'g', -1, 32)
	case v.kind.Has(KindString):
		return v.s
	default:
		return ""
	}
}

// SelectedKind returns which single kind a sink should use, following
// Int -> Float -> String.
func (v Value) SelectedKind() Kind {
	switch {
	case v.kind.Has(KindInt):
		return KindInt
	case v.kind.Has(KindFloat):
		return KindFloat
	case v.kind.Has(KindString):
		return KindString
	default:
		return 0
	}
}

// parseIntLiteral parses a decimal or 0x-prefixed hex integer, used both by
// the assembler's literal grammar and by memory-read materialization.
func parseIntLiteral(raw string) (int32, error) {
	s := strings.TrimSpace(raw)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, s = 16, s[2:]
	}
	n, err := strconv.ParseInt(sign+s, base, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

// bitsToFloat and floatToBits perform the lossless bit-reinterpretation
// ldi2f/ldf2i need, as opposed to AsFloat/AsInt's value-preserving numeric
// conversions.
func bitsToFloat(i int32) float32 { return math.Float32frombits(uint32(i)) }
func floatToBits(f float32) int32 { return int32(math.Float32bits(f)) }
