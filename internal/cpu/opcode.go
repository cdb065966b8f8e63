package cpu

import "fmt"

// Op identifies one operation in the catalogue. Ordinal values are only
// used to index opcodeTable; they carry no wire-format meaning of their
// own.
type Op uint8

const (
	OpNop Op = iota
	OpMov
	OpAdd
	OpAdc
	OpSub
	OpCmp
	OpInc
	OpDec
	OpMul
	OpDiv
	OpShl
	OpShr
	OpRol
	OpRor
	OpAnd
	OpOr
	OpXor
	OpNot
	OpTest
	OpInr
	OpFlr
	OpFls
	OpJmp
	OpJe
	OpJne
	OpJnz
	OpJg
	OpJge
	OpJl
	OpJle
	OpMvI2F
	OpMvI2S
	OpMvF2I
	OpMvF2S
	OpMvS2I
	OpMvS2F
	OpLdI2F
	OpLdF2I
	OpFind
	OpRmv
	OpSbs
	OpRpl
	OpChr
	OpBrk

	opCount
)

// RegClass names which register file (if any) an operand reads or writes.
type RegClass uint8

const (
	RegNone RegClass = iota
	RegIR
	RegFR
	RegSR
	RegIN
	RegOU
)

func (c RegClass) String() string {
	switch c {
	case RegIR:
		return "ir"
	case RegFR:
		return "fr"
	case RegSR:
		return "sr"
	case RegIN:
		return "in"
	case RegOU:
		return "ou"
	default:
		return "none"
	}
}

// OperandKind is a bitmask over the operand classes an operand may belong
// to: register classes, literal classes, and memory-reference classes. An
// opcode's OperandSpec intersects an argument's apparent kind against this
// mask during assembly.
type OperandKind uint32

const (
	KIR OperandKind = 1 << iota
	KFR
	KSR
	KIN
	KOU
	KLitInt
	KLitFloat
	KLitString
	KMemInt
	KMemFloat
	KMemString
)

func (k OperandKind) String() string {
	names := []struct {
		bit  OperandKind
		name string
	}{
		{KIR, "irx"}, {KFR, "frx"}, {KSR, "srx"}, {KIN, "inx"}, {KOU, "oux"},
		{KLitInt, "int-literal"}, {KLitFloat, "float-literal"}, {KLitString, "string-literal"},
		{KMemInt, "[im]"}, {KMemFloat, "[fm]"}, {KMemString, "[sm]"},
	}
	s := ""
	for _, n := range names {
		if k&n.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Commonly reused operand kind sets: ops restricted to integers get the
// narrow intOnly* sets; ops that accept any of int/float/string get the wide
// sets; write targets are wide across the board because the writeback
// stage converts whatever Value it is given into the concrete
// register/channel/memory slot it's asked to store into.
const (
	anyRead    = KIR | KFR | KSR | KIN | KLitInt | KLitFloat | KLitString | KMemInt | KMemFloat | KMemString
	anyWrite   = KIR | KFR | KSR | KOU | KMemInt | KMemFloat | KMemString
	numericRW  = KIR | KFR | KSR | KMemInt | KMemString
	numericRd  = KIR | KFR | KSR | KIN | KLitInt | KLitFloat | KLitString | KMemInt | KMemString
	intfloatRW = KIR | KFR | KMemInt
	intfloatRd = KIR | KFR | KIN | KLitInt | KLitFloat | KMemInt
	intOnlyRW  = KIR | KMemInt
	intOnlyRd  = KIR | KIN | KLitInt | KMemInt
	intStrRW   = KIR | KSR | KMemInt | KMemString
	floatRd    = KFR | KIN | KLitFloat | KMemFloat
	stringRd   = KSR | KIN | KLitString | KMemString
	stringRW   = KSR | KMemString
	jumpTarget = KIR | KLitInt | KMemInt
)

// OperandSpec declares the acceptable kinds for one operand position plus
// whether the opcode reads and/or writes it. At least one of Read/Write
// must be set -- enforced by the init() assertion below.
type OperandSpec struct {
	Kinds OperandKind
	Read  bool
	Write bool
}

func rd(k OperandKind) OperandSpec { return OperandSpec{Kinds: k, Read: true} }
func wr(k OperandKind) OperandSpec { return OperandSpec{Kinds: k, Write: true} }
func rw(k OperandKind) OperandSpec { return OperandSpec{Kinds: k, Read: true, Write: true} }

// OpcodeSpec is the single source of truth used by both the assembler
// (operand-kind validation) and the processor (fetch/writeback gating).
type OpcodeSpec struct {
	Name     string
	Operands []OperandSpec
}

var opcodeTable = [opCount]OpcodeSpec{
	OpNop: {"nop", nil},
	OpMov: {"mov", []OperandSpec{wr(anyWrite), rd(anyRead)}},

	OpAdd: {"add", []OperandSpec{rw(numericRW), rd(numericRd)}},
	OpAdc: {"adc", []OperandSpec{rw(numericRW), rd(numericRd)}},
	OpSub: {"sub", []OperandSpec{rw(numericRW), rd(numericRd)}},
	OpCmp: {"cmp", []OperandSpec{rd(numericRW), rd(numericRd)}},

	OpInc: {"inc", []OperandSpec{rw(intfloatRW)}},
	OpDec: {"dec", []OperandSpec{rw(intfloatRW)}},
	OpMul: {"mul", []OperandSpec{rw(intfloatRW), rd(intfloatRd)}},
	OpDiv: {"div", []OperandSpec{rw(intfloatRW), rd(intfloatRd)}},

	OpShl: {"shl", []OperandSpec{rw(intStrRW), rd(intOnlyRd)}},
	OpShr: {"shr", []OperandSpec{rw(intStrRW), rd(intOnlyRd)}},
	OpRol: {"rol", []OperandSpec{rw(intStrRW), rd(intOnlyRd)}},
	OpRor: {"ror", []OperandSpec{rw(intStrRW), rd(intOnlyRd)}},

	OpAnd: {"and", []OperandSpec{rw(intOnlyRW), rd(intOnlyRd)}},
	OpOr:  {"or", []OperandSpec{rw(intOnlyRW), rd(intOnlyRd)}},
	OpXor: {"xor", []OperandSpec{rw(intOnlyRW), rd(intOnlyRd)}},
	OpNot: {"not", []OperandSpec{rw(intOnlyRW)}},
	OpTest: {"test", []OperandSpec{rd(intOnlyRW), rd(intOnlyRd)}},

	OpInr: {"inr", []OperandSpec{wr(anyWrite)}},
	OpFlr: {"flr", []OperandSpec{wr(anyWrite)}},
	OpFls: {"fls", []OperandSpec{rd(intOnlyRd)}},

	OpJmp: {"jmp", []OperandSpec{rd(jumpTarget)}},
	OpJe:  {"je", []OperandSpec{rd(jumpTarget)}},
	OpJne: {"jne", []OperandSpec{rd(jumpTarget)}},
	OpJnz: {"jnz", []OperandSpec{rd(jumpTarget)}},
	OpJg:  {"jg", []OperandSpec{rd(jumpTarget)}},
	OpJge: {"jge", []OperandSpec{rd(jumpTarget)}},
	OpJl:  {"jl", []OperandSpec{rd(jumpTarget)}},
	OpJle: {"jle", []OperandSpec{rd(jumpTarget)}},

	OpMvI2F: {"mvi2f", []OperandSpec{wr(anyWrite), rd(intOnlyRd)}},
	OpMvI2S: {"mvi2s", []OperandSpec{wr(anyWrite), rd(intOnlyRd)}},
	OpMvF2I: {"mvf2i", []OperandSpec{wr(anyWrite), rd(floatRd)}},
	OpMvF2S: {"mvf2s", []OperandSpec{wr(anyWrite), rd(floatRd)}},
	OpMvS2I: {"mvs2i", []OperandSpec{wr(anyWrite), rd(stringRd)}},
	OpMvS2F: {"mvs2f", []OperandSpec{wr(anyWrite), rd(stringRd)}},
	OpLdI2F: {"ldi2f", []OperandSpec{wr(anyWrite), rd(intOnlyRd)}},
	OpLdF2I: {"ldf2i", []OperandSpec{wr(anyWrite), rd(floatRd)}},

	OpFind: {"find", []OperandSpec{wr(anyWrite), rd(stringRd), rd(stringRd &^ KMemString)}},
	OpRmv:  {"rmv", []OperandSpec{wr(anyWrite), rd(stringRd), rd(stringRd &^ KMemString)}},
	OpSbs:  {"sbs", []OperandSpec{rw(stringRW), rd(intOnlyRd), rd(intOnlyRd &^ KMemInt)}},
	OpRpl:  {"rpl", []OperandSpec{rw(stringRW), rd(stringRd), rd(stringRd &^ KMemString)}},
	OpChr:  {"chr", []OperandSpec{wr(anyWrite), rd(stringRd), rd(intOnlyRd &^ KMemInt)}},

	OpBrk: {"brk", nil},
}

var mnemonicToOp map[string]Op

func init() {
	mnemonicToOp = make(map[string]Op, opCount)
	for op := Op(0); op < opCount; op++ {
		spec := opcodeTable[op]
		if spec.Name == "" {
			panic(fmt.Sprintf("opcode %d has no metadata entry", op))
		}
		mnemonicToOp[spec.Name] = op

		for i, operand := range spec.Operands {
			if !operand.Read && !operand.Write {
				panic(fmt.Sprintf("opcode %s operand %d has neither read nor write access", spec.Name, i+1))
			}
			if i == 2 && operand.Kinds&(KMemInt|KMemFloat|KMemString) != 0 {
				panic(fmt.Sprintf("opcode %s: arg3 may never be a memory reference", spec.Name))
			}
		}
	}
}

// String renders an Op back to its assembly mnemonic.
func (op Op) String() string {
	if int(op) >= len(opcodeTable) {
		return "?unknown?"
	}
	return opcodeTable[op].Name
}

// Spec returns the static metadata row for op.
func (op Op) Spec() OpcodeSpec { return opcodeTable[op] }

// NumOperands reports how many operand slots op declares.
func (op Op) NumOperands() int { return len(opcodeTable[op].Operands) }

// AltersFlags reports whether op's result updates the flag register. It is
// false for nop, every jump, brk, and fls (which sets the flags directly
// from its operand instead).
func (op Op) AltersFlags() bool {
	switch op {
	case OpNop, OpJmp, OpJe, OpJne, OpJnz, OpJg, OpJge, OpJl, OpJle, OpBrk, OpFls:
		return false
	default:
		return true
	}
}

// IsJump reports whether op is one of the jump family.
func (op Op) IsJump() bool {
	switch op {
	case OpJmp, OpJe, OpJne, OpJnz, OpJg, OpJge, OpJl, OpJle:
		return true
	default:
		return false
	}
}
