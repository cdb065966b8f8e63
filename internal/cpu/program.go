package cpu

import (
	"fmt"
	"strings"
)

// Arg is a tagged operand slot. Exactly one of the three shapes applies:
// a register reference (Reg != RegNone), a literal (IsLiteral), or -- for
// arg1/arg2 only -- a memory reference (IsRef), whose inner addressing
// expression is itself either an irx register or an int literal.
type Arg struct {
	Reg       RegClass
	Index     int
	IsLiteral bool
	Literal   Value
	IsRef     bool

	// Label holds an unresolved label reference between the assembler's
	// first and second passes; it is always empty on a Program returned
	// from Compile.
	Label string
}

func (a Arg) String() string {
	inner := ""
	switch {
	case a.Label != "":
		inner = a.Label
	case a.Reg != RegNone:
		inner = fmt.Sprintf("%s%d", a.Reg, a.Index)
	case a.IsLiteral:
		inner = a.Literal.AsString()
	}
	if a.IsRef {
		return "[" + inner + "]"
	}
	return inner
}

// Opcode is one assembled instruction: the operation plus up to three
// argument slots, and the source line it came from for error reporting and
// debug-mode disassembly.
type Opcode struct {
	SourceLine int
	Op         Op
	Args       [3]Arg
}

// String renders an Opcode back to assembly text, matching the mnemonic
// and operand order the assembler accepted.
func (o Opcode) String() string {
	n := o.Op.NumOperands()
	if n == 0 {
		return o.Op.String()
	}
	parts := make([]string, 0, n+1)
	parts = append(parts, o.Op.String())
	for i := 0; i < n; i++ {
		parts = append(parts, o.Args[i].String())
	}
	return strings.Join(parts, " ")
}

// Program is the assembler's output: a flat instruction list plus the
// label table resolved against it (retained for disassembly, not consulted
// again once ip is resolved to Instructions indices).
type Program struct {
	Instructions []Opcode
	Labels       map[string]int
}

// String disassembles the whole program, one instruction per line prefixed
// with its index, with label names annotated where they land.
func (p *Program) String() string {
	labelAt := make(map[int]string, len(p.Labels))
	for name, idx := range p.Labels {
		labelAt[idx] = name
	}
	var b strings.Builder
	for i, instr := range p.Instructions {
		if name, ok := labelAt[i]; ok {
			fmt.Fprintf(&b, "%s:\n", name)
		}
		fmt.Fprintf(&b, "% 4d  %s\n", i, instr)
	}
	return b.String()
}
