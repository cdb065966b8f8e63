package cpu

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	registerRe = regexp.MustCompile(`^(ir|fr|sr|in|ou)([0-7])$`)
	labelDefRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_\-]*):\s*(.*)$`)
	identRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*$`)
	floatRe    = regexp.MustCompile(`^-?\d*\.\d+$`)
	intRe      = regexp.MustCompile(`^-?(0[xX][0-9A-Fa-f]+|\d+)$`)
)

var regClassByPrefix = map[string]RegClass{
	"ir": RegIR, "fr": RegFR, "sr": RegSR, "in": RegIN, "ou": RegOU,
}

// Compile lexes and parses lines into a Program in two passes: the first
// pass classifies each line and, for instructions, validates operand kinds
// against the opcode table; the second pass resolves every label
// reference collected along the way. The first error encountered wins --
// no partial program is ever returned.
func Compile(lines []string) (*Program, error) {
	prog := &Program{Labels: map[string]int{}}

	for i, raw := range lines {
		// Errors report a 0-based line index, not a 1-based line number.
		lineNo := i
		text := strings.TrimSpace(stripComment(raw))
		if text == "" {
			continue
		}

		// A label may stand alone on its line ("done:") or prefix an
		// instruction on the same line ("done: mov ou0 \"yes\"").
		if m := labelDefRe.FindStringSubmatch(text); m != nil {
			name, remainder := m[1], strings.TrimSpace(m[2])
			if isRegisterName(name) {
				return nil, assembleErr(lineNo, ErrNameCollision)
			}
			if _, exists := prog.Labels[name]; exists {
				return nil, assembleErr(lineNo, errors.Errorf("Label with same name already defined: %s", name))
			}
			prog.Labels[name] = len(prog.Instructions)
			if remainder == "" {
				continue
			}
			text = remainder
		}

		instr, err := parseInstruction(lineNo, text)
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, instr)
	}

	for i := range prog.Instructions {
		instr := &prog.Instructions[i]
		for a := range instr.Args {
			if instr.Args[a].Label == "" {
				continue
			}
			idx, ok := prog.Labels[instr.Args[a].Label]
			if !ok {
				return nil, assembleErr(instr.SourceLine, ErrUnresolvedLabel)
			}
			instr.Args[a] = Arg{IsLiteral: true, Literal: NewIntValue(int32(idx))}
		}
	}

	return prog, nil
}

func parseInstruction(lineNo int, text string) (Opcode, error) {
	tokens := tokenize(text)
	mnemonic := strings.ToLower(tokens[0])
	op, ok := mnemonicToOp[mnemonic]
	if !ok {
		return Opcode{}, assembleErr(lineNo, ErrUnknownMnemonic)
	}

	operandToks := tokens[1:]
	spec := op.Spec()
	if len(operandToks) != len(spec.Operands) {
		return Opcode{}, assembleErr(lineNo, ErrOperandCount)
	}

	var args [3]Arg
	refReadCount := 0
	for idx, tok := range operandToks {
		arg, err := parseOperand(tok, idx == 2)
		if err != nil {
			return Opcode{}, assembleErr(lineNo, err)
		}
		if spec.Operands[idx].Kinds&apparentKind(arg) == 0 {
			return Opcode{}, assembleErr(lineNo, ErrOperandKind)
		}
		if arg.IsRef && spec.Operands[idx].Read {
			refReadCount++
		}
		args[idx] = arg
	}
	if refReadCount > 1 {
		return Opcode{}, assembleErr(lineNo, ErrTwoReferences)
	}

	return Opcode{SourceLine: lineNo, Op: op, Args: args}, nil
}

// parseOperand classifies one operand token (with its optional [...]
// wrapping already intact) into an Arg, enforcing the structural
// memory-reference rules that don't depend on the owning opcode: arg3 is
// never a reference, a reference's inner value is an int literal or an
// irx register, and oux cannot appear inside one.
func parseOperand(tok string, isArg3 bool) (Arg, error) {
	ref := false
	inner := tok
	if strings.HasPrefix(tok, "[") {
		if !strings.HasSuffix(tok, "]") {
			return Arg{}, ErrMalformedLiteral
		}
		ref = true
		inner = tok[1 : len(tok)-1]
	}
	if ref && isArg3 {
		return Arg{}, ErrArg3Reference
	}

	if m := registerRe.FindStringSubmatch(inner); m != nil {
		rc := regClassByPrefix[m[1]]
		idx, _ := strconv.Atoi(m[2])
		if ref {
			if rc == RegOU {
				return Arg{}, ErrOutputRegInRef
			}
			if rc != RegIR {
				return Arg{}, ErrBadReference
			}
		}
		return Arg{Reg: rc, Index: idx, IsRef: ref}, nil
	}

	if len(inner) >= 2 && strings.HasPrefix(inner, `"`) && strings.HasSuffix(inner, `"`) {
		if ref {
			return Arg{}, ErrBadReference
		}
		return Arg{IsLiteral: true, Literal: NewStringValue(unescapeString(inner[1 : len(inner)-1]))}, nil
	}

	if floatRe.MatchString(inner) {
		if ref {
			return Arg{}, ErrBadReference
		}
		f, err := strconv.ParseFloat(inner, 32)
		if err != nil {
			return Arg{}, ErrMalformedLiteral
		}
		return Arg{IsLiteral: true, Literal: NewFloatValue(float32(f))}, nil
	}

	if intRe.MatchString(inner) {
		n, err := parseIntLiteral(inner)
		if err != nil {
			return Arg{}, ErrMalformedLiteral
		}
		return Arg{IsLiteral: true, Literal: NewIntValue(n), IsRef: ref}, nil
	}

	if identRe.MatchString(inner) {
		if ref {
			return Arg{}, ErrBadReference
		}
		return Arg{Label: inner}, nil
	}

	return Arg{}, ErrMalformedLiteral
}

func isRegisterName(name string) bool { return registerRe.MatchString(name) }

// apparentKind classifies a parsed Arg at assembly time: a memory
// reference is always apparently "im|sm" regardless of what its inner
// addressing expression is, since the fetched value's eventual kind
// (Int-if-parseable, always String) isn't known until runtime.
func apparentKind(a Arg) OperandKind {
	switch {
	case a.Label != "":
		return KLitInt
	case a.IsRef:
		return KMemInt | KMemString
	case a.IsLiteral:
		switch a.Literal.Kind() {
		case KindInt:
			return KLitInt
		case KindFloat:
			return KLitFloat
		case KindString:
			return KLitString
		}
		return 0
	default:
		switch a.Reg {
		case RegIR:
			return KIR
		case RegFR:
			return KFR
		case RegSR:
			return KSR
		case RegIN:
			return KIN
		case RegOU:
			return KOU
		default:
			return 0
		}
	}
}

// stripComment removes a ';' through end-of-line, unless it appears inside
// a double-quoted string literal.
func stripComment(line string) string {
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && inQuotes:
			i++
		case line[i] == '"':
			inQuotes = !inQuotes
		case line[i] == ';' && !inQuotes:
			return line[:i]
		}
	}
	return line
}

// tokenize splits an instruction line on whitespace, treating a
// double-quoted span (with \" and \\ escapes) as a single token.
func tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && inQuotes && i+1 < len(line):
			cur.WriteByte(c)
			cur.WriteByte(line[i+1])
			i++
		case c == '"':
			cur.WriteByte(c)
			inQuotes = !inQuotes
		case c == ' ' || c == '\t':
			if inQuotes {
				cur.WriteByte(c)
			} else {
				flush()
			}
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}

// unescapeString resolves \" and \\ inside a string literal's body.
func unescapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
