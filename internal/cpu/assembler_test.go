package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assembleErrLine(t *testing.T, lines []string) *AssembleError {
	t.Helper()
	_, err := Compile(lines)
	require.Error(t, err)
	var ae *AssembleError
	require.ErrorAs(t, err, &ae)
	return ae
}

func TestCompileValidProgram(t *testing.T) {
	prog, err := Compile([]string{
		"; a comment line",
		"mov ir0 5",
		"cmp ir0 5",
		"je done",
		`mov ou0 "no"`,
		`done: mov ou0 "yes"`,
	})
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 5)
	assert.Equal(t, 4, prog.Labels["done"])
	assert.Equal(t, OpJe, prog.Instructions[2].Op)
	assert.True(t, prog.Instructions[2].Args[0].IsLiteral)
	assert.Equal(t, int32(4), prog.Instructions[2].Args[0].Literal.AsInt())
}

func TestCompileUnknownMnemonic(t *testing.T) {
	ae := assembleErrLine(t, []string{"frobnicate ir0 1"})
	assert.ErrorIs(t, ae.Err, ErrUnknownMnemonic)
}

func TestCompileUnknownRegister(t *testing.T) {
	// ir8 is out of range (registers only go up to 7), so it parses as a
	// bare identifier -- which mov's write-only arg1 doesn't accept at all.
	ae := assembleErrLine(t, []string{"mov ir8 1"})
	assert.ErrorIs(t, ae.Err, ErrOperandKind)
}

func TestCompileUnknownRegisterAsReadOperand(t *testing.T) {
	// In a read position the same out-of-range token becomes an
	// unresolved-label failure instead, once it passes the (permissive)
	// anyRead kind check.
	ae := assembleErrLine(t, []string{"mov ir0 ir8"})
	assert.ErrorIs(t, ae.Err, ErrUnresolvedLabel)
}

func TestCompileMalformedLiteral(t *testing.T) {
	ae := assembleErrLine(t, []string{`mov sr0 "unterminated`})
	assert.ErrorIs(t, ae.Err, ErrMalformedLiteral)
}

func TestCompileLabelCollidesWithRegisterName(t *testing.T) {
	ae := assembleErrLine(t, []string{"ir0:", "nop"})
	assert.ErrorIs(t, ae.Err, ErrNameCollision)
}

func TestCompileDuplicateLabel(t *testing.T) {
	// The reported line is the 0-based index of the second "x:" line.
	ae := assembleErrLine(t, []string{"x:", "x:"})
	assert.Equal(t, 1, ae.Line)
	assert.Contains(t, ae.Error(), "Label with same name already defined: x")
}

func TestCompileMemoryReferenceInnerValueMustBeIntOrIR(t *testing.T) {
	ae := assembleErrLine(t, []string{"mov ir0 [fr0]"})
	assert.ErrorIs(t, ae.Err, ErrBadReference)
}

func TestCompileOutputRegisterInsideReference(t *testing.T) {
	ae := assembleErrLine(t, []string{"mov ir0 [ou0]"})
	assert.ErrorIs(t, ae.Err, ErrOutputRegInRef)
}

func TestCompileArg3NeverAReference(t *testing.T) {
	ae := assembleErrLine(t, []string{"chr ir0 sr0 [ir1]"})
	assert.ErrorIs(t, ae.Err, ErrArg3Reference)
}

func TestCompileOperandCountMismatch(t *testing.T) {
	ae := assembleErrLine(t, []string{"add ir0"})
	assert.ErrorIs(t, ae.Err, ErrOperandCount)
}

func TestCompileTwoReadableMemoryReferences(t *testing.T) {
	ae := assembleErrLine(t, []string{"add [ir0] [ir1]"})
	assert.ErrorIs(t, ae.Err, ErrTwoReferences)
}

func TestCompileUnresolvedLabel(t *testing.T) {
	ae := assembleErrLine(t, []string{"jmp nowhere"})
	assert.ErrorIs(t, ae.Err, ErrUnresolvedLabel)
}

func TestCompileOperandKindRejection(t *testing.T) {
	// and/or/xor/not/test are int-kind only; a string register is rejected.
	ae := assembleErrLine(t, []string{"and sr0 ir1"})
	assert.ErrorIs(t, ae.Err, ErrOperandKind)
}

func TestCompileHexAndFloatLiterals(t *testing.T) {
	prog, err := Compile([]string{"mov ir0 0x7FFFFFFF", "mov fr0 3.5"})
	require.NoError(t, err)
	assert.Equal(t, int32(0x7FFFFFFF), prog.Instructions[0].Args[1].Literal.AsInt())
	assert.Equal(t, float32(3.5), prog.Instructions[1].Args[1].Literal.AsFloat())
}
