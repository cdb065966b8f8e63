package cpu

import "github.com/pkg/errors"

// Sentinel errors, created with github.com/pkg/errors. The assembler returns
// them inside an *AssembleError carrying the line index; errors.Is sees
// through it via Unwrap.
var (
	// Assembler errors.
	ErrUnknownMnemonic  = errors.New("unknown mnemonic")
	ErrUnknownRegister  = errors.New("unknown register")
	ErrMalformedLiteral = errors.New("malformed literal")
	ErrNameCollision    = errors.New("label collides with a register name")
	ErrDuplicateLabel   = errors.New("duplicate label")
	ErrUnresolvedLabel  = errors.New("unresolved label")
	ErrOperandKind      = errors.New("operand does not accept this kind")
	ErrOperandCount     = errors.New("wrong number of operands")
	ErrBadReference     = errors.New("memory reference must be an irx register or an int literal")
	ErrOutputRegInRef   = errors.New("oux registers cannot appear inside a memory reference")
	ErrArg3Reference    = errors.New("arg3 may never be a memory reference")
	ErrTwoReferences    = errors.New("at most one operand may be a readable memory reference")

	// Processor errors.
	ErrChannelIndex = errors.New("channel index out of range")
	ErrNotLoaded    = errors.New("no program loaded")
)

// AssembleError annotates an error with the 0-based source line index it
// came from, matching the assembler's first-error-wins contract: Compile
// returns on the first error encountered rather than collecting all of
// them.
type AssembleError struct {
	Line int
	Err  error
}

func (e *AssembleError) Error() string {
	return errors.Wrapf(e.Err, "line %d", e.Line).Error()
}

func (e *AssembleError) Unwrap() error { return e.Err }

func assembleErr(line int, err error) error {
	return &AssembleError{Line: line, Err: err}
}
