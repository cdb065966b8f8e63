package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver captures every callback invocation for assertion, a
// tiny in-test fake instead of a mock framework.
type recordingObserver struct {
	memoryReads  []uint32
	memoryWrites []memoryWriteCall
	channelOut   []channelWriteCall
}

type memoryWriteCall struct {
	Address uint32
	Value   string
}

type channelWriteCall struct {
	Index uint32
	Value string
}

func (o *recordingObserver) MemoryRead(address uint32) {
	o.memoryReads = append(o.memoryReads, address)
}

func (o *recordingObserver) MemoryWrite(address uint32, value string) {
	o.memoryWrites = append(o.memoryWrites, memoryWriteCall{address, value})
}

func (o *recordingObserver) ChannelWrite(index uint32, value string) {
	o.channelOut = append(o.channelOut, channelWriteCall{index, value})
}

func newTestProcessor(t *testing.T, src []string) (*Processor, *recordingObserver) {
	t.Helper()
	prog, err := Compile(src)
	require.NoError(t, err)
	obs := &recordingObserver{}
	p := NewProcessor(obs, nil)
	p.Load(prog)
	p.Start()
	return p, obs
}

// A single mov from a string literal to an output register, flushed
// at end of tick.
func TestScenarioHelloWorldEcho(t *testing.T) {
	p, obs := newTestProcessor(t, []string{`mov ou0 "hi"`})
	p.Cycle()
	require.Len(t, obs.channelOut, 1)
	assert.Equal(t, channelWriteCall{0, "hi"}, obs.channelOut[0])
	assert.True(t, p.Working)
}

// A memory write ends its tick immediately; the following memory read
// stalls until the host satisfies it on a later tick.
func TestScenarioMemoryRoundTrip(t *testing.T) {
	p, obs := newTestProcessor(t, []string{
		"mov ir0 7",
		"mov [ir0] 42",
		"mov ir1 [ir0]",
	})

	p.Cycle() // tick 1: both movs execute, the second ends the tick on write
	require.Len(t, obs.memoryWrites, 1)
	assert.Equal(t, memoryWriteCall{7, "42"}, obs.memoryWrites[0])
	assert.Equal(t, uint32(2), p.IP)

	p.Cycle() // tick 2: third mov issues a read and stalls
	require.Len(t, obs.memoryReads, 1)
	assert.Equal(t, uint32(7), obs.memoryReads[0])
	assert.True(t, p.Underloaded)
	assert.Equal(t, uint32(2), p.IP)

	p.Memory("42")
	p.Cycle() // tick 3: the read completes
	assert.Equal(t, int32(42), p.IR[1])
}

// Several register-only instructions, including two movs, all execute
// within a single Cycle call since none of them write memory.
func TestScenarioConditionalBranch(t *testing.T) {
	p, obs := newTestProcessor(t, []string{
		"mov ir0 5",
		"cmp ir0 5",
		"je done",
		`mov ou0 "no"`,
		`done: mov ou0 "yes"`,
	})
	p.Cycle()
	require.Len(t, obs.channelOut, 1)
	assert.Equal(t, channelWriteCall{0, "yes"}, obs.channelOut[0])
}

// A channel read consumes its latch; a second read before the host
// refills it stalls and rewinds ip.
func TestScenarioInputChannelOneShot(t *testing.T) {
	p, obs := newTestProcessor(t, []string{
		"mov ir0 in1",
		"mov ir1 in1",
	})
	require.NoError(t, p.Channel(1, "9"))

	p.Cycle()
	assert.Equal(t, int32(9), p.IR[0])
	assert.True(t, p.Underloaded)
	assert.Equal(t, uint32(1), p.IP, "ip should point at the stalled second mov")
	assert.Empty(t, obs.memoryReads)
}

// Adding 1 to the maximum positive int32 sets SF and OF but not CF.
func TestScenarioCarryOverflowFlags(t *testing.T) {
	p, _ := newTestProcessor(t, []string{
		"mov ir0 0x7FFFFFFF",
		"add ir0 1",
	})
	p.Cycle()
	assert.Equal(t, int32(-2147483648), p.IR[0]) // 0x80000000 as a signed int32
	assert.True(t, p.Flags.SF)
	assert.False(t, p.Flags.ZF)
	assert.True(t, p.Flags.OF)
	assert.False(t, p.Flags.CF)
}

// Dividing a float register by zero yields NaN rather than Go's default
// +Inf/-Inf.
func TestDivFloatByZeroYieldsNaN(t *testing.T) {
	p, _ := newTestProcessor(t, []string{
		"mov fr0 5.0",
		"div fr0 0.0",
	})
	p.Cycle()
	assert.True(t, math.IsNaN(float64(p.FR[0])))
}

// Defining the same label twice is rejected at compile time.
func TestScenarioDuplicateLabelRejection(t *testing.T) {
	_, err := Compile([]string{"x:", "x:"})
	require.Error(t, err)
	var ae *AssembleError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 1, ae.Line)
}

func TestChannelOutOfRange(t *testing.T) {
	p := NewProcessor(nil, nil)
	assert.ErrorIs(t, p.Channel(4, "x"), ErrChannelIndex)
	assert.ErrorIs(t, p.Channel(-1, "x"), ErrChannelIndex)
}

func TestResetClearsStateButKeepsProgram(t *testing.T) {
	p, _ := newTestProcessor(t, []string{"mov ir0 5"})
	p.Cycle()
	require.Equal(t, int32(5), p.IR[0])
	p.Reset()
	assert.Equal(t, int32(0), p.IR[0])
	assert.Equal(t, uint32(0), p.IP)
	require.NotNil(t, p.Program)
}

func TestStopMakesCycleANoOp(t *testing.T) {
	p, _ := newTestProcessor(t, []string{"mov ir0 5"})
	p.Stop()
	require.NoError(t, p.Cycle())
	assert.Equal(t, int32(0), p.IR[0])
}

func TestCycleWithNoProgramReturnsErrNotLoaded(t *testing.T) {
	p := NewProcessor(nil, nil)
	p.Start()
	assert.ErrorIs(t, p.Cycle(), ErrNotLoaded)
}

func TestBrkHaltsAndEmitsDebugLine(t *testing.T) {
	p, obs := newTestProcessor(t, []string{"brk"})
	p.Cycle()
	assert.False(t, p.Working)
	require.Len(t, obs.memoryWrites, 1)
	assert.Equal(t, uint32(0xFFFFFFFF), obs.memoryWrites[0].Address)
}
