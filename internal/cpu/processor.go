package cpu

import "github.com/sirupsen/logrus"

// debugAddress is the magic memory address reserved for debug-line output:
// hosts should display but never persist writes to it.
const debugAddress = 0xFFFFFFFF

// DebugMode controls how much a tick executes and whether it narrates
// itself via debug-line writes.
type DebugMode uint8

const (
	// DebugNone runs up to Multiplier sub-steps per tick, silently.
	DebugNone DebugMode = iota
	// DebugStepByStep executes at most one instruction per tick, then stops.
	DebugStepByStep
	// DebugVerbose runs normally but emits a debug line per executed
	// instruction via MemoryWrite(debugAddress, ...).
	DebugVerbose
)

// inputLatch is one in0..in3 slot: a consuming read clears it atomically.
type inputLatch struct {
	Value Value
	Set   bool
}

// outputLatch is one ou0..ou3 slot: end-of-tick flush clears it.
type outputLatch struct {
	Value Value
	Set   bool
}

// pendingMemory tracks the single outstanding memory request the processor
// may have in flight at once.
type pendingMemory struct {
	address  uint32
	awaiting bool
	complete bool
	value    string
}

// Processor is the register-machine core: register files, I/O latches,
// flags, the loaded program, and the cooperative clock that drives them.
// It never spawns goroutines; all work happens inside Cycle.
type Processor struct {
	IR [8]int32
	FR [8]float32
	SR [8]string

	In  [4]inputLatch
	Out [4]outputLatch

	IP    uint32
	Flags Flags

	pending pendingMemory

	Program *Program

	Multiplier int
	DebugMode  DebugMode

	Working     bool
	Underloaded bool

	stalledTicks int

	Observer Observer
	Log      *logrus.Logger
}

// warnStallThreshold is the number of consecutive stalled ticks after
// which Cycle starts logging a Warn-level message, so a host that forgot
// to wire a memory or channel response has something to notice.
const warnStallThreshold = 3

// NewProcessor builds an idle processor with no program loaded. A nil
// observer defaults to NopObserver; a nil logger defaults to a new logrus
// logger at Warn level (lifecycle Info lines are suppressed, stall warnings
// still print), so callers that don't care about either still get a
// working processor.
func NewProcessor(observer Observer, log *logrus.Logger) *Processor {
	if observer == nil {
		observer = NopObserver{}
	}
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	return &Processor{
		Multiplier: 8,
		Observer:   observer,
		Log:        log,
	}
}

// Load replaces the program image and resets all processor state.
func (p *Processor) Load(prog *Program) {
	p.Program = prog
	p.Reset()
	p.Log.WithField("instructions", len(prog.Instructions)).Info("program loaded")
}

// Reset zeros registers, flags, latches, and the pending memory request,
// and rewinds ip to 0. The program image itself is untouched.
func (p *Processor) Reset() {
	p.IR = [8]int32{}
	p.FR = [8]float32{}
	p.SR = [8]string{}
	p.In = [4]inputLatch{}
	p.Out = [4]outputLatch{}
	p.IP = 0
	p.Flags = Flags{}
	p.pending = pendingMemory{}
	p.Underloaded = false
	p.stalledTicks = 0
	p.Log.Info("processor reset")
}

// Start and Stop flip the Working bit; a stopped processor ignores Cycle.
func (p *Processor) Start() {
	p.Working = true
	p.Log.Info("processor started")
}

func (p *Processor) Stop() {
	p.Working = false
	p.Log.Info("processor stopped")
}

// SetMultiplier clamps m into the supported range [1,16] before assigning
// it.
func (p *Processor) SetMultiplier(m int) {
	if m < 1 {
		m = 1
	}
	if m > 16 {
		m = 16
	}
	p.Multiplier = m
}

// Channel delivers an input signal on in[index]: the raw text is parsed as
// int and float (0 on failure) and kept verbatim as a string, and set? is
// raised. index must be in [0,4).
func (p *Processor) Channel(index int, raw string) error {
	if index < 0 || index > 3 {
		return ErrChannelIndex
	}
	p.In[index] = inputLatch{Value: NewChannelValue(raw), Set: true}
	return nil
}

// Memory satisfies the single outstanding memory read with raw. Pairing
// the call with the request that triggered it is the caller's
// responsibility.
func (p *Processor) Memory(raw string) {
	p.pending.value = raw
	p.pending.complete = true
}

// Cycle advances at most Multiplier fetch/execute/writeback sub-steps, then
// flushes any output latches that were set during the tick. It is a no-op
// if the processor is stopped, and returns ErrNotLoaded if no program has
// been loaded yet.
func (p *Processor) Cycle() error {
	if !p.Working {
		return nil
	}
	if p.Program == nil {
		return ErrNotLoaded
	}

	stalled := false
	for step := 0; step < p.Multiplier; step++ {
		if int(p.IP) >= len(p.Program.Instructions) {
			break
		}

		instr := p.Program.Instructions[p.IP]
		p.IP++

		if instr.Op == OpNop {
			break
		}
		if int(instr.Op) >= int(opCount) {
			p.Working = false
			break
		}

		vals, ok := p.fetch(instr)
		if !ok {
			p.IP--
			stalled = true
			break
		}

		out, carried := p.execute(instr, &vals)
		if !p.Working {
			// brk, or an unrecognized opcode defensively halting.
			break
		}
		if instr.Op.AltersFlags() {
			p.Flags.apply(out, carried)
		}

		if p.DebugMode == DebugVerbose && instr.Op != OpBrk {
			p.Log.WithFields(logrus.Fields{"ip": p.IP - 1, "op": instr.Op.String()}).Debug("executed instruction")
			p.Observer.MemoryWrite(debugAddress, instr.String())
		}

		wroteMemory := p.writeback(instr, out)
		if p.DebugMode == DebugStepByStep {
			p.Working = false
			break
		}
		if wroteMemory {
			break
		}
	}

	p.Underloaded = stalled
	if stalled {
		p.stalledTicks++
		if p.stalledTicks >= warnStallThreshold {
			p.Log.WithField("ip", p.IP).Warn("stalled for multiple consecutive ticks; host may be missing a Memory/Channel response")
		}
	} else {
		p.stalledTicks = 0
	}
	p.flushOutputs()
	return nil
}

// flushOutputs delivers ChannelWrite for every set output latch, in
// ascending channel-index order, then clears them.
func (p *Processor) flushOutputs() {
	for i := range p.Out {
		if !p.Out[i].Set {
			continue
		}
		p.Observer.ChannelWrite(uint32(i), p.Out[i].Value.AsString())
		p.Out[i] = outputLatch{}
	}
}
