package cpu

// Observer decouples the processor core from whatever hosts it (a CLI
// debugger, a test harness, a future networked front-end): the processor
// calls these hooks as side effects land, but never blocks waiting on them.
//
// MemoryRead fires when a memory-reference fetch issues a new outstanding
// request (the address, not yet a value -- the value arrives later via the
// host's Processor.Memory callback).
// MemoryWrite fires after a memory-reference writeback commits, carrying
// the stringified output.
// ChannelWrite fires at the end of a tick, once for each output latch set
// during that tick, in ascending channel index order.
type Observer interface {
	MemoryRead(address uint32)
	MemoryWrite(address uint32, value string)
	ChannelWrite(index uint32, value string)
}

// NopObserver implements Observer with no-ops; it is the Processor's
// default so callers who don't care about side-channel visibility don't
// have to provide a stub.
type NopObserver struct{}

func (NopObserver) MemoryRead(uint32)          {}
func (NopObserver) MemoryWrite(uint32, string) {}
func (NopObserver) ChannelWrite(uint32, string) {}
