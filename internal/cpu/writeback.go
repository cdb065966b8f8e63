package cpu

// writeback stores out into arg1, if arg1 is declared writable. It
// reports wroteMemory=true when the target was a memory reference, so
// the caller ends the tick (one memory write per tick).
func (p *Processor) writeback(instr Opcode, out Value) (wroteMemory bool) {
	spec := instr.Op.Spec()
	if len(spec.Operands) == 0 || !spec.Operands[0].Write {
		return false
	}
	arg1 := instr.Args[0]

	if arg1.IsRef {
		addr := p.resolveRefAddress(arg1)
		p.Observer.MemoryWrite(addr, out.AsString())
		return true
	}

	switch arg1.Reg {
	case RegIR:
		p.IR[arg1.Index] = out.AsInt()
	case RegFR:
		p.FR[arg1.Index] = out.AsFloat()
	case RegSR:
		p.SR[arg1.Index] = out.AsString()
	case RegOU:
		p.Out[arg1.Index] = outputLatch{Value: out, Set: true}
	}
	return false
}
