package cpu

// Flags holds the processor's four status bits. They are updated after
// every instruction that produces a result, using the selected output
// kind; instructions that do not arithmetically alter their target
// (nop, jmp*, brk) leave them untouched.
type Flags struct {
	CF bool
	ZF bool
	SF bool
	OF bool
}

// asBits packs the flags as OF<<3 | SF<<2 | ZF<<1 | CF, the layout `flr`
// reads and `fls` writes.
func (f Flags) asBits() int32 {
	var b int32
	if f.OF {
		b |= 1 << 3
	}
	if f.SF {
		b |= 1 << 2
	}
	if f.ZF {
		b |= 1 << 1
	}
	if f.CF {
		b |= 1 << 0
	}
	return b
}

func flagsFromBits(bits int32) Flags {
	return Flags{
		CF: bits&(1<<0) != 0,
		ZF: bits&(1<<1) != 0,
		SF: bits&(1<<2) != 0,
		OF: bits&(1<<3) != 0,
	}
}

// applyInt sets flags from a 32-bit signed output plus whether the wide
// accumulator that produced it carried into its upper 32 bits.
//
// OF is defined here as SF XOR CF rather than the textual "CF XOR (NOT SF)"
// formula: the latter does not reproduce the pinned 0x7FFFFFFF+1 scenario
// (SF=1, CF=0 must yield OF=1), so the worked example is treated as
// authoritative over the prose. See DESIGN.md.
func (f *Flags) applyInt(out int32, carried bool) {
	f.SF = out < 0
	f.ZF = out == 0
	f.CF = carried
	f.OF = f.SF != f.CF
}

// applyFloat sets flags from a float output; CF/OF are left untouched.
func (f *Flags) applyFloat(out float32) {
	f.SF = out < 0
	f.ZF = out == 0
}

// applyString sets flags from a string output; only ZF changes.
func (f *Flags) applyString(out string) {
	f.ZF = out == ""
}

// apply sets the flags from out using out's selected kind to pick which
// rule applies. carried is only consulted on the int path, where it feeds
// CF.
func (f *Flags) apply(out Value, carried bool) {
	switch out.SelectedKind() {
	case KindInt:
		f.applyInt(out.i, carried)
	case KindFloat:
		f.applyFloat(out.f)
	case KindString:
		f.applyString(out.s)
	}
}

// wideAdd/wideSub/wideMul compute 32-bit wrapped results and report whether
// the 64-bit accumulator that produced them touched its upper half -- the
// definition of integer carry used throughout this package.
func wideAdd(a, b int32) (out int32, carried bool) {
	acc := uint64(uint32(a)) + uint64(uint32(b))
	return int32(uint32(acc)), acc>>32 != 0
}

func wideSub(a, b int32) (out int32, carried bool) {
	acc := uint64(uint32(a)) - uint64(uint32(b))
	return int32(uint32(acc)), acc>>32 != 0
}

func wideMul(a, b int32) (out int32, carried bool) {
	acc := uint64(uint32(a)) * uint64(uint32(b))
	return int32(uint32(acc)), acc>>32 != 0
}
