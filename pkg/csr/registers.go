package csr

// names are the RISC-V ABI names for x0..x31, used only by DumpRegs.
// Lifted from pyfive/cpu.py's XRegisters._xnames.
var names = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegisterName returns the ABI name of x register i, or "x?" if out of
// range.
func RegisterName(i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return "x?"
}

// XRegisters is the general-purpose register file. x0 is hard-wired to
// zero: reads always return 0 and writes are silently dropped.
type XRegisters struct {
	regs [32]uint64
}

// Reset sets x2 (the stack pointer) to the top of DRAM, per spec.md §3,
// and zeroes every other register.
func (x *XRegisters) Reset(dramTop uint64) {
	x.regs = [32]uint64{}
	x.regs[2] = dramTop
}

// Read returns the value of register i. x0 always reads as 0.
func (x *XRegisters) Read(i int) uint64 {
	if i == 0 {
		return 0
	}
	return x.regs[i]
}

// Write stores value into register i. Writes to x0 are ignored.
func (x *XRegisters) Write(i int, value uint64) {
	if i == 0 {
		return
	}
	x.regs[i] = value
}
