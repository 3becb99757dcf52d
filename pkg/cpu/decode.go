package cpu

// Instruction field extraction and immediate decoding, one function per
// RISC-V instruction format. Grounded on pyfive/cpu.py's decode helpers
// (itype_imm/stype_imm/btype_imm/utype_imm/jtype_imm), which this
// mirrors one-for-one; the teacher's pkg/asm/instruction.go shows the
// same bitfield-extraction idiom for its own (much smaller) 16-bit
// instruction word.

func opcode(inst uint32) uint32  { return inst & 0x7f }
func rd(inst uint32) int         { return int((inst >> 7) & 0x1f) }
func funct3(inst uint32) uint32  { return (inst >> 12) & 0x7 }
func rs1(inst uint32) int        { return int((inst >> 15) & 0x1f) }
func rs2(inst uint32) int        { return int((inst >> 20) & 0x1f) }
func funct7(inst uint32) uint32  { return (inst >> 25) & 0x7f }
func shamt32(inst uint32) uint32 { return (inst >> 20) & 0x1f }
func shamt64(inst uint32) uint32 { return (inst >> 20) & 0x3f }

// iImm decodes the I-type sign-extended 12-bit immediate.
func iImm(inst uint32) uint64 {
	v := int32(inst) >> 20
	return uint64(int64(v))
}

// sImm decodes the S-type sign-extended 12-bit immediate.
func sImm(inst uint32) uint64 {
	hi := (inst >> 25) & 0x7f
	lo := (inst >> 7) & 0x1f
	v := (hi << 5) | lo
	return signExtend(uint64(v), 12)
}

// bImm decodes the B-type sign-extended 13-bit immediate (bit 0 always
// zero: branch targets are 2-byte aligned at the encoding level, though
// this core only ever fetches on a 4-byte boundary).
func bImm(inst uint32) uint64 {
	b12 := (inst >> 31) & 1
	b10_5 := (inst >> 25) & 0x3f
	b4_1 := (inst >> 8) & 0xf
	b11 := (inst >> 7) & 1
	v := (b12 << 12) | (b11 << 11) | (b10_5 << 5) | (b4_1 << 1)
	return signExtend(uint64(v), 13)
}

// uImm decodes the U-type immediate: the top 20 bits, already
// positioned, low 12 bits zero.
func uImm(inst uint32) uint64 {
	return signExtend(uint64(inst&0xfffff000), 32)
}

// jImm decodes the J-type sign-extended 21-bit immediate.
func jImm(inst uint32) uint64 {
	b20 := (inst >> 31) & 1
	b10_1 := (inst >> 21) & 0x3ff
	b11 := (inst >> 20) & 1
	b19_12 := (inst >> 12) & 0xff
	v := (b20 << 20) | (b19_12 << 12) | (b11 << 11) | (b10_1 << 1)
	return signExtend(uint64(v), 21)
}

// signExtend sign-extends the low `bits` bits of v to a full 64-bit
// two's-complement value.
func signExtend(v uint64, bits uint) uint64 {
	shift := 64 - bits
	return uint64(int64(v<<shift) >> shift)
}
