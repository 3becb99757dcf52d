package cpu

import "rv64emu/pkg/trap"

// execOpImm handles OP-IMM (w32=false) and OP-IMM-32 (w32=true): the
// register-immediate integer group. ADDI/SLTI/.../SRAI and their *W
// 32-bit-result variants.
func (h *Hart) execOpImm(inst uint32, w32 bool) error {
	a := h.X.Read(rs1(inst))
	imm := iImm(inst)
	var result uint64
	switch funct3(inst) {
	case 0b000: // ADDI / ADDIW
		result = a + imm
	case 0b010: // SLTI
		result = boolUint(int64(a) < int64(imm))
	case 0b011: // SLTIU
		result = boolUint(a < imm)
	case 0b100: // XORI
		result = a ^ imm
	case 0b110: // ORI
		result = a | imm
	case 0b111: // ANDI
		result = a & imm
	case 0b001: // SLLI / SLLIW
		result = a << shiftAmount(inst, w32)
	case 0b101: // SRLI/SRAI / SRLIW/SRAIW
		sh := shiftAmount(inst, w32)
		if funct7(inst)&0x20 != 0 {
			if w32 {
				result = uint64(int64(int32(a)) >> sh)
			} else {
				result = uint64(int64(a) >> sh)
			}
		} else {
			if w32 {
				result = uint64(uint32(a) >> sh)
			} else {
				result = a >> sh
			}
		}
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
	if w32 {
		result = uint64(int64(int32(result)))
	}
	h.X.Write(rd(inst), result)
	return nil
}

// shiftAmount returns the shift count: 5 bits for the 32-bit-result
// SLLIW/SRLIW/SRAIW family, 6 bits otherwise (RV64's full register
// width).
func shiftAmount(inst uint32, w32 bool) uint64 {
	if w32 {
		return uint64(shamt32(inst))
	}
	return uint64(shamt64(inst))
}

// execOp handles OP (w32=false) and OP-32 (w32=true): the
// register-register integer group, including the M-extension
// multiply/divide/remainder instructions (funct7 == 0b0000001).
func (h *Hart) execOp(inst uint32, w32 bool) error {
	a, b := h.X.Read(rs1(inst)), h.X.Read(rs2(inst))
	if w32 {
		a = uint64(int64(int32(a)))
		b = uint64(int64(int32(b)))
	}
	f7 := funct7(inst)
	var result uint64
	var err error
	switch {
	case f7 == 0b0000001:
		result, err = h.execMulDiv(inst, a, b, w32)
	default:
		result, err = execAlu(inst, a, b, w32)
	}
	if err != nil {
		return err
	}
	if w32 {
		result = uint64(int64(int32(result)))
	}
	h.X.Write(rd(inst), result)
	return nil
}

func execAlu(inst uint32, a, b uint64, w32 bool) (uint64, error) {
	shiftMask := uint64(63)
	if w32 {
		shiftMask = 31
	}
	switch funct3(inst) {
	case 0b000: // ADD/SUB, ADDW/SUBW
		if funct7(inst)&0x20 != 0 {
			return a - b, nil
		}
		return a + b, nil
	case 0b001: // SLL/SLLW
		return a << (b & shiftMask), nil
	case 0b010: // SLT
		return boolUint(int64(a) < int64(b)), nil
	case 0b011: // SLTU
		return boolUint(a < b), nil
	case 0b100: // XOR
		return a ^ b, nil
	case 0b101: // SRL/SRA, SRLW/SRAW
		sh := b & shiftMask
		if funct7(inst)&0x20 != 0 {
			if w32 {
				return uint64(int64(int32(a)) >> sh), nil
			}
			return uint64(int64(a) >> sh), nil
		}
		if w32 {
			return uint64(uint32(a) >> sh), nil
		}
		return a >> sh, nil
	case 0b110: // OR
		return a | b, nil
	case 0b111: // AND
		return a & b, nil
	default:
		return 0, trap.NewError(trap.IllegalInstruction)
	}
}

// execMulDiv handles the M extension: MUL/MULH/MULHSU/MULHU and
// DIV/DIVU/REM/REMU, plus their *W 32-bit variants. Division by zero
// and the INT_MIN/-1 overflow case follow the RISC-V spec's defined
// (non-trapping) results, not a machine fault.
func (h *Hart) execMulDiv(inst uint32, a, b uint64, w32 bool) (uint64, error) {
	switch funct3(inst) {
	case 0b000: // MUL/MULW
		return a * b, nil
	case 0b001: // MULH
		return uint64(mulHighSigned(int64(a), int64(b))), nil
	case 0b010: // MULHSU
		return uint64(mulHighSignedUnsigned(int64(a), b)), nil
	case 0b011: // MULHU
		return mulHighUnsigned(a, b), nil
	case 0b100: // DIV/DIVW
		sa, sb := int64(a), int64(b)
		if sb == 0 {
			return ^uint64(0), nil
		}
		if sa == minInt64 && sb == -1 {
			return uint64(sa), nil
		}
		return uint64(sa / sb), nil
	case 0b101: // DIVU/DIVUW
		ua, ub := a, b
		if w32 {
			// execOp sign-extends both operands for every w32 op, but
			// DIVUW/REMUW need the *zero*-extended low 32 bits (RISC-V
			// manual): re-derive them here instead of dividing the
			// sign-extended 64-bit values.
			ua, ub = uint64(uint32(a)), uint64(uint32(b))
		}
		if ub == 0 {
			return ^uint64(0), nil
		}
		return ua / ub, nil
	case 0b110: // REM/REMW
		sa, sb := int64(a), int64(b)
		if sb == 0 {
			return uint64(sa), nil
		}
		if sa == minInt64 && sb == -1 {
			return 0, nil
		}
		return uint64(sa % sb), nil
	case 0b111: // REMU/REMUW
		ua, ub := a, b
		if w32 {
			ua, ub = uint64(uint32(a)), uint64(uint32(b))
		}
		if ub == 0 {
			return ua, nil
		}
		return ua % ub, nil
	default:
		return 0, trap.NewError(trap.IllegalInstruction)
	}
}

const minInt64 = -1 << 63

func boolUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func mulHighUnsigned(a, b uint64) uint64 {
	const mask = 0xffffffff
	aLo, aHi := a&mask, a>>32
	bLo, bHi := b&mask, b>>32

	lo := aLo * bLo
	mid1 := aHi * bLo
	mid2 := aLo * bHi
	hi := aHi * bHi

	carry := ((lo >> 32) + (mid1 & mask) + (mid2 & mask)) >> 32
	return hi + (mid1 >> 32) + (mid2 >> 32) + carry
}

func mulHighSigned(a, b int64) int64 {
	negA, negB := a < 0, b < 0
	ua, ub := uint64(a), uint64(b)
	if negA {
		ua = uint64(-a)
	}
	if negB {
		ub = uint64(-b)
	}
	hi := mulHighUnsigned(ua, ub)
	lo := ua * ub
	if negA != negB {
		hi = ^hi
		if lo == 0 {
			hi++
		}
	}
	return int64(hi)
}

func mulHighSignedUnsigned(a int64, b uint64) int64 {
	neg := a < 0
	ua := uint64(a)
	if neg {
		ua = uint64(-a)
	}
	hi := mulHighUnsigned(ua, b)
	lo := ua * b
	if neg {
		hi = ^hi
		if lo == 0 {
			hi++
		}
	}
	return int64(hi)
}
