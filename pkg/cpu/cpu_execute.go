package cpu

import "rv64emu/pkg/trap"

// Opcode values (bits [6:0] of the instruction word).
const (
	opLoad    = 0x03
	opMiscMem = 0x0f
	opOpImm   = 0x13
	opAuipc   = 0x17
	opOpImm32 = 0x1b
	opStore   = 0x23
	opAmo     = 0x2f
	opOp      = 0x33
	opLui     = 0x37
	opOp32    = 0x3b
	opBranch  = 0x63
	opJalr    = 0x67
	opJal     = 0x6f
	opSystem  = 0x73
)

// execute decodes and runs one instruction. instPC is the address the
// instruction was fetched from (Step also records it in mepc/sepc when
// the instruction faults) and, for JAL/JALR/branches, as the base of any PC-relative
// computation — spec.md §7 requires using the *original* PC regardless
// of how the implementation sequences the PC += 4 bookkeeping.
func (h *Hart) execute(inst uint32, instPC uint64) error {
	switch opcode(inst) {
	case opLui:
		h.X.Write(rd(inst), uImm(inst))
	case opAuipc:
		h.X.Write(rd(inst), instPC+uImm(inst))
	case opJal:
		h.X.Write(rd(inst), h.PC)
		target := instPC + jImm(inst)
		if target%4 != 0 {
			return trap.NewError(trap.InstructionAddressMisaligned)
		}
		h.PC = target
	case opJalr:
		link := h.PC
		target := (h.X.Read(rs1(inst)) + iImm(inst)) &^ 1
		if target%4 != 0 {
			return trap.NewError(trap.InstructionAddressMisaligned)
		}
		h.X.Write(rd(inst), link)
		h.PC = target
	case opBranch:
		return h.execBranch(inst, instPC)
	case opOpImm:
		return h.execOpImm(inst, false)
	case opOpImm32:
		return h.execOpImm(inst, true)
	case opOp:
		return h.execOp(inst, false)
	case opOp32:
		return h.execOp(inst, true)
	case opLoad:
		return h.execLoad(inst)
	case opStore:
		return h.execStore(inst)
	case opAmo:
		return h.execAmo(inst)
	case opMiscMem:
		// FENCE/FENCE.I: this core executes instructions in program
		// order on a single hart with no caching to flush, so both are
		// no-ops, per spec.md's non-goal on memory-model fidelity.
		return nil
	case opSystem:
		return h.execSystem(inst)
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
	return nil
}

func (h *Hart) execBranch(inst uint32, instPC uint64) error {
	a, b := h.X.Read(rs1(inst)), h.X.Read(rs2(inst))
	var taken bool
	switch funct3(inst) {
	case 0b000: // BEQ
		taken = a == b
	case 0b001: // BNE
		taken = a != b
	case 0b100: // BLT
		taken = int64(a) < int64(b)
	case 0b101: // BGE
		taken = int64(a) >= int64(b)
	case 0b110: // BLTU
		taken = a < b
	case 0b111: // BGEU
		taken = a >= b
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
	if taken {
		target := instPC + bImm(inst)
		if target%4 != 0 {
			return trap.NewError(trap.InstructionAddressMisaligned)
		}
		h.PC = target
	}
	return nil
}
