package cpu

import (
	"rv64emu/pkg/mmu"
	"rv64emu/pkg/trap"
)

func (h *Hart) loadVirt(va uint64, size int, signed bool) (uint64, error) {
	phys, err := h.translate(va, mmu.Load)
	if err != nil {
		return 0, err
	}
	if signed {
		v, err := h.Bus.LoadInt(phys, size)
		if err != nil {
			return 0, trap.NewError(trap.LoadAccessFault)
		}
		return v, nil
	}
	v, err := h.Bus.LoadUint(phys, size)
	if err != nil {
		return 0, trap.NewError(trap.LoadAccessFault)
	}
	return v, nil
}

func (h *Hart) storeVirt(va uint64, size int, value uint64) error {
	phys, err := h.translate(va, mmu.Store)
	if err != nil {
		return err
	}
	if err := h.Bus.StoreUint(phys, size, value); err != nil {
		return trap.NewError(trap.StoreAMOAccessFault)
	}
	return nil
}

// execLoad handles the LOAD opcode: LB/LH/LW/LD (sign-extending) and
// LBU/LHU/LWU (zero-extending).
func (h *Hart) execLoad(inst uint32) error {
	addr := h.X.Read(rs1(inst)) + iImm(inst)
	var size int
	var signed bool
	switch funct3(inst) {
	case 0b000:
		size, signed = 1, true
	case 0b001:
		size, signed = 2, true
	case 0b010:
		size, signed = 4, true
	case 0b011:
		size, signed = 8, true
	case 0b100:
		size, signed = 1, false
	case 0b101:
		size, signed = 2, false
	case 0b110:
		size, signed = 4, false
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
	if !aligned(addr, size) {
		return trap.NewError(trap.LoadAddressMisaligned)
	}
	v, err := h.loadVirt(addr, size, signed)
	if err != nil {
		return err
	}
	h.X.Write(rd(inst), v)
	return nil
}

// execStore handles the STORE opcode: SB/SH/SW/SD.
func (h *Hart) execStore(inst uint32) error {
	addr := h.X.Read(rs1(inst)) + sImm(inst)
	var size int
	switch funct3(inst) {
	case 0b000:
		size = 1
	case 0b001:
		size = 2
	case 0b010:
		size = 4
	case 0b011:
		size = 8
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
	if !aligned(addr, size) {
		return trap.NewError(trap.StoreAMOAddressMisaligned)
	}
	return h.storeVirt(addr, size, h.X.Read(rs2(inst)))
}

// execAmo handles the A-extension atomic-memory-operation group: LR.W/D,
// SC.W/D, and the AMO*.W/D read-modify-write instructions. This design
// targets a single hart, so LR/SC need no reservation tracking: LR
// always succeeds and SC always succeeds (writes and reports success),
// per spec.md's non-goal on multi-hart memory ordering.
func (h *Hart) execAmo(inst uint32) error {
	size := 4
	if funct3(inst) == 0b011 {
		size = 8
	} else if funct3(inst) != 0b010 {
		return trap.NewError(trap.IllegalInstruction)
	}
	addr := h.X.Read(rs1(inst))
	if !aligned(addr, size) {
		return trap.NewError(trap.LoadAddressMisaligned)
	}
	funct5 := funct7(inst) >> 2

	switch funct5 {
	case 0b00010: // LR
		v, err := h.loadVirt(addr, size, true)
		if err != nil {
			return err
		}
		h.X.Write(rd(inst), v)
		return nil
	case 0b00011: // SC: always succeeds (returns 0) on a single hart.
		if err := h.storeVirt(addr, size, h.X.Read(rs2(inst))); err != nil {
			return err
		}
		h.X.Write(rd(inst), 0)
		return nil
	}

	old, err := h.loadVirt(addr, size, true)
	if err != nil {
		return err
	}
	rs2v := h.X.Read(rs2(inst))
	var result uint64
	switch funct5 {
	case 0b00001: // AMOSWAP
		result = rs2v
	case 0b00000: // AMOADD
		result = old + rs2v
	case 0b00100: // AMOXOR
		result = old ^ rs2v
	case 0b01100: // AMOAND
		result = old & rs2v
	case 0b01000: // AMOOR
		result = old | rs2v
	case 0b10000: // AMOMIN
		result = minU64As(int64(old), int64(rs2v))
	case 0b10100: // AMOMAX
		result = maxU64As(int64(old), int64(rs2v))
	case 0b11000: // AMOMINU
		result = minU64(old, rs2v)
	case 0b11100: // AMOMAXU
		result = maxU64(old, rs2v)
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
	if size == 4 {
		result = uint64(int64(int32(result)))
	}
	if err := h.storeVirt(addr, size, result); err != nil {
		return err
	}
	h.X.Write(rd(inst), old)
	return nil
}

func aligned(addr uint64, size int) bool { return addr%uint64(size) == 0 }

func minU64As(a, b int64) uint64 {
	if a < b {
		return uint64(a)
	}
	return uint64(b)
}

func maxU64As(a, b int64) uint64 {
	if a > b {
		return uint64(a)
	}
	return uint64(b)
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
