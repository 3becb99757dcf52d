package cpu

import (
	"rv64emu/pkg/csr"
	"rv64emu/pkg/trap"
)

// execSystem handles the SYSTEM opcode: ECALL/EBREAK, the six CSR
// read-modify-write instructions, SRET/MRET, WFI, and SFENCE.VMA.
func (h *Hart) execSystem(inst uint32) error {
	switch funct3(inst) {
	case 0b000:
		return h.execPrivileged(inst)
	case 0b001, 0b010, 0b011, 0b101, 0b110, 0b111:
		return h.execCSR(inst)
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
}

func (h *Hart) execPrivileged(inst uint32) error {
	imm := uint32(inst) >> 20
	switch {
	case imm == 0x000: // ECALL
		switch h.Mode {
		case csr.User:
			return trap.NewError(trap.EnvironmentCallFromUMode)
		case csr.Supervisor:
			return trap.NewError(trap.EnvironmentCallFromSMode)
		default:
			return trap.NewError(trap.EnvironmentCallFromMMode)
		}
	case imm == 0x001: // EBREAK
		return trap.NewError(trap.Breakpoint)
	case imm == 0x102: // SRET
		h.execSRET()
		return nil
	case imm == 0x302: // MRET
		h.execMRET()
		return nil
	case imm == 0x105: // WFI: no-op. There is nothing this core gains by
		// actually halting the goroutine — the next Step call will just
		// find no pending interrupt and fall through.
		return nil
	case funct7(inst) == 0b0001001: // SFENCE.VMA: no-op. This design has
		// no TLB to flush; a real walk runs on every translation.
		return nil
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
}

// execSRET returns from a supervisor trap: PC <- sepc, SIE <- SPIE,
// SPIE <- 1, mode <- SPP, SPP <- U (spec.md §4.4).
func (h *Hart) execSRET() {
	h.PC = h.CSR.Read(csr.SEPC)
	h.Mode = h.CSR.SPP()
	h.CSR.SetSIE(h.CSR.SPIE())
	h.CSR.SetSPIE(true)
	h.CSR.SetSPP(csr.User)
}

// execMRET returns from a machine trap: PC <- mepc, MIE <- MPIE,
// MPIE <- 1, mode <- MPP, MPP <- U (spec.md §4.4).
func (h *Hart) execMRET() {
	h.PC = h.CSR.Read(csr.MEPC)
	h.Mode = h.CSR.MPP()
	h.CSR.SetMIE(h.CSR.MPIE())
	h.CSR.SetMPIE(true)
	h.CSR.SetMPP(csr.User)
}

// execCSR handles CSRRW/CSRRS/CSRRC and their immediate-operand forms.
// All six follow the same read-then-conditionally-write shape spec.md
// §4.3 describes, differing only in where the write-side operand comes
// from (a register or the 5-bit zimm field) and how it combines with
// the old value.
func (h *Hart) execCSR(inst uint32) error {
	addr := int(inst>>20) & 0xfff
	old := h.CSR.Read(addr)

	var operand uint64
	immForm := funct3(inst)&0b100 != 0
	if immForm {
		operand = uint64(rs1(inst))
	} else {
		operand = h.X.Read(rs1(inst))
	}

	// CSRRS/CSRRC (and their immediate forms) skip the write entirely
	// when the source operand field is x0/zimm==0 — reading a CSR with
	// no side effect is the documented use of rs1==x0 here.
	writesCSR := true
	var next uint64
	switch funct3(inst) & 0b011 {
	case 0b01: // CSRRW/CSRRWI
		next = operand
	case 0b10: // CSRRS/CSRRSI
		next = old | operand
		writesCSR = rs1(inst) != 0
	case 0b11: // CSRRC/CSRRCI
		next = old &^ operand
		writesCSR = rs1(inst) != 0
	default:
		return trap.NewError(trap.IllegalInstruction)
	}
	if writesCSR {
		h.CSR.Write(addr, next)
	}
	h.X.Write(rd(inst), old)
	return nil
}
