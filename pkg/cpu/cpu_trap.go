package cpu

import (
	"rv64emu/pkg/csr"
	"rv64emu/pkg/trap"
)

// interruptPriority is the fixed arbitration order spec.md §8 tests:
// MEIP > MSIP > MTIP > SEIP > SSIP > STIP. The first pending+enabled
// source in this order wins when several fire in the same step.
var interruptPriority = []trap.Interrupt{
	trap.MachineExternalInterrupt,
	trap.MachineSoftwareInterrupt,
	trap.MachineTimerInterrupt,
	trap.SupervisorExternalInterrupt,
	trap.SupervisorSoftwareInterrupt,
	trap.SupervisorTimerInterrupt,
}

// pendingInterrupt returns the highest-priority interrupt that is both
// pending (MIP) and enabled (MIE), and whose delegated target privilege
// is actually allowed to preempt the hart's current mode.
func (h *Hart) pendingInterrupt() (trap.Interrupt, bool) {
	pendingEnabled := h.CSR.RawMachine(csr.MIP) & h.CSR.RawMachine(csr.MIE)
	mideleg := h.CSR.RawMachine(csr.MIDELEG)
	for _, irq := range interruptPriority {
		if pendingEnabled&irq.Bit() == 0 {
			continue
		}
		target := csr.Machine
		if mideleg&irq.Bit() != 0 {
			target = csr.Supervisor
		}
		if h.interruptEnabledFor(target) {
			return irq, true
		}
	}
	return 0, false
}

// interruptEnabledFor implements the privileged spec's rule: a trap
// destined for a mode strictly above the hart's current mode is always
// taken; strictly below, never; at the same mode, only if that mode's
// global interrupt-enable bit is set.
func (h *Hart) interruptEnabledFor(target csr.Mode) bool {
	switch {
	case target > h.Mode:
		return true
	case target < h.Mode:
		return false
	case target == csr.Machine:
		return h.CSR.MIE()
	default:
		return h.CSR.SIE()
	}
}

// delegatedToS reports whether cause should be handled in S-mode: the
// relevant delegation register has the bit set, and the hart isn't
// already in M-mode (a trap never delegates down from M).
func (h *Hart) delegatedToS(cause trap.Cause) bool {
	if h.Mode == csr.Machine {
		return false
	}
	if cause.IsInterrupt {
		return h.CSR.RawMachine(csr.MIDELEG)&cause.Interrupt.Bit() != 0
	}
	return h.CSR.RawMachine(csr.MEDELEG)&(1<<uint64(cause.Exception)) != 0
}

// handleTrap dispatches cause to the S-mode or M-mode trap vector and
// updates the privilege-mode/status-register bookkeeping the return
// instructions (SRET/MRET) expect to find. The caller (Step) is
// responsible for deciding whether a fatal cause should be delivered at
// all, per spec.md §9's AbortOnFatalTrap Open Question — by the time
// handleTrap runs, that decision has already been made.
func (h *Hart) handleTrap(cause trap.Cause) {
	if h.delegatedToS(cause) {
		h.trapToS(cause)
	} else {
		h.trapToM(cause)
	}
}

func (h *Hart) trapToS(cause trap.Cause) {
	h.CSR.SetRawMachine(csr.SEPC, cause.PC)
	h.CSR.SetRawMachine(csr.SCAUSE, cause.Code())
	h.CSR.SetRawMachine(csr.STVAL, 0)
	h.CSR.SetSPP(h.Mode)
	h.CSR.SetSPIE(h.CSR.SIE())
	h.CSR.SetSIE(false)
	h.Mode = csr.Supervisor
	h.PC = trapTarget(h.CSR.Read(csr.STVEC), cause)
}

func (h *Hart) trapToM(cause trap.Cause) {
	h.CSR.SetRawMachine(csr.MEPC, cause.PC)
	h.CSR.SetRawMachine(csr.MCAUSE, cause.Code())
	h.CSR.SetRawMachine(csr.MTVAL, 0)
	h.CSR.SetMPP(h.Mode)
	h.CSR.SetMPIE(h.CSR.MIE())
	h.CSR.SetMIE(false)
	h.Mode = csr.Machine
	h.PC = trapTarget(h.CSR.Read(csr.MTVEC), cause)
}

// trapTarget applies {m,s}tvec's two-bit mode encoding: mode 0 (Direct)
// always jumps to the base address; mode 1 (Vectored) adds 4*cause for
// interrupts only, per the privileged spec.
func trapTarget(tvec uint64, cause trap.Cause) uint64 {
	base := tvec &^ 0x3
	vectored := tvec&0x3 == 1
	if vectored && cause.IsInterrupt {
		return base + 4*uint64(cause.Interrupt)
	}
	return base
}
