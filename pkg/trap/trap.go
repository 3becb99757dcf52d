// Package trap defines the RISC-V exception and interrupt enumerations
// and the trap value the CPU pipeline passes between fetch/decode/execute
// and the handler that delegates it to S-mode or M-mode.
package trap

import "fmt"

// Exception identifies a synchronous architectural fault. The numeric
// values match the RISC-V privileged ISA's mcause/scause exception codes.
type Exception uint64

const (
	InstructionAddressMisaligned Exception = 0
	InstructionAccessFault       Exception = 1
	IllegalInstruction           Exception = 2
	Breakpoint                   Exception = 3
	LoadAddressMisaligned        Exception = 4
	LoadAccessFault              Exception = 5
	StoreAMOAddressMisaligned    Exception = 6
	StoreAMOAccessFault          Exception = 7
	EnvironmentCallFromUMode     Exception = 8
	EnvironmentCallFromSMode     Exception = 9
	EnvironmentCallFromMMode     Exception = 11
	InstructionPageFault         Exception = 12
	LoadPageFault                Exception = 13
	StoreAMOPageFault            Exception = 15
)

func (e Exception) String() string {
	switch e {
	case InstructionAddressMisaligned:
		return "instruction address misaligned"
	case InstructionAccessFault:
		return "instruction access fault"
	case IllegalInstruction:
		return "illegal instruction"
	case Breakpoint:
		return "breakpoint"
	case LoadAddressMisaligned:
		return "load address misaligned"
	case LoadAccessFault:
		return "load access fault"
	case StoreAMOAddressMisaligned:
		return "store/amo address misaligned"
	case StoreAMOAccessFault:
		return "store/amo access fault"
	case EnvironmentCallFromUMode:
		return "environment call from u-mode"
	case EnvironmentCallFromSMode:
		return "environment call from s-mode"
	case EnvironmentCallFromMMode:
		return "environment call from m-mode"
	case InstructionPageFault:
		return "instruction page fault"
	case LoadPageFault:
		return "load page fault"
	case StoreAMOPageFault:
		return "store/amo page fault"
	default:
		return fmt.Sprintf("exception(%d)", uint64(e))
	}
}

// Fatal reports whether this exception is in the set spec.md §4.5 calls
// "fatal" — the ones the reference kernel target never expects to see
// delivered as a real trap, so the emulator dumps registers and exits
// instead. Left configurable: see internal/config.Config.AbortOnFatalTrap.
func (e Exception) Fatal() bool {
	switch e {
	case InstructionAddressMisaligned, InstructionAccessFault, IllegalInstruction,
		LoadAccessFault, StoreAMOAddressMisaligned, StoreAMOAccessFault:
		return true
	default:
		return false
	}
}

// Interrupt identifies an asynchronous trap source. Values match the
// RISC-V mip/mie bit positions, which is also the mcause encoding once
// ORed with the interrupt bit.
type Interrupt uint64

const (
	UserSoftwareInterrupt       Interrupt = 0
	SupervisorSoftwareInterrupt Interrupt = 1
	MachineSoftwareInterrupt    Interrupt = 3
	UserTimerInterrupt          Interrupt = 4
	SupervisorTimerInterrupt    Interrupt = 5
	MachineTimerInterrupt       Interrupt = 7
	UserExternalInterrupt       Interrupt = 8
	SupervisorExternalInterrupt Interrupt = 9
	MachineExternalInterrupt    Interrupt = 11
)

func (i Interrupt) String() string {
	switch i {
	case SupervisorSoftwareInterrupt:
		return "supervisor software interrupt"
	case MachineSoftwareInterrupt:
		return "machine software interrupt"
	case SupervisorTimerInterrupt:
		return "supervisor timer interrupt"
	case MachineTimerInterrupt:
		return "machine timer interrupt"
	case SupervisorExternalInterrupt:
		return "supervisor external interrupt"
	case MachineExternalInterrupt:
		return "machine external interrupt"
	default:
		return fmt.Sprintf("interrupt(%d)", uint64(i))
	}
}

// Bit is the bit in MIE/MIP each of the six interrupt sources the trap
// pipeline arbitrates between actually occupies. The CLINT drives only
// MTIP and the PLIC drives only SEIP; the supervisor aliases are
// derived from MIE/MIP through MIDELEG.
func (i Interrupt) Bit() uint64 { return 1 << uint64(i) }

// Cause is the (cause, is_interrupt, tval, PC) tuple the dispatcher hands
// to the trap pipeline. tval is always 0 in this design: none of the
// exception sources in scope (§4.5) populate a faulting address.
type Cause struct {
	Exception   Exception
	Interrupt   Interrupt
	IsInterrupt bool
	PC          uint64
}

// ExceptionCause builds a Cause for a synchronous fault raised at pc.
func ExceptionCause(e Exception, pc uint64) Cause {
	return Cause{Exception: e, PC: pc}
}

// InterruptCause builds a Cause for an asynchronous interrupt.
func InterruptCause(i Interrupt, pc uint64) Cause {
	return Cause{Interrupt: i, IsInterrupt: true, PC: pc}
}

// Code returns the raw cause value: the exception or interrupt number,
// with the top bit set when IsInterrupt is true, as stored in
// {m,s}cause.
func (c Cause) Code() uint64 {
	if c.IsInterrupt {
		return (uint64(1) << 63) | uint64(c.Interrupt)
	}
	return uint64(c.Exception)
}

func (c Cause) String() string {
	if c.IsInterrupt {
		return c.Interrupt.String()
	}
	return c.Exception.String()
}

// Fatal mirrors Exception.Fatal; interrupts are never fatal.
func (c Cause) Fatal() bool {
	return !c.IsInterrupt && c.Exception.Fatal()
}

// excError adapts an Exception to the error interface, so bus, MMU, and
// fetch/decode/execute paths can all return architectural faults
// through a plain `error` return without importing each other's types.
type excError struct{ exc Exception }

func (e excError) Error() string { return e.exc.String() }

// NewError wraps exc as an error value.
func NewError(exc Exception) error { return excError{exc} }

// AsException extracts the Exception carried by an error produced by
// NewError, if any.
func AsException(err error) (Exception, bool) {
	if e, ok := err.(excError); ok {
		return e.exc, true
	}
	return 0, false
}
