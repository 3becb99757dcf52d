// Package clint implements the core-local interruptor: the mtime/
// mtimecmp register pair that drives the machine timer interrupt.
// Grounded on pyfive/clint.py's Clint class (load64/store64 match on
// offset), generalized from a single enum-keyed switch to Go constants.
package clint

// Register offsets within the CLINT MMIO window (spec.md §6).
const (
	MTimeCmp = 0x4000
	MTime    = 0xbff8
)

// Clint holds the two 64-bit registers. There is exactly one mtimecmp
// because this design targets a single hart (spec.md's non-goal on
// SMP).
type Clint struct {
	MTime    uint64
	MTimeCmp uint64
}

// New returns a zeroed CLINT.
func New() *Clint { return &Clint{} }

// Load64 reads an 8-byte register. CLINT accepts 8-byte accesses only
// (spec.md §6); any other offset reads as 0.
func (c *Clint) Load64(addr uint64) uint64 {
	switch addr {
	case MTimeCmp:
		return c.MTimeCmp
	case MTime:
		return c.MTime
	default:
		return 0
	}
}

// Store64 writes an 8-byte register.
func (c *Clint) Store64(addr, value uint64) {
	switch addr {
	case MTimeCmp:
		c.MTimeCmp = value
	case MTime:
		c.MTime = value
	}
}

// Tick advances mtime by one unit. The emulator core calls this once
// per fetched instruction (there is no cycle-accurate timing in scope,
// per spec.md's non-goals).
func (c *Clint) Tick() { c.MTime++ }

// TimerPending reports whether the machine timer interrupt condition
// holds: mtimecmp is nonzero and mtime has reached or passed it.
func (c *Clint) TimerPending() bool {
	return c.MTimeCmp != 0 && c.MTime >= c.MTimeCmp
}
