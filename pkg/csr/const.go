package csr

// Machine-level CSR addresses. Named after pyfive/cpu.py's `consts`
// namespace (the Python program this spec was distilled from), which
// keeps the same names and the same hex addresses.
const (
	MHARTID  = 0xf14
	MSTATUS  = 0x300
	MEDELEG  = 0x302
	MIDELEG  = 0x303
	MIE      = 0x304
	MTVEC    = 0x305
	MCOUNTEREN = 0x306
	MSCRATCH = 0x340
	MEPC     = 0x341
	MCAUSE   = 0x342
	MTVAL    = 0x343
	MIP      = 0x344
)

// Supervisor-level CSR addresses.
const (
	SSTATUS  = 0x100
	SIE      = 0x104
	STVEC    = 0x105
	SSCRATCH = 0x140
	SEPC     = 0x141
	SCAUSE   = 0x142
	STVAL    = 0x143
	SIP      = 0x144
	SATP     = 0x180
)

// mstatus/sstatus bit positions used by the trap pipeline and SRET/MRET.
const (
	sstatusSIEBit  = 1
	sstatusSPIEBit = 5
	sstatusSPPBit  = 8

	mstatusMIEBit  = 3
	mstatusMPIEBit = 7
	mstatusMPPLow  = 11 // MPP is a 2-bit field at [12:11]
)

// sstatusMask selects the bits of MSTATUS that the SSTATUS alias
// exposes to S-mode: SIE, SPIE and SPP only. The other S-visible status
// bits (FS/XS/VS, SUM, MXR, ...) are not included, so SSTATUS reads
// them as 0 and SSTATUS writes leave them unchanged.
const sstatusMask = (1 << sstatusSIEBit) | (1 << sstatusSPIEBit) | (1 << sstatusSPPBit)
