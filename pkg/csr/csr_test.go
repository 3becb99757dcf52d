package csr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestX0AlwaysZero(t *testing.T) {
	var x XRegisters
	x.Reset(0x8800_0000)
	x.Write(0, 0xdeadbeef)
	assert.Equal(t, uint64(0), x.Read(0))
	assert.Equal(t, uint64(0x8800_0000), x.Read(2), "sp initialized to dram top")
}

func TestXRegisterReadWrite(t *testing.T) {
	var x XRegisters
	x.Write(5, 42)
	assert.Equal(t, uint64(42), x.Read(5))
}

func TestSATPWriteReconfiguresPaging(t *testing.T) {
	var f File
	assert.False(t, f.PagingEnabled)

	satp := uint64(SatpModeSv39)<<60 | 0x1234
	f.Write(SATP, satp)
	assert.True(t, f.PagingEnabled)
	assert.Equal(t, uint64(0x1234*4096), f.PageTableBase)

	f.Write(SATP, 0)
	assert.False(t, f.PagingEnabled, "mode 0 disables paging")
}

func TestSIEAliasesMIEUnderMIDELEG(t *testing.T) {
	var f File
	f.Write(MIDELEG, 1<<uint64(1)) // delegate supervisor software interrupt only
	f.Write(MIE, 1<<uint64(1)|1<<uint64(3))

	assert.Equal(t, uint64(1)<<1, f.Read(SIE), "SIE only exposes delegated bits")

	f.Write(SIE, 0)
	assert.Equal(t, uint64(0), f.Read(MIE)&(1<<1), "clearing via SIE clears the delegated bit in MIE")
	assert.Equal(t, uint64(1)<<3, f.Read(MIE)&(1<<3), "non-delegated MIE bits survive an SIE write")
}

func TestSSTATUSMasksToDelegatedBits(t *testing.T) {
	var f File
	f.SetSIE(true)
	f.SetSPP(Supervisor)
	f.SetMIE(true) // a machine-only bit; must not leak through SSTATUS

	sstatus := f.Read(SSTATUS)
	assert.NotEqual(t, uint64(0), sstatus&(1<<sstatusSIEBit))
	assert.NotEqual(t, uint64(0), sstatus&(1<<sstatusSPPBit))
	assert.Equal(t, uint64(0), sstatus&(1<<mstatusMIEBit)&^sstatusMask)
}

func TestMPPRoundTrip(t *testing.T) {
	var f File
	f.SetMPP(Supervisor)
	assert.Equal(t, Supervisor, f.MPP())
	f.SetMPP(Machine)
	assert.Equal(t, Machine, f.MPP())
}

func TestRegisterNameOutOfRange(t *testing.T) {
	assert.Equal(t, "zero", RegisterName(0))
	assert.Equal(t, "ra", RegisterName(1))
	assert.Equal(t, "x?", RegisterName(99))
}
