package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rv64emu/pkg/bus"
	"rv64emu/pkg/csr"
	"rv64emu/pkg/trap"
)

func TestAMOADDReadsOldWritesSum(t *testing.T) {
	h := newTestHart(t)
	require.NoError(t, h.Bus.StoreUint(bus.DRAMBase+0x400, 4, 10))
	h.X.Write(1, bus.DRAMBase+0x400)
	h.X.Write(2, 5)
	h.PC = bus.DRAMBase
	// amoadd.w x3, x2, (x1): funct5=0b00000, funct3=0b010
	storeAt(t, h, h.PC, rType(0b00000<<2, 2, 1, 0b010, 3, opAmo))
	require.NoError(t, h.Step())

	assert.Equal(t, uint64(10), h.X.Read(3), "amo result register gets the old value")
	v, err := h.Bus.LoadUint(bus.DRAMBase+0x400, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), v)
}

func TestLoadAddressMisalignedFault(t *testing.T) {
	h := newTestHart(t)
	h.AbortOnFatalTrap = false
	h.X.Write(1, bus.DRAMBase+1)
	h.PC = bus.DRAMBase
	// lw x2, 0(x1) with x1 not 4-byte aligned
	storeAt(t, h, h.PC, iType(0, 1, 0b010, 2, opLoad))
	require.NoError(t, h.Step())
	assert.Equal(t, uint64(trap.LoadAddressMisaligned), h.CSR.Read(csr.MCAUSE))
}

func TestStoreThenLoadRoundTrip(t *testing.T) {
	h := newTestHart(t)
	h.X.Write(1, bus.DRAMBase+0x800)
	h.X.Write(2, 0x1234)
	h.PC = bus.DRAMBase
	// sh x2, 0(x1)
	storeAt(t, h, h.PC, sType(0, 1, 2, 0b001, opStore))
	require.NoError(t, h.Step())

	h.PC = bus.DRAMBase + 0x10
	// lhu x3, 0(x1)
	storeAt(t, h, h.PC, iType(0, 1, 0b101, 3, opLoad))
	require.NoError(t, h.Step())
	assert.Equal(t, uint64(0x1234), h.X.Read(3))
}

func sType(imm uint32, rs1, rs2 int, funct3, opcode uint32) uint32 {
	hi := (imm >> 5) & 0x7f
	lo := imm & 0x1f
	return hi<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | lo<<7 | opcode
}
