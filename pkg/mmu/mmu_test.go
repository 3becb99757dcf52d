package mmu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rv64emu/pkg/dram"
	"rv64emu/pkg/trap"
)

// fakeBus adapts a dram.Memory (addressed from 0) to PhysicalBus, so
// tests can build page tables directly as if they were physical memory.
type fakeBus struct{ mem *dram.Memory }

func (f fakeBus) LoadUint(addr uint64, size int) (uint64, error) {
	return f.mem.LoadUint(addr, size)
}

func TestTranslateDisabledIsIdentity(t *testing.T) {
	phys, err := Translate(fakeBus{}, false, 0, 0x1234_5678, Load)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234_5678), phys)
}

func TestTranslateFourKiBLeaf(t *testing.T) {
	mem := dram.New(1 << 20)
	bus := fakeBus{mem}

	const root = 0x1000
	va := uint64(0x40_2010 + 0x123) // vpn2=0, vpn1=2, vpn0=2 arbitrary small VA, offset 0x133
	vpn2 := vpn(va, 2)
	vpn1 := vpn(va, 1)
	vpn0 := vpn(va, 0)

	l2 := root
	l1 := uint64(0x2000)
	l0 := uint64(0x3000)
	leafPPN := uint64(0xAB)

	writePTE := func(addr, ppn uint64, leaf bool) {
		var pte uint64
		flags := uint64(pteV)
		if leaf {
			flags |= pteR | pteW | pteX
		}
		pte = (ppn << 10) | flags
		require.NoError(t, mem.StoreUint(addr, 8, pte))
	}

	writePTE(uint64(l2)+vpn2*8, l1/4096, false)
	writePTE(l1+vpn1*8, l0/4096, false)
	writePTE(l0+vpn0*8, leafPPN, true)

	phys, err := Translate(bus, true, uint64(l2), va, Load)
	require.NoError(t, err)
	assert.Equal(t, leafPPN<<12|(va&0xfff), phys)
}

func TestTranslateInvalidPTEFaults(t *testing.T) {
	mem := dram.New(1 << 16)
	bus := fakeBus{mem}
	phys, err := Translate(bus, true, 0, 0x1000, Load)
	assert.Equal(t, uint64(0), phys)
	exc, ok := trap.AsException(err)
	require.True(t, ok)
	assert.Equal(t, trap.LoadPageFault, exc)
}

func TestTranslateFaultKindMatchesAccess(t *testing.T) {
	mem := dram.New(1 << 16)
	bus := fakeBus{mem}

	_, err := Translate(bus, true, 0, 0x2000, Instruction)
	exc, _ := trap.AsException(err)
	assert.Equal(t, trap.InstructionPageFault, exc)

	_, err = Translate(bus, true, 0, 0x2000, Store)
	exc, _ = trap.AsException(err)
	assert.Equal(t, trap.StoreAMOPageFault, exc)
}

func TestReservedEncodingFaults(t *testing.T) {
	mem := dram.New(1 << 16)
	bus := fakeBus{mem}
	// W=1, R=0 is reserved (pteW set, pteR clear) at the root level.
	require.NoError(t, mem.StoreUint(0, 8, pteV|pteW))
	_, err := Translate(bus, true, 0, 0, Load)
	exc, ok := trap.AsException(err)
	require.True(t, ok)
	assert.Equal(t, trap.LoadPageFault, exc)
}
