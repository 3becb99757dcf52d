// Package mmu implements the Sv39 three-level page-table walker: given
// a virtual address and the kind of access being attempted, it either
// returns a physical address or one of the three page-fault
// exceptions, chosen by access kind (spec.md §4.2).
package mmu

import (
	"rv64emu/pkg/trap"
)

// AccessKind discriminates why the walker was invoked, which in turn
// selects the fault exception on failure.
type AccessKind int

const (
	Instruction AccessKind = iota
	Load
	Store
)

func (k AccessKind) faultException() trap.Exception {
	switch k {
	case Instruction:
		return trap.InstructionPageFault
	case Store:
		return trap.StoreAMOPageFault
	default:
		return trap.LoadPageFault
	}
}

// PhysicalBus is the subset of the system bus the walker needs: raw
// 8-byte physical reads to fetch page-table entries. These fetches
// bypass translation, per spec.md §4.1: "those fetches must bypass
// translation (physical addresses only)".
type PhysicalBus interface {
	LoadUint(addr uint64, size int) (uint64, error)
}

// pte bit positions.
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
)

const pageOffsetBits = 12

// vpn extracts virtual-page-number slice i (i ∈ {0,1,2}) from a virtual
// address: bits 12+9*i .. 12+9*i+8, per spec.md §4.2.
func vpn(va uint64, i int) uint64 {
	shift := uint(pageOffsetBits + 9*i)
	return (va >> shift) & 0x1ff
}

// ppn extracts PPN slice i from a page-table entry. PPN occupies bits
// [53:10] of the PTE, split into PPN[0] and PPN[1] of 9 bits each and
// PPN[2] of 26 bits, 44 bits in all.
func ppn(pte uint64, i int) uint64 {
	switch i {
	case 0:
		return (pte >> 10) & 0x1ff
	case 1:
		return (pte >> 19) & 0x1ff
	default:
		return (pte >> 28) & 0x3ffffff
	}
}

// Translate performs the Sv39 walk. When enabled is false, translation
// is the identity (spec.md §4.2: "When paging is disabled, translate is
// the identity").
func Translate(bus PhysicalBus, enabled bool, rootBase uint64, va uint64, kind AccessKind) (uint64, error) {
	if !enabled {
		return va, nil
	}

	a := rootBase
	var pte uint64
	i := 2
	for {
		if i < 0 {
			return 0, trap.NewError(kind.faultException())
		}
		pteAddr := a + vpn(va, i)*8
		v, err := bus.LoadUint(pteAddr, 8)
		if err != nil {
			return 0, trap.NewError(kind.faultException())
		}
		pte = v

		valid := pte&pteV != 0
		reserved := pte&pteR == 0 && pte&pteW != 0
		if !valid || reserved {
			return 0, trap.NewError(kind.faultException())
		}

		leaf := pte&(pteR|pteX) != 0
		if leaf {
			break
		}

		a = ppn(pte, 0)<<12 | ppn(pte, 1)<<21 | ppn(pte, 2)<<30
		i--
	}

	offset := va & ((1 << pageOffsetBits) - 1)

	switch i {
	case 0:
		// 4 KiB leaf: full 44-bit PPN, page offset untouched.
		physPPN := ppn(pte, 0) | ppn(pte, 1)<<9 | ppn(pte, 2)<<18
		return physPPN<<pageOffsetBits | offset, nil
	case 1:
		// 2 MiB superpage: PPN[0] comes from the VPN, not the PTE.
		physPPN := vpn(va, 0) | ppn(pte, 1)<<9 | ppn(pte, 2)<<18
		return physPPN<<pageOffsetBits | offset, nil
	default:
		// 1 GiB superpage: PPN[1:0] come from the VPN.
		physPPN := vpn(va, 0) | vpn(va, 1)<<9 | ppn(pte, 2)<<18
		return physPPN<<pageOffsetBits | offset, nil
	}
}
