// Package bus implements the system bus: address-range dispatch across
// DRAM and the four memory-mapped peripherals (CLINT, PLIC, UART,
// VirtIO), plus little-endian integer convenience readers shared by the
// CPU and by the VirtIO device's own descriptor-chain walk.
//
// Grounded on pyfive/bus.py's Bus.load/store range checks (including
// fixing the off-by-one spec.md §9(e) calls out: pyfive rejects the
// final valid byte of a region with `addr + size < end` where it should
// use `<=`) and, for the tagged-variant-over-range-decode shape itself,
// spec.md §9's explicit design note.
package bus

import (
	"rv64emu/pkg/device/clint"
	"rv64emu/pkg/device/plic"
	"rv64emu/pkg/device/uart"
	"rv64emu/pkg/device/virtio"
	"rv64emu/pkg/dram"
	"rv64emu/pkg/trap"
)

// Physical memory map (spec.md §6).
const (
	CLINTBase = 0x0200_0000
	CLINTSize = 0x10000

	PLICBase = 0x0c00_0000
	PLICSize = 0x400_0000

	UARTBase = 0x1000_0000
	UARTSize = 0x100

	VirtioBase = 0x1000_1000
	VirtioSize = 0x1000

	DRAMBase = 0x8000_0000
)

// DefaultDRAMSize is the 128 MiB DRAM window spec.md §6 specifies.
const DefaultDRAMSize = 128 * 1024 * 1024

// Bus wires DRAM and the four peripherals together behind one
// address-range dispatcher.
type Bus struct {
	DRAM   *dram.Memory
	Clint  *clint.Clint
	Plic   *plic.Plic
	Uart   *uart.Uart
	Virtio *virtio.Virtio
}

// New creates a bus with the given DRAM size around the given UART and
// VirtIO devices.
func New(dramSize int, u *uart.Uart, v *virtio.Virtio) *Bus {
	return &Bus{
		DRAM:   dram.New(dramSize),
		Clint:  clint.New(),
		Plic:   plic.New(),
		Uart:   u,
		Virtio: v,
	}
}

// inRange reports whether an access of the given size at addr fits
// entirely inside [base, base+windowSize). pyfive/bus.py checks
// `addr + size < end`, which rejects an access whose last byte lands
// exactly on the final valid address (spec.md §9(e)) — this uses `<=`.
func inRange(addr uint64, size int, base, windowSize uint64) bool {
	return addr >= base && addr+uint64(size) <= base+windowSize
}

// Load reads size bytes at addr and returns them as raw little-endian
// bytes, or a bus fault if addr falls outside every known window.
func (b *Bus) Load(addr uint64, size int) ([]byte, error) {
	sz := uint64(size)
	switch {
	case addr >= DRAMBase && addr+sz <= DRAMBase+uint64(b.DRAM.Size()):
		return b.DRAM.Load(addr-DRAMBase, size)
	case inRange(addr, size, CLINTBase, CLINTSize):
		if size != 8 {
			return nil, faultErr(trap.LoadAccessFault)
		}
		var buf [8]byte
		putLE64(buf[:], b.Clint.Load64(addr-CLINTBase))
		return buf[:], nil
	case inRange(addr, size, PLICBase, PLICSize):
		if size != 4 {
			return nil, faultErr(trap.LoadAccessFault)
		}
		var buf [4]byte
		putLE32(buf[:], b.Plic.Load32(addr-PLICBase))
		return buf[:], nil
	case inRange(addr, size, UARTBase, UARTSize):
		return b.Uart.Load(addr-UARTBase, size), nil
	case inRange(addr, size, VirtioBase, VirtioSize):
		v, ok := b.Virtio.Load(addr-VirtioBase, size)
		if !ok {
			return nil, faultErr(trap.LoadAccessFault)
		}
		var buf [4]byte
		putLE32(buf[:], v)
		return buf[:4], nil
	default:
		return nil, faultErr(trap.LoadAccessFault)
	}
}

// Store writes size bytes of data at addr, or a bus fault if addr falls
// outside every known window.
func (b *Bus) Store(addr uint64, size int, data []byte) error {
	sz := uint64(size)
	switch {
	case addr >= DRAMBase && addr+sz <= DRAMBase+uint64(b.DRAM.Size()):
		return b.DRAM.Store(addr-DRAMBase, size, data)
	case inRange(addr, size, CLINTBase, CLINTSize):
		if size != 8 {
			return faultErr(trap.StoreAMOAccessFault)
		}
		b.Clint.Store64(addr-CLINTBase, decodeLE(data))
		return nil
	case inRange(addr, size, PLICBase, PLICSize):
		if size != 4 {
			return faultErr(trap.StoreAMOAccessFault)
		}
		b.Plic.Store32(addr-PLICBase, uint32(decodeLE(data)))
		return nil
	case inRange(addr, size, UARTBase, UARTSize):
		b.Uart.Store(addr-UARTBase, size, data)
		return nil
	case inRange(addr, size, VirtioBase, VirtioSize):
		if !b.Virtio.Store(addr-VirtioBase, size, uint32(decodeLE(data))) {
			return faultErr(trap.StoreAMOAccessFault)
		}
		return nil
	default:
		return faultErr(trap.StoreAMOAccessFault)
	}
}

// LoadUint reads size bytes at addr and zero-extends them to a uint64.
func (b *Bus) LoadUint(addr uint64, size int) (uint64, error) {
	raw, err := b.Load(addr, size)
	if err != nil {
		return 0, err
	}
	return decodeLE(raw), nil
}

// LoadInt reads size bytes at addr and sign-extends them to a uint64
// bit pattern (this codebase's canonical unsigned-64 representation).
func (b *Bus) LoadInt(addr uint64, size int) (uint64, error) {
	raw, err := b.Load(addr, size)
	if err != nil {
		return 0, err
	}
	val := decodeLE(raw)
	shift := 64 - uint(size)*8
	return uint64(int64(val<<shift) >> shift), nil
}

// StoreUint writes the low size bytes of value at addr, little-endian.
func (b *Bus) StoreUint(addr uint64, size int, value uint64) error {
	var buf [8]byte
	putLE64(buf[:], value)
	return b.Store(addr, size, buf[:size])
}

// ServiceVirtio runs the VirtIO disk_access routine if the guest wrote
// QUEUE_NOTIFY since the last call. Called once per instruction
// boundary by the CPU, per spec.md §5: "runs synchronously on the hart
// thread when the guest writes QUEUE_NOTIFY".
func (b *Bus) ServiceVirtio() error {
	if b.Virtio.NotifyPending {
		if err := b.Virtio.DiskAccess(b); err != nil {
			return err
		}
		b.Plic.SetPending(virtio.IRQ)
	}
	return nil
}

func faultErr(e trap.Exception) error { return trap.NewError(e) }

func decodeLE(raw []byte) uint64 {
	var val uint64
	for i, b := range raw {
		val |= uint64(b) << (8 * i)
	}
	return val
}

func putLE64(buf []byte, v uint64) {
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
}

func putLE32(buf []byte, v uint32) {
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
}
