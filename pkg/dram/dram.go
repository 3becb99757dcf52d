// Package dram implements the hart's flat, byte-addressable main memory:
// a contiguous buffer mapped at bus.DRAMBase, with little-endian
// load/store of 1/2/4/8-byte quantities. See pkg/vm's Memory method in
// the teacher VM for the load/store shape this generalizes from a
// single 32-bit word size to four widths.
package dram

import (
	"encoding/binary"
	"errors"
)

// ErrOutOfRange indicates an access fell outside the backing buffer.
// The bus translates this into a LoadAccessFault/StoreAMOAccessFault;
// DRAM itself carries no notion of architectural traps.
var ErrOutOfRange = errors.New("dram: address out of range")

// Memory is the flat byte buffer backing the hart's RAM.
type Memory struct {
	buf []byte
}

// New allocates size bytes of zeroed memory.
func New(size int) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// Size returns the memory's capacity in bytes.
func (m *Memory) Size() int { return len(m.buf) }

// LoadImage copies data into memory starting at offset 0, truncating it
// if it doesn't fit. Used to place the kernel binary and, separately,
// the virtio backing disk image (the disk has its own Memory instance).
func (m *Memory) LoadImage(data []byte) {
	n := copy(m.buf, data)
	_ = n
}

// Load reads size bytes (size ∈ {1,2,4,8}) at the given offset and
// returns them as the raw little-endian bytes. Callers needing a
// decoded integer should use LoadUint/LoadInt instead.
func (m *Memory) Load(off uint64, size int) ([]byte, error) {
	end := off + uint64(size)
	if end > uint64(len(m.buf)) || off > end {
		return nil, ErrOutOfRange
	}
	out := make([]byte, size)
	copy(out, m.buf[off:end])
	return out, nil
}

// Store writes size bytes at the given offset.
func (m *Memory) Store(off uint64, size int, data []byte) error {
	end := off + uint64(size)
	if end > uint64(len(m.buf)) || off > end {
		return ErrOutOfRange
	}
	copy(m.buf[off:end], data[:size])
	return nil
}

// LoadUint reads size bytes and zero-extends them to a uint64.
func (m *Memory) LoadUint(off uint64, size int) (uint64, error) {
	raw, err := m.Load(off, size)
	if err != nil {
		return 0, err
	}
	return decodeLittleEndian(raw), nil
}

// LoadInt reads size bytes and sign-extends them to an int64, returned
// as its uint64 bit pattern (this codebase's single canonical
// representation).
func (m *Memory) LoadInt(off uint64, size int) (uint64, error) {
	raw, err := m.Load(off, size)
	if err != nil {
		return 0, err
	}
	val := decodeLittleEndian(raw)
	shift := 64 - uint(size)*8
	return uint64(int64(val<<shift) >> shift), nil
}

// StoreUint writes the low size bytes of value at off, little-endian.
func (m *Memory) StoreUint(off uint64, size int, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return m.Store(off, size, buf[:size])
}

func decodeLittleEndian(raw []byte) uint64 {
	var val uint64
	for i, b := range raw {
		val |= uint64(b) << (8 * i)
	}
	return val
}
