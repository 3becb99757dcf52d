// Package uart implements a 16550-subset console: a byte-wide RHR/THR
// pair, an LCR, and an LSR with RX/TX ready bits, plus a background
// goroutine that reads stdin and feeds RHR under back-pressure.
//
// Grounded on pyfive/uart.py's keyboard_thread (a mutex + condition
// variable where the reader waits while LSR_RX is set and the hart
// signals on RHR read) and on the teacher's pkg/vm/tty.go, which shows
// the same "VM owns a goroutine doing asynchronous I/O" shape using a
// TCP console instead of stdin. spec.md §5 calls for exactly the
// mutex+condvar design pyfive uses, so that's what this keeps.
package uart

import (
	"bufio"
	"io"
	"sync"
)

// Register offsets within the UART MMIO window (spec.md §6). All
// accesses are byte-wide.
const (
	RHR = 0
	THR = 0
	LCR = 3
	LSR = 5

	LSRRxReady = 1 << 0
	LSRTxReady = 1 << 5

	// IRQ is the PLIC source number wired to this device.
	IRQ = 10
)

// Uart is the console device. The zero value is not usable; use New.
type Uart struct {
	mu   sync.Mutex
	cond *sync.Cond
	regs [0x100]byte

	out io.Writer
}

// New creates a UART and starts its background stdin-reader goroutine.
// LSR_TX starts set (the transmitter is always ready; this design has
// no FIFO to fill).
func New(in io.Reader, out io.Writer) *Uart {
	u := &Uart{out: out}
	u.cond = sync.NewCond(&u.mu)
	u.regs[LSR] = LSRTxReady
	go u.readLoop(in)
	return u
}

// readLoop is the single auxiliary thread spec.md §5 describes: it
// blocks on stdin, then waits on the condvar while LSR_RX is already
// set (back-pressure — the guest hasn't drained the previous byte yet),
// then deposits the byte and raises LSR_RX under the mutex.
func (u *Uart) readLoop(in io.Reader) {
	r := bufio.NewReader(in)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		u.mu.Lock()
		for u.regs[LSR]&LSRRxReady != 0 {
			u.cond.Wait()
		}
		u.regs[RHR] = b
		u.regs[LSR] |= LSRRxReady
		u.mu.Unlock()
	}
}

// InterruptPending reports whether the hart should see a pending UART
// RX interrupt: LSR_RX set means a byte is waiting to be read.
func (u *Uart) InterruptPending() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.regs[LSR]&LSRRxReady != 0
}

// Load reads a single byte register. Reading RHR clears LSR_RX and
// wakes the producer goroutine so it can accept the next keystroke.
func (u *Uart) Load(addr uint64, size int) []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	if addr == RHR {
		v := u.regs[RHR]
		u.regs[LSR] &^= LSRRxReady
		u.cond.Signal()
		return []byte{v}
	}
	return []byte{u.regs[addr]}
}

// Store writes a single byte register. Writing THR emits the byte to
// the console's output stream.
func (u *Uart) Store(addr uint64, size int, data []byte) {
	v := data[0]
	if addr == THR {
		if u.out != nil {
			u.out.Write([]byte{v})
		}
		return
	}
	u.mu.Lock()
	u.regs[addr] = v
	u.mu.Unlock()
}
