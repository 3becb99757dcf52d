package trap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExceptionCauseCode(t *testing.T) {
	c := ExceptionCause(IllegalInstruction, 0x8000_1000)
	assert.False(t, c.IsInterrupt)
	assert.Equal(t, uint64(IllegalInstruction), c.Code())
	assert.Equal(t, uint64(0x8000_1000), c.PC)
}

func TestInterruptCauseCode(t *testing.T) {
	c := InterruptCause(MachineTimerInterrupt, 0x8000_2000)
	assert.True(t, c.IsInterrupt)
	assert.Equal(t, uint64(1)<<63|uint64(MachineTimerInterrupt), c.Code())
}

func TestFatalSet(t *testing.T) {
	assert.True(t, IllegalInstruction.Fatal())
	assert.True(t, InstructionAccessFault.Fatal())
	assert.False(t, EnvironmentCallFromSMode.Fatal())
	assert.False(t, InstructionPageFault.Fatal())

	fatalCause := ExceptionCause(IllegalInstruction, 0)
	assert.True(t, fatalCause.Fatal())

	irqCause := InterruptCause(MachineTimerInterrupt, 0)
	assert.False(t, irqCause.Fatal(), "interrupts are never fatal")
}

func TestErrorRoundTrip(t *testing.T) {
	err := NewError(LoadPageFault)
	exc, ok := AsException(err)
	require.True(t, ok)
	assert.Equal(t, LoadPageFault, exc)

	_, ok = AsException(assertError{})
	assert.False(t, ok)
}

type assertError struct{}

func (assertError) Error() string { return "not a trap" }
