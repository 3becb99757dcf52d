package plic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertedRequiresEnableAndPending(t *testing.T) {
	p := New()
	p.SetPending(1)
	assert.False(t, p.Asserted(), "not enabled yet")

	p.Store32(SEnable, 1<<1)
	assert.True(t, p.Asserted())
}

func TestClaimClearsPendingAndPicksLowestIRQ(t *testing.T) {
	p := New()
	p.Store32(SEnable, (1<<1)|(1<<10))
	p.SetPending(10)
	p.SetPending(1)

	irq := p.Claim()
	assert.Equal(t, uint32(1), irq, "lowest-numbered pending+enabled IRQ wins")
	assert.Equal(t, uint32(0), p.Load32(Pending)&(1<<1), "claim clears the pending bit")

	irq2 := p.Claim()
	assert.Equal(t, uint32(10), irq2)

	assert.Equal(t, uint32(0), p.Claim(), "nothing left pending")
}
