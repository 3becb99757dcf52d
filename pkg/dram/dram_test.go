package dram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStoreRoundTrip(t *testing.T) {
	m := New(64)
	require.NoError(t, m.StoreUint(8, 8, 0x0102030405060708))
	v, err := m.LoadUint(8, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v)
}

func TestLoadSignExtension(t *testing.T) {
	m := New(16)
	require.NoError(t, m.Store(0, 1, []byte{0xff}))
	v, err := m.LoadInt(0, 1)
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), v, "0xff sign-extends to all ones")

	u, err := m.LoadUint(0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xff), u, "same byte zero-extends to 0xff")
}

func TestOutOfRange(t *testing.T) {
	m := New(16)
	_, err := m.Load(12, 8)
	assert.ErrorIs(t, err, ErrOutOfRange)

	err = m.Store(16, 1, []byte{1})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestLoadImageTruncates(t *testing.T) {
	m := New(4)
	m.LoadImage([]byte{1, 2, 3, 4, 5, 6})
	b, err := m.Load(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, b)
}
