package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_Contention(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir)
	require.NoError(t, err)

	_, err = Acquire(dir)
	assert.Equal(t, ErrHeld, err)

	require.NoError(t, first.Release())

	second, err := Acquire(dir)
	require.NoError(t, err)
	assert.NoError(t, second.Release())
}
