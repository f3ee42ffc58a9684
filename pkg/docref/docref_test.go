package docref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	got, err := Format("TF", 2025, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, "TF-2025-0004", got)

	got, err = Format("Q", 2025, 1001, 4)
	require.NoError(t, err)
	assert.Equal(t, "Q-2025-1001", got)

	// wider than the pad width is kept whole, never truncated
	got, err = Format("INV", 2024, 123456, 4)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-123456", got)
}

func TestFormatRejectsInvalidWidth(t *testing.T) {
	t.Parallel()

	_, err := Format("TF", 2025, 1, 0)
	require.Error(t, err)
}
