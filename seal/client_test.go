package seal

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etclab/oramlab/pathoram"
)

func randomPayload(t *testing.T, size int) []byte {
	t.Helper()
	buf := make([]byte, size)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return buf
}

// TestAlphaZeroIsASinglePartition checks that with alpha=0, every
// access's sub_index is identically 0.
func TestAlphaZeroIsASinglePartition(t *testing.T) {
	c, err := NewClient(ClientConfig{N: 1024, Z: 4, Alpha: 0, BlockSizeBytes: 8})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err := c.Access(pathoram.OpWrite, i, randomPayload(t, 8))
		require.NoError(t, err)
		require.Equal(t, 0, c.LastAccess().SubIndex)
	}
}

// TestAlphaEqualsKDegenerate checks that with alpha=k, every
// sub-tree holds exactly one block, a write/read round-trips correctly,
// and sub_index is a deterministic function of global_id alone (stable
// across repeated accesses to the same id).
func TestAlphaEqualsKDegenerate(t *testing.T) {
	n := 64
	c, err := NewClient(ClientConfig{N: n, Z: 2, Alpha: 6, BlockSizeBytes: 8})
	require.NoError(t, err)
	require.Equal(t, n, c.Params().M)
	require.Equal(t, 1, c.Params().LocalN)

	payload := randomPayload(t, 8)
	_, err = c.Access(pathoram.OpWrite, 10, payload)
	require.NoError(t, err)
	firstSub := c.LastAccess().SubIndex

	got, err := c.Access(pathoram.OpRead, 10, nil)
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, got))
	require.Equal(t, firstSub, c.LastAccess().SubIndex)

	for i := 0; i < 5; i++ {
		_, err := c.Access(pathoram.OpRead, 10, nil)
		require.NoError(t, err)
		require.Equal(t, firstSub, c.LastAccess().SubIndex)
	}
}

func TestRouteIsDeterministicFunctionOfGlobalID(t *testing.T) {
	c, err := NewClient(ClientConfig{N: 256, Z: 4, Alpha: 4, BlockSizeBytes: 8})
	require.NoError(t, err)

	sub1, local1, err := c.Route(42)
	require.NoError(t, err)
	sub2, local2, err := c.Route(42)
	require.NoError(t, err)
	require.Equal(t, sub1, sub2)
	require.Equal(t, local1, local2)
}

func TestRouteRejectsOutOfRange(t *testing.T) {
	c, err := NewClient(ClientConfig{N: 16, Z: 2, Alpha: 2, BlockSizeBytes: 8})
	require.NoError(t, err)
	_, _, err = c.Route(-1)
	require.ErrorIs(t, err, ErrGlobalIDOutOfRange)
	_, _, err = c.Route(16)
	require.ErrorIs(t, err, ErrGlobalIDOutOfRange)
}

func TestAccessLogAndResetLog(t *testing.T) {
	c, err := NewClient(ClientConfig{N: 64, Z: 2, Alpha: 2, BlockSizeBytes: 8})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := c.Access(pathoram.OpWrite, i, randomPayload(t, 8))
		require.NoError(t, err)
	}
	require.Len(t, c.AccessLog(), 5)

	c.ResetLog()
	require.Empty(t, c.AccessLog())
	require.Nil(t, c.LastAccess())
}

func TestApproxBandwidthIsPositive(t *testing.T) {
	c, err := NewClient(ClientConfig{N: 64, Z: 4, Alpha: 2, BlockSizeBytes: 32})
	require.NoError(t, err)
	_, err = c.Access(pathoram.OpWrite, 3, randomPayload(t, 32))
	require.NoError(t, err)
	require.Greater(t, c.LastAccess().ApproxBandwidthBytes, 0)
}
