package seal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPRPBijection checks that for k=10 and a fresh key, Permute is a
// bijection on [0, 1024) and Inverse undoes it exactly. Bijection is
// checked as set equality between the domain and the image multiset:
// ElementsMatch fails on any collision or gap, since a duplicate image
// can't have the same element counts as the duplicate-free domain.
func TestPRPBijection(t *testing.T) {
	k := 10
	prp, err := NewFeistelPRP(nil, k)
	require.NoError(t, err)

	n := 1 << k
	domain := make([]int, n)
	images := make([]int, n)
	for x := 0; x < n; x++ {
		domain[x] = x
		y, err := prp.Permute(x)
		require.NoError(t, err)
		require.GreaterOrEqual(t, y, 0)
		require.Less(t, y, n)
		images[x] = y

		back, err := prp.Inverse(y)
		require.NoError(t, err)
		require.Equal(t, x, back)
	}
	require.ElementsMatch(t, domain, images)
}

func TestPRPOddK(t *testing.T) {
	k := 7
	prp, err := NewFeistelPRP([]byte("a fixed test key"), k)
	require.NoError(t, err)

	n := 1 << k
	seen := make(map[int]bool, n)
	for x := 0; x < n; x++ {
		y, err := prp.Permute(x)
		require.NoError(t, err)
		require.False(t, seen[y])
		seen[y] = true
		back, err := prp.Inverse(y)
		require.NoError(t, err)
		require.Equal(t, x, back)
	}
	require.Len(t, seen, n)
}

func TestPRPTrivialK0(t *testing.T) {
	prp, err := NewFeistelPRP(nil, 0)
	require.NoError(t, err)
	y, err := prp.Permute(0)
	require.NoError(t, err)
	require.Equal(t, 0, y)
}

func TestPRPRejectsOutOfDomain(t *testing.T) {
	prp, err := NewFeistelPRP(nil, 4)
	require.NoError(t, err)
	_, err = prp.Permute(-1)
	require.ErrorIs(t, err, ErrDomain)
	_, err = prp.Permute(16)
	require.ErrorIs(t, err, ErrDomain)
	_, err = prp.Inverse(16)
	require.ErrorIs(t, err, ErrDomain)
}

func TestPRPIsDeterministicForFixedKey(t *testing.T) {
	key := []byte("deterministic-key-material-123")
	prp1, err := NewFeistelPRP(key, 12)
	require.NoError(t, err)
	prp2, err := NewFeistelPRP(key, 12)
	require.NoError(t, err)

	for x := 0; x < 200; x++ {
		y1, err := prp1.Permute(x)
		require.NoError(t, err)
		y2, err := prp2.Permute(x)
		require.NoError(t, err)
		require.Equal(t, y1, y2)
	}
}
