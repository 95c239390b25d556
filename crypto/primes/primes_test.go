package primes

import (
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSmallPrime(t *testing.T) {
	primes := []uint64{2, 3, 5, 7, 11, 13, 97, 7919}
	for _, p := range primes {
		assert.True(t, IsSmallPrime(p), "%d", p)
	}
	composites := []uint64{0, 1, 4, 9, 25, 49, 91, 7917}
	for _, c := range composites {
		assert.False(t, IsSmallPrime(c), "%d", c)
	}
}

func TestSmallPrimeGroupMembers(t *testing.T) {
	// p = 2*11 + 1, quadratic residues mod 23 are 1 2 3 4 6 8 9 12 13 16 18
	p := big.NewInt(23)
	members, err := SmallPrimeGroupMembers(p, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{13}, members)

	_, err = SmallPrimeGroupMembers(p, 2)
	assert.Error(t, err)
}

func TestSmallPrimeGroupMembersLargerGroup(t *testing.T) {
	p, ok := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF5F03", 16)
	require.True(t, ok)
	members, err := SmallPrimeGroupMembers(p, 6)
	require.NoError(t, err)
	assert.Equal(t, []uint64{11, 17, 29, 31, 53, 71}, members)
	for _, m := range members {
		assert.True(t, SatisfiesEulerCriterion(new(big.Int).SetUint64(m), p))
	}
}
