package mixnet_test

import (
	"encoding/json"
	"fmt"
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/mixnet"
	"github.com/thechriswalker/go-evote-verifier/crypto/random"
	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
)

func TestMatrixDimensions(t *testing.T) {
	tests := []struct {
		n, m, cols int
	}{
		{2, 1, 2},
		{3, 1, 3},
		{4, 2, 2},
		{7, 1, 7},
		{12, 3, 4},
		{16, 4, 4},
	}
	for _, tt := range tests {
		m, cols, err := mixnet.MatrixDimensions(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.m, m, "rows of %d", tt.n)
		assert.Equal(t, tt.cols, cols, "columns of %d", tt.n)
	}
	_, _, err := mixnet.MatrixDimensions(1)
	assert.Error(t, err)
}

func TestVerifiableCommitmentKey(t *testing.T) {
	g := fixtures.Group()
	ck, err := mixnet.GetVerifiableCommitmentKey(g, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, ck.Size())

	seen := map[string]bool{ck.H.String(): true}
	for _, e := range ck.G {
		assert.True(t, g.IsMember(e))
		assert.NotEqual(t, 0, e.Cmp(g.G))
		assert.NotEqual(t, 0, e.Cmp(big.NewInt(1)))
		assert.False(t, seen[e.String()])
		seen[e.String()] = true
	}

	again, err := mixnet.GetVerifiableCommitmentKey(g, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, again.H.Cmp(ck.H))

	_, err = mixnet.GetVerifiableCommitmentKey(g, 0)
	assert.Error(t, err)
}

func TestSingleValueProductArgument(t *testing.T) {
	g := fixtures.Group()
	c, err := mixnet.NewContext(g, []*big.Int{g.G}, 4)
	require.NoError(t, err)

	a := random.Vector(4, g.Q)
	r := random.Int(g.Q)
	ca, err := c.CK.Commit(g, a, r)
	require.NoError(t, err)
	b, arg, err := fixtures.ProveSingleValueProduct(c, ca, a, r)
	require.NoError(t, err)

	failures, err := c.VerifySingleValueProductArgument(ca, b, arg)
	require.NoError(t, err)
	assert.Empty(t, failures)

	// claim a different product
	failures, err = c.VerifySingleValueProductArgument(ca, g.AddExponents(b, big.NewInt(1)), arg)
	require.NoError(t, err)
	assert.NotEmpty(t, failures)

	arg.BTilde = arg.BTilde[:3]
	_, err = c.VerifySingleValueProductArgument(ca, b, arg)
	assert.ErrorIs(t, err, mixnet.ErrMalformedArgument)
}

func encryptVotes(t *testing.T, g *elgamal.EncryptionGroup, pk []*big.Int, n, l int) []*elgamal.Ciphertext {
	t.Helper()
	cts := make([]*elgamal.Ciphertext, n)
	for i := range cts {
		m := make([]*big.Int, l)
		for j := range m {
			m[j] = new(big.Int).SetUint64(fixtures.SmallPrimes[(i+j)%len(fixtures.SmallPrimes)])
		}
		ct, err := g.Encrypt(m, random.Int(g.Q), pk)
		require.NoError(t, err)
		cts[i] = ct
	}
	return cts
}

func TestShuffleArgument(t *testing.T) {
	g := fixtures.Group()
	kp := fixtures.NewKeyPair(g, 3)
	cts := encryptVotes(t, g, kp.Public, 3, 2)

	shuffled, arg, err := fixtures.Shuffle(g, kp.Public, cts)
	require.NoError(t, err)

	failures, err := mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, arg)
	require.NoError(t, err)
	assert.Empty(t, failures)

	// the argument survives its JSON encoding
	b, err := json.Marshal(arg)
	require.NoError(t, err)
	var decoded mixnet.ShuffleArgument
	require.NoError(t, json.Unmarshal(b, &decoded))
	failures, err = mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, &decoded)
	require.NoError(t, err)
	assert.Empty(t, failures)
}

func TestShuffleArgumentDetectsTampering(t *testing.T) {
	g := fixtures.Group()
	kp := fixtures.NewKeyPair(g, 1)
	cts := encryptVotes(t, g, kp.Public, 2, 1)

	shuffled, arg, err := fixtures.Shuffle(g, kp.Public, cts)
	require.NoError(t, err)

	// replace one shuffled ciphertext with a fresh encryption
	forged := make([]*elgamal.Ciphertext, len(shuffled))
	copy(forged, shuffled)
	forged[0] = encryptVotes(t, g, kp.Public, 1, 1)[0]
	failures, err := mixnet.VerifyShuffleArgument(g, kp.Public, cts, forged, arg)
	require.NoError(t, err)
	assert.NotEmpty(t, failures)

	// only the final multi exponentiation check depends on tau
	tau := arg.MultiExponentiationArgument.Tau
	arg.MultiExponentiationArgument.Tau = crypto.NewBigInt(g.AddExponents(tau.Int, big.NewInt(1)))
	failures, err = mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, arg)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "multi exponentiation argument")
}

func TestShuffleArgumentDimensions(t *testing.T) {
	g := fixtures.Group()
	kp := fixtures.NewKeyPair(g, 1)
	cts := encryptVotes(t, g, kp.Public, 3, 1)
	shuffled, arg, err := fixtures.Shuffle(g, kp.Public, cts)
	require.NoError(t, err)

	_, err = mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled[:2], arg)
	assert.ErrorIs(t, err, mixnet.ErrMalformedArgument)

	arg.CA = append(arg.CA, big.NewInt(1))
	_, err = mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, arg)
	assert.ErrorIs(t, err, mixnet.ErrMalformedArgument)

	_, err = mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, nil)
	assert.ErrorIs(t, err, mixnet.ErrMalformedArgument)
}

func copyArgument(t *testing.T, arg *mixnet.ShuffleArgument) *mixnet.ShuffleArgument {
	t.Helper()
	b, err := json.Marshal(arg)
	require.NoError(t, err)
	var out mixnet.ShuffleArgument
	require.NoError(t, json.Unmarshal(b, &out))
	return &out
}

func TestShuffleArgumentMatrix(t *testing.T) {
	g := fixtures.Group()
	kp := fixtures.NewKeyPair(g, 2)
	one := big.NewInt(1)

	tamperings := map[string]func(a *mixnet.ShuffleArgument){
		"c_A": func(a *mixnet.ShuffleArgument) {
			a.CA[0] = g.Mul(a.CA[0], g.G)
		},
		"c_B": func(a *mixnet.ShuffleArgument) {
			a.CB[len(a.CB)-1] = g.Mul(a.CB[len(a.CB)-1], g.G)
		},
		"a_prime": func(a *mixnet.ShuffleArgument) {
			z := a.ProductArgument.HadamardArgument.ZeroArgument
			z.APrime[0] = g.AddExponents(z.APrime[0], one)
		},
	}

	for _, N := range []int{4, 6, 12} {
		t.Run(fmt.Sprintf("%d ciphertexts", N), func(t *testing.T) {
			cts := encryptVotes(t, g, kp.Public, N, 2)
			shuffled, arg, err := fixtures.Shuffle(g, kp.Public, cts)
			require.NoError(t, err)

			m, n, err := mixnet.MatrixDimensions(N)
			require.NoError(t, err)
			require.Len(t, arg.CA, m)
			require.NotNil(t, arg.ProductArgument.HadamardArgument)
			require.Len(t, arg.ProductArgument.HadamardArgument.ZeroArgument.APrime, n)

			failures, err := mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, arg)
			require.NoError(t, err)
			assert.Empty(t, failures)

			failures, err = mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, copyArgument(t, arg))
			require.NoError(t, err)
			assert.Empty(t, failures)

			for name, tamper := range tamperings {
				forged := copyArgument(t, arg)
				tamper(forged)
				failures, err := mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, forged)
				require.NoError(t, err, name)
				assert.NotEmpty(t, failures, name)
			}
		})
	}
}

func TestHadamardArgumentColumnSize(t *testing.T) {
	g := fixtures.Group()
	kp := fixtures.NewKeyPair(g, 1)
	cts := encryptVotes(t, g, kp.Public, 6, 1)
	shuffled, arg, err := fixtures.Shuffle(g, kp.Public, cts)
	require.NoError(t, err)

	// consistently shortened zero argument vectors
	z := arg.ProductArgument.HadamardArgument.ZeroArgument
	z.APrime = z.APrime[:len(z.APrime)-1]
	z.BPrime = z.BPrime[:len(z.BPrime)-1]
	_, err = mixnet.VerifyShuffleArgument(g, kp.Public, cts, shuffled, arg)
	assert.ErrorIs(t, err, mixnet.ErrMalformedArgument)
}
