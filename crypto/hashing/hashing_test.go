package hashing

import (
	"encoding/hex"
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/thechriswalker/go-evote-verifier/crypto"
)

func mustHash(t *testing.T, vs ...HashableMessage) string {
	t.Helper()
	h, err := RecursiveHash(vs...)
	require.NoError(t, err)
	return h.Base16Encode()
}

func TestLeafHashesAreDomainSeparated(t *testing.T) {
	// the same byte 0x41 as a byte array, an integer and a string
	ba := mustHash(t, Bytes(crypto.FromBytes([]byte{0x41})))
	in := mustHash(t, Uint(0x41))
	st := mustHash(t, String("A"))
	assert.NotEqual(t, ba, in)
	assert.NotEqual(t, ba, st)
	assert.NotEqual(t, in, st)

	expected := sha3.Sum256([]byte{0x02, 0x41})
	assert.Equal(t, hex.EncodeToString(expected[:]), hex.EncodeToString(mustHashBytes(t, String("A"))))
}

func mustHashBytes(t *testing.T, vs ...HashableMessage) []byte {
	t.Helper()
	h, err := RecursiveHash(vs...)
	require.NoError(t, err)
	return h.Bytes()
}

func TestListHashIsOverChildHashes(t *testing.T) {
	a := mustHashBytes(t, String("a"))
	b := mustHashBytes(t, Uint(7))
	buf := append([]byte{0x03}, a...)
	buf = append(buf, b...)
	expected := sha3.Sum256(buf)
	assert.Equal(t, expected[:], mustHashBytes(t, List(String("a"), Uint(7))))
	// variadic values are a list
	assert.Equal(t, expected[:], mustHashBytes(t, String("a"), Uint(7)))
}

func TestRecursiveHashIsDeterministic(t *testing.T) {
	msg := List(String("election"), IntList([]*big.Int{big.NewInt(3), big.NewInt(5)}), List(Uint(1)))
	assert.Equal(t, mustHash(t, msg), mustHash(t, msg))
}

func TestRecursiveHashIsOrderSensitive(t *testing.T) {
	assert.NotEqual(t,
		mustHash(t, List(String("a"), String("b"))),
		mustHash(t, List(String("b"), String("a"))),
	)
}

func TestRecursiveHashIsLeafSensitive(t *testing.T) {
	assert.NotEqual(t,
		mustHash(t, List(String("a"), List(Uint(1), Uint(2)))),
		mustHash(t, List(String("a"), List(Uint(1), Uint(3)))),
	)
	// nesting matters
	assert.NotEqual(t,
		mustHash(t, List(Uint(1), Uint(2))),
		mustHash(t, List(List(Uint(1), Uint(2)))),
	)
}

func TestEmptyListIsAnError(t *testing.T) {
	_, err := RecursiveHash(List())
	assert.ErrorIs(t, err, ErrEmptyList)
	_, err = RecursiveHash()
	assert.ErrorIs(t, err, ErrEmptyList)
	_, err = RecursiveHash(List(String("x"), List()))
	assert.ErrorIs(t, err, ErrEmptyList)
}

func TestNegativeIntegerIsAnError(t *testing.T) {
	_, err := RecursiveHash(Int(big.NewInt(-5)))
	assert.Error(t, err)
}

func TestRecursiveHashOfLength(t *testing.T) {
	for _, bits := range []int{1, 8, 100, 256, 300} {
		h, err := RecursiveHashOfLength(bits, String("x"))
		require.NoError(t, err)
		assert.Equal(t, (bits+7)/8, h.Len())
		assert.LessOrEqual(t, h.BigInt().BitLen(), bits)
	}
	_, err := RecursiveHashOfLength(0, String("x"))
	assert.Error(t, err)
}

func TestRecursiveHashToZq(t *testing.T) {
	q := big.NewInt(1019)
	a, err := RecursiveHashToZq(q, String("x"), Uint(1))
	require.NoError(t, err)
	b, err := RecursiveHashToZq(q, String("x"), Uint(1))
	require.NoError(t, err)
	assert.Equal(t, 0, a.Cmp(b))
	assert.Equal(t, -1, a.Cmp(q))
	assert.True(t, a.Sign() >= 0)

	_, err = RecursiveHashToZq(big.NewInt(0), String("x"))
	assert.Error(t, err)
}
