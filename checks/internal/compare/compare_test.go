package compare

import (
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"

	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func group(p, q, g int64) *elgamal.EncryptionGroup {
	return elgamal.NewEncryptionGroup(big.NewInt(p), big.NewInt(q), big.NewInt(g))
}

func TestGroups(t *testing.T) {
	tests := []struct {
		name     string
		actual   *elgamal.EncryptionGroup
		failures int
	}{
		{"equal", group(10, 15, 3), 0},
		{"p differs", group(11, 15, 3), 1},
		{"all differ", group(11, 16, 4), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Groups(group(10, 15, 3), tt.actual)
			assert.Equal(t, tt.failures == 0, res.IsOK())
			assert.False(t, res.HasErrors())
			assert.Len(t, res.Failures(), tt.failures)
		})
	}
}

func TestGroupsMissing(t *testing.T) {
	res := Groups(group(10, 15, 3), nil)
	assert.True(t, res.HasErrors())
	assert.False(t, res.HasFailures())
}

func TestGroupFailureMessage(t *testing.T) {
	res := Groups(group(10, 15, 3), group(11, 15, 3))
	assert.Equal(t, []string{"p not equal: 0xA != 0xB"}, res.FailureStrings())
}

func TestInts(t *testing.T) {
	a := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}

	res := verification.NewResult()
	assert.True(t, Ints(res, "pk", a, []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}))
	assert.True(t, res.IsOK())

	res = verification.NewResult()
	assert.False(t, Ints(res, "pk", a, []*big.Int{big.NewInt(1), big.NewInt(5), big.NewInt(6)}))
	assert.Len(t, res.Failures(), 2)

	res = verification.NewResult()
	assert.False(t, Ints(res, "pk", a, a[:2]))
	assert.Equal(t, []string{"pk lengths not equal: 3 != 2"}, res.FailureStrings())
}

func TestProofs(t *testing.T) {
	a := []*elgamal.Proof{{E: big.NewInt(1), Z: big.NewInt(2)}}
	res := verification.NewResult()
	assert.True(t, Proofs(res, "proofs", a, []*elgamal.Proof{{E: big.NewInt(1), Z: big.NewInt(2)}}))
	assert.False(t, Proofs(res, "proofs", a, []*elgamal.Proof{{E: big.NewInt(1), Z: big.NewInt(3)}}))
	assert.Equal(t, []string{"proofs[0].z not equal: 0x2 != 0x3"}, res.FailureStrings())
}

func TestPaddingRule(t *testing.T) {
	tests := []struct {
		decrypted, shuffled int
		ok                  bool
	}{
		{0, 2, true},
		{1, 3, true},
		{1, 1, false},
		{2, 2, true},
		{5, 5, true},
		{5, 7, false},
	}
	for _, tt := range tests {
		res := verification.NewResult()
		assert.Equal(t, tt.ok, ShuffledCount(res, tt.decrypted, tt.shuffled), "%d/%d", tt.decrypted, tt.shuffled)
		assert.Equal(t, tt.ok, res.IsOK())
		assert.False(t, res.HasErrors())
	}
}

func TestScope(t *testing.T) {
	res := verification.NewResult()
	Scope(res, "ballot box bb-1", func(res *verification.Result) {
		res.Failuref("differs")
	})
	assert.Equal(t, []string{"differs -> ballot box bb-1"}, res.FailureStrings())
}
