package elgamal_test

import (
	"encoding/json"
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
	"github.com/thechriswalker/go-evote-verifier/crypto/random"
	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
)

func TestGroupValidate(t *testing.T) {
	g := fixtures.Group()
	require.NoError(t, g.Validate())

	bad := elgamal.NewEncryptionGroup(big.NewInt(10), big.NewInt(15), big.NewInt(3))
	assert.Error(t, bad.Validate())

	notGenerator := elgamal.NewEncryptionGroup(g.P, g.Q, big.NewInt(1))
	assert.Error(t, notGenerator.Validate())

	assert.True(t, g.IsMember(big.NewInt(11)))
	assert.False(t, g.IsMember(big.NewInt(0)))
	assert.False(t, g.IsMember(g.P))
}

func TestGroupJSON(t *testing.T) {
	g := fixtures.Group()
	b, err := json.Marshal(g)
	require.NoError(t, err)

	var back elgamal.EncryptionGroup
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, g.Equal(&back))

	assert.Error(t, json.Unmarshal([]byte(`{"p":"0x17","q":"0xB"}`), &back))
}

func TestEncryptionHomomorphism(t *testing.T) {
	g := fixtures.Group()
	kp := fixtures.NewKeyPair(g, 2)
	m1 := []*big.Int{big.NewInt(11), big.NewInt(17)}
	m2 := []*big.Int{big.NewInt(29), big.NewInt(31)}
	r1, r2 := random.Int(g.Q), random.Int(g.Q)

	c1, err := g.Encrypt(m1, r1, kp.Public)
	require.NoError(t, err)
	c2, err := g.Encrypt(m2, r2, kp.Public)
	require.NoError(t, err)
	prod, err := c1.Mul(g, c2)
	require.NoError(t, err)

	m := []*big.Int{g.Mul(m1[0], m2[0]), g.Mul(m1[1], m2[1])}
	direct, err := g.Encrypt(m, g.AddExponents(r1, r2), kp.Public)
	require.NoError(t, err)
	assert.True(t, prod.Equal(direct))

	_, err = c1.Mul(g, elgamal.NeutralCiphertext(3))
	assert.Error(t, err)
}

func TestSchnorrProof(t *testing.T) {
	g := fixtures.Group()
	x := random.Int(g.Q)
	y := g.Exp(g.G, x)
	aux := []hashing.HashableMessage{hashing.String("event"), hashing.Uint(1)}
	proof := fixtures.ProveSchnorr(g, x, aux...)

	ok, err := elgamal.VerifySchnorrProof(g, proof, y, aux...)
	require.NoError(t, err)
	assert.True(t, ok)

	// wrong auxiliary information
	ok, err = elgamal.VerifySchnorrProof(g, proof, y, hashing.String("other"))
	require.NoError(t, err)
	assert.False(t, ok)

	// tampered response
	bad := &elgamal.Proof{E: proof.E, Z: g.AddExponents(proof.Z, big.NewInt(1))}
	ok, err = elgamal.VerifySchnorrProof(g, bad, y, aux...)
	require.NoError(t, err)
	assert.False(t, ok)

	// out of range is malformed
	_, err = elgamal.VerifySchnorrProof(g, &elgamal.Proof{E: g.Q, Z: proof.Z}, y, aux...)
	assert.ErrorIs(t, err, elgamal.ErrMalformedProof)
}

func TestExponentiationProof(t *testing.T) {
	g := fixtures.Group()
	x := random.Int(g.Q)
	bases := []*big.Int{g.G, big.NewInt(11), big.NewInt(17)}
	images, proof := fixtures.ProveExponentiation(g, bases, x, hashing.String("aux"))

	ok, err := elgamal.VerifyExponentiationProof(g, bases, images, proof, hashing.String("aux"))
	require.NoError(t, err)
	assert.True(t, ok)

	images[1] = g.Mul(images[1], g.G)
	ok, err = elgamal.VerifyExponentiationProof(g, bases, images, proof, hashing.String("aux"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = elgamal.VerifyExponentiationProof(g, bases, images[:2], proof)
	assert.Error(t, err)
}

func TestDecryptionProof(t *testing.T) {
	g := fixtures.Group()
	kp := fixtures.NewKeyPair(g, 2)
	m := []*big.Int{big.NewInt(29), big.NewInt(53)}
	ct, err := g.Encrypt(m, random.Int(g.Q), kp.Public)
	require.NoError(t, err)

	dec, proof := fixtures.ProveDecryption(g, ct, kp.Secret, hashing.String("aux"))
	assert.Equal(t, 0, dec[0].Cmp(m[0]))
	assert.Equal(t, 0, dec[1].Cmp(m[1]))

	ok, err := elgamal.VerifyDecryptionProof(g, ct, kp.Public, dec, proof, hashing.String("aux"))
	require.NoError(t, err)
	assert.True(t, ok)

	wrong := []*big.Int{big.NewInt(31), dec[1]}
	ok, err = elgamal.VerifyDecryptionProof(g, ct, kp.Public, wrong, proof, hashing.String("aux"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = elgamal.VerifyDecryptionProof(g, ct, kp.Public[:1], dec, proof)
	assert.Error(t, err)
}

func TestPlaintextEqualityProof(t *testing.T) {
	g := fixtures.Group()
	k1 := fixtures.NewKeyPair(g, 1)
	k2 := fixtures.NewKeyPair(g, 1)
	m := []*big.Int{big.NewInt(71)}
	r, rp := random.Int(g.Q), random.Int(g.Q)
	c1, err := g.Encrypt(m, r, k1.Public)
	require.NoError(t, err)
	c2, err := g.Encrypt(m, rp, k2.Public)
	require.NoError(t, err)

	proof := fixtures.ProvePlaintextEquality(g, c1, c2, k1.Public[0], k2.Public[0], r, rp)
	ok, err := elgamal.VerifyPlaintextEqualityProof(g, c1, c2, k1.Public[0], k2.Public[0], proof)
	require.NoError(t, err)
	assert.True(t, ok)

	other, err := g.Encrypt([]*big.Int{big.NewInt(79)}, rp, k2.Public)
	require.NoError(t, err)
	ok, err = elgamal.VerifyPlaintextEqualityProof(g, c1, other, k1.Public[0], k2.Public[0], proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProofJSON(t *testing.T) {
	p := &elgamal.VectorProof{E: big.NewInt(5), Z: []*big.Int{big.NewInt(1), big.NewInt(2)}}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"e":"0x5","z":["0x1","0x2"]}`, string(b))

	var back elgamal.VectorProof
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Z.Equal(p.Z))

	var ct elgamal.Ciphertext
	assert.Error(t, json.Unmarshal([]byte(`{"gamma":"0x4","phis":[]}`), &ct))
	require.NoError(t, json.Unmarshal([]byte(`{"gamma":"0x4","phis":["0x10"]}`), &ct))
	assert.Equal(t, 1, ct.Size())
}

func TestDivisionByZero(t *testing.T) {
	g := fixtures.Group()
	inv, err := g.Inverse(g.G)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Mul(inv, g.G).Cmp(big.NewInt(1)))

	_, err = g.Inverse(big.NewInt(0))
	assert.ErrorIs(t, err, elgamal.ErrNotInvertible)
	_, err = g.Div(g.G, g.P)
	assert.ErrorIs(t, err, elgamal.ErrNotInvertible)
}

func TestProofsRejectZeroElements(t *testing.T) {
	g := fixtures.Group()
	kp := fixtures.NewKeyPair(g, 1)
	ct, err := g.Encrypt([]*big.Int{big.NewInt(71)}, random.Int(g.Q), kp.Public)
	require.NoError(t, err)
	proof := &elgamal.VectorProof{E: big.NewInt(1), Z: []*big.Int{big.NewInt(1), big.NewInt(1)}}

	zero := &elgamal.Ciphertext{Gamma: ct.Gamma, Phis: []*big.Int{big.NewInt(0)}}
	assert.NotPanics(t, func() {
		_, err = elgamal.VerifyPlaintextEqualityProof(g, ct, zero, kp.Public[0], kp.Public[0], proof)
	})
	assert.ErrorIs(t, err, elgamal.ErrNotInvertible)

	assert.NotPanics(t, func() {
		_, err = elgamal.VerifyDecryptionProof(g, ct, kp.Public, []*big.Int{big.NewInt(0)}, &elgamal.VectorProof{E: big.NewInt(1), Z: []*big.Int{big.NewInt(1)}})
	})
	assert.ErrorIs(t, err, elgamal.ErrNotInvertible)
}
