// Package fixtures builds honest election data for the tests: groups,
// keys, proofs, shuffles, signed payloads and a complete verifier
// directory held in memory.
package fixtures

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
	"github.com/thechriswalker/go-evote-verifier/crypto/random"
)

// Group is a 192 bit safe prime group with generator 4, big enough for
// the challenges to be meaningful and small enough to be fast.
func Group() *elgamal.EncryptionGroup {
	p, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF5F03", 16)
	q, _ := new(big.Int).SetString("7FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFAF81", 16)
	return elgamal.NewEncryptionGroup(p, q, big.NewInt(4))
}

// SmallPrimes are the first small prime members of Group.
var SmallPrimes = []uint64{11, 17, 29, 31, 53, 71, 79, 107, 113, 137, 139, 157}

// KeyPair is a vector ElGamal key.
type KeyPair struct {
	Secret []*big.Int
	Public []*big.Int
}

// NewKeyPair generates a key with l elements.
func NewKeyPair(s *elgamal.EncryptionGroup, l int) *KeyPair {
	kp := &KeyPair{Secret: random.Vector(l, s.Q), Public: make([]*big.Int, l)}
	for i, x := range kp.Secret {
		kp.Public[i] = s.Exp(s.G, x)
	}
	return kp
}

// ProveSchnorr proves knowledge of x for y = g^x.
func ProveSchnorr(s *elgamal.EncryptionGroup, x *big.Int, aux ...hashing.HashableMessage) *elgamal.Proof {
	y := s.Exp(s.G, x)
	b := random.Int(s.Q)
	e, err := elgamal.SchnorrChallenge(s, y, s.Exp(s.G, b), aux)
	if err != nil {
		panic(err)
	}
	return &elgamal.Proof{E: e, Z: s.AddExponents(b, s.MulExponents(e, x))}
}

// ProveExponentiation raises the bases to x and proves it.
func ProveExponentiation(s *elgamal.EncryptionGroup, bases []*big.Int, x *big.Int, aux ...hashing.HashableMessage) ([]*big.Int, *elgamal.Proof) {
	b := random.Int(s.Q)
	images := make([]*big.Int, len(bases))
	c := make([]*big.Int, len(bases))
	for i, g := range bases {
		images[i] = s.Exp(g, x)
		c[i] = s.Exp(g, b)
	}
	e, err := elgamal.ExponentiationChallenge(s, bases, images, c, aux)
	if err != nil {
		panic(err)
	}
	return images, &elgamal.Proof{E: e, Z: s.AddExponents(b, s.MulExponents(e, x))}
}

// ProveDecryption partially decrypts ct with the secret key sk and
// proves it. The returned messages are phi_i / gamma^sk_i.
func ProveDecryption(s *elgamal.EncryptionGroup, ct *elgamal.Ciphertext, sk []*big.Int, aux ...hashing.HashableMessage) ([]*big.Int, *elgamal.VectorProof) {
	l := ct.Size()
	if len(sk) < l {
		panic(fmt.Sprintf("key of size %d cannot decrypt %d phis", len(sk), l))
	}
	pk := make([]*big.Int, l)
	m := make([]*big.Int, l)
	for i := 0; i < l; i++ {
		pk[i] = s.Exp(s.G, sk[i])
		m[i] = s.Mul(ct.Phis[i], s.ExpNeg(ct.Gamma, sk[i]))
	}
	y, err := elgamal.DecryptionStatement(s, ct, pk, m)
	if err != nil {
		panic(err)
	}
	b := random.Vector(l, s.Q)
	c := make([]*big.Int, 2*l)
	for i := 0; i < l; i++ {
		c[i] = s.Exp(s.G, b[i])
		c[l+i] = s.Exp(ct.Gamma, b[i])
	}
	e, err := elgamal.DecryptionChallenge(s, ct.Gamma, y, c, pk, m, aux)
	if err != nil {
		panic(err)
	}
	z := make([]*big.Int, l)
	for i := range z {
		z[i] = s.AddExponents(b[i], s.MulExponents(e, sk[i]))
	}
	return m, &elgamal.VectorProof{E: e, Z: z}
}

// ProvePlaintextEquality proves that ct, encrypted with randomness r under
// h, and ctp, encrypted with rp under hp, hold the same plaintext.
func ProvePlaintextEquality(s *elgamal.EncryptionGroup, ct, ctp *elgamal.Ciphertext, h, hp, r, rp *big.Int, aux ...hashing.HashableMessage) *elgamal.VectorProof {
	c0, c1, c0p, c1p := ct.Gamma, ct.Phis[0], ctp.Gamma, ctp.Phis[0]
	ratio, err := s.Div(c1, c1p)
	if err != nil {
		panic(err)
	}
	y := []*big.Int{c0, c0p, ratio}
	b0, b1 := random.Int(s.Q), random.Int(s.Q)
	c := []*big.Int{
		s.Exp(s.G, b0),
		s.Exp(s.G, b1),
		s.Mul(s.Exp(h, b0), s.ExpNeg(hp, b1)),
	}
	e, err := elgamal.PlaintextEqualityChallenge(s, c0, c1, c0p, c1p, h, hp, y, c, aux)
	if err != nil {
		panic(err)
	}
	return &elgamal.VectorProof{E: e, Z: []*big.Int{
		s.AddExponents(b0, s.MulExponents(e, r)),
		s.AddExponents(b1, s.MulExponents(e, rp)),
	}}
}
