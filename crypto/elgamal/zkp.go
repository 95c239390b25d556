package elgamal

import (
	"errors"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
)

// All the proofs here are Fiat-Shamir transformed sigma protocols for a
// homomorphism phi. The verifier recomputes the commitment
//
//	c' = phi(z) * y^-e
//
// and accepts when the challenge hash of (f, y, c', aux) equals e.
//
// Malformed input (missing values, mismatched sizes, values out of range)
// is returned as an error. A well formed proof that does not verify
// returns false.

// Proof has a single response, used by the Schnorr and exponentiation
// proofs.
type Proof struct {
	E, Z *big.Int
}

// VectorProof has one response per exponent, used by the decryption and
// plaintext equality proofs.
type VectorProof struct {
	E *big.Int
	Z crypto.BigIntSlice
}

var ErrMalformedProof = errors.New("malformed proof")

func (s *EncryptionGroup) checkProof(e *big.Int, zs ...*big.Int) error {
	if !s.IsExponent(e) {
		return fmt.Errorf("%w: e is not in Z_q", ErrMalformedProof)
	}
	for i, z := range zs {
		if !s.IsExponent(z) {
			return fmt.Errorf("%w: z[%d] is not in Z_q", ErrMalformedProof, i)
		}
	}
	return nil
}

func checkElements(name string, xs ...*big.Int) error {
	for i, x := range xs {
		if x == nil {
			return fmt.Errorf("missing %s[%d]", name, i)
		}
	}
	return nil
}

// SchnorrChallenge is the challenge for a proof of knowledge of the
// discrete log of y.
func SchnorrChallenge(s *EncryptionGroup, y, c *big.Int, aux []hashing.HashableMessage) (*big.Int, error) {
	return hashing.RecursiveHashToZq(s.Q,
		s.HashableMessage(),
		hashing.Int(y),
		hashing.Int(c),
		hashing.List(append([]hashing.HashableMessage{hashing.String("SchnorrProof")}, aux...)...),
	)
}

// VerifySchnorrProof checks a proof of knowledge of x with y = g^x.
func VerifySchnorrProof(s *EncryptionGroup, proof *Proof, y *big.Int, aux ...hashing.HashableMessage) (bool, error) {
	if proof == nil {
		return false, fmt.Errorf("%w: no proof", ErrMalformedProof)
	}
	if err := checkElements("y", y); err != nil {
		return false, err
	}
	if err := s.checkProof(proof.E, proof.Z); err != nil {
		return false, err
	}
	c := s.Mul(s.Exp(s.G, proof.Z), s.ExpNeg(y, proof.E))
	e, err := SchnorrChallenge(s, y, c, aux)
	if err != nil {
		return false, err
	}
	return e.Cmp(proof.E) == 0, nil
}

// ExponentiationChallenge is the challenge for a proof that all images
// are the bases raised to the same secret exponent.
func ExponentiationChallenge(s *EncryptionGroup, bases, images, c []*big.Int, aux []hashing.HashableMessage) (*big.Int, error) {
	return hashing.RecursiveHashToZq(s.Q,
		hashing.List(hashing.Int(s.P), hashing.Int(s.Q), hashing.IntList(bases)),
		hashing.IntList(images),
		hashing.IntList(c),
		hashing.List(append([]hashing.HashableMessage{hashing.String("ExponentiationProof")}, aux...)...),
	)
}

// VerifyExponentiationProof checks images[i] = bases[i]^x for a single x.
func VerifyExponentiationProof(s *EncryptionGroup, bases, images []*big.Int, proof *Proof, aux ...hashing.HashableMessage) (bool, error) {
	if proof == nil {
		return false, fmt.Errorf("%w: no proof", ErrMalformedProof)
	}
	if len(bases) == 0 || len(bases) != len(images) {
		return false, fmt.Errorf("exponentiation proof with %d bases and %d images", len(bases), len(images))
	}
	if err := checkElements("base", bases...); err != nil {
		return false, err
	}
	if err := checkElements("image", images...); err != nil {
		return false, err
	}
	if err := s.checkProof(proof.E, proof.Z); err != nil {
		return false, err
	}
	c := make([]*big.Int, len(bases))
	for i := range bases {
		c[i] = s.Mul(s.Exp(bases[i], proof.Z), s.ExpNeg(images[i], proof.E))
	}
	e, err := ExponentiationChallenge(s, bases, images, c, aux)
	if err != nil {
		return false, err
	}
	return e.Cmp(proof.E) == 0, nil
}

// DecryptionChallenge is the challenge of a decryption proof over the
// statement y = (pk_0..pk_l-1, phi_0/m_0..phi_l-1/m_l-1).
func DecryptionChallenge(s *EncryptionGroup, gamma *big.Int, y, c, pk, m []*big.Int, aux []hashing.HashableMessage) (*big.Int, error) {
	h := []hashing.HashableMessage{hashing.String("DecryptionProof"), hashing.IntList(pk), hashing.IntList(m)}
	return hashing.RecursiveHashToZq(s.Q,
		hashing.List(hashing.Int(s.P), hashing.Int(s.Q), hashing.Int(s.G), hashing.Int(gamma)),
		hashing.IntList(y),
		hashing.IntList(c),
		hashing.List(append(h, aux...)...),
	)
}

// DecryptionStatement returns y for the decryption of ct to m under pk.
func DecryptionStatement(s *EncryptionGroup, ct *Ciphertext, pk, m []*big.Int) ([]*big.Int, error) {
	l := len(m)
	if l == 0 {
		return nil, fmt.Errorf("decryption proof of an empty message")
	}
	if ct == nil || ct.Gamma == nil || ct.Size() < l {
		return nil, fmt.Errorf("decryption proof of %d messages needs a ciphertext of at least that size", l)
	}
	if len(pk) < l {
		return nil, fmt.Errorf("decryption proof of %d messages needs a key of at least that size, got %d", l, len(pk))
	}
	if err := checkElements("phi", ct.Phis[:l]...); err != nil {
		return nil, err
	}
	if err := checkElements("message", m...); err != nil {
		return nil, err
	}
	if err := checkElements("pk", pk[:l]...); err != nil {
		return nil, err
	}
	y := make([]*big.Int, 2*l)
	for i := 0; i < l; i++ {
		y[i] = pk[i]
		q, err := s.Div(ct.Phis[i], m[i])
		if err != nil {
			return nil, fmt.Errorf("message[%d]: %w", i, err)
		}
		y[l+i] = q
	}
	return y, nil
}

// VerifyDecryptionProof checks that ct decrypts to m under the key pk.
func VerifyDecryptionProof(s *EncryptionGroup, ct *Ciphertext, pk, m []*big.Int, proof *VectorProof, aux ...hashing.HashableMessage) (bool, error) {
	if proof == nil {
		return false, fmt.Errorf("%w: no proof", ErrMalformedProof)
	}
	y, err := DecryptionStatement(s, ct, pk, m)
	if err != nil {
		return false, err
	}
	l := len(m)
	if len(proof.Z) != l {
		return false, fmt.Errorf("%w: decryption proof has %d responses for %d messages", ErrMalformedProof, len(proof.Z), l)
	}
	if err := s.checkProof(proof.E, proof.Z...); err != nil {
		return false, err
	}
	c := make([]*big.Int, 2*l)
	for i := 0; i < l; i++ {
		c[i] = s.Mul(s.Exp(s.G, proof.Z[i]), s.ExpNeg(y[i], proof.E))
		c[l+i] = s.Mul(s.Exp(ct.Gamma, proof.Z[i]), s.ExpNeg(y[l+i], proof.E))
	}
	e, err := DecryptionChallenge(s, ct.Gamma, y, c, pk[:l], m, aux)
	if err != nil {
		return false, err
	}
	return e.Cmp(proof.E) == 0, nil
}

// PlaintextEqualityChallenge is the challenge of a plaintext equality
// proof between (c0, c1) under h and (c0p, c1p) under hp.
func PlaintextEqualityChallenge(s *EncryptionGroup, c0, c1, c0p, c1p, h, hp *big.Int, y, c []*big.Int, aux []hashing.HashableMessage) (*big.Int, error) {
	a := []hashing.HashableMessage{
		hashing.String("PlaintextEqualityProof"),
		hashing.Int(c0), hashing.Int(c1), hashing.Int(c0p), hashing.Int(c1p),
	}
	return hashing.RecursiveHashToZq(s.Q,
		hashing.List(hashing.Int(s.P), hashing.Int(s.Q), hashing.Int(s.G), hashing.Int(h), hashing.Int(hp)),
		hashing.IntList(y),
		hashing.IntList(c),
		hashing.List(append(a, aux...)...),
	)
}

// VerifyPlaintextEqualityProof checks that the single phi ciphertexts
// ct under key h and ctp under key hp encrypt the same plaintext.
func VerifyPlaintextEqualityProof(s *EncryptionGroup, ct, ctp *Ciphertext, h, hp *big.Int, proof *VectorProof, aux ...hashing.HashableMessage) (bool, error) {
	if proof == nil {
		return false, fmt.Errorf("%w: no proof", ErrMalformedProof)
	}
	if ct == nil || ctp == nil || ct.Size() != 1 || ctp.Size() != 1 {
		return false, fmt.Errorf("plaintext equality proof needs two ciphertexts of size 1")
	}
	if err := checkElements("element", ct.Gamma, ct.Phis[0], ctp.Gamma, ctp.Phis[0], h, hp); err != nil {
		return false, err
	}
	if len(proof.Z) != 2 {
		return false, fmt.Errorf("%w: plaintext equality proof has %d responses", ErrMalformedProof, len(proof.Z))
	}
	if err := s.checkProof(proof.E, proof.Z...); err != nil {
		return false, err
	}
	c0, c1, c0p, c1p := ct.Gamma, ct.Phis[0], ctp.Gamma, ctp.Phis[0]
	ratio, err := s.Div(c1, c1p)
	if err != nil {
		return false, fmt.Errorf("plaintext equality proof: %w", err)
	}
	y := []*big.Int{c0, c0p, ratio}
	z0, z1 := proof.Z[0], proof.Z[1]
	c := []*big.Int{
		s.Mul(s.Exp(s.G, z0), s.ExpNeg(y[0], proof.E)),
		s.Mul(s.Exp(s.G, z1), s.ExpNeg(y[1], proof.E)),
		s.Mul(s.Mul(s.Exp(h, z0), s.ExpNeg(hp, z1)), s.ExpNeg(y[2], proof.E)),
	}
	e, err := PlaintextEqualityChallenge(s, c0, c1, c0p, c1p, h, hp, y, c, aux)
	if err != nil {
		return false, err
	}
	return e.Cmp(proof.E) == 0, nil
}
