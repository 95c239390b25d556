package elgamal

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
)

// Ciphertext is a multi-recipient ElGamal ciphertext (gamma, phi_0..phi_l-1)
// encrypting l messages with one randomness.
type Ciphertext struct {
	Gamma *big.Int
	Phis  crypto.BigIntSlice
}

// Size is the number of phis.
func (ct *Ciphertext) Size() int {
	return len(ct.Phis)
}

// NeutralCiphertext is the encryption of ones with zero randomness.
func NeutralCiphertext(l int) *Ciphertext {
	ct := &Ciphertext{Gamma: big.NewInt(1), Phis: make(crypto.BigIntSlice, l)}
	for i := range ct.Phis {
		ct.Phis[i] = big.NewInt(1)
	}
	return ct
}

// Encrypt encrypts the messages with randomness r under the first
// len(messages) elements of pk.
func (s *EncryptionGroup) Encrypt(messages []*big.Int, r *big.Int, pk []*big.Int) (*Ciphertext, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("cannot encrypt an empty message")
	}
	if len(pk) < len(messages) {
		return nil, fmt.Errorf("public key of size %d cannot encrypt %d messages", len(pk), len(messages))
	}
	ct := &Ciphertext{Gamma: s.Exp(s.G, r), Phis: make(crypto.BigIntSlice, len(messages))}
	for i, m := range messages {
		ct.Phis[i] = s.Mul(s.Exp(pk[i], r), m)
	}
	return ct, nil
}

// Mul is the homomorphic product of two ciphertexts of the same size.
func (ct *Ciphertext) Mul(s *EncryptionGroup, other *Ciphertext) (*Ciphertext, error) {
	if ct.Size() != other.Size() {
		return nil, fmt.Errorf("cannot multiply ciphertexts of size %d and %d", ct.Size(), other.Size())
	}
	out := &Ciphertext{Gamma: s.Mul(ct.Gamma, other.Gamma), Phis: make(crypto.BigIntSlice, ct.Size())}
	for i := range ct.Phis {
		out.Phis[i] = s.Mul(ct.Phis[i], other.Phis[i])
	}
	return out, nil
}

// Exp raises every element to e.
func (ct *Ciphertext) Exp(s *EncryptionGroup, e *big.Int) *Ciphertext {
	out := &Ciphertext{Gamma: s.Exp(ct.Gamma, e), Phis: make(crypto.BigIntSlice, ct.Size())}
	for i := range ct.Phis {
		out.Phis[i] = s.Exp(ct.Phis[i], e)
	}
	return out
}

// IsMember reports whether every element is in the group.
func (ct *Ciphertext) IsMember(s *EncryptionGroup) bool {
	if !s.IsMember(ct.Gamma) {
		return false
	}
	for _, phi := range ct.Phis {
		if !s.IsMember(phi) {
			return false
		}
	}
	return true
}

func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	if ct == nil || other == nil {
		return ct == other
	}
	return ct.Gamma.Cmp(other.Gamma) == 0 && ct.Phis.Equal(other.Phis)
}

func (ct *Ciphertext) String() string {
	return fmt.Sprintf("Ciphertext[gamma=%s, phis=%d]", ct.Gamma, ct.Size())
}

// HashableMessage is the list (gamma, phi_0, ..., phi_l-1). A nil
// ciphertext is an empty list, which fails to hash.
func (ct *Ciphertext) HashableMessage() hashing.HashableMessage {
	if ct == nil {
		return hashing.List()
	}
	l := make([]hashing.HashableMessage, 0, ct.Size()+1)
	l = append(l, hashing.Int(ct.Gamma))
	for _, phi := range ct.Phis {
		l = append(l, hashing.Int(phi))
	}
	return hashing.List(l...)
}

// CiphertextsHashable hashes a vector of ciphertexts as a list.
func CiphertextsHashable(cts []*Ciphertext) hashing.HashableMessage {
	l := make([]hashing.HashableMessage, len(cts))
	for i, ct := range cts {
		l[i] = ct.HashableMessage()
	}
	return hashing.List(l...)
}

// CiphertextVectorExp returns the product of cts[i]^exps[i]. All the
// ciphertexts must have the same size.
func CiphertextVectorExp(s *EncryptionGroup, cts []*Ciphertext, exps []*big.Int) (*Ciphertext, error) {
	if len(cts) != len(exps) {
		return nil, fmt.Errorf("ciphertext exponentiation of %d ciphertexts with %d exponents", len(cts), len(exps))
	}
	if len(cts) == 0 {
		return nil, fmt.Errorf("ciphertext exponentiation of an empty vector")
	}
	acc := NeutralCiphertext(cts[0].Size())
	for i, ct := range cts {
		var err error
		acc, err = acc.Mul(s, ct.Exp(s, exps[i]))
		if err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}
	}
	return acc, nil
}
