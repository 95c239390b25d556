package elgamal

import (
	"errors"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
)

// ErrNotInvertible is returned when dividing by a multiple of p.
var ErrNotInvertible = errors.New("element has no inverse mod p")

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// EncryptionGroup is the quadratic residue subgroup G_q of Z_p^*, with
// p = 2q + 1 and generator g.
type EncryptionGroup struct {
	P, Q, G *big.Int
}

// NewEncryptionGroup does not validate the parameters, see Validate.
func NewEncryptionGroup(p, q, g *big.Int) *EncryptionGroup {
	return &EncryptionGroup{P: p, Q: q, G: g}
}

// Validate checks the group params are OK. That is that
// P = Q * 2 + 1, that P and Q are (probably) prime
// and that G is a generator of the order Q subgroup.
func (s *EncryptionGroup) Validate() error {
	if s.P == nil || s.Q == nil || s.G == nil {
		return fmt.Errorf("encryption group invalid: missing parameter")
	}
	if !s.P.ProbablyPrime(20) {
		return fmt.Errorf("encryption group invalid: p is not prime")
	}
	if !s.Q.ProbablyPrime(20) {
		return fmt.Errorf("encryption group invalid: q is not prime")
	}
	safe := new(big.Int).Mul(s.Q, bigTwo)
	safe.Add(safe, bigOne)
	if safe.Cmp(s.P) != 0 {
		return fmt.Errorf("encryption group invalid: p != 2q + 1")
	}
	if s.G.Cmp(bigOne) <= 0 || s.G.Cmp(s.P) >= 0 {
		return fmt.Errorf("encryption group invalid: g not in [2, p-1]")
	}
	// now check g^q = 1 mod p
	if new(big.Int).Exp(s.G, s.Q, s.P).Cmp(bigOne) != 0 {
		return fmt.Errorf("encryption group invalid: g^q != 1 mod p")
	}
	return nil
}

// Equal compares the three parameters.
func (s *EncryptionGroup) Equal(o *EncryptionGroup) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.P.Cmp(o.P) == 0 && s.Q.Cmp(o.Q) == 0 && s.G.Cmp(o.G) == 0
}

func (s *EncryptionGroup) String() string {
	return fmt.Sprintf("EncryptionGroup[p=%s, q=%s, g=%s]", s.P, s.Q, s.G)
}

// HashableMessage is the list (p, q, g).
func (s *EncryptionGroup) HashableMessage() hashing.HashableMessage {
	return hashing.List(hashing.Int(s.P), hashing.Int(s.Q), hashing.Int(s.G))
}

// IsMember reports whether 0 < x < p and x^q = 1 mod p.
func (s *EncryptionGroup) IsMember(x *big.Int) bool {
	if x == nil || x.Sign() <= 0 || x.Cmp(s.P) >= 0 {
		return false
	}
	return new(big.Int).Exp(x, s.Q, s.P).Cmp(bigOne) == 0
}

// IsExponent reports whether 0 <= x < q.
func (s *EncryptionGroup) IsExponent(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(s.Q) < 0
}

// Mul returns a * b mod p.
func (s *EncryptionGroup) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, s.P)
}

// Exp returns base^e mod p for e >= 0.
func (s *EncryptionGroup) Exp(base, e *big.Int) *big.Int {
	return new(big.Int).Exp(base, e, s.P)
}

// ExpNeg returns base^(-e) for a group member base, computed as
// base^(q - e mod q).
func (s *EncryptionGroup) ExpNeg(base, e *big.Int) *big.Int {
	return s.Exp(base, s.NegExponent(e))
}

// Inverse returns x^-1 mod p.
func (s *EncryptionGroup) Inverse(x *big.Int) (*big.Int, error) {
	r := new(big.Int).Mod(x, s.P)
	if r.Sign() == 0 {
		return nil, ErrNotInvertible
	}
	return new(big.Int).ModInverse(r, s.P), nil
}

// Div returns a * b^-1 mod p.
func (s *EncryptionGroup) Div(a, b *big.Int) (*big.Int, error) {
	inv, err := s.Inverse(b)
	if err != nil {
		return nil, err
	}
	return s.Mul(a, inv), nil
}

// Product multiplies all elements mod p. The empty product is 1.
func (s *EncryptionGroup) Product(xs []*big.Int) *big.Int {
	r := big.NewInt(1)
	for _, x := range xs {
		r.Mul(r, x)
		r.Mod(r, s.P)
	}
	return r
}

// MultiExp returns the product of bases[i]^exps[i] mod p.
func (s *EncryptionGroup) MultiExp(bases, exps []*big.Int) (*big.Int, error) {
	if len(bases) != len(exps) {
		return nil, fmt.Errorf("multi exponentiation of %d bases with %d exponents", len(bases), len(exps))
	}
	r := big.NewInt(1)
	t := new(big.Int)
	for i := range bases {
		t.Exp(bases[i], exps[i], s.P)
		r.Mul(r, t)
		r.Mod(r, s.P)
	}
	return r, nil
}

// NegExponent returns -e mod q.
func (s *EncryptionGroup) NegExponent(e *big.Int) *big.Int {
	r := new(big.Int).Mod(e, s.Q)
	r.Sub(s.Q, r)
	return r.Mod(r, s.Q)
}

// AddExponents returns a + b mod q.
func (s *EncryptionGroup) AddExponents(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, s.Q)
}

// MulExponents returns a * b mod q.
func (s *EncryptionGroup) MulExponents(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, s.Q)
}

// Powers returns (x^from, x^(from+1), ..., x^(from+n-1)) mod q.
func (s *EncryptionGroup) Powers(x *big.Int, from, n int) []*big.Int {
	out := make([]*big.Int, n)
	cur := new(big.Int).Exp(x, big.NewInt(int64(from)), s.Q)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).Set(cur)
		cur.Mul(cur, x)
		cur.Mod(cur, s.Q)
	}
	return out
}
