package mixnet

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
)

// CommitmentKey is (h, g_1..g_nu) for Pedersen commitments to vectors of
// up to nu exponents.
type CommitmentKey struct {
	H *big.Int
	G []*big.Int
}

// Size is nu.
func (ck *CommitmentKey) Size() int {
	return len(ck.G)
}

func (ck *CommitmentKey) HashableMessage() hashing.HashableMessage {
	return hashing.IntList(append([]*big.Int{ck.H}, ck.G...))
}

// GetVerifiableCommitmentKey derives a commitment key of size k from the
// group alone, so that nobody knows the discrete logs between its
// elements.
func GetVerifiableCommitmentKey(s *elgamal.EncryptionGroup, k int) (*CommitmentKey, error) {
	if k < 1 {
		return nil, fmt.Errorf("invalid commitment key size %d", k)
	}
	var (
		elements = make([]*big.Int, 0, k+1)
		seen     = map[string]bool{}
		count    = uint64(0)
	)
	for i := uint64(0); len(elements) <= k; i++ {
		u, err := hashing.RecursiveHashToZq(s.Q,
			hashing.String("commitmentKey"), hashing.Uint(i), hashing.Uint(count))
		if err != nil {
			return nil, err
		}
		u.Add(u, bigOne)
		w := new(big.Int).Mul(u, u)
		w.Mod(w, s.P)
		key := w.String()
		if w.Cmp(bigOne) == 0 || w.Cmp(s.G) == 0 || seen[key] {
			continue
		}
		seen[key] = true
		elements = append(elements, w)
		count++
	}
	return &CommitmentKey{H: elements[0], G: elements[1:]}, nil
}

// Commit returns h^r * prod g_i^a_i.
func (ck *CommitmentKey) Commit(s *elgamal.EncryptionGroup, a []*big.Int, r *big.Int) (*big.Int, error) {
	if len(a) > ck.Size() {
		return nil, fmt.Errorf("cannot commit to %d values with a key of size %d", len(a), ck.Size())
	}
	c, err := s.MultiExp(ck.G[:len(a)], a)
	if err != nil {
		return nil, err
	}
	return s.Mul(c, s.Exp(ck.H, r)), nil
}

// CommitMatrix commits to each column of a matrix given as a list of
// columns.
func (ck *CommitmentKey) CommitMatrix(s *elgamal.EncryptionGroup, columns [][]*big.Int, r []*big.Int) ([]*big.Int, error) {
	if len(columns) != len(r) {
		return nil, fmt.Errorf("cannot commit to %d columns with %d randomness values", len(columns), len(r))
	}
	out := make([]*big.Int, len(columns))
	for j := range columns {
		c, err := ck.Commit(s, columns[j], r[j])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", j, err)
		}
		out[j] = c
	}
	return out, nil
}

// MatrixDimensions splits n into m rows and n/m columns with m the
// largest divisor of n not above its square root.
func MatrixDimensions(n int) (m, cols int, err error) {
	if n < 2 {
		return 0, 0, fmt.Errorf("cannot shuffle %d ciphertexts", n)
	}
	for i := isqrt(n); i >= 1; i-- {
		if n%i == 0 {
			return i, n / i, nil
		}
	}
	return 1, n, nil
}

func isqrt(n int) int {
	r := 0
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
