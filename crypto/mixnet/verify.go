// Package mixnet verifies the Bayer-Groth shuffle argument made by each
// mixing node, together with its sub-arguments.
//
// Every argument is bound to a Context: the encryption group, the public
// key the shuffle re-encrypts under and a commitment key derived from the
// group. Each verifier returns the checks that did not hold, and an error
// when the argument is malformed (missing values or wrong dimensions) and
// cannot be checked at all.
//
// All challenges hash (p, q, pk, ck) followed by the values listed at
// each argument.
package mixnet

import (
	"errors"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
)

var bigOne = big.NewInt(1)

// ErrMalformedArgument wraps every dimension or missing value error.
var ErrMalformedArgument = errors.New("malformed argument")

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedArgument, fmt.Sprintf(format, args...))
}

type failures []error

func (f *failures) check(ok bool, format string, args ...interface{}) {
	if !ok {
		*f = append(*f, fmt.Errorf(format, args...))
	}
}

func (f *failures) wrap(name string, sub []error) {
	for _, e := range sub {
		*f = append(*f, fmt.Errorf("%s: %w", name, e))
	}
}

func required(names []string, vals ...crypto.BigInt) error {
	for i, v := range vals {
		if v.Int == nil {
			return malformed("missing %s", names[i])
		}
	}
	return nil
}

func requiredSlice(name string, vals []*big.Int) error {
	for i, v := range vals {
		if v == nil {
			return malformed("missing %s[%d]", name, i)
		}
	}
	return nil
}

// Context binds the arguments to a group, key and commitment key.
type Context struct {
	Group *elgamal.EncryptionGroup
	PK    []*big.Int
	CK    *CommitmentKey
}

// NewContext derives the commitment key of size n, the number of columns
// of the shuffle matrix.
func NewContext(s *elgamal.EncryptionGroup, pk []*big.Int, n int) (*Context, error) {
	ck, err := GetVerifiableCommitmentKey(s, n)
	if err != nil {
		return nil, err
	}
	return &Context{Group: s, PK: pk, CK: ck}, nil
}

// Challenge hashes the context followed by vs into Z_q.
func (c *Context) Challenge(vs ...hashing.HashableMessage) (*big.Int, error) {
	args := []hashing.HashableMessage{
		hashing.Int(c.Group.P),
		hashing.Int(c.Group.Q),
		hashing.IntList(c.PK),
		c.CK.HashableMessage(),
	}
	return hashing.RecursiveHashToZq(c.Group.Q, append(args, vs...)...)
}

// Star is the bilinear map sum_j a_j * b_j * y^j, j from 1.
func (c *Context) Star(a, b []*big.Int, y *big.Int) *big.Int {
	s := c.Group
	ys := s.Powers(y, 1, len(a))
	acc := big.NewInt(0)
	for j := range a {
		acc = s.AddExponents(acc, s.MulExponents(s.MulExponents(a[j], b[j]), ys[j]))
	}
	return acc
}

func (c *Context) weightedProduct(first *big.Int, cs []*big.Int, exps []*big.Int) *big.Int {
	s := c.Group
	acc := first
	for i := range cs {
		acc = s.Mul(acc, s.Exp(cs[i], exps[i]))
	}
	return acc
}

// SingleValueProductChallenge is x for the single value product argument.
func (c *Context) SingleValueProductChallenge(ca, b, cd, cLowerDelta, cUpperDelta *big.Int) (*big.Int, error) {
	return c.Challenge(hashing.Int(cUpperDelta), hashing.Int(cLowerDelta), hashing.Int(cd), hashing.Int(b), hashing.Int(ca))
}

// VerifySingleValueProductArgument checks that the vector committed in ca
// multiplies to b.
func (c *Context) VerifySingleValueProductArgument(ca, b *big.Int, arg *SingleValueProductArgument) ([]error, error) {
	if arg == nil {
		return nil, malformed("missing single value product argument")
	}
	if err := required([]string{"c_d", "c_lower_delta", "c_upper_delta", "r_tilde", "s_tilde"},
		arg.CD, arg.CLowerDelta, arg.CUpperDelta, arg.RTilde, arg.STilde); err != nil {
		return nil, err
	}
	n := len(arg.ATilde)
	if n < 2 || len(arg.BTilde) != n {
		return nil, malformed("a_tilde of size %d and b_tilde of size %d", n, len(arg.BTilde))
	}
	if n > c.CK.Size() {
		return nil, malformed("a_tilde of size %d exceeds the commitment key size %d", n, c.CK.Size())
	}
	if err := requiredSlice("a_tilde", arg.ATilde); err != nil {
		return nil, err
	}
	if err := requiredSlice("b_tilde", arg.BTilde); err != nil {
		return nil, err
	}
	s := c.Group
	at, bt := arg.ATilde, arg.BTilde

	x, err := c.SingleValueProductChallenge(ca, b, arg.CD.Int, arg.CLowerDelta.Int, arg.CUpperDelta.Int)
	if err != nil {
		return nil, err
	}

	var f failures

	lhs := s.Mul(s.Exp(ca, x), arg.CD.Int)
	rhs, err := c.CK.Commit(s, at, arg.RTilde.Int)
	if err != nil {
		return nil, err
	}
	f.check(lhs.Cmp(rhs) == 0, "c_a^x * c_d does not commit to a_tilde")

	v := make([]*big.Int, n-1)
	for i := 0; i < n-1; i++ {
		v[i] = s.AddExponents(s.MulExponents(x, bt[i+1]), s.NegExponent(s.MulExponents(bt[i], at[i+1])))
	}
	lhs = s.Mul(s.Exp(arg.CUpperDelta.Int, x), arg.CLowerDelta.Int)
	rhs, err = c.CK.Commit(s, v, arg.STilde.Int)
	if err != nil {
		return nil, err
	}
	f.check(lhs.Cmp(rhs) == 0, "c_Delta^x * c_delta does not commit to the b_tilde recurrence")

	f.check(bt[0].Cmp(at[0]) == 0, "b_tilde[0] != a_tilde[0]")
	f.check(bt[n-1].Cmp(s.MulExponents(x, b)) == 0, "b_tilde[n-1] != x * b")

	return f, nil
}

// ZeroChallenge is x for the zero argument.
func (c *Context) ZeroChallenge(cA, cB []*big.Int, arg *ZeroArgument) (*big.Int, error) {
	return c.Challenge(
		hashing.Int(arg.CA0.Int), hashing.Int(arg.CBm.Int), hashing.IntList(arg.CD),
		hashing.IntList(cB), hashing.IntList(cA),
	)
}

// VerifyZeroArgument checks that sum_i a_i * b_i = 0 under the bilinear map
// for y, for the committed column vectors a_i and b_i.
func (c *Context) VerifyZeroArgument(cA, cB []*big.Int, y *big.Int, arg *ZeroArgument) ([]error, error) {
	if arg == nil {
		return nil, malformed("missing zero argument")
	}
	m := len(cA)
	if m < 1 || len(cB) != m {
		return nil, malformed("zero statement with %d and %d commitments", m, len(cB))
	}
	if err := required([]string{"c_A_0", "c_B_m", "r_prime", "s_prime", "t_prime"},
		arg.CA0, arg.CBm, arg.RPrime, arg.SPrime, arg.TPrime); err != nil {
		return nil, err
	}
	if len(arg.CD) != 2*m+1 {
		return nil, malformed("c_d of size %d, expected %d", len(arg.CD), 2*m+1)
	}
	n := len(arg.APrime)
	if n < 1 || len(arg.BPrime) != n || n > c.CK.Size() {
		return nil, malformed("a_prime of size %d and b_prime of size %d", n, len(arg.BPrime))
	}
	for name, v := range map[string][]*big.Int{"c_d": arg.CD, "a_prime": arg.APrime, "b_prime": arg.BPrime} {
		if err := requiredSlice(name, v); err != nil {
			return nil, err
		}
	}
	s := c.Group

	x, err := c.ZeroChallenge(cA, cB, arg)
	if err != nil {
		return nil, err
	}
	xs := s.Powers(x, 0, 2*m+1)

	var f failures
	f.check(arg.CD[m+1].Cmp(bigOne) == 0, "c_d[m+1] is not 1")

	lhs := c.weightedProduct(arg.CA0.Int, cA, xs[1:m+1])
	rhs, err := c.CK.Commit(s, arg.APrime, arg.RPrime.Int)
	if err != nil {
		return nil, err
	}
	f.check(lhs.Cmp(rhs) == 0, "c_A do not commit to a_prime")

	bexps := make([]*big.Int, m)
	for t := 0; t < m; t++ {
		bexps[t] = xs[m-t]
	}
	lhs = c.weightedProduct(arg.CBm.Int, cB, bexps)
	rhs, err = c.CK.Commit(s, arg.BPrime, arg.SPrime.Int)
	if err != nil {
		return nil, err
	}
	f.check(lhs.Cmp(rhs) == 0, "c_B do not commit to b_prime")

	lhs = c.weightedProduct(big.NewInt(1), arg.CD, xs)
	rhs, err = c.CK.Commit(s, []*big.Int{c.Star(arg.APrime, arg.BPrime, y)}, arg.TPrime.Int)
	if err != nil {
		return nil, err
	}
	f.check(lhs.Cmp(rhs) == 0, "c_d do not commit to a_prime * b_prime")

	return f, nil
}

// HadamardChallenges are x and y for the Hadamard argument.
func (c *Context) HadamardChallenges(cA []*big.Int, cb *big.Int, cB []*big.Int) (x, y *big.Int, err error) {
	x, err = c.Challenge(hashing.IntList(cA), hashing.Int(cb), hashing.IntList(cB))
	if err != nil {
		return nil, nil, err
	}
	y, err = c.Challenge(hashing.String("1"), hashing.IntList(cA), hashing.Int(cb), hashing.IntList(cB))
	return x, y, err
}

// VerifyHadamardArgument checks that cb commits to the entry-wise product
// of the columns committed in cA.
func (c *Context) VerifyHadamardArgument(cA []*big.Int, cb *big.Int, arg *HadamardArgument) ([]error, error) {
	if arg == nil {
		return nil, malformed("missing hadamard argument")
	}
	m := len(cA)
	if m < 2 || len(arg.CB) != m {
		return nil, malformed("hadamard statement of %d commitments with c_B of size %d", m, len(arg.CB))
	}
	if err := requiredSlice("c_B", arg.CB); err != nil {
		return nil, err
	}
	if arg.ZeroArgument == nil {
		return nil, malformed("missing zero argument")
	}
	// the columns have the size of the commitment key
	n := c.CK.Size()
	if len(arg.ZeroArgument.APrime) != n || len(arg.ZeroArgument.BPrime) != n {
		return nil, malformed("zero argument a_prime of size %d and b_prime of size %d, expected %d",
			len(arg.ZeroArgument.APrime), len(arg.ZeroArgument.BPrime), n)
	}
	s := c.Group

	x, y, err := c.HadamardChallenges(cA, cb, arg.CB)
	if err != nil {
		return nil, err
	}
	xs := s.Powers(x, 0, m)

	var f failures
	f.check(arg.CB[0].Cmp(cA[0]) == 0, "c_B[0] != c_A[0]")
	f.check(arg.CB[m-1].Cmp(cb) == 0, "c_B[m-1] != c_b")

	cD := make([]*big.Int, m)
	for i := 0; i < m-1; i++ {
		cD[i] = s.Exp(arg.CB[i], xs[i+1])
	}
	cD[m-1] = c.weightedProduct(big.NewInt(1), arg.CB[1:], xs[1:])

	minusOne := make([]*big.Int, n)
	for i := range minusOne {
		minusOne[i] = s.NegExponent(bigOne)
	}
	cMinusOne, err := c.CK.Commit(s, minusOne, big.NewInt(0))
	if err != nil {
		return nil, err
	}
	zA := make([]*big.Int, 0, m)
	zA = append(zA, cA[1:]...)
	zA = append(zA, cMinusOne)

	zf, err := c.VerifyZeroArgument(zA, cD, y, arg.ZeroArgument)
	if err != nil {
		return nil, fmt.Errorf("zero argument: %w", err)
	}
	f.wrap("zero argument", zf)
	return f, nil
}

// VerifyProductArgument checks that the columns committed in cA multiply
// to b.
func (c *Context) VerifyProductArgument(cA []*big.Int, b *big.Int, arg *ProductArgument) ([]error, error) {
	if arg == nil {
		return nil, malformed("missing product argument")
	}
	m := len(cA)
	if m < 1 {
		return nil, malformed("empty product statement")
	}
	var f failures
	if m == 1 {
		if arg.HadamardArgument != nil {
			return nil, malformed("hadamard argument for a single commitment")
		}
		sf, err := c.VerifySingleValueProductArgument(cA[0], b, arg.SingleValueProductArgument)
		if err != nil {
			return nil, fmt.Errorf("single value product argument: %w", err)
		}
		f.wrap("single value product argument", sf)
		return f, nil
	}
	if arg.CB.Int == nil {
		return nil, malformed("missing c_b")
	}
	hf, err := c.VerifyHadamardArgument(cA, arg.CB.Int, arg.HadamardArgument)
	if err != nil {
		return nil, fmt.Errorf("hadamard argument: %w", err)
	}
	f.wrap("hadamard argument", hf)
	sf, err := c.VerifySingleValueProductArgument(arg.CB.Int, b, arg.SingleValueProductArgument)
	if err != nil {
		return nil, fmt.Errorf("single value product argument: %w", err)
	}
	f.wrap("single value product argument", sf)
	return f, nil
}

func rowsHashable(rows [][]*elgamal.Ciphertext) hashing.HashableMessage {
	l := make([]hashing.HashableMessage, len(rows))
	for i, r := range rows {
		l[i] = elgamal.CiphertextsHashable(r)
	}
	return hashing.List(l...)
}

// MultiExponentiationChallenge is x for the multi exponentiation argument.
func (c *Context) MultiExponentiationChallenge(rows [][]*elgamal.Ciphertext, C *elgamal.Ciphertext, cA []*big.Int, cA0 *big.Int, cB []*big.Int, E []*elgamal.Ciphertext) (*big.Int, error) {
	return c.Challenge(
		rowsHashable(rows), C.HashableMessage(), hashing.IntList(cA),
		hashing.Int(cA0), hashing.IntList(cB), elgamal.CiphertextsHashable(E),
	)
}

func checkCiphertexts(name string, cts []*elgamal.Ciphertext, l int) error {
	for i, ct := range cts {
		if ct == nil || ct.Gamma == nil {
			return malformed("missing %s[%d]", name, i)
		}
		if ct.Size() != l {
			return malformed("%s[%d] has size %d, expected %d", name, i, ct.Size(), l)
		}
		if err := requiredSlice(fmt.Sprintf("%s[%d].phis", name, i), ct.Phis); err != nil {
			return err
		}
	}
	return nil
}

// VerifyMultiExponentiationArgument checks that C is the product over the
// rows of the matrix raised to the exponents committed in cA, re-encrypted.
func (c *Context) VerifyMultiExponentiationArgument(rows [][]*elgamal.Ciphertext, C *elgamal.Ciphertext, cA []*big.Int, arg *MultiExponentiationArgument) ([]error, error) {
	if arg == nil {
		return nil, malformed("missing multi exponentiation argument")
	}
	m := len(rows)
	if m < 1 || len(rows[0]) < 1 {
		return nil, malformed("empty ciphertext matrix")
	}
	n := len(rows[0])
	if C == nil || C.Gamma == nil {
		return nil, malformed("missing ciphertext C")
	}
	l := C.Size()
	if l > len(c.PK) {
		return nil, malformed("ciphertexts of size %d exceed the key size %d", l, len(c.PK))
	}
	for i, r := range rows {
		if len(r) != n {
			return nil, malformed("row %d has %d ciphertexts, expected %d", i, len(r), n)
		}
		if err := checkCiphertexts(fmt.Sprintf("row %d", i), r, l); err != nil {
			return nil, err
		}
	}
	if len(cA) != m {
		return nil, malformed("%d commitments for %d rows", len(cA), m)
	}
	if err := required([]string{"c_A_0", "r", "b", "s", "tau"}, arg.CA0, arg.R, arg.B, arg.S, arg.Tau); err != nil {
		return nil, err
	}
	if len(arg.CB) != 2*m || len(arg.E) != 2*m {
		return nil, malformed("c_B of size %d and E of size %d, expected %d", len(arg.CB), len(arg.E), 2*m)
	}
	if len(arg.A) != n || n > c.CK.Size() {
		return nil, malformed("a of size %d, expected %d", len(arg.A), n)
	}
	if err := requiredSlice("c_B", arg.CB); err != nil {
		return nil, err
	}
	if err := requiredSlice("a", arg.A); err != nil {
		return nil, err
	}
	if err := checkCiphertexts("E", arg.E, l); err != nil {
		return nil, err
	}
	s := c.Group

	x, err := c.MultiExponentiationChallenge(rows, C, cA, arg.CA0.Int, arg.CB, arg.E)
	if err != nil {
		return nil, err
	}
	xs := s.Powers(x, 0, 2*m)

	var f failures
	f.check(arg.CB[m].Cmp(bigOne) == 0, "c_B[m] is not 1")
	f.check(arg.E[m].Equal(C), "E[m] is not C")

	lhs := c.weightedProduct(arg.CA0.Int, cA, xs[1:m+1])
	rhs, err := c.CK.Commit(s, arg.A, arg.R.Int)
	if err != nil {
		return nil, err
	}
	f.check(lhs.Cmp(rhs) == 0, "c_A do not commit to a")

	lhs = c.weightedProduct(big.NewInt(1), arg.CB, xs)
	rhs, err = c.CK.Commit(s, []*big.Int{arg.B.Int}, arg.S.Int)
	if err != nil {
		return nil, err
	}
	f.check(lhs.Cmp(rhs) == 0, "c_B do not commit to b")

	lhsE, err := elgamal.CiphertextVectorExp(s, arg.E, xs)
	if err != nil {
		return nil, err
	}
	gb := s.Exp(s.G, arg.B.Int)
	msg := make([]*big.Int, l)
	for i := range msg {
		msg[i] = gb
	}
	rhsE, err := s.Encrypt(msg, arg.Tau.Int, c.PK)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= m; i++ {
		exps := make([]*big.Int, n)
		for j := range exps {
			exps[j] = s.MulExponents(xs[m-i], arg.A[j])
		}
		row, err := elgamal.CiphertextVectorExp(s, rows[i-1], exps)
		if err != nil {
			return nil, err
		}
		if rhsE, err = rhsE.Mul(s, row); err != nil {
			return nil, err
		}
	}
	f.check(lhsE.Equal(rhsE), "E do not open to the re-encrypted multi exponentiation")

	return f, nil
}

// ShuffleChallengeX is the first shuffle challenge, bound to c_A.
func (c *Context) ShuffleChallengeX(cts, shuffled []*elgamal.Ciphertext, cA []*big.Int) (*big.Int, error) {
	return c.Challenge(elgamal.CiphertextsHashable(cts), elgamal.CiphertextsHashable(shuffled), hashing.IntList(cA))
}

// ShuffleChallengesYZ are the shuffle challenges bound to c_B.
func (c *Context) ShuffleChallengesYZ(cts, shuffled []*elgamal.Ciphertext, cA, cB []*big.Int) (y, z *big.Int, err error) {
	ch, chp := elgamal.CiphertextsHashable(cts), elgamal.CiphertextsHashable(shuffled)
	y, err = c.Challenge(hashing.IntList(cB), ch, chp, hashing.IntList(cA))
	if err != nil {
		return nil, nil, err
	}
	z, err = c.Challenge(hashing.String("1"), hashing.IntList(cB), ch, chp, hashing.IntList(cA))
	return y, z, err
}

// ShuffleCiphertextProduct is prod_i cts_i^(x^i), i from 1.
func (c *Context) ShuffleCiphertextProduct(cts []*elgamal.Ciphertext, x *big.Int) (*elgamal.Ciphertext, error) {
	return elgamal.CiphertextVectorExp(c.Group, cts, c.Group.Powers(x, 1, len(cts)))
}

// VerifyShuffleArgument checks that shuffled is a permuted re-encryption
// of cts under pk.
func VerifyShuffleArgument(s *elgamal.EncryptionGroup, pk []*big.Int, cts, shuffled []*elgamal.Ciphertext, arg *ShuffleArgument) ([]error, error) {
	if arg == nil {
		return nil, malformed("missing shuffle argument")
	}
	N := len(cts)
	if len(shuffled) != N {
		return nil, malformed("shuffle of %d ciphertexts into %d", N, len(shuffled))
	}
	m, n, err := MatrixDimensions(N)
	if err != nil {
		return nil, malformed("%s", err)
	}
	if len(arg.CA) != m || len(arg.CB) != m {
		return nil, malformed("c_A of size %d and c_B of size %d, expected %d", len(arg.CA), len(arg.CB), m)
	}
	if err := requiredSlice("c_A", arg.CA); err != nil {
		return nil, err
	}
	if err := requiredSlice("c_B", arg.CB); err != nil {
		return nil, err
	}
	if cts[0] == nil {
		return nil, malformed("missing ciphertext 0")
	}
	l := cts[0].Size()
	if l < 1 || l > len(pk) {
		return nil, malformed("ciphertexts of size %d for a key of size %d", l, len(pk))
	}
	if err := checkCiphertexts("ciphertexts", cts, l); err != nil {
		return nil, err
	}
	if err := checkCiphertexts("shuffled ciphertexts", shuffled, l); err != nil {
		return nil, err
	}

	c, err := NewContext(s, pk[:l], n)
	if err != nil {
		return nil, err
	}
	x, err := c.ShuffleChallengeX(cts, shuffled, arg.CA)
	if err != nil {
		return nil, err
	}
	y, z, err := c.ShuffleChallengesYZ(cts, shuffled, arg.CA, arg.CB)
	if err != nil {
		return nil, err
	}

	negZ := s.NegExponent(z)
	zs := make([]*big.Int, n)
	for i := range zs {
		zs[i] = negZ
	}
	cMinusZ, err := c.CK.Commit(s, zs, big.NewInt(0))
	if err != nil {
		return nil, err
	}
	cDz := make([]*big.Int, m)
	for i := 0; i < m; i++ {
		cDz[i] = s.Mul(s.Mul(s.Exp(arg.CA[i], y), arg.CB[i]), cMinusZ)
	}

	b := big.NewInt(1)
	xi := new(big.Int).Set(x)
	for i := 1; i <= N; i++ {
		term := s.AddExponents(s.MulExponents(y, big.NewInt(int64(i))), xi)
		term = s.AddExponents(term, negZ)
		b = s.MulExponents(b, term)
		xi = s.MulExponents(xi, x)
	}

	var f failures
	pf, err := c.VerifyProductArgument(cDz, b, arg.ProductArgument)
	if err != nil {
		return nil, fmt.Errorf("product argument: %w", err)
	}
	f.wrap("product argument", pf)

	C, err := c.ShuffleCiphertextProduct(cts, x)
	if err != nil {
		return nil, err
	}
	rows := make([][]*elgamal.Ciphertext, m)
	for i := range rows {
		rows[i] = shuffled[i*n : (i+1)*n]
	}
	mf, err := c.VerifyMultiExponentiationArgument(rows, C, arg.CB, arg.MultiExponentiationArgument)
	if err != nil {
		return nil, fmt.Errorf("multi exponentiation argument: %w", err)
	}
	f.wrap("multi exponentiation argument", mf)
	return f, nil
}
