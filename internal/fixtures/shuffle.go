package fixtures

import (
	"fmt"
	mrand "math/rand"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/mixnet"
	"github.com/thechriswalker/go-evote-verifier/crypto/random"
)

// ProveSingleValueProduct proves that the vector a, committed with
// randomness r in ca, multiplies to b.
func ProveSingleValueProduct(c *mixnet.Context, ca *big.Int, a []*big.Int, r *big.Int) (*big.Int, *mixnet.SingleValueProductArgument, error) {
	s := c.Group
	n := len(a)
	if n < 2 {
		return nil, nil, fmt.Errorf("single value product of %d values", n)
	}
	// running products
	bs := make([]*big.Int, n)
	bs[0] = a[0]
	for i := 1; i < n; i++ {
		bs[i] = s.MulExponents(bs[i-1], a[i])
	}
	b := bs[n-1]

	d := random.Vector(n, s.Q)
	rd := random.Int(s.Q)
	delta := make([]*big.Int, n)
	delta[0] = d[0]
	delta[n-1] = big.NewInt(0)
	for i := 1; i < n-1; i++ {
		delta[i] = random.Int(s.Q)
	}
	s0, sx := random.Int(s.Q), random.Int(s.Q)

	lower := make([]*big.Int, n-1)
	upper := make([]*big.Int, n-1)
	for i := 0; i < n-1; i++ {
		lower[i] = s.NegExponent(s.MulExponents(delta[i], d[i+1]))
		u := s.AddExponents(delta[i+1], s.NegExponent(s.MulExponents(a[i+1], delta[i])))
		upper[i] = s.AddExponents(u, s.NegExponent(s.MulExponents(bs[i], d[i+1])))
	}
	cd, err := c.CK.Commit(s, d, rd)
	if err != nil {
		return nil, nil, err
	}
	cLower, err := c.CK.Commit(s, lower, s0)
	if err != nil {
		return nil, nil, err
	}
	cUpper, err := c.CK.Commit(s, upper, sx)
	if err != nil {
		return nil, nil, err
	}
	x, err := c.SingleValueProductChallenge(ca, b, cd, cLower, cUpper)
	if err != nil {
		return nil, nil, err
	}
	at := make(crypto.BigIntSlice, n)
	bt := make(crypto.BigIntSlice, n)
	for i := 0; i < n; i++ {
		at[i] = s.AddExponents(s.MulExponents(x, a[i]), d[i])
		bt[i] = s.AddExponents(s.MulExponents(x, bs[i]), delta[i])
	}
	return b, &mixnet.SingleValueProductArgument{
		CD:          crypto.NewBigInt(cd),
		CLowerDelta: crypto.NewBigInt(cLower),
		CUpperDelta: crypto.NewBigInt(cUpper),
		ATilde:      at,
		BTilde:      bt,
		RTilde:      crypto.NewBigInt(s.AddExponents(s.MulExponents(x, r), rd)),
		STilde:      crypto.NewBigInt(s.AddExponents(s.MulExponents(x, sx), s0)),
	}, nil
}

func zeros(n int) []*big.Int {
	v := make([]*big.Int, n)
	for i := range v {
		v[i] = big.NewInt(0)
	}
	return v
}

// rowsOf splits v into m rows of n values.
func rowsOf(v []*big.Int, m, n int) [][]*big.Int {
	out := make([][]*big.Int, m)
	for i := range out {
		out[i] = v[i*n : (i+1)*n]
	}
	return out
}

// ProveZero proves that sum_i a_i * b_i = 0 under the bilinear map for y,
// where cA[i] commits to a[i] with randomness r[i] and cB[i] commits to b[i]
// with randomness s[i].
func ProveZero(c *mixnet.Context, cA, cB []*big.Int, a [][]*big.Int, r []*big.Int, b [][]*big.Int, s []*big.Int, y *big.Int) (*mixnet.ZeroArgument, error) {
	g := c.Group
	m, n := len(a), len(a[0])

	// a_0 and b_m are the random blinding columns
	as := append([][]*big.Int{random.Vector(n, g.Q)}, a...)
	rs := append([]*big.Int{random.Int(g.Q)}, r...)
	bs := append(append([][]*big.Int{}, b...), random.Vector(n, g.Q))
	ss := append(append([]*big.Int{}, s...), random.Int(g.Q))

	cA0, err := c.CK.Commit(g, as[0], rs[0])
	if err != nil {
		return nil, err
	}
	cBm, err := c.CK.Commit(g, bs[m], ss[m])
	if err != nil {
		return nil, err
	}

	d := zeros(2*m + 1)
	for i := 0; i <= m; i++ {
		for j := 0; j <= m; j++ {
			k := i + m - j
			d[k] = g.AddExponents(d[k], c.Star(as[i], bs[j], y))
		}
	}
	t := random.Vector(2*m+1, g.Q)
	t[m+1] = big.NewInt(0)
	cd := make(crypto.BigIntSlice, 2*m+1)
	for k := range cd {
		if k == m+1 {
			// d[m+1] is the statement itself
			cd[k] = big.NewInt(1)
			continue
		}
		if cd[k], err = c.CK.Commit(g, []*big.Int{d[k]}, t[k]); err != nil {
			return nil, err
		}
	}

	arg := &mixnet.ZeroArgument{CA0: crypto.NewBigInt(cA0), CBm: crypto.NewBigInt(cBm), CD: cd}
	x, err := c.ZeroChallenge(cA, cB, arg)
	if err != nil {
		return nil, err
	}
	xs := g.Powers(x, 0, 2*m+1)

	ap, bp := zeros(n), zeros(n)
	rp, sp, tp := big.NewInt(0), big.NewInt(0), big.NewInt(0)
	for i := 0; i <= m; i++ {
		for col := range ap {
			ap[col] = g.AddExponents(ap[col], g.MulExponents(xs[i], as[i][col]))
		}
		rp = g.AddExponents(rp, g.MulExponents(xs[i], rs[i]))
	}
	for j := 0; j <= m; j++ {
		e := xs[m-j]
		for col := range bp {
			bp[col] = g.AddExponents(bp[col], g.MulExponents(e, bs[j][col]))
		}
		sp = g.AddExponents(sp, g.MulExponents(e, ss[j]))
	}
	for k := range t {
		tp = g.AddExponents(tp, g.MulExponents(xs[k], t[k]))
	}
	arg.APrime = ap
	arg.BPrime = bp
	arg.RPrime = crypto.NewBigInt(rp)
	arg.SPrime = crypto.NewBigInt(sp)
	arg.TPrime = crypto.NewBigInt(tp)
	return arg, nil
}

// ProveHadamard proves that cb commits to the entry-wise product of the
// columns a, where cA[i] commits to a[i] with randomness r[i] and cb commits
// with randomness sb.
func ProveHadamard(c *mixnet.Context, cA []*big.Int, a [][]*big.Int, r []*big.Int, cb, sb *big.Int) (*mixnet.HadamardArgument, error) {
	g := c.Group
	m, n := len(a), len(a[0])
	if m < 2 {
		return nil, fmt.Errorf("hadamard argument over %d columns", m)
	}

	// running entry-wise products, the first and last reuse c_A[0] and cb
	bs := make([][]*big.Int, m)
	sB := make([]*big.Int, m)
	cB := make(crypto.BigIntSlice, m)
	bs[0], sB[0], cB[0] = a[0], r[0], cA[0]
	for i := 1; i < m; i++ {
		bs[i] = make([]*big.Int, n)
		for j := range bs[i] {
			bs[i][j] = g.MulExponents(bs[i-1][j], a[i][j])
		}
		if i == m-1 {
			sB[i], cB[i] = sb, cb
			continue
		}
		sB[i] = random.Int(g.Q)
		var err error
		if cB[i], err = c.CK.Commit(g, bs[i], sB[i]); err != nil {
			return nil, err
		}
	}

	x, y, err := c.HadamardChallenges(cA, cb, cB)
	if err != nil {
		return nil, err
	}
	xs := g.Powers(x, 0, m)

	minusOne := make([]*big.Int, n)
	for i := range minusOne {
		minusOne[i] = g.NegExponent(big.NewInt(1))
	}
	cMinusOne, err := c.CK.Commit(g, minusOne, big.NewInt(0))
	if err != nil {
		return nil, err
	}
	zA := append(append([]*big.Int{}, cA[1:]...), cMinusOne)
	za := append(append([][]*big.Int{}, a[1:]...), minusOne)
	zr := append(append([]*big.Int{}, r[1:]...), big.NewInt(0))

	cD := make([]*big.Int, m)
	zb := make([][]*big.Int, m)
	zs := make([]*big.Int, m)
	for i := 0; i < m-1; i++ {
		cD[i] = g.Exp(cB[i], xs[i+1])
		zb[i] = make([]*big.Int, n)
		for j := range zb[i] {
			zb[i][j] = g.MulExponents(xs[i+1], bs[i][j])
		}
		zs[i] = g.MulExponents(xs[i+1], sB[i])
	}
	cD[m-1] = big.NewInt(1)
	zb[m-1] = zeros(n)
	zs[m-1] = big.NewInt(0)
	for i := 1; i < m; i++ {
		cD[m-1] = g.Mul(cD[m-1], g.Exp(cB[i], xs[i]))
		for j := range zb[m-1] {
			zb[m-1][j] = g.AddExponents(zb[m-1][j], g.MulExponents(xs[i], bs[i][j]))
		}
		zs[m-1] = g.AddExponents(zs[m-1], g.MulExponents(xs[i], sB[i]))
	}

	zero, err := ProveZero(c, zA, cD, za, zr, zb, zs, y)
	if err != nil {
		return nil, err
	}
	return &mixnet.HadamardArgument{CB: cB, ZeroArgument: zero}, nil
}

// ProveProduct proves that the columns a, where cA[i] commits to a[i] with
// randomness r[i], multiply to the returned b.
func ProveProduct(c *mixnet.Context, cA []*big.Int, a [][]*big.Int, r []*big.Int) (*big.Int, *mixnet.ProductArgument, error) {
	g := c.Group
	if len(a) == 1 {
		b, svp, err := ProveSingleValueProduct(c, cA[0], a[0], r[0])
		if err != nil {
			return nil, nil, err
		}
		return b, &mixnet.ProductArgument{SingleValueProductArgument: svp}, nil
	}
	bv := make([]*big.Int, len(a[0]))
	for j := range bv {
		bv[j] = big.NewInt(1)
		for i := range a {
			bv[j] = g.MulExponents(bv[j], a[i][j])
		}
	}
	sb := random.Int(g.Q)
	cb, err := c.CK.Commit(g, bv, sb)
	if err != nil {
		return nil, nil, err
	}
	had, err := ProveHadamard(c, cA, a, r, cb, sb)
	if err != nil {
		return nil, nil, err
	}
	b, svp, err := ProveSingleValueProduct(c, cb, bv, sb)
	if err != nil {
		return nil, nil, err
	}
	return b, &mixnet.ProductArgument{
		CB:                         crypto.NewBigInt(cb),
		HadamardArgument:           had,
		SingleValueProductArgument: svp,
	}, nil
}

// ProveMultiExponentiation proves that C = Enc(1; rho) * prod_i rows[i]^a[i],
// where cA[i] commits to a[i] with randomness r[i].
func ProveMultiExponentiation(c *mixnet.Context, rows [][]*elgamal.Ciphertext, C *elgamal.Ciphertext, cA []*big.Int, a [][]*big.Int, r []*big.Int, rho *big.Int) (*mixnet.MultiExponentiationArgument, error) {
	g := c.Group
	m, n, l := len(rows), len(rows[0]), C.Size()

	as := append([][]*big.Int{random.Vector(n, g.Q)}, a...)
	rs := append([]*big.Int{random.Int(g.Q)}, r...)
	cA0, err := c.CK.Commit(g, as[0], rs[0])
	if err != nil {
		return nil, err
	}

	bs := random.Vector(2*m, g.Q)
	ss := random.Vector(2*m, g.Q)
	taus := random.Vector(2*m, g.Q)
	bs[m], ss[m], taus[m] = big.NewInt(0), big.NewInt(0), rho

	cB := make(crypto.BigIntSlice, 2*m)
	E := make([]*elgamal.Ciphertext, 2*m)
	for k := 0; k < 2*m; k++ {
		if k == m {
			cB[k] = big.NewInt(1)
		} else if cB[k], err = c.CK.Commit(g, []*big.Int{bs[k]}, ss[k]); err != nil {
			return nil, err
		}
		gb := g.Exp(g.G, bs[k])
		msg := make([]*big.Int, l)
		for i := range msg {
			msg[i] = gb
		}
		e, err := g.Encrypt(msg, taus[k], c.PK)
		if err != nil {
			return nil, err
		}
		// the diagonal of rows[i-1]^as[j] with j - i = k - m
		for i := 1; i <= m; i++ {
			j := k - m + i
			if j < 0 || j > m {
				continue
			}
			row, err := elgamal.CiphertextVectorExp(g, rows[i-1], as[j])
			if err != nil {
				return nil, err
			}
			if e, err = e.Mul(g, row); err != nil {
				return nil, err
			}
		}
		E[k] = e
	}

	x, err := c.MultiExponentiationChallenge(rows, C, cA, cA0, cB, E)
	if err != nil {
		return nil, err
	}
	xs := g.Powers(x, 0, 2*m)

	av := zeros(n)
	rv := big.NewInt(0)
	for i := 0; i <= m; i++ {
		for j := range av {
			av[j] = g.AddExponents(av[j], g.MulExponents(xs[i], as[i][j]))
		}
		rv = g.AddExponents(rv, g.MulExponents(xs[i], rs[i]))
	}
	bv, sv, tau := big.NewInt(0), big.NewInt(0), big.NewInt(0)
	for k := range xs {
		bv = g.AddExponents(bv, g.MulExponents(xs[k], bs[k]))
		sv = g.AddExponents(sv, g.MulExponents(xs[k], ss[k]))
		tau = g.AddExponents(tau, g.MulExponents(xs[k], taus[k]))
	}
	return &mixnet.MultiExponentiationArgument{
		CA0: crypto.NewBigInt(cA0),
		CB:  cB,
		E:   E,
		A:   av,
		R:   crypto.NewBigInt(rv),
		B:   crypto.NewBigInt(bv),
		S:   crypto.NewBigInt(sv),
		Tau: crypto.NewBigInt(tau),
	}, nil
}

// Shuffle permutes and re-encrypts cts under pk and proves it. The
// ciphertexts are laid out as an m x n matrix as the verifier expects.
func Shuffle(s *elgamal.EncryptionGroup, pk []*big.Int, cts []*elgamal.Ciphertext) ([]*elgamal.Ciphertext, *mixnet.ShuffleArgument, error) {
	N := len(cts)
	m, n, err := mixnet.MatrixDimensions(N)
	if err != nil {
		return nil, nil, err
	}
	l := cts[0].Size()
	c, err := mixnet.NewContext(s, pk[:l], n)
	if err != nil {
		return nil, nil, err
	}

	perm := mrand.Perm(N)
	rho := random.Vector(N, s.Q)
	ones := make([]*big.Int, l)
	for i := range ones {
		ones[i] = big.NewInt(1)
	}
	shuffled := make([]*elgamal.Ciphertext, N)
	for i := range shuffled {
		re, err := s.Encrypt(ones, rho[i], c.PK)
		if err != nil {
			return nil, nil, err
		}
		if shuffled[i], err = cts[perm[i]].Mul(s, re); err != nil {
			return nil, nil, err
		}
	}

	a := make([]*big.Int, N)
	for i := range a {
		a[i] = big.NewInt(int64(perm[i] + 1))
	}
	r := random.Vector(m, s.Q)
	cA, err := c.CK.CommitMatrix(s, rowsOf(a, m, n), r)
	if err != nil {
		return nil, nil, err
	}
	x, err := c.ShuffleChallengeX(cts, shuffled, cA)
	if err != nil {
		return nil, nil, err
	}
	bv := make([]*big.Int, N)
	for i := range bv {
		bv[i] = new(big.Int).Exp(x, a[i], s.Q)
	}
	sb := random.Vector(m, s.Q)
	cB, err := c.CK.CommitMatrix(s, rowsOf(bv, m, n), sb)
	if err != nil {
		return nil, nil, err
	}
	y, z, err := c.ShuffleChallengesYZ(cts, shuffled, cA, cB)
	if err != nil {
		return nil, nil, err
	}

	// product argument over y*a + b - z
	negZ := s.NegExponent(z)
	dv := make([]*big.Int, N)
	for i := range dv {
		dv[i] = s.AddExponents(s.AddExponents(s.MulExponents(y, a[i]), bv[i]), negZ)
	}
	zs := make([]*big.Int, n)
	for i := range zs {
		zs[i] = negZ
	}
	cMinusZ, err := c.CK.Commit(s, zs, big.NewInt(0))
	if err != nil {
		return nil, nil, err
	}
	cDz := make([]*big.Int, m)
	rd := make([]*big.Int, m)
	for i := range cDz {
		cDz[i] = s.Mul(s.Mul(s.Exp(cA[i], y), cB[i]), cMinusZ)
		rd[i] = s.AddExponents(s.MulExponents(y, r[i]), sb[i])
	}
	_, pa, err := ProveProduct(c, cDz, rowsOf(dv, m, n), rd)
	if err != nil {
		return nil, nil, err
	}

	C, err := c.ShuffleCiphertextProduct(cts, x)
	if err != nil {
		return nil, nil, err
	}
	rhoSum := big.NewInt(0)
	for i := range rho {
		rhoSum = s.AddExponents(rhoSum, s.MulExponents(rho[i], bv[i]))
	}
	rows := make([][]*elgamal.Ciphertext, m)
	for i := range rows {
		rows[i] = shuffled[i*n : (i+1)*n]
	}
	me, err := ProveMultiExponentiation(c, rows, C, cB, rowsOf(bv, m, n), sb, s.NegExponent(rhoSum))
	if err != nil {
		return nil, nil, err
	}

	return shuffled, &mixnet.ShuffleArgument{
		CA:                          cA,
		CB:                          cB,
		ProductArgument:             pa,
		MultiExponentiationArgument: me,
	}, nil
}
