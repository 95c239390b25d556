package random

import (
	"crypto/rand"

	gbig "math/big"

	big "github.com/ncw/gmp"
)

// Int returns a random int in [0, max)
func Int(max *big.Int) *big.Int {
	r, err := rand.Int(rand.Reader, new(gbig.Int).SetBytes(max.Bytes()))
	if err != nil {
		// the rand.Reader is broken. Nothing we can do.
		panic(err)
	}
	return new(big.Int).SetBytes(r.Bytes())
}

// Vector returns n random ints in [0, max)
func Vector(n int, max *big.Int) []*big.Int {
	v := make([]*big.Int, n)
	for i := range v {
		v[i] = Int(max)
	}
	return v
}

// Bytes returns n random bytes.
func Bytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
