// Package primes holds the small prime helpers used to encode voting
// options as group members.
package primes

import (
	"fmt"

	big "github.com/ncw/gmp"
)

var bigOne = big.NewInt(1)

// IsSmallPrime tests primality of n by trial division.
func IsSmallPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n < 4 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := uint64(5); i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// SatisfiesEulerCriterion reports whether n is a quadratic residue
// modulo the prime p, that is n^((p-1)/2) = 1 mod p.
func SatisfiesEulerCriterion(n, p *big.Int) bool {
	e := new(big.Int).Sub(p, bigOne)
	e.Rsh(e, 1)
	return new(big.Int).Exp(n, e, p).Cmp(bigOne) == 0
}

// SmallPrimeGroupMembers returns the count smallest primes, starting
// from 5, that are members of the quadratic residue group mod p.
func SmallPrimeGroupMembers(p *big.Int, count int) ([]uint64, error) {
	if count < 1 {
		return nil, fmt.Errorf("invalid number of small primes %d", count)
	}
	var (
		members = make([]uint64, 0, count)
		current = uint64(5)
		n       = new(big.Int)
	)
	for len(members) < count {
		n.SetUint64(current)
		if n.Cmp(p) >= 0 {
			return nil, fmt.Errorf("only %d of %d small prime group members below p", len(members), count)
		}
		if IsSmallPrime(current) && SatisfiesEulerCriterion(n, p) {
			members = append(members, current)
		}
		current += 2
	}
	return members, nil
}
