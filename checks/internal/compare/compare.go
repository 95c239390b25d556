// Package compare holds the comparisons shared by the setup and tally
// verifications.
package compare

import (
	"errors"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/keystore"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

// Groups compares the parameters one by one, giving one failure per
// differing parameter.
func Groups(expected, actual *elgamal.EncryptionGroup) *verification.Result {
	res := verification.NewResult()
	if expected == nil || actual == nil {
		res.Errorf("encryption group missing")
		return res
	}
	Int(res, "p", expected.P, actual.P)
	Int(res, "q", expected.Q, actual.Q)
	Int(res, "g", expected.G, actual.G)
	return res
}

// Int pushes a failure when a and b differ.
func Int(res *verification.Result, name string, a, b *big.Int) bool {
	if a == nil || b == nil {
		res.Errorf("%s missing", name)
		return false
	}
	return res.Check(a.Cmp(b) == 0, "%s not equal: %s != %s", name, crypto.BigIntToJSON(a), crypto.BigIntToJSON(b))
}

// Ints compares two vectors element-wise. Different lengths give a single
// failure.
func Ints(res *verification.Result, name string, a, b []*big.Int) bool {
	if !res.Check(len(a) == len(b), "%s lengths not equal: %d != %d", name, len(a), len(b)) {
		return false
	}
	ok := true
	for i := range a {
		if a[i] == nil || b[i] == nil {
			res.Errorf("%s[%d] missing", name, i)
			ok = false
			continue
		}
		ok = res.Check(a[i].Cmp(b[i]) == 0, "%s[%d] not equal: %s != %s", name, i, crypto.BigIntToJSON(a[i]), crypto.BigIntToJSON(b[i])) && ok
	}
	return ok
}

// Proofs compares two lists of Schnorr proofs.
func Proofs(res *verification.Result, name string, a, b []*elgamal.Proof) bool {
	if !res.Check(len(a) == len(b), "%s lengths not equal: %d != %d", name, len(a), len(b)) {
		return false
	}
	ok := true
	for i := range a {
		if a[i] == nil || b[i] == nil {
			res.Errorf("%s[%d] missing", name, i)
			ok = false
			continue
		}
		ok = Int(res, fmt.Sprintf("%s[%d].e", name, i), a[i].E, b[i].E) && ok
		ok = Int(res, fmt.Sprintf("%s[%d].z", name, i), a[i].Z, b[i].Z) && ok
	}
	return ok
}

// Signature verifies the signature of p with the key of its authority. A
// missing key or signature is an error, a wrong signature a failure.
func Signature(res *verification.Result, ks *keystore.KeyStore, p payloads.Signed) {
	if ks == nil {
		res.Errorf("no keystore to verify the signature of %s", p.Kind())
		return
	}
	ok, err := payloads.VerifySignature(ks, p)
	if err != nil {
		res.Errorf("cannot verify the signature of %s: %w", p.Kind(), err)
		return
	}
	res.Check(ok, "signature of %s is not valid", p.Kind())
}

// Padded is the number of ciphertexts mixed for the given number of
// votes: at least two are always mixed, padded with trivial encryptions
// of one.
func Padded(votes int) int {
	if votes < 2 {
		return votes + 2
	}
	return votes
}

// ShuffledCount checks the number of shuffled ciphertexts against the
// number of decrypted votes.
func ShuffledCount(res *verification.Result, decrypted, shuffled int) bool {
	return res.Check(Padded(decrypted) == shuffled,
		"number of shuffled ciphertexts %d does not match %d decrypted votes", shuffled, decrypted)
}

// Scope runs fn on a fresh result and appends its events to res under
// ctx.
func Scope(res *verification.Result, ctx string, fn func(res *verification.Result)) {
	sub := verification.NewResult()
	fn(sub)
	res.AppendWithContext(sub, ctx)
}

// Read pushes err as an error under ctx and reports whether there was
// none.
func Read(res *verification.Result, ctx string, err error) bool {
	if err == nil {
		return true
	}
	res.Errorf("cannot read %s: %w", ctx, err)
	return false
}

// Proof turns the outcome of a proof verification into events.
func Proof(res *verification.Result, ok bool, err error, format string, args ...interface{}) bool {
	if err != nil {
		res.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
		return false
	}
	return res.Check(ok, "%s not valid", fmt.Sprintf(format, args...))
}

// Found reports a missing file as a failure and an unreadable one as an
// error.
func Found(res *verification.Result, name string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, directory.ErrNotFound):
		res.Failuref("%s is missing", name)
	default:
		res.Errorf("%s cannot be read: %w", name, err)
	}
}

// FoundItems calls Found for every file of a numbered group.
func FoundItems[T any](res *verification.Result, kind payloads.Kind, items []directory.Item[T]) {
	for _, item := range items {
		Found(res, fmt.Sprintf("%s[%d]", kind, item.Index), item.Err)
	}
}

// Product multiplies the key vectors element-wise. All keys must have
// the length of the first.
func Product(s *elgamal.EncryptionGroup, keys [][]*big.Int) ([]*big.Int, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no keys to combine")
	}
	out := make([]*big.Int, len(keys[0]))
	for i := range out {
		out[i] = big.NewInt(1)
	}
	for k, key := range keys {
		if len(key) != len(out) {
			return nil, fmt.Errorf("key %d has %d elements, expected %d", k, len(key), len(out))
		}
		for i, x := range key {
			if x == nil {
				return nil, fmt.Errorf("key %d element %d missing", k, i)
			}
			out[i] = s.Mul(out[i], x)
		}
	}
	return out, nil
}
