package setup

import (
	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/crypto/primes"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

// VerifyEncryptionParameters checks that the group is a safe prime group
// with a generator of the subgroup of order q, and that the seed matches
// the one of the election event context.
func VerifyEncryptionParameters(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	params, err := s.EncryptionParameters()
	if !compare.Read(res, payloads.KindEncryptionParameters.String(), err) {
		return
	}
	if err := params.EncryptionGroup.Validate(); err != nil {
		res.PushFailure(err)
	}
	res.Check(params.Seed != "", "%s has an empty seed", payloads.KindEncryptionParameters)
	if eec, err := s.ElectionEventContext(); compare.Read(res, payloads.KindElectionEventContext.String(), err) {
		res.Check(eec.Seed == params.Seed, "seed %q of the %s is not %q", eec.Seed, payloads.KindElectionEventContext, params.Seed)
	}
}

// VerifySmallPrimeGroupMembers recomputes the small primes of the group and
// checks every encoded voting option is one of them.
func VerifySmallPrimeGroupMembers(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	params, err := s.EncryptionParameters()
	if !compare.Read(res, payloads.KindEncryptionParameters.String(), err) {
		return
	}
	expected, err := primes.SmallPrimeGroupMembers(params.EncryptionGroup.P, len(params.SmallPrimes))
	if err != nil {
		res.Errorf("cannot compute the small prime group members: %w", err)
		return
	}
	for i, p := range params.SmallPrimes {
		res.Check(p == expected[i], "small prime %d is %d, expected %d", i, p, expected[i])
	}

	eec, err := s.ElectionEventContext()
	if !compare.Read(res, payloads.KindElectionEventContext.String(), err) {
		return
	}
	res.Check(len(params.SmallPrimes) >= eec.ElectionEventContext.MaximumNumberOfVotingOptions,
		"%d small primes for %d voting options", len(params.SmallPrimes), eec.ElectionEventContext.MaximumNumberOfVotingOptions)
	known := map[uint64]bool{}
	for _, p := range params.SmallPrimes {
		known[p] = true
	}
	for _, c := range eec.ElectionEventContext.VerificationCardSetContexts {
		for _, p := range c.PrimesMappingTable.EncodedVotingOptions() {
			res.Check(known[p], "encoded voting option %d of %s is not a small prime group member", p, vcsContext(c.VerificationCardSetID))
		}
	}
}
