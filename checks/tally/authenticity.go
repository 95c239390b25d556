package tally

import (
	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/keystore"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func signature(res *verification.Result, ks *keystore.KeyStore, ctx string, p payloads.Signed, err error) {
	if compare.Read(res, ctx, err) {
		compare.Scope(res, ctx, func(res *verification.Result) {
			compare.Signature(res, ks, p)
		})
	}
}

func VerifySignatureControlComponentBallotBox(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		for _, item := range bb.ControlComponentBallotBoxes() {
			signature(res, cfg.KeyStore(), indexed(payloads.KindControlComponentBallotBox, item.Index), item.Value, item.Err)
		}
	})
}

func VerifySignatureControlComponentShuffle(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		for _, item := range bb.ControlComponentShuffles() {
			signature(res, cfg.KeyStore(), indexed(payloads.KindControlComponentShuffle, item.Index), item.Value, item.Err)
		}
	})
}

func VerifySignatureTallyComponentShuffle(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		p, err := bb.TallyComponentShuffle()
		signature(res, cfg.KeyStore(), payloads.KindTallyComponentShuffle.String(), p, err)
	})
}

func VerifySignatureTallyComponentVotes(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		p, err := bb.TallyComponentVotes()
		signature(res, cfg.KeyStore(), payloads.KindTallyComponentVotes.String(), p, err)
	})
}

// VerifySignatureElectionEventContextTally checks the election event
// context again, the tally trusts it for the ballot boxes and the primes.
func VerifySignatureElectionEventContextTally(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	p, err := dir.Setup().ElectionEventContext()
	signature(res, cfg.KeyStore(), payloads.KindElectionEventContext.String(), p, err)
}
