package tally

import (
	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func members(res *verification.Result, s *elgamal.EncryptionGroup, name string, cts []*elgamal.Ciphertext) {
	for i, ct := range cts {
		res.Check(ct.IsMember(s), "%s %d is not in the group", name, i)
	}
}

// VerifyTallyGroupMembership checks that every ciphertext and decrypted
// message of the tally is made of members of the group.
func VerifyTallyGroupMembership(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	params, err := dir.Setup().EncryptionParameters()
	if !compare.Read(res, payloads.KindEncryptionParameters.String(), err) {
		return
	}
	s := params.EncryptionGroup
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		for _, item := range bb.ControlComponentBallotBoxes() {
			ctx := indexed(payloads.KindControlComponentBallotBox, item.Index)
			if !compare.Read(res, ctx, item.Err) {
				continue
			}
			compare.Scope(res, ctx, func(res *verification.Result) {
				for _, v := range item.Value.ConfirmedEncryptedVotes {
					id := v.ContextIDs.VerificationCardID
					res.Check(v.EncryptedVote.IsMember(s), "encrypted vote of card %s is not in the group", id)
					res.Check(v.ExponentiatedEncryptedVote.IsMember(s), "exponentiated encrypted vote of card %s is not in the group", id)
					res.Check(v.EncryptedPartialChoiceReturnCodes.IsMember(s), "encrypted partial choice return codes of card %s are not in the group", id)
				}
			})
		}
		for _, item := range bb.ControlComponentShuffles() {
			ctx := indexed(payloads.KindControlComponentShuffle, item.Index)
			if !compare.Read(res, ctx, item.Err) {
				continue
			}
			compare.Scope(res, ctx, func(res *verification.Result) {
				members(res, s, "shuffled ciphertext", item.Value.VerifiableShuffle.ShuffledCiphertexts)
				members(res, s, "decrypted ciphertext", item.Value.VerifiableDecryptions.Ciphertexts)
			})
		}
		shuffle, err := bb.TallyComponentShuffle()
		if !compare.Read(res, payloads.KindTallyComponentShuffle.String(), err) {
			return
		}
		compare.Scope(res, payloads.KindTallyComponentShuffle.String(), func(res *verification.Result) {
			members(res, s, "shuffled ciphertext", shuffle.VerifiableShuffle.ShuffledCiphertexts)
			for i, m := range shuffle.DecryptedMessages() {
				for k, x := range m {
					res.Check(s.IsMember(x), "element %d of decrypted message %d is not in the group", k, i)
				}
			}
		})
	})
}
