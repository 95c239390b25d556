package tally

import (
	"fmt"

	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

// entry is one readable payload of a ballot box.
type entry struct {
	ctx string
	p   payloads.Grouped
}

// entries reads every payload of the ballot box. Unreadable ones are
// pushed as errors and left out.
func entries(res *verification.Result, bb directory.BallotBoxDirectory) []entry {
	var out []entry
	for _, item := range bb.ControlComponentBallotBoxes() {
		ctx := indexed(payloads.KindControlComponentBallotBox, item.Index)
		if compare.Read(res, ctx, item.Err) {
			out = append(out, entry{ctx, item.Value})
		}
	}
	for _, item := range bb.ControlComponentShuffles() {
		ctx := indexed(payloads.KindControlComponentShuffle, item.Index)
		if compare.Read(res, ctx, item.Err) {
			out = append(out, entry{ctx, item.Value})
		}
	}
	if p, err := bb.TallyComponentShuffle(); compare.Read(res, payloads.KindTallyComponentShuffle.String(), err) {
		out = append(out, entry{payloads.KindTallyComponentShuffle.String(), p})
	}
	if p, err := bb.TallyComponentVotes(); compare.Read(res, payloads.KindTallyComponentVotes.String(), err) {
		out = append(out, entry{payloads.KindTallyComponentVotes.String(), p})
	}
	return out
}

// ids returns the election event and ballot box ids of a tally payload.
func ids(p payloads.Grouped) (ee, bb string) {
	switch v := p.(type) {
	case *payloads.ControlComponentBallotBoxPayload:
		return v.ElectionEventID, v.BallotBoxID
	case *payloads.ControlComponentShufflePayload:
		return v.ElectionEventID, v.BallotBoxID
	case *payloads.TallyComponentShufflePayload:
		return v.ElectionEventID, v.BallotBoxID
	case *payloads.TallyComponentVotesPayload:
		return v.ElectionEventID, v.BallotBoxID
	}
	return "", ""
}

func electionEventContext(dir directory.Directory, res *verification.Result) (*payloads.ElectionEventContextPayload, bool) {
	eec, err := dir.Setup().ElectionEventContext()
	return eec, compare.Read(res, payloads.KindElectionEventContext.String(), err)
}

// VerifyEncryptionGroupConsistency compares the group of every tally
// payload with the one of the encryption parameters.
func VerifyEncryptionGroupConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	params, err := dir.Setup().EncryptionParameters()
	if !compare.Read(res, payloads.KindEncryptionParameters.String(), err) {
		return
	}
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		for _, e := range entries(res, bb) {
			res.AppendWithContext(compare.Groups(params.EncryptionGroup, e.p.Group()), e.ctx)
		}
	})
}

// VerifyBallotBoxIdsConsistency checks that every ballot box is known to
// the election event context and that its votes come from the
// verification card set voting into it.
func VerifyBallotBoxIdsConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	eec, ok := electionEventContext(dir, res)
	if !ok {
		return
	}
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		for _, e := range entries(res, bb) {
			_, id := ids(e.p)
			_, known := eec.ContextForBallotBox(id)
			res.Check(known, "ballot box id %q of %s is not in the %s", id, e.ctx, payloads.KindElectionEventContext)
		}
		c, ok := eec.ContextForBallotBox(bb.Name())
		if !ok {
			return
		}
		for _, item := range bb.ControlComponentBallotBoxes() {
			if item.Err != nil {
				continue
			}
			ctx := indexed(payloads.KindControlComponentBallotBox, item.Index)
			for _, v := range item.Value.ConfirmedEncryptedVotes {
				res.Check(v.ContextIDs.VerificationCardSetID == c.VerificationCardSetID,
					"vote %s of %s is from verification card set %s, expected %s",
					v.ContextIDs.VerificationCardID, ctx, v.ContextIDs.VerificationCardSetID, c.VerificationCardSetID)
			}
		}
	})
}

// VerifyFileNameBallotBoxIdsConsistency compares the ballot box id of
// every payload with the name of its directory.
func VerifyFileNameBallotBoxIdsConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		for _, e := range entries(res, bb) {
			_, id := ids(e.p)
			res.Check(id == bb.Name(), "ballot box id %q of %s does not match its directory", id, e.ctx)
		}
	})
}

// VerifyNumberConfirmedEncryptedVotesConsistency checks that all the
// nodes confirmed the same votes, at most one per voting card.
func VerifyNumberConfirmedEncryptedVotesConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	eec, ok := electionEventContext(dir, res)
	if !ok {
		return
	}
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		var first []string
		var firstCtx string
		for _, item := range bb.ControlComponentBallotBoxes() {
			ctx := indexed(payloads.KindControlComponentBallotBox, item.Index)
			if !compare.Read(res, ctx, item.Err) {
				continue
			}
			cards := make([]string, len(item.Value.ConfirmedEncryptedVotes))
			seen := map[string]bool{}
			for i, v := range item.Value.ConfirmedEncryptedVotes {
				id := v.ContextIDs.VerificationCardID
				res.Check(!seen[id], "verification card %s voted twice in %s", id, ctx)
				seen[id] = true
				cards[i] = id
			}
			if c, ok := eec.ContextForBallotBox(bb.Name()); ok {
				res.Check(len(cards) <= c.NumberOfVotingCards, "%s has %d votes for %d voting cards", ctx, len(cards), c.NumberOfVotingCards)
			}
			if first == nil {
				first, firstCtx = cards, ctx
				continue
			}
			if !res.Check(len(cards) == len(first), "%s has %d votes, %s has %d", ctx, len(cards), firstCtx, len(first)) {
				continue
			}
			for i := range cards {
				res.Check(cards[i] == first[i], "vote %d of %s is from card %s, %s has card %s", i, ctx, cards[i], firstCtx, first[i])
			}
		}
	})
}

// VerifyElectionEventIdConsistency checks the election event id of every
// tally payload.
func VerifyElectionEventIdConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	eec, ok := electionEventContext(dir, res)
	if !ok {
		return
	}
	expected := eec.ElectionEventContext.ElectionEventID
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		for _, e := range entries(res, bb) {
			id, _ := ids(e.p)
			res.Check(id == expected, "election event id %q of %s is not %q", id, e.ctx, expected)
		}
		for _, item := range bb.ControlComponentBallotBoxes() {
			if item.Err != nil {
				continue
			}
			for _, v := range item.Value.ConfirmedEncryptedVotes {
				res.Check(v.ContextIDs.ElectionEventID == expected, "election event id %q of vote %s is not %q",
					v.ContextIDs.ElectionEventID, v.ContextIDs.VerificationCardID, expected)
			}
		}
	})
}

func nodeIDs(res *verification.Result, kind payloads.Kind, nodes []int) {
	if !res.Check(len(nodes) == payloads.ControlComponents, "%d %s, expected %d", len(nodes), kind, payloads.ControlComponents) {
		return
	}
	for i, id := range nodes {
		res.Check(id == i+1, "%s of node %d has node id %d", kind, i+1, id)
	}
}

// VerifyNodeIdsConsistency checks that the ballot boxes and shuffles come
// from the nodes 1 to 4, in order.
func VerifyNodeIdsConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		var boxes, shuffles []int
		for _, item := range bb.ControlComponentBallotBoxes() {
			if compare.Read(res, indexed(payloads.KindControlComponentBallotBox, item.Index), item.Err) {
				boxes = append(boxes, item.Value.NodeID)
			}
		}
		for _, item := range bb.ControlComponentShuffles() {
			if compare.Read(res, indexed(payloads.KindControlComponentShuffle, item.Index), item.Err) {
				shuffles = append(shuffles, item.Value.NodeID)
			}
		}
		nodeIDs(res, payloads.KindControlComponentBallotBox, boxes)
		nodeIDs(res, payloads.KindControlComponentShuffle, shuffles)
	})
}

// VerifyFileNameNodeIdsConsistency compares the node id of the control
// component payloads with the number in their file name.
func VerifyFileNameNodeIdsConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		for _, item := range bb.ControlComponentBallotBoxes() {
			ctx := indexed(payloads.KindControlComponentBallotBox, item.Index)
			if compare.Read(res, ctx, item.Err) {
				res.Check(item.Value.NodeID == item.Index, "node id %d does not match the file name of %s", item.Value.NodeID, ctx)
			}
		}
		for _, item := range bb.ControlComponentShuffles() {
			ctx := indexed(payloads.KindControlComponentShuffle, item.Index)
			if compare.Read(res, ctx, item.Err) {
				res.Check(item.Value.NodeID == item.Index, "node id %d does not match the file name of %s", item.Value.NodeID, ctx)
			}
		}
	})
}

// tallyData finds the setup tally data of the verification card set
// voting into the ballot box.
func tallyData(dir directory.Directory, eec *payloads.ElectionEventContextPayload, bb string) (*payloads.SetupComponentTallyDataPayload, error) {
	c, ok := eec.ContextForBallotBox(bb)
	if !ok {
		return nil, fmt.Errorf("%s is not in the %s", bbContext(bb), payloads.KindElectionEventContext)
	}
	for _, vcs := range dir.Setup().VerificationCardSets() {
		if vcs.Name() == c.VerificationCardSetID {
			return vcs.SetupComponentTallyData()
		}
	}
	return nil, fmt.Errorf("no directory for verification card set %s", c.VerificationCardSetID)
}

// VerifyVerificationCardIdsConsistency checks that every confirmed vote
// comes from a verification card of the set voting into the ballot box.
func VerifyVerificationCardIdsConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	eec, ok := electionEventContext(dir, res)
	if !ok {
		return
	}
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		data, err := tallyData(dir, eec, bb.Name())
		if !compare.Read(res, payloads.KindSetupComponentTallyData.String(), err) {
			return
		}
		known := map[string]bool{}
		for _, id := range data.VerificationCardIDs {
			known[id] = true
		}
		for _, item := range bb.ControlComponentBallotBoxes() {
			ctx := indexed(payloads.KindControlComponentBallotBox, item.Index)
			if !compare.Read(res, ctx, item.Err) {
				continue
			}
			for _, v := range item.Value.ConfirmedEncryptedVotes {
				res.Check(known[v.ContextIDs.VerificationCardID], "verification card %s of %s is not in the %s",
					v.ContextIDs.VerificationCardID, ctx, payloads.KindSetupComponentTallyData)
			}
		}
	})
}

// VerifyNumberDecryptedVotesConsistency checks the number of votes along
// the mixing: every shuffle mixes the confirmed votes, padded to at least
// two, and the tally decodes as many votes as were confirmed.
func VerifyNumberDecryptedVotesConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		votes, err := bb.TallyComponentVotes()
		if !compare.Read(res, payloads.KindTallyComponentVotes.String(), err) {
			return
		}
		decrypted := len(votes.Votes)
		for _, item := range bb.ControlComponentBallotBoxes() {
			ctx := indexed(payloads.KindControlComponentBallotBox, item.Index)
			if compare.Read(res, ctx, item.Err) {
				confirmed := len(item.Value.ConfirmedEncryptedVotes)
				res.Check(confirmed == decrypted, "%s has %d confirmed votes for %d decrypted votes", ctx, confirmed, decrypted)
			}
		}
		for _, item := range bb.ControlComponentShuffles() {
			ctx := indexed(payloads.KindControlComponentShuffle, item.Index)
			if compare.Read(res, ctx, item.Err) {
				compare.Scope(res, ctx, func(res *verification.Result) {
					compare.ShuffledCount(res, decrypted, len(item.Value.VerifiableShuffle.ShuffledCiphertexts))
				})
			}
		}
		if shuffle, err := bb.TallyComponentShuffle(); compare.Read(res, payloads.KindTallyComponentShuffle.String(), err) {
			compare.Scope(res, payloads.KindTallyComponentShuffle.String(), func(res *verification.Result) {
				compare.ShuffledCount(res, decrypted, len(shuffle.VerifiableShuffle.ShuffledCiphertexts))
				res.Check(len(shuffle.VerifiablePlaintextDecryption.DecryptedVotes) == len(shuffle.VerifiableShuffle.ShuffledCiphertexts),
					"%d decrypted messages for %d shuffled ciphertexts",
					len(shuffle.VerifiablePlaintextDecryption.DecryptedVotes), len(shuffle.VerifiableShuffle.ShuffledCiphertexts))
			})
		}
	})
}

// VerifyShuffleChainConsistency checks that every node decrypts the
// ciphertexts it shuffled and that each shuffle mixes as many
// ciphertexts as the previous node decrypted, up to the tally shuffle.
// A partial decryption keeps gamma and changes the phis, so only gamma
// and the size are compared here. The phis are bound to the shuffled
// ciphertexts by the decryption proofs of VerifyOnlineControlComponents.
func VerifyShuffleChainConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		previous, previousCtx := -1, ""
		for _, item := range bb.ControlComponentShuffles() {
			ctx := indexed(payloads.KindControlComponentShuffle, item.Index)
			if !compare.Read(res, ctx, item.Err) {
				previous = -1
				continue
			}
			shuffled := item.Value.VerifiableShuffle.ShuffledCiphertexts
			dec := item.Value.VerifiableDecryptions.Ciphertexts
			if previous >= 0 {
				res.Check(len(shuffled) == previous, "%s shuffles %d ciphertexts, %s decrypted %d", ctx, len(shuffled), previousCtx, previous)
			}
			if res.Check(len(dec) == len(shuffled), "%s decrypts %d of %d shuffled ciphertexts", ctx, len(dec), len(shuffled)) {
				for i := range dec {
					res.Check(dec[i].Gamma.Cmp(shuffled[i].Gamma) == 0 && dec[i].Size() == shuffled[i].Size(),
						"decrypted ciphertext %d of %s is not a decryption of its shuffled ciphertext", i, ctx)
				}
			}
			previous, previousCtx = len(dec), ctx
		}
		shuffle, err := bb.TallyComponentShuffle()
		if !compare.Read(res, payloads.KindTallyComponentShuffle.String(), err) || previous < 0 {
			return
		}
		n := len(shuffle.VerifiableShuffle.ShuffledCiphertexts)
		res.Check(n == previous, "%s shuffles %d ciphertexts, %s decrypted %d", payloads.KindTallyComponentShuffle, n, previousCtx, previous)
	})
}
