package setup

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func nodeContext(j int) string {
	return fmt.Sprintf("node %d", j)
}

func group(res *verification.Result, ctx string, expected *elgamal.EncryptionGroup, p payloads.Grouped, err error) {
	if !compare.Read(res, ctx, err) {
		return
	}
	res.AppendWithContext(compare.Groups(expected, p.Group()), ctx)
}

func groups[T payloads.Grouped](res *verification.Result, expected *elgamal.EncryptionGroup, kind payloads.Kind, items []directory.Item[T]) {
	for _, item := range items {
		group(res, indexed(kind, item.Index), expected, item.Value, item.Err)
	}
}

// VerifyEncryptionGroupConsistency compares the group of every setup
// payload with the one of the encryption parameters.
func VerifyEncryptionGroupConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	params, err := s.EncryptionParameters()
	if !compare.Read(res, payloads.KindEncryptionParameters.String(), err) {
		return
	}
	expected := params.EncryptionGroup

	eec, err := s.ElectionEventContext()
	group(res, payloads.KindElectionEventContext.String(), expected, eec, err)
	keys, err := s.SetupComponentPublicKeys()
	group(res, payloads.KindSetupComponentPublicKeys.String(), expected, keys, err)
	groups(res, expected, payloads.KindControlComponentPublicKeys, s.ControlComponentPublicKeys())

	for _, vcs := range s.VerificationCardSets() {
		compare.Scope(res, vcsContext(vcs.Name()), func(res *verification.Result) {
			tally, err := vcs.SetupComponentTallyData()
			group(res, payloads.KindSetupComponentTallyData.String(), expected, tally, err)
			groups(res, expected, payloads.KindSetupComponentVerificationData, vcs.SetupComponentVerificationData())
			for _, item := range vcs.ControlComponentCodeShares() {
				ctx := indexed(payloads.KindControlComponentCodeShares, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					continue
				}
				for _, p := range *item.Value {
					res.AppendWithContext(compare.Groups(expected, p.EncryptionGroup), ctx+" "+nodeContext(p.NodeID))
				}
			}
		})
	}
}

// VerifySetupFileNamesConsistency compares the node and chunk ids of the
// payloads with the numbers in their file names.
func VerifySetupFileNamesConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	for _, item := range s.ControlComponentPublicKeys() {
		ctx := indexed(payloads.KindControlComponentPublicKeys, item.Index)
		if !compare.Read(res, ctx, item.Err) {
			continue
		}
		res.Check(item.Value.ControlComponentPublicKeys.NodeID == item.Index,
			"node id %d does not match the file name of %s", item.Value.ControlComponentPublicKeys.NodeID, ctx)
	}
	for _, vcs := range s.VerificationCardSets() {
		compare.Scope(res, vcsContext(vcs.Name()), func(res *verification.Result) {
			for _, item := range vcs.SetupComponentVerificationData() {
				ctx := indexed(payloads.KindSetupComponentVerificationData, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					continue
				}
				res.Check(item.Value.ChunkID == item.Index, "chunk id %d does not match the file name of %s", item.Value.ChunkID, ctx)
			}
			for _, item := range vcs.ControlComponentCodeShares() {
				ctx := indexed(payloads.KindControlComponentCodeShares, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					continue
				}
				for _, p := range *item.Value {
					res.Check(p.ChunkID == item.Index, "chunk id %d of %s does not match the file name of %s", p.ChunkID, nodeContext(p.NodeID), ctx)
				}
			}
		})
	}
}

// keyPairs reads the control component payloads and the setup component
// public keys, calling fn for every node with its key sets from both.
func keyPairs(dir directory.Directory, res *verification.Result, fn func(res *verification.Result, cc, combined *payloads.ControlComponentPublicKeys)) {
	s := dir.Setup()
	setup, err := s.SetupComponentPublicKeys()
	if !compare.Read(res, payloads.KindSetupComponentPublicKeys.String(), err) {
		return
	}
	for _, item := range s.ControlComponentPublicKeys() {
		ctx := indexed(payloads.KindControlComponentPublicKeys, item.Index)
		if !compare.Read(res, ctx, item.Err) {
			continue
		}
		cc := &item.Value.ControlComponentPublicKeys
		combined, ok := setup.ControlComponentKeys(cc.NodeID)
		if !res.Check(ok, "%s has no keys for %s", payloads.KindSetupComponentPublicKeys, nodeContext(cc.NodeID)) {
			continue
		}
		compare.Scope(res, ctx, func(res *verification.Result) {
			fn(res, cc, combined)
		})
	}
}

// VerifyCCrChoiceReturnCodesPublicKeyConsistency compares the CCR keys
// published by each node with their copy in the setup component keys.
func VerifyCCrChoiceReturnCodesPublicKeyConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	keyPairs(dir, res, func(res *verification.Result, cc, combined *payloads.ControlComponentPublicKeys) {
		compare.Ints(res, "ccrj choice return codes encryption public key", cc.CcrjChoiceReturnCodesEncryptionPublicKey, combined.CcrjChoiceReturnCodesEncryptionPublicKey)
	})
}

func VerifyCCmElectionPublicKeyConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	keyPairs(dir, res, func(res *verification.Result, cc, combined *payloads.ControlComponentPublicKeys) {
		compare.Ints(res, "ccmj election public key", cc.CcmjElectionPublicKey, combined.CcmjElectionPublicKey)
	})
}

func VerifyCcmAndCcrSchnorrProofsConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	keyPairs(dir, res, func(res *verification.Result, cc, combined *payloads.ControlComponentPublicKeys) {
		compare.Proofs(res, "ccrj schnorr proofs", cc.CcrjSchnorrProofs, combined.CcrjSchnorrProofs)
		compare.Proofs(res, "ccmj schnorr proofs", cc.CcmjSchnorrProofs, combined.CcmjSchnorrProofs)
	})
}

// VerifyChoiceReturnCodesPublicKeyConsistency checks that the choice
// return codes key is the product of the CCR keys of the nodes.
func VerifyChoiceReturnCodesPublicKeyConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	p, err := dir.Setup().SetupComponentPublicKeys()
	if !compare.Read(res, payloads.KindSetupComponentPublicKeys.String(), err) {
		return
	}
	k := p.SetupComponentPublicKeys
	var keys [][]*big.Int
	for _, cc := range k.CombinedControlComponentPublicKeys {
		keys = append(keys, cc.CcrjChoiceReturnCodesEncryptionPublicKey)
	}
	expected, err := compare.Product(p.EncryptionGroup, keys)
	if err != nil {
		res.Errorf("cannot combine the ccrj keys: %w", err)
		return
	}
	compare.Ints(res, "choice return codes encryption public key", expected, k.ChoiceReturnCodesEncryptionPublicKey)
}

// VerifyElectionPublicKeyConsistency checks that the election key is the
// product of the CCM keys and the electoral board key.
func VerifyElectionPublicKeyConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	p, err := dir.Setup().SetupComponentPublicKeys()
	if !compare.Read(res, payloads.KindSetupComponentPublicKeys.String(), err) {
		return
	}
	k := p.SetupComponentPublicKeys
	var keys [][]*big.Int
	for _, cc := range k.CombinedControlComponentPublicKeys {
		keys = append(keys, cc.CcmjElectionPublicKey)
	}
	keys = append(keys, k.ElectoralBoardPublicKey)
	expected, err := compare.Product(p.EncryptionGroup, keys)
	if err != nil {
		res.Errorf("cannot combine the ccmj and electoral board keys: %w", err)
		return
	}
	compare.Ints(res, "election public key", expected, k.ElectionPublicKey)
}

// VerifyIdsConsistency checks the election event id of every payload and
// the verification card set and card ids within every set.
func VerifyIdsConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	eec, err := s.ElectionEventContext()
	if !compare.Read(res, payloads.KindElectionEventContext.String(), err) {
		return
	}
	ee := eec.ElectionEventContext.ElectionEventID
	checkEE := func(res *verification.Result, ctx, id string) {
		res.Check(id == ee, "election event id %q of %s is not %q", id, ctx, ee)
	}

	if keys, err := s.SetupComponentPublicKeys(); compare.Read(res, payloads.KindSetupComponentPublicKeys.String(), err) {
		checkEE(res, payloads.KindSetupComponentPublicKeys.String(), keys.ElectionEventID)
	}
	for _, item := range s.ControlComponentPublicKeys() {
		ctx := indexed(payloads.KindControlComponentPublicKeys, item.Index)
		if compare.Read(res, ctx, item.Err) {
			checkEE(res, ctx, item.Value.ElectionEventID)
		}
	}

	for _, vcs := range s.VerificationCardSets() {
		name := vcs.Name()
		compare.Scope(res, vcsContext(name), func(res *verification.Result) {
			_, ok := eec.ContextForVerificationCardSet(name)
			res.Check(ok, "verification card set %s is not in the %s", name, payloads.KindElectionEventContext)
			checkVCS := func(ctx, id string) {
				res.Check(id == name, "verification card set id %q of %s is not %q", id, ctx, name)
			}

			var cards []string
			if tally, err := vcs.SetupComponentTallyData(); compare.Read(res, payloads.KindSetupComponentTallyData.String(), err) {
				ctx := payloads.KindSetupComponentTallyData.String()
				checkEE(res, ctx, tally.ElectionEventID)
				checkVCS(ctx, tally.VerificationCardSetID)
				cards = tally.VerificationCardIDs
			}

			chunks := map[int][]string{}
			var all []string
			for _, item := range vcs.SetupComponentVerificationData() {
				ctx := indexed(payloads.KindSetupComponentVerificationData, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					continue
				}
				checkEE(res, ctx, item.Value.ElectionEventID)
				checkVCS(ctx, item.Value.VerificationCardSetID)
				var ids []string
				for _, d := range item.Value.SetupComponentVerificationData {
					ids = append(ids, d.VerificationCardID)
				}
				chunks[item.Index] = ids
				all = append(all, ids...)
			}
			if cards != nil {
				compareIDs(res, "verification card ids of the verification data", all, cards)
			}

			for _, item := range vcs.ControlComponentCodeShares() {
				ctx := indexed(payloads.KindControlComponentCodeShares, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					continue
				}
				for _, p := range *item.Value {
					pctx := ctx + " " + nodeContext(p.NodeID)
					checkEE(res, pctx, p.ElectionEventID)
					checkVCS(pctx, p.VerificationCardSetID)
					expected, ok := chunks[item.Index]
					if !ok {
						continue
					}
					var ids []string
					for _, share := range p.ControlComponentCodeShares {
						ids = append(ids, share.VerificationCardID)
					}
					compareIDs(res, "verification card ids of "+pctx, ids, expected)
				}
			}
		})
	}
}

func compareIDs(res *verification.Result, name string, actual, expected []string) {
	if !res.Check(len(actual) == len(expected), "%s: %d ids, expected %d", name, len(actual), len(expected)) {
		return
	}
	for i := range actual {
		res.Check(actual[i] == expected[i], "%s: id %d is %q, expected %q", name, i, actual[i], expected[i])
	}
}

// VerifyNodeIdsConsistency checks that the control component keys and
// every chunk of code shares come from the nodes 1 to 4, in order.
func VerifyNodeIdsConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	if keys, err := s.SetupComponentPublicKeys(); compare.Read(res, payloads.KindSetupComponentPublicKeys.String(), err) {
		var ids []int
		for _, cc := range keys.SetupComponentPublicKeys.CombinedControlComponentPublicKeys {
			ids = append(ids, cc.NodeID)
		}
		nodeIDs(res, payloads.KindSetupComponentPublicKeys.String(), ids)
	}
	for _, vcs := range s.VerificationCardSets() {
		compare.Scope(res, vcsContext(vcs.Name()), func(res *verification.Result) {
			for _, item := range vcs.ControlComponentCodeShares() {
				ctx := indexed(payloads.KindControlComponentCodeShares, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					continue
				}
				var ids []int
				for _, p := range *item.Value {
					ids = append(ids, p.NodeID)
				}
				nodeIDs(res, ctx, ids)
			}
		})
	}
}

func nodeIDs(res *verification.Result, ctx string, ids []int) {
	if !res.Check(len(ids) == payloads.ControlComponents, "%s has %d nodes, expected %d", ctx, len(ids), payloads.ControlComponents) {
		return
	}
	for i, id := range ids {
		res.Check(id == i+1, "%s: node %d has id %d", ctx, i+1, id)
	}
}

// VerifyTotalVotersConsistency compares the number of voting cards of
// every set in the election event context with the cards of its setup
// files.
func VerifyTotalVotersConsistency(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	eec, err := s.ElectionEventContext()
	if !compare.Read(res, payloads.KindElectionEventContext.String(), err) {
		return
	}
	sets := map[string]directory.VerificationCardSetDirectory{}
	for _, vcs := range s.VerificationCardSets() {
		sets[vcs.Name()] = vcs
	}
	for _, c := range eec.ElectionEventContext.VerificationCardSetContexts {
		compare.Scope(res, vcsContext(c.VerificationCardSetID), func(res *verification.Result) {
			vcs, ok := sets[c.VerificationCardSetID]
			if !ok {
				res.Errorf("no directory for the verification card set")
				return
			}
			if tally, err := vcs.SetupComponentTallyData(); compare.Read(res, payloads.KindSetupComponentTallyData.String(), err) {
				res.Check(len(tally.VerificationCardIDs) == c.NumberOfVotingCards,
					"%s has %d verification cards, expected %d", payloads.KindSetupComponentTallyData, len(tally.VerificationCardIDs), c.NumberOfVotingCards)
			}
			total := 0
			for _, item := range vcs.SetupComponentVerificationData() {
				ctx := indexed(payloads.KindSetupComponentVerificationData, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					return
				}
				total += len(item.Value.SetupComponentVerificationData)
			}
			res.Check(total == c.NumberOfVotingCards,
				"%s has %d verification cards, expected %d", payloads.KindSetupComponentVerificationData, total, c.NumberOfVotingCards)
		})
	}
}
