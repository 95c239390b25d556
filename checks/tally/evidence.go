package tally

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/mixnet"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

// keys are the setup data the proofs of the tally are bound to.
type keys struct {
	s      *elgamal.EncryptionGroup
	eec    *payloads.ElectionEventContextPayload
	public *payloads.SetupComponentPublicKeysPayload
}

func readKeys(dir directory.Directory, res *verification.Result) (*keys, bool) {
	s := dir.Setup()
	params, err := s.EncryptionParameters()
	if !compare.Read(res, payloads.KindEncryptionParameters.String(), err) {
		return nil, false
	}
	eec, err := s.ElectionEventContext()
	if !compare.Read(res, payloads.KindElectionEventContext.String(), err) {
		return nil, false
	}
	public, err := s.SetupComponentPublicKeys()
	if !compare.Read(res, payloads.KindSetupComponentPublicKeys.String(), err) {
		return nil, false
	}
	return &keys{s: params.EncryptionGroup, eec: eec, public: public}, true
}

func (k *keys) electionEventID() string {
	return k.eec.ElectionEventContext.ElectionEventID
}

func (k *keys) ccm(j int) ([]*big.Int, error) {
	cc, ok := k.public.ControlComponentKeys(j)
	if !ok {
		return nil, fmt.Errorf("%s has no keys for %s", payloads.KindSetupComponentPublicKeys, nodeContext(j))
	}
	return cc.CcmjElectionPublicKey, nil
}

// shuffleKey is the key node j mixes under: the electoral board key and
// the keys of the nodes from j on, which have not decrypted yet.
func (k *keys) shuffleKey(j int) ([]*big.Int, error) {
	all := [][]*big.Int{k.public.SetupComponentPublicKeys.ElectoralBoardPublicKey}
	for n := j; n <= payloads.ControlComponents; n++ {
		ccm, err := k.ccm(n)
		if err != nil {
			return nil, err
		}
		all = append(all, ccm)
	}
	return compare.Product(k.s, all)
}

// padded appends trivial encryptions of one until there are two
// ciphertexts.
func padded(cts []*elgamal.Ciphertext, size int) []*elgamal.Ciphertext {
	out := append([]*elgamal.Ciphertext{}, cts...)
	for i := len(cts); i < compare.Padded(len(cts)); i++ {
		out = append(out, elgamal.NeutralCiphertext(size))
	}
	return out
}

func shuffleArgument(res *verification.Result, s *elgamal.EncryptionGroup, pk []*big.Int, input []*elgamal.Ciphertext, shuffle *payloads.VerifiableShuffle) {
	failures, err := mixnet.VerifyShuffleArgument(s, pk, input, shuffle.ShuffledCiphertexts, shuffle.ShuffleArgument)
	if err != nil {
		res.Errorf("shuffle argument malformed: %w", err)
		return
	}
	sub := verification.NewResult()
	sub.PushFailures(failures)
	res.AppendWithContext(sub, "shuffle argument")
}

// voteProofs verifies the proofs of the voting client: the vote was
// exponentiated with the verification card key, and it encrypts the same
// selection as the partial choice return codes.
func voteProofs(res *verification.Result, k *keys, data *payloads.SetupComponentTallyDataPayload, v *payloads.EncryptedVerifiableVote) {
	s := k.s
	id := v.ContextIDs.VerificationCardID
	key, ok := data.PublicKey(id)
	if !ok || len(key) != 1 {
		res.Errorf("no verification card public key for card %s", id)
		return
	}
	e1, e1Tilde, e2 := v.EncryptedVote, v.ExponentiatedEncryptedVote, v.EncryptedPartialChoiceReturnCodes
	if e1.Size() < 1 || e1Tilde.Size() != 1 {
		res.Errorf("encrypted vote of card %s malformed", id)
		return
	}
	aux := payloads.VoteAux(v.ContextIDs)

	bases := payloads.ExponentiationBases(s, e1, 1)
	images := []*big.Int{key[0], e1Tilde.Gamma, e1Tilde.Phis[0]}
	ok, err := elgamal.VerifyExponentiationProof(s, bases, images, v.ExponentiationProof, aux...)
	compare.Proof(res, ok, err, "exponentiation proof of card %s", id)

	pk := k.public.SetupComponentPublicKeys
	if len(pk.ElectionPublicKey) == 0 {
		res.Errorf("empty election public key")
		return
	}
	compressed := &elgamal.Ciphertext{Gamma: e2.Gamma, Phis: crypto.BigIntSlice{s.Product(e2.Phis)}}
	ok, err = elgamal.VerifyPlaintextEqualityProof(s, e1Tilde, compressed,
		pk.ElectionPublicKey[0], s.Product(pk.ChoiceReturnCodesEncryptionPublicKey), v.PlaintextEqualityProof, aux...)
	compare.Proof(res, ok, err, "plaintext equality proof of card %s", id)
}

// mixing verifies the shuffles and partial decryptions of the nodes,
// each shuffling the output of the previous one.
func mixing(res *verification.Result, k *keys, bb directory.BallotBoxDirectory, input []*elgamal.Ciphertext) {
	for _, item := range bb.ControlComponentShuffles() {
		ctx := indexed(payloads.KindControlComponentShuffle, item.Index)
		if !compare.Read(res, ctx, item.Err) {
			input = nil
			continue
		}
		p := item.Value
		compare.Scope(res, ctx, func(res *verification.Result) {
			pk, err := k.shuffleKey(p.NodeID)
			if err != nil {
				res.Errorf("cannot combine the shuffle key: %w", err)
				return
			}
			if input == nil {
				res.Errorf("no input to verify the shuffle against")
			} else {
				shuffleArgument(res, k.s, pk, input, &p.VerifiableShuffle)
			}
			ccm, err := k.ccm(p.NodeID)
			if err != nil {
				res.PushError(err)
				return
			}
			dec := p.VerifiableDecryptions
			shuffled := p.VerifiableShuffle.ShuffledCiphertexts
			if !res.Check(len(dec.Ciphertexts) == len(shuffled), "%d decryptions of %d shuffled ciphertexts", len(dec.Ciphertexts), len(shuffled)) {
				return
			}
			aux := payloads.MixDecryptAux(k.electionEventID(), bb.Name(), p.NodeID)
			for i, ct := range shuffled {
				ok, err := elgamal.VerifyDecryptionProof(k.s, ct, ccm, dec.Ciphertexts[i].Phis, dec.DecryptionProofs[i], aux...)
				compare.Proof(res, ok, err, "decryption proof %d", i)
			}
		})
		input = p.VerifiableDecryptions.Ciphertexts
	}
}

// VerifyOnlineControlComponents verifies, for every ballot box, the
// proofs of the confirmed votes and the shuffle and decryption proofs of
// every online control component.
func VerifyOnlineControlComponents(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	k, ok := readKeys(dir, res)
	if !ok {
		return
	}
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		var input []*elgamal.Ciphertext
		for _, item := range bb.ControlComponentBallotBoxes() {
			if item.Index != 1 {
				continue
			}
			ctx := indexed(payloads.KindControlComponentBallotBox, item.Index)
			if !compare.Read(res, ctx, item.Err) {
				break
			}
			input = padded(item.Value.EncryptedVotes(), k.eec.CiphertextSize())
			data, err := tallyData(dir, k.eec, bb.Name())
			if !compare.Read(res, payloads.KindSetupComponentTallyData.String(), err) {
				break
			}
			compare.Scope(res, ctx, func(res *verification.Result) {
				for i := range item.Value.ConfirmedEncryptedVotes {
					voteProofs(res, k, data, &item.Value.ConfirmedEncryptedVotes[i])
				}
			})
		}
		mixing(res, k, bb, input)
	})
}

// decodedVotes checks the decrypted messages against the decoded votes.
// Padding decrypts to one and has no decoded vote.
func decodedVotes(res *verification.Result, k *keys, bb string, messages []crypto.BigIntSlice, votes *payloads.TallyComponentVotesPayload) {
	one := big.NewInt(1)
	var products []*big.Int
	for _, m := range messages {
		if m[0].Cmp(one) != 0 {
			products = append(products, m[0])
		}
	}
	if !res.Check(len(products) == len(votes.Votes), "%d decrypted votes for %d decoded votes", len(products), len(votes.Votes)) {
		return
	}
	c, ok := k.eec.ContextForBallotBox(bb)
	if !ok {
		res.Errorf("%s is not in the %s", bbContext(bb), payloads.KindElectionEventContext)
		return
	}
	table := c.PrimesMappingTable
	for i, primes := range votes.Votes {
		p := big.NewInt(1)
		for _, pr := range primes {
			p = k.s.Mul(p, new(big.Int).SetUint64(pr))
		}
		res.Check(p.Cmp(products[i]) == 0, "decoded vote %d is not the decrypted vote", i)
		options := votes.ActualSelectedVotingOptions[i]
		if !res.Check(len(options) == len(primes), "decoded vote %d has %d primes for %d voting options", i, len(primes), len(options)) {
			continue
		}
		for n, pr := range primes {
			actual, ok := table.ActualVotingOption(pr)
			res.Check(ok && actual == options[n], "voting option %q of decoded vote %d is not encoded by %d", options[n], i, pr)
		}
	}
}

// VerifyTallyControlComponent verifies the final shuffle and decryption
// of every ballot box and the decoding of the decrypted votes.
func VerifyTallyControlComponent(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	k, ok := readKeys(dir, res)
	if !ok {
		return
	}
	eb := k.public.SetupComponentPublicKeys.ElectoralBoardPublicKey
	ballotBoxes(dir, res, func(res *verification.Result, bb directory.BallotBoxDirectory) {
		shuffle, err := bb.TallyComponentShuffle()
		if !compare.Read(res, payloads.KindTallyComponentShuffle.String(), err) {
			return
		}
		var input []*elgamal.Ciphertext
		for _, item := range bb.ControlComponentShuffles() {
			if item.Index != payloads.ControlComponents {
				continue
			}
			if compare.Read(res, indexed(payloads.KindControlComponentShuffle, item.Index), item.Err) {
				input = item.Value.VerifiableDecryptions.Ciphertexts
			}
		}
		compare.Scope(res, payloads.KindTallyComponentShuffle.String(), func(res *verification.Result) {
			if input == nil {
				res.Errorf("no output of %s to verify the shuffle against", nodeContext(payloads.ControlComponents))
			} else {
				shuffleArgument(res, k.s, eb, input, &shuffle.VerifiableShuffle)
			}
			plain := shuffle.VerifiablePlaintextDecryption
			shuffled := shuffle.VerifiableShuffle.ShuffledCiphertexts
			if !res.Check(len(plain.DecryptedVotes) == len(shuffled), "%d decrypted votes of %d shuffled ciphertexts", len(plain.DecryptedVotes), len(shuffled)) {
				return
			}
			aux := payloads.TallyDecryptAux(k.electionEventID(), bb.Name())
			for i, ct := range shuffled {
				ok, err := elgamal.VerifyDecryptionProof(k.s, ct, eb, plain.DecryptedVotes[i].Message, plain.DecryptionProofs[i], aux...)
				compare.Proof(res, ok, err, "decryption proof %d", i)
			}
		})
		votes, err := bb.TallyComponentVotes()
		if !compare.Read(res, payloads.KindTallyComponentVotes.String(), err) {
			return
		}
		compare.Scope(res, payloads.KindTallyComponentVotes.String(), func(res *verification.Result) {
			decodedVotes(res, k, bb.Name(), shuffle.DecryptedMessages(), votes)
		})
	})
}
