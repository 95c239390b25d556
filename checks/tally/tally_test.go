package tally_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/checks/tally"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/ech0222"
	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

var all = map[string]verification.Func{
	"06.01": tally.VerifyTallyCompleteness,
	"07.01": tally.VerifySignatureControlComponentBallotBox,
	"07.02": tally.VerifySignatureControlComponentShuffle,
	"07.03": tally.VerifySignatureTallyComponentShuffle,
	"07.04": tally.VerifySignatureTallyComponentVotes,
	"07.05": tally.VerifySignatureElectionEventContextTally,
	"08.01": tally.VerifyEncryptionGroupConsistency,
	"08.02": tally.VerifyBallotBoxIdsConsistency,
	"08.03": tally.VerifyFileNameBallotBoxIdsConsistency,
	"08.04": tally.VerifyNumberConfirmedEncryptedVotesConsistency,
	"08.05": tally.VerifyElectionEventIdConsistency,
	"08.06": tally.VerifyNodeIdsConsistency,
	"08.07": tally.VerifyFileNameNodeIdsConsistency,
	"08.08": tally.VerifyVerificationCardIdsConsistency,
	"08.09": tally.VerifyNumberDecryptedVotesConsistency,
	"08.10": tally.VerifyShuffleChainConsistency,
	"08.11": tally.VerifyTallyECH0222,
	"09.01": tally.VerifyTallyGroupMembership,
	"10.01": tally.VerifyOnlineControlComponents,
	"10.02": tally.VerifyTallyControlComponent,
}

func run(fn verification.Func, dir directory.Directory, opts ...config.Option) *verification.Result {
	res := verification.NewResult()
	opts = append([]config.Option{config.WithKeyStore(fixtures.KeyStore())}, opts...)
	fn(dir, config.New(opts...), res)
	return res
}

func events(res *verification.Result) string {
	return fmt.Sprintf("errors: %v failures: %v", res.ErrorStrings(), res.FailureStrings())
}

func requireFailures(t *testing.T, res *verification.Result, n int) {
	t.Helper()
	require.False(t, res.HasErrors(), events(res))
	require.Len(t, res.Failures(), n, events(res))
}

func mock() *directory.Mock {
	return directory.NewMock(fixtures.NewElection().Directory())
}

func TestHonestTallyVerifies(t *testing.T) {
	dir := fixtures.NewElection().Directory()
	for id, fn := range all {
		t.Run(id, func(t *testing.T) {
			res := run(fn, dir)
			assert.True(t, res.IsOK(), events(res))
		})
	}
}

func TestCompleteness(t *testing.T) {
	m := mock()
	m.Fail(payloads.KindTallyComponentVotes, "bb-0001", 0, fmt.Errorf("tallyComponentVotesPayload.json: %w", directory.ErrNotFound))
	m.FailFile(directory.ECH0222File, fmt.Errorf("%s: %w", directory.ECH0222File, directory.ErrNotFound))
	res := run(tally.VerifyTallyCompleteness, m)
	requireFailures(t, res, 2)
	assert.Equal(t, []string{
		"eCH-0222.xml is missing",
		"tally_component_votes_payload is missing -> ballot box bb-0001",
	}, res.FailureStrings())

	m = mock()
	m.Fail(payloads.KindControlComponentShuffle, "bb-0002", 3, errors.New("invalid character"))
	res = run(tally.VerifyTallyCompleteness, m)
	assert.False(t, res.HasFailures())
	assert.Len(t, res.Errors(), 1)
}

func TestSignatureTampered(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0001", 3, func(p *payloads.ControlComponentBallotBoxPayload) {
		p.ConfirmedEncryptedVotes = p.ConfirmedEncryptedVotes[1:]
	})
	res := run(tally.VerifySignatureControlComponentBallotBox, m)
	requireFailures(t, res, 1)
	assert.Equal(t, "signature of control_component_ballot_box_payload is not valid -> control_component_ballot_box_payload[3] -> ballot box bb-0001", res.FailureStrings()[0])

	// the other nodes still confirmed every vote
	requireFailures(t, run(tally.VerifyNumberConfirmedEncryptedVotesConsistency, m), 1)
}

func TestVerificationCardMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0001", 2, func(p *payloads.ControlComponentBallotBoxPayload) {
		p.ConfirmedEncryptedVotes[0].ContextIDs.VerificationCardID = "vcs-0001-vc-9999"
	})
	requireFailures(t, run(tally.VerifyNumberConfirmedEncryptedVotesConsistency, m), 1)
	requireFailures(t, run(tally.VerifyVerificationCardIdsConsistency, m), 1)
	requireFailures(t, run(tally.VerifySignatureControlComponentBallotBox, m), 1)
}

func TestIdMutations(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0002", 0, func(p *payloads.TallyComponentShufflePayload) {
		p.BallotBoxID = "bb-0001"
	})
	requireFailures(t, run(tally.VerifyFileNameBallotBoxIdsConsistency, m), 1)
	assert.True(t, run(tally.VerifyBallotBoxIdsConsistency, m).IsOK())

	directory.Mutate(m, "bb-0001", 4, func(p *payloads.ControlComponentShufflePayload) {
		p.ElectionEventID = "ee-0002"
		p.NodeID = 3
	})
	requireFailures(t, run(tally.VerifyElectionEventIdConsistency, m), 1)
	requireFailures(t, run(tally.VerifyNodeIdsConsistency, m), 1)
	requireFailures(t, run(tally.VerifyFileNameNodeIdsConsistency, m), 1)
}

func TestEncryptionGroupMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0002", 0, func(p *payloads.TallyComponentVotesPayload) {
		p.EncryptionGroup.G = big.NewInt(9)
	})
	res := run(tally.VerifyEncryptionGroupConsistency, m)
	requireFailures(t, res, 1)
	assert.Equal(t, "g not equal: 0x4 != 0x9 -> tally_component_votes_payload -> ballot box bb-0002", res.FailureStrings()[0])
}

func TestPaddingRule(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0002", 0, func(p *payloads.TallyComponentShufflePayload) {
		p.VerifiableShuffle.ShuffledCiphertexts = p.VerifiableShuffle.ShuffledCiphertexts[:1]
	})
	res := run(tally.VerifyNumberDecryptedVotesConsistency, m)
	requireFailures(t, res, 2)
	assert.Contains(t, res.FailureStrings()[0], "number of shuffled ciphertexts 1 does not match 1 decrypted votes")
}

func TestShuffleChain(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0001", 3, func(p *payloads.ControlComponentShufflePayload) {
		d := &p.VerifiableDecryptions
		d.Ciphertexts = d.Ciphertexts[:len(d.Ciphertexts)-1]
	})
	requireFailures(t, run(tally.VerifyShuffleChainConsistency, m), 2)
}

func TestShuffleChainComparesGammas(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0001", 2, func(p *payloads.ControlComponentShufflePayload) {
		ct := p.VerifiableDecryptions.Ciphertexts[1]
		ct.Gamma = new(big.Int).Rem(new(big.Int).Mul(ct.Gamma, ct.Gamma), p.EncryptionGroup.P)
	})
	res := run(tally.VerifyShuffleChainConsistency, m)
	requireFailures(t, res, 1)
	assert.Contains(t, res.FailureStrings()[0], "decrypted ciphertext 1 of control_component_shuffle_payload[2]")
}

func TestDecryptedPhisAreBoundByTheDecryptionProofs(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0001", 4, func(p *payloads.ControlComponentShufflePayload) {
		ct := p.VerifiableDecryptions.Ciphertexts[0]
		ct.Phis[0] = new(big.Int).Rem(new(big.Int).Mul(ct.Phis[0], ct.Phis[0]), p.EncryptionGroup.P)
	})
	assert.True(t, run(tally.VerifyShuffleChainConsistency, m).IsOK())

	res := run(tally.VerifyOnlineControlComponents, m)
	requireFailures(t, res, 1)
	assert.Equal(t, "decryption proof 0 not valid -> control_component_shuffle_payload[4] -> ballot box bb-0001", res.FailureStrings()[0])
}

func TestGroupMembershipContainsUnreadablePayload(t *testing.T) {
	m := mock()
	m.Fail(payloads.KindControlComponentShuffle, "bb-0001", 2, errors.New("broken"))
	directory.Mutate(m, "bb-0002", 0, func(p *payloads.TallyComponentShufflePayload) {
		p.VerifiableShuffle.ShuffledCiphertexts[0].Gamma = big.NewInt(0)
	})
	res := run(tally.VerifyTallyGroupMembership, m)
	require.Len(t, res.Errors(), 1, events(res))
	require.Len(t, res.Failures(), 1, events(res))
	assert.Equal(t, "cannot read control_component_shuffle_payload[2]: broken -> ballot box bb-0001", res.ErrorStrings()[0])
	assert.Contains(t, res.FailureStrings()[0], "ballot box bb-0002")
}

func TestDecryptionProofMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0001", 2, func(p *payloads.ControlComponentShufflePayload) {
		proof := p.VerifiableDecryptions.DecryptionProofs[0]
		proof.E = new(big.Int).Rem(new(big.Int).Add(proof.E, big.NewInt(1)), p.EncryptionGroup.Q)
	})
	res := run(tally.VerifyOnlineControlComponents, m)
	requireFailures(t, res, 1)
	assert.Equal(t, "decryption proof 0 not valid -> control_component_shuffle_payload[2] -> ballot box bb-0001", res.FailureStrings()[0])
	assert.True(t, run(tally.VerifyTallyControlComponent, m).IsOK())
}

func TestVoteProofMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0002", 1, func(p *payloads.ControlComponentBallotBoxPayload) {
		proof := p.ConfirmedEncryptedVotes[0].ExponentiationProof
		proof.Z = new(big.Int).Rem(new(big.Int).Add(proof.Z, big.NewInt(1)), p.EncryptionGroup.Q)
	})
	res := run(tally.VerifyOnlineControlComponents, m)
	requireFailures(t, res, 1)
	assert.Contains(t, res.FailureStrings()[0], "exponentiation proof of card vcs-0002-vc-0000 not valid")
}

func TestTallyShuffleMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0001", 0, func(p *payloads.TallyComponentShufflePayload) {
		cts := p.VerifiableShuffle.ShuffledCiphertexts
		cts[0], cts[1] = cts[1], cts[0]
	})
	res := run(tally.VerifyTallyControlComponent, m)
	require.False(t, res.HasErrors(), events(res))
	require.True(t, res.HasFailures())
	shuffle := false
	for _, f := range res.FailureStrings() {
		if strings.Contains(f, "-> shuffle argument -> tally_component_shuffle_payload") {
			shuffle = true
		}
	}
	assert.True(t, shuffle, events(res))
}

func TestDecodedVotesMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "bb-0001", 0, func(p *payloads.TallyComponentVotesPayload) {
		p.ActualSelectedVotingOptions[0][0] = "q1|maybe"
	})
	res := run(tally.VerifyTallyControlComponent, m)
	requireFailures(t, res, 1)
	assert.Contains(t, res.FailureStrings()[0], `voting option "q1|maybe" of decoded vote 0`)

	res = run(tally.VerifyTallyECH0222, m)
	assert.True(t, res.HasErrors(), "unknown voting options cannot be placed in the raw data")
}

func TestECH0222Mismatch(t *testing.T) {
	m := mock()
	m.MutateDelivery(func(d *ech0222.Delivery) {
		d.RawDataDelivery.RawData.CountingCircles[0].CountingCircleID = "cc-9999"
	})
	res := run(tally.VerifyTallyECH0222, m)
	requireFailures(t, res, 2)
	assert.Equal(t, []string{
		"counting circle cc-0001 differs: missing in the delivery",
		"counting circle cc-9999 differs: not calculated from any ballot box",
	}, res.FailureStrings())

	assert.True(t, run(tally.VerifyTallyECH0222, m, config.WithECH0222(false)).IsOK())
}

func TestECH0222LeavesOutTestBallotBoxes(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.ElectionEventContextPayload) {
		p.ElectionEventContext.VerificationCardSetContexts[1].TestBallotBox = true
	})
	res := run(tally.VerifyTallyECH0222, m)
	requireFailures(t, res, 1)
	assert.Equal(t, "counting circle cc-0002 differs: not calculated from any ballot box", res.FailureStrings()[0])
}

func TestECH0222Unreadable(t *testing.T) {
	m := mock()
	m.FailFile(directory.ElectionConfigurationFile, errors.New("unexpected EOF"))
	res := run(tally.VerifyTallyECH0222, m)
	assert.False(t, res.HasFailures())
	assert.Equal(t, []string{"cannot read electionConfiguration.json: unexpected EOF"}, res.ErrorStrings())
}
