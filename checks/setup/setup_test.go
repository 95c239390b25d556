package setup_test

import (
	"errors"
	"fmt"
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/checks/setup"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
	"github.com/thechriswalker/go-evote-verifier/keystore"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

var all = map[string]verification.Func{
	"01.01": setup.VerifySetupCompleteness,
	"02.01": setup.VerifySignatureEncryptionParameters,
	"02.02": setup.VerifySignatureElectionEventContext,
	"02.03": setup.VerifySignatureSetupComponentPublicKeys,
	"02.04": setup.VerifySignatureControlComponentPublicKeys,
	"02.05": setup.VerifySignatureSetupComponentTallyData,
	"02.06": setup.VerifySignatureSetupComponentVerificationData,
	"02.07": setup.VerifySignatureControlComponentCodeShares,
	"03.01": setup.VerifyEncryptionGroupConsistency,
	"03.02": setup.VerifySetupFileNamesConsistency,
	"03.03": setup.VerifyCCrChoiceReturnCodesPublicKeyConsistency,
	"03.04": setup.VerifyCCmElectionPublicKeyConsistency,
	"03.05": setup.VerifyCcmAndCcrSchnorrProofsConsistency,
	"03.06": setup.VerifyChoiceReturnCodesPublicKeyConsistency,
	"03.07": setup.VerifyElectionPublicKeyConsistency,
	"03.08": setup.VerifyIdsConsistency,
	"03.09": setup.VerifyNodeIdsConsistency,
	"03.10": setup.VerifyTotalVotersConsistency,
	"04.01": setup.VerifyEncryptionParameters,
	"04.02": setup.VerifySmallPrimeGroupMembers,
	"05.01": setup.VerifySchnorrProofs,
	"05.02": setup.VerifyEncryptedPCCExponentiationProofs,
	"05.03": setup.VerifyEncryptedCKExponentiationProofs,
}

func run(fn verification.Func, dir directory.Directory) *verification.Result {
	res := verification.NewResult()
	fn(dir, config.New(config.WithKeyStore(fixtures.KeyStore())), res)
	return res
}

func events(res *verification.Result) string {
	return fmt.Sprintf("errors: %v failures: %v", res.ErrorStrings(), res.FailureStrings())
}

func mock() *directory.Mock {
	return directory.NewMock(fixtures.NewElection().Directory())
}

func TestHonestElectionVerifies(t *testing.T) {
	dir := fixtures.NewElection().Directory()
	for id, fn := range all {
		t.Run(id, func(t *testing.T) {
			res := run(fn, dir)
			assert.True(t, res.IsOK(), events(res))
			// a second run reads the cached payloads
			res = run(fn, dir)
			assert.True(t, res.IsOK(), events(res))
		})
	}
}

func requireFailures(t *testing.T, res *verification.Result, n int) {
	t.Helper()
	require.False(t, res.HasErrors(), events(res))
	require.Len(t, res.Failures(), n, events(res))
}

func TestCompletenessMissingFile(t *testing.T) {
	m := mock()
	m.Fail(payloads.KindControlComponentPublicKeys, directory.Root, 3, fmt.Errorf("controlComponentPublicKeysPayload.3.json: %w", directory.ErrNotFound))
	res := run(setup.VerifySetupCompleteness, m)
	requireFailures(t, res, 1)
	assert.Equal(t, "control_component_public_keys_payload[3] is missing", res.FailureStrings()[0])
}

func TestCompletenessUnreadableFile(t *testing.T) {
	m := mock()
	m.Fail(payloads.KindSetupComponentTallyData, "vcs-0002", 0, errors.New("unexpected end of JSON input"))
	res := run(setup.VerifySetupCompleteness, m)
	assert.False(t, res.HasFailures())
	assert.Equal(t, []string{
		"setup_component_tally_data_payload cannot be read: unexpected end of JSON input -> verification card set vcs-0002",
	}, res.ErrorStrings())
}

func TestSignatureTampered(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.EncryptionParametersPayload) {
		p.Seed = "tampered"
	})
	res := run(setup.VerifySignatureEncryptionParameters, m)
	requireFailures(t, res, 1)

	directory.Mutate(m, directory.Root, 3, func(p *payloads.ControlComponentPublicKeysPayload) {
		p.ElectionEventID = "ee-0002"
	})
	res = run(setup.VerifySignatureControlComponentPublicKeys, m)
	requireFailures(t, res, 1)
	assert.Contains(t, res.FailureStrings()[0], "control_component_public_keys_payload[3]")
}

func TestSignatureWithoutCertificate(t *testing.T) {
	res := verification.NewResult()
	cfg := config.New(config.WithKeyStore(keystore.New(nil)))
	setup.VerifySignatureSetupComponentTallyData(fixtures.NewElection().Directory(), cfg, res)
	assert.False(t, res.HasFailures())
	assert.Len(t, res.Errors(), len(fixtures.BallotBoxes))
}

func TestEncryptionGroupMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 2, func(p *payloads.ControlComponentPublicKeysPayload) {
		p.EncryptionGroup.P = new(big.Int).Add(p.EncryptionGroup.P, big.NewInt(2))
	})
	res := run(setup.VerifyEncryptionGroupConsistency, m)
	requireFailures(t, res, 1)
	assert.Regexp(t, `^p not equal: 0x[0-9A-F]+ != 0x[0-9A-F]+ -> control_component_public_keys_payload\[2\]$`, res.FailureStrings()[0])
}

func TestFileNameMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "vcs-0001", 0, func(p *payloads.SetupComponentVerificationDataPayload) {
		p.ChunkID = 1
	})
	requireFailures(t, run(setup.VerifySetupFileNamesConsistency, m), 1)
}

func TestKeyConsistencyMutations(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 2, func(p *payloads.ControlComponentPublicKeysPayload) {
		k := &p.ControlComponentPublicKeys
		k.CcrjChoiceReturnCodesEncryptionPublicKey[1] = big.NewInt(16)
		k.CcmjSchnorrProofs[0].E = big.NewInt(1)
	})
	requireFailures(t, run(setup.VerifyCCrChoiceReturnCodesPublicKeyConsistency, m), 1)
	requireFailures(t, run(setup.VerifyCcmAndCcrSchnorrProofsConsistency, m), 1)
	assert.True(t, run(setup.VerifyCCmElectionPublicKeyConsistency, m).IsOK())
}

func TestCombinedKeyMutations(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.SetupComponentPublicKeysPayload) {
		k := &p.SetupComponentPublicKeys
		k.ChoiceReturnCodesEncryptionPublicKey[1] = big.NewInt(16)
		k.ElectionPublicKey[0] = big.NewInt(16)
	})
	requireFailures(t, run(setup.VerifyChoiceReturnCodesPublicKeyConsistency, m), 1)
	requireFailures(t, run(setup.VerifyElectionPublicKeyConsistency, m), 1)
}

func TestUnreadablePayloadIsContained(t *testing.T) {
	m := mock()
	m.Fail(payloads.KindControlComponentPublicKeys, directory.Root, 2, errors.New("broken"))
	directory.Mutate(m, directory.Root, 4, func(p *payloads.ControlComponentPublicKeysPayload) {
		p.ControlComponentPublicKeys.CcmjElectionPublicKey[0] = big.NewInt(16)
	})

	res := run(setup.VerifyCCrChoiceReturnCodesPublicKeyConsistency, m)
	assert.Len(t, res.Errors(), 1)
	assert.False(t, res.HasFailures())

	res = run(setup.VerifyCCmElectionPublicKeyConsistency, m)
	assert.Len(t, res.Errors(), 1)
	assert.Len(t, res.Failures(), 1)
	assert.Contains(t, res.ErrorStrings()[0], "control_component_public_keys_payload[2]")
	assert.Contains(t, res.FailureStrings()[0], "control_component_public_keys_payload[4]")
}

func TestIdsMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "vcs-0002", 0, func(p *payloads.SetupComponentTallyDataPayload) {
		p.ElectionEventID = "ee-0002"
	})
	requireFailures(t, run(setup.VerifyIdsConsistency, m), 1)

	m = mock()
	directory.Mutate(m, "vcs-0001", 0, func(p *payloads.ControlComponentCodeSharesPayloads) {
		(*p)[2].ControlComponentCodeShares[0].VerificationCardID = "unknown"
	})
	requireFailures(t, run(setup.VerifyIdsConsistency, m), 1)
}

func TestNodeIdsMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "vcs-0001", 0, func(p *payloads.ControlComponentCodeSharesPayloads) {
		(*p)[0].NodeID, (*p)[1].NodeID = 2, 1
	})
	requireFailures(t, run(setup.VerifyNodeIdsConsistency, m), 2)
}

func TestTotalVotersMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.ElectionEventContextPayload) {
		p.ElectionEventContext.VerificationCardSetContexts[0].NumberOfVotingCards++
	})
	res := run(setup.VerifyTotalVotersConsistency, m)
	requireFailures(t, res, 2)
	assert.Contains(t, res.FailureStrings()[0], "verification card set vcs-0001")
}

func TestEncryptionParametersMutations(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.ElectionEventContextPayload) {
		p.Seed = "other"
	})
	requireFailures(t, run(setup.VerifyEncryptionParameters, m), 1)

	m = mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.EncryptionParametersPayload) {
		p.EncryptionGroup.G = big.NewInt(1)
	})
	requireFailures(t, run(setup.VerifyEncryptionParameters, m), 1)
}

func TestSmallPrimesMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.EncryptionParametersPayload) {
		p.SmallPrimes[len(p.SmallPrimes)-1] = 163
	})
	requireFailures(t, run(setup.VerifySmallPrimeGroupMembers, m), 1)
}

func TestSmallPrimesCannotBeComputed(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.EncryptionParametersPayload) {
		p.SmallPrimes = nil
	})
	res := run(setup.VerifySmallPrimeGroupMembers, m)
	require.Len(t, res.ErrorStrings(), 1, events(res))
	assert.Contains(t, res.ErrorStrings()[0], "cannot compute the small prime group members")
	assert.Empty(t, res.FailureStrings())
}

func TestSchnorrProofMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, directory.Root, 1, func(p *payloads.ControlComponentPublicKeysPayload) {
		proof := p.ControlComponentPublicKeys.CcrjSchnorrProofs[1]
		proof.E = new(big.Int).Rem(new(big.Int).Add(proof.E, big.NewInt(1)), p.EncryptionGroup.Q)
	})
	res := run(setup.VerifySchnorrProofs, m)
	requireFailures(t, res, 1)
	assert.Equal(t, "ccrj schnorr proof 1 not valid -> control_component_public_keys_payload[1]", res.FailureStrings()[0])

	m = mock()
	directory.Mutate(m, directory.Root, 0, func(p *payloads.SetupComponentPublicKeysPayload) {
		p.ElectionEventID = "ee-0002"
	})
	requireFailures(t, run(setup.VerifySchnorrProofs, m), 1)
}

func TestExponentiationProofMutation(t *testing.T) {
	m := mock()
	directory.Mutate(m, "vcs-0001", 0, func(p *payloads.ControlComponentCodeSharesPayloads) {
		share := &(*p)[1].ControlComponentCodeShares[2]
		ct := share.ExponentiatedEncryptedPartialChoiceReturnCodes
		ct.Phis[0] = new(big.Int).Mul(ct.Phis[0], ct.Phis[0])
		ct.Phis[0].Mod(ct.Phis[0], (*p)[1].EncryptionGroup.P)
	})
	requireFailures(t, run(setup.VerifyEncryptedPCCExponentiationProofs, m), 1)
	assert.True(t, run(setup.VerifyEncryptedCKExponentiationProofs, m).IsOK())
	requireFailures(t, run(setup.VerifySignatureControlComponentCodeShares, m), 1)
}
