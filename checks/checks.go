// Package checks registers the verification functions of both periods
// against the catalogue ids.
package checks

import (
	"github.com/thechriswalker/go-evote-verifier/checks/setup"
	"github.com/thechriswalker/go-evote-verifier/checks/tally"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

var setupFuncs = map[string]verification.Func{
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

var tallyFuncs = map[string]verification.Func{
	"06.01": tally.VerifyTallyCompleteness,
	"07.01": tally.VerifySignatureControlComponentBallotBox,
	"07.02": tally.VerifySignatureControlComponentShuffle,
	"07.03": tally.VerifySignatureTallyComponentShuffle,
	"07.04": tally.VerifySignatureTallyComponentVotes,
	"07.05": tally.VerifySignatureElectionEventContextTally,
	// XML signatures of the eCH-0110 and eCH-0222 exports.
	"07.06": nil,
	"07.07": nil,
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

// Funcs returns the verification functions of the period by id. Ids
// mapped to nil are not implemented.
func Funcs(period verification.Period) map[string]verification.Func {
	if period == verification.Tally {
		return tallyFuncs
	}
	return setupFuncs
}

// NewRunner builds the runner of the configured period over the default
// catalogue.
func NewRunner(dir directory.Directory, cfg *config.VerifierConfig, options ...verification.RunnerOption) (*verification.Runner, error) {
	period, err := verification.ParsePeriod(cfg.Period())
	if err != nil {
		return nil, err
	}
	meta, err := verification.DefaultMetadata()
	if err != nil {
		return nil, err
	}
	return verification.NewRunner(period, meta, Funcs(period), dir, cfg, options...), nil
}
