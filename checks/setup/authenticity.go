package setup

import (
	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/keystore"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func signature(res *verification.Result, ks *keystore.KeyStore, ctx string, p payloads.Signed, err error) {
	if !compare.Read(res, ctx, err) {
		return
	}
	compare.Scope(res, ctx, func(res *verification.Result) {
		compare.Signature(res, ks, p)
	})
}

func signatures[T payloads.Signed](res *verification.Result, ks *keystore.KeyStore, kind payloads.Kind, items []directory.Item[T]) {
	for _, item := range items {
		signature(res, ks, indexed(kind, item.Index), item.Value, item.Err)
	}
}

func VerifySignatureEncryptionParameters(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	p, err := dir.Setup().EncryptionParameters()
	signature(res, cfg.KeyStore(), payloads.KindEncryptionParameters.String(), p, err)
}

func VerifySignatureElectionEventContext(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	p, err := dir.Setup().ElectionEventContext()
	signature(res, cfg.KeyStore(), payloads.KindElectionEventContext.String(), p, err)
}

func VerifySignatureSetupComponentPublicKeys(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	p, err := dir.Setup().SetupComponentPublicKeys()
	signature(res, cfg.KeyStore(), payloads.KindSetupComponentPublicKeys.String(), p, err)
}

func VerifySignatureControlComponentPublicKeys(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	signatures(res, cfg.KeyStore(), payloads.KindControlComponentPublicKeys, dir.Setup().ControlComponentPublicKeys())
}

func VerifySignatureSetupComponentTallyData(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	for _, vcs := range dir.Setup().VerificationCardSets() {
		compare.Scope(res, vcsContext(vcs.Name()), func(res *verification.Result) {
			p, err := vcs.SetupComponentTallyData()
			signature(res, cfg.KeyStore(), payloads.KindSetupComponentTallyData.String(), p, err)
		})
	}
}

func VerifySignatureSetupComponentVerificationData(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	for _, vcs := range dir.Setup().VerificationCardSets() {
		compare.Scope(res, vcsContext(vcs.Name()), func(res *verification.Result) {
			signatures(res, cfg.KeyStore(), payloads.KindSetupComponentVerificationData, vcs.SetupComponentVerificationData())
		})
	}
}

// VerifySignatureControlComponentCodeShares checks the signature of every
// node in every chunk.
func VerifySignatureControlComponentCodeShares(dir directory.Directory, cfg *config.VerifierConfig, res *verification.Result) {
	for _, vcs := range dir.Setup().VerificationCardSets() {
		compare.Scope(res, vcsContext(vcs.Name()), func(res *verification.Result) {
			for _, item := range vcs.ControlComponentCodeShares() {
				ctx := indexed(payloads.KindControlComponentCodeShares, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					continue
				}
				compare.Scope(res, ctx, func(res *verification.Result) {
					for _, p := range *item.Value {
						signature(res, cfg.KeyStore(), nodeContext(p.NodeID), p, nil)
					}
				})
			}
		})
	}
}
