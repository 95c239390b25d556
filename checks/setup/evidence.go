package setup

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/checks/internal/compare"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/payloads"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func schnorrProofs(res *verification.Result, s *elgamal.EncryptionGroup, name string, keys []*big.Int, proofs []*elgamal.Proof, aux []hashing.HashableMessage) {
	if len(keys) != len(proofs) {
		res.Errorf("%d %s proofs for %d keys", len(proofs), name, len(keys))
		return
	}
	for i, proof := range proofs {
		ok, err := elgamal.VerifySchnorrProof(s, proof, keys[i], aux...)
		compare.Proof(res, ok, err, "%s schnorr proof %d", name, i)
	}
}

// VerifySchnorrProofs verifies the proofs of knowledge of the CCR and CCM
// keys of every node and of the electoral board key.
func VerifySchnorrProofs(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	s := dir.Setup()
	params, err := s.EncryptionParameters()
	if !compare.Read(res, payloads.KindEncryptionParameters.String(), err) {
		return
	}
	g := params.EncryptionGroup
	for _, item := range s.ControlComponentPublicKeys() {
		ctx := indexed(payloads.KindControlComponentPublicKeys, item.Index)
		if !compare.Read(res, ctx, item.Err) {
			continue
		}
		k := item.Value.ControlComponentPublicKeys
		aux := payloads.ControlComponentKeyAux(item.Value.ElectionEventID, k.NodeID)
		compare.Scope(res, ctx, func(res *verification.Result) {
			schnorrProofs(res, g, "ccrj", k.CcrjChoiceReturnCodesEncryptionPublicKey, k.CcrjSchnorrProofs, aux)
			schnorrProofs(res, g, "ccmj", k.CcmjElectionPublicKey, k.CcmjSchnorrProofs, aux)
		})
	}
	keys, err := s.SetupComponentPublicKeys()
	if !compare.Read(res, payloads.KindSetupComponentPublicKeys.String(), err) {
		return
	}
	compare.Scope(res, payloads.KindSetupComponentPublicKeys.String(), func(res *verification.Result) {
		k := keys.SetupComponentPublicKeys
		schnorrProofs(res, g, "electoral board", k.ElectoralBoardPublicKey, k.ElectoralBoardSchnorrProofs,
			payloads.ElectoralBoardKeyAux(keys.ElectionEventID))
	})
}

// exponentiationProof selects the ciphertext, the exponentiated ciphertext,
// the exponentiation key and the proof of one code share.
type exponentiationProof struct {
	name   string
	source func(d *payloads.SetupComponentVerificationData) *elgamal.Ciphertext
	share  func(c *payloads.ControlComponentCodeShare) (key []*big.Int, ct *elgamal.Ciphertext, proof *elgamal.Proof)
}

var pccProof = exponentiationProof{
	name: "encrypted partial choice return codes",
	source: func(d *payloads.SetupComponentVerificationData) *elgamal.Ciphertext {
		return d.EncryptedHashedSquaredPartialChoiceReturnCodes
	},
	share: func(c *payloads.ControlComponentCodeShare) ([]*big.Int, *elgamal.Ciphertext, *elgamal.Proof) {
		return c.VoterChoiceReturnCodeGenerationPublicKey, c.ExponentiatedEncryptedPartialChoiceReturnCodes, c.EncryptedPartialChoiceReturnCodeExponentiationProof
	},
}

var ckProof = exponentiationProof{
	name: "encrypted confirmation key",
	source: func(d *payloads.SetupComponentVerificationData) *elgamal.Ciphertext {
		return d.EncryptedHashedSquaredConfirmationKey
	},
	share: func(c *payloads.ControlComponentCodeShare) ([]*big.Int, *elgamal.Ciphertext, *elgamal.Proof) {
		return c.VoterVoteCastReturnCodeGenerationPublicKey, c.ExponentiatedEncryptedConfirmationKey, c.EncryptedConfirmationKeyExponentiationProof
	},
}

// verify checks one code share: the node raised the ciphertext of the
// setup component and its generator to the same secret.
func (e exponentiationProof) verify(res *verification.Result, s *elgamal.EncryptionGroup, d *payloads.SetupComponentVerificationData, p *payloads.ControlComponentCodeSharesPayload, c *payloads.ControlComponentCodeShare) {
	key, exponentiated, proof := e.share(c)
	ct := e.source(d)
	if len(key) != 1 || ct == nil || exponentiated == nil || exponentiated.Size() != ct.Size() {
		res.Errorf("%s of card %s malformed", e.name, c.VerificationCardID)
		return
	}
	bases := payloads.ExponentiationBases(s, ct, ct.Size())
	images := append([]*big.Int{key[0], exponentiated.Gamma}, exponentiated.Phis...)
	aux := payloads.CodeSharesAux(p.ElectionEventID, p.VerificationCardSetID, c.VerificationCardID, p.NodeID)
	ok, err := elgamal.VerifyExponentiationProof(s, bases, images, proof, aux...)
	compare.Proof(res, ok, err, "%s exponentiation proof of card %s", e.name, c.VerificationCardID)
}

func (e exponentiationProof) run(dir directory.Directory, res *verification.Result) {
	s := dir.Setup()
	params, err := s.EncryptionParameters()
	if !compare.Read(res, payloads.KindEncryptionParameters.String(), err) {
		return
	}
	g := params.EncryptionGroup
	for _, vcs := range s.VerificationCardSets() {
		compare.Scope(res, vcsContext(vcs.Name()), func(res *verification.Result) {
			data := map[int]*payloads.SetupComponentVerificationDataPayload{}
			for _, item := range vcs.SetupComponentVerificationData() {
				if compare.Read(res, indexed(payloads.KindSetupComponentVerificationData, item.Index), item.Err) {
					data[item.Index] = item.Value
				}
			}
			for _, item := range vcs.ControlComponentCodeShares() {
				ctx := indexed(payloads.KindControlComponentCodeShares, item.Index)
				if !compare.Read(res, ctx, item.Err) {
					continue
				}
				chunk, ok := data[item.Index]
				if !ok {
					res.Errorf("no verification data for %s", ctx)
					continue
				}
				cards := map[string]*payloads.SetupComponentVerificationData{}
				for i := range chunk.SetupComponentVerificationData {
					d := &chunk.SetupComponentVerificationData[i]
					cards[d.VerificationCardID] = d
				}
				for _, p := range *item.Value {
					compare.Scope(res, fmt.Sprintf("%s %s", ctx, nodeContext(p.NodeID)), func(res *verification.Result) {
						for i := range p.ControlComponentCodeShares {
							c := &p.ControlComponentCodeShares[i]
							d, ok := cards[c.VerificationCardID]
							if !ok {
								res.Errorf("card %s has no verification data", c.VerificationCardID)
								continue
							}
							e.verify(res, g, d, p, c)
						}
					})
				}
			}
		})
	}
}

// VerifyEncryptedPCCExponentiationProofs verifies the exponentiation
// proofs of the partial choice return codes of every code share.
func VerifyEncryptedPCCExponentiationProofs(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	pccProof.run(dir, res)
}

// VerifyEncryptedCKExponentiationProofs verifies the exponentiation proofs
// of the confirmation keys of every code share.
func VerifyEncryptedCKExponentiationProofs(dir directory.Directory, _ *config.VerifierConfig, res *verification.Result) {
	ckProof.run(dir, res)
}
