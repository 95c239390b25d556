package payloads

import (
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
	"github.com/thechriswalker/go-evote-verifier/keystore"
)

// list hashes an empty list as the empty string, since the recursive
// hash rejects empty lists.
func list(l []hashing.HashableMessage) hashing.HashableMessage {
	if len(l) == 0 {
		return hashing.String("")
	}
	return hashing.List(l...)
}

func uintList(ns []uint64) hashing.HashableMessage {
	l := make([]hashing.HashableMessage, len(ns))
	for i, n := range ns {
		l[i] = hashing.Uint(n)
	}
	return list(l)
}

func proofsHashable(ps []*elgamal.Proof) hashing.HashableMessage {
	l := make([]hashing.HashableMessage, len(ps))
	for i, p := range ps {
		l[i] = proofHashable(p)
	}
	return list(l)
}

func proofHashable(p *elgamal.Proof) hashing.HashableMessage {
	if p == nil {
		return hashing.List()
	}
	return hashing.List(hashing.Int(p.E), hashing.Int(p.Z))
}

func vectorProofHashable(p *elgamal.VectorProof) hashing.HashableMessage {
	if p == nil {
		return hashing.List()
	}
	return hashing.List(hashing.Int(p.E), hashing.IntList(p.Z))
}

func boolHashable(b bool) hashing.HashableMessage {
	if b {
		return hashing.String("true")
	}
	return hashing.String("false")
}

/////////////////// encryptionParametersPayload ///////////////////

// EncryptionParametersPayload fixes the group and the small primes used
// to encode voting options.
type EncryptionParametersPayload struct {
	EncryptionGroup *elgamal.EncryptionGroup `json:"encryptionGroup"`
	Seed            string                   `json:"seed"`
	SmallPrimes     []uint64                 `json:"smallPrimes"`
	Signature       *Signature               `json:"signature"`
}

func (p *EncryptionParametersPayload) Kind() Kind { return KindEncryptionParameters }

func (p *EncryptionParametersPayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *EncryptionParametersPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if len(p.SmallPrimes) == 0 {
		return fmt.Errorf("missing smallPrimes")
	}
	return requireString("seed", p.Seed)
}

func (p *EncryptionParametersPayload) HashableMessage() hashing.HashableMessage {
	return hashing.List(p.EncryptionGroup.HashableMessage(), hashing.String(p.Seed), uintList(p.SmallPrimes))
}

func (p *EncryptionParametersPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{hashing.String("encryption parameters")}
}

func (p *EncryptionParametersPayload) SignatureBytes() ([]byte, error) { return signatureBytes(p.Signature) }

func (p *EncryptionParametersPayload) Authority() keystore.Authority { return keystore.SdmConfig }

/////////////////// electionEventContextPayload ///////////////////

// PrimesMappingTableEntry maps an encoded voting option to its meaning.
type PrimesMappingTableEntry struct {
	ActualVotingOption     string `json:"actualVotingOption"`
	EncodedVotingOption    uint64 `json:"encodedVotingOption"`
	SemanticInformation    string `json:"semanticInformation"`
	CorrectnessInformation string `json:"correctnessInformation"`
}

type PrimesMappingTable struct {
	PTable []PrimesMappingTableEntry `json:"pTable"`
}

// EncodedVotingOptions lists the primes in table order.
func (t PrimesMappingTable) EncodedVotingOptions() []uint64 {
	out := make([]uint64, len(t.PTable))
	for i, e := range t.PTable {
		out[i] = e.EncodedVotingOption
	}
	return out
}

// ActualVotingOption finds the option encoded by prime.
func (t PrimesMappingTable) ActualVotingOption(prime uint64) (string, bool) {
	for _, e := range t.PTable {
		if e.EncodedVotingOption == prime {
			return e.ActualVotingOption, true
		}
	}
	return "", false
}

func (t PrimesMappingTable) hashable() hashing.HashableMessage {
	l := make([]hashing.HashableMessage, len(t.PTable))
	for i, e := range t.PTable {
		l[i] = hashing.List(
			hashing.String(e.ActualVotingOption),
			hashing.Uint(e.EncodedVotingOption),
			hashing.String(e.SemanticInformation),
			hashing.String(e.CorrectnessInformation),
		)
	}
	if len(l) == 0 {
		return hashing.String("")
	}
	return hashing.List(l...)
}

// VerificationCardSetContext describes one verification card set and the
// ballot box it votes into.
type VerificationCardSetContext struct {
	VerificationCardSetID    string             `json:"verificationCardSetId"`
	VerificationCardSetAlias string             `json:"verificationCardSetAlias"`
	BallotBoxID              string             `json:"ballotBoxId"`
	BallotBoxStartTime       string             `json:"ballotBoxStartTime"`
	BallotBoxFinishTime      string             `json:"ballotBoxFinishTime"`
	TestBallotBox            bool               `json:"testBallotBox"`
	NumberOfVotingCards      int                `json:"numberOfVotingCards"`
	GracePeriod              int                `json:"gracePeriod"`
	PrimesMappingTable       PrimesMappingTable `json:"primesMappingTable"`
}

type ElectionEventContext struct {
	ElectionEventID                string                       `json:"electionEventId"`
	ElectionEventAlias             string                       `json:"electionEventAlias"`
	ElectionEventDescription       string                       `json:"electionEventDescription"`
	VerificationCardSetContexts    []VerificationCardSetContext `json:"verificationCardSetContexts"`
	StartTime                      string                       `json:"startTime"`
	FinishTime                     string                       `json:"finishTime"`
	MaximumNumberOfVotingOptions   int                          `json:"maximumNumberOfVotingOptions"`
	MaximumNumberOfSelections      int                          `json:"maximumNumberOfSelections"`
	MaximumNumberOfWriteInsPlusOne int                          `json:"maximumNumberOfWriteInsPlusOne"`
}

// ElectionEventContextPayload describes the election event.
type ElectionEventContextPayload struct {
	EncryptionGroup      *elgamal.EncryptionGroup `json:"encryptionGroup"`
	Seed                 string                   `json:"seed"`
	ElectionEventContext ElectionEventContext     `json:"electionEventContext"`
	Signature            *Signature               `json:"signature"`
}

func (p *ElectionEventContextPayload) Kind() Kind { return KindElectionEventContext }

func (p *ElectionEventContextPayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *ElectionEventContextPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	return requireString("electionEventId", p.ElectionEventContext.ElectionEventID)
}

// ContextForBallotBox finds the verification card set voting into bb.
func (p *ElectionEventContextPayload) ContextForBallotBox(bb string) (*VerificationCardSetContext, bool) {
	for i := range p.ElectionEventContext.VerificationCardSetContexts {
		c := &p.ElectionEventContext.VerificationCardSetContexts[i]
		if c.BallotBoxID == bb {
			return c, true
		}
	}
	return nil, false
}

// ContextForVerificationCardSet finds the context of vcs.
func (p *ElectionEventContextPayload) ContextForVerificationCardSet(vcs string) (*VerificationCardSetContext, bool) {
	for i := range p.ElectionEventContext.VerificationCardSetContexts {
		c := &p.ElectionEventContext.VerificationCardSetContexts[i]
		if c.VerificationCardSetID == vcs {
			return c, true
		}
	}
	return nil, false
}

// CiphertextSize is the number of phis of an encrypted vote.
func (p *ElectionEventContextPayload) CiphertextSize() int {
	if p.ElectionEventContext.MaximumNumberOfWriteInsPlusOne < 1 {
		return 1
	}
	return p.ElectionEventContext.MaximumNumberOfWriteInsPlusOne
}

func (p *ElectionEventContextPayload) HashableMessage() hashing.HashableMessage {
	c := p.ElectionEventContext
	vcs := make([]hashing.HashableMessage, len(c.VerificationCardSetContexts))
	for i, v := range c.VerificationCardSetContexts {
		vcs[i] = hashing.List(
			hashing.String(v.VerificationCardSetID),
			hashing.String(v.VerificationCardSetAlias),
			hashing.String(v.BallotBoxID),
			hashing.String(v.BallotBoxStartTime),
			hashing.String(v.BallotBoxFinishTime),
			boolHashable(v.TestBallotBox),
			hashing.Uint(uint64(v.NumberOfVotingCards)),
			hashing.Uint(uint64(v.GracePeriod)),
			v.PrimesMappingTable.hashable(),
		)
	}
	vcsList := hashing.String("")
	if len(vcs) > 0 {
		vcsList = hashing.List(vcs...)
	}
	return hashing.List(
		p.EncryptionGroup.HashableMessage(),
		hashing.String(p.Seed),
		hashing.List(
			hashing.String(c.ElectionEventID),
			hashing.String(c.ElectionEventAlias),
			hashing.String(c.ElectionEventDescription),
			vcsList,
			hashing.String(c.StartTime),
			hashing.String(c.FinishTime),
			hashing.Uint(uint64(c.MaximumNumberOfVotingOptions)),
			hashing.Uint(uint64(c.MaximumNumberOfSelections)),
			hashing.Uint(uint64(c.MaximumNumberOfWriteInsPlusOne)),
		),
	)
}

func (p *ElectionEventContextPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("election event context"),
		hashing.String(p.ElectionEventContext.ElectionEventID),
	}
}

func (p *ElectionEventContextPayload) SignatureBytes() ([]byte, error) { return signatureBytes(p.Signature) }

func (p *ElectionEventContextPayload) Authority() keystore.Authority { return keystore.SdmConfig }

/////////////////// control component public keys ///////////////////

// ControlComponentPublicKeys are the keys of one online control
// component: the CCR_j choice return codes encryption key and the CCM_j
// election key, each with a Schnorr proof per element.
type ControlComponentPublicKeys struct {
	NodeID                                  int                `json:"nodeId"`
	CcrjChoiceReturnCodesEncryptionPublicKey crypto.BigIntSlice `json:"ccrjChoiceReturnCodesEncryptionPublicKey"`
	CcrjSchnorrProofs                       []*elgamal.Proof   `json:"ccrjSchnorrProofs"`
	CcmjElectionPublicKey                   crypto.BigIntSlice `json:"ccmjElectionPublicKey"`
	CcmjSchnorrProofs                       []*elgamal.Proof   `json:"ccmjSchnorrProofs"`
}

func (k *ControlComponentPublicKeys) hashable() hashing.HashableMessage {
	return hashing.List(
		hashing.Uint(uint64(k.NodeID)),
		hashing.IntList(k.CcrjChoiceReturnCodesEncryptionPublicKey),
		proofsHashable(k.CcrjSchnorrProofs),
		hashing.IntList(k.CcmjElectionPublicKey),
		proofsHashable(k.CcmjSchnorrProofs),
	)
}

func (k *ControlComponentPublicKeys) validate() error {
	if err := requireNode(k.NodeID); err != nil {
		return err
	}
	if len(k.CcrjChoiceReturnCodesEncryptionPublicKey) == 0 || len(k.CcmjElectionPublicKey) == 0 {
		return fmt.Errorf("node %d: missing public keys", k.NodeID)
	}
	for _, p := range append(append([]*elgamal.Proof{}, k.CcrjSchnorrProofs...), k.CcmjSchnorrProofs...) {
		if p == nil {
			return fmt.Errorf("node %d: missing schnorr proof", k.NodeID)
		}
	}
	return nil
}

// ControlComponentPublicKeysPayload is the key generation output of one
// control component.
type ControlComponentPublicKeysPayload struct {
	EncryptionGroup            *elgamal.EncryptionGroup   `json:"encryptionGroup"`
	ElectionEventID            string                     `json:"electionEventId"`
	ControlComponentPublicKeys ControlComponentPublicKeys `json:"controlComponentPublicKeys"`
	Signature                  *Signature                 `json:"signature"`
}

func (p *ControlComponentPublicKeysPayload) Kind() Kind { return KindControlComponentPublicKeys }

func (p *ControlComponentPublicKeysPayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *ControlComponentPublicKeysPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireString("electionEventId", p.ElectionEventID); err != nil {
		return err
	}
	return p.ControlComponentPublicKeys.validate()
}

func (p *ControlComponentPublicKeysPayload) HashableMessage() hashing.HashableMessage {
	return hashing.List(
		p.EncryptionGroup.HashableMessage(),
		hashing.String(p.ElectionEventID),
		p.ControlComponentPublicKeys.hashable(),
	)
}

func (p *ControlComponentPublicKeysPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("public keys"),
		hashing.String("control component"),
		hashing.Uint(uint64(p.ControlComponentPublicKeys.NodeID)),
		hashing.String(p.ElectionEventID),
	}
}

func (p *ControlComponentPublicKeysPayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *ControlComponentPublicKeysPayload) Authority() keystore.Authority {
	return keystore.ControlComponent(p.ControlComponentPublicKeys.NodeID)
}

/////////////////// setupComponentPublicKeysPayload ///////////////////

type SetupComponentPublicKeys struct {
	CombinedControlComponentPublicKeys   []ControlComponentPublicKeys `json:"combinedControlComponentPublicKeys"`
	ElectoralBoardPublicKey              crypto.BigIntSlice           `json:"electoralBoardPublicKey"`
	ElectoralBoardSchnorrProofs          []*elgamal.Proof             `json:"electoralBoardSchnorrProofs"`
	ElectionPublicKey                    crypto.BigIntSlice           `json:"electionPublicKey"`
	ChoiceReturnCodesEncryptionPublicKey crypto.BigIntSlice           `json:"choiceReturnCodesEncryptionPublicKey"`
}

// SetupComponentPublicKeysPayload combines the control component keys
// with the electoral board key.
type SetupComponentPublicKeysPayload struct {
	EncryptionGroup          *elgamal.EncryptionGroup `json:"encryptionGroup"`
	ElectionEventID          string                   `json:"electionEventId"`
	SetupComponentPublicKeys SetupComponentPublicKeys `json:"setupComponentPublicKeys"`
	Signature                *Signature               `json:"signature"`
}

func (p *SetupComponentPublicKeysPayload) Kind() Kind { return KindSetupComponentPublicKeys }

func (p *SetupComponentPublicKeysPayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *SetupComponentPublicKeysPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireString("electionEventId", p.ElectionEventID); err != nil {
		return err
	}
	k := p.SetupComponentPublicKeys
	if len(k.ElectoralBoardPublicKey) == 0 || len(k.ElectionPublicKey) == 0 || len(k.ChoiceReturnCodesEncryptionPublicKey) == 0 {
		return fmt.Errorf("missing public keys")
	}
	for i := range k.CombinedControlComponentPublicKeys {
		if err := k.CombinedControlComponentPublicKeys[i].validate(); err != nil {
			return err
		}
	}
	for _, pr := range k.ElectoralBoardSchnorrProofs {
		if pr == nil {
			return fmt.Errorf("missing electoral board schnorr proof")
		}
	}
	return nil
}

// ControlComponentKeys finds the combined keys of node j.
func (p *SetupComponentPublicKeysPayload) ControlComponentKeys(j int) (*ControlComponentPublicKeys, bool) {
	for i := range p.SetupComponentPublicKeys.CombinedControlComponentPublicKeys {
		k := &p.SetupComponentPublicKeys.CombinedControlComponentPublicKeys[i]
		if k.NodeID == j {
			return k, true
		}
	}
	return nil, false
}

func (p *SetupComponentPublicKeysPayload) HashableMessage() hashing.HashableMessage {
	k := p.SetupComponentPublicKeys
	cc := make([]hashing.HashableMessage, len(k.CombinedControlComponentPublicKeys))
	for i := range k.CombinedControlComponentPublicKeys {
		cc[i] = k.CombinedControlComponentPublicKeys[i].hashable()
	}
	return hashing.List(
		p.EncryptionGroup.HashableMessage(),
		hashing.String(p.ElectionEventID),
		hashing.List(
			hashing.List(cc...),
			hashing.IntList(k.ElectoralBoardPublicKey),
			proofsHashable(k.ElectoralBoardSchnorrProofs),
			hashing.IntList(k.ElectionPublicKey),
			hashing.IntList(k.ChoiceReturnCodesEncryptionPublicKey),
		),
	)
}

func (p *SetupComponentPublicKeysPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("public keys"),
		hashing.String("setup"),
		hashing.String(p.ElectionEventID),
	}
}

func (p *SetupComponentPublicKeysPayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *SetupComponentPublicKeysPayload) Authority() keystore.Authority { return keystore.SdmConfig }

/////////////////// setupComponentTallyDataPayload ///////////////////

// SetupComponentTallyDataPayload lists the verification cards of a set.
type SetupComponentTallyDataPayload struct {
	ElectionEventID            string                   `json:"electionEventId"`
	VerificationCardSetID      string                   `json:"verificationCardSetId"`
	BallotBoxDefaultTitle      string                   `json:"ballotBoxDefaultTitle"`
	EncryptionGroup            *elgamal.EncryptionGroup `json:"encryptionGroup"`
	VerificationCardIDs        []string                 `json:"verificationCardIds"`
	VerificationCardPublicKeys []crypto.BigIntSlice     `json:"verificationCardPublicKeys"`
	Signature                  *Signature               `json:"signature"`
}

func (p *SetupComponentTallyDataPayload) Kind() Kind { return KindSetupComponentTallyData }

func (p *SetupComponentTallyDataPayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *SetupComponentTallyDataPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireString("electionEventId", p.ElectionEventID); err != nil {
		return err
	}
	if err := requireString("verificationCardSetId", p.VerificationCardSetID); err != nil {
		return err
	}
	if len(p.VerificationCardIDs) != len(p.VerificationCardPublicKeys) {
		return fmt.Errorf("%d verification card ids with %d public keys", len(p.VerificationCardIDs), len(p.VerificationCardPublicKeys))
	}
	return nil
}

// PublicKey returns the key of the verification card id.
func (p *SetupComponentTallyDataPayload) PublicKey(vcID string) (crypto.BigIntSlice, bool) {
	for i, id := range p.VerificationCardIDs {
		if id == vcID {
			return p.VerificationCardPublicKeys[i], true
		}
	}
	return nil, false
}

func (p *SetupComponentTallyDataPayload) HashableMessage() hashing.HashableMessage {
	keys := make([]hashing.HashableMessage, len(p.VerificationCardPublicKeys))
	for i, k := range p.VerificationCardPublicKeys {
		keys[i] = hashing.IntList(k)
	}
	ids, ks := hashing.String(""), hashing.String("")
	if len(keys) > 0 {
		ids, ks = hashing.StringList(p.VerificationCardIDs), hashing.List(keys...)
	}
	return hashing.List(
		hashing.String(p.ElectionEventID),
		hashing.String(p.VerificationCardSetID),
		hashing.String(p.BallotBoxDefaultTitle),
		p.EncryptionGroup.HashableMessage(),
		ids,
		ks,
	)
}

func (p *SetupComponentTallyDataPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("tally data"),
		hashing.String(p.ElectionEventID),
		hashing.String(p.VerificationCardSetID),
	}
}

func (p *SetupComponentTallyDataPayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *SetupComponentTallyDataPayload) Authority() keystore.Authority { return keystore.SdmConfig }

/////////////////// setupComponentVerificationDataPayload ///////////////////

type SetupComponentVerificationData struct {
	VerificationCardID                             string              `json:"verificationCardId"`
	EncryptedHashedSquaredConfirmationKey          *elgamal.Ciphertext `json:"encryptedHashedSquaredConfirmationKey"`
	EncryptedHashedSquaredPartialChoiceReturnCodes *elgamal.Ciphertext `json:"encryptedHashedSquaredPartialChoiceReturnCodes"`
	VerificationCardPublicKey                      crypto.BigIntSlice  `json:"verificationCardPublicKey"`
}

// SetupComponentVerificationDataPayload is one chunk of the encrypted
// return code material sent to the control components.
type SetupComponentVerificationDataPayload struct {
	ElectionEventID                   string                           `json:"electionEventId"`
	VerificationCardSetID             string                           `json:"verificationCardSetId"`
	PartialChoiceReturnCodesAllowList []string                         `json:"partialChoiceReturnCodesAllowList"`
	ChunkID                           int                              `json:"chunkId"`
	EncryptionGroup                   *elgamal.EncryptionGroup         `json:"encryptionGroup"`
	SetupComponentVerificationData    []SetupComponentVerificationData `json:"setupComponentVerificationData"`
	Signature                         *Signature                       `json:"signature"`
}

func (p *SetupComponentVerificationDataPayload) Kind() Kind { return KindSetupComponentVerificationData }

func (p *SetupComponentVerificationDataPayload) Group() *elgamal.EncryptionGroup {
	return p.EncryptionGroup
}

func (p *SetupComponentVerificationDataPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireString("verificationCardSetId", p.VerificationCardSetID); err != nil {
		return err
	}
	for _, d := range p.SetupComponentVerificationData {
		if err := requireCiphertext("encryptedHashedSquaredConfirmationKey", d.EncryptedHashedSquaredConfirmationKey); err != nil {
			return err
		}
		if err := requireCiphertext("encryptedHashedSquaredPartialChoiceReturnCodes", d.EncryptedHashedSquaredPartialChoiceReturnCodes); err != nil {
			return err
		}
	}
	return nil
}

func (p *SetupComponentVerificationDataPayload) HashableMessage() hashing.HashableMessage {
	data := make([]hashing.HashableMessage, len(p.SetupComponentVerificationData))
	for i, d := range p.SetupComponentVerificationData {
		data[i] = hashing.List(
			hashing.String(d.VerificationCardID),
			d.EncryptedHashedSquaredConfirmationKey.HashableMessage(),
			d.EncryptedHashedSquaredPartialChoiceReturnCodes.HashableMessage(),
			hashing.IntList(d.VerificationCardPublicKey),
		)
	}
	allow := hashing.String("")
	if len(p.PartialChoiceReturnCodesAllowList) > 0 {
		allow = hashing.StringList(p.PartialChoiceReturnCodesAllowList)
	}
	dataList := hashing.String("")
	if len(data) > 0 {
		dataList = hashing.List(data...)
	}
	return hashing.List(
		hashing.String(p.ElectionEventID),
		hashing.String(p.VerificationCardSetID),
		allow,
		hashing.Uint(uint64(p.ChunkID)),
		p.EncryptionGroup.HashableMessage(),
		dataList,
	)
}

func (p *SetupComponentVerificationDataPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("verification data"),
		hashing.String(p.ElectionEventID),
		hashing.String(p.VerificationCardSetID),
		hashing.Uint(uint64(p.ChunkID)),
	}
}

func (p *SetupComponentVerificationDataPayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *SetupComponentVerificationDataPayload) Authority() keystore.Authority {
	return keystore.SdmConfig
}

/////////////////// controlComponentCodeSharesPayload ///////////////////

type ControlComponentCodeShare struct {
	VerificationCardID                                  string              `json:"verificationCardId"`
	VoterChoiceReturnCodeGenerationPublicKey            crypto.BigIntSlice  `json:"voterChoiceReturnCodeGenerationPublicKey"`
	VoterVoteCastReturnCodeGenerationPublicKey          crypto.BigIntSlice  `json:"voterVoteCastReturnCodeGenerationPublicKey"`
	ExponentiatedEncryptedPartialChoiceReturnCodes      *elgamal.Ciphertext `json:"exponentiatedEncryptedPartialChoiceReturnCodes"`
	EncryptedPartialChoiceReturnCodeExponentiationProof *elgamal.Proof      `json:"encryptedPartialChoiceReturnCodeExponentiationProof"`
	ExponentiatedEncryptedConfirmationKey               *elgamal.Ciphertext `json:"exponentiatedEncryptedConfirmationKey"`
	EncryptedConfirmationKeyExponentiationProof         *elgamal.Proof      `json:"encryptedConfirmationKeyExponentiationProof"`
}

// ControlComponentCodeSharesPayload is the answer of one control
// component to a verification data chunk.
type ControlComponentCodeSharesPayload struct {
	ElectionEventID            string                      `json:"electionEventId"`
	VerificationCardSetID      string                      `json:"verificationCardSetId"`
	ChunkID                    int                         `json:"chunkId"`
	EncryptionGroup            *elgamal.EncryptionGroup    `json:"encryptionGroup"`
	ControlComponentCodeShares []ControlComponentCodeShare `json:"controlComponentCodeShares"`
	NodeID                     int                         `json:"nodeId"`
	Signature                  *Signature                  `json:"signature"`
}

func (p *ControlComponentCodeSharesPayload) Kind() Kind { return KindControlComponentCodeShares }

func (p *ControlComponentCodeSharesPayload) Group() *elgamal.EncryptionGroup {
	return p.EncryptionGroup
}

func (p *ControlComponentCodeSharesPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireNode(p.NodeID); err != nil {
		return err
	}
	for _, s := range p.ControlComponentCodeShares {
		if s.ExponentiatedEncryptedPartialChoiceReturnCodes == nil || s.ExponentiatedEncryptedConfirmationKey == nil {
			return fmt.Errorf("node %d: missing exponentiated ciphertext for %s", p.NodeID, s.VerificationCardID)
		}
		if s.EncryptedPartialChoiceReturnCodeExponentiationProof == nil || s.EncryptedConfirmationKeyExponentiationProof == nil {
			return fmt.Errorf("node %d: missing exponentiation proof for %s", p.NodeID, s.VerificationCardID)
		}
	}
	return nil
}

func (p *ControlComponentCodeSharesPayload) HashableMessage() hashing.HashableMessage {
	shares := make([]hashing.HashableMessage, len(p.ControlComponentCodeShares))
	for i, s := range p.ControlComponentCodeShares {
		shares[i] = hashing.List(
			hashing.String(s.VerificationCardID),
			hashing.IntList(s.VoterChoiceReturnCodeGenerationPublicKey),
			hashing.IntList(s.VoterVoteCastReturnCodeGenerationPublicKey),
			s.ExponentiatedEncryptedPartialChoiceReturnCodes.HashableMessage(),
			proofHashable(s.EncryptedPartialChoiceReturnCodeExponentiationProof),
			s.ExponentiatedEncryptedConfirmationKey.HashableMessage(),
			proofHashable(s.EncryptedConfirmationKeyExponentiationProof),
		)
	}
	sharesList := hashing.String("")
	if len(shares) > 0 {
		sharesList = hashing.List(shares...)
	}
	return hashing.List(
		hashing.String(p.ElectionEventID),
		hashing.String(p.VerificationCardSetID),
		hashing.Uint(uint64(p.ChunkID)),
		p.EncryptionGroup.HashableMessage(),
		sharesList,
		hashing.Uint(uint64(p.NodeID)),
	)
}

func (p *ControlComponentCodeSharesPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("encrypted code shares"),
		hashing.Uint(uint64(p.NodeID)),
		hashing.String(p.ElectionEventID),
		hashing.String(p.VerificationCardSetID),
		hashing.Uint(uint64(p.ChunkID)),
	}
}

func (p *ControlComponentCodeSharesPayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *ControlComponentCodeSharesPayload) Authority() keystore.Authority {
	return keystore.ControlComponent(p.NodeID)
}

// ControlComponentCodeSharesPayloads is one file: the answers of every
// control component to a chunk.
type ControlComponentCodeSharesPayloads []*ControlComponentCodeSharesPayload

func (p *ControlComponentCodeSharesPayloads) Kind() Kind { return KindControlComponentCodeShares }

func (p *ControlComponentCodeSharesPayloads) validate() error {
	if len(*p) == 0 {
		return fmt.Errorf("no code shares")
	}
	for i, s := range *p {
		if s == nil {
			return fmt.Errorf("code shares %d is null", i)
		}
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ExponentiationBases returns (g, gamma, phi_0..phi_k-1) for the first k
// phis of ct.
func ExponentiationBases(g *elgamal.EncryptionGroup, ct *elgamal.Ciphertext, k int) []*big.Int {
	out := []*big.Int{g.G, ct.Gamma}
	return append(out, ct.Phis[:k]...)
}
