package payloads

import (
	"fmt"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
	"github.com/thechriswalker/go-evote-verifier/crypto/mixnet"
	"github.com/thechriswalker/go-evote-verifier/keystore"
)

/////////////////// controlComponentBallotBoxPayload ///////////////////

type ContextIDs struct {
	ElectionEventID       string `json:"electionEventId"`
	VerificationCardSetID string `json:"verificationCardSetId"`
	VerificationCardID    string `json:"verificationCardId"`
}

func (c ContextIDs) hashable() hashing.HashableMessage {
	return hashing.StringList([]string{c.ElectionEventID, c.VerificationCardSetID, c.VerificationCardID})
}

// EncryptedVerifiableVote is a confirmed vote with the proofs of the
// voting client.
type EncryptedVerifiableVote struct {
	ContextIDs                        ContextIDs           `json:"contextIds"`
	EncryptedVote                     *elgamal.Ciphertext  `json:"encryptedVote"`
	ExponentiatedEncryptedVote        *elgamal.Ciphertext  `json:"exponentiatedEncryptedVote"`
	EncryptedPartialChoiceReturnCodes *elgamal.Ciphertext  `json:"encryptedPartialChoiceReturnCodes"`
	ExponentiationProof               *elgamal.Proof       `json:"exponentiationProof"`
	PlaintextEqualityProof            *elgamal.VectorProof `json:"plaintextEqualityProof"`
}

func (v *EncryptedVerifiableVote) hashable() hashing.HashableMessage {
	return hashing.List(
		v.ContextIDs.hashable(),
		v.EncryptedVote.HashableMessage(),
		v.ExponentiatedEncryptedVote.HashableMessage(),
		v.EncryptedPartialChoiceReturnCodes.HashableMessage(),
		proofHashable(v.ExponentiationProof),
		vectorProofHashable(v.PlaintextEqualityProof),
	)
}

func (v *EncryptedVerifiableVote) validate() error {
	for name, ct := range map[string]*elgamal.Ciphertext{
		"encryptedVote":                     v.EncryptedVote,
		"exponentiatedEncryptedVote":        v.ExponentiatedEncryptedVote,
		"encryptedPartialChoiceReturnCodes": v.EncryptedPartialChoiceReturnCodes,
	} {
		if err := requireCiphertext(name, ct); err != nil {
			return fmt.Errorf("vote %s: %w", v.ContextIDs.VerificationCardID, err)
		}
	}
	if v.ExponentiationProof == nil || v.PlaintextEqualityProof == nil {
		return fmt.Errorf("vote %s: missing proofs", v.ContextIDs.VerificationCardID)
	}
	return nil
}

// ControlComponentBallotBoxPayload lists the confirmed votes of a ballot
// box as seen by one control component.
type ControlComponentBallotBoxPayload struct {
	EncryptionGroup         *elgamal.EncryptionGroup  `json:"encryptionGroup"`
	ElectionEventID         string                    `json:"electionEventId"`
	BallotBoxID             string                    `json:"ballotBoxId"`
	NodeID                  int                       `json:"nodeId"`
	ConfirmedEncryptedVotes []EncryptedVerifiableVote `json:"confirmedEncryptedVotes"`
	Signature               *Signature                `json:"signature"`
}

func (p *ControlComponentBallotBoxPayload) Kind() Kind { return KindControlComponentBallotBox }

func (p *ControlComponentBallotBoxPayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *ControlComponentBallotBoxPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireString("ballotBoxId", p.BallotBoxID); err != nil {
		return err
	}
	if err := requireNode(p.NodeID); err != nil {
		return err
	}
	for i := range p.ConfirmedEncryptedVotes {
		if err := p.ConfirmedEncryptedVotes[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

// EncryptedVotes returns the encrypted votes in payload order.
func (p *ControlComponentBallotBoxPayload) EncryptedVotes() []*elgamal.Ciphertext {
	out := make([]*elgamal.Ciphertext, len(p.ConfirmedEncryptedVotes))
	for i := range p.ConfirmedEncryptedVotes {
		out[i] = p.ConfirmedEncryptedVotes[i].EncryptedVote
	}
	return out
}

func (p *ControlComponentBallotBoxPayload) HashableMessage() hashing.HashableMessage {
	votes := hashing.String("")
	if len(p.ConfirmedEncryptedVotes) > 0 {
		l := make([]hashing.HashableMessage, len(p.ConfirmedEncryptedVotes))
		for i := range p.ConfirmedEncryptedVotes {
			l[i] = p.ConfirmedEncryptedVotes[i].hashable()
		}
		votes = hashing.List(l...)
	}
	return hashing.List(
		p.EncryptionGroup.HashableMessage(),
		hashing.String(p.ElectionEventID),
		hashing.String(p.BallotBoxID),
		hashing.Uint(uint64(p.NodeID)),
		votes,
	)
}

func (p *ControlComponentBallotBoxPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("ballot box"),
		hashing.Uint(uint64(p.NodeID)),
		hashing.String(p.ElectionEventID),
		hashing.String(p.BallotBoxID),
	}
}

func (p *ControlComponentBallotBoxPayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *ControlComponentBallotBoxPayload) Authority() keystore.Authority {
	return keystore.ControlComponent(p.NodeID)
}

/////////////////// shuffles ///////////////////

// VerifiableShuffle is a shuffled vector of ciphertexts and its argument.
type VerifiableShuffle struct {
	ShuffledCiphertexts []*elgamal.Ciphertext    `json:"shuffledCiphertexts"`
	ShuffleArgument     *mixnet.ShuffleArgument `json:"shuffleArgument"`
}

func (v *VerifiableShuffle) validate() error {
	for i, ct := range v.ShuffledCiphertexts {
		if ct == nil {
			return fmt.Errorf("shuffled ciphertext %d is null", i)
		}
	}
	if v.ShuffleArgument == nil {
		return fmt.Errorf("missing shuffleArgument")
	}
	return nil
}

func (v *VerifiableShuffle) hashable() hashing.HashableMessage {
	return hashing.List(elgamal.CiphertextsHashable(v.ShuffledCiphertexts), v.ShuffleArgument.HashableMessage())
}

// VerifiableDecryptions are partially decrypted ciphertexts with one
// decryption proof each.
type VerifiableDecryptions struct {
	Ciphertexts      []*elgamal.Ciphertext  `json:"ciphertexts"`
	DecryptionProofs []*elgamal.VectorProof `json:"decryptionProofs"`
}

func (v *VerifiableDecryptions) validate() error {
	if len(v.Ciphertexts) != len(v.DecryptionProofs) {
		return fmt.Errorf("%d decrypted ciphertexts with %d proofs", len(v.Ciphertexts), len(v.DecryptionProofs))
	}
	for i := range v.Ciphertexts {
		if v.Ciphertexts[i] == nil || v.DecryptionProofs[i] == nil {
			return fmt.Errorf("decryption %d is null", i)
		}
	}
	return nil
}

func (v *VerifiableDecryptions) hashable() hashing.HashableMessage {
	proofs := make([]hashing.HashableMessage, len(v.DecryptionProofs))
	for i, p := range v.DecryptionProofs {
		proofs[i] = vectorProofHashable(p)
	}
	return hashing.List(elgamal.CiphertextsHashable(v.Ciphertexts), list(proofs))
}

// ControlComponentShufflePayload is the mixing output of one online
// control component: it shuffles its input then removes its share of the
// election key.
type ControlComponentShufflePayload struct {
	EncryptionGroup       *elgamal.EncryptionGroup `json:"encryptionGroup"`
	ElectionEventID       string                   `json:"electionEventId"`
	BallotBoxID           string                   `json:"ballotBoxId"`
	NodeID                int                      `json:"nodeId"`
	VerifiableShuffle     VerifiableShuffle        `json:"verifiableShuffle"`
	VerifiableDecryptions VerifiableDecryptions    `json:"verifiableDecryptions"`
	Signature             *Signature               `json:"signature"`
}

func (p *ControlComponentShufflePayload) Kind() Kind { return KindControlComponentShuffle }

func (p *ControlComponentShufflePayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *ControlComponentShufflePayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireString("ballotBoxId", p.BallotBoxID); err != nil {
		return err
	}
	if err := requireNode(p.NodeID); err != nil {
		return err
	}
	if err := p.VerifiableShuffle.validate(); err != nil {
		return err
	}
	return p.VerifiableDecryptions.validate()
}

func (p *ControlComponentShufflePayload) HashableMessage() hashing.HashableMessage {
	return hashing.List(
		p.EncryptionGroup.HashableMessage(),
		hashing.String(p.ElectionEventID),
		hashing.String(p.BallotBoxID),
		hashing.Uint(uint64(p.NodeID)),
		p.VerifiableShuffle.hashable(),
		p.VerifiableDecryptions.hashable(),
	)
}

func (p *ControlComponentShufflePayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("shuffle"),
		hashing.Uint(uint64(p.NodeID)),
		hashing.String(p.ElectionEventID),
		hashing.String(p.BallotBoxID),
	}
}

func (p *ControlComponentShufflePayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *ControlComponentShufflePayload) Authority() keystore.Authority {
	return keystore.ControlComponent(p.NodeID)
}

/////////////////// tallyComponentShufflePayload ///////////////////

type DecryptedVote struct {
	Message crypto.BigIntSlice `json:"message"`
}

// VerifiablePlaintextDecryption holds the plaintexts of the final
// decryption.
type VerifiablePlaintextDecryption struct {
	DecryptedVotes   []DecryptedVote        `json:"decryptedVotes"`
	DecryptionProofs []*elgamal.VectorProof `json:"decryptionProofs"`
}

func (v *VerifiablePlaintextDecryption) validate() error {
	if len(v.DecryptedVotes) != len(v.DecryptionProofs) {
		return fmt.Errorf("%d decrypted votes with %d proofs", len(v.DecryptedVotes), len(v.DecryptionProofs))
	}
	for i, d := range v.DecryptedVotes {
		if len(d.Message) == 0 || v.DecryptionProofs[i] == nil {
			return fmt.Errorf("decrypted vote %d is empty", i)
		}
	}
	return nil
}

func (v *VerifiablePlaintextDecryption) hashable() hashing.HashableMessage {
	votes := make([]hashing.HashableMessage, len(v.DecryptedVotes))
	proofs := make([]hashing.HashableMessage, len(v.DecryptionProofs))
	for i, d := range v.DecryptedVotes {
		votes[i] = hashing.IntList(d.Message)
	}
	for i, p := range v.DecryptionProofs {
		proofs[i] = vectorProofHashable(p)
	}
	return hashing.List(list(votes), list(proofs))
}

// TallyComponentShufflePayload is the final shuffle and decryption done
// offline with the electoral board key.
type TallyComponentShufflePayload struct {
	EncryptionGroup               *elgamal.EncryptionGroup      `json:"encryptionGroup"`
	ElectionEventID               string                        `json:"electionEventId"`
	BallotBoxID                   string                        `json:"ballotBoxId"`
	VerifiableShuffle             VerifiableShuffle             `json:"verifiableShuffle"`
	VerifiablePlaintextDecryption VerifiablePlaintextDecryption `json:"verifiablePlaintextDecryption"`
	Signature                     *Signature                    `json:"signature"`
}

func (p *TallyComponentShufflePayload) Kind() Kind { return KindTallyComponentShuffle }

func (p *TallyComponentShufflePayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *TallyComponentShufflePayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireString("ballotBoxId", p.BallotBoxID); err != nil {
		return err
	}
	if err := p.VerifiableShuffle.validate(); err != nil {
		return err
	}
	return p.VerifiablePlaintextDecryption.validate()
}

// DecryptedMessages returns the plaintexts in payload order.
func (p *TallyComponentShufflePayload) DecryptedMessages() []crypto.BigIntSlice {
	out := make([]crypto.BigIntSlice, len(p.VerifiablePlaintextDecryption.DecryptedVotes))
	for i, d := range p.VerifiablePlaintextDecryption.DecryptedVotes {
		out[i] = d.Message
	}
	return out
}

func (p *TallyComponentShufflePayload) HashableMessage() hashing.HashableMessage {
	return hashing.List(
		p.EncryptionGroup.HashableMessage(),
		hashing.String(p.ElectionEventID),
		hashing.String(p.BallotBoxID),
		p.VerifiableShuffle.hashable(),
		p.VerifiablePlaintextDecryption.hashable(),
	)
}

func (p *TallyComponentShufflePayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("shuffle"),
		hashing.String("offline"),
		hashing.String(p.ElectionEventID),
		hashing.String(p.BallotBoxID),
	}
}

func (p *TallyComponentShufflePayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *TallyComponentShufflePayload) Authority() keystore.Authority { return keystore.SdmTally }

/////////////////// tallyComponentVotesPayload ///////////////////

// TallyComponentVotesPayload holds the decoded votes of a ballot box:
// the selected primes of every vote and their voting options.
type TallyComponentVotesPayload struct {
	ElectionEventID             string                   `json:"electionEventId"`
	BallotID                    string                   `json:"ballotId"`
	BallotBoxID                 string                   `json:"ballotBoxId"`
	EncryptionGroup             *elgamal.EncryptionGroup `json:"encryptionGroup"`
	Votes                       [][]uint64               `json:"votes"`
	ActualSelectedVotingOptions [][]string               `json:"actualSelectedVotingOptions"`
	DecodedWriteInVotes         [][]string               `json:"decodedWriteInVotes"`
	Signature                   *Signature               `json:"signature"`
}

func (p *TallyComponentVotesPayload) Kind() Kind { return KindTallyComponentVotes }

func (p *TallyComponentVotesPayload) Group() *elgamal.EncryptionGroup { return p.EncryptionGroup }

func (p *TallyComponentVotesPayload) validate() error {
	if err := requireGroup(p.EncryptionGroup); err != nil {
		return err
	}
	if err := requireString("ballotBoxId", p.BallotBoxID); err != nil {
		return err
	}
	if len(p.ActualSelectedVotingOptions) != len(p.Votes) {
		return fmt.Errorf("%d votes with %d selected voting options", len(p.Votes), len(p.ActualSelectedVotingOptions))
	}
	return nil
}

func stringLists(ls [][]string) hashing.HashableMessage {
	if len(ls) == 0 {
		return hashing.String("")
	}
	out := make([]hashing.HashableMessage, len(ls))
	for i, l := range ls {
		if len(l) == 0 {
			out[i] = hashing.String("")
			continue
		}
		out[i] = hashing.StringList(l)
	}
	return hashing.List(out...)
}

func (p *TallyComponentVotesPayload) HashableMessage() hashing.HashableMessage {
	votes := hashing.String("")
	if len(p.Votes) > 0 {
		l := make([]hashing.HashableMessage, len(p.Votes))
		for i, v := range p.Votes {
			l[i] = uintList(v)
		}
		votes = hashing.List(l...)
	}
	return hashing.List(
		hashing.String(p.ElectionEventID),
		hashing.String(p.BallotID),
		hashing.String(p.BallotBoxID),
		p.EncryptionGroup.HashableMessage(),
		votes,
		stringLists(p.ActualSelectedVotingOptions),
		stringLists(p.DecodedWriteInVotes),
	)
}

func (p *TallyComponentVotesPayload) SignatureContext() []hashing.HashableMessage {
	return []hashing.HashableMessage{
		hashing.String("decoded votes"),
		hashing.String(p.ElectionEventID),
		hashing.String(p.BallotBoxID),
	}
}

func (p *TallyComponentVotesPayload) SignatureBytes() ([]byte, error) {
	return signatureBytes(p.Signature)
}

func (p *TallyComponentVotesPayload) Authority() keystore.Authority { return keystore.SdmTally }
