// Package payloads defines the signed JSON documents of an election
// event: the setup payloads produced before voting and the tally payloads
// produced by the mixing and decryption.
package payloads

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thechriswalker/go-evote-verifier/crypto"
	"github.com/thechriswalker/go-evote-verifier/crypto/elgamal"
	"github.com/thechriswalker/go-evote-verifier/crypto/hashing"
	"github.com/thechriswalker/go-evote-verifier/crypto/signing"
	"github.com/thechriswalker/go-evote-verifier/keystore"
)

type Kind uint8

const (
	KindEncryptionParameters Kind = iota
	KindElectionEventContext
	KindSetupComponentPublicKeys
	KindControlComponentPublicKeys
	KindSetupComponentTallyData
	KindSetupComponentVerificationData
	KindControlComponentCodeShares
	KindControlComponentBallotBox
	KindControlComponentShuffle
	KindTallyComponentShuffle
	KindTallyComponentVotes
)

var kindNames = map[Kind]string{
	KindEncryptionParameters:           "encryption_parameters_payload",
	KindElectionEventContext:           "election_event_context_payload",
	KindSetupComponentPublicKeys:       "setup_component_public_keys_payload",
	KindControlComponentPublicKeys:     "control_component_public_keys_payload",
	KindSetupComponentTallyData:        "setup_component_tally_data_payload",
	KindSetupComponentVerificationData: "setup_component_verification_data_payload",
	KindControlComponentCodeShares:     "control_component_code_shares_payload",
	KindControlComponentBallotBox:      "control_component_ballot_box_payload",
	KindControlComponentShuffle:        "control_component_shuffle_payload",
	KindTallyComponentShuffle:          "tally_component_shuffle_payload",
	KindTallyComponentVotes:            "tally_component_votes_payload",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Payload is any decoded document.
type Payload interface {
	Kind() Kind
	validate() error
}

// Signed is a payload carrying a signature of one authority.
type Signed interface {
	Payload
	// HashableMessage is the signed content, without the signature.
	HashableMessage() hashing.HashableMessage
	SignatureContext() []hashing.HashableMessage
	SignatureBytes() ([]byte, error)
	Authority() keystore.Authority
}

// Grouped is a payload bound to an encryption group.
type Grouped interface {
	Payload
	Group() *elgamal.EncryptionGroup
}

// ControlComponents is the number of online control components, numbered
// from 1.
const ControlComponents = 4

var ErrMissingSignature = errors.New("payload has no signature")

// Signature holds the base64 encoded signature bytes.
type Signature struct {
	SignatureContents string `json:"signatureContents"`
}

func signatureBytes(s *Signature) ([]byte, error) {
	if s == nil || s.SignatureContents == "" {
		return nil, ErrMissingSignature
	}
	b, err := crypto.Base64Decode(s.SignatureContents)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// NewSignature encodes signature bytes.
func NewSignature(b []byte) *Signature {
	return &Signature{SignatureContents: crypto.FromBytes(b).Base64Encode()}
}

// VerifySignature checks the signature of p against the certificate of
// its authority. An error means the signature could not be checked.
func VerifySignature(ks *keystore.KeyStore, p Signed) (bool, error) {
	pub, err := ks.PublicKey(p.Authority())
	if err != nil {
		return false, err
	}
	sig, err := p.SignatureBytes()
	if err != nil {
		return false, err
	}
	return signing.Verify(pub, p.HashableMessage(), p.SignatureContext(), sig)
}

// New returns an empty payload of the kind.
func New(k Kind) (Payload, error) {
	switch k {
	case KindEncryptionParameters:
		return &EncryptionParametersPayload{}, nil
	case KindElectionEventContext:
		return &ElectionEventContextPayload{}, nil
	case KindSetupComponentPublicKeys:
		return &SetupComponentPublicKeysPayload{}, nil
	case KindControlComponentPublicKeys:
		return &ControlComponentPublicKeysPayload{}, nil
	case KindSetupComponentTallyData:
		return &SetupComponentTallyDataPayload{}, nil
	case KindSetupComponentVerificationData:
		return &SetupComponentVerificationDataPayload{}, nil
	case KindControlComponentCodeShares:
		return &ControlComponentCodeSharesPayloads{}, nil
	case KindControlComponentBallotBox:
		return &ControlComponentBallotBoxPayload{}, nil
	case KindControlComponentShuffle:
		return &ControlComponentShufflePayload{}, nil
	case KindTallyComponentShuffle:
		return &TallyComponentShufflePayload{}, nil
	case KindTallyComponentVotes:
		return &TallyComponentVotesPayload{}, nil
	}
	return nil, fmt.Errorf("unknown payload kind %d", k)
}

// Decode parses data as a payload of kind k and checks that its required
// fields are present.
func Decode(k Kind, data []byte) (Payload, error) {
	p, err := New(k)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", k, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", k, err)
	}
	return p, nil
}

// DecodeAs decodes and asserts the concrete payload type.
func DecodeAs[T Payload](k Kind, data []byte) (T, error) {
	var zero T
	p, err := Decode(k, data)
	if err != nil {
		return zero, err
	}
	t, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%s decoded as unexpected type %T", k, p)
	}
	return t, nil
}

// Clone deep copies p through its JSON form.
func Clone[T Payload](p T) (T, error) {
	var zero T
	b, err := json.Marshal(p)
	if err != nil {
		return zero, err
	}
	return DecodeAs[T](p.Kind(), b)
}

func requireGroup(g *elgamal.EncryptionGroup) error {
	if g == nil {
		return fmt.Errorf("missing encryptionGroup")
	}
	return nil
}

func requireString(name, v string) error {
	if v == "" {
		return fmt.Errorf("missing %s", name)
	}
	return nil
}

func requireCiphertext(name string, ct *elgamal.Ciphertext) error {
	if ct == nil {
		return fmt.Errorf("missing %s", name)
	}
	return nil
}

func requireNode(nodeID int) error {
	if nodeID < 1 {
		return fmt.Errorf("missing nodeId")
	}
	return nil
}
