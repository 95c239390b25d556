// Package directory gives the verifications access to the payloads of an
// election event. Every accessor returns an error instead of failing, so
// that one unreadable file stays contained to the checks that need it.
package directory

import (
	"errors"

	"github.com/thechriswalker/go-evote-verifier/ech0222"
	"github.com/thechriswalker/go-evote-verifier/payloads"
)

// ErrNotFound is returned for files missing from the directory.
var ErrNotFound = errors.New("file not found")

// Item is one element of a numbered file group. Err is set when the file
// at Index could not be read or decoded.
type Item[T any] struct {
	Index int
	Value T
	Err   error
}

// Directory is the data of an election event.
type Directory interface {
	Setup() SetupDirectory
	Tally() TallyDirectory
}

type SetupDirectory interface {
	EncryptionParameters() (*payloads.EncryptionParametersPayload, error)
	ElectionEventContext() (*payloads.ElectionEventContextPayload, error)
	SetupComponentPublicKeys() (*payloads.SetupComponentPublicKeysPayload, error)
	// ControlComponentPublicKeys is indexed by node id.
	ControlComponentPublicKeys() []Item[*payloads.ControlComponentPublicKeysPayload]
	VerificationCardSets() []VerificationCardSetDirectory
}

// VerificationCardSetDirectory holds the setup data of one set. Chunk
// items are indexed by chunk id.
type VerificationCardSetDirectory interface {
	Name() string
	SetupComponentTallyData() (*payloads.SetupComponentTallyDataPayload, error)
	SetupComponentVerificationData() []Item[*payloads.SetupComponentVerificationDataPayload]
	ControlComponentCodeShares() []Item[*payloads.ControlComponentCodeSharesPayloads]
}

type TallyDirectory interface {
	ElectionConfiguration() (*ech0222.Configuration, error)
	ECH0222() (*ech0222.Delivery, error)
	BallotBoxes() []BallotBoxDirectory
}

// BallotBoxDirectory holds the tally data of one ballot box. Control
// component items are indexed by node id.
type BallotBoxDirectory interface {
	Name() string
	ControlComponentBallotBoxes() []Item[*payloads.ControlComponentBallotBoxPayload]
	ControlComponentShuffles() []Item[*payloads.ControlComponentShufflePayload]
	TallyComponentShuffle() (*payloads.TallyComponentShufflePayload, error)
	TallyComponentVotes() (*payloads.TallyComponentVotesPayload, error)
}
