package directory

import (
	"fmt"

	"github.com/thechriswalker/go-evote-verifier/ech0222"
	"github.com/thechriswalker/go-evote-verifier/payloads"
)

// Root is the scope of the files directly in the setup directory.
const Root = ""

type key struct {
	kind  payloads.Kind
	scope string
	index int
}

type override func(p payloads.Payload, err error) (payloads.Payload, error)

// Mock overlays changes on a directory. Overrides are keyed by payload
// kind, scope and index: the scope is Root, a verification card set or a
// ballot box name, the index is the node or chunk number of numbered
// files and 0 for single files. Everything not overridden is read from
// the wrapped directory.
type Mock struct {
	wrapped   Directory
	overrides map[key]override
	files     map[string]error
	delivery  func(*ech0222.Delivery)
}

var _ Directory = (*Mock)(nil)

func NewMock(d Directory) *Mock {
	return &Mock{wrapped: d, overrides: map[key]override{}, files: map[string]error{}}
}

func kindOf[T payloads.Payload]() payloads.Kind {
	var zero T
	return zero.Kind()
}

// Mutate changes a copy of the payload with fn.
func Mutate[T payloads.Payload](m *Mock, scope string, index int, fn func(T)) {
	m.overrides[key{kindOf[T](), scope, index}] = func(p payloads.Payload, err error) (payloads.Payload, error) {
		if err != nil {
			return p, err
		}
		c, err := payloads.Clone(p.(T))
		if err != nil {
			return nil, fmt.Errorf("cannot copy %s: %w", p.Kind(), err)
		}
		fn(c)
		return c, nil
	}
}

// Replace substitutes the payload.
func Replace[T payloads.Payload](m *Mock, scope string, index int, p T) {
	m.overrides[key{kindOf[T](), scope, index}] = func(payloads.Payload, error) (payloads.Payload, error) {
		return p, nil
	}
}

// Fail makes the payload unreadable.
func (m *Mock) Fail(kind payloads.Kind, scope string, index int, err error) {
	m.overrides[key{kind, scope, index}] = func(payloads.Payload, error) (payloads.Payload, error) {
		return nil, err
	}
}

// FailFile makes the election configuration or the eCH-0222 file
// unreadable.
func (m *Mock) FailFile(name string, err error) {
	m.files[name] = err
}

// MutateDelivery changes a copy of the eCH-0222 delivery with fn.
func (m *Mock) MutateDelivery(fn func(*ech0222.Delivery)) {
	m.delivery = fn
}

func apply[T payloads.Payload](m *Mock, scope string, index int, v T, err error) (T, error) {
	o, ok := m.overrides[key{kindOf[T](), scope, index}]
	if !ok {
		return v, err
	}
	var zero T
	var p payloads.Payload
	if err == nil {
		p = v
	}
	p, err = o(p, err)
	if err != nil {
		return zero, err
	}
	return p.(T), nil
}

func applyItems[T payloads.Payload](m *Mock, scope string, items []Item[T]) []Item[T] {
	out := make([]Item[T], len(items))
	for i, item := range items {
		item.Value, item.Err = apply(m, scope, item.Index, item.Value, item.Err)
		out[i] = item
	}
	return out
}

func (m *Mock) Setup() SetupDirectory { return mockSetup{m: m, w: m.wrapped.Setup()} }
func (m *Mock) Tally() TallyDirectory { return mockTally{m: m, w: m.wrapped.Tally()} }

type mockSetup struct {
	m *Mock
	w SetupDirectory
}

func (s mockSetup) EncryptionParameters() (*payloads.EncryptionParametersPayload, error) {
	v, err := s.w.EncryptionParameters()
	return apply(s.m, Root, 0, v, err)
}

func (s mockSetup) ElectionEventContext() (*payloads.ElectionEventContextPayload, error) {
	v, err := s.w.ElectionEventContext()
	return apply(s.m, Root, 0, v, err)
}

func (s mockSetup) SetupComponentPublicKeys() (*payloads.SetupComponentPublicKeysPayload, error) {
	v, err := s.w.SetupComponentPublicKeys()
	return apply(s.m, Root, 0, v, err)
}

func (s mockSetup) ControlComponentPublicKeys() []Item[*payloads.ControlComponentPublicKeysPayload] {
	return applyItems(s.m, Root, s.w.ControlComponentPublicKeys())
}

func (s mockSetup) VerificationCardSets() []VerificationCardSetDirectory {
	vcs := s.w.VerificationCardSets()
	out := make([]VerificationCardSetDirectory, len(vcs))
	for i, v := range vcs {
		out[i] = mockVerificationCardSet{m: s.m, w: v}
	}
	return out
}

type mockVerificationCardSet struct {
	m *Mock
	w VerificationCardSetDirectory
}

func (v mockVerificationCardSet) Name() string { return v.w.Name() }

func (v mockVerificationCardSet) SetupComponentTallyData() (*payloads.SetupComponentTallyDataPayload, error) {
	p, err := v.w.SetupComponentTallyData()
	return apply(v.m, v.Name(), 0, p, err)
}

func (v mockVerificationCardSet) SetupComponentVerificationData() []Item[*payloads.SetupComponentVerificationDataPayload] {
	return applyItems(v.m, v.Name(), v.w.SetupComponentVerificationData())
}

func (v mockVerificationCardSet) ControlComponentCodeShares() []Item[*payloads.ControlComponentCodeSharesPayloads] {
	return applyItems(v.m, v.Name(), v.w.ControlComponentCodeShares())
}

type mockTally struct {
	m *Mock
	w TallyDirectory
}

func (t mockTally) ElectionConfiguration() (*ech0222.Configuration, error) {
	if err, ok := t.m.files[ElectionConfigurationFile]; ok {
		return nil, err
	}
	return t.w.ElectionConfiguration()
}

func (t mockTally) ECH0222() (*ech0222.Delivery, error) {
	if err, ok := t.m.files[ECH0222File]; ok {
		return nil, err
	}
	d, err := t.w.ECH0222()
	if err != nil || t.m.delivery == nil {
		return d, err
	}
	b, err := d.Marshal()
	if err != nil {
		return nil, err
	}
	c, err := ech0222.ParseDelivery(b)
	if err != nil {
		return nil, err
	}
	t.m.delivery(c)
	return c, nil
}

func (t mockTally) BallotBoxes() []BallotBoxDirectory {
	bbs := t.w.BallotBoxes()
	out := make([]BallotBoxDirectory, len(bbs))
	for i, b := range bbs {
		out[i] = mockBallotBox{m: t.m, w: b}
	}
	return out
}

type mockBallotBox struct {
	m *Mock
	w BallotBoxDirectory
}

func (b mockBallotBox) Name() string { return b.w.Name() }

func (b mockBallotBox) ControlComponentBallotBoxes() []Item[*payloads.ControlComponentBallotBoxPayload] {
	return applyItems(b.m, b.Name(), b.w.ControlComponentBallotBoxes())
}

func (b mockBallotBox) ControlComponentShuffles() []Item[*payloads.ControlComponentShufflePayload] {
	return applyItems(b.m, b.Name(), b.w.ControlComponentShuffles())
}

func (b mockBallotBox) TallyComponentShuffle() (*payloads.TallyComponentShufflePayload, error) {
	p, err := b.w.TallyComponentShuffle()
	return apply(b.m, b.Name(), 0, p, err)
}

func (b mockBallotBox) TallyComponentVotes() (*payloads.TallyComponentVotesPayload, error) {
	p, err := b.w.TallyComponentVotes()
	return apply(b.m, b.Name(), 0, p, err)
}
