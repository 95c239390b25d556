package directory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-evote-verifier/ech0222"
	"github.com/thechriswalker/go-evote-verifier/payloads"
)

const (
	SetupDir               = "setup"
	TallyDir               = "tally"
	VerificationCardSetDir = "setup/verification_card_sets"
	BallotBoxDir           = "tally/ballot_boxes"

	EncryptionParametersFile          = "encryptionParametersPayload.json"
	ElectionEventContextFile          = "electionEventContextPayload.json"
	SetupComponentPublicKeysFile      = "setupComponentPublicKeysPayload.json"
	ControlComponentPublicKeysPrefix  = "controlComponentPublicKeysPayload."
	SetupComponentTallyDataFile       = "setupComponentTallyDataPayload.json"
	SetupComponentVerificationPrefix  = "setupComponentVerificationDataPayload."
	ControlComponentCodeSharesPrefix  = "controlComponentCodeSharesPayload."
	ElectionConfigurationFile         = "electionConfiguration.json"
	ECH0222File                       = "eCH-0222.xml"
	ControlComponentBallotBoxPrefix   = "controlComponentBallotBoxPayload_"
	ControlComponentShufflePrefix     = "controlComponentShufflePayload_"
	TallyComponentShuffleFile         = "tallyComponentShufflePayload.json"
	TallyComponentVotesFile           = "tallyComponentVotesPayload.json"
)

type entry struct {
	once sync.Once
	v    interface{}
	err  error
}

// FS reads the election event from a file system. Decoded files are
// cached, so every file is decoded once however many verifications read
// it.
type FS struct {
	fsys  fs.FS
	mu    sync.Mutex
	cache map[string]*entry
}

var _ Directory = (*FS)(nil)

// New reads the directory from fsys.
func New(fsys fs.FS) *FS {
	return &FS{fsys: fsys, cache: map[string]*entry{}}
}

// Open reads the directory at root.
func Open(root string) (*FS, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return New(os.DirFS(root)), nil
}

func (d *FS) cached(name string, load func() (interface{}, error)) (interface{}, error) {
	d.mu.Lock()
	e, ok := d.cache[name]
	if !ok {
		e = &entry{}
		d.cache[name] = e
	}
	d.mu.Unlock()
	e.once.Do(func() {
		e.v, e.err = load()
	})
	return e.v, e.err
}

func (d *FS) readFile(name string) ([]byte, error) {
	b, err := fs.ReadFile(d.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return b, err
}

func decode[T payloads.Payload](d *FS, name string) (T, error) {
	var zero T
	kind := zero.Kind()
	v, err := d.cached(name, func() (interface{}, error) {
		log.Debug().Str("file", name).Str("kind", kind.String()).Msg("decoding payload")
		b, err := d.readFile(name)
		if err != nil {
			return nil, err
		}
		p, err := payloads.DecodeAs[T](kind, b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return p, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// numbered lists the files dir/<prefix><n>.json from first to the
// highest number present. Gaps are reported as missing.
func numbered[T payloads.Payload](d *FS, dir, prefix string, first int) []Item[T] {
	entries, err := fs.ReadDir(d.fsys, dir)
	if err != nil {
		return nil
	}
	present := map[int]string{}
	last := first - 1
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
		if err != nil || n < first {
			continue
		}
		present[n] = path.Join(dir, name)
		if n > last {
			last = n
		}
	}
	items := make([]Item[T], 0, last-first+1)
	for n := first; n <= last; n++ {
		item := Item[T]{Index: n}
		if name, ok := present[n]; ok {
			item.Value, item.Err = decode[T](d, name)
		} else {
			item.Err = fmt.Errorf("%s%d.json: %w", path.Join(dir, prefix), n, ErrNotFound)
		}
		items = append(items, item)
	}
	return items
}

func subdirs(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

func (d *FS) Setup() SetupDirectory { return fsSetup{d} }
func (d *FS) Tally() TallyDirectory { return fsTally{d} }

/////////////////// setup ///////////////////

type fsSetup struct{ d *FS }

func (s fsSetup) EncryptionParameters() (*payloads.EncryptionParametersPayload, error) {
	return decode[*payloads.EncryptionParametersPayload](s.d, path.Join(SetupDir, EncryptionParametersFile))
}

func (s fsSetup) ElectionEventContext() (*payloads.ElectionEventContextPayload, error) {
	return decode[*payloads.ElectionEventContextPayload](s.d, path.Join(SetupDir, ElectionEventContextFile))
}

func (s fsSetup) SetupComponentPublicKeys() (*payloads.SetupComponentPublicKeysPayload, error) {
	return decode[*payloads.SetupComponentPublicKeysPayload](s.d, path.Join(SetupDir, SetupComponentPublicKeysFile))
}

func (s fsSetup) ControlComponentPublicKeys() []Item[*payloads.ControlComponentPublicKeysPayload] {
	return numbered[*payloads.ControlComponentPublicKeysPayload](s.d, SetupDir, ControlComponentPublicKeysPrefix, 1)
}

func (s fsSetup) VerificationCardSets() []VerificationCardSetDirectory {
	var out []VerificationCardSetDirectory
	for _, name := range subdirs(s.d.fsys, VerificationCardSetDir) {
		out = append(out, fsVerificationCardSet{d: s.d, name: name})
	}
	return out
}

type fsVerificationCardSet struct {
	d    *FS
	name string
}

func (v fsVerificationCardSet) Name() string { return v.name }

func (v fsVerificationCardSet) dir() string { return path.Join(VerificationCardSetDir, v.name) }

func (v fsVerificationCardSet) SetupComponentTallyData() (*payloads.SetupComponentTallyDataPayload, error) {
	return decode[*payloads.SetupComponentTallyDataPayload](v.d, path.Join(v.dir(), SetupComponentTallyDataFile))
}

func (v fsVerificationCardSet) SetupComponentVerificationData() []Item[*payloads.SetupComponentVerificationDataPayload] {
	return numbered[*payloads.SetupComponentVerificationDataPayload](v.d, v.dir(), SetupComponentVerificationPrefix, 0)
}

func (v fsVerificationCardSet) ControlComponentCodeShares() []Item[*payloads.ControlComponentCodeSharesPayloads] {
	return numbered[*payloads.ControlComponentCodeSharesPayloads](v.d, v.dir(), ControlComponentCodeSharesPrefix, 0)
}

/////////////////// tally ///////////////////

type fsTally struct{ d *FS }

func (t fsTally) ElectionConfiguration() (*ech0222.Configuration, error) {
	name := path.Join(TallyDir, ElectionConfigurationFile)
	v, err := t.d.cached(name, func() (interface{}, error) {
		b, err := t.d.readFile(name)
		if err != nil {
			return nil, err
		}
		return ech0222.ParseConfiguration(b)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ech0222.Configuration), nil
}

func (t fsTally) ECH0222() (*ech0222.Delivery, error) {
	name := path.Join(TallyDir, ECH0222File)
	v, err := t.d.cached(name, func() (interface{}, error) {
		b, err := t.d.readFile(name)
		if err != nil {
			return nil, err
		}
		return ech0222.ParseDelivery(b)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ech0222.Delivery), nil
}

func (t fsTally) BallotBoxes() []BallotBoxDirectory {
	var out []BallotBoxDirectory
	for _, name := range subdirs(t.d.fsys, BallotBoxDir) {
		out = append(out, fsBallotBox{d: t.d, name: name})
	}
	return out
}

type fsBallotBox struct {
	d    *FS
	name string
}

func (b fsBallotBox) Name() string { return b.name }

func (b fsBallotBox) dir() string { return path.Join(BallotBoxDir, b.name) }

func (b fsBallotBox) ControlComponentBallotBoxes() []Item[*payloads.ControlComponentBallotBoxPayload] {
	return numbered[*payloads.ControlComponentBallotBoxPayload](b.d, b.dir(), ControlComponentBallotBoxPrefix, 1)
}

func (b fsBallotBox) ControlComponentShuffles() []Item[*payloads.ControlComponentShufflePayload] {
	return numbered[*payloads.ControlComponentShufflePayload](b.d, b.dir(), ControlComponentShufflePrefix, 1)
}

func (b fsBallotBox) TallyComponentShuffle() (*payloads.TallyComponentShufflePayload, error) {
	return decode[*payloads.TallyComponentShufflePayload](b.d, path.Join(b.dir(), TallyComponentShuffleFile))
}

func (b fsBallotBox) TallyComponentVotes() (*payloads.TallyComponentVotesPayload, error) {
	return decode[*payloads.TallyComponentVotesPayload](b.d, path.Join(b.dir(), TallyComponentVotesFile))
}
