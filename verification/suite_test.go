package verification

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
)

const testMetadata = `[
	{"id": "01.01", "name": "First", "category": "completeness", "period": "setup"},
	{"id": "02.01", "name": "Second", "category": "authenticity", "period": "setup"},
	{"id": "03.01", "name": "Third", "category": "consistency", "period": "setup"},
	{"id": "06.01", "name": "Tally", "category": "completeness", "period": "tally"}
]`

func testMeta(t *testing.T) *MetadataList {
	m, err := LoadMetadata([]byte(testMetadata))
	require.NoError(t, err)
	return m
}

func TestDefaultMetadata(t *testing.T) {
	m, err := DefaultMetadata()
	require.NoError(t, err)
	assert.Len(t, m.ForPeriod(Setup), 23)
	assert.Len(t, m.ForPeriod(Tally), 22)
	md, ok := m.Get("08.09")
	require.True(t, ok)
	assert.Equal(t, "VerifyNumberDecryptedVotesConsistency", md.Name)
	assert.Equal(t, Consistency, md.Category)
	assert.Equal(t, Tally, md.Period)
}

func TestLoadMetadataErrors(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"bad id":       `[{"id": "1.1", "name": "x", "category": "integrity", "period": "setup"}]`,
		"no name":      `[{"id": "01.01", "category": "integrity", "period": "setup"}]`,
		"bad category": `[{"id": "01.01", "name": "x", "category": "speed", "period": "setup"}]`,
		"bad period":   `[{"id": "01.01", "name": "x", "category": "integrity", "period": "count"}]`,
		"duplicate": `[{"id": "01.01", "name": "x", "category": "integrity", "period": "setup"},
			{"id": "01.01", "name": "y", "category": "integrity", "period": "tally"}]`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMetadata([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("tally")
	require.NoError(t, err)
	assert.Equal(t, Tally, p)
	_, err = ParsePeriod("setup ")
	assert.Error(t, err)
}

func TestSuiteExclusions(t *testing.T) {
	s := NewSuite(Setup, testMeta(t), nil, []string{"02.01", "99.99"})
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.LenExcluded())
	assert.Equal(t, "02.01", s.Excluded()[0].ID)
	var ids []string
	for _, v := range s.List() {
		ids = append(ids, v.ID())
	}
	assert.Equal(t, []string{"01.01", "03.01"}, ids)
}

func TestSuiteOnlyTakesItsPeriod(t *testing.T) {
	s := NewSuite(Tally, testMeta(t), nil, []string{"01.01"})
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.LenExcluded())
}

func TestVerificationRun(t *testing.T) {
	md := Metadata{ID: "01.01", Name: "First", Category: Completeness, Period: Setup}

	ok := New(md, func(directory.Directory, *config.VerifierConfig, *Result) {})
	assert.Equal(t, NotStarted, ok.Status())
	ok.Run(nil, config.New())
	assert.Equal(t, FinishedSuccessfully, ok.Status())

	failing := New(md, func(_ directory.Directory, _ *config.VerifierConfig, r *Result) {
		r.Failuref("no match")
	})
	failing.Run(nil, config.New())
	assert.Equal(t, FinishedWithFailures, failing.Status())

	missing := New(md, nil)
	assert.False(t, missing.Implemented())
	missing.Run(nil, config.New())
	assert.Equal(t, FinishedWithErrors, missing.Status())
	assert.ErrorIs(t, missing.Result().Errors()[0].Source, ErrNotImplemented)

	panicking := New(md, func(directory.Directory, *config.VerifierConfig, *Result) {
		panic("index out of range")
	})
	panicking.Run(nil, config.New())
	assert.Equal(t, FinishedWithErrors, panicking.Status())
	assert.Equal(t, []string{"verification aborted: index out of range"}, panicking.Result().ErrorStrings())
}

func TestVerificationRunsOnce(t *testing.T) {
	calls := 0
	v := New(Metadata{ID: "01.01"}, func(directory.Directory, *config.VerifierConfig, *Result) { calls++ })
	v.Run(nil, config.New())
	v.Run(nil, config.New())
	assert.Equal(t, 1, calls)
}

func testFuncs() map[string]Func {
	return map[string]Func{
		"01.01": func(directory.Directory, *config.VerifierConfig, *Result) {},
		"02.01": func(_ directory.Directory, _ *config.VerifierConfig, r *Result) { r.Errorf("cannot read") },
		"03.01": func(_ directory.Directory, _ *config.VerifierConfig, r *Result) { r.Failuref("differs") },
	}
}

func TestRunnerSequential(t *testing.T) {
	var order []string
	var before, after int
	r := NewRunner(Setup, testMeta(t), testFuncs(), nil, config.New(), WithHooks(Hooks{
		BeforeAll:          func(*Runner) { before++ },
		AfterAll:           func(*Runner) { after++ },
		BeforeVerification: func(v *Verification) { order = append(order, "before "+v.ID()) },
		AfterVerification:  func(v *Verification) { order = append(order, "after "+v.ID()) },
	}))
	assert.False(t, r.IsRunning())
	assert.Equal(t, xid.ID{}, r.ID())

	require.NoError(t, r.Run())
	assert.True(t, r.IsFinished())
	assert.NotEqual(t, xid.ID{}, r.ID())
	assert.Equal(t, 1, before)
	assert.Equal(t, 1, after)
	assert.Equal(t, []string{
		"before 01.01", "after 01.01",
		"before 02.01", "after 02.01",
		"before 03.01", "after 03.01",
	}, order)

	statuses := map[string]Status{}
	for _, v := range r.Suite().List() {
		statuses[v.ID()] = v.Status()
	}
	assert.Equal(t, map[string]Status{
		"01.01": FinishedSuccessfully,
		"02.01": FinishedWithErrors,
		"03.01": FinishedWithFailures,
	}, statuses)
}

func TestRunnerParallel(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	cfg := config.New(config.WithParallel(2), config.WithExclusions([]string{"03.01"}))
	r := NewRunner(Setup, testMeta(t), testFuncs(), nil, cfg, WithHooks(Hooks{
		AfterVerification: func(v *Verification) {
			mu.Lock()
			seen = append(seen, v.ID())
			mu.Unlock()
		},
	}))
	assert.Equal(t, Parallel, r.Strategy())
	require.NoError(t, r.Run())
	sort.Strings(seen)
	assert.Equal(t, []string{"01.01", "02.01"}, seen)
	assert.Equal(t, 1, r.Suite().LenExcluded())
}

func TestRunnerRunsOnce(t *testing.T) {
	r := NewRunner(Setup, testMeta(t), testFuncs(), nil, config.New())
	require.NoError(t, r.Run())
	first := r.ID()
	assert.True(t, errors.Is(r.Run(), ErrAlreadyRun))

	require.NoError(t, r.Reset(testMeta(t)))
	for _, v := range r.Suite().List() {
		assert.Equal(t, NotStarted, v.Status())
	}
	require.NoError(t, r.Run())
	assert.NotEqual(t, first, r.ID())
}

func TestRunnerRejectsReentrantRun(t *testing.T) {
	var inner, reset error
	var r *Runner
	funcs := map[string]Func{
		"01.01": func(directory.Directory, *config.VerifierConfig, *Result) {
			inner = r.Run()
			reset = r.Reset(testMeta(t))
		},
	}
	r = NewRunner(Setup, testMeta(t), funcs, nil, config.New())
	assert.False(t, r.IsRunning())
	require.NoError(t, r.Run())
	assert.ErrorIs(t, inner, ErrAlreadyRunning)
	assert.ErrorIs(t, reset, ErrAlreadyRunning)
}

func TestRunnerFinishesWhenAHookPanics(t *testing.T) {
	hooks := map[string]Hooks{
		"before all":          {BeforeAll: func(*Runner) { panic("before all") }},
		"before verification": {BeforeVerification: func(*Verification) { panic("before verification") }},
		"after all":           {AfterAll: func(*Runner) { panic("after all") }},
	}
	for name, h := range hooks {
		t.Run(name, func(t *testing.T) {
			r := NewRunner(Setup, testMeta(t), testFuncs(), nil, config.New(), WithHooks(h))
			assert.Panics(t, func() { _ = r.Run() })
			assert.False(t, r.IsRunning())
			assert.True(t, r.IsFinished())
			assert.NotEqual(t, xid.ID{}, r.ID())
			assert.ErrorIs(t, r.Run(), ErrAlreadyRun)
			assert.NoError(t, r.Reset(testMeta(t)))
		})
	}
}
