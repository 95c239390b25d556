package verification

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
)

var (
	ErrAlreadyRunning = errors.New("runner is already running")
	ErrAlreadyRun     = errors.New("runner has already run, reset it first")
)

type Strategy uint8

const (
	Sequential Strategy = iota
	Parallel
)

func (s Strategy) String() string {
	if s == Parallel {
		return "parallel"
	}
	return "sequential"
}

// Hooks are called around the run and around every verification. In
// parallel runs the verification hooks are called concurrently and in no
// particular order.
type Hooks struct {
	BeforeAll          func(r *Runner)
	AfterAll           func(r *Runner)
	BeforeVerification func(v *Verification)
	AfterVerification  func(v *Verification)
}

type runState uint8

const (
	idle runState = iota
	running
	done
)

// Runner executes a suite exactly once. Reset prepares it for another run.
type Runner struct {
	period   Period
	funcs    map[string]Func
	dir      directory.Directory
	cfg      *config.VerifierConfig
	strategy Strategy
	workers  int
	hooks    Hooks
	progress bool

	mu       sync.Mutex
	state    runState
	suite    *Suite
	id       xid.ID
	started  time.Time
	duration time.Duration
}

type RunnerOption interface {
	apply(*Runner)
}

type runnerOptionFunc func(*Runner)

func (f runnerOptionFunc) apply(r *Runner) {
	f(r)
}

func WithHooks(h Hooks) RunnerOption {
	return runnerOptionFunc(func(r *Runner) {
		r.hooks = h
	})
}

// WithProgress draws a progress bar on stderr for sequential runs.
func WithProgress(enabled bool) RunnerOption {
	return runnerOptionFunc(func(r *Runner) {
		r.progress = enabled
	})
}

// NewRunner builds the suite of the period from the catalogue. The
// strategy and the exclusions come from the configuration.
func NewRunner(period Period, meta *MetadataList, funcs map[string]Func, dir directory.Directory, cfg *config.VerifierConfig, options ...RunnerOption) *Runner {
	r := &Runner{
		period:   period,
		funcs:    funcs,
		dir:      dir,
		cfg:      cfg,
		strategy: Sequential,
		workers:  1,
	}
	if cfg.Parallel() {
		r.strategy = Parallel
		r.workers = cfg.Workers()
	}
	for _, o := range options {
		o.apply(r)
	}
	r.suite = NewSuite(period, meta, funcs, cfg.Exclusions())
	return r
}

func (r *Runner) Suite() *Suite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suite
}

func (r *Runner) Config() *config.VerifierConfig { return r.cfg }
func (r *Runner) Strategy() Strategy             { return r.strategy }

// ID identifies the last run, it is zero before the first run.
func (r *Runner) ID() xid.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

func (r *Runner) Started() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

func (r *Runner) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == running
}

func (r *Runner) IsFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == done
}

// Run executes every verification of the suite.
func (r *Runner) Run() error {
	r.mu.Lock()
	switch r.state {
	case running:
		r.mu.Unlock()
		return ErrAlreadyRunning
	case done:
		r.mu.Unlock()
		return ErrAlreadyRun
	}
	r.state = running
	r.id = xid.New()
	r.started = time.Now()
	id, suite := r.id, r.suite
	r.mu.Unlock()

	// a panicking hook still leaves the runner finished
	finish := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.state == running {
			r.duration = time.Since(r.started)
			r.state = done
		}
	}
	defer finish()

	l := log.With().Str("run", id.String()).Str("period", string(r.period)).Logger()
	l.Info().
		Int("verifications", suite.Len()).
		Int("excluded", suite.LenExcluded()).
		Str("strategy", r.strategy.String()).
		Msg("starting verifications")

	if r.hooks.BeforeAll != nil {
		r.hooks.BeforeAll(r)
	}

	one := func(v *Verification) {
		if r.hooks.BeforeVerification != nil {
			r.hooks.BeforeVerification(v)
		}
		v.Run(r.dir, r.cfg)
		res := v.Result()
		l.Debug().
			Str("verification", v.ID()).
			Str("status", v.Status().String()).
			Int("errors", len(res.Errors())).
			Int("failures", len(res.Failures())).
			Dur("duration", v.Duration()).
			Msg("verification finished")
		if r.hooks.AfterVerification != nil {
			r.hooks.AfterVerification(v)
		}
	}

	if r.strategy == Parallel {
		runParallel(suite.List(), r.workers, one)
	} else {
		bar := newProgress(suite.Len(), r.progress)
		bar.Start()
		for _, v := range suite.List() {
			bar.Prefix(v.ID())
			one(v)
			bar.Increment()
		}
		bar.Finish()
	}

	finish()

	if r.hooks.AfterAll != nil {
		r.hooks.AfterAll(r)
	}

	var withErrors, withFailures int
	for _, v := range suite.List() {
		switch v.Status() {
		case FinishedWithErrors:
			withErrors++
		case FinishedWithFailures:
			withFailures++
		}
	}
	l.Info().
		Int("errors", withErrors).
		Int("failures", withFailures).
		Dur("duration", r.Duration()).
		Msg("verifications finished")
	return nil
}

func runParallel(list []*Verification, workers int, fn func(*Verification)) {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	wg := sync.WaitGroup{}
	for _, v := range list {
		wg.Add(1)
		sem <- struct{}{}
		go func(v *Verification) {
			defer func() {
				<-sem
				wg.Done()
			}()
			fn(v)
		}(v)
	}
	wg.Wait()
}

// Reset rebuilds the suite from meta so the runner can run again.
func (r *Runner) Reset(meta *MetadataList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == running {
		return ErrAlreadyRunning
	}
	r.suite = NewSuite(r.period, meta, r.funcs, r.cfg.Exclusions())
	r.state = idle
	r.duration = 0
	return nil
}
