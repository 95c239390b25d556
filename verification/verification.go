// Package verification runs the checks of an election event and collects
// their findings.
//
// A check never stops on bad data. Data that cannot be read becomes an
// Error event, data that is read but does not verify becomes a Failure
// event, and the check carries on with whatever it can still compare.
package verification

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
)

// Func is the body of a verification. It only reports through res.
type Func func(dir directory.Directory, cfg *config.VerifierConfig, res *Result)

// ErrNotImplemented is reported by verifications without a function.
var ErrNotImplemented = errors.New("verification not implemented")

// Verification binds a catalogue entry to its function and holds the
// outcome of its single run.
type Verification struct {
	meta Metadata
	fn   Func

	mu       sync.Mutex
	status   Status
	result   *Result
	duration time.Duration
}

// New creates the verification. A nil fn yields a verification that
// reports itself as not implemented.
func New(meta Metadata, fn Func) *Verification {
	return &Verification{meta: meta, fn: fn, result: NewResult()}
}

func (v *Verification) Meta() Metadata { return v.meta }
func (v *Verification) ID() string     { return v.meta.ID }
func (v *Verification) Name() string   { return v.meta.Name }

func (v *Verification) Implemented() bool {
	return v.fn != nil
}

func (v *Verification) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Result is only stable once the verification has finished.
func (v *Verification) Result() *Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

func (v *Verification) Duration() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.duration
}

// Run executes the function once. The final status is derived from the
// result, a panic in the function is recorded as an error.
func (v *Verification) Run(dir directory.Directory, cfg *config.VerifierConfig) {
	v.mu.Lock()
	if v.status != NotStarted {
		v.mu.Unlock()
		return
	}
	v.status = Running
	v.mu.Unlock()

	res := NewResult()
	start := time.Now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				res.PushError(fmt.Errorf("verification aborted: %v", r))
			}
		}()
		if v.fn == nil {
			res.PushError(ErrNotImplemented)
			return
		}
		v.fn(dir, cfg, res)
	}()

	v.mu.Lock()
	v.duration = time.Since(start)
	v.result = res
	v.status = statusOf(res)
	v.mu.Unlock()
}
