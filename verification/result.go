package verification

import (
	"errors"
	"fmt"
	"strings"
)

// EventKind separates findings that could not be checked from findings
// that were checked and do not hold.
type EventKind uint8

const (
	// Error means the data could not be read or is malformed.
	Error EventKind = iota
	// Failure means the data was read but the check does not hold.
	Failure
)

func (k EventKind) String() string {
	if k == Error {
		return "error"
	}
	return "failure"
}

// Event is one finding. Contexts are appended from the innermost scope
// outwards as the event moves up to the enclosing results.
type Event struct {
	Kind     EventKind
	Source   error
	Contexts []string
}

func (e *Event) withContext(ctx string) *Event {
	contexts := make([]string, len(e.Contexts), len(e.Contexts)+1)
	copy(contexts, e.Contexts)
	return &Event{Kind: e.Kind, Source: e.Source, Contexts: append(contexts, ctx)}
}

// String renders the message followed by its contexts, e.g.
// "p not equal -> tally_component_shuffle_payload -> ballot box bb-1".
func (e *Event) String() string {
	parts := make([]string, 0, len(e.Contexts)+1)
	parts = append(parts, e.Source.Error())
	parts = append(parts, e.Contexts...)
	return strings.Join(parts, " -> ")
}

// Result accumulates the events of a verification in discovery order. The
// zero value is empty and ready to use.
type Result struct {
	events []*Event
}

func NewResult() *Result {
	return &Result{}
}

func (r *Result) push(kind EventKind, err error) {
	if err == nil {
		err = errors.New("unknown " + kind.String())
	}
	r.events = append(r.events, &Event{Kind: kind, Source: err})
}

func (r *Result) PushError(err error)   { r.push(Error, err) }
func (r *Result) PushFailure(err error) { r.push(Failure, err) }

func (r *Result) Errorf(format string, args ...interface{}) {
	r.push(Error, fmt.Errorf(format, args...))
}

func (r *Result) Failuref(format string, args ...interface{}) {
	r.push(Failure, fmt.Errorf(format, args...))
}

// Check pushes a failure when ok is false and reports ok.
func (r *Result) Check(ok bool, format string, args ...interface{}) bool {
	if !ok {
		r.Failuref(format, args...)
	}
	return ok
}

// PushFailures pushes one failure per error.
func (r *Result) PushFailures(errs []error) {
	for _, err := range errs {
		r.PushFailure(err)
	}
}

// Append moves the events of other to r, leaving other empty.
func (r *Result) Append(other *Result) {
	r.events = append(r.events, other.events...)
	other.events = nil
}

// AppendWithContext copies the events of other to r, each tagged with ctx.
func (r *Result) AppendWithContext(other *Result, ctx string) {
	for _, e := range other.events {
		r.events = append(r.events, e.withContext(ctx))
	}
}

func (r *Result) AppendWithContextf(other *Result, format string, args ...interface{}) {
	r.AppendWithContext(other, fmt.Sprintf(format, args...))
}

func (r *Result) Events() []*Event {
	return r.events
}

func (r *Result) filter(kind EventKind) []*Event {
	var out []*Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *Result) Errors() []*Event   { return r.filter(Error) }
func (r *Result) Failures() []*Event { return r.filter(Failure) }

func (r *Result) has(kind EventKind) bool {
	for _, e := range r.events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func (r *Result) HasErrors() bool   { return r.has(Error) }
func (r *Result) HasFailures() bool { return r.has(Failure) }

func (r *Result) IsOK() bool {
	return !r.HasErrors() && !r.HasFailures()
}

func strs(events []*Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

func (r *Result) ErrorStrings() []string   { return strs(r.Errors()) }
func (r *Result) FailureStrings() []string { return strs(r.Failures()) }
