package verification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyResultIsOK(t *testing.T) {
	r := NewResult()
	assert.True(t, r.IsOK())
	assert.False(t, r.HasErrors())
	assert.False(t, r.HasFailures())
	assert.Empty(t, r.Events())
}

func TestResultKinds(t *testing.T) {
	r := NewResult()
	r.PushError(errors.New("file missing"))
	r.Failuref("p not equal: %d != %d", 10, 11)
	assert.True(t, r.Check(true, "never"))
	assert.False(t, r.Check(false, "q not equal"))

	assert.False(t, r.IsOK())
	assert.True(t, r.HasErrors())
	assert.True(t, r.HasFailures())
	assert.Equal(t, []string{"file missing"}, r.ErrorStrings())
	assert.Equal(t, []string{"p not equal: 10 != 11", "q not equal"}, r.FailureStrings())
}

func TestOnlyFailuresIsNotOK(t *testing.T) {
	r := NewResult()
	r.PushFailures([]error{errors.New("a"), errors.New("b")})
	assert.False(t, r.IsOK())
	assert.False(t, r.HasErrors())
	assert.Len(t, r.Failures(), 2)
}

func TestAppendMovesEvents(t *testing.T) {
	inner := NewResult()
	inner.Failuref("p not equal")
	outer := NewResult()
	outer.Append(inner)

	assert.True(t, inner.IsOK())
	assert.Empty(t, inner.Events())
	assert.Equal(t, []string{"p not equal"}, outer.FailureStrings())
}

func TestAppendWithContextBuildsTheTrail(t *testing.T) {
	inner := NewResult()
	inner.Failuref("p not equal")
	inner.Errorf("cannot read")

	middle := NewResult()
	middle.AppendWithContext(inner, "tally_component_shuffle_payload")
	outer := NewResult()
	outer.AppendWithContextf(middle, "ballot box %s", "bb-1")

	// copies, the sources keep their events untouched
	assert.Len(t, inner.Events(), 2)
	assert.Empty(t, inner.Events()[0].Contexts)
	assert.Equal(t, []string{"tally_component_shuffle_payload"}, middle.Events()[0].Contexts)

	require.Len(t, outer.Events(), 2)
	assert.Equal(t, []string{"p not equal -> tally_component_shuffle_payload -> ballot box bb-1"}, outer.FailureStrings())
	assert.Equal(t, []string{"cannot read -> tally_component_shuffle_payload -> ballot box bb-1"}, outer.ErrorStrings())
}

func TestEventKeepsItsSource(t *testing.T) {
	sentinel := errors.New("sentinel")
	r := NewResult()
	r.Errorf("reading: %w", sentinel)
	assert.ErrorIs(t, r.Errors()[0].Source, sentinel)
}

func TestStatusOf(t *testing.T) {
	r := NewResult()
	assert.Equal(t, FinishedSuccessfully, statusOf(r))
	r.Failuref("f")
	assert.Equal(t, FinishedWithFailures, statusOf(r))
	r.Errorf("e")
	assert.Equal(t, FinishedWithErrors, statusOf(r))
	assert.True(t, FinishedWithErrors.Finished())
	assert.False(t, Running.Finished())
}
