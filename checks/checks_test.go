package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func TestEveryIdIsRegistered(t *testing.T) {
	meta, err := verification.DefaultMetadata()
	require.NoError(t, err)
	for _, period := range []verification.Period{verification.Setup, verification.Tally} {
		funcs := Funcs(period)
		list := meta.ForPeriod(period)
		assert.Len(t, funcs, len(list), "period %s", period)
		for _, md := range list {
			_, ok := funcs[md.ID]
			assert.True(t, ok, "%s %s is not registered", md.ID, md.Name)
		}
	}
}

func TestUnknownPeriod(t *testing.T) {
	_, err := NewRunner(fixtures.NewElection().Directory(), config.New(config.WithPeriod("count")))
	assert.Error(t, err)
}

func TestRunHonestElection(t *testing.T) {
	dir := fixtures.NewElection().Directory()
	unimplemented := map[string]bool{"07.06": true, "07.07": true}
	for period, n := range map[string]int{"setup": 23, "tally": 22} {
		t.Run(period, func(t *testing.T) {
			cfg := config.New(
				config.WithPeriod(period),
				config.WithKeyStore(fixtures.KeyStore()),
				config.WithParallel(4),
			)
			r, err := NewRunner(dir, cfg)
			require.NoError(t, err)
			require.NoError(t, r.Run())
			assert.Equal(t, n, r.Suite().Len())
			for _, v := range r.Suite().List() {
				if unimplemented[v.ID()] {
					assert.Equal(t, verification.FinishedWithErrors, v.Status(), v.ID())
					assert.ErrorIs(t, v.Result().Errors()[0].Source, verification.ErrNotImplemented)
					continue
				}
				assert.Equal(t, verification.FinishedSuccessfully, v.Status(), "%s: %v %v",
					v.ID(), v.Result().ErrorStrings(), v.Result().FailureStrings())
			}
		})
	}
}

func TestExclusions(t *testing.T) {
	cfg := config.New(
		config.WithPeriod("tally"),
		config.WithKeyStore(fixtures.KeyStore()),
		config.WithExclusions([]string{"07.06", "07.07"}),
	)
	r, err := NewRunner(fixtures.NewElection().Directory(), cfg)
	require.NoError(t, err)
	require.NoError(t, r.Run())
	assert.Equal(t, 20, r.Suite().Len())
	assert.Equal(t, 2, r.Suite().LenExcluded())
	for _, v := range r.Suite().List() {
		assert.True(t, v.Result().IsOK(), v.ID())
	}
}
