package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/keystore"
)

func TestDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, ".", c.Root())
	assert.Equal(t, "setup", c.Period())
	assert.False(t, c.Parallel())
	assert.Equal(t, 1, c.Workers())
	assert.True(t, c.CheckECH0222())
	assert.Nil(t, c.KeyStore())
}

func TestOptions(t *testing.T) {
	c := New(
		WithRoot("/data"),
		WithPeriod("tally"),
		WithExclusions([]string{"01.01"}),
		WithExclusions([]string{"02.01"}),
		WithParallel(0),
		WithReport("out.html", true),
		WithResultsDB("runs.db"),
		WithECH0222(false),
	)
	assert.Equal(t, "/data", c.Root())
	assert.Equal(t, "tally", c.Period())
	assert.Equal(t, []string{"01.01", "02.01"}, c.Exclusions())
	assert.True(t, c.Parallel())
	assert.Equal(t, runtime.NumCPU(), c.Workers())
	assert.Equal(t, "out.html", c.ReportPath())
	assert.True(t, c.OpenReport())
	assert.Equal(t, "runs.db", c.ResultsDB())
	assert.False(t, c.CheckECH0222())
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()

	err := New(WithRoot(filepath.Join(dir, "missing"))).Check()
	assert.Error(t, err)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	err = New(WithRoot(file)).Check()
	assert.Error(t, err)

	err = New(WithRoot(dir)).Check()
	assert.EqualError(t, err, "no keystore given")

	ks := keystore.New(nil)
	c := New(WithRoot(dir), WithKeyStore(ks))
	require.NoError(t, c.Check())
	assert.Same(t, ks, c.KeyStore())

	keys := filepath.Join(dir, "keys")
	require.NoError(t, os.Mkdir(keys, 0o755))
	c = New(WithRoot(dir), WithKeyStorePath(keys, ""))
	require.NoError(t, c.Check())
	assert.NotNil(t, c.KeyStore())
	assert.Empty(t, c.KeyStore().Fingerprints())
}
