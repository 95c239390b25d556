package inspect

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
	"github.com/thechriswalker/go-evote-verifier/keystore"
	"github.com/thechriswalker/go-evote-verifier/report"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func TestCatalogue(t *testing.T) {
	meta, err := verification.DefaultMetadata()
	require.NoError(t, err)
	var buf bytes.Buffer
	catalogue(&buf, meta, verification.Tally)
	out := buf.String()
	assert.Contains(t, out, "06.01")
	assert.Contains(t, out, "VerifyTallyComponentECH0110")
	assert.Contains(t, out, "not implemented")
	assert.NotContains(t, out, "01.01")
}

func TestFingerprints(t *testing.T) {
	var buf bytes.Buffer
	fingerprints(&buf, fixtures.KeyStore())
	out := buf.String()
	assert.Contains(t, out, string(keystore.SdmConfig))
	assert.Contains(t, out, string(keystore.ControlComponent(4)))
}

func TestRuns(t *testing.T) {
	a, err := report.OpenArchive(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Store(&report.Data{
		RunID:   "run-1",
		Period:  verification.Setup,
		Root:    "/elections/ee-0001",
		Started: time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
		Counts:  report.Counts{Run: 23, Successful: 23},
	}))
	var buf bytes.Buffer
	require.NoError(t, runs(&buf, a))
	assert.Contains(t, buf.String(), "run-1 setup")
	assert.Contains(t, buf.String(), "successful=23 errors=0")
}
