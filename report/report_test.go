package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-evote-verifier/checks"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/internal/fixtures"
	"github.com/thechriswalker/go-evote-verifier/report"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

func sample() *report.Data {
	return &report.Data{
		RunID:    "c0ffee",
		Version:  "test",
		Period:   verification.Tally,
		Root:     "/elections/ee-0001",
		Strategy: "sequential",
		Started:  time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
		Duration: 1500 * time.Millisecond,
		Verifications: []report.Verification{
			{ID: "06.01", Name: "VerifyTallyCompleteness", Category: verification.Completeness, Status: "success"},
			{ID: "07.06", Name: "VerifySignatureTallyComponentECH0110", Category: verification.Authenticity, Status: "errors",
				Errors: []string{"verification not implemented"}},
			{ID: "08.01", Name: "VerifyEncryptionGroupConsistency", Category: verification.Consistency, Status: "failures",
				Failures: []string{"p not equal: <b>0x17</b> != 0x2f -> ballot box bb-0001", "g not equal: 0x4 != 0x9"}},
		},
		Excluded: []verification.Metadata{{ID: "07.07", Name: "VerifySignatureTallyComponentECH0222", Category: verification.Authenticity, Period: verification.Tally}},
		Counts:   report.Counts{Run: 3, Successful: 1, WithErrors: 1, WithFailures: 1, Excluded: 1},
	}
}

func TestBuildFromRunner(t *testing.T) {
	cfg := config.New(
		config.WithRoot("/elections/ee-0001"),
		config.WithPeriod("tally"),
		config.WithKeyStore(fixtures.KeyStore()),
		config.WithExclusions([]string{"07.07"}),
	)
	r, err := checks.NewRunner(fixtures.NewElection().Directory(), cfg)
	require.NoError(t, err)
	require.NoError(t, r.Run())

	d := report.Build(r)
	assert.Equal(t, r.ID().String(), d.RunID)
	assert.Equal(t, verification.Tally, d.Period)
	assert.Equal(t, "/elections/ee-0001", d.Root)
	assert.Equal(t, report.Counts{Run: 21, Successful: 20, WithErrors: 1, Excluded: 1}, d.Counts)
	assert.False(t, d.OK())
	assert.Len(t, d.Fingerprints, len(fixtures.Authorities()))
	require.Len(t, d.Verifications, 21)
	assert.Equal(t, "06.01", d.Verifications[0].ID)
	assert.True(t, d.Verifications[0].OK())
	for _, v := range d.Verifications {
		if v.ID == "07.06" {
			assert.Equal(t, []string{"verification not implemented"}, v.Errors)
		}
	}
	assert.Equal(t, "07.07", d.Excluded[0].ID)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	sample().WriteText(&buf)
	out := buf.String()
	assert.Contains(t, out, "06.01 VerifyTallyCompleteness [completeness]")
	assert.Contains(t, out, "verification not implemented")
	assert.Contains(t, out, "g not equal: 0x4 != 0x9")
	assert.Contains(t, out, "07.07 VerifySignatureTallyComponentECH0222")
	assert.Contains(t, out, "Verifications: 3")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().WriteHTML(&buf))
	out := buf.String()
	assert.Contains(t, out, "<title>Verifier • tally c0ffee</title>")
	assert.Contains(t, out, "window.REPORT=")
	assert.Contains(t, out, "sha256-")
	assert.Contains(t, out, "VerifyEncryptionGroupConsistency")
	assert.Contains(t, out, "1500ms")
	assert.NotContains(t, out, "<b>0x17</b>")
	assert.Contains(t, out, "&lt;b&gt;0x17&lt;/b&gt;")
}

func TestSaveHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, sample().SaveHTML(path, false))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "VerifyTallyCompleteness")

	assert.Error(t, sample().SaveHTML(filepath.Join(t.TempDir(), "missing", "report.html"), false))
}

func TestArchive(t *testing.T) {
	a, err := report.OpenArchive(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer a.Close()

	d := sample()
	require.NoError(t, a.Store(d))

	runs, err := a.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "c0ffee", runs[0].ID)
	assert.Equal(t, "tally", runs[0].Period)
	assert.Equal(t, 1, runs[0].WithFailures)
	assert.Equal(t, 1, runs[0].Excluded)
	assert.True(t, d.Started.Equal(runs[0].Started))
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)

	events, err := a.Events("c0ffee")
	require.NoError(t, err)
	assert.Equal(t, []report.ArchivedEvent{
		{VerificationID: "07.06", Kind: "error", Message: "verification not implemented"},
		{VerificationID: "08.01", Kind: "failure", Message: "p not equal: <b>0x17</b> != 0x2f -> ballot box bb-0001"},
		{VerificationID: "08.01", Kind: "failure", Message: "g not equal: 0x4 != 0x9"},
	}, events)

	// the run id is the key, a second store of the same run is rejected
	// and leaves nothing behind
	assert.Error(t, a.Store(d))
	events, err = a.Events("c0ffee")
	require.NoError(t, err)
	assert.Len(t, events, 3)

	_, err = a.Run("missing")
	assert.ErrorIs(t, err, report.ErrRunMissing)
}

func TestArchiveReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	a, err := report.OpenArchive(path)
	require.NoError(t, err)
	require.NoError(t, a.Store(sample()))
	require.NoError(t, a.Close())

	a, err = report.OpenArchive(path)
	require.NoError(t, err)
	defer a.Close()
	r, err := a.Run("c0ffee")
	require.NoError(t, err)
	assert.Equal(t, "/elections/ee-0001", r.Root)
}
