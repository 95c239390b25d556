// Package report turns a finished run into flat data and renders it as
// coloured text, as a standalone HTML page, or into a SQLite archive.
package report

import (
	"time"

	"github.com/thechriswalker/go-evote-verifier/keystore"
	"github.com/thechriswalker/go-evote-verifier/verification"
	"github.com/thechriswalker/go-evote-verifier/version"
)

// Verification is the outcome of one verification.
type Verification struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Category verification.Category `json:"category"`
	Status   string                `json:"status"`
	Errors   []string              `json:"errors"`
	Failures []string              `json:"failures"`
	Duration time.Duration         `json:"duration"`
}

// OK is true when the verification finished without any event.
func (v Verification) OK() bool {
	return v.Status == verification.FinishedSuccessfully.String()
}

// Counts are the totals of a run.
type Counts struct {
	Run          int `json:"run"`
	Excluded     int `json:"excluded"`
	Successful   int `json:"successful"`
	WithErrors   int `json:"withErrors"`
	WithFailures int `json:"withFailures"`
}

// Data is everything a renderer needs.
type Data struct {
	RunID         string                  `json:"runId"`
	Version       string                  `json:"version"`
	Period        verification.Period     `json:"period"`
	Root          string                  `json:"root"`
	Strategy      string                  `json:"strategy"`
	Started       time.Time               `json:"started"`
	Duration      time.Duration           `json:"duration"`
	Verifications []Verification          `json:"verifications"`
	Excluded      []verification.Metadata `json:"excluded"`
	Counts        Counts                  `json:"counts"`
	Fingerprints  []keystore.Fingerprint  `json:"fingerprints"`
}

// OK is true when every verification that ran finished successfully.
func (d *Data) OK() bool {
	return d.Counts.Successful == d.Counts.Run
}

// Build collects the report data of the last run of r.
func Build(r *verification.Runner) *Data {
	suite := r.Suite()
	cfg := r.Config()
	d := &Data{
		RunID:    r.ID().String(),
		Version:  version.Version,
		Period:   suite.Period(),
		Root:     cfg.Root(),
		Strategy: r.Strategy().String(),
		Started:  r.Started(),
		Duration: r.Duration(),
		Excluded: suite.Excluded(),
	}
	if ks := cfg.KeyStore(); ks != nil {
		d.Fingerprints = ks.Fingerprints()
	}
	for _, v := range suite.List() {
		res := v.Result()
		status := v.Status()
		d.Verifications = append(d.Verifications, Verification{
			ID:       v.ID(),
			Name:     v.Name(),
			Category: v.Meta().Category,
			Status:   status.String(),
			Errors:   res.ErrorStrings(),
			Failures: res.FailureStrings(),
			Duration: v.Duration(),
		})
		d.Counts.Run++
		switch status {
		case verification.FinishedSuccessfully:
			d.Counts.Successful++
		case verification.FinishedWithErrors:
			d.Counts.WithErrors++
		case verification.FinishedWithFailures:
			d.Counts.WithFailures++
		}
	}
	d.Counts.Excluded = len(d.Excluded)
	return d
}
