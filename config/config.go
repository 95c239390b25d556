// Package config holds the settings of one verifier run. It is built once
// by the command and passed to every verification.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-evote-verifier/keystore"
)

type VerifierConfig struct {
	root             string
	period           string
	keystorePath     string
	keystorePassword string
	keys             *keystore.KeyStore
	exclusions       []string
	parallel         bool
	workers          int
	reportPath       string
	openReport       bool
	resultsDB        string
	ech0222          bool
}

type Option interface {
	apply(*VerifierConfig)
}

type optionFunc func(*VerifierConfig)

func (f optionFunc) apply(c *VerifierConfig) {
	f(c)
}

// WithRoot sets the directory holding the setup and tally folders.
func WithRoot(dir string) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.root = dir
	})
}

func WithPeriod(period string) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.period = period
	})
}

// WithKeyStorePath points at a PKCS#12 trust store or a directory of PEM
// certificates. It is loaded by Check.
func WithKeyStorePath(path, password string) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.keystorePath = path
		c.keystorePassword = password
	})
}

// WithKeyStore uses an already loaded keystore.
func WithKeyStore(ks *keystore.KeyStore) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.keys = ks
	})
}

func WithExclusions(ids []string) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.exclusions = append(c.exclusions, ids...)
	})
}

// WithParallel runs the verifications on up to workers goroutines. Zero
// workers means one per CPU.
func WithParallel(workers int) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.parallel = true
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		c.workers = workers
	})
}

// WithReport writes the HTML report to path, opening it afterwards when
// open is set.
func WithReport(path string, open bool) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.reportPath = path
		c.openReport = open
	})
}

// WithResultsDB archives the run in the SQLite database at path.
func WithResultsDB(path string) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.resultsDB = path
	})
}

// WithECH0222 toggles the comparison of the tally with the eCH-0222 file.
func WithECH0222(enabled bool) Option {
	return optionFunc(func(c *VerifierConfig) {
		c.ech0222 = enabled
	})
}

func New(options ...Option) *VerifierConfig {
	c := &VerifierConfig{
		root:    ".",
		period:  "setup",
		workers: 1,
		ech0222: true,
	}
	for _, o := range options {
		o.apply(c)
	}
	return c
}

func (c *VerifierConfig) Root() string                 { return c.root }
func (c *VerifierConfig) Period() string               { return c.period }
func (c *VerifierConfig) KeyStore() *keystore.KeyStore { return c.keys }
func (c *VerifierConfig) Exclusions() []string         { return c.exclusions }
func (c *VerifierConfig) Parallel() bool               { return c.parallel }
func (c *VerifierConfig) Workers() int                 { return c.workers }
func (c *VerifierConfig) ReportPath() string           { return c.reportPath }
func (c *VerifierConfig) OpenReport() bool             { return c.openReport }
func (c *VerifierConfig) ResultsDB() string            { return c.resultsDB }
func (c *VerifierConfig) CheckECH0222() bool           { return c.ech0222 }

// Check verifies the preconditions of a run: the root is a directory and
// the keystore can be loaded. Any error here must stop the run before the
// suite is built.
func (c *VerifierConfig) Check() error {
	fi, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("cannot open election directory: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("election directory %s is not a directory", c.root)
	}
	if c.keys != nil {
		return nil
	}
	if c.keystorePath == "" {
		return fmt.Errorf("no keystore given")
	}
	ks, err := keystore.Load(c.keystorePath, c.keystorePassword)
	if err != nil {
		return err
	}
	log.Debug().Str("keystore", c.keystorePath).Int("certificates", len(ks.Fingerprints())).Msg("loaded keystore")
	c.keys = ks
	return nil
}
