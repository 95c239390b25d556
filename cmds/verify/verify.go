package verify

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-evote-verifier/checks"
	"github.com/thechriswalker/go-evote-verifier/config"
	"github.com/thechriswalker/go-evote-verifier/directory"
	"github.com/thechriswalker/go-evote-verifier/report"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

// Register the verify command
func Register(rootCmd *cobra.Command) {
	var root string
	var period string
	var keystorePath string
	var keystorePassword string
	var exclusions []string
	var parallel bool
	var workers int
	var reportPath string
	var openReport bool
	var resultsDB string
	var skipECH0222 bool

	var cmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify an election event",
		Long:  "Run every verification of the setup or tally period over an election event directory and report the findings",
		Run: func(cmd *cobra.Command, args []string) {
			options := []config.Option{
				config.WithRoot(root),
				config.WithPeriod(period),
				config.WithKeyStorePath(keystorePath, keystorePassword),
				config.WithExclusions(exclusions),
				config.WithReport(reportPath, openReport),
				config.WithResultsDB(resultsDB),
				config.WithECH0222(!skipECH0222),
			}
			if parallel {
				options = append(options, config.WithParallel(workers))
			}
			cfg := config.New(options...)
			if err := cfg.Check(); err != nil {
				log.Fatal().Err(err).Msg("cannot start the verification")
			}
			dir, err := directory.Open(cfg.Root())
			if err != nil {
				log.Fatal().Err(err).Str("dir", cfg.Root()).Msg("cannot open the election directory")
			}
			d, err := run(dir, cfg, os.Stdout)
			if err != nil {
				log.Fatal().Err(err).Msg("verification did not complete")
			}
			if !d.OK() {
				log.Error().
					Int("errors", d.Counts.WithErrors).
					Int("failures", d.Counts.WithFailures).
					Msg("the election event did not verify")
				os.Exit(2)
			}
		},
	}

	// as with the other commands, all configuration is done via command line arguments.
	cmd.Flags().StringVar(&root, "dir", ".", "The election event directory, holding the setup and tally folders")
	cmd.Flags().StringVar(&period, "period", "setup", "The period to verify: setup or tally")
	cmd.Flags().StringVar(&keystorePath, "keystore", "", "A PKCS#12 trust store or a directory of <authority>.pem certificates")
	cmd.Flags().StringVar(&keystorePassword, "keystore-password", os.Getenv("VERIFIER_KEYSTORE_PASSWORD"), "Password of the PKCS#12 trust store (defaults to $VERIFIER_KEYSTORE_PASSWORD)")
	cmd.Flags().StringSliceVar(&exclusions, "exclude", []string{}, "Verification ids to leave out, e.g. 07.06,07.07")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Run the verifications concurrently")
	cmd.Flags().IntVar(&workers, "workers", 0, "Maximum concurrent verifications with --parallel (0 means one per CPU)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write an HTML report to this path")
	cmd.Flags().BoolVar(&openReport, "open", false, "Open the HTML report in the system default web browser")
	cmd.Flags().StringVar(&resultsDB, "results-db", "", "Archive the run in this SQLite database")
	cmd.Flags().BoolVar(&skipECH0222, "skip-ech0222", false, "Do not compare the tally with the eCH-0222 export")

	rootCmd.AddCommand(cmd)
}

// run executes the suite of the configured period and writes the text
// report to out, plus the HTML report and the archive when configured.
func run(dir directory.Directory, cfg *config.VerifierConfig, out io.Writer) (*report.Data, error) {
	r, err := checks.NewRunner(dir, cfg,
		verification.WithProgress(true),
		verification.WithHooks(verification.Hooks{
			AfterVerification: func(v *verification.Verification) {
				if !v.Result().IsOK() {
					log.Warn().Str("verification", v.ID()).Str("status", v.Status().String()).Msg(v.Name())
				}
			},
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := r.Run(); err != nil {
		return nil, err
	}
	d := report.Build(r)
	d.WriteText(out)

	if path := cfg.ReportPath(); path != "" {
		if err := d.SaveHTML(path, cfg.OpenReport()); err != nil {
			return d, err
		}
	}
	if path := cfg.ResultsDB(); path != "" {
		a, err := report.OpenArchive(path)
		if err != nil {
			return d, fmt.Errorf("cannot open results database: %w", err)
		}
		defer a.Close()
		if err := a.Store(d); err != nil {
			return d, err
		}
		log.Info().Str("run", d.RunID).Str("db", path).Msg("run archived")
	}
	return d, nil
}
