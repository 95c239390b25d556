package main

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-evote-verifier/cmds/inspect"
	"github.com/thechriswalker/go-evote-verifier/cmds/verify"
	"github.com/thechriswalker/go-evote-verifier/version"
)

func preamble(cmd *cobra.Command, args []string) {
	// preamble dump some info
	log.Info().
		Str("version", version.Version).
		Msg("E-Voting Verifier")

	log.Debug().
		Str("commit", version.ShortCommit()).
		Str("built", version.BuildDate).
		Str("arch", runtime.GOARCH).
		Str("os", runtime.GOOS).
		Msg("Build Info")
}

const timeFormatMs = "2006-01-02T15:04:05.000Z07:00"
const timeFormatLocal = "2006-01-02 15:04:05.000"

func main() {
	// configure the logger.
	// logs go to stderr, stdout is kept for the report.
	zerolog.TimeFieldFormat = timeFormatMs
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
		cw.Out = os.Stderr
		cw.TimeFormat = timeFormatLocal
		cw.NoColor = true
	}))

	// initialise the cobra framework for the command.
	var rootCmd = &cobra.Command{
		Use:              "verifier",
		Short:            "Independent verifier of e-voting election events",
		Version:          version.Version,
		PersistentPreRun: preamble,
	}

	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// commands:
	//
	// - verify: run the setup or tally verifications over an election event directory,
	//			print the findings and optionally write an HTML report and archive the run.
	// - inspect: show the verification catalogue, the trusted certificates and archived runs.

	verify.Register(rootCmd)
	inspect.Register(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("An Error Occured")
		os.Exit(1)
	}
}
