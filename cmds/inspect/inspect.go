package inspect

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-evote-verifier/checks"
	"github.com/thechriswalker/go-evote-verifier/keystore"
	"github.com/thechriswalker/go-evote-verifier/report"
	"github.com/thechriswalker/go-evote-verifier/verification"
)

// Register the inspect command
func Register(rootCmd *cobra.Command) {
	var period string
	var keystorePath string
	var keystorePassword string
	var resultsDB string

	var cmd = &cobra.Command{
		Use:   "inspect",
		Short: "Show the verification catalogue, trusted certificates and archived runs",
		Run: func(cmd *cobra.Command, args []string) {
			p, err := verification.ParsePeriod(period)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid period")
			}
			meta, err := verification.DefaultMetadata()
			if err != nil {
				log.Fatal().Err(err).Msg("verification catalogue is not valid")
			}
			catalogue(os.Stdout, meta, p)

			if keystorePath != "" {
				ks, err := keystore.Load(keystorePath, keystorePassword)
				if err != nil {
					log.Fatal().Err(err).Str("keystore", keystorePath).Msg("cannot load keystore")
				}
				fingerprints(os.Stdout, ks)
			}
			if resultsDB != "" {
				a, err := report.OpenArchive(resultsDB)
				if err != nil {
					log.Fatal().Err(err).Str("db", resultsDB).Msg("cannot open results database")
				}
				defer a.Close()
				if err := runs(os.Stdout, a); err != nil {
					log.Fatal().Err(err).Str("db", resultsDB).Msg("cannot read results database")
				}
			}
		},
	}

	cmd.Flags().StringVar(&period, "period", "setup", "The period of the catalogue to show: setup or tally")
	cmd.Flags().StringVar(&keystorePath, "keystore", "", "Show the fingerprints of this trust store")
	cmd.Flags().StringVar(&keystorePassword, "keystore-password", os.Getenv("VERIFIER_KEYSTORE_PASSWORD"), "Password of the PKCS#12 trust store")
	cmd.Flags().StringVar(&resultsDB, "results-db", "", "List the runs archived in this SQLite database")

	rootCmd.AddCommand(cmd)
}

func catalogue(w io.Writer, meta *verification.MetadataList, period verification.Period) {
	funcs := checks.Funcs(period)
	color.Fprintf(w, "<info>Verifications of the %s period</>\n", period)
	for _, md := range meta.ForPeriod(period) {
		state := "<suc>implemented</>"
		if funcs[md.ID] == nil {
			state = "<comment>not implemented</>"
		}
		color.Fprintf(w, "%s\t%-14s %s (%s)\n", md.ID, md.Category, md.Name, state)
	}
}

func fingerprints(w io.Writer, ks *keystore.KeyStore) {
	color.Fprintf(w, "\n<info>Trusted certificates</>\n")
	for _, fp := range ks.Fingerprints() {
		fmt.Fprintf(w, "%-22s %s\n", fp.Authority, fp.SHA256)
	}
}

func runs(w io.Writer, a *report.Archive) error {
	list, err := a.Runs()
	if err != nil {
		return err
	}
	color.Fprintf(w, "\n<info>Archived runs</>\n")
	for _, r := range list {
		fmt.Fprintf(w, "%s %-5s %s %s successful=%d errors=%d failures=%d excluded=%d\n",
			r.ID, r.Period, r.Started.Format("2006-01-02 15:04:05"), r.Root,
			r.Successful, r.WithErrors, r.WithFailures, r.Excluded)
	}
	return nil
}
