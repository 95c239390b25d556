package report

import (
	"io"

	"github.com/gookit/color"
)

var statusTags = map[string]string{
	"success":  "<suc>OK</>",
	"errors":   "<error>ERROR</>",
	"failures": "<warn>FAILED</>",
}

// WriteText prints one line per verification followed by its events and
// the totals of the run.
func (d *Data) WriteText(w io.Writer) {
	color.Fprintf(w, "<info>Verification of the %s period</> (run %s, verifier %s)\n\n", d.Period, d.RunID, d.Version)
	for _, v := range d.Verifications {
		tag, ok := statusTags[v.Status]
		if !ok {
			tag = v.Status
		}
		color.Fprintf(w, "%s\t%s %s [%s]\n", tag, v.ID, v.Name, v.Category)
		for _, e := range v.Errors {
			color.Fprintf(w, "\t<error>error</>   %s\n", e)
		}
		for _, f := range v.Failures {
			color.Fprintf(w, "\t<warn>failure</> %s\n", f)
		}
	}
	for _, md := range d.Excluded {
		color.Fprintf(w, "<comment>SKIPPED</>\t%s %s\n", md.ID, md.Name)
	}
	c := d.Counts
	color.Fprintf(w, "\nVerifications: %d, successful: <suc>%d</>, with errors: <error>%d</>, with failures: <warn>%d</>, excluded: %d\n",
		c.Run, c.Successful, c.WithErrors, c.WithFailures, c.Excluded)
	for _, fp := range d.Fingerprints {
		color.Fprintf(w, "<comment>%s</>\t%s\n", fp.Authority, fp.SHA256)
	}
}
