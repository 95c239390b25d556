package report

import (
	"crypto/sha256"
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skratchdot/open-golang/open"
)

//go:embed templates
var templates embed.FS

var reportTemplate = template.Must(template.New("report.html").Funcs(template.FuncMap{
	"ms": func(d time.Duration) int64 { return d.Milliseconds() },
}).ParseFS(templates, "templates/report.html"))

// page wraps the data with the inline script that carries it as JSON. The
// script is allowed by the content security policy through its hash.
type page struct {
	*Data
	script template.JS
	hash   template.HTMLAttr
}

func newPage(d *Data) (*page, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	str := fmt.Sprintf("window.REPORT=%s;", b)
	h := sha256.New()
	h.Write([]byte(str))
	return &page{
		Data:   d,
		script: template.JS(str),
		hash:   template.HTMLAttr("sha256-" + base64.StdEncoding.EncodeToString(h.Sum(nil))),
	}, nil
}

func (p *page) DataScript() template.JS          { return p.script }
func (p *page) DataIntegrity() template.HTMLAttr { return p.hash }

// WriteHTML renders the report as a self-contained HTML page.
func (d *Data) WriteHTML(w io.Writer) error {
	p, err := newPage(d)
	if err != nil {
		return err
	}
	return reportTemplate.Execute(w, p)
}

// SaveHTML writes the HTML report to path and opens it in the default
// browser when asked to.
func (d *Data) SaveHTML(path string, openIt bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create report: %w", err)
	}
	if err := d.WriteHTML(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("report", path).Msg("report written")
	if openIt {
		if err := open.Run(path); err != nil {
			log.Warn().Err(err).Str("report", path).Msg("could not open the report")
		}
	}
	return nil
}
