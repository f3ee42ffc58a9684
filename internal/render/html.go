package render

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/metrics"
)

// HTMLRenderer produces a self-contained HTML artifact from a View. It is the
// base engine; the PDF adapter prints its output.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the built-in document template.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("document").Funcs(template.FuncMap{
		"date": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				return t.Format("2 January 2006")
			case *time.Time:
				if t == nil {
					return ""
				}
				return t.Format("2 January 2006")
			}
			return ""
		},
		"upper": strings.ToUpper,
	}).Parse(documentTemplate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse document template")
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(_ context.Context, view View) (Artifact, error) {
	start := time.Now()

	data, err := buildTemplateData(view)
	if err != nil {
		metrics.RenderFailures.WithLabelValues("html").Inc()
		return Artifact{}, err
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		metrics.RenderFailures.WithLabelValues("html").Inc()
		return Artifact{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "execute document template")
	}

	metrics.RenderDuration.WithLabelValues("html", view.Class.String()).Observe(time.Since(start).Seconds())
	return Artifact{ContentType: "text/html; charset=utf-8", Data: buf.Bytes()}, nil
}

type templateData struct {
	View
	CertificateSections []certificateSection
}

type certificateSection struct {
	Key   string
	Value string
}

// buildTemplateData flattens certificate content into stable, sorted
// key/value rows so repeated renders emit identical markup.
func buildTemplateData(view View) (templateData, error) {
	data := templateData{View: view}
	if len(view.CertificateContent) == 0 {
		return data, nil
	}

	var content map[string]json.RawMessage
	if err := json.Unmarshal(view.CertificateContent, &content); err != nil {
		return templateData{}, pkgerrors.Wrap(pkgerrors.CodeLockedPayloadCorrupt, err, "certificate content unreadable")
	}

	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data.CertificateSections = append(data.CertificateSections, certificateSection{
			Key:   key,
			Value: string(content[key]),
		})
	}
	return data, nil
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Reference}}</title></head>
<body>
<header>
  <h1>{{upper .Class.String}} {{.Reference}}</h1>
  <section class="business">
    <strong>{{.Business.Name}}</strong><br>
    {{.Business.Address.Line1}} {{.Business.Address.PostalCode}}<br>
    {{if .Business.RegistrationNumbers}}Reg: {{.Business.RegistrationNumbers}}<br>{{end}}
    {{if .Business.Email}}{{.Business.Email}}{{end}} {{if .Business.Phone}}{{.Business.Phone}}{{end}}
  </section>
  <section class="customer">
    <strong>{{.Customer.Name}}</strong><br>
    {{.Customer.Address.Line1}} {{.Customer.Address.PostalCode}}
  </section>
  <p>Issued {{date .IssuedAt}}{{if .ExpiryOrDueAt}} &middot; Due {{date .ExpiryOrDueAt}}{{end}}</p>
</header>
{{if .Lines}}
<table class="lines">
  <tr><th>Description</th><th>Qty</th><th>Unit</th><th>Tax %</th><th>Total</th></tr>
  {{range .Lines}}
  <tr><td>{{.Description}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.TaxPercent}}</td><td>{{.LineTotal}}</td></tr>
  {{end}}
</table>
<table class="totals">
  <tr><td>Subtotal</td><td>{{.Totals.Subtotal}}</td></tr>
  <tr><td>Discount</td><td>{{.Totals.DiscountAmount}}</td></tr>
  <tr><td>Tax</td><td>{{.Totals.TaxTotal}}</td></tr>
  <tr><td>Total</td><td>{{.Totals.GrandTotal}}</td></tr>
  {{if not .Totals.PartialPayment.IsZero}}<tr><td>Paid</td><td>{{.Totals.PartialPayment}}</td></tr>{{end}}
  <tr><td>Balance due</td><td>{{.Totals.BalanceDue}}</td></tr>
</table>
{{end}}
{{if .CertificateSections}}
<section class="certificate">
  {{range .CertificateSections}}
  <div class="field"><span class="key">{{.Key}}</span><span class="value">{{.Value}}</span></div>
  {{end}}
  {{if .Preparer}}<p>Prepared by {{.Preparer.DisplayName}}{{if .Preparer.LicenseNumbers}} ({{.Preparer.LicenseNumbers}}){{end}}</p>{{end}}
</section>
{{end}}
{{if .Notes}}<footer><p>{{.Notes}}</p></footer>{{end}}
{{if .Business.Terms}}<footer class="terms"><p>{{.Business.Terms}}</p></footer>{{end}}
</body>
</html>`
