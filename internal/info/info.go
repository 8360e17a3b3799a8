// Package info renders the pages the proxy serves itself: the plain-text
// usage page for requests without a target and the forbidden page for
// requests rejected by policy.
package info

import (
	"bytes"
	htmltemplate "html/template"
	"net/http"
	"text/template"

	"cors-anywhere-go/internal/config"
	"cors-anywhere-go/internal/header"
	"cors-anywhere-go/internal/model"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
)

// Continuation lines of the limits block line up under the first value.
const limitsIndent = "        "

const infoTemplate = `{{.Name}}
{{with .SourceURL}}
Source:
{{.}}
{{end}}{{with .OriginalURL}}
Original:
{{.}}
{{end}}
Usage:
{{.BaseURL}}/?uri
{{with .DonateURL}}
Donate:
{{.}}
{{end}}{{if .Limits}}
{{range $i, $l := .Limits}}{{if $i}}` + limitsIndent + `{{else}}Limits: {{end}}{{$l}}
{{end}}{{end}}
{{with .Origin}}Origin: {{.}}
{{end}}{{with .Meta.ClientIP}}IP: {{.}}
{{end}}{{with .Meta.Country}}Country: {{.}}
{{end}}{{with .Meta.Datacenter}}Datacenter: {{.}}
{{end}}{{with .Overrides}}
x-cors-headers: {{.}}
{{end}}`

const forbiddenTemplate = `<!DOCTYPE html>
<html>
<head><title>Forbidden</title></head>
<body>
<p>Create your own CORS proxy</p>
{{with .SourceURL}}<p><a href="{{.}}">{{.}}</a></p>
{{end}}{{with .DonateURL}}<p>Donate</p>
<p><a href="{{.}}">{{.}}</a></p>
{{end}}</body>
</html>
`

// Details is the per-request data shown on the info page.
type Details struct {
	// BaseURL is the scheme and host the proxy was reached on.
	BaseURL   string
	Origin    string
	HasOrigin bool
	Meta      model.ConnMeta
	// Overrides are the parsed x-cors-headers, or nil.
	Overrides *header.Map
}

// Responder renders info and forbidden pages. Safe for concurrent use.
type Responder struct {
	cfg       config.InfoConfig
	info      *template.Template
	forbidden []byte
}

// NewResponder parses the page templates. The forbidden page holds no
// per-request data and is rendered once.
func NewResponder(cfg *config.Config) (*Responder, error) {
	info, err := template.New("info").Parse(infoTemplate)
	if err != nil {
		return nil, err
	}

	forbidden, err := htmltemplate.New("forbidden").Parse(forbiddenTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := forbidden.Execute(&buf, cfg.Info); err != nil {
		return nil, err
	}

	return &Responder{
		cfg:       cfg.Info,
		info:      info,
		forbidden: buf.Bytes(),
	}, nil
}

type infoData struct {
	config.InfoConfig
	BaseURL   string
	Origin    string
	Meta      model.ConnMeta
	Overrides string
}

// Render builds the 200 plain-text info page for d. Fields that are absent
// are left out rather than printed empty.
func (r *Responder) Render(d Details) *model.ProxyResponse {
	data := infoData{
		InfoConfig: r.cfg,
		BaseURL:    d.BaseURL,
		Meta:       d.Meta,
	}
	if d.HasOrigin {
		data.Origin = d.Origin
	}
	if d.Overrides != nil {
		data.Overrides = string(d.Overrides.JSON())
	}

	var buf bytes.Buffer
	// Every field is a string or []string, so execution only fails on a
	// broken writer.
	_ = r.info.Execute(&buf, data)

	h := header.New()
	h.Set("Content-Type", contentTypeText)
	return &model.ProxyResponse{
		StatusCode: http.StatusOK,
		StatusText: http.StatusText(http.StatusOK),
		Header:     h,
		Body:       buf.Bytes(),
	}
}

// Forbidden builds the 403 page. Nothing from the request is included.
func (r *Responder) Forbidden() *model.ProxyResponse {
	h := header.New()
	h.Set("Content-Type", contentTypeHTML)
	return &model.ProxyResponse{
		StatusCode: http.StatusForbidden,
		StatusText: http.StatusText(http.StatusForbidden),
		Header:     h,
		Body:       append([]byte(nil), r.forbidden...),
	}
}
