// Package templates renders notification messages.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed *.html *.txt *.tmpl
var templateFS embed.FS

// Renderer renders push messages and emails from the embedded templates.
type Renderer struct {
	messages      *texttemplate.Template
	htmlTemplates *htmltemplate.Template
	textTemplates *texttemplate.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	messages, err := texttemplate.New("messages").Option("missingkey=zero").ParseFS(templateFS, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse message templates: %w", err)
	}

	htmlTmpl, err := htmltemplate.ParseFS(templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML templates: %w", err)
	}

	textTmpl, err := texttemplate.ParseFS(templateFS, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}

	return &Renderer{
		messages:      messages,
		htmlTemplates: htmlTmpl,
		textTemplates: textTmpl,
	}, nil
}

// HasEmail reports whether kind has an email template.
func (r *Renderer) HasEmail(kind string) bool {
	return r.htmlTemplates.Lookup(kind+".html") != nil
}

// RenderPush renders the title and body of a push message.
func (r *Renderer) RenderPush(kind string, data map[string]interface{}) (title, body string, err error) {
	if title, err = r.message(kind+".title", data); err != nil {
		return "", "", err
	}
	if body, err = r.message(kind+".body", data); err != nil {
		return "", "", err
	}
	return title, body, nil
}

// RenderEmail renders the subject and both bodies of an email.
func (r *Renderer) RenderEmail(kind string, data map[string]interface{}) (subject, html, text string, err error) {
	if subject, err = r.message(kind+".subject", data); err != nil {
		return "", "", "", err
	}

	var htmlBuf bytes.Buffer
	if err := r.htmlTemplates.ExecuteTemplate(&htmlBuf, kind+".html", data); err != nil {
		return "", "", "", fmt.Errorf("failed to render HTML template %s: %w", kind, err)
	}

	var textBuf bytes.Buffer
	if err := r.textTemplates.ExecuteTemplate(&textBuf, kind+".txt", data); err != nil {
		// Fall back to empty text if no text template exists
		return subject, htmlBuf.String(), "", nil
	}

	return subject, htmlBuf.String(), textBuf.String(), nil
}

func (r *Renderer) message(name string, data map[string]interface{}) (string, error) {
	if r.messages.Lookup(name) == nil {
		return "", fmt.Errorf("unknown message template %s", name)
	}
	var buf bytes.Buffer
	if err := r.messages.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render message template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
