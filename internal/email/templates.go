package email

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	texttpl "text/template"
)

// CodeVars feeds the verification-code templates.
type CodeVars struct {
	UserName  string
	UserEmail string
	Platform  string
	Username  string
	Code      string
}

type Templates struct {
	CodeHTML *template.Template
	CodeTXT  *texttpl.Template
}

// Cuerpos por defecto, mismos campos que el deployment original.
const defaultCodeHTML = `
<p><strong>Cherrizbox - Social Media Verification Code</strong></p>
<p>User: {{.UserName}} ({{.UserEmail}})</p>
<p>Platform: {{.Platform}}</p>
<p>Username: @{{.Username}}</p>
<p><strong>Verification Code: {{.Code}}</strong></p>
<p>This code was requested by the user for social media verification.</p>
`

const defaultCodeTXT = `Cherrizbox - Social Media Verification Code

User: {{.UserName}} ({{.UserEmail}})
Platform: {{.Platform}}
Username: @{{.Username}}

Verification Code: {{.Code}}

This code was requested by the user for social media verification.
`

// DefaultTemplates parses the built-in bodies. Panics only on a programmer
// error in the constants above, so it is safe at startup.
func DefaultTemplates() *Templates {
	return &Templates{
		CodeHTML: template.Must(template.New("code_html").Parse(defaultCodeHTML)),
		CodeTXT:  texttpl.Must(texttpl.New("code_txt").Parse(defaultCodeTXT)),
	}
}

// LoadTemplates reads verification_code.html / verification_code.txt from dir,
// for deployments that want to re-brand the notification.
func LoadTemplates(dir string) (*Templates, error) {
	read := func(name string) (string, error) {
		b, err := os.ReadFile(filepath.Join(dir, name))
		return string(b), err
	}
	h, err := read("verification_code.html")
	if err != nil {
		return nil, err
	}
	t, err := read("verification_code.txt")
	if err != nil {
		return nil, err
	}

	hT, err := template.New("code_html").Parse(h)
	if err != nil {
		return nil, err
	}
	tT, err := texttpl.New("code_txt").Parse(t)
	if err != nil {
		return nil, err
	}
	return &Templates{CodeHTML: hT, CodeTXT: tT}, nil
}

// Subject embeds the platform name, matching the original notification.
func Subject(platform string) string {
	return fmt.Sprintf("Social Media Verification Code - %s", platform)
}

// Render produces both bodies for the given vars.
func (t *Templates) Render(v CodeVars) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := t.CodeHTML.Execute(&hb, v); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	if err := t.CodeTXT.Execute(&tb, v); err != nil {
		return "", "", fmt.Errorf("render text: %w", err)
	}
	return hb.String(), tb.String(), nil
}
