package handoff

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"
)

// placeholder matches the dashboard's {{name}} style tokens.
var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Renderer renders dashboard message templates.
type Renderer struct{}

// Render fills {{key}} placeholders from data. Unknown keys are an error.
func (Renderer) Render(name, text string, data map[string]string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("handoff: template text required")
	}
	t, err := template.New(name).Option("missingkey=error").Parse(placeholder.ReplaceAllString(text, "{{.$1}}"))
	if err != nil {
		return "", fmt.Errorf("handoff: parse: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("handoff: execute: %w", err)
	}
	return buf.String(), nil
}
