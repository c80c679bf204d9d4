package templates

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Vars maps placeholder names (without braces) to values.
type Vars map[string]string

// Render substitutes every {{key}} in the template content in a single
// pass, so values are never themselves expanded. For json-format templates
// values are JSON string-escaped and the placeholder must sit inside a
// quoted string. Unknown placeholders are left untouched.
func Render(tmpl *Template, vars Vars) string {
	pairs := make([]string, 0, 2*len(vars))
	for key, val := range vars {
		if tmpl.Format == "json" {
			val = escapeJSON(val)
		}
		pairs = append(pairs, "{{"+key+"}}", val)
	}
	result := strings.NewReplacer(pairs...).Replace(tmpl.Content)
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// escapeJSON returns s encoded as a JSON string body, without quotes.
func escapeJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}
