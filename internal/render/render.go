// Package render implements placeholder extraction and substitution for
// message templates. Rendering is a pure string transformation: every
// {{name}} token with a resolved value is replaced, everything else is left
// verbatim, so re-rendering an already-rendered string is a no-op.
package render

import "regexp"

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// ExtractVariables returns the unique placeholder names found across the
// given strings, in order of first appearance.
func ExtractVariables(parts ...string) []string {
	seen := map[string]bool{}
	var names []string
	for _, part := range parts {
		for _, m := range placeholderRe.FindAllStringSubmatch(part, -1) {
			name := m[1]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Render replaces every {{name}} occurrence that has a value in the mapping.
// Names without a value keep the literal token, so unresolved variables stay
// visible in previews. Malformed or unterminated braces are not placeholders
// and pass through untouched.
func Render(s string, values map[string]string) string {
	if len(values) == 0 {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(token string) string {
		name := placeholderRe.FindStringSubmatch(token)[1]
		if value, ok := values[name]; ok {
			return value
		}
		return token
	})
}
