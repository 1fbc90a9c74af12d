package enrich

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedResponse marks inference output that still is not JSON after
// both repair passes. The service downgrades to the heuristic on this error.
var ErrMalformedResponse = eris.New("enrich: malformed inference response")

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_-]*)\s*:`)
)

// quote replacements the models are fond of.
var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left curly double
	"”", `"`, // right curly double
	"„", `"`, // low curly double
	"‘", "'", // left curly single
	"’", "'", // right curly single
)

// NormalizeResponse extracts one JSON object from free-form inference text.
// The reply is nominally JSON but often wrapped in prose or code fences,
// with curly quotes, trailing commas, comments, or unquoted keys. Two
// passes: a cheap cleanup, then a heavier repair. Returns
// ErrMalformedResponse when neither yields valid JSON.
func NormalizeResponse(raw string) ([]byte, error) {
	text := stripControlPrefix(raw)
	text = stripCodeFences(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.Wrap(ErrMalformedResponse, "no JSON object span")
	}
	text = text[start : end+1]

	text = quoteReplacer.Replace(text)
	text = trailingCommaRe.ReplaceAllString(text, "$1")

	if json.Valid([]byte(text)) {
		return []byte(text), nil
	}

	// Second pass: strip comments, drop trailing commas again, quote bare keys.
	text = stripComments(text)
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	text = bareKeyRe.ReplaceAllString(text, `$1"$2":`)

	if json.Valid([]byte(text)) {
		return []byte(text), nil
	}
	return nil, eris.Wrap(ErrMalformedResponse, "repair pass failed")
}

// stripControlPrefix drops a UTF-8 BOM and any leading control characters.
func stripControlPrefix(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return r < 0x20 || r == 0x7f
	})
}

// stripCodeFences removes markdown fences regardless of the language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}

	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// stripComments removes // line comments and /* */ block comments while
// leaving string contents untouched.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	i := 0
	for i < len(s) {
		c := s[i]

		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			i++
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
			i++
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
