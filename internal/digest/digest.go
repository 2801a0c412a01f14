// Package digest parses and normalizes raw summarizer output.
//
// The summarizer is asked for a JSON object with exactly three string
// fields, but older runs archived a single free-text block instead, so a
// failed parse is not treated as fatal: callers keep the raw text and let
// the display layer degrade to a single rendering.
package digest

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/erickiiim/newsroom/internal/model"
)

// Parse attempts a strict JSON parse of raw into the three named fields.
func Parse(raw string) (model.Digest, error) {
	var d model.Digest
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return model.Digest{}, err
	}
	return d, nil
}

// IsSentinel reports whether a syntactically valid digest actually signals
// total summarizer failure. Such digests must never be archived.
func IsSentinel(d model.Digest) bool {
	return strings.Contains(d.Headline, "Error")
}

var boldMarkup = regexp.MustCompile(`\*\*(.*?)\*\*`)

// CleanText prepares a digest field for display. Applied at render time
// only; archived content stays verbatim.
func CleanText(text string) string {
	cleaned := strings.TrimSpace(text)

	// A model occasionally wraps a field in a stringified single-element
	// list. Strip exactly that wrapping and nothing else.
	if len(cleaned) >= 4 &&
		((strings.HasPrefix(cleaned, "['") && strings.HasSuffix(cleaned, "']")) ||
			(strings.HasPrefix(cleaned, `["`) && strings.HasSuffix(cleaned, `"]`))) {
		cleaned = cleaned[2 : len(cleaned)-2]
	}

	cleaned = strings.ReplaceAll(cleaned, `\n`, "\n")
	cleaned = boldMarkup.ReplaceAllString(cleaned, "<strong>$1</strong>")

	return cleaned
}
