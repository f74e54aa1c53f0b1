package textutil

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// AnswerSanitizer strips all markup from free-text wizard answers. Facts are
// rendered into court forms, so no HTML survives persistence.
type AnswerSanitizer struct {
	policy *bluemonday.Policy
}

// NewAnswerSanitizer constructs a sanitizer backed by the strict policy.
func NewAnswerSanitizer() *AnswerSanitizer {
	return &AnswerSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize removes markup and trims surrounding whitespace.
func (s *AnswerSanitizer) Sanitize(value string) string {
	if s == nil || s.policy == nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(s.policy.Sanitize(value))
}
