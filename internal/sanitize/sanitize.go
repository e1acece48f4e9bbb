// Package sanitize strips markup from user-supplied text so it is safe to
// store and to emit as text content. Applied at submission time and again
// when building view models, so legacy unsanitized rows stay harmless.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Clean removes all HTML elements from text, entity-escapes what remains,
// and trims surrounding whitespace. Empty input yields the empty string.
// The output never contains a raw "<", so Clean is idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(policy.Sanitize(text))
}
