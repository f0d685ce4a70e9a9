// Package sanitize cleans user-authored HTML before it is stored.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc   = bluemonday.UGCPolicy()
	plain = bluemonday.StrictPolicy()
)

// HTML keeps formatting markup and links and drops scripts, styles and
// event handlers.
func HTML(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Text strips all markup.
func Text(s string) string {
	return strings.TrimSpace(plain.Sanitize(s))
}
