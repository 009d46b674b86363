// internal/app/ai/sanitize.go

package ai

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = sync.OnceValue(func() *bluemonday.Policy {
	return bluemonday.StrictPolicy()
})

// stripMarkup removes any HTML the model may have emitted, leaving plain
// text. Generated copy is stored and returned as text, never as markup.
func stripMarkup(s string) string {
	out := stripPolicy().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(out))
}
