package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// sanitizeHelp strips unsafe markup from help text so it can be emitted
// unescaped.
func sanitizeHelp(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		helpPolicy = bluemonday.UGCPolicy()
	})
	return helpPolicy.Sanitize(text)
}
