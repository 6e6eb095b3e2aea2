package util

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.UGCPolicy()

// SanitizeText 清理用户提交的文本，防止 XSS
func SanitizeText(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}
