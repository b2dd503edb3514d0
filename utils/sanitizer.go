package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all markup; used for subjects and addresses
	StrictPolicy *bluemonday.Policy
	// UGCPolicy for rich text message bodies
	UGCPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	UGCPolicy = bluemonday.UGCPolicy()

	// Allow additional safe elements for email-style bodies
	UGCPolicy.AllowElements("p", "br", "div", "span", "h1", "h2", "h3", "h4", "h5", "h6")
	UGCPolicy.AllowElements("strong", "em", "u", "s", "code", "pre")
	UGCPolicy.AllowElements("ul", "ol", "li")
	UGCPolicy.AllowElements("blockquote")
	UGCPolicy.AllowElements("a")

	UGCPolicy.AllowAttrs("href").OnElements("a")

	// Require URLs to be safe
	UGCPolicy.RequireParseableURLs(true)
	UGCPolicy.AllowURLSchemes("http", "https", "mailto")
}

// SanitizeBody sanitizes a message body using the UGC policy
func SanitizeBody(body string) string {
	return UGCPolicy.Sanitize(body)
}

// SanitizeStrict removes all HTML from a value (subjects, display fields)
func SanitizeStrict(value string) string {
	return strings.TrimSpace(StrictPolicy.Sanitize(value))
}
