// Package sanitize strips markup from free-text fields before they are stored.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	// Entities may have encoded a tag.
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes user-provided text such as partner names and locations.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr is a helper for optional string pointers.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}

// Texts sanitizes every element and drops the ones left empty.
func Texts(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if cleaned := Text(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
