// Package sanitize cleans user-supplied strings before they are stored.
package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text strips any markup from s and trims surrounding whitespace.
// Script and style contents are dropped entirely.
func Text(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	doc.Find("script,style,iframe,object").Remove()
	return strings.TrimSpace(doc.Text())
}

// Email normalises an email address for storage and lookup
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
