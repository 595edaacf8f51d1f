package document

import (
	"regexp"
	"strings"
)

// Document is a parsed input ready for marker scanning. Body is the
// buffer the scanner runs over: HTML for markdown/HTML inputs, plain
// paragraphs wrapped in <p> tags otherwise.
type Document struct {
	Title  string
	Body   string
	Format string // "markdown", "html", "text", "docx", "pdf"
}

// Annotated is the rendered product of one document.
type Annotated struct {
	Title     string         `json:"title"`
	HTML      string         `json:"html"`
	Counts    map[string]int `json:"counts"`              // rendered markers per kind, "footnote" included
	Footnotes []string       `json:"footnotes,omitempty"` // rendered footnote labels, in reference order
	Skipped   int            `json:"skipped"`             // abandoned marker attempts left as literal text
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/anchor-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
