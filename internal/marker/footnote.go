package marker

import "strings"

// Footnote is one [^label] reference found in a buffer. Unlike the
// sigil markers it carries no config or content groups; the label
// anchors an entry in the document's endnote list.
type Footnote struct {
	Label string
	Start int // offset of the opening bracket
	End   int // one past the closing bracket
}

// FindFootnotes scans the buffer for [^label] references in
// left-to-right order. A label must be non-empty and contain no
// whitespace or brackets; anything else is skipped silently, the same
// way prose containing stray sigil characters is.
func FindFootnotes(buf string) []Footnote {
	var notes []Footnote
	cursor := 0
	for cursor < len(buf) {
		p := strings.Index(buf[cursor:], "[^")
		if p < 0 {
			break
		}
		p += cursor

		sec, err := ExtractBracketSection(buf, p+1)
		if err != nil {
			cursor = p + 2
			continue
		}
		label := strings.TrimPrefix(sec.Content, "^")
		if label == "" || strings.ContainsAny(label, " \t\n[]") {
			cursor = p + 2
			continue
		}
		notes = append(notes, Footnote{Label: label, Start: p, End: sec.End})
		cursor = sec.End
	}
	return notes
}
