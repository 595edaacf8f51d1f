// Package marker finds bracket-delimited annotation markers (footnotes,
// marginalia, extensions, interactive reveals) in document text.
package marker

import (
	"sort"
	"strings"
)

// Sigil declares one recognized marker prefix, e.g. "[m]" for marginalia.
// ConfigSections is the number of bracket groups between the sigil and
// the final content group.
type Sigil struct {
	Literal        string
	Kind           string
	ConfigSections int
}

// DefaultSigils returns the built-in marker table. Declaration order
// matters: when two sigils could match at the same offset, the earlier
// entry wins.
func DefaultSigils() []Sigil {
	return []Sigil{
		{Literal: "[?]", Kind: "interactive", ConfigSections: 1},
		{Literal: "[m]", Kind: "marginalia", ConfigSections: 1},
		{Literal: "[+]", Kind: "extension", ConfigSections: 0},
	}
}

// InvalidConfigError indicates a malformed sigil table. This is a
// programmer error and is raised before any scanning begins.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid scanner configuration: " + e.Reason
}

// Match is one recognized marker occurrence.
type Match struct {
	Kind    string
	Config  []BracketSection // zero or more parameter groups, in order
	Content BracketSection   // the payload group
	Start   int              // offset of the sigil's first byte
	End     int              // one past the content group's closing bracket
	Raw     string           // the full original span, sigil and brackets included
}

// Skip records one abandoned marker attempt.
type Skip struct {
	Sigil  string `json:"sigil"`
	Offset int    `json:"offset"`
	Reason string `json:"reason"`
}

// Diagnostics collects non-fatal parse failures from a scan. A malformed
// marker never aborts the scan; it is recorded here and left as literal
// text in the document.
type Diagnostics struct {
	Skipped []Skip
}

// Scanner finds marker occurrences in a text buffer according to a
// fixed sigil table. Scanners are immutable after construction and safe
// for concurrent use.
type Scanner struct {
	sigils []Sigil
}

// NewScanner validates the sigil table and builds a Scanner.
func NewScanner(sigils []Sigil) (*Scanner, error) {
	if len(sigils) == 0 {
		return nil, &InvalidConfigError{Reason: "empty sigil table"}
	}
	seen := make(map[string]bool, len(sigils))
	for _, sig := range sigils {
		if sig.Literal == "" {
			return nil, &InvalidConfigError{Reason: "empty sigil literal"}
		}
		if sig.Kind == "" {
			return nil, &InvalidConfigError{Reason: "sigil " + sig.Literal + " has no kind"}
		}
		if sig.ConfigSections < 0 {
			return nil, &InvalidConfigError{Reason: "sigil " + sig.Literal + " has negative section count"}
		}
		if seen[sig.Literal] {
			return nil, &InvalidConfigError{Reason: "duplicate sigil " + sig.Literal}
		}
		seen[sig.Literal] = true
	}
	s := &Scanner{sigils: make([]Sigil, len(sigils))}
	copy(s.sigils, sigils)
	return s, nil
}

// Sigils returns a copy of the scanner's sigil table.
func (s *Scanner) Sigils() []Sigil {
	out := make([]Sigil, len(s.sigils))
	copy(out, s.sigils)
	return out
}

// FindMarkers scans the whole buffer and returns every well-formed
// marker occurrence in left-to-right order of its start offset. When
// two matches start at the same offset the sigil declared earlier in
// the table wins. Malformed markers are skipped and recorded in the
// returned Diagnostics; they never abort the scan.
//
// FindMarkers is pure: the same buffer always yields the same matches.
func (s *Scanner) FindMarkers(buf string) ([]Match, Diagnostics) {
	var matches []Match
	var diag Diagnostics

	for _, sig := range s.sigils {
		cursor := 0
		for cursor < len(buf) {
			p := strings.Index(buf[cursor:], sig.Literal)
			if p < 0 {
				break
			}
			p += cursor

			m, skip, ok := matchAt(buf, sig, p)
			if !ok {
				if skip != nil {
					diag.Skipped = append(diag.Skipped, *skip)
				}
				// Advance past the sigil so the scan always makes progress.
				cursor = p + len(sig.Literal)
				continue
			}
			matches = append(matches, m)
			cursor = m.End
		}
	}

	// Per-sigil passes collect matches in declaration order, so a stable
	// sort keeps the earlier-declared sigil first for same-start ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})

	// Drop later-declared matches that start where an earlier one did.
	out := matches[:0]
	for _, m := range matches {
		if n := len(out); n > 0 && out[n-1].Start == m.Start {
			continue
		}
		out = append(out, m)
	}
	return out, diag
}

// matchAt attempts a full marker match with the sigil at offset p.
// A sigil not followed by '[' is a silent non-match: document prose may
// legitimately contain the sigil's characters. Failures past that point
// produce a Skip diagnostic.
func matchAt(buf string, sig Sigil, p int) (Match, *Skip, bool) {
	cur := p + len(sig.Literal)
	if cur >= len(buf) || buf[cur] != '[' {
		return Match{}, nil, false
	}

	sections := make([]BracketSection, 0, sig.ConfigSections+1)
	for i := 0; i <= sig.ConfigSections; i++ {
		if cur >= len(buf) || buf[cur] != '[' {
			return Match{}, &Skip{
				Sigil:  sig.Literal,
				Offset: p,
				Reason: "missing bracket section",
			}, false
		}
		sec, err := ExtractBracketSection(buf, cur+1)
		if err != nil {
			return Match{}, &Skip{
				Sigil:  sig.Literal,
				Offset: p,
				Reason: err.Error(),
			}, false
		}
		sections = append(sections, sec)
		cur = sec.End
	}

	content := sections[len(sections)-1]
	return Match{
		Kind:    sig.Kind,
		Config:  sections[:len(sections)-1],
		Content: content,
		Start:   p,
		End:     content.End,
		Raw:     buf[p:content.End],
	}, nil, true
}
