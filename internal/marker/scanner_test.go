package marker

import (
	"errors"
	"reflect"
	"testing"
)

func mustScanner(t *testing.T, sigils []Sigil) *Scanner {
	t.Helper()
	s, err := NewScanner(sigils)
	if err != nil {
		t.Fatalf("unexpected error building scanner: %v", err)
	}
	return s
}

func TestNewScanner_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		sigils []Sigil
	}{
		{"empty table", nil},
		{"empty literal", []Sigil{{Literal: "", Kind: "x"}}},
		{"empty kind", []Sigil{{Literal: "[x]"}}},
		{"negative sections", []Sigil{{Literal: "[x]", Kind: "x", ConfigSections: -1}}},
		{"duplicate sigil", []Sigil{
			{Literal: "[x]", Kind: "a"},
			{Literal: "[x]", Kind: "b"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner(tt.sigils)
			if err == nil {
				t.Fatal("expected error")
			}
			var ic *InvalidConfigError
			if !errors.As(err, &ic) {
				t.Fatalf("expected InvalidConfigError, got %T", err)
			}
		})
	}
}

func TestFindMarkers_Marginalia(t *testing.T) {
	s := mustScanner(t, []Sigil{{Literal: "[m]", Kind: "marginalia", ConfigSections: 1}})
	buf := "Text[^1] and [m][2 1.1 32 r][Margin note]."

	matches, diag := s.FindMarkers(buf)
	if len(diag.Skipped) != 0 {
		t.Errorf("expected no skips, got %d", len(diag.Skipped))
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	m := matches[0]
	if m.Kind != "marginalia" {
		t.Errorf("expected kind %q, got %q", "marginalia", m.Kind)
	}
	if len(m.Config) != 1 || m.Config[0].Content != "2 1.1 32 r" {
		t.Errorf("expected config %q, got %+v", "2 1.1 32 r", m.Config)
	}
	if m.Content.Content != "Margin note" {
		t.Errorf("expected content %q, got %q", "Margin note", m.Content.Content)
	}
	if m.Start != 13 {
		t.Errorf("expected start 13, got %d", m.Start)
	}
	if m.Raw != "[m][2 1.1 32 r][Margin note]" {
		t.Errorf("unexpected raw span %q", m.Raw)
	}
}

func TestFindMarkers_NestedContentBrackets(t *testing.T) {
	s := mustScanner(t, []Sigil{{Literal: "[?]", Kind: "interactive", ConfigSections: 1}})
	buf := "[?][target:p1|duration:4000][Body text with [a nested] bracket]"

	matches, _ := s.FindMarkers(buf)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Config[0].Content != "target:p1|duration:4000" {
		t.Errorf("unexpected config %q", matches[0].Config[0].Content)
	}
	if matches[0].Content.Content != "Body text with [a nested] bracket" {
		t.Errorf("nested brackets mangled: %q", matches[0].Content.Content)
	}
	if matches[0].End != len(buf) {
		t.Errorf("expected end %d, got %d", len(buf), matches[0].End)
	}
}

func TestFindMarkers_MissingContentSection(t *testing.T) {
	s := mustScanner(t, []Sigil{{Literal: "[?]", Kind: "interactive", ConfigSections: 1}})
	matches, diag := s.FindMarkers("[?][only-one-section]")
	if len(matches) != 0 {
		t.Fatalf("expected 0 matches, got %d", len(matches))
	}
	if len(diag.Skipped) != 1 {
		t.Fatalf("expected 1 skip record, got %d", len(diag.Skipped))
	}
	if diag.Skipped[0].Sigil != "[?]" || diag.Skipped[0].Offset != 0 {
		t.Errorf("unexpected skip record %+v", diag.Skipped[0])
	}
}

func TestFindMarkers_SkipAndContinue(t *testing.T) {
	// A malformed marker must not prevent discovery of a later valid one.
	s := mustScanner(t, []Sigil{{Literal: "[m]", Kind: "marginalia", ConfigSections: 1}})
	buf := "[m][1 1.0][never closes... [m][2 1.1 32 l][good one]"
	matches, diag := s.FindMarkers(buf)
	if len(matches) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(matches))
	}
	if matches[0].Content.Content != "good one" {
		t.Errorf("expected the well-formed marker, got %q", matches[0].Content.Content)
	}
	if len(diag.Skipped) != 1 {
		t.Errorf("expected 1 skip record, got %d", len(diag.Skipped))
	}
}

func TestFindMarkers_SigilWithoutBracketIsSilent(t *testing.T) {
	// Prose may contain sigil characters outside marker context.
	s := mustScanner(t, DefaultSigils())
	matches, diag := s.FindMarkers("Is this a [m] in running text? Or a [+] sign?")
	if len(matches) != 0 {
		t.Errorf("expected 0 matches, got %d", len(matches))
	}
	if len(diag.Skipped) != 0 {
		t.Errorf("expected no diagnostics for plain prose, got %d", len(diag.Skipped))
	}
}

func TestFindMarkers_AllKindsInSourceOrder(t *testing.T) {
	s := mustScanner(t, DefaultSigils())
	buf := "A [+][expand me] B [?][target:p2][reveal] C [m][3 0.9 28 l][aside] D"

	matches, diag := s.FindMarkers(buf)
	if len(diag.Skipped) != 0 {
		t.Errorf("expected no skips, got %+v", diag.Skipped)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	wantKinds := []string{"extension", "interactive", "marginalia"}
	for i, want := range wantKinds {
		if matches[i].Kind != want {
			t.Errorf("match %d: expected kind %q, got %q", i, want, matches[i].Kind)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Start <= matches[i-1].Start {
			t.Errorf("matches out of source order at %d", i)
		}
	}
}

func TestFindMarkers_ExtensionZeroConfig(t *testing.T) {
	s := mustScanner(t, DefaultSigils())
	matches, _ := s.FindMarkers("End.[+][A longer aside lives here.]")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Kind != "extension" {
		t.Errorf("expected kind extension, got %q", m.Kind)
	}
	if len(m.Config) != 0 {
		t.Errorf("expected no config sections, got %d", len(m.Config))
	}
	if m.Content.Content != "A longer aside lives here." {
		t.Errorf("unexpected content %q", m.Content.Content)
	}
}

func TestFindMarkers_SameStartTieBreak(t *testing.T) {
	// When two sigils match at the same offset, the earlier declaration
	// wins. "[+]" is a prefix of "[+][" here, so both match at 0 in
	// "[+][[a]]".
	s := mustScanner(t, []Sigil{
		{Literal: "[+]", Kind: "extension", ConfigSections: 0},
		{Literal: "[+][", Kind: "bracketed", ConfigSections: 0},
	})
	matches, _ := s.FindMarkers("[+][[a]]")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match after tie-break, got %d", len(matches))
	}
	if matches[0].Kind != "extension" {
		t.Errorf("expected earlier-declared sigil to win, got %q", matches[0].Kind)
	}
	if matches[0].Content.Content != "[a]" {
		t.Errorf("expected content %q, got %q", "[a]", matches[0].Content.Content)
	}
}

func TestFindMarkers_Idempotent(t *testing.T) {
	s := mustScanner(t, DefaultSigils())
	buf := "x [m][1 1.0 30 r][one] y [+][two] z [?][target:a][three]"

	first, firstDiag := s.FindMarkers(buf)
	second, secondDiag := s.FindMarkers(buf)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical match lists on repeated scans")
	}
	if !reflect.DeepEqual(firstDiag, secondDiag) {
		t.Error("expected identical diagnostics on repeated scans")
	}
}

func TestFindMarkers_EmptyBuffer(t *testing.T) {
	s := mustScanner(t, DefaultSigils())
	matches, diag := s.FindMarkers("")
	if len(matches) != 0 || len(diag.Skipped) != 0 {
		t.Error("expected nothing from an empty buffer")
	}
}

func TestFindMarkers_MarkerAtBufferEnd(t *testing.T) {
	// Sigil at the very end of the buffer with nothing after it.
	s := mustScanner(t, DefaultSigils())
	matches, diag := s.FindMarkers("trailing [+]")
	if len(matches) != 0 {
		t.Errorf("expected 0 matches, got %d", len(matches))
	}
	if len(diag.Skipped) != 0 {
		t.Errorf("expected silent non-match at buffer end, got %+v", diag.Skipped)
	}
}
