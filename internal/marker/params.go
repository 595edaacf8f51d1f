package marker

import (
	"fmt"
	"strconv"
	"strings"
)

// MarginaliaParams are the positional fields of a marginalia config
// section: voice, font scale, width in ch units, and page side.
type MarginaliaParams struct {
	Voice     int
	FontScale float64
	Width     int
	Position  string // "l" or "r"
}

// DefaultMarginalia returns the values used for absent or unparseable
// fields.
func DefaultMarginalia() MarginaliaParams {
	return MarginaliaParams{Voice: 1, FontScale: 1.0, Width: 30, Position: "r"}
}

// ParseMarginalia parses a whitespace-delimited marginalia config like
// "2 1.1 32 r". Fields are positional; missing or junk fields fall back
// to defaults and are reported as warnings, never as errors.
func ParseMarginalia(s string) (MarginaliaParams, []string) {
	p := DefaultMarginalia()
	var warnings []string

	fields := strings.Fields(s)
	if len(fields) > 0 {
		if v, err := strconv.Atoi(fields[0]); err == nil && v >= 1 && v <= 6 {
			p.Voice = v
		} else {
			warnings = append(warnings, fmt.Sprintf("bad voice %q", fields[0]))
		}
	}
	if len(fields) > 1 {
		if v, err := strconv.ParseFloat(fields[1], 64); err == nil && v > 0 {
			p.FontScale = v
		} else {
			warnings = append(warnings, fmt.Sprintf("bad font scale %q", fields[1]))
		}
	}
	if len(fields) > 2 {
		if v, err := strconv.Atoi(fields[2]); err == nil && v > 0 {
			p.Width = v
		} else {
			warnings = append(warnings, fmt.Sprintf("bad width %q", fields[2]))
		}
	}
	if len(fields) > 3 {
		switch fields[3] {
		case "l", "r":
			p.Position = fields[3]
		default:
			warnings = append(warnings, fmt.Sprintf("bad position %q", fields[3]))
		}
	}
	if len(fields) > 4 {
		warnings = append(warnings, fmt.Sprintf("%d extra fields ignored", len(fields)-4))
	}
	return p, warnings
}

// InteractiveParams are the pipe-delimited key:value pairs of an
// interactive config section like "target:p1|duration:4000|fade:600".
// Keys without special handling are preserved in Extra.
type InteractiveParams struct {
	Target   string
	Duration int // milliseconds
	Fade     int // milliseconds
	Extra    map[string]string
}

// ParseInteractive parses an interactive config section. Pairs missing
// a colon are reported as warnings and dropped.
func ParseInteractive(s string) (InteractiveParams, []string) {
	p := InteractiveParams{Duration: 4000}
	var warnings []string

	for _, pair := range strings.Split(s, "|") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, ":")
		if !found {
			warnings = append(warnings, fmt.Sprintf("missing ':' in %q", pair))
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "target":
			p.Target = value
		case "duration":
			if v, err := strconv.Atoi(value); err == nil && v >= 0 {
				p.Duration = v
			} else {
				warnings = append(warnings, fmt.Sprintf("bad duration %q", value))
			}
		case "fade":
			if v, err := strconv.Atoi(value); err == nil && v >= 0 {
				p.Fade = v
			} else {
				warnings = append(warnings, fmt.Sprintf("bad fade %q", value))
			}
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[key] = value
		}
	}
	return p, warnings
}
