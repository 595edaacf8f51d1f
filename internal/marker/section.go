package marker

import "fmt"

// BracketSection is one balanced [...] group extracted from a buffer.
// Content is the text strictly between the outer brackets, with any
// nested brackets preserved verbatim.
type BracketSection struct {
	Content string
	Start   int // offset of the opening bracket
	End     int // one past the matching closing bracket
}

// UnbalancedBracketError reports a bracket group that never closes
// before the end of the buffer.
type UnbalancedBracketError struct {
	Start int // scan start: the first character after the opening bracket
}

func (e *UnbalancedBracketError) Error() string {
	return fmt.Sprintf("unbalanced bracket group at offset %d", e.Start)
}

// ExtractBracketSection finds the balanced bracket group whose opening
// bracket sits at start-1. The caller must have already confirmed and
// consumed that opening bracket.
//
// Every literal '[' and ']' counts toward nesting depth, including
// brackets inside quotes or HTML attributes. Content whose literal
// brackets are unbalanced will therefore corrupt extraction; published
// documents rely on this matching behavior, so it is part of the
// marker grammar rather than a limitation to fix.
func ExtractBracketSection(buf string, start int) (BracketSection, error) {
	depth := 1
	for i := start; i < len(buf); i++ {
		switch buf[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return BracketSection{
					Content: buf[start:i],
					Start:   start - 1,
					End:     i + 1,
				}, nil
			}
		}
	}
	return BracketSection{}, &UnbalancedBracketError{Start: start}
}
