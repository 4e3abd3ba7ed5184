package songs

import "strings"

// Span is a quoted string found in the text. Start and End are the offsets
// of the opening and closing quotes (End is len(text) if the string is never
// closed). Interior holds the offsets of unescaped quotes that are part of
// the string content.
type Span struct {
	Start    int
	End      int
	Interior []int
}

// Spans tokenizes the quoted strings of text.
//
// A quote inside a string only closes it when it is followed by something
// that can legally follow a JSON string: `}`, `]`, `:`, the end of the text,
// or a `,` followed by another value. Any other quote is interior.
func Spans(text string) []Span {
	var spans []Span
	i := 0
	for i < len(text) {
		if text[i] != '"' {
			i++
			continue
		}
		span := Span{Start: i, End: len(text)}
		j := i + 1
	scan:
		for j < len(text) {
			switch text[j] {
			case '\\':
				j += 2
				continue
			case '"':
				if closes(text, j+1) {
					span.End = j
					break scan
				}
				span.Interior = append(span.Interior, j)
			}
			j++
		}
		spans = append(spans, span)
		i = span.End + 1
	}
	return spans
}

// Repair escapes the interior quotes of every span. Text without interior
// quotes is returned unchanged.
func Repair(text string) string {
	spans := Spans(text)
	var n int
	for _, s := range spans {
		n += len(s.Interior)
	}
	if n == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + n)
	last := 0
	for _, s := range spans {
		for _, pos := range s.Interior {
			b.WriteString(text[last:pos])
			b.WriteString(`\"`)
			last = pos + 1
		}
	}
	b.WriteString(text[last:])
	return b.String()
}

func closes(text string, k int) bool {
	k = skipSpace(text, k)
	if k >= len(text) {
		return true
	}
	switch text[k] {
	case '}', ']', ':':
		return true
	case ',':
		k = skipSpace(text, k+1)
		if k >= len(text) {
			return true
		}
		return startsValue(text[k:])
	}
	return false
}

func startsValue(s string) bool {
	switch c := s[0]; {
	case c == '"', c == '{', c == '[', c == '}', c == ']', c == '-':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return strings.HasPrefix(s, "true") || strings.HasPrefix(s, "false") || strings.HasPrefix(s, "null")
}

func skipSpace(text string, k int) int {
	for k < len(text) {
		switch text[k] {
		case ' ', '\t', '\n', '\r':
			k++
		default:
			return k
		}
	}
	return k
}
