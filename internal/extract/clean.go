package extract

import (
	"fmt"
	"strings"
)

// Clean repairs the JSON-adjacent text s without touching string contents:
// it strips // and /* */ comments, drops trailing commas before '}' or ']',
// collapses whitespace runs to one space and escapes raw control
// characters inside strings.
func Clean(s string) string {
	return dropTrailingCommas(stripComments(s))
}

// stripComments removes comments, collapses whitespace outside strings and
// escapes control characters inside strings.
func stripComments(s string) string {
	var (
		b         strings.Builder
		inString  bool
		escaped   bool
		pendingWS bool
	)
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
				b.WriteByte(c)
			case c == '\\':
				escaped = true
				b.WriteByte(c)
			case c == '"':
				inString = false
				b.WriteByte(c)
			case c < 0x20:
				b.WriteString(escapeControl(c))
			default:
				b.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			pendingWS = true
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 3
			}
			pendingWS = true
			continue
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pendingWS = true
			continue
		}

		if pendingWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingWS = false
		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
	}
	return b.String()
}

// dropTrailingCommas removes a comma outside strings when the next
// significant byte closes an object or array.
func dropTrailingCommas(s string) string {
	var (
		b        strings.Builder
		inString bool
		escaped  bool
	)
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && s[j] == ' ' {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func escapeControl(c byte) string {
	switch c {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	default:
		return fmt.Sprintf(`\u%04x`, c)
	}
}
