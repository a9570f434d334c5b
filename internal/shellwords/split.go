// Package shellwords splits command strings into argument vectors for
// ad-hoc stdio server definitions.
package shellwords

import (
	"fmt"
	"strings"
)

// Split tokenizes a command string the way a POSIX shell would: single
// quotes are literal, double quotes allow backslash escapes for " \ $,
// and a backslash outside quotes escapes the next character. Quoted empty
// strings produce empty tokens.
func Split(input string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inSingle := false
	inDouble := false
	hasContent := false

	flush := func() {
		if current.Len() > 0 || hasContent {
			tokens = append(tokens, current.String())
			current.Reset()
			hasContent = false
		}
	}

	runes := []rune(input)
	i := 0
	for i < len(runes) {
		ch := runes[i]

		if inSingle {
			if ch == '\'' {
				inSingle = false
			} else {
				current.WriteRune(ch)
			}
			i++
			continue
		}

		if inDouble {
			if ch == '\\' && i+1 < len(runes) {
				next := runes[i+1]
				if next == '"' || next == '\\' || next == '$' {
					current.WriteRune(next)
					i += 2
					continue
				}
				current.WriteRune(ch)
				i++
				continue
			}
			if ch == '"' {
				inDouble = false
			} else {
				current.WriteRune(ch)
			}
			i++
			continue
		}

		switch {
		case ch == '\\':
			if i+1 < len(runes) {
				current.WriteRune(runes[i+1])
				hasContent = true
				i += 2
				continue
			}
			// Trailing backslash stays literal.
			current.WriteRune(ch)
			hasContent = true
			i++
		case ch == '\'':
			inSingle = true
			hasContent = true
			i++
		case ch == '"':
			inDouble = true
			hasContent = true
			i++
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			flush()
			i++
		default:
			current.WriteRune(ch)
			hasContent = true
			i++
		}
	}

	if inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quote in command string")
	}
	flush()

	return tokens, nil
}
