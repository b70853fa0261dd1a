package options

import (
	"fmt"
	"strings"
)

// ProtocolEvent is one `name(options)` clause of a connection string (§4.2).
type ProtocolEvent struct {
	Name        string
	OptionsBlob string
}

// ParseError reports a malformed connection string or options blob, with a
// 1-indexed rune position into the original input (§4.2, §8 S2).
type ParseError struct {
	Message  string
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Message, e.Position)
}

// ParseConnections tokenizes `proto(k="v", …), proto2(…)` into protocol
// events (§4.2). It is reentrant: the returned OptionsBlob is handed to
// ParseOptions unchanged, using the same quoting rules.
func ParseConnections(input string) ([]ProtocolEvent, error) {
	runes := []rune(input)
	n := len(runes)
	i := 0
	var events []ProtocolEvent

	for {
		i = skipSpace(runes, i)
		if i >= n {
			break
		}

		nameStart := i
		for i < n && runes[i] != '(' {
			i++
		}
		if i >= n {
			return nil, &ParseError{Message: "missing '('", Position: n + 1}
		}
		name := strings.TrimSpace(string(runes[nameStart:i]))
		i++ // consume '('
		blobStart := i

		end, unclosedQuote, err := scanBalanced(runes, i)
		if err != nil {
			return nil, err
		}
		if unclosedQuote {
			return nil, &ParseError{Message: `unclosed '"'`, Position: n + 1}
		}
		if end < 0 {
			return nil, &ParseError{Message: "missing ')'", Position: n + 1}
		}

		blob := string(runes[blobStart:end])
		events = append(events, ProtocolEvent{Name: name, OptionsBlob: blob})
		i = end + 1

		i = skipSpace(runes, i)
		if i >= n {
			break
		}
		if runes[i] == ',' {
			i++
			continue
		}
		break
	}

	return events, nil
}

// scanBalanced scans from i (just past the opening '(') to the matching ')'
// that closes it, honoring quoted values (including the "" escape) so a
// literal ')' or ',' inside a quoted option value doesn't terminate the
// clause early. It returns the index of the matching ')', or -1 if none was
// found before the end of input.
func scanBalanced(runes []rune, i int) (end int, unclosedQuote bool, err error) {
	n := len(runes)
	depth := 1
	inQuote := false

	for i < n {
		c := runes[i]
		if inQuote {
			if c == '"' {
				if i+1 < n && runes[i+1] == '"' {
					i += 2
					continue
				}
				inQuote = false
				i++
				continue
			}
			i++
			continue
		}

		switch c {
		case '"':
			inQuote = true
			i++
		case '(':
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return i - 1, false, nil
			}
		default:
			i++
		}
	}

	return -1, inQuote, nil
}

func skipSpace(runes []rune, i int) int {
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t' || runes[i] == '\n' || runes[i] == '\r') {
		i++
	}
	return i
}

// ParseOptions parses an options blob (the grammar's `options` production,
// without the outer protocol wrapper) into a Table (§4.2).
func ParseOptions(blob string) (*Table, error) {
	t := New()
	runes := []rune(blob)
	n := len(runes)
	i := skipSpace(runes, 0)

	for i < n {
		keyStart := i
		for i < n && runes[i] != '=' {
			i++
		}
		if i >= n {
			return nil, &ParseError{Message: "missing '=' in option", Position: i + 1}
		}
		key := strings.TrimSpace(string(runes[keyStart:i]))
		i++ // consume '='
		i = skipSpace(runes, i)
		if i >= n {
			return nil, &ParseError{Message: "missing option value", Position: i + 1}
		}
		if runes[i] != '"' {
			// Unquoted value: runs to the next ',' and is trimmed.
			valStart := i
			for i < n && runes[i] != ',' {
				i++
			}
			t.Set(key, strings.TrimSpace(string(runes[valStart:i])))
			if i < n {
				i = skipSpace(runes, i+1)
			}
			continue
		}
		i++ // consume opening quote

		var value strings.Builder
		closed := false
		for i < n {
			c := runes[i]
			if c == '"' {
				if i+1 < n && runes[i+1] == '"' {
					value.WriteRune('"')
					i += 2
					continue
				}
				closed = true
				i++
				break
			}
			value.WriteRune(c)
			i++
		}
		if !closed {
			return nil, &ParseError{Message: `unclosed '"'`, Position: n + 1}
		}

		t.Set(key, value.String())

		i = skipSpace(runes, i)
		if i >= n {
			break
		}
		if runes[i] != ',' {
			return nil, &ParseError{Message: "expected ',' between options", Position: i + 1}
		}
		i++
		i = skipSpace(runes, i)
	}

	return t, nil
}
