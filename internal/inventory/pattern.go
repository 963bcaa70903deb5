package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single match so a pathological pattern cannot hang
// the command.
const matchTimeout = 2 * time.Second

// ErrInvalidPattern is wrapped by every pattern compilation error.
var ErrInvalidPattern = errors.New("invalid filter pattern")

var closingDelimiters = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
	'<': '>',
}

// Pattern is a compiled delimited regular expression such as "/^org\./i".
type Pattern struct {
	expr string
	re   *regexp2.Regexp
}

// CompilePattern parses a delimited expression. The delimiter is the first
// non-space character and may be any punctuation except a backslash; the
// bracket pairs (), [], {} and <> close with their counterpart. Modifiers
// after the closing delimiter may be i, m, s, x, or u.
func CompilePattern(expr string) (*Pattern, error) {
	body, modifiers, err := splitDelimited(expr)
	if err != nil {
		return nil, err
	}

	opts := regexp2.None
	for _, mod := range modifiers {
		switch mod {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		case 'u':
			// Matching is always Unicode aware.
		case '\n', '\r', ' ':
		default:
			return nil, fmt.Errorf("%w %q: unknown modifier %q", ErrInvalidPattern, expr, mod)
		}
	}

	re, err := regexp2.Compile(body, opts)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, expr, err)
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{expr: expr, re: re}, nil
}

// String returns the expression the pattern was compiled from.
func (p *Pattern) String() string { return p.expr }

// MatchString reports whether s contains a match.
func (p *Pattern) MatchString(s string) (bool, error) {
	ok, err := p.re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("matching %s: %w", p.expr, err)
	}
	return ok, nil
}

func splitDelimited(expr string) (body, modifiers string, err error) {
	s := strings.TrimLeftFunc(expr, unicode.IsSpace)
	if s == "" {
		return "", "", fmt.Errorf("%w: empty expression", ErrInvalidPattern)
	}

	open := []rune(s)[0]
	if open == '\\' || unicode.IsLetter(open) || unicode.IsDigit(open) {
		return "", "", fmt.Errorf("%w %q: delimiter must not be alphanumeric or backslash", ErrInvalidPattern, expr)
	}
	rest := s[len(string(open)):]

	var end int
	if closer, ok := closingDelimiters[open]; ok {
		end = findBracketEnd(rest, open, closer)
	} else {
		end = findEnd(rest, open)
	}
	if end < 0 {
		return "", "", fmt.Errorf("%w %q: no ending delimiter", ErrInvalidPattern, expr)
	}
	closeLen := len(string(closingFor(open)))
	return rest[:end], rest[end+closeLen:], nil
}

func closingFor(open rune) rune {
	if closer, ok := closingDelimiters[open]; ok {
		return closer
	}
	return open
}

// findEnd returns the byte offset of the first unescaped delim in s.
func findEnd(s string, delim rune) int {
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == delim:
			return i
		}
	}
	return -1
}

// findBracketEnd returns the byte offset of the closer balancing an already
// consumed opener.
func findBracketEnd(s string, open, closer rune) int {
	depth := 1
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == open:
			depth++
		case r == closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
