// Package about reads the metadata module shipped next to a check
// (__about__.py) and extracts its simple string assignments.
//
// Only top-level assignments of a single string literal are evaluated:
//
//	__version__ = "1.0.0"
//	__author__ = 'someone'  # comment
//	__license__: str = u"BSD"
//
// Anything else (imports, expressions, nested blocks) is skipped.
package about

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	VersionKey = "__version__"
	FileName   = "__about__.py"
)

// NAME = value, or NAME: annotation = value
var assignment = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?::[^=]*)?=\s*(.*)$`)

// ErrNotLiteral is returned when an assignment value is not a plain string.
var ErrNotLiteral = errors.New("value is not a string literal")

// ParseError reports a metadata key whose assignment could not be evaluated.
type ParseError struct {
	Path string
	Line int
	Key  string
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = FileName
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	return fmt.Sprintf("%s: cannot evaluate %s: %v", loc, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type entry struct {
	value string
	line  int
	err   error
}

// Values holds the assignments found in a metadata module.
type Values struct {
	path    string
	entries map[string]entry
}

// Parse reads assignments from r. Later assignments override earlier ones.
func Parse(r io.Reader) (Values, error) {
	v := Values{entries: make(map[string]entry)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		// indented lines belong to a block, not the module scope
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		m := assignment.FindStringSubmatch(line)
		// "==" is a comparison
		if m == nil || strings.HasPrefix(m[2], "=") {
			continue
		}
		value, err := evalLiteral(m[2])
		v.entries[m[1]] = entry{value: value, line: lineNo, err: err}
	}
	if err := scanner.Err(); err != nil {
		return Values{}, fmt.Errorf("read metadata: %w", err)
	}

	return v, nil
}

// ParseFile opens and parses the metadata module at path.
func ParseFile(path string) (Values, error) {
	f, err := os.Open(path)
	if err != nil {
		return Values{}, err
	}
	defer f.Close()

	v, err := Parse(f)
	if err != nil {
		return Values{}, fmt.Errorf("%s: %w", path, err)
	}
	v.path = path
	return v, nil
}

// Get returns the string assigned to key.
func (v Values) Get(key string) (string, error) {
	e, ok := v.entries[key]
	if !ok {
		return "", &ParseError{Path: v.path, Key: key, Err: errors.New("no assignment found")}
	}
	if e.err != nil {
		return "", &ParseError{Path: v.path, Line: e.line, Key: key, Err: e.err}
	}
	return e.value, nil
}

// Version returns the value of __version__. It must be non-empty and free
// of whitespace, since it ends up in file names and metadata headers.
func (v Values) Version() (string, error) {
	version, err := v.Get(VersionKey)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(version) == "" {
		return "", &ParseError{Path: v.path, Line: v.entries[VersionKey].line, Key: VersionKey, Err: errors.New("empty version")}
	}
	if strings.ContainsAny(version, " \t\r\n") {
		return "", &ParseError{Path: v.path, Line: v.entries[VersionKey].line, Key: VersionKey, Err: fmt.Errorf("version %q contains whitespace", version)}
	}
	return version, nil
}

// Len returns the number of assignments found.
func (v Values) Len() int {
	return len(v.entries)
}

// evalLiteral evaluates a string literal, optionally prefixed (u, r),
// triple-quoted or wrapped in parentheses. A trailing semicolon and comment
// are ignored.
func evalLiteral(raw string) (string, error) {
	value, rest, err := parseLiteral(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ";"))
	if rest != "" && !strings.HasPrefix(rest, "#") {
		return "", ErrNotLiteral
	}
	return value, nil
}

// parseLiteral evaluates the literal at the start of s and returns what
// follows it.
func parseLiteral(s string) (value, rest string, err error) {
	if strings.HasPrefix(s, "(") {
		value, rest, err = parseLiteral(strings.TrimSpace(s[1:]))
		if err != nil {
			return "", "", err
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, ")") {
			return "", "", ErrNotLiteral
		}
		return value, rest[1:], nil
	}

	raw := false
	if s != "" {
		switch s[0] {
		case 'r', 'R':
			raw = true
			s = s[1:]
		case 'u', 'U':
			s = s[1:]
		}
	}
	if s == "" || (s[0] != '"' && s[0] != '\'') {
		return "", "", ErrNotLiteral
	}

	delim := s[:1]
	if triple := strings.Repeat(delim, 3); strings.HasPrefix(s, triple) {
		delim = triple
	}
	end := closingQuote(s, delim)
	if end < 0 {
		return "", "", fmt.Errorf("%w: unterminated string", ErrNotLiteral)
	}
	body, rest := s[len(delim):end], s[end+len(delim):]

	// raw strings keep their backslashes
	if raw {
		return body, rest, nil
	}
	value, err = strconv.Unquote(`"` + requote(body) + `"`)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrNotLiteral, err)
	}
	return value, rest, nil
}

func closingQuote(s, delim string) int {
	for i := len(delim); i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(s[i:], delim) {
			return i
		}
	}
	return -1
}

// requote rewrites a literal body so strconv can unquote it as a
// double-quoted Go string: bare double quotes are escaped and \' becomes '.
func requote(body string) string {
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			sb.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			sb.WriteByte(c)
			sb.WriteByte(body[i+1])
			i++
		case c == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
