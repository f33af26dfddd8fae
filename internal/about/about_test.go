package about

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
		wantErr  bool
	}{
		{"Double quoted", `__version__ = "1.0.0"`, "1.0.0", false},
		{"Single quoted", `__version__ = '2.3.1'`, "2.3.1", false},
		{"No spaces", `__version__="0.1.0"`, "0.1.0", false},
		{"Trailing comment", `__version__ = "1.2.0"  # bumped by release`, "1.2.0", false},
		{"Pre-release", `__version__ = "1.0.0rc1"`, "1.0.0rc1", false},
		{"Last assignment wins", "__version__ = \"1.0.0\"\n__version__ = \"1.1.0\"", "1.1.0", false},
		{"Header and imports", "# (C) Datadog, Inc. 2018\nimport os\n\n__version__ = \"1.0.0\"\n", "1.0.0", false},
		{"Unicode prefix", `__version__ = u"1.0.0"`, "1.0.0", false},
		{"Unicode prefix single quoted", `__version__ = U'1.0.0'`, "1.0.0", false},
		{"Raw prefix", `__version__ = r'1.0.0'`, "1.0.0", false},
		{"Triple double quoted", `__version__ = """1.0.0"""`, "1.0.0", false},
		{"Triple single quoted", `__version__ = '''1.0.0'''`, "1.0.0", false},
		{"Parenthesized", `__version__ = ("1.0.0")`, "1.0.0", false},
		{"Parenthesized with prefix", `__version__ = ( u'1.0.0' )  # release`, "1.0.0", false},
		{"Semicolon", `__version__ = "1.0.0";`, "1.0.0", false},
		{"Semicolon and comment", `__version__ = "1.0.0" ;  # release`, "1.0.0", false},
		{"Annotated", `__version__: str = "1.0.0"`, "1.0.0", false},
		{"Annotated with generic", `__version__ : Final[str] = '1.0.0'`, "1.0.0", false},
		{"Missing", `__author__ = "someone"`, "", true},
		{"Empty", `__version__ = ""`, "", true},
		{"Blank", `__version__ = "   "`, "", true},
		{"Expression", `__version__ = get_version()`, "", true},
		{"Concatenation", `__version__ = "1." + "0"`, "", true},
		{"Unterminated", `__version__ = "1.0.0`, "", true},
		{"Trailing whitespace", `__version__ = "1.0.0 "`, "", true},
		{"Inner whitespace", `__version__ = "1.0 .0"`, "", true},
		{"Bytes", `__version__ = b"1.0.0"`, "", true},
		{"Tuple", `__version__ = ("1.0.0",)`, "", true},
		{"Unbalanced parenthesis", `__version__ = ("1.0.0"`, "", true},
		{"Unterminated triple quote", `__version__ = """1.0.0`, "", true},
		{"Comparison", `__version__ == "1.0.0"`, "", true},
		{"Indented only", "if True:\n    __version__ = \"1.0.0\"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := Parse(strings.NewReader(tt.source))
			require.NoError(t, err)

			version, err := values.Version()
			if tt.wantErr {
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
				require.Equal(t, VersionKey, parseErr.Key)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, version)
		})
	}
}

func TestEvalLiteral(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{"Escaped double quote", `"a\"b"`, `a"b`, false},
		{"Double quote inside single", `'say "hi"'`, `say "hi"`, false},
		{"Escaped single quote", `'it\'s'`, "it's", false},
		{"Escaped double quote inside single", `'a\"b'`, `a"b`, false},
		{"Newline escape", `"a\nb"`, "a\nb", false},
		{"Escaped single quote inside double", `"it\'s"`, "it's", false},
		{"Raw keeps backslashes", `r"C:\new\"x"`, `C:\new\"x`, false},
		{"Triple quoted with inner quote", `"""say "hi" now"""`, `say "hi" now`, false},
		{"Empty triple quoted", `''''''`, "", false},
		{"Nested parentheses", `(("a"))`, "a", false},
		{"Number", `1`, "", true},
		{"Trailing garbage", `"a" b`, "", true},
		{"Implicit concatenation", `"1." "0"`, "", true},
		{"Double semicolon", `"a";;`, "", true},
		{"Prefix without quote", `u`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalLiteral(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotLiteral)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("__version__ = \"1.0.0\"\n__author__ = 'ashuvyas45'\n"), 0o644))

	values, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, values.Len())

	author, err := values.Get("__author__")
	require.NoError(t, err)
	require.Equal(t, "ashuvyas45", author)

	_, err = values.Get("__license__")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Contains(t, parseErr.Error(), path)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), FileName))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseErrorLocation(t *testing.T) {
	values, err := Parse(strings.NewReader("\n\n__version__ = VERSION\n"))
	require.NoError(t, err)

	_, err = values.Version()
	require.EqualError(t, err, "__about__.py:3: cannot evaluate __version__: value is not a string literal")

	values, err = Parse(strings.NewReader("__version__ = \"1.0.0 \"\n"))
	require.NoError(t, err)

	_, err = values.Version()
	require.EqualError(t, err, `__about__.py:1: cannot evaluate __version__: version "1.0.0 " contains whitespace`)
}
