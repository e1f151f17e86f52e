package lexer

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/lrx"
	"github.com/ava12/lrx/source"
)

var (
	tokenRe      = regexp.MustCompile(`(?s:[\s]+|(\d+)|([a-z_][a-z0-9_]*)|('.*?')|('.{0,10}))`)
	tokenTypes   = []TokenType{{1, "number"}, {2, "name"}, {3, "string"}}
	tokenSamples = []byte("123 foo 'bar'")
)

func scanner(src string) *Scanner {
	return New(tokenRe, tokenTypes).Scanner(source.New("", []byte(src)))
}

func TestEmpty(t *testing.T) {
	sources := []string{"", " ", "  ", " \t\r\n "}
	for _, src := range sources {
		tok, e := scanner(src).Next()
		require.NoError(t, e, "source %q", src)
		require.Equal(t, EofTokenType, tok.Type(), "source %q", src)
		require.Equal(t, EofTokenName, tok.TypeName(), "source %q", src)
	}
}

func TestTokenSamples(t *testing.T) {
	s := New(tokenRe, tokenTypes).Scanner(source.New("", tokenSamples))
	for _, tokType := range tokenTypes {
		tok, e := s.Next()
		require.NoError(t, e)
		require.Equal(t, tokType.TypeName, tok.TypeName())
		require.Equal(t, tokType.Type, tok.Type())
	}

	tok, e := s.Next()
	require.NoError(t, e)
	require.Equal(t, EofTokenName, tok.TypeName())
	tok, e = s.Next()
	require.NoError(t, e)
	require.Equal(t, EofTokenName, tok.TypeName())
}

func TestBrokenToken(t *testing.T) {
	tok, e := scanner("\n  '*  *").Next()
	require.Nil(t, tok)
	var ee *lrx.Error
	require.ErrorAs(t, e, &ee)
	require.Equal(t, BadTokenError, ee.Code)
	require.Equal(t, 2, ee.Line)
	require.Equal(t, 3, ee.Col)
	require.Contains(t, ee.Message, `"'*  *"`)
}

func TestTokenTypes(t *testing.T) {
	re := regexp.MustCompile(`(\d+)|\s+|(\w+)|#.*\n|([+-])`)
	types := []TokenType{{0, "num"}, {2, "name"}, {4, "op"}}
	expected := []int{0, 2, 1}

	s := New(re, types).Scanner(source.New("", []byte("1 + foo")))
	for i, n := range expected {
		tok, e := s.Next()
		require.NoError(t, e, "sample #%d", i)
		require.Equal(t, types[n].Type, tok.Type(), "sample #%d", i)
		require.Equal(t, types[n].TypeName, tok.TypeName(), "sample #%d", i)
	}
}

func TestTokenPos(t *testing.T) {
	s := scanner("12\n  foo")
	tok, e := s.Next()
	require.NoError(t, e)
	require.Equal(t, 1, tok.Line())
	require.Equal(t, 1, tok.Col())

	tok, e = s.Next()
	require.NoError(t, e)
	require.Equal(t, "foo", tok.Text())
	require.Equal(t, 2, tok.Line())
	require.Equal(t, 3, tok.Col())

	tok, e = s.Next()
	require.NoError(t, e)
	require.Equal(t, 2, tok.Line())
	require.Equal(t, 6, tok.Col())
}

func TestErrorPos(t *testing.T) {
	re := regexp.MustCompile(`(\s+)|(\w+)|(<\w+>)|(<.+)`)
	types := []TokenType{
		{0, "space"},
		{1, "word"},
		{2, "tag"},
		{ErrorTokenType, ""},
	}
	samples := []struct {
		src             string
		err, line, col int
	}{
		{"foo\n<bar> &baz", WrongCharError, 2, 7},
		{"foo\n <bar\nbaz", BadTokenError, 2, 2},
	}
	l := New(re, types)
	for i, s := range samples {
		sc := l.Scanner(source.New("src", []byte(s.src)))
		tok, e := sc.Next()
		for e == nil && tok.Type() != EofTokenType {
			tok, e = sc.Next()
		}

		require.Error(t, e, "sample %d", i)
		var ee *lrx.Error
		require.ErrorAs(t, e, &ee, "sample %d", i)
		tail := fmt.Sprintf("in src at line %d col %d", s.line, s.col)
		require.Equal(t, s.err, ee.Code, "sample %d", i)
		require.True(t, strings.HasSuffix(ee.Message, tail), "sample %d: %s", i, ee.Message)
	}
}
