package langdef

import (
	"strings"

	"github.com/ava12/lrx"
	"github.com/ava12/lrx/lexer"
)

// Error codes used by langdef, lexer codes precede these:
const (
	UnexpectedEofError = lrx.GrammarSyntaxErrors + 10 + iota
	UnexpectedTokenError
	UnterminatedStringError
	BadEscapeError
	TokenDefinedError
	NonterminalDefinedError
	GoalDefinedError
	ParamDefinedError
)

func expected(types []string) string {
	items := make([]string, len(types))
	for i, t := range types {
		switch t {
		case stringTok, nameTok, matchTok, idTok, proseTok:
			items[i] = t
		default:
			items[i] = "\"" + t + "\""
		}
	}
	return strings.Join(items, " or ")
}

func eofError(token *lexer.Token, types []string) *lrx.Error {
	return lrx.FormatErrorPos(token, UnexpectedEofError, "unexpected end of input, expecting %s", expected(types))
}

func unexpectedTokenError(token *lexer.Token, types []string) *lrx.Error {
	return lrx.FormatErrorPos(token, UnexpectedTokenError, "unexpected %s %q, expecting %s", token.TypeName(), token.Text(), expected(types))
}

func unterminatedStringError(token *lexer.Token) *lrx.Error {
	return lrx.FormatErrorPos(token, UnterminatedStringError, "unterminated string %s", token.Text())
}

func invalidEscapeError(token *lexer.Token, seq string) *lrx.Error {
	return lrx.FormatErrorPos(token, BadEscapeError, "invalid escape sequence %q", seq)
}

func invalidRuneError(token *lexer.Token, code string) *lrx.Error {
	return lrx.FormatErrorPos(token, BadEscapeError, "invalid code point %s", code)
}

func defTokenError(token *lexer.Token, name string) *lrx.Error {
	return lrx.FormatErrorPos(token, TokenDefinedError, "token %q already defined", name)
}

func defNonterminalError(token *lexer.Token) *lrx.Error {
	return lrx.FormatErrorPos(token, NonterminalDefinedError, "nonterminal %q already defined", token.Text())
}

func defGoalError(token *lexer.Token) *lrx.Error {
	return lrx.FormatErrorPos(token, GoalDefinedError, "goal %q already declared", token.Text())
}

func defParamError(token *lexer.Token) *lrx.Error {
	return lrx.FormatErrorPos(token, ParamDefinedError, "parameter %q already declared", token.Text())
}
