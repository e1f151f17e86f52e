// Package langdef converts grammar description to grammar model.
package langdef

import (
	"bytes"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/ava12/lrx/grammar"
	"github.com/ava12/lrx/lexer"
	"github.com/ava12/lrx/source"
)

// ParseString parses grammar description and returns a grammar on success.
// Returns nil and lrx.Error on error.
func ParseString(name, content string) (*grammar.Grammar, error) {
	return Parse(source.New(name, []byte(content)))
}

// ParseBytes parses grammar description and returns a grammar on success.
// Returns nil and lrx.Error on error.
func ParseBytes(name string, content []byte) (*grammar.Grammar, error) {
	return Parse(source.New(name, content))
}

// Parse parses grammar description and returns a grammar on success.
// Returns nil and lrx.Error on error.
// Parse checks syntax only, references are resolved by validator.
func Parse(s *source.Source) (*grammar.Grammar, error) {
	c := newParseContext(s)
	e := c.parse()
	e = c.declareLiterals(e)
	if e != nil {
		return nil, e
	}

	return c.g, nil
}

// ParseExpr parses standalone reducer expression, e.g. "greet($0, present($1))".
func ParseExpr(text string) (grammar.Expr, error) {
	c := newParseContext(source.New("", []byte(text)))
	res, e := c.parseExpr(nil)
	e = c.skipOne(lexer.EofTokenName, e)
	return res, e
}

const (
	stringTok    = "string"
	badStringTok = "bad-string"
	nameTok      = "name"
	matchTok     = "match"
	idTok        = "id"
	proseTok     = "prose"
	opTok        = "op"
	wrongTok     = ""
)

const (
	tokenKw     = "token"
	varKw       = "var"
	goalKw      = "goal"
	ntKw        = "nt"
	oneKw       = "one"
	ofKw        = "of"
	butKw       = "but"
	notKw       = "not"
	throughKw   = "through"
	lookaheadKw = "lookahead"
	noKw        = "no"
	ltKw        = "LineTerminator"
	hereKw      = "here"
	emptyKw     = "empty"
	absentKw    = "absent"
	presentKw   = "present"
)

const stringTokType = 1

const (
	equTok       = "="
	commaTok     = ","
	colonTok     = ":"
	semicolonTok = ";"
	questionTok  = "?"
	plusTok      = "+"
	tildeTok     = "~"
	reduceTok    = "=>"
	eqTok        = "=="
	neTok        = "!="
	notInTok     = "<!"
	lBraceTok    = "("
	rBraceTok    = ")"
	lSquareTok   = "["
	rSquareTok   = "]"
	lCurlyTok    = "{"
	rCurlyTok    = "}"
)

type escapeCharEntry struct {
	substitute, hexLen byte
}

var escapeCharMap = map[byte]escapeCharEntry{
	'\\': {'\\', 0},
	'"':  {'"', 0},
	'n':  {'\n', 0},
	'r':  {'\r', 0},
	't':  {'\t', 0},
	'x':  {0, 2},
	'u':  {0, 4},
	'U':  {0, 8},
}

var lrxLexer *lexer.Lexer

func init() {
	tokenTypes := []lexer.TokenType{
		{Type: stringTokType, TypeName: stringTok},
		{Type: 2, TypeName: badStringTok},
		{Type: 3, TypeName: nameTok},
		{Type: 4, TypeName: matchTok},
		{Type: 5, TypeName: idTok},
		{Type: 6, TypeName: proseTok},
		{Type: 7, TypeName: opTok},
		{Type: lexer.ErrorTokenType, TypeName: wrongTok},
	}

	re := regexp.MustCompile(
		`^(?:\s+|#[^\n]*|` +
			`("(?:[^\\"\n]|\\.)*")|` +
			`("(?:[^\\"\n]|\\.)*)|` +
			`([a-zA-Z_][a-zA-Z_0-9]*)|` +
			`(\$[0-9]+)|` +
			`(@[a-zA-Z_][a-zA-Z_0-9]*)|` +
			`(\[>[^\]\n]*\])|` +
			`(=>|==|!=|<!|[\[\]{}(),;=:?+~])|` +
			`(\S))`)

	lrxLexer = lexer.New(re, tokenTypes)
}

type parseContext struct {
	s           *lexer.Scanner
	g           *grammar.Grammar
	savedTokens []*lexer.Token
	literals    []*lexer.Token
	literalUsed map[string]bool
	goals       map[string]bool
}

func newParseContext(s *source.Source) *parseContext {
	return &parseContext{
		s:           lrxLexer.Scanner(s),
		g:           grammar.New(),
		literalUsed: make(map[string]bool),
		goals:       make(map[string]bool),
	}
}

func (c *parseContext) parse() error {
	types := []string{tokenKw, varKw, goalKw, ntKw, lexer.EofTokenName}
	for {
		t, e := c.fetch(types, true, nil)
		if e != nil {
			return e
		}

		switch t.Text() {
		case tokenKw:
			e = c.parseTokenDef()
		case varKw:
			e = c.parseVarTokenDef()
		case goalKw:
			e = c.parseGoalDef()
		case ntKw:
			e = c.parseNonterminalDef()
		default:
			return nil
		}
		if e != nil {
			return e
		}
	}
}

func (c *parseContext) put(t *lexer.Token) {
	c.savedTokens = append(c.savedTokens, t)
}

func isEof(t *lexer.Token) bool {
	return t.Type() == lexer.EofTokenType
}

func matches(t *lexer.Token, typ string) bool {
	switch t.TypeName() {
	case typ:
		return true
	case nameTok, opTok:
		return t.Text() == typ
	default:
		return false
	}
}

// fetch returns next token if it matches one of types (type names or exact texts of names and operators).
// Returns nil, nil and puts token back if it does not match and strict is false.
// Returns EoF token if it is not expected and strict is false.
func (c *parseContext) fetch(types []string, strict bool, e error) (*lexer.Token, error) {
	if e != nil {
		return nil, e
	}

	var token *lexer.Token
	if l := len(c.savedTokens); l > 0 {
		token = c.savedTokens[l-1]
		c.savedTokens = c.savedTokens[:l-1]
	} else {
		token, e = c.s.Next()
		if e != nil {
			return nil, e
		}

		switch token.TypeName() {
		case badStringTok:
			return nil, unterminatedStringError(token)
		case stringTok:
			token, e = processStringToken(token)
			if e != nil {
				return nil, e
			}
		}
	}

	for _, typ := range types {
		if matches(token, typ) {
			return token, nil
		}
	}

	if isEof(token) {
		if strict {
			return nil, eofError(token, types)
		}
		return token, nil
	}

	if strict {
		return nil, unexpectedTokenError(token, types)
	}

	c.put(token)
	return nil, nil
}

// processStringToken returns token containing unquoted string with escape sequences replaced.
func processStringToken(token *lexer.Token) (*lexer.Token, error) {
	content := token.Content()
	content = content[1 : len(content)-1]
	if bytes.IndexByte(content, '\\') < 0 {
		return lexer.NewToken(stringTokType, stringTok, content, token.Pos()), nil
	}

	var peekRune = func(content []byte, hexLen int) (rune, error) {
		if len(content) < hexLen+2 {
			return 0, invalidEscapeError(token, string(content))
		}

		codePoint, e := strconv.ParseUint(string(content[2:hexLen+2]), 16, 32)
		if e != nil {
			return 0, invalidEscapeError(token, string(content[:hexLen+2]))
		}

		if utf8.ValidRune(rune(codePoint)) {
			return rune(codePoint), nil
		} else {
			return 0, invalidRuneError(token, string(content[2:hexLen+2]))
		}
	}

	result := make([]byte, 0, len(content))
	for {
		slashPos := bytes.IndexByte(content, '\\')
		if slashPos < 0 {
			result = append(result, content...)
			break
		}

		if slashPos > 0 {
			result = append(result, content[:slashPos]...)
			content = content[slashPos:]
		}

		letter := content[1]
		entry, valid := escapeCharMap[letter]
		if !valid {
			return nil, invalidEscapeError(token, string(content[:2]))
		}

		if entry.hexLen == 0 {
			result = append(result, entry.substitute)
			content = content[2:]
		} else {
			r, e := peekRune(content, int(entry.hexLen))
			if e != nil {
				return nil, e
			}

			result = utf8.AppendRune(result, r)
			content = content[entry.hexLen+2:]
		}
	}

	return lexer.NewToken(stringTokType, stringTok, result, token.Pos()), nil
}

func (c *parseContext) fetchOne(typ string, strict bool, e error) (*lexer.Token, error) {
	return c.fetch([]string{typ}, strict, e)
}

func (c *parseContext) skip(types []string, e error) error {
	if e != nil {
		return e
	}

	_, e = c.fetch(types, true, nil)
	return e
}

func (c *parseContext) skipOne(typ string, e error) error {
	return c.skip([]string{typ}, e)
}

// fetchList fetches one or more tokens of type typ separated by commas.
func (c *parseContext) fetchList(typ string, e error) ([]*lexer.Token, error) {
	if e != nil {
		return nil, e
	}

	var result []*lexer.Token
	for {
		t, e := c.fetchOne(typ, true, nil)
		if e != nil {
			return nil, e
		}

		result = append(result, t)
		t, e = c.fetchOne(commaTok, false, nil)
		if e != nil {
			return nil, e
		}
		if t == nil || isEof(t) {
			if t != nil {
				c.put(t)
			}
			return result, nil
		}
	}
}

func (c *parseContext) nameTaken(name string) bool {
	return c.g.TerminalIndex(name) >= 0 || c.g.NonterminalIndex(name) >= 0
}

func (c *parseContext) parseTokenDef() error {
	name, e := c.fetchOne(nameTok, true, nil)
	e = c.skipOne(equTok, e)
	lit, e := c.fetchOne(stringTok, true, e)
	e = c.skipOne(semicolonTok, e)
	if e != nil {
		return e
	}

	if c.nameTaken(name.Text()) {
		return defTokenError(name, name.Text())
	}
	if _, has := c.g.LiteralTerminal(lit.Text()); has {
		return defTokenError(lit, lit.Text())
	}

	c.g.AddTerminal(grammar.Terminal{Name: name.Text(), Literal: lit.Text()})
	return nil
}

func (c *parseContext) parseVarTokenDef() error {
	e := c.skipOne(tokenKw, nil)
	names, e := c.fetchList(nameTok, e)
	e = c.skipOne(semicolonTok, e)
	if e != nil {
		return e
	}

	for _, name := range names {
		if c.nameTaken(name.Text()) {
			return defTokenError(name, name.Text())
		}

		c.g.AddTerminal(grammar.Terminal{Name: name.Text()})
	}
	return nil
}

func (c *parseContext) parseGoalDef() error {
	names, e := c.fetchList(nameTok, nil)
	e = c.skipOne(semicolonTok, e)
	if e != nil {
		return e
	}

	for _, name := range names {
		if c.goals[name.Text()] {
			return defGoalError(name)
		}

		c.goals[name.Text()] = true
		c.g.Goals = append(c.g.Goals, name.Text())
	}
	return nil
}

func (c *parseContext) parseNonterminalDef() error {
	name, e := c.fetchOne(nameTok, true, nil)
	if e != nil {
		return e
	}

	if c.nameTaken(name.Text()) {
		return defNonterminalError(name)
	}

	nt := grammar.Nonterminal{Name: name.Text(), Pos: name.Pos()}
	t, e := c.fetch([]string{lSquareTok, colonTok, lCurlyTok, equTok}, true, nil)
	if e == nil && t.Text() == lSquareTok {
		var params []*lexer.Token
		params, e = c.fetchList(nameTok, nil)
		e = c.skipOne(rSquareTok, e)
		for _, p := range params {
			if e == nil && nt.ParamIndex(p.Text()) >= 0 {
				e = defParamError(p)
			}
			nt.Params = append(nt.Params, p.Text())
		}
		t, e = c.fetch([]string{colonTok, lCurlyTok, equTok}, true, e)
	}
	if e == nil && t.Text() == colonTok {
		t, e = c.fetchOne(nameTok, true, nil)
		if e == nil {
			nt.Type = t.Text()
		}
		t, e = c.fetch([]string{lCurlyTok, equTok}, true, e)
	}
	if e != nil {
		return e
	}

	if t.Text() == equTok {
		nt.Productions, e = c.parseOneOf()
	} else {
		nt.Productions, e = c.parseAlternatives()
	}
	if e != nil {
		return e
	}

	c.g.AddNonterminal(nt)
	return nil
}

// parseOneOf parses "one of" shorthand after "=", each item is a single-symbol production.
func (c *parseContext) parseOneOf() ([]grammar.Production, error) {
	e := c.skipOne(oneKw, nil)
	e = c.skipOne(ofKw, e)
	if e != nil {
		return nil, e
	}

	var result []grammar.Production
	types := []string{stringTok, nameTok}
	for {
		t, e := c.fetch(types, len(result) == 0, nil)
		if e != nil {
			return nil, e
		}
		if t == nil || isEof(t) {
			break
		}

		result = append(result, grammar.Production{
			Symbols: []grammar.Symbol{c.primary(t)},
			Pos:     t.Pos(),
		})
	}

	return result, c.skipOne(semicolonTok, nil)
}

func (c *parseContext) parseAlternatives() ([]grammar.Production, error) {
	var result []grammar.Production
	for {
		t, e := c.fetchOne(rCurlyTok, false, nil)
		if e != nil {
			return nil, e
		}
		if t != nil {
			if isEof(t) {
				return nil, eofError(t, []string{rCurlyTok})
			}
			return result, nil
		}

		p, e := c.parseAlternative()
		if e != nil {
			return nil, e
		}

		result = append(result, p)
	}
}

var altTypes = []string{
	stringTok, nameTok, proseTok, idTok, lSquareTok, reduceTok, semicolonTok,
}

func (c *parseContext) parseAlternative() (grammar.Production, error) {
	var p grammar.Production
	first := true
	for {
		t, e := c.fetch(altTypes, true, nil)
		if e != nil {
			return p, e
		}

		if first {
			p.Pos = t.Pos()
		}

		var s grammar.Symbol
		switch t.TypeName() {
		case stringTok, nameTok:
			s, e = c.parseSymbol(t)

		case proseTok:
			text := t.Text()
			s = grammar.Prose{Text: string(bytes.TrimSpace([]byte(text[2 : len(text)-1])))}

		case idTok:
			p.ID = t.Text()[1:]
			return p, c.skipOne(semicolonTok, nil)

		default:
			switch t.Text() {
			case lSquareTok:
				var guard *grammar.Guard
				s, guard, e = c.parseBracket(first)
				if guard != nil {
					p.Guard = guard
				}

			case reduceTok:
				var x grammar.Expr
				x, e = c.parseExpr(nil)
				if e != nil {
					return p, e
				}

				p.Reducer = &x
				t, e = c.fetch([]string{idTok, semicolonTok}, true, nil)
				if e == nil && t.TypeName() == idTok {
					p.ID = t.Text()[1:]
					e = c.skipOne(semicolonTok, nil)
				}
				return p, e

			default:
				return p, nil
			}
		}
		if e != nil {
			return p, e
		}

		first = false
		if s != nil {
			p.Symbols = append(p.Symbols, s)
		}
	}
}

// primary converts name or string token to a symbol, recording used literals.
func (c *parseContext) primary(t *lexer.Token) grammar.Symbol {
	if t.TypeName() == nameTok {
		return grammar.Ref{Name: t.Text()}
	}

	if !c.literalUsed[t.Text()] {
		c.literalUsed[t.Text()] = true
		c.literals = append(c.literals, t)
	}
	return grammar.Lit{Text: t.Text()}
}

var sigilTypes = []string{plusTok, tildeTok, questionTok}

func (c *parseContext) parseSymbol(t *lexer.Token) (grammar.Symbol, error) {
	s := c.primary(t)
	if t.TypeName() == nameTok {
		open, e := c.fetchOne(lSquareTok, false, nil)
		if e != nil {
			return nil, e
		}

		if open != nil && !isEof(open) {
			sigil, e := c.fetch(sigilTypes, false, nil)
			if e != nil {
				return nil, e
			}

			if sigil != nil && !isEof(sigil) {
				c.put(sigil)
				args, e := c.parseArgs()
				if e != nil {
					return nil, e
				}

				s = grammar.Ref{Name: t.Text(), Args: args}
			} else {
				c.put(open)
			}
		} else if open != nil {
			c.put(open)
		}
	}

	q, e := c.fetch([]string{questionTok, butKw}, false, nil)
	if e != nil || q == nil {
		return s, e
	}
	if isEof(q) {
		c.put(q)
		return s, nil
	}
	if q.Text() == questionTok {
		return grammar.Optional{Inner: s}, nil
	}

	e = c.skipOne(notKw, nil)
	if e != nil {
		return nil, e
	}

	except, e := c.parseExcluded()
	if e != nil {
		return nil, e
	}

	return grammar.Exclusion{Base: s, Except: except}, nil
}

// parseArgs parses argument list after "[".
func (c *parseContext) parseArgs() ([]grammar.Arg, error) {
	var result []grammar.Arg
	for {
		sigil, e := c.fetch(sigilTypes, true, nil)
		name, e := c.fetchOne(nameTok, true, e)
		t, e := c.fetch([]string{commaTok, rSquareTok}, true, e)
		if e != nil {
			return nil, e
		}

		result = append(result, grammar.Arg{Sigil: grammar.Sigil(sigil.Text()[0]), Name: name.Text()})
		if t.Text() == rSquareTok {
			return result, nil
		}
	}
}

// parseExcluded parses exclusion list after "but not".
func (c *parseContext) parseExcluded() ([]grammar.Excluded, error) {
	t, e := c.fetch([]string{stringTok, nameTok}, true, nil)
	if e != nil {
		return nil, e
	}

	list := false
	if t.TypeName() == nameTok && t.Text() == oneKw {
		of, e := c.fetchOne(ofKw, false, nil)
		if e != nil {
			return nil, e
		}

		if of != nil && !isEof(of) {
			list = true
			t, e = c.fetch([]string{stringTok, nameTok}, true, nil)
			if e != nil {
				return nil, e
			}
		} else if of != nil {
			c.put(of)
		}
	}

	var result []grammar.Excluded
	for {
		var item grammar.Excluded
		if t.TypeName() == stringTok {
			through, e := c.fetchOne(throughKw, false, nil)
			if e != nil {
				return nil, e
			}

			if through != nil && !isEof(through) {
				to, e := c.fetchOne(stringTok, true, nil)
				if e != nil {
					return nil, e
				}

				item = grammar.Excluded{Kind: grammar.ExcludeRange, From: t.Text(), To: to.Text()}
			} else if through != nil {
				c.put(through)
			}
		}
		// range bounds are not symbols and must not declare literals
		if item.Kind != grammar.ExcludeRange {
			item = grammar.Excluded{Kind: grammar.ExcludeSymbol, Symbol: c.primary(t)}
		}
		result = append(result, item)

		if !list {
			return result, nil
		}

		comma, e := c.fetchOne(commaTok, false, nil)
		if e != nil {
			return nil, e
		}
		if comma == nil || isEof(comma) {
			if comma != nil {
				c.put(comma)
			}
			return result, nil
		}

		t, e = c.fetch([]string{stringTok, nameTok}, true, nil)
		if e != nil {
			return nil, e
		}
	}
}

// parseBracket parses bracketed clause after "[". Guards are allowed only if first is set.
// Returns nil symbol for [empty] and for guards.
func (c *parseContext) parseBracket(first bool) (grammar.Symbol, *grammar.Guard, error) {
	types := []string{lookaheadKw, noKw, emptyKw}
	if first {
		types = append(types, plusTok, tildeTok)
	}
	t, e := c.fetch(types, true, nil)
	if e != nil {
		return nil, nil, e
	}

	var s grammar.Symbol
	var guard *grammar.Guard
	switch t.Text() {
	case plusTok, tildeTok:
		var name *lexer.Token
		name, e = c.fetchOne(nameTok, true, nil)
		if e == nil {
			guard = &grammar.Guard{Param: name.Text(), Value: t.Text() == plusTok}
		}

	case emptyKw:

	case noKw:
		e = c.skipOne(ltKw, nil)
		e = c.skipOne(hereKw, e)
		s = grammar.NoLineTerminator{}

	default:
		s, e = c.parseLookahead()
	}

	e = c.skipOne(rSquareTok, e)
	if e != nil {
		return nil, nil, e
	}

	return s, guard, nil
}

func (c *parseContext) parseLookahead() (grammar.Symbol, error) {
	op, e := c.fetch([]string{eqTok, neTok, notInTok}, true, nil)
	if e != nil {
		return nil, e
	}

	res := grammar.Lookahead{Op: grammar.LookaheadOp(op.Text())}
	if res.Op != grammar.LookaheadNotIn {
		seq, e := c.parseSequence()
		if e != nil {
			return nil, e
		}

		res.Seqs = [][]grammar.Symbol{seq}
		return res, nil
	}

	t, e := c.fetch([]string{lCurlyTok, nameTok, stringTok}, true, nil)
	if e != nil {
		return nil, e
	}

	switch t.TypeName() {
	case nameTok:
		res.Nonterminal = t.Text()
	case stringTok:
		res.Seqs = [][]grammar.Symbol{{c.primary(t)}}
	default:
		for {
			seq, e := c.parseSequence()
			t, e = c.fetch([]string{commaTok, rCurlyTok}, true, e)
			if e != nil {
				return nil, e
			}

			res.Seqs = append(res.Seqs, seq)
			if t.Text() == rCurlyTok {
				break
			}
		}
	}

	return res, nil
}

// parseSequence parses one or more terminal references.
func (c *parseContext) parseSequence() ([]grammar.Symbol, error) {
	var result []grammar.Symbol
	for {
		t, e := c.fetch([]string{stringTok, nameTok}, len(result) == 0, nil)
		if e != nil {
			return nil, e
		}
		if t == nil || isEof(t) {
			if t != nil {
				c.put(t)
			}
			return result, nil
		}

		result = append(result, c.primary(t))
	}
}

func (c *parseContext) parseExpr(e error) (grammar.Expr, error) {
	t, e := c.fetch([]string{matchTok, nameTok}, true, e)
	if e != nil {
		return grammar.Expr{}, e
	}

	if t.TypeName() == matchTok {
		index, e := strconv.Atoi(t.Text()[1:])
		if e != nil {
			return grammar.Expr{}, unexpectedTokenError(t, []string{matchTok})
		}
		return grammar.Match(index), nil
	}

	switch t.Text() {
	case absentKw:
		return grammar.Absent(), nil

	case presentKw:
		e = c.skipOne(lBraceTok, nil)
		arg, e := c.parseExpr(e)
		e = c.skipOne(rBraceTok, e)
		return grammar.Present(arg), e
	}

	e = c.skipOne(lBraceTok, nil)
	if e != nil {
		return grammar.Expr{}, e
	}

	res := grammar.Call(t.Text())
	end, e := c.fetchOne(rBraceTok, false, nil)
	if end != nil && !isEof(end) {
		return res, e
	}
	if end != nil {
		c.put(end)
	}

	for e == nil {
		var arg grammar.Expr
		arg, e = c.parseExpr(nil)
		if e != nil {
			break
		}

		res.Args = append(res.Args, arg)
		end, e = c.fetch([]string{commaTok, rBraceTok}, true, nil)
		if e == nil && end.Text() == rBraceTok {
			break
		}
	}

	return res, e
}

// declareLiterals declares used but undeclared literals as terminals named after their spelling.
func (c *parseContext) declareLiterals(e error) error {
	if e != nil {
		return e
	}

	for _, t := range c.literals {
		if _, has := c.g.LiteralTerminal(t.Text()); has {
			continue
		}

		if c.nameTaken(t.Text()) {
			return defTokenError(t, t.Text())
		}

		c.g.AddTerminal(grammar.Terminal{Name: t.Text(), Literal: t.Text()})
	}

	return nil
}
