// Package parser runs persisted LR tables against a token stream.
//
// The lexer is not a part of this package: tokens are supplied by TokenStream,
// each token reports its kind (terminal name) and whether it is preceded by a line terminator.
// Values are built by reducers supplied by Bindings.
package parser

import (
	"io"

	"github.com/pingcap/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/ava12/lrx/automaton"
	"github.com/ava12/lrx/log"
	"github.com/ava12/lrx/tables"
)

// Token is a single lexeme.
type Token interface {
	// Kind returns terminal name.
	Kind() string
	// Value returns value pushed on shift.
	Value() any
	LineTerminatorBefore() bool
	Line() int
	Col() int
}

// TokenStream supplies tokens, returns io.EOF at the end of input.
type TokenStream interface {
	Next() (Token, error)
}

// ReduceFunc builds value for matched production, values are in right-hand side order.
type ReduceFunc func(values []any) (any, error)

// Bindings supplies reducer for each production.
type Bindings interface {
	Reducer(prod int) ReduceFunc
}

// Parser is immutable and can be shared by concurrent parse sessions.
type Parser struct {
	tables *tables.Tables
	kinds  map[string]int
	logger log.Logger
}

// New creates parser for tables. Tables must not be modified afterwards.
func New(t *tables.Tables) *Parser {
	p := &Parser{
		tables: t,
		kinds:  make(map[string]int, len(t.Terminals)),
		logger: log.Named("parser"),
	}
	for i, name := range t.Terminals[:t.EndOfInput()] {
		p.kinds[name] = i
	}
	return p
}

// Tables returns parser tables.
func (p *Parser) Tables() *tables.Tables {
	return p.tables
}

// Parse parses token stream using the first goal.
func (p *Parser) Parse(ts TokenStream, b Bindings) (any, error) {
	return p.ParseGoal(p.tables.Goals[0].Name, ts, b)
}

// ParseGoal parses token stream as goal nonterminal.
// Returns *ParseError for rejected input, errors returned by token stream and reducers are traced.
func (p *Parser) ParseGoal(goal string, ts TokenStream, b Bindings) (any, error) {
	start, has := p.tables.Start(goal)
	if !has {
		return nil, unknownGoalError(goal)
	}

	s := session{parser: p, stream: ts, bindings: b, states: []int{start}}
	return s.run()
}

type session struct {
	parser   *Parser
	stream   TokenStream
	bindings Bindings
	states   []int
	values   []any
	token    Token
	terminal int
}

func (s *session) fetch() error {
	tok, e := s.stream.Next()
	if e == io.EOF {
		s.token = nil
		s.terminal = s.parser.tables.EndOfInput()
		return nil
	}
	if e != nil {
		return errors.Trace(e)
	}

	terminal, has := s.parser.kinds[tok.Kind()]
	if !has {
		return unknownTokenError(tok)
	}

	s.token = tok
	s.terminal = terminal
	return nil
}

func (s *session) run() (any, error) {
	t := s.parser.tables
	e := s.fetch()
	for e == nil {
		state := s.states[len(s.states)-1]
		lt := s.token != nil && s.token.LineTerminatorBefore()
		action := tables.UnpackAction(t.Action(state, s.terminal, lt))
		switch action.Kind {
		case automaton.ShiftAction:
			s.states = append(s.states, action.Target)
			s.values = append(s.values, s.token.Value())
			e = s.fetch()

		case automaton.ReduceAction:
			e = s.reduce(action.Target)

		case automaton.AcceptAction:
			return s.values[0], nil

		default:
			return nil, s.rejectError(state, lt)
		}
	}

	return nil, e
}

func (s *session) reduce(prod int) error {
	t := s.parser.tables
	f := s.bindings.Reducer(prod)
	if f == nil {
		return reducerError(prod)
	}

	p := t.Productions[prod]
	top := s.states[len(s.states)-1-p.Arity]
	target := t.Goto(top, p.LHS)
	if target < 0 {
		return gotoError(t.Nonterminals[p.LHS], top)
	}

	n := len(s.values) - p.Arity
	args := make([]any, p.Arity)
	copy(args, s.values[n:])
	value, e := f(args)
	if e != nil {
		return errors.Trace(e)
	}

	if ce := s.parser.logger.Check(zap.DebugLevel, "reduce"); ce != nil {
		ce.Write(zap.Int("production", prod), zap.String("nonterminal", t.Nonterminals[p.LHS]))
	}

	clear(s.values[n:])
	s.values = append(s.values[:n], value)
	s.states = append(s.states[:len(s.states)-p.Arity], target)
	return nil
}

func (s *session) rejectError(state int, lt bool) error {
	expected := s.parser.tables.Expected(state, lt)
	slices.Sort(expected)
	if s.token == nil {
		return unexpectedEndError(automaton.EndOfInput, expected)
	}
	return unexpectedTokenError(s.token, expected)
}
