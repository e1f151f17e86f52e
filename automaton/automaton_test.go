package automaton

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ava12/lrx/expand"
	"github.com/ava12/lrx/grammar"
	"github.com/ava12/lrx/internal/test"
	"github.com/ava12/lrx/langdef"
	"github.com/ava12/lrx/log"
)

func buildString(t *testing.T, src string, opts ...Option) (*Automaton, error) {
	t.Helper()
	g, e := langdef.ParseString("", src)
	require.NoError(t, e)
	return Build(g, opts...)
}

func mustBuild(t *testing.T, src string, opts ...Option) *Automaton {
	t.Helper()
	a, e := buildString(t, src, opts...)
	require.NoError(t, e)
	return a
}

func eval(x grammar.Expr, values []string) string {
	switch x.Kind {
	case grammar.MatchExpr:
		return values[x.Index]
	case grammar.AbsentExpr:
		return "absent"
	}

	args := make([]string, len(x.Args))
	for i, arg := range x.Args {
		args[i] = eval(arg, values)
	}
	name := x.Name
	if x.Kind == grammar.PresentExpr {
		name = "present"
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}

// run feeds token kinds to automaton, token value is its kind.
// Kind prefixed with "\n" is preceded by line terminator.
func run(a *Automaton, goal string, tokens ...string) (string, error) {
	state, has := a.Start(goal)
	if !has {
		return "", fmt.Errorf("unknown goal %s", goal)
	}

	states := []int{state}
	var values []string
	eof := a.TerminalID(EndOfInput)
	pos := 0
	for {
		t, lt, kind := eof, false, EndOfInput
		if pos < len(tokens) {
			kind = tokens[pos]
			if strings.HasPrefix(kind, "\n") {
				lt = true
				kind = kind[1:]
			}
			t = a.TerminalID(kind)
			if t < 0 {
				return "", fmt.Errorf("unknown token %q", kind)
			}
		}

		act := a.Action(states[len(states)-1], t).Select(lt)
		switch act.Kind {
		case ShiftAction:
			states = append(states, act.Target)
			values = append(values, kind)
			pos++

		case ReduceAction:
			p := a.Productions()[act.Target]
			n := len(values) - p.Arity
			v := eval(p.Reducer, values[n:])
			values = append(values[:n], v)
			states = states[:len(states)-p.Arity]
			next := a.Goto(states[len(states)-1], p.LHS)
			if next < 0 {
				return "", fmt.Errorf("no goto for %s", a.Nonterminals()[p.LHS])
			}
			states = append(states, next)

		case AcceptAction:
			return values[0], nil

		default:
			return "", fmt.Errorf("unexpected %s at #%d", kind, pos)
		}
	}
}

func requireRun(t *testing.T, a *Automaton, goal, expected string, tokens ...string) {
	t.Helper()
	res, e := run(a, goal, tokens...)
	require.NoError(t, e, "tokens: %q", tokens)
	require.Equal(t, expected, res)
}

func requireReject(t *testing.T, a *Automaton, goal string, tokens ...string) {
	t.Helper()
	_, e := run(a, goal, tokens...)
	require.Error(t, e, "tokens: %q", tokens)
}

const arithmetic = `
	var token NUM;
	nt E { E "+" T => add($0, $2); T; }
	nt T { T "*" F => mul($0, $2); F; }
	nt F { "(" E ")" => $1; NUM; }
`

func TestArithmetic(t *testing.T) {
	a := mustBuild(t, arithmetic)
	require.Equal(t, []string{"NUM", "+", "*", "(", ")", EndOfInput}, a.Terminals())
	require.Equal(t, []string{"E", "T", "F"}, a.Nonterminals())
	require.Equal(t, []Goal{{"E", 0}}, a.Goals())

	requireRun(t, a, "E", "NUM", "NUM")
	requireRun(t, a, "E", "add(NUM, mul(NUM, NUM))", "NUM", "+", "NUM", "*", "NUM")
	requireRun(t, a, "E", "mul(add(NUM, NUM), NUM)", "(", "NUM", "+", "NUM", ")", "*", "NUM")
	requireReject(t, a, "E", "NUM", "+")
	requireReject(t, a, "E", "(", "NUM")
	requireReject(t, a, "E")
}

func TestProductions(t *testing.T) {
	a := mustBuild(t, arithmetic)
	prods := a.Productions()
	require.Len(t, prods, 6)
	require.Equal(t, Production{
		LHS:     0,
		Symbols: []string{"E", "+", "T"},
		Arity:   3,
		Reducer: grammar.Call("add", grammar.Match(0), grammar.Match(2)),
	}, prods[0])
	require.Equal(t, 2, prods[5].LHS)
	require.Equal(t, []string{"NUM"}, prods[5].Symbols)
	require.Equal(t, grammar.Match(1), a.Reducer(4))
}

func TestAccessors(t *testing.T) {
	a := mustBuild(t, arithmetic)
	require.Equal(t, 5, a.TerminalID(EndOfInput))
	require.Equal(t, 1, a.TerminalID("+"))
	require.Equal(t, -1, a.TerminalID("-"))
	require.Equal(t, 2, a.NonterminalID("F"))
	require.Equal(t, -1, a.NonterminalID("G"))
	require.Equal(t, Entry{}, a.Action(-1, 0))
	require.Equal(t, Entry{}, a.Action(0, 100))
	require.Equal(t, -1, a.Goto(a.NumStates(), 0))
	require.Equal(t, -1, a.Goto(0, 3))

	_, has := a.Start("T")
	require.False(t, has)

	entry := a.Action(0, a.TerminalID("NUM"))
	require.Equal(t, Unconditional, entry.Cond)
	require.Equal(t, ShiftAction, entry.Action.Kind)
	require.Equal(t, entry.Action, entry.Alt)
}

func TestDeterminism(t *testing.T) {
	a1 := mustBuild(t, arithmetic, WithWorkers(1))
	a2 := mustBuild(t, arithmetic, WithWorkers(8))
	require.Equal(t, a1, a2)
}

func TestStrictNoConflicts(t *testing.T) {
	_, e := buildString(t, arithmetic, WithStrict(true))
	require.NoError(t, e)
}

func TestCanonicalLR(t *testing.T) {
	a := mustBuild(t, `
		var token id;
		nt S { L "=" R => assign($0, $2); R; }
		nt L { "*" R => deref($1); id; }
		nt R { L; }
	`, WithStrict(true))

	require.Equal(t, 14, a.NumStates())
	requireRun(t, a, "S", "assign(id, deref(id))", "id", "=", "*", "id")
	requireRun(t, a, "S", "deref(deref(id))", "*", "*", "id")
	requireReject(t, a, "S", "id", "=", "id", "=", "id")
}

const danglingElse = `
	var token e, s;
	nt S { "if" e S => cond($1, $2); "if" e S "else" S => ifElse($1, $2, $4); s; }
`

func TestShiftPreferred(t *testing.T) {
	a := mustBuild(t, danglingElse)
	requireRun(t, a, "S", "cond(e, ifElse(e, s, s))", "if", "e", "if", "e", "s", "else", "s")
}

func TestStrictShiftReduce(t *testing.T) {
	_, e := buildString(t, danglingElse, WithStrict(true))
	test.ExpectErrorCode(t, GrammarConflictError, e)

	var ce *ConflictError
	require.ErrorAs(t, e, &ce)
	require.Equal(t, ShiftReduceConflict, ce.Kind)
	require.Equal(t, "else", ce.Terminal)
	require.Equal(t, []int{0, 1}, ce.Productions)
	require.Contains(t, ce.Error(), "shift/reduce conflict")
}

func TestIdenticalReduceConflict(t *testing.T) {
	_, e := buildString(t, `
		var token x;
		nt S { A; B; }
		nt A { x; }
		nt B { x; }
	`)
	test.ExpectErrorCode(t, GrammarConflictError, e)

	var ce *ConflictError
	require.ErrorAs(t, e, &ce)
	require.Equal(t, ReduceReduceConflict, ce.Kind)
	require.Equal(t, 1, ce.State)
	require.Equal(t, EndOfInput, ce.Terminal)
	require.Equal(t, []int{2, 3}, ce.Productions)
	require.Equal(t, "reduce/reduce conflict in state 1 on -end-of-input-: #2 A -> x; #3 B -> x", ce.Error())
}

const earlierWins = `
	var token x, y;
	nt S { x B => viaB($1); A => viaA($0); }
	nt A { x y => a($0, $1); }
	nt B { y => b($0); }
`

func TestEarlierReduceWins(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log.SetLogger(zap.New(core))
	defer log.SetLogger(nil)

	a := mustBuild(t, earlierWins)
	requireRun(t, a, "S", "viaA(a(x, y))", "x", "y")

	warnings := logs.FilterMessage("production is never reduced").All()
	require.Len(t, warnings, 1)
	require.Equal(t, "#3 B -> y", warnings[0].ContextMap()["production"])
}

func TestStrictReduceReduce(t *testing.T) {
	_, e := buildString(t, earlierWins, WithStrict(true))
	var ce *ConflictError
	require.ErrorAs(t, e, &ce)
	require.Equal(t, ReduceReduceConflict, ce.Kind)
	require.Equal(t, []int{2, 3}, ce.Productions)
}

func TestLookahead(t *testing.T) {
	a := mustBuild(t, `
		var token id;
		nt Stmt { Block; [lookahead != "{"] Expr ";" => exprStmt($0); }
		nt Block { "{" "}" => block($0); }
		nt Expr { id; "{" "}" => obj($0); }
	`)

	requireRun(t, a, "Stmt", "block({)", "{", "}")
	requireRun(t, a, "Stmt", "exprStmt(id)", "id", ";")
	requireReject(t, a, "Stmt", "{", "}", ";")

	entry := a.Action(0, a.TerminalID("{"))
	require.Equal(t, LookaheadGuarded, entry.Cond)
	require.Equal(t, ShiftAction, entry.Action.Kind)
}

func TestPositiveLookahead(t *testing.T) {
	a := mustBuild(t, `
		var token x, y;
		nt S { [lookahead == x] A => ax($0); B; }
		nt A { x; y; }
		nt B { y => b($0); }
	`)

	requireRun(t, a, "S", "ax(x)", "x")
	requireRun(t, a, "S", "b(y)", "y")
}

func TestExclusion(t *testing.T) {
	a := mustBuild(t, `
		var token name;
		nt S { Ident => id($0); "if" name => cond($1); }
		nt Ident { Word but not "if"; }
		nt Word { name; "if"; "else"; }
	`, WithStrict(true))

	requireRun(t, a, "S", "id(name)", "name")
	requireRun(t, a, "S", "id(else)", "else")
	requireRun(t, a, "S", "cond(name)", "if", "name")
	requireReject(t, a, "S", "if")
}

func TestExclusionNullablePrefix(t *testing.T) {
	a := mustBuild(t, `
		var token NAME;
		nt Id { Word but not "if" => id($0); }
		nt Word { Pre "if" => w($1); NAME; }
		nt Pre { [empty] => none(); "@"; }
	`)

	requireRun(t, a, "Id", "id(NAME)", "NAME")
	requireRun(t, a, "Id", "id(w(if))", "@", "if")
	requireReject(t, a, "Id", "if")
}

const restricted = `
	var token id;
	nt Script { Stmt => list($0); Script Stmt => append($0, $1); }
	nt Stmt { "return" [no LineTerminator here] Value => ret($1); "return" => ret0($0); Value => expr($0); }
	nt Value { id; }
`

func TestLineTerminatorSplit(t *testing.T) {
	a := mustBuild(t, restricted)
	requireRun(t, a, "Script", "list(ret(id))", "return", "id")
	requireRun(t, a, "Script", "append(list(ret0(return)), expr(id))", "return", "\nid")
	requireRun(t, a, "Script", "append(list(expr(id)), expr(id))", "id", "\nid")

	entry := a.Action(0, a.TerminalID("return"))
	require.Equal(t, Unconditional, entry.Cond)
	require.Equal(t, ShiftAction, entry.Action.Kind)

	entry = a.Action(entry.Action.Target, a.TerminalID("id"))
	require.Equal(t, LineTerminatorSplit, entry.Cond)
	require.Equal(t, ShiftAction, entry.Action.Kind)
	require.Equal(t, ReduceAction, entry.Alt.Kind)
	require.Equal(t, 3, entry.Alt.Target)
}

func TestRestrictionConflict(t *testing.T) {
	_, e := buildString(t, `
		var token a, b;
		nt S { a [no LineTerminator here] [lookahead != b] b; }
	`)

	var ce *ConflictError
	require.ErrorAs(t, e, &ce)
	require.Equal(t, RestrictionConflict, ce.Kind)
	require.Equal(t, "b", ce.Terminal)
	require.Equal(t, []int{0}, ce.Productions)
}

func TestOptional(t *testing.T) {
	a := mustBuild(t, `
		var token id;
		nt S { "f" Arg? => call($1); }
		nt Arg { id; }
	`, WithStrict(true))

	requireRun(t, a, "S", "call(present(id))", "f", "id")
	requireRun(t, a, "S", "call(absent)", "f")
}

func TestMultiGoal(t *testing.T) {
	a := mustBuild(t, `
		goal Expr, Stmt;
		var token id;
		nt Stmt { Expr ";" => stmt($0); }
		nt Expr { id; }
	`)

	require.Equal(t, []Goal{{"Expr", 0}, {"Stmt", 1}}, a.Goals())
	state, has := a.Start("Stmt")
	require.True(t, has)
	require.Equal(t, 1, state)

	requireRun(t, a, "Expr", "id", "id")
	requireRun(t, a, "Stmt", "stmt(id)", "id", ";")
	requireReject(t, a, "Expr", "id", ";")
	requireReject(t, a, "Stmt", "id")
}

func TestParameterized(t *testing.T) {
	a := mustBuild(t, `
		var token id;
		nt S { Expr[+In] => $0; }
		nt Expr[In] { [+In] id "in" id => in($0, $2); id; }
	`)

	requireRun(t, a, "S", "in(id, id)", "id", "in", "id")
	require.GreaterOrEqual(t, a.NonterminalID("Expr[+In]"), 0)
	require.GreaterOrEqual(t, a.NonterminalID("Expr[~In]"), 0)
}

func TestValidationErrors(t *testing.T) {
	_, e := buildString(t, `nt S { A; }`)
	test.ExpectErrorCode(t, expand.UndefinedSymbolError, e)
}

func TestMalformedGrammar(t *testing.T) {
	g := grammar.New()
	g.Expanded = true
	_, e := Build(g)
	test.ExpectErrorCode(t, grammar.MalformedGrammarError, e)
}
