package tables

import (
	"bytes"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/lrx/automaton"
	"github.com/ava12/lrx/internal/test"
	"github.com/ava12/lrx/langdef"
)

const arithmetic = `
	var token NUM;
	nt E { E "+" T => add($0, $2); T; }
	nt T { T "*" F => mul($0, $2); F; }
	nt F { "(" E ")" => $1; NUM; }
`

const restricted = `
	var token id;
	nt Script { Stmt => list($0); Script Stmt => append($0, $1); }
	nt Stmt { "return" [no LineTerminator here] Value => ret($1) @Return; "return" => ret0($0); Value => expr($0); }
	nt Value { id; }
`

func build(t *testing.T, src string) *automaton.Automaton {
	t.Helper()
	g, e := langdef.ParseString("", src)
	require.NoError(t, e)
	a, e := automaton.Build(g)
	require.NoError(t, e)
	return a
}

func TestPackAction(t *testing.T) {
	samples := []struct {
		action automaton.Action
		cell   int32
	}{
		{automaton.Action{}, 0},
		{automaton.Action{Kind: automaton.ShiftAction, Target: 0}, 1},
		{automaton.Action{Kind: automaton.ShiftAction, Target: 41}, 42},
		{automaton.Action{Kind: automaton.ReduceAction, Target: 0}, -1},
		{automaton.Action{Kind: automaton.ReduceAction, Target: 9}, -10},
		{automaton.Action{Kind: automaton.AcceptAction}, Accept},
	}
	for _, s := range samples {
		require.Equal(t, s.cell, PackAction(s.action))
		require.Equal(t, s.action, UnpackAction(s.cell))
	}
}

func TestEmit(t *testing.T) {
	a := build(t, arithmetic)
	tbl := Emit(a)
	require.NoError(t, tbl.Validate())

	require.Equal(t, a.Terminals(), tbl.Terminals)
	require.Equal(t, automaton.EndOfInput, tbl.Terminals[tbl.EndOfInput()])
	require.Equal(t, a.Nonterminals(), tbl.Nonterminals)
	require.Equal(t, []Goal{{"E", 0}}, tbl.Goals)
	require.Len(t, tbl.Productions, len(a.Productions()))
	require.Empty(t, tbl.Splits)
	require.Equal(t, a.NumStates(), tbl.NumStates())

	for s := 0; s < a.NumStates(); s++ {
		for ti := range tbl.Terminals {
			require.Equal(t, a.Action(s, ti).Action, UnpackAction(tbl.Actions[s][ti]))
		}
		for nt := range tbl.Nonterminals {
			require.Equal(t, a.Goto(s, nt), tbl.Goto(s, nt))
		}
	}

	state, has := tbl.Start("E")
	require.True(t, has)
	require.Equal(t, 0, state)
	require.Equal(t, []string{"NUM", "("}, tbl.Expected(0, false))
}

func TestSplits(t *testing.T) {
	tbl := Emit(build(t, restricted))
	require.NotEmpty(t, tbl.Splits)
	require.Equal(t, "Return", tbl.Productions[2].ID)

	ret := UnpackAction(tbl.Action(0, 1, false))
	require.Equal(t, automaton.ShiftAction, ret.Kind)
	id := 0
	require.Equal(t, automaton.ShiftAction, UnpackAction(tbl.Action(ret.Target, id, false)).Kind)
	require.Equal(t, automaton.Action{Kind: automaton.ReduceAction, Target: 3}, UnpackAction(tbl.Action(ret.Target, id, true)))
	require.Equal(t, tbl.Action(0, id, false), tbl.Action(0, id, true))
}

func TestRoundTrip(t *testing.T) {
	for _, src := range []string{arithmetic, restricted} {
		tbl := Emit(build(t, src))
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, tbl))

		decoded, e := Decode(&buf)
		require.NoError(t, e)
		require.Equal(t, tbl, decoded)
		require.Equal(t, tbl.Fingerprint(), decoded.Fingerprint())
	}
}

func TestReproducible(t *testing.T) {
	t1 := Emit(build(t, arithmetic))
	t2 := Emit(build(t, arithmetic))
	d1, e := t1.Marshal()
	require.NoError(t, e)
	d2, e := t2.Marshal()
	require.NoError(t, e)
	require.Equal(t, d1, d2)
	require.NotZero(t, t1.Fingerprint())
	require.Equal(t, t1.Fingerprint(), t2.Fingerprint())

	t3 := Emit(build(t, restricted))
	require.NotEqual(t, t1.Fingerprint(), t3.Fingerprint())
}

func TestDecodeErrors(t *testing.T) {
	_, e := Decode(strings.NewReader("{"))
	test.ExpectErrorCode(t, DecodeError, e)

	_, e = Decode(strings.NewReader(`{"terminals": 1}`))
	test.ExpectErrorCode(t, DecodeError, e)

	_, e = Decode(strings.NewReader(`{}`))
	test.ExpectErrorCode(t, InconsistentTablesError, e)
}

func TestValidate(t *testing.T) {
	broken := []func(tbl *Tables){
		func(tbl *Tables) { tbl.Actions[0] = tbl.Actions[0][:1] },
		func(tbl *Tables) { tbl.Gotos = tbl.Gotos[1:] },
		func(tbl *Tables) { tbl.Goals[0].State = 1000 },
		func(tbl *Tables) { tbl.Actions[0][0] = 1000 },
		func(tbl *Tables) { tbl.Actions[1][0] = -1000 },
		func(tbl *Tables) { tbl.Gotos[0][0] = 1000 },
		func(tbl *Tables) { tbl.Productions[0].LHS = 5 },
		func(tbl *Tables) { tbl.Productions[0].Arity = 1 },
		func(tbl *Tables) { tbl.Terminals = tbl.Terminals[:len(tbl.Terminals)-1] },
		func(tbl *Tables) { tbl.Splits = append(tbl.Splits, Split{0, 100, 0}) },
	}

	for i, f := range broken {
		tbl := Emit(build(t, arithmetic))
		f(tbl)
		test.ExpectErrorCode(t, InconsistentTablesError, tbl.Validate(), "sample #%d", i)
	}
}

func TestWriteGo(t *testing.T) {
	tbl := Emit(build(t, restricted))
	var buf bytes.Buffer
	require.NoError(t, WriteGo(&buf, tbl, "script", "Tables"))

	src := buf.String()
	require.True(t, strings.HasPrefix(src, "// Code generated by lrgen. DO NOT EDIT.\n"))
	require.Contains(t, src, "package script\n")
	require.Contains(t, src, "var Tables = &tables.Tables{")
	require.Contains(t, src, `grammar.Call("ret", grammar.Match(1)), ID: "Return"}`)
	require.Regexp(t, `Splits:\s+\[\]tables\.Split\{`, src)

	_, e := parser.ParseFile(token.NewFileSet(), "script.go", src, 0)
	require.NoError(t, e)
}

func TestWriteGoNames(t *testing.T) {
	tbl := Emit(build(t, arithmetic))
	var buf bytes.Buffer
	test.ExpectErrorCode(t, BadIdentifierError, WriteGo(&buf, tbl, "my-pkg", "X"))
	test.ExpectErrorCode(t, BadIdentifierError, WriteGo(&buf, tbl, "pkg", "1X"))
	require.Zero(t, buf.Len())
}
