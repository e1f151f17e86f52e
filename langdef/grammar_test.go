package langdef

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/lrx/grammar"
)

const statementGrammar = `
# statements
token Semicolon = ";";
var token Name;
goal Script, Expr;

nt Script { Stmt; Script Stmt => append($0, $1); }
nt Stmt[Yield] : Statement {
  [+Yield] "yield" Expr ";" => yield($1) @YieldStmt;
  [lookahead != "{"] Expr ";" => exprStmt($0);
  "return" [no LineTerminator here] Expr? ";" => ret($1);
}
nt Expr { Id; Call; }
nt Keyword = one of "if" "else" "yield";
nt Id { Name but not one of Keyword, "await"; }
nt Call { Id "(" Args[?Yield] ")"; }
`

func TestGrammar(t *testing.T) {
	g, e := ParseString("stmt", statementGrammar)
	require.NoError(t, e)

	require.Equal(t, []string{"Script", "Expr"}, g.Goals)
	require.Equal(t, []string{"Script", "Stmt", "Expr", "Keyword", "Id", "Call"}, ntNames(g))
	require.Equal(t, []string{"Semicolon", "Name", "yield", "{", "return", "if", "else", "await", "("}, tNames(g)[:9])
	require.Equal(t, ")", g.Terminals[9].Name)

	stmt, has := g.Nonterminal("Stmt")
	require.True(t, has)
	require.Equal(t, []string{"Yield"}, stmt.Params)
	require.Equal(t, "Statement", stmt.Type)
	require.Len(t, stmt.Productions, 3)

	p := stmt.Productions[0]
	require.Equal(t, &grammar.Guard{Param: "Yield", Value: true}, p.Guard)
	require.Equal(t, "YieldStmt", p.ID)
	require.Equal(t, "yield($1)", p.Reducer.String())
	require.Equal(t, `"yield" Expr ";"`, grammar.FormatSymbols(p.Symbols))
	require.Equal(t, 9, p.Pos.Line())
	require.Equal(t, 3, p.Pos.Col())

	p = stmt.Productions[1]
	require.Nil(t, p.Guard)
	require.Equal(t, grammar.Lookahead{Op: grammar.LookaheadNe, Seqs: [][]grammar.Symbol{{grammar.Lit{Text: "{"}}}}, p.Symbols[0])
	require.Equal(t, 2, p.Arity())

	p = stmt.Productions[2]
	require.Equal(t, []grammar.Symbol{
		grammar.Lit{Text: "return"},
		grammar.NoLineTerminator{},
		grammar.Optional{Inner: grammar.Ref{Name: "Expr"}},
		grammar.Lit{Text: ";"},
	}, p.Symbols)
	require.Equal(t, 3, p.Arity())

	kw, _ := g.Nonterminal("Keyword")
	require.Len(t, kw.Productions, 3)
	require.Nil(t, kw.Productions[0].Reducer)

	id, _ := g.Nonterminal("Id")
	require.Equal(t, grammar.Exclusion{
		Base: grammar.Ref{Name: "Name"},
		Except: []grammar.Excluded{
			{Kind: grammar.ExcludeSymbol, Symbol: grammar.Ref{Name: "Keyword"}},
			{Kind: grammar.ExcludeSymbol, Symbol: grammar.Lit{Text: "await"}},
		},
	}, id.Productions[0].Symbols[0])

	call, _ := g.Nonterminal("Call")
	require.Equal(t, grammar.Ref{Name: "Args", Args: []grammar.Arg{{Sigil: grammar.ArgPass, Name: "Yield"}}}, call.Productions[0].Symbols[2])
}

func TestTrailingLookahead(t *testing.T) {
	g, e := ParseString("", `nt A { B [lookahead <! {"x", "y" "z"}]; C[+P] [lookahead == "w"]; }`)
	require.NoError(t, e)
	a, _ := g.Nonterminal("A")
	require.Equal(t, []grammar.Symbol{
		grammar.Ref{Name: "B"},
		grammar.Lookahead{Op: grammar.LookaheadNotIn, Seqs: [][]grammar.Symbol{
			{grammar.Lit{Text: "x"}},
			{grammar.Lit{Text: "y"}, grammar.Lit{Text: "z"}},
		}},
	}, a.Productions[0].Symbols)
	require.Equal(t, grammar.Ref{Name: "C", Args: []grammar.Arg{{Sigil: grammar.ArgTrue, Name: "P"}}}, a.Productions[1].Symbols[0])
	require.Equal(t, grammar.Lookahead{Op: grammar.LookaheadEq, Seqs: [][]grammar.Symbol{{grammar.Lit{Text: "w"}}}}, a.Productions[1].Symbols[1])
}

func TestCharRange(t *testing.T) {
	g, e := ParseString("", `nt Digit { Char but not "a" through "z"; } var token Char;`)
	require.NoError(t, e)
	d, _ := g.Nonterminal("Digit")
	require.Equal(t, grammar.Exclusion{
		Base:   grammar.Ref{Name: "Char"},
		Except: []grammar.Excluded{{Kind: grammar.ExcludeRange, From: "a", To: "z"}},
	}, d.Productions[0].Symbols[0])
	require.Equal(t, []string{"Char"}, tNames(g))
}

func ntNames(g *grammar.Grammar) []string {
	res := make([]string, len(g.Nonterminals))
	for i, nt := range g.Nonterminals {
		res[i] = nt.Name
	}
	return res
}

func tNames(g *grammar.Grammar) []string {
	res := make([]string, len(g.Terminals))
	for i, t := range g.Terminals {
		res[i] = t.Name
	}
	return res
}
