package grammar

import (
	"github.com/ava12/lrx"
)

// MalformedGrammarError indicates that expanded grammar breaks model invariants.
// Validator never produces such grammars, the check guards hand-made or decoded ones.
const MalformedGrammarError = lrx.ValidationErrors + 90

func malformedError(msg string, params ...any) *lrx.Error {
	return lrx.FormatError(MalformedGrammarError, "malformed grammar: "+msg, params...)
}

// Check verifies that expanded grammar can be used by automaton builder.
// Returns nil or *lrx.Error with MalformedGrammarError code.
func (g *Grammar) Check() error {
	if !g.Expanded {
		return malformedError("grammar is not expanded")
	}

	if len(g.GoalNames()) == 0 {
		return malformedError("no goals")
	}

	for _, name := range g.GoalNames() {
		if _, has := g.Nonterminal(name); !has {
			return malformedError("unknown goal %s", name)
		}
	}

	for _, t := range g.Terminals {
		if _, has := g.Nonterminal(t.Name); has {
			return malformedError("%s is both terminal and nonterminal", t.Name)
		}
	}

	for _, nt := range g.Nonterminals {
		if len(nt.Params) > 0 {
			return malformedError("%s has parameters", nt.Name)
		}

		for _, p := range nt.Productions {
			e := g.checkProduction(nt.Name, p)
			if e != nil {
				return e
			}
		}
	}

	return nil
}

func (g *Grammar) checkProduction(name string, p Production) error {
	if p.Reducer == nil {
		return malformedError("%s -> %s has no reducer", name, FormatSymbols(p.Symbols))
	}

	if p.Reducer.MaxMatch() >= p.Arity() {
		return malformedError("%s -> %s reducer %s refers beyond matched values", name, FormatSymbols(p.Symbols), p.Reducer)
	}

	checkRef := func(r Ref) error {
		if len(r.Args) > 0 {
			return malformedError("%s -> %s has arguments", name, r)
		}
		if g.TerminalIndex(r.Name) < 0 && g.NonterminalIndex(r.Name) < 0 {
			return malformedError("%s -> undefined symbol %s", name, r.Name)
		}
		return nil
	}

	checkTerminals := func(names []string) error {
		for _, tn := range names {
			if g.TerminalIndex(tn) < 0 {
				return malformedError("%s -> undefined terminal %s", name, tn)
			}
		}
		return nil
	}

	for _, s := range p.Symbols {
		var e error
		switch s := s.(type) {
		case Ref:
			e = checkRef(s)
		case Exclusion:
			base, valid := s.Base.(Ref)
			if !valid || len(s.Except) > 0 {
				return malformedError("%s -> unresolved exclusion %s", name, s)
			}
			e = checkRef(base)
			if e == nil {
				e = checkTerminals(s.Terminals)
			}
		case Lookahead:
			if s.Op != "" {
				return malformedError("%s -> unresolved lookahead %s", name, s)
			}
			e = checkTerminals(s.Tokens)
		case NoLineTerminator:
		default:
			return malformedError("%s -> unexpected symbol %s", name, s)
		}
		if e != nil {
			return e
		}
	}

	return nil
}
