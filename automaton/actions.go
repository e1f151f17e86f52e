package automaton

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

type candidate struct {
	kind ActionKind
	prod int
	noLT bool
}

// buildRows computes action rows of all states concurrently.
// Rows and errors are stored per state, so the reported error is the one of the lowest state.
func (b *builder) buildRows() error {
	b.rows = make([][]Entry, len(b.states))
	errs := make([]error, len(b.states))
	var eg errgroup.Group
	eg.SetLimit(b.cfg.workers)
	for si := range b.states {
		eg.Go(func() error {
			b.rows[si], errs[si] = b.row(si)
			return nil
		})
	}
	_ = eg.Wait()

	for _, e := range errs {
		if e != nil {
			return e
		}
	}

	b.reportUnreduced()
	return nil
}

func (b *builder) row(si int) ([]Entry, error) {
	e := b.checkRestrictions(si)
	if e != nil {
		return nil, e
	}

	s := b.states[si]
	res := make([]Entry, b.nT)
	var cands []candidate
	for t := 0; t < b.nT; t++ {
		cands = cands[:0]
		guarded, split := false, false
		for _, it := range s.items {
			p := &b.prods[it.prod]
			c := b.ctxs[it.ctx]
			var kind ActionKind
			if it.dot < len(p.rhs) {
				if p.rhs[it.dot] != t || contains(c.ex, t) {
					continue
				}
				kind = ShiftAction
			} else {
				// ex survives only on empty productions starting an excluded base.
				if !it.follow.Test(uint(t)) || contains(c.ex, t) {
					continue
				}
				kind = ReduceAction
				if p.lhs < 0 {
					kind = AcceptAction
				}
			}

			if contains(c.la, t) {
				guarded = true
				continue
			}
			split = split || c.noLT
			cands = append(cands, candidate{kind, it.prod, c.noLT})
		}
		if len(cands) == 0 {
			continue
		}

		a0, e := b.resolve(si, t, cands, s.shift0[t], false)
		if e != nil {
			return nil, e
		}
		entry := Entry{Action: a0, Alt: a0}
		if split {
			a1, e := b.resolve(si, t, cands, s.shift1[t], true)
			if e != nil {
				return nil, e
			}
			if a1 != a0 {
				entry = Entry{Cond: LineTerminatorSplit, Action: a0, Alt: a1}
			}
		}
		if guarded && entry.Cond == Unconditional {
			entry.Cond = LookaheadGuarded
		}
		res[t] = entry
	}

	return res, nil
}

// resolve selects single action: shift wins over reduce, earlier production wins among reduces.
// Conflicts between productions with identical right-hand sides are never resolved.
func (b *builder) resolve(si, t int, cands []candidate, shiftTarget int, dropNoLT bool) (Action, error) {
	var shifts, reduces []int
	accept := -1
	for _, c := range cands {
		if dropNoLT && c.noLT {
			continue
		}
		switch c.kind {
		case ShiftAction:
			shifts = append(shifts, c.prod)
		case ReduceAction:
			reduces = append(reduces, c.prod)
		default:
			accept = b.prods[c.prod].goal
		}
	}
	slices.Sort(reduces)
	reduces = slices.Compact(reduces)

	if accept >= 0 {
		if len(reduces) > 0 {
			return Action{}, b.conflictError(si, t, ReduceReduceConflict, reduces)
		}
		return Action{AcceptAction, accept}, nil
	}

	if len(shifts) > 0 {
		if len(reduces) > 0 && b.cfg.strict {
			prods := append(reduces, shifts...)
			slices.Sort(prods)
			return Action{}, b.conflictError(si, t, ShiftReduceConflict, slices.Compact(prods))
		}
		return Action{ShiftAction, shiftTarget}, nil
	}

	switch {
	case len(reduces) == 0:
		return Action{}, nil
	case len(reduces) > 1 && (b.cfg.strict || b.sameRHS(reduces)):
		return Action{}, b.conflictError(si, t, ReduceReduceConflict, reduces)
	default:
		return Action{ReduceAction, reduces[0]}, nil
	}
}

func (b *builder) sameRHS(prods []int) bool {
	for i, pi := range prods {
		for _, pj := range prods[i+1:] {
			if slices.Equal(b.prods[pi].rhs, b.prods[pj].rhs) {
				return true
			}
		}
	}
	return false
}

// checkRestrictions finds restricted positions that no token can pass.
func (b *builder) checkRestrictions(si int) error {
	for _, it := range b.states[si].items {
		p := &b.prods[it.prod]
		g := p.guards[it.dot]
		if !g.noLT {
			continue
		}

		if it.dot < len(p.rhs) {
			t := p.rhs[it.dot]
			if t < b.nT && (contains(g.la, t) || contains(g.ex, t)) {
				return b.conflictError(si, t, RestrictionConflict, []int{it.prod})
			}
		} else if minus(it.follow, g.la).None() {
			return b.conflictError(si, b.eof, RestrictionConflict, []int{it.prod})
		}
	}
	return nil
}

func (b *builder) reportUnreduced() {
	reduced := make([]bool, b.nUser)
	for _, row := range b.rows {
		for _, entry := range row {
			for _, a := range [...]Action{entry.Action, entry.Alt} {
				if a.Kind == ReduceAction {
					reduced[a.Target] = true
				}
			}
		}
	}

	for pi, r := range reduced {
		if !r {
			b.logger.Warn("production is never reduced", zap.String("production", b.formatProduction(pi)))
		}
	}
}

func (b *builder) result() *Automaton {
	a := newAutomaton(b.terminals, b.nonterminals)
	a.productions = make([]Production, b.nUser)
	for pi := range a.productions {
		p := &b.prods[pi]
		symbols := make([]string, len(p.rhs))
		for i, sym := range p.rhs {
			symbols[i] = b.symbolName(sym)
		}
		a.productions[pi] = Production{
			LHS:     p.lhs,
			Symbols: symbols,
			Arity:   len(p.rhs),
			Reducer: p.reducer,
			ID:      p.id,
		}
	}

	a.goals = make([]Goal, len(b.goals))
	for gi, name := range b.goals {
		a.goals[gi] = Goal{name, gi}
	}

	a.actions = b.rows
	a.gotos = make([][]int, len(b.states))
	for si, s := range b.states {
		a.gotos[si] = s.gotos
	}
	return a
}
