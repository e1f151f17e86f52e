// Package tables contains flat persisted form of LR automaton.
//
// Action cells are packed into int32 values: 0 is error, s+1 is shift to state s,
// -(p+1) is reduce by production p, Accept is accept.
// Cells depending on line terminator presence hold the "not preceded" action,
// the "preceded" one is stored in Splits.
package tables

import (
	"math"
	"sort"

	"github.com/ava12/lrx/automaton"
	"github.com/ava12/lrx/grammar"
)

// Accept is packed accept action.
const Accept int32 = math.MinInt32

// NoState is empty goto cell.
const NoState int32 = -1

// Goal is a goal nonterminal with its start state.
type Goal struct {
	Name  string `json:"name"`
	State int    `json:"state"`
}

// Production describes reduction.
type Production struct {
	// LHS is nonterminal index.
	LHS     int          `json:"lhs"`
	Arity   int          `json:"arity"`
	Reducer grammar.Expr `json:"reducer"`
	ID      string       `json:"id,omitempty"`
}

// Split is an action for token preceded by line terminator.
type Split struct {
	State    int   `json:"state"`
	Terminal int   `json:"terminal"`
	Action   int32 `json:"action"`
}

// Tables is a persisted automaton. Splits are sorted by state and terminal.
type Tables struct {
	// Terminals contains terminal names, the last one is automaton.EndOfInput.
	Terminals    []string     `json:"terminals"`
	Nonterminals []string     `json:"nonterminals"`
	Goals        []Goal       `json:"goals"`
	Productions  []Production `json:"productions"`
	Actions      [][]int32    `json:"actions"`
	Splits       []Split      `json:"splits,omitempty"`
	Gotos        [][]int32    `json:"gotos"`
}

// PackAction converts action to table cell.
func PackAction(a automaton.Action) int32 {
	switch a.Kind {
	case automaton.ShiftAction:
		return int32(a.Target + 1)
	case automaton.ReduceAction:
		return -int32(a.Target + 1)
	case automaton.AcceptAction:
		return Accept
	default:
		return 0
	}
}

// UnpackAction converts table cell to action, Target of accept action is always 0.
func UnpackAction(cell int32) automaton.Action {
	switch {
	case cell == 0:
		return automaton.Action{}
	case cell == Accept:
		return automaton.Action{Kind: automaton.AcceptAction}
	case cell > 0:
		return automaton.Action{Kind: automaton.ShiftAction, Target: int(cell - 1)}
	default:
		return automaton.Action{Kind: automaton.ReduceAction, Target: int(-cell - 1)}
	}
}

// Emit copies automaton to tables.
func Emit(a *automaton.Automaton) *Tables {
	t := &Tables{
		Terminals:    append([]string(nil), a.Terminals()...),
		Nonterminals: append([]string(nil), a.Nonterminals()...),
		Actions:      make([][]int32, a.NumStates()),
		Gotos:        make([][]int32, a.NumStates()),
	}

	for _, g := range a.Goals() {
		t.Goals = append(t.Goals, Goal{g.Name, g.State})
	}
	for _, p := range a.Productions() {
		t.Productions = append(t.Productions, Production{p.LHS, p.Arity, p.Reducer, p.ID})
	}

	for s := range t.Actions {
		row := make([]int32, len(t.Terminals))
		for ti := range row {
			entry := a.Action(s, ti)
			row[ti] = PackAction(entry.Action)
			if entry.Cond == automaton.LineTerminatorSplit {
				t.Splits = append(t.Splits, Split{s, ti, PackAction(entry.Alt)})
			}
		}
		t.Actions[s] = row

		gotos := make([]int32, len(t.Nonterminals))
		for nt := range gotos {
			gotos[nt] = int32(a.Goto(s, nt))
		}
		t.Gotos[s] = gotos
	}

	return t
}

// NumStates returns the number of states.
func (t *Tables) NumStates() int {
	return len(t.Actions)
}

// EndOfInput returns end of input terminal index.
func (t *Tables) EndOfInput() int {
	return len(t.Terminals) - 1
}

// Start returns start state of goal.
func (t *Tables) Start(goal string) (int, bool) {
	for _, g := range t.Goals {
		if g.Name == goal {
			return g.State, true
		}
	}
	return 0, false
}

// Action returns packed action for token with given line terminator fact.
func (t *Tables) Action(state, terminal int, lineTerminatorBefore bool) int32 {
	if lineTerminatorBefore {
		i := t.findSplit(state, terminal)
		if i < len(t.Splits) && t.Splits[i].State == state && t.Splits[i].Terminal == terminal {
			return t.Splits[i].Action
		}
	}
	return t.Actions[state][terminal]
}

func (t *Tables) findSplit(state, terminal int) int {
	return sort.Search(len(t.Splits), func(i int) bool {
		s := t.Splits[i]
		return s.State > state || (s.State == state && s.Terminal >= terminal)
	})
}

// Goto returns state entered after reduction to nonterminal nt or -1.
func (t *Tables) Goto(state, nt int) int {
	return int(t.Gotos[state][nt])
}

// Expected returns names of terminals having non-error action in state, in terminal order.
func (t *Tables) Expected(state int, lineTerminatorBefore bool) []string {
	var res []string
	for ti, name := range t.Terminals {
		if t.Action(state, ti, lineTerminatorBefore) != 0 {
			res = append(res, name)
		}
	}
	return res
}

// Validate checks that all references are in range.
func (t *Tables) Validate() error {
	nStates := len(t.Actions)
	nTerminals := len(t.Terminals)
	nNonterminals := len(t.Nonterminals)
	if nTerminals == 0 || t.Terminals[nTerminals-1] != automaton.EndOfInput {
		return inconsistentError("terminal list must end with %s", automaton.EndOfInput)
	}
	if len(t.Gotos) != nStates {
		return inconsistentError("%d action rows, %d goto rows", nStates, len(t.Gotos))
	}
	if len(t.Goals) == 0 {
		return inconsistentError("no goals")
	}

	for _, g := range t.Goals {
		if g.State < 0 || g.State >= nStates {
			return inconsistentError("goal %s refers to state %d", g.Name, g.State)
		}
	}

	for pi, p := range t.Productions {
		if p.LHS < 0 || p.LHS >= nNonterminals {
			return inconsistentError("production #%d refers to nonterminal %d", pi, p.LHS)
		}
		if p.Reducer.MaxMatch() >= p.Arity {
			return inconsistentError("production #%d reducer %s refers beyond matched values", pi, p.Reducer)
		}
	}

	for s, row := range t.Actions {
		if len(row) != nTerminals {
			return inconsistentError("action row %d has %d cells", s, len(row))
		}
		for _, cell := range row {
			e := t.validateCell(s, cell)
			if e != nil {
				return e
			}
		}

		if len(t.Gotos[s]) != nNonterminals {
			return inconsistentError("goto row %d has %d cells", s, len(t.Gotos[s]))
		}
		for _, target := range t.Gotos[s] {
			if target < NoState || int(target) >= nStates {
				return inconsistentError("goto row %d refers to state %d", s, target)
			}
		}
	}

	for i, split := range t.Splits {
		if split.State < 0 || split.State >= nStates || split.Terminal < 0 || split.Terminal >= nTerminals {
			return inconsistentError("split #%d is out of range", i)
		}
		if i > 0 {
			prev := t.Splits[i-1]
			if prev.State > split.State || (prev.State == split.State && prev.Terminal >= split.Terminal) {
				return inconsistentError("splits are not sorted")
			}
		}
		e := t.validateCell(split.State, split.Action)
		if e != nil {
			return e
		}
	}

	return nil
}

func (t *Tables) validateCell(state int, cell int32) error {
	a := UnpackAction(cell)
	switch a.Kind {
	case automaton.ShiftAction:
		if a.Target >= len(t.Actions) {
			return inconsistentError("state %d shifts to state %d", state, a.Target)
		}
	case automaton.ReduceAction:
		if a.Target >= len(t.Productions) {
			return inconsistentError("state %d reduces by production #%d", state, a.Target)
		}
	}
	return nil
}
