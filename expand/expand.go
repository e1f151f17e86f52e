// Package expand validates grammar model and expands it into a form suitable for automaton builder:
// parameterized nonterminals are monomorphized, optional symbols are desugared,
// literals, exclusions and lookahead assertions are resolved to terminal names.
package expand

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ava12/lrx/grammar"
	"github.com/ava12/lrx/log"
	"github.com/ava12/lrx/source"
)

// Expand validates grammar and returns new expanded grammar, g is not modified.
// Returns g itself if it is already expanded.
// All found errors are returned combined with multierr, every one is *lrx.Error.
func Expand(g *grammar.Grammar) (*grammar.Grammar, error) {
	if g.Expanded {
		return g, nil
	}

	x := newExpander(g)
	e := x.resolve()
	if e != nil {
		return nil, e
	}

	e = x.monomorphize()
	if e != nil {
		return nil, e
	}

	return x.result, nil
}

// VariantName returns concrete nonterminal name for parameter values, e.g. "Expr[~In,+Yield]".
func VariantName(name string, params []string, values []bool) string {
	if len(params) == 0 {
		return name
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('[')
	for i, p := range params {
		if i > 0 {
			sb.WriteByte(',')
		}
		if values[i] {
			sb.WriteByte(byte(grammar.ArgTrue))
		} else {
			sb.WriteByte(byte(grammar.ArgFalse))
		}
		sb.WriteString(p)
	}
	sb.WriteByte(']')
	return sb.String()
}

// assignment returns v-th parameter assignment, false before true, first parameter most significant.
func assignment(k, v int) []bool {
	res := make([]bool, k)
	for i := range res {
		res[i] = (v>>(k-1-i))&1 != 0
	}
	return res
}

type expander struct {
	src     *grammar.Grammar
	result  *grammar.Grammar
	called  map[string]bool
	singles map[string][]string
	logger  log.Logger
}

func newExpander(g *grammar.Grammar) *expander {
	return &expander{
		src:     g,
		result:  grammar.New(),
		called:  make(map[string]bool),
		singles: make(map[string][]string),
		logger:  log.Named("expand"),
	}
}

func (x *expander) resolve() error {
	goals := x.src.GoalNames()
	if len(goals) == 0 {
		return noGoalError()
	}

	var errs error
	for _, name := range goals {
		nt, has := x.src.Nonterminal(name)
		if !has {
			errs = multierr.Append(errs, undefinedSymbolError(source.Pos{}, "goal", name))
		} else if len(nt.Params) > 0 {
			errs = multierr.Append(errs, goalParamsError(name))
		}
	}

	for i := range x.src.Nonterminals {
		nt := &x.src.Nonterminals[i]
		for _, p := range nt.Productions {
			errs = multierr.Append(errs, x.resolveProduction(nt, p))
		}
	}

	return errs
}

func (x *expander) resolveProduction(nt *grammar.Nonterminal, p grammar.Production) error {
	var errs error
	if p.Guard != nil && nt.ParamIndex(p.Guard.Param) < 0 {
		errs = undefinedParamError(p.Pos, nt.Name, p.Guard.Param)
	}

	for _, s := range p.Symbols {
		errs = multierr.Append(errs, x.resolveSymbol(nt, p.Pos, s))
	}

	if p.Reducer != nil {
		arity := p.Arity()
		if index := p.Reducer.MaxMatch(); index >= arity {
			errs = multierr.Append(errs, matchIndexError(p.Pos, nt.Name, index, arity))
		}
	}

	return errs
}

func (x *expander) resolveRef(nt *grammar.Nonterminal, pos source.Pos, r grammar.Ref) error {
	if x.src.TerminalIndex(r.Name) >= 0 {
		if len(r.Args) > 0 {
			return arityError(pos, nt.Name, r.Name, 0, len(r.Args))
		}
		return nil
	}

	callee, has := x.src.Nonterminal(r.Name)
	if !has {
		return undefinedSymbolError(pos, nt.Name, r.Name)
	}

	if len(r.Args) != len(callee.Params) {
		return arityError(pos, nt.Name, r.Name, len(callee.Params), len(r.Args))
	}

	var errs error
	seen := make(map[string]bool, len(r.Args))
	for _, a := range r.Args {
		if callee.ParamIndex(a.Name) < 0 || seen[a.Name] {
			errs = multierr.Append(errs, argNameError(pos, nt.Name, r.Name, a.Name))
		}
		seen[a.Name] = true
		if a.Sigil == grammar.ArgPass && nt.ParamIndex(a.Name) < 0 {
			errs = multierr.Append(errs, passThroughError(pos, nt.Name, a.Name))
		}
	}
	return errs
}

func (x *expander) resolveLit(nt *grammar.Nonterminal, pos source.Pos, l grammar.Lit) error {
	if _, has := x.src.LiteralTerminal(l.Text); has {
		return nil
	}
	return undefinedSymbolError(pos, nt.Name, l.String())
}

// resolveTerm resolves terminal or nonterminal reference given as Ref or Lit.
func (x *expander) resolveTerm(nt *grammar.Nonterminal, pos source.Pos, s grammar.Symbol) error {
	switch s := s.(type) {
	case grammar.Ref:
		return x.resolveRef(nt, pos, s)
	case grammar.Lit:
		return x.resolveLit(nt, pos, s)
	default:
		return unsupportedSymbolError(pos, nt.Name, s)
	}
}

func (x *expander) resolveSymbol(nt *grammar.Nonterminal, pos source.Pos, s grammar.Symbol) error {
	switch s := s.(type) {
	case grammar.Ref, grammar.Lit:
		return x.resolveTerm(nt, pos, s)

	case grammar.Optional:
		return x.resolveTerm(nt, pos, s.Inner)

	case grammar.Exclusion:
		errs := x.resolveTerm(nt, pos, s.Base)
		for _, ex := range s.Except {
			if ex.Kind == grammar.ExcludeRange {
				from, fl := utf8.DecodeRuneInString(ex.From)
				to, tl := utf8.DecodeRuneInString(ex.To)
				if fl == 0 || fl != len(ex.From) || tl == 0 || tl != len(ex.To) || from > to {
					errs = multierr.Append(errs, exclusionRangeError(pos, nt.Name, ex.From, ex.To))
				}
			} else {
				errs = multierr.Append(errs, x.resolveTerm(nt, pos, ex.Symbol))
			}
		}
		return errs

	case grammar.Lookahead:
		if s.Op == "" {
			return unsupportedSymbolError(pos, nt.Name, s)
		}

		if s.Nonterminal != "" {
			callee, has := x.src.Nonterminal(s.Nonterminal)
			if !has {
				return undefinedSymbolError(pos, nt.Name, s.Nonterminal)
			}
			if len(callee.Params) > 0 {
				return arityError(pos, nt.Name, s.Nonterminal, 0, len(callee.Params))
			}
			return nil
		}

		var errs error
		for _, seq := range s.Seqs {
			if len(seq) != 1 {
				errs = multierr.Append(errs, lookaheadLengthError(pos, nt.Name, len(seq)))
				continue
			}

			e := x.resolveTerm(nt, pos, seq[0])
			if e == nil {
				if r, isRef := seq[0].(grammar.Ref); isRef && x.src.TerminalIndex(r.Name) < 0 {
					e = lookaheadSetError(pos, nt.Name, r.Name)
				}
			}
			errs = multierr.Append(errs, e)
		}
		return errs

	case grammar.NoLineTerminator, grammar.Prose:
		return nil

	default:
		return unsupportedSymbolError(pos, nt.Name, s)
	}
}

func (x *expander) monomorphize() error {
	for _, t := range x.src.Terminals {
		x.result.AddTerminal(t)
	}
	x.result.Goals = append([]string(nil), x.src.GoalNames()...)
	for _, name := range x.result.Goals {
		x.called[name] = true
	}

	var errs error
	for i := range x.src.Nonterminals {
		nt := &x.src.Nonterminals[i]
		k := len(nt.Params)
		for v := 0; v < 1<<k; v++ {
			values := assignment(k, v)
			res := grammar.Nonterminal{
				Name: VariantName(nt.Name, nt.Params, values),
				Type: nt.Type,
				Pos:  nt.Pos,
			}
			for _, p := range nt.Productions {
				if p.Guard != nil && values[nt.ParamIndex(p.Guard.Param)] != p.Guard.Value {
					continue
				}

				ps, e := x.desugar(nt, values, p)
				errs = multierr.Append(errs, e)
				res.Productions = append(res.Productions, ps...)
			}
			x.result.AddNonterminal(res)
		}
		if k > 0 {
			x.logger.Debug("nonterminal expanded", zap.String("nonterminal", nt.Name), zap.Int("variants", 1<<k))
		}
	}
	if errs != nil {
		return errs
	}

	for i := range x.src.Nonterminals {
		nt := &x.src.Nonterminals[i]
		if len(nt.Params) == 0 {
			continue
		}

		for v := 0; v < 1<<len(nt.Params); v++ {
			name := VariantName(nt.Name, nt.Params, assignment(len(nt.Params), v))
			if !x.called[name] {
				x.logger.Debug("variant is not referenced", zap.String("nonterminal", name))
			}
		}
	}

	x.result.Expanded = true
	return nil
}

// calleeValues returns parameter values for nonterminal call made from variant of nt.
func calleeValues(nt *grammar.Nonterminal, values []bool, callee *grammar.Nonterminal, r grammar.Ref) []bool {
	res := make([]bool, len(callee.Params))
	for _, a := range r.Args {
		i := callee.ParamIndex(a.Name)
		switch a.Sigil {
		case grammar.ArgTrue:
			res[i] = true
		case grammar.ArgPass:
			res[i] = values[nt.ParamIndex(a.Name)]
		}
	}
	return res
}

// concreteName returns terminal name or nonterminal variant name for Ref or Lit.
func (x *expander) concreteName(nt *grammar.Nonterminal, values []bool, s grammar.Symbol) string {
	if l, isLit := s.(grammar.Lit); isLit {
		t, _ := x.src.LiteralTerminal(l.Text)
		return t.Name
	}

	r := s.(grammar.Ref)
	callee, has := x.src.Nonterminal(r.Name)
	if !has {
		return r.Name
	}
	return VariantName(callee.Name, callee.Params, calleeValues(nt, values, callee, r))
}

func defaultReducer(nt *grammar.Nonterminal, arity int) grammar.Expr {
	if arity == 1 {
		return grammar.Match(0)
	}

	var args []grammar.Expr
	for i := 0; i < arity; i++ {
		args = append(args, grammar.Match(i))
	}
	return grammar.Call(nt.Name, args...)
}

// desugar converts production of nt variant to concrete productions, one per optional symbols combination.
func (x *expander) desugar(nt *grammar.Nonterminal, values []bool, p grammar.Production) ([]grammar.Production, error) {
	for _, s := range p.Symbols {
		if prose, isProse := s.(grammar.Prose); isProse {
			x.logger.Warn("dropping prose production",
				zap.String("nonterminal", nt.Name),
				zap.String("prose", prose.Text))
			return nil, nil
		}
	}

	arity := p.Arity()
	var reducer grammar.Expr
	if p.Reducer == nil {
		reducer = defaultReducer(nt, arity)
	} else {
		reducer = *p.Reducer
	}

	var errs error
	symbols := make([]grammar.Symbol, 0, len(p.Symbols))
	optional := make([]bool, arity)
	optionals := 0
	vi := 0
	for _, s := range p.Symbols {
		cs, e := x.concreteSymbol(nt, values, p.Pos, s)
		errs = multierr.Append(errs, e)
		symbols = append(symbols, cs)
		if grammar.ProducesValue(s) {
			if _, isOpt := s.(grammar.Optional); isOpt {
				optional[vi] = true
				optionals++
			}
			vi++
		}
	}
	if errs != nil {
		return nil, errs
	}

	res := make([]grammar.Production, 0, 1<<optionals)
	newIndex := make([]int, arity)
	for mask := 0; mask < 1<<optionals; mask++ {
		var out []grammar.Symbol
		vi, oi, ni := 0, 0, 0
		for _, s := range symbols {
			if !grammar.ProducesValue(s) {
				out = append(out, s)
				continue
			}

			if opt, isOpt := s.(grammar.Optional); isOpt {
				absent := (mask>>(optionals-1-oi))&1 != 0
				oi++
				if absent {
					newIndex[vi] = -1
					vi++
					continue
				}
				s = opt.Inner
			}

			out = append(out, s)
			newIndex[vi] = ni
			vi++
			ni++
		}

		r := reducer.Map(func(i int) grammar.Expr {
			switch {
			case !optional[i]:
				return grammar.Match(newIndex[i])
			case newIndex[i] < 0:
				return grammar.Absent()
			default:
				return grammar.Present(grammar.Match(newIndex[i]))
			}
		})
		res = append(res, grammar.Production{Symbols: out, Reducer: &r, ID: p.ID, Pos: p.Pos})
	}

	return res, nil
}

func (x *expander) concreteSymbol(nt *grammar.Nonterminal, values []bool, pos source.Pos, s grammar.Symbol) (grammar.Symbol, error) {
	switch s := s.(type) {
	case grammar.Ref, grammar.Lit:
		name := x.concreteName(nt, values, s)
		x.called[name] = true
		return grammar.Ref{Name: name}, nil

	case grammar.Optional:
		name := x.concreteName(nt, values, s.Inner)
		x.called[name] = true
		return grammar.Optional{Inner: grammar.Ref{Name: name}}, nil

	case grammar.Exclusion:
		name := x.concreteName(nt, values, s.Base)
		x.called[name] = true
		ts, e := x.excludedTerminals(nt, values, pos, s.Except)
		return grammar.Exclusion{Base: grammar.Ref{Name: name}, Terminals: ts}, e

	case grammar.Lookahead:
		return x.normalizeLookahead(nt, pos, s)

	default:
		return s, nil
	}
}

func (x *expander) excludedTerminals(nt *grammar.Nonterminal, values []bool, pos source.Pos, except []grammar.Excluded) ([]string, error) {
	var res []string
	seen := make(map[string]bool)
	add := func(names ...string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				res = append(res, n)
			}
		}
	}

	for _, ex := range except {
		if ex.Kind == grammar.ExcludeRange {
			add(x.rangeTerminals(ex.From, ex.To)...)
			continue
		}

		name := x.concreteName(nt, values, ex.Symbol)
		if x.src.TerminalIndex(name) >= 0 {
			add(name)
			continue
		}

		r := ex.Symbol.(grammar.Ref)
		callee, _ := x.src.Nonterminal(r.Name)
		ts, valid := x.singleTerminals(callee, calleeValues(nt, values, callee, r))
		if !valid {
			return nil, exclusionSetError(pos, nt.Name, r.String())
		}
		add(ts...)
	}

	return res, nil
}

// rangeTerminals returns single rune literal terminals within range, in declaration order.
func (x *expander) rangeTerminals(from, to string) []string {
	f, _ := utf8.DecodeRuneInString(from)
	t, _ := utf8.DecodeRuneInString(to)
	var res []string
	for _, term := range x.src.Terminals {
		r, l := utf8.DecodeRuneInString(term.Literal)
		if l > 0 && l == len(term.Literal) && r >= f && r <= t {
			res = append(res, term.Name)
		}
	}
	return res
}

// singleTerminals returns terminals derived by nonterminal variant if every its derivation is a single terminal.
// Recursive references contribute nothing.
func (x *expander) singleTerminals(nt *grammar.Nonterminal, values []bool) ([]string, bool) {
	name := VariantName(nt.Name, nt.Params, values)
	if ts, has := x.singles[name]; has {
		return ts, ts != nil
	}

	x.singles[name] = []string{}
	var res []string
	seen := make(map[string]bool)
	for _, p := range nt.Productions {
		if p.Guard != nil && values[nt.ParamIndex(p.Guard.Param)] != p.Guard.Value {
			continue
		}

		var value grammar.Symbol
		for _, s := range p.Symbols {
			switch s.(type) {
			case grammar.Ref, grammar.Lit:
				if value != nil {
					x.singles[name] = nil
					return nil, false
				}
				value = s
			case grammar.NoLineTerminator, grammar.Lookahead:
			default:
				x.singles[name] = nil
				return nil, false
			}
		}
		if value == nil {
			x.singles[name] = nil
			return nil, false
		}

		var names []string
		tn := x.concreteName(nt, values, value)
		if x.src.TerminalIndex(tn) >= 0 {
			names = []string{tn}
		} else {
			r := value.(grammar.Ref)
			callee, _ := x.src.Nonterminal(r.Name)
			ts, valid := x.singleTerminals(callee, calleeValues(nt, values, callee, r))
			if !valid {
				x.singles[name] = nil
				return nil, false
			}
			names = ts
		}

		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				res = append(res, n)
			}
		}
	}

	if res == nil {
		res = []string{}
	}
	x.singles[name] = res
	return res, true
}

func (x *expander) normalizeLookahead(nt *grammar.Nonterminal, pos source.Pos, l grammar.Lookahead) (grammar.Symbol, error) {
	res := grammar.Lookahead{Negative: l.Op != grammar.LookaheadEq}
	if l.Nonterminal != "" {
		callee, _ := x.src.Nonterminal(l.Nonterminal)
		ts, valid := x.singleTerminals(callee, nil)
		if !valid {
			return nil, lookaheadSetError(pos, nt.Name, l.Nonterminal)
		}
		res.Tokens = append([]string(nil), ts...)
		return res, nil
	}

	for _, seq := range l.Seqs {
		res.Tokens = append(res.Tokens, x.concreteName(nt, nil, seq[0]))
	}
	return res, nil
}
