package automaton

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/exp/slices"

	"github.com/ava12/lrx/grammar"
	"github.com/ava12/lrx/internal/queue"
	"github.com/ava12/lrx/log"
)

// guard holds restrictions on the next consumed terminal.
type guard struct {
	// la contains terminals forbidden by lookahead assertions.
	la *bitset.BitSet
	// ex contains terminals forbidden by exclusions.
	ex   *bitset.BitSet
	noLT bool
}

type production struct {
	// lhs is -1 for augmented goal production.
	lhs  int
	goal int
	// rhs contains symbol ids: terminal index or nT + nonterminal index.
	rhs []int
	// guards[i] applies to the terminal consumed at rhs[i], guards[len(rhs)] applies to reduce lookahead.
	guards  []guard
	reducer grammar.Expr
	id      string
}

type item struct {
	prod, dot int
	// ctx is an index of interned guard applied to the next terminal.
	ctx    int
	follow *bitset.BitSet
}

type itemKey struct {
	prod, dot, ctx int
}

func (it item) key() itemKey {
	return itemKey{it.prod, it.dot, it.ctx}
}

type state struct {
	kernel []item
	items  []item
	// shift0 and shift1 contain shift targets for tokens not preceded and preceded by line terminator.
	shift0 []int
	shift1 []int
	gotos  []int
}

type builder struct {
	cfg    config
	logger log.Logger

	terminals    []string
	nonterminals []string
	goals        []string
	nT           int
	eof          int

	prods   []production
	nUser   int
	ntProds [][]int

	first    []*bitset.BitSet
	nullable []bool

	ctxs     []guard
	ctxIndex map[string]int

	states     []*state
	stateIndex map[string]int
	queue      *queue.Queue[int]
	rows       [][]Entry
}

func newBuilder(g *grammar.Grammar, cfg config) *builder {
	b := &builder{
		cfg:        cfg,
		logger:     log.Named("automaton"),
		ctxIndex:   make(map[string]int),
		stateIndex: make(map[string]int),
		queue:      queue.New[int](),
	}

	for _, t := range g.Terminals {
		b.terminals = append(b.terminals, t.Name)
	}
	b.eof = len(b.terminals)
	b.terminals = append(b.terminals, EndOfInput)
	b.nT = len(b.terminals)

	b.ntProds = make([][]int, len(g.Nonterminals))
	for ni, nt := range g.Nonterminals {
		b.nonterminals = append(b.nonterminals, nt.Name)
		for _, p := range nt.Productions {
			b.ntProds[ni] = append(b.ntProds[ni], len(b.prods))
			b.prods = append(b.prods, b.convert(g, ni, p))
		}
	}
	b.nUser = len(b.prods)

	for gi, name := range g.GoalNames() {
		b.goals = append(b.goals, name)
		b.prods = append(b.prods, production{
			lhs:    -1,
			goal:   gi,
			rhs:    []int{b.nT + g.NonterminalIndex(name)},
			guards: make([]guard, 2),
		})
	}

	b.context(guard{})
	b.findFirstSets()
	return b
}

func (b *builder) symbolID(g *grammar.Grammar, name string) int {
	i := g.TerminalIndex(name)
	if i >= 0 {
		return i
	}
	return b.nT + g.NonterminalIndex(name)
}

func (b *builder) symbolName(sym int) string {
	if sym < b.nT {
		return b.terminals[sym]
	}
	return b.nonterminals[sym-b.nT]
}

func (b *builder) terminalSet(g *grammar.Grammar, names []string) *bitset.BitSet {
	res := bitset.New(uint(b.nT))
	for _, name := range names {
		res.Set(uint(g.TerminalIndex(name)))
	}
	return res
}

// convert moves assertions and markers of expanded production to guards of the following value symbols.
func (b *builder) convert(g *grammar.Grammar, lhs int, p grammar.Production) production {
	res := production{lhs: lhs, reducer: *p.Reducer, id: p.ID}
	var pending guard
	add := func(name string) {
		res.rhs = append(res.rhs, b.symbolID(g, name))
		res.guards = append(res.guards, pending)
		pending = guard{}
	}

	for _, s := range p.Symbols {
		switch s := s.(type) {
		case grammar.Ref:
			add(s.Name)
		case grammar.Exclusion:
			pending.ex = union(pending.ex, b.terminalSet(g, s.Terminals))
			add(s.Base.(grammar.Ref).Name)
		case grammar.Lookahead:
			la := b.terminalSet(g, s.Tokens)
			if !s.Negative {
				la = la.Complement()
			}
			pending.la = union(pending.la, la)
		case grammar.NoLineTerminator:
			pending.noLT = true
		}
	}
	res.guards = append(res.guards, pending)
	return res
}

func (b *builder) formatProduction(pi int) string {
	p := &b.prods[pi]
	var name string
	if p.lhs < 0 {
		name = b.goals[p.goal] + "'"
	} else {
		name = b.nonterminals[p.lhs]
	}

	body := "[empty]"
	if len(p.rhs) > 0 {
		names := make([]string, len(p.rhs))
		for i, sym := range p.rhs {
			names[i] = b.symbolName(sym)
		}
		body = strings.Join(names, " ")
	}

	res := fmt.Sprintf("#%d %s -> %s", pi, name, body)
	if p.id != "" {
		res += " @" + p.id
	}
	return res
}

// context returns interned guard index.
func (b *builder) context(g guard) int {
	key := setKey(g.la) + "|" + setKey(g.ex)
	if g.noLT {
		key += "|n"
	}
	i, has := b.ctxIndex[key]
	if !has {
		i = len(b.ctxs)
		b.ctxs = append(b.ctxs, g)
		b.ctxIndex[key] = i
	}
	return i
}

func (b *builder) mergeContext(c int, g guard) int {
	cg := b.ctxs[c]
	return b.context(guard{
		la:   union(cg.la, g.la),
		ex:   union(cg.ex, g.ex),
		noLT: cg.noLT || g.noLT,
	})
}

func (b *builder) findFirstSets() {
	n := len(b.nonterminals)
	b.first = make([]*bitset.BitSet, n)
	b.nullable = make([]bool, n)
	for i := range b.first {
		b.first[i] = bitset.New(uint(b.nT))
	}

	for progress := true; progress; {
		progress = false
		for pi := 0; pi < b.nUser; pi++ {
			p := &b.prods[pi]
			if !b.nullable[p.lhs] && b.nullableFrom(p, 0) {
				b.nullable[p.lhs] = true
				progress = true
			}

			f := b.first[p.lhs]
			before := f.Count()
			f.InPlaceUnion(b.firstSeq(p, 0, nil))
			progress = progress || f.Count() != before
		}
	}
}

func (b *builder) nullableFrom(p *production, from int) bool {
	for _, sym := range p.rhs[from:] {
		if sym < b.nT || !b.nullable[sym-b.nT] {
			return false
		}
	}
	return true
}

// firstSeq returns terminals that can be consumed first starting at p.rhs[from],
// tail is used if the rest of production is nullable. Lookahead and exclusion guards are respected.
func (b *builder) firstSeq(p *production, from int, tail *bitset.BitSet) *bitset.BitSet {
	res := bitset.New(uint(b.nT))
	var pending *bitset.BitSet
	for i := from; i < len(p.rhs); i++ {
		pending = union(pending, p.guards[i].la)
		sym := p.rhs[i]
		if sym < b.nT {
			if !contains(pending, sym) && !contains(p.guards[i].ex, sym) {
				res.Set(uint(sym))
			}
			return res
		}

		nt := sym - b.nT
		res.InPlaceUnion(minus(minus(b.first[nt], pending), p.guards[i].ex))
		if !b.nullable[nt] {
			return res
		}
	}

	if tail != nil {
		pending = union(pending, p.guards[len(p.rhs)].la)
		res.InPlaceUnion(minus(tail, pending))
	}
	return res
}

func (b *builder) closure(kernel []item) []item {
	items := make([]item, len(kernel), len(kernel)*2)
	index := make(map[itemKey]int, len(kernel)*2)
	q := queue.New[int]()
	for i, it := range kernel {
		items[i] = item{it.prod, it.dot, it.ctx, it.follow.Clone()}
		index[it.key()] = i
		q.Append(i)
	}

	for !q.IsEmpty() {
		i, _ := q.First()
		it := items[i]
		p := &b.prods[it.prod]
		if it.dot >= len(p.rhs) || p.rhs[it.dot] < b.nT {
			continue
		}

		follow := b.firstSeq(p, it.dot+1, it.follow)
		for _, ci := range b.ntProds[p.rhs[it.dot]-b.nT] {
			child := &b.prods[ci]
			c := b.mergeContext(it.ctx, child.guards[0])
			if len(child.rhs) > 0 && child.rhs[0] < b.nT && contains(b.ctxs[c].ex, child.rhs[0]) {
				continue
			}

			k := itemKey{ci, 0, c}
			j, has := index[k]
			if !has {
				index[k] = len(items)
				q.Append(len(items))
				items = append(items, item{ci, 0, c, follow.Clone()})
				continue
			}

			f := items[j].follow
			before := f.Count()
			f.InPlaceUnion(follow)
			if f.Count() != before {
				q.Append(j)
			}
		}
	}

	return items
}

func compareItems(a, b item) int {
	if a.prod != b.prod {
		return a.prod - b.prod
	}
	if a.dot != b.dot {
		return a.dot - b.dot
	}
	return a.ctx - b.ctx
}

func kernelKey(kernel []item) string {
	var sb strings.Builder
	for _, it := range kernel {
		sb.WriteString(strconv.Itoa(it.prod))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(it.dot))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(it.ctx))
		sb.WriteString(it.follow.String())
		sb.WriteByte(';')
	}
	return sb.String()
}

// addState returns index of state with given kernel, new states are queued for expansion.
func (b *builder) addState(kernel []item) int {
	slices.SortFunc(kernel, compareItems)
	key := kernelKey(kernel)
	if i, has := b.stateIndex[key]; has {
		return i
	}

	i := len(b.states)
	b.states = append(b.states, &state{kernel: kernel})
	b.stateIndex[key] = i
	b.queue.Append(i)
	return i
}

// advance returns kernel of items passing filter with the dot moved over sym.
func (b *builder) advance(items []item, sym int, filter func(it item) bool) []item {
	var res []item
	index := make(map[itemKey]int)
	for _, it := range items {
		p := &b.prods[it.prod]
		if it.dot >= len(p.rhs) || p.rhs[it.dot] != sym || !filter(it) {
			continue
		}

		next := item{it.prod, it.dot + 1, b.context(p.guards[it.dot+1]), nil}
		if j, has := index[next.key()]; has {
			res[j].follow.InPlaceUnion(it.follow)
		} else {
			next.follow = it.follow.Clone()
			index[next.key()] = len(res)
			res = append(res, next)
		}
	}
	return res
}

func filled(n, value int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = value
	}
	return res
}

func (b *builder) expandState(si int) {
	s := b.states[si]
	s.items = b.closure(s.kernel)
	s.shift0 = filled(b.nT, -1)
	s.shift1 = filled(b.nT, -1)
	s.gotos = filled(len(b.nonterminals), -1)

	var syms []int
	for _, it := range s.items {
		p := &b.prods[it.prod]
		if it.dot < len(p.rhs) {
			syms = append(syms, p.rhs[it.dot])
		}
	}
	slices.Sort(syms)
	syms = slices.Compact(syms)

	for _, sym := range syms {
		if sym >= b.nT {
			s.gotos[sym-b.nT] = b.addState(b.advance(s.items, sym, func(item) bool { return true }))
			continue
		}

		passes := func(it item) bool {
			c := b.ctxs[it.ctx]
			return !contains(c.la, sym) && !contains(c.ex, sym)
		}
		k0 := b.advance(s.items, sym, passes)
		if len(k0) > 0 {
			s.shift0[sym] = b.addState(k0)
		}
		k1 := b.advance(s.items, sym, func(it item) bool {
			return passes(it) && !b.ctxs[it.ctx].noLT
		})
		if len(k1) > 0 {
			s.shift1[sym] = b.addState(k1)
		}
	}
}

// discover creates all states in breadth-first order, start states go first.
func (b *builder) discover() {
	for gi := range b.goals {
		pi := b.nUser + gi
		b.addState([]item{{
			prod:   pi,
			ctx:    b.context(b.prods[pi].guards[0]),
			follow: setOf(b.nT, b.eof),
		}})
	}

	for !b.queue.IsEmpty() {
		si, _ := b.queue.First()
		b.expandState(si)
	}
}
