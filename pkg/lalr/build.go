package lalr

import (
	"fmt"
	"strings"
)

// prod is a rule with its symbols resolved to ids. Terminals come first
// (0..nterm-1), then nonterminals; production 0 is the augmented start rule.
type prod struct {
	head int
	body []int
	prec precLevel
	rule *Rule
}

type item struct {
	prod int
	dot  int
}

type laItem struct {
	it item
	la bitset
}

type lr0State struct {
	kernel []item
	trans  map[int]int
}

type builder struct {
	g        *Grammar
	nterm    int
	symNames []string
	prods    []prod
	byHead   map[int][]int
	nullable []bool
	first    []bitset // indexed by nonterminal id - nterm
	states   []*lr0State
	hash     int // the '#' marker used while discovering propagation
}

// Build computes the LALR(1) table of g. Conflicts that precedence cannot
// settle are resolved yacc-style (shift over reduce, earlier rule over
// later) and recorded in Table.Conflicts.
func Build(g *Grammar) (*Table, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	b := &builder{g: g, nterm: len(g.terminals), byHead: make(map[int][]int)}
	b.resolveSymbols()
	b.computeFirst()
	b.buildStates()
	la := b.lookaheads()
	return b.table(la), nil
}

func (b *builder) isTerminal(sym int) bool {
	return sym < b.nterm
}

func (b *builder) resolveSymbols() {
	b.symNames = append([]string(nil), b.g.terminals...)
	ids := make(map[string]int)
	for name, id := range b.g.termIndex {
		ids[name] = id
	}
	intern := func(name string) int {
		if id, ok := ids[name]; ok {
			return id
		}
		id := len(b.symNames)
		ids[name] = id
		b.symNames = append(b.symNames, name)
		return id
	}

	for _, r := range b.g.rules {
		intern(r.Head)
	}
	augmented := intern(b.g.start + "'")
	b.prods = append(b.prods, prod{head: augmented, body: []int{ids[b.g.start]}})

	for _, r := range b.g.rules {
		p := prod{head: ids[r.Head], rule: r}
		for _, sym := range r.Body {
			id := ids[sym]
			p.body = append(p.body, id)
			if lvl, ok := b.g.prec[sym]; ok && b.isTerminal(id) {
				p.prec = lvl
			}
		}
		if r.Prec != "" {
			p.prec = b.g.prec[r.Prec]
		}
		b.prods = append(b.prods, p)
	}
	for i, p := range b.prods {
		b.byHead[p.head] = append(b.byHead[p.head], i)
	}
	b.hash = b.nterm
}

func (b *builder) newSet() bitset {
	return newBitset(b.nterm + 1)
}

func (b *builder) computeFirst() {
	nn := len(b.symNames) - b.nterm
	b.nullable = make([]bool, nn)
	b.first = make([]bitset, nn)
	for i := range b.first {
		b.first[i] = b.newSet()
	}

	for changed := true; changed; {
		changed = false
		for _, p := range b.prods {
			h := p.head - b.nterm
			allNullable := true
			for _, sym := range p.body {
				if b.isTerminal(sym) {
					if !b.first[h].has(sym) {
						b.first[h].add(sym)
						changed = true
					}
					allNullable = false
					break
				}
				if b.first[h].union(b.first[sym-b.nterm]) {
					changed = true
				}
				if !b.nullable[sym-b.nterm] {
					allNullable = false
					break
				}
			}
			if allNullable && !b.nullable[h] {
				b.nullable[h] = true
				changed = true
			}
		}
	}
}

// firstOf returns FIRST(seq), plus follow when seq can derive the empty string
func (b *builder) firstOf(seq []int, follow bitset) bitset {
	out := b.newSet()
	for _, sym := range seq {
		if b.isTerminal(sym) {
			out.add(sym)
			return out
		}
		out.union(b.first[sym-b.nterm])
		if !b.nullable[sym-b.nterm] {
			return out
		}
	}
	out.union(follow)
	return out
}

func (b *builder) closure0(kernel []item) []item {
	items := append([]item(nil), kernel...)
	seen := make(map[item]bool, len(kernel))
	for _, it := range kernel {
		seen[it] = true
	}
	for i := 0; i < len(items); i++ {
		p := b.prods[items[i].prod]
		if items[i].dot >= len(p.body) || b.isTerminal(p.body[items[i].dot]) {
			continue
		}
		for _, pi := range b.byHead[p.body[items[i].dot]] {
			ni := item{prod: pi}
			if !seen[ni] {
				seen[ni] = true
				items = append(items, ni)
			}
		}
	}
	return items
}

func kernelKey(kernel []item) string {
	var sb strings.Builder
	for _, it := range kernel {
		fmt.Fprintf(&sb, "%d.%d;", it.prod, it.dot)
	}
	return sb.String()
}

// buildStates constructs the canonical LR(0) collection
func (b *builder) buildStates() {
	index := make(map[string]int)
	add := func(kernel []item) int {
		key := kernelKey(kernel)
		if id, ok := index[key]; ok {
			return id
		}
		id := len(b.states)
		index[key] = id
		b.states = append(b.states, &lr0State{kernel: kernel, trans: make(map[int]int)})
		return id
	}
	add([]item{{prod: 0}})

	for s := 0; s < len(b.states); s++ {
		st := b.states[s]
		next := make(map[int][]item)
		var order []int
		for _, it := range b.closure0(st.kernel) {
			p := b.prods[it.prod]
			if it.dot >= len(p.body) {
				continue
			}
			x := p.body[it.dot]
			if _, ok := next[x]; !ok {
				order = append(order, x)
			}
			next[x] = append(next[x], item{prod: it.prod, dot: it.dot + 1})
		}
		for _, x := range order {
			st.trans[x] = add(sortItems(next[x]))
		}
	}
}

func sortItems(items []item) []item {
	// insertion sort: kernels are short
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
	return items
}

func less(a, b item) bool {
	if a.prod != b.prod {
		return a.prod < b.prod
	}
	return a.dot < b.dot
}

// closure1 is the LR(1) closure of seed, with lookahead sets merged per item
func (b *builder) closure1(seed []laItem) []laItem {
	items := make([]laItem, 0, len(seed))
	index := make(map[item]int)
	var work []int
	for _, s := range seed {
		if j, ok := index[s.it]; ok {
			items[j].la.union(s.la)
			continue
		}
		index[s.it] = len(items)
		work = append(work, len(items))
		items = append(items, laItem{it: s.it, la: s.la.clone()})
	}

	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		it := items[i].it
		p := b.prods[it.prod]
		if it.dot >= len(p.body) || b.isTerminal(p.body[it.dot]) {
			continue
		}
		la := b.firstOf(p.body[it.dot+1:], items[i].la)
		for _, pi := range b.byHead[p.body[it.dot]] {
			ni := item{prod: pi}
			if j, ok := index[ni]; ok {
				if items[j].la.union(la) {
					work = append(work, j)
				}
				continue
			}
			index[ni] = len(items)
			work = append(work, len(items))
			items = append(items, laItem{it: ni, la: la.clone()})
		}
	}
	return items
}

func (b *builder) kernelIndex(state int, it item) int {
	for k, ki := range b.states[state].kernel {
		if ki == it {
			return k
		}
	}
	panic(fmt.Sprintf("lalr: item %v not in kernel of state %d", it, state))
}

// lookaheads computes the LALR(1) lookahead sets of every kernel item by
// spontaneous generation and propagation.
func (b *builder) lookaheads() [][]bitset {
	type ref struct{ state, k int }

	la := make([][]bitset, len(b.states))
	for s, st := range b.states {
		la[s] = make([]bitset, len(st.kernel))
		for k := range st.kernel {
			la[s][k] = b.newSet()
		}
	}
	la[0][0].add(0)

	propagate := make(map[ref][]ref)
	for s, st := range b.states {
		for k, kit := range st.kernel {
			probe := b.newSet()
			probe.add(b.hash)
			for _, ci := range b.closure1([]laItem{{it: kit, la: probe}}) {
				p := b.prods[ci.it.prod]
				if ci.it.dot >= len(p.body) {
					continue
				}
				t := st.trans[p.body[ci.it.dot]]
				tk := b.kernelIndex(t, item{prod: ci.it.prod, dot: ci.it.dot + 1})
				ci.la.each(func(a int) {
					if a == b.hash {
						propagate[ref{s, k}] = append(propagate[ref{s, k}], ref{t, tk})
					} else {
						la[t][tk].add(a)
					}
				})
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for from, tos := range propagate {
			for _, to := range tos {
				if la[to.state][to.k].union(la[from.state][from.k]) {
					changed = true
				}
			}
		}
	}
	return la
}

func (b *builder) table(la [][]bitset) *Table {
	t := &Table{terminals: b.g.terminals}
	for _, p := range b.prods {
		name := b.symNames[p.head]
		if p.rule != nil {
			name = p.rule.String()
		}
		tr := &TableRule{Name: name, Count: len(p.body), head: p.head}
		if p.rule != nil {
			tr.reduce = p.rule.Reduce
		}
		t.Rules = append(t.Rules, tr)
	}

	for s, st := range b.states {
		row := &Row{Actions: make(map[int]Action), Gotos: make(map[int]int)}
		for x, target := range st.trans {
			if b.isTerminal(x) {
				row.Actions[x] = Action{Kind: Shift, Operand: target}
			} else {
				row.Gotos[x] = target
			}
		}

		seed := make([]laItem, len(st.kernel))
		for k, kit := range st.kernel {
			seed[k] = laItem{it: kit, la: la[s][k]}
		}
		for _, ci := range b.closure1(seed) {
			if ci.it.dot < len(b.prods[ci.it.prod].body) {
				continue
			}
			ci.la.each(func(a int) {
				if a == b.hash {
					return
				}
				b.addReduce(t, s, row, a, ci.it.prod)
			})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (b *builder) addReduce(t *Table, state int, row *Row, term, pi int) {
	if pi == 0 {
		row.Actions[term] = Action{Kind: Accept}
		return
	}
	reduce := Action{Kind: Reduce, Operand: pi}
	existing, ok := row.Actions[term]
	if !ok {
		row.Actions[term] = reduce
		return
	}

	termName := b.symNames[term]
	switch existing.Kind {
	case Shift:
		tp, hasTokPrec := b.g.prec[termName]
		rp := b.prods[pi].prec
		if !hasTokPrec || rp.level == 0 {
			t.Conflicts = append(t.Conflicts, Conflict{
				State: state, Terminal: termName, Kind: "shift/reduce",
				Chosen: "shift", Rejected: "reduce " + b.prods[pi].rule.String(),
			})
			return
		}
		switch {
		case rp.level > tp.level:
			row.Actions[term] = reduce
		case rp.level < tp.level:
		case tp.assoc == Left:
			row.Actions[term] = reduce
		case tp.assoc == Right:
		default:
			row.Actions[term] = Action{Kind: Error}
		}
	case Reduce:
		if existing.Operand == pi {
			return
		}
		keep, drop := existing.Operand, pi
		if pi < keep {
			keep, drop = pi, keep
		}
		row.Actions[term] = Action{Kind: Reduce, Operand: keep}
		t.Conflicts = append(t.Conflicts, Conflict{
			State: state, Terminal: termName, Kind: "reduce/reduce",
			Chosen: "reduce " + b.prods[keep].rule.String(), Rejected: "reduce " + b.prods[drop].rule.String(),
		})
	}
}
