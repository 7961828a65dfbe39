// Package lalr builds LALR(1) parsing tables from a context-free grammar and
// runs the table-driven shift-reduce engine over them.
//
// A grammar is declared the way yacc declares one: terminals, precedence
// levels from lowest to highest, and rules whose reduce functions build the
// semantic value of the head from the values of the body. Terminal values
// are whatever the Input delivers; nonterminal values are whatever the
// reduce functions return.
package lalr

import (
	"fmt"
	"strings"
)

// EndMarker is the name of the implicit end-of-input terminal; its id is 0
const EndMarker = "$end"

// Assoc is the associativity of a precedence level
type Assoc int

const (
	Left Assoc = iota + 1
	Right
	NonAssoc
)

func (a Assoc) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	case NonAssoc:
		return "nonassoc"
	}
	return "none"
}

// ReduceFunc builds the value of a rule's head from the values of its body.
// A nil ReduceFunc passes the first value through (nil for empty rules).
type ReduceFunc func(args []any) (any, error)

// Rule is one production of the grammar
type Rule struct {
	Head   string
	Body   []string
	Prec   string // terminal lending its precedence; "" means the last terminal with one
	Reduce ReduceFunc
}

func (r *Rule) String() string {
	if len(r.Body) == 0 {
		return r.Head + " : <empty>"
	}
	return r.Head + " : " + strings.Join(r.Body, " ")
}

type precLevel struct {
	level int
	assoc Assoc
}

// Grammar is a context-free grammar under construction
type Grammar struct {
	start     string
	terminals []string
	termIndex map[string]int
	prec      map[string]precLevel
	levels    int
	rules     []*Rule
}

// NewGrammar creates an empty grammar whose start symbol is start
func NewGrammar(start string) *Grammar {
	return &Grammar{
		start:     start,
		terminals: []string{EndMarker},
		termIndex: map[string]int{EndMarker: 0},
		prec:      make(map[string]precLevel),
	}
}

// Terminals declares terminal symbols. Redeclaring a terminal is a no-op.
func (g *Grammar) Terminals(names ...string) {
	for _, name := range names {
		if _, ok := g.termIndex[name]; ok {
			continue
		}
		g.termIndex[name] = len(g.terminals)
		g.terminals = append(g.terminals, name)
	}
}

// TerminalID returns the id the engine expects for a terminal
func (g *Grammar) TerminalID(name string) (int, bool) {
	id, ok := g.termIndex[name]
	return id, ok
}

// Precedence declares the next, higher, precedence level
func (g *Grammar) Precedence(assoc Assoc, terminals ...string) {
	g.levels++
	for _, t := range terminals {
		g.prec[t] = precLevel{level: g.levels, assoc: assoc}
	}
}

// Rule adds a production. body is a space separated list of symbols; an
// empty body declares an epsilon rule.
func (g *Grammar) Rule(head, body string, reduce ReduceFunc) {
	g.RulePrec(head, body, "", reduce)
}

// RulePrec adds a production taking its precedence from the terminal prec,
// like yacc's %prec.
func (g *Grammar) RulePrec(head, body, prec string, reduce ReduceFunc) {
	g.rules = append(g.rules, &Rule{
		Head:   head,
		Body:   strings.Fields(body),
		Prec:   prec,
		Reduce: reduce,
	})
}

// Rules returns the productions in declaration order
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

func (g *Grammar) validate() error {
	if len(g.rules) == 0 {
		return fmt.Errorf("grammar has no rules")
	}
	heads := make(map[string]bool)
	for _, r := range g.rules {
		if _, ok := g.termIndex[r.Head]; ok {
			return fmt.Errorf("rule %q: head is a terminal", r)
		}
		heads[r.Head] = true
	}
	if !heads[g.start] {
		return fmt.Errorf("start symbol %q has no rules", g.start)
	}
	for _, r := range g.rules {
		for _, sym := range r.Body {
			if _, ok := g.termIndex[sym]; !ok && !heads[sym] {
				return fmt.Errorf("rule %q: undefined symbol %q", r, sym)
			}
		}
		if r.Prec != "" {
			if _, ok := g.prec[r.Prec]; !ok {
				return fmt.Errorf("rule %q: %q has no declared precedence", r, r.Prec)
			}
		}
	}
	for t := range g.prec {
		if _, ok := g.termIndex[t]; !ok {
			return fmt.Errorf("precedence declared for unknown terminal %q", t)
		}
	}
	return nil
}
