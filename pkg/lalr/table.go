package lalr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ActionKind says what the engine does for a state/terminal pair
type ActionKind int

const (
	// Error marks a cell removed by a nonassoc declaration
	Error ActionKind = iota
	Shift
	Reduce
	Accept
)

func (k ActionKind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case Accept:
		return "accept"
	}
	return "error"
}

// Action is a table cell: the state to shift to, or the rule to reduce by
type Action struct {
	Kind    ActionKind
	Operand int
}

// Row is a particular row in the parsing table. Any terminal without an
// entry in Actions is unexpected in that state.
type Row struct {
	Actions map[int]Action
	Gotos   map[int]int
}

// TableRule is what the engine needs of a rule at run time
type TableRule struct {
	Name   string
	Count  int
	head   int
	reduce ReduceFunc
}

// Conflict records a table conflict that precedence did not settle
type Conflict struct {
	State    int
	Terminal string
	Kind     string
	Chosen   string
	Rejected string
}

func (c Conflict) String() string {
	return fmt.Sprintf("state %d: %s conflict on %s (chose %s over %s)",
		c.State, c.Kind, c.Terminal, c.Chosen, c.Rejected)
}

// Table is an LALR(1) Action-Goto table with the rules it reduces by
type Table struct {
	Rows      []*Row
	Rules     []*TableRule
	Conflicts []Conflict

	// Describe renders a terminal name in error messages; nil keeps the name
	Describe func(terminal string) string

	terminals []string
}

// Symbol is one lookahead delivered to the engine
type Symbol struct {
	ID    int // terminal id, 0 at end of input
	Value any
	Line  int
	Text  string // rendering of the token for error messages
}

// Input supplies terminals one at a time
type Input interface {
	Next() Symbol
}

// Reducer is an optional interface of Input. The engine passes the value
// built by every reduce function to Reduced and keeps what it returns.
type Reducer interface {
	Reduced(v any) any
}

// ErrSyntax is matched by every *SyntaxError
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports a token for which the table has no action. Reduce
// functions may also return one, with Msg set, for constructs the grammar
// accepts but the language does not.
type SyntaxError struct {
	Line     int
	Got      string
	Expected []string
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: syntax error: %s", e.Line, e.Detail())
}

// Detail is the message without its line and kind prefix
func (e *SyntaxError) Detail() string {
	if e.Msg != "" {
		return e.Msg
	}
	msg := "unexpected " + e.Got
	if n := len(e.Expected); n > 0 && n <= 6 {
		msg += ", expecting " + strings.Join(e.Expected, " or ")
	}
	return msg
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Parse runs the shift-reduce engine over in and returns the value of the
// start symbol. Reduce function errors abort the parse and are returned
// unchanged.
func (t *Table) Parse(in Input) (any, error) {
	states := []int{0}
	var values []any
	hook, _ := in.(Reducer)

	la := in.Next()
	for {
		s := states[len(states)-1]
		act, ok := t.Rows[s].Actions[la.ID]
		if !ok || act.Kind == Error {
			return nil, t.syntaxError(s, la)
		}

		switch act.Kind {
		case Shift:
			states = append(states, act.Operand)
			values = append(values, la.Value)
			la = in.Next()

		case Reduce:
			r := t.Rules[act.Operand]
			base := len(values) - r.Count
			args := make([]any, r.Count)
			copy(args, values[base:])

			var v any
			if r.reduce != nil {
				var err error
				if v, err = r.reduce(args); err != nil {
					return nil, err
				}
				if hook != nil {
					v = hook.Reduced(v)
				}
			} else if r.Count > 0 {
				v = args[0]
			}

			states = states[:len(states)-r.Count]
			values = append(values[:base], v)
			next, ok := t.Rows[states[len(states)-1]].Gotos[r.head]
			if !ok {
				return nil, fmt.Errorf("lalr: no goto for %s from state %d", r.Name, states[len(states)-1])
			}
			states = append(states, next)

		case Accept:
			return values[len(values)-1], nil
		}
	}
}

func (t *Table) syntaxError(state int, la Symbol) *SyntaxError {
	got := la.Text
	if got == "" {
		got = t.describe(t.terminals[la.ID])
	}
	var expected []string
	for id, act := range t.Rows[state].Actions {
		if act.Kind != Error {
			expected = append(expected, t.describe(t.terminals[id]))
		}
	}
	sort.Strings(expected)
	return &SyntaxError{Line: la.Line, Got: got, Expected: expected}
}

func (t *Table) describe(terminal string) string {
	if t.Describe != nil {
		return t.Describe(terminal)
	}
	return terminal
}
