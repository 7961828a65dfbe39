package parser

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/raymyers/cminus/pkg/cabs"
	"github.com/raymyers/cminus/pkg/diag"
	"github.com/raymyers/cminus/pkg/lalr"
	"github.com/raymyers/cminus/pkg/lexer"
	"gopkg.in/yaml.v3"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name  string         `yaml:"name"`
	Input string         `yaml:"input"`
	AST   map[string]any `yaml:"ast,omitempty"`
	Error string         `yaml:"error,omitempty"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			tu, err := Parse(tc.Input)
			if tc.Error != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got none", tc.Error)
				}
				if !strings.Contains(err.Error(), tc.Error) {
					t.Fatalf("expected error containing %q, got %q", tc.Error, err)
				}
				if tu != nil {
					t.Fatal("failed parse returned a tree")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			var got any
			if err := cabs.ToYAML(tu).Decode(&got); err != nil {
				t.Fatalf("decode dump: %v", err)
			}
			verifyAST(t, "ast", tc.AST, got)
		})
	}
}

// verifyAST checks that every key of want is present in got with an equal value
func verifyAST(t *testing.T, path string, want, got any) {
	t.Helper()

	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			t.Fatalf("%s: expected a mapping, got %#v", path, got)
		}
		for k, wv := range w {
			gv, ok := g[k]
			if !ok {
				t.Fatalf("%s: missing key %q in %v", path, k, g)
			}
			verifyAST(t, path+"."+k, wv, gv)
		}
	case []any:
		g, ok := got.([]any)
		if !ok {
			t.Fatalf("%s: expected a sequence, got %#v", path, got)
		}
		if len(w) != len(g) {
			t.Fatalf("%s: expected %d items, got %d", path, len(w), len(g))
		}
		for i := range w {
			verifyAST(t, fmt.Sprintf("%s[%d]", path, i), w[i], g[i])
		}
	default:
		if !reflect.DeepEqual(want, got) {
			t.Errorf("%s: expected %#v, got %#v", path, want, got)
		}
	}
}

func TestGrammarHasNoConflicts(t *testing.T) {
	tbl, err := cminusTable()
	if err != nil {
		t.Fatalf("building the C-Minus table: %v", err)
	}
	for _, c := range tbl.Conflicts {
		t.Errorf("unresolved conflict: %s", c)
	}
}

// body parses a function body and returns its statements
func body(t *testing.T, src string, opts ...Option) []cabs.Stmt {
	t.Helper()
	tu, err := Parse("void f() {\n"+src+"\n}", opts...)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return tu.Decls[0].(*cabs.FunctionDefinition).Body.Statements()
}

func exprOf(t *testing.T, src string, opts ...Option) cabs.Expr {
	t.Helper()
	stmts := body(t, src+";", opts...)
	return stmts[0].(*cabs.ExprStatement).Expr
}

func TestFoldingYieldsSingleConst(t *testing.T) {
	inputs := []string{
		"1",
		"2 + 3 * 4",
		"((1 + 2) * (3 - 4)) / (5 % 3)",
		"1 < 2 == 2 > 1",
		"-(-(-7)) + !0 - !5",
		"10 / 3 * 3 + 10 % 3 != 10",
		"1.5 * 2 - 'a' / 2 >= 0",
		"((((((((1 + 1) * 2) - 3) * 4) / 5) % 6) + 7) <= 8)",
	}
	// build deeper nestings mechanically
	deep := "1"
	for i := range 40 {
		deep = fmt.Sprintf("(%s %s %d)", deep, []string{"+", "*", "-", "<", "=="}[i%5], i+1)
	}
	inputs = append(inputs, deep)

	for _, src := range inputs {
		e := exprOf(t, src)
		if _, ok := e.(*cabs.Const); !ok {
			t.Errorf("%s: expected a single Const, got %s", src, cabs.Sprint(e))
		}
		if n := len(cabs.Inspect[*cabs.Binop](e)); n != 0 {
			t.Errorf("%s: %d Binop nodes left", src, n)
		}
	}
}

func TestFoldedValues(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 - 4 - 3", "3"},
		{"7 / 2", "3"},
		{"7.0 / 2", "3.5"},
		{"'b' - 'a'", "1"},
		{"-(2 + 3)", "-5"},
		{"!3", "0"},
		{"2147483647 + 1", "-2147483648"},
	}
	for _, tt := range tests {
		c, ok := exprOf(t, tt.src).(*cabs.Const)
		if !ok {
			t.Errorf("%s: not folded", tt.src)
			continue
		}
		if got := cabs.ConstString(c); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestFoldingCanBeDisabled(t *testing.T) {
	e := exprOf(t, "x = 2 + 3 * 4", WithFolder(nil))
	assign := e.(*cabs.Binop)
	sum, ok := assign.Right.(*cabs.Binop)
	if !ok || sum.Op != cabs.OpAdd {
		t.Fatalf("expected a live +, got %s", cabs.Sprint(assign.Right))
	}
	if _, ok := sum.Right.(*cabs.Binop); !ok {
		t.Errorf("expected a live *, got %s", cabs.Sprint(sum.Right))
	}

	// ! is still desugared
	not := exprOf(t, "!x", WithFolder(nil)).(*cabs.Binop)
	if not.Op != cabs.OpEq {
		t.Errorf("expected ==, got %s", not.Op)
	}
}

func TestCustomFolder(t *testing.T) {
	seen := 0
	count := func(e cabs.Expr) cabs.Expr {
		seen++
		return e
	}
	exprOf(t, "a = -b + c * d < e", WithFolder(count))
	// -b, c*d, +, <; the assignment is not offered
	if seen != 4 {
		t.Errorf("folder called %d times, want 4", seen)
	}
}

func TestDanglingElse(t *testing.T) {
	stmts := body(t, "if (a) if (b) s1; else s2;")
	outer := stmts[0].(*cabs.IfStatement)
	if !cabs.IsNull(outer.Else) {
		t.Fatalf("else bound to the outer if: %s", cabs.Sprint(outer))
	}
	inner := outer.Then.(*cabs.IfStatement)
	if cabs.IsNull(inner.Else) {
		t.Fatalf("inner if lost its else: %s", cabs.Sprint(outer))
	}
	if got := cabs.Sprint(inner.Else.(*cabs.ExprStatement).Expr); got != "s2" {
		t.Errorf("inner else = %s", got)
	}
}

func TestDeclaratorTypes(t *testing.T) {
	tests := []struct {
		src  string
		want cabs.Type
	}{
		{"int *f();", &cabs.FunctionType{Params: cabs.NewParamList(), Result: &cabs.PointerType{Elem: cabs.NewBaseType("int")}}},
		{"int (*f)();", &cabs.PointerType{Elem: &cabs.FunctionType{Params: cabs.NewParamList(), Result: cabs.NewBaseType("int")}}},
		{"char *(*f)(int);", &cabs.PointerType{Elem: &cabs.FunctionType{
			Params: cabs.NewParamList(&cabs.Declaration{Type: cabs.NewBaseType("int")}),
			Result: &cabs.PointerType{Elem: cabs.NewBaseType("char")},
		}}},
		{"int f;", cabs.NewBaseType("int")},
	}
	for _, tt := range tests {
		tu, err := Parse(tt.src)
		if err != nil {
			t.Fatalf("%s: %v", tt.src, err)
		}
		d := tu.Decls[0].(*cabs.Declaration)
		if !cabs.SameType(d.Type, tt.want) {
			t.Errorf("%s: type %s, want %s", tt.src, d.Type, tt.want)
		}
	}
}

func TestLineNumbers(t *testing.T) {
	src := "int main()\n{\n  /* a\n     b */\n\n  x =\n    y;\n  // note\n  return z;\n}\n"
	tu, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lines := map[string]int{}
	for _, id := range cabs.Inspect[*cabs.Id](tu) {
		lines[id.Name] = id.Line
	}
	want := map[string]int{"x": 6, "y": 7, "z": 9}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Id lines = %v, want %v", lines, want)
	}
	if d := tu.Decls[0].(*cabs.FunctionDefinition).Decl; d.Line != 1 {
		t.Errorf("main declared on line %d", d.Line)
	}
}

func TestSyntaxErrorLine(t *testing.T) {
	var reported []diag.Diagnostic
	src := "int main()\n{\n  /* comment\n  */\n  x = ;\n}\n"
	tu, err := Parse(src, WithErrorHandler(func(d diag.Diagnostic) { reported = append(reported, d) }))
	if tu != nil {
		t.Fatal("expected no tree")
	}
	var se *lalr.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *lalr.SyntaxError, got %v", err)
	}
	if se.Line != 5 || se.Got != "';'" {
		t.Errorf("got line %d token %s, want line 5 token ';'", se.Line, se.Got)
	}
	if !errors.Is(err, lalr.ErrSyntax) {
		t.Error("error does not match lalr.ErrSyntax")
	}
	if len(reported) != 1 || reported[0].Kind != diag.Syntax || reported[0].Line != 5 {
		t.Errorf("unexpected diagnostics %v", reported)
	}
}

func TestSyntaxErrorAtEndOfInput(t *testing.T) {
	_, err := Parse("int main() {\n  return 0;\n\n")
	var se *lalr.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *lalr.SyntaxError, got %v", err)
	}
	if se.Got != "end of input" || se.Line != 4 {
		t.Errorf("got %q on line %d", se.Got, se.Line)
	}
}

func TestLexicalErrorsYieldNoTree(t *testing.T) {
	var reported []diag.Diagnostic
	l := lexer.New("int @x;\nint $y;\n")
	p := New(l, WithErrorHandler(func(d diag.Diagnostic) { reported = append(reported, d) }))
	tu, err := p.ParseTranslationUnit()
	if tu != nil {
		t.Fatal("expected no tree after lexical errors")
	}
	var list diag.List
	if !errors.As(err, &list) {
		t.Fatalf("expected diag.List, got %v", err)
	}
	if len(list) != 2 || list[0].Line != 1 || list[1].Line != 2 {
		t.Errorf("expected one lexical error per line, got %v", list)
	}
	if !strings.Contains(list[0].Msg, "'@'") {
		t.Errorf("error does not name the character: %s", list[0].Msg)
	}
	if len(p.Errors()) != 2 {
		t.Errorf("Errors() = %v", p.Errors())
	}
	// the parser only reports syntax errors itself
	if len(reported) != 0 {
		t.Errorf("unexpected syntax diagnostics %v", reported)
	}
}

func TestParseReportsLexicalErrorsToHandler(t *testing.T) {
	var reported []diag.Diagnostic
	_, err := Parse("int x@;", WithErrorHandler(func(d diag.Diagnostic) { reported = append(reported, d) }))
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(reported) != 1 || reported[0].Kind != diag.Lexical {
		t.Errorf("handler got %v", reported)
	}
}

func TestUnterminatedComment(t *testing.T) {
	src := "int x;\n/* never closed\nint y;\n"
	_, err := Parse(src)
	var list diag.List
	if !errors.As(err, &list) || list[0].Line != 2 {
		t.Fatalf("expected an unterminated comment error on line 2, got %v", err)
	}

	tu, err := Parse(src, WithLexerOptions(lexer.WithUnterminatedCommentError(false)))
	if err != nil {
		t.Fatalf("silent mode: %v", err)
	}
	if len(tu.Decls) != 1 {
		t.Errorf("comment should swallow the rest, got %d decls", len(tu.Decls))
	}
}

func TestRoundTrip(t *testing.T) {
	programs := []string{
		"int main(){ return 0; }",
		`extern int printf(char *fmt, ...);
static int counter = 0;
int *table[4];
int (*handler)(int, char);

static int fib(int n)
{
    int a; int b; int t;
    a = 0; b = 1;
    for (; n > 0; n -= 1) { t = a + b; a = b; b = t; }
    return a;
}

int main(int argc, char **argv)
{
    double ratio = 1.0 / 3.0;
    char *msg = "fib\t" "done\n";
    if (argc < 2)
        if (!argv) return 1;
        else return -(argc - 1);
    while (*argv[0] != '\0') { argv[0] = &argv[0][1]; continue; }
    if (argc == 3) { if (argc) ; } else printf(msg, fib(10), (*handler)(argc, 'x'));
    counter += a - (b - c) * (d + e) / -f;
    return 0;
}`,
	}
	for _, src := range programs {
		first, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		printed := cabs.Sprint(first)
		second, err := Parse(printed)
		if err != nil {
			t.Fatalf("reparse of printed output failed: %v\n%s", err, printed)
		}
		if again := cabs.Sprint(second); again != printed {
			t.Errorf("printing is not a fixpoint:\n%s\n---\n%s", printed, again)
		}
		if a, b := len(cabs.Inspect[cabs.Node](first)), len(cabs.Inspect[cabs.Node](second)); a != b {
			t.Errorf("node count changed from %d to %d", a, b)
		}
	}
}

func TestConcurrentParses(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tu, err := Parse(fmt.Sprintf("int v%d = %d * 2;", i, i))
			if err != nil {
				errs <- err
				return
			}
			c := tu.Decls[0].(*cabs.Declaration).Init.(*cabs.Const)
			if got := cabs.ConstString(c); got != fmt.Sprint(i*2) {
				errs <- fmt.Errorf("v%d = %s", i, got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestLiteralsMatchFoldedValues(t *testing.T) {
	tests := []struct {
		literal string
		folded  string
	}{
		{"4294967296", "4294967296 + 0"},
		{"2147483648", "2147483647 + 1"},
		{"010", "5 + 5"},
		{"0009", "3 * 3"},
		{"99999999999999999999", "99999999999999999999 * 1"},
	}
	for _, tt := range tests {
		lit, ok := exprOf(t, tt.literal).(*cabs.Const)
		if !ok {
			t.Fatalf("%s: not a Const", tt.literal)
		}
		folded, ok := exprOf(t, tt.folded).(*cabs.Const)
		if !ok {
			t.Fatalf("%s: not folded", tt.folded)
		}
		if a, b := cabs.ConstString(lit), cabs.ConstString(folded); a != b {
			t.Errorf("literal %s = %s but %s = %s", tt.literal, a, tt.folded, b)
		}
	}
}

func TestStorageClassErrors(t *testing.T) {
	tests := []struct {
		src  string
		line int
		msg  string
	}{
		{"int x;\nextern int f() { return 0; }", 2, "function definition f cannot be extern"},
		{"int f()\n  = 3;", 1, "function f cannot have an initializer"},
		{"int (*f)(int) = 0;", 0, ""},
		{"static int f() { return 0; }", 0, ""},
	}
	for _, tt := range tests {
		tu, err := Parse(tt.src)
		if tt.msg == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.src, err)
			}
			continue
		}
		var se *lalr.SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected *lalr.SyntaxError, got %v", tt.src, err)
		}
		if se.Line != tt.line || se.Msg != tt.msg {
			t.Errorf("%s: got line %d %q, want line %d %q", tt.src, se.Line, se.Msg, tt.line, tt.msg)
		}
		if tu != nil {
			t.Errorf("%s: expected no tree", tt.src)
		}
	}
}
