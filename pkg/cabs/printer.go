package cabs

import (
	"fmt"
	"go/constant"
	"io"
	"strconv"
	"strings"

	"github.com/raymyers/cminus/pkg/lexer"
)

// Printer writes the AST back out as C-Minus source. The output reparses
// to the same tree: parentheses are inserted only where operator
// precedence requires them.
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// PrintTranslationUnit prints a complete translation unit
func (p *Printer) PrintTranslationUnit(tu *TranslationUnit) {
	for i, def := range tu.Decls {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		p.printDefinition(def)
	}
}

// Sprint renders a single node, mostly for tests and diagnostics
func Sprint(n Node) string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	switch n := n.(type) {
	case *TranslationUnit:
		p.PrintTranslationUnit(n)
	case Definition:
		p.printDefinition(n)
	case Type:
		sb.WriteString(declString("", n))
	case Expr:
		p.printExpr(n)
	case Stmt:
		p.printStmt(n)
	default:
		fmt.Fprintf(&sb, "/* unknown node %T */", n)
	}
	return sb.String()
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printDefinition(def Definition) {
	switch d := def.(type) {
	case *FunctionDefinition:
		p.printFunctionDefinition(d)
	case *Declaration:
		p.printDeclaration(d)
	default:
		fmt.Fprintf(p.w, "/* unknown definition %T */\n", def)
	}
}

func storage(d *Declaration) string {
	switch {
	case d.Static:
		return "static "
	case d.Extern:
		return "extern "
	}
	return ""
}

func (p *Printer) printFunctionDefinition(f *FunctionDefinition) {
	fmt.Fprintf(p.w, "%s%s\n", storage(f.Decl), declString(f.Decl.Name, f.Decl.Type))
	p.printBlock(f.Body)
}

func (p *Printer) printDeclaration(d *Declaration) {
	p.writeIndent()
	fmt.Fprint(p.w, storage(d), declString(d.Name, d.Type))
	if d.Init != nil {
		fmt.Fprint(p.w, " = ")
		p.printExpr(d.Init)
	}
	fmt.Fprintln(p.w, ";")
}

// declString renders name declared with type t in C declarator syntax
func declString(name string, t Type) string {
	return typeDecl(t, name)
}

func typeDecl(t Type, inner string) string {
	switch t := t.(type) {
	case *BaseType:
		if inner == "" {
			return t.Name
		}
		return t.Name + " " + inner
	case *PointerType:
		return typeDecl(t.Elem, "*"+inner)
	case *FunctionType:
		return typeDecl(t.Result, wrapPointer(inner)+"("+paramString(t.Params)+")")
	case *ArrayType:
		return typeDecl(t.Elem, wrapPointer(inner)+"["+strconv.Itoa(t.Len)+"]")
	}
	return fmt.Sprintf("/* unknown type %T */ %s", t, inner)
}

// a suffix binds tighter than a prefix "*"
func wrapPointer(inner string) string {
	if strings.HasPrefix(inner, "*") {
		return "(" + inner + ")"
	}
	return inner
}

func paramString(params *ParamList) string {
	if params == nil {
		return ""
	}
	var parts []string
	for _, d := range params.Params {
		parts = append(parts, declString(d.Name, d.Type))
	}
	if params.Ellipsis {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) printBlock(b *CompoundStatement) {
	p.writeIndent()
	fmt.Fprintln(p.w, "{")
	p.indent++
	if b.Decls != nil {
		for _, d := range b.Decls.Decls {
			p.printDeclaration(d)
		}
	}
	for _, s := range b.Statements() {
		p.printStmt(s)
	}
	p.indent--
	p.writeIndent()
	fmt.Fprintln(p.w, "}")
}

// printNested prints the body of if, while and for one level deeper
func (p *Printer) printNested(s Stmt) {
	p.indent++
	p.printStmt(s)
	p.indent--
}

func (p *Printer) printStmt(stmt Stmt) {
	if c, ok := stmt.(*CompoundStatement); ok {
		p.printBlock(c)
		return
	}
	if l, ok := stmt.(*StatementList); ok {
		for _, s := range l.Stmts {
			p.printStmt(s)
		}
		return
	}

	p.writeIndent()
	switch s := stmt.(type) {
	case NullNode:
		fmt.Fprintln(p.w, ";")
	case *ExprStatement:
		p.printExpr(s.Expr)
		fmt.Fprintln(p.w, ";")
	case *ReturnStatement:
		fmt.Fprint(p.w, "return")
		if !IsNull(s.Expr) {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Expr)
		}
		fmt.Fprintln(p.w, ";")
	case *BreakStatement:
		fmt.Fprintln(p.w, "break;")
	case *ContinueStatement:
		fmt.Fprintln(p.w, "continue;")
	case *IfStatement:
		fmt.Fprint(p.w, "if (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		then := s.Then
		if !IsNull(s.Else) && openIf(then) {
			// keep the else from binding to the inner if
			then = &CompoundStatement{Decls: NewDeclarationList(), Stmts: NewStatementList(then)}
		}
		p.printNested(then)
		if !IsNull(s.Else) {
			p.writeIndent()
			fmt.Fprintln(p.w, "else")
			p.printNested(s.Else)
		}
	case *WhileLoop:
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printNested(s.Body)
	case *ForLoop:
		fmt.Fprint(p.w, "for (")
		p.printOptExpr(s.Init)
		fmt.Fprint(p.w, "; ")
		p.printOptExpr(s.Cond)
		fmt.Fprint(p.w, ";")
		if !IsNull(s.Step) {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Step)
		}
		fmt.Fprintln(p.w, ")")
		p.printNested(s.Body)
	default:
		fmt.Fprintf(p.w, "/* unknown stmt %T */\n", stmt)
	}
}

// openIf reports whether s ends in an if statement without an else
func openIf(s Stmt) bool {
	switch s := s.(type) {
	case *IfStatement:
		if IsNull(s.Else) {
			return true
		}
		return openIf(s.Else)
	case *WhileLoop:
		return openIf(s.Body)
	case *ForLoop:
		return openIf(s.Body)
	}
	return false
}

func (p *Printer) printOptExpr(e Expr) {
	if !IsNull(e) {
		p.printExpr(e)
	}
}

// Expression precedence, loosest first
const (
	precAssign = iota + 1
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

func binopPrec(op BinaryOp) int {
	switch op {
	case OpAssign, OpAddAssign, OpSubAssign:
		return precAssign
	case OpEq, OpNe:
		return precEquality
	case OpLt, OpGt, OpLe, OpGe:
		return precRelational
	case OpAdd, OpSub:
		return precAdditive
	}
	return precMultiplicative
}

func exprPrec(e Expr) int {
	switch e := e.(type) {
	case *Binop:
		return binopPrec(e.Op)
	case *Negative, *AddrOf, *Pointer:
		return precUnary
	case *FunctionExpression, *ArrayExpression:
		return precPostfix
	case *Const:
		if constant.Sign(e.Value) < 0 {
			return precUnary
		}
	}
	return precPrimary
}

// printOperand prints e, parenthesized when it binds looser than min
func (p *Printer) printOperand(e Expr, min int) {
	if exprPrec(e) < min {
		fmt.Fprint(p.w, "(")
		p.printExpr(e)
		fmt.Fprint(p.w, ")")
		return
	}
	p.printExpr(e)
}

func (p *Printer) printExpr(expr Expr) {
	switch e := expr.(type) {
	case *Const:
		fmt.Fprint(p.w, ConstString(e))
	case *StringLiteral:
		fmt.Fprint(p.w, lexer.Quote(e.Value))
	case *Id:
		fmt.Fprint(p.w, e.Name)
	case *Binop:
		p.printBinary(e)
	case *Negative:
		fmt.Fprint(p.w, "-")
		p.printUnaryOperand(e.Expr, '-')
	case *AddrOf:
		fmt.Fprint(p.w, "&")
		p.printUnaryOperand(e.Expr, '&')
	case *Pointer:
		fmt.Fprint(p.w, "*")
		p.printUnaryOperand(e.Expr, '*')
	case *FunctionExpression:
		p.printOperand(e.Func, precPostfix)
		fmt.Fprint(p.w, "(")
		if e.Args != nil {
			for i, arg := range e.Args.Args {
				if i > 0 {
					fmt.Fprint(p.w, ", ")
				}
				p.printExpr(arg)
			}
		}
		fmt.Fprint(p.w, ")")
	case *ArrayExpression:
		p.printOperand(e.Base, precPostfix)
		fmt.Fprint(p.w, "[")
		p.printExpr(e.Index)
		fmt.Fprint(p.w, "]")
	case NullNode:
	default:
		fmt.Fprintf(p.w, "/* unknown expr %T */", expr)
	}
}

// printUnaryOperand keeps "- -x" from printing as "--x"
func (p *Printer) printUnaryOperand(e Expr, op byte) {
	if op == '-' && strings.HasPrefix(Sprint(e), "-") {
		fmt.Fprint(p.w, " ")
	}
	p.printOperand(e, precUnary)
}

func (p *Printer) printBinary(b *Binop) {
	prec := binopPrec(b.Op)
	if b.Op.IsAssign() {
		// right associative; the target is an equality expression
		p.printOperand(b.Left, precEquality)
		fmt.Fprintf(p.w, " %s ", b.Op)
		p.printOperand(b.Right, precAssign)
		return
	}
	p.printOperand(b.Left, prec)
	fmt.Fprintf(p.w, " %s ", b.Op)
	p.printOperand(b.Right, prec+1)
}

// ConstString renders a constant as a C-Minus literal of its own type
func ConstString(c *Const) string {
	switch {
	case c.Type != nil && c.Type.Name == "char":
		if v, ok := constant.Int64Val(c.Value); ok && v >= 0 && v < 256 {
			return lexer.QuoteChar(byte(v))
		}
	case c.Value.Kind() == constant.Float:
		f, _ := constant.Float64Val(c.Value)
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return c.Value.ExactString()
}
