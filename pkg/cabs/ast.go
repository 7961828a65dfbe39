// Package cabs defines the abstract syntax tree for C-Minus.
//
// The node set is closed: every node implements Node through unexported
// marker methods, so passes over the tree can switch exhaustively on the
// concrete types. Nodes are built bottom-up by the parser's reductions and
// are not modified once their parent holds them.
package cabs

import "go/constant"

// Node is the base interface for all AST nodes
type Node interface {
	implCabsNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	implCabsExpr()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	implCabsStmt()
}

// Definition is the interface for top-level declarations and definitions
type Definition interface {
	Node
	implDefinition()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAssign    BinaryOp = iota // =
	OpAddAssign                 // +=
	OpSubAssign                 // -=
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
)

func (op BinaryOp) String() string {
	names := []string{"=", "+=", "-=", "+", "-", "*", "/", "%", "<", ">", "<=", ">=", "==", "!="}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// IsAssign reports whether op stores into its left operand
func (op BinaryOp) IsAssign() bool {
	return op <= OpSubAssign
}

// IsComparison reports whether op is relational or equality
func (op BinaryOp) IsComparison() bool {
	return op >= OpLt
}

// NullNode stands for an absent statement or expression: no else branch,
// no return value, an empty statement, an omitted for clause.
type NullNode struct{}

// IsNull reports whether n is absent
func IsNull(n Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(NullNode)
	return ok
}

// Containers

// ParamList is a function's parameters; Ellipsis marks a trailing "..."
type ParamList struct {
	Params   []*Declaration
	Ellipsis bool
}

// NewParamList creates a parameter list holding params
func NewParamList(params ...*Declaration) *ParamList {
	return &ParamList{Params: params}
}

// Add appends a parameter
func (l *ParamList) Add(d *Declaration) {
	l.Params = append(l.Params, d)
}

// ArgumentList is the ordered argument list of a call
type ArgumentList struct {
	Args []Expr
}

// NewArgumentList creates an argument list holding args
func NewArgumentList(args ...Expr) *ArgumentList {
	return &ArgumentList{Args: args}
}

// Add appends an argument
func (l *ArgumentList) Add(e Expr) {
	l.Args = append(l.Args, e)
}

// DeclarationList is the declarations at the head of a compound statement
type DeclarationList struct {
	Decls []*Declaration
}

// NewDeclarationList creates a declaration list holding decls
func NewDeclarationList(decls ...*Declaration) *DeclarationList {
	return &DeclarationList{Decls: decls}
}

// Add appends a declaration
func (l *DeclarationList) Add(d *Declaration) {
	l.Decls = append(l.Decls, d)
}

// StatementList is a sequence of statements
type StatementList struct {
	Stmts []Stmt
}

// NewStatementList creates a statement list holding stmts
func NewStatementList(stmts ...Stmt) *StatementList {
	return &StatementList{Stmts: stmts}
}

// Add appends a statement
func (l *StatementList) Add(s Stmt) {
	l.Stmts = append(l.Stmts, s)
}

// Program level

// TranslationUnit is the root of the tree; it always has at least one child
type TranslationUnit struct {
	Decls []Definition
}

// NewTranslationUnit creates a translation unit starting with first
func NewTranslationUnit(first Definition) *TranslationUnit {
	return &TranslationUnit{Decls: []Definition{first}}
}

// Add appends a top-level declaration or definition
func (u *TranslationUnit) Add(d Definition) {
	u.Decls = append(u.Decls, d)
}

// Declaration declares Name with a fully built Type. Parameters are
// declarations too; an unnamed parameter has an empty Name.
type Declaration struct {
	Name   string
	Line   int
	Type   Type
	Init   Expr // nil when there is no initializer
	Static bool
	Extern bool
}

// FunctionDefinition is a function with a body. Decl.Type is a *FunctionType.
type FunctionDefinition struct {
	Decl *Declaration
	Body *CompoundStatement
}

// Name returns the function's name
func (f *FunctionDefinition) Name() string {
	return f.Decl.Name
}

// Params returns the function's parameter list
func (f *FunctionDefinition) Params() *ParamList {
	return f.Decl.Type.(*FunctionType).Params
}

// ResultType returns the declared return type
func (f *FunctionDefinition) ResultType() Type {
	return f.Decl.Type.(*FunctionType).Result
}

// Statements

// CompoundStatement is a block. Stmts is a *StatementList or NullNode.
type CompoundStatement struct {
	Decls *DeclarationList
	Stmts Stmt
}

// Statements returns the block's statements, nil when there are none
func (c *CompoundStatement) Statements() []Stmt {
	if l, ok := c.Stmts.(*StatementList); ok {
		return l.Stmts
	}
	return nil
}

// IfStatement is if/else; Else is NullNode when absent
type IfStatement struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// WhileLoop is a while statement
type WhileLoop struct {
	Cond Expr
	Body Stmt
}

// ForLoop is a for statement; omitted clauses are NullNode
type ForLoop struct {
	Init Expr
	Cond Expr
	Step Expr
	Body Stmt
}

// ReturnStatement returns Expr, which is NullNode for a bare return
type ReturnStatement struct {
	Expr Expr
}

// BreakStatement is break
type BreakStatement struct{}

// ContinueStatement is continue
type ContinueStatement struct{}

// ExprStatement evaluates an expression for its effect
type ExprStatement struct {
	Expr Expr
}

// Expressions

// Binop is a binary operation, assignment included
type Binop struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Negative is unary minus
type Negative struct {
	Expr Expr
}

// AddrOf is the & operator
type AddrOf struct {
	Expr Expr
}

// Pointer is the unary * (dereference) operator
type Pointer struct {
	Expr Expr
}

// FunctionExpression is a call
type FunctionExpression struct {
	Func Expr
	Args *ArgumentList
}

// ArrayExpression is Base[Index]
type ArrayExpression struct {
	Base  Expr
	Index Expr
}

// Id is a use of a name
type Id struct {
	Name string
	Line int
}

// Const is a constant known at parse time. Value is an Int for int and
// char constants and a Float for double constants.
type Const struct {
	Value constant.Value
	Type  *BaseType
}

// NewIntConst creates an int constant
func NewIntConst(v int64) *Const {
	return &Const{Value: constant.MakeInt64(v), Type: NewBaseType("int")}
}

// NewCharConst creates a char constant
func NewCharConst(c byte) *Const {
	return &Const{Value: constant.MakeInt64(int64(c)), Type: NewBaseType("char")}
}

// NewDoubleConst creates a double constant
func NewDoubleConst(f float64) *Const {
	return &Const{Value: constant.MakeFloat64(f), Type: NewBaseType("double")}
}

// StringLiteral holds decoded text; adjacent literals are concatenated
type StringLiteral struct {
	Value string
}

// Append concatenates the text of an adjacent literal
func (s *StringLiteral) Append(text string) {
	s.Value += text
}

// Marker methods for interface implementation
func (NullNode) implCabsNode() {}
func (NullNode) implCabsExpr() {}
func (NullNode) implCabsStmt() {}

func (*ParamList) implCabsNode()       {}
func (*ArgumentList) implCabsNode()    {}
func (*DeclarationList) implCabsNode() {}
func (*StatementList) implCabsNode()   {}
func (*StatementList) implCabsStmt()   {}

func (*TranslationUnit) implCabsNode() {}

func (*Declaration) implCabsNode()   {}
func (*Declaration) implDefinition() {}

func (*FunctionDefinition) implCabsNode()   {}
func (*FunctionDefinition) implDefinition() {}

func (*CompoundStatement) implCabsNode() {}
func (*CompoundStatement) implCabsStmt() {}

func (*IfStatement) implCabsNode() {}
func (*IfStatement) implCabsStmt() {}

func (*WhileLoop) implCabsNode() {}
func (*WhileLoop) implCabsStmt() {}

func (*ForLoop) implCabsNode() {}
func (*ForLoop) implCabsStmt() {}

func (*ReturnStatement) implCabsNode() {}
func (*ReturnStatement) implCabsStmt() {}

func (*BreakStatement) implCabsNode() {}
func (*BreakStatement) implCabsStmt() {}

func (*ContinueStatement) implCabsNode() {}
func (*ContinueStatement) implCabsStmt() {}

func (*ExprStatement) implCabsNode() {}
func (*ExprStatement) implCabsStmt() {}

func (*Binop) implCabsNode() {}
func (*Binop) implCabsExpr() {}

func (*Negative) implCabsNode() {}
func (*Negative) implCabsExpr() {}

func (*AddrOf) implCabsNode() {}
func (*AddrOf) implCabsExpr() {}

func (*Pointer) implCabsNode() {}
func (*Pointer) implCabsExpr() {}

func (*FunctionExpression) implCabsNode() {}
func (*FunctionExpression) implCabsExpr() {}

func (*ArrayExpression) implCabsNode() {}
func (*ArrayExpression) implCabsExpr() {}

func (*Id) implCabsNode() {}
func (*Id) implCabsExpr() {}

func (*Const) implCabsNode() {}
func (*Const) implCabsExpr() {}

func (*StringLiteral) implCabsNode() {}
func (*StringLiteral) implCabsExpr() {}
