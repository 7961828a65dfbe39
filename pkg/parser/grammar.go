package parser

import (
	"fmt"
	"go/constant"
	"math/big"
	"strconv"
	"sync"

	"github.com/raymyers/cminus/pkg/cabs"
	"github.com/raymyers/cminus/pkg/fold"
	"github.com/raymyers/cminus/pkg/lalr"
	"github.com/raymyers/cminus/pkg/lexer"
)

// The C-Minus table is built on first use and shared by every Parser.
var (
	tableOnce sync.Once
	table     *lalr.Table
	tableErr  error
	termIDs   map[lexer.TokenType]int
)

func cminusTable() (*lalr.Table, error) {
	tableOnce.Do(func() {
		g := grammar()
		termIDs = make(map[lexer.TokenType]int)
		describe := map[string]string{lalr.EndMarker: "end of input"}
		for _, tt := range lexer.TokenTypes() {
			id, _ := g.TerminalID(tt.Name())
			termIDs[tt] = id
			switch tt {
			case lexer.TokenIdent, lexer.TokenNum, lexer.TokenFNum, lexer.TokenChar_, lexer.TokenString:
				describe[tt.Name()] = tt.String()
			default:
				describe[tt.Name()] = "'" + tt.String() + "'"
			}
		}
		table, tableErr = lalr.Build(g)
		if tableErr != nil {
			return
		}
		table.Describe = func(name string) string { return describe[name] }
	})
	return table, tableErr
}

// typeSpec is a type specifier with the line it appeared on
type typeSpec struct {
	base *cabs.BaseType
	line int
}

// specifiers is a type specifier plus an optional storage class
type specifiers struct {
	typeSpec
	static bool
	extern bool
}

func tok(v any) lexer.Token { return v.(lexer.Token) }

func expr(v any) cabs.Expr { return v.(cabs.Expr) }

func stmt(v any) cabs.Stmt { return v.(cabs.Stmt) }

func binop(op cabs.BinaryOp) lalr.ReduceFunc {
	return func(args []any) (any, error) {
		return &cabs.Binop{Op: op, Left: expr(args[0]), Right: expr(args[2])}, nil
	}
}

// grammar declares C-Minus. Folding is not done here: the parser's
// reduce hook sees every Binop and Negative built below.
func grammar() *lalr.Grammar {
	g := lalr.NewGrammar("translation_unit")
	for _, tt := range lexer.TokenTypes() {
		g.Terminals(tt.Name())
	}
	g.Precedence(lalr.Right, "ELSE")

	// Program structure

	g.Rule("translation_unit", "external_declaration", func(args []any) (any, error) {
		return cabs.NewTranslationUnit(args[0].(cabs.Definition)), nil
	})
	g.Rule("translation_unit", "translation_unit external_declaration", func(args []any) (any, error) {
		tu := args[0].(*cabs.TranslationUnit)
		tu.Add(args[1].(cabs.Definition))
		return tu, nil
	})
	g.Rule("external_declaration", "function_definition", nil)
	g.Rule("external_declaration", "declaration", nil)

	g.Rule("function_definition", "specifiers declarator compound_statement", functionDefinition)

	g.Rule("declaration", "specifiers declarator SEMI", func(args []any) (any, error) {
		return declaration(args[0].(specifiers), args[1].(cabs.Declarator), nil)
	})
	g.Rule("declaration", "specifiers declarator ASSIGN expression SEMI", func(args []any) (any, error) {
		return declaration(args[0].(specifiers), args[1].(cabs.Declarator), expr(args[3]))
	})

	g.Rule("specifiers", "type_specifier", func(args []any) (any, error) {
		return specifiers{typeSpec: args[0].(typeSpec)}, nil
	})
	g.Rule("specifiers", "STATIC type_specifier", func(args []any) (any, error) {
		return specifiers{typeSpec: args[1].(typeSpec), static: true}, nil
	})
	g.Rule("specifiers", "EXTERN type_specifier", func(args []any) (any, error) {
		return specifiers{typeSpec: args[1].(typeSpec), extern: true}, nil
	})
	for _, name := range []string{"INT", "CHAR", "DOUBLE", "VOID"} {
		g.Rule("type_specifier", name, func(args []any) (any, error) {
			t := tok(args[0])
			return typeSpec{base: cabs.NewBaseType(t.Literal), line: t.Line}, nil
		})
	}

	g.Rule("declaration_list_opt", "", func(args []any) (any, error) {
		return cabs.NewDeclarationList(), nil
	})
	g.Rule("declaration_list_opt", "declaration_list", nil)
	g.Rule("declaration_list", "declaration", func(args []any) (any, error) {
		return cabs.NewDeclarationList(args[0].(*cabs.Declaration)), nil
	})
	g.Rule("declaration_list", "declaration_list declaration", func(args []any) (any, error) {
		l := args[0].(*cabs.DeclarationList)
		l.Add(args[1].(*cabs.Declaration))
		return l, nil
	})

	// Declarators

	g.Rule("declarator", "direct_declarator", nil)
	g.Rule("declarator", "TIMES declarator", func(args []any) (any, error) {
		return args[1].(cabs.Declarator).Pointer(), nil
	})
	g.Rule("direct_declarator", "ID", func(args []any) (any, error) {
		t := tok(args[0])
		return cabs.NewDeclarator(t.Literal, t.Line), nil
	})
	g.Rule("direct_declarator", "LPARAN declarator RPARAN", func(args []any) (any, error) {
		return args[1], nil
	})
	g.Rule("direct_declarator", "direct_declarator LPARAN parameter_type_list RPARAN", func(args []any) (any, error) {
		return args[0].(cabs.Declarator).Function(args[2].(*cabs.ParamList)), nil
	})
	g.Rule("direct_declarator", "direct_declarator LPARAN RPARAN", func(args []any) (any, error) {
		return args[0].(cabs.Declarator).Function(nil), nil
	})
	g.Rule("direct_declarator", "direct_declarator LSQUARE NUM RSQUARE", func(args []any) (any, error) {
		t := tok(args[2])
		n, err := strconv.Atoi(t.Literal)
		if err != nil {
			return nil, &lalr.SyntaxError{Line: t.Line, Msg: fmt.Sprintf("array size %s out of range", t.Literal)}
		}
		return args[0].(cabs.Declarator).Array(n), nil
	})

	g.Rule("parameter_type_list", "parameter_list", nil)
	g.Rule("parameter_type_list", "parameter_list COMMA ELLIPSIS", func(args []any) (any, error) {
		l := args[0].(*cabs.ParamList)
		l.Ellipsis = true
		return l, nil
	})
	g.Rule("parameter_list", "parameter_declaration", func(args []any) (any, error) {
		return cabs.NewParamList(args[0].(*cabs.Declaration)), nil
	})
	g.Rule("parameter_list", "parameter_list COMMA parameter_declaration", func(args []any) (any, error) {
		l := args[0].(*cabs.ParamList)
		l.Add(args[2].(*cabs.Declaration))
		return l, nil
	})
	g.Rule("parameter_declaration", "type_specifier declarator", func(args []any) (any, error) {
		return args[1].(cabs.Declarator).Declare(args[0].(typeSpec).base), nil
	})
	g.Rule("parameter_declaration", "type_specifier", func(args []any) (any, error) {
		ts := args[0].(typeSpec)
		return &cabs.Declaration{Line: ts.line, Type: ts.base}, nil
	})

	// Statements

	for _, kind := range []string{"compound_statement", "expression_statement",
		"selection_statement", "iteration_statement", "jump_statement"} {
		g.Rule("statement", kind, nil)
	}
	g.Rule("compound_statement", "LBRACE declaration_list_opt statement_list RBRACE", func(args []any) (any, error) {
		return &cabs.CompoundStatement{Decls: args[1].(*cabs.DeclarationList), Stmts: args[2].(*cabs.StatementList)}, nil
	})
	g.Rule("compound_statement", "LBRACE declaration_list_opt RBRACE", func(args []any) (any, error) {
		return &cabs.CompoundStatement{Decls: args[1].(*cabs.DeclarationList), Stmts: cabs.NullNode{}}, nil
	})
	g.Rule("statement_list", "statement", func(args []any) (any, error) {
		return cabs.NewStatementList(stmt(args[0])), nil
	})
	g.Rule("statement_list", "statement_list statement", func(args []any) (any, error) {
		l := args[0].(*cabs.StatementList)
		l.Add(stmt(args[1]))
		return l, nil
	})

	g.Rule("expression_statement", "expression SEMI", func(args []any) (any, error) {
		return &cabs.ExprStatement{Expr: expr(args[0])}, nil
	})
	g.Rule("expression_statement", "SEMI", func(args []any) (any, error) {
		return cabs.NullNode{}, nil
	})

	// the if without else takes ELSE's precedence, so a following else shifts
	g.RulePrec("selection_statement", "IF LPARAN expression RPARAN statement", "ELSE", func(args []any) (any, error) {
		return &cabs.IfStatement{Cond: expr(args[2]), Then: stmt(args[4]), Else: cabs.NullNode{}}, nil
	})
	g.Rule("selection_statement", "IF LPARAN expression RPARAN statement ELSE statement", func(args []any) (any, error) {
		return &cabs.IfStatement{Cond: expr(args[2]), Then: stmt(args[4]), Else: stmt(args[6])}, nil
	})

	g.Rule("iteration_statement", "WHILE LPARAN expression RPARAN statement", func(args []any) (any, error) {
		return &cabs.WhileLoop{Cond: expr(args[2]), Body: stmt(args[4])}, nil
	})
	g.Rule("iteration_statement", "FOR LPARAN expression_statement expression_statement expression RPARAN statement", func(args []any) (any, error) {
		return &cabs.ForLoop{Init: forClause(args[2]), Cond: forClause(args[3]), Step: expr(args[4]), Body: stmt(args[6])}, nil
	})
	g.Rule("iteration_statement", "FOR LPARAN expression_statement expression_statement RPARAN statement", func(args []any) (any, error) {
		return &cabs.ForLoop{Init: forClause(args[2]), Cond: forClause(args[3]), Step: cabs.NullNode{}, Body: stmt(args[5])}, nil
	})

	g.Rule("jump_statement", "RETURN SEMI", func(args []any) (any, error) {
		return &cabs.ReturnStatement{Expr: cabs.NullNode{}}, nil
	})
	g.Rule("jump_statement", "RETURN expression SEMI", func(args []any) (any, error) {
		return &cabs.ReturnStatement{Expr: expr(args[1])}, nil
	})
	g.Rule("jump_statement", "BREAK SEMI", func(args []any) (any, error) {
		return &cabs.BreakStatement{}, nil
	})
	g.Rule("jump_statement", "CONTINUE SEMI", func(args []any) (any, error) {
		return &cabs.ContinueStatement{}, nil
	})

	// Expressions, loosest binding first

	g.Rule("expression", "equality_expression", nil)
	g.Rule("expression", "equality_expression ASSIGN expression", binop(cabs.OpAssign))
	g.Rule("expression", "equality_expression EQ_PLUS expression", binop(cabs.OpAddAssign))
	g.Rule("expression", "equality_expression EQ_MINUS expression", binop(cabs.OpSubAssign))

	g.Rule("equality_expression", "relational_expression", nil)
	g.Rule("equality_expression", "equality_expression EQ relational_expression", binop(cabs.OpEq))
	g.Rule("equality_expression", "equality_expression NEQ relational_expression", binop(cabs.OpNe))

	g.Rule("relational_expression", "additive_expression", nil)
	g.Rule("relational_expression", "relational_expression LT additive_expression", binop(cabs.OpLt))
	g.Rule("relational_expression", "relational_expression GT additive_expression", binop(cabs.OpGt))
	g.Rule("relational_expression", "relational_expression NGT additive_expression", binop(cabs.OpLe))
	g.Rule("relational_expression", "relational_expression NLT additive_expression", binop(cabs.OpGe))

	g.Rule("additive_expression", "mult_expression", nil)
	g.Rule("additive_expression", "additive_expression PLUS mult_expression", binop(cabs.OpAdd))
	g.Rule("additive_expression", "additive_expression MINUS mult_expression", binop(cabs.OpSub))

	g.Rule("mult_expression", "unary_expression", nil)
	g.Rule("mult_expression", "mult_expression TIMES unary_expression", binop(cabs.OpMul))
	g.Rule("mult_expression", "mult_expression DIV unary_expression", binop(cabs.OpDiv))
	g.Rule("mult_expression", "mult_expression MOD unary_expression", binop(cabs.OpMod))

	g.Rule("unary_expression", "postfix_expression", nil)
	g.Rule("unary_expression", "MINUS unary_expression", func(args []any) (any, error) {
		return &cabs.Negative{Expr: expr(args[1])}, nil
	})
	g.Rule("unary_expression", "PLUS unary_expression", func(args []any) (any, error) {
		return args[1], nil
	})
	g.Rule("unary_expression", "NOT unary_expression", func(args []any) (any, error) {
		// !e is e == 0
		return &cabs.Binop{Op: cabs.OpEq, Left: expr(args[1]), Right: cabs.NewIntConst(0)}, nil
	})
	g.Rule("unary_expression", "TIMES unary_expression", func(args []any) (any, error) {
		return &cabs.Pointer{Expr: expr(args[1])}, nil
	})
	g.Rule("unary_expression", "AMPERSAND unary_expression", func(args []any) (any, error) {
		return &cabs.AddrOf{Expr: expr(args[1])}, nil
	})

	g.Rule("postfix_expression", "primary_expression", nil)
	g.Rule("postfix_expression", "postfix_expression LPARAN argument_expression_list RPARAN", func(args []any) (any, error) {
		return &cabs.FunctionExpression{Func: expr(args[0]), Args: args[2].(*cabs.ArgumentList)}, nil
	})
	g.Rule("postfix_expression", "postfix_expression LPARAN RPARAN", func(args []any) (any, error) {
		return &cabs.FunctionExpression{Func: expr(args[0]), Args: cabs.NewArgumentList()}, nil
	})
	g.Rule("postfix_expression", "postfix_expression LSQUARE expression RSQUARE", func(args []any) (any, error) {
		return &cabs.ArrayExpression{Base: expr(args[0]), Index: expr(args[2])}, nil
	})
	g.Rule("argument_expression_list", "expression", func(args []any) (any, error) {
		return cabs.NewArgumentList(expr(args[0])), nil
	})
	g.Rule("argument_expression_list", "argument_expression_list COMMA expression", func(args []any) (any, error) {
		l := args[0].(*cabs.ArgumentList)
		l.Add(expr(args[2]))
		return l, nil
	})

	g.Rule("primary_expression", "ID", func(args []any) (any, error) {
		t := tok(args[0])
		return &cabs.Id{Name: t.Literal, Line: t.Line}, nil
	})
	g.Rule("primary_expression", "NUM", intConst)
	g.Rule("primary_expression", "FNUM", doubleConst)
	g.Rule("primary_expression", "CHARACTER", charConst)
	g.Rule("primary_expression", "string_literal", nil)
	g.Rule("primary_expression", "LPARAN expression RPARAN", func(args []any) (any, error) {
		return args[1], nil
	})
	g.Rule("string_literal", "STRING", func(args []any) (any, error) {
		text, err := unquote(tok(args[0]))
		if err != nil {
			return nil, err
		}
		return &cabs.StringLiteral{Value: text}, nil
	})
	g.Rule("string_literal", "string_literal STRING", func(args []any) (any, error) {
		text, err := unquote(tok(args[1]))
		if err != nil {
			return nil, err
		}
		s := args[0].(*cabs.StringLiteral)
		s.Append(text)
		return s, nil
	})

	return g
}

func functionDefinition(args []any) (any, error) {
	sp := args[0].(specifiers)
	d := args[1].(cabs.Declarator)
	if !d.IsFunction() {
		return nil, &lalr.SyntaxError{Line: d.Line, Msg: fmt.Sprintf("%s is not a function but has a body", d.Name)}
	}
	if sp.extern {
		return nil, &lalr.SyntaxError{Line: d.Line, Msg: fmt.Sprintf("function definition %s cannot be extern", d.Name)}
	}
	decl := d.Declare(sp.base)
	decl.Static = sp.static
	return &cabs.FunctionDefinition{Decl: decl, Body: args[2].(*cabs.CompoundStatement)}, nil
}

// declaration finalizes a declarator; function prototypes are extern
// unless declared static.
func declaration(sp specifiers, d cabs.Declarator, init cabs.Expr) (*cabs.Declaration, error) {
	if init != nil && d.IsFunction() {
		return nil, &lalr.SyntaxError{Line: d.Line, Msg: fmt.Sprintf("function %s cannot have an initializer", d.Name)}
	}
	decl := d.Declare(sp.base)
	decl.Static = sp.static
	decl.Extern = sp.extern || (d.IsFunction() && !sp.static)
	decl.Init = init
	return decl, nil
}

// forClause unwraps an expression statement used as a for clause
func forClause(v any) cabs.Expr {
	if s, ok := v.(*cabs.ExprStatement); ok {
		return s.Expr
	}
	return cabs.NullNode{}
}

func intConst(args []any) (any, error) {
	t := tok(args[0])
	// digit runs are decimal, leading zeros included
	n, ok := new(big.Int).SetString(t.Literal, 10)
	if !ok {
		return nil, &lalr.SyntaxError{Line: t.Line, Msg: fmt.Sprintf("invalid integer constant %s", t.Literal)}
	}
	return &cabs.Const{Value: fold.Wrap32(constant.Make(n)), Type: cabs.NewBaseType("int")}, nil
}

func doubleConst(args []any) (any, error) {
	t := tok(args[0])
	f, err := strconv.ParseFloat(t.Literal, 64)
	if err != nil {
		return nil, &lalr.SyntaxError{Line: t.Line, Msg: fmt.Sprintf("floating constant %s out of range", t.Literal)}
	}
	return cabs.NewDoubleConst(f), nil
}

func charConst(args []any) (any, error) {
	t := tok(args[0])
	text, err := unquote(t)
	if err != nil {
		return nil, err
	}
	return cabs.NewCharConst(text[0]), nil
}

func unquote(t lexer.Token) (string, error) {
	text, err := lexer.Unquote(t.Literal)
	if err != nil {
		return "", &lalr.SyntaxError{Line: t.Line, Msg: err.Error()}
	}
	return text, nil
}
