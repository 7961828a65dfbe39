package cabs

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first pre-order, children in source
// order. NullNode placeholders are visited like any other node; types are
// visited under the declarations that carry them.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *TranslationUnit:
		for _, d := range n.Decls {
			Walk(d, v)
		}

	case *FunctionDefinition:
		Walk(n.Decl, v)
		if n.Body != nil {
			Walk(n.Body, v)
		}

	case *Declaration:
		if n.Type != nil {
			Walk(n.Type, v)
		}
		if n.Init != nil {
			Walk(n.Init, v)
		}

	case *PointerType:
		Walk(n.Elem, v)

	case *ArrayType:
		Walk(n.Elem, v)

	case *FunctionType:
		if n.Params != nil {
			Walk(n.Params, v)
		}
		Walk(n.Result, v)

	case *ParamList:
		for _, p := range n.Params {
			Walk(p, v)
		}

	case *DeclarationList:
		for _, d := range n.Decls {
			Walk(d, v)
		}

	case *StatementList:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *ArgumentList:
		for _, a := range n.Args {
			Walk(a, v)
		}

	case *CompoundStatement:
		if n.Decls != nil {
			Walk(n.Decls, v)
		}
		Walk(n.Stmts, v)

	case *IfStatement:
		Walk(n.Cond, v)
		Walk(n.Then, v)
		Walk(n.Else, v)

	case *WhileLoop:
		Walk(n.Cond, v)
		Walk(n.Body, v)

	case *ForLoop:
		Walk(n.Init, v)
		Walk(n.Cond, v)
		Walk(n.Step, v)
		Walk(n.Body, v)

	case *ReturnStatement:
		Walk(n.Expr, v)

	case *ExprStatement:
		Walk(n.Expr, v)

	case *Binop:
		Walk(n.Left, v)
		Walk(n.Right, v)

	case *Negative:
		Walk(n.Expr, v)

	case *AddrOf:
		Walk(n.Expr, v)

	case *Pointer:
		Walk(n.Expr, v)

	case *FunctionExpression:
		Walk(n.Func, v)
		if n.Args != nil {
			Walk(n.Args, v)
		}

	case *ArrayExpression:
		Walk(n.Base, v)
		Walk(n.Index, v)

	case *Const:
		if n.Type != nil {
			Walk(n.Type, v)
		}
	}
}

// Inspect collects every node of type T reachable from root, in walk order
func Inspect[T Node](root Node) []T {
	var found []T
	Walk(root, func(n Node) bool {
		if t, ok := n.(T); ok {
			found = append(found, t)
		}
		return true
	})
	return found
}
