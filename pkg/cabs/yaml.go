package cabs

import (
	"fmt"
	"go/constant"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FprintYAML writes node as a YAML document. Every node becomes a mapping
// whose first key is its kind; fields follow in declaration order.
func FprintYAML(w io.Writer, node Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ToYAML(node)); err != nil {
		return fmt.Errorf("encode %T: %w", node, err)
	}
	return enc.Close()
}

// ToYAML converts node to a YAML node tree
func ToYAML(node Node) *yaml.Node {
	switch n := node.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case NullNode:
		return kind("NullNode").node
	case *TranslationUnit:
		return kind("TranslationUnit").list("decls", len(n.Decls), func(i int) Node { return n.Decls[i] }).node
	case *FunctionDefinition:
		m := kind("FunctionDefinition").str("name", n.Name()).str("type", n.Decl.Type.String())
		if n.Decl.Static {
			m.boolean("static", true)
		}
		return m.list("params", len(n.Params().Params), func(i int) Node { return n.Params().Params[i] }).
			child("body", n.Body).node
	case *Declaration:
		m := kind("Declaration").str("name", n.Name).integer("line", n.Line).str("type", n.Type.String())
		if n.Static {
			m.boolean("static", true)
		}
		if n.Extern {
			m.boolean("extern", true)
		}
		if n.Init != nil {
			m.child("init", n.Init)
		}
		return m.node
	case *CompoundStatement:
		decls := n.Decls
		if decls == nil {
			decls = NewDeclarationList()
		}
		stmts := n.Statements()
		return kind("CompoundStatement").
			list("decls", len(decls.Decls), func(i int) Node { return decls.Decls[i] }).
			list("stmts", len(stmts), func(i int) Node { return stmts[i] }).node
	case *StatementList:
		return kind("StatementList").list("stmts", len(n.Stmts), func(i int) Node { return n.Stmts[i] }).node
	case *IfStatement:
		return kind("IfStatement").child("cond", n.Cond).child("then", n.Then).child("else", n.Else).node
	case *WhileLoop:
		return kind("WhileLoop").child("cond", n.Cond).child("body", n.Body).node
	case *ForLoop:
		return kind("ForLoop").child("init", n.Init).child("cond", n.Cond).
			child("step", n.Step).child("body", n.Body).node
	case *ReturnStatement:
		return kind("ReturnStatement").child("expr", n.Expr).node
	case *BreakStatement:
		return kind("BreakStatement").node
	case *ContinueStatement:
		return kind("ContinueStatement").node
	case *ExprStatement:
		return kind("ExprStatement").child("expr", n.Expr).node
	case *Binop:
		return kind("Binop").str("op", n.Op.String()).child("left", n.Left).child("right", n.Right).node
	case *Negative:
		return kind("Negative").child("expr", n.Expr).node
	case *AddrOf:
		return kind("AddrOf").child("expr", n.Expr).node
	case *Pointer:
		return kind("Pointer").child("expr", n.Expr).node
	case *FunctionExpression:
		var args []Expr
		if n.Args != nil {
			args = n.Args.Args
		}
		return kind("FunctionExpression").child("func", n.Func).
			list("args", len(args), func(i int) Node { return args[i] }).node
	case *ArrayExpression:
		return kind("ArrayExpression").child("base", n.Base).child("index", n.Index).node
	case *Id:
		return kind("Id").str("name", n.Name).integer("line", n.Line).node
	case *Const:
		m := kind("Const")
		switch {
		case n.Type.Name == "char":
			m.str("value", ConstString(n))
		case n.Value.Kind() == constant.Float:
			m.scalar("value", "!!float", ConstString(n))
		default:
			m.scalar("value", "!!int", n.Value.ExactString())
		}
		return m.str("type", n.Type.Name).node
	case *StringLiteral:
		return kind("StringLiteral").str("value", n.Value).node
	case Type:
		return kind("Type").str("type", n.String()).node
	}
	return kind(fmt.Sprintf("%T", node)).node
}

// mapping builds a block-style mapping with keys in insertion order
type mapping struct {
	node *yaml.Node
}

func kind(name string) *mapping {
	m := &mapping{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
	return m.str("kind", name)
}

func (m *mapping) set(key string, value *yaml.Node) *mapping {
	m.node.Content = append(m.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
	return m
}

func (m *mapping) scalar(key, tag, value string) *mapping {
	return m.set(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value})
}

func (m *mapping) str(key, value string) *mapping {
	return m.scalar(key, "!!str", value)
}

func (m *mapping) integer(key string, value int) *mapping {
	return m.scalar(key, "!!int", strconv.Itoa(value))
}

func (m *mapping) boolean(key string, value bool) *mapping {
	return m.scalar(key, "!!bool", strconv.FormatBool(value))
}

func (m *mapping) child(key string, n Node) *mapping {
	return m.set(key, ToYAML(n))
}

func (m *mapping) list(key string, n int, at func(i int) Node) *mapping {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for i := range n {
		seq.Content = append(seq.Content, ToYAML(at(i)))
	}
	return m.set(key, seq)
}
