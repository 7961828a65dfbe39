// Package fold implements the parse-time constant folding hook.
//
// The parser hands every freshly reduced arithmetic, relational, equality
// and negation node to a Func and keeps whatever it returns. Folding only
// replaces a node whose operands are already constants; anything else
// comes back unchanged.
package fold

import (
	"go/constant"
	"go/token"
	"math"

	"github.com/raymyers/cminus/pkg/cabs"
)

// Func rewrites a newly built expression node
type Func func(cabs.Expr) cabs.Expr

// Chain applies fs in order
func Chain(fs ...Func) Func {
	return func(e cabs.Expr) cabs.Expr {
		for _, f := range fs {
			if f != nil {
				e = f(e)
			}
		}
		return e
	}
}

// Constants folds a Binop with two Const operands, or a Negative of a
// Const, into a single Const. Integer results wrap to 32 bits; a result
// is double when either operand is. Division and modulo by zero, modulo
// of doubles and assignments are left alone.
func Constants(e cabs.Expr) cabs.Expr {
	switch e := e.(type) {
	case *cabs.Binop:
		l, lok := e.Left.(*cabs.Const)
		r, rok := e.Right.(*cabs.Const)
		if !lok || !rok || e.Op.IsAssign() {
			return e
		}
		if c, ok := binary(e.Op, l, r); ok {
			return c
		}
	case *cabs.Negative:
		if c, ok := e.Expr.(*cabs.Const); ok {
			if n, ok := negate(c); ok {
				return n
			}
		}
	}
	return e
}

var comparisons = map[cabs.BinaryOp]token.Token{
	cabs.OpLt: token.LSS,
	cabs.OpGt: token.GTR,
	cabs.OpLe: token.LEQ,
	cabs.OpGe: token.GEQ,
	cabs.OpEq: token.EQL,
	cabs.OpNe: token.NEQ,
}

func binary(op cabs.BinaryOp, l, r *cabs.Const) (*cabs.Const, bool) {
	typ := cabs.ArithResult(l.Type, r.Type)
	double := typ.Name == "double"
	x, y := l.Value, r.Value
	if double {
		x, y = constant.ToFloat(x), constant.ToFloat(y)
	}
	if x.Kind() == constant.Unknown || y.Kind() == constant.Unknown {
		return nil, false
	}

	if tok, ok := comparisons[op]; ok {
		if constant.Compare(x, tok, y) {
			return cabs.NewIntConst(1), true
		}
		return cabs.NewIntConst(0), true
	}

	var tok token.Token
	switch op {
	case cabs.OpAdd:
		tok = token.ADD
	case cabs.OpSub:
		tok = token.SUB
	case cabs.OpMul:
		tok = token.MUL
	case cabs.OpDiv:
		if constant.Sign(y) == 0 {
			return nil, false
		}
		tok = token.QUO
		if !double {
			// truncating integer division
			tok = token.QUO_ASSIGN
		}
	case cabs.OpMod:
		if double || constant.Sign(y) == 0 {
			return nil, false
		}
		tok = token.REM
	default:
		return nil, false
	}
	return makeConst(constant.BinaryOp(x, tok, y), typ)
}

func negate(c *cabs.Const) (*cabs.Const, bool) {
	typ := cabs.ArithResult(c.Type, c.Type)
	if c.Value.Kind() == constant.Unknown {
		return nil, false
	}
	return makeConst(constant.UnaryOp(token.SUB, c.Value, 0), typ)
}

func makeConst(v constant.Value, typ *cabs.BaseType) (*cabs.Const, bool) {
	if typ.Name == "double" {
		f, _ := constant.Float64Val(v)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, false
		}
		return &cabs.Const{Value: constant.MakeFloat64(f), Type: typ}, true
	}
	return &cabs.Const{Value: Wrap32(v), Type: typ}, true
}

// Wrap32 reduces an integer to the int32 it would be after overflow.
// Integer literals and folded results both go through it.
func Wrap32(v constant.Value) constant.Value {
	if i, ok := constant.Int64Val(v); ok {
		return constant.MakeInt64(int64(int32(i)))
	}
	low := constant.BinaryOp(v, token.AND, constant.MakeUint64(math.MaxUint32))
	u, _ := constant.Uint64Val(low)
	return constant.MakeInt64(int64(int32(uint32(u))))
}
