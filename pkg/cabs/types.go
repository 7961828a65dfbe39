package cabs

import (
	"fmt"
	"strings"
)

// Type is a C-Minus type as built by a declarator
type Type interface {
	Node
	implType()
	String() string
}

// BaseType is one of the type specifiers: int, char, double or void
type BaseType struct {
	Name string
}

// NewBaseType creates a base type named by its specifier keyword
func NewBaseType(name string) *BaseType {
	return &BaseType{Name: name}
}

// PointerType is a pointer to Elem
type PointerType struct {
	Elem Type
}

// FunctionType is a function taking Params and returning Result
type FunctionType struct {
	Params *ParamList
	Result Type
}

// ArrayType is an array of Len elements
type ArrayType struct {
	Elem Type
	Len  int
}

func (*BaseType) implCabsNode()     {}
func (*BaseType) implType()         {}
func (*PointerType) implCabsNode()  {}
func (*PointerType) implType()      {}
func (*FunctionType) implCabsNode() {}
func (*FunctionType) implType()     {}
func (*ArrayType) implCabsNode()    {}
func (*ArrayType) implType()        {}

func (t *BaseType) String() string {
	return t.Name
}

func (t *PointerType) String() string {
	return "pointer to " + t.Elem.String()
}

func (t *FunctionType) String() string {
	var params []string
	if t.Params != nil {
		for _, p := range t.Params.Params {
			params = append(params, p.Type.String())
		}
		if t.Params.Ellipsis {
			params = append(params, "...")
		}
	}
	return fmt.Sprintf("function(%s) returning %s", strings.Join(params, ", "), t.Result)
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("array[%d] of %s", t.Len, t.Elem)
}

// IsDouble reports whether t is the double base type
func IsDouble(t Type) bool {
	b, ok := t.(*BaseType)
	return ok && b.Name == "double"
}

// ArithResult is the type of an arithmetic operation on a and b: double
// when either is double, otherwise int (char promotes).
func ArithResult(a, b *BaseType) *BaseType {
	if a.Name == "double" || b.Name == "double" {
		return NewBaseType("double")
	}
	return NewBaseType("int")
}

// SameType reports whether a and b are structurally identical.
// Parameter names do not matter.
func SameType(a, b Type) bool {
	switch a := a.(type) {
	case *BaseType:
		b, ok := b.(*BaseType)
		return ok && a.Name == b.Name
	case *PointerType:
		b, ok := b.(*PointerType)
		return ok && SameType(a.Elem, b.Elem)
	case *ArrayType:
		b, ok := b.(*ArrayType)
		return ok && a.Len == b.Len && SameType(a.Elem, b.Elem)
	case *FunctionType:
		b, ok := b.(*FunctionType)
		if !ok || !SameType(a.Result, b.Result) {
			return false
		}
		ap, bp := paramsOf(a), paramsOf(b)
		if len(ap.Params) != len(bp.Params) || ap.Ellipsis != bp.Ellipsis {
			return false
		}
		for i := range ap.Params {
			if !SameType(ap.Params[i].Type, bp.Params[i].Type) {
				return false
			}
		}
		return true
	}
	return false
}

func paramsOf(f *FunctionType) *ParamList {
	if f.Params == nil {
		return &ParamList{}
	}
	return f.Params
}
