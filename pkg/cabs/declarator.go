package cabs

type derivKind int

const (
	derivPointer derivKind = iota
	derivFunction
	derivArray
)

// derivation is one type constructor waiting for its element type
type derivation struct {
	kind   derivKind
	params *ParamList
	length int
}

// Declarator is a name plus the type constructors collected around it,
// innermost-applied first. Values are immutable: every step returns a new
// Declarator and leaves the receiver alone, so a partial declarator can be
// shared between parse stack entries.
//
// Each step prepends, and Type applies the list to the base type front to
// back. For "int *f()" the direct declarator f() gives [func], the pointer
// gives [ptr func], and applying that to int yields a function returning a
// pointer to int. For "int (*f)()" the order is [func ptr]: a pointer to a
// function returning int.
type Declarator struct {
	Name   string
	Line   int
	derivs []derivation
}

// NewDeclarator creates the declarator of a bare identifier
func NewDeclarator(name string, line int) Declarator {
	return Declarator{Name: name, Line: line}
}

func (d Declarator) with(dv derivation) Declarator {
	derivs := make([]derivation, len(d.derivs)+1)
	derivs[0] = dv
	copy(derivs[1:], d.derivs)
	d.derivs = derivs
	return d
}

// Pointer wraps the declarator in a "*"
func (d Declarator) Pointer() Declarator {
	return d.with(derivation{kind: derivPointer})
}

// Function appends a parameter list
func (d Declarator) Function(params *ParamList) Declarator {
	if params == nil {
		params = NewParamList()
	}
	return d.with(derivation{kind: derivFunction, params: params})
}

// Array appends a "[n]" suffix
func (d Declarator) Array(n int) Declarator {
	return d.with(derivation{kind: derivArray, length: n})
}

// IsFunction reports whether the declared entity is itself a function
func (d Declarator) IsFunction() bool {
	n := len(d.derivs)
	return n > 0 && d.derivs[n-1].kind == derivFunction
}

// Type applies the collected constructors to base
func (d Declarator) Type(base Type) Type {
	t := base
	for _, dv := range d.derivs {
		switch dv.kind {
		case derivPointer:
			t = &PointerType{Elem: t}
		case derivFunction:
			t = &FunctionType{Params: dv.params, Result: t}
		case derivArray:
			t = &ArrayType{Elem: t, Len: dv.length}
		}
	}
	return t
}

// Declare finalizes the declarator into a declaration of base
func (d Declarator) Declare(base Type) *Declaration {
	return &Declaration{Name: d.Name, Line: d.Line, Type: d.Type(base)}
}
