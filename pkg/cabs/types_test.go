package cabs

import "testing"

func intType() Type  { return NewBaseType("int") }
func charType() Type { return NewBaseType("char") }

func TestDeclaratorComposition(t *testing.T) {
	params := NewParamList(&Declaration{Name: "x", Type: charType()})
	tests := []struct {
		name    string
		d       Declarator
		wantStr string
		wantC   string
	}{
		{"plain", NewDeclarator("x", 1), "int", "int x"},
		{"pointer", NewDeclarator("p", 1).Pointer(), "pointer to int", "int *p"},
		{"pointer to pointer", NewDeclarator("p", 1).Pointer().Pointer(), "pointer to pointer to int", "int **p"},
		// int *f()
		{"function returning pointer", NewDeclarator("f", 1).Function(nil).Pointer(),
			"function() returning pointer to int", "int *f()"},
		// int (*f)()
		{"pointer to function", NewDeclarator("f", 1).Pointer().Function(nil),
			"pointer to function() returning int", "int (*f)()"},
		// int (*f)(char x)
		{"pointer to function with params", NewDeclarator("f", 1).Pointer().Function(params),
			"pointer to function(char) returning int", "int (*f)(char x)"},
		// int *a[10]
		{"array of pointers", NewDeclarator("a", 1).Array(10).Pointer(),
			"array[10] of pointer to int", "int *a[10]"},
		// int (*a)[10]
		{"pointer to array", NewDeclarator("a", 1).Pointer().Array(10),
			"pointer to array[10] of int", "int (*a)[10]"},
		// int f()()
		{"function returning function", NewDeclarator("f", 1).Function(nil).Function(nil),
			"function() returning function() returning int", "int f()()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := tt.d.Type(intType())
			if got := typ.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
			if got := declString(tt.d.Name, typ); got != tt.wantC {
				t.Errorf("declString() = %q, want %q", got, tt.wantC)
			}
		})
	}
}

func TestDeclaratorIsImmutable(t *testing.T) {
	base := NewDeclarator("f", 3).Pointer() // *f
	fn := base.Function(nil)                // (*f)()
	arr := base.Array(4)                    // (*f)[4]

	if got := base.Type(intType()).String(); got != "pointer to int" {
		t.Errorf("base changed: %s", got)
	}
	if got := fn.Type(intType()).String(); got != "pointer to function() returning int" {
		t.Errorf("fn = %s", got)
	}
	if got := arr.Type(intType()).String(); got != "pointer to array[4] of int" {
		t.Errorf("arr = %s", got)
	}
	if base.IsFunction() || fn.IsFunction() || arr.IsFunction() {
		t.Error("pointer declarator reported as function")
	}
	// *g() declares a function
	if !NewDeclarator("g", 1).Function(nil).Pointer().IsFunction() {
		t.Error("function returning pointer not reported as function")
	}

	d := fn.Declare(charType())
	if d.Name != "f" || d.Line != 3 {
		t.Errorf("Declare lost the name: %+v", d)
	}
}

func TestSameType(t *testing.T) {
	fnA := &FunctionType{Params: NewParamList(&Declaration{Name: "a", Type: intType()}), Result: intType()}
	fnB := &FunctionType{Params: NewParamList(&Declaration{Name: "b", Type: intType()}), Result: intType()}
	fnVar := &FunctionType{Params: &ParamList{Params: fnA.Params.Params, Ellipsis: true}, Result: intType()}

	tests := []struct {
		name  string
		a, b  Type
		equal bool
	}{
		{"int == int", intType(), intType(), true},
		{"int != char", intType(), charType(), false},
		{"pointer", &PointerType{Elem: intType()}, &PointerType{Elem: intType()}, true},
		{"pointer elem differs", &PointerType{Elem: intType()}, &PointerType{Elem: charType()}, false},
		{"array length", &ArrayType{Elem: intType(), Len: 2}, &ArrayType{Elem: intType(), Len: 3}, false},
		{"param names ignored", fnA, fnB, true},
		{"ellipsis matters", fnA, fnVar, false},
		{"no params vs nil", &FunctionType{Result: intType()}, &FunctionType{Params: NewParamList(), Result: intType()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameType(tt.a, tt.b); got != tt.equal {
				t.Errorf("SameType(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.equal)
			}
		})
	}
}

func TestArithResult(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"int", "int", "int"},
		{"char", "char", "int"},
		{"char", "int", "int"},
		{"int", "double", "double"},
		{"double", "char", "double"},
	}
	for _, tt := range tests {
		got := ArithResult(NewBaseType(tt.a), NewBaseType(tt.b))
		if got.Name != tt.want {
			t.Errorf("ArithResult(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}
