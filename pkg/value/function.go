package value

import (
	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/types"
)

// Param is a validated function parameter.
type Param struct {
	Name string
	Type types.Type
}

// Function describes a registered user function. Decl is a non-owning
// reference into the script's AST and carries the body.
type Function struct {
	Name    string
	Params  []Param
	Returns []types.Type
	Decl    *ast.Function
}

func (*Function) declarable() {}

// NumParams returns the number of parameters.
func (f *Function) NumParams() int { return len(f.Params) }

// ParamTypes returns the declared parameter types in order.
func (f *Function) ParamTypes() []types.Type {
	out := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Type
	}
	return out
}

// ReturnType is Void, the scalar return type, or Tuple.
func (f *Function) ReturnType() types.Type {
	switch len(f.Returns) {
	case 0:
		return types.Void
	case 1:
		return f.Returns[0]
	default:
		return types.Tuple
	}
}

// IsVoid reports whether the function returns nothing.
func (f *Function) IsVoid() bool {
	return len(f.Returns) == 0 || (len(f.Returns) == 1 && f.Returns[0] == types.Void)
}

// Schedulable reports whether the function can be driven by a timer:
// no parameters and no return value.
func (f *Function) Schedulable() bool {
	return f.NumParams() == 0 && f.IsVoid()
}

// Position returns the declaration position, or the zero Pos.
func (f *Function) Position() ast.Pos {
	if f.Decl == nil {
		return ast.Pos{}
	}
	return f.Decl.Pos
}

// Body returns the statements of the function body.
func (f *Function) Body() []ast.Statement {
	if f.Decl == nil {
		return nil
	}
	return f.Decl.Body
}
