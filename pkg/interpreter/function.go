package interpreter

import (
	"errors"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/scope"
	"github.com/zurustar/eventscript/pkg/types"
	"github.com/zurustar/eventscript/pkg/value"
)

// registerFunctions defines every declaration in the root scope before any
// statement runs, so functions may be referenced before their declaration.
func (in *Interpreter) registerFunctions(decls []*ast.Function) error {
	for _, decl := range decls {
		fn, err := newFunction(decl)
		if err != nil {
			return err
		}
		if err := in.scope.Define(fn.Name, fn); err != nil {
			if errors.Is(err, scope.ErrAlreadyDefined) {
				return newAlreadyDefinedError(decl.Pos, fn.Name)
			}
			return err
		}
		in.log.Debug("Function registered", "name", fn.Name,
			"params", types.Join(fn.ParamTypes()), "returns", fn.ReturnType())
	}
	return nil
}

// newFunction validates a declaration and builds its descriptor.
func newFunction(decl *ast.Function) (*value.Function, error) {
	seen := make(map[string]bool, len(decl.Params))
	params := make([]value.Param, 0, len(decl.Params))
	for _, p := range decl.Params {
		if seen[p.Name] {
			return nil, newDuplicateParametersError(p.Pos)
		}
		seen[p.Name] = true
		if p.Type == types.Void {
			return nil, newVoidParameterError(p.Pos)
		}
		params = append(params, value.Param{Name: p.Name, Type: p.Type})
	}

	var returns []types.Type
	if !(len(decl.Returns) == 1 && decl.Returns[0] == types.Void) {
		returns = append(returns, decl.Returns...)
	}

	return &value.Function{
		Name:    decl.Name,
		Params:  params,
		Returns: returns,
		Decl:    decl,
	}, nil
}

// resolveFunction finds a function bound to name directly or through a
// func-typed value.
func (in *Interpreter) resolveFunction(name string) (*value.Function, bool) {
	d, ok := in.scope.Lookup(name)
	if !ok {
		return nil, false
	}
	switch x := d.(type) {
	case *value.Function:
		return x, true
	case value.FuncRef:
		return x.Fn, true
	}
	return nil, false
}

func (in *Interpreter) evalCall(n *ast.Call) (value.Value, error) {
	fn, ok := in.resolveFunction(n.Callee)
	if !ok {
		return nil, newCannotResolveError(n.Pos, n.Callee)
	}
	arg, err := in.evalList(n.Args)
	if err != nil {
		return nil, err
	}
	args := value.Elements(arg)
	if !types.Equal(value.TypesOf(args), fn.ParamTypes()) {
		return nil, newArgumentError(n.Pos, fn.Name, fn.ParamTypes())
	}
	return in.invoke(fn, args, n.Pos)
}

// invoke runs fn's body in a fresh function scope with args bound to its
// parameters. It yields Void, the single returned value, or a Tuple.
func (in *Interpreter) invoke(fn *value.Function, args []value.Value, pos ast.Pos) (value.Value, error) {
	if in.depth >= in.maxDepth {
		return nil, newStackOverflowError(pos, fn.Name, in.maxDepth)
	}
	in.depth++
	defer func() { in.depth-- }()

	in.scope.FunctionSubscope(fn)
	defer in.scope.Abandon()

	for i, p := range fn.Params {
		if err := in.scope.Define(p.Name, args[i]); err != nil {
			panic("interpreter: parameter " + p.Name + " rebound in a fresh scope")
		}
	}

	for _, stmt := range fn.Body() {
		f, err := in.exec(stmt)
		if err != nil {
			return nil, err
		}
		if f.kind == flowReturn {
			return f.payload, nil
		}
	}

	if !fn.IsVoid() {
		return nil, newMissingReturnError(pos)
	}
	return value.Unit, nil
}
