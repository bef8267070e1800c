package interpreter

import (
	"errors"
	"fmt"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/scope"
	"github.com/zurustar/eventscript/pkg/types"
	"github.com/zurustar/eventscript/pkg/value"
)

// exec runs a statement and reports how control leaves it.
func (in *Interpreter) exec(s ast.Statement) (flow, error) {
	switch n := s.(type) {
	case *ast.VarDeclaration:
		return normal, in.execDeclaration(n)
	case *ast.VarDefinition:
		return normal, in.execDefinition(n)
	case *ast.If:
		return in.execIf(n)
	case *ast.Block:
		return in.execBlock(n)
	case *ast.ExpressionStatement:
		_, err := in.eval(n.Expression)
		return normal, err
	case *ast.For:
		return in.execFor(n)
	case *ast.Break:
		if !in.scope.IsLoopScope() {
			return normal, newBreakOutsideLoopError(n.Pos)
		}
		return breakFlow, nil
	case *ast.Continue:
		if !in.scope.IsLoopScope() {
			return normal, newContinueOutsideLoopError(n.Pos)
		}
		return continueFlow, nil
	case *ast.Return:
		return in.execReturn(n)
	case nil:
		return normal, nil
	default:
		return normal, fmt.Errorf("unknown statement %T at line %s", s, s.Position())
	}
}

// zeroValue is the initial value of a declared variable.
func (in *Interpreter) zeroValue(t types.Type) value.Value {
	switch t {
	case types.Bool:
		return value.Bool(false)
	case types.Int:
		return value.Int(0)
	case types.Float:
		return value.Float(0)
	case types.String:
		return value.String("")
	case types.DateTime:
		return value.DateTime{Time: in.now()}
	case types.Duration:
		return value.Duration(0)
	}
	return nil
}

func (in *Interpreter) define(pos ast.Pos, name string, d value.Declarable) error {
	if err := in.scope.Define(name, d); err != nil {
		if errors.Is(err, scope.ErrAlreadyDefined) {
			return newAlreadyDefinedError(pos, name)
		}
		return err
	}
	return nil
}

func (in *Interpreter) execDeclaration(n *ast.VarDeclaration) error {
	if !n.Type.Declarable() {
		return newCannotDeclareError(n.Pos, n.Type)
	}
	return in.define(n.Pos, n.Name, in.zeroValue(n.Type))
}

func (in *Interpreter) execDefinition(n *ast.VarDefinition) error {
	v, err := in.eval(n.Value)
	if err != nil {
		return err
	}
	if value.IsVoid(v) {
		return newCannotDeclareError(n.Pos, types.Void)
	}
	return in.define(n.Pos, n.Name, v)
}

func (in *Interpreter) execIf(n *ast.If) (flow, error) {
	c, err := in.eval(n.Cond)
	if err != nil {
		return normal, err
	}
	cond, ok := c.(value.Bool)
	if !ok {
		return normal, newTypeMismatchError(n.Cond.Position(), types.Bool)
	}

	branch := n.Then
	if !cond {
		branch = n.Else
	}
	if branch == nil {
		return normal, nil
	}

	in.scope.Subscope()
	defer in.scope.Abandon()
	return in.exec(branch)
}

func (in *Interpreter) execBlock(n *ast.Block) (flow, error) {
	in.scope.Subscope()
	defer in.scope.Abandon()

	for _, stmt := range n.Statements {
		f, err := in.exec(stmt)
		if err != nil || !f.isNormal() {
			return f, err
		}
	}
	return normal, nil
}

// execFor runs init once, then body and update while cond holds. A
// missing condition is true; a non-bool condition ends the loop.
func (in *Interpreter) execFor(n *ast.For) (flow, error) {
	in.scope.LoopSubscope()
	defer in.scope.Abandon()

	if n.Init != nil {
		if _, err := in.exec(n.Init); err != nil {
			return normal, err
		}
	}

	for {
		if n.Cond != nil {
			c, err := in.eval(n.Cond)
			if err != nil {
				return normal, err
			}
			if b, ok := c.(value.Bool); !ok || !bool(b) {
				break
			}
		}

		f, err := in.exec(n.Body)
		if err != nil {
			return normal, err
		}
		switch f.kind {
		case flowBreak:
			return normal, nil
		case flowReturn:
			return f, nil
		}

		if n.Update != nil {
			if _, err := in.eval(n.Update); err != nil {
				return normal, err
			}
		}
	}
	return normal, nil
}

// execReturn checks the returned values against the enclosing function's
// signature and starts a return transfer.
func (in *Interpreter) execReturn(n *ast.Return) (flow, error) {
	fn := in.scope.Function()
	if fn == nil {
		return normal, newReturnOutsideFunctionError(n.Pos)
	}

	b := &value.TupleBuilder{}
	got := make([]types.Type, 0, len(n.Values))
	for _, e := range n.Values {
		v, err := in.eval(e)
		if err != nil {
			return normal, err
		}
		b.Add(v)
		got = append(got, v.Type())
	}
	if !types.Equal(got, fn.Returns) {
		return normal, newReturnTypeError(n.Pos, fn.Returns)
	}
	return returnFlow(b.Build()), nil
}
