package interpreter

import (
	"errors"
	"fmt"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/types"
	"github.com/zurustar/eventscript/pkg/value"
)

// eval computes the value of an expression node.
func (in *Interpreter) eval(e ast.Expression) (value.Value, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return value.Int(n.Value), nil
	case *ast.FloatLiteral:
		return value.Float(n.Value), nil
	case *ast.StringLiteral:
		return value.String(value.DecodeStringLiteral(n.Raw)), nil
	case *ast.BoolLiteral:
		return value.Bool(n.Value), nil
	case *ast.Identifier:
		return in.evalIdentifier(n)
	case *ast.Assignment:
		return in.evalAssignment(n)
	case *ast.Unary:
		return in.evalUnary(n)
	case *ast.Binary:
		return in.evalBinary(n)
	case *ast.ExpressionList:
		return in.evalList(n)
	case *ast.Call:
		return in.evalCall(n)
	case *ast.BuiltinCall:
		return in.evalBuiltin(n)
	case *ast.Constructor:
		return in.evalConstructor(n)
	case *ast.Member:
		return in.evalMember(n)
	case nil:
		return nil, fmt.Errorf("nil expression")
	default:
		return nil, newUnimplementedError(e.Position(), fmt.Sprintf("%T", e))
	}
}

func (in *Interpreter) evalIdentifier(n *ast.Identifier) (value.Value, error) {
	d, ok := in.scope.Lookup(n.Name)
	if !ok {
		return nil, newUndefinedVariableError(n.Pos, n.Name)
	}
	switch x := d.(type) {
	case value.Value:
		return x, nil
	case *value.Function:
		return value.FuncRef{Fn: x}, nil
	}
	return nil, newUndefinedVariableError(n.Pos, n.Name)
}

// evalAssignment writes to an existing binding of the same type and
// yields the written value.
func (in *Interpreter) evalAssignment(n *ast.Assignment) (value.Value, error) {
	target, ok := n.Target.(*ast.Identifier)
	if !ok {
		return nil, newVariableExpectedError(n.Pos)
	}
	d, ok := in.scope.Lookup(target.Name)
	if !ok {
		return nil, newUndefinedVariableError(target.Pos, target.Name)
	}
	current, ok := d.(value.Value)
	if !ok {
		return nil, newTypeMismatchError(n.Pos, types.Func)
	}
	// Resolve the target before the right-hand side runs.
	v, err := in.eval(n.Value)
	if err != nil {
		return nil, err
	}
	if !sameType(current, v) {
		return nil, newTypeMismatchError(n.Pos, current.Type())
	}
	if !in.scope.Update(target.Name, v) {
		panic("interpreter: update failed after successful lookup of " + target.Name)
	}
	return v, nil
}

// sameType is exact type equality; tuples also compare element types.
func sameType(a, b value.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	ta, ok := a.(*value.Tuple)
	if !ok {
		return true
	}
	return types.Equal(ta.Types(), b.(*value.Tuple).Types())
}

func (in *Interpreter) evalUnary(n *ast.Unary) (value.Value, error) {
	v, err := in.eval(n.Operand)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpNot:
		b, ok := v.(value.Bool)
		if !ok {
			return nil, newUnaryOpError(n.Pos, OpNegation, v.Type())
		}
		return !b, nil
	case ast.OpAdd:
		if !value.IsNumeric(v) {
			return nil, newUnaryOpError(n.Pos, OpUnary, v.Type())
		}
		return v, nil
	case ast.OpSub:
		r, err := value.Negate(v)
		if err != nil {
			return nil, newUnaryOpError(n.Pos, OpUnary, v.Type())
		}
		return r, nil
	case ast.OpInc, ast.OpDec:
		delta := int64(1)
		if n.Op == ast.OpDec {
			delta = -1
		}
		r, err := value.Step(v, delta)
		if err != nil {
			return nil, newUnaryOpError(n.Pos, OpUnary, v.Type())
		}
		if id, ok := n.Operand.(*ast.Identifier); ok {
			if !in.scope.Update(id.Name, r) {
				panic("interpreter: update failed after successful lookup of " + id.Name)
			}
		}
		return r, nil
	}
	return nil, newUnaryOpError(n.Pos, OpUnary, v.Type())
}

func (in *Interpreter) evalBinary(n *ast.Binary) (value.Value, error) {
	left, err := in.eval(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpAnd, ast.OpOr:
		lb, lok := left.(value.Bool)
		rb, rok := right.(value.Bool)
		if !lok || !rok {
			return nil, newBothOperandsBoolError(n.Pos)
		}
		if n.Op == ast.OpAnd {
			return lb && rb, nil
		}
		return lb || rb, nil

	case ast.OpAdd, ast.OpSub:
		r, err := value.Additive(n.Op, left, right, in.formatter)
		if err != nil {
			return nil, newBinaryOpError(n.Pos, OpAdditive, left.Type(), right.Type())
		}
		return r, nil

	case ast.OpMul, ast.OpDiv, ast.OpMod:
		r, err := value.Multiplicative(n.Op, left, right)
		if errors.Is(err, value.ErrDivisionByZero) {
			return nil, newDivisionByZeroError(n.Pos)
		}
		if err != nil {
			return nil, newBinaryOpError(n.Pos, OpMultiplicative, left.Type(), right.Type())
		}
		return r, nil

	case ast.OpEq:
		return value.Bool(value.Equals(left, right)), nil
	case ast.OpNe:
		return value.Bool(!value.Equals(left, right)), nil

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		r, err := value.Relational(n.Op, left, right)
		if err != nil {
			return nil, newBinaryOpError(n.Pos, OpRelational, left.Type(), right.Type())
		}
		return r, nil
	}
	return nil, newUnimplementedError(n.Pos, string(n.Op))
}

// evalList evaluates items left to right. No items is Void and a single
// item is its own value.
func (in *Interpreter) evalList(n *ast.ExpressionList) (value.Value, error) {
	if n == nil {
		return value.Unit, nil
	}
	b := &value.TupleBuilder{}
	for _, item := range n.Items {
		v, err := in.eval(item)
		if err != nil {
			return nil, err
		}
		b.Add(v)
	}
	return b.Build(), nil
}
