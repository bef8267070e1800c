package script

import (
	"strconv"

	"github.com/zurustar/eventscript/pkg/ast"
	"gopkg.in/yaml.v3"
)

var binaryOperators = map[ast.Operator]bool{
	ast.OpAdd: true, ast.OpSub: true, ast.OpMul: true, ast.OpDiv: true, ast.OpMod: true,
	ast.OpEq: true, ast.OpNe: true, ast.OpLt: true, ast.OpLe: true, ast.OpGt: true, ast.OpGe: true,
	ast.OpAnd: true, ast.OpOr: true,
}

var unaryOperators = map[ast.Operator]bool{
	ast.OpAdd: true, ast.OpSub: true, ast.OpNot: true, ast.OpInc: true, ast.OpDec: true,
}

func decodeExpression(n *yaml.Node) (ast.Expression, error) {
	o, err := asObject(n)
	if err != nil {
		return nil, err
	}
	typ, err := o.str("type")
	if err != nil {
		return nil, err
	}
	pos, err := o.pos()
	if err != nil {
		return nil, err
	}
	e, ok, err := decodeExpressionNode(o, typ, pos)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorAt(n, "expected an expression, got %q", typ)
	}
	return e, nil
}

// args decodes an optional list of expressions into an ExpressionList.
func (o *object) args(key string, pos ast.Pos) (*ast.ExpressionList, error) {
	l := &ast.ExpressionList{Pos: pos}
	n := o.get(key)
	if n == nil {
		return l, nil
	}
	items, err := sequence(n)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		e, err := decodeExpression(item)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, e)
	}
	return l, nil
}

func (o *object) operator(set map[ast.Operator]bool) (ast.Operator, error) {
	s, err := o.str("op")
	if err != nil {
		return "", err
	}
	op := ast.Operator(s)
	if !set[op] {
		return "", errorAt(o.get("op"), "unsupported operator %q", s)
	}
	return op, nil
}

func decodeExpressionNode(o *object, typ string, pos ast.Pos) (ast.Expression, bool, error) {
	switch typ {
	case "Int":
		var v int64
		if err := o.scalar("value", &v); err != nil {
			return nil, true, err
		}
		return &ast.IntLiteral{Pos: pos, Value: v}, true, nil

	case "Float":
		var v float64
		if err := o.scalar("value", &v); err != nil {
			return nil, true, err
		}
		return &ast.FloatLiteral{Pos: pos, Value: v}, true, nil

	case "Bool":
		var v bool
		if err := o.scalar("value", &v); err != nil {
			return nil, true, err
		}
		return &ast.BoolLiteral{Pos: pos, Value: v}, true, nil

	case "String":
		// `raw` is the source lexeme with quotes and escapes; `value` is
		// already-decoded text.
		if o.get("raw") != nil {
			raw, err := o.str("raw")
			if err != nil {
				return nil, true, err
			}
			return &ast.StringLiteral{Pos: pos, Raw: raw}, true, nil
		}
		v, err := o.str("value")
		if err != nil {
			return nil, true, err
		}
		return &ast.StringLiteral{Pos: pos, Raw: strconv.Quote(v)}, true, nil

	case "Identifier":
		name, err := o.str("name")
		if err != nil {
			return nil, true, err
		}
		return &ast.Identifier{Pos: pos, Name: name}, true, nil

	case "Assignment":
		target, err := o.expression("target")
		if err != nil {
			return nil, true, err
		}
		v, err := o.expression("value")
		if err != nil {
			return nil, true, err
		}
		return &ast.Assignment{Pos: pos, Target: target, Value: v}, true, nil

	case "Unary":
		op, err := o.operator(unaryOperators)
		if err != nil {
			return nil, true, err
		}
		operand, err := o.expression("operand")
		if err != nil {
			return nil, true, err
		}
		return &ast.Unary{Pos: pos, Op: op, Operand: operand}, true, nil

	case "Binary":
		op, err := o.operator(binaryOperators)
		if err != nil {
			return nil, true, err
		}
		left, err := o.expression("left")
		if err != nil {
			return nil, true, err
		}
		right, err := o.expression("right")
		if err != nil {
			return nil, true, err
		}
		return &ast.Binary{Pos: pos, Op: op, Left: left, Right: right}, true, nil

	case "List":
		l, err := o.args("items", pos)
		if err != nil {
			return nil, true, err
		}
		return l, true, nil

	case "Call":
		callee, err := o.str("callee")
		if err != nil {
			return nil, true, err
		}
		args, err := o.args("args", pos)
		if err != nil {
			return nil, true, err
		}
		return &ast.Call{Pos: pos, Callee: callee, Args: args}, true, nil

	case "Builtin":
		name, err := o.str("name")
		if err != nil {
			return nil, true, err
		}
		args, err := o.args("args", pos)
		if err != nil {
			return nil, true, err
		}
		return &ast.BuiltinCall{Pos: pos, Name: name, Args: args}, true, nil

	case "Constructor":
		kind, err := o.str("kind")
		if err != nil {
			return nil, true, err
		}
		args, err := o.args("args", pos)
		if err != nil {
			return nil, true, err
		}
		return &ast.Constructor{Pos: pos, Kind: kind, Args: args}, true, nil

	case "Member":
		operand, err := o.expression("operand")
		if err != nil {
			return nil, true, err
		}
		name, err := o.str("name")
		if err != nil {
			return nil, true, err
		}
		return &ast.Member{Pos: pos, Operand: operand, Name: name}, true, nil
	}
	return nil, false, nil
}
