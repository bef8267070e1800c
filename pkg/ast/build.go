package ast

import (
	"strconv"

	"github.com/zurustar/eventscript/pkg/types"
)

// Constructors for building trees by hand, mainly from tests and the
// document decoder. Positions are left zero.

func Int(v int64) *IntLiteral       { return &IntLiteral{Value: v} }
func Float(v float64) *FloatLiteral { return &FloatLiteral{Value: v} }
func Bool(v bool) *BoolLiteral      { return &BoolLiteral{Value: v} }
func Ident(name string) *Identifier { return &Identifier{Name: name} }

// Str builds a string literal from already-decoded text by quoting it.
func Str(s string) *StringLiteral { return &StringLiteral{Raw: strconv.Quote(s)} }

// RawStr builds a string literal from a raw lexeme, quotes included.
func RawStr(raw string) *StringLiteral { return &StringLiteral{Raw: raw} }

func Bin(left Expression, op Operator, right Expression) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func Un(op Operator, operand Expression) *Unary {
	return &Unary{Op: op, Operand: operand}
}

func Assign(target, value Expression) *Assignment {
	return &Assignment{Target: target, Value: value}
}

func List(items ...Expression) *ExpressionList {
	return &ExpressionList{Items: items}
}

func CallFn(name string, args ...Expression) *Call {
	return &Call{Callee: name, Args: List(args...)}
}

func Builtin(name string, args ...Expression) *BuiltinCall {
	return &BuiltinCall{Name: name, Args: List(args...)}
}

func Datetime(args ...Expression) *Constructor {
	return &Constructor{Kind: ConstructorDatetime, Args: List(args...)}
}

func DurationOf(args ...Expression) *Constructor {
	return &Constructor{Kind: ConstructorDuration, Args: List(args...)}
}

func Dot(operand Expression, name string) *Member {
	return &Member{Operand: operand, Name: name}
}

func Expr(e Expression) *ExpressionStatement {
	return &ExpressionStatement{Pos: e.Position(), Expression: e}
}

func Declare(name string, t types.Type) *VarDeclaration {
	return &VarDeclaration{Name: name, Type: t}
}

func Define(name string, value Expression) *VarDefinition {
	return &VarDefinition{Name: name, Value: value}
}

func Blk(stmts ...Statement) *Block {
	return &Block{Statements: stmts}
}

func Ret(values ...Expression) *Return {
	return &Return{Values: values}
}

func IfElse(cond Expression, then, els Statement) *If {
	return &If{Cond: cond, Then: then, Else: els}
}

func Loop(init Statement, cond Expression, update Expression, body Statement) *For {
	return &For{Init: init, Cond: cond, Update: update, Body: body}
}

func Brk() *Break     { return &Break{} }
func Cont() *Continue { return &Continue{} }

func P(name string, t types.Type) Param { return Param{Name: name, Type: t} }

// Fn builds a function declaration. A nil returns slice declares void.
func Fn(name string, params []Param, returns []types.Type, body ...Statement) *Function {
	return &Function{Name: name, Params: params, Returns: returns, Body: body}
}
