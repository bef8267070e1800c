package ast

import (
	"strconv"
)

// Operator is a unary or binary operator token.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpMod Operator = "%"

	OpEq Operator = "=="
	OpNe Operator = "!="
	OpLt Operator = "<"
	OpLe Operator = "<="
	OpGt Operator = ">"
	OpGe Operator = ">="

	OpAnd Operator = "&&"
	OpOr  Operator = "||"
	OpNot Operator = "!"

	OpInc Operator = "++"
	OpDec Operator = "--"
)

// Built-in names recognised by the interpreter.
const (
	BuiltinSpeak      = "Speak"
	BuiltinOnInterval = "OnInterval"

	ConstructorDatetime = "datetime"
	ConstructorDuration = "duration"

	MemberToString = "toString"
)

type IntLiteral struct {
	Pos   Pos
	Value int64
}

func (e *IntLiteral) expressionNode()  {}
func (e *IntLiteral) Position() Pos   { return e.Pos }
func (e *IntLiteral) String() string { return strconv.FormatInt(e.Value, 10) }

type FloatLiteral struct {
	Pos   Pos
	Value float64
}

func (e *FloatLiteral) expressionNode()  {}
func (e *FloatLiteral) Position() Pos   { return e.Pos }
func (e *FloatLiteral) String() string { return strconv.FormatFloat(e.Value, 'g', -1, 64) }

// StringLiteral keeps the raw lexeme, quotes and escapes included.
// The interpreter decodes it on evaluation.
type StringLiteral struct {
	Pos Pos
	Raw string
}

func (e *StringLiteral) expressionNode()  {}
func (e *StringLiteral) Position() Pos   { return e.Pos }
func (e *StringLiteral) String() string { return e.Raw }

type BoolLiteral struct {
	Pos   Pos
	Value bool
}

func (e *BoolLiteral) expressionNode()  {}
func (e *BoolLiteral) Position() Pos   { return e.Pos }
func (e *BoolLiteral) String() string { return strconv.FormatBool(e.Value) }

type Identifier struct {
	Pos  Pos
	Name string
}

func (e *Identifier) expressionNode()  {}
func (e *Identifier) Position() Pos   { return e.Pos }
func (e *Identifier) String() string { return e.Name }

// Assignment: target = value. Target must be an Identifier to be valid,
// which the interpreter checks.
type Assignment struct {
	Pos    Pos
	Target Expression
	Value  Expression
}

func (e *Assignment) expressionNode()  {}
func (e *Assignment) Position() Pos   { return e.Pos }
func (e *Assignment) String() string { return e.Target.String() + " = " + e.Value.String() }

// Unary covers prefix ++, --, +, - and !.
type Unary struct {
	Pos     Pos
	Op      Operator
	Operand Expression
}

func (e *Unary) expressionNode()  {}
func (e *Unary) Position() Pos   { return e.Pos }
func (e *Unary) String() string { return string(e.Op) + e.Operand.String() }

type Binary struct {
	Pos   Pos
	Op    Operator
	Left  Expression
	Right Expression
}

func (e *Binary) expressionNode() {}
func (e *Binary) Position() Pos   { return e.Pos }
func (e *Binary) String() string {
	return "(" + e.Left.String() + " " + string(e.Op) + " " + e.Right.String() + ")"
}

// ExpressionList is a comma separated list; an empty list evaluates to void.
type ExpressionList struct {
	Pos   Pos
	Items []Expression
}

func (e *ExpressionList) expressionNode()  {}
func (e *ExpressionList) Position() Pos   { return e.Pos }
func (e *ExpressionList) String() string { return joinExpressions(e.Items) }

// Call invokes a user function by name.
type Call struct {
	Pos    Pos
	Callee string
	Args   *ExpressionList
}

func (e *Call) expressionNode()  {}
func (e *Call) Position() Pos   { return e.Pos }
func (e *Call) String() string { return e.Callee + "(" + listString(e.Args) + ")" }

// BuiltinCall invokes a fixed-name built-in such as Speak or OnInterval.
type BuiltinCall struct {
	Pos  Pos
	Name string
	Args *ExpressionList
}

func (e *BuiltinCall) expressionNode()  {}
func (e *BuiltinCall) Position() Pos   { return e.Pos }
func (e *BuiltinCall) String() string { return e.Name + "(" + listString(e.Args) + ")" }

// Constructor is a literal constructor: datetime(...) or duration(...).
type Constructor struct {
	Pos  Pos
	Kind string
	Args *ExpressionList
}

func (e *Constructor) expressionNode()  {}
func (e *Constructor) Position() Pos   { return e.Pos }
func (e *Constructor) String() string { return e.Kind + "(" + listString(e.Args) + ")" }

// Member is a postfix built-in applied to a value: x.toString or x._2.
type Member struct {
	Pos     Pos
	Operand Expression
	Name    string
}

func (e *Member) expressionNode()  {}
func (e *Member) Position() Pos   { return e.Pos }
func (e *Member) String() string { return e.Operand.String() + "." + e.Name }

// TupleIndex parses a tuple extraction member name ("_N") and returns N.
func TupleIndex(name string) (int, bool) {
	if len(name) < 2 || name[0] != '_' {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func listString(l *ExpressionList) string {
	if l == nil {
		return ""
	}
	return l.String()
}
