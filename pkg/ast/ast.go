// Package ast defines the eventscript syntax tree consumed by the interpreter.
// Trees are produced by an external parser (or decoded from a document by
// pkg/script); the interpreter trusts their syntactic well-formedness.
package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/zurustar/eventscript/pkg/types"
)

// Pos is a source position. Line and Column are as reported by the parser.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Node interface {
	Position() Pos
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Script is the root node: function declarations plus top-level statements.
type Script struct {
	Functions  []*Function
	Statements []Statement
}

func (s *Script) Position() Pos {
	if len(s.Statements) > 0 {
		return s.Statements[0].Position()
	}
	if len(s.Functions) > 0 {
		return s.Functions[0].Pos
	}
	return Pos{Line: 1}
}

func (s *Script) String() string {
	var out bytes.Buffer
	for _, f := range s.Functions {
		out.WriteString(f.String())
		out.WriteString("\n")
	}
	for _, st := range s.Statements {
		out.WriteString(st.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Param is a single function parameter.
type Param struct {
	Pos  Pos
	Name string
	Type types.Type
}

// Function is a top-level function declaration.
// Returns is empty for a void function, has one entry for a scalar return
// and several entries for a tuple return.
type Function struct {
	Pos     Pos
	Name    string
	Params  []Param
	Returns []types.Type
	Body    []Statement
}

func (f *Function) Position() Pos { return f.Pos }

func (f *Function) String() string {
	var out bytes.Buffer
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	out.WriteString("func " + f.Name + "(" + strings.Join(params, ", ") + ")")
	switch len(f.Returns) {
	case 0:
	case 1:
		out.WriteString(" -> " + f.Returns[0].String())
	default:
		out.WriteString(" -> " + types.Join(f.Returns))
	}
	out.WriteString(" {")
	for _, s := range f.Body {
		out.WriteString(" " + s.String())
	}
	out.WriteString(" }")
	return out.String()
}

// VarDeclaration: var x : T
type VarDeclaration struct {
	Pos  Pos
	Name string
	Type types.Type
}

func (s *VarDeclaration) statementNode()  {}
func (s *VarDeclaration) Position() Pos   { return s.Pos }
func (s *VarDeclaration) String() string { return "var " + s.Name + " : " + s.Type.String() }

// VarDefinition: var x = expr
type VarDefinition struct {
	Pos   Pos
	Name  string
	Value Expression
}

func (s *VarDefinition) statementNode()  {}
func (s *VarDefinition) Position() Pos   { return s.Pos }
func (s *VarDefinition) String() string { return "var " + s.Name + " = " + s.Value.String() }

// If: if (cond) then [else otherwise]. Else may be nil.
type If struct {
	Pos  Pos
	Cond Expression
	Then Statement
	Else Statement
}

func (s *If) statementNode() {}
func (s *If) Position() Pos  { return s.Pos }
func (s *If) String() string {
	out := "if (" + s.Cond.String() + ") " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

// Block: { statements }
type Block struct {
	Pos        Pos
	Statements []Statement
}

func (s *Block) statementNode() {}
func (s *Block) Position() Pos  { return s.Pos }
func (s *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for _, st := range s.Statements {
		out.WriteString(" " + st.String())
	}
	out.WriteString(" }")
	return out.String()
}

type ExpressionStatement struct {
	Pos        Pos
	Expression Expression
}

func (s *ExpressionStatement) statementNode()  {}
func (s *ExpressionStatement) Position() Pos   { return s.Pos }
func (s *ExpressionStatement) String() string { return s.Expression.String() }

// For: for (init; cond; update) body. Init, Cond and Update may be nil;
// a nil Cond loops until break or return.
type For struct {
	Pos    Pos
	Init   Statement
	Cond   Expression
	Update Expression
	Body   Statement
}

func (s *For) statementNode() {}
func (s *For) Position() Pos  { return s.Pos }
func (s *For) String() string {
	part := func(n Node) string {
		if n == nil {
			return ""
		}
		return n.String()
	}
	var init, cond, update string
	if s.Init != nil {
		init = part(s.Init)
	}
	if s.Cond != nil {
		cond = part(s.Cond)
	}
	if s.Update != nil {
		update = part(s.Update)
	}
	return "for (" + init + "; " + cond + "; " + update + ") " + s.Body.String()
}

type Break struct{ Pos Pos }

func (s *Break) statementNode()  {}
func (s *Break) Position() Pos   { return s.Pos }
func (s *Break) String() string { return "break" }

type Continue struct{ Pos Pos }

func (s *Continue) statementNode()  {}
func (s *Continue) Position() Pos   { return s.Pos }
func (s *Continue) String() string { return "continue" }

// Return: return [expr, ...]
type Return struct {
	Pos    Pos
	Values []Expression
}

func (s *Return) statementNode() {}
func (s *Return) Position() Pos  { return s.Pos }
func (s *Return) String() string {
	if len(s.Values) == 0 {
		return "return"
	}
	return "return " + joinExpressions(s.Values)
}

func joinExpressions(es []Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
