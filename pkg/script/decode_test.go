package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/types"
)

func TestParse_JSON(t *testing.T) {
	doc := `{
  "functions": [
    {"name": "pair", "returns": ["int", "string"],
     "body": [{"type": "Return", "values": [{"type": "Int", "value": 1}, {"type": "String", "value": "a"}]}]}
  ],
  "statements": [
    {"type": "VarDeclaration", "name": "d", "var_type": "duration"},
    {"type": "ExpressionStatement", "expression": {"type": "Call", "callee": "pair"}}
  ]
}`
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := s.Functions[0]
	if fn.Name != "pair" || !types.Equal(fn.Returns, []types.Type{types.Int, types.String}) {
		t.Errorf("unexpected function %s", fn)
	}
	decl, ok := s.Statements[0].(*ast.VarDeclaration)
	if !ok || decl.Type != types.Duration {
		t.Errorf("unexpected declaration %v", s.Statements[0])
	}
	es, ok := s.Statements[1].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", s.Statements[1])
	}
	call := es.Expression.(*ast.Call)
	if call.Callee != "pair" || call.Args == nil || len(call.Args.Items) != 0 {
		t.Errorf("unexpected call %v", call)
	}
}

func TestParse_Nodes(t *testing.T) {
	doc := `
statements:
  - type: If
    cond: {type: Unary, op: "!", operand: {type: Bool, value: false}}
    then: {type: Block, body: [{type: Break}]}
    else: {type: Return}
  - type: For
    body: {type: Continue}
  - {type: Assignment, target: {type: Identifier, name: x}, value: {type: Float, value: 2}}
  - {type: List, items: [{type: Int, value: 1}, {type: String, raw: '"a\tb"'}]}
  - {type: Builtin, name: OnInterval, args: [{type: Identifier, name: f}, {type: Constructor, kind: duration}]}
`
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(s.Statements))
	}

	ifs := s.Statements[0].(*ast.If)
	if u := ifs.Cond.(*ast.Unary); u.Op != ast.OpNot {
		t.Errorf("expected !, got %s", u.Op)
	}
	if _, ok := ifs.Else.(*ast.Return); !ok {
		t.Errorf("expected return in else, got %T", ifs.Else)
	}

	loop := s.Statements[1].(*ast.For)
	if loop.Init != nil || loop.Cond != nil || loop.Update != nil {
		t.Error("expected empty for clauses")
	}

	assign := s.Statements[2].(*ast.ExpressionStatement).Expression.(*ast.Assignment)
	if f := assign.Value.(*ast.FloatLiteral); f.Value != 2 {
		t.Errorf("expected 2.0, got %v", f.Value)
	}

	list := s.Statements[3].(*ast.ExpressionStatement).Expression.(*ast.ExpressionList)
	if raw := list.Items[1].(*ast.StringLiteral).Raw; raw != `"a\tb"` {
		t.Errorf("expected raw lexeme to be kept, got %s", raw)
	}

	b := s.Statements[4].(*ast.ExpressionStatement).Expression.(*ast.BuiltinCall)
	if b.Name != ast.BuiltinOnInterval || len(b.Args.Items) != 2 {
		t.Errorf("unexpected builtin %v", b)
	}
}

func TestParse_Positions(t *testing.T) {
	doc := "statements:\n  - type: Break\n  - {type: Continue, line: 12, column: 3}\n"
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := s.Statements[0].Position(); p.Line != 2 {
		t.Errorf("expected line 2, got %s", p)
	}
	if p := s.Statements[1].Position(); p != (ast.Pos{Line: 12, Column: 3}) {
		t.Errorf("expected 12:3, got %s", p)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty document", "", "empty document"},
		{"invalid yaml", "statements: [", "parse"},
		{"not a mapping", "- 1", "expected a mapping"},
		{"unknown top-level key", "scripts: []", `unknown key "scripts"`},
		{"statements not a list", "statements: {type: Break}", "expected a list"},
		{"missing type", "statements: [{name: x}]", `missing "type"`},
		{"unknown node type", "statements: [{type: While}]", `unknown node type "While"`},
		{"statement as expression", "statements: [{type: ExpressionStatement, expression: {type: Break}}]", "expected an expression"},
		{"bad operator", "statements: [{type: Binary, op: '**', left: {type: Int, value: 1}, right: {type: Int, value: 2}}]", "unsupported operator"},
		{"bad int", "statements: [{type: Int, value: abc}]", `invalid "value"`},
		{"unknown type name", "statements: [{type: VarDeclaration, name: x, var_type: number}]", "unknown type"},
		{"missing then", "statements: [{type: If, cond: {type: Bool, value: true}}]", `missing "then"`},
		{"unknown function key", "functions: [{name: f, args: []}]", `unknown key "args"`},
		{"bad return type", "functions: [{name: f, returns: [number]}]", "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}

	t.Run("decode errors carry a position", func(t *testing.T) {
		_, err := Parse([]byte("statements:\n  - {type: While}\n"))
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("expected *DecodeError, got %T", err)
		}
		if de.Pos.Line != 2 {
			t.Errorf("expected line 2, got %s", de.Pos)
		}
	})
}
