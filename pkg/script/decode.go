package script

import (
	"fmt"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/types"
	"gopkg.in/yaml.v3"
)

// DecodeError reports a malformed node in a script document.
type DecodeError struct {
	Pos ast.Pos
	Msg string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("script: %s at line %s", e.Msg, e.Pos)
}

func errorAt(n *yaml.Node, format string, args ...any) *DecodeError {
	return &DecodeError{Pos: ast.Pos{Line: n.Line, Column: n.Column}, Msg: fmt.Sprintf(format, args...)}
}

// Parse decodes a YAML or JSON script document into a tree.
//
// The document is a mapping with optional `functions` and `statements`
// lists. Every node is a mapping with a `type` key; positions come from
// the document unless a node carries explicit `line` and `column` keys.
func Parse(data []byte) (*ast.Script, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("script: parse: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("script: empty document")
	}

	root, err := asObject(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if err := root.only("functions", "statements"); err != nil {
		return nil, err
	}

	s := &ast.Script{}
	if n := root.get("functions"); n != nil {
		items, err := sequence(n)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			fn, err := decodeFunction(item)
			if err != nil {
				return nil, err
			}
			s.Functions = append(s.Functions, fn)
		}
	}
	if n := root.get("statements"); n != nil {
		stmts, err := decodeStatements(n)
		if err != nil {
			return nil, err
		}
		s.Statements = stmts
	}
	return s, nil
}

// object is a decoded mapping node.
type object struct {
	node   *yaml.Node
	keys   []string
	fields map[string]*yaml.Node
}

func asObject(n *yaml.Node) (*object, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(n, "expected a mapping")
	}
	o := &object{node: n, fields: make(map[string]*yaml.Node, len(n.Content)/2)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if _, dup := o.fields[key]; dup {
			return nil, errorAt(n.Content[i], "duplicate key %q", key)
		}
		o.keys = append(o.keys, key)
		o.fields[key] = n.Content[i+1]
	}
	return o, nil
}

func (o *object) get(key string) *yaml.Node {
	return o.fields[key]
}

// only rejects keys outside allowed.
func (o *object) only(allowed ...string) error {
	for _, k := range o.keys {
		ok := false
		for _, a := range allowed {
			if k == a {
				ok = true
				break
			}
		}
		if !ok {
			return errorAt(o.node, "unknown key %q", k)
		}
	}
	return nil
}

func (o *object) pos() (ast.Pos, error) {
	p := ast.Pos{Line: o.node.Line, Column: o.node.Column}
	if n := o.get("line"); n != nil {
		if err := n.Decode(&p.Line); err != nil {
			return p, errorAt(n, "line must be an int")
		}
		p.Column = 0
	}
	if n := o.get("column"); n != nil {
		if err := n.Decode(&p.Column); err != nil {
			return p, errorAt(n, "column must be an int")
		}
	}
	return p, nil
}

func (o *object) str(key string) (string, error) {
	n := o.get(key)
	if n == nil {
		return "", errorAt(o.node, "missing %q", key)
	}
	if n.Kind != yaml.ScalarNode {
		return "", errorAt(n, "%q must be a scalar", key)
	}
	return n.Value, nil
}

func (o *object) typ(key string) (types.Type, error) {
	name, err := o.str(key)
	if err != nil {
		return types.Void, err
	}
	t, err := types.Parse(name)
	if err != nil {
		return types.Void, errorAt(o.get(key), "%v", err)
	}
	return t, nil
}

func (o *object) scalar(key string, out any) error {
	n := o.get(key)
	if n == nil {
		return errorAt(o.node, "missing %q", key)
	}
	if err := n.Decode(out); err != nil {
		return errorAt(n, "invalid %q: %v", key, err)
	}
	return nil
}

func sequence(n *yaml.Node) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, errorAt(n, "expected a list")
	}
	return n.Content, nil
}

func decodeFunction(n *yaml.Node) (*ast.Function, error) {
	o, err := asObject(n)
	if err != nil {
		return nil, err
	}
	if err := o.only("name", "params", "returns", "body", "line", "column"); err != nil {
		return nil, err
	}
	pos, err := o.pos()
	if err != nil {
		return nil, err
	}
	name, err := o.str("name")
	if err != nil {
		return nil, err
	}
	fn := &ast.Function{Pos: pos, Name: name}

	if pn := o.get("params"); pn != nil {
		items, err := sequence(pn)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			po, err := asObject(item)
			if err != nil {
				return nil, err
			}
			ppos, err := po.pos()
			if err != nil {
				return nil, err
			}
			pname, err := po.str("name")
			if err != nil {
				return nil, err
			}
			ptype, err := po.typ("type")
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, ast.Param{Pos: ppos, Name: pname, Type: ptype})
		}
	}

	if rn := o.get("returns"); rn != nil {
		// A single type name or a list of names.
		items := []*yaml.Node{rn}
		if rn.Kind == yaml.SequenceNode {
			items = rn.Content
		}
		for _, item := range items {
			t, err := types.Parse(item.Value)
			if err != nil {
				return nil, errorAt(item, "%v", err)
			}
			fn.Returns = append(fn.Returns, t)
		}
	}

	if bn := o.get("body"); bn != nil {
		body, err := decodeStatements(bn)
		if err != nil {
			return nil, err
		}
		fn.Body = body
	}
	return fn, nil
}

func decodeStatements(n *yaml.Node) ([]ast.Statement, error) {
	items, err := sequence(n)
	if err != nil {
		return nil, err
	}
	stmts := make([]ast.Statement, 0, len(items))
	for _, item := range items {
		stmt, err := decodeStatement(item)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// decodeStatement decodes a statement node. An expression node in
// statement position becomes an expression statement.
func decodeStatement(n *yaml.Node) (ast.Statement, error) {
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

	stmt, ok, err := decodeStatementNode(o, typ, pos)
	if ok || err != nil {
		return stmt, err
	}
	expr, ok, err := decodeExpressionNode(o, typ, pos)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorAt(n, "unknown node type %q", typ)
	}
	return &ast.ExpressionStatement{Pos: pos, Expression: expr}, nil
}

// optionalStatement decodes key when present.
func (o *object) optionalStatement(key string) (ast.Statement, error) {
	n := o.get(key)
	if n == nil || n.Tag == "!!null" {
		return nil, nil
	}
	return decodeStatement(n)
}

func (o *object) optionalExpression(key string) (ast.Expression, error) {
	n := o.get(key)
	if n == nil || n.Tag == "!!null" {
		return nil, nil
	}
	return decodeExpression(n)
}

func (o *object) expression(key string) (ast.Expression, error) {
	n := o.get(key)
	if n == nil {
		return nil, errorAt(o.node, "missing %q", key)
	}
	return decodeExpression(n)
}

func decodeStatementNode(o *object, typ string, pos ast.Pos) (ast.Statement, bool, error) {
	switch typ {
	case "VarDeclaration":
		name, err := o.str("name")
		if err != nil {
			return nil, true, err
		}
		t, err := o.typ("var_type")
		if err != nil {
			return nil, true, err
		}
		return &ast.VarDeclaration{Pos: pos, Name: name, Type: t}, true, nil

	case "VarDefinition":
		name, err := o.str("name")
		if err != nil {
			return nil, true, err
		}
		v, err := o.expression("value")
		if err != nil {
			return nil, true, err
		}
		return &ast.VarDefinition{Pos: pos, Name: name, Value: v}, true, nil

	case "If":
		cond, err := o.expression("cond")
		if err != nil {
			return nil, true, err
		}
		then, err := o.optionalStatement("then")
		if err != nil {
			return nil, true, err
		}
		if then == nil {
			return nil, true, errorAt(o.node, "missing %q", "then")
		}
		els, err := o.optionalStatement("else")
		if err != nil {
			return nil, true, err
		}
		return &ast.If{Pos: pos, Cond: cond, Then: then, Else: els}, true, nil

	case "Block":
		var stmts []ast.Statement
		if bn := o.get("body"); bn != nil {
			var err error
			if stmts, err = decodeStatements(bn); err != nil {
				return nil, true, err
			}
		}
		return &ast.Block{Pos: pos, Statements: stmts}, true, nil

	case "ExpressionStatement":
		e, err := o.expression("expression")
		if err != nil {
			return nil, true, err
		}
		return &ast.ExpressionStatement{Pos: pos, Expression: e}, true, nil

	case "For":
		init, err := o.optionalStatement("init")
		if err != nil {
			return nil, true, err
		}
		cond, err := o.optionalExpression("cond")
		if err != nil {
			return nil, true, err
		}
		update, err := o.optionalExpression("update")
		if err != nil {
			return nil, true, err
		}
		body, err := o.optionalStatement("body")
		if err != nil {
			return nil, true, err
		}
		if body == nil {
			return nil, true, errorAt(o.node, "missing %q", "body")
		}
		return &ast.For{Pos: pos, Init: init, Cond: cond, Update: update, Body: body}, true, nil

	case "Break":
		return &ast.Break{Pos: pos}, true, nil
	case "Continue":
		return &ast.Continue{Pos: pos}, true, nil

	case "Return":
		var values []ast.Expression
		if vn := o.get("values"); vn != nil {
			items, err := sequence(vn)
			if err != nil {
				return nil, true, err
			}
			for _, item := range items {
				e, err := decodeExpression(item)
				if err != nil {
					return nil, true, err
				}
				values = append(values, e)
			}
		}
		return &ast.Return{Pos: pos, Values: values}, true, nil
	}
	return nil, false, nil
}
