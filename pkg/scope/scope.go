// Package scope provides the lexical symbol tables of the eventscript
// interpreter.
//
// Scopes form a parent-linked tree owned by a Chain. The chain always has a
// current scope; constructs that open a scope must abandon it on every exit
// path. Lookups walk towards the root but do not search the tables of
// function-entry ancestors, so a callee sees the root scope's symbols
// without seeing the locals around its call site.
//
// A Chain is not safe for concurrent use. The interpreter touches it only
// from its own goroutine.
package scope

import (
	"errors"

	"github.com/zurustar/eventscript/pkg/value"
)

// ErrAlreadyDefined is returned by Define when the current scope's own
// table already holds the name.
var ErrAlreadyDefined = errors.New("symbol already defined in this scope")

// Scope is one symbol table in the chain.
type Scope struct {
	symbols map[string]value.Declarable
	parent  *Scope
	fn      *value.Function
	loop    bool
}

func newScope(parent *Scope) *Scope {
	return &Scope{
		symbols: make(map[string]value.Declarable),
		parent:  parent,
	}
}

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope { return s.parent }

// IsFunctionEntry reports whether the scope was opened by a function call.
func (s *Scope) IsFunctionEntry() bool { return s.fn != nil }

// IsLoopEntry reports whether the scope was opened by a loop.
func (s *Scope) IsLoopEntry() bool { return s.loop }

// Size returns the number of symbols in the scope's own table.
func (s *Scope) Size() int { return len(s.symbols) }

// Chain owns the scope tree and tracks the current scope.
type Chain struct {
	root    *Scope
	current *Scope
	depth   int
}

// NewChain creates a chain holding only the root scope.
func NewChain() *Chain {
	root := newScope(nil)
	return &Chain{root: root, current: root}
}

// Current returns the current scope.
func (c *Chain) Current() *Scope { return c.current }

// Root returns the root scope.
func (c *Chain) Root() *Scope { return c.root }

// Subscope opens a plain child of the current scope.
func (c *Chain) Subscope() {
	c.push(newScope(c.current))
}

// LoopSubscope opens a child marked as a loop entry.
func (c *Chain) LoopSubscope() {
	s := newScope(c.current)
	s.loop = true
	c.push(s)
}

// FunctionSubscope opens a child marked as the entry of fn.
func (c *Chain) FunctionSubscope(fn *value.Function) {
	if fn == nil {
		panic("scope: function subscope without a function")
	}
	s := newScope(c.current)
	s.fn = fn
	c.push(s)
}

func (c *Chain) push(s *Scope) {
	c.current = s
	c.depth++
}

// Abandon discards the current scope and makes its parent current.
// Abandoning the root is a programming error.
func (c *Chain) Abandon() {
	if c.current.parent == nil {
		panic("scope: abandon called on root scope")
	}
	c.current = c.current.parent
	c.depth--
}

// Define binds name in the current scope.
//
// Parameters:
//   - name: The symbol name
//   - d: A value.Value or *value.Function
//
// Returns:
//   - error: ErrAlreadyDefined if the current scope already binds name
func (c *Chain) Define(name string, d value.Declarable) error {
	if _, ok := c.current.symbols[name]; ok {
		return ErrAlreadyDefined
	}
	c.current.symbols[name] = d
	return nil
}

// owner finds the scope whose table holds name. The current scope is
// always searched; function-entry ancestors are walked past unsearched.
func (c *Chain) owner(name string) *Scope {
	for s := c.current; s != nil; s = s.parent {
		if s != c.current && s.fn != nil {
			continue
		}
		if _, ok := s.symbols[name]; ok {
			return s
		}
	}
	return nil
}

// Lookup resolves name from the current scope outwards.
//
// Returns:
//   - value.Declarable: The bound value or function
//   - bool: true if the name was found
func (c *Chain) Lookup(name string) (value.Declarable, bool) {
	s := c.owner(name)
	if s == nil {
		return nil, false
	}
	return s.symbols[name], true
}

// Update overwrites the binding that Lookup would return.
// It reports whether a binding was found.
func (c *Chain) Update(name string, d value.Declarable) bool {
	s := c.owner(name)
	if s == nil {
		return false
	}
	s.symbols[name] = d
	return true
}

// IsLoopScope reports whether a loop entry encloses the current point
// within the current function. A function entry ends the search.
func (c *Chain) IsLoopScope() bool {
	for s := c.current; s != nil; s = s.parent {
		if s.fn != nil {
			return false
		}
		if s.loop {
			return true
		}
	}
	return false
}

// IsFunctionScope reports whether any scope on the chain is a function entry.
func (c *Chain) IsFunctionScope() bool {
	return c.Function() != nil
}

// Function returns the function owning the nearest function entry, or nil.
func (c *Chain) Function() *value.Function {
	for s := c.current; s != nil; s = s.parent {
		if s.fn != nil {
			return s.fn
		}
	}
	return nil
}

// IsRoot reports whether the current scope is the root.
func (c *Chain) IsRoot() bool { return c.current == c.root }

// Depth returns the number of open scopes above the root.
func (c *Chain) Depth() int { return c.depth }

// CountSymbols returns the number of bindings in the current scope and
// all of its ancestors, shadowed names included.
func (c *Chain) CountSymbols() int {
	n := 0
	for s := c.current; s != nil; s = s.parent {
		n += len(s.symbols)
	}
	return n
}
