package scope

import (
	"errors"
	"testing"

	"github.com/zurustar/eventscript/pkg/value"
)

// TestNewChain tests the Chain constructor.
func TestNewChain(t *testing.T) {
	c := NewChain()
	if !c.IsRoot() {
		t.Error("expected new chain to be at root")
	}
	if c.Depth() != 0 {
		t.Errorf("expected depth 0, got %d", c.Depth())
	}
	if c.Current().Parent() != nil {
		t.Error("expected root to have no parent")
	}
	if c.IsLoopScope() || c.IsFunctionScope() {
		t.Error("root must be neither loop nor function scope")
	}
}

// TestDefine tests Define and redefinition.
func TestDefine(t *testing.T) {
	t.Run("defines and looks up", func(t *testing.T) {
		c := NewChain()
		if err := c.Define("x", value.Int(42)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d, ok := c.Lookup("x")
		if !ok {
			t.Fatal("expected x to exist")
		}
		if !d.(value.Value).Equal(value.Int(42)) {
			t.Errorf("expected 42, got %v", d)
		}
	})

	t.Run("rejects redefinition in same scope", func(t *testing.T) {
		c := NewChain()
		_ = c.Define("x", value.Int(1))
		if err := c.Define("x", value.Int(2)); !errors.Is(err, ErrAlreadyDefined) {
			t.Errorf("expected ErrAlreadyDefined, got %v", err)
		}
	})

	t.Run("allows shadowing in child scope", func(t *testing.T) {
		c := NewChain()
		_ = c.Define("x", value.Int(1))
		c.Subscope()
		if err := c.Define("x", value.String("inner")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d, _ := c.Lookup("x")
		if !d.(value.Value).Equal(value.String("inner")) {
			t.Errorf("expected shadowing value, got %v", d)
		}
		c.Abandon()
		d, _ = c.Lookup("x")
		if !d.(value.Value).Equal(value.Int(1)) {
			t.Errorf("expected outer value after abandon, got %v", d)
		}
	})
}

// TestSkipRule tests that function-entry ancestors are not searched.
func TestSkipRule(t *testing.T) {
	fn := &value.Function{Name: "f"}

	t.Run("function scope sees its own table", func(t *testing.T) {
		c := NewChain()
		c.FunctionSubscope(fn)
		_ = c.Define("a", value.Int(1))
		if _, ok := c.Lookup("a"); !ok {
			t.Error("expected own table to be searched")
		}
	})

	t.Run("nested block does not see function locals", func(t *testing.T) {
		c := NewChain()
		c.FunctionSubscope(fn)
		_ = c.Define("a", value.Int(1))
		c.Subscope()
		if _, ok := c.Lookup("a"); ok {
			t.Error("expected function-entry table to be skipped")
		}
		if c.Update("a", value.Int(2)) {
			t.Error("expected update to skip function-entry table")
		}
	})

	t.Run("walk continues past function entry to root", func(t *testing.T) {
		c := NewChain()
		_ = c.Define("g", value.Int(7))
		c.FunctionSubscope(fn)
		c.Subscope()
		d, ok := c.Lookup("g")
		if !ok || !d.(value.Value).Equal(value.Int(7)) {
			t.Errorf("expected root symbol, got %v %v", d, ok)
		}
		if !c.Update("g", value.Int(8)) {
			t.Fatal("expected update of root symbol to succeed")
		}
		c.Abandon()
		c.Abandon()
		d, _ = c.Lookup("g")
		if !d.(value.Value).Equal(value.Int(8)) {
			t.Errorf("expected updated root symbol, got %v", d)
		}
	})

	t.Run("only function-entry ancestors are skipped", func(t *testing.T) {
		c := NewChain()
		c.Subscope()
		_ = c.Define("local", value.Int(1))
		c.FunctionSubscope(fn)
		if _, ok := c.Lookup("local"); !ok {
			t.Error("expected plain ancestor to be searched")
		}
		c.FunctionSubscope(&value.Function{Name: "g"})
		_ = c.Define("inner", value.Int(2))
		c.Subscope()
		if _, ok := c.Lookup("inner"); ok {
			t.Error("expected nested function locals to be skipped")
		}
	})
}

// TestLoopAndFunctionMarkers tests IsLoopScope and IsFunctionScope.
func TestLoopAndFunctionMarkers(t *testing.T) {
	fn := &value.Function{Name: "f"}

	t.Run("loop marker is found through plain scopes", func(t *testing.T) {
		c := NewChain()
		c.LoopSubscope()
		c.Subscope()
		if !c.IsLoopScope() {
			t.Error("expected loop scope")
		}
	})

	t.Run("function boundary stops loop search", func(t *testing.T) {
		c := NewChain()
		c.LoopSubscope()
		c.FunctionSubscope(fn)
		c.Subscope()
		if c.IsLoopScope() {
			t.Error("loop status must not cross a function boundary")
		}
		if !c.IsFunctionScope() {
			t.Error("expected function scope")
		}
		if c.Function() != fn {
			t.Error("expected owning function")
		}
	})

	t.Run("loop inside function", func(t *testing.T) {
		c := NewChain()
		c.FunctionSubscope(fn)
		c.LoopSubscope()
		if !c.IsLoopScope() {
			t.Error("expected loop scope inside function")
		}
	})
}

// TestAbandon tests depth tracking and the root guard.
func TestAbandon(t *testing.T) {
	c := NewChain()
	c.Subscope()
	c.LoopSubscope()
	if c.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", c.Depth())
	}
	c.Abandon()
	c.Abandon()
	if !c.IsRoot() {
		t.Error("expected to be back at root")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic when abandoning root")
		}
	}()
	c.Abandon()
}

// TestCountSymbols tests the visible symbol count.
func TestCountSymbols(t *testing.T) {
	c := NewChain()
	_ = c.Define("a", value.Int(1))
	_ = c.Define("b", value.Int(2))
	c.Subscope()
	_ = c.Define("a", value.Int(3))
	if n := c.CountSymbols(); n != 3 {
		t.Errorf("expected 3 symbols, got %d", n)
	}
	c.Abandon()
	if n := c.CountSymbols(); n != 2 {
		t.Errorf("expected 2 symbols, got %d", n)
	}
}
