package value

import (
	"hash/fnv"
	"strings"

	"github.com/zurustar/eventscript/pkg/types"
)

// Tuple is an ordered, fixed-arity aggregate of typed values.
// Tuples produced by TupleBuilder always have at least two elements.
type Tuple struct {
	types  []types.Type
	values []Value
}

func (*Tuple) declarable() {}

func (*Tuple) Type() types.Type { return types.Tuple }

// Len returns the arity.
func (t *Tuple) Len() int { return len(t.values) }

// At returns the i-th element, 0-based.
func (t *Tuple) At(i int) Value { return t.values[i] }

// Types returns a copy of the element types.
func (t *Tuple) Types() []types.Type {
	out := make([]types.Type, len(t.types))
	copy(out, t.types)
	return out
}

// Values returns a copy of the elements.
func (t *Tuple) Values() []Value {
	out := make([]Value, len(t.values))
	copy(out, t.values)
	return out
}

func (t *Tuple) String() string {
	return DefaultFormatter.Display(t)
}

func (t *Tuple) Equal(o Value) bool {
	x, ok := o.(*Tuple)
	if !ok || x.Len() != t.Len() {
		return false
	}
	for i := range t.values {
		if !t.values[i].Equal(x.values[i]) {
			return false
		}
	}
	return true
}

func (t *Tuple) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(types.Tuple)})
	for _, v := range t.values {
		h.Write(u64(v.Hash()))
	}
	return h.Sum64()
}

func (t *Tuple) display(f Formatter) string {
	parts := make([]string, len(t.values))
	for i, v := range t.values {
		parts[i] = f.Display(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// TupleBuilder accumulates values in evaluation order.
type TupleBuilder struct {
	types  []types.Type
	values []Value
}

// Add appends v and returns the builder.
func (b *TupleBuilder) Add(v Value) *TupleBuilder {
	b.types = append(b.types, v.Type())
	b.values = append(b.values, v)
	return b
}

// Len returns the number of values added so far.
func (b *TupleBuilder) Len() int { return len(b.values) }

// Build returns Void for no values, the bare value for one, and a Tuple
// otherwise. A 1-tuple is never produced.
func (b *TupleBuilder) Build() Value {
	switch len(b.values) {
	case 0:
		return Unit
	case 1:
		return b.values[0]
	}
	return &Tuple{types: b.types, values: b.values}
}

// NewTuple builds a value from vs with the same collapsing rules as Build.
func NewTuple(vs ...Value) Value {
	b := &TupleBuilder{}
	for _, v := range vs {
		b.Add(v)
	}
	return b.Build()
}

// Elements spreads an argument value into positional elements:
// Void is no elements, a Tuple its members, anything else itself.
func Elements(v Value) []Value {
	switch x := v.(type) {
	case Void:
		return nil
	case *Tuple:
		return x.Values()
	default:
		return []Value{v}
	}
}

// TypesOf returns the types of vs.
func TypesOf(vs []Value) []types.Type {
	out := make([]types.Type, len(vs))
	for i, v := range vs {
		out[i] = v.Type()
	}
	return out
}
