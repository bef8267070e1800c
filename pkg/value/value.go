// Package value implements the eventscript runtime value model: a closed
// set of immutable tagged values, tuples, function descriptors, operator
// semantics with numeric promotion, and display formatting.
package value

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"strconv"
	"time"

	"github.com/zurustar/eventscript/pkg/types"
)

// Declarable is anything a scope can bind to a name: a Value or a *Function.
type Declarable interface {
	declarable()
}

// Value is a runtime value. The set of implementations is closed; every
// dispatch site switches over the concrete types below.
type Value interface {
	Declarable
	Type() types.Type
	// String returns the display text, using DefaultFormatter for datetimes.
	String() string
	// Equal is structural equality; values of different types are unequal.
	Equal(other Value) bool
	// Hash is consistent with Equal.
	Hash() uint64
}

type (
	Bool     bool
	Int      int64
	Float    float64
	String   string
	Duration time.Duration
)

// DateTime is a local wall-clock instant.
type DateTime struct {
	Time time.Time
}

// FuncRef is a first-class reference to a registered function.
type FuncRef struct {
	Fn *Function
}

// Void is the absence of a value.
type Void struct{}

// Unit is the shared Void value.
var Unit = Void{}

func (Bool) declarable()     {}
func (Int) declarable()      {}
func (Float) declarable()    {}
func (String) declarable()   {}
func (Duration) declarable() {}
func (DateTime) declarable() {}
func (FuncRef) declarable()  {}
func (Void) declarable()     {}

func (Bool) Type() types.Type     { return types.Bool }
func (Int) Type() types.Type      { return types.Int }
func (Float) Type() types.Type    { return types.Float }
func (String) Type() types.Type   { return types.String }
func (Duration) Type() types.Type { return types.Duration }
func (DateTime) Type() types.Type { return types.DateTime }
func (FuncRef) Type() types.Type  { return types.Func }
func (Void) Type() types.Type     { return types.Void }

func (v Bool) String() string     { return strconv.FormatBool(bool(v)) }
func (v Int) String() string      { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string    { return FormatFloat(float64(v)) }
func (v String) String() string   { return string(v) }
func (v Duration) String() string { return FormatDuration(time.Duration(v)) }
func (v DateTime) String() string { return DefaultFormatter.FormatDateTime(v.Time) }
func (v FuncRef) String() string  { return "func " + v.Fn.Name }
func (Void) String() string       { return "void" }

func (v Bool) Equal(o Value) bool {
	x, ok := o.(Bool)
	return ok && x == v
}

func (v Int) Equal(o Value) bool {
	x, ok := o.(Int)
	return ok && x == v
}

func (v Float) Equal(o Value) bool {
	x, ok := o.(Float)
	return ok && x == v
}

func (v String) Equal(o Value) bool {
	x, ok := o.(String)
	return ok && x == v
}

func (v Duration) Equal(o Value) bool {
	x, ok := o.(Duration)
	return ok && x == v
}

func (v DateTime) Equal(o Value) bool {
	x, ok := o.(DateTime)
	return ok && x.Time.Equal(v.Time)
}

func (v FuncRef) Equal(o Value) bool {
	x, ok := o.(FuncRef)
	return ok && x.Fn == v.Fn
}

func (Void) Equal(o Value) bool {
	_, ok := o.(Void)
	return ok
}

func hashOf(t types.Type, payload []byte) uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(t)})
	h.Write(payload)
	return h.Sum64()
}

func u64(x uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	return b[:]
}

func (v Bool) Hash() uint64 {
	if v {
		return hashOf(types.Bool, []byte{1})
	}
	return hashOf(types.Bool, []byte{0})
}

func (v Int) Hash() uint64    { return hashOf(types.Int, u64(uint64(v))) }
func (v String) Hash() uint64 { return hashOf(types.String, []byte(v)) }

func (v Float) Hash() uint64 {
	if v == 0 {
		v = 0 // -0 equals 0
	}
	return hashOf(types.Float, u64(math.Float64bits(float64(v))))
}

func (v Duration) Hash() uint64 { return hashOf(types.Duration, u64(uint64(v))) }
func (v DateTime) Hash() uint64 {
	return hashOf(types.DateTime, u64(uint64(v.Time.UnixNano())))
}
func (v FuncRef) Hash() uint64 { return hashOf(types.Func, []byte(v.Fn.Name)) }
func (Void) Hash() uint64      { return hashOf(types.Void, nil) }

// IsVoid reports whether v is the Void value.
func IsVoid(v Value) bool {
	_, ok := v.(Void)
	return ok
}
