// Package types defines the closed set of eventscript types.
// Both the AST (declarations, signatures) and the runtime value model
// depend on it, so it has no dependencies of its own.
package types

import (
	"fmt"
	"strings"
)

// Type is the static type tag of an eventscript value.
type Type int

const (
	Bool Type = iota
	Int
	Float
	String
	DateTime
	Duration
	Func
	Tuple
	Void
)

var names = [...]string{
	Bool:     "bool",
	Int:      "int",
	Float:    "float",
	String:   "string",
	DateTime: "datetime",
	Duration: "duration",
	Func:     "func",
	Tuple:    "tuple",
	Void:     "void",
}

// String returns the lowercase name used in scripts and messages.
func (t Type) String() string {
	if t < 0 || int(t) >= len(names) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return names[t]
}

// Parse maps a type name (case-insensitive) to its Type.
func Parse(name string) (Type, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range names {
		if n == lower {
			return Type(i), nil
		}
	}
	return Void, fmt.Errorf("unknown type: %q", name)
}

// IsNumeric reports whether t takes part in numeric promotion.
func (t Type) IsNumeric() bool {
	return t == Int || t == Float
}

// Declarable reports whether `var x : t` may declare a variable of t.
func (t Type) Declarable() bool {
	switch t {
	case Bool, String, Int, Float, DateTime, Duration:
		return true
	default:
		return false
	}
}

// Join renders a list of types as "(a, b, c)".
func Join(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Equal reports whether two type lists match positionally.
func Equal(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
