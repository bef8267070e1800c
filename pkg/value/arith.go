package value

import (
	"errors"
	"math"
	"time"

	"github.com/zurustar/eventscript/pkg/ast"
)

// Operator errors. The interpreter wraps these into positioned script errors.
var (
	ErrUnsupported    = errors.New("unsupported operand types")
	ErrDivisionByZero = errors.New("division by zero")
)

// numeric holds an operand pair after promotion.
type numeric struct {
	li, ri  int64
	lf, rf  float64
	isFloat bool
}

// promote applies Int/Float promotion. ok is false unless both sides are numeric.
func promote(l, r Value) (n numeric, ok bool) {
	switch a := l.(type) {
	case Int:
		switch b := r.(type) {
		case Int:
			return numeric{li: int64(a), ri: int64(b)}, true
		case Float:
			return numeric{lf: float64(a), rf: float64(b), isFloat: true}, true
		}
	case Float:
		switch b := r.(type) {
		case Int:
			return numeric{lf: float64(a), rf: float64(b), isFloat: true}, true
		case Float:
			return numeric{lf: float64(a), rf: float64(b), isFloat: true}, true
		}
	}
	return numeric{}, false
}

// IsNumeric reports whether v is an Int or a Float.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}

// Additive evaluates l + r or l - r. Dispatch order is string
// concatenation, datetime/duration, duration/duration, then numeric.
func Additive(op ast.Operator, l, r Value, f Formatter) (Value, error) {
	_, ls := l.(String)
	_, rs := r.(String)
	if ls || rs {
		if op != ast.OpAdd {
			return nil, ErrUnsupported
		}
		return String(f.Display(l) + f.Display(r)), nil
	}

	switch a := l.(type) {
	case DateTime:
		if d, ok := r.(Duration); ok {
			if op == ast.OpAdd {
				return DateTime{Time: a.Time.Add(time.Duration(d))}, nil
			}
			return DateTime{Time: a.Time.Add(-time.Duration(d))}, nil
		}
		return nil, ErrUnsupported
	case Duration:
		switch b := r.(type) {
		case DateTime:
			if op != ast.OpAdd {
				return nil, ErrUnsupported
			}
			return DateTime{Time: b.Time.Add(time.Duration(a))}, nil
		case Duration:
			if op == ast.OpAdd {
				return a + b, nil
			}
			return a - b, nil
		}
		return nil, ErrUnsupported
	}

	n, ok := promote(l, r)
	if !ok {
		return nil, ErrUnsupported
	}
	switch {
	case n.isFloat && op == ast.OpAdd:
		return Float(n.lf + n.rf), nil
	case n.isFloat:
		return Float(n.lf - n.rf), nil
	case op == ast.OpAdd:
		return Int(n.li + n.ri), nil
	default:
		return Int(n.li - n.ri), nil
	}
}

// Multiplicative evaluates *, / and % on numeric operands. Integer
// division truncates toward zero; float % is fmod.
func Multiplicative(op ast.Operator, l, r Value) (Value, error) {
	n, ok := promote(l, r)
	if !ok {
		return nil, ErrUnsupported
	}
	if n.isFloat {
		switch op {
		case ast.OpMul:
			return Float(n.lf * n.rf), nil
		case ast.OpDiv:
			return Float(n.lf / n.rf), nil
		case ast.OpMod:
			return Float(math.Mod(n.lf, n.rf)), nil
		}
		return nil, ErrUnsupported
	}
	switch op {
	case ast.OpMul:
		return Int(n.li * n.ri), nil
	case ast.OpDiv:
		if n.ri == 0 {
			return nil, ErrDivisionByZero
		}
		return Int(n.li / n.ri), nil
	case ast.OpMod:
		if n.ri == 0 {
			return nil, ErrDivisionByZero
		}
		return Int(n.li % n.ri), nil
	}
	return nil, ErrUnsupported
}

// Equals implements == : numeric operands are promoted and compared
// exactly, everything else is compared structurally.
func Equals(l, r Value) bool {
	if IsNumeric(l) || IsNumeric(r) {
		n, ok := promote(l, r)
		if !ok {
			return false
		}
		if n.isFloat {
			return n.lf == n.rf
		}
		return n.li == n.ri
	}
	return l.Equal(r)
}

// Relational evaluates <, <=, > and >= on two numerics, two datetimes
// or two durations.
func Relational(op ast.Operator, l, r Value) (Bool, error) {
	var c int
	switch a := l.(type) {
	case DateTime:
		b, ok := r.(DateTime)
		if !ok {
			return false, ErrUnsupported
		}
		c = a.Time.Compare(b.Time)
	case Duration:
		b, ok := r.(Duration)
		if !ok {
			return false, ErrUnsupported
		}
		c = cmp3(int64(a), int64(b))
	default:
		n, ok := promote(l, r)
		if !ok {
			return false, ErrUnsupported
		}
		if n.isFloat {
			return compareFloat(op, n.lf, n.rf)
		}
		c = cmp3(n.li, n.ri)
	}
	switch op {
	case ast.OpLt:
		return c < 0, nil
	case ast.OpLe:
		return c <= 0, nil
	case ast.OpGt:
		return c > 0, nil
	case ast.OpGe:
		return c >= 0, nil
	}
	return false, ErrUnsupported
}

// compareFloat keeps IEEE semantics: every comparison with NaN is false.
func compareFloat(op ast.Operator, a, b float64) (Bool, error) {
	switch op {
	case ast.OpLt:
		return a < b, nil
	case ast.OpLe:
		return a <= b, nil
	case ast.OpGt:
		return a > b, nil
	case ast.OpGe:
		return a >= b, nil
	}
	return false, ErrUnsupported
}

func cmp3(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Negate implements unary minus on Int and Float.
func Negate(v Value) (Value, error) {
	switch x := v.(type) {
	case Int:
		return -x, nil
	case Float:
		return -x, nil
	}
	return nil, ErrUnsupported
}

// Step adds delta to an Int or Float; used by ++ and --.
func Step(v Value, delta int64) (Value, error) {
	switch x := v.(type) {
	case Int:
		return x + Int(delta), nil
	case Float:
		return x + Float(delta), nil
	}
	return nil, ErrUnsupported
}
