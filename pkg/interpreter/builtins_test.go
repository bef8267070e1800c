package interpreter

import (
	"testing"
	"time"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/value"
)

// TestDatetimeConstructor tests datetime(...) argument handling.
func TestDatetimeConstructor(t *testing.T) {
	t.Run("five fields", func(t *testing.T) {
		in, _ := newTestInterpreter()
		got := mustEval(t, in, ast.Datetime(ast.Int(2018), ast.Int(5), ast.Int(10), ast.Int(14), ast.Int(45)))
		expectValue(t, got, value.DateTime{Time: time.Date(2018, 5, 10, 14, 45, 0, 0, time.Local)})
	})

	t.Run("six fields", func(t *testing.T) {
		in, _ := newTestInterpreter()
		got := mustEval(t, in, ast.Datetime(ast.Int(2018), ast.Int(5), ast.Int(10), ast.Int(14), ast.Int(45), ast.Int(30)))
		expectValue(t, got, value.DateTime{Time: time.Date(2018, 5, 10, 14, 45, 30, 0, time.Local)})
	})

	t.Run("equal constructions compare equal", func(t *testing.T) {
		in, _ := newTestInterpreter()
		a := ast.Datetime(ast.Int(2018), ast.Int(5), ast.Int(10), ast.Int(14), ast.Int(45))
		b := ast.Datetime(ast.Int(2018), ast.Int(5), ast.Int(10), ast.Int(14), ast.Int(45))
		expectValue(t, mustEval(t, in, ast.Bin(a, ast.OpEq, b)), value.Bool(true))
	})

	t.Run("no arguments is now", func(t *testing.T) {
		fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		in, _ := newTestInterpreter(WithClock(func() time.Time { return fixed }))
		expectValue(t, mustEval(t, in, ast.Datetime()), value.DateTime{Time: fixed})
	})

	bad := []struct {
		name string
		args []ast.Expression
	}{
		{"year only", []ast.Expression{ast.Int(2018)}},
		{"too many", []ast.Expression{ast.Int(2018), ast.Int(1), ast.Int(1), ast.Int(0), ast.Int(0), ast.Int(0), ast.Int(0)}},
		{"month 13", []ast.Expression{ast.Int(2018), ast.Int(13), ast.Int(1), ast.Int(0), ast.Int(0)}},
		{"february 30", []ast.Expression{ast.Int(2019), ast.Int(2), ast.Int(30), ast.Int(0), ast.Int(0)}},
		{"hour 24", []ast.Expression{ast.Int(2018), ast.Int(1), ast.Int(1), ast.Int(24), ast.Int(0)}},
		{"float field", []ast.Expression{ast.Int(2018), ast.Float(1), ast.Int(1), ast.Int(0), ast.Int(0)}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newTestInterpreter()
			_, err := in.Eval(ast.Datetime(tt.args...))
			expectCode(t, err, ErrorBadDatetimeArgs)
		})
	}

	t.Run("leap day", func(t *testing.T) {
		in, _ := newTestInterpreter()
		mustEval(t, in, ast.Datetime(ast.Int(2020), ast.Int(2), ast.Int(29), ast.Int(0), ast.Int(0)))
	})
}

// TestDurationConstructor tests duration(...) argument handling.
func TestDurationConstructor(t *testing.T) {
	tests := []struct {
		name string
		args []ast.Expression
		want time.Duration
	}{
		{"empty", nil, 0},
		{"seconds", []ast.Expression{ast.Int(90)}, 90 * time.Second},
		{"all units", []ast.Expression{ast.Int(1), ast.Int(2), ast.Int(3), ast.Int(4)},
			4*24*time.Hour + 3*time.Hour + 2*time.Minute + time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newTestInterpreter()
			expectValue(t, mustEval(t, in, ast.DurationOf(tt.args...)), value.Duration(tt.want))
		})
	}

	t.Run("display", func(t *testing.T) {
		in, _ := newTestInterpreter()
		got := mustEval(t, in, ast.Dot(ast.DurationOf(ast.Int(1), ast.Int(2), ast.Int(3), ast.Int(4)), ast.MemberToString))
		expectValue(t, got, value.String("4d 3h 2m 1s"))
	})

	t.Run("too many arguments", func(t *testing.T) {
		in, _ := newTestInterpreter()
		_, err := in.Eval(ast.DurationOf(ast.Int(1), ast.Int(1), ast.Int(1), ast.Int(1), ast.Int(1)))
		expectCode(t, err, ErrorBadDurationArgs)
	})

	t.Run("non-int argument", func(t *testing.T) {
		in, _ := newTestInterpreter()
		_, err := in.Eval(ast.DurationOf(ast.Str("1")))
		expectCode(t, err, ErrorBadDurationArgs)
	})
}

// TestMembers tests toString and tuple indexing.
func TestMembers(t *testing.T) {
	pair := ast.List(ast.Int(7), ast.Str("b"))

	t.Run("toString", func(t *testing.T) {
		in, _ := newTestInterpreter()
		expectValue(t, mustEval(t, in, ast.Dot(ast.Int(42), ast.MemberToString)), value.String("42"))
		expectValue(t, mustEval(t, in, ast.Dot(ast.Float(2), ast.MemberToString)), value.String("2.0"))
		expectValue(t, mustEval(t, in, ast.Dot(ast.Bool(false), ast.MemberToString)), value.String("false"))
	})

	t.Run("toString on tuple", func(t *testing.T) {
		in, _ := newTestInterpreter()
		_, err := in.Eval(ast.Dot(pair, ast.MemberToString))
		expectCode(t, err, ErrorToStringNotSupported)
	})

	t.Run("tuple index", func(t *testing.T) {
		in, _ := newTestInterpreter()
		expectValue(t, mustEval(t, in, ast.Dot(pair, "_1")), value.Int(7))
		expectValue(t, mustEval(t, in, ast.Dot(pair, "_2")), value.String("b"))
	})

	t.Run("tuple index out of range", func(t *testing.T) {
		in, _ := newTestInterpreter()
		_, err := in.Eval(ast.Dot(pair, "_3"))
		expectCode(t, err, ErrorTupleIndexOutOfRange)
	})

	t.Run("index on non-tuple", func(t *testing.T) {
		in, _ := newTestInterpreter()
		_, err := in.Eval(ast.Dot(ast.Int(1), "_1"))
		expectCode(t, err, ErrorTypeMismatch)
	})

	t.Run("unknown member", func(t *testing.T) {
		in, _ := newTestInterpreter()
		_, err := in.Eval(ast.Dot(ast.Int(1), "length"))
		expectCode(t, err, ErrorUnimplemented)
	})

	t.Run("unknown builtin", func(t *testing.T) {
		in, _ := newTestInterpreter()
		_, err := in.Eval(ast.Builtin("Shout", ast.Str("x")))
		expectCode(t, err, ErrorUnimplemented)
	})
}

// TestSpeak tests the Speak builtin.
func TestSpeak(t *testing.T) {
	t.Run("scalars", func(t *testing.T) {
		in, rec := newTestInterpreter()
		mustExec(t, in, script(
			ast.Expr(ast.Builtin(ast.BuiltinSpeak, ast.Str("Hello"))),
			ast.Expr(ast.Builtin(ast.BuiltinSpeak, ast.Int(3))),
			ast.Expr(ast.Builtin(ast.BuiltinSpeak, ast.Float(0.5))),
			ast.Expr(ast.Builtin(ast.BuiltinSpeak, ast.Bool(true))),
			ast.Expr(ast.Builtin(ast.BuiltinSpeak, ast.Bin(ast.Str("n="), ast.OpAdd, ast.Int(1)))),
		))
		expectLines(t, rec, "Hello", "3", "0.5", "true", "n=1")
	})

	t.Run("returns void", func(t *testing.T) {
		in, _ := newTestInterpreter()
		v := mustEval(t, in, ast.Builtin(ast.BuiltinSpeak, ast.Str("x")))
		if !value.IsVoid(v) {
			t.Errorf("expected void, got %v", v)
		}
	})

	rejected := []struct {
		name string
		args []ast.Expression
	}{
		{"no arguments", nil},
		{"two arguments", []ast.Expression{ast.Str("a"), ast.Str("b")}},
		{"duration", []ast.Expression{ast.DurationOf(ast.Int(1))}},
		{"datetime", []ast.Expression{ast.Datetime()}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			in, rec := newTestInterpreter()
			_, err := in.Eval(ast.Builtin(ast.BuiltinSpeak, tt.args...))
			expectCode(t, err, ErrorArgumentTypeMismatch)
			expectLines(t, rec)
		})
	}

	t.Run("writer speaker", func(t *testing.T) {
		var buf lineBuffer
		in := New(WithSpeaker(NewWriterSpeaker(&buf)))
		mustEval(t, in, ast.Builtin(ast.BuiltinSpeak, ast.Str("out")))
		if buf.String() != "out\n" {
			t.Errorf("expected %q, got %q", "out\n", buf.String())
		}
	})
}

type lineBuffer struct {
	data []byte
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *lineBuffer) String() string { return string(b.data) }
