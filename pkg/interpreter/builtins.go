package interpreter

import (
	"time"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/types"
	"github.com/zurustar/eventscript/pkg/value"
)

// stringableTypes are the operand types accepted by toString.
var stringableTypes = []types.Type{
	types.Bool, types.DateTime, types.Duration, types.Float, types.Int, types.String,
}

// speakableTypes are the argument types accepted by Speak.
var speakableTypes = []types.Type{
	types.Bool, types.Float, types.Int, types.String,
}

func oneOf(t types.Type, set []types.Type) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

// evalArgs evaluates an argument list and spreads it into elements.
func (in *Interpreter) evalArgs(l *ast.ExpressionList) ([]value.Value, error) {
	v, err := in.evalList(l)
	if err != nil {
		return nil, err
	}
	return value.Elements(v), nil
}

func (in *Interpreter) evalBuiltin(n *ast.BuiltinCall) (value.Value, error) {
	switch n.Name {
	case ast.BuiltinSpeak:
		return in.builtinSpeak(n)
	case ast.BuiltinOnInterval:
		return in.builtinOnInterval(n)
	}
	return nil, newUnimplementedError(n.Pos, n.Name)
}

// builtinSpeak emits the display text of a single scalar argument.
func (in *Interpreter) builtinSpeak(n *ast.BuiltinCall) (value.Value, error) {
	args, err := in.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	if len(args) != 1 || !oneOf(args[0].Type(), speakableTypes) {
		return nil, newArgumentOneOfError(n.Pos, ast.BuiltinSpeak, speakableTypes)
	}
	in.speaker.Speak(in.formatter.Display(args[0]))
	return value.Unit, nil
}

// builtinOnInterval schedules a zero-parameter void function to run after
// a delay and then periodically.
func (in *Interpreter) builtinOnInterval(n *ast.BuiltinCall) (value.Value, error) {
	args, err := in.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	signature := []types.Type{types.Func, types.Duration, types.Duration}
	if !types.Equal(value.TypesOf(args), signature) {
		return nil, newArgumentError(n.Pos, ast.BuiltinOnInterval, signature)
	}

	fn := args[0].(value.FuncRef).Fn
	if !fn.Schedulable() {
		return nil, newArgumentConstraintError(n.Pos, ast.BuiltinOnInterval,
			"a function without parameters or return values")
	}
	interval := time.Duration(args[1].(value.Duration))
	delay := time.Duration(args[2].(value.Duration))
	if interval <= 0 {
		return nil, newArgumentConstraintError(n.Pos, ast.BuiltinOnInterval, "a positive interval")
	}
	if delay < 0 {
		return nil, newArgumentConstraintError(n.Pos, ast.BuiltinOnInterval, "a non-negative delay")
	}

	in.schedule(fn, n.Pos, interval, delay)
	return value.Unit, nil
}

func (in *Interpreter) evalConstructor(n *ast.Constructor) (value.Value, error) {
	switch n.Kind {
	case ast.ConstructorDatetime:
		return in.constructDatetime(n)
	case ast.ConstructorDuration:
		return in.constructDuration(n)
	}
	return nil, newUnimplementedError(n.Pos, n.Kind)
}

// ints converts args to int64s, reporting false if any is not an Int.
func ints(args []value.Value) ([]int64, bool) {
	out := make([]int64, len(args))
	for i, a := range args {
		v, ok := a.(value.Int)
		if !ok {
			return nil, false
		}
		out[i] = int64(v)
	}
	return out, true
}

// constructDatetime builds the current instant from no arguments, or a
// local date-time from year, month, day, hour, minute and optional second.
func (in *Interpreter) constructDatetime(n *ast.Constructor) (value.Value, error) {
	args, err := in.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return value.DateTime{Time: in.now()}, nil
	}
	if len(args) != 5 && len(args) != 6 {
		return nil, newBadDatetimeError(n.Pos)
	}
	f, ok := ints(args)
	if !ok {
		return nil, newBadDatetimeError(n.Pos)
	}
	if len(f) == 5 {
		f = append(f, 0)
	}

	year, month, day, hour, minute, second := f[0], f[1], f[2], f[3], f[4], f[5]
	switch {
	case month < 1 || month > 12:
		return nil, newBadDatetimeFieldError(n.Pos, "month", month)
	case day < 1 || day > int64(daysIn(time.Month(month), int(year))):
		return nil, newBadDatetimeFieldError(n.Pos, "day", day)
	case hour < 0 || hour > 23:
		return nil, newBadDatetimeFieldError(n.Pos, "hour", hour)
	case minute < 0 || minute > 59:
		return nil, newBadDatetimeFieldError(n.Pos, "minute", minute)
	case second < 0 || second > 59:
		return nil, newBadDatetimeFieldError(n.Pos, "second", second)
	}

	t := time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(second), 0, time.Local)
	return value.DateTime{Time: t}, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// durationUnits are the multipliers of duration() arguments in order.
var durationUnits = []time.Duration{time.Second, time.Minute, time.Hour, 24 * time.Hour}

// constructDuration accumulates up to four ints as seconds, minutes,
// hours and days.
func (in *Interpreter) constructDuration(n *ast.Constructor) (value.Value, error) {
	args, err := in.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	if len(args) > len(durationUnits) {
		return nil, newBadDurationError(n.Pos)
	}
	f, ok := ints(args)
	if !ok {
		return nil, newBadDurationError(n.Pos)
	}
	var d time.Duration
	for i, v := range f {
		d += time.Duration(v) * durationUnits[i]
	}
	return value.Duration(d), nil
}

func (in *Interpreter) evalMember(n *ast.Member) (value.Value, error) {
	v, err := in.eval(n.Operand)
	if err != nil {
		return nil, err
	}

	if n.Name == ast.MemberToString {
		if !oneOf(v.Type(), stringableTypes) {
			return nil, newToStringError(n.Pos)
		}
		return value.String(in.formatter.Display(v)), nil
	}

	if idx, ok := ast.TupleIndex(n.Name); ok {
		tup, ok := v.(*value.Tuple)
		if !ok {
			return nil, newTypeMismatchError(n.Pos, types.Tuple)
		}
		if idx > tup.Len() {
			return nil, newTupleIndexError(n.Pos, idx, tup.Len())
		}
		return tup.At(idx - 1), nil
	}

	return nil, newUnimplementedError(n.Pos, n.Name)
}
