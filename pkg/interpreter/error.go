package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zurustar/eventscript/pkg/ast"
	"github.com/zurustar/eventscript/pkg/types"
)

// ErrorKind is the family of a script error.
type ErrorKind string

const (
	KindScope       ErrorKind = "ScopeError"
	KindOperation   ErrorKind = "OperationError"
	KindFunction    ErrorKind = "FunctionError"
	KindLiteral     ErrorKind = "LiteralConstructionError"
	KindControlFlow ErrorKind = "ControlFlowError"
)

// ErrorCode identifies a specific script error.
type ErrorCode string

const (
	// Scope errors
	ErrorAlreadyDefined    ErrorCode = "ALREADY_DEFINED"
	ErrorUndefinedVariable ErrorCode = "UNDEFINED_VARIABLE"
	ErrorCannotDeclare     ErrorCode = "CANNOT_DECLARE"

	// Operation errors
	ErrorUnsupportedBinaryOp    ErrorCode = "UNSUPPORTED_BINARY_OP"
	ErrorUnsupportedUnaryOp     ErrorCode = "UNSUPPORTED_UNARY_OP"
	ErrorBothOperandsMustBeBool ErrorCode = "BOTH_OPERANDS_MUST_BE_BOOL"
	ErrorVariableExpected       ErrorCode = "VARIABLE_EXPECTED"
	ErrorTypeMismatch           ErrorCode = "TYPE_MISMATCH"
	ErrorTupleIndexOutOfRange   ErrorCode = "TUPLE_INDEX_OUT_OF_RANGE"
	ErrorDivisionByZero         ErrorCode = "DIVISION_BY_ZERO"

	// Function errors
	ErrorVoidParameter          ErrorCode = "VOID_PARAMETER"
	ErrorArgumentTypeMismatch   ErrorCode = "ARGUMENT_TYPE_MISMATCH"
	ErrorCannotResolve          ErrorCode = "CANNOT_RESOLVE"
	ErrorReturnTypeMismatch     ErrorCode = "RETURN_TYPE_MISMATCH"
	ErrorMissingReturnStatement ErrorCode = "MISSING_RETURN_STATEMENT"
	ErrorDuplicateParameters    ErrorCode = "DUPLICATE_PARAMETER_NAMES"
	ErrorUnimplemented          ErrorCode = "UNIMPLEMENTED"
	ErrorToStringNotSupported   ErrorCode = "TO_STRING_NOT_SUPPORTED"
	ErrorStackOverflow          ErrorCode = "STACK_OVERFLOW"

	// Literal construction errors
	ErrorBadDurationArgs ErrorCode = "BAD_DURATION_ARGS"
	ErrorBadDatetimeArgs ErrorCode = "BAD_DATETIME_ARGS"

	// Control flow errors
	ErrorBreakOutsideLoop      ErrorCode = "BREAK_OUTSIDE_LOOP"
	ErrorContinueOutsideLoop   ErrorCode = "CONTINUE_OUTSIDE_LOOP"
	ErrorReturnOutsideFunction ErrorCode = "RETURN_OUTSIDE_FUNCTION"
)

// Operation names an operator family in UnsupportedBinaryOp and
// UnsupportedUnaryOp errors.
type Operation string

const (
	OpAdditive       Operation = "additive"
	OpMultiplicative Operation = "multiplicative"
	OpUnary          Operation = "unary"
	OpNegation       Operation = "negation"
	OpRelational     Operation = "relational"
)

// ScriptError is a failure raised while executing a script. It carries
// the position of the offending node.
type ScriptError struct {
	Kind      ErrorKind
	Code      ErrorCode
	Message   string
	Pos       ast.Pos
	Operation Operation // set for unsupported operator errors
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("[%s] %s at line %s", e.Code, e.Message, e.Pos)
}

// Is matches another *ScriptError by Code, or by Kind when the target
// has no Code.
func (e *ScriptError) Is(target error) bool {
	t, ok := target.(*ScriptError)
	if !ok {
		return false
	}
	if t.Code != "" {
		return t.Code == e.Code
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks by kind.
var (
	ErrScope       = &ScriptError{Kind: KindScope}
	ErrOperation   = &ScriptError{Kind: KindOperation}
	ErrFunction    = &ScriptError{Kind: KindFunction}
	ErrLiteral     = &ScriptError{Kind: KindLiteral}
	ErrControlFlow = &ScriptError{Kind: KindControlFlow}
)

// CodeOf returns the code of the first ScriptError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *ScriptError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func newError(kind ErrorKind, code ErrorCode, pos ast.Pos, format string, args ...any) *ScriptError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &ScriptError{Kind: kind, Code: code, Message: msg, Pos: pos}
}

// Scope errors

func newAlreadyDefinedError(pos ast.Pos, name string) *ScriptError {
	return newError(KindScope, ErrorAlreadyDefined, pos, "'%s' is already defined in this scope", name)
}

func newUndefinedVariableError(pos ast.Pos, name string) *ScriptError {
	return newError(KindScope, ErrorUndefinedVariable, pos, "Variable '%s' is not defined in this scope", name)
}

func newCannotDeclareError(pos ast.Pos, t types.Type) *ScriptError {
	return newError(KindScope, ErrorCannotDeclare, pos, "Variable of type %s cannot be defined", t)
}

// Operation errors

func newBinaryOpError(pos ast.Pos, op Operation, left, right types.Type) *ScriptError {
	e := newError(KindOperation, ErrorUnsupportedBinaryOp, pos,
		"Unsupported %s operation between %s and %s", op, left, right)
	e.Operation = op
	return e
}

func newUnaryOpError(pos ast.Pos, op Operation, operand types.Type) *ScriptError {
	e := newError(KindOperation, ErrorUnsupportedUnaryOp, pos, "Unsupported %s operation on %s", op, operand)
	e.Operation = op
	return e
}

func newBothOperandsBoolError(pos ast.Pos) *ScriptError {
	return newError(KindOperation, ErrorBothOperandsMustBeBool, pos, "Both operands must be of bool type")
}

func newVariableExpectedError(pos ast.Pos) *ScriptError {
	return newError(KindOperation, ErrorVariableExpected, pos, "Variable expected")
}

func newTypeMismatchError(pos ast.Pos, expected types.Type) *ScriptError {
	return newError(KindOperation, ErrorTypeMismatch, pos, "%s type expected", expected)
}

func newTupleIndexError(pos ast.Pos, index, arity int) *ScriptError {
	return newError(KindOperation, ErrorTupleIndexOutOfRange, pos,
		"Tuple index _%d out of range for tuple of %d elements", index, arity)
}

func newDivisionByZeroError(pos ast.Pos) *ScriptError {
	return newError(KindOperation, ErrorDivisionByZero, pos, "Division by zero")
}

// Function errors

func newVoidParameterError(pos ast.Pos) *ScriptError {
	return newError(KindFunction, ErrorVoidParameter, pos, "Function parameter cannot be of void type")
}

func newDuplicateParametersError(pos ast.Pos) *ScriptError {
	return newError(KindFunction, ErrorDuplicateParameters, pos, "Duplicate parameter names")
}

// newArgumentError reports a call whose arguments do not fit params.
func newArgumentError(pos ast.Pos, name string, params []types.Type) *ScriptError {
	switch len(params) {
	case 0:
		return newError(KindFunction, ErrorArgumentTypeMismatch, pos, "Function %s takes no parameters", name)
	case 1:
		return newError(KindFunction, ErrorArgumentTypeMismatch, pos,
			"Function %s expects parameter of type %s", name, params[0])
	default:
		return newError(KindFunction, ErrorArgumentTypeMismatch, pos,
			"Function %s expects parameters of types %s", name, types.Join(params))
	}
}

// newArgumentOneOfError reports a built-in that accepts a single argument
// of one of several types.
func newArgumentOneOfError(pos ast.Pos, name string, accepted []types.Type) *ScriptError {
	names := make([]string, len(accepted))
	for i, t := range accepted {
		names[i] = t.String()
	}
	return newError(KindFunction, ErrorArgumentTypeMismatch, pos,
		"Function %s expects parameter of type %s", name, strings.Join(names, " or "))
}

func newArgumentConstraintError(pos ast.Pos, name, constraint string) *ScriptError {
	return newError(KindFunction, ErrorArgumentTypeMismatch, pos, "Function %s requires %s", name, constraint)
}

func newCannotResolveError(pos ast.Pos, name string) *ScriptError {
	return newError(KindFunction, ErrorCannotResolve, pos, "Cannot resolve function %s", name)
}

func newReturnTypeError(pos ast.Pos, returns []types.Type) *ScriptError {
	var s string
	switch len(returns) {
	case 0:
		s = types.Void.String()
	case 1:
		s = returns[0].String()
	default:
		s = types.Join(returns)
	}
	return newError(KindFunction, ErrorReturnTypeMismatch, pos, "Function returns: %s", s)
}

func newMissingReturnError(pos ast.Pos) *ScriptError {
	return newError(KindFunction, ErrorMissingReturnStatement, pos, "Missing return statement")
}

func newUnimplementedError(pos ast.Pos, name string) *ScriptError {
	return newError(KindFunction, ErrorUnimplemented, pos, "Function %s not yet implemented", name)
}

func newToStringError(pos ast.Pos) *ScriptError {
	names := make([]string, len(stringableTypes))
	for i, t := range stringableTypes {
		names[i] = t.String()
	}
	return newError(KindFunction, ErrorToStringNotSupported, pos,
		"toString can only be invoked on types: %s", strings.Join(names, ", "))
}

func newStackOverflowError(pos ast.Pos, name string, depth int) *ScriptError {
	return newError(KindFunction, ErrorStackOverflow, pos,
		"Call to %s exceeds maximum call depth %d", name, depth)
}

// Literal construction errors

func newBadDurationError(pos ast.Pos) *ScriptError {
	return newError(KindLiteral, ErrorBadDurationArgs, pos, "Duration constructor takes at most 4 ints as parameters")
}

func newBadDatetimeError(pos ast.Pos) *ScriptError {
	return newError(KindLiteral, ErrorBadDatetimeArgs, pos, "Datetime constructor takes 5 or 6 ints as parameters")
}

func newBadDatetimeFieldError(pos ast.Pos, field string, v int64) *ScriptError {
	return newError(KindLiteral, ErrorBadDatetimeArgs, pos, "Datetime %s out of range: %d", field, v)
}

// Control flow errors

func newBreakOutsideLoopError(pos ast.Pos) *ScriptError {
	return newError(KindControlFlow, ErrorBreakOutsideLoop, pos, "Break outside for loop")
}

func newContinueOutsideLoopError(pos ast.Pos) *ScriptError {
	return newError(KindControlFlow, ErrorContinueOutsideLoop, pos, "Continue outside for loop")
}

func newReturnOutsideFunctionError(pos ast.Pos) *ScriptError {
	return newError(KindControlFlow, ErrorReturnOutsideFunction, pos, "Return outside function")
}
