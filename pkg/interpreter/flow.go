package interpreter

import "github.com/zurustar/eventscript/pkg/value"

// flowKind tells the caller of a statement how execution continues.
type flowKind int

const (
	flowNormal flowKind = iota
	flowBreak
	flowContinue
	flowReturn
)

// flow is the control-transfer signal returned next to the error by every
// statement executor. Loops consume break and continue; function calls
// consume return. Everything else passes the signal up unchanged.
type flow struct {
	kind    flowKind
	payload value.Value // return payload, Void for a bare return
}

var (
	normal       = flow{kind: flowNormal}
	breakFlow    = flow{kind: flowBreak}
	continueFlow = flow{kind: flowContinue}
)

func returnFlow(v value.Value) flow {
	return flow{kind: flowReturn, payload: v}
}

func (f flow) isNormal() bool { return f.kind == flowNormal }

func (k flowKind) String() string {
	switch k {
	case flowNormal:
		return "normal"
	case flowBreak:
		return "break"
	case flowContinue:
		return "continue"
	case flowReturn:
		return "return"
	}
	return "unknown"
}
