package noumenon

import "fmt"

// Kind tags the category of failure a Noumenon operation can surface, per
// the error taxonomy of the embedding contract.
type Kind string

const (
	KindSchemaError          Kind = "SchemaError"
	KindLabelInUse           Kind = "LabelInUse"
	KindTypeMismatch         Kind = "TypeMismatch"
	KindArrayArityViolation  Kind = "ArrayArityViolation"
	KindEnumOutOfRange       Kind = "EnumOutOfRange"
	KindUnknownArchetype     Kind = "UnknownArchetype"
	KindUnknownSubject       Kind = "UnknownSubject"
	KindUnknownBelief        Kind = "UnknownBelief"
	KindGroundMindMismatch   Kind = "GroundMindMismatch"
	KindTimeRegression       Kind = "TimeRegression"
	KindStateLocked          Kind = "StateLocked"
	KindConvergenceImmutable Kind = "ConvergenceImmutable"
	KindSerializationError   Kind = "SerializationError"
)

// Error is the single concrete error type surfaced at the core's boundary.
// It carries a tag, a human message and a structured context bag so callers
// can branch on Kind without string matching.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]interface{}
}

func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s %v", e.Kind, e.Message, e.Context)
}

func newErr(kind Kind, msg string, ctx map[string]interface{}) *Error {
	return &Error{Kind: kind, Message: msg, Context: ctx}
}

func errSchema(msg string, ctx map[string]interface{}) *Error {
	return newErr(KindSchemaError, msg, ctx)
}

func errLabelInUse(label string) *Error {
	return newErr(KindLabelInUse, "label already registered", map[string]interface{}{"label": label})
}

func errTypeMismatch(traittype string, expected, got interface{}) *Error {
	return newErr(KindTypeMismatch, "trait value does not satisfy traittype", map[string]interface{}{
		"traittype": traittype, "expected": expected, "got": got,
	})
}

func errArrayArity(traittype string, n, min, max int) *Error {
	return newErr(KindArrayArityViolation, "array container arity violated", map[string]interface{}{
		"traittype": traittype, "len": n, "min": min, "max": max,
	})
}

func errEnumOutOfRange(traittype, value string) *Error {
	return newErr(KindEnumOutOfRange, "value not in traittype's enum set", map[string]interface{}{
		"traittype": traittype, "value": value,
	})
}

func errUnknownArchetype(label string) *Error {
	return newErr(KindUnknownArchetype, "no such archetype", map[string]interface{}{"label": label})
}

func errUnknownSubject(sid SID) *Error {
	return newErr(KindUnknownSubject, "no such subject", map[string]interface{}{"sid": uint64(sid)})
}

func errUnknownBelief(ctx map[string]interface{}) *Error {
	return newErr(KindUnknownBelief, "no such belief visible in state", ctx)
}

func errGroundMindMismatch(wantMind, gotMind ID) *Error {
	return newErr(KindGroundMindMismatch, "ground state belongs to a different mind", map[string]interface{}{
		"want_mind": uint64(wantMind), "got_mind": uint64(gotMind),
	})
}

func errTimeRegression(msg string, ctx map[string]interface{}) *Error {
	return newErr(KindTimeRegression, msg, ctx)
}

func errStateLocked(stateID ID) *Error {
	return newErr(KindStateLocked, "state is locked", map[string]interface{}{"state": uint64(stateID)})
}

func errConvergenceImmutable(convID ID) *Error {
	return newErr(KindConvergenceImmutable, "convergence does not accept removes", map[string]interface{}{"convergence": uint64(convID)})
}

func errSerialization(msg string, ctx map[string]interface{}) *Error {
	return newErr(KindSerializationError, msg, ctx)
}
