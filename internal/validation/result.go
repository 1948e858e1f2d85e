package validation

// Outcome tags a Result so transports can map it without inspecting messages.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeInvalid  Outcome = "validation_failed"
	OutcomeNotFound Outcome = "not_found"
	OutcomeConflict Outcome = "conflict"
	OutcomeState    Outcome = "state_error"
	OutcomeFailed   Outcome = "failed"
)

// GenericFailure is the message used when an unexpected error is converted to a Result.
const GenericFailure = "Something went wrong. Please try again."

// Result is the envelope returned by every mutation and lookup:
//
//	{ "success": false, "errors": {"field": ["message"]}, "message": "..." }
//	{ "success": true, "data": {...}, "message": "..." }
type Result[T any] struct {
	Success bool       `json:"success"`
	Data    T          `json:"data,omitempty"`
	Errors  Violations `json:"errors,omitempty"`
	Message string     `json:"message"`
	Outcome Outcome    `json:"-"`
}

// OK wraps data in a successful result.
func OK[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Data: data, Message: message, Outcome: OutcomeOK}
}

// Invalid reports field violations.
func Invalid[T any](v Violations, message string) Result[T] {
	if message == "" {
		message = "Validation failed. Please check the highlighted fields."
	}
	return Result[T]{Errors: v, Message: message, Outcome: OutcomeInvalid}
}

// NotFound reports a missing (or out of scope) entity.
func NotFound[T any](message string) Result[T] {
	return Result[T]{Message: message, Outcome: OutcomeNotFound}
}

// Conflict reports a concurrent modification.
func Conflict[T any](message string) Result[T] {
	return Result[T]{Message: message, Outcome: OutcomeConflict}
}

// State reports an operation the entity's current state does not allow.
func State[T any](message string) Result[T] {
	return Result[T]{Message: message, Outcome: OutcomeState}
}

// Failed reports an unexpected error with a generic message.
func Failed[T any]() Result[T] {
	return Result[T]{Message: GenericFailure, Outcome: OutcomeFailed}
}

// Cast re-types a failed result, e.g. to return a lookup failure from a mutation.
func Cast[U, T any](r Result[T]) Result[U] {
	return Result[U]{Success: r.Success, Errors: r.Errors, Message: r.Message, Outcome: r.Outcome}
}
