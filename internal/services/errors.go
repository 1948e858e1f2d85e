package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// ValidationError carries field violations found after the payload passed its struct tags,
// e.g. a taxId that is not a known category.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Violations.Error() }

// NotFoundError reports a missing, deleted or out of scope entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }

func (e *NotFoundError) Unwrap() error { return store.ErrNotFound }

// StateError reports an operation the entity's current state does not allow.
type StateError struct {
	Entity string
	ID     string
	Reason string
}

func (e *StateError) Error() string { return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Reason) }

// ErrState matches every StateError through errors.Is.
var ErrState = errors.New("invalid state")

func (e *StateError) Unwrap() error { return ErrState }

func notFound(entity, id string) error { return &NotFoundError{Entity: entity, ID: id} }

func stateErr(entity, id, format string, args ...any) error {
	return &StateError{Entity: entity, ID: id, Reason: fmt.Sprintf(format, args...)}
}

// failure converts err into the matching failed envelope. Errors that are not part of the
// domain taxonomy are logged and reported with a generic message.
func failure[T any](log zerolog.Logger, err error) validation.Result[T] {
	var (
		ve *ValidationError
		nf *NotFoundError
		se *StateError
	)
	switch {
	case errors.As(err, &ve):
		return validation.Invalid[T](ve.Violations, "")
	case errors.As(err, &nf):
		return validation.NotFound[T](capitalize(nf.Error()) + ".")
	case errors.As(err, &se):
		return validation.State[T](capitalize(se.Reason) + ".")
	case errors.Is(err, store.ErrNotFound):
		return validation.NotFound[T]("Record not found.")
	case errors.Is(err, store.ErrConflict):
		return validation.Conflict[T]("The record was changed by someone else. Reload and try again.")
	}
	log.Error().Err(err).Msg("unexpected error")
	return validation.Failed[T]()
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
