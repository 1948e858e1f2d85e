// Package httpx holds the JSON response and request decoding helpers shared by the handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// StatusOf maps a result outcome to its HTTP status.
func StatusOf(o validation.Outcome) int {
	switch o {
	case validation.OutcomeOK:
		return http.StatusOK
	case validation.OutcomeInvalid:
		return http.StatusUnprocessableEntity
	case validation.OutcomeNotFound:
		return http.StatusNotFound
	case validation.OutcomeConflict, validation.OutcomeState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteResult writes the envelope with the status of its outcome.
func WriteResult[T any](w http.ResponseWriter, res validation.Result[T]) {
	JSON(w, StatusOf(res.Outcome), res)
}

// WriteCreated is WriteResult answering 201 on success.
func WriteCreated[T any](w http.ResponseWriter, res validation.Result[T]) {
	status := StatusOf(res.Outcome)
	if res.Outcome == validation.OutcomeOK {
		status = http.StatusCreated
	}
	JSON(w, status, res)
}

// Malformed answers a body that could not be decoded with the generic failed envelope.
func Malformed(w http.ResponseWriter) {
	JSON(w, http.StatusBadRequest, validation.Failed[any]())
}
