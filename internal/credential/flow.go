// Package credential implements the credential reset flow as a finite state machine:
//
//	collecting_identity -> verifying_code -> setting_credential -> completed
//
// Each transition is a method on Flow returning the next flow; a Manager stores flows
// between requests and performs the side effects (sending codes, storing password hashes).
package credential

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// State is a step of the flow.
type State string

const (
	StateCollectingIdentity State = "collecting_identity"
	StateVerifyingCode      State = "verifying_code"
	StateSettingCredential  State = "setting_credential"
	StateCompleted          State = "completed"
)

const (
	CodeLength  = 6
	CodeTTL     = 10 * time.Minute
	MaxAttempts = 5
)

var (
	ErrFlowNotFound      = errors.New("credential: flow not found")
	ErrInvalidTransition = errors.New("credential: operation not allowed in the current step")
	ErrInvalidCode       = errors.New("credential: invalid verification code")
	ErrCodeExpired       = errors.New("credential: verification code expired")
	ErrTooManyAttempts   = errors.New("credential: too many attempts")
)

// Flow is one reset attempt. The zero value of the unexported fields means no code was issued.
type Flow struct {
	Token     string    `json:"token"`
	State     State     `json:"state"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Attempts  int       `json:"attempts"`

	userID   string
	codeHash []byte
}

// NewFlow starts a flow collecting the identity.
func NewFlow(token string) Flow {
	return Flow{Token: token, State: StateCollectingIdentity}
}

// Identify records who is resetting and the hash of the code sent to them. userID is
// empty for an unknown email; such a flow can never be verified.
func (f Flow) Identify(email, userID string, codeHash []byte, now time.Time) (Flow, error) {
	if f.State != StateCollectingIdentity {
		return f, ErrInvalidTransition
	}
	f.State = StateVerifyingCode
	f.Email = email
	f.userID = userID
	f.codeHash = codeHash
	f.ExpiresAt = now.Add(CodeTTL)
	f.Attempts = 0
	return f, nil
}

// Verify checks code. An expired code or the last failed attempt sends the flow back
// to collecting_identity.
func (f Flow) Verify(code string, now time.Time) (Flow, error) {
	if f.State != StateVerifyingCode {
		return f, ErrInvalidTransition
	}
	if !now.Before(f.ExpiresAt) {
		return f.restart(), ErrCodeExpired
	}
	if f.userID == "" || bcrypt.CompareHashAndPassword(f.codeHash, []byte(code)) != nil {
		f.Attempts++
		if f.Attempts >= MaxAttempts {
			return f.restart(), ErrTooManyAttempts
		}
		return f, ErrInvalidCode
	}
	f.State = StateSettingCredential
	f.codeHash = nil
	return f, nil
}

// SetCredential completes the flow once the new password hash was stored.
func (f Flow) SetCredential() (Flow, error) {
	if f.State != StateSettingCredential {
		return f, ErrInvalidTransition
	}
	f.State = StateCompleted
	return f, nil
}

// UserID returns the user the flow resets, once identified.
func (f Flow) UserID() string { return f.userID }

func (f Flow) restart() Flow {
	return Flow{Token: f.Token, State: StateCollectingIdentity, Email: f.Email}
}
