package domain

import "fmt"

// Reject codes returned by the binding endpoint. These are wire literals:
// clients branch on them, so they must never change spelling.
const (
	RejectGateExpired      = "gate_expired"
	RejectGateInvalid      = "gate_invalid"
	RejectNoSession        = "no_session"
	RejectInvalidSession   = "invalid_session"
	RejectCodeNotFound     = "code_not_found"
	RejectCodeInactive     = "code_inactive"
	RejectCodeAlreadyBound = "code_already_bound"
	RejectBindingFailed    = "binding_failed"
	RejectProfileFailed    = "profile_failed"
	RejectUnknown          = "unknown"
)

// BindError is a binding-flow rejection. Code is the wire literal; Err holds
// the underlying cause for logs and carries the domain sentinel the handler
// maps to an HTTP status.
type BindError struct {
	Code string
	Err  error
}

func (e *BindError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *BindError) Unwrap() error { return e.Err }

// BindResult is the outcome of a successful binding flow.
type BindResult struct {
	CodeID   string
	Identity Identity
	Rebind   bool // true when the same identity re-used an already-self-bound code
}
