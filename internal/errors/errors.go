package errors

import "fmt"

// ErrorCode represents a Redline error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"       // 400
	ErrUnauthenticated     ErrorCode = "UNAUTHENTICATED"       // 401
	ErrNotFound            ErrorCode = "NOT_FOUND"             // 404
	ErrConflict            ErrorCode = "CONFLICT"              // 409
	ErrMapMissing          ErrorCode = "REDACTION_MAP_MISSING" // 409
	ErrUnknownJurisdiction ErrorCode = "UNKNOWN_JURISDICTION"  // 422
	ErrInternal            ErrorCode = "INTERNAL"              // 500
	ErrGenerationFailed    ErrorCode = "GENERATION_FAILED"     // 502
	ErrResidualToken       ErrorCode = "RESIDUAL_TOKEN"        // 502
)

// RedlineError represents a structured error with code, status, and details.
type RedlineError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RedlineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RedlineError {
	return &RedlineError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthenticated creates a 401 error for requests lacking a verified caller identity.
func NewUnauthenticated(msg string) *RedlineError {
	return &RedlineError{
		Code:    ErrUnauthenticated,
		Status:  401,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing submission, document, clause, or annotation.
func NewNotFound(identifier string) *RedlineError {
	return &RedlineError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *RedlineError {
	return &RedlineError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewMapMissing creates the fail-closed error returned when a submission has no
// redaction map. Review requests must never fall back to raw or unmasked data.
func NewMapMissing(submissionID string) *RedlineError {
	return &RedlineError{
		Code:    ErrMapMissing,
		Status:  409,
		Message: fmt.Sprintf("no redaction map exists for submission %s", submissionID),
		Details: map[string]any{"submission_id": submissionID},
	}
}

// NewUnknownJurisdiction creates a 422 error when no rule library exists for a
// jurisdiction code.
func NewUnknownJurisdiction(code string) *RedlineError {
	return &RedlineError{
		Code:    ErrUnknownJurisdiction,
		Status:  422,
		Message: fmt.Sprintf("no drafting rules for jurisdiction %q", code),
		Details: map[string]any{"jurisdiction": code},
	}
}

// NewGenerationFailed creates a 502 error for a failed or malformed drafting
// service response.
func NewGenerationFailed(err error) *RedlineError {
	msg := "drafting service call failed"
	if err != nil {
		msg = err.Error()
	}
	return &RedlineError{
		Code:    ErrGenerationFailed,
		Status:  502,
		Message: msg,
	}
}

// NewResidualToken creates a 502 error for token-shaped strings that survived
// unmasking. A residual token means the drafting service altered or fabricated
// a placeholder and the output cannot be delivered.
func NewResidualToken(tokens []string) *RedlineError {
	return &RedlineError{
		Code:    ErrResidualToken,
		Status:  502,
		Message: fmt.Sprintf("generated text contains %d unresolved placeholder(s)", len(tokens)),
		Details: map[string]any{"tokens": tokens},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *RedlineError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &RedlineError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a RedlineError with the given code.
func Is(err error, code ErrorCode) bool {
	if rErr, ok := err.(*RedlineError); ok {
		return rErr.Code == code
	}
	return false
}
