package domain

import "net/http"

// Error is a business-rule failure with a stable machine-readable code and
// an HTTP status hint. Handlers propagate these unchanged to the transport
// layer; unexpected store errors are never converted, they roll back the
// surrounding transaction and re-throw as-is.
type Error struct {
	Code    string `json:"error_code"`
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *Error) Error() string { return e.Message }

// WithMessage returns a copy carrying a request-specific message. The copy
// still matches the original under errors.Is.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: msg}
}

// Is matches any *Error sharing the same code, so WithMessage copies and
// wrapped values compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidInput       = &Error{Code: "AUTH_001", Status: http.StatusBadRequest, Message: "invalid identifier or input"}
	ErrCodeExpired        = &Error{Code: "AUTH_002", Status: http.StatusBadRequest, Message: "code expired or not requested"}
	ErrCodeInvalid        = &Error{Code: "AUTH_003", Status: http.StatusBadRequest, Message: "invalid code"}
	ErrUserSuspended      = &Error{Code: "AUTH_004", Status: http.StatusForbidden, Message: "account is suspended or inactive"}
	ErrTokenInvalid       = &Error{Code: "AUTH_005", Status: http.StatusUnauthorized, Message: "invalid or expired token"}
	ErrRateLimited        = &Error{Code: "AUTH_006", Status: http.StatusTooManyRequests, Message: "too many code requests, try again later"}
	ErrAlreadyRegistered  = &Error{Code: "AUTH_007", Status: http.StatusBadRequest, Message: "identifier already registered"}
	ErrUserNotFound       = &Error{Code: "AUTH_008", Status: http.StatusNotFound, Message: "user not found"}
	ErrNotVerified        = &Error{Code: "AUTH_009", Status: http.StatusForbidden, Message: "account not verified"}
	ErrInvalidCredentials = &Error{Code: "AUTH_010", Status: http.StatusUnauthorized, Message: "invalid phone/email or password"}
	ErrStoreUnavailable   = &Error{Code: "AUTH_011", Status: http.StatusServiceUnavailable, Message: "backing store unavailable"}
)
