package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code is a provider error code in the "auth/<code>" family.
type Code string

const (
	CodeUserNotFound        Code = "user-not-found"
	CodeWrongPassword       Code = "wrong-password"
	CodeInvalidCredential   Code = "invalid-credential"
	CodeInvalidEmail        Code = "invalid-email"
	CodeEmailInUse          Code = "email-already-in-use"
	CodeWeakPassword        Code = "weak-password"
	CodeUserDisabled        Code = "user-disabled"
	CodeTooManyRequests     Code = "too-many-requests"
	CodeTokenExpired        Code = "user-token-expired"
	CodeOperationNotAllowed Code = "operation-not-allowed"
	CodeNetwork             Code = "network-request-failed"

	// Federated sign-in flow codes.
	CodeCancelled          Code = "sign-in-cancelled"
	CodeInProgress         Code = "sign-in-in-progress"
	CodeServiceUnavailable Code = "service-unavailable"
	CodeMissingIDToken     Code = "missing-id-token"

	CodeInternal Code = "internal-error"
)

// Error is a classified provider failure. Message holds the provider's
// raw message and is meant for logs, not for end users.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth/%s: %s", e.Code, e.Message)
	}
	return "auth/" + string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same code, so callers can write
// errors.Is(err, &identity.Error{Code: identity.CodeEmailInUse}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the provider code carried by err, CodeInternal for
// unclassified errors, and "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return CodeInternal
}

// RawMessage returns the provider's raw message for err, or err.Error()
// when err is not a classified provider error.
func RawMessage(err error) string {
	if err == nil {
		return ""
	}
	var ie *Error
	if errors.As(err, &ie) && ie.Message != "" {
		return ie.Message
	}
	return err.Error()
}

// remoteCodes maps Identity Toolkit error messages to codes.
var remoteCodes = map[string]Code{
	"EMAIL_NOT_FOUND":             CodeUserNotFound,
	"USER_NOT_FOUND":              CodeUserNotFound,
	"INVALID_PASSWORD":            CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":        CodeInvalidCredential,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"MISSING_EMAIL":               CodeInvalidEmail,
	"EMAIL_EXISTS":                CodeEmailInUse,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
	"TOKEN_EXPIRED":               CodeTokenExpired,
	"INVALID_REFRESH_TOKEN":       CodeTokenExpired,
	"OPERATION_NOT_ALLOWED":       CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     CodeOperationNotAllowed,
}

// classifyRemote builds an Error from an HTTP status and the provider's
// error message, e.g. "WEAK_PASSWORD : Password should be at least 6 characters".
func classifyRemote(status int, message string) *Error {
	key := message
	if i := strings.Index(key, " : "); i >= 0 {
		key = key[:i]
	}
	key = strings.TrimSpace(key)
	if code, ok := remoteCodes[key]; ok {
		return &Error{Code: code, Message: message}
	}
	if status == http.StatusServiceUnavailable {
		return &Error{Code: CodeServiceUnavailable, Message: message}
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &Error{Code: CodeInternal, Message: message}
}
