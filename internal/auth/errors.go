package auth

import (
	"errors"

	"github.com/marcus/habitchain/internal/identity"
)

// Kind is the top-level class of an authentication failure.
type Kind int

const (
	// KindValidation is a local precondition failure; the provider was
	// never contacted.
	KindValidation Kind = iota + 1
	// KindCredential means the provider rejected the email/password pair
	// or the account details.
	KindCredential
	// KindFederated means the third-party sign-in flow did not complete.
	KindFederated
	// KindUnknown is an unclassified provider failure.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindCredential:
		return "CredentialError"
	case KindFederated:
		return "FederatedAuthError"
	default:
		return "Unknown"
	}
}

// Reason is the classified cause within a Kind.
type Reason string

const (
	ReasonMissingFields      Reason = "MissingFields"
	ReasonPasswordMismatch   Reason = "PasswordMismatch"
	ReasonInvalidCredentials Reason = "InvalidCredentials"
	ReasonUserNotFound       Reason = "UserNotFound"
	ReasonMalformedEmail     Reason = "MalformedEmail"
	ReasonEmailInUse         Reason = "EmailInUse"
	ReasonWeakPassword       Reason = "WeakPassword"
	ReasonCancelled          Reason = "Cancelled"
	ReasonInProgress         Reason = "InProgress"
	ReasonServiceUnavailable Reason = "ServiceUnavailable"
	ReasonMissingToken       Reason = "MissingToken"
	ReasonUnknown            Reason = "Unknown"
)

// Error is an action failure with a fixed, user-facing message. Only
// KindUnknown errors carry the provider's raw message in Message.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// ReasonOf returns the Reason of err, or "" when err is not an *Error.
func ReasonOf(err error) Reason {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ""
}

const (
	msgSignInMissing   = "Please enter both email and password."
	msgUserNotFound    = "No user found with that email."
	msgWrongPassword   = "Incorrect password."
	msgInvalidEmail    = "Invalid email format."
	msgSignInFailed    = "Login failed. Please try again."
	msgSignUpMissing   = "Please fill all fields including Full Name."
	msgPasswordsDiffer = "Passwords do not match."
	msgEmailInUse      = "Email already in use."
	msgWeakPassword    = "Password too weak."
	msgSignUpFailed    = "Registration failed. Please try again."
	msgGoogleCancelled = "Google Sign-in cancelled"
	msgGoogleBusy      = "Google Sign-in in progress"
	msgGoogleMissing   = "Google Sign-In is not available"
	msgGoogleNoToken   = "Google Sign-In failed: No ID token received."
	msgGoogleFailed    = "Google Sign-In failed. Please try again."
)

func validation(reason Reason, msg string) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: msg}
}

func unknown(fallback string, err error) *Error {
	return &Error{
		Kind:    KindUnknown,
		Reason:  ReasonUnknown,
		Message: fallback + " (" + identity.RawMessage(err) + ")",
		Err:     err,
	}
}

// classifySignIn maps provider errors from signInWithPassword.
func classifySignIn(err error) *Error {
	switch identity.CodeOf(err) {
	case identity.CodeUserNotFound:
		return &Error{Kind: KindCredential, Reason: ReasonUserNotFound, Message: msgUserNotFound, Err: err}
	case identity.CodeWrongPassword, identity.CodeInvalidCredential:
		return &Error{Kind: KindCredential, Reason: ReasonInvalidCredentials, Message: msgWrongPassword, Err: err}
	case identity.CodeInvalidEmail:
		return &Error{Kind: KindCredential, Reason: ReasonMalformedEmail, Message: msgInvalidEmail, Err: err}
	default:
		return unknown(msgSignInFailed, err)
	}
}

// classifySignUp maps provider errors from createAccount.
func classifySignUp(err error) *Error {
	switch identity.CodeOf(err) {
	case identity.CodeEmailInUse:
		return &Error{Kind: KindCredential, Reason: ReasonEmailInUse, Message: msgEmailInUse, Err: err}
	case identity.CodeInvalidEmail:
		return &Error{Kind: KindCredential, Reason: ReasonMalformedEmail, Message: msgInvalidEmail, Err: err}
	case identity.CodeWeakPassword:
		return &Error{Kind: KindCredential, Reason: ReasonWeakPassword, Message: msgWeakPassword, Err: err}
	default:
		return unknown(msgSignUpFailed, err)
	}
}

// classifyFederated maps failures of the Google flow and of the
// credential exchange.
func classifyFederated(err error) *Error {
	switch identity.CodeOf(err) {
	case identity.CodeCancelled:
		return &Error{Kind: KindFederated, Reason: ReasonCancelled, Message: msgGoogleCancelled, Err: err}
	case identity.CodeInProgress:
		return &Error{Kind: KindFederated, Reason: ReasonInProgress, Message: msgGoogleBusy, Err: err}
	case identity.CodeServiceUnavailable:
		return &Error{Kind: KindFederated, Reason: ReasonServiceUnavailable, Message: msgGoogleMissing, Err: err}
	case identity.CodeMissingIDToken:
		return &Error{Kind: KindFederated, Reason: ReasonMissingToken, Message: msgGoogleNoToken, Err: err}
	default:
		return unknown(msgGoogleFailed, err)
	}
}
