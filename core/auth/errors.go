package auth

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	InvalidCredentials ErrorKind = "invalid_credentials"
	UserNotFound       ErrorKind = "user_not_found"
	AccountDisabled    ErrorKind = "account_disabled"
	RateLimited        ErrorKind = "rate_limited"
	Unknown            ErrorKind = "unknown"
)

// AuthError is the only error type SignIn returns.
type AuthError struct {
	Kind ErrorKind
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %v", e.Kind, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("auth %s (%s)", e.Kind, e.Code)
	}
	return "auth " + string(e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

func newAuthError(kind ErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// KindOf returns Unknown for errors that are not an *AuthError.
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unknown
}

// kindFromProviderCode maps identity toolkit error codes. The service may
// append detail after the code ("TOO_MANY_ATTEMPTS_TRY_LATER : ...").
func kindFromProviderCode(code string) ErrorKind {
	code = strings.TrimSpace(code)
	if head, _, ok := strings.Cut(code, " "); ok {
		code = head
	}
	switch code {
	case "EMAIL_NOT_FOUND":
		return UserNotFound
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return InvalidCredentials
	case "USER_DISABLED":
		return AccountDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return RateLimited
	default:
		return Unknown
	}
}

// Describe localizes err for display. INVALID_EMAIL keeps its own wording
// even though it shares the InvalidCredentials kind.
func Describe(lang string, err error) string {
	var ae *AuthError
	if !errors.As(err, &ae) {
		return Message(lang, Unknown)
	}
	if ae.Code == "INVALID_EMAIL" {
		return Localized(lang, MsgInvalidEmail)
	}
	return Message(lang, ae.Kind)
}
