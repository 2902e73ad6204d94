package auth

import (
	"fmt"
	"net/http"
)

// ErrProviderCallback indicates the identity provider returned an error on
// the callback redirect instead of an authorization code.
type ErrProviderCallback struct {
	Code        string
	Description string
}

func (e *ErrProviderCallback) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization failed: %s", e.Code)
	}
	return fmt.Sprintf("authorization failed: %s - %s", e.Code, e.Description)
}

// ErrMissingState indicates a callback arrived for a session with no pending
// authorization request.
type ErrMissingState struct{}

func (e *ErrMissingState) Error() string {
	return "no pending authorization request for this session"
}

// ErrStateMismatch indicates the callback state did not match the stored state.
type ErrStateMismatch struct{}

func (e *ErrStateMismatch) Error() string {
	return "state parameter does not match the pending authorization request"
}

// ErrStateExpired indicates the pending authorization request outlived its TTL.
type ErrStateExpired struct{}

func (e *ErrStateExpired) Error() string {
	return "pending authorization request has expired"
}

// ErrMissingCode indicates the callback carried no authorization code.
type ErrMissingCode struct{}

func (e *ErrMissingCode) Error() string {
	return "missing code parameter"
}

// ErrExchangeFailed indicates the token endpoint rejected the code exchange.
type ErrExchangeFailed struct {
	Status int
	Body   string
}

func (e *ErrExchangeFailed) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.Status, e.Body)
}

// ErrTokenDecode indicates the identity token could not be decoded or verified.
type ErrTokenDecode struct {
	Cause error
}

func (e *ErrTokenDecode) Error() string {
	return fmt.Sprintf("failed to decode identity token: %v", e.Cause)
}

func (e *ErrTokenDecode) Unwrap() error {
	return e.Cause
}

// ErrNotAuthorized indicates the credential store rejected the password.
type ErrNotAuthorized struct{}

func (e *ErrNotAuthorized) Error() string {
	return "incorrect email or password"
}

// ErrUserNotFound indicates no account exists for the email.
type ErrUserNotFound struct {
	Email string
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("no account found for %s", e.Email)
}

// ErrUserNotConfirmed indicates the account exists but was never confirmed.
type ErrUserNotConfirmed struct{}

func (e *ErrUserNotConfirmed) Error() string {
	return "account is not confirmed"
}

// ErrChallengeRequired indicates authentication needs another step (e.g. MFA).
type ErrChallengeRequired struct {
	Challenge string
}

func (e *ErrChallengeRequired) Error() string {
	return fmt.Sprintf("additional authentication step required: %s", e.Challenge)
}

// HTTPStatus returns the HTTP status code for an auth error.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrProviderCallback, *ErrMissingState, *ErrStateMismatch, *ErrStateExpired,
		*ErrMissingCode, *ErrTokenDecode, *ErrUserNotConfirmed, *ErrChallengeRequired:
		return http.StatusBadRequest
	case *ErrNotAuthorized:
		return http.StatusUnauthorized
	case *ErrUserNotFound:
		return http.StatusNotFound
	case *ErrExchangeFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
