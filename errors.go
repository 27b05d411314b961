package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeRequestValidation  = "REQUEST_VALIDATION"
	TextCodeBadRequest         = "BAD_REQUEST"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	TextCodeNotAuthorized      = "NOT_AUTHORIZED"
	TextCodeRouteNotFound      = "NOT_FOUND"
	TextCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeMissingSigningKey  = "MISSING_SIGNING_KEY"
	TextCodeSessionDecodeError = "SESSION_DECODE_ERROR"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeUnhandled          = "INTERNAL_ERROR"
)

// Messages sent to clients. They never carry store or token detail.
const (
	MessageInvalidCredentials = "Invalid credentials"
	MessageSignupRejected     = "Unable to sign up with the provided credentials"
	MessageNotAuthorized      = "Not authorized"
	MessageRouteNotFound      = "Route not found"
	MessageUnhandled          = "Something went wrong"
	MessageInvalidBody        = "Invalid request body"
)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when a candidate does not match the stored hash
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrAccountNotFound is returned by the store when no record matches
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrDuplicateAccount is returned by the store when the email is already registered.
// Flows never send it to clients as is, see NewBadRequestError.
var ErrDuplicateAccount = errors.New("account already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateAccount).
	WithCode(errors.CodeConflict)

// ErrNotAuthorized is returned by RequireAuth when no identity is attached
var ErrNotAuthorized = errors.New(MessageNotAuthorized, errors.CategoryAuth).
	WithTextCode(TextCodeNotAuthorized).
	WithCode(errors.CodeUnauthorized)

// ErrRouteNotFound is returned for unmatched routes
var ErrRouteNotFound = errors.New(MessageRouteNotFound, errors.CategoryNotFound).
	WithTextCode(TextCodeRouteNotFound).
	WithCode(errors.CodeNotFound)

// ErrMissingSigningKey fails service construction when no signing key is configured
var ErrMissingSigningKey = errors.New("signing key must be defined", errors.CategoryInternal).
	WithTextCode(TextCodeMissingSigningKey)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed signature, format or claims check failed
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired the token carried an exp claim in the past
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// NewBadRequestError is a domain rule violation surfaced with a single generic message
func NewBadRequestError(message string) *errors.Error {
	return errors.New(message, errors.CategoryBadInput).
		WithTextCode(TextCodeBadRequest).
		WithCode(errors.CodeBadRequest)
}

// NewInvalidCredentialsError is used for both unknown email and password mismatch
func NewInvalidCredentialsError() *errors.Error {
	return errors.New(MessageInvalidCredentials, errors.CategoryBadInput).
		WithTextCode(TextCodeInvalidCreds).
		WithCode(errors.CodeBadRequest)
}

// NewRequestValidationError wraps the ordered field failures of a payload
func NewRequestValidationError(fields ValidationErrors) *errors.Error {
	return errors.New("invalid request parameters", errors.CategoryValidation).
		WithTextCode(TextCodeRequestValidation).
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{
			validationMetadataKey: fields,
		})
}

// IsAccountNotFound reports whether err is a store miss
func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

// IsDuplicateAccount reports whether err is a uniqueness violation on email
func IsDuplicateAccount(err error) bool {
	return errors.Is(err, ErrDuplicateAccount)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
