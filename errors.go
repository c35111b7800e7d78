package landmark

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so login failures never reveal which one it was.
var ErrInvalidCredentials = errors.New("incorrect email or password", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotVerified blocks login and verified-only routes until the
// verification link has been followed.
var ErrEmailNotVerified = errors.New("email address is not verified", errors.CategoryAuthz).
	WithTextCode("EMAIL_NOT_VERIFIED").
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is the structured error for expired session tokens.
var ErrTokenExpired = errors.New("authentication token has expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is the structured error for tokens that fail to parse or
// verify.
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrMissingToken is returned when no bearer token or cookie is present.
var ErrMissingToken = errors.New("you are not logged in", errors.CategoryAuth).
	WithTextCode("TOKEN_MISSING").
	WithCode(errors.CodeUnauthorized)

// ErrStaleSession rejects tokens issued before the user's last password change.
var ErrStaleSession = errors.New("password changed recently, please log in again", errors.CategoryAuth).
	WithTextCode("STALE_SESSION").
	WithCode(errors.CodeUnauthorized)

// ErrUserGone is returned when a valid token references a user that no
// longer exists or has been deactivated.
var ErrUserGone = errors.New("the user belonging to this token no longer exists", errors.CategoryAuth).
	WithTextCode("USER_GONE").
	WithCode(errors.CodeUnauthorized)

// ErrForbiddenRole is the role-based authorization refusal.
var ErrForbiddenRole = errors.New("you do not have permission to perform this action", errors.CategoryAuthz).
	WithTextCode("FORBIDDEN_ROLE").
	WithCode(errors.CodeForbidden)

// ErrOneTimeTokenInvalid covers unknown, already used, and expired one-time
// tokens. The three cases are indistinguishable to callers on purpose.
var ErrOneTimeTokenInvalid = errors.New("token is invalid or has expired", errors.CategoryNotFound).
	WithTextCode("ONE_TIME_TOKEN_INVALID").
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is the bcrypt comparison failure.
var ErrMismatchedHashAndPassword = errors.New("crypto: hash and password mismatch", errors.CategoryAuth).
	WithTextCode("HASH_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty password input before hashing.
var ErrNoEmptyString = errors.New("value should not be an empty string", errors.CategoryValidation).
	WithTextCode("EMPTY_STRING").
	WithCode(errors.CodeBadRequest)

// NewDeliveryError wraps an email send failure. Callers are expected to run
// their compensating cleanup before surfacing it.
func NewDeliveryError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryOperation, "there was a problem sending the email, try again later").
		WithTextCode("DELIVERY_FAILED").
		WithCode(errors.CodeInternal)
}

// NewValidationError builds a 400 from a validation failure, keeping the
// underlying field messages as the user-facing message.
func NewValidationError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryValidation, err.Error()).
		WithTextCode("VALIDATION_FAILED").
		WithCode(errors.CodeBadRequest)
}

// IsNotFound reports whether err means a record is missing. The repository
// layer raises its own not-found category, so checking only the application
// category would miss every lookup failure coming out of bun.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.IsNotFound(err) || repository.IsRecordNotFound(err)
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
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
