package token

import (
	"errors"
	"fmt"
)

// Code classifies a verification failure for the API error contract.
type Code string

const (
	// CodeUnauthenticated covers missing or garbled credentials.
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	// CodeTokenExpired covers tokens whose signature verified but whose exp has passed.
	CodeTokenExpired Code = "TOKEN_EXPIRED"
	// CodeInvalidToken covers signature or claims mismatches.
	CodeInvalidToken Code = "INVALID_TOKEN"
	// CodeVerificationFailed covers infrastructure and configuration problems:
	// unsupported algorithm, missing secret, unreachable key set.
	CodeVerificationFailed Code = "VERIFICATION_FAILED"
)

// VerificationError is a classified token verification failure.
type VerificationError struct {
	Code    Code
	Message string
	err     error
}

func (e *VerificationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *VerificationError) Unwrap() error {
	return e.err
}

func newError(code Code, message string, err error) *VerificationError {
	return &VerificationError{Code: code, Message: message, err: err}
}

// CodeOf extracts the failure code from an error returned by Verify.
// Unclassified errors map to UNAUTHENTICATED so nothing internal leaks.
func CodeOf(err error) Code {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return CodeUnauthenticated
}

// MessageOf extracts the caller-safe message from an error returned by Verify.
func MessageOf(err error) string {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return "authentication required"
}
