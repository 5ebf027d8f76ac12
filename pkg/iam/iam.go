package iam

import (
	"net/http"

	"github.com/Abraxas-365/staffhub/pkg/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeMissingAuthHeader = ErrRegistry.Register("MISSING_AUTH_HEADER", errx.TypeAuthentication, http.StatusUnauthorized, "Missing Authorization Header")
	CodeInvalidToken      = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid token")
	CodeTokenExpired      = ErrRegistry.Register("TOKEN_EXPIRED", errx.TypeAuthentication, http.StatusUnauthorized, "Token has expired")
	CodeAccountNotFound   = ErrRegistry.Register("ACCOUNT_NOT_FOUND", errx.TypeAuthentication, http.StatusUnauthorized, "Account does not exist")
	CodeUnauthenticated   = ErrRegistry.Register("UNAUTHENTICATED", errx.TypeAuthentication, http.StatusUnauthorized, "Authentication required")
	CodeAccessDenied      = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "You are not authorized to perform this action")
)

// Helper functions
func ErrMissingAuthHeader() *errx.Error {
	return ErrRegistry.New(CodeMissingAuthHeader)
}

func ErrInvalidToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidToken)
}

func ErrTokenExpired() *errx.Error {
	return ErrRegistry.New(CodeTokenExpired)
}

func ErrAccountNotFound() *errx.Error {
	return ErrRegistry.New(CodeAccountNotFound)
}

func ErrUnauthenticated() *errx.Error {
	return ErrRegistry.New(CodeUnauthenticated)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}
