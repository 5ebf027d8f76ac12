package idp

import (
	"context"
	"net/http"

	"github.com/Abraxas-365/staffhub/pkg/errx"
)

// Tokens is the token set issued by the provider.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
}

// Challenge is an extra step the provider requires before issuing tokens,
// such as NEW_PASSWORD_REQUIRED. SessionCode is opaque.
type Challenge struct {
	Name        string `json:"challenge_name"`
	SessionCode string `json:"session_code"`
}

// AuthResult carries exactly one of Tokens or Challenge.
type AuthResult struct {
	Tokens    *Tokens
	Challenge *Challenge
}

type UserInfo struct {
	SubjectID  string
	Email      string
	Attributes map[string]string
}

// Gateway is the identity provider seen by the rest of the application.
type Gateway interface {
	Register(ctx context.Context, email, tempPassword string) error
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken, subjectID string) (*AuthResult, error)
	RevokeToken(ctx context.Context, accessToken string) error
	SetNewPassword(ctx context.Context, email, newPassword, sessionCode string) error
	VerifyEmail(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, newPassword, confirmationCode string) error
	AdminSetPassword(ctx context.Context, email, newPassword string) error
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error
	GetUser(ctx context.Context, accessToken string) (*UserInfo, error)
	DeleteUser(ctx context.Context, email string) error
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("IDP")

var (
	CodeInvalidPassword   = ErrRegistry.Register("INVALID_PASSWORD", errx.TypeExternal, http.StatusBadRequest, "Password does not meet the requirements")
	CodeCodeMismatch      = ErrRegistry.Register("CODE_MISMATCH", errx.TypeExternal, http.StatusBadRequest, "Invalid session code")
	CodeExpiredCode       = ErrRegistry.Register("EXPIRED_CODE", errx.TypeExternal, http.StatusBadRequest, "Session code has expired")
	CodeUserNotConfirmed  = ErrRegistry.Register("USER_NOT_CONFIRMED", errx.TypeExternal, http.StatusUnauthorized, "Account not confirmed")
	CodeUserNotFound      = ErrRegistry.Register("USER_NOT_FOUND", errx.TypeExternal, http.StatusUnauthorized, "Account does not exist")
	CodeNotAuthorized     = ErrRegistry.Register("NOT_AUTHORIZED", errx.TypeExternal, http.StatusUnauthorized, "Invalid email or password")
	CodeTooManyRequests   = ErrRegistry.Register("TOO_MANY_REQUESTS", errx.TypeExternal, http.StatusTooManyRequests, "Too many requests")
	CodeUserAlreadyExists = ErrRegistry.Register("USER_ALREADY_EXISTS", errx.TypeExternal, http.StatusConflict, "User already exists")
	CodeInvalidParameter  = ErrRegistry.Register("INVALID_PARAMETER", errx.TypeExternal, http.StatusBadRequest, "Invalid parameters")
	CodeUnexpected        = ErrRegistry.Register("UNEXPECTED", errx.TypeExternal, http.StatusInternalServerError, errx.UnexpectedMessage)
)

// Kind is the provider-independent failure class.
type Kind string

const (
	KindInvalidPassword   Kind = "invalid_password"
	KindCodeMismatch      Kind = "code_mismatch"
	KindExpiredCode       Kind = "expired_code"
	KindUserNotConfirmed  Kind = "user_not_confirmed"
	KindUserNotFound      Kind = "user_not_found"
	KindNotAuthorized     Kind = "not_authorized"
	KindTooManyRequests   Kind = "too_many_requests"
	KindUserAlreadyExists Kind = "user_already_exists"
	KindInvalidParameter  Kind = "invalid_parameter"
	KindUnexpected        Kind = "unexpected"
)

var kindCodes = map[Kind]*errx.ErrorCode{
	KindInvalidPassword:   CodeInvalidPassword,
	KindCodeMismatch:      CodeCodeMismatch,
	KindExpiredCode:       CodeExpiredCode,
	KindUserNotConfirmed:  CodeUserNotConfirmed,
	KindUserNotFound:      CodeUserNotFound,
	KindNotAuthorized:     CodeNotAuthorized,
	KindTooManyRequests:   CodeTooManyRequests,
	KindUserAlreadyExists: CodeUserAlreadyExists,
	KindInvalidParameter:  CodeInvalidParameter,
	KindUnexpected:        CodeUnexpected,
}

// NewError builds the fixed user-facing error of kind, keeping cause for logs.
func NewError(kind Kind, cause error) *errx.Error {
	code, ok := kindCodes[kind]
	if !ok {
		code = CodeUnexpected
	}
	return ErrRegistry.NewWithCause(code, cause).WithDetail("kind", string(kind))
}

// IsKind reports whether err is a gateway error of kind.
func IsKind(err error, kind Kind) bool {
	code, ok := kindCodes[kind]
	return ok && errx.HasCode(err, code)
}
