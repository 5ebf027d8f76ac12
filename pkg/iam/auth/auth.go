package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ============================================================================
// Token Types
// ============================================================================

// AccessClaims are the claims of a Cognito access token.
type AccessClaims struct {
	Username string `json:"username"`
	ClientID string `json:"client_id"`
	TokenUse string `json:"token_use"`
	Scope    string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// VerifiedToken is what a valid access token tells us about its bearer.
type VerifiedToken struct {
	Raw       string
	Username  string
	SubjectID string
	ClientID  string
	ExpiresAt time.Time
}

const (
	tokenUseAccess = "access"
	authHeader     = "Authorization"
	bearerPrefix   = "Bearer"
	localsKey      = "auth"
)
