package auth

import (
	"context"

	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier checks a bearer access token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*VerifiedToken, error)
}

// KeySet resolves a token's verification key from its kid header.
// keyfunc.Keyfunc satisfies it.
type KeySet interface {
	KeyfuncCtx(ctx context.Context) jwt.Keyfunc
}

// PrincipalResolver turns a verified token into the caller's local identity.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token *VerifiedToken) (*kernel.AuthContext, error)
}

// AuditService records authentication and account events.
// Request metadata is read from kernel.RequestMetaFromContext.
type AuditService interface {
	LogLoginAttempt(ctx context.Context, email string, success bool, reason string)
	LogLogout(ctx context.Context, email string)
	LogTokenRefresh(ctx context.Context, subjectID string, success bool)
	LogPasswordEvent(ctx context.Context, email, event string, success bool)
	LogAccountCreated(ctx context.Context, actorEmail, email string, tier kernel.Tier)
	LogAccountDeleted(ctx context.Context, actorEmail, userID string)
	LogArchiveChanged(ctx context.Context, actorEmail, userID string, archived bool)
}
