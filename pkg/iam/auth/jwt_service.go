package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService verifies RS256 access tokens issued by a Cognito user pool.
type JWTService struct {
	keys     KeySet
	issuer   string
	clientID string
	leeway   time.Duration
}

// NewJWTService verifies tokens from issuer minted for clientID.
func NewJWTService(keys KeySet, issuer, clientID string, leeway time.Duration) *JWTService {
	return &JWTService{
		keys:     keys,
		issuer:   issuer,
		clientID: clientID,
		leeway:   leeway,
	}
}

var _ TokenVerifier = (*JWTService)(nil)

// Verify validates signature, issuer, expiry, token_use and client_id.
func (j *JWTService) Verify(ctx context.Context, tokenString string) (*VerifiedToken, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, j.keys.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.leeway),
	)

	if err != nil {
		return nil, j.reject(err)
	}
	if !token.Valid {
		return nil, iam.ErrInvalidToken()
	}

	if claims.TokenUse != tokenUseAccess {
		return nil, iam.ErrInvalidToken().WithDetail("reason", "token_use")
	}
	if claims.ClientID != j.clientID {
		return nil, iam.ErrInvalidToken().WithDetail("reason", "client_id")
	}

	return &VerifiedToken{
		Raw:       tokenString,
		Username:  claims.Username,
		SubjectID: claims.Subject,
		ClientID:  claims.ClientID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (j *JWTService) reject(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return iam.ErrTokenExpired()
	}

	logx.WithError(err).Debug("access token rejected")
	return iam.ErrInvalidToken()
}
