package iamcontainer

import (
	"context"
	"net/http"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/config"
	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/iam/iamapi"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp/idpcognito"
	"github.com/Abraxas-365/staffhub/pkg/iam/password"
	"github.com/Abraxas-365/staffhub/pkg/iam/session"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
	"github.com/redis/go-redis/v9"
)

// tokenLeeway absorbs clock skew between us and the user pool.
const tokenLeeway = 30 * time.Second

// ---------------------------------------------------------------------------
// Deps: what the IAM context needs from the rest of the application.
// ---------------------------------------------------------------------------

type Deps struct {
	Redis   *redis.Client
	Cfg     *config.Config
	Cognito idpcognito.CognitoAPI

	// The user directory is owned by another context; IAM only reads it
	// and, for admin password resets, checks the stored tier.
	Accounts  directory.AccountFinder
	Employees directory.EmployeeRepository
	Admins    directory.AdminRepository

	Notifier notifx.AccountNotifier
}

// ---------------------------------------------------------------------------
// Container: the public surface of the IAM module.
// ---------------------------------------------------------------------------

type Container struct {
	// Shared with the directory context
	Gateway    idp.Gateway
	Authorizer authz.Authorizer
	Audit      auth.AuditService

	Sessions  *session.Manager
	Passwords *password.Controller

	AuthHandlers   *iamapi.AuthHandlers
	AuthMiddleware *auth.TokenMiddleware

	stopKeys context.CancelFunc
}

// New builds the graph infra → services → handlers → middleware.
func New(deps Deps) *Container {
	logx.Info("🔐 Initializing IAM module...")

	cfg := deps.Cfg
	gateway := idpcognito.NewGateway(deps.Cognito, idpcognito.Config{
		UserPoolID:   cfg.Cognito.UserPoolID,
		ClientID:     cfg.Cognito.AppClientID,
		ClientSecret: cfg.Cognito.AppClientSecret,
	})
	audit := authinfra.NewLogxAuditService()
	authorizer := authz.NewEngine()

	issuer := cfg.Cognito.Issuer(cfg.AWS.Region)
	keyCtx, stopKeys := context.WithCancel(context.Background())
	snapshot := authinfra.NewRedisJWKSStorage(deps.Redis, "", cfg.Cognito.JWKSCacheTTL)
	if n, err := snapshot.Restore(keyCtx); err != nil {
		logx.WithError(err).Warn("  ⚠️ JWKS snapshot unreadable, waiting for user pool")
	} else if n > 0 {
		logx.Infof("  ✅ Restored %d signing keys from Redis", n)
	}
	keys, err := authinfra.NewCognitoKeySet(keyCtx, authinfra.KeySetOptions{
		JWKSURL:         issuer + "/.well-known/jwks.json",
		Client:          &http.Client{Timeout: 5 * time.Second},
		Storage:         snapshot,
		RefreshInterval: cfg.Cognito.JWKSCacheTTL,
	})
	if err != nil {
		stopKeys()
		logx.Fatalf("Failed to build JWKS key set: %v", err)
	}
	verifier := auth.NewJWTService(keys, issuer, cfg.Cognito.AppClientID, tokenLeeway)
	middleware := auth.NewAuthMiddleware(verifier, auth.NewAccountResolver(gateway, deps.Accounts))

	sessions := session.NewManager(gateway, deps.Accounts, audit)
	passwords := password.NewController(
		gateway,
		deps.Accounts,
		deps.Employees,
		deps.Admins,
		authorizer,
		deps.Notifier,
		audit,
	)

	logx.Infof("  ✅ IAM ready (issuer: %s)", issuer)

	return &Container{
		Gateway:        gateway,
		Authorizer:     authorizer,
		Audit:          audit,
		Sessions:       sessions,
		Passwords:      passwords,
		AuthHandlers:   iamapi.NewAuthHandlers(sessions, passwords),
		AuthMiddleware: middleware,
		stopKeys:       stopKeys,
	}
}

// Close stops the background key set refresh.
func (c *Container) Close() {
	if c.stopKeys != nil {
		c.stopKeys()
	}
}
