package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/logx"
)

// State is where a login or refresh attempt ended.
type State string

const (
	StateAuthenticated     State = "authenticated"
	StateChallengeRequired State = "challenge_required"
)

// Outcome holds tokens when Authenticated and only the challenge otherwise.
type Outcome struct {
	State     State
	Tokens    *idp.Tokens
	Challenge *idp.Challenge
	SubjectID string
	Account   *directory.Account
}

// ChallengeMessage is the user-facing text for a pending challenge.
func (o *Outcome) ChallengeMessage() string {
	return fmt.Sprintf("User needs to respond to challenge: %s", o.Challenge.Name)
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("SESSION")

var (
	CodeCredentialsRequired = ErrRegistry.Register("CREDENTIALS_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Email and password are required")
	CodeInvalidEmail        = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Invalid email format")
	CodeRefreshRequired     = ErrRegistry.Register("REFRESH_REQUIRED", errx.TypeAuthentication, http.StatusUnauthorized, "Missing Refresh Authorization Header")
	CodeSubjectRequired     = ErrRegistry.Register("SUBJECT_REQUIRED", errx.TypeAuthentication, http.StatusUnauthorized, "Missing Sub-Id Header")
)

// Manager runs login, refresh and logout against the identity provider.
// It keeps no state between requests.
type Manager struct {
	gateway  idp.Gateway
	accounts directory.AccountFinder
	audit    auth.AuditService
}

func NewManager(gateway idp.Gateway, accounts directory.AccountFinder, audit auth.AuditService) *Manager {
	return &Manager{gateway: gateway, accounts: accounts, audit: audit}
}

// Login resolves the local account before the provider is contacted, so an
// unknown email never reaches it.
func (m *Manager) Login(ctx context.Context, email, password string) (*Outcome, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrRegistry.New(CodeCredentialsRequired)
	}
	if !directory.ValidEmail(email) {
		return nil, ErrRegistry.New(CodeInvalidEmail)
	}
	email = directory.NormalizeEmail(email)

	acct, err := m.accounts.FindAccountByEmail(ctx, email)
	if err != nil {
		if errx.HasCode(err, directory.CodeUserNotFound) {
			m.audit.LogLoginAttempt(ctx, email, false, "unknown_account")
			return nil, iam.ErrAccountNotFound()
		}
		return nil, err
	}

	res, err := m.gateway.Authenticate(ctx, email, password)
	if err != nil {
		m.audit.LogLoginAttempt(ctx, email, false, reason(err))
		return nil, err
	}

	if res.Challenge != nil {
		m.audit.LogLoginAttempt(ctx, email, false, "challenge:"+res.Challenge.Name)
		return &Outcome{State: StateChallengeRequired, Challenge: res.Challenge, Account: acct}, nil
	}

	info, err := m.gateway.GetUser(ctx, res.Tokens.AccessToken)
	if err != nil {
		m.audit.LogLoginAttempt(ctx, email, false, reason(err))
		return nil, err
	}

	m.audit.LogLoginAttempt(ctx, email, true, "")
	return &Outcome{
		State:     StateAuthenticated,
		Tokens:    res.Tokens,
		SubjectID: info.SubjectID,
		Account:   acct,
	}, nil
}

// Refresh exchanges a refresh token. There is no local lookup.
func (m *Manager) Refresh(ctx context.Context, refreshToken, subjectID string) (*Outcome, error) {
	if refreshToken == "" {
		return nil, ErrRegistry.New(CodeRefreshRequired)
	}
	if subjectID == "" {
		return nil, ErrRegistry.New(CodeSubjectRequired)
	}

	res, err := m.gateway.RefreshToken(ctx, refreshToken, subjectID)
	if err != nil {
		m.audit.LogTokenRefresh(ctx, subjectID, false)
		return nil, err
	}

	if res.Challenge != nil {
		m.audit.LogTokenRefresh(ctx, subjectID, false)
		return &Outcome{State: StateChallengeRequired, Challenge: res.Challenge}, nil
	}

	m.audit.LogTokenRefresh(ctx, subjectID, true)
	return &Outcome{State: StateAuthenticated, Tokens: res.Tokens, SubjectID: subjectID}, nil
}

// Logout revokes every token of the session. Provider errors, including an
// already revoked token, are returned as is.
func (m *Manager) Logout(ctx context.Context, accessToken, email string) error {
	if accessToken == "" {
		return iam.ErrMissingAuthHeader()
	}
	if err := m.gateway.RevokeToken(ctx, accessToken); err != nil {
		logx.WithError(err).Warn("token revocation failed")
		return err
	}
	m.audit.LogLogout(ctx, email)
	return nil
}

func reason(err error) string {
	return errx.From(err).Code
}
