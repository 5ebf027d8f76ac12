package session_test

import (
	"context"
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/iam/session"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

type mockGateway struct {
	idp.Gateway

	authResult *idp.AuthResult
	authErr    error
	revokeErr  error

	authenticateCalls int
	refreshCalls      int
	revokeCalls       int
	lastEmail         string
}

func (m *mockGateway) Authenticate(_ context.Context, email, _ string) (*idp.AuthResult, error) {
	m.authenticateCalls++
	m.lastEmail = email
	return m.authResult, m.authErr
}

func (m *mockGateway) RefreshToken(context.Context, string, string) (*idp.AuthResult, error) {
	m.refreshCalls++
	return m.authResult, m.authErr
}

func (m *mockGateway) RevokeToken(context.Context, string) error {
	m.revokeCalls++
	return m.revokeErr
}

func (m *mockGateway) GetUser(context.Context, string) (*idp.UserInfo, error) {
	return &idp.UserInfo{SubjectID: "sub-1", Email: m.lastEmail}, nil
}

type mockAccounts map[string]*directory.Account

func (m mockAccounts) FindAccountByEmail(_ context.Context, email string) (*directory.Account, error) {
	if a, ok := m[email]; ok {
		return a, nil
	}
	return nil, directory.ErrUserNotFound()
}

type nopAudit struct {
	logins []bool
}

func (a *nopAudit) LogLoginAttempt(_ context.Context, _ string, success bool, _ string) {
	a.logins = append(a.logins, success)
}
func (a *nopAudit) LogLogout(context.Context, string) {}
func (a *nopAudit) LogTokenRefresh(context.Context, string, bool) {}
func (a *nopAudit) LogPasswordEvent(context.Context, string, string, bool) {}
func (a *nopAudit) LogAccountCreated(context.Context, string, string, kernel.Tier) {}
func (a *nopAudit) LogAccountDeleted(context.Context, string, string) {}
func (a *nopAudit) LogArchiveChanged(context.Context, string, string, bool) {}

func employeeAccounts() mockAccounts {
	return mockAccounts{
		"ana@example.com": {Employee: &directory.Employee{ID: "e1", Email: "ana@example.com"}},
	}
}

func tokens() *idp.AuthResult {
	return &idp.AuthResult{Tokens: &idp.Tokens{AccessToken: "access", RefreshToken: "refresh"}}
}

func TestLoginUnknownEmailNeverCallsProvider(t *testing.T) {
	gw := &mockGateway{authResult: tokens()}
	audit := &nopAudit{}
	m := session.NewManager(gw, mockAccounts{}, audit)

	_, err := m.Login(context.Background(), "nobody@example.com", "pw")
	if !errx.HasCode(err, iam.CodeAccountNotFound) {
		t.Fatalf("Login() error = %v, want account not found", err)
	}
	if got := errx.Status(err); got != 401 {
		t.Errorf("status = %d, want 401", got)
	}
	if gw.authenticateCalls != 0 {
		t.Errorf("authenticateCalls = %d, want 0", gw.authenticateCalls)
	}
	if len(audit.logins) != 1 || audit.logins[0] {
		t.Errorf("audit logins = %v, want one failure", audit.logins)
	}
}

func TestLoginValidation(t *testing.T) {
	gw := &mockGateway{authResult: tokens()}
	m := session.NewManager(gw, employeeAccounts(), &nopAudit{})

	tests := []struct {
		email, password string
		msg             string
	}{
		{"", "pw", "Email and password are required"},
		{"ana@example.com", "", "Email and password are required"},
		{"not-an-email", "pw", "Invalid email format"},
		{"ana@localhost", "pw", "Invalid email format"},
	}
	for _, tt := range tests {
		_, err := m.Login(context.Background(), tt.email, tt.password)
		if got := errx.From(err).Message; got != tt.msg {
			t.Errorf("Login(%q) message = %q, want %q", tt.email, got, tt.msg)
		}
	}
	if gw.authenticateCalls != 0 {
		t.Errorf("authenticateCalls = %d, want 0", gw.authenticateCalls)
	}
}

func TestLoginAuthenticated(t *testing.T) {
	gw := &mockGateway{authResult: tokens()}
	m := session.NewManager(gw, employeeAccounts(), &nopAudit{})

	out, err := m.Login(context.Background(), "ANA@Example.com", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if out.State != session.StateAuthenticated {
		t.Fatalf("State = %q, want authenticated", out.State)
	}
	if out.Tokens.AccessToken != "access" || out.SubjectID != "sub-1" {
		t.Errorf("Outcome = %+v", out)
	}
	if gw.lastEmail != "ana@example.com" {
		t.Errorf("provider saw %q, want lowercase email", gw.lastEmail)
	}
	if out.Account.Employee == nil {
		t.Error("Account should carry the employee record")
	}
}

func TestLoginChallengeHasNoTokens(t *testing.T) {
	gw := &mockGateway{authResult: &idp.AuthResult{Challenge: &idp.Challenge{Name: "NEW_PASSWORD_REQUIRED", SessionCode: "sess"}}}
	m := session.NewManager(gw, employeeAccounts(), &nopAudit{})

	out, err := m.Login(context.Background(), "ana@example.com", "tmp")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if out.State != session.StateChallengeRequired {
		t.Fatalf("State = %q, want challenge", out.State)
	}
	if out.Tokens != nil {
		t.Errorf("Tokens = %+v, want nil", out.Tokens)
	}
	if got, want := out.ChallengeMessage(), "User needs to respond to challenge: NEW_PASSWORD_REQUIRED"; got != want {
		t.Errorf("ChallengeMessage() = %q, want %q", got, want)
	}
}

func TestLoginProviderErrorPassesThrough(t *testing.T) {
	gw := &mockGateway{authErr: idp.NewError(idp.KindNotAuthorized, nil)}
	m := session.NewManager(gw, employeeAccounts(), &nopAudit{})

	_, err := m.Login(context.Background(), "ana@example.com", "bad")
	if got := errx.From(err).Message; got != "Invalid email or password" {
		t.Errorf("message = %q, want %q", got, "Invalid email or password")
	}
}

func TestRefresh(t *testing.T) {
	gw := &mockGateway{authResult: tokens()}
	m := session.NewManager(gw, mockAccounts{}, &nopAudit{})

	if _, err := m.Refresh(context.Background(), "", "sub-1"); !errx.HasCode(err, session.CodeRefreshRequired) {
		t.Errorf("Refresh() without token error = %v", err)
	}
	if _, err := m.Refresh(context.Background(), "refresh", ""); !errx.HasCode(err, session.CodeSubjectRequired) {
		t.Errorf("Refresh() without subject error = %v", err)
	}
	if gw.refreshCalls != 0 {
		t.Fatalf("refreshCalls = %d, want 0", gw.refreshCalls)
	}

	out, err := m.Refresh(context.Background(), "refresh", "sub-1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if out.State != session.StateAuthenticated || out.Tokens.AccessToken != "access" {
		t.Errorf("Refresh() = %+v", out)
	}
}

func TestLogoutSurfacesProviderError(t *testing.T) {
	gw := &mockGateway{revokeErr: idp.NewError(idp.KindNotAuthorized, nil)}
	m := session.NewManager(gw, mockAccounts{}, &nopAudit{})

	err := m.Logout(context.Background(), "revoked", "ana@example.com")
	if !idp.IsKind(err, idp.KindNotAuthorized) {
		t.Errorf("Logout() error = %v, want provider error", err)
	}
	if gw.revokeCalls != 1 {
		t.Errorf("revokeCalls = %d, want 1", gw.revokeCalls)
	}
}
