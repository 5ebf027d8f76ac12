package iamapi_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/iam/iamapi"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/iam/password"
	"github.com/Abraxas-365/staffhub/pkg/iam/session"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
	"github.com/gofiber/fiber/v2"
)

type mockGateway struct {
	idp.Gateway

	authResult   *idp.AuthResult
	refreshCalls int
}

func (m *mockGateway) Authenticate(context.Context, string, string) (*idp.AuthResult, error) {
	return m.authResult, nil
}

func (m *mockGateway) GetUser(context.Context, string) (*idp.UserInfo, error) {
	return &idp.UserInfo{SubjectID: "sub-1", Email: "ana@example.com"}, nil
}

func (m *mockGateway) RefreshToken(_ context.Context, refresh, _ string) (*idp.AuthResult, error) {
	m.refreshCalls++
	return &idp.AuthResult{Tokens: &idp.Tokens{AccessToken: "fresh-" + refresh}}, nil
}

type mockAccounts struct{}

func (mockAccounts) FindAccountByEmail(_ context.Context, email string) (*directory.Account, error) {
	if email != "ana@example.com" {
		return nil, directory.ErrUserNotFound()
	}
	return &directory.Account{Employee: &directory.Employee{ID: "e1", Email: email, IsActive: true}}, nil
}

type nopAudit struct{}

func (nopAudit) LogLoginAttempt(context.Context, string, bool, string) {}
func (nopAudit) LogLogout(context.Context, string) {}
func (nopAudit) LogTokenRefresh(context.Context, string, bool) {}
func (nopAudit) LogPasswordEvent(context.Context, string, string, bool) {}
func (nopAudit) LogAccountCreated(context.Context, string, string, kernel.Tier) {}
func (nopAudit) LogAccountDeleted(context.Context, string, string) {}
func (nopAudit) LogArchiveChanged(context.Context, string, string, bool) {}

type nopNotifier struct{}

func (nopNotifier) AccountCreated(context.Context, notifx.AccountCreated) error { return nil }
func (nopNotifier) PasswordResetByAdmin(context.Context, notifx.PasswordResetByAdmin) error {
	return nil
}

type denyVerifier struct{}

func (denyVerifier) Verify(context.Context, string) (*auth.VerifiedToken, error) {
	return nil, errx.Unauthenticated("Invalid token")
}

type nopResolver struct{}

func (nopResolver) Resolve(context.Context, *auth.VerifiedToken) (*kernel.AuthContext, error) {
	return nil, nil
}

func newApp(gw *mockGateway) *fiber.App {
	sessions := session.NewManager(gw, mockAccounts{}, nopAudit{})
	passwords := password.NewController(gw, mockAccounts{}, nil, nil, authz.NewEngine(), nopNotifier{}, nopAudit{})

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(errx.Status(err)).JSON(errx.From(err).ToResponse(""))
		},
	})
	iamapi.NewAuthHandlers(sessions, passwords).RegisterRoutes(app, auth.NewAuthMiddleware(denyVerifier{}, nopResolver{}))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestLoginSuccess(t *testing.T) {
	gw := &mockGateway{authResult: &idp.AuthResult{Tokens: &idp.Tokens{AccessToken: "acc", RefreshToken: "ref"}}}

	status, body := do(t, newApp(gw), "POST", "/auth/login", `{"email":"ana@example.com","password":"pw"}`, nil)
	if status != 200 {
		t.Fatalf("status = %d, want 200 (%v)", status, body)
	}
	if body["access_token"] != "acc" || body["refresh_token"] != "ref" || body["sub_id"] != "sub-1" {
		t.Errorf("tokens = %v", body)
	}
	if body["message"] != "Logged in successfully" {
		t.Errorf("message = %q, want %q", body["message"], "Logged in successfully")
	}
	if _, ok := body["user"].(map[string]any); !ok {
		t.Errorf("user = %v, want object", body["user"])
	}
}

func TestLoginChallengeCarriesNoTokens(t *testing.T) {
	gw := &mockGateway{authResult: &idp.AuthResult{Challenge: &idp.Challenge{Name: "NEW_PASSWORD_REQUIRED", SessionCode: "sess-1"}}}

	status, body := do(t, newApp(gw), "POST", "/auth/login", `{"email":"ana@example.com","password":"tmp"}`, nil)
	if status != 401 {
		t.Errorf("status = %d, want 401", status)
	}
	if want := "User needs to respond to challenge: NEW_PASSWORD_REQUIRED"; body["error"] != want {
		t.Errorf("error = %q, want %q", body["error"], want)
	}
	if body["challenge_name"] != "NEW_PASSWORD_REQUIRED" || body["session_code"] != "sess-1" {
		t.Errorf("challenge = %v", body)
	}
	if _, ok := body["access_token"]; ok {
		t.Error("challenge response must not carry tokens")
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	status, body := do(t, newApp(&mockGateway{}), "POST", "/auth/login", `{"email":"ghost@example.com","password":"pw"}`, nil)
	if status != 401 || body["error"] != "Account does not exist" {
		t.Errorf("got %d %q, want 401 %q", status, body["error"], "Account does not exist")
	}
}

func TestRefreshHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		status  int
		want    string
	}{
		{
			name:    "missing authorization",
			headers: map[string]string{"Refresh-Authorization": "Bearer r", "Sub-Id": "sub-1"},
			status:  401,
			want:    "Missing Authorization Header",
		},
		{
			name:    "missing refresh",
			headers: map[string]string{"Authorization": "Bearer a", "Sub-Id": "sub-1"},
			status:  401,
			want:    "Missing Refresh Authorization Header",
		},
		{
			name:    "missing subject",
			headers: map[string]string{"Authorization": "Bearer a", "Refresh-Authorization": "Bearer r"},
			status:  401,
			want:    "Missing Sub-Id Header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{}
			status, body := do(t, newApp(gw), "POST", "/auth/refresh_token", "", tt.headers)
			if status != tt.status || body["error"] != tt.want {
				t.Errorf("got %d %q, want %d %q", status, body["error"], tt.status, tt.want)
			}
			if gw.refreshCalls != 0 {
				t.Errorf("refreshCalls = %d, want 0", gw.refreshCalls)
			}
		})
	}
}

func TestRefreshSuccess(t *testing.T) {
	gw := &mockGateway{}
	status, body := do(t, newApp(gw), "POST", "/auth/refresh_token", "", map[string]string{
		"Authorization":         "Bearer expired",
		"Refresh-Authorization": "Bearer r1",
		"Sub-Id":                "sub-1",
	})
	if status != 200 {
		t.Fatalf("status = %d, want 200 (%v)", status, body)
	}
	if body["access_token"] != "fresh-r1" || body["message"] != "Token refreshed successfully" {
		t.Errorf("body = %v", body)
	}
}

func TestProtectedRouteNeedsBearer(t *testing.T) {
	status, body := do(t, newApp(&mockGateway{}), "DELETE", "/auth/logout", "", nil)
	if status != 401 || body["error"] != "Missing Authorization Header" {
		t.Errorf("got %d %q, want 401 %q", status, body["error"], "Missing Authorization Header")
	}
}
