package iamapi

import (
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/password"
	"github.com/Abraxas-365/staffhub/pkg/iam/session"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

const (
	refreshHeader = "Refresh-Authorization"
	subjectHeader = "Sub-Id"
)

// ============================================================================
// Requests / Responses
// ============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SubID        string `json:"sub_id"`
	User         any    `json:"user"`
	Message      string `json:"message"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// ChallengeResponse is rendered with 401 and never carries tokens.
type ChallengeResponse struct {
	Error         string `json:"error"`
	ChallengeName string `json:"challenge_name"`
	SessionCode   string `json:"session_code"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Handlers
// ============================================================================

// AuthHandlers exposes the session and password flows over HTTP.
type AuthHandlers struct {
	sessions  *session.Manager
	passwords *password.Controller
}

func NewAuthHandlers(sessions *session.Manager, passwords *password.Controller) *AuthHandlers {
	return &AuthHandlers{sessions: sessions, passwords: passwords}
}

// RegisterRoutes mounts the /auth routes. Routes behind mw require a bearer token.
func (h *AuthHandlers) RegisterRoutes(app fiber.Router, mw *auth.TokenMiddleware) {
	g := app.Group("/auth")

	g.Post("/login", h.Login)
	g.Post("/refresh_token", h.Refresh)
	g.Delete("/logout", mw.Authenticate(), h.Logout)

	g.Post("/password/set", h.SetNewPassword)
	g.Post("/password/forgot", h.ForgotPassword)
	g.Post("/password/reset", h.ResetPassword)
	g.Post("/password/change", mw.Authenticate(), h.ChangePassword)
	g.Post("/admin/password/reset", mw.Authenticate(), mw.RequireAdmin(), h.AdminResetPassword)
}

func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body")
	}

	out, err := h.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if out.State == session.StateChallengeRequired {
		return challenge(c, out)
	}

	return c.JSON(LoginResponse{
		AccessToken:  out.Tokens.AccessToken,
		RefreshToken: out.Tokens.RefreshToken,
		SubID:        out.SubjectID,
		User:         out.Account.ToDTO(),
		Message:      "Logged in successfully",
	})
}

// Refresh only checks that the expired access token is present; the
// refresh token and subject id are what the provider validates.
func (h *AuthHandlers) Refresh(c *fiber.Ctx) error {
	if _, err := auth.BearerToken(c); err != nil {
		return err
	}

	out, err := h.sessions.Refresh(c.UserContext(), schemeValue(c.Get(refreshHeader)), strings.TrimSpace(c.Get(subjectHeader)))
	if err != nil {
		return err
	}
	if out.State == session.StateChallengeRequired {
		return challenge(c, out)
	}

	return c.JSON(RefreshResponse{
		AccessToken: out.Tokens.AccessToken,
		Message:     "Token refreshed successfully",
	})
}

func (h *AuthHandlers) Logout(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Logout(c.UserContext(), ac.AccessToken, ac.Email); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandlers) SetNewPassword(c *fiber.Ctx) error {
	var req password.SetNewPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body")
	}
	return respond(c, func() (string, error) {
		return h.passwords.SetNewPassword(c.UserContext(), req)
	})
}

func (h *AuthHandlers) ForgotPassword(c *fiber.Ctx) error {
	var req password.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body")
	}
	return respond(c, func() (string, error) {
		return h.passwords.ForgotPassword(c.UserContext(), req)
	})
}

func (h *AuthHandlers) ResetPassword(c *fiber.Ctx) error {
	var req password.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body")
	}
	return respond(c, func() (string, error) {
		return h.passwords.ResetPassword(c.UserContext(), req)
	})
}

func (h *AuthHandlers) ChangePassword(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}
	var req password.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body")
	}
	return respond(c, func() (string, error) {
		return h.passwords.ChangePassword(c.UserContext(), ac, req)
	})
}

func (h *AuthHandlers) AdminResetPassword(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}
	var req password.AdminResetRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body")
	}
	return respond(c, func() (string, error) {
		return h.passwords.AdminResetPassword(c.UserContext(), ac, req)
	})
}

// ============================================================================
// Helpers
// ============================================================================

func challenge(c *fiber.Ctx, out *session.Outcome) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ChallengeResponse{
		Error:         out.ChallengeMessage(),
		ChallengeName: out.Challenge.Name,
		SessionCode:   out.Challenge.SessionCode,
	})
}

func respond(c *fiber.Ctx, fn func() (string, error)) error {
	msg, err := fn()
	if err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: msg})
}

func principal(c *fiber.Ctx) (*kernel.AuthContext, error) {
	ac, ok := auth.GetAuthContext(c)
	if !ok {
		return nil, iam.ErrUnauthenticated()
	}
	return ac, nil
}

// schemeValue returns the token part of "<scheme> <token>".
func schemeValue(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
