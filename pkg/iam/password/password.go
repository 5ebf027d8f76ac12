package password

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
)

// ============================================================================
// Requests
// ============================================================================

type SetNewPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
	SessionCode string `json:"session_code"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email            string `json:"email"`
	NewPassword      string `json:"new_password"`
	ConfirmationCode string `json:"confirmation_code"`
}

type AdminResetRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
	UserType    string `json:"user_type"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("PASSWORD")

var (
	CodeSetFieldsRequired    = ErrRegistry.Register("SET_FIELDS_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Email, new password, and session code are required")
	CodeEmailRequired        = ErrRegistry.Register("EMAIL_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Email is required")
	CodeResetFieldsRequired  = ErrRegistry.Register("RESET_FIELDS_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Email, new password, and confirmation code are required")
	CodeUserTypeRequired     = ErrRegistry.Register("USER_TYPE_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "User type is required")
	CodeInvalidUserType      = ErrRegistry.Register("INVALID_USER_TYPE", errx.TypeValidation, http.StatusBadRequest, "The user type you provided is invalid. Please provide a valid user type: 'employee', 'manager', 'director', or 'super_admin'.")
	CodeAdminFieldsRequired  = ErrRegistry.Register("ADMIN_FIELDS_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Email and new password are required")
	CodeChangeFieldsRequired = ErrRegistry.Register("CHANGE_FIELDS_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Old password and new password are required")
	CodeInvalidEmail         = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "The email provided is invalid. Please provide a valid email address.")
)

// Controller runs the password flows. Every flow validates its input before
// the identity provider is called.
type Controller struct {
	gateway   idp.Gateway
	accounts  directory.AccountFinder
	employees directory.EmployeeRepository
	admins    directory.AdminRepository
	authz     authz.Authorizer
	notifier  notifx.AccountNotifier
	audit     auth.AuditService
}

func NewController(
	gateway idp.Gateway,
	accounts directory.AccountFinder,
	employees directory.EmployeeRepository,
	admins directory.AdminRepository,
	authorizer authz.Authorizer,
	notifier notifx.AccountNotifier,
	audit auth.AuditService,
) *Controller {
	return &Controller{
		gateway:   gateway,
		accounts:  accounts,
		employees: employees,
		admins:    admins,
		authz:     authorizer,
		notifier:  notifier,
		audit:     audit,
	}
}

// SetNewPassword answers a NEW_PASSWORD_REQUIRED challenge and marks the
// email verified.
func (c *Controller) SetNewPassword(ctx context.Context, req SetNewPasswordRequest) (string, error) {
	if blank(req.Email, req.NewPassword, req.SessionCode) {
		return "", ErrRegistry.New(CodeSetFieldsRequired)
	}
	email, err := c.knownEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}

	if err := c.gateway.SetNewPassword(ctx, email, req.NewPassword, req.SessionCode); err != nil {
		c.audit.LogPasswordEvent(ctx, email, "set", false)
		return "", err
	}
	if err := c.gateway.VerifyEmail(ctx, email); err != nil {
		return "", err
	}

	c.audit.LogPasswordEvent(ctx, email, "set", true)
	return "Password set successfully", nil
}

func (c *Controller) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (string, error) {
	if blank(req.Email) {
		return "", ErrRegistry.New(CodeEmailRequired)
	}
	email, err := c.knownEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}

	if err := c.gateway.RequestPasswordReset(ctx, email); err != nil {
		c.audit.LogPasswordEvent(ctx, email, "forgot", false)
		return "", err
	}

	c.audit.LogPasswordEvent(ctx, email, "forgot", true)
	return fmt.Sprintf("Password reset code sent successfully to %s", email), nil
}

func (c *Controller) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	if blank(req.Email, req.NewPassword, req.ConfirmationCode) {
		return "", ErrRegistry.New(CodeResetFieldsRequired)
	}
	email, err := c.knownEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}

	if err := c.gateway.ConfirmPasswordReset(ctx, email, req.NewPassword, req.ConfirmationCode); err != nil {
		c.audit.LogPasswordEvent(ctx, email, "reset", false)
		return "", err
	}

	c.audit.LogPasswordEvent(ctx, email, "reset", true)
	return "Password reset successfully", nil
}

// AdminResetPassword sets a permanent password for a strictly junior user.
// The target tier comes from the request and must match the stored record.
func (c *Controller) AdminResetPassword(ctx context.Context, actor *kernel.AuthContext, req AdminResetRequest) (string, error) {
	if blank(req.UserType) {
		return "", ErrRegistry.New(CodeUserTypeRequired)
	}
	target, ok := kernel.ParseTier(req.UserType)
	if !ok {
		return "", ErrRegistry.New(CodeInvalidUserType)
	}
	if blank(req.Email, req.NewPassword) {
		return "", ErrRegistry.New(CodeAdminFieldsRequired)
	}
	if !directory.ValidEmail(strings.TrimSpace(req.Email)) {
		return "", ErrRegistry.New(CodeInvalidEmail)
	}
	email := directory.NormalizeEmail(req.Email)

	if err := c.authz.Authorize(actor, kernel.AdminTiers); err != nil {
		return "", err
	}
	if err := c.authz.AuthorizeHierarchical(actor, target, authz.ActionResetPassword); err != nil {
		logx.WithFields(logx.Fields{"actor": actor.Email, "target_tier": target}).Warn("admin password reset denied")
		return "", err
	}

	if err := c.findOfTier(ctx, email, target); err != nil {
		return "", err
	}

	if err := c.gateway.AdminSetPassword(ctx, email, req.NewPassword); err != nil {
		c.audit.LogPasswordEvent(ctx, email, "admin_reset", false)
		return "", err
	}
	if err := c.gateway.VerifyEmail(ctx, email); err != nil {
		return "", err
	}
	c.audit.LogPasswordEvent(ctx, email, "admin_reset", true)

	if err := c.notifier.PasswordResetByAdmin(ctx, notifx.PasswordResetByAdmin{Email: email, ResetBy: actor.Email}); err != nil {
		logx.WithError(err).WithField("email", email).Warn("password reset notification failed")
	}

	return fmt.Sprintf("Password reset for %s was successful", email), nil
}

// ChangePassword needs only the caller's own access token.
func (c *Controller) ChangePassword(ctx context.Context, actor *kernel.AuthContext, req ChangePasswordRequest) (string, error) {
	if !actor.IsValid() || actor.AccessToken == "" {
		return "", iam.ErrUnauthenticated()
	}
	if blank(req.OldPassword, req.NewPassword) {
		return "", ErrRegistry.New(CodeChangeFieldsRequired)
	}

	if err := c.gateway.ChangePassword(ctx, actor.AccessToken, req.OldPassword, req.NewPassword); err != nil {
		c.audit.LogPasswordEvent(ctx, actor.Email, "change", false)
		return "", err
	}

	c.audit.LogPasswordEvent(ctx, actor.Email, "change", true)
	return "Password changed successfully", nil
}

// knownEmail validates the format and requires a local user.
func (c *Controller) knownEmail(ctx context.Context, raw string) (string, error) {
	if !directory.ValidEmail(strings.TrimSpace(raw)) {
		return "", ErrRegistry.New(CodeInvalidEmail)
	}
	email := directory.NormalizeEmail(raw)

	if _, err := c.accounts.FindAccountByEmail(ctx, email); err != nil {
		return "", err
	}
	return email, nil
}

func (c *Controller) findOfTier(ctx context.Context, email string, tier kernel.Tier) error {
	if tier == kernel.TierEmployee {
		_, err := c.employees.FindByEmail(ctx, email)
		return err
	}

	adm, err := c.admins.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if adm.AdminType != tier {
		return directory.ErrUserNotFound()
	}
	return nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
