package authz

import (
	"fmt"
	"net/http"

	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

var ErrRegistry = errx.NewRegistry("AUTHZ")

var (
	CodeActionDenied    = ErrRegistry.Register("ACTION_DENIED", errx.TypeAuthorization, http.StatusForbidden, "You are not authorized to carry out this action")
	CodeProtectedTarget = ErrRegistry.Register("PROTECTED_TARGET", errx.TypeAuthorization, http.StatusForbidden, "You are not authorized to carry out this action")
	CodeBranchScope     = ErrRegistry.Register("BRANCH_SCOPE", errx.TypeAuthorization, http.StatusForbidden, "You are not authorized to assign users to the specified branch.")
	CodeAreaScope       = ErrRegistry.Register("AREA_SCOPE", errx.TypeAuthorization, http.StatusForbidden, "You are not authorized to assign users to the specified area.")
	CodeUnknownTier     = ErrRegistry.Register("UNKNOWN_TIER", errx.TypeValidation, http.StatusBadRequest, "Invalid user type")
)

// ActionKind names what the actor wants to do with the target tier.
type ActionKind string

const (
	ActionList          ActionKind = "list"
	ActionView          ActionKind = "view"
	ActionArchive       ActionKind = "archive"
	ActionDelete        ActionKind = "delete"
	ActionResetPassword ActionKind = "reset_password"
	ActionRegister      ActionKind = "register"
)

// Placement is where a new user is being put.
type Placement struct {
	BranchID *kernel.BranchID
	AreaID   *kernel.AreaID
}

// Authorizer decides whether an authenticated actor may act.
type Authorizer interface {
	Authorize(actor *kernel.AuthContext, required []kernel.Tier) error
	AuthorizeHierarchical(actor *kernel.AuthContext, target kernel.Tier, action ActionKind) error
	AuthorizePlacement(actor *kernel.AuthContext, target kernel.Tier, p Placement) error
}

// Engine is the stateless Authorizer. The zero value is ready to use.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

var _ Authorizer = (*Engine)(nil)

// Authorize denies unless the actor's tier is one of required.
func (e *Engine) Authorize(actor *kernel.AuthContext, required []kernel.Tier) error {
	if !actor.IsValid() {
		return iam.ErrUnauthenticated()
	}
	if !actor.HasTier(required...) {
		return iam.ErrAccessDenied().WithDetail("tier", actor.Tier.String())
	}
	return nil
}

// AuthorizeHierarchical allows an admin actor to act on strictly junior tiers.
// super_admin is never a valid target.
func (e *Engine) AuthorizeHierarchical(actor *kernel.AuthContext, target kernel.Tier, action ActionKind) error {
	if !actor.IsValid() {
		return iam.ErrUnauthenticated()
	}
	if !target.IsValid() {
		return ErrRegistry.New(CodeUnknownTier).WithDetail("target", target.String())
	}

	if target == kernel.TierSuperAdmin {
		return denial(CodeProtectedTarget, target, action)
	}
	if !actor.Tier.IsAdmin() || !actor.Tier.SeniorTo(target) {
		return denial(CodeActionDenied, target, action)
	}
	return nil
}

func denial(code *errx.ErrorCode, target kernel.Tier, action ActionKind) *errx.Error {
	var err *errx.Error
	if action == ActionResetPassword {
		err = ErrRegistry.NewWithMessage(code, fmt.Sprintf("You are not authorized to reset the password of a %s", target))
	} else {
		err = ErrRegistry.New(code)
	}
	return err.WithDetail("target", target.String()).WithDetail("action", string(action))
}

// AuthorizePlacement confines directors to their own branch and managers to
// their own branch and area. super_admin may place anywhere.
func (e *Engine) AuthorizePlacement(actor *kernel.AuthContext, target kernel.Tier, p Placement) error {
	if !actor.IsValid() {
		return iam.ErrUnauthenticated()
	}

	switch actor.Tier {
	case kernel.TierSuperAdmin:
		return nil
	case kernel.TierDirector:
		if !sameBranch(actor.BranchID, p.BranchID) {
			return ErrRegistry.New(CodeBranchScope)
		}
		return nil
	case kernel.TierManager:
		if !sameBranch(actor.BranchID, p.BranchID) {
			return ErrRegistry.New(CodeBranchScope)
		}
		// every tier a manager can create carries an area
		if !sameArea(actor.AreaID, p.AreaID) {
			return ErrRegistry.New(CodeAreaScope)
		}
		return nil
	default:
		return iam.ErrAccessDenied().WithDetail("tier", actor.Tier.String())
	}
}

func sameBranch(a, b *kernel.BranchID) bool {
	return a != nil && b != nil && *a == *b
}

func sameArea(a, b *kernel.AreaID) bool {
	return a != nil && b != nil && *a == *b
}
