package directorysrv

import (
	"context"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/google/uuid"
)

// UserService lists, archives and deletes provisioned users.
type UserService struct {
	employees directory.EmployeeRepository
	admins    directory.AdminRepository
	uow       directory.UnitOfWork
	gateway   idp.Gateway
	authz     authz.Authorizer
	audit     auth.AuditService
}

func NewUserService(
	employees directory.EmployeeRepository,
	admins directory.AdminRepository,
	uow directory.UnitOfWork,
	gateway idp.Gateway,
	authorizer authz.Authorizer,
	audit auth.AuditService,
) *UserService {
	return &UserService{
		employees: employees,
		admins:    admins,
		uow:       uow,
		gateway:   gateway,
		authz:     authorizer,
		audit:     audit,
	}
}

// Profile returns the caller's own record. userType selects the table and
// defaults to the caller's tier.
func (s *UserService) Profile(ctx context.Context, actor *kernel.AuthContext, userType string) (any, error) {
	if !actor.IsValid() {
		return nil, iam.ErrUnauthenticated()
	}

	tier := actor.Tier
	if strings.TrimSpace(userType) != "" {
		t, ok := kernel.ParseTier(userType)
		if !ok {
			return nil, directory.ErrRegistry.New(directory.CodeInvalidUserType)
		}
		tier = t
	}

	if tier == kernel.TierEmployee {
		emp, err := s.employees.FindByEmail(ctx, actor.Email)
		if err != nil {
			return nil, err
		}
		return emp.ToDTO(), nil
	}

	adm, err := s.admins.FindByEmail(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	if adm.AdminType != tier {
		return nil, directory.ErrUserNotFound()
	}
	return adm.ToDTO(), nil
}

// List returns live users of one tier. Employees are limited to active ones.
func (s *UserService) List(ctx context.Context, actor *kernel.AuthContext, userType string, opts kernel.PaginationOptions) (kernel.Paginated[any], error) {
	if strings.TrimSpace(userType) == "" {
		return kernel.Paginated[any]{}, directory.ErrRegistry.New(directory.CodeUserTypeRequired)
	}
	tier, ok := kernel.ParseTier(userType)
	if !ok {
		return kernel.Paginated[any]{}, directory.ErrRegistry.New(directory.CodeInvalidUserType)
	}
	if err := s.authz.Authorize(actor, kernel.AdminTiers); err != nil {
		return kernel.Paginated[any]{}, err
	}
	if err := s.authz.AuthorizeHierarchical(actor, tier, authz.ActionList); err != nil {
		return kernel.Paginated[any]{}, err
	}

	if tier == kernel.TierEmployee {
		page, err := s.employees.List(ctx, true, opts)
		if err != nil {
			return kernel.Paginated[any]{}, err
		}
		return kernel.Map(page, func(e directory.Employee) any { return e.ToDTO() }), nil
	}

	page, err := s.admins.ListByType(ctx, tier, opts)
	if err != nil {
		return kernel.Paginated[any]{}, err
	}
	return kernel.Map(page, func(a directory.Admin) any { return a.ToDTO() }), nil
}

// ListArchived returns live, inactive employees.
func (s *UserService) ListArchived(ctx context.Context, actor *kernel.AuthContext, opts kernel.PaginationOptions) (kernel.Paginated[directory.EmployeeDTO], error) {
	if err := s.authz.Authorize(actor, kernel.AdminTiers); err != nil {
		return kernel.Paginated[directory.EmployeeDTO]{}, err
	}
	if err := s.authz.AuthorizeHierarchical(actor, kernel.TierEmployee, authz.ActionList); err != nil {
		return kernel.Paginated[directory.EmployeeDTO]{}, err
	}

	page, err := s.employees.List(ctx, false, opts)
	if err != nil {
		return kernel.Paginated[directory.EmployeeDTO]{}, err
	}
	return kernel.Map(page, func(e directory.Employee) directory.EmployeeDTO { return e.ToDTO() }), nil
}

// Get finds an employee or admin by id.
func (s *UserService) Get(ctx context.Context, actor *kernel.AuthContext, id string) (any, error) {
	if err := s.authz.Authorize(actor, kernel.AdminTiers); err != nil {
		return nil, err
	}

	acct, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.Admin != nil {
		if err := s.authz.AuthorizeHierarchical(actor, acct.Admin.AdminType, authz.ActionView); err != nil {
			return nil, err
		}
	}
	return acct.ToDTO(), nil
}

// ToggleArchive archives ("true"/"archive") or restores ("false"/"unarchive") an employee.
func (s *UserService) ToggleArchive(ctx context.Context, actor *kernel.AuthContext, req directory.ToggleArchiveRequest) (string, error) {
	if strings.TrimSpace(req.ID) == "" {
		return "", directory.ErrRegistry.New(directory.CodeUserIDRequired)
	}
	action := strings.ToLower(strings.TrimSpace(req.ActionType))
	if action == "" {
		return "", directory.ErrRegistry.New(directory.CodeActionTypeRequired)
	}

	var archive bool
	switch action {
	case "true", "archive":
		archive = true
	case "false", "unarchive":
		archive = false
	default:
		return "", directory.ErrRegistry.New(directory.CodeInvalidActionType)
	}

	if err := s.authz.Authorize(actor, kernel.AdminTiers); err != nil {
		return "", err
	}
	if err := s.authz.AuthorizeHierarchical(actor, kernel.TierEmployee, authz.ActionArchive); err != nil {
		return "", err
	}

	if _, err := uuid.Parse(req.ID); err != nil {
		return "", directory.ErrUserNotFound()
	}
	emp, err := s.employees.FindByID(ctx, kernel.NewEmployeeID(req.ID))
	if err != nil {
		return "", err
	}

	if archive {
		emp.Archive()
	} else {
		emp.Unarchive()
	}
	if err := s.employees.Update(ctx, *emp); err != nil {
		return "", err
	}

	s.audit.LogArchiveChanged(ctx, actor.Email, emp.ID.String(), archive)
	if archive {
		return "User archived successfully", nil
	}
	return "User unarchived successfully", nil
}

// Delete soft-deletes a user and removes it from the identity provider in one
// transaction. A deleted user is no longer found, so deleting twice is NotFound.
func (s *UserService) Delete(ctx context.Context, actor *kernel.AuthContext, id string) (string, error) {
	if err := s.authz.Authorize(actor, kernel.AdminTiers); err != nil {
		return "", err
	}

	acct, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.authz.AuthorizeHierarchical(actor, acct.Tier(), authz.ActionDelete); err != nil {
		return "", err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var original string
		if acct.Employee != nil {
			original = acct.Employee.Anonymize()
			if err := s.employees.Update(ctx, *acct.Employee); err != nil {
				return err
			}
		} else {
			original = acct.Admin.Anonymize()
			if err := s.admins.Update(ctx, *acct.Admin); err != nil {
				return err
			}
		}
		return s.gateway.DeleteUser(ctx, original)
	})
	if err != nil {
		logx.WithError(err).WithField("user_id", acct.UserID()).Warn("user deletion rolled back")
		return "", err
	}

	s.audit.LogAccountDeleted(ctx, actor.Email, acct.UserID())
	return "User deleted successfully", nil
}

// find looks in employees first, then admins.
func (s *UserService) find(ctx context.Context, id string) (*directory.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, directory.ErrUserNotFound()
	}

	emp, err := s.employees.FindByID(ctx, kernel.NewEmployeeID(id))
	if err == nil {
		return &directory.Account{Employee: emp}, nil
	}
	if !errx.HasCode(err, directory.CodeUserNotFound) {
		return nil, err
	}

	adm, err := s.admins.FindByID(ctx, kernel.NewAdminID(id))
	if err != nil {
		return nil, err
	}
	return &directory.Account{Admin: adm}, nil
}
