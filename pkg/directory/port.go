package directory

import (
	"context"

	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

// EmployeeRepository reads never return soft-deleted employees.
type EmployeeRepository interface {
	Create(ctx context.Context, e Employee) error
	Update(ctx context.Context, e Employee) error
	FindByID(ctx context.Context, id kernel.EmployeeID) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	ShiftCodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, active bool, opts kernel.PaginationOptions) (kernel.Paginated[Employee], error)
}

// AdminRepository reads never return soft-deleted admins.
type AdminRepository interface {
	Create(ctx context.Context, a Admin) error
	Update(ctx context.Context, a Admin) error
	FindByID(ctx context.Context, id kernel.AdminID) (*Admin, error)
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	ListByType(ctx context.Context, adminType kernel.Tier, opts kernel.PaginationOptions) (kernel.Paginated[Admin], error)
}

// PlacementLookup answers org chart questions asked while placing a user.
type PlacementLookup interface {
	BranchExists(ctx context.Context, id kernel.BranchID) (bool, error)
	AreaExists(ctx context.Context, id kernel.AreaID) (bool, error)
	AreaInBranch(ctx context.Context, areaID kernel.AreaID, branchID kernel.BranchID) (bool, error)
}

// UnitOfWork runs fn in one transaction; repositories called with the
// derived context join it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccountFinder resolves an email to the employee or admin behind it.
type AccountFinder interface {
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)
}
