package orgchart

import (
	"context"

	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

// Name lookups are case-sensitive and skip the entity being updated (exclude).

type OrganizationRepository interface {
	Create(ctx context.Context, o Organization) error
	Update(ctx context.Context, o Organization) error
	Delete(ctx context.Context, id kernel.OrganizationID) error
	FindByID(ctx context.Context, id kernel.OrganizationID) (*Organization, error)
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[Organization], error)
	NameTaken(ctx context.Context, name string, exclude kernel.OrganizationID) (bool, error)
	HasBranches(ctx context.Context, id kernel.OrganizationID) (bool, error)
}

// BranchRepository loads AreaIDs with every branch.
type BranchRepository interface {
	Create(ctx context.Context, b Branch) error
	Update(ctx context.Context, b Branch) error
	Delete(ctx context.Context, id kernel.BranchID) error
	FindByID(ctx context.Context, id kernel.BranchID) (*Branch, error)
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[Branch], error)
	NameTaken(ctx context.Context, name string, exclude kernel.BranchID) (bool, error)
	ReplaceAreas(ctx context.Context, id kernel.BranchID, areas []kernel.AreaID) error
}

type AreaRepository interface {
	Create(ctx context.Context, a Area) error
	Update(ctx context.Context, a Area) error
	Delete(ctx context.Context, id kernel.AreaID) error
	FindByID(ctx context.Context, id kernel.AreaID) (*Area, error)
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[Area], error)
	NameTaken(ctx context.Context, name string, exclude kernel.AreaID) (bool, error)
	HasBranches(ctx context.Context, id kernel.AreaID) (bool, error)
	HasRoles(ctx context.Context, id kernel.AreaID) (bool, error)
}

type RoleRepository interface {
	Create(ctx context.Context, r Role) error
	Update(ctx context.Context, r Role) error
	Delete(ctx context.Context, id kernel.JobRoleID) error
	FindByID(ctx context.Context, id kernel.JobRoleID) (*Role, error)
	List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[Role], error)
	NameTakenInArea(ctx context.Context, areaID kernel.AreaID, name string, exclude kernel.JobRoleID) (bool, error)
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
