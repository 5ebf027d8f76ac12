package orgchartsrv_test

import (
	"context"
	"errors"

	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/orgchart"
)

type memOrgs struct {
	rows     map[kernel.OrganizationID]orgchart.Organization
	branches *memBranches
}

func (m *memOrgs) Create(_ context.Context, o orgchart.Organization) error {
	m.rows[o.ID] = o
	return nil
}

func (m *memOrgs) Update(_ context.Context, o orgchart.Organization) error {
	m.rows[o.ID] = o
	return nil
}

func (m *memOrgs) Delete(_ context.Context, id kernel.OrganizationID) error {
	delete(m.rows, id)
	return nil
}

func (m *memOrgs) FindByID(_ context.Context, id kernel.OrganizationID) (*orgchart.Organization, error) {
	o, ok := m.rows[id]
	if !ok {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeOrganizationNotFound)
	}
	return &o, nil
}

func (m *memOrgs) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Organization], error) {
	opts = opts.Normalize()
	var items []orgchart.Organization
	for _, o := range m.rows {
		items = append(items, o)
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

func (m *memOrgs) NameTaken(_ context.Context, name string, exclude kernel.OrganizationID) (bool, error) {
	for id, o := range m.rows {
		if o.Name == name && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (m *memOrgs) HasBranches(_ context.Context, id kernel.OrganizationID) (bool, error) {
	for _, b := range m.branches.rows {
		if b.OrganizationID != nil && *b.OrganizationID == id {
			return true, nil
		}
	}
	return false, nil
}

type memBranches struct {
	rows        map[kernel.BranchID]orgchart.Branch
	replaceErr  error
	replaceCall int
}

func (m *memBranches) Create(_ context.Context, b orgchart.Branch) error {
	b.AreaIDs = nil
	m.rows[b.ID] = b
	return nil
}

func (m *memBranches) Update(_ context.Context, b orgchart.Branch) error {
	b.AreaIDs = m.rows[b.ID].AreaIDs
	m.rows[b.ID] = b
	return nil
}

func (m *memBranches) Delete(_ context.Context, id kernel.BranchID) error {
	delete(m.rows, id)
	return nil
}

func (m *memBranches) FindByID(_ context.Context, id kernel.BranchID) (*orgchart.Branch, error) {
	b, ok := m.rows[id]
	if !ok {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeBranchNotFound)
	}
	return &b, nil
}

func (m *memBranches) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Branch], error) {
	opts = opts.Normalize()
	var items []orgchart.Branch
	for _, b := range m.rows {
		items = append(items, b)
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

func (m *memBranches) NameTaken(_ context.Context, name string, exclude kernel.BranchID) (bool, error) {
	for id, b := range m.rows {
		if b.Name == name && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBranches) ReplaceAreas(_ context.Context, id kernel.BranchID, areas []kernel.AreaID) error {
	m.replaceCall++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	b := m.rows[id]
	b.AreaIDs = append([]kernel.AreaID(nil), areas...)
	m.rows[id] = b
	return nil
}

type memAreas struct {
	rows     map[kernel.AreaID]orgchart.Area
	branches *memBranches
	roles    *memRoles
}

func (m *memAreas) Create(_ context.Context, a orgchart.Area) error {
	m.rows[a.ID] = a
	return nil
}

func (m *memAreas) Update(_ context.Context, a orgchart.Area) error {
	m.rows[a.ID] = a
	return nil
}

func (m *memAreas) Delete(_ context.Context, id kernel.AreaID) error {
	delete(m.rows, id)
	return nil
}

func (m *memAreas) FindByID(_ context.Context, id kernel.AreaID) (*orgchart.Area, error) {
	a, ok := m.rows[id]
	if !ok {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeAreaNotFound)
	}
	return &a, nil
}

func (m *memAreas) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Area], error) {
	opts = opts.Normalize()
	var items []orgchart.Area
	for _, a := range m.rows {
		items = append(items, a)
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

func (m *memAreas) NameTaken(_ context.Context, name string, exclude kernel.AreaID) (bool, error) {
	for id, a := range m.rows {
		if a.Name == name && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAreas) HasBranches(_ context.Context, id kernel.AreaID) (bool, error) {
	for _, b := range m.branches.rows {
		for _, a := range b.AreaIDs {
			if a == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memAreas) HasRoles(_ context.Context, id kernel.AreaID) (bool, error) {
	for _, r := range m.roles.rows {
		if r.AreaID == id {
			return true, nil
		}
	}
	return false, nil
}

type memRoles struct {
	rows map[kernel.JobRoleID]orgchart.Role
}

func (m *memRoles) Create(_ context.Context, r orgchart.Role) error {
	m.rows[r.ID] = r
	return nil
}

func (m *memRoles) Update(_ context.Context, r orgchart.Role) error {
	m.rows[r.ID] = r
	return nil
}

func (m *memRoles) Delete(_ context.Context, id kernel.JobRoleID) error {
	delete(m.rows, id)
	return nil
}

func (m *memRoles) FindByID(_ context.Context, id kernel.JobRoleID) (*orgchart.Role, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeRoleNotFound)
	}
	return &r, nil
}

func (m *memRoles) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Role], error) {
	opts = opts.Normalize()
	var items []orgchart.Role
	for _, r := range m.rows {
		items = append(items, r)
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

func (m *memRoles) NameTakenInArea(_ context.Context, areaID kernel.AreaID, name string, exclude kernel.JobRoleID) (bool, error) {
	for id, r := range m.rows {
		if r.AreaID == areaID && r.Name == name && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

// memTx restores the branch table when fn fails.
type memTx struct {
	branches  *memBranches
	rollbacks int
}

func (m *memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := make(map[kernel.BranchID]orgchart.Branch, len(m.branches.rows))
	for k, v := range m.branches.rows {
		snapshot[k] = v
	}
	if err := fn(ctx); err != nil {
		m.branches.rows = snapshot
		m.rollbacks++
		return err
	}
	return nil
}

var errStore = errors.New("connection reset")
