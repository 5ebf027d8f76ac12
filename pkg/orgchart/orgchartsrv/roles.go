package orgchartsrv

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/orgchart"
	"github.com/Abraxas-365/staffhub/pkg/ptrx"
	"github.com/google/uuid"
)

func (s *Service) ListRoles(ctx context.Context, actor *kernel.AuthContext, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.RoleDTO], error) {
	if err := s.canRead(actor); err != nil {
		return kernel.Paginated[orgchart.RoleDTO]{}, err
	}
	page, err := s.roles.List(ctx, opts)
	if err != nil {
		return kernel.Paginated[orgchart.RoleDTO]{}, err
	}
	return kernel.Map(page, orgchart.Role.ToDTO), nil
}

func (s *Service) GetRole(ctx context.Context, actor *kernel.AuthContext, id string) (*orgchart.RoleDTO, error) {
	if err := s.canRead(actor); err != nil {
		return nil, err
	}
	r, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := r.ToDTO()
	return &dto, nil
}

func (s *Service) CreateRole(ctx context.Context, actor *kernel.AuthContext, req orgchart.RoleRequest) (*orgchart.RoleDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}

	name, symbol := strings.TrimSpace(req.Name), strings.TrimSpace(req.Symbol)
	switch {
	case name == "":
		return nil, orgchart.ErrRegistry.New(orgchart.CodeNameRequired)
	case symbol == "":
		return nil, orgchart.ErrRegistry.New(orgchart.CodeSymbolRequired)
	case ptrx.Blank(req.AreaID):
		return nil, orgchart.ErrRegistry.New(orgchart.CodeAreaIDRequired)
	}

	area, err := s.findArea(ctx, *req.AreaID)
	if err != nil {
		return nil, err
	}
	if err := s.roleNameFree(ctx, area.ID, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	r := orgchart.Role{
		ID:        kernel.NewJobRoleID(uuid.NewString()),
		Name:      name,
		Symbol:    symbol,
		AreaID:    area.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.roles.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logWrite(ctx, actor, "role", "create", r.ID.String())
	dto := r.ToDTO()
	return &dto, nil
}

// UpdateRole rechecks name uniqueness whenever the name or the area moves.
func (s *Service) UpdateRole(ctx context.Context, actor *kernel.AuthContext, id string, req orgchart.RoleRequest) (*orgchart.RoleDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}
	r, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *r
	if name := strings.TrimSpace(req.Name); name != "" {
		r.Name = name
	}
	if symbol := strings.TrimSpace(req.Symbol); symbol != "" {
		r.Symbol = symbol
	}
	if !ptrx.Blank(req.AreaID) {
		area, err := s.findArea(ctx, *req.AreaID)
		if err != nil {
			return nil, err
		}
		r.AreaID = area.ID
	}
	if r.Name != before.Name || r.AreaID != before.AreaID {
		if err := s.roleNameFree(ctx, r.AreaID, r.Name, r.ID); err != nil {
			return nil, err
		}
	}
	r.UpdatedAt = s.now()

	if err := s.roles.Update(ctx, *r); err != nil {
		return nil, err
	}

	s.logWrite(ctx, actor, "role", "update", r.ID.String())
	dto := r.ToDTO()
	return &dto, nil
}

func (s *Service) DeleteRole(ctx context.Context, actor *kernel.AuthContext, id string) (string, error) {
	if err := s.canWrite(actor); err != nil {
		return "", err
	}
	r, err := s.findRole(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.roles.Delete(ctx, r.ID); err != nil {
		return "", err
	}

	s.logWrite(ctx, actor, "role", "delete", r.ID.String())
	return fmt.Sprintf("Role %s deleted successfully", r.Name), nil
}

func (s *Service) findRole(ctx context.Context, id string) (*orgchart.Role, error) {
	if !validID(id) {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeRoleNotFound)
	}
	return s.roles.FindByID(ctx, kernel.NewJobRoleID(strings.TrimSpace(id)))
}

func (s *Service) roleNameFree(ctx context.Context, areaID kernel.AreaID, name string, exclude kernel.JobRoleID) error {
	taken, err := s.roles.NameTakenInArea(ctx, areaID, name, exclude)
	if err != nil {
		return err
	}
	if taken {
		return orgchart.ErrNameTaken("Role")
	}
	return nil
}
