package orgchartsrv

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/orgchart"
	"github.com/google/uuid"
)

func (s *Service) ListAreas(ctx context.Context, actor *kernel.AuthContext, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.AreaDTO], error) {
	if err := s.canRead(actor); err != nil {
		return kernel.Paginated[orgchart.AreaDTO]{}, err
	}
	page, err := s.areas.List(ctx, opts)
	if err != nil {
		return kernel.Paginated[orgchart.AreaDTO]{}, err
	}
	return kernel.Map(page, orgchart.Area.ToDTO), nil
}

func (s *Service) GetArea(ctx context.Context, actor *kernel.AuthContext, id string) (*orgchart.AreaDTO, error) {
	if err := s.canRead(actor); err != nil {
		return nil, err
	}
	a, err := s.findArea(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := a.ToDTO()
	return &dto, nil
}

func (s *Service) CreateArea(ctx context.Context, actor *kernel.AuthContext, req orgchart.AreaRequest) (*orgchart.AreaDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}

	name, color := strings.TrimSpace(req.Name), strings.TrimSpace(req.Color)
	if name == "" {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeNameRequired)
	}
	if color == "" {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeColorRequired)
	}
	if err := s.areaNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	a := orgchart.Area{
		ID:        kernel.NewAreaID(uuid.NewString()),
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.areas.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logWrite(ctx, actor, "area", "create", a.ID.String())
	dto := a.ToDTO()
	return &dto, nil
}

func (s *Service) UpdateArea(ctx context.Context, actor *kernel.AuthContext, id string, req orgchart.AreaRequest) (*orgchart.AreaDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}
	a, err := s.findArea(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != a.Name {
		if err := s.areaNameFree(ctx, name, a.ID); err != nil {
			return nil, err
		}
		a.Name = name
	}
	if color := strings.TrimSpace(req.Color); color != "" {
		a.Color = color
	}
	a.UpdatedAt = s.now()

	if err := s.areas.Update(ctx, *a); err != nil {
		return nil, err
	}

	s.logWrite(ctx, actor, "area", "update", a.ID.String())
	dto := a.ToDTO()
	return &dto, nil
}

// DeleteArea refuses while the area is attached to a branch or owns roles.
func (s *Service) DeleteArea(ctx context.Context, actor *kernel.AuthContext, id string) (string, error) {
	if err := s.canWrite(actor); err != nil {
		return "", err
	}
	a, err := s.findArea(ctx, id)
	if err != nil {
		return "", err
	}

	hasBranches, err := s.areas.HasBranches(ctx, a.ID)
	if err != nil {
		return "", err
	}
	if hasBranches {
		return "", orgchart.ErrHasDependents("Area has branches, detach from branches and then try again")
	}
	hasRoles, err := s.areas.HasRoles(ctx, a.ID)
	if err != nil {
		return "", err
	}
	if hasRoles {
		return "", orgchart.ErrHasDependents("Area has roles, delete roles and then try again")
	}

	if err := s.areas.Delete(ctx, a.ID); err != nil {
		return "", err
	}

	s.logWrite(ctx, actor, "area", "delete", a.ID.String())
	return fmt.Sprintf("Area %s deleted successfully", a.Name), nil
}

func (s *Service) findArea(ctx context.Context, id string) (*orgchart.Area, error) {
	if !validID(id) {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeAreaNotFound)
	}
	return s.areas.FindByID(ctx, kernel.NewAreaID(strings.TrimSpace(id)))
}

func (s *Service) areaNameFree(ctx context.Context, name string, exclude kernel.AreaID) error {
	taken, err := s.areas.NameTaken(ctx, name, exclude)
	if err != nil {
		return err
	}
	if taken {
		return orgchart.ErrNameTaken("Area")
	}
	return nil
}
