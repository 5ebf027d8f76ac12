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

func (s *Service) ListBranches(ctx context.Context, actor *kernel.AuthContext, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.BranchDTO], error) {
	if err := s.canWrite(actor); err != nil {
		return kernel.Paginated[orgchart.BranchDTO]{}, err
	}
	page, err := s.branches.List(ctx, opts)
	if err != nil {
		return kernel.Paginated[orgchart.BranchDTO]{}, err
	}
	return kernel.Map(page, orgchart.Branch.ToDTO), nil
}

func (s *Service) GetBranch(ctx context.Context, actor *kernel.AuthContext, id string) (*orgchart.BranchDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}
	b, err := s.findBranch(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := b.ToDTO()
	return &dto, nil
}

// CreateBranch stores the branch and its area membership in one transaction.
func (s *Service) CreateBranch(ctx context.Context, actor *kernel.AuthContext, req orgchart.BranchRequest) (*orgchart.BranchDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeNameRequired)
	}
	if ptrx.Blank(req.OrganizationID) {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeOrgIDRequired)
	}
	org, err := s.findOrganization(ctx, *req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.branchNameFree(ctx, name, ""); err != nil {
		return nil, err
	}
	areas, err := s.resolveAreas(ctx, ptrx.Value(req.AreaIDs))
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := orgchart.Branch{
		ID:             kernel.NewBranchID(uuid.NewString()),
		Name:           name,
		Address:        ptrx.TrimmedOr(req.Address, ""),
		OrganizationID: &org.ID,
		AreaIDs:        areas,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.branches.Create(ctx, b); err != nil {
			return err
		}
		return s.branches.ReplaceAreas(ctx, b.ID, areas)
	})
	if err != nil {
		return nil, err
	}

	s.logWrite(ctx, actor, "branch", "create", b.ID.String())
	dto := b.ToDTO()
	return &dto, nil
}

// UpdateBranch replaces area membership only when areas_ids is present.
func (s *Service) UpdateBranch(ctx context.Context, actor *kernel.AuthContext, id string, req orgchart.BranchRequest) (*orgchart.BranchDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}
	b, err := s.findBranch(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != b.Name {
		if err := s.branchNameFree(ctx, name, b.ID); err != nil {
			return nil, err
		}
		b.Name = name
	}
	b.Address = ptrx.TrimmedOr(req.Address, b.Address)
	if !ptrx.Blank(req.OrganizationID) {
		org, err := s.findOrganization(ctx, *req.OrganizationID)
		if err != nil {
			return nil, err
		}
		b.OrganizationID = &org.ID
	}
	if req.AreaIDs != nil {
		if b.AreaIDs, err = s.resolveAreas(ctx, *req.AreaIDs); err != nil {
			return nil, err
		}
	}
	b.UpdatedAt = s.now()

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.branches.Update(ctx, *b); err != nil {
			return err
		}
		if req.AreaIDs == nil {
			return nil
		}
		return s.branches.ReplaceAreas(ctx, b.ID, b.AreaIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logWrite(ctx, actor, "branch", "update", b.ID.String())
	dto := b.ToDTO()
	return &dto, nil
}

// DeleteBranch refuses while areas are still attached.
func (s *Service) DeleteBranch(ctx context.Context, actor *kernel.AuthContext, id string) (string, error) {
	if err := s.canWrite(actor); err != nil {
		return "", err
	}
	b, err := s.findBranch(ctx, id)
	if err != nil {
		return "", err
	}
	if len(b.AreaIDs) > 0 {
		return "", orgchart.ErrHasDependents("Branch has areas, delete areas and then try again")
	}
	if err := s.branches.Delete(ctx, b.ID); err != nil {
		return "", err
	}

	s.logWrite(ctx, actor, "branch", "delete", b.ID.String())
	return fmt.Sprintf("Branch %s deleted successfully", b.Name), nil
}

func (s *Service) findBranch(ctx context.Context, id string) (*orgchart.Branch, error) {
	if !validID(id) {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeBranchNotFound)
	}
	return s.branches.FindByID(ctx, kernel.NewBranchID(strings.TrimSpace(id)))
}

func (s *Service) branchNameFree(ctx context.Context, name string, exclude kernel.BranchID) error {
	taken, err := s.branches.NameTaken(ctx, name, exclude)
	if err != nil {
		return err
	}
	if taken {
		return orgchart.ErrNameTaken("Branch")
	}
	return nil
}

// resolveAreas checks every id exists and drops duplicates, keeping order.
func (s *Service) resolveAreas(ctx context.Context, raw []string) ([]kernel.AreaID, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]kernel.AreaID, 0, len(raw))
	for _, r := range raw {
		id := strings.TrimSpace(r)
		if seen[id] {
			continue
		}
		seen[id] = true

		if !validID(id) {
			return nil, orgchart.ErrUnknownArea(id)
		}
		if _, err := s.areas.FindByID(ctx, kernel.NewAreaID(id)); err != nil {
			if orgchart.IsNotFound(err) {
				return nil, orgchart.ErrUnknownArea(id)
			}
			return nil, err
		}
		out = append(out, kernel.NewAreaID(id))
	}
	return out, nil
}
