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

func (s *Service) ListOrganizations(ctx context.Context, actor *kernel.AuthContext, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.OrganizationDTO], error) {
	if err := s.canRead(actor); err != nil {
		return kernel.Paginated[orgchart.OrganizationDTO]{}, err
	}
	page, err := s.orgs.List(ctx, opts)
	if err != nil {
		return kernel.Paginated[orgchart.OrganizationDTO]{}, err
	}
	return kernel.Map(page, orgchart.Organization.ToDTO), nil
}

func (s *Service) GetOrganization(ctx context.Context, actor *kernel.AuthContext, id string) (*orgchart.OrganizationDTO, error) {
	if err := s.canRead(actor); err != nil {
		return nil, err
	}
	o, err := s.findOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := o.ToDTO()
	return &dto, nil
}

func (s *Service) CreateOrganization(ctx context.Context, actor *kernel.AuthContext, req orgchart.OrganizationRequest) (*orgchart.OrganizationDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeNameRequired)
	}
	if err := s.organizationNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	o := orgchart.Organization{
		ID:        kernel.NewOrganizationID(uuid.NewString()),
		Name:      name,
		Address:   ptrx.TrimmedOr(req.Address, ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orgs.Create(ctx, o); err != nil {
		return nil, err
	}

	s.logWrite(ctx, actor, "organization", "create", o.ID.String())
	dto := o.ToDTO()
	return &dto, nil
}

// UpdateOrganization keeps fields the request leaves out.
func (s *Service) UpdateOrganization(ctx context.Context, actor *kernel.AuthContext, id string, req orgchart.OrganizationRequest) (*orgchart.OrganizationDTO, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}
	o, err := s.findOrganization(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != o.Name {
		if err := s.organizationNameFree(ctx, name, o.ID); err != nil {
			return nil, err
		}
		o.Name = name
	}
	o.Address = ptrx.TrimmedOr(req.Address, o.Address)
	o.UpdatedAt = s.now()

	if err := s.orgs.Update(ctx, *o); err != nil {
		return nil, err
	}

	s.logWrite(ctx, actor, "organization", "update", o.ID.String())
	dto := o.ToDTO()
	return &dto, nil
}

// DeleteOrganization refuses while any branch still points at it.
func (s *Service) DeleteOrganization(ctx context.Context, actor *kernel.AuthContext, id string) (string, error) {
	if err := s.canWrite(actor); err != nil {
		return "", err
	}
	o, err := s.findOrganization(ctx, id)
	if err != nil {
		return "", err
	}

	hasBranches, err := s.orgs.HasBranches(ctx, o.ID)
	if err != nil {
		return "", err
	}
	if hasBranches {
		return "", orgchart.ErrHasDependents("Organization has branches, delete branches and then try again")
	}
	if err := s.orgs.Delete(ctx, o.ID); err != nil {
		return "", err
	}

	s.logWrite(ctx, actor, "organization", "delete", o.ID.String())
	return fmt.Sprintf("Organization %s deleted successfully", o.Name), nil
}

func (s *Service) findOrganization(ctx context.Context, id string) (*orgchart.Organization, error) {
	if !validID(id) {
		return nil, orgchart.ErrRegistry.New(orgchart.CodeOrganizationNotFound)
	}
	return s.orgs.FindByID(ctx, kernel.NewOrganizationID(strings.TrimSpace(id)))
}

func (s *Service) organizationNameFree(ctx context.Context, name string, exclude kernel.OrganizationID) error {
	taken, err := s.orgs.NameTaken(ctx, name, exclude)
	if err != nil {
		return err
	}
	if taken {
		return orgchart.ErrNameTaken("Organization")
	}
	return nil
}
