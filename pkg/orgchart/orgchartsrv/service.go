package orgchartsrv

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/Abraxas-365/staffhub/pkg/orgchart"
	"github.com/google/uuid"
)

var superAdminOnly = []kernel.Tier{kernel.TierSuperAdmin}

// Service manages the organization, branch, area and job role catalog.
// Any admin may read; only a super_admin may write. Branches are
// super_admin only for reads too.
type Service struct {
	orgs     orgchart.OrganizationRepository
	branches orgchart.BranchRepository
	areas    orgchart.AreaRepository
	roles    orgchart.RoleRepository
	uow      orgchart.UnitOfWork
	authz    authz.Authorizer
	now      func() time.Time
}

func NewService(
	orgs orgchart.OrganizationRepository,
	branches orgchart.BranchRepository,
	areas orgchart.AreaRepository,
	roles orgchart.RoleRepository,
	uow orgchart.UnitOfWork,
	authorizer authz.Authorizer,
) *Service {
	return &Service{
		orgs:     orgs,
		branches: branches,
		areas:    areas,
		roles:    roles,
		uow:      uow,
		authz:    authorizer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) canRead(actor *kernel.AuthContext) error {
	return s.authz.Authorize(actor, kernel.AdminTiers)
}

func (s *Service) canWrite(actor *kernel.AuthContext) error {
	return s.authz.Authorize(actor, superAdminOnly)
}

func (s *Service) logWrite(ctx context.Context, actor *kernel.AuthContext, entity, action, id string) {
	logx.WithFields(logx.Fields{
		"actor":      actor.Email,
		"entity":     entity,
		"action":     action,
		"id":         id,
		"request_id": kernel.RequestMetaFromContext(ctx).RequestID,
	}).Info("orgchart change")
}

// validID reports whether raw can be a stored key. Anything else cannot
// exist and is reported as not found by the callers.
func validID(raw string) bool {
	_, err := uuid.Parse(strings.TrimSpace(raw))
	return err == nil
}
