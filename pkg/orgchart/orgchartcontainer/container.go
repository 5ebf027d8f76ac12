package orgchartcontainer

import (
	"github.com/Abraxas-365/staffhub/pkg/config"
	"github.com/Abraxas-365/staffhub/pkg/dbx"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/Abraxas-365/staffhub/pkg/orgchart/orgchartapi"
	"github.com/Abraxas-365/staffhub/pkg/orgchart/orgchartinfra"
	"github.com/Abraxas-365/staffhub/pkg/orgchart/orgchartsrv"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	DB         *sqlx.DB
	Tx         *dbx.TxManager
	Cfg        *config.Config
	Authorizer authz.Authorizer
}

type Container struct {
	Service  *orgchartsrv.Service
	Handlers *orgchartapi.OrgChartHandlers
}

func New(deps Deps) *Container {
	logx.Info("🏢 Initializing orgchart module...")

	svc := orgchartsrv.NewService(
		orgchartinfra.NewPostgresOrganizationRepository(deps.DB),
		orgchartinfra.NewPostgresBranchRepository(deps.DB),
		orgchartinfra.NewPostgresAreaRepository(deps.DB),
		orgchartinfra.NewPostgresRoleRepository(deps.DB),
		deps.Tx,
		deps.Authorizer,
	)

	return &Container{
		Service:  svc,
		Handlers: orgchartapi.NewOrgChartHandlers(svc, deps.Cfg.Provisioning.DefaultPerPage),
	}
}
