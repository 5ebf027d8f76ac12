package directorycontainer

import (
	"github.com/Abraxas-365/staffhub/pkg/config"
	"github.com/Abraxas-365/staffhub/pkg/dbx"
	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/directory/directoryapi"
	"github.com/Abraxas-365/staffhub/pkg/directory/directoryinfra"
	"github.com/Abraxas-365/staffhub/pkg/directory/directorysrv"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
	"github.com/jmoiron/sqlx"
)

// Store is the persistence side of the directory. It is built before IAM
// because IAM resolves callers through it.
type Store struct {
	Employees  *directoryinfra.PostgresEmployeeRepository
	Admins     *directoryinfra.PostgresAdminRepository
	Placements *directoryinfra.PostgresPlacementLookup
	Accounts   *directory.Directory
}

func NewStore(db *sqlx.DB) *Store {
	employees := directoryinfra.NewPostgresEmployeeRepository(db)
	admins := directoryinfra.NewPostgresAdminRepository(db)
	return &Store{
		Employees:  employees,
		Admins:     admins,
		Placements: directoryinfra.NewPostgresPlacementLookup(db),
		Accounts:   directory.NewDirectory(employees, admins),
	}
}

type Deps struct {
	Store *Store
	Tx    *dbx.TxManager
	Cfg   *config.Config

	// From IAM
	Gateway    idp.Gateway
	Authorizer authz.Authorizer
	Audit      auth.AuditService

	Assets   directorysrv.AssetStore
	Notifier notifx.AccountNotifier
}

type Container struct {
	Provisioning *directorysrv.ProvisioningService
	Users        *directorysrv.UserService
	UserHandlers *directoryapi.UserHandlers
}

func New(deps Deps) *Container {
	logx.Info("👥 Initializing directory module...")

	s := deps.Store
	provisioning := directorysrv.NewProvisioningService(
		s.Employees,
		s.Admins,
		s.Accounts,
		s.Placements,
		deps.Tx,
		deps.Gateway,
		deps.Assets,
		directorysrv.EncodeQR,
		deps.Authorizer,
		deps.Notifier,
		deps.Audit,
		directorysrv.ProvisioningConfig{
			QRPayloadSuffix:    deps.Cfg.Provisioning.QRPayloadSuffix,
			TempPasswordLength: deps.Cfg.Provisioning.TempPasswordLength,
		},
	)
	users := directorysrv.NewUserService(s.Employees, s.Admins, deps.Tx, deps.Gateway, deps.Authorizer, deps.Audit)

	return &Container{
		Provisioning: provisioning,
		Users:        users,
		UserHandlers: directoryapi.NewUserHandlers(provisioning, users, deps.Cfg.Provisioning.DefaultPerPage),
	}
}
