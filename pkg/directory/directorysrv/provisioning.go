package directorysrv

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/fsx"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
	"github.com/google/uuid"
)

const maxShiftCodeAttempts = 10

type ProvisioningConfig struct {
	QRPayloadSuffix    string
	TempPasswordLength int
}

// ProvisioningService creates employees and admins locally and at the
// identity provider as one unit.
type ProvisioningService struct {
	employees  directory.EmployeeRepository
	admins     directory.AdminRepository
	accounts   directory.AccountFinder
	placements directory.PlacementLookup
	uow        directory.UnitOfWork
	gateway    idp.Gateway
	assets     AssetStore
	encodeQR   QREncoder
	authz      authz.Authorizer
	notifier   notifx.AccountNotifier
	audit      auth.AuditService
	cfg        ProvisioningConfig
}

func NewProvisioningService(
	employees directory.EmployeeRepository,
	admins directory.AdminRepository,
	accounts directory.AccountFinder,
	placements directory.PlacementLookup,
	uow directory.UnitOfWork,
	gateway idp.Gateway,
	assets AssetStore,
	encodeQR QREncoder,
	authorizer authz.Authorizer,
	notifier notifx.AccountNotifier,
	audit auth.AuditService,
	cfg ProvisioningConfig,
) *ProvisioningService {
	if encodeQR == nil {
		encodeQR = EncodeQR
	}
	return &ProvisioningService{
		employees:  employees,
		admins:     admins,
		accounts:   accounts,
		placements: placements,
		uow:        uow,
		gateway:    gateway,
		assets:     assets,
		encodeQR:   encodeQR,
		authz:      authorizer,
		notifier:   notifier,
		audit:      audit,
		cfg:        cfg,
	}
}

// registration is a validated RegisterRequest.
type registration struct {
	tier              kernel.Tier
	email             string
	placement         authz.Placement
	dateOfBirth       *time.Time
	contractStartDate *time.Time
	contractEndDate   *time.Time
}

// Register validates everything before the first write, then inserts the
// record, uploads the employee QR code and registers the email with the
// identity provider inside one transaction.
func (s *ProvisioningService) Register(ctx context.Context, actor *kernel.AuthContext, req directory.RegisterRequest) (*directory.RegisterResponse, error) {
	reg, err := s.validate(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	tempPassword, err := TempPassword(s.cfg.TempPasswordLength)
	if err != nil {
		return nil, errx.Wrap(err, "failed to generate temporary password", errx.TypeInternal)
	}

	var (
		user   any
		notice notifx.AccountCreated
	)
	if reg.tier == kernel.TierEmployee {
		emp, err := s.createEmployee(ctx, req, reg, tempPassword)
		if err != nil {
			return nil, err
		}
		user = emp.ToDTO()
		notice = notifx.AccountCreated{Email: emp.Email, FirstName: emp.FirstName, UserType: reg.tier.String(), ShiftCode: emp.ShiftCode, QRCodeURL: emp.QRCodeURL}
	} else {
		adm, err := s.createAdmin(ctx, req, reg, tempPassword)
		if err != nil {
			return nil, err
		}
		user = adm.ToDTO()
		notice = notifx.AccountCreated{Email: adm.Email, FirstName: adm.FirstName, UserType: reg.tier.String()}
	}

	s.audit.LogAccountCreated(ctx, actor.Email, reg.email, reg.tier)
	if err := s.notifier.AccountCreated(ctx, notice); err != nil {
		logx.WithError(err).WithField("email", reg.email).Warn("account created notification failed")
	}

	return &directory.RegisterResponse{User: user, Message: "User created successfully"}, nil
}

func (s *ProvisioningService) validate(ctx context.Context, actor *kernel.AuthContext, req directory.RegisterRequest) (*registration, error) {
	if strings.TrimSpace(req.UserType) == "" {
		return nil, directory.ErrRegistry.New(directory.CodeUserTypeRequired)
	}
	tier, ok := kernel.ParseTier(req.UserType)
	if !ok || tier == kernel.TierSuperAdmin {
		return nil, directory.ErrRegistry.New(directory.CodeInvalidUserType)
	}

	if err := s.authz.Authorize(actor, kernel.AdminTiers); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeHierarchical(actor, tier, authz.ActionRegister); err != nil {
		return nil, err
	}

	if missing := missingFields(tier, req); len(missing) > 0 {
		return nil, directory.ErrMissingFields(missing)
	}
	if !directory.ValidEmail(strings.TrimSpace(req.Email)) {
		return nil, directory.ErrRegistry.New(directory.CodeInvalidEmail)
	}

	reg := &registration{tier: tier, email: directory.NormalizeEmail(req.Email)}
	dates := []struct {
		field string
		value string
		dst   **time.Time
	}{
		{"date_of_birth", req.DateOfBirth, &reg.dateOfBirth},
		{"contract_start_date", req.ContractStartDate, &reg.contractStartDate},
		{"contract_end_date", req.ContractEndDate, &reg.contractEndDate},
	}
	for _, d := range dates {
		v := strings.TrimSpace(d.value)
		if v == "" {
			continue
		}
		t, err := directory.ParseDate(v)
		if err != nil {
			return nil, directory.ErrInvalidDate(d.field)
		}
		*d.dst = &t
	}

	reg.placement = placementFor(tier, req)
	if err := s.authz.AuthorizePlacement(actor, tier, reg.placement); err != nil {
		return nil, err
	}
	if err := s.checkPlacement(ctx, reg.placement); err != nil {
		return nil, err
	}

	taken, err := directory.EmailTaken(ctx, s.accounts, reg.email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, directory.ErrEmailTaken()
	}

	return reg, nil
}

// missingFields lists the absent required fields in a stable order.
func missingFields(tier kernel.Tier, req directory.RegisterRequest) []string {
	type field struct {
		name  string
		value string
	}
	fields := []field{
		{"first_name", req.FirstName},
		{"email", req.Email},
		{"telephone", req.Telephone},
	}
	switch tier {
	case kernel.TierEmployee:
		fields = append(fields,
			field{"contract_start_date", req.ContractStartDate},
			field{"contract_end_date", req.ContractEndDate},
			field{"branch_id", req.BranchID},
			field{"area_id", req.AreaID},
		)
	case kernel.TierManager:
		fields = append(fields, field{"branch_id", req.BranchID}, field{"area_id", req.AreaID})
	case kernel.TierDirector:
		fields = append(fields, field{"branch_id", req.BranchID})
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// placementFor keeps only the references the tier carries; directors have no area.
func placementFor(tier kernel.Tier, req directory.RegisterRequest) authz.Placement {
	var p authz.Placement
	if v := strings.TrimSpace(req.BranchID); v != "" {
		id := kernel.NewBranchID(v)
		p.BranchID = &id
	}
	if v := strings.TrimSpace(req.AreaID); v != "" && tier != kernel.TierDirector {
		id := kernel.NewAreaID(v)
		p.AreaID = &id
	}
	return p
}

func (s *ProvisioningService) checkPlacement(ctx context.Context, p authz.Placement) error {
	if p.BranchID != nil {
		if _, err := uuid.Parse(p.BranchID.String()); err != nil {
			return directory.ErrRegistry.New(directory.CodeBranchNotFound)
		}
		ok, err := s.placements.BranchExists(ctx, *p.BranchID)
		if err != nil {
			return err
		}
		if !ok {
			return directory.ErrRegistry.New(directory.CodeBranchNotFound)
		}
	}
	if p.AreaID != nil {
		if _, err := uuid.Parse(p.AreaID.String()); err != nil {
			return directory.ErrRegistry.New(directory.CodeAreaNotFound)
		}
		ok, err := s.placements.AreaExists(ctx, *p.AreaID)
		if err != nil {
			return err
		}
		if !ok {
			return directory.ErrRegistry.New(directory.CodeAreaNotFound)
		}
	}
	if p.BranchID != nil && p.AreaID != nil {
		ok, err := s.placements.AreaInBranch(ctx, *p.AreaID, *p.BranchID)
		if err != nil {
			return err
		}
		if !ok {
			return directory.ErrRegistry.New(directory.CodeAreaNotInBranch)
		}
	}
	return nil
}

func (s *ProvisioningService) createEmployee(ctx context.Context, req directory.RegisterRequest, reg *registration, tempPassword string) (*directory.Employee, error) {
	now := time.Now().UTC()
	emp := directory.Employee{
		ID:                kernel.NewEmployeeID(uuid.NewString()),
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Email:             reg.email,
		Telephone:         strings.TrimSpace(req.Telephone),
		IsActive:          true,
		BranchID:          reg.placement.BranchID,
		AreaID:            reg.placement.AreaID,
		ContractCode:      strings.TrimSpace(req.ContractCode),
		TaxCode:           strings.TrimSpace(req.TaxCode),
		DateOfBirth:       reg.dateOfBirth,
		ContractStartDate: reg.contractStartDate,
		ContractEndDate:   reg.contractEndDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	objectName := emp.ID.String() + ".png"

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		code, err := s.uniqueShiftCode(ctx)
		if err != nil {
			return err
		}
		emp.ShiftCode = code
		emp.QRCodeURL = s.assets.URL(fsx.BucketUser, objectName)

		if err := s.employees.Create(ctx, emp); err != nil {
			return err
		}

		png, err := s.encodeQR(emp.ShiftCode + s.cfg.QRPayloadSuffix)
		if err != nil {
			return errx.Wrap(err, "failed to encode QR code", errx.TypeInternal)
		}
		if err := s.assets.Upload(ctx, fsx.BucketUser, png, objectName, "image/png"); err != nil {
			return err
		}

		if err := s.gateway.Register(ctx, emp.Email, tempPassword); err != nil {
			if rmErr := s.assets.Remove(ctx, fsx.BucketUser, objectName); rmErr != nil {
				logx.WithError(rmErr).WithField("object", objectName).Error("failed to remove QR code after registration failure")
			}
			return err
		}
		return nil
	})
	if err != nil {
		logx.WithError(err).WithField("email", emp.Email).Warn("employee provisioning rolled back")
		return nil, err
	}
	return &emp, nil
}

func (s *ProvisioningService) createAdmin(ctx context.Context, req directory.RegisterRequest, reg *registration, tempPassword string) (*directory.Admin, error) {
	now := time.Now().UTC()
	adm := directory.Admin{
		ID:        kernel.NewAdminID(uuid.NewString()),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     reg.email,
		Telephone: strings.TrimSpace(req.Telephone),
		AdminType: reg.tier,
		BranchID:  reg.placement.BranchID,
		AreaID:    reg.placement.AreaID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.admins.Create(ctx, adm); err != nil {
			return err
		}
		return s.gateway.Register(ctx, adm.Email, tempPassword)
	})
	if err != nil {
		logx.WithError(err).WithField("email", adm.Email).Warn("admin provisioning rolled back")
		return nil, err
	}
	return &adm, nil
}

func (s *ProvisioningService) uniqueShiftCode(ctx context.Context) (string, error) {
	for i := 0; i < maxShiftCodeAttempts; i++ {
		code := newShiftCode()
		exists, err := s.employees.ShiftCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", directory.ErrRegistry.New(directory.CodeShiftCodeExhausted).
		WithDetail("attempts", maxShiftCodeAttempts)
}
