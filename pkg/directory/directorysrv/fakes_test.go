package directorysrv_test

import (
	"context"
	"errors"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/fsx"
	"github.com/Abraxas-365/staffhub/pkg/iam/idp"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/notifx"
)

// memEmployees and memAdmins hide soft-deleted rows like the postgres repos.
type memEmployees struct {
	rows map[kernel.EmployeeID]directory.Employee
}

func (m *memEmployees) Create(_ context.Context, e directory.Employee) error {
	m.rows[e.ID] = e
	return nil
}

func (m *memEmployees) Update(_ context.Context, e directory.Employee) error {
	if _, ok := m.rows[e.ID]; !ok {
		return directory.ErrUserNotFound()
	}
	m.rows[e.ID] = e
	return nil
}

func (m *memEmployees) FindByID(_ context.Context, id kernel.EmployeeID) (*directory.Employee, error) {
	e, ok := m.rows[id]
	if !ok || e.IsDeleted {
		return nil, directory.ErrUserNotFound()
	}
	return &e, nil
}

func (m *memEmployees) FindByEmail(_ context.Context, email string) (*directory.Employee, error) {
	for _, e := range m.rows {
		if !e.IsDeleted && strings.EqualFold(e.Email, email) {
			return &e, nil
		}
	}
	return nil, directory.ErrUserNotFound()
}

func (m *memEmployees) ShiftCodeExists(_ context.Context, code string) (bool, error) {
	for _, e := range m.rows {
		if e.ShiftCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memEmployees) List(_ context.Context, active bool, opts kernel.PaginationOptions) (kernel.Paginated[directory.Employee], error) {
	opts = opts.Normalize()
	var items []directory.Employee
	for _, e := range m.rows {
		if !e.IsDeleted && e.IsActive == active {
			items = append(items, e)
		}
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

type memAdmins struct {
	rows map[kernel.AdminID]directory.Admin
}

func (m *memAdmins) Create(_ context.Context, a directory.Admin) error {
	m.rows[a.ID] = a
	return nil
}

func (m *memAdmins) Update(_ context.Context, a directory.Admin) error {
	if _, ok := m.rows[a.ID]; !ok {
		return directory.ErrUserNotFound()
	}
	m.rows[a.ID] = a
	return nil
}

func (m *memAdmins) FindByID(_ context.Context, id kernel.AdminID) (*directory.Admin, error) {
	a, ok := m.rows[id]
	if !ok || a.IsDeleted {
		return nil, directory.ErrUserNotFound()
	}
	return &a, nil
}

func (m *memAdmins) FindByEmail(_ context.Context, email string) (*directory.Admin, error) {
	for _, a := range m.rows {
		if !a.IsDeleted && strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, directory.ErrUserNotFound()
}

func (m *memAdmins) ListByType(_ context.Context, t kernel.Tier, opts kernel.PaginationOptions) (kernel.Paginated[directory.Admin], error) {
	opts = opts.Normalize()
	var items []directory.Admin
	for _, a := range m.rows {
		if !a.IsDeleted && a.AdminType == t {
			items = append(items, a)
		}
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, len(items)), nil
}

// memTx restores both tables when fn fails.
type memTx struct {
	employees *memEmployees
	admins    *memAdmins
	rollbacks int
}

func (m *memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	emps := make(map[kernel.EmployeeID]directory.Employee, len(m.employees.rows))
	for k, v := range m.employees.rows {
		emps[k] = v
	}
	adms := make(map[kernel.AdminID]directory.Admin, len(m.admins.rows))
	for k, v := range m.admins.rows {
		adms[k] = v
	}

	if err := fn(ctx); err != nil {
		m.employees.rows, m.admins.rows = emps, adms
		m.rollbacks++
		return err
	}
	return nil
}

type memPlacements struct {
	branches map[kernel.BranchID][]kernel.AreaID
}

func (m memPlacements) BranchExists(_ context.Context, id kernel.BranchID) (bool, error) {
	_, ok := m.branches[id]
	return ok, nil
}

func (m memPlacements) AreaExists(_ context.Context, id kernel.AreaID) (bool, error) {
	for _, areas := range m.branches {
		for _, a := range areas {
			if a == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m memPlacements) AreaInBranch(_ context.Context, area kernel.AreaID, branch kernel.BranchID) (bool, error) {
	for _, a := range m.branches[branch] {
		if a == area {
			return true, nil
		}
	}
	return false, nil
}

type mockGateway struct {
	idp.Gateway

	registerCalls []string
	deleteCalls   []string
	registerErr   error
	deleteErr     error
}

func (m *mockGateway) Register(_ context.Context, email, _ string) error {
	m.registerCalls = append(m.registerCalls, email)
	return m.registerErr
}

func (m *mockGateway) DeleteUser(_ context.Context, email string) error {
	m.deleteCalls = append(m.deleteCalls, email)
	return m.deleteErr
}

type memAssets struct {
	objects   map[string][]byte
	removed   []string
	uploadErr error
}

func (m *memAssets) Upload(_ context.Context, _ fsx.BucketKind, data []byte, name, _ string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.objects[name] = data
	return nil
}

func (m *memAssets) Remove(_ context.Context, _ fsx.BucketKind, name string) error {
	delete(m.objects, name)
	m.removed = append(m.removed, name)
	return nil
}

func (m *memAssets) URL(_ fsx.BucketKind, name string) string {
	return "https://users.example.com/" + name
}

type mockNotifier struct {
	created []notifx.AccountCreated
	err     error
}

func (m *mockNotifier) AccountCreated(_ context.Context, d notifx.AccountCreated) error {
	m.created = append(m.created, d)
	return m.err
}

func (m *mockNotifier) PasswordResetByAdmin(context.Context, notifx.PasswordResetByAdmin) error {
	return nil
}

type nopAudit struct{}

func (nopAudit) LogLoginAttempt(context.Context, string, bool, string) {}
func (nopAudit) LogLogout(context.Context, string) {}
func (nopAudit) LogTokenRefresh(context.Context, string, bool) {}
func (nopAudit) LogPasswordEvent(context.Context, string, string, bool) {}
func (nopAudit) LogAccountCreated(context.Context, string, string, kernel.Tier) {}
func (nopAudit) LogAccountDeleted(context.Context, string, string) {}
func (nopAudit) LogArchiveChanged(context.Context, string, string, bool) {}

var errProvider = errors.New("provider down")
