package directorysrv_test

import (
	"context"
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/directory/directorysrv"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

const (
	empID  = "0e8f1c52-6a3b-4f0e-9a51-3c1f7f0b2a01"
	mgrID  = "0e8f1c52-6a3b-4f0e-9a51-3c1f7f0b2a02"
	rootID = "0e8f1c52-6a3b-4f0e-9a51-3c1f7f0b2a03"
)

type usersFixture struct {
	employees *memEmployees
	admins    *memAdmins
	gateway   *mockGateway
	svc       *directorysrv.UserService
}

func newUsers() *usersFixture {
	f := &usersFixture{
		employees: &memEmployees{rows: map[kernel.EmployeeID]directory.Employee{
			empID: {ID: empID, FirstName: "Ana", Email: "ana@example.com", Telephone: "555", IsActive: true},
		}},
		admins: &memAdmins{rows: map[kernel.AdminID]directory.Admin{
			mgrID:  {ID: mgrID, FirstName: "Max", Email: "mgr@example.com", AdminType: kernel.TierManager},
			rootID: {ID: rootID, FirstName: "Root", Email: "root@example.com", AdminType: kernel.TierSuperAdmin},
		}},
		gateway: &mockGateway{},
	}
	tx := &memTx{employees: f.employees, admins: f.admins}
	f.svc = directorysrv.NewUserService(f.employees, f.admins, tx, f.gateway, authz.NewEngine(), nopAudit{})
	return f
}

func superAdmin() *kernel.AuthContext {
	return &kernel.AuthContext{Email: "root@example.com", Tier: kernel.TierSuperAdmin}
}

func TestDeleteAnonymizesAndRemovesFromProvider(t *testing.T) {
	f := newUsers()
	ctx := context.Background()

	msg, err := f.svc.Delete(ctx, superAdmin(), empID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if msg != "User deleted successfully" {
		t.Errorf("message = %q", msg)
	}

	got := f.employees.rows[empID]
	if !got.IsDeleted || got.FirstName != "Deleted" || got.LastName != "User" || got.Telephone != "000000" {
		t.Errorf("employee = %+v, want anonymized", got)
	}
	if want := "deleted_user" + empID + "@deleted.com"; got.Email != want {
		t.Errorf("email = %q, want %q", got.Email, want)
	}
	if len(f.gateway.deleteCalls) != 1 || f.gateway.deleteCalls[0] != "ana@example.com" {
		t.Errorf("deleteCalls = %v, want original email", f.gateway.deleteCalls)
	}

	_, err = f.svc.Delete(ctx, superAdmin(), empID)
	if !errx.HasCode(err, directory.CodeUserNotFound) {
		t.Errorf("second Delete() error = %v, want USER_NOT_FOUND", err)
	}
	if len(f.gateway.deleteCalls) != 1 {
		t.Errorf("deleteCalls = %d, want 1", len(f.gateway.deleteCalls))
	}
}

func TestDeleteSuperAdminAlwaysDenied(t *testing.T) {
	f := newUsers()

	_, err := f.svc.Delete(context.Background(), superAdmin(), rootID)
	if !errx.HasCode(err, authz.CodeProtectedTarget) {
		t.Fatalf("Delete() error = %v, want PROTECTED_TARGET", err)
	}
	if errx.Status(err) != 403 {
		t.Errorf("status = %d, want 403", errx.Status(err))
	}
	if f.admins.rows[rootID].IsDeleted {
		t.Error("super_admin was deleted")
	}
}

func TestDeleteProviderFailureRollsBack(t *testing.T) {
	f := newUsers()
	f.gateway.deleteErr = errProvider

	if _, err := f.svc.Delete(context.Background(), superAdmin(), mgrID); err == nil {
		t.Fatal("Delete() error = nil, want provider failure")
	}
	if got := f.admins.rows[mgrID]; got.IsDeleted || got.Email != "mgr@example.com" {
		t.Errorf("admin = %+v, want untouched", got)
	}
}

func TestDeleteSameTierDenied(t *testing.T) {
	f := newUsers()
	actor := &kernel.AuthContext{Email: "other@example.com", Tier: kernel.TierManager}

	_, err := f.svc.Delete(context.Background(), actor, mgrID)
	if !errx.HasCode(err, authz.CodeActionDenied) {
		t.Errorf("Delete() error = %v, want ACTION_DENIED", err)
	}
}

func TestToggleArchive(t *testing.T) {
	f := newUsers()
	ctx := context.Background()
	actor := &kernel.AuthContext{Email: "mgr@example.com", Tier: kernel.TierManager}

	msg, err := f.svc.ToggleArchive(ctx, actor, directory.ToggleArchiveRequest{ID: empID, ActionType: "true"})
	if err != nil || msg != "User archived successfully" {
		t.Fatalf("ToggleArchive(true) = %q, %v", msg, err)
	}
	if f.employees.rows[empID].IsActive {
		t.Error("employee still active")
	}

	archived, err := f.svc.ListArchived(ctx, actor, kernel.PaginationOptions{})
	if err != nil {
		t.Fatalf("ListArchived() error = %v", err)
	}
	if archived.Page.Total != 1 {
		t.Errorf("archived total = %d, want 1", archived.Page.Total)
	}

	msg, err = f.svc.ToggleArchive(ctx, actor, directory.ToggleArchiveRequest{ID: empID, ActionType: "unarchive"})
	if err != nil || msg != "User unarchived successfully" {
		t.Fatalf("ToggleArchive(unarchive) = %q, %v", msg, err)
	}

	_, err = f.svc.ToggleArchive(ctx, actor, directory.ToggleArchiveRequest{ID: empID, ActionType: "maybe"})
	if want := "Invalid action. Use 'true' or 'false' for the 'action_type' parameter."; errx.From(err).Message != want {
		t.Errorf("error = %q, want %q", errx.From(err).Message, want)
	}

	_, err = f.svc.ToggleArchive(ctx, actor, directory.ToggleArchiveRequest{ID: mgrID, ActionType: "true"})
	if !errx.HasCode(err, directory.CodeUserNotFound) {
		t.Errorf("archiving an admin error = %v, want USER_NOT_FOUND", err)
	}
}

func TestListRespectsHierarchy(t *testing.T) {
	f := newUsers()
	ctx := context.Background()
	manager := &kernel.AuthContext{Email: "mgr@example.com", Tier: kernel.TierManager}

	page, err := f.svc.List(ctx, manager, "employee", kernel.PaginationOptions{Page: 0, PageSize: 0})
	if err != nil {
		t.Fatalf("List(employee) error = %v", err)
	}
	if page.Page.Number != 1 || page.Page.Size != kernel.DefaultPageSize || page.Page.Total != 1 {
		t.Errorf("meta = %+v", page.Page)
	}

	if _, err := f.svc.List(ctx, manager, "manager", kernel.PaginationOptions{}); !errx.HasCode(err, authz.CodeActionDenied) {
		t.Errorf("List(manager) by manager error = %v, want ACTION_DENIED", err)
	}

	employee := &kernel.AuthContext{Email: "ana@example.com", Tier: kernel.TierEmployee}
	if _, err := f.svc.List(ctx, employee, "employee", kernel.PaginationOptions{}); errx.Status(err) != 403 {
		t.Errorf("List by employee status = %d, want 403", errx.Status(err))
	}
}

func TestGetAdminNeedsSeniority(t *testing.T) {
	f := newUsers()
	ctx := context.Background()

	director := &kernel.AuthContext{Email: "dir@example.com", Tier: kernel.TierDirector}
	user, err := f.svc.Get(ctx, director, mgrID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if dto, ok := user.(directory.AdminDTO); !ok || !dto.IsManager {
		t.Errorf("user = %+v, want manager DTO", user)
	}

	manager := &kernel.AuthContext{Email: "mgr@example.com", Tier: kernel.TierManager}
	if _, err := f.svc.Get(ctx, manager, mgrID); !errx.HasCode(err, authz.CodeActionDenied) {
		t.Errorf("Get() by same tier error = %v, want ACTION_DENIED", err)
	}
	if _, err := f.svc.Get(ctx, director, "not-a-uuid"); !errx.HasCode(err, directory.CodeUserNotFound) {
		t.Errorf("Get(bad id) error = %v, want USER_NOT_FOUND", err)
	}
}

func TestProfile(t *testing.T) {
	f := newUsers()

	got, err := f.svc.Profile(context.Background(), &kernel.AuthContext{Email: "ana@example.com", Tier: kernel.TierEmployee}, "")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if dto, ok := got.(directory.EmployeeDTO); !ok || dto.Email != "ana@example.com" {
		t.Errorf("profile = %+v", got)
	}
}
