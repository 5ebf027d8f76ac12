package directory

import (
	"context"

	"github.com/Abraxas-365/staffhub/pkg/errx"
)

// Directory looks accounts up across both record kinds.
type Directory struct {
	employees EmployeeRepository
	admins    AdminRepository
}

func NewDirectory(employees EmployeeRepository, admins AdminRepository) *Directory {
	return &Directory{employees: employees, admins: admins}
}

var _ AccountFinder = (*Directory)(nil)

// FindAccountByEmail checks employees first, then admins. Email is matched
// case-insensitively. Returns ErrUserNotFound when neither table has it.
func (d *Directory) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	email = NormalizeEmail(email)

	emp, err := d.employees.FindByEmail(ctx, email)
	if err == nil {
		return &Account{Employee: emp}, nil
	}
	if !errx.HasCode(err, CodeUserNotFound) {
		return nil, err
	}

	adm, err := d.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &Account{Admin: adm}, nil
}

// EmailTaken reports whether any live employee or admin uses email.
func EmailTaken(ctx context.Context, accounts AccountFinder, email string) (bool, error) {
	_, err := accounts.FindAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errx.HasCode(err, CodeUserNotFound):
		return false, nil
	default:
		return false, err
	}
}
