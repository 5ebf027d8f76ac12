package directoryinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/dbx"
	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

// Unique constraints from migrations/001_init.sql.
const (
	employeesEmailKey     = "employees_email_key"
	employeesShiftCodeKey = "employees_shift_code_key"
	adminsEmailKey        = "admins_email_key"
)

// writeError maps a failed INSERT or UPDATE to the domain error its
// constraint stands for. Constraint names stay in the cause.
func writeError(err error, op, idKey, id string) *errx.Error {
	if dbx.IsUniqueViolation(err) {
		switch dbx.Constraint(err) {
		case employeesEmailKey, adminsEmailKey:
			return directory.ErrEmailTaken().WithCause(err)
		case employeesShiftCodeKey:
			return directory.ErrShiftCodeTaken().WithCause(err)
		}
	}
	return dbx.Internal(err, op).WithDetail(idKey, id)
}

// ============================================================================
// Employees
// ============================================================================

// PostgresEmployeeRepository stores employees. Writes join the transaction
// carried by ctx, if any.
type PostgresEmployeeRepository struct {
	db *sqlx.DB
}

func NewPostgresEmployeeRepository(db *sqlx.DB) *PostgresEmployeeRepository {
	return &PostgresEmployeeRepository{db: db}
}

var _ directory.EmployeeRepository = (*PostgresEmployeeRepository)(nil)

const employeeColumns = `id, first_name, last_name, email, telephone, is_active, is_deleted,
	branch_id, area_id, contract_code, tax_code, shift_code, date_of_birth,
	contract_start_date, contract_end_date, qr_code_url, created_at, updated_at`

func (r *PostgresEmployeeRepository) Create(ctx context.Context, e directory.Employee) error {
	query := `
		INSERT INTO employees (` + employeeColumns + `) VALUES (
			:id, :first_name, :last_name, :email, :telephone, :is_active, :is_deleted,
			:branch_id, :area_id, :contract_code, :tax_code, :shift_code, :date_of_birth,
			:contract_start_date, :contract_end_date, :qr_code_url, :created_at, :updated_at
		)`

	if _, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, employeeToRow(e)); err != nil {
		return writeError(err, "create employee", "employee_id", e.ID.String())
	}
	return nil
}

func (r *PostgresEmployeeRepository) Update(ctx context.Context, e directory.Employee) error {
	query := `
		UPDATE employees SET
			first_name = :first_name,
			last_name = :last_name,
			email = :email,
			telephone = :telephone,
			is_active = :is_active,
			is_deleted = :is_deleted,
			branch_id = :branch_id,
			area_id = :area_id,
			contract_code = :contract_code,
			tax_code = :tax_code,
			date_of_birth = :date_of_birth,
			contract_start_date = :contract_start_date,
			contract_end_date = :contract_end_date,
			qr_code_url = :qr_code_url,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, employeeToRow(e))
	if err != nil {
		return writeError(err, "update employee", "employee_id", e.ID.String())
	}
	return mustAffect(result, "update employee")
}

func (r *PostgresEmployeeRepository) FindByID(ctx context.Context, id kernel.EmployeeID) (*directory.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND is_deleted = FALSE`
	return r.findOne(ctx, "find employee by id", query, id.String())
}

func (r *PostgresEmployeeRepository) FindByEmail(ctx context.Context, email string) (*directory.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE LOWER(email) = LOWER($1) AND is_deleted = FALSE`
	return r.findOne(ctx, "find employee by email", query, email)
}

func (r *PostgresEmployeeRepository) findOne(ctx context.Context, op, query string, arg any) (*directory.Employee, error) {
	var row employeeRow
	if err := sqlx.GetContext(ctx, dbx.Ext(ctx, r.db), &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directory.ErrUserNotFound()
		}
		return nil, dbx.Internal(err, op)
	}
	e := row.toDomain()
	return &e, nil
}

// ShiftCodeExists includes soft-deleted employees: shift codes are never reused.
func (r *PostgresEmployeeRepository) ShiftCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM employees WHERE shift_code = $1)`
	if err := sqlx.GetContext(ctx, dbx.Ext(ctx, r.db), &exists, query, code); err != nil {
		return false, dbx.Internal(err, "check shift code")
	}
	return exists, nil
}

func (r *PostgresEmployeeRepository) List(ctx context.Context, active bool, opts kernel.PaginationOptions) (kernel.Paginated[directory.Employee], error) {
	opts = opts.Normalize()
	ext := dbx.Ext(ctx, r.db)

	var total int
	countQuery := `SELECT COUNT(*) FROM employees WHERE is_deleted = FALSE AND is_active = $1`
	if err := sqlx.GetContext(ctx, ext, &total, countQuery, active); err != nil {
		return kernel.Paginated[directory.Employee]{}, dbx.Internal(err, "count employees")
	}

	var rows []employeeRow
	query := `SELECT ` + employeeColumns + ` FROM employees
		WHERE is_deleted = FALSE AND is_active = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	if err := sqlx.SelectContext(ctx, ext, &rows, query, active, opts.PageSize, opts.Offset()); err != nil {
		return kernel.Paginated[directory.Employee]{}, dbx.Internal(err, "list employees")
	}

	items := make([]directory.Employee, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, total), nil
}

type employeeRow struct {
	ID                string     `db:"id"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	Email             string     `db:"email"`
	Telephone         string     `db:"telephone"`
	IsActive          bool       `db:"is_active"`
	IsDeleted         bool       `db:"is_deleted"`
	BranchID          *string    `db:"branch_id"`
	AreaID            *string    `db:"area_id"`
	ContractCode      string     `db:"contract_code"`
	TaxCode           string     `db:"tax_code"`
	ShiftCode         string     `db:"shift_code"`
	DateOfBirth       *time.Time `db:"date_of_birth"`
	ContractStartDate *time.Time `db:"contract_start_date"`
	ContractEndDate   *time.Time `db:"contract_end_date"`
	QRCodeURL         string     `db:"qr_code_url"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func employeeToRow(e directory.Employee) employeeRow {
	return employeeRow{
		ID:                e.ID.String(),
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Email:             e.Email,
		Telephone:         e.Telephone,
		IsActive:          e.IsActive,
		IsDeleted:         e.IsDeleted,
		BranchID:          branchPtr(e.BranchID),
		AreaID:            areaPtr(e.AreaID),
		ContractCode:      e.ContractCode,
		TaxCode:           e.TaxCode,
		ShiftCode:         e.ShiftCode,
		DateOfBirth:       e.DateOfBirth,
		ContractStartDate: e.ContractStartDate,
		ContractEndDate:   e.ContractEndDate,
		QRCodeURL:         e.QRCodeURL,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func (row employeeRow) toDomain() directory.Employee {
	return directory.Employee{
		ID:                kernel.NewEmployeeID(row.ID),
		FirstName:         row.FirstName,
		LastName:          row.LastName,
		Email:             row.Email,
		Telephone:         row.Telephone,
		IsActive:          row.IsActive,
		IsDeleted:         row.IsDeleted,
		BranchID:          toBranchID(row.BranchID),
		AreaID:            toAreaID(row.AreaID),
		ContractCode:      row.ContractCode,
		TaxCode:           row.TaxCode,
		ShiftCode:         row.ShiftCode,
		DateOfBirth:       row.DateOfBirth,
		ContractStartDate: row.ContractStartDate,
		ContractEndDate:   row.ContractEndDate,
		QRCodeURL:         row.QRCodeURL,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

// ============================================================================
// Admins
// ============================================================================

type PostgresAdminRepository struct {
	db *sqlx.DB
}

func NewPostgresAdminRepository(db *sqlx.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{db: db}
}

var _ directory.AdminRepository = (*PostgresAdminRepository)(nil)

const adminColumns = `id, first_name, last_name, email, telephone, admin_type, is_deleted,
	branch_id, area_id, created_at, updated_at`

func (r *PostgresAdminRepository) Create(ctx context.Context, a directory.Admin) error {
	query := `
		INSERT INTO admins (` + adminColumns + `) VALUES (
			:id, :first_name, :last_name, :email, :telephone, :admin_type, :is_deleted,
			:branch_id, :area_id, :created_at, :updated_at
		)`

	if _, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, adminToRow(a)); err != nil {
		return writeError(err, "create admin", "admin_id", a.ID.String())
	}
	return nil
}

// Update never changes admin_type.
func (r *PostgresAdminRepository) Update(ctx context.Context, a directory.Admin) error {
	query := `
		UPDATE admins SET
			first_name = :first_name,
			last_name = :last_name,
			email = :email,
			telephone = :telephone,
			is_deleted = :is_deleted,
			branch_id = :branch_id,
			area_id = :area_id,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, adminToRow(a))
	if err != nil {
		return writeError(err, "update admin", "admin_id", a.ID.String())
	}
	return mustAffect(result, "update admin")
}

func (r *PostgresAdminRepository) FindByID(ctx context.Context, id kernel.AdminID) (*directory.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1 AND is_deleted = FALSE`
	return r.findOne(ctx, "find admin by id", query, id.String())
}

func (r *PostgresAdminRepository) FindByEmail(ctx context.Context, email string) (*directory.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE LOWER(email) = LOWER($1) AND is_deleted = FALSE`
	return r.findOne(ctx, "find admin by email", query, email)
}

func (r *PostgresAdminRepository) findOne(ctx context.Context, op, query string, arg any) (*directory.Admin, error) {
	var row adminRow
	if err := sqlx.GetContext(ctx, dbx.Ext(ctx, r.db), &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directory.ErrUserNotFound()
		}
		return nil, dbx.Internal(err, op)
	}
	a := row.toDomain()
	return &a, nil
}

func (r *PostgresAdminRepository) ListByType(ctx context.Context, adminType kernel.Tier, opts kernel.PaginationOptions) (kernel.Paginated[directory.Admin], error) {
	opts = opts.Normalize()
	ext := dbx.Ext(ctx, r.db)

	var total int
	countQuery := `SELECT COUNT(*) FROM admins WHERE is_deleted = FALSE AND admin_type = $1`
	if err := sqlx.GetContext(ctx, ext, &total, countQuery, adminType.String()); err != nil {
		return kernel.Paginated[directory.Admin]{}, dbx.Internal(err, "count admins")
	}

	var rows []adminRow
	query := `SELECT ` + adminColumns + ` FROM admins
		WHERE is_deleted = FALSE AND admin_type = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	if err := sqlx.SelectContext(ctx, ext, &rows, query, adminType.String(), opts.PageSize, opts.Offset()); err != nil {
		return kernel.Paginated[directory.Admin]{}, dbx.Internal(err, "list admins")
	}

	items := make([]directory.Admin, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, total), nil
}

type adminRow struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Telephone string    `db:"telephone"`
	AdminType string    `db:"admin_type"`
	IsDeleted bool      `db:"is_deleted"`
	BranchID  *string   `db:"branch_id"`
	AreaID    *string   `db:"area_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func adminToRow(a directory.Admin) adminRow {
	return adminRow{
		ID:        a.ID.String(),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Telephone: a.Telephone,
		AdminType: a.AdminType.String(),
		IsDeleted: a.IsDeleted,
		BranchID:  branchPtr(a.BranchID),
		AreaID:    areaPtr(a.AreaID),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (row adminRow) toDomain() directory.Admin {
	return directory.Admin{
		ID:        kernel.NewAdminID(row.ID),
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Telephone: row.Telephone,
		AdminType: kernel.Tier(row.AdminType),
		IsDeleted: row.IsDeleted,
		BranchID:  toBranchID(row.BranchID),
		AreaID:    toAreaID(row.AreaID),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// ============================================================================
// Placement
// ============================================================================

// PostgresPlacementLookup answers branch/area questions from the org chart tables.
type PostgresPlacementLookup struct {
	db *sqlx.DB
}

func NewPostgresPlacementLookup(db *sqlx.DB) *PostgresPlacementLookup {
	return &PostgresPlacementLookup{db: db}
}

var _ directory.PlacementLookup = (*PostgresPlacementLookup)(nil)

func (r *PostgresPlacementLookup) BranchExists(ctx context.Context, id kernel.BranchID) (bool, error) {
	return r.exists(ctx, "check branch", `SELECT EXISTS(SELECT 1 FROM branches WHERE id = $1)`, id.String())
}

func (r *PostgresPlacementLookup) AreaExists(ctx context.Context, id kernel.AreaID) (bool, error) {
	return r.exists(ctx, "check area", `SELECT EXISTS(SELECT 1 FROM areas WHERE id = $1)`, id.String())
}

func (r *PostgresPlacementLookup) AreaInBranch(ctx context.Context, areaID kernel.AreaID, branchID kernel.BranchID) (bool, error) {
	return r.exists(ctx, "check branch area",
		`SELECT EXISTS(SELECT 1 FROM branch_areas WHERE area_id = $1 AND branch_id = $2)`,
		areaID.String(), branchID.String())
}

func (r *PostgresPlacementLookup) exists(ctx context.Context, op, query string, args ...any) (bool, error) {
	var ok bool
	if err := sqlx.GetContext(ctx, dbx.Ext(ctx, r.db), &ok, query, args...); err != nil {
		return false, dbx.Internal(err, op)
	}
	return ok, nil
}

// ============================================================================
// Helpers
// ============================================================================

func mustAffect(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return dbx.Internal(err, op)
	}
	if n == 0 {
		return directory.ErrUserNotFound()
	}
	return nil
}

func branchPtr(id *kernel.BranchID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func areaPtr(id *kernel.AreaID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toBranchID(s *string) *kernel.BranchID {
	if s == nil {
		return nil
	}
	id := kernel.NewBranchID(*s)
	return &id
}

func toAreaID(s *string) *kernel.AreaID {
	if s == nil {
		return nil
	}
	id := kernel.NewAreaID(*s)
	return &id
}
