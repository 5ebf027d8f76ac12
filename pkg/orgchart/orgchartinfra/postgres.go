package orgchartinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/dbx"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/orgchart"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ============================================================================
// Organizations
// ============================================================================

type PostgresOrganizationRepository struct {
	db *sqlx.DB
}

func NewPostgresOrganizationRepository(db *sqlx.DB) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{db: db}
}

var _ orgchart.OrganizationRepository = (*PostgresOrganizationRepository)(nil)

const organizationColumns = `id, name, address, created_at, updated_at`

type organizationRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row organizationRow) toDomain() orgchart.Organization {
	return orgchart.Organization{
		ID:        kernel.NewOrganizationID(row.ID),
		Name:      row.Name,
		Address:   row.Address,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *PostgresOrganizationRepository) Create(ctx context.Context, o orgchart.Organization) error {
	query := `INSERT INTO organizations (` + organizationColumns + `)
		VALUES (:id, :name, :address, :created_at, :updated_at)`
	row := organizationRow{o.ID.String(), o.Name, o.Address, o.CreatedAt, o.UpdatedAt}
	if _, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, row); err != nil {
		return writeError(err, "Organization", "create organization")
	}
	return nil
}

func (r *PostgresOrganizationRepository) Update(ctx context.Context, o orgchart.Organization) error {
	query := `UPDATE organizations SET name = :name, address = :address, updated_at = :updated_at WHERE id = :id`
	row := organizationRow{o.ID.String(), o.Name, o.Address, o.CreatedAt, o.UpdatedAt}
	result, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, row)
	if err != nil {
		return writeError(err, "Organization", "update organization")
	}
	return mustAffect(result, "update organization", orgchart.CodeOrganizationNotFound)
}

func (r *PostgresOrganizationRepository) Delete(ctx context.Context, id kernel.OrganizationID) error {
	result, err := dbx.Ext(ctx, r.db).ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id.String())
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return orgchart.ErrHasDependents("Organization has branches, delete branches and then try again").WithCause(err)
		}
		return dbx.Internal(err, "delete organization")
	}
	return mustAffect(result, "delete organization", orgchart.CodeOrganizationNotFound)
}

func (r *PostgresOrganizationRepository) FindByID(ctx context.Context, id kernel.OrganizationID) (*orgchart.Organization, error) {
	var row organizationRow
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	if err := sqlx.GetContext(ctx, dbx.Ext(ctx, r.db), &row, query, id.String()); err != nil {
		return nil, findError(err, "find organization", orgchart.CodeOrganizationNotFound)
	}
	o := row.toDomain()
	return &o, nil
}

func (r *PostgresOrganizationRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Organization], error) {
	rows, p, err := list[organizationRow](ctx, r.db, "organizations", organizationColumns, opts)
	if err != nil {
		return kernel.Paginated[orgchart.Organization]{}, err
	}
	items := make([]orgchart.Organization, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return kernel.NewPaginated(items, p.Page, p.PageSize, p.total), nil
}

func (r *PostgresOrganizationRepository) NameTaken(ctx context.Context, name string, exclude kernel.OrganizationID) (bool, error) {
	return exists(ctx, r.db, "check organization name",
		`SELECT EXISTS(SELECT 1 FROM organizations WHERE name = $1 AND id::text <> $2)`, name, exclude.String())
}

func (r *PostgresOrganizationRepository) HasBranches(ctx context.Context, id kernel.OrganizationID) (bool, error) {
	return exists(ctx, r.db, "check organization branches",
		`SELECT EXISTS(SELECT 1 FROM branches WHERE organization_id = $1)`, id.String())
}

// ============================================================================
// Branches
// ============================================================================

type PostgresBranchRepository struct {
	db *sqlx.DB
}

func NewPostgresBranchRepository(db *sqlx.DB) *PostgresBranchRepository {
	return &PostgresBranchRepository{db: db}
}

var _ orgchart.BranchRepository = (*PostgresBranchRepository)(nil)

const branchColumns = `id, name, address, organization_id, created_at, updated_at`

type branchRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Address        string    `db:"address"`
	OrganizationID *string   `db:"organization_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func branchToRow(b orgchart.Branch) branchRow {
	row := branchRow{
		ID:        b.ID.String(),
		Name:      b.Name,
		Address:   b.Address,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.OrganizationID != nil {
		s := b.OrganizationID.String()
		row.OrganizationID = &s
	}
	return row
}

func (row branchRow) toDomain() orgchart.Branch {
	b := orgchart.Branch{
		ID:        kernel.NewBranchID(row.ID),
		Name:      row.Name,
		Address:   row.Address,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.OrganizationID != nil {
		id := kernel.NewOrganizationID(*row.OrganizationID)
		b.OrganizationID = &id
	}
	return b
}

func (r *PostgresBranchRepository) Create(ctx context.Context, b orgchart.Branch) error {
	query := `INSERT INTO branches (` + branchColumns + `)
		VALUES (:id, :name, :address, :organization_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, branchToRow(b)); err != nil {
		return writeError(err, "Branch", "create branch")
	}
	return nil
}

func (r *PostgresBranchRepository) Update(ctx context.Context, b orgchart.Branch) error {
	query := `UPDATE branches SET
			name = :name,
			address = :address,
			organization_id = :organization_id,
			updated_at = :updated_at
		WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, branchToRow(b))
	if err != nil {
		return writeError(err, "Branch", "update branch")
	}
	return mustAffect(result, "update branch", orgchart.CodeBranchNotFound)
}

// Delete cascades to branch_areas; employees or admins still placed in the
// branch block it.
func (r *PostgresBranchRepository) Delete(ctx context.Context, id kernel.BranchID) error {
	result, err := dbx.Ext(ctx, r.db).ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id.String())
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return orgchart.ErrHasDependents("Branch has users, move users and then try again").WithCause(err)
		}
		return dbx.Internal(err, "delete branch")
	}
	return mustAffect(result, "delete branch", orgchart.CodeBranchNotFound)
}

func (r *PostgresBranchRepository) FindByID(ctx context.Context, id kernel.BranchID) (*orgchart.Branch, error) {
	ext := dbx.Ext(ctx, r.db)
	var row branchRow
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`
	if err := sqlx.GetContext(ctx, ext, &row, query, id.String()); err != nil {
		return nil, findError(err, "find branch", orgchart.CodeBranchNotFound)
	}
	b := row.toDomain()
	areas, err := r.areasOf(ctx, []string{row.ID})
	if err != nil {
		return nil, err
	}
	b.AreaIDs = areas[row.ID]
	return &b, nil
}

func (r *PostgresBranchRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Branch], error) {
	rows, p, err := list[branchRow](ctx, r.db, "branches", branchColumns, opts)
	if err != nil {
		return kernel.Paginated[orgchart.Branch]{}, err
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	areas, err := r.areasOf(ctx, ids)
	if err != nil {
		return kernel.Paginated[orgchart.Branch]{}, err
	}

	items := make([]orgchart.Branch, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
		items[i].AreaIDs = areas[row.ID]
	}
	return kernel.NewPaginated(items, p.Page, p.PageSize, p.total), nil
}

func (r *PostgresBranchRepository) areasOf(ctx context.Context, branchIDs []string) (map[string][]kernel.AreaID, error) {
	out := make(map[string][]kernel.AreaID, len(branchIDs))
	if len(branchIDs) == 0 {
		return out, nil
	}

	var links []struct {
		BranchID string `db:"branch_id"`
		AreaID   string `db:"area_id"`
	}
	query := `SELECT branch_id, area_id FROM branch_areas WHERE branch_id = ANY($1) ORDER BY area_id`
	if err := sqlx.SelectContext(ctx, dbx.Ext(ctx, r.db), &links, query, pq.Array(branchIDs)); err != nil {
		return nil, dbx.Internal(err, "load branch areas")
	}
	for _, l := range links {
		out[l.BranchID] = append(out[l.BranchID], kernel.NewAreaID(l.AreaID))
	}
	return out, nil
}

func (r *PostgresBranchRepository) NameTaken(ctx context.Context, name string, exclude kernel.BranchID) (bool, error) {
	return exists(ctx, r.db, "check branch name",
		`SELECT EXISTS(SELECT 1 FROM branches WHERE name = $1 AND id::text <> $2)`, name, exclude.String())
}

// ReplaceAreas must run inside the caller's transaction.
func (r *PostgresBranchRepository) ReplaceAreas(ctx context.Context, id kernel.BranchID, areas []kernel.AreaID) error {
	ext := dbx.Ext(ctx, r.db)
	if _, err := ext.ExecContext(ctx, `DELETE FROM branch_areas WHERE branch_id = $1`, id.String()); err != nil {
		return dbx.Internal(err, "clear branch areas")
	}
	for _, areaID := range areas {
		_, err := ext.ExecContext(ctx,
			`INSERT INTO branch_areas (branch_id, area_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			id.String(), areaID.String())
		if err != nil {
			if dbx.IsForeignKeyViolation(err) {
				return orgchart.ErrUnknownArea(areaID.String()).WithCause(err)
			}
			return dbx.Internal(err, "attach branch area")
		}
	}
	return nil
}

// ============================================================================
// Areas
// ============================================================================

type PostgresAreaRepository struct {
	db *sqlx.DB
}

func NewPostgresAreaRepository(db *sqlx.DB) *PostgresAreaRepository {
	return &PostgresAreaRepository{db: db}
}

var _ orgchart.AreaRepository = (*PostgresAreaRepository)(nil)

const areaColumns = `id, name, color, created_at, updated_at`

type areaRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row areaRow) toDomain() orgchart.Area {
	return orgchart.Area{
		ID:        kernel.NewAreaID(row.ID),
		Name:      row.Name,
		Color:     row.Color,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *PostgresAreaRepository) Create(ctx context.Context, a orgchart.Area) error {
	query := `INSERT INTO areas (` + areaColumns + `) VALUES (:id, :name, :color, :created_at, :updated_at)`
	row := areaRow{a.ID.String(), a.Name, a.Color, a.CreatedAt, a.UpdatedAt}
	if _, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, row); err != nil {
		return writeError(err, "Area", "create area")
	}
	return nil
}

func (r *PostgresAreaRepository) Update(ctx context.Context, a orgchart.Area) error {
	query := `UPDATE areas SET name = :name, color = :color, updated_at = :updated_at WHERE id = :id`
	row := areaRow{a.ID.String(), a.Name, a.Color, a.CreatedAt, a.UpdatedAt}
	result, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, row)
	if err != nil {
		return writeError(err, "Area", "update area")
	}
	return mustAffect(result, "update area", orgchart.CodeAreaNotFound)
}

func (r *PostgresAreaRepository) Delete(ctx context.Context, id kernel.AreaID) error {
	result, err := dbx.Ext(ctx, r.db).ExecContext(ctx, `DELETE FROM areas WHERE id = $1`, id.String())
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return orgchart.ErrHasDependents("Area has users, move users and then try again").WithCause(err)
		}
		return dbx.Internal(err, "delete area")
	}
	return mustAffect(result, "delete area", orgchart.CodeAreaNotFound)
}

func (r *PostgresAreaRepository) FindByID(ctx context.Context, id kernel.AreaID) (*orgchart.Area, error) {
	var row areaRow
	query := `SELECT ` + areaColumns + ` FROM areas WHERE id = $1`
	if err := sqlx.GetContext(ctx, dbx.Ext(ctx, r.db), &row, query, id.String()); err != nil {
		return nil, findError(err, "find area", orgchart.CodeAreaNotFound)
	}
	a := row.toDomain()
	return &a, nil
}

func (r *PostgresAreaRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Area], error) {
	rows, p, err := list[areaRow](ctx, r.db, "areas", areaColumns, opts)
	if err != nil {
		return kernel.Paginated[orgchart.Area]{}, err
	}
	items := make([]orgchart.Area, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return kernel.NewPaginated(items, p.Page, p.PageSize, p.total), nil
}

func (r *PostgresAreaRepository) NameTaken(ctx context.Context, name string, exclude kernel.AreaID) (bool, error) {
	return exists(ctx, r.db, "check area name",
		`SELECT EXISTS(SELECT 1 FROM areas WHERE name = $1 AND id::text <> $2)`, name, exclude.String())
}

func (r *PostgresAreaRepository) HasBranches(ctx context.Context, id kernel.AreaID) (bool, error) {
	return exists(ctx, r.db, "check area branches",
		`SELECT EXISTS(SELECT 1 FROM branch_areas WHERE area_id = $1)`, id.String())
}

func (r *PostgresAreaRepository) HasRoles(ctx context.Context, id kernel.AreaID) (bool, error) {
	return exists(ctx, r.db, "check area roles",
		`SELECT EXISTS(SELECT 1 FROM job_roles WHERE area_id = $1)`, id.String())
}

// ============================================================================
// Job roles
// ============================================================================

type PostgresRoleRepository struct {
	db *sqlx.DB
}

func NewPostgresRoleRepository(db *sqlx.DB) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

var _ orgchart.RoleRepository = (*PostgresRoleRepository)(nil)

const roleColumns = `id, name, symbol, area_id, created_at, updated_at`

type roleRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Symbol    string    `db:"symbol"`
	AreaID    string    `db:"area_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func roleToRow(r orgchart.Role) roleRow {
	return roleRow{
		ID:        r.ID.String(),
		Name:      r.Name,
		Symbol:    r.Symbol,
		AreaID:    r.AreaID.String(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (row roleRow) toDomain() orgchart.Role {
	return orgchart.Role{
		ID:        kernel.NewJobRoleID(row.ID),
		Name:      row.Name,
		Symbol:    row.Symbol,
		AreaID:    kernel.NewAreaID(row.AreaID),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *PostgresRoleRepository) Create(ctx context.Context, role orgchart.Role) error {
	query := `INSERT INTO job_roles (` + roleColumns + `)
		VALUES (:id, :name, :symbol, :area_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, roleToRow(role)); err != nil {
		return writeError(err, "Role", "create role")
	}
	return nil
}

func (r *PostgresRoleRepository) Update(ctx context.Context, role orgchart.Role) error {
	query := `UPDATE job_roles SET
			name = :name,
			symbol = :symbol,
			area_id = :area_id,
			updated_at = :updated_at
		WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, dbx.Ext(ctx, r.db), query, roleToRow(role))
	if err != nil {
		return writeError(err, "Role", "update role")
	}
	return mustAffect(result, "update role", orgchart.CodeRoleNotFound)
}

func (r *PostgresRoleRepository) Delete(ctx context.Context, id kernel.JobRoleID) error {
	result, err := dbx.Ext(ctx, r.db).ExecContext(ctx, `DELETE FROM job_roles WHERE id = $1`, id.String())
	if err != nil {
		return dbx.Internal(err, "delete role")
	}
	return mustAffect(result, "delete role", orgchart.CodeRoleNotFound)
}

func (r *PostgresRoleRepository) FindByID(ctx context.Context, id kernel.JobRoleID) (*orgchart.Role, error) {
	var row roleRow
	query := `SELECT ` + roleColumns + ` FROM job_roles WHERE id = $1`
	if err := sqlx.GetContext(ctx, dbx.Ext(ctx, r.db), &row, query, id.String()); err != nil {
		return nil, findError(err, "find role", orgchart.CodeRoleNotFound)
	}
	role := row.toDomain()
	return &role, nil
}

func (r *PostgresRoleRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Role], error) {
	rows, p, err := list[roleRow](ctx, r.db, "job_roles", roleColumns, opts)
	if err != nil {
		return kernel.Paginated[orgchart.Role]{}, err
	}
	items := make([]orgchart.Role, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return kernel.NewPaginated(items, p.Page, p.PageSize, p.total), nil
}

func (r *PostgresRoleRepository) NameTakenInArea(ctx context.Context, areaID kernel.AreaID, name string, exclude kernel.JobRoleID) (bool, error) {
	return exists(ctx, r.db, "check role name",
		`SELECT EXISTS(SELECT 1 FROM job_roles WHERE area_id = $1 AND name = $2 AND id::text <> $3)`,
		areaID.String(), name, exclude.String())
}

// ============================================================================
// Helpers
// ============================================================================

type page struct {
	kernel.PaginationOptions
	total int
}

// list pages through table newest first. table and columns are constants
// owned by this package.
func list[R any](ctx context.Context, db *sqlx.DB, table, columns string, opts kernel.PaginationOptions) ([]R, page, error) {
	opts = opts.Normalize()
	ext := dbx.Ext(ctx, db)

	p := page{PaginationOptions: opts}
	if err := sqlx.GetContext(ctx, ext, &p.total, `SELECT COUNT(*) FROM `+table); err != nil {
		return nil, p, dbx.Internal(err, "count "+table)
	}

	var rows []R
	query := `SELECT ` + columns + ` FROM ` + table + ` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	if err := sqlx.SelectContext(ctx, ext, &rows, query, opts.PageSize, opts.Offset()); err != nil {
		return nil, p, dbx.Internal(err, "list "+table)
	}
	return rows, p, nil
}

func exists(ctx context.Context, db *sqlx.DB, op, query string, args ...any) (bool, error) {
	var found bool
	if err := sqlx.GetContext(ctx, dbx.Ext(ctx, db), &found, query, args...); err != nil {
		return false, dbx.Internal(err, op)
	}
	return found, nil
}

func writeError(err error, entity, op string) error {
	switch {
	case dbx.IsUniqueViolation(err):
		return orgchart.ErrNameTaken(entity).WithCause(err).WithDetail("constraint", dbx.Constraint(err))
	case dbx.IsForeignKeyViolation(err):
		return errx.Wrap(err, "Referenced record does not exist", errx.TypeNotFound).
			WithDetail("constraint", dbx.Constraint(err))
	}
	return dbx.Internal(err, op)
}

func findError(err error, op string, notFound *errx.ErrorCode) error {
	if errors.Is(err, sql.ErrNoRows) {
		return orgchart.ErrRegistry.New(notFound)
	}
	return dbx.Internal(err, op)
}

func mustAffect(result sql.Result, op string, notFound *errx.ErrorCode) error {
	n, err := result.RowsAffected()
	if err != nil {
		return dbx.Internal(err, op)
	}
	if n == 0 {
		return orgchart.ErrRegistry.New(notFound)
	}
	return nil
}
