package directory

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// ============================================================================
// Entities
// ============================================================================

// Employee is a staff member without administrative authority.
type Employee struct {
	ID                kernel.EmployeeID
	FirstName         string
	LastName          string
	Email             string
	Telephone         string
	IsActive          bool
	IsDeleted         bool
	BranchID          *kernel.BranchID
	AreaID            *kernel.AreaID
	ContractCode      string
	TaxCode           string
	ShiftCode         string
	DateOfBirth       *time.Time
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	QRCodeURL         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Admin is a manager, director or super_admin.
type Admin struct {
	ID        kernel.AdminID
	FirstName string
	LastName  string
	Email     string
	Telephone string
	AdminType kernel.Tier
	IsDeleted bool
	BranchID  *kernel.BranchID
	AreaID    *kernel.AreaID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account is exactly one of an employee or an admin record.
type Account struct {
	Employee *Employee
	Admin    *Admin
}

func (a *Account) Tier() kernel.Tier {
	if a.Admin != nil {
		return a.Admin.AdminType
	}
	return kernel.TierEmployee
}

func (a *Account) Email() string {
	if a.Admin != nil {
		return a.Admin.Email
	}
	return a.Employee.Email
}

func (a *Account) UserID() string {
	if a.Admin != nil {
		return a.Admin.ID.String()
	}
	return a.Employee.ID.String()
}

// AuthContext builds the request principal for this account.
func (a *Account) AuthContext(subjectID, accessToken string) *kernel.AuthContext {
	ac := &kernel.AuthContext{
		Email:       a.Email(),
		SubjectID:   subjectID,
		UserID:      a.UserID(),
		Tier:        a.Tier(),
		AccessToken: accessToken,
	}
	if a.Admin != nil {
		ac.BranchID, ac.AreaID = a.Admin.BranchID, a.Admin.AreaID
	} else {
		ac.BranchID, ac.AreaID = a.Employee.BranchID, a.Employee.AreaID
	}
	return ac
}

// ============================================================================
// Domain Methods
// ============================================================================

// Archive deactivates the employee. Archiving twice is harmless.
func (e *Employee) Archive() {
	e.IsActive = false
	e.UpdatedAt = time.Now().UTC()
}

func (e *Employee) Unarchive() {
	e.IsActive = true
	e.UpdatedAt = time.Now().UTC()
}

// Anonymize scrubs personal data for a soft delete and returns the original email.
func (e *Employee) Anonymize() string {
	original := e.Email
	e.FirstName, e.LastName, e.Telephone = anonFirstName, anonLastName, anonTelephone
	e.Email = AnonymizedEmail(e.ID.String())
	e.IsDeleted = true
	e.UpdatedAt = time.Now().UTC()
	return original
}

func (a *Admin) Anonymize() string {
	original := a.Email
	a.FirstName, a.LastName, a.Telephone = anonFirstName, anonLastName, anonTelephone
	a.Email = AnonymizedEmail(a.ID.String())
	a.IsDeleted = true
	a.UpdatedAt = time.Now().UTC()
	return original
}

const (
	anonFirstName = "Deleted"
	anonLastName  = "User"
	anonTelephone = "000000"
)

func AnonymizedEmail(id string) string {
	return fmt.Sprintf("deleted_user%s@deleted.com", id)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@([^@\s]+\.)+[^@\s]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeEmail lowercases and trims; emails are compared case-insensitively.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// ============================================================================
// DTOs
// ============================================================================

type EmployeeDTO struct {
	ID                kernel.EmployeeID `json:"id"`
	FirstName         string            `json:"first_name"`
	LastName          string            `json:"last_name"`
	Email             string            `json:"email"`
	Telephone         string            `json:"telephone"`
	IsActive          bool              `json:"is_active"`
	IsDeleted         bool              `json:"is_deleted"`
	BranchID          *kernel.BranchID  `json:"branch_id"`
	AreaID            *kernel.AreaID    `json:"area_id"`
	QRCodeURL         string            `json:"qr_code_url"`
	ContractCode      string            `json:"contract_code"`
	TaxCode           string            `json:"tax_code"`
	ShiftCode         string            `json:"shift_code"`
	DateOfBirth       *string           `json:"date_of_birth"`
	ContractStartDate *string           `json:"contract_start_date"`
	ContractEndDate   *string           `json:"contract_end_date"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
}

type AdminDTO struct {
	ID           kernel.AdminID   `json:"id"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Email        string           `json:"email"`
	Telephone    string           `json:"telephone"`
	AdminType    kernel.Tier      `json:"admin_type"`
	IsManager    bool             `json:"is_manager"`
	IsDirector   bool             `json:"is_director"`
	IsSuperAdmin bool             `json:"is_super_admin"`
	IsDeleted    bool             `json:"is_deleted"`
	BranchID     *kernel.BranchID `json:"branch_id"`
	AreaID       *kernel.AreaID   `json:"area_id"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

func (e *Employee) ToDTO() EmployeeDTO {
	return EmployeeDTO{
		ID:                e.ID,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Email:             e.Email,
		Telephone:         e.Telephone,
		IsActive:          e.IsActive,
		IsDeleted:         e.IsDeleted,
		BranchID:          e.BranchID,
		AreaID:            e.AreaID,
		QRCodeURL:         e.QRCodeURL,
		ContractCode:      e.ContractCode,
		TaxCode:           e.TaxCode,
		ShiftCode:         e.ShiftCode,
		DateOfBirth:       formatDate(e.DateOfBirth),
		ContractStartDate: formatDate(e.ContractStartDate),
		ContractEndDate:   formatDate(e.ContractEndDate),
		CreatedAt:         e.CreatedAt.Format(DateTimeFormat),
		UpdatedAt:         e.UpdatedAt.Format(DateTimeFormat),
	}
}

func (a *Admin) ToDTO() AdminDTO {
	return AdminDTO{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		Telephone:    a.Telephone,
		AdminType:    a.AdminType,
		IsManager:    a.AdminType == kernel.TierManager,
		IsDirector:   a.AdminType == kernel.TierDirector,
		IsSuperAdmin: a.AdminType == kernel.TierSuperAdmin,
		IsDeleted:    a.IsDeleted,
		BranchID:     a.BranchID,
		AreaID:       a.AreaID,
		CreatedAt:    a.CreatedAt.Format(DateTimeFormat),
		UpdatedAt:    a.UpdatedAt.Format(DateTimeFormat),
	}
}

// ToDTO renders whichever record the account holds.
func (a *Account) ToDTO() any {
	if a.Admin != nil {
		return a.Admin.ToDTO()
	}
	return a.Employee.ToDTO()
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateFormat)
	return &s
}

// ============================================================================
// Requests / Responses
// ============================================================================

// RegisterRequest is the flat registration payload. Dates are YYYY-MM-DD.
type RegisterRequest struct {
	UserType          string `json:"user_type"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email"`
	Telephone         string `json:"telephone"`
	BranchID          string `json:"branch_id"`
	AreaID            string `json:"area_id"`
	ContractCode      string `json:"contract_code"`
	TaxCode           string `json:"tax_code"`
	DateOfBirth       string `json:"date_of_birth"`
	ContractStartDate string `json:"contract_start_date"`
	ContractEndDate   string `json:"contract_end_date"`
}

type RegisterResponse struct {
	User    any    `json:"user"`
	Message string `json:"message"`
}

type ToggleArchiveRequest struct {
	ID         string `json:"id"`
	ActionType string `json:"action_type"`
}

type UserResponse struct {
	User    any    `json:"user"`
	Message string `json:"message,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("DIRECTORY")

var (
	CodeUserNotFound       = ErrRegistry.Register("USER_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeInvalidUserType    = ErrRegistry.Register("INVALID_USER_TYPE", errx.TypeValidation, http.StatusBadRequest, "The user type you provided is invalid. Please provide a valid user type: 'employee', 'manager', or 'director'.")
	CodeUserTypeRequired   = ErrRegistry.Register("USER_TYPE_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "User type is required")
	CodeMissingFields      = ErrRegistry.Register("MISSING_FIELDS", errx.TypeValidation, http.StatusBadRequest, "Required fields are missing")
	CodeInvalidEmail       = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "The email provided is invalid. Please provide a valid email address.")
	CodeInvalidDate        = ErrRegistry.Register("INVALID_DATE", errx.TypeValidation, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.")
	CodeEmailTaken         = ErrRegistry.Register("EMAIL_TAKEN", errx.TypeConflict, http.StatusConflict, "An account already exists with the email provided. Please use a different email address.")
	CodeBranchNotFound     = ErrRegistry.Register("BRANCH_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "The branch does not exist. Please provide a valid branch.")
	CodeAreaNotFound       = ErrRegistry.Register("AREA_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "The area does not exist. Please provide a valid area.")
	CodeAreaNotInBranch    = ErrRegistry.Register("AREA_NOT_IN_BRANCH", errx.TypeValidation, http.StatusBadRequest, "The area does not belong to the specified branch.")
	CodeShiftCodeExhausted = ErrRegistry.Register("SHIFT_CODE_EXHAUSTED", errx.TypeInternal, http.StatusInternalServerError, errx.UnexpectedMessage)
	CodeShiftCodeTaken     = ErrRegistry.Register("SHIFT_CODE_TAKEN", errx.TypeConflict, http.StatusConflict, "Another registration claimed the same shift code. Please try again.")
	CodeActionTypeRequired = ErrRegistry.Register("ACTION_TYPE_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Action type is required")
	CodeInvalidActionType  = ErrRegistry.Register("INVALID_ACTION_TYPE", errx.TypeValidation, http.StatusBadRequest, "Invalid action. Use 'true' or 'false' for the 'action_type' parameter.")
	CodeUserIDRequired     = ErrRegistry.Register("USER_ID_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "User ID is required")
	CodeEmployeeOnly       = ErrRegistry.Register("EMPLOYEE_ONLY", errx.TypeValidation, http.StatusBadRequest, "Only employees can be archived")
)

// Helper functions
func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrEmailTaken() *errx.Error {
	return ErrRegistry.New(CodeEmailTaken)
}

func ErrShiftCodeTaken() *errx.Error {
	return ErrRegistry.New(CodeShiftCodeTaken)
}

// ErrMissingFields names the missing fields in request order.
func ErrMissingFields(fields []string) *errx.Error {
	msg := fmt.Sprintf("The following required fields are missing: %s. Please provide them to proceed.", strings.Join(fields, ", "))
	return ErrRegistry.NewWithMessage(CodeMissingFields, msg).WithDetail("fields", fields)
}

// ErrInvalidDate names the offending field.
func ErrInvalidDate(field string) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeInvalidDate, fmt.Sprintf("Invalid date format for %s. Use YYYY-MM-DD.", field))
}
