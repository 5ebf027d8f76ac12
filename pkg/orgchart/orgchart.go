package orgchart

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

const dateTimeFormat = "2006-01-02 15:04:05"

// ============================================================================
// Entities
// ============================================================================

type Organization struct {
	ID        kernel.OrganizationID
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Branch belongs to one organization and is attached to many areas.
type Branch struct {
	ID             kernel.BranchID
	Name           string
	Address        string
	OrganizationID *kernel.OrganizationID
	AreaIDs        []kernel.AreaID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Area struct {
	ID        kernel.AreaID
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a job role; its name is unique within its area.
type Role struct {
	ID        kernel.JobRoleID
	Name      string
	Symbol    string
	AreaID    kernel.AreaID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ============================================================================
// DTOs
// ============================================================================

type OrganizationDTO struct {
	ID        kernel.OrganizationID `json:"id"`
	Name      string                `json:"name"`
	Address   string                `json:"address"`
	CreatedAt string                `json:"created_at"`
	UpdatedAt string                `json:"updated_at"`
}

type BranchDTO struct {
	ID             kernel.BranchID        `json:"id"`
	Name           string                 `json:"name"`
	Address        string                 `json:"address"`
	OrganizationID *kernel.OrganizationID `json:"organization_id"`
	AreaIDs        []kernel.AreaID        `json:"areas_ids"`
	CreatedAt      string                 `json:"created_at"`
	UpdatedAt      string                 `json:"updated_at"`
}

type AreaDTO struct {
	ID        kernel.AreaID `json:"id"`
	Name      string        `json:"name"`
	Color     string        `json:"color"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

type RoleDTO struct {
	ID        kernel.JobRoleID `json:"id"`
	Name      string           `json:"name"`
	Symbol    string           `json:"symbol"`
	AreaID    kernel.AreaID    `json:"area_id"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
}

func (o Organization) ToDTO() OrganizationDTO {
	return OrganizationDTO{
		ID:        o.ID,
		Name:      o.Name,
		Address:   o.Address,
		CreatedAt: o.CreatedAt.Format(dateTimeFormat),
		UpdatedAt: o.UpdatedAt.Format(dateTimeFormat),
	}
}

func (b Branch) ToDTO() BranchDTO {
	areas := b.AreaIDs
	if areas == nil {
		areas = []kernel.AreaID{}
	}
	return BranchDTO{
		ID:             b.ID,
		Name:           b.Name,
		Address:        b.Address,
		OrganizationID: b.OrganizationID,
		AreaIDs:        areas,
		CreatedAt:      b.CreatedAt.Format(dateTimeFormat),
		UpdatedAt:      b.UpdatedAt.Format(dateTimeFormat),
	}
}

func (a Area) ToDTO() AreaDTO {
	return AreaDTO{
		ID:        a.ID,
		Name:      a.Name,
		Color:     a.Color,
		CreatedAt: a.CreatedAt.Format(dateTimeFormat),
		UpdatedAt: a.UpdatedAt.Format(dateTimeFormat),
	}
}

func (r Role) ToDTO() RoleDTO {
	return RoleDTO{
		ID:        r.ID,
		Name:      r.Name,
		Symbol:    r.Symbol,
		AreaID:    r.AreaID,
		CreatedAt: r.CreatedAt.Format(dateTimeFormat),
		UpdatedAt: r.UpdatedAt.Format(dateTimeFormat),
	}
}

// ============================================================================
// Requests
// ============================================================================

// Optional fields are pointers; nil keeps the stored value on update.

type OrganizationRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

type BranchRequest struct {
	Name           string    `json:"name"`
	Address        *string   `json:"address"`
	OrganizationID *string   `json:"organization_id"`
	AreaIDs        *[]string `json:"areas_ids"`
}

type AreaRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type RoleRequest struct {
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	AreaID *string `json:"area_id"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("ORGCHART")

var (
	CodeOrganizationNotFound = ErrRegistry.Register("ORGANIZATION_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Organization not found")
	CodeBranchNotFound       = ErrRegistry.Register("BRANCH_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Branch not found")
	CodeAreaNotFound         = ErrRegistry.Register("AREA_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Area not found")
	CodeRoleNotFound         = ErrRegistry.Register("ROLE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Role not found")
	CodeNameRequired         = ErrRegistry.Register("NAME_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Name is required")
	CodeColorRequired        = ErrRegistry.Register("COLOR_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Color is required")
	CodeSymbolRequired       = ErrRegistry.Register("SYMBOL_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Symbol is required")
	CodeAreaIDRequired       = ErrRegistry.Register("AREA_ID_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Area ID is required")
	CodeOrgIDRequired        = ErrRegistry.Register("ORGANIZATION_ID_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Organization ID is required")
	CodeNameTaken            = ErrRegistry.Register("NAME_TAKEN", errx.TypeConflict, http.StatusConflict, "Already exists with the name")
	CodeHasDependents        = ErrRegistry.Register("HAS_DEPENDENTS", errx.TypeConflict, http.StatusConflict, "Entity has dependents")
	CodeUnknownArea          = ErrRegistry.Register("UNKNOWN_AREA", errx.TypeNotFound, http.StatusNotFound, "Area not found")
)

// ErrNameTaken names the entity, e.g. "Branch already exists with the name".
func ErrNameTaken(entity string) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeNameTaken, fmt.Sprintf("%s already exists with the name", entity))
}

// ErrHasDependents carries the fixed "delete children first" message.
func ErrHasDependents(message string) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeHasDependents, message)
}

// ErrUnknownArea is raised for a branch area list entry that does not exist.
func ErrUnknownArea(id string) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeUnknownArea, fmt.Sprintf("Area with id %s not found", id)).WithDetail("area_id", id)
}

// IsNotFound reports whether err is one of the registry's not-found codes.
func IsNotFound(err error) bool {
	return errx.HasCode(err, CodeOrganizationNotFound) ||
		errx.HasCode(err, CodeBranchNotFound) ||
		errx.HasCode(err, CodeAreaNotFound) ||
		errx.HasCode(err, CodeRoleNotFound)
}
