package orgchartapi

import (
	"context"

	"github.com/Abraxas-365/staffhub/pkg/directory/directoryapi"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/orgchart"
	"github.com/Abraxas-365/staffhub/pkg/orgchart/orgchartsrv"
	"github.com/gofiber/fiber/v2"
)

type OrgChartHandlers struct {
	svc     *orgchartsrv.Service
	perPage int
}

func NewOrgChartHandlers(svc *orgchartsrv.Service, perPage int) *OrgChartHandlers {
	if perPage < 1 {
		perPage = kernel.DefaultPageSize
	}
	return &OrgChartHandlers{svc: svc, perPage: perPage}
}

// resource binds one catalog entity to its routes. Response bodies use
// single (object) and plural (list) as JSON keys.
type resource[Req, DTO any] struct {
	single  string
	plural  string
	label   string
	list    func(context.Context, *kernel.AuthContext, kernel.PaginationOptions) (kernel.Paginated[DTO], error)
	get     func(context.Context, *kernel.AuthContext, string) (*DTO, error)
	create  func(context.Context, *kernel.AuthContext, Req) (*DTO, error)
	update  func(context.Context, *kernel.AuthContext, string, Req) (*DTO, error)
	destroy func(context.Context, *kernel.AuthContext, string) (string, error)
}

// RegisterRoutes mounts /organizations, /branches, /areas and /roles for
// any admin; the service narrows writes to super_admin.
func (h *OrgChartHandlers) RegisterRoutes(app fiber.Router, mw *auth.TokenMiddleware) {
	mount(app.Group("/organizations", mw.Authenticate(), mw.RequireAdmin()), h.perPage, resource[orgchart.OrganizationRequest, orgchart.OrganizationDTO]{
		single: "organization", plural: "organizations", label: "Organization",
		list: h.svc.ListOrganizations, get: h.svc.GetOrganization,
		create: h.svc.CreateOrganization, update: h.svc.UpdateOrganization, destroy: h.svc.DeleteOrganization,
	})
	mount(app.Group("/branches", mw.Authenticate(), mw.RequireTiers(kernel.TierSuperAdmin)), h.perPage, resource[orgchart.BranchRequest, orgchart.BranchDTO]{
		single: "branch", plural: "branches", label: "Branch",
		list: h.svc.ListBranches, get: h.svc.GetBranch,
		create: h.svc.CreateBranch, update: h.svc.UpdateBranch, destroy: h.svc.DeleteBranch,
	})
	mount(app.Group("/areas", mw.Authenticate(), mw.RequireAdmin()), h.perPage, resource[orgchart.AreaRequest, orgchart.AreaDTO]{
		single: "area", plural: "areas", label: "Area",
		list: h.svc.ListAreas, get: h.svc.GetArea,
		create: h.svc.CreateArea, update: h.svc.UpdateArea, destroy: h.svc.DeleteArea,
	})
	mount(app.Group("/roles", mw.Authenticate(), mw.RequireAdmin()), h.perPage, resource[orgchart.RoleRequest, orgchart.RoleDTO]{
		single: "role", plural: "roles", label: "Role",
		list: h.svc.ListRoles, get: h.svc.GetRole,
		create: h.svc.CreateRole, update: h.svc.UpdateRole, destroy: h.svc.DeleteRole,
	})
}

func mount[Req, DTO any](r fiber.Router, perPage int, res resource[Req, DTO]) {
	r.Get("/", func(c *fiber.Ctx) error {
		ac, err := principal(c)
		if err != nil {
			return err
		}
		page, err := res.list(c.UserContext(), ac, pagination(c, perPage))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{res.plural: page.Items, "meta": directoryapi.MetaOf(page)})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		ac, err := principal(c)
		if err != nil {
			return err
		}
		dto, err := res.get(c.UserContext(), ac, c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{res.single: dto})
	})

	r.Post("/", func(c *fiber.Ctx) error {
		ac, err := principal(c)
		if err != nil {
			return err
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return errx.Validation("Invalid request body")
		}
		dto, err := res.create(c.UserContext(), ac, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			res.single: dto,
			"message":  res.label + " created successfully",
		})
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		ac, err := principal(c)
		if err != nil {
			return err
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return errx.Validation("Invalid request body")
		}
		dto, err := res.update(c.UserContext(), ac, c.Params("id"), req)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			res.single: dto,
			"message":  res.label + " updated successfully",
		})
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		ac, err := principal(c)
		if err != nil {
			return err
		}
		msg, err := res.destroy(c.UserContext(), ac, c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": msg})
	})
}

func pagination(c *fiber.Ctx, perPage int) kernel.PaginationOptions {
	size := c.QueryInt("per_page", perPage)
	if size < 1 {
		size = perPage
	}
	return kernel.PaginationOptions{Page: c.QueryInt("page", 1), PageSize: size}.Normalize()
}

func principal(c *fiber.Ctx) (*kernel.AuthContext, error) {
	ac, ok := auth.GetAuthContext(c)
	if !ok {
		return nil, iam.ErrUnauthenticated()
	}
	return ac, nil
}
