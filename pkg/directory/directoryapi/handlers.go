package directoryapi

import (
	"github.com/Abraxas-365/staffhub/pkg/directory"
	"github.com/Abraxas-365/staffhub/pkg/directory/directorysrv"
	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// ListMeta is the pagination block of list responses.
type ListMeta struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	NextPage    *int `json:"next_page"`
	PrevPage    *int `json:"prev_page"`
}

type ListResponse struct {
	Users any      `json:"users"`
	Meta  ListMeta `json:"meta"`
}

type ProfileResponse struct {
	Profile any `json:"profile"`
}

// MetaOf converts kernel pagination into the response meta block.
func MetaOf[T any](p kernel.Paginated[T]) ListMeta {
	return ListMeta{
		CurrentPage: p.Page.Number,
		TotalPages:  p.Page.Pages,
		TotalCount:  p.Page.Total,
		NextPage:    p.NextPage(),
		PrevPage:    p.PrevPage(),
	}
}

type UserHandlers struct {
	provisioning *directorysrv.ProvisioningService
	users        *directorysrv.UserService
	perPage      int
}

func NewUserHandlers(provisioning *directorysrv.ProvisioningService, users *directorysrv.UserService, perPage int) *UserHandlers {
	if perPage < 1 {
		perPage = kernel.DefaultPageSize
	}
	return &UserHandlers{provisioning: provisioning, users: users, perPage: perPage}
}

// RegisterRoutes mounts registration and user management. Everything here
// needs a bearer token; the services apply the tier rules.
func (h *UserHandlers) RegisterRoutes(app fiber.Router, mw *auth.TokenMiddleware) {
	app.Post("/auth/register", mw.Authenticate(), mw.RequireAdmin(), h.Register)
	app.Get("/profile", mw.Authenticate(), h.Profile)

	users := app.Group("/users", mw.Authenticate(), mw.RequireAdmin())
	users.Get("/", h.List)
	users.Get("/status/archived", h.ListArchived)
	users.Get("/:id", h.Get)

	user := app.Group("/user", mw.Authenticate(), mw.RequireAdmin())
	user.Post("/toggle_archive_state", h.ToggleArchive)
	user.Delete("/:id", h.Delete)
}

func (h *UserHandlers) Register(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}
	var req directory.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body")
	}

	resp, err := h.provisioning.Register(c.UserContext(), ac, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *UserHandlers) Profile(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}

	profile, err := h.users.Profile(c.UserContext(), ac, c.Query("user_type"))
	if err != nil {
		return err
	}
	return c.JSON(ProfileResponse{Profile: profile})
}

func (h *UserHandlers) List(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}

	page, err := h.users.List(c.UserContext(), ac, c.Query("user_type"), h.pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(ListResponse{Users: page.Items, Meta: MetaOf(page)})
}

func (h *UserHandlers) ListArchived(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}

	page, err := h.users.ListArchived(c.UserContext(), ac, h.pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(ListResponse{Users: page.Items, Meta: MetaOf(page)})
}

func (h *UserHandlers) Get(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.UserContext(), ac, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(directory.UserResponse{User: user})
}

func (h *UserHandlers) ToggleArchive(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}
	var req directory.ToggleArchiveRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body")
	}

	msg, err := h.users.ToggleArchive(c.UserContext(), ac, req)
	if err != nil {
		return err
	}
	return c.JSON(directory.MessageResponse{Message: msg})
}

func (h *UserHandlers) Delete(c *fiber.Ctx) error {
	ac, err := principal(c)
	if err != nil {
		return err
	}

	msg, err := h.users.Delete(c.UserContext(), ac, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(directory.MessageResponse{Message: msg})
}

// pagination reads page and per_page; page < 1 becomes 1.
func (h *UserHandlers) pagination(c *fiber.Ctx) kernel.PaginationOptions {
	opts := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("per_page", h.perPage),
	}
	if opts.PageSize < 1 {
		opts.PageSize = h.perPage
	}
	return opts.Normalize()
}

func principal(c *fiber.Ctx) (*kernel.AuthContext, error) {
	ac, ok := auth.GetAuthContext(c)
	if !ok {
		return nil, iam.ErrUnauthenticated()
	}
	return ac, nil
}
