package orgchartapi_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/errx"
	"github.com/Abraxas-365/staffhub/pkg/iam/auth"
	"github.com/Abraxas-365/staffhub/pkg/iam/authz"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
	"github.com/Abraxas-365/staffhub/pkg/orgchart"
	"github.com/Abraxas-365/staffhub/pkg/orgchart/orgchartapi"
	"github.com/Abraxas-365/staffhub/pkg/orgchart/orgchartsrv"
	"github.com/gofiber/fiber/v2"
)

// memAreas implements only what the area routes reach.
type memAreas struct {
	orgchart.AreaRepository
	rows []orgchart.Area
}

func (m *memAreas) Create(_ context.Context, a orgchart.Area) error {
	m.rows = append(m.rows, a)
	return nil
}

func (m *memAreas) NameTaken(context.Context, string, kernel.AreaID) (bool, error) {
	return false, nil
}

func (m *memAreas) List(_ context.Context, opts kernel.PaginationOptions) (kernel.Paginated[orgchart.Area], error) {
	return kernel.NewPaginated(m.rows, opts.Page, opts.PageSize, len(m.rows)), nil
}

type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (*auth.VerifiedToken, error) {
	return &auth.VerifiedToken{Raw: token, Username: token}, nil
}

// tierResolver treats the bearer token as the caller's tier.
type tierResolver struct{}

func (tierResolver) Resolve(_ context.Context, t *auth.VerifiedToken) (*kernel.AuthContext, error) {
	return &kernel.AuthContext{Email: t.Username + "@example.com", Tier: kernel.Tier(t.Username)}, nil
}

func newApp(areas *memAreas) *fiber.App {
	svc := orgchartsrv.NewService(nil, nil, areas, nil, nil, authz.NewEngine())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(errx.Status(err)).JSON(errx.From(err).ToResponse(""))
		},
	})
	orgchartapi.NewOrgChartHandlers(svc, 0).RegisterRoutes(app, auth.NewAuthMiddleware(tokenVerifier{}, tierResolver{}))
	return app
}

func TestCreateAreaResponse(t *testing.T) {
	areas := &memAreas{}
	app := newApp(areas)

	req := httptest.NewRequest("POST", "/areas", strings.NewReader(`{"name":"Sales","color":"#f00"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer super_admin")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		Area    orgchart.AreaDTO `json:"area"`
		Message string           `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Area created successfully" || body.Area.Name != "Sales" {
		t.Errorf("body = %+v", body)
	}
	if len(areas.rows) != 1 {
		t.Errorf("stored areas = %d, want 1", len(areas.rows))
	}
}

func TestListAreasMeta(t *testing.T) {
	areas := &memAreas{rows: []orgchart.Area{{ID: "a1", Name: "Sales"}, {ID: "a2", Name: "Ops"}}}
	app := newApp(areas)

	req := httptest.NewRequest("GET", "/areas?per_page=0", nil)
	req.Header.Set("Authorization", "Bearer manager")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Areas []orgchart.AreaDTO `json:"areas"`
		Meta  struct {
			CurrentPage int `json:"current_page"`
			TotalCount  int `json:"total_count"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Areas) != 2 || body.Meta.TotalCount != 2 || body.Meta.CurrentPage != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestRouteGates(t *testing.T) {
	app := newApp(&memAreas{})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"employee cannot read areas", "GET", "/areas", "employee", 403},
		{"director cannot read branches", "GET", "/branches", "director", 403},
		{"director cannot create areas", "POST", "/areas", "director", 403},
		{"missing token", "GET", "/areas", "", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"name":"x","color":"y"}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
