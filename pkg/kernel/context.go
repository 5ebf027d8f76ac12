package kernel

import "context"

// AuthContext is the authenticated principal resolved for a request.
// It is passed explicitly to every use case; handlers read it from fiber locals.
type AuthContext struct {
	Email     string `json:"email"`
	SubjectID string `json:"sub_id"`

	// UserID is the employee or admin record id
	UserID string `json:"user_id"`
	Tier   Tier   `json:"tier"`

	BranchID *BranchID `json:"branch_id,omitempty"`
	AreaID   *AreaID   `json:"area_id,omitempty"`

	// AccessToken is the verified bearer token, kept for self-service calls
	AccessToken string `json:"-"`
}

func (ac *AuthContext) IsValid() bool {
	return ac != nil && ac.Email != "" && ac.Tier.IsValid()
}

func (ac *AuthContext) IsAdmin() bool {
	return ac.IsValid() && ac.Tier.IsAdmin()
}

// HasTier reports membership in any of tiers.
func (ac *AuthContext) HasTier(tiers ...Tier) bool {
	if !ac.IsValid() {
		return false
	}
	for _, t := range tiers {
		if ac.Tier == t {
			return true
		}
	}
	return false
}

type ContextKey string

const (
	AuthContextKey ContextKey = "auth_context"
	RequestIDKey   ContextKey = "request_id"
)

func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, AuthContextKey, ac)
}

func AuthFromContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(AuthContextKey).(*AuthContext)
	return ac, ok && ac != nil
}

// RequestMeta describes the HTTP caller for audit records.
type RequestMeta struct {
	RequestID string
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFromContext returns the zero value outside a request.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}
