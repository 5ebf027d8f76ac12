package authinfra

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Abraxas-365/staffhub/pkg/logx"
	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"golang.org/x/time/rate"
)

// KeySetOptions configures the user pool's signing key set.
type KeySetOptions struct {
	// JWKSURL is the pool's /.well-known/jwks.json endpoint.
	JWKSURL string
	Client  *http.Client

	// Storage holds the fetched keys. Defaults to in-memory storage.
	Storage jwkset.Storage

	// RefreshInterval re-reads the key set in the background.
	RefreshInterval time.Duration

	// UnknownKIDEvery bounds how often a token naming an unseen kid may
	// force a refetch.
	UnknownKIDEvery time.Duration
}

// NewCognitoKeySet returns the keyfunc the JWT service verifies against.
// The background refresh stops when ctx is cancelled. A failed first
// fetch is logged, not returned, so the API can start during a user
// pool outage with whatever Storage already holds.
func NewCognitoKeySet(ctx context.Context, opts KeySetOptions) (keyfunc.Keyfunc, error) {
	u, err := url.Parse(opts.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("parse jwks url: %w", err)
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Storage == nil {
		opts.Storage = jwkset.NewMemoryStorage()
	}
	if opts.UnknownKIDEvery <= 0 {
		opts.UnknownKIDEvery = time.Minute
	}

	remote, err := jwkset.NewStorageFromHTTP(u, jwkset.HTTPClientStorageOptions{
		Client:                    opts.Client,
		Ctx:                       ctx,
		HTTPTimeout:               5 * time.Second,
		NoErrorReturnFirstHTTPReq: true,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logx.WithError(err).WithField("url", opts.JWKSURL).Warn("jwks refresh failed")
		},
		RefreshInterval: opts.RefreshInterval,
		Storage:         opts.Storage,
	})
	if err != nil {
		return nil, fmt.Errorf("jwks storage: %w", err)
	}

	client, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs:          map[string]jwkset.Storage{opts.JWKSURL: remote},
		RateLimitWaitMax:  time.Second,
		RefreshUnknownKID: rate.NewLimiter(rate.Every(opts.UnknownKIDEvery), 1),
	})
	if err != nil {
		return nil, fmt.Errorf("jwks client: %w", err)
	}

	return keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: client})
}
