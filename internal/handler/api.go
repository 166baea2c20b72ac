package handler

import (
	"time"

	"github.com/photofolio/internal/auth"
	"github.com/photofolio/internal/cache"
	"github.com/photofolio/internal/logger"
	"github.com/photofolio/internal/service"
)

// Deps lists what the HTTP handlers need. Provider may be nil when OAuth is not configured.
type Deps struct {
	Projects *service.ProjectService
	Assets   *service.AssetService
	Iconic   *service.IconicImageService
	Cache    cache.ListingCache
	ListTTL  time.Duration
	Policy   *auth.AdminPolicy
	Provider auth.Provider
	Log      *logger.Logger
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	projects *service.ProjectService
	assets   *service.AssetService
	iconic   *service.IconicImageService
	cache    cache.ListingCache
	listTTL  time.Duration
	policy   *auth.AdminPolicy
	provider auth.Provider
	log      *logger.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(d Deps) *API {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	listingCache := d.Cache
	if listingCache == nil {
		listingCache = cache.NewMemoryCache()
	}
	ttl := d.ListTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	policy := d.Policy
	if policy == nil {
		policy = auth.NewAdminPolicy(nil)
	}
	return &API{
		projects: d.Projects,
		assets:   d.Assets,
		iconic:   d.Iconic,
		cache:    listingCache,
		listTTL:  ttl,
		policy:   policy,
		provider: d.Provider,
		log:      log.With("component", "handler"),
	}
}
