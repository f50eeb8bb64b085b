package settings

import "time"

// DB config keys and defaults for application settings.
const (
	// StorefrontCacheTTLSecondsKey controls how long storefront responses are cached.
	StorefrontCacheTTLSecondsKey = "STOREFRONT_CACHE_TTL_SECONDS"
	// DefaultStorefrontCacheTTLSeconds is the fallback storefront cache TTL.
	DefaultStorefrontCacheTTLSeconds = 60
	// DefaultRefreshInterval is how often the snapshot is reloaded from the database.
	DefaultRefreshInterval = time.Minute
)
