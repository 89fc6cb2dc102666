package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                = "FOODCART_APP_ENV"
	EnvPort                  = "FOODCART_APP_PORT"
	EnvCORSOrigins           = "FOODCART_CORS_ORIGINS"
	EnvRedisURL              = "FOODCART_REDIS_URL"
	EnvJWTSecret             = "FOODCART_JWT_SECRET"
	EnvJWTIssuer             = "FOODCART_JWT_ISSUER"
	EnvCatalogBaseURL        = "FOODCART_CATALOG_BASE_URL"
	EnvCatalogCacheTTL       = "FOODCART_CATALOG_CACHE_TTL"
	EnvOrdersBaseURL         = "FOODCART_ORDERS_BASE_URL"
	EnvCheckoutMaxConcurrent = "FOODCART_CHECKOUT_MAX_CONCURRENT"
	EnvCheckoutFallbackName  = "FOODCART_CHECKOUT_FALLBACK_RESTAURANT_NAME"
	EnvSessionIdleTTL        = "FOODCART_SESSION_IDLE_TTL"
)
