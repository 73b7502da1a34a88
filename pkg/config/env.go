package config

const EnvPrefix = "TILLPOINT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "TILLPOINT_APP_ENV"
	EnvPort     = "TILLPOINT_APP_PORT"
	EnvLogLevel = "TILLPOINT_LOG_LEVEL"

	EnvDBDSN  = "TILLPOINT_DB_DSN"
	EnvDBHost = "TILLPOINT_DB_HOST"
	EnvDBPort = "TILLPOINT_DB_PORT"
	EnvDBUser = "TILLPOINT_DB_USER"
	EnvDBPass = "TILLPOINT_DB_PASSWORD"
	EnvDBName = "TILLPOINT_DB_NAME"

	EnvRedisURL = "TILLPOINT_REDIS_URL"

	EnvJWTSecret  = "TILLPOINT_JWT_SECRET"
	EnvJWTIssuer  = "TILLPOINT_JWT_ISSUER"
	EnvJWTExpMins = "TILLPOINT_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "TILLPOINT_USE_SQLITE"
	EnvAutoMigrate = "TILLPOINT_AUTO_MIGRATE"

	EnvEntitlementsCacheTTL = "TILLPOINT_ENTITLEMENTS_CACHE_TTL"

	EnvPricingCurrency     = "TILLPOINT_PRICING_CURRENCY"
	EnvPricingMaxCartLines = "TILLPOINT_PRICING_MAX_CART_LINES"

	EnvQuoteRateLimit = "TILLPOINT_RATE_LIMIT_QUOTE_LIMIT"
	EnvCORSOrigins    = "TILLPOINT_CORS_ALLOWED_ORIGINS"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
