package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "ims"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "IMS_APP_ENV"
	EnvPort     = "IMS_APP_PORT"
	EnvRedisURL = "IMS_REDIS_URL"

	EnvDBDSN  = "IMS_DB_DSN"
	EnvDBHost = "IMS_DB_HOST"
	EnvDBUser = "IMS_DB_USER"
	EnvDBName = "IMS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
