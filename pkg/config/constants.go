package config

const EnvPrefix = "VERDEO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN       = "VERDEO_DB_DSN"
	EnvDBHost      = "VERDEO_DB_HOST"
	EnvDBUser      = "VERDEO_DB_USER"
	EnvDBName      = "VERDEO_DB_NAME"
	EnvSiteBaseURL = "VERDEO_SITE_BASE_URL"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
