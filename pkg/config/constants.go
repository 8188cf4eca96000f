package config

const (
	EnvPrefix = "BETTEREDIBLE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "BETTEREDIBLE_APP_ENV"
	EnvPort   = "BETTEREDIBLE_APP_PORT"

	EnvDBDSN  = "BETTEREDIBLE_DB_DSN"
	EnvDBHost = "BETTEREDIBLE_DB_HOST"
	EnvDBUser = "BETTEREDIBLE_DB_USER"
	EnvDBName = "BETTEREDIBLE_DB_NAME"

	EnvRedisURL = "BETTEREDIBLE_REDIS_URL"

	EnvGCPProjectID = "BETTEREDIBLE_GCP_PROJECT_ID"
	EnvGCSBucket    = "BETTEREDIBLE_GCS_BUCKET_NAME"

	EnvPubSubClientOrdersTopic = "BETTEREDIBLE_PUBSUB_CLIENT_ORDERS_TOPIC"
	EnvPubSubClientOrdersSub   = "BETTEREDIBLE_PUBSUB_CLIENT_ORDERS_SUBSCRIPTION"

	EnvSchedulerSpec     = "BETTEREDIBLE_SCHEDULER_SPEC"
	EnvSchedulerTimezone = "BETTEREDIBLE_SCHEDULER_TIMEZONE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
