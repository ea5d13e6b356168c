package config

import (
	"oppdrag-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "oppdrag"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", "customRedisPass"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
		Minio: Minio{
			Port:       utils.GetEnvString("MINIO_PORT", "9000"),
			Host:       utils.GetEnvString("MINIO_HOST", "localhost"),
			Username:   utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password:   utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "avstemming-snapshots"),
			UseSSL:     utils.GetEnvBool("MINIO_USE_SSL", false),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:             utils.GetEnvString("APP_ENV", "development"),
			Port:            utils.GetEnvString("APP_PORT", ":8080"),
			Version:         utils.GetEnvString("APP_VERSION", "v1"),
			Timezone:        utils.GetEnvString("APP_TIMEZONE", "Europe/Oslo"),
			InstanceID:      utils.GetEnvString("APP_INSTANCE_ID", ""),
			MaxRequests:     utils.GetEnvInt("APP_MAX_REQUEST", 10),
			ShutdownTimeout: utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
		},
		Oppdrag: Oppdrag{
			VedtakQueue:              utils.GetEnvString("APP_RABBITMQ_VEDTAK_QUEUE", "vedtak_inbound_queue"),
			KvitteringQueue:          utils.GetEnvString("APP_RABBITMQ_KVITTERING_QUEUE", "oppdrag_kvittering_queue"),
			OppdragQueue:             utils.GetEnvString("APP_RABBITMQ_OPPDRAG_QUEUE", "oppdrag_outbound_queue"),
			StatusQueue:              utils.GetEnvString("APP_RABBITMQ_STATUS_QUEUE", "utbetaling_status_queue"),
			AvstemmingQueue:          utils.GetEnvString("APP_RABBITMQ_AVSTEMMING_QUEUE", "avstemming_outbound_queue"),
			DispatchTimeoutInSeconds: utils.GetEnvInt("APP_OPPDRAG_DISPATCH_TIMEOUT_IN_SECONDS", 5),
			PublishRatePerSecond:     utils.GetEnvInt("APP_OPPDRAG_PUBLISH_RATE_PER_SECOND", 20),
		},
		Avstemming: Avstemming{
			Kategori:                     utils.GetEnvString("APP_AVSTEMMING_KATEGORI", "UTBETALING"),
			InterfaceIntervalInMinutes:   utils.GetEnvInt("APP_AVSTEMMING_INTERFACE_INTERVAL_IN_MINUTES", 1440),
			ConsistencyIntervalInMinutes: utils.GetEnvInt("APP_AVSTEMMING_CONSISTENCY_INTERVAL_IN_MINUTES", 10080),
			LeaderLockTTLInSeconds:       utils.GetEnvInt("APP_AVSTEMMING_LEADER_LOCK_TTL_IN_SECONDS", 60),
			RecentRunsLimit:              utils.GetEnvInt("APP_AVSTEMMING_RECENT_RUNS_LIMIT", 50),
		},
		Sweep: Sweep{
			IntervalInMinutes:         utils.GetEnvInt("APP_SWEEP_INTERVAL_IN_MINUTES", 15),
			DispatchRetryAgeInMinutes: utils.GetEnvInt("APP_SWEEP_DISPATCH_RETRY_AGE_IN_MINUTES", 10),
			UnconfirmedAgeInHours:     utils.GetEnvInt("APP_SWEEP_UNCONFIRMED_AGE_IN_HOURS", 48),
		},
	}
}
