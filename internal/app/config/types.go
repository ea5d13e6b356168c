package config

import (
	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type (
	Bootstrap struct {
		Router         *chi.Mux
		MongoDB        *mongo.Client
		Redis          *redis.Client
		RabbitMQ       *amqp.Connection
		Minio          *minio.Client
		Logger         *zap.Logger
		DriverConfig   *DriverConfig
		InternalConfig *InternalConfig
	}

	InternalConfig struct {
		App        App
		Oppdrag    Oppdrag
		Avstemming Avstemming
		Sweep      Sweep
	}

	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		RabbitMQ RabbitMQ
		Minio    Minio
		Logger   Logger
	}

	App struct {
		Env             string
		Port            string
		Version         string
		Timezone        string
		InstanceID      string
		MaxRequests     int
		ShutdownTimeout int
	}

	Oppdrag struct {
		VedtakQueue              string
		KvitteringQueue          string
		OppdragQueue             string
		StatusQueue              string
		AvstemmingQueue          string
		DispatchTimeoutInSeconds int
		PublishRatePerSecond     int
	}

	Avstemming struct {
		Kategori                     string
		InterfaceIntervalInMinutes   int
		ConsistencyIntervalInMinutes int
		LeaderLockTTLInSeconds       int
		RecentRunsLimit              int
	}

	Sweep struct {
		IntervalInMinutes         int
		DispatchRetryAgeInMinutes int
		UnconfirmedAgeInHours     int
	}

	MongoDB struct {
		Port     string
		Host     string
		DbName   string
		Username string
		Password string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
	}
	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}
	Minio struct {
		Port       string
		Host       string
		Username   string
		Password   string
		BucketName string
		UseSSL     bool
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
)
