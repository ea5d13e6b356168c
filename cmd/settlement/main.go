package main

import (
	"context"
	"net/http"
	"oppdrag-service/internal/app/config"
	"oppdrag-service/internal/app/delivery/http/middlewares"
	"oppdrag-service/internal/app/delivery/http/routers"
	"oppdrag-service/internal/app/drivers/database"
	"oppdrag-service/internal/app/drivers/logger"
	"oppdrag-service/internal/app/drivers/messaging"
	"oppdrag-service/internal/app/drivers/storage"
	"oppdrag-service/internal/app/services/confirmation"
	"oppdrag-service/internal/app/services/intake"
	"oppdrag-service/internal/app/services/reconciliation"
	"oppdrag-service/internal/app/services/settlement"
	"oppdrag-service/internal/app/services/shared/archive"
	"oppdrag-service/internal/app/services/shared/leader"
	"oppdrag-service/internal/app/services/shared/locker"
	"oppdrag-service/internal/app/services/shared/oppdragqueue"
	sharedRedis "oppdrag-service/internal/app/services/shared/redis"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewLogrusLogger(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinio(driverConfig)
	chiRouter := chi.NewRouter()

	ctx, cancelConsumers := context.WithCancel(context.Background())

	stopWorkers := bootstrapingTheApp(ctx, config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Minio:          minioClient,
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}, log)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	logrus.Println("Waiting for in-flight messages and requests to finish..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	stopWorkers()
	cancelConsumers()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := rabbitMQ.Close(); err != nil {
		log.Printf("Error closing RabbitMQ connection: %v", err)
	}
	if err := mongoDB.Disconnect(shutdownCtx); err != nil {
		log.Printf("Error disconnecting MongoDB: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(ctx context.Context, bootstrap config.Bootstrap, log *logrus.Logger) (stopWorkers func()) {
	// Shared infrastructure
	redisRepository := sharedRedis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, bootstrap.Logger)
	leaderService := leader.NewLeaderService(
		lockService,
		bootstrap.Logger,
		time.Second*time.Duration(bootstrap.InternalConfig.Avstemming.LeaderLockTTLInSeconds),
	)
	snapshotArchive := archive.NewMinioArchive(bootstrap.Minio, bootstrap.DriverConfig.Minio.BucketName)

	queueService, err := oppdragqueue.NewService(bootstrap.RabbitMQ, bootstrap.Logger, bootstrap.InternalConfig.Oppdrag)
	if err != nil {
		log.Fatalf("Failed to set up queues: %v", err)
	}

	// Settlement
	instructionRepository := settlement.NewInstructionMongoRepository(
		bootstrap.MongoDB,
		bootstrap.DriverConfig.MongoDB.DbName,
	)
	if err := instructionRepository.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure instruction indexes: %v", err)
	}
	dispatcherService := settlement.NewDispatcherService(
		queueService,
		bootstrap.Logger,
		time.Second*time.Duration(bootstrap.InternalConfig.Oppdrag.DispatchTimeoutInSeconds),
	)
	utbetalingUsecase := settlement.NewUtbetalingUsecase(instructionRepository, dispatcherService, bootstrap.Logger)

	// Confirmation
	kvitteringUsecase := confirmation.NewKvitteringUsecase(instructionRepository, bootstrap.Logger)

	// Reconciliation
	reconciliationRepository := reconciliation.NewReconciliationMongoRepository(
		bootstrap.MongoDB,
		bootstrap.DriverConfig.MongoDB.DbName,
	)
	if err := reconciliationRepository.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure reconciliation indexes: %v", err)
	}
	avstemmingUsecase := reconciliation.NewAvstemmingUsecase(
		instructionRepository,
		reconciliationRepository,
		queueService,
		snapshotArchive,
		bootstrap.Logger,
		bootstrap.InternalConfig.Avstemming.Kategori,
	)
	avstemmingController := reconciliation.NewAvstemmingController(
		bootstrap.Logger,
		reconciliationRepository,
		int64(bootstrap.InternalConfig.Avstemming.RecentRunsLimit),
	)

	// Consumers
	vedtakDeliveries, err := queueService.ConsumeVedtak()
	if err != nil {
		log.Fatalf("Failed to consume vedtak queue: %v", err)
	}
	kvitteringDeliveries, err := queueService.ConsumeKvittering()
	if err != nil {
		log.Fatalf("Failed to consume kvittering queue: %v", err)
	}
	vedtakConsumer := intake.NewVedtakConsumer(bootstrap.Logger, utbetalingUsecase, queueService, queueService, vedtakDeliveries)
	vedtakConsumer.Start(ctx)
	kvitteringConsumer := confirmation.NewKvitteringConsumer(bootstrap.Logger, kvitteringUsecase, queueService, queueService, kvitteringDeliveries)
	kvitteringConsumer.Start(ctx)

	// Background workers
	sweeper := settlement.NewSweeper(
		bootstrap.Logger,
		leaderService,
		instructionRepository,
		dispatcherService,
		time.Minute*time.Duration(bootstrap.InternalConfig.Sweep.IntervalInMinutes),
		time.Minute*time.Duration(bootstrap.InternalConfig.Sweep.DispatchRetryAgeInMinutes),
		time.Hour*time.Duration(bootstrap.InternalConfig.Sweep.UnconfirmedAgeInHours),
	)
	stopSweeper := sweeper.Start(ctx)

	reconciliationWorker := reconciliation.NewWorker(
		bootstrap.Logger,
		leaderService,
		avstemmingUsecase,
		time.Minute*time.Duration(bootstrap.InternalConfig.Avstemming.InterfaceIntervalInMinutes),
		time.Minute*time.Duration(bootstrap.InternalConfig.Avstemming.ConsistencyIntervalInMinutes),
	)
	stopReconciliation := reconciliationWorker.Start(ctx)

	// Ops HTTP surface
	httpMiddlewares := &middlewares.Middlewares{
		Log:            bootstrap.Logger,
		InternalConfig: bootstrap.InternalConfig,
	}
	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, httpMiddlewares, avstemmingController)

	return func() {
		stopSweeper()
		stopReconciliation()
	}
}
