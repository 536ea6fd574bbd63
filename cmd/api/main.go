package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/furniture-mes/scheduling-service/pkg/cloudevents"
	"github.com/furniture-mes/scheduling-service/pkg/kafka"
	"github.com/furniture-mes/scheduling-service/pkg/logging"
	"github.com/furniture-mes/scheduling-service/pkg/metrics"
	"github.com/furniture-mes/scheduling-service/pkg/middleware"
	"github.com/furniture-mes/scheduling-service/pkg/mongodb"
	"github.com/furniture-mes/scheduling-service/pkg/outbox"

	api "github.com/furniture-mes/scheduling-service/internal/api/http"
	"github.com/furniture-mes/scheduling-service/internal/application"
	"github.com/furniture-mes/scheduling-service/internal/domain"
	"github.com/furniture-mes/scheduling-service/internal/infrastructure/clients"
	kafkaAdapter "github.com/furniture-mes/scheduling-service/internal/infrastructure/kafka"
	mongoRepo "github.com/furniture-mes/scheduling-service/internal/infrastructure/mongodb"
)

const serviceName = "scheduling-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting scheduling-service API")

	config := loadConfig()
	ctx := context.Background()

	// Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka producer
	kafkaProducer := kafka.NewProducer(config.Kafka)
	defer kafkaProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// CloudEvents factory
	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceScheduling)

	// Repositories
	productionRepo := mongoRepo.NewProductionRepository(mongoClient, eventFactory)
	capacityRepo := mongoRepo.NewCapacityRepository(mongoClient)

	// Outbox publisher
	outboxPublisher := outbox.NewPublisher(
		productionRepo.GetOutboxRepository(),
		kafkaProducer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Capacity ledger from configured stage capacities
	ledger, err := domain.NewCapacityLedger(config.StageCapacities)
	if err != nil {
		logger.WithError(err).Error("Invalid stage capacity configuration")
		os.Exit(1)
	}

	// Upstream service clients
	orderClient := clients.NewOrderServiceClient(config.OrderServiceURL, logger)
	logger.Info("Order service client initialized", "url", config.OrderServiceURL)

	catalogClient := clients.NewCatalogServiceClient(config.CatalogServiceURL, logger)
	logger.Info("Catalog service client initialized", "url", config.CatalogServiceURL)

	// Application services
	scheduler := application.NewSchedulingApplicationService(
		productionRepo,
		capacityRepo,
		catalogClient,
		orderClient,
		ledger,
		m,
		logger,
	)
	intake := application.NewIntakeApplicationService(orderClient, productionRepo, logger)
	analyzer := application.NewAnalyzerApplicationService(ledger, logger)
	forecaster := application.NewForecasterApplicationService(orderClient, productionRepo, ledger, logger)

	// Rebuild reservations before accepting traffic
	if err := scheduler.RestoreLedger(ctx); err != nil {
		logger.WithError(err).Error("Failed to restore capacity ledger")
		os.Exit(1)
	}

	// Order events consumer in background; Start blocks until the context
	// is cancelled
	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()
	orderConsumer := kafkaAdapter.NewOrderEventsConsumer(config.Kafka, scheduler, logger)
	go func() {
		if err := orderConsumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
			logger.WithError(err).Error("Order events consumer stopped")
		}
	}()
	defer orderConsumer.Close()
	logger.Info("Order events consumer started", "topic", kafka.Topics.OrdersEvents)

	// Gin router with standard middleware
	router := gin.New()

	// CORS for the planner frontend
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{getEnv("FRONTEND_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Correlation-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}))

	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	handlers := api.NewHandlers(scheduler, intake, analyzer, forecaster, logger)
	api.RegisterRoutes(router, handlers)

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	cancelConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr        string
	MongoDB           *mongodb.Config
	Kafka             *kafka.Config
	OrderServiceURL   string
	CatalogServiceURL string
	StageCapacities   map[domain.Stage]int
}

// stageCapacityFile is the on-disk shape of the stage capacity overrides
type stageCapacityFile struct {
	Stages []struct {
		Name     string `yaml:"name"`
		Capacity int    `yaml:"capacity"`
	} `yaml:"stages"`
}

func loadConfig() *Config {
	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8004"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "scheduling"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka:             kafkaConfig,
		OrderServiceURL:   getEnv("ORDER_SERVICE_URL", "http://localhost:8001"),
		CatalogServiceURL: getEnv("CATALOG_SERVICE_URL", "http://localhost:8002"),
		StageCapacities:   loadStageCapacities(getEnv("STAGE_CAPACITY_FILE", "")),
	}
}

// loadStageCapacities reads per-stage unit capacities from a YAML file; stages
// absent from the file keep their defaults. A missing or unreadable file
// falls back to the defaults entirely.
func loadStageCapacities(path string) map[domain.Stage]int {
	capacities := domain.DefaultStageCapacities()
	if path == "" {
		return capacities
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stage capacity file %s unreadable, using defaults: %v\n", path, err)
		return capacities
	}

	var file stageCapacityFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		fmt.Fprintf(os.Stderr, "stage capacity file %s invalid, using defaults: %v\n", path, err)
		return capacities
	}

	for _, entry := range file.Stages {
		stage, err := domain.ParseStage(entry.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stage capacity file %s: unknown stage %q, skipping\n", path, entry.Name)
			continue
		}
		capacities[stage] = entry.Capacity
	}

	return capacities
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
