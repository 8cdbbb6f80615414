package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/ZETA-AI-ORG/onboard/config"
	documentrepo "github.com/ZETA-AI-ORG/onboard/internal/repositories/document"
	ragconfigrepo "github.com/ZETA-AI-ORG/onboard/internal/repositories/ragconfig"
	"github.com/ZETA-AI-ORG/onboard/pkg/database"
	"github.com/ZETA-AI-ORG/onboard/pkg/engine"
	"github.com/ZETA-AI-ORG/onboard/pkg/events"
	"github.com/ZETA-AI-ORG/onboard/pkg/kafka"
	"github.com/ZETA-AI-ORG/onboard/pkg/logging"
	"github.com/ZETA-AI-ORG/onboard/pkg/middleware"
	"github.com/ZETA-AI-ORG/onboard/pkg/processor"
	"github.com/ZETA-AI-ORG/onboard/pkg/prompt"
	documentroutes "github.com/ZETA-AI-ORG/onboard/pkg/routes/document"
	"github.com/ZETA-AI-ORG/onboard/pkg/routes/health"
	onboardingroutes "github.com/ZETA-AI-ORG/onboard/pkg/routes/onboarding"
	ragconfigroutes "github.com/ZETA-AI-ORG/onboard/pkg/routes/ragconfig"
	"github.com/ZETA-AI-ORG/onboard/pkg/startup"
	"github.com/ZETA-AI-ORG/onboard/pkg/tracing"
)

const version = "1.0.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.AppName)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else {
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	app := newApplication(cfg, logger)

	manager := startup.NewManager(logger, cfg.StartupMaxAttempts)
	manager.AddDependency(app.databaseDependency())
	if cfg.KafkaConsumerEnabled {
		manager.AddDependency(app.consumerDependency())
	}
	manager.AddDependency(app.serverDependency())

	if err := manager.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := manager.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown failed")
		os.Exit(1)
	}
}

// application holds the pieces shared between startup dependencies
type application struct {
	cfg    config.Config
	logger ectologger.Logger

	db        database.DB
	producer  *kafka.Producer
	consumer  *kafka.Consumer
	proc      *processor.Processor
	docRepo   *documentrepo.Repository
	ragRepo   *ragconfigrepo.Repository
	emitter   *events.Emitter
	checker   *health.Checker
	server    *echo.Echo
	container ectocontainer.DIContainer
}

func newApplication(cfg config.Config, logger ectologger.Logger) *application {
	return &application{cfg: cfg, logger: logger}
}

func (a *application) databaseDependency() startup.Dependency {
	return &startupDependency{
		name: "database",
		start: func(ctx context.Context) error {
			db, err := database.Connect(ctx, database.ConnectConfig{
				Host:            a.cfg.DatabaseHost,
				Port:            a.cfg.DatabasePort,
				UserName:        a.cfg.DatabaseUserName,
				Password:        a.cfg.DatabasePassword,
				Name:            a.cfg.DatabaseName,
				SSLMode:         a.cfg.DatabaseSSLMode,
				MaxOpenConns:    a.cfg.DatabaseMaxOpenConns,
				MaxIdleConns:    a.cfg.DatabaseMaxIdleConns,
				ConnMaxLifetime: a.cfg.DatabaseConnMaxLifetime,
			})
			if err != nil {
				return err
			}

			driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
			if err != nil {
				return fmt.Errorf("failed to create migration driver: %w", err)
			}
			migration := database.NewMigrationService(a.logger, &database.MigrationConfig{
				MigrationFolderPath: a.cfg.DatabaseMigrationFolderPath,
			})
			if err := migration.Migrate(a.cfg.DatabaseName, driver); err != nil {
				return err
			}

			a.db = database.NewDatabaseInstance(db, a.logger)
			a.buildPipeline()
			return nil
		},
		stop: func(ctx context.Context) error {
			if a.producer != nil {
				_ = a.producer.Close()
			}
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}
}

// buildPipeline wires repositories, the derivation engine and the processor
// once the database is available
func (a *application) buildPipeline() {
	a.docRepo = documentrepo.NewRepository(a.db, a.logger)
	a.ragRepo = ragconfigrepo.NewRepository(a.db, a.logger)

	a.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      a.cfg.KafkaBrokers,
		Topic:        a.cfg.KafkaOutputTopic,
		BatchSize:    a.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(a.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: a.cfg.KafkaRequiredAcks,
		Compression:  a.cfg.KafkaCompression,
	}, a.logger)
	a.emitter = events.NewEmitter(a.producer, a.logger)

	derivationEngine := engine.NewEngine(a.logger, a.cfg.DefaultCountry)
	filler := prompt.NewFiller(a.logger)
	a.proc = processor.NewProcessor(a.logger, derivationEngine, filler, a.docRepo, a.ragRepo, a.emitter, a.cfg.PromptConfigEnabled)
}

func (a *application) consumerDependency() startup.Dependency {
	return &startupDependency{
		name:      "kafka-consumer",
		dependsOn: []string{"database"},
		start: func(ctx context.Context) error {
			a.consumer = kafka.NewConsumer(a.cfg, a.logger, a.proc.HandleMessage)
			return a.consumer.Start(ctx)
		},
		stop: func(ctx context.Context) error {
			if a.consumer != nil {
				return a.consumer.Stop()
			}
			return nil
		},
	}
}

func (a *application) serverDependency() startup.Dependency {
	return &startupDependency{
		name:      "http-server",
		dependsOn: []string{"database"},
		start: func(ctx context.Context) error {
			container, err := a.buildContainer()
			if err != nil {
				return err
			}
			a.container = container

			e := echo.New()
			e.HideBanner = true
			e.Server.ReadTimeout = time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second
			e.Server.WriteTimeout = time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second
			e.Server.IdleTimeout = time.Duration(a.cfg.HttpServerIdleTimeoutSeconds) * time.Second
			e.Server.MaxHeaderBytes = a.cfg.MaxHeaderBytes

			e.HTTPErrorHandler = middleware.Error(a.logger)
			e.Use(echomiddleware.Recover())
			e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
				AllowOrigins: a.cfg.AllowOrigins,
				AllowMethods: a.cfg.AllowMethods,
			}))
			e.Use(otelecho.Middleware(a.cfg.AppName))
			e.Use(middleware.Context())
			e.Use(middleware.Logger(a.logger))
			e.Use(middleware.Inject(container))

			// a typed nil would make the consumer check non-nil
			var consumerCheck interface{ Health() bool }
			if a.consumer != nil {
				consumerCheck = a.consumer
			}
			a.checker = health.NewChecker(a.db, consumerCheck, version)
			a.checker.RegisterRoutes(e)

			api := e.Group("/api/v1")
			onboardingroutes.Register(api.Group("/onboarding"))
			documentroutes.Register(api.Group("/documents"))
			ragconfigroutes.Register(api.Group("/rag-config"))

			a.server = e

			go func() {
				addr := fmt.Sprintf(":%d", a.cfg.Port)
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					a.logger.WithError(err).Error("HTTP server stopped unexpectedly")
				}
			}()

			a.checker.SetReady(true)
			return nil
		},
		stop: func(ctx context.Context) error {
			if a.checker != nil {
				a.checker.SetReady(false)
			}
			if a.server != nil {
				return a.server.Shutdown(ctx)
			}
			return nil
		},
	}
}

func (a *application) buildContainer() (ectocontainer.DIContainer, error) {
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return nil, err
	}

	if err := ectoinject.RegisterInstance[ectologger.Logger](container, a.logger); err != nil {
		return nil, err
	}
	if err := ectoinject.RegisterInstance[database.DB](container, a.db); err != nil {
		return nil, err
	}
	if err := ectoinject.RegisterInstance[*documentrepo.Repository](container, a.docRepo); err != nil {
		return nil, err
	}
	if err := ectoinject.RegisterInstance[*ragconfigrepo.Repository](container, a.ragRepo); err != nil {
		return nil, err
	}
	if err := ectoinject.RegisterInstance[*events.Emitter](container, a.emitter); err != nil {
		return nil, err
	}
	if err := ectoinject.RegisterInstance[*processor.Processor](container, a.proc); err != nil {
		return nil, err
	}

	return container, nil
}

// startupDependency adapts closures to the startup.Dependency interface
type startupDependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *startupDependency) GetName() string     { return d.name }
func (d *startupDependency) DependsOn() []string { return d.dependsOn }
func (d *startupDependency) Start(ctx context.Context) error {
	return d.start(ctx)
}
func (d *startupDependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}
