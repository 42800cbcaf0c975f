package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/iurii2002/CoursesManager/internal/config"
	"github.com/iurii2002/CoursesManager/internal/course"
	"github.com/iurii2002/CoursesManager/internal/db"
	"github.com/iurii2002/CoursesManager/internal/health"
	"github.com/iurii2002/CoursesManager/internal/logger"
	"github.com/iurii2002/CoursesManager/internal/messaging"
	"github.com/iurii2002/CoursesManager/internal/metrics"
	"github.com/iurii2002/CoursesManager/internal/middleware"
	"github.com/iurii2002/CoursesManager/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	database      *bun.DB
	meterProvider *sdkmetric.MeterProvider
	natsProducer  *messaging.Producer
	kafkaProducer *messaging.KafkaProducer
	logger        *slog.Logger
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "commit", GitCommit, "build_time", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env, "db_driver", cfg.Database.Driver)

	app, err := NewWithConfig(context.Background(), cfg, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	return app
}

// NewWithConfig builds the application from an already loaded config.
// Event publishers and telemetry are optional; failing to reach them is logged
// and the service starts without them.
func NewWithConfig(ctx context.Context, cfg *config.Config, slogLogger *slog.Logger) (*App, error) {
	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	if cfg.Telemetry.Enabled {
		mp, err := telemetry.InitMeterProvider(ctx, cfg.Telemetry.Endpoint, ServiceName, Version, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize OTel metrics", "error", err)
		} else {
			app.meterProvider = mp
		}
	}

	appMetrics, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	app.database = database

	if err := appMetrics.Database.RegisterDB(database.DB, otel.Meter(ServiceName)); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, (*course.Course)(nil)); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app.router.Use(chimiddleware.RequestID)
	app.router.Use(chimiddleware.Recoverer)
	app.router.Use(middleware.RequestLogger(slogLogger))
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	publisher := app.publisher()

	healthHandler := health.NewHandler(database)
	if app.natsProducer != nil {
		healthHandler.AddCheck("nats", app.natsProducer)
	}
	healthHandler.RegisterRoutes(app.router)

	courseRepo := course.NewRepository(database, appMetrics)
	courseService := course.NewService(courseRepo, publisher, slogLogger, appMetrics)
	courseHandler := course.NewHandler(courseService, slogLogger)
	courseHandler.RegisterRoutes(app.router)

	slogLogger.Info("application initialized successfully")

	return app, nil
}

// publisher connects the configured brokers. It returns nil when none is
// reachable, which turns event publishing off.
func (a *App) publisher() course.EventPublisher {
	var fanout messaging.Fanout

	if a.config.NATS.URL != "" {
		producer, err := messaging.NewProducer(a.config.NATS.URL, a.config.NATS.Subject, a.logger)
		if err != nil {
			a.logger.Warn("failed to initialize NATS producer", "error", err)
		} else {
			a.natsProducer = producer
			fanout = append(fanout, producer)
		}
	}

	if len(a.config.Kafka.Brokers) > 0 {
		producer, err := messaging.NewKafkaProducer(a.config.Kafka.Brokers, a.config.Kafka.Topic, a.logger)
		if err != nil {
			a.logger.Warn("failed to initialize Kafka producer", "error", err)
		} else {
			a.kafkaProducer = producer
			fanout = append(fanout, producer)
		}
	}

	if len(fanout) == 0 {
		a.logger.Info("no event broker configured, course events disabled")
		return nil
	}
	return fanout
}

// Handler exposes the router for in-process tests.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if a.natsProducer != nil {
		if err := a.natsProducer.Close(); err != nil {
			a.logger.Error("NATS producer close error", "error", err)
		}
	}
	if a.kafkaProducer != nil {
		if err := a.kafkaProducer.Close(); err != nil {
			a.logger.Error("Kafka producer close error", "error", err)
		}
	}

	if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
		a.logger.Error("meter provider shutdown error", "error", err)
	}

	if a.database != nil {
		if err := a.database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	return errors.Join(errs...)
}
