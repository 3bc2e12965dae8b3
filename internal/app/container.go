package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"dispatch-service/internal/config"
	"dispatch-service/internal/gateway/oracle"
	"dispatch-service/internal/http/handlers"
	"dispatch-service/internal/http/router"
	"dispatch-service/internal/logx"
	"dispatch-service/internal/metrics"
	"dispatch-service/internal/pricing"
	"dispatch-service/internal/repository"
	"dispatch-service/internal/service/courier"
	"dispatch-service/internal/service/directory"
	"dispatch-service/internal/service/dispatch"
	"dispatch-service/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
	worker    bool
}

// NewContainerBuilder returns a new dig container builder.
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function.
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function.
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// ForWorker switches the container to the Kafka worker wiring.
func (b *ContainerBuilder) ForWorker() *ContainerBuilder {
	b.worker = true
	return b
}

// MustBuild builds and returns a new dig container.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if b.worker {
		if err := registerWorker(container); err != nil {
			return nil, fmt.Errorf("worker: %w", err)
		}
		return container, nil
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the HTTP service container.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the Kafka worker container.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().ForWorker().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		func() *log.Logger { return log.Default() },
		NewLogger,
		config.Load,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return pool, nil
	}
	return provideAll(container, providerDB)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewCourierRepo,
		repository.NewDispatchRepo,
		func(cfg *config.Config) *pricing.Estimator {
			return pricing.NewEstimator(pricing.Policy{
				BaseFee:              cfg.Dispatch.BaseFee,
				PerKmFee:             cfg.Dispatch.PerKmFee,
				MinutesPerKm:         cfg.Dispatch.MinutesPerKm,
				FixedOverheadMinutes: cfg.Dispatch.FixedOverheadMinutes,
			})
		},
		func(repo *repository.CourierRepo, cfg *config.Config, est *pricing.Estimator, logger logx.Logger) *directory.Directory {
			return directory.New(repo, est, directory.Config{
				MaxRadiusKm:       cfg.Dispatch.MaxRadiusKm,
				LocationFreshness: cfg.Dispatch.LocationFreshness,
			}, logger)
		},
		func(repo *repository.CourierRepo) *courier.Service {
			return courier.NewService(repo, 3*time.Second)
		},
		provideOracle,
		provideStrategies,
		provideProducer,
		provideNotifier,
		func(n *kafka.Notifier) dispatch.Notifier {
			if n == nil {
				return nil
			}
			return n
		},
		func(n *kafka.Notifier) dispatch.EventSink {
			if n == nil {
				return nil
			}
			return n
		},
		metrics.NewDispatchOutcomes,
		func(out *metrics.DispatchOutcomes) dispatch.Metrics {
			return dispatch.Metrics{
				Outcomes:             out,
				NotificationFailures: metrics.NewNotificationFailuresTotal(),
			}
		},
		provideDispatchService,
	)
}

func provideOracle(cfg *config.Config, logger logx.Logger) dispatch.DecisionOracle {
	raw := oracle.NewClient(cfg.Oracle.URL, cfg.Oracle.Timeout)
	if raw == nil {
		return nil
	}
	return oracle.NewRetryingClient(raw, logger, metrics.NewGatewayRetriesTotal(), oracle.RetryConfig{
		MaxAttempts: cfg.Oracle.MaxAttempts,
		BaseDelay:   cfg.Oracle.BaseDelay,
		MaxDelay:    cfg.Oracle.MaxDelay,
	})
}

func provideStrategies(cfg *config.Config, orc dispatch.DecisionOracle, logger logx.Logger) []dispatch.Strategy {
	out := []dispatch.Strategy{
		dispatch.NewNearestAvailable(dispatch.NewRanker(cfg.Dispatch.MaxRadiusKm)),
	}
	if orc != nil {
		out = append(out, dispatch.NewWeightedDecision(
			orc, cfg.Oracle.Timeout, metrics.NewOracleFailuresTotal(), logger))
	}
	return out
}

func provideProducer(cfg *config.Config) (*kafka.Producer, error) {
	return kafka.NewProducer(cfg.Kafka.Brokers)
}

func provideNotifier(p *kafka.Producer, cfg *config.Config) *kafka.Notifier {
	return kafka.NewNotifier(p, cfg.Kafka.NotificationsTopic, cfg.Kafka.EventsTopic)
}

func provideDispatchService(
	repo *repository.DispatchRepo,
	dir *directory.Directory,
	strategies []dispatch.Strategy,
	notifier dispatch.Notifier,
	events dispatch.EventSink,
	m dispatch.Metrics,
	cfg *config.Config,
	logger logx.Logger,
) *dispatch.Service {
	return dispatch.NewService(repo, repo, dir, strategies, notifier, events, m, dispatch.Config{
		DefaultStrategy:  cfg.Dispatch.DefaultStrategy,
		OperationTimeout: cfg.Dispatch.OperationTimeout,
	}, logger)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewCourierUsecase,
		handlers.NewCourierHandler,
		handlers.NewDispatchUsecase,
		handlers.NewDispatchHandler,
		router.New,
		serverProvider,
	)
}
