package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"dispatch-service/internal/logx"
	"dispatch-service/internal/transport/kafka"
)

// WorkerRunner runs the Kafka order-events worker.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner.
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	producer *kafka.Producer,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(pool, logger, consumer, producer)

	logger.Info("dispatch-worker started")
	return consumer.Run(ctx)
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer, producer *kafka.Producer) {
	if err := consumer.Close(); err != nil {
		logger.Error("kafka consumer close error", logx.Any("err", err))
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka producer close error", logx.Any("err", err))
	}
	if pool != nil {
		pool.Close()
	}
}
