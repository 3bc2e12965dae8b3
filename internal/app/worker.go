package app

import (
	"go.uber.org/dig"

	"dispatch-service/internal/config"
	"dispatch-service/internal/service/dispatch"
	"dispatch-service/internal/service/orders"
	"dispatch-service/internal/transport/kafka"
)

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		func(svc *dispatch.Service) orders.DispatchPort { return svc },
		orders.NewProcessor,
		func(p *orders.Processor) kafka.HandleFunc { return p.Handle },
		func(cfg *config.Config, h kafka.HandleFunc) (*kafka.Consumer, error) {
			return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.OrdersTopic, h)
		},
	)
}
