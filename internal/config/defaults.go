package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "dispatch",
	Pass: "dispatch",
	Name: "dispatch_db",
}

var defaultKafka = Kafka{
	GroupID:            "dispatch-worker",
	OrdersTopic:        "order-events",
	NotificationsTopic: "courier-notifications",
	EventsTopic:        "assignment-events",
}

var defaultDispatch = Dispatch{
	BaseFee:              5,
	PerKmFee:             2,
	MinutesPerKm:         4,
	FixedOverheadMinutes: 10,
	MaxRadiusKm:          10,
	LocationFreshness:    15 * time.Minute,
	DefaultStrategy:      "nearest",
	OperationTimeout:     10 * time.Second,
}

var defaultOracle = Oracle{
	Timeout:     5 * time.Second,
	MaxAttempts: 2,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    500 * time.Millisecond,
}

// DefaultPort returns the default port.
func DefaultPort() int { return defaultPort }

// DefaultDB returns the default database settings.
func DefaultDB() DB { return defaultDB }

// DefaultKafka returns the default Kafka settings.
func DefaultKafka() Kafka { return defaultKafka }

// DefaultDispatch returns the default dispatch policy.
func DefaultDispatch() Dispatch { return defaultDispatch }

// DefaultOracle returns the default decision-oracle client settings.
func DefaultOracle() Oracle { return defaultOracle }
