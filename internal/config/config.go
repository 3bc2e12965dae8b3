package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN renders the pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores broker settings for the order-events consumer and the
// notification/event producers. Empty brokers disable the Kafka side.
type Kafka struct {
	Brokers            []string
	GroupID            string
	OrdersTopic        string
	NotificationsTopic string
	EventsTopic        string
}

// Dispatch stores the dispatch policy knobs. All pricing and eligibility
// parameters are tunable through the environment.
type Dispatch struct {
	BaseFee              float64
	PerKmFee             float64
	MinutesPerKm         float64
	FixedOverheadMinutes int
	MaxRadiusKm          float64
	LocationFreshness    time.Duration
	DefaultStrategy      string
	OperationTimeout     time.Duration
}

// Oracle stores decision-oracle client settings.
type Oracle struct {
	URL         string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Config stores service settings.
type Config struct {
	Port     int
	DB       DB
	Kafka    Kafka
	Dispatch Dispatch
	Oracle   Oracle
}

// Load reads configuration in order: .env (if present), then environment, then flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:     envInt("PORT", DefaultPort()),
		DB:       loadDB(),
		Kafka:    loadKafka(),
		Dispatch: loadDispatch(),
		Oracle:   loadOracle(),
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Dispatch.MaxRadiusKm <= 0 {
		return nil, fmt.Errorf("invalid max radius: %f", cfg.Dispatch.MaxRadiusKm)
	}
	return cfg, nil
}

func loadDB() DB {
	db := DefaultDB()
	db.Host = envStr("DB_HOST", db.Host)
	db.Port = envStr("DB_PORT", db.Port)
	db.User = envStr("DB_USER", db.User)
	db.Pass = envStr("DB_PASS", db.Pass)
	db.Name = envStr("DB_NAME", db.Name)
	return db
}

func loadKafka() Kafka {
	k := DefaultKafka()
	if v := envStr("KAFKA_BROKERS", ""); v != "" {
		k.Brokers = splitCSV(v)
	}
	k.GroupID = envStr("KAFKA_GROUP_ID", k.GroupID)
	k.OrdersTopic = envStr("KAFKA_ORDERS_TOPIC", k.OrdersTopic)
	k.NotificationsTopic = envStr("KAFKA_NOTIFICATIONS_TOPIC", k.NotificationsTopic)
	k.EventsTopic = envStr("KAFKA_EVENTS_TOPIC", k.EventsTopic)
	return k
}

func loadDispatch() Dispatch {
	d := DefaultDispatch()
	d.BaseFee = envFloat("DISPATCH_BASE_FEE", d.BaseFee)
	d.PerKmFee = envFloat("DISPATCH_PER_KM_FEE", d.PerKmFee)
	d.MinutesPerKm = envFloat("DISPATCH_MINUTES_PER_KM", d.MinutesPerKm)
	d.FixedOverheadMinutes = envInt("DISPATCH_ETA_OVERHEAD_MINUTES", d.FixedOverheadMinutes)
	d.MaxRadiusKm = envFloat("DISPATCH_MAX_RADIUS_KM", d.MaxRadiusKm)
	d.LocationFreshness = envDuration("DISPATCH_LOCATION_FRESHNESS", d.LocationFreshness)
	d.DefaultStrategy = envStr("DISPATCH_DEFAULT_STRATEGY", d.DefaultStrategy)
	d.OperationTimeout = envDuration("DISPATCH_OPERATION_TIMEOUT", d.OperationTimeout)
	return d
}

func loadOracle() Oracle {
	o := DefaultOracle()
	o.URL = envStr("ORACLE_URL", o.URL)
	o.Timeout = envDuration("ORACLE_TIMEOUT", o.Timeout)
	o.MaxAttempts = envInt("ORACLE_MAX_ATTEMPTS", o.MaxAttempts)
	o.BaseDelay = envDuration("ORACLE_BASE_DELAY", o.BaseDelay)
	o.MaxDelay = envDuration("ORACLE_MAX_DELAY", o.MaxDelay)
	return o
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
