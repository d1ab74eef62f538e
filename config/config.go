package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		App             App
		HTTP            HTTP
		Log             Log
		PG              PG
		Redis           Redis
		S3              S3
		Kafka           Kafka
		KafkaController KafkaController
		Klaviyo         Klaviyo
		Events          Events
		AbandonedCarts  AbandonedCarts
		Swagger         Swagger
	}

	App struct {
		// Environment tags every event as "production"/"development".
		Environment string `env:"APP_ENV" envDefault:"development"`
		// BaseURL builds the "url" property on cart events.
		BaseURL string `env:"APP_BASE_URL,required"`
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX,required"`
		URL     string `env:"PG_URL,required"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR,required"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT" envDefault:""`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_DEAD_LETTER_BUCKET,required"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS,required"`
		GroupID string   `env:"KAFKA_GROUP_ID,required"`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"domain-events"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"2m"` // covers the full retry/backoff sequence of one delivery
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"4"`
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Klaviyo struct {
		APIKey      string        `env:"KLAVIYO_API_KEY,required"`
		BaseURL     string        `env:"KLAVIYO_BASE_URL" envDefault:"https://a.klaviyo.com/api"`
		Revision    string        `env:"KLAVIYO_REVISION" envDefault:"2024-10-15"`
		MaxAttempts int           `env:"KLAVIYO_MAX_ATTEMPTS" envDefault:"3"`
		BackoffBase time.Duration `env:"KLAVIYO_BACKOFF_BASE" envDefault:"1s"`
		BackoffCap  time.Duration `env:"KLAVIYO_BACKOFF_CAP" envDefault:"30s"`
		HTTPTimeout time.Duration `env:"KLAVIYO_HTTP_TIMEOUT" envDefault:"10s"`
		// ExtraDenyFields extends the built-in property deny list without a code change.
		ExtraDenyFields []string `env:"KLAVIYO_EXTRA_DENY_FIELDS" envDefault:""`
	}

	// Events holds the per-event-family feature flags.
	Events struct {
		PurchaseEnabled            bool `env:"EVENTS_PURCHASE_ENABLED" envDefault:"true"`
		SubscriptionStartedEnabled bool `env:"EVENTS_SUBSCRIPTION_STARTED_ENABLED" envDefault:"true"`
		CartAbandonedEnabled       bool `env:"EVENTS_CART_ABANDONED_10M_ENABLED" envDefault:"true"`
	}

	AbandonedCarts struct {
		PollInterval        time.Duration `env:"ABANDONED_CARTS_POLL_INTERVAL" envDefault:"60s"`
		InactivityThreshold time.Duration `env:"ABANDONED_CARTS_INACTIVITY_THRESHOLD" envDefault:"10m"`
		ProcessBatchTimeout time.Duration `env:"ABANDONED_CARTS_PROCESS_BATCH_TIMEOUT" envDefault:"55s"`
		ShutdownTimeout     time.Duration `env:"ABANDONED_CARTS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"ABANDONED_CARTS_BATCH_SIZE" envDefault:"100"`
		LockTTL             time.Duration `env:"ABANDONED_CARTS_LOCK_TTL" envDefault:"55s"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
