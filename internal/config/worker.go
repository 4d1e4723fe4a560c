package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// WorkerConfig is read from the environment. The worker is deployed
// separately from the API and carries no config file.
type WorkerConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL" required:"true"`

	OutboxBatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxPollInterval  time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxRetryAttempts int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	OutboxRetryDelay    time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"5s"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`

	HealthPort int `envconfig:"HEALTH_PORT" default:"8081"`
}

func LoadWorkerConfig() (*WorkerConfig, error) {
	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process worker config: %w", err)
	}
	return &cfg, nil
}

// SMTPEnabled reports whether the notifier should send real email.
func (c *WorkerConfig) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
