package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all runtime configuration, read from the environment.
// S3 and SMTP sections are optional; the photo and email features disable
// themselves when left blank.
type Config struct {
	Port        string `env:"MESADA_PORT,     default=8080"`
	DBPath      string `env:"MESADA_DB_PATH,  default=mesada.db"`
	LogLevel    string `env:"MESADA_LOG_LEVEL, default=info"`
	ClampDebits bool   `env:"MESADA_CLAMP_DEBITS, default=false"`
	SeedData    bool   `env:"MESADA_SEED,     default=true"`

	S3   S3Config
	SMTP SMTPConfig
}

// S3Config points at an S3-compatible bucket for user photos.
type S3Config struct {
	Endpoint  string `env:"MESADA_S3_ENDPOINT"`
	Bucket    string `env:"MESADA_S3_BUCKET"`
	Region    string `env:"MESADA_S3_REGION, default=auto"`
	AccessKey string `env:"MESADA_S3_ACCESS_KEY"`
	SecretKey string `env:"MESADA_S3_SECRET_KEY"`
	PublicURL string `env:"MESADA_S3_PUBLIC_URL"`
}

// Configured reports whether enough is set to attempt uploads.
func (c S3Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// SMTPConfig describes the outgoing mail transport.
type SMTPConfig struct {
	Host     string `env:"MESADA_SMTP_HOST"`
	Port     int    `env:"MESADA_SMTP_PORT, default=587"`
	Username string `env:"MESADA_SMTP_USER"`
	Password string `env:"MESADA_SMTP_PASSWORD"`
	From     string `env:"MESADA_SMTP_FROM"`
	UseSSL   bool   `env:"MESADA_SMTP_SSL, default=false"`
}

// Configured reports whether a mail transport is set up at all.
func (c SMTPConfig) Configured() bool {
	return c.Host != ""
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}
