package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (or the file at path), merges
// config.<environment>.yaml when present, then applies environment
// overrides. Secrets are expected to arrive through the environment.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	env := v.GetString("app.environment")
	if path == "" && env != "" {
		v.SetConfigName("config." + env)
		_ = v.MergeInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	for _, p := range []string{".env", "../.env"} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return
			}
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "rentapp")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_mb", 50)

	v.SetDefault("http_client.retry_count", 3)
	v.SetDefault("http_client.retry_wait_time", 500*time.Millisecond)
	v.SetDefault("http_client.retry_max_wait_time", 5*time.Second)
	v.SetDefault("http_client.timeout", 30*time.Second)
	v.SetDefault("http_client.user_agent", "rentapp/1.0")

	v.SetDefault("board.api_url", "https://api.monday.com/v2")
	v.SetDefault("board.api_token", "")
	v.SetDefault("board.units_board_id", "")
	v.SetDefault("board.documents_board_id", "")
	v.SetDefault("board.vacant_label", "Vacant")
	v.SetDefault("board.missing_label", "Missing")
	v.SetDefault("board.cache_ttl", 5*time.Minute)
	v.SetDefault("board.columns.property_name", "color_mkp7xdce")
	v.SetDefault("board.columns.unit_type", "color_mkp77nrv")
	v.SetDefault("board.columns.status", "color_mkp7fmq4")
	v.SetDefault("board.columns.applicant_id", "text_mksxyax3")
	v.SetDefault("board.columns.subitem_status", "status")
	v.SetDefault("board.columns.applicant_type", "color_mksyqx5h")

	v.SetDefault("webhooks.file_url", "")
	v.SetDefault("webhooks.form_url", "")
	v.SetDefault("webhooks.max_concurrent", 4)
	v.SetDefault("webhooks.timeout", 60*time.Second)

	v.SetDefault("encryption.key", "")
	v.SetDefault("encryption.max_file_size_mb", 10)

	v.SetDefault("database.postgres.dsn", "")
	v.SetDefault("database.postgres.max_open_conns", 10)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("document.organization_name", "")
	v.SetDefault("document.title", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// overrideFromEnv fills secrets from their conventional variable names when
// the structured keys were left empty.
func overrideFromEnv(cfg *Config) {
	set := func(dst *string, name string) {
		if *dst == "" {
			if val := os.Getenv(name); val != "" {
				*dst = val
			}
		}
	}
	set(&cfg.Board.APIToken, "MONDAY_API_TOKEN")
	set(&cfg.Board.UnitsBoardID, "MONDAY_BOARD_ID")
	set(&cfg.Board.DocumentsBoardID, "MONDAY_DOCUMENTS_BOARD_ID")
	set(&cfg.Webhooks.FileURL, "FILE_WEBHOOK_URL")
	set(&cfg.Webhooks.FormURL, "FORM_WEBHOOK_URL")
	set(&cfg.Encryption.Key, "ENCRYPTION_KEY")
	set(&cfg.Database.Postgres.DSN, "DATABASE_URL")
}

func (c *Config) Validate() error {
	var problems []string
	if c.Webhooks.MaxConcurrent < 1 {
		problems = append(problems, "webhooks.max_concurrent must be at least 1")
	}
	if c.Encryption.MaxFileSizeMB < 1 {
		problems = append(problems, "encryption.max_file_size_mb must be at least 1")
	}
	if c.HTTPClient.RetryCount < 0 {
		problems = append(problems, "http_client.retry_count must not be negative")
	}
	if c.Encryption.Key != "" {
		key, err := base64.StdEncoding.DecodeString(c.Encryption.Key)
		if err != nil || len(key) != 32 {
			problems = append(problems, "encryption.key must be a base64 encoded 32 byte key")
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
