package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Server     ServerConfig     `mapstructure:"server"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
	Board      BoardConfig      `mapstructure:"board"`
	Webhooks   WebhookConfig    `mapstructure:"webhooks"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Document   DocumentConfig   `mapstructure:"document"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyMB       int           `mapstructure:"max_body_mb"`
}

type HTTPClientConfig struct {
	RetryCount       int           `mapstructure:"retry_count"`
	RetryWaitTime    time.Duration `mapstructure:"retry_wait_time"`
	RetryMaxWaitTime time.Duration `mapstructure:"retry_max_wait_time"`
	Timeout          time.Duration `mapstructure:"timeout"`
	UserAgent        string        `mapstructure:"user_agent"`
}

type BoardConfig struct {
	APIURL           string        `mapstructure:"api_url"`
	APIToken         string        `mapstructure:"api_token"`
	UnitsBoardID     string        `mapstructure:"units_board_id"`
	DocumentsBoardID string        `mapstructure:"documents_board_id"`
	VacantLabel      string        `mapstructure:"vacant_label"`
	MissingLabel     string        `mapstructure:"missing_label"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	Columns          BoardColumns  `mapstructure:"columns"`
}

type BoardColumns struct {
	PropertyName  string `mapstructure:"property_name"`
	UnitType      string `mapstructure:"unit_type"`
	Status        string `mapstructure:"status"`
	ApplicantID   string `mapstructure:"applicant_id"`
	SubitemStatus string `mapstructure:"subitem_status"`
	ApplicantType string `mapstructure:"applicant_type"`
}

type WebhookConfig struct {
	FileURL       string        `mapstructure:"file_url"`
	FormURL       string        `mapstructure:"form_url"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type EncryptionConfig struct {
	// Key is a base64 encoded 32 byte secretbox key.
	Key           string `mapstructure:"key"`
	MaxFileSizeMB int    `mapstructure:"max_file_size_mb"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DocumentConfig overrides the letterhead printed on composed applications.
type DocumentConfig struct {
	OrganizationName string   `mapstructure:"organization_name"`
	AddressLines     []string `mapstructure:"address_lines"`
	Title            string   `mapstructure:"title"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
