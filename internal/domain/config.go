package domain

// ServerConfig holds server-related settings
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// PostgresConfig holds PostgreSQL-specific settings
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"username"`
	Pass     string `mapstructure:"password"`
	SslMode  string `mapstructure:"ssl_mode"`
}

// DatabaseConfig holds general database settings and nested specific configs
type DatabaseConfig struct {
	Type     string         `mapstructure:"type"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Path           string `mapstructure:"path"`
	Level          string `mapstructure:"level"`
	MaxFileSize    int    `mapstructure:"max_file_size"`
	MaxBackupCount int    `mapstructure:"max_backup_count"`
}

// ValkeyConfig holds Valkey-specific settings
type ValkeyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig holds rate limiting settings for destructive endpoints
type RateLimitConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	WindowSeconds     int    `mapstructure:"window_seconds"`
	ExemptInternalIPs string `mapstructure:"exempt_internal_ips"`
}

// IntegrityScanConfig holds settings for the scheduled integrity scan job
type IntegrityScanConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// DefaultGroupConfig is one entry of the configured default group set used
// by the create-missing path.
type DefaultGroupConfig struct {
	Name         string `mapstructure:"name"`
	Description  string `mapstructure:"description"`
	ExternalLink string `mapstructure:"external_link"`
}

// GroupsConfig holds settings for the groups service boundary
type GroupsConfig struct {
	Defaults []DefaultGroupConfig `mapstructure:"defaults"`
}

// Config holds the application's configuration, mapped from config.toml
type Config struct {
	Version       string // not from config file
	ConfigPath    string // internal use
	SessionSecret string `mapstructure:"session_secret"`

	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Valkey        ValkeyConfig        `mapstructure:"valkey"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limits"`
	IntegrityScan IntegrityScanConfig `mapstructure:"integrity_scan"`
	Groups        GroupsConfig        `mapstructure:"groups"`
}
