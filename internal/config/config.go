package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/roxannesyombua/Movers-App-Server/internal/pricing"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	HTTP          HTTPConfig          `yaml:"http"`
	Auth          AuthConfig          `yaml:"auth"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Logging       LoggingConfig       `yaml:"logging"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Pricing       pricing.Config      `yaml:"pricing"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Backup        BackupConfig        `yaml:"backup"`
	Exports       ExportConfig        `yaml:"exports"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	Issuer        string `yaml:"issuer"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type NotificationsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	From     string `yaml:"from"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Load reads the YAML config at configPath, expanding ${ENV} references
// after loading .env when present.
func Load(configPath string) (*Config, error) {
	// .env is optional; environment variables may come from elsewhere.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "YOUR_SECRET_HERE" {
		return errors.New("auth jwt_secret is required")
	}

	if _, err := pricing.NewEngine(c.Pricing); err != nil {
		return err
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "movers-api"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = c.App.Name
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Pricing.Strategy == "" {
		c.Pricing = pricing.DefaultConfig()
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
	if c.Notifications.SMTPPort == 0 {
		c.Notifications.SMTPPort = 587
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
