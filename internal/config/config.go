package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Reference data source types.
const (
	SourceFunctionApp = "function_app"
	SourceS3          = "s3"
	SourceLocal       = "local"
	SourcePostgres    = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	CORS          CORSConfig
	FunctionApp   FunctionAppConfig
	Predictor     PredictorConfig
	ReferenceData ReferenceDataConfig
	S3            S3Config
	Database      DatabaseConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// FunctionAppConfig locates the function app that serves reference files and predictions.
type FunctionAppConfig struct {
	BaseURL string
	Key     string
}

// PredictorConfig bounds the outbound prediction call.
type PredictorConfig struct {
	Timeout time.Duration
}

// ReferenceDataConfig selects where reference tables are loaded from and when.
type ReferenceDataConfig struct {
	Source      string
	Eager       bool
	LoadTimeout time.Duration
	LocalPath   string
}

// S3Config holds the bucket layout and credentials for the S3 source.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
}

// DatabaseConfig holds PostgreSQL connection configuration for the postgres source.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("FUNCTION_APP_URL", "http://127.0.0.1:8000")
	v.SetDefault("FUNCTION_APP_KEY", "")
	v.SetDefault("PREDICTOR_TIMEOUT", "30s")
	v.SetDefault("REFDATA_SOURCE", SourceFunctionApp)
	v.SetDefault("REFDATA_EAGER", true)
	v.SetDefault("REFDATA_LOAD_TIMEOUT", "60s")
	v.SetDefault("REFDATA_LOCAL_PATH", "./data")
	v.SetDefault("REFDATA_S3_PREFIX", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "taxcode")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 1)
	v.SetDefault("DB_POOL_MAX", 4)

	v.AutomaticEnv()

	// The function app variables keep their Azure names as aliases.
	if err := v.BindEnv("FUNCTION_APP_URL", "FUNCTION_APP_URL", "AZURE_FUNCTION_APP_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind FUNCTION_APP_URL: %w", err)
	}
	if err := v.BindEnv("FUNCTION_APP_KEY", "FUNCTION_APP_KEY", "AZURE_FUNCTION_APP_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind FUNCTION_APP_KEY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		FunctionApp: FunctionAppConfig{
			BaseURL: strings.TrimRight(v.GetString("FUNCTION_APP_URL"), "/"),
			Key:     v.GetString("FUNCTION_APP_KEY"),
		},
		Predictor: PredictorConfig{
			Timeout: v.GetDuration("PREDICTOR_TIMEOUT"),
		},
		ReferenceData: ReferenceDataConfig{
			Source:      strings.ToLower(v.GetString("REFDATA_SOURCE")),
			Eager:       v.GetBool("REFDATA_EAGER"),
			LoadTimeout: v.GetDuration("REFDATA_LOAD_TIMEOUT"),
			LocalPath:   v.GetString("REFDATA_LOCAL_PATH"),
		},
		S3: S3Config{
			Bucket:    v.GetString("REFDATA_S3_BUCKET"),
			Prefix:    v.GetString("REFDATA_S3_PREFIX"),
			Region:    v.GetString("AWS_REGION"),
			AccessKey: v.GetString("AWS_ACCESS_KEY_ID"),
			SecretKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}
	if c.Predictor.Timeout <= 0 {
		return fmt.Errorf("PREDICTOR_TIMEOUT must be positive")
	}
	if c.ReferenceData.LoadTimeout <= 0 {
		return fmt.Errorf("REFDATA_LOAD_TIMEOUT must be positive")
	}
	if c.FunctionApp.BaseURL == "" {
		return fmt.Errorf("FUNCTION_APP_URL is required")
	}

	switch c.ReferenceData.Source {
	case SourceFunctionApp:
	case SourceLocal:
		if c.ReferenceData.LocalPath == "" {
			return fmt.Errorf("REFDATA_LOCAL_PATH is required for the local source")
		}
	case SourceS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("REFDATA_S3_BUCKET is required for the s3 source")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("AWS_REGION is required for the s3 source")
		}
	case SourcePostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("REFDATA_SOURCE must be one of %s, %s, %s, %s; got %q",
			SourceFunctionApp, SourceS3, SourceLocal, SourcePostgres, c.ReferenceData.Source)
	}

	return nil
}

// Validate checks the PostgreSQL settings used by the postgres source.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// AllowsAllOrigins reports whether the wildcard origin is configured.
func (c CORSConfig) AllowsAllOrigins() bool {
	for _, origin := range c.Origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
