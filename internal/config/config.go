package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultJWTSecret = "default_super_secret_key"

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	SQLitePath      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// DSN returns the PostgreSQL connection string
func (c DBConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Name + "?sslmode=" + c.SSLMode
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	GinMode     string
	CORSOrigins []string
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// AdminConfig holds the credentials of the bootstrap admin account
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// StorageConfig selects and configures the blob store for uploads
type StorageConfig struct {
	UploadDir       string
	PublicUploadURL string
	AWSRegion       string
	AWSBucket       string
	AWSAccessKeyID  string
	AWSSecretKey    string
}

// UseS3 reports whether uploads go to S3 rather than the local directory.
func (s StorageConfig) UseS3() bool {
	return s.AWSBucket != ""
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string
	Environment string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	Server      ServerConfig
	DB          DBConfig
	JWT         JWTConfig
	Admin       AdminConfig
	Storage     StorageConfig
	Log         LogConfig
}

// Load reads configs/.env when present and then the process environment.
func Load(serviceName string) (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		fmt.Println("No configs/.env file found, using environment variables")
	}

	cfg := &Config{
		ServiceName: serviceName,
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"}),
		},
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "restaurants"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "restaurants.db"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
			TTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Storage: StorageConfig{
			UploadDir:       getEnv("IMAGE_UPLOAD_DIR", "./uploads"),
			PublicUploadURL: getEnv("PUBLIC_UPLOAD_URL", "/uploads"),
			AWSRegion:       getEnv("AWS_REGION", ""),
			AWSBucket:       getEnv("AWS_S3_BUCKET", ""),
			AWSAccessKeyID:  getEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that must not reach production.
func (c *Config) Validate() error {
	if c.Server.GinMode == "release" && c.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT_SECRET environment variable is required in release mode")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.DB.Driver != "postgres" && c.DB.Driver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Storage.UseS3() && c.Storage.AWSRegion == "" {
		return errors.New("AWS_REGION is required when AWS_S3_BUCKET is set")
	}
	return nil
}

// LogFields returns the non-secret configuration as zap fields
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Log.Environment),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.Name),
		zap.String("server_port", c.Server.Port),
		zap.Bool("s3_uploads", c.Storage.UseS3()),
		zap.Duration("jwt_ttl", c.JWT.TTL),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
