package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	AWS          AWSConfig
	Cognito      CognitoConfig
	Storage      StorageConfig
	Notifx       NotifxConfig
	Provisioning ProvisioningConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
	Version     string
	Debug       bool
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type AWSConfig struct {
	Region string
}

type CognitoConfig struct {
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
	JWKSCacheTTL    time.Duration
}

// Issuer is the token issuer URL of the user pool.
func (c CognitoConfig) Issuer(region string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, c.UserPoolID)
}

type StorageConfig struct {
	Mode          string
	UploadDir     string
	UserBucket    string
	UserBucketURL string
}

type ProvisioningConfig struct {
	QRPayloadSuffix    string
	TempPasswordLength int
	DefaultPerPage     int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Debug:       getEnvBool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "staffhub"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
		Cognito: CognitoConfig{
			UserPoolID:      getEnv("COGNITO_USER_POOL_ID", ""),
			AppClientID:     getEnv("COGNITO_APP_CLIENT_ID", ""),
			AppClientSecret: getEnv("COGNITO_APP_CLIENT_SECRET", ""),
			JWKSCacheTTL:    getEnvDuration("COGNITO_JWKS_TTL", 6*time.Hour),
		},
		Storage: StorageConfig{
			Mode:          getEnv("STORAGE_MODE", "local"),
			UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
			UserBucket:    getEnv("S3_USER_BUCKET_NAME", ""),
			UserBucketURL: getEnv("S3_USER_BUCKET_URL", ""),
		},
		Notifx: loadNotifxConfig(),
		Provisioning: ProvisioningConfig{
			QRPayloadSuffix:    getEnv("QR_PAYLOAD_SUFFIX", "CompanyName"),
			TempPasswordLength: getEnvInt("TEMP_PASSWORD_LENGTH", 6),
			DefaultPerPage:     getEnvInt("DEFAULT_PER_PAGE", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on settings the service cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.Cognito.UserPoolID == "" {
		missing = append(missing, "COGNITO_USER_POOL_ID")
	}
	if c.Cognito.AppClientID == "" {
		missing = append(missing, "COGNITO_APP_CLIENT_ID")
	}
	if c.Cognito.AppClientSecret == "" {
		missing = append(missing, "COGNITO_APP_CLIENT_SECRET")
	}
	if c.Storage.Mode == "s3" && c.Storage.UserBucket == "" {
		missing = append(missing, "S3_USER_BUCKET_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Provisioning.TempPasswordLength < 6 {
		return fmt.Errorf("TEMP_PASSWORD_LENGTH must be at least 6")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
