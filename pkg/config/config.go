package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Storage    StorageConfig
	OCR        OCRConfig
	Scoring    ScoringConfig
	Reconciler ReconcilerConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// StorageConfig configures the S3-compatible object store holding receipt
// images. Endpoint is only set for non-AWS stores (MinIO etc.).
type StorageConfig struct {
	Region     string
	Bucket     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

type OCRConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// ScoringConfig holds the approval policy. The thresholds are product policy,
// not calibrated values, so they stay overridable through the environment.
type ScoringConfig struct {
	ApproveThreshold      float64
	RejectThreshold       float64
	FuelOverrideThreshold float64
	FuelBonusMultiplier   float64
}

type ReconcilerConfig struct {
	Enabled    bool
	Schedule   string
	BatchLimit int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	presignTTL, _ := strconv.Atoi(getEnv("STORAGE_PRESIGN_TTL_MINUTES", "5"))
	ocrTimeout, _ := strconv.Atoi(getEnv("OCR_TIMEOUT_SECONDS", "60"))
	batchLimit, _ := strconv.Atoi(getEnv("RECONCILER_BATCH_LIMIT", "100"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "loyalty_rewards"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Storage: StorageConfig{
			Region:     getEnv("STORAGE_REGION", "ap-south-1"),
			Bucket:     getEnv("STORAGE_BUCKET", "loyalty-receipts"),
			Endpoint:   getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
			PresignTTL: time.Duration(presignTTL) * time.Minute,
		},
		OCR: OCRConfig{
			APIKey:  getEnv("OCR_API_KEY", ""),
			Model:   getEnv("OCR_MODEL", "gemini-1.5-flash"),
			BaseURL: getEnv("OCR_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Timeout: time.Duration(ocrTimeout) * time.Second,
		},
		Scoring: ScoringConfig{
			ApproveThreshold:      getEnvFloat("SCORING_APPROVE_THRESHOLD", 0.8),
			RejectThreshold:       getEnvFloat("SCORING_REJECT_THRESHOLD", 0.3),
			FuelOverrideThreshold: getEnvFloat("SCORING_FUEL_OVERRIDE_THRESHOLD", 0.6),
			FuelBonusMultiplier:   getEnvFloat("SCORING_FUEL_BONUS_MULTIPLIER", 1.5),
		},
		Reconciler: ReconcilerConfig{
			Enabled:    getEnv("RECONCILER_ENABLED", "true") == "true",
			Schedule:   getEnv("RECONCILER_SCHEDULE", "@every 5m"),
			BatchLimit: batchLimit,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
