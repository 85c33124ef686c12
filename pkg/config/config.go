package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	AI        AIConfig
	Media     MediaConfig
	Pipeline  PipelineConfig
	Analytics AnalyticsConfig
	Exports   ExportsConfig
	Review    ReviewConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AIConfig points at the external image-quality / sentiment analysis service.
type AIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// MediaConfig controls local storage of verification images and audio.
type MediaConfig struct {
	StorageDir      string
	TempDir         string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	TempMaxAge      time.Duration
	CleanupSchedule string
	MaxUploadBytes  int64
}

// PipelineConfig tunes the asynchronous PV analysis worker queue.
type PipelineConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// AnalyticsConfig governs caching for the admin analytics endpoints.
type AnalyticsConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ExportsConfig controls CSV/PDF exports of the final selection list.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// ReviewConfig carries workflow tuning knobs.
type ReviewConfig struct {
	MinImages       int
	MinVIRemarksLen int
	StatsCacheTTL   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.AI = AIConfig{
		BaseURL: v.GetString("AI_SERVICE_URL"),
		APIKey:  v.GetString("AI_SERVICE_API_KEY"),
		Timeout: parseDuration(v.GetString("AI_SERVICE_TIMEOUT"), 30*time.Second),
	}

	maxUpload := v.GetInt64("MEDIA_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 15 * 1024 * 1024
	}
	cfg.Media = MediaConfig{
		StorageDir:      v.GetString("MEDIA_STORAGE_DIR"),
		TempDir:         v.GetString("MEDIA_TEMP_DIR"),
		SignedURLSecret: v.GetString("MEDIA_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("MEDIA_SIGNED_URL_TTL"), time.Hour),
		TempMaxAge:      parseDuration(v.GetString("MEDIA_TEMP_MAX_AGE"), 24*time.Hour),
		CleanupSchedule: v.GetString("MEDIA_CLEANUP_SCHEDULE"),
		MaxUploadBytes:  maxUpload,
	}

	cfg.Pipeline = PipelineConfig{
		Workers:    v.GetInt("PV_PIPELINE_WORKERS"),
		MaxRetries: v.GetInt("PV_PIPELINE_RETRIES"),
		RetryDelay: parseDuration(v.GetString("PV_PIPELINE_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:  v.GetBool("ENABLE_ANALYTICS"),
		CacheTTL: parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	cfg.Review = ReviewConfig{
		MinImages:       v.GetInt("REVIEW_MIN_IMAGES"),
		MinVIRemarksLen: v.GetInt("REVIEW_MIN_VI_REMARKS_LEN"),
		StatsCacheTTL:   parseDuration(v.GetString("REVIEW_STATS_CACHE_TTL"), 10*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "maatram_review")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "maatram-review")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("AI_SERVICE_URL", "http://localhost:7000")
	v.SetDefault("AI_SERVICE_API_KEY", "")
	v.SetDefault("AI_SERVICE_TIMEOUT", "30s")

	v.SetDefault("MEDIA_STORAGE_DIR", "./media")
	v.SetDefault("MEDIA_TEMP_DIR", "./media/tmp")
	v.SetDefault("MEDIA_SIGNED_URL_SECRET", "dev_media_secret")
	v.SetDefault("MEDIA_SIGNED_URL_TTL", "1h")
	v.SetDefault("MEDIA_TEMP_MAX_AGE", "24h")
	v.SetDefault("MEDIA_CLEANUP_SCHEDULE", "0 3 * * *")
	v.SetDefault("MEDIA_MAX_UPLOAD_BYTES", 15*1024*1024)

	v.SetDefault("PV_PIPELINE_WORKERS", 2)
	v.SetDefault("PV_PIPELINE_RETRIES", 3)
	v.SetDefault("PV_PIPELINE_RETRY_DELAY", "30s")

	v.SetDefault("ENABLE_ANALYTICS", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")

	v.SetDefault("REVIEW_MIN_IMAGES", 1)
	v.SetDefault("REVIEW_MIN_VI_REMARKS_LEN", 50)
	v.SetDefault("REVIEW_STATS_CACHE_TTL", "10s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
