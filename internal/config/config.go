package config

import (
	"os"
	"strconv"
	"time"

	"petradar/internal/domain/matching"
)

// Config agrupa todo lo que viene por env. Los colaboradores externos son
// opcionales: sin DSN se usa storage in-memory, sin RABBITMQ_URL los eventos
// quedan en memoria, sin VISION_URL corre el detector stub.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
	AppName   string

	DBDSN string

	RabbitMQURL      string
	RabbitMQExchange string

	RedisAddr string

	MinIOEndpoint       string
	MinIOPublicEndpoint string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool

	// Fallback local cuando no hay MinIO configurado.
	StorageDir     string
	StorageBaseURL string

	VisionURL     string
	VisionTimeout time.Duration

	GeocoderURL     string
	GeocoderTimeout time.Duration
	GeocodeCacheTTL time.Duration

	Matching  matching.Config
	Retrieval matching.RetrievalConfig
}

func Load() Config {
	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		AppName:   getEnv("APP_NAME", "petradar"),

		DBDSN: os.Getenv("DB_DSN"),

		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "petradar.events"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		MinIOEndpoint:       os.Getenv("MINIO_ENDPOINT"),
		MinIOPublicEndpoint: os.Getenv("MINIO_PUBLIC_ENDPOINT"),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:         getEnv("MINIO_BUCKET_NAME", "petradar-photos"),
		MinIOUseSSL:         getEnv("MINIO_USE_SSL", "false") == "true",

		StorageDir:     getEnv("STORAGE_DIR", "./data/photos"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "/static"),

		VisionURL:     os.Getenv("VISION_URL"),
		VisionTimeout: getDuration("VISION_TIMEOUT", 30*time.Second),

		GeocoderURL:     os.Getenv("GEOCODER_URL"),
		GeocoderTimeout: getDuration("GEOCODER_TIMEOUT", 10*time.Second),
		GeocodeCacheTTL: getDuration("GEOCODE_CACHE_TTL", 30*24*time.Hour),

		Matching:  matching.DefaultConfig(),
		Retrieval: matching.DefaultRetrieval(),
	}

	// Knobs del motor; los defaults son los canónicos.
	cfg.Matching.Weights.Visual = getFloat("MATCH_WEIGHT_VISUAL", cfg.Matching.Weights.Visual)
	cfg.Matching.Weights.Attribute = getFloat("MATCH_WEIGHT_ATTRIBUTE", cfg.Matching.Weights.Attribute)
	cfg.Matching.Weights.Location = getFloat("MATCH_WEIGHT_LOCATION", cfg.Matching.Weights.Location)
	cfg.Matching.Weights.Time = getFloat("MATCH_WEIGHT_TIME", cfg.Matching.Weights.Time)
	cfg.Matching.SimilarityThreshold = getFloat("MATCH_THRESHOLD", cfg.Matching.SimilarityThreshold)
	cfg.Matching.StrongMatchCutoff = getFloat("MATCH_STRONG_CUTOFF", cfg.Matching.StrongMatchCutoff)
	cfg.Matching.GeoTime.DecayKm = getFloat("MATCH_DECAY_KM", cfg.Matching.GeoTime.DecayKm)
	cfg.Matching.GeoTime.DecayDays = getFloat("MATCH_DECAY_DAYS", cfg.Matching.GeoTime.DecayDays)
	cfg.Matching.GeoTime.NegativeGapScore = getFloat("MATCH_TIME_NEGATIVE_GAP_SCORE", cfg.Matching.GeoTime.NegativeGapScore)
	cfg.Matching.Concurrency = getInt("MATCH_CONCURRENCY", cfg.Matching.Concurrency)

	cfg.Retrieval.RadiusKm = getFloat("SEARCH_RADIUS_KM", cfg.Retrieval.RadiusKm)
	cfg.Retrieval.WindowDays = getInt("SEARCH_WINDOW_DAYS", cfg.Retrieval.WindowDays)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
