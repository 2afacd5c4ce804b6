package app

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	HTTPAddr              string
	StorageBackend        string
	MongoURI              string
	MongoDatabase         string
	MongoMovieCollection  string
	MongoSeriesCollection string
	DBIndex               int
	BaseURL               string
	LogLevel              string
	LogFormat             string
	TMDBAPIKey            string
	TMDBBaseURL           string
	TMDBLanguage          string
	MetadataConcurrency   int
	CacheSize             int
	CacheTTL              time.Duration
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	PixeldrainAPIKey      string
	PixeldrainAPIURL      string
	IngestWorkers         int
	MergeMaxAttempts      int
	RateLimitRPS          float64
	RateLimitBurst        int
	CORSAllowedOrigins    []string
	AddonName             string
	AddonVersion          string
	OTLPEndpoint          string
	TraceSampleRate       float64
}

// LoadEnvFile loads KEY=value pairs from path without overriding variables
// already set in the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		StorageBackend:        strings.ToLower(getEnv("STORAGE_BACKEND", StorageMongo)),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnv("MONGO_DB", "mediaarchive"),
		MongoMovieCollection:  getEnv("MONGO_MOVIE_COLLECTION", "movie"),
		MongoSeriesCollection: getEnv("MONGO_SERIES_COLLECTION", "tv"),
		DBIndex:               int(getEnvInt64("DB_INDEX", 1)),
		BaseURL:               strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		LogLevel:              strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:             strings.ToLower(getEnv("LOG_FORMAT", "text")),
		TMDBAPIKey:            getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:           getEnv("TMDB_BASE_URL", ""),
		TMDBLanguage:          getEnv("TMDB_LANGUAGE", "tr-TR"),
		MetadataConcurrency:   int(getEnvInt64("METADATA_CONCURRENCY", 12)),
		CacheSize:             int(getEnvInt64("CACHE_SIZE", 2048)),
		CacheTTL:              getEnvDuration("CACHE_TTL", 24*time.Hour),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               int(getEnvInt64("REDIS_DB", 0)),
		PixeldrainAPIKey:      getEnv("PIXELDRAIN_API_KEY", ""),
		PixeldrainAPIURL:      getEnv("PIXELDRAIN_API_URL", ""),
		IngestWorkers:         int(getEnvInt64("INGEST_WORKERS", 4)),
		MergeMaxAttempts:      int(getEnvInt64("MERGE_MAX_ATTEMPTS", 5)),
		RateLimitRPS:          getEnvFloat("HTTP_RATE_LIMIT_RPS", 100),
		RateLimitBurst:        int(getEnvInt64("HTTP_RATE_LIMIT_BURST", 200)),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS"),
		AddonName:             getEnv("ADDON_NAME", "Arşivim"),
		AddonVersion:          getEnv("ADDON_VERSION", "1.0.0"),
		OTLPEndpoint:          getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampleRate:       getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 0.1),
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// getEnvDuration accepts Go durations ("12h") and bare seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for part := range strings.SplitSeq(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
