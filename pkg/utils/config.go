package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type SessionConfig struct {
	Secret   string
	Issuer   string
	Duration time.Duration
}

type ProviderConfig struct {
	Name         string // "inaturalist" or "gbif"
	INatBaseURL  string
	GBIFBaseURL  string
	WikiBaseURL  string
	Locale       string
	Kingdom      string
	PageSize     int
	RadiusKm     int
	FetchTimeout time.Duration
}

type ImageConfig struct {
	Timeout       time.Duration
	Workers       int
	Placeholder   string
	CacheSize     int
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type Config struct {
	Addr         string
	GRPCAddr     string
	DSN          string
	LogLevel     string
	TraitsFile   string
	GeoIPPath    string
	RateLimitQPS int

	Session  SessionConfig
	Provider ProviderConfig
	Image    ImageConfig
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		Addr:         getEnv("BIODEX_ADDR", ":8080"),
		GRPCAddr:     getEnv("BIODEX_GRPC_ADDR", ":9090"),
		DSN:          getEnv("BIODEX_DB_DSN", "file:biodex?mode=memory&cache=shared"),
		LogLevel:     getEnv("BIODEX_LOG_LEVEL", "info"),
		TraitsFile:   os.Getenv("BIODEX_TRAITS_FILE"),
		GeoIPPath:    os.Getenv("BIODEX_GEOIP_DB"),
		RateLimitQPS: getEnvInt("BIODEX_RATE_LIMIT_QPS", 20),

		Session: SessionConfig{
			// dev default, override in any shared deployment
			Secret:   getEnv("BIODEX_SESSION_SECRET", "dev-secret-change-me"),
			Issuer:   getEnv("BIODEX_SESSION_ISSUER", "biodex"),
			Duration: getEnvDuration("BIODEX_SESSION_TTL", 24*time.Hour),
		},
		Provider: ProviderConfig{
			Name:         strings.ToLower(getEnv("BIODEX_PROVIDER", "inaturalist")),
			INatBaseURL:  getEnv("BIODEX_INAT_URL", "https://api.inaturalist.org"),
			GBIFBaseURL:  getEnv("BIODEX_GBIF_URL", "https://api.gbif.org"),
			WikiBaseURL:  getEnv("BIODEX_WIKIPEDIA_URL", "https://pt.wikipedia.org"),
			Locale:       getEnv("BIODEX_LOCALE", "pt-BR"),
			Kingdom:      getEnv("BIODEX_KINGDOM", "Animalia"),
			PageSize:     getEnvInt("BIODEX_PAGE_SIZE", 30),
			RadiusKm:     getEnvInt("BIODEX_RADIUS_KM", 500),
			FetchTimeout: getEnvDuration("BIODEX_FETCH_TIMEOUT", 10*time.Second),
		},
		Image: ImageConfig{
			Timeout:       getEnvDuration("BIODEX_IMAGE_TIMEOUT", 4*time.Second),
			Workers:       getEnvInt("BIODEX_IMAGE_WORKERS", 4),
			Placeholder:   getEnv("BIODEX_PLACEHOLDER_URL", "https://picsum.photos/seed/{seed}/400/300"),
			CacheSize:     getEnvInt("BIODEX_IMAGE_CACHE_SIZE", 1024),
			CacheTTL:      getEnvDuration("BIODEX_IMAGE_CACHE_TTL", 6*time.Hour),
			RedisAddr:     os.Getenv("BIODEX_REDIS_ADDR"),
			RedisPassword: os.Getenv("BIODEX_REDIS_PASSWORD"),
			RedisDB:       getEnvInt("BIODEX_REDIS_DB", 0),
		},
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getEnvDuration accepts Go durations ("10s") or plain seconds ("10").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
