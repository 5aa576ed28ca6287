package shared

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	SourcesFile string
	DataDir     string

	HistoryDriver string // mysql | sqlite | none
	HistoryDSN    string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	Workers      int
	FetchRPS     int
	FetchTimeout time.Duration

	RunDate string   // YYYY-MM-DD, empty means today
	Sources []string // subset to run, empty means all
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:        env("APP_ENV", "prod"),
		LogLevel:      env("LOG_LEVEL", "info"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ""),
		SourcesFile:   env("SOURCES_FILE", "config/sources.yaml"),
		DataDir:       env("DATA_DIR", "data"),
		HistoryDriver: strings.ToLower(env("HISTORY_DRIVER", "sqlite")),
		HistoryDSN:    env("HISTORY_DSN", "data/history.db"),
		RedisAddr:     env("REDIS_ADDR", ""),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		Workers:       atoi("WORKERS", 4),
		FetchRPS:      atoi("FETCH_RPS", 2),
		FetchTimeout:  time.Duration(atoi("FETCH_TIMEOUT_SECONDS", 25)) * time.Second,
		RunDate:       env("RUN_DATE", ""),
		Sources:       list(env("SOURCES", "")),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
