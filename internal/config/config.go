package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"linear-mcp/internal/linear"
	"linear-mcp/internal/resolve"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Linear          linear.Config
	CacheTTL        time.Duration
	CacheMaxEntries int
	DataPath        string
	LogDir          string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// The binary directory wins: MCP clients rarely start servers from a
	// meaningful working directory.
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}
	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))

	cfg := &AppConfig{
		Linear: linear.Config{
			APIURL:  getEnv("LINEAR_API_URL", linear.DefaultAPIURL),
			APIKey:  getEnv("LINEAR_API_KEY", ""),
			Timeout: getEnvSeconds("LINEAR_TIMEOUT_SECONDS", 30*time.Second),
		},
		CacheTTL:        getEnvSeconds("RESOLVER_CACHE_TTL_SECONDS", resolve.DefaultCacheTTL),
		CacheMaxEntries: getEnvInt("RESOLVER_CACHE_MAX_ENTRIES", resolve.DefaultCacheMaxEntries),
		DataPath:        dataPath,
		LogDir:          logDir,
	}

	if cfg.Linear.APIKey == "" {
		log.Warn().Msg("LINEAR_API_KEY is not set, calls to Linear will fail")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid integer setting")
	}
	return fallback
}

// getEnvSeconds reads a whole number of seconds. Zero is a valid value.
func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if _, ok := os.LookupEnv(key); !ok {
		return fallback
	}
	return time.Duration(getEnvInt(key, int(fallback/time.Second))) * time.Second
}
