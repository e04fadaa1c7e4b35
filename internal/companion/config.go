package companion

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server settings read from the environment.
type Config struct {
	Port            string        // PORT, default 5000
	DownloadDir     string        // BMC_DOWNLOAD_DIR, default os.TempDir()
	AllowedOrigins  []string      // BMC_CORS_ORIGINS, comma separated, default "*"
	RequestTimeout  time.Duration // BMC_REQUEST_TIMEOUT, default 10s
	ShutdownTimeout time.Duration // BMC_SHUTDOWN_TIMEOUT, default 5s
	LogLevel        string        // BMC_LOG_LEVEL, default info
	PrettyLog       bool          // BMC_PRETTY_LOG, default false
}

// LoadConfig loads .env when present and reads the environment.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getenv("PORT", "5000"),
		DownloadDir:     getenv("BMC_DOWNLOAD_DIR", os.TempDir()),
		AllowedOrigins:  splitAndTrim(getenv("BMC_CORS_ORIGINS", "*")),
		RequestTimeout:  getDuration("BMC_REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("BMC_SHUTDOWN_TIMEOUT", 5*time.Second),
		LogLevel:        getenv("BMC_LOG_LEVEL", "info"),
		PrettyLog:       getBool("BMC_PRETTY_LOG", false),
	}
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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

func splitAndTrim(s string) []string {
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
