package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	folderEnvVar   = "FOLDER"
	logLevelVar    = "LOG_LEVEL"
	sessionBackend = "SESSION_BACKEND"
	redisAddrVar   = "REDIS_ADDR"
)

// Session backends understood by GetSessionBackend
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Inventory")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	return GetEnv("ENV", "DEV")
}

func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelVar, "info"))
}

// GetSessionBackend selects where the CLI keeps its durable session ("file" or "redis")
func (EnvVars) GetSessionBackend() string {
	return strings.ToLower(GetEnv(sessionBackend, SessionBackendFile))
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

// GetEnv returns the environment variable, then the CONFIG_FILE value, then the default
func GetEnv(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := fileValue(envVar); ok {
		return value
	}
	return defaultValue
}

// GetDuration parses a Go duration ("90s", "5m"); invalid values fall back to the default
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
