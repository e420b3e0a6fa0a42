package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	SecurityConfig
	CacheConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLogLevel() string
	GetSessionBackend() string
	GetRedisAddr() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Security
	Cache
}

func New() Config {
	return mainConfig{}
}
