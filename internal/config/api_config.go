package config

import (
	"strings"
	"time"
)

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return strings.TrimSpace(GetEnv("API_BASE_URL", "http://localhost:8080/api"))
}

func (API) GetAPITimeout() time.Duration {
	return GetDuration("API_TIMEOUT", 30*time.Second)
}
