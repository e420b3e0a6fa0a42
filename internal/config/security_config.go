package config

import "time"

type SecurityConfig interface {
	GetAuthSecret() string
	GetAccessTokenCookie() string
	GetRefreshTokenCookie() string
	GetCookieMaxAge() time.Duration
	GetRedirectDelay() time.Duration
	GetProfileTTL() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetAuthSecret is the HMAC secret the backend signs access tokens with. Empty disables
// signature verification of cookie tokens.
func (Security) GetAuthSecret() string {
	return GetEnv("AUTH_SECRET", "")
}

func (Security) GetAccessTokenCookie() string {
	return GetEnv("ACCESS_TOKEN_COOKIE", "accessToken")
}

func (Security) GetRefreshTokenCookie() string {
	return GetEnv("REFRESH_TOKEN_COOKIE", "refreshToken")
}

func (Security) GetCookieMaxAge() time.Duration {
	return GetDuration("COOKIE_MAX_AGE", 7*24*time.Hour)
}

// GetRedirectDelay is how long the "session expired" notice stays up before the login redirect
func (Security) GetRedirectDelay() time.Duration {
	return GetDuration("REDIRECT_DELAY", 1500*time.Millisecond)
}

func (Security) GetProfileTTL() time.Duration {
	return GetDuration("PROFILE_TTL", 5*time.Minute)
}
