package config

import "time"

type CacheConfig interface {
	GetListStaleTime() time.Duration
	GetDetailStaleTime() time.Duration
	GetSearchStaleTime() time.Duration
}

type Cache struct{}

var _ CacheConfig = Cache{}

func (Cache) GetListStaleTime() time.Duration {
	return GetDuration("LIST_STALE_TIME", 5*time.Minute)
}

func (Cache) GetDetailStaleTime() time.Duration {
	return GetDuration("DETAIL_STALE_TIME", 5*time.Minute)
}

// GetSearchStaleTime is short: search results are keyword specific and rarely reused
func (Cache) GetSearchStaleTime() time.Duration {
	return GetDuration("SEARCH_STALE_TIME", 30*time.Second)
}
