package query

import "time"

// StaleTimes are the staleness windows of the three read shapes
type StaleTimes struct {
	List   time.Duration
	Detail time.Duration
	Search time.Duration
}

func DefaultStaleTimes() StaleTimes {
	return StaleTimes{
		List:   5 * time.Minute,
		Detail: 5 * time.Minute,
		Search: 30 * time.Second,
	}
}
