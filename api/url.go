package api

import "regexp"

// repeatedSlashes matches a run of two or more slashes that does not follow a scheme colon
var repeatedSlashes = regexp.MustCompile(`([^:])/{2,}`)

// JoinURL appends endpoint to base and collapses the doubled slashes that joining
// tends to produce, leaving the "://" of the scheme alone.
func JoinURL(base, endpoint string) string {
	return repeatedSlashes.ReplaceAllString(base+endpoint, "$1/")
}
