package utils

import "strings"

// ToStringSlice coerces a decoded JSON value into a slice of strings. A bare string
// becomes a singleton slice; non-string members and blank entries are dropped.
func ToStringSlice(value any) []string {
	stringSlice := make([]string, 0)
	switch v := value.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			stringSlice = append(stringSlice, s)
		}
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				stringSlice = append(stringSlice, s)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					stringSlice = append(stringSlice, s)
				}
			}
		}
	}
	return stringSlice
}
